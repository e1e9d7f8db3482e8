package keeper

import (
	"fmt"
	"strings"
)

// FormatContext wraps a loaded summary in the delimited block the host
// injects verbatim into the resumed conversation.
func FormatContext(loaded Loaded, eventType string) string {
	entry := loaded.Entry

	shortID := entry.SessionID
	if len(shortID) > 16 {
		shortID = shortID[:16] + "..."
	}

	var b strings.Builder
	b.WriteString("<previous-context>\n")
	b.WriteString("## Session Continuity Notice\n\n")
	b.WriteString("This context was automatically loaded from a previous session summary.\n")
	fmt.Fprintf(&b, "- **Previous Session ID:** %s\n", shortID)
	fmt.Fprintf(&b, "- **Summary Created:** %s\n", entry.CreatedAt)
	fmt.Fprintf(&b, "- **Trigger:** %s\n", entry.Trigger)
	fmt.Fprintf(&b, "- **Files Modified:** %d\n", len(entry.FilesModified))
	fmt.Fprintf(&b, "- **Reload Event:** %s\n", eventType)
	b.WriteString("\n---\n\n")
	b.WriteString(strings.TrimSpace(loaded.Summary))
	b.WriteString("\n\n---\n\n")
	b.WriteString("*Use this context to maintain continuity with the previous conversation. The summary above captures what was discussed and accomplished before context compaction.*\n")
	b.WriteString("</previous-context>")
	return b.String()
}
