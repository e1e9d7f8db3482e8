package keeper

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/theimaginaryfoundation/context-keeper/keeper/fileutils"
)

const (
	maxMessageChars    = 2000
	maxToolResultChars = 1000
)

// ToolCall is one tool invocation observed in the transcript.
type ToolCall struct {
	Name  string         `json:"tool"`
	Input map[string]any `json:"input"`
}

// Bundle is the classified content of a transcript, the input to summary
// generation.
type Bundle struct {
	UserMessages      []string
	AssistantMessages []string
	ToolCalls         []ToolCall
	ToolResults       []string
	FilesModified     []string
	MessageCount      int
}

// fileModifyingTools are the tools whose arguments name a file being changed.
var fileModifyingTools = map[string]bool{
	"Edit":         true,
	"Write":        true,
	"MultiEdit":    true,
	"NotebookEdit": true,
}

// filePathKeys are the argument fields scanned for a modified-file path.
var filePathKeys = []string{"file_path", "notebook_path", "path"}

// Extract classifies transcript messages into conversation buckets and
// derives the modified-file set. Pure transform, no I/O.
func Extract(messages []RawMessage) Bundle {
	b := Bundle{MessageCount: len(messages)}
	files := make(map[string]bool)

	for _, msg := range messages {
		role := ""
		if msg.Message != nil {
			role = msg.Message.Role
		}

		switch {
		case msg.Type == "user" || role == "user":
			b.extractUser(msg)

		case msg.Type == "assistant" || role == "assistant":
			b.extractAssistant(msg, files)

		case msg.Type == "tool_use":
			// Older format: tool_use at the top level of the line.
			b.addToolCall(msg.Name, msg.Input, files)
		}
	}

	for f := range files {
		b.FilesModified = append(b.FilesModified, f)
	}
	sort.Strings(b.FilesModified)
	return b
}

func (b *Bundle) extractUser(msg RawMessage) {
	if msg.Message == nil {
		return
	}
	if text := msg.Message.Content.Text; strings.TrimSpace(text) != "" {
		if !strings.Contains(text, "<system-reminder>") {
			b.UserMessages = append(b.UserMessages, fileutils.Truncate(text, maxMessageChars))
		}
		return
	}
	for _, block := range msg.Message.Content.Blocks {
		switch block.Type {
		case "text":
			if block.Text != "" && !strings.Contains(block.Text, "<system-reminder>") {
				b.UserMessages = append(b.UserMessages, fileutils.Truncate(block.Text, maxMessageChars))
			}
		case "tool_result":
			if text := blockContentText(block.Content); text != "" {
				b.ToolResults = append(b.ToolResults, fileutils.Truncate(text, maxToolResultChars))
			}
		}
	}
}

func (b *Bundle) extractAssistant(msg RawMessage, files map[string]bool) {
	if msg.Message == nil {
		return
	}
	if text := msg.Message.Content.Text; strings.TrimSpace(text) != "" {
		b.AssistantMessages = append(b.AssistantMessages, fileutils.Truncate(text, maxMessageChars))
		return
	}
	for _, block := range msg.Message.Content.Blocks {
		switch block.Type {
		case "text":
			if block.Text != "" {
				b.AssistantMessages = append(b.AssistantMessages, fileutils.Truncate(block.Text, maxMessageChars))
			}
		case "tool_use":
			b.addToolCall(block.Name, block.Input, files)
		}
	}
}

func (b *Bundle) addToolCall(name string, rawInput json.RawMessage, files map[string]bool) {
	if name == "" {
		name = "unknown"
	}
	input := map[string]any{}
	if len(rawInput) > 0 {
		_ = json.Unmarshal(rawInput, &input)
	}
	b.ToolCalls = append(b.ToolCalls, ToolCall{Name: name, Input: input})

	if !fileModifyingTools[name] {
		return
	}
	for _, key := range filePathKeys {
		if path, ok := input[key].(string); ok && path != "" {
			files[path] = true
			return
		}
	}
}

// blockContentText extracts text from a tool_result content field, which is
// either a plain string or a list of text blocks.
func blockContentText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var blocks []ContentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	var parts []string
	for _, bl := range blocks {
		if bl.Type == "text" && strings.TrimSpace(bl.Text) != "" {
			parts = append(parts, strings.TrimSpace(bl.Text))
		}
	}
	return strings.Join(parts, "\n")
}
