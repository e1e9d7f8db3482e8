package keeper

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/theimaginaryfoundation/context-keeper/keeper/fileutils"
	"github.com/theimaginaryfoundation/context-keeper/keeper/provider"
)

// Generator produces a summary and its metadata from a content bundle. Two
// strategies: LLM-backed when an API key is configured, and a deterministic
// structured extraction that always succeeds. Any LLM failure falls back to
// the deterministic path; Generate never fails for a valid bundle, because
// the write path runs synchronously inside an interactive session.
type Generator struct {
	llm        summarizer
	llmTimeout time.Duration
	logf       func(format string, args ...any)
}

// NewGenerator selects the strategy from cfg: with an API key present the
// LLM is attempted first, otherwise only the deterministic path runs.
func NewGenerator(cfg Config, logf func(format string, args ...any)) *Generator {
	g := &Generator{llmTimeout: cfg.Summarizer.LLMTimeout(), logf: logf}
	if g.logf == nil {
		g.logf = func(string, ...any) {}
	}
	if cfg.Summarizer.APIKey != "" {
		g.llm = openAISummarizer{
			client: provider.NewClient(cfg.Summarizer.APIKey, cfg.Summarizer.BaseURL),
			model:  cfg.Summarizer.Model,
		}
	}
	return g
}

// Generate returns the summary text and derived metadata for the bundle.
func (g *Generator) Generate(ctx context.Context, bundle Bundle, info SessionInfo) (string, Metadata) {
	meta := Metadata{
		SessionID:     info.SessionID,
		Timestamp:     info.CreatedAt.Format(TimestampLayout),
		CreatedAt:     info.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Trigger:       info.Trigger,
		Cwd:           info.Cwd,
		FilesModified: bundle.FilesModified,
		MessageCount:  bundle.MessageCount,
		ToolCallCount: len(bundle.ToolCalls),
	}
	if meta.FilesModified == nil {
		meta.FilesModified = []string{}
	}

	if g.llm != nil {
		if ctx == nil {
			ctx = context.Background()
		}
		llmCtx, cancel := context.WithTimeout(ctx, g.llmTimeout)
		defer cancel()

		resp, err := g.llm.Summarize(llmCtx, bundle, info)
		if err == nil {
			summary := renderSummary(resp)
			meta.Topics = summaryTopics(resp.Tags, summary)
			return summary, meta
		}
		g.logf("LLM summarization failed, using structured extraction: %v", err)
	}

	summary, keywords := deterministicSummary(bundle, info)
	meta.Topics = keywords
	if len(meta.Topics) > 10 {
		meta.Topics = meta.Topics[:10]
	}
	return summary, meta
}

// summaryTopics derives topics from the structured tags, falling back to
// hashtags found in the rendered text.
func summaryTopics(tags []string, summary string) []string {
	topics := make([]string, 0, len(tags))
	seen := make(map[string]bool)
	add := func(t string) {
		t = strings.TrimPrefix(strings.TrimSpace(t), "#")
		if t == "" || seen[strings.ToLower(t)] {
			return
		}
		seen[strings.ToLower(t)] = true
		topics = append(topics, t)
	}
	for _, t := range tags {
		add(t)
	}
	if len(topics) == 0 {
		for _, m := range hashtagPattern.FindAllStringSubmatch(summary, -1) {
			add(m[1])
		}
	}
	if len(topics) > 10 {
		topics = topics[:10]
	}
	return topics
}

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

const (
	maxSampleRequests = 5
	maxToolUsageRows  = 10
	maxKeywords       = 15
)

// deterministicSummary is the structured-extraction strategy: no external
// calls, always succeeds. Returns the markdown summary and the extracted
// keywords, newest-frequency first.
func deterministicSummary(bundle Bundle, info SessionInfo) (string, []string) {
	var b strings.Builder

	b.WriteString("# Session Summary (Structured Extraction)\n\n")
	b.WriteString("## Metadata\n")
	fmt.Fprintf(&b, "- **Session ID:** %s\n", orUnknown(info.SessionID))
	fmt.Fprintf(&b, "- **Project:** %s\n", orUnknown(info.Cwd))
	fmt.Fprintf(&b, "- **Trigger:** %s\n", orUnknown(string(info.Trigger)))
	fmt.Fprintf(&b, "- **Timestamp:** %s\n", info.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	fmt.Fprintf(&b, "- **Total Messages:** %d\n", bundle.MessageCount)

	b.WriteString("\n## Files Modified\n")
	if len(bundle.FilesModified) == 0 {
		b.WriteString("- None tracked\n")
	} else {
		for _, f := range bundle.FilesModified {
			fmt.Fprintf(&b, "- `%s`\n", f)
		}
	}

	b.WriteString("\n## Tool Usage\n")
	usage := toolUsage(bundle.ToolCalls)
	if len(usage) == 0 {
		b.WriteString("- None tracked\n")
	} else {
		if len(usage) > maxToolUsageRows {
			usage = usage[:maxToolUsageRows]
		}
		for _, u := range usage {
			fmt.Fprintf(&b, "- %s: %d calls\n", u.name, u.count)
		}
	}

	b.WriteString("\n## Sample User Requests\n")
	if len(bundle.UserMessages) == 0 {
		b.WriteString("- None captured\n")
	} else {
		samples := bundle.UserMessages
		if len(samples) > maxSampleRequests {
			samples = samples[:maxSampleRequests]
		}
		for _, msg := range samples {
			fmt.Fprintf(&b, "- %s\n", fileutils.SanitizeNewlines(fileutils.Truncate(msg, 200)))
		}
	}

	keywords := extractKeywords(bundle.UserMessages, maxKeywords)
	b.WriteString("\n## Keywords\n")
	if len(keywords) == 0 {
		b.WriteString("None extracted\n")
	} else {
		b.WriteString(strings.Join(keywords, ", ") + "\n")
	}

	b.WriteString("\n---\n*Structured extraction; LLM-based summary unavailable (no API key or call failed).*\n")
	return b.String(), keywords
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}

type toolCount struct {
	name  string
	count int
}

// toolUsage tallies calls per tool, most used first, name as tiebreaker.
func toolUsage(calls []ToolCall) []toolCount {
	counts := make(map[string]int)
	for _, tc := range calls {
		counts[tc.Name]++
	}
	out := make([]toolCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, toolCount{name, count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

var wordPattern = regexp.MustCompile(`\b[a-zA-Z]{4,}\b`)

// keywordStopwords filters filler that frequency extraction would otherwise
// surface from conversational text.
var keywordStopwords = map[string]bool{
	"this": true, "that": true, "with": true, "from": true, "have": true,
	"what": true, "when": true, "where": true, "will": true, "would": true,
	"could": true, "should": true, "about": true, "there": true, "their": true,
	"then": true, "them": true, "they": true, "these": true, "those": true,
	"please": true, "want": true, "need": true, "like": true, "just": true,
	"also": true, "some": true, "more": true, "here": true, "into": true,
	"your": true, "make": true, "does": true, "been": true, "only": true,
}

// extractKeywords ranks words across user messages by frequency, most
// frequent first, alphabetical as tiebreaker.
func extractKeywords(userMessages []string, max int) []string {
	counts := make(map[string]int)
	for _, msg := range userMessages {
		for _, w := range wordPattern.FindAllString(strings.ToLower(msg), -1) {
			if keywordStopwords[w] {
				continue
			}
			counts[w]++
		}
	}
	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > max {
		words = words[:max]
	}
	return words
}
