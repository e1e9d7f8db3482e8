package keeper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"

	"github.com/theimaginaryfoundation/context-keeper/keeper/fileutils"
	"github.com/theimaginaryfoundation/context-keeper/keeper/provider"
)

// sessionSummary is the structured response of the LLM-backed strategy. Its
// fields are the six sections of the rendered summary.
type sessionSummary struct {
	TopicsDiscussed     []string `json:"topics_discussed"`
	CodeChanges         []string `json:"code_changes"`
	DecisionsMade       []string `json:"decisions_made"`
	KeyOutcomes         []string `json:"key_outcomes"`
	ContinuationContext string   `json:"continuation_context"`
	Tags                []string `json:"tags"`
}

var sessionSummarySchema = provider.GenerateSchema[sessionSummary]()

// summarizer is the LLM boundary, split out so tests can force failures.
type summarizer interface {
	Summarize(ctx context.Context, bundle Bundle, info SessionInfo) (sessionSummary, error)
}

type openAISummarizer struct {
	client *openai.Client
	model  string
}

func (s openAISummarizer) Summarize(ctx context.Context, bundle Bundle, info SessionInfo) (sessionSummary, error) {
	if s.client == nil {
		return sessionSummary{}, errors.New("openAISummarizer: client is nil")
	}
	if s.model == "" {
		return sessionSummary{}, errors.New("openAISummarizer: model is empty")
	}

	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "SessionSummary",
			Schema:      sessionSummarySchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Session summary JSON"),
			Type:        "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:           s.model,
		MaxOutputTokens: openai.Int(4000),
		Instructions:    openai.String(summaryPrompt),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(buildSummaryInput(bundle, info), responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	resp, err := provider.CallWithRetry(ctx, s.client, params)
	if err != nil {
		return sessionSummary{}, err
	}

	var out sessionSummary
	if err := decodeModelJSON(resp.OutputText(), &out); err != nil {
		return sessionSummary{}, fmt.Errorf("unmarshal summary: %w", err)
	}
	out.ContinuationContext = strings.TrimSpace(out.ContinuationContext)
	return out, nil
}

// Input size caps keep the single request inside the model's context even
// for long sessions.
const (
	maxPromptMessages  = 20
	maxPromptToolCalls = 50
	maxPromptChars     = 3000
)

func buildSummaryInput(bundle Bundle, info SessionInfo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "session:\nsession_id=%s\nproject=%s\ntrigger=%s\ntimestamp=%s\ntotal_messages=%d\n\n",
		info.SessionID, info.Cwd, info.Trigger, info.CreatedAt.Format(TimestampLayout), bundle.MessageCount)

	if info.CustomInstructions != "" {
		fmt.Fprintf(&b, "additional instructions from the user:\n%s\n\n", fileutils.Truncate(info.CustomInstructions, 500))
	}

	writeSection := func(name string, items []string, maxItems, maxChars int) {
		if len(items) > maxItems {
			items = items[len(items)-maxItems:]
		}
		fmt.Fprintf(&b, "%s:\n", name)
		total := 0
		for _, item := range items {
			row := "- " + fileutils.SanitizeNewlines(fileutils.Truncate(item, 2000)) + "\n"
			if total+len(row) > maxChars {
				b.WriteString("... [truncated]\n")
				break
			}
			b.WriteString(row)
			total += len(row)
		}
		b.WriteString("\n")
	}

	writeSection("user_messages", bundle.UserMessages, maxPromptMessages, maxPromptChars)
	writeSection("assistant_messages", bundle.AssistantMessages, maxPromptMessages, maxPromptChars)

	b.WriteString("tool_calls:\n")
	calls := bundle.ToolCalls
	if len(calls) > maxPromptToolCalls {
		calls = calls[len(calls)-maxPromptToolCalls:]
	}
	total := 0
	for _, tc := range calls {
		args, _ := json.Marshal(tc.Input)
		row := fmt.Sprintf("- %s %s\n", tc.Name, fileutils.Truncate(string(args), 300))
		if total+len(row) > maxPromptChars {
			b.WriteString("... [truncated]\n")
			break
		}
		b.WriteString(row)
		total += len(row)
	}
	b.WriteString("\n")

	b.WriteString("files_modified:\n")
	for _, f := range bundle.FilesModified {
		fmt.Fprintf(&b, "- %s\n", f)
	}

	return b.String()
}

// renderSummary turns the structured response into the six-section markdown
// artifact stored as summary.md.
func renderSummary(s sessionSummary) string {
	var b strings.Builder
	b.WriteString("# Session Summary\n")

	writeList := func(heading string, items []string) {
		fmt.Fprintf(&b, "\n## %s\n", heading)
		if len(items) == 0 {
			b.WriteString("- None noted\n")
			return
		}
		for _, item := range items {
			fmt.Fprintf(&b, "- %s\n", strings.TrimSpace(item))
		}
	}

	writeList("Topics Discussed", s.TopicsDiscussed)
	writeList("Code Changes", s.CodeChanges)
	writeList("Decisions Made", s.DecisionsMade)
	writeList("Key Outcomes", s.KeyOutcomes)

	b.WriteString("\n## Context for Continuation\n")
	if s.ContinuationContext == "" {
		b.WriteString("None noted\n")
	} else {
		b.WriteString(s.ContinuationContext + "\n")
	}

	b.WriteString("\n## Tags\n")
	if len(s.Tags) == 0 {
		b.WriteString("None\n")
	} else {
		var tags []string
		for _, t := range s.Tags {
			t = strings.TrimPrefix(strings.TrimSpace(t), "#")
			if t != "" {
				tags = append(tags, "#"+t)
			}
		}
		b.WriteString(strings.Join(tags, " ") + "\n")
	}

	return b.String()
}

// decodeModelJSON unmarshals JSON from a model response, tolerating wrapper
// text around the object.
func decodeModelJSON(outputText string, v any) error {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return io.ErrUnexpectedEOF
	}

	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("no JSON object found in model output (len=%d)", len(s))
	}

	sub := s[start : end+1]
	if err := json.Unmarshal([]byte(sub), v); err != nil {
		return fmt.Errorf("failed to unmarshal extracted JSON (len=%d): %w", len(sub), err)
	}
	return nil
}
