package keeper

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// MaxLineSize is the scanner buffer cap for transcript lines. Lines carrying
// long assistant turns or large tool results exceed the default 64KB.
const MaxLineSize = 4 * 1024 * 1024

// RawMessage is one parsed transcript line. The host writes two shapes: the
// current format nests a message object with role + content blocks, the older
// format puts tool_use fields at the top level.
type RawMessage struct {
	Type    string          `json:"type"`
	Message *MessagePayload `json:"message,omitempty"`

	// Older top-level tool_use form.
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// MessagePayload is the nested message field of a transcript line.
type MessagePayload struct {
	Role    string       `json:"role"`
	Content ContentField `json:"content"`
}

// ContentField accepts both content shapes: a plain string or a block list.
type ContentField struct {
	Text   string
	Blocks []ContentBlock
}

func (c *ContentField) UnmarshalJSON(data []byte) error {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &c.Text)
	}
	return json.Unmarshal(data, &c.Blocks)
}

// ContentBlock is one block within a message's content list.
type ContentBlock struct {
	Type    string          `json:"type"`
	Text    string          `json:"text,omitempty"`
	Name    string          `json:"name,omitempty"`
	Input   json.RawMessage `json:"input,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}

// ReadTranscript parses a JSONL transcript file into its ordered messages.
// Malformed lines are skipped through warnf; only an unreadable file fails.
func ReadTranscript(path string, warnf func(format string, args ...any)) ([]RawMessage, error) {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	var messages []RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var msg RawMessage
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			warnf("skipping malformed transcript line %d: %v", lineNum, err)
			continue
		}
		messages = append(messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	return messages, nil
}
