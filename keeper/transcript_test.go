package keeper

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTranscript(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcript.jsonl")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}
	return path
}

func TestReadTranscript_ParsesBothContentShapes(t *testing.T) {
	t.Parallel()

	path := writeTranscript(t,
		`{"type":"user","message":{"role":"user","content":"fix the login bug"}}`,
		`{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"Working on it."}]}}`,
		`{"type":"tool_use","name":"Edit","input":{"file_path":"src/auth.py"}}`,
	)

	messages, err := ReadTranscript(path, nil)
	if err != nil {
		t.Fatalf("ReadTranscript: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("len(messages)=%d", len(messages))
	}
	if messages[0].Message.Content.Text != "fix the login bug" {
		t.Fatalf("string content=%q", messages[0].Message.Content.Text)
	}
	if len(messages[1].Message.Content.Blocks) != 1 || messages[1].Message.Content.Blocks[0].Text != "Working on it." {
		t.Fatalf("block content=%+v", messages[1].Message.Content.Blocks)
	}
	if messages[2].Type != "tool_use" || messages[2].Name != "Edit" {
		t.Fatalf("top-level tool_use=%+v", messages[2])
	}
}

func TestReadTranscript_SkipsMalformedLines(t *testing.T) {
	t.Parallel()

	path := writeTranscript(t,
		`{"type":"user","message":{"role":"user","content":"hello"}}`,
		`{not json`,
		``,
		`{"type":"user","message":{"role":"user","content":"world"}}`,
	)

	var warnings int
	messages, err := ReadTranscript(path, func(string, ...any) { warnings++ })
	if err != nil {
		t.Fatalf("ReadTranscript: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("len(messages)=%d", len(messages))
	}
	if warnings != 1 {
		t.Fatalf("warnings=%d", warnings)
	}
}

func TestReadTranscript_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := ReadTranscript(filepath.Join(t.TempDir(), "missing.jsonl"), nil); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestReadTranscript_PreservesOrder(t *testing.T) {
	t.Parallel()

	path := writeTranscript(t,
		`{"type":"user","message":{"role":"user","content":"first"}}`,
		`{"type":"user","message":{"role":"user","content":"second"}}`,
		`{"type":"user","message":{"role":"user","content":"third"}}`,
	)

	messages, err := ReadTranscript(path, nil)
	if err != nil {
		t.Fatalf("ReadTranscript: %v", err)
	}
	want := []string{"first", "second", "third"}
	for i, w := range want {
		if messages[i].Message.Content.Text != w {
			t.Fatalf("messages[%d]=%q want %q", i, messages[i].Message.Content.Text, w)
		}
	}
}
