package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatCreatedAt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"2026-08-26T10:30:00Z", "2026-08-26 10:30"},
		{"2026-08-26T10:30:00+02:00", "2026-08-26 10:30"},
		{"garbage-but-long-enough", "garbage-but-long"},
		{"short", "short"},
		{"", "unknown"},
	}
	for _, tc := range cases {
		if got := formatCreatedAt(tc.in); got != tc.want {
			t.Errorf("formatCreatedAt(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestShortID(t *testing.T) {
	t.Parallel()

	if got := shortID("abc123def456"); got != "abc123de..." {
		t.Errorf("got %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("got %q", got)
	}
}

func TestCLIRoundTrip(t *testing.T) {
	t.Setenv("CONTEXT_KEEPER_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	project := t.TempDir()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(project); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			t.Errorf("restore wd: %v", err)
		}
	})

	transcript := filepath.Join(t.TempDir(), "transcript.jsonl")
	lines := []string{
		`{"type":"user","message":{"role":"user","content":"Refactor the cache layer"}}`,
		`{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","name":"Write","input":{"file_path":"cache.go"}}]}}`,
	}
	if err := os.WriteFile(transcript, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}

	var stdout, stderr bytes.Buffer
	args := []string{"-transcript", transcript, "-session", "cli-session-1", "-project", project}
	if code := runSave(args, &stdout, &stderr); code != 0 {
		t.Fatalf("save exit=%d stderr=%s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "saved cli-session-1/") {
		t.Fatalf("save stdout=%q", stdout.String())
	}

	stdout.Reset()
	if code := runList(nil, &stdout, &stderr); code != 0 {
		t.Fatalf("list exit=%d stderr=%s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "| 1 | cli-sess... |") {
		t.Fatalf("list stdout:\n%s", stdout.String())
	}

	stdout.Reset()
	if code := runLoad([]string{"cli-sess"}, &stdout, &stderr); code != 0 {
		t.Fatalf("load exit=%d stderr=%s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "## Context Summary Loaded") {
		t.Fatalf("load stdout:\n%s", stdout.String())
	}
	if !strings.Contains(stdout.String(), "cache.go") {
		t.Fatalf("summary should mention modified file:\n%s", stdout.String())
	}

	stdout.Reset()
	if code := runLoad([]string{"no-such"}, &stdout, &stderr); code != 0 {
		t.Fatalf("load miss exit=%d", code)
	}
	if !strings.Contains(stdout.String(), `No context found for "no-such".`) {
		t.Fatalf("load miss stdout:\n%s", stdout.String())
	}
	if !strings.Contains(stdout.String(), "cli-session-1") {
		t.Fatalf("candidates missing:\n%s", stdout.String())
	}

	stdout.Reset()
	if code := runSessions(&stdout, &stderr); code != 0 {
		t.Fatalf("sessions exit=%d stderr=%s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "**Total:** 1 sessions with 1 context summaries") {
		t.Fatalf("sessions stdout:\n%s", stdout.String())
	}
}

func TestRunSave_MissingTranscriptFlag(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if code := runSave(nil, &stdout, &stderr); code != 2 {
		t.Fatalf("exit=%d", code)
	}
	if !strings.Contains(stderr.String(), "missing -transcript") {
		t.Fatalf("stderr=%q", stderr.String())
	}
}
