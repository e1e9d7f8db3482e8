package main

import (
	"encoding/json"
	"io"
	"strings"
)

// hookInput is the JSON payload the host writes to stdin for both hook
// events. Fields not relevant to an event are simply absent.
type hookInput struct {
	SessionID          string `json:"session_id"`
	TranscriptPath     string `json:"transcript_path"`
	Cwd                string `json:"cwd"`
	Trigger            string `json:"trigger"`
	CustomInstructions string `json:"custom_instructions"`
	EventType          string `json:"event_type"`
}

// readHookInput parses the stdin payload. Empty input yields a zero value
// rather than an error; callers decide what is required for their event.
func readHookInput(r io.Reader) (hookInput, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return hookInput{}, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return hookInput{}, nil
	}
	var in hookInput
	if err := json.Unmarshal(data, &in); err != nil {
		return hookInput{}, err
	}
	return in, nil
}
