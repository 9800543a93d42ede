package symptom

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/carewatch/carewatch/internal/platform/llm"
)

// TranscriptEntry is one conversation turn handed to the classifier.
type TranscriptEntry struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Result is the outcome of a classification attempt. Classification is
// fail-soft: a gateway or parse failure degrades to the default snapshot
// with the reason recorded, and never blocks the caller.
type Result struct {
	Snapshot      Snapshot
	FailureReason string
}

// Failed reports whether the snapshot is the degraded default rather
// than a genuine classification.
func (r Result) Failed() bool {
	return r.FailureReason != ""
}

// Classifier asks the language model which symptom categories a day's
// transcript reports.
type Classifier struct {
	client llm.Client
	prompt string
	model  string
	logger zerolog.Logger
}

func NewClassifier(client llm.Client, prompt, model string, logger zerolog.Logger) *Classifier {
	return &Classifier{client: client, prompt: prompt, model: model, logger: logger}
}

// Classify serializes the transcript, requests a structured analysis, and
// parses the returned JSON into a snapshot. Log ids in the reply are
// advisory: they are not validated against the transcript.
func (c *Classifier) Classify(ctx context.Context, transcript []TranscriptEntry) Result {
	serialized, err := json.Marshal(transcript)
	if err != nil {
		return c.fail("serialize transcript: " + err.Error())
	}

	reply, err := c.client.Complete(ctx, llm.Request{
		Model: c.model,
		Messages: []llm.Message{
			{Role: "system", Content: c.prompt},
			{Role: "user", Content: fmt.Sprintf("Here is the conversation to analyze: %s", serialized)},
		},
		Temperature: 0,
		MaxTokens:   1000,
	})
	if err != nil {
		return c.fail("analysis request: " + err.Error())
	}

	raw, err := extractJSON(reply)
	if err != nil {
		return c.fail(err.Error())
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return c.fail("parse analysis: " + err.Error())
	}

	return Result{Snapshot: Normalize(snap)}
}

func (c *Classifier) fail(reason string) Result {
	c.logger.Warn().Str("reason", reason).Msg("symptom classification degraded to default")
	return Result{Snapshot: Default(), FailureReason: reason}
}

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// extractJSON locates the structured payload in a model reply: a fenced
// ```json block when present, otherwise the first balanced top-level
// object literal.
func extractJSON(s string) (string, error) {
	if m := fencedJSON.FindStringSubmatch(s); m != nil {
		return m[1], nil
	}

	start := strings.Index(s, "{")
	if start < 0 {
		return "", fmt.Errorf("no JSON object in analysis reply")
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON object in analysis reply")
}
