// Package intent maps free text to the coarse action categories the booking
// dialogue understands. The classifier is a pluggable boolean capability:
// given a message, it answers BOOK or OTHER. A deterministic keyword matcher
// backs the external model so classifier outages never reach the user.
package intent

import (
	"context"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Intent is a coarse action category.
type Intent string

const (
	Book  Intent = "BOOK"
	Other Intent = "OTHER"
)

// Classifier decides whether a message expresses booking intent.
// Implementations must honor ctx for cancellation and deadlines.
type Classifier interface {
	Classify(ctx context.Context, message string) (Intent, error)
}

// bookWords are the deterministic fallback vocabulary; match is
// case-insensitive substring.
var bookWords = []string{
	"book", "booking", "appointment", "gp", "doctor",
	"see a doctor", "see gp", "schedule", "visit", "consultation",
}

// Keyword is the local fallback classifier. It never fails.
type Keyword struct{}

// Classify returns Book when the message contains any booking keyword.
func (Keyword) Classify(_ context.Context, message string) (Intent, error) {
	m := strings.ToLower(message)
	for _, w := range bookWords {
		if strings.Contains(m, w) {
			return Book, nil
		}
	}
	return Other, nil
}

const classifierPrompt = `You are an intent classifier for an appointment booking system.

Return BOOK if the user wants to:
- see a doctor or other professional
- book or request an appointment, session, or viewing
- schedule a visit

Return OTHER only if they are NOT asking to book anything.

Reply with exactly one word: BOOK or OTHER.

Message: `

// Gemini classifies intent with a Google generative model.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini builds a Gemini classifier for the given API key and model name.
// The caller owns the underlying connection and should Close it on shutdown.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Gemini{client: client, model: client.GenerativeModel(modelName)}, nil
}

// Close releases the underlying client connection.
func (g *Gemini) Close() error { return g.client.Close() }

// Classify sends the message to the model and parses its one-word verdict.
// Anything other than a clear BOOK answer is treated as Other.
func (g *Gemini) Classify(ctx context.Context, message string) (Intent, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(classifierPrompt+message))
	if err != nil {
		return Other, err
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		break
	}
	if strings.Contains(strings.ToUpper(sb.String()), string(Book)) {
		return Book, nil
	}
	return Other, nil
}

// WithFallback wraps a primary classifier so that errors (network, quota,
// deadline) recover through the keyword matcher instead of surfacing. A nil
// primary runs on the fallback alone.
type WithFallback struct {
	Primary  Classifier
	Fallback Keyword
}

// Classify tries the primary classifier and falls back locally on error.
func (w WithFallback) Classify(ctx context.Context, message string) (Intent, error) {
	if w.Primary != nil {
		if in, err := w.Primary.Classify(ctx, message); err == nil {
			return in, nil
		}
	}
	return w.Fallback.Classify(ctx, message)
}
