package intent

import (
	"context"
	"errors"
	"testing"
)

func TestKeyword_BookPhrases(t *testing.T) {
	k := Keyword{}
	book := []string{
		"I want to book an appointment",
		"can I see a doctor?",
		"BOOKING please",
		"schedule a visit",
		"need a consultation",
		"see gp",
	}
	for _, msg := range book {
		in, err := k.Classify(context.Background(), msg)
		if err != nil {
			t.Fatalf("Classify(%q): %v", msg, err)
		}
		if in != Book {
			t.Fatalf("Classify(%q): got %v want Book", msg, in)
		}
	}
}

func TestKeyword_OtherPhrases(t *testing.T) {
	k := Keyword{}
	other := []string{
		"what are your opening hours?",
		"hello",
		"where are you located",
	}
	for _, msg := range other {
		in, err := k.Classify(context.Background(), msg)
		if err != nil {
			t.Fatalf("Classify(%q): %v", msg, err)
		}
		if in != Other {
			t.Fatalf("Classify(%q): got %v want Other", msg, in)
		}
	}
}

// failing always errors, standing in for an unreachable remote model.
type failing struct{}

func (failing) Classify(context.Context, string) (Intent, error) {
	return Other, errors.New("quota exceeded")
}

// fixed returns a canned verdict.
type fixed struct{ in Intent }

func (f fixed) Classify(context.Context, string) (Intent, error) { return f.in, nil }

func TestWithFallback_PrimaryWins(t *testing.T) {
	w := WithFallback{Primary: fixed{in: Book}}
	in, err := w.Classify(context.Background(), "gibberish")
	if err != nil || in != Book {
		t.Fatalf("got (%v, %v)", in, err)
	}
}

func TestWithFallback_RecoversThroughKeywords(t *testing.T) {
	w := WithFallback{Primary: failing{}}

	in, err := w.Classify(context.Background(), "book an appointment")
	if err != nil {
		t.Fatalf("fallback must not surface the primary error: %v", err)
	}
	if in != Book {
		t.Fatalf("got %v want Book", in)
	}

	in, err = w.Classify(context.Background(), "what are your hours")
	if err != nil || in != Other {
		t.Fatalf("got (%v, %v)", in, err)
	}
}

func TestWithFallback_NilPrimary(t *testing.T) {
	w := WithFallback{}
	in, err := w.Classify(context.Background(), "see a doctor")
	if err != nil || in != Book {
		t.Fatalf("got (%v, %v)", in, err)
	}
}
