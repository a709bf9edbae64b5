package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"NewsAnalyzer/internal/domain"
)

// fakeGenerator replays scripted completions and records prompts.
type fakeGenerator struct {
	responses []string
	err       error
	systems   []string
	prompts   []string
}

func (f *fakeGenerator) Generate(_ context.Context, system, prompt string) (string, error) {
	f.systems = append(f.systems, system)
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("fakeGenerator: no scripted response")
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func TestClassifyAttribute(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		response string
		want     domain.Attribute
	}{
		{"plain fact", "fact", domain.AttributeFact},
		{"plain opinion", "opinion", domain.AttributeOpinion},
		{"quoted uppercase", `"Fact"`, domain.AttributeFact},
		{"trailing period", "opinion.", domain.AttributeOpinion},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			gen := &fakeGenerator{responses: []string{tc.response}}
			c := NewClassifier(gen)

			got, err := c.ClassifyAttribute(context.Background(), "some news")
			if err != nil {
				t.Fatalf("ClassifyAttribute error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestClassifyAttributeAmbiguous(t *testing.T) {
	t.Parallel()

	// "this is a fact" contains the label but must not be coerced.
	gen := &fakeGenerator{responses: []string{"this is a fact"}}
	c := NewClassifier(gen)

	_, err := c.ClassifyAttribute(context.Background(), "some news")
	var clsErr *domain.ClassificationError
	if !errors.As(err, &clsErr) {
		t.Fatalf("expected ClassificationError, got %v", err)
	}
}

func TestClassifyAttributePropagatesInferenceError(t *testing.T) {
	t.Parallel()

	infErr := &domain.InferenceError{Op: "request", Err: errors.New("connection refused")}
	gen := &fakeGenerator{err: infErr}
	c := NewClassifier(gen)

	_, err := c.ClassifyAttribute(context.Background(), "some news")
	var got *domain.InferenceError
	if !errors.As(err, &got) {
		t.Fatalf("expected InferenceError passthrough, got %v", err)
	}
}

func TestClassifyCategory(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{responses: []string{"Market_Dynamics"}}
	c := NewClassifier(gen)

	got, err := c.ClassifyCategory(context.Background(), "some news", domain.AttributeFact)
	if err != nil {
		t.Fatalf("ClassifyCategory error: %v", err)
	}
	if got != "market_dynamics" {
		t.Fatalf("unexpected category: %s", got)
	}

	// The prompt must carry the fact vocabulary, not the opinion one.
	if !strings.Contains(gen.systems[0], "market_dynamics") {
		t.Fatalf("fact vocabulary missing from prompt: %s", gen.systems[0])
	}
	if strings.Contains(gen.systems[0], "investor_sentiment") {
		t.Fatalf("opinion vocabulary leaked into fact prompt: %s", gen.systems[0])
	}
}

func TestClassifyCategoryOutOfVocabulary(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{responses: []string{"sports"}}
	c := NewClassifier(gen)

	_, err := c.ClassifyCategory(context.Background(), "some news", domain.AttributeOpinion)
	var clsErr *domain.ClassificationError
	if !errors.As(err, &clsErr) {
		t.Fatalf("expected ClassificationError, got %v", err)
	}
}

func TestClassifyCategoryUnresolvedAttribute(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{responses: []string{"market_dynamics"}}
	c := NewClassifier(gen)

	if _, err := c.ClassifyCategory(context.Background(), "some news", domain.AttributeUnclassified); err == nil {
		t.Fatal("expected error for unresolved attribute")
	}
	if len(gen.prompts) != 0 {
		t.Fatal("no inference call should be made without a vocabulary")
	}
}
