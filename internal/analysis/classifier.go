package analysis

import (
	"context"
	"fmt"
	"strings"

	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/ports"
)

const attributeSystemPrompt = "You are an expert news analyst. Your task is to classify the provided news snippet. " +
	"Respond with a single word: either 'fact' if the snippet primarily states objective events or information, " +
	"or 'opinion' if it primarily expresses views, beliefs, interpretations, or sentiments. " +
	"Do not provide any explanation or additional text."

// Classifier drives the two-stage attribution over a Generator. Attribute and
// category are separate calls because the category vocabulary depends on the
// attribute outcome.
type Classifier struct {
	generator ports.Generator
}

var _ ports.Classifier = (*Classifier)(nil)

// NewClassifier wires the inference client.
func NewClassifier(generator ports.Generator) *Classifier {
	return &Classifier{generator: generator}
}

// ClassifyAttribute resolves fact vs opinion. Output matching neither label is
// a ClassificationError, never coerced.
func (c *Classifier) ClassifyAttribute(ctx context.Context, content string) (domain.Attribute, error) {
	prompt := fmt.Sprintf("Classify the following news snippet: %q", content)

	raw, err := c.generator.Generate(ctx, attributeSystemPrompt, prompt)
	if err != nil {
		return domain.AttributeUnclassified, err
	}

	switch normalizeLabel(raw) {
	case "fact":
		return domain.AttributeFact, nil
	case "opinion":
		return domain.AttributeOpinion, nil
	default:
		return domain.AttributeUnclassified, &domain.ClassificationError{Want: "fact|opinion", Got: raw}
	}
}

// ClassifyCategory resolves the sub-category from the attribute's vocabulary.
func (c *Classifier) ClassifyCategory(ctx context.Context, content string, attr domain.Attribute) (string, error) {
	categories := domain.CategoriesFor(attr)
	if len(categories) == 0 {
		return "", fmt.Errorf("no category vocabulary for attribute %q", attr)
	}

	var kind string
	if attr == domain.AttributeFact {
		kind = "a statement of fact"
	} else {
		kind = "an opinion"
	}

	system := fmt.Sprintf("You are an expert news analyst. Given a news snippet that is %s, "+
		"classify it into one of the following categories. Respond with only the category name. "+
		"Do not add any explanation or other text.\n\nCategories: %s",
		kind, strings.Join(categories, ", "))
	prompt := fmt.Sprintf("Classify this news snippet: %q", content)

	raw, err := c.generator.Generate(ctx, system, prompt)
	if err != nil {
		return "", err
	}

	normalized := normalizeLabel(raw)
	for _, category := range categories {
		if normalized == category {
			return category, nil
		}
	}

	return "", &domain.ClassificationError{Want: strings.Join(categories, "|"), Got: raw}
}

// normalizeLabel strips the decoration models like to add around single-word
// answers: surrounding whitespace, quotes, and a trailing period.
func normalizeLabel(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.Trim(s, `'"`)
	s = strings.TrimSuffix(s, ".")
	return strings.TrimSpace(s)
}
