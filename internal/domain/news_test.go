package domain

import (
	"strings"
	"testing"
)

func TestFingerprintStable(t *testing.T) {
	t.Parallel()

	content := "Central bank raises rates by 25bps"
	first := Fingerprint(content)
	second := Fingerprint(content)

	if first != second {
		t.Fatalf("fingerprint not stable: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}
	if first == Fingerprint(content+" ") {
		t.Fatal("distinct contents produced the same fingerprint")
	}
}

func TestCategoriesForDisjoint(t *testing.T) {
	t.Parallel()

	opinion := map[string]bool{}
	for _, c := range CategoriesFor(AttributeOpinion) {
		opinion[c] = true
	}
	for _, c := range CategoriesFor(AttributeFact) {
		if opinion[c] {
			t.Fatalf("category %q appears in both vocabularies", c)
		}
	}

	if CategoriesFor(AttributeUnclassified) != nil {
		t.Fatal("unclassified attribute must have no vocabulary")
	}
}

func TestNewClassification(t *testing.T) {
	t.Parallel()

	cls, err := NewClassification(AttributeFact, "market_dynamics")
	if err != nil {
		t.Fatalf("valid classification rejected: %v", err)
	}
	if cls.Attribute != AttributeFact || cls.Category != "market_dynamics" {
		t.Fatalf("unexpected classification: %+v", cls)
	}

	// Opinion categories must not be accepted for facts.
	if _, err := NewClassification(AttributeFact, "market_analysis"); err == nil {
		t.Fatal("fact with opinion category was accepted")
	}
	if _, err := NewClassification(AttributeUnclassified, "market_dynamics"); err == nil {
		t.Fatal("unclassified attribute accepted a category")
	}
	if _, err := NewClassification(AttributeOpinion, ""); err == nil {
		t.Fatal("empty category was accepted")
	}
}

func TestCategoryNamesAreNormalized(t *testing.T) {
	t.Parallel()

	for _, c := range append(append([]string{}, FactCategories...), OpinionCategories...) {
		if c != strings.ToLower(c) || strings.Contains(c, " ") {
			t.Fatalf("category %q is not lower_snake_case", c)
		}
	}
}
