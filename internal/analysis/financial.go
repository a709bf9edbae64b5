package analysis

import (
	"context"
	"fmt"
	"strings"

	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/ports"
)

// The financial analysis response contract, v1. The prompt below and
// parseImpact form a matched pair: the model is instructed to answer with
// exactly three labeled lines, and the parser recognizes exactly these
// labels. Changing either side means revving both together.
//
//	Industries: <comma-separated list, or "none">
//	Instruments: <comma-separated list, or "none">
//	Strength: one of none | low | medium | high
const financialSystemPrompt = "You are an expert financial analyst. Based on the provided news snippet, " +
	"extract the industries whose outlook it affects, the tradable instruments related to it " +
	"(stock tickers, crypto symbols, commodities), and the overall impact strength. " +
	"Respond with exactly three lines in this format and nothing else:\n" +
	"Industries: <comma-separated list, or \"none\">\n" +
	"Instruments: <comma-separated list, or \"none\">\n" +
	"Strength: one of none, low, medium, high"

// FinancialAnalyzer extracts financial impact from news snippets through a
// single inference call.
type FinancialAnalyzer struct {
	generator ports.Generator
}

var _ ports.Analyzer = (*FinancialAnalyzer)(nil)

// NewFinancialAnalyzer wires the inference client.
func NewFinancialAnalyzer(generator ports.Generator) *FinancialAnalyzer {
	return &FinancialAnalyzer{generator: generator}
}

// Analyze requests and parses the impact extraction. Partial responses are
// tolerated: a missing or malformed strength degrades to unknown and missing
// lists default to empty, because the remaining fields are independently
// useful. Only a response with none of the expected labels is an
// AnalysisError.
func (a *FinancialAnalyzer) Analyze(ctx context.Context, content string) (domain.FinancialImpact, error) {
	prompt := fmt.Sprintf("Analyze the financial impact of this news: %q", content)

	raw, err := a.generator.Generate(ctx, financialSystemPrompt, prompt)
	if err != nil {
		return domain.FinancialImpact{}, err
	}

	return parseImpact(raw)
}

func parseImpact(raw string) (domain.FinancialImpact, error) {
	impact := domain.FinancialImpact{
		Industries:  []string{},
		Instruments: []string{},
		Strength:    domain.StrengthUnknown,
	}

	labelsSeen := 0
	for _, line := range strings.Split(raw, "\n") {
		label, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		switch strings.ToLower(strings.TrimSpace(label)) {
		case "industries":
			labelsSeen++
			impact.Industries = splitList(value)
		case "instruments":
			labelsSeen++
			impact.Instruments = splitList(value)
		case "strength":
			labelsSeen++
			impact.Strength = parseStrength(value)
		}
	}

	if labelsSeen == 0 {
		return domain.FinancialImpact{}, &domain.AnalysisError{Got: raw}
	}

	return impact, nil
}

func splitList(value string) []string {
	items := []string{}
	for _, part := range strings.Split(value, ",") {
		entry := strings.Trim(strings.TrimSpace(part), `'"`)
		if entry == "" || strings.EqualFold(entry, "none") {
			continue
		}
		items = append(items, entry)
	}
	return items
}

func parseStrength(value string) domain.Strength {
	switch normalizeLabel(value) {
	case "none":
		return domain.StrengthNone
	case "low":
		return domain.StrengthLow
	case "medium":
		return domain.StrengthMedium
	case "high":
		return domain.StrengthHigh
	default:
		return domain.StrengthUnknown
	}
}
