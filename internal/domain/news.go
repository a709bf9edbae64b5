package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// NewsItem is a raw flash scraped from a news site, before any enrichment.
type NewsItem struct {
	Content     string
	PublishedAt time.Time
}

// Fingerprint returns the dedup key for the item content.
func Fingerprint(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Attribute tells whether a news snippet states facts or voices opinions.
type Attribute string

const (
	AttributeFact         Attribute = "fact"
	AttributeOpinion      Attribute = "opinion"
	AttributeUnclassified Attribute = "unclassified"
)

// Stage enumerates pipeline milestones persisted per record.
type Stage string

const (
	StageIngested   Stage = "ingested"
	StageClassified Stage = "classified"
	StageAnalyzed   Stage = "analyzed"
	StageFailed     Stage = "failed"
)

// Strength grades the expected market impact of a news item.
type Strength string

const (
	StrengthNone    Strength = "none"
	StrengthLow     Strength = "low"
	StrengthMedium  Strength = "medium"
	StrengthHigh    Strength = "high"
	StrengthUnknown Strength = "unknown"
)

// FactCategories is the sub-category vocabulary for factual news.
var FactCategories = []string{
	"political_policies",
	"data_indicators",
	"technology_news",
	"market_dynamics",
	"corporate_news",
	"geopolitical_conflicts",
	"financial_innovation",
	"risk_events",
	"event_plan",
}

// OpinionCategories is the sub-category vocabulary for opinion news.
var OpinionCategories = []string{
	"economic_interpretation",
	"market_analysis",
	"policy_interpretation",
	"expert_opinions",
	"investor_sentiment",
	"future_trends_prediction",
	"risk_assessment",
}

// CategoriesFor returns the vocabulary valid for the given attribute.
func CategoriesFor(attr Attribute) []string {
	switch attr {
	case AttributeFact:
		return FactCategories
	case AttributeOpinion:
		return OpinionCategories
	default:
		return nil
	}
}

// Classification pairs an attribute with a category from that attribute's
// vocabulary. Values are built through NewClassification only, so a fact can
// never carry an opinion category.
type Classification struct {
	Attribute Attribute
	Category  string
}

// NewClassification validates that category belongs to the attribute's
// vocabulary.
func NewClassification(attr Attribute, category string) (Classification, error) {
	for _, c := range CategoriesFor(attr) {
		if c == category {
			return Classification{Attribute: attr, Category: category}, nil
		}
	}
	return Classification{}, fmt.Errorf("category %q is not valid for attribute %q", category, attr)
}

// FinancialImpact holds the extraction result of the financial analysis stage.
type FinancialImpact struct {
	Industries  []string
	Instruments []string
	Strength    Strength
}

// NewsRecord is the persisted row for a unique content fingerprint.
type NewsRecord struct {
	ID            int64
	Fingerprint   string
	Content       string
	PublishedAt   time.Time
	Attribute     Attribute
	Category      string
	Impact        FinancialImpact
	Stage         Stage
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
