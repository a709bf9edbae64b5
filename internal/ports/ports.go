package ports

import (
	"context"
	"time"

	"NewsAnalyzer/internal/domain"
)

// NewsSource pulls fresh flash items from upstream sites. One call covers one
// scrape cycle: a finite batch, restartable on the next cycle.
type NewsSource interface {
	FetchLatest(ctx context.Context, now time.Time) ([]domain.NewsItem, error)
}

// NewsRepository persists records keyed by content fingerprint and owns all
// stage transitions.
type NewsRepository interface {
	Exists(ctx context.Context, fingerprint string) (bool, error)
	Insert(ctx context.Context, item domain.NewsItem) (domain.NewsRecord, error)
	UpdateClassification(ctx context.Context, id int64, cls domain.Classification) error
	UpdateFinancialAnalysis(ctx context.Context, id int64, impact domain.FinancialImpact) error
	MarkFailed(ctx context.Context, id int64, reason string) error
	ListUnfinished(ctx context.Context, limit int) ([]domain.NewsRecord, error)
}

// Generator sends a prompt to the model endpoint and returns the completion.
// Stateless; retry policy belongs to the caller.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Classifier resolves the fact/opinion attribute and the attribute-scoped
// sub-category for a news snippet.
type Classifier interface {
	ClassifyAttribute(ctx context.Context, content string) (domain.Attribute, error)
	ClassifyCategory(ctx context.Context, content string, attr domain.Attribute) (string, error)
}

// Analyzer extracts the financial impact of a news snippet.
type Analyzer interface {
	Analyze(ctx context.Context, content string) (domain.FinancialImpact, error)
}

// Notifier publishes run summaries to an external channel (Telegram, etc.).
type Notifier interface {
	PublishSummary(ctx context.Context, summary string) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
