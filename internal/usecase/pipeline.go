package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/ports"
)

// StagePolicy bounds one pipeline stage: a per-attempt timeout, a transient
// attempt budget with exponential backoff, and a smaller re-prompt budget for
// content-level model failures.
type StagePolicy struct {
	Timeout   time.Duration
	Attempts  int
	Reprompts int
	Backoff   time.Duration
}

func (p StagePolicy) normalized() StagePolicy {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.Reprompts < 0 {
		p.Reprompts = 0
	}
	return p
}

// Summary aggregates the outcome counts of one pipeline run.
type Summary struct {
	Fetched    int
	Resumed    int
	Skipped    int
	Classified int
	Analyzed   int
	Failed     int
}

// String renders the summary for logs and notifications.
func (s Summary) String() string {
	return fmt.Sprintf("fetched=%d resumed=%d skipped=%d classified=%d analyzed=%d failed=%d",
		s.Fetched, s.Resumed, s.Skipped, s.Classified, s.Analyzed, s.Failed)
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source       ports.NewsSource
	Repository   ports.NewsRepository
	Classifier   ports.Classifier
	Analyzer     ports.Analyzer
	Workers      int
	BacklogLimit int
	Classify     StagePolicy
	Analyze      StagePolicy
	Logger       *slog.Logger
}

// Pipeline implements the ingestion-and-enrichment workflow: dedup on content
// fingerprint, two-stage classification, financial-impact extraction, with
// per-stage persistence. processing_stage in the store is the single source
// of truth, so repeated runs resume rather than repeat work.
type Pipeline struct {
	source       ports.NewsSource
	repository   ports.NewsRepository
	classifier   ports.Classifier
	analyzer     ports.Analyzer
	workers      int
	backlogLimit int
	classify     StagePolicy
	analyze      StagePolicy
	logger       *slog.Logger

	mu      sync.Mutex
	summary Summary
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	workers := deps.Workers
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		source:       deps.Source,
		repository:   deps.Repository,
		classifier:   deps.Classifier,
		analyzer:     deps.Analyzer,
		workers:      workers,
		backlogLimit: deps.BacklogLimit,
		classify:     deps.Classify.normalized(),
		analyze:      deps.Analyze.normalized(),
		logger:       deps.Logger,
	}
}

// Run executes one cycle: drain the stored backlog of non-analyzed records,
// then ingest and enrich freshly scraped items. No single item failure halts
// the batch; the returned Summary reports per-outcome counts.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (Summary, error) {
	p.mu.Lock()
	p.summary = Summary{}
	p.mu.Unlock()

	backlog, err := p.repository.ListUnfinished(ctx, p.backlogLimit)
	if err != nil {
		return p.snapshot(), fmt.Errorf("list unfinished: %w", err)
	}
	p.count(func(s *Summary) { s.Resumed = len(backlog) })

	p.forEach(ctx, len(backlog), func(ctx context.Context, i int) {
		p.processRecord(ctx, backlog[i])
	})

	items, err := p.source.FetchLatest(ctx, now)
	if err != nil {
		return p.snapshot(), fmt.Errorf("fetch latest: %w", err)
	}
	p.count(func(s *Summary) { s.Fetched = len(items) })

	p.forEach(ctx, len(items), func(ctx context.Context, i int) {
		p.processItem(ctx, items[i])
	})

	return p.snapshot(), ctx.Err()
}

// forEach runs fn over n indexes on the bounded worker pool. Item failures
// are absorbed into the summary; only context cancellation stops the pool.
func (p *Pipeline) forEach(ctx context.Context, n int, fn func(context.Context, int)) {
	if n == 0 {
		return
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			fn(groupCtx, i)
			return nil
		})
	}
	_ = g.Wait()
}

// processItem ingests one scraped item and drives it through enrichment.
func (p *Pipeline) processItem(ctx context.Context, item domain.NewsItem) {
	fingerprint := domain.Fingerprint(item.Content)

	exists, err := p.repository.Exists(ctx, fingerprint)
	if err != nil {
		p.warn("existence check failed", "fingerprint", fingerprint, "error", err)
		p.count(func(s *Summary) { s.Failed++ })
		return
	}
	if exists {
		p.count(func(s *Summary) { s.Skipped++ })
		return
	}

	record, err := p.repository.Insert(ctx, item)
	if errors.Is(err, domain.ErrDuplicate) {
		// Lost the insert race to a concurrent worker; a normal skip.
		p.count(func(s *Summary) { s.Skipped++ })
		return
	}
	if err != nil {
		p.warn("insert failed", "fingerprint", fingerprint, "error", err)
		p.count(func(s *Summary) { s.Failed++ })
		return
	}

	p.processRecord(ctx, record)
}

// processRecord resumes a record from its first incomplete stage. Analyzed
// and failed records are untouched by construction: neither ingestion nor
// ListUnfinished ever hands one in.
func (p *Pipeline) processRecord(ctx context.Context, record domain.NewsRecord) {
	if record.Stage == domain.StageIngested {
		cls, err := p.classifyRecord(ctx, record)
		if err != nil {
			p.failRecord(ctx, record, err)
			return
		}

		if err := p.repository.UpdateClassification(ctx, record.ID, cls); err != nil {
			p.failRecord(ctx, record, err)
			return
		}
		record.Stage = domain.StageClassified
		p.count(func(s *Summary) { s.Classified++ })
	}

	if record.Stage == domain.StageClassified {
		impact, err := p.analyzeRecord(ctx, record)
		if err != nil {
			p.failRecord(ctx, record, err)
			return
		}

		if err := p.repository.UpdateFinancialAnalysis(ctx, record.ID, impact); err != nil {
			p.failRecord(ctx, record, err)
			return
		}
		p.count(func(s *Summary) { s.Analyzed++ })
	}
}

// classifyRecord runs the attribute and category calls under the
// classification retry policy. Nothing is committed here, so a retry may
// safely re-run both calls.
func (p *Pipeline) classifyRecord(ctx context.Context, record domain.NewsRecord) (domain.Classification, error) {
	var cls domain.Classification
	err := p.withRetry(ctx, p.classify, func(ctx context.Context) error {
		attr, err := p.classifier.ClassifyAttribute(ctx, record.Content)
		if err != nil {
			return err
		}

		category, err := p.classifier.ClassifyCategory(ctx, record.Content, attr)
		if err != nil {
			return err
		}

		built, err := domain.NewClassification(attr, category)
		if err != nil {
			return err
		}
		cls = built
		return nil
	})
	return cls, err
}

func (p *Pipeline) analyzeRecord(ctx context.Context, record domain.NewsRecord) (domain.FinancialImpact, error) {
	var impact domain.FinancialImpact
	err := p.withRetry(ctx, p.analyze, func(ctx context.Context) error {
		got, err := p.analyzer.Analyze(ctx, record.Content)
		if err != nil {
			return err
		}
		impact = got
		return nil
	})
	return impact, err
}

// withRetry applies the stage policy: transient inference errors burn the
// attempt budget with exponential backoff, content-level model errors burn
// the smaller re-prompt budget, everything else is definitive.
func (p *Pipeline) withRetry(ctx context.Context, policy StagePolicy, fn func(context.Context) error) error {
	var attempts, reprompts int
	for {
		callCtx := ctx
		cancel := func() {}
		if policy.Timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, policy.Timeout)
		}
		err := fn(callCtx)
		cancel()

		if err == nil {
			return nil
		}

		var infErr *domain.InferenceError
		switch {
		case errors.As(err, &infErr):
			attempts++
			if attempts >= policy.Attempts {
				return err
			}
			if !p.sleep(ctx, policy.Backoff<<(attempts-1)) {
				return err
			}
		case isContentError(err):
			reprompts++
			if reprompts > policy.Reprompts {
				return err
			}
		default:
			return err
		}
	}
}

func (p *Pipeline) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// failRecord terminates the item: the failure kind is persisted, partial
// enrichment from earlier stages stays in place.
func (p *Pipeline) failRecord(ctx context.Context, record domain.NewsRecord, cause error) {
	p.warn("record failed", "id", record.ID, "stage", record.Stage, "kind", errorKind(cause), "error", cause)
	p.count(func(s *Summary) { s.Failed++ })

	if errors.Is(cause, domain.ErrNotFound) {
		// The record vanished between stages; nothing left to mark.
		return
	}

	if err := p.repository.MarkFailed(ctx, record.ID, errorKind(cause)); err != nil {
		p.warn("mark failed errored", "id", record.ID, "error", err)
	}
}

func isContentError(err error) bool {
	var clsErr *domain.ClassificationError
	var anaErr *domain.AnalysisError
	return errors.As(err, &clsErr) || errors.As(err, &anaErr)
}

func errorKind(err error) string {
	var infErr *domain.InferenceError
	var clsErr *domain.ClassificationError
	var anaErr *domain.AnalysisError
	switch {
	case errors.As(err, &infErr):
		return "inference_error"
	case errors.As(err, &clsErr):
		return "classification_error"
	case errors.As(err, &anaErr):
		return "analysis_error"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func (p *Pipeline) count(apply func(*Summary)) {
	p.mu.Lock()
	apply(&p.summary)
	p.mu.Unlock()
}

func (p *Pipeline) snapshot() Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.summary
}

func (p *Pipeline) warn(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
