package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsAnalyzer/internal/ports"
)

// Scheduler wires the recurring driver with the pipeline use case and fans
// the run summary out to the notifier.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring pipeline runs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, notifier ports.Notifier, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, notifier: notifier, logger: logger}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		summary, err := s.pipeline.Run(ctx, trigger)
		if err != nil {
			s.log("pipeline run errored", "error", err, "summary", summary.String())
		} else {
			s.log("pipeline run complete", "summary", summary.String())
		}

		if s.notifier != nil {
			if err := s.notifier.PublishSummary(ctx, "news pipeline: "+summary.String()); err != nil {
				s.log("publish summary failed", "error", err)
			}
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}

func (s *Scheduler) log(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}
