package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/nordbil/carcatalog/internal/logger"
)

// Schedules holds the cron expressions for the recurring jobs.
type Schedules struct {
	Ingestion     string `mapstructure:"ingestion"      yaml:"ingestion"`
	FrontierBatch string `mapstructure:"frontier_batch" yaml:"frontier_batch"`
	Maintenance   string `mapstructure:"maintenance"    yaml:"maintenance"`
}

// Scheduler triggers orchestrator runs on cron schedules. Overlap protection
// lives in the registry, so a slow run simply causes the next trigger to be
// skipped.
type Scheduler struct {
	cron         *cron.Cron
	orchestrator *Orchestrator
	schedules    Schedules
	logger       logger.Interface
}

// NewScheduler creates a scheduler for the given orchestrator.
func NewScheduler(orchestrator *Orchestrator, schedules Schedules, log logger.Interface) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		orchestrator: orchestrator,
		schedules:    schedules,
		logger:       log.WithComponent("scheduler"),
	}
}

// Start registers the jobs and starts the cron loop. The context is passed
// to every triggered run; cancelling it stops in-flight runs at their next
// stage boundary.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedules.Ingestion, func() {
		if _, runErr := s.orchestrator.RunIngestionCycle(ctx); runErr != nil && !errors.Is(runErr, ErrAlreadyRunning) {
			s.logger.Error("Scheduled ingestion cycle failed", "error", runErr)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule ingestion: %w", err)
	}

	if _, err := s.cron.AddFunc(s.schedules.FrontierBatch, func() {
		if _, runErr := s.orchestrator.RunFrontierBatches(ctx); runErr != nil && !errors.Is(runErr, ErrAlreadyRunning) {
			s.logger.Error("Scheduled frontier batch failed", "error", runErr)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule frontier batch: %w", err)
	}

	if _, err := s.cron.AddFunc(s.schedules.Maintenance, func() {
		if _, runErr := s.orchestrator.RunMaintenance(ctx); runErr != nil && !errors.Is(runErr, ErrAlreadyRunning) {
			s.logger.Error("Scheduled maintenance failed", "error", runErr)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule maintenance: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started",
		"ingestion", s.schedules.Ingestion,
		"frontier_batch", s.schedules.FrontierBatch,
		"maintenance", s.schedules.Maintenance)

	return nil
}

// Stop stops the cron loop and waits for triggered runs to return.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("Scheduler stopped")
}
