package job

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nordbil/carcatalog/internal/logger"
	"github.com/nordbil/carcatalog/internal/metrics"
)

// Job names known to the registry. The scheduler and CLI both trigger runs
// by these names.
const (
	NameIngestion     = "ingestion"
	NameFrontierBatch = "frontier_batch"
	NameMaintenance   = "maintenance"
)

// ErrAlreadyRunning is returned by TryStart when the named job has a run in
// flight. Callers skip the trigger, they never queue behind it.
var ErrAlreadyRunning = fmt.Errorf("job already running")

// Run identifies one started execution of a job.
type Run struct {
	ID        string
	Job       string
	StartedAt time.Time
}

type jobEntry struct {
	state State
	run   *Run
}

// Registry tracks the state of each named job and enforces mutual exclusion
// between overlapping triggers of the same job.
type Registry struct {
	mu      sync.Mutex
	jobs    map[string]*jobEntry
	metrics *metrics.Metrics
	logger  logger.Interface
}

// NewRegistry creates an empty job registry.
func NewRegistry(log logger.Interface, m *metrics.Metrics) *Registry {
	return &Registry{
		jobs:    make(map[string]*jobEntry),
		metrics: m,
		logger:  log.WithComponent("jobs"),
	}
}

// TryStart claims the named job for a new run. When a run is already in
// flight it returns ErrAlreadyRunning and the caller logs and skips; the
// in-flight run is never disturbed.
func (r *Registry) TryStart(name string) (*Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.jobs[name]
	if !exists {
		entry = &jobEntry{state: StateIdle}
		r.jobs[name] = entry
	}

	if IsBusyState(entry.state) {
		r.logger.Warn("Skipping trigger, job already running",
			"job", name, "run_id", entry.run.ID)
		return nil, ErrAlreadyRunning
	}

	if err := ValidateTransition(entry.state, StateRunning); err != nil {
		return nil, err
	}

	run := &Run{
		ID:        uuid.New().String(),
		Job:       name,
		StartedAt: time.Now(),
	}
	entry.state = StateRunning
	entry.run = run

	r.logger.Info("Job started", "job", name, "run_id", run.ID)

	return run, nil
}

// Finish records the run outcome and returns the job to idle, making it
// eligible for the next trigger. The terminal state is passed through the
// state machine so an out-of-order Finish surfaces as an error.
func (r *Registry) Finish(run *Run, runErr error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.jobs[run.Job]
	if !exists || entry.run == nil || entry.run.ID != run.ID {
		return fmt.Errorf("finish for unknown run %s of job %s", run.ID, run.Job)
	}

	terminal := StateSucceeded
	status := "succeeded"
	if runErr != nil {
		terminal = StateFailed
		status = "failed"
	}

	if err := ValidateTransition(entry.state, terminal); err != nil {
		return err
	}
	entry.state = terminal

	r.metrics.JobRuns.WithLabelValues(run.Job, status).Inc()
	duration := time.Since(run.StartedAt)

	if runErr != nil {
		r.logger.Error("Job failed",
			"job", run.Job, "run_id", run.ID, "duration", duration, "error", runErr)
	} else {
		r.logger.Info("Job succeeded",
			"job", run.Job, "run_id", run.ID, "duration", duration)
	}

	if err := ValidateTransition(entry.state, StateIdle); err != nil {
		return err
	}
	entry.state = StateIdle
	entry.run = nil

	return nil
}

// StateOf returns the current state of the named job. Jobs that have never
// been triggered are idle.
func (r *Registry) StateOf(name string) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.jobs[name]
	if !exists {
		return StateIdle
	}
	return entry.state
}
