package job

import (
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nordbil/carcatalog/internal/logger"
	"github.com/nordbil/carcatalog/internal/metrics"
)

func newTestRegistry() *Registry {
	return NewRegistry(logger.NewNoOp(), metrics.New(prometheus.NewRegistry()))
}

func TestRegistry_StartAndFinish(t *testing.T) {
	r := newTestRegistry()

	run, err := r.TryStart(NameIngestion)
	if err != nil {
		t.Fatalf("TryStart() error = %v", err)
	}
	if run.ID == "" {
		t.Error("run ID is empty")
	}
	if got := r.StateOf(NameIngestion); got != StateRunning {
		t.Errorf("StateOf() = %s, want running", got)
	}

	if err = r.Finish(run, nil); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if got := r.StateOf(NameIngestion); got != StateIdle {
		t.Errorf("StateOf() after finish = %s, want idle", got)
	}
}

func TestRegistry_OverlappingTriggerSkipped(t *testing.T) {
	r := newTestRegistry()

	run, err := r.TryStart(NameIngestion)
	if err != nil {
		t.Fatalf("TryStart() error = %v", err)
	}

	if _, err = r.TryStart(NameIngestion); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second TryStart() error = %v, want ErrAlreadyRunning", err)
	}

	// A different job is unaffected.
	other, err := r.TryStart(NameMaintenance)
	if err != nil {
		t.Fatalf("TryStart(maintenance) error = %v", err)
	}

	if err = r.Finish(run, nil); err != nil {
		t.Fatalf("Finish(ingestion) error = %v", err)
	}
	if err = r.Finish(other, errors.New("boom")); err != nil {
		t.Fatalf("Finish(maintenance) error = %v", err)
	}

	// Both jobs are eligible again, whatever their last outcome.
	if _, err = r.TryStart(NameIngestion); err != nil {
		t.Errorf("TryStart() after success error = %v", err)
	}
	if _, err = r.TryStart(NameMaintenance); err != nil {
		t.Errorf("TryStart() after failure error = %v", err)
	}
}

func TestRegistry_FinishUnknownRun(t *testing.T) {
	r := newTestRegistry()

	run, err := r.TryStart(NameIngestion)
	if err != nil {
		t.Fatalf("TryStart() error = %v", err)
	}
	if err = r.Finish(run, nil); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	if err = r.Finish(run, nil); err == nil {
		t.Error("second Finish() for the same run expected error")
	}
}

func TestRegistry_ConcurrentTriggersAdmitExactlyOne(t *testing.T) {
	r := newTestRegistry()

	const triggers = 20
	var wg sync.WaitGroup
	started := make(chan *Run, triggers)

	for i := 0; i < triggers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if run, err := r.TryStart(NameIngestion); err == nil {
				started <- run
			}
		}()
	}
	wg.Wait()
	close(started)

	var runs []*Run
	for run := range started {
		runs = append(runs, run)
	}
	if len(runs) != 1 {
		t.Fatalf("%d triggers admitted, want exactly 1", len(runs))
	}
}
