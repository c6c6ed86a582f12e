package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nordbil/carcatalog/internal/catalog"
	"github.com/nordbil/carcatalog/internal/dedup"
	"github.com/nordbil/carcatalog/internal/domain"
	"github.com/nordbil/carcatalog/internal/frontier"
	"github.com/nordbil/carcatalog/internal/ingest"
	"github.com/nordbil/carcatalog/internal/logger"
	"github.com/nordbil/carcatalog/internal/scrape"
)

// FrontierReader lists and counts queued references for sampling.
type FrontierReader interface {
	ListBySource(ctx context.Context, source string) ([]domain.FrontierEntry, error)
}

// SourcePipeline bundles the per-source components of an ingestion cycle.
type SourcePipeline struct {
	Source     domain.Source
	Discoverer scrape.Discoverer
	Ingester   *ingest.Ingester
}

// CycleReport summarizes one ingestion cycle across all sources.
type CycleReport struct {
	Deltas  map[string]frontier.Delta
	Results map[string]ingest.Result
	// FailedSources lists sources whose pipeline aborted. The cycle still
	// succeeds overall unless every source failed.
	FailedSources []string
}

// MaintenanceReport summarizes one maintenance run.
type MaintenanceReport struct {
	Deactivated int64
	Dedup       dedup.Report
}

// Orchestrator wires the pipelines together and runs them as named jobs.
type Orchestrator struct {
	pipelines      []SourcePipeline
	tracker        *frontier.Tracker
	sampler        *frontier.Sampler
	frontierStore  FrontierReader
	sweeper        *catalog.Sweeper
	resolver       *dedup.Resolver
	registry       *Registry
	batchSize      int
	staleThreshold time.Duration
	logger         logger.Interface
}

// NewOrchestrator creates the job orchestrator.
func NewOrchestrator(
	pipelines []SourcePipeline,
	tracker *frontier.Tracker,
	sampler *frontier.Sampler,
	frontierStore FrontierReader,
	sweeper *catalog.Sweeper,
	resolver *dedup.Resolver,
	registry *Registry,
	batchSize int,
	staleThreshold time.Duration,
	log logger.Interface,
) *Orchestrator {
	return &Orchestrator{
		pipelines:      pipelines,
		tracker:        tracker,
		sampler:        sampler,
		frontierStore:  frontierStore,
		sweeper:        sweeper,
		resolver:       resolver,
		registry:       registry,
		batchSize:      batchSize,
		staleThreshold: staleThreshold,
		logger:         log.WithComponent("orchestrator"),
	}
}

// RunIngestionCycle runs discovery, frontier merge, sampling, and batch
// ingestion for every configured source in order. A failure in one source's
// pipeline is recorded and the cycle moves on to the next source.
// Cancellation is honored between stages, never inside one.
func (o *Orchestrator) RunIngestionCycle(ctx context.Context) (CycleReport, error) {
	run, err := o.registry.TryStart(NameIngestion)
	if err != nil {
		return CycleReport{}, err
	}

	report := CycleReport{
		Deltas:  make(map[string]frontier.Delta),
		Results: make(map[string]ingest.Result),
	}

	var cycleErr error
	for _, pipeline := range o.pipelines {
		if ctxErr := ctx.Err(); ctxErr != nil {
			cycleErr = fmt.Errorf("ingestion cycle interrupted: %w", ctxErr)
			break
		}

		if srcErr := o.runSource(ctx, pipeline, &report); srcErr != nil {
			report.FailedSources = append(report.FailedSources, pipeline.Source.ID)
			o.logger.Error("Source pipeline failed",
				"source", pipeline.Source.ID, "error", srcErr)
		}
	}

	if cycleErr == nil && len(report.FailedSources) == len(o.pipelines) && len(o.pipelines) > 0 {
		cycleErr = fmt.Errorf("all %d source pipelines failed", len(o.pipelines))
	}

	if finishErr := o.registry.Finish(run, cycleErr); finishErr != nil {
		o.logger.Error("Failed to record run outcome", "run_id", run.ID, "error", finishErr)
	}

	return report, cycleErr
}

// runSource executes the stages for one source. A panic in any stage is
// contained here so the cycle can continue with the next source.
func (o *Orchestrator) runSource(ctx context.Context, pipeline SourcePipeline, report *CycleReport) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("source pipeline panicked: %v", r)
		}
	}()

	source := pipeline.Source.ID

	urls, err := pipeline.Discoverer.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discovery: %w", err)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("after discovery: %w", ctxErr)
	}

	delta, err := o.tracker.MergeDiscoveries(ctx, source, urls)
	if err != nil {
		return fmt.Errorf("frontier merge: %w", err)
	}
	report.Deltas[source] = delta

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("after frontier merge: %w", ctxErr)
	}

	result, err := o.ingestBatch(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("batch ingestion: %w", err)
	}
	report.Results[source] = result

	return nil
}

// ingestBatch samples the source's frontier and drains the batch.
func (o *Orchestrator) ingestBatch(ctx context.Context, pipeline SourcePipeline) (ingest.Result, error) {
	source := pipeline.Source.ID

	entries, err := o.frontierStore.ListBySource(ctx, source)
	if err != nil {
		return ingest.Result{}, fmt.Errorf("list frontier: %w", err)
	}
	if len(entries) == 0 {
		return ingest.Result{}, nil
	}

	batch, err := o.sampler.SelectBatch(entries, o.batchSize)
	if err != nil {
		return ingest.Result{}, fmt.Errorf("sample batch: %w", err)
	}

	o.logger.Info("Processing frontier batch",
		"source", source, "frontier", len(entries), "batch", len(batch))

	return pipeline.Ingester.ProcessBatch(ctx, batch)
}

// RunFrontierBatch samples and ingests one batch for a single source without
// running discovery first. Used to drain a backlog faster than the scheduled
// cycle would.
func (o *Orchestrator) RunFrontierBatch(ctx context.Context, source string) (ingest.Result, error) {
	for _, pipeline := range o.pipelines {
		if pipeline.Source.ID == source {
			return o.ingestBatch(ctx, pipeline)
		}
	}
	return ingest.Result{}, fmt.Errorf("unknown source: %s", source)
}

// RunFrontierBatches drains one batch per source without discovery, as a
// registered job so scheduled batch runs never overlap each other. Failures
// follow the ingestion cycle's policy: a source is skipped and the run fails
// only when every source failed.
func (o *Orchestrator) RunFrontierBatches(ctx context.Context) (map[string]ingest.Result, error) {
	run, err := o.registry.TryStart(NameFrontierBatch)
	if err != nil {
		return nil, err
	}

	results := make(map[string]ingest.Result, len(o.pipelines))

	var runErr error
	failed := 0
	for _, pipeline := range o.pipelines {
		if ctxErr := ctx.Err(); ctxErr != nil {
			runErr = fmt.Errorf("batch run interrupted: %w", ctxErr)
			break
		}

		result, batchErr := o.ingestBatch(ctx, pipeline)
		if batchErr != nil {
			failed++
			o.logger.Error("Frontier batch failed",
				"source", pipeline.Source.ID, "error", batchErr)
			continue
		}
		results[pipeline.Source.ID] = result
	}

	if runErr == nil && failed == len(o.pipelines) && len(o.pipelines) > 0 {
		runErr = fmt.Errorf("all %d frontier batches failed", len(o.pipelines))
	}

	if finishErr := o.registry.Finish(run, runErr); finishErr != nil {
		o.logger.Error("Failed to record run outcome", "run_id", run.ID, "error", finishErr)
	}

	return results, runErr
}

// RunMaintenance deactivates stale listings and then deduplicates the active
// catalog. The sweep runs first so rows it deactivates are excluded from the
// dedup passes in the same run. The stages are isolated from each other: a
// sweep failure is recorded but the dedup passes still run, and the job
// outcome carries every stage error.
func (o *Orchestrator) RunMaintenance(ctx context.Context) (MaintenanceReport, error) {
	run, err := o.registry.TryStart(NameMaintenance)
	if err != nil {
		return MaintenanceReport{}, err
	}

	report := MaintenanceReport{}
	var stageErrs []error

	deactivated, sweepErr := o.sweeper.Sweep(ctx, o.staleThreshold)
	report.Deactivated = deactivated
	if sweepErr != nil {
		stageErrs = append(stageErrs, fmt.Errorf("staleness sweep: %w", sweepErr))
		o.logger.Error("Staleness sweep failed, continuing with dedup", "error", sweepErr)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		stageErrs = append(stageErrs, fmt.Errorf("maintenance interrupted: %w", ctxErr))
	} else {
		dedupReport, dedupErr := o.resolver.Run(ctx)
		report.Dedup = dedupReport
		if dedupErr != nil {
			stageErrs = append(stageErrs, fmt.Errorf("dedup: %w", dedupErr))
		}
	}

	maintErr := errors.Join(stageErrs...)
	if finishErr := o.registry.Finish(run, maintErr); finishErr != nil {
		o.logger.Error("Failed to record run outcome", "run_id", run.ID, "error", finishErr)
	}

	return report, maintErr
}
