package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campusmatch/image-pipeline/internal/metrics"
)

// IDGenerator produces batch run IDs.
type IDGenerator interface {
	NewID() (string, error)
}

// BatchConfig controls the sequential batch driver's pacing.
type BatchConfig struct {
	// Delay is slept after every DelayEvery entities to rate-limit
	// outbound scraping.
	Delay      time.Duration
	DelayEvery int
	// DefaultLimit caps implicit eligibility queries when the caller
	// supplies no limit.
	DefaultLimit int
}

// Batch iterates a set of entities sequentially through the orchestrator and
// accumulates aggregate statistics. There is deliberately no concurrency
// here: one entity at a time, with a throttle sleep between groups.
type Batch struct {
	orch     *Orchestrator
	entities EntityStore
	cfg      BatchConfig
	idGen    IDGenerator
	clock    Clock
	logger   *zap.Logger
}

// NewBatch builds a batch driver over the given orchestrator.
func NewBatch(
	orch *Orchestrator,
	entities EntityStore,
	cfg BatchConfig,
	idGen IDGenerator,
	clock Clock,
	logger *zap.Logger,
) *Batch {
	if cfg.DelayEvery <= 0 {
		cfg.DelayEvery = 5
	}
	return &Batch{
		orch:     orch,
		entities: entities,
		cfg:      cfg,
		idGen:    idGen,
		clock:    clock,
		logger:   logger,
	}
}

// Run processes the entities selected by opts in query order and returns the
// aggregate stats. Per-entity failures are folded into the stats; only
// selection/query errors or context cancellation abort the run.
func (b *Batch) Run(ctx context.Context, opts BatchOptions) (BatchStats, error) {
	stats := BatchStats{}
	if b.idGen != nil {
		if id, err := b.idGen.NewID(); err == nil {
			stats.RunID = id
		}
	}

	entities, err := b.selectEntities(ctx, opts)
	if err != nil {
		return stats, err
	}

	kind := string(b.orch.profile.Kind)
	b.logger.Info("batch run starting",
		zap.String("run_id", stats.RunID),
		zap.String("kind", kind),
		zap.Int("entities", len(entities)),
		zap.Bool("force", opts.ForceReprocess),
	)

	start := b.clock.Now()
	for i, entity := range entities {
		if ctx.Err() != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("batch canceled: %v", ctx.Err()))
			break
		}

		outcome := b.orch.Process(ctx, entity)
		b.record(&stats, outcome)

		if b.cfg.Delay > 0 && (i+1)%b.cfg.DelayEvery == 0 && i+1 < len(entities) {
			b.sleep(ctx)
		}
	}
	metrics.ObserveBatch(kind, b.clock.Now().Sub(start))

	b.logger.Info("batch run finished",
		zap.String("run_id", stats.RunID),
		zap.Int("total", stats.TotalProcessed),
		zap.Int("successful", stats.Successful),
		zap.Int("failed", stats.Failed),
		zap.Int("no_website", stats.NoWebsite),
	)
	return stats, nil
}

func (b *Batch) selectEntities(ctx context.Context, opts BatchOptions) ([]Entity, error) {
	if len(opts.IDs) > 0 {
		entities, err := b.entities.ListByIDs(ctx, opts.IDs)
		if err != nil {
			return nil, fmt.Errorf("list entities by id: %w", err)
		}
		return entities, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = b.cfg.DefaultLimit
	}
	entities, err := b.entities.ListEligible(ctx, opts.ForceReprocess, limit)
	if err != nil {
		return nil, fmt.Errorf("list eligible entities: %w", err)
	}
	return entities, nil
}

func (b *Batch) record(stats *BatchStats, outcome Outcome) {
	stats.TotalProcessed++
	stats.Results = append(stats.Results, outcome)

	switch outcome.Kind {
	case OutcomeSuccess:
		stats.Successful++
		if outcome.Score >= b.orch.profile.HighQualityFloor {
			stats.HighQuality++
		}
	case OutcomeNoWebsite:
		stats.NoWebsite++
		stats.Failed++
	default:
		stats.Failed++
		if outcome.Reason != "" {
			stats.Errors = append(stats.Errors,
				fmt.Sprintf("entity %d: %s", outcome.EntityID, outcome.Reason))
		}
	}
}

func (b *Batch) sleep(ctx context.Context) {
	timer := time.NewTimer(b.cfg.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
