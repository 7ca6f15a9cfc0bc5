package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/fjell-etl/internal/domain"
	"github.com/couchcryptid/fjell-etl/internal/observability"
)

// Extractor reads every source row.
type Extractor interface {
	Extract(ctx context.Context) ([]domain.SourceRow, error)
}

// Transformer converts source rows into enriched peaks.
type Transformer interface {
	Transform(ctx context.Context, rows []domain.SourceRow) ([]domain.Peak, error)
}

// Loader writes the full peak collection to its destination.
type Loader interface {
	Load(ctx context.Context, peaks []domain.Peak) error
}

// IndexGenerator produces documentation (such as a markdown index of peaks)
// from the written collection. No generator ships with the pipeline.
type IndexGenerator interface {
	GenerateIndex(ctx context.Context, peaks []domain.Peak) error
}

// Pipeline runs one extract-transform-load pass over the peak list.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loader      Loader
	index       IndexGenerator
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, t Transformer, l Loader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
	}
}

// WithIndexGenerator attaches a documentation generator that runs after the
// output has been written.
func (p *Pipeline) WithIndexGenerator(g IndexGenerator) *Pipeline {
	p.index = g
	return p
}

// Run executes the pipeline once. Any stage error aborts the run; nothing is
// written unless extraction and every transform step succeed.
func (p *Pipeline) Run(ctx context.Context) error {
	start := clock.Now()
	p.logger.Info("pipeline started")

	rows, err := p.extractor.Extract(ctx)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	p.metrics.RecordsLoaded.Add(float64(len(rows)))
	p.logger.Info("source loaded", "records", len(rows))

	peaks, err := p.transformer.Transform(ctx, rows)
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}

	if err := p.loader.Load(ctx, peaks); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	p.metrics.RecordsWritten.Add(float64(len(peaks)))

	if p.index != nil {
		if err := p.index.GenerateIndex(ctx, peaks); err != nil {
			return fmt.Errorf("generate index: %w", err)
		}
	}

	elapsed := clock.Since(start)
	p.metrics.RunDuration.Set(elapsed.Seconds())
	p.metrics.LastSuccess.Set(float64(clock.Now().Unix()))
	p.logger.Info("pipeline finished", "records", len(peaks), "duration", elapsed)
	return nil
}
