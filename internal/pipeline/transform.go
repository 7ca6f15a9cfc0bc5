package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/fjell-etl/internal/domain"
	"github.com/couchcryptid/fjell-etl/internal/observability"
)

// Step is one named enrichment applied to every peak.
type Step struct {
	Name  string
	Apply func(domain.Peak) (domain.Peak, error)
}

// pure lifts an infallible transform into a Step.
func pure(name string, fn func(domain.Peak) domain.Peak) Step {
	return Step{
		Name: name,
		Apply: func(p domain.Peak) (domain.Peak, error) {
			return fn(p), nil
		},
	}
}

// PeakTransformer implements Transformer by translating each row and then
// running the enrichment steps in order. Each step finishes over the whole
// collection before the next one starts.
type PeakTransformer struct {
	steps   []Step
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTransformer creates a PeakTransformer for the given UTM zone. With strict
// set, unparsable UTM text fails the run; otherwise the peak keeps NaN
// coordinates and a warning is logged.
func NewTransformer(zone domain.Zone, strict bool, logger *slog.Logger, metrics *observability.Metrics) *PeakTransformer {
	t := &PeakTransformer{
		logger:  logger,
		metrics: metrics,
	}
	t.steps = []Step{
		{Name: "uid", Apply: domain.DeriveUID},
		t.coordinateStep(zone, strict),
		pure("norgeskart", domain.AddNorgesKart),
		pure("gaiagps", domain.AddGaiaGPS),
		pure("group", domain.AttachGroup),
		pure("location", domain.AttachLocationPlaceholders),
	}
	return t
}

// StepNames lists the enrichment steps in execution order, after translation.
func (t *PeakTransformer) StepNames() []string {
	names := make([]string, len(t.steps))
	for i, s := range t.steps {
		names[i] = s.Name
	}
	return names
}

func (t *PeakTransformer) Transform(ctx context.Context, rows []domain.SourceRow) ([]domain.Peak, error) {
	start := clock.Now()
	peaks := make([]domain.Peak, len(rows))
	for i, row := range rows {
		peaks[i] = domain.Translate(row)
	}
	t.metrics.StepDuration.WithLabelValues("translate").Observe(clock.Since(start).Seconds())

	for _, step := range t.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := clock.Now()
		for i := range peaks {
			out, err := step.Apply(peaks[i])
			if err != nil {
				return nil, fmt.Errorf("step %s, row %d: %w", step.Name, i+1, err)
			}
			peaks[i] = out
		}
		t.metrics.StepDuration.WithLabelValues(step.Name).Observe(clock.Since(start).Seconds())
		t.logger.Debug("step complete", "step", step.Name, "records", len(peaks))
	}

	return peaks, nil
}

func (t *PeakTransformer) coordinateStep(zone domain.Zone, strict bool) Step {
	return Step{
		Name: "coordinates",
		Apply: func(p domain.Peak) (domain.Peak, error) {
			out, err := domain.ConvertCoordinates(p, zone)
			if err == nil {
				return out, nil
			}
			t.metrics.CoordinateFailures.Inc()
			if strict || !errors.Is(err, domain.ErrInvalidUTM) {
				return out, err
			}
			t.logger.Warn("coordinate conversion failed, writing NaN",
				"name", p.Name,
				"uid", p.UID,
				"utm", p.Coordinates.UTM,
				"error", err,
			)
			return out, nil
		},
	}
}
