package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/fjell-etl/internal/domain"
	"github.com/couchcryptid/fjell-etl/internal/observability"
	"github.com/couchcryptid/fjell-etl/internal/pipeline"
)

// --- mocks ---

type mockExtractor struct {
	rows []domain.SourceRow
	err  error
}

func (m *mockExtractor) Extract(_ context.Context) ([]domain.SourceRow, error) {
	return m.rows, m.err
}

type mockLoader struct {
	loaded [][]domain.Peak
	err    error
}

func (m *mockLoader) Load(_ context.Context, peaks []domain.Peak) error {
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, peaks)
	return nil
}

type mockIndex struct {
	calls int
	got   []domain.Peak
	err   error
}

func (m *mockIndex) GenerateIndex(_ context.Context, peaks []domain.Peak) error {
	m.calls++
	m.got = peaks
	return m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPipeline(ext pipeline.Extractor, ldr pipeline.Loader, strict bool) (*pipeline.Pipeline, *observability.Metrics) {
	metrics := observability.NewMetrics()
	tfm := pipeline.NewTransformer(domain.DefaultZone, strict, discardLogger(), metrics)
	return pipeline.New(ext, tfm, ldr, discardLogger(), metrics), metrics
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	ext := &mockExtractor{rows: testRows()}
	ldr := &mockLoader{}
	p, metrics := newPipeline(ext, ldr, false)

	require.NoError(t, p.Run(context.Background()))

	require.Len(t, ldr.loaded, 1)
	peaks := ldr.loaded[0]
	assert.Len(t, peaks, len(testRows()))
	for _, peak := range peaks {
		assert.Len(t, peak.UID, 64)
		require.NotNil(t, peak.Coordinates.Latitude)
		require.NotNil(t, peak.Coordinates.Longitude)
		assert.NotEmpty(t, peak.NorgesKart)
		assert.NotEmpty(t, peak.GaiaGPS)
		assert.Nil(t, peak.Group)
		assert.Nil(t, peak.County)
		assert.Nil(t, peak.Commune)
		assert.Nil(t, peak.NationalPark)
	}

	assert.Equal(t, float64(len(testRows())), testutil.ToFloat64(metrics.RecordsLoaded))
	assert.Equal(t, float64(len(testRows())), testutil.ToFloat64(metrics.RecordsWritten))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.CoordinateFailures))
}

func TestPipeline_Run_PreservesOrder(t *testing.T) {
	ldr := &mockLoader{}
	p, _ := newPipeline(&mockExtractor{rows: testRows()}, ldr, false)

	require.NoError(t, p.Run(context.Background()))

	require.Len(t, ldr.loaded, 1)
	for i, row := range testRows() {
		assert.Equal(t, row.Name, ldr.loaded[0][i].Name)
	}
}

func TestPipeline_Run_EmptySource(t *testing.T) {
	ldr := &mockLoader{}
	p, _ := newPipeline(&mockExtractor{rows: []domain.SourceRow{}}, ldr, false)

	require.NoError(t, p.Run(context.Background()))
	require.Len(t, ldr.loaded, 1)
	assert.Empty(t, ldr.loaded[0])
}

func TestPipeline_Run_ExtractError(t *testing.T) {
	ldr := &mockLoader{}
	p, _ := newPipeline(&mockExtractor{err: errors.New("no such file")}, ldr, false)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract")
	assert.Empty(t, ldr.loaded)
}

func TestPipeline_Run_MissingUTMAborts(t *testing.T) {
	rows := testRows()
	rows[1].UTM = "  "

	ldr := &mockLoader{}
	p, _ := newPipeline(&mockExtractor{rows: rows}, ldr, false)

	err := p.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrMissingUTM)
	assert.Contains(t, err.Error(), "step uid, row 2")
	assert.Empty(t, ldr.loaded, "nothing may be written when a row cannot be identified")
}

func TestPipeline_Run_InvalidUTMPassesThrough(t *testing.T) {
	rows := testRows()
	rows[0].UTM = "not a position"

	ldr := &mockLoader{}
	p, metrics := newPipeline(&mockExtractor{rows: rows}, ldr, false)

	require.NoError(t, p.Run(context.Background()))
	require.Len(t, ldr.loaded, 1)

	peak := ldr.loaded[0][0]
	assert.Equal(t, "NaN", *peak.Coordinates.Latitude)
	assert.Equal(t, "NaN", *peak.Coordinates.Longitude)
	assert.Equal(t, "https://www.gaiaGPS.com/map/?loc=16.0/NaN/NaN", peak.GaiaGPS)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CoordinateFailures))
}

func TestPipeline_Run_InvalidUTMStrict(t *testing.T) {
	rows := testRows()
	rows[2].UTM = "462384 north"

	ldr := &mockLoader{}
	p, metrics := newPipeline(&mockExtractor{rows: rows}, ldr, true)

	err := p.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrInvalidUTM)
	assert.Contains(t, err.Error(), "step coordinates, row 3")
	assert.Empty(t, ldr.loaded)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CoordinateFailures))
}

func TestPipeline_Run_LoadError(t *testing.T) {
	ldr := &mockLoader{err: errors.New("disk full")}
	p, metrics := newPipeline(&mockExtractor{rows: testRows()}, ldr, false)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load: disk full")
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.RecordsWritten))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ldr := &mockLoader{}
	p, _ := newPipeline(&mockExtractor{rows: testRows()}, ldr, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ldr.loaded)
}

func TestPipeline_Run_IndexGenerator(t *testing.T) {
	idx := &mockIndex{}
	ldr := &mockLoader{}
	p, _ := newPipeline(&mockExtractor{rows: testRows()}, ldr, false)
	p.WithIndexGenerator(idx)

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, 1, idx.calls)
	assert.Equal(t, ldr.loaded[0], idx.got)
}

func TestPipeline_Run_IndexGeneratorError(t *testing.T) {
	idx := &mockIndex{err: errors.New("template missing")}
	p, _ := newPipeline(&mockExtractor{rows: testRows()}, &mockLoader{}, false)
	p.WithIndexGenerator(idx)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate index")
}

func TestPipeline_Run_RecordsTimings(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC))
	pipeline.SetClock(fakeClock)
	t.Cleanup(func() {
		pipeline.SetClock(nil)
	})

	p, metrics := newPipeline(&mockExtractor{rows: testRows()}, &mockLoader{}, false)
	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, float64(fakeClock.Now().Unix()), testutil.ToFloat64(metrics.LastSuccess))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.RunDuration))
	assert.Equal(t, 7, testutil.CollectAndCount(metrics.StepDuration))
}

func TestPeakTransformer_StepOrder(t *testing.T) {
	tfm := pipeline.NewTransformer(domain.DefaultZone, false, discardLogger(), observability.NewMetrics())
	assert.Equal(t,
		[]string{"uid", "coordinates", "norgeskart", "gaiagps", "group", "location"},
		tfm.StepNames())
}

func TestPeakTransformer_ZoneIsApplied(t *testing.T) {
	rows := []domain.SourceRow{{Name: "Meridian", UTM: "500000 6650000"}}

	west := pipeline.NewTransformer(domain.Zone{Number: 31, Letter: "V"}, false, discardLogger(), observability.NewMetrics())
	peaks, err := west.Transform(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, "3.00000", *peaks[0].Coordinates.Longitude)

	east := pipeline.NewTransformer(domain.DefaultZone, false, discardLogger(), observability.NewMetrics())
	peaks, err = east.Transform(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, "9.00000", *peaks[0].Coordinates.Longitude)
}

func TestPipeline_Run_OutOfRangeUTM(t *testing.T) {
	rows := testRows()
	rows[0].UTM = "46238 6838471"

	ldr := &mockLoader{}
	p, metrics := newPipeline(&mockExtractor{rows: rows}, ldr, false)

	require.NoError(t, p.Run(context.Background()))
	require.Len(t, ldr.loaded, 1)
	assert.Equal(t, "NaN", *ldr.loaded[0][0].Coordinates.Longitude)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CoordinateFailures))

	strict, _ := newPipeline(&mockExtractor{rows: rows}, &mockLoader{}, true)
	err := strict.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrInvalidUTM)
	assert.Contains(t, err.Error(), "easting 46238 outside")
}
