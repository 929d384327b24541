package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmstandards/internal/catalog"
	"pmstandards/internal/ingest"
	"pmstandards/internal/metrics"
	"pmstandards/internal/store"
	"pmstandards/internal/store/memory"
	synchub "pmstandards/internal/sync"
)

const standardsCSV = `Topic,Standards,Page,Excerpt
Risk Management,PMBOK 7,122,Risk is an uncertain event or condition.
,PRINCE2,-,The risk theme covers identification.
Stakeholders,ISO 21500,12,Stakeholders are identified early.
`

const comparisonsCSV = `Topic,Similarities,Differences
Risk,All manage risk,PRINCE2 uses a theme
`

type recorder struct {
	mu     sync.Mutex
	events []synchub.ReloadEvent
}

func (r *recorder) NotifyReload(ev synchub.ReloadEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []synchub.ReloadEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]synchub.ReloadEvent(nil), r.events...)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func setup(t *testing.T, opts ...catalog.Option) (*catalog.Catalog, catalog.Sources, *recorder) {
	t.Helper()
	dir := t.TempDir()
	src := catalog.Sources{
		StandardsPath:   filepath.Join(dir, "standards.csv"),
		ComparisonsPath: filepath.Join(dir, "comparisons.csv"),
	}
	rec := &recorder{}
	opts = append([]catalog.Option{catalog.WithNotifier(rec)}, opts...)
	return catalog.New(memory.New(), src, opts...), src, rec
}

func TestReload_LoadsBothSources(t *testing.T) {
	ctx := context.Background()
	c, src, rec := setup(t)
	writeFile(t, src.StandardsPath, standardsCSV)
	writeFile(t, src.ComparisonsPath, comparisonsCSV)

	assert.Equal(t, 0, c.Index().Records())

	report, err := c.Reload(ctx)
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.NotEmpty(t, report.Version)
	assert.Equal(t, 3, report.Standards.Records)
	assert.Equal(t, 1, report.Comparisons.Records)

	got, err := c.Store().StandardsByTopic(ctx, "risk management")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "PRINCE2", got[1].Standard)

	summary, err := c.Store().Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "All manage risk", summary.Similarities)

	assert.Equal(t, 3, c.Index().Records())
	results := c.Index().Search("risk", 10)
	require.NotEmpty(t, results)
	assert.Equal(t, int64(1), results[0].Record.ID)

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, synchub.ReloadEventType, events[0].Type)
	assert.Equal(t, report.Version, events[0].Version)
	assert.Equal(t, 3, events[0].Standards)
	assert.Equal(t, 1, events[0].Comparisons)
	assert.Empty(t, events[0].Failed)

	last, ok := c.LastReport()
	require.True(t, ok)
	assert.Equal(t, report.Version, last.Version)
}

func TestReload_MissingSourceIsNotFound(t *testing.T) {
	ctx := context.Background()
	c, src, rec := setup(t)
	writeFile(t, src.StandardsPath, standardsCSV)

	report, err := c.Reload(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ingest.ErrNotFound))
	assert.Equal(t, catalog.StatusLoaded, report.Standards.Status)
	assert.Equal(t, catalog.StatusNotFound, report.Comparisons.Status)
	assert.NotEmpty(t, report.Comparisons.Error)

	_, err = c.Store().Comparisons(ctx)
	assert.ErrorIs(t, err, store.ErrNotLoaded)

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, []string{store.KindComparisons}, events[0].Failed)
}

func TestReload_NothingLoadedSkipsNotify(t *testing.T) {
	c, _, rec := setup(t)

	report, err := c.Reload(context.Background())
	require.Error(t, err)
	assert.Equal(t, catalog.StatusNotFound, report.Standards.Status)
	assert.Equal(t, catalog.StatusNotFound, report.Comparisons.Status)
	assert.Empty(t, rec.all())
	assert.Equal(t, 0, c.Index().Records())
}

func TestReload_FailedSourceKeepsPreviousData(t *testing.T) {
	ctx := context.Background()
	c, src, _ := setup(t)
	writeFile(t, src.StandardsPath, standardsCSV)
	writeFile(t, src.ComparisonsPath, comparisonsCSV)
	_, err := c.Reload(ctx)
	require.NoError(t, err)

	writeFile(t, src.StandardsPath, "Topic,Standards,Page,Excerpt\nRisk,\"PMBOK 7,1,broken\n")
	writeFile(t, src.ComparisonsPath, "Topic,Similarities\nScope,Shared scope\nQuality,Shared quality\n")

	report, err := c.Reload(ctx)
	require.Error(t, err)
	var perr *ingest.ParseError
	assert.True(t, errors.As(err, &perr))
	assert.ErrorIs(t, err, ingest.ErrParse)
	assert.Equal(t, catalog.StatusFailed, report.Standards.Status)
	assert.Equal(t, 0, report.Standards.Records)
	assert.Equal(t, catalog.StatusLoaded, report.Comparisons.Status)

	got, err := c.Store().Standards(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, 3, c.Index().Records())

	rows, err := c.Store().Comparisons(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestReload_CapsListedRejections(t *testing.T) {
	c, src, _ := setup(t, catalog.WithMaxRejections(1))
	writeFile(t, src.StandardsPath, `Topic,Standards,Page,Excerpt
,PMBOK 7,1,No topic yet.
Scope,,2,No standard.
Scope,PRINCE2,3,
Scope,PRINCE2,4,Kept.
`)
	writeFile(t, src.ComparisonsPath, comparisonsCSV)

	report, err := c.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Standards.Records)
	assert.Equal(t, 4, report.Standards.Rows)
	assert.Equal(t, 3, report.Standards.Rejected)
	require.Len(t, report.Standards.Rejections, 1)
	assert.Equal(t, 2, report.Standards.Rejections[0].Line)
}

func TestReload_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	c, src, _ := setup(t)
	writeFile(t, src.StandardsPath, standardsCSV)
	writeFile(t, src.ComparisonsPath, comparisonsCSV)

	_, err := c.Reload(ctx)
	require.NoError(t, err)
	first, err := c.Store().Standards(ctx)
	require.NoError(t, err)

	second, err := c.Reload(ctx)
	require.NoError(t, err)
	got, err := c.Store().Standards(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, got)
	assert.Equal(t, 3, second.Standards.Records)
}

func TestReload_ConcurrentCallsSerialize(t *testing.T) {
	c, src, rec := setup(t)
	writeFile(t, src.StandardsPath, standardsCSV)
	writeFile(t, src.ComparisonsPath, comparisonsCSV)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Reload(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, rec.all(), 4)
	assert.Equal(t, 3, c.Index().Records())
}

func TestReload_RecordsMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	c, src, _ := setup(t, catalog.WithMetrics(m))
	writeFile(t, src.StandardsPath, standardsCSV+",,,\nScope,PRINCE2,1,\n")

	_, _ = c.Reload(context.Background())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReloadsTotal.WithLabelValues(store.KindStandards, catalog.StatusLoaded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReloadsTotal.WithLabelValues(store.KindComparisons, catalog.StatusNotFound)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RecordsLoaded.WithLabelValues(store.KindStandards)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RowsRejected))
}
