// Package catalog is the process-wide context object: the store, the
// current search index and the CSV sources they are re-ingested from.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pmstandards/internal/ingest"
	"pmstandards/internal/metrics"
	"pmstandards/internal/search"
	"pmstandards/internal/store"
	synchub "pmstandards/internal/sync"
	"pmstandards/pkg/models"
)

const DefaultMaxRejections = 50

type Sources struct {
	StandardsPath   string
	ComparisonsPath string
}

// Notifier is told about every reload that installed new data.
type Notifier interface {
	NotifyReload(ev synchub.ReloadEvent)
}

type Option func(*Catalog)

func WithNotifier(n Notifier) Option {
	return func(c *Catalog) { c.notifier = n }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Catalog) { c.metrics = m }
}

// WithMaxRejections caps how many rejections a report lists. The count
// is always exact.
func WithMaxRejections(n int) Option {
	return func(c *Catalog) { c.maxRejections = n }
}

type Catalog struct {
	store         store.Store
	sources       Sources
	notifier      Notifier
	metrics       *metrics.Metrics
	maxRejections int

	mu    sync.Mutex // serializes Reload
	index atomic.Pointer[search.Index]
	last  atomic.Pointer[ReloadReport]
}

func New(st store.Store, src Sources, opts ...Option) *Catalog {
	c := &Catalog{
		store:         st,
		sources:       src,
		maxRejections: DefaultMaxRejections,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.index.Store(search.Build(nil))
	return c
}

func (c *Catalog) Store() store.Store { return c.store }

func (c *Catalog) Sources() Sources { return c.sources }

// Index returns the index built by the latest reload. It is never nil.
func (c *Catalog) Index() *search.Index { return c.index.Load() }

// LastReport returns the report of the most recent Reload.
func (c *Catalog) LastReport() (ReloadReport, bool) {
	r := c.last.Load()
	if r == nil {
		return ReloadReport{}, false
	}
	return *r, true
}

// Reload re-ingests both sources. Each source that parses cleanly replaces
// its stored set; a source that fails keeps the previous set. The search
// index is always rebuilt from what the store holds afterwards. The error
// joins every per-source failure.
func (c *Catalog) Reload(ctx context.Context) (ReloadReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	report := ReloadReport{Version: uuid.NewString(), At: start.UTC()}
	report.Standards.Kind = store.KindStandards
	report.Standards.Source = c.sources.StandardsPath
	report.Comparisons.Kind = store.KindComparisons
	report.Comparisons.Source = c.sources.ComparisonsPath

	var (
		std            ingest.StandardsResult
		rows           []models.ComparisonRow
		stdErr, cmpErr error
	)
	// each source's error is kept in stdErr/cmpErr rather than returned, so a
	// failing source never cancels or masks the other
	var g errgroup.Group
	g.Go(func() error {
		std, stdErr = ingest.LoadStandardsFile(c.sources.StandardsPath)
		return nil
	})
	g.Go(func() error {
		rows, cmpErr = ingest.LoadComparisonsFile(c.sources.ComparisonsPath)
		return nil
	})
	_ = g.Wait() // always nil, see above

	var ds store.Dataset
	if stdErr == nil {
		ds.Standards = &models.StandardSet{
			Records:  std.Records,
			Source:   c.sources.StandardsPath,
			LoadedAt: report.At,
		}
		report.Standards.Records = len(std.Records)
		report.Standards.Rows = std.Rows
		report.Standards.Rejected = len(std.Rejections)
		report.Standards.Rejections = capRejections(std.Rejections, c.maxRejections)
	}
	if cmpErr == nil {
		ds.Comparisons = &models.ComparisonSet{
			Rows:     rows,
			Summary:  ingest.Summarize(rows),
			Source:   c.sources.ComparisonsPath,
			LoadedAt: report.At,
		}
		report.Comparisons.Records = len(rows)
	}

	if ds.Standards != nil || ds.Comparisons != nil {
		if err := c.store.Replace(ctx, ds); err != nil {
			err = fmt.Errorf("replace data sets: %w", err)
			if ds.Standards != nil {
				stdErr = err
			}
			if ds.Comparisons != nil {
				cmpErr = err
			}
			ds = store.Dataset{}
		}
	}
	report.Standards.setOutcome(stdErr)
	report.Comparisons.setOutcome(cmpErr)

	errs := []error{stdErr, cmpErr}
	if err := c.rebuildIndex(ctx); err != nil {
		errs = append(errs, err)
	}
	report.IndexTokens = c.Index().Len()
	report.Duration = time.Since(start).String()

	c.observe(report)
	c.last.Store(&report)

	if ds.Standards != nil || ds.Comparisons != nil {
		c.notify(ctx, report)
	}

	err := errors.Join(errs...)
	if err != nil {
		slog.Warn("catalog reload incomplete",
			"version", report.Version,
			"standards_status", report.Standards.Status,
			"comparisons_status", report.Comparisons.Status,
			"error", err,
		)
	} else {
		slog.Info("catalog reloaded",
			"version", report.Version,
			"standards", report.Standards.Records,
			"rejected", report.Standards.Rejected,
			"comparisons", report.Comparisons.Records,
			"index_tokens", report.IndexTokens,
			"duration", report.Duration,
		)
	}
	return report, err
}

func (c *Catalog) rebuildIndex(ctx context.Context) error {
	records, err := c.store.Standards(ctx)
	switch {
	case errors.Is(err, store.ErrNotLoaded):
		records = nil
	case err != nil:
		return fmt.Errorf("rebuild search index: %w", err)
	}
	c.index.Store(search.Build(records))
	return nil
}

func (c *Catalog) notify(ctx context.Context, report ReloadReport) {
	if c.notifier == nil {
		return
	}
	ev := synchub.ReloadEvent{
		Type:    synchub.ReloadEventType,
		Version: report.Version,
		At:      report.At,
	}
	// counts reflect what is installed, including sets kept from earlier loads
	if status, err := c.store.Status(ctx); err == nil {
		for _, info := range status {
			switch info.Kind {
			case store.KindStandards:
				ev.Standards = info.Records
			case store.KindComparisons:
				ev.Comparisons = info.Records
			}
		}
	}
	for _, src := range []SourceReport{report.Standards, report.Comparisons} {
		if src.Status != StatusLoaded {
			ev.Failed = append(ev.Failed, src.Kind)
		}
	}
	c.notifier.NotifyReload(ev)
}

func (c *Catalog) observe(report ReloadReport) {
	if c.metrics == nil {
		return
	}
	for _, src := range []SourceReport{report.Standards, report.Comparisons} {
		c.metrics.ReloadsTotal.WithLabelValues(src.Kind, src.Status).Inc()
		if src.Status == StatusLoaded {
			c.metrics.RecordsLoaded.WithLabelValues(src.Kind).Set(float64(src.Records))
		}
	}
	c.metrics.RowsRejected.Add(float64(report.Standards.Rejected))
}

func capRejections(rs []models.Rejection, n int) []models.Rejection {
	if n >= 0 && len(rs) > n {
		rs = rs[:n]
	}
	return append([]models.Rejection(nil), rs...)
}
