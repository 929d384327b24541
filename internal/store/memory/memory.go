// Package memory keeps the loaded data sets in an immutable snapshot that
// is swapped atomically on every replace.
package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"pmstandards/internal/store"
	"pmstandards/pkg/models"
)

type snapshot struct {
	standards   *models.StandardSet
	comparisons *models.ComparisonSet
	topics      []string
}

type Store struct {
	mu   sync.Mutex // serializes writers
	snap atomic.Pointer[snapshot]
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	s := &Store{}
	s.snap.Store(&snapshot{})
	return s
}

func (s *Store) Replace(_ context.Context, ds store.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	next := &snapshot{
		standards:   cur.standards,
		comparisons: cur.comparisons,
		topics:      cur.topics,
	}
	if ds.Standards != nil {
		set := *ds.Standards
		set.Records = append([]models.StandardExcerpt(nil), ds.Standards.Records...)
		next.standards = &set
		next.topics = distinctTopics(set.Records)
	}
	if ds.Comparisons != nil {
		set := *ds.Comparisons
		set.Rows = append([]models.ComparisonRow(nil), ds.Comparisons.Rows...)
		next.comparisons = &set
	}
	s.snap.Store(next)
	return nil
}

func (s *Store) Standards(_ context.Context) ([]models.StandardExcerpt, error) {
	snap := s.snap.Load()
	if snap.standards == nil {
		return nil, store.ErrNotLoaded
	}
	return append([]models.StandardExcerpt{}, snap.standards.Records...), nil
}

func (s *Store) StandardsByTopic(_ context.Context, topic string) ([]models.StandardExcerpt, error) {
	snap := s.snap.Load()
	if snap.standards == nil {
		return nil, store.ErrNotLoaded
	}
	want := store.NormalizeTopic(topic)
	out := []models.StandardExcerpt{}
	for _, rec := range snap.standards.Records {
		if store.NormalizeTopic(rec.Topic) == want {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *Store) Topics(_ context.Context) ([]string, error) {
	snap := s.snap.Load()
	if snap.standards == nil {
		return nil, store.ErrNotLoaded
	}
	return append([]string{}, snap.topics...), nil
}

func (s *Store) Comparisons(_ context.Context) ([]models.ComparisonRow, error) {
	snap := s.snap.Load()
	if snap.comparisons == nil {
		return nil, store.ErrNotLoaded
	}
	return append([]models.ComparisonRow{}, snap.comparisons.Rows...), nil
}

func (s *Store) Summary(_ context.Context) (models.ComparisonSummary, error) {
	snap := s.snap.Load()
	if snap.comparisons == nil {
		return models.ComparisonSummary{}, store.ErrNotLoaded
	}
	return snap.comparisons.Summary, nil
}

func (s *Store) Status(_ context.Context) ([]store.LoadInfo, error) {
	snap := s.snap.Load()
	out := []store.LoadInfo{}
	if set := snap.comparisons; set != nil {
		out = append(out, store.LoadInfo{Kind: store.KindComparisons, Source: set.Source, Records: len(set.Rows), LoadedAt: set.LoadedAt})
	}
	if set := snap.standards; set != nil {
		out = append(out, store.LoadInfo{Kind: store.KindStandards, Source: set.Source, Records: len(set.Records), LoadedAt: set.LoadedAt})
	}
	return out, nil
}

func distinctTopics(records []models.StandardExcerpt) []string {
	seen := make(map[string]struct{}, len(records))
	topics := make([]string, 0)
	for _, rec := range records {
		if _, ok := seen[rec.Topic]; ok {
			continue
		}
		seen[rec.Topic] = struct{}{}
		topics = append(topics, rec.Topic)
	}
	sort.Strings(topics)
	return topics
}
