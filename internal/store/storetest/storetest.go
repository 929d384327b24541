// Package storetest holds the behaviour every store.Store must share.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmstandards/internal/ingest"
	"pmstandards/internal/store"
	"pmstandards/pkg/models"
)

func Records() []models.StandardExcerpt {
	mk := func(id int64, topic, standard, page, excerpt string) models.StandardExcerpt {
		return models.StandardExcerpt{
			ID:               id,
			Topic:            topic,
			Standard:         standard,
			Page:             page,
			Excerpt:          excerpt,
			DeepLink:         ingest.DeepLink(standard, topic, page),
			SectionReference: page,
		}
	}
	return []models.StandardExcerpt{
		mk(1, "Risk Management", "PMBOK 7", "122", "Risk is an uncertain event."),
		mk(2, "Risk Management", "PRINCE2", "-", "The risk theme."),
		mk(3, "Stakeholders", "ISO 21500", "12", "Stakeholder register."),
		mk(4, "Benefits", "ISO 21502", "", "Benefits realization."),
	}
}

func StandardSet(records []models.StandardExcerpt) *models.StandardSet {
	return &models.StandardSet{
		Records:  records,
		Source:   "standards.csv",
		LoadedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func ComparisonSet() *models.ComparisonSet {
	rows := []models.ComparisonRow{
		{"Similarities": "Risk everywhere", "Differences": "", "Topic": "Risk"},
		{"Similarities": "", "Differences": "Different tailoring", "Topic": "Tailoring"},
	}
	return &models.ComparisonSet{
		Rows:     rows,
		Summary:  ingest.Summarize(rows),
		Source:   "comparisons.csv",
		LoadedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// Run exercises s against the shared store contract. newStore must return
// an empty store on every call.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("reads before load report not loaded", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.Standards(ctx)
		assert.ErrorIs(t, err, store.ErrNotLoaded)
		assert.True(t, errors.Is(err, ingest.ErrNotFound))

		_, err = s.Topics(ctx)
		assert.ErrorIs(t, err, store.ErrNotLoaded)
		_, err = s.StandardsByTopic(ctx, "risk")
		assert.ErrorIs(t, err, store.ErrNotLoaded)
		_, err = s.Comparisons(ctx)
		assert.ErrorIs(t, err, store.ErrNotLoaded)
		_, err = s.Summary(ctx)
		assert.ErrorIs(t, err, store.ErrNotLoaded)

		status, err := s.Status(ctx)
		require.NoError(t, err)
		assert.Empty(t, status)
	})

	t.Run("standards keep ingestion order", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Replace(ctx, store.Dataset{Standards: StandardSet(Records())}))

		got, err := s.Standards(ctx)
		require.NoError(t, err)
		assert.Equal(t, Records(), got)
	})

	t.Run("topic lookup is trimmed and case insensitive", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Replace(ctx, store.Dataset{Standards: StandardSet(Records())}))

		got, err := s.StandardsByTopic(ctx, "  risk MANAGEMENT ")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "PMBOK 7", got[0].Standard)
		assert.Equal(t, "PRINCE2", got[1].Standard)

		none, err := s.StandardsByTopic(ctx, "risk")
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("topics are distinct and sorted", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Replace(ctx, store.Dataset{Standards: StandardSet(Records())}))

		got, err := s.Topics(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Benefits", "Risk Management", "Stakeholders"}, got)
	})

	t.Run("comparisons pass through with summary", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Replace(ctx, store.Dataset{Comparisons: ComparisonSet()}))

		rows, err := s.Comparisons(ctx)
		require.NoError(t, err)
		assert.Equal(t, ComparisonSet().Rows, rows)

		sum, err := s.Summary(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Risk everywhere", sum.Similarities)
		assert.Equal(t, "Different tailoring", sum.Differences)

		_, err = s.Standards(ctx)
		assert.ErrorIs(t, err, store.ErrNotLoaded)
	})

	t.Run("nil set leaves stored set untouched", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Replace(ctx, store.Dataset{
			Standards:   StandardSet(Records()),
			Comparisons: ComparisonSet(),
		}))
		require.NoError(t, s.Replace(ctx, store.Dataset{Standards: StandardSet(Records()[:1])}))

		got, err := s.Standards(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 1)

		rows, err := s.Comparisons(ctx)
		require.NoError(t, err)
		assert.Len(t, rows, 2)

		status, err := s.Status(ctx)
		require.NoError(t, err)
		require.Len(t, status, 2)
		assert.Equal(t, store.KindComparisons, status[0].Kind)
		assert.Equal(t, store.KindStandards, status[1].Kind)
		assert.Equal(t, 1, status[1].Records)
		assert.Equal(t, "standards.csv", status[1].Source)
	})

	t.Run("replacing with the same set twice is idempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Replace(ctx, store.Dataset{Standards: StandardSet(Records())}))
		first, err := s.Standards(ctx)
		require.NoError(t, err)

		require.NoError(t, s.Replace(ctx, store.Dataset{Standards: StandardSet(Records())}))
		second, err := s.Standards(ctx)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("empty set counts as loaded", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Replace(ctx, store.Dataset{Standards: StandardSet([]models.StandardExcerpt{})}))

		got, err := s.Standards(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("readers never observe a partial set", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		small := Records()[:2]
		full := Records()
		require.NoError(t, s.Replace(ctx, store.Dataset{Standards: StandardSet(small)}))

		var wg sync.WaitGroup
		done := make(chan struct{})
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				set := small
				if i%2 == 0 {
					set = full
				}
				assert.NoError(t, s.Replace(ctx, store.Dataset{Standards: StandardSet(set)}))
			}
			close(done)
		}()

		for {
			select {
			case <-done:
				wg.Wait()
				return
			default:
			}
			got, err := s.Standards(ctx)
			require.NoError(t, err)
			assert.Contains(t, []int{len(small), len(full)}, len(got))
		}
	})
}
