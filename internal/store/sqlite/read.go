package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"pmstandards/internal/store"
	"pmstandards/pkg/models"
)

const selectStandards = `
	SELECT id, topic, standard, page, excerpt, deep_link, section_reference
	FROM standards
`

func (s *Store) loaded(ctx context.Context, kind string) error {
	var n int
	if err := s.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM ingest_runs WHERE kind = ?`, kind); err != nil {
		return fmt.Errorf("check %s loaded: %w", kind, err)
	}
	if n == 0 {
		return store.ErrNotLoaded
	}
	return nil
}

func (s *Store) Standards(ctx context.Context) ([]models.StandardExcerpt, error) {
	if err := s.loaded(ctx, store.KindStandards); err != nil {
		return nil, err
	}
	out := []models.StandardExcerpt{}
	if err := s.DB.SelectContext(ctx, &out, selectStandards+` ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list standards: %w", err)
	}
	return out, nil
}

func (s *Store) StandardsByTopic(ctx context.Context, topic string) ([]models.StandardExcerpt, error) {
	if err := s.loaded(ctx, store.KindStandards); err != nil {
		return nil, err
	}
	out := []models.StandardExcerpt{}
	if err := s.DB.SelectContext(ctx, &out,
		selectStandards+` WHERE LOWER(topic) = ? ORDER BY id`, store.NormalizeTopic(topic),
	); err != nil {
		return nil, fmt.Errorf("list standards by topic: %w", err)
	}
	return out, nil
}

func (s *Store) Topics(ctx context.Context) ([]string, error) {
	if err := s.loaded(ctx, store.KindStandards); err != nil {
		return nil, err
	}
	out := []string{}
	if err := s.DB.SelectContext(ctx, &out, `SELECT DISTINCT topic FROM standards ORDER BY topic`); err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return out, nil
}

func (s *Store) Comparisons(ctx context.Context) ([]models.ComparisonRow, error) {
	if err := s.loaded(ctx, store.KindComparisons); err != nil {
		return nil, err
	}

	var raw []string
	if err := s.DB.SelectContext(ctx, &raw, `SELECT row_json FROM comparisons ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list comparisons: %w", err)
	}

	out := make([]models.ComparisonRow, 0, len(raw))
	for i, r := range raw {
		var row models.ComparisonRow
		if err := json.Unmarshal([]byte(r), &row); err != nil {
			return nil, fmt.Errorf("decode comparison %d: %w", i+1, err)
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *Store) Summary(ctx context.Context) (models.ComparisonSummary, error) {
	var sum models.ComparisonSummary
	if err := s.loaded(ctx, store.KindComparisons); err != nil {
		return sum, err
	}
	if err := s.DB.GetContext(ctx, &sum, `
		SELECT similarities, differences, unique_pmbok, unique_prince2, unique_iso21500, unique_iso21502
		FROM comparison_summary
		WHERE id = 1
	`); err != nil {
		return sum, fmt.Errorf("get comparison summary: %w", err)
	}
	return sum, nil
}

func (s *Store) Status(ctx context.Context) ([]store.LoadInfo, error) {
	out := []store.LoadInfo{}
	if err := s.DB.SelectContext(ctx, &out, `
		SELECT kind, source, records, loaded_at
		FROM ingest_runs
		ORDER BY kind
	`); err != nil {
		return nil, fmt.Errorf("list ingest runs: %w", err)
	}
	return out, nil
}
