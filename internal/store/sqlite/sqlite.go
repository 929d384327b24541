// Package sqlite persists the data sets in SQLite. A replace rewrites the
// affected tables inside one transaction so concurrent readers never see
// a half-loaded table.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"pmstandards/internal/store"
	"pmstandards/pkg/database"
	"pmstandards/pkg/models"
)

type Store struct {
	DB *sqlx.DB
}

var _ store.Store = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{DB: sqlx.NewDb(db, database.DriverName)}
}

func (s *Store) Replace(ctx context.Context, ds store.Dataset) (err error) {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if ds.Standards != nil {
		if err = replaceStandards(ctx, tx, ds.Standards); err != nil {
			return err
		}
	}
	if ds.Comparisons != nil {
		if err = replaceComparisons(ctx, tx, ds.Comparisons); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

func replaceStandards(ctx context.Context, tx *sqlx.Tx, set *models.StandardSet) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM standards`); err != nil {
		return fmt.Errorf("clear standards: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO standards (id, topic, standard, page, excerpt, deep_link, section_reference)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare standards insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range set.Records {
		// ids follow ingestion order so equal input yields equal ids
		if _, err := stmt.ExecContext(ctx,
			int64(i+1), rec.Topic, rec.Standard, rec.Page, rec.Excerpt, rec.DeepLink, rec.SectionReference,
		); err != nil {
			return fmt.Errorf("insert standard %d: %w", i+1, err)
		}
	}

	return recordRun(ctx, tx, store.KindStandards, set.Source, len(set.Records), set.LoadedAt)
}

func replaceComparisons(ctx context.Context, tx *sqlx.Tx, set *models.ComparisonSet) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM comparisons`); err != nil {
		return fmt.Errorf("clear comparisons: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO comparisons (id, row_json) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare comparisons insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range set.Rows {
		b, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("marshal comparison %d: %w", i+1, err)
		}
		if _, err := stmt.ExecContext(ctx, int64(i+1), string(b)); err != nil {
			return fmt.Errorf("insert comparison %d: %w", i+1, err)
		}
	}

	sum := set.Summary
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO comparison_summary (id, similarities, differences, unique_pmbok, unique_prince2, unique_iso21500, unique_iso21502)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  similarities = excluded.similarities,
		  differences = excluded.differences,
		  unique_pmbok = excluded.unique_pmbok,
		  unique_prince2 = excluded.unique_prince2,
		  unique_iso21500 = excluded.unique_iso21500,
		  unique_iso21502 = excluded.unique_iso21502
	`, sum.Similarities, sum.Differences, sum.UniquePMBOK, sum.UniquePRINCE2, sum.UniqueISO21500, sum.UniqueISO21502); err != nil {
		return fmt.Errorf("upsert comparison summary: %w", err)
	}

	return recordRun(ctx, tx, store.KindComparisons, set.Source, len(set.Rows), set.LoadedAt)
}

func recordRun(ctx context.Context, tx *sqlx.Tx, kind, source string, records int, at time.Time) error {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO ingest_runs (kind, source, records, loaded_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET
		  source = excluded.source,
		  records = excluded.records,
		  loaded_at = excluded.loaded_at
	`, kind, source, records, at.UTC()); err != nil {
		return fmt.Errorf("record %s run: %w", kind, err)
	}
	return nil
}
