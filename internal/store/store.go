// Package store defines the read and replace contract shared by the
// in-memory and SQLite data stores.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pmstandards/internal/ingest"
	"pmstandards/pkg/models"
)

// ErrNotLoaded is returned when a data set has never been loaded. It
// matches ingest.ErrNotFound under errors.Is.
var ErrNotLoaded = fmt.Errorf("data set not loaded: %w", ingest.ErrNotFound)

const (
	KindStandards   = "standards"
	KindComparisons = "comparisons"
)

// Dataset carries the sets to install. A nil set leaves the stored one
// untouched.
type Dataset struct {
	Standards   *models.StandardSet
	Comparisons *models.ComparisonSet
}

// LoadInfo describes the currently installed set of one kind.
type LoadInfo struct {
	Kind     string    `json:"kind" db:"kind"`
	Source   string    `json:"source" db:"source"`
	Records  int       `json:"records" db:"records"`
	LoadedAt time.Time `json:"loaded_at" db:"loaded_at"`
}

type Store interface {
	// Replace installs the given sets atomically. Readers observe either
	// the previous sets or the new ones, never a mix.
	Replace(ctx context.Context, ds Dataset) error

	Standards(ctx context.Context) ([]models.StandardExcerpt, error)
	StandardsByTopic(ctx context.Context, topic string) ([]models.StandardExcerpt, error)
	Topics(ctx context.Context) ([]string, error)
	Comparisons(ctx context.Context) ([]models.ComparisonRow, error)
	Summary(ctx context.Context) (models.ComparisonSummary, error)
	Status(ctx context.Context) ([]LoadInfo, error)
}

// NormalizeTopic is the form topics are compared in.
func NormalizeTopic(topic string) string {
	return strings.ToLower(strings.TrimSpace(topic))
}
