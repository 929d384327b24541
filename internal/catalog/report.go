package catalog

import (
	"errors"
	"time"

	"pmstandards/internal/ingest"
	"pmstandards/pkg/models"
)

const (
	StatusLoaded   = "loaded"
	StatusNotFound = "not_found"
	StatusFailed   = "failed"
)

type SourceReport struct {
	Kind       string             `json:"kind"`
	Source     string             `json:"source"`
	Status     string             `json:"status"`
	Records    int                `json:"records"`
	Rows       int                `json:"rows,omitempty"`
	Rejected   int                `json:"rejected"`
	Rejections []models.Rejection `json:"rejections,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// setOutcome records err, clearing counts for a source whose data was
// not installed.
func (r *SourceReport) setOutcome(err error) {
	if err == nil {
		r.Status = StatusLoaded
		return
	}
	r.Status = StatusFailed
	if errors.Is(err, ingest.ErrNotFound) {
		r.Status = StatusNotFound
	}
	r.Error = err.Error()
	r.Records = 0
}

type ReloadReport struct {
	Version     string       `json:"version"`
	At          time.Time    `json:"at"`
	Duration    string       `json:"duration"`
	Standards   SourceReport `json:"standards"`
	Comparisons SourceReport `json:"comparisons"`
	IndexTokens int          `json:"index_tokens"`
}

func (r ReloadReport) OK() bool {
	return r.Standards.Status == StatusLoaded && r.Comparisons.Status == StatusLoaded
}
