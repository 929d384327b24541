package models

import "time"

// ComparisonRow is a raw comparison CSV row keyed by header name.
type ComparisonRow map[string]string

// ComparisonSummary concatenates every non-blank cell of the known
// comparison columns across all rows.
type ComparisonSummary struct {
	Similarities   string `json:"similarities" db:"similarities"`
	Differences    string `json:"differences" db:"differences"`
	UniquePMBOK    string `json:"unique_pmbok" db:"unique_pmbok"`
	UniquePRINCE2  string `json:"unique_prince2" db:"unique_prince2"`
	UniqueISO21500 string `json:"unique_iso21500" db:"unique_iso21500"`
	UniqueISO21502 string `json:"unique_iso21502" db:"unique_iso21502"`
}

type ComparisonSet struct {
	Rows     []ComparisonRow   `json:"rows"`
	Summary  ComparisonSummary `json:"summary"`
	Source   string            `json:"source"`
	LoadedAt time.Time         `json:"loaded_at"`
}
