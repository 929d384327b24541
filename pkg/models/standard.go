package models

import "time"

// StandardExcerpt is one accepted row of the standards CSV after topic
// forward-fill and deep-link derivation.
type StandardExcerpt struct {
	ID               int64  `json:"id" db:"id"`
	Topic            string `json:"topic" db:"topic"`
	Standard         string `json:"standard" db:"standard"`
	Page             string `json:"page" db:"page"`
	Excerpt          string `json:"excerpt" db:"excerpt"`
	DeepLink         string `json:"deep_link" db:"deep_link"`
	SectionReference string `json:"section_reference" db:"section_reference"`
}

// Rejection records why an input row was left out of the result set.
type Rejection struct {
	Line   int    `json:"line"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// StandardSet is a complete, replace-only set of excerpts plus the
// metadata of the load that produced it.
type StandardSet struct {
	Records  []StandardExcerpt `json:"records"`
	Source   string            `json:"source"`
	LoadedAt time.Time         `json:"loaded_at"`
}
