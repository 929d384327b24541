package sync

import "time"

const ReloadEventType = "catalog.reloaded"

// ReloadEvent is pushed to every connected client after a re-ingest
// installed new data.
type ReloadEvent struct {
	Type        string    `json:"type"`
	Version     string    `json:"version"`
	Standards   int       `json:"standards"`
	Comparisons int       `json:"comparisons"`
	Failed      []string  `json:"failed,omitempty"` // sources that kept their previous data
	At          time.Time `json:"at"`
}
