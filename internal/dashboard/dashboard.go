// Package dashboard computes the headline numbers of the loaded data.
package dashboard

import (
	"sort"
	"unicode/utf8"

	"github.com/montanaflynn/stats"

	"pmstandards/pkg/models"
)

type FrameworkCount struct {
	Framework string `json:"framework"`
	Excerpts  int    `json:"excerpts"`
}

type ExcerptLength struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

type Stats struct {
	TotalStandards   int              `json:"total_standards"`
	TotalTopics      int              `json:"total_topics"`
	TotalComparisons int              `json:"total_comparisons"`
	ByFramework      map[string]int   `json:"by_framework"`
	Frameworks       []FrameworkCount `json:"frameworks"`
	ExcerptLength    ExcerptLength    `json:"excerpt_length"`
}

func Compute(standards []models.StandardExcerpt, comparisons []models.ComparisonRow) Stats {
	s := Stats{
		TotalStandards:   len(standards),
		TotalComparisons: len(comparisons),
		ByFramework:      make(map[string]int),
		Frameworks:       []FrameworkCount{},
	}

	topics := make(map[string]struct{})
	lengths := make(stats.Float64Data, 0, len(standards))
	for _, rec := range standards {
		topics[rec.Topic] = struct{}{}
		s.ByFramework[rec.Standard]++
		lengths = append(lengths, float64(utf8.RuneCountInString(rec.Excerpt)))
	}
	s.TotalTopics = len(topics)

	for name, n := range s.ByFramework {
		s.Frameworks = append(s.Frameworks, FrameworkCount{Framework: name, Excerpts: n})
	}
	sort.Slice(s.Frameworks, func(i, j int) bool {
		return s.Frameworks[i].Framework < s.Frameworks[j].Framework
	})

	// stats returns ErrEmptyInput on no data; zero values are what we want then
	if len(lengths) > 0 {
		s.ExcerptLength.Mean, _ = lengths.Mean()
		s.ExcerptLength.Median, _ = lengths.Median()
		s.ExcerptLength.Max, _ = lengths.Max()
	}
	return s
}
