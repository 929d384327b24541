package dashboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pmstandards/internal/dashboard"
	"pmstandards/pkg/models"
)

func TestCompute(t *testing.T) {
	t.Parallel()

	standards := []models.StandardExcerpt{
		{Topic: "Risk", Standard: "PMBOK 7", Excerpt: "abcd"},
		{Topic: "Risk", Standard: "PRINCE2", Excerpt: "ab"},
		{Topic: "Scope", Standard: "PMBOK 7", Excerpt: "abcdefghij"},
	}
	comparisons := []models.ComparisonRow{{"Similarities": "x"}}

	s := dashboard.Compute(standards, comparisons)
	assert.Equal(t, 3, s.TotalStandards)
	assert.Equal(t, 2, s.TotalTopics)
	assert.Equal(t, 1, s.TotalComparisons)
	assert.Equal(t, map[string]int{"PMBOK 7": 2, "PRINCE2": 1}, s.ByFramework)
	assert.Equal(t, []dashboard.FrameworkCount{
		{Framework: "PMBOK 7", Excerpts: 2},
		{Framework: "PRINCE2", Excerpts: 1},
	}, s.Frameworks)
	assert.InDelta(t, 16.0/3.0, s.ExcerptLength.Mean, 1e-9)
	assert.Equal(t, 4.0, s.ExcerptLength.Median)
	assert.Equal(t, 10.0, s.ExcerptLength.Max)
}

func TestCompute_Empty(t *testing.T) {
	t.Parallel()

	s := dashboard.Compute(nil, nil)
	assert.Zero(t, s.TotalStandards)
	assert.Empty(t, s.Frameworks)
	assert.Equal(t, dashboard.ExcerptLength{}, s.ExcerptLength)
}
