package compare_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pmstandards/internal/compare"
)

func TestResolveTopic(t *testing.T) {
	t.Parallel()

	topics := []string{
		"1. Stakeholder Engagement",
		"10. Risk & Uncertainty Management",
		"Risk",
		"Quality",
	}

	tests := []struct {
		name    string
		keyword string
		want    string
		ok      bool
	}{
		{"exact after normalization", "risk", "Risk", true},
		{"prefix and punctuation ignored", "risk-uncertainty", "10. Risk & Uncertainty Management", true},
		{"containment", "stakeholder", "1. Stakeholder Engagement", true},
		{"case insensitive", "QUALITY", "Quality", true},
		{"no match", "procurement", "", false},
		{"blank keyword", " - ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := compare.ResolveTopic(tt.keyword, topics)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
