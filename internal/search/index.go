// Package search implements the keyword index over standards excerpts.
//
// The index maps every lowercase word longer than two characters to the
// records containing it. Queries match index words by substring, so a
// query for "risk" also hits "risks" and "risk-based".
package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"pmstandards/pkg/models"
)

const (
	DefaultLimit = 10
	minTokenLen  = 3
	snippetLen   = 100
)

// Index is immutable once built and safe for concurrent queries.
type Index struct {
	records []models.StandardExcerpt
	tokens  []string         // first-seen order
	buckets map[string][]int // token -> positions in records, one per occurrence
}

type Result struct {
	Record  models.StandardExcerpt `json:"record"`
	Score   int                    `json:"score"`
	Snippet string                 `json:"snippet"`
}

// Build indexes standard, topic and excerpt of every record.
func Build(records []models.StandardExcerpt) *Index {
	idx := &Index{
		records: append([]models.StandardExcerpt(nil), records...),
		buckets: make(map[string][]int),
	}
	for pos, rec := range idx.records {
		text := strings.ToLower(strings.Join([]string{rec.Standard, rec.Topic, rec.Excerpt}, " "))
		for _, word := range tokenize(text) {
			if _, ok := idx.buckets[word]; !ok {
				idx.tokens = append(idx.tokens, word)
			}
			idx.buckets[word] = append(idx.buckets[word], pos)
		}
	}
	return idx
}

// Len reports the number of distinct tokens.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.tokens)
}

// Records reports the number of indexed records.
func (idx *Index) Records() int {
	if idx == nil {
		return 0
	}
	return len(idx.records)
}

// Search scores each record by the number of (query word, index word)
// pairs where the index word contains the query word, counting every
// bucket entry. Results are ordered by score, ties in the order records
// were first matched, and capped at limit (DefaultLimit if limit <= 0).
func (idx *Index) Search(query string, limit int) []Result {
	if limit <= 0 {
		limit = DefaultLimit
	}
	out := []Result{}
	if idx == nil {
		return out
	}

	scores := make(map[int]int)
	var order []int
	for _, q := range tokenize(strings.ToLower(query)) {
		for _, word := range idx.tokens {
			if !strings.Contains(word, q) {
				continue
			}
			for _, pos := range idx.buckets[word] {
				if _, seen := scores[pos]; !seen {
					order = append(order, pos)
				}
				scores[pos]++
			}
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}

	for _, pos := range order {
		rec := idx.records[pos]
		out = append(out, Result{
			Record:  rec,
			Score:   scores[pos],
			Snippet: truncate(rec.Excerpt, snippetLen),
		})
	}
	return out
}

// tokenize splits on whitespace and keeps words longer than two runes.
func tokenize(s string) []string {
	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minTokenLen {
			out = append(out, f)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
