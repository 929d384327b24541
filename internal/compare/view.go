// Package compare builds the side-by-side view of one topic across the
// four frameworks.
package compare

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"pmstandards/pkg/models"
)

const uniquePreviewLen = 150

type Entry struct {
	ID       int64  `json:"id"`
	Excerpt  string `json:"excerpt"`
	Page     string `json:"page,omitempty"`
	PageLink string `json:"page_link,omitempty"`
	DeepLink string `json:"deep_link"`
}

type Card struct {
	Standard    string  `json:"standard"`
	Badge       string  `json:"badge"`
	NoData      bool    `json:"no_data"`
	Placeholder string  `json:"placeholder,omitempty"`
	Entries     []Entry `json:"entries"`
}

type Stats struct {
	Standards      int `json:"standards"`
	Excerpts       int `json:"excerpts"`
	PageReferences int `json:"page_references"`
}

type UniqueAspect struct {
	Standard string `json:"standard"`
	Text     string `json:"text"`
}

type View struct {
	Topic        string         `json:"topic"`
	Cards        []Card         `json:"cards"`
	Stats        Stats          `json:"stats"`
	Similarities string         `json:"similarities"`
	Differences  string         `json:"differences"`
	Unique       []UniqueAspect `json:"unique"`
}

// Build lays rows out over Frameworks. rows are expected to belong to
// topic already; rows of other standards only count towards Stats.
func Build(topic string, rows []models.StandardExcerpt) View {
	byStandard := make(map[string][]models.StandardExcerpt, len(Frameworks))
	for _, r := range rows {
		byStandard[r.Standard] = append(byStandard[r.Standard], r)
	}

	v := View{
		Topic:        topic,
		Cards:        make([]Card, 0, len(Frameworks)),
		Unique:       make([]UniqueAspect, 0, len(Frameworks)),
		Stats:        computeStats(rows),
		Similarities: fmt.Sprintf("All standards recognize the importance of %s in project management, though they approach it with different levels of detail and emphasis.", strings.ToLower(topic)),
		Differences:  fmt.Sprintf("The standards differ in their approach to %s, with varying levels of prescription and methodology.", strings.ToLower(topic)),
	}

	for _, f := range Frameworks {
		items := byStandard[f.Name]
		card := Card{Standard: f.Name, Badge: f.Badge, Entries: []Entry{}}
		if len(items) == 0 {
			card.NoData = true
			card.Placeholder = "No content available for this topic in " + f.Name
			v.Unique = append(v.Unique, UniqueAspect{
				Standard: f.Name,
				Text:     fmt.Sprintf("No specific content for %s in this standard.", topic),
			})
			v.Cards = append(v.Cards, card)
			continue
		}

		for _, it := range items {
			e := Entry{ID: it.ID, Excerpt: it.Excerpt, DeepLink: it.DeepLink}
			if HasPage(it.Page) {
				e.Page = it.Page
				e.PageLink = BookLink(it.Standard, it.Page)
			}
			card.Entries = append(card.Entries, e)
		}
		v.Unique = append(v.Unique, UniqueAspect{
			Standard: f.Name,
			Text:     "Unique perspective: " + preview(items[0].Excerpt, uniquePreviewLen) + "...",
		})
		v.Cards = append(v.Cards, card)
	}
	return v
}

// Placeholders counts the cards without data.
func (v View) Placeholders() int {
	n := 0
	for _, c := range v.Cards {
		if c.NoData {
			n++
		}
	}
	return n
}

func computeStats(rows []models.StandardExcerpt) Stats {
	standards := make(map[string]struct{})
	s := Stats{Excerpts: len(rows)}
	for _, r := range rows {
		standards[r.Standard] = struct{}{}
		if HasPage(r.Page) {
			s.PageReferences++
		}
	}
	s.Standards = len(standards)
	return s
}

func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
