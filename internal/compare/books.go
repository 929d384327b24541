package compare

import (
	"net/url"
	"strings"
)

// Framework is one of the standards every comparison is laid out over.
type Framework struct {
	Name      string `json:"name"`
	Badge     string `json:"badge"`
	BookURL   string `json:"book_url"`
	BookTitle string `json:"book_title"`
}

// Frameworks is the fixed comparison order.
var Frameworks = []Framework{
	{Name: "PMBOK 7", Badge: "Guide", BookURL: "/assets/PMBOK.pdf", BookTitle: "PMBOK Guide 7th Edition"},
	{Name: "PRINCE2", Badge: "Method", BookURL: "/assets/PRINCE2.pdf", BookTitle: "PRINCE2 7th Edition"},
	{Name: "ISO 21500", Badge: "Standard", BookURL: "/assets/ISO 21500-2021.pdf", BookTitle: "ISO 21500:2021"},
	{Name: "ISO 21502", Badge: "Practice", BookURL: "/assets/ISO 21502-2020.pdf", BookTitle: "ISO 21502:2020"},
}

func framework(name string) (Framework, bool) {
	for _, f := range Frameworks {
		if f.Name == name {
			return f, true
		}
	}
	return Framework{}, false
}

// BookLink points the PDF viewer at page of the given standard's book, or
// "#" when the standard has no known book.
func BookLink(standard, page string) string {
	f, ok := framework(standard)
	if !ok {
		return "#"
	}
	return "pdf-viewer.html?file=" + escape(f.BookURL) +
		"&title=" + escape(f.BookTitle) +
		"&page=" + escape(page)
}

// escape encodes like encodeURIComponent: spaces become %20, not '+'.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// HasPage reports whether page is a real page reference.
func HasPage(page string) bool {
	return page != "" && page != "-"
}
