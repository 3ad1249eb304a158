package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Snapshot is everything the source readers need from one rendered page:
// the DOM snapshot, the document title, and any intercepted data-fetch
// bodies. Captured once per detail page and discarded afterwards.
type Snapshot struct {
	URL       string
	DocTitle  string
	Doc       *goquery.Document
	Responses [][]byte
}

// NewSnapshot parses the HTML snapshot into a traversable document.
func NewSnapshot(url, docTitle, html string, responses [][]byte) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		URL:       url,
		DocTitle:  docTitle,
		Doc:       doc,
		Responses: responses,
	}, nil
}

// normText lowercases and whitespace-collapses text for phrase matching.
func normText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// collapseSpace trims and collapses internal whitespace, preserving case.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func matchesAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
