package airbnb

import (
	"net/url"
	"regexp"
	"strings"
)

// Crawl-side patterns and affordance labels.

const (
	// detailAnchorSubstr is the bulk-harvest filter for detail-page anchors.
	detailAnchorSubstr = "/rooms/"
)

// detailPathRe is the canonical detail-page path shape. Review and
// experience sub-pages do not match and are discarded during collection.
var detailPathRe = regexp.MustCompile(`^/rooms/\d+$`)

// consentLabels dismiss cookie banners and welcome modals after navigation.
var consentLabels = []string{
	"Accept", "I agree", "Got it", "OK",
	"Tout accepter", "Accepter",
	"Aceptar", "Akzeptieren",
}

// loadMoreLabels expand a stagnating search feed.
var loadMoreLabels = []string{
	"Show more", "Show more results", "Load more",
	"Voir plus", "Afficher plus", "Mostrar más", "Mehr anzeigen",
}

// CanonicalDetailURL strips query and fragment, trims a trailing slash, and
// validates the path against the detail-page shape. Returns the canonical
// absolute URL and whether raw was a detail-page reference at all.
func CanonicalDetailURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !u.IsAbs() {
		return "", false
	}

	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")

	if !detailPathRe.MatchString(u.Path) {
		return "", false
	}
	return u.String(), true
}
