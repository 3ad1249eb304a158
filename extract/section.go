package extract

import (
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"airbnb-host-scraper/models"
)

// Scoped-Section Reader: isolates the host-identity block and reads host
// fields from inside it only. Medium confidence: visible text, but scoped
// away from reviews and unrelated cards. License is deliberately not sought
// here; it has no stable association with any single section.

const profileBaseURL = "https://www.airbnb.com"

// ResolveHostSection finds the DOM subtree judged to be the host-identity
// block, or nil when none can be isolated. The returned selection never
// encloses a reviews heading; that exclusion is what keeps reviewer names
// and links out of the host fields.
func ResolveHostSection(doc *goquery.Document) *goquery.Selection {
	var section *goquery.Selection

	// Preferred: a recognizable host heading, taken with its smallest
	// enclosing sectioning block.
	doc.Find("h1, h2, h3, [role=\"heading\"]").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if !matchesAny(normText(h.Text()), hostHeadingPhrases) {
			return true
		}
		region := regionOf(h)
		if region == nil || containsReviewsHeading(region) {
			return true
		}
		section = region
		return false
	})
	if section != nil {
		return section
	}

	// Fallback: the region around the first profile link that is not part
	// of a reviews block.
	doc.Find(`a[href*="/users/show/"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		region := regionOf(a)
		if region == nil || containsReviewsHeading(region) {
			return true
		}
		section = region
		return false
	})

	return section
}

// regionOf returns the smallest sectioning block enclosing el.
func regionOf(el *goquery.Selection) *goquery.Selection {
	region := el.Closest("section, article, [data-section-id]")
	if region.Length() == 0 {
		region = el.Closest("div")
	}
	if region.Length() == 0 {
		return nil
	}
	return region
}

func containsReviewsHeading(region *goquery.Selection) bool {
	found := false
	region.Find("h1, h2, h3, [role=\"heading\"]").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if matchesAny(normText(h.Text()), reviewsHeadingPhrases) {
			found = true
			return false
		}
		return true
	})
	return found
}

// ReadSection pulls host candidates from within the resolved section only.
func ReadSection(section *goquery.Selection) map[models.Field]models.Candidate {
	out := make(map[models.Field]models.Candidate)
	if section == nil || section.Length() == 0 {
		return out
	}

	profileLink := section.Find(`a[href*="/users/show/"]`).First()

	if href, ok := profileLink.Attr("href"); ok {
		if abs := AbsoluteProfileURL(href); abs != "" {
			out[models.FieldProfileURL] = models.Candidate{Value: abs, Source: models.SourceScoped}
		}
	}

	if name := sectionHostName(section, profileLink); name != "" {
		out[models.FieldHostName] = models.Candidate{Value: name, Source: models.SourceScoped}
	}

	if rating := sectionRating(section); rating != "" {
		out[models.FieldRating] = models.Candidate{Value: rating, Source: models.SourceScoped}
	}

	if joined := JoinedFromText(sectionText(section)); joined != "" {
		out[models.FieldJoined] = models.Candidate{Value: joined, Source: models.SourceScoped}
	}

	return out
}

// sectionHostName tries, in order: the profile link's own text when it is
// short and name-shaped; a "Hosted by <name>" capture over the section text;
// the first capitalized short text among link/heading descendants.
func sectionHostName(section, profileLink *goquery.Selection) string {
	if profileLink != nil && profileLink.Length() > 0 {
		if t := collapseSpace(profileLink.Text()); looksLikeName(t) {
			return t
		}
	}

	text := sectionText(section)
	for _, re := range hostedByRe {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			if t := collapseSpace(m[1]); looksLikeName(t) {
				return t
			}
		}
	}

	var name string
	section.Find("a, h1, h2, h3").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		t := collapseSpace(el.Text())
		if looksLikeName(t) && !matchesAny(normText(t), hostNameStopPhrases) {
			name = t
			return false
		}
		return true
	})
	return name
}

// looksLikeName accepts short capitalized strings without digits.
func looksLikeName(s string) bool {
	if s == "" || len(s) > 40 {
		return false
	}
	words := strings.Fields(s)
	if len(words) == 0 || len(words) > 4 {
		return false
	}
	first := []rune(words[0])
	if !unicode.IsUpper(first[0]) {
		return false
	}
	for _, r := range s {
		if unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// sectionRating looks for a bounded "x out of 5" value in aria-labels first,
// then in the section's flattened text. Values are clamped to [0,5]; the
// plausibility floor is applied later at validation.
func sectionRating(section *goquery.Selection) string {
	var rating string

	section.Find("[aria-label]").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		label, _ := el.Attr("aria-label")
		if m := ratingOutOfRe.FindStringSubmatch(label); len(m) > 1 {
			rating = clampRating(m[1])
			return false
		}
		return true
	})
	if rating != "" {
		return rating
	}

	if m := ratingOutOfRe.FindStringSubmatch(sectionText(section)); len(m) > 1 {
		rating = clampRating(m[1])
	}
	return rating
}

func clampRating(raw string) string {
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return ""
	}
	if v < 0 {
		v = 0
	}
	if v > 5 {
		v = 5
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// JoinedFromText extracts a joined date from flattened text: an absolute
// "joined in <year>" style token first, then a relative "<n> years on
// Airbnb" converted against the current year.
func JoinedFromText(text string) string {
	for _, re := range joinedYearRe {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			return collapseSpace(m[1])
		}
	}
	if m := joinedRelativeRe.FindStringSubmatch(text); len(m) > 1 {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return ""
		}
		return strconv.Itoa(time.Now().Year() - n)
	}
	return ""
}

// AbsoluteProfileURL canonicalizes a profile href to an absolute URL with
// query and fragment stripped, or "" when the path shape does not match.
func AbsoluteProfileURL(href string) string {
	if href == "" || !profilePathRe.MatchString(href) {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	u.RawQuery = ""
	u.Fragment = ""
	if u.IsAbs() {
		return u.String()
	}
	return profileBaseURL + u.Path
}

// sectionText flattens a selection's text with single spaces.
func sectionText(section *goquery.Selection) string {
	return collapseSpace(section.Text())
}
