package extract

import (
	"github.com/PuerkitoBio/goquery"

	"airbnb-host-scraper/models"
)

// Unscoped-Text Reader: whole-page rendered text, lowest confidence. Used
// only after the structured and scoped readers came up empty or invalid.

// ReadUnscoped pulls generic fallback candidates from the full page.
func ReadUnscoped(snap *Snapshot) map[models.Field]models.Candidate {
	out := make(map[models.Field]models.Candidate)

	body := snap.Doc.Find("body")
	text := collapseSpace(body.Text())

	if h1 := collapseSpace(snap.Doc.Find("h1").First().Text()); h1 != "" {
		out[models.FieldTitle] = models.Candidate{Value: h1, Source: models.SourceUnscoped}
	} else if t := collapseSpace(snap.DocTitle); t != "" {
		out[models.FieldTitle] = models.Candidate{Value: t, Source: models.SourceUnscoped}
	}

	for _, re := range hostedByRe {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			out[models.FieldHostName] = models.Candidate{Value: collapseSpace(m[1]), Source: models.SourceUnscoped}
			break
		}
	}

	if rating := pageRating(snap); rating != "" {
		out[models.FieldRating] = models.Candidate{Value: rating, Source: models.SourceUnscoped}
	}

	if joined := JoinedFromText(text); joined != "" {
		out[models.FieldJoined] = models.Candidate{Value: joined, Source: models.SourceUnscoped}
	}

	// No profile-URL fallback here: an unscoped profile link is as likely to
	// be a reviewer's as the host's.

	return out
}

func pageRating(snap *Snapshot) string {
	var rating string
	snap.Doc.Find("[aria-label]").EachWithBreak(func(_ int, el *goquery.Selection) bool {
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
	if m := ratingOutOfRe.FindStringSubmatch(collapseSpace(snap.Doc.Find("body").Text())); len(m) > 1 {
		rating = clampRating(m[1])
	}
	return rating
}
