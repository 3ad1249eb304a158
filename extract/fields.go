package extract

import (
	"regexp"

	"airbnb-host-scraper/models"
)

// Per-field extraction configuration: alias sets for the structured walk,
// multilingual label phrases for the DOM readers, accepted value shapes and
// plausibility bounds for validation. All immutable; resolvers receive these
// rather than reaching for scattered globals.

// structuredAliases maps embedded-JSON key names to the field they carry.
// Matching is case-insensitive on the key. "name" is handled separately in
// the walk because it is the host's name only inside an object that also
// carries a profile-path-shaped value, and the listing title otherwise.
var structuredAliases = map[models.Field][]string{
	models.FieldTitle:      {"title", "listingTitle", "pdpTitle"},
	models.FieldLicense:    {"license", "licence", "licenseNumber", "registration", "registrationNumber", "permit", "permitNumber", "dtcmPermit"},
	models.FieldHostName:   {"hostName", "smartName"},
	models.FieldRating:     {"overallRating", "ratingValue", "guestSatisfactionOverall", "starRating"},
	models.FieldJoined:     {"joinedOn", "memberSince", "createdAt", "hostSince"},
	models.FieldProfileURL: {"hostProfileUrl", "profileUrl", "profilePath", "userProfileUrl"},
}

// hostNameAliases apply only inside profile-shaped objects.
var hostNameAliases = []string{"name", "firstName", "displayName", "hostName", "smartName"}

// hostHeadingPhrases identify the host-identity section heading. Lowercased,
// substring-matched against heading text.
var hostHeadingPhrases = []string{
	"meet your host",
	"rencontrez votre hôte",
	"faites connaissance avec votre hôte",
	"conoce a tu anfitrión",
	"lerne deinen gastgeber kennen",
	"about the host",
	"hosted by",
	"your host",
}

// reviewsHeadingPhrases mark regions the host section must never intersect.
var reviewsHeadingPhrases = []string{
	"reviews",
	"guest reviews",
	"commentaires",
	"avis",
	"reseñas",
	"bewertungen",
}

// hostNameStopPhrases are section headings that over-eager captures return as
// if they were names.
var hostNameStopPhrases = []string{
	"host", "hôte", "anfitrión", "gastgeber",
	"meet your host", "rencontrez votre hôte", "your host", "superhost",
}

// disclosureLabels open the collapsed region that usually hides the license.
var disclosureLabels = []string{
	"Show more",
	"Read more",
	"About this place",
	"Voir plus",
	"En savoir plus",
	"À propos de ce logement",
	"Mostrar más",
	"Mehr anzeigen",
}

var (
	// profilePathRe matches the detail site's host-profile path shape.
	profilePathRe = regexp.MustCompile(`/users/show/\d+`)

	// hostedByRe captures the host name out of "Hosted by <name>" phrasing.
	hostedByRe = []*regexp.Regexp{
		regexp.MustCompile(`(?i)hosted\s+by\s+([^\n,.:;·]{1,60})`),
		regexp.MustCompile(`(?i)hôte\s*:\s*([^\n,.:;·]{1,60})`),
		regexp.MustCompile(`(?i)anfitrión\s*:\s*([^\n,.:;·]{1,60})`),
	}

	// ratingOutOfRe matches a locale-tolerant "<number> out of/sur/de 5".
	ratingOutOfRe = regexp.MustCompile(`(\d(?:[.,]\d+)?)\s*(?:out\s+of|sur|de|von)\s*5`)

	// joinedYearRe matches absolute joined phrasing with an optional month.
	joinedYearRe = []*regexp.Regexp{
		regexp.MustCompile(`(?i)joined\s+in\s+((?:[A-Za-z]+\s+)?\d{4})`),
		regexp.MustCompile(`(?i)member\s+since\s+((?:[A-Za-z]+\s+)?\d{4})`),
		regexp.MustCompile(`(?i)membre\s+depuis\s+((?:[a-zéû]+\s+)?\d{4})`),
		regexp.MustCompile(`(?i)se\s+uni[oó]\s+en\s+((?:[a-z]+\s+)?\d{4})`),
		regexp.MustCompile(`(?i)mitglied\s+seit\s+((?:[a-zä]+\s+)?\d{4})`),
	}

	// joinedRelativeRe matches "<n> years on Airbnb" phrasing, converted to an
	// approximate absolute year.
	joinedRelativeRe = regexp.MustCompile(`(?i)(\d{1,2})\s*(?:years?|ans|años|jahre)\s*(?:on|sur|en|auf)\s*airbnb`)

	// yearTokenRe accepts a bare plausible 4-digit year.
	yearTokenRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

	// monthYearRe accepts a "Month 2019" token.
	monthYearRe = regexp.MustCompile(`^[\p{L}]+\s+(19|20)\d{2}$`)

	// licenseLabelRe matches the multilingual license/registration label set.
	licenseLabelRe = regexp.MustCompile(`(?i)(?:` +
		`licen[cs]e(?:\s*(?:number|no\.?|#))?` +
		`|registration(?:\s*number)?` +
		`|permit(?:\s*number)?` +
		`|num[ée]ro\s*d['e]?\s*enregistrement` +
		`|num[ée]ro\s*de\s*licence` +
		`|n[úu]mero\s*de\s*registro` +
		`|genehmigungsnummer` +
		`|dtcm` +
		`|tourism\s*(?:authority|licen[cs]e|permit)` +
		`)`)

	// licenseCodeRe is the hyphenated 3+3+4..6 alphanumeric block shape.
	licenseCodeRe = regexp.MustCompile(`\b[A-Za-z0-9]{3}-[A-Za-z0-9]{3}-[A-Za-z0-9]{4,6}\b`)

	// licenseNumericRe is the bare 5+ digit fallback shape. Low confidence:
	// it can false-positive on unrelated numbers, so it is always tried last.
	licenseNumericRe = regexp.MustCompile(`\b\d{5,}\b`)

	// licenseExemptRe accepts free-text exemption statements.
	licenseExemptRe = regexp.MustCompile(`(?i)\bexempt(?:ed)?\b`)
)

// Rating plausibility bounds: a displayed overall rating below 3.0 is almost
// always mis-matched text, not a real score.
const (
	ratingFloor   = 3.0
	ratingCeiling = 5.0
)

// maxHostNameLen rejects captures that swallowed a whole paragraph.
const maxHostNameLen = 60
