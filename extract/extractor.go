package extract

import (
	"context"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"airbnb-host-scraper/browser"
	"airbnb-host-scraper/models"
	"airbnb-host-scraper/utils"
)

// Extractor resolves every target field for one detail page by querying the
// source readers in fixed confidence order (structured → scoped → unscoped)
// and accepting the first candidate that passes field validation. It always
// assembles a record, empty fields included.
type Extractor struct {
	logger     *utils.Logger
	navTimeout time.Duration

	// profileCache memoizes the secondary profile-page visit per host so
	// listings sharing a host do not revisit the profile.
	profileCache *lru.Cache[string, profileFacts]
}

type profileFacts struct {
	rating string
	joined string
}

// New creates an Extractor.
func New(logger *utils.Logger, navTimeout time.Duration) *Extractor {
	cache, _ := lru.New[string, profileFacts](128)
	return &Extractor{
		logger:       logger,
		navTimeout:   navTimeout,
		profileCache: cache,
	}
}

// Extract captures the current page and resolves all fields. The returned
// record is complete even when capture fails outright; scraped_at is stamped
// at assembly time.
func (e *Extractor) Extract(ctx context.Context, pg browser.Page, pageURL string) *models.ListingRecord {
	rec := &models.ListingRecord{
		URL:     pageURL,
		Sources: make(map[models.Field]models.SourceKind),
	}

	snap := e.capture(ctx, pg, pageURL)
	if snap != nil {
		e.Resolve(ctx, pg, snap, rec)
	}

	rec.ScrapedAt = time.Now().UTC()
	return rec
}

func (e *Extractor) capture(ctx context.Context, pg browser.Page, pageURL string) *Snapshot {
	title, err := pg.Title(ctx)
	if err != nil {
		e.logger.Debug("[extract] title read failed for %s: %v", pageURL, err)
	}

	raw, err := pg.HTML(ctx)
	if err != nil {
		e.logger.Warn("[extract] snapshot failed for %s: %v", pageURL, err)
		return nil
	}

	snap, err := NewSnapshot(pageURL, title, raw, pg.DrainResponses())
	if err != nil {
		e.logger.Warn("[extract] snapshot parse failed for %s: %v", pageURL, err)
		return nil
	}
	return snap
}

// Resolve runs every field resolver against an already-captured snapshot.
// Exported separately so fixture tests can drive it without a browser
// (pg may be nil; interactive steps are then skipped).
func (e *Extractor) Resolve(ctx context.Context, pg browser.Page, snap *Snapshot, rec *models.ListingRecord) {
	structured := ReadStructured(snap)
	scoped := ReadSection(ResolveHostSection(snap.Doc))
	unscoped := ReadUnscoped(snap)

	for _, field := range models.TargetFields {
		if field == models.FieldLicense {
			continue
		}
		for _, candidates := range []map[models.Field]models.Candidate{structured, scoped, unscoped} {
			cand, ok := candidates[field]
			if !ok {
				continue
			}
			value, valid := ValidateField(field, cand.Value)
			if !valid {
				continue
			}
			rec.Set(field, value)
			rec.Sources[field] = cand.Source
			break
		}
	}

	// License has its own strategy below the structured reader; the scoped
	// section is never consulted for it.
	if cand, ok := structured[models.FieldLicense]; ok {
		if value, valid := ValidateField(models.FieldLicense, cand.Value); valid {
			rec.LicenseCode = value
			rec.Sources[models.FieldLicense] = models.SourceStructured
		}
	}
	if rec.LicenseCode == "" {
		if value := ResolveLicense(ctx, pg, snap); value != "" {
			rec.LicenseCode = value
			rec.Sources[models.FieldLicense] = models.SourceUnscoped
		}
	}

	e.enrichFromProfile(ctx, pg, rec)
}

// enrichFromProfile fills rating/joined from the host profile page when the
// listing page resolved a profile reference but left those fields empty.
// Optional pass: never overwrites a resolved field, never runs without a
// profile URL.
func (e *Extractor) enrichFromProfile(ctx context.Context, pg browser.Page, rec *models.ListingRecord) {
	if pg == nil || rec.HostProfileURL == "" {
		return
	}
	if rec.HostOverallRating != "" && rec.HostJoined != "" {
		return
	}

	facts, ok := e.profileCache.Get(rec.HostProfileURL)
	if !ok {
		facts = e.visitProfile(ctx, pg, rec.HostProfileURL)
		e.profileCache.Add(rec.HostProfileURL, facts)
	}

	if rec.HostOverallRating == "" && facts.rating != "" {
		rec.HostOverallRating = facts.rating
		rec.Sources[models.FieldRating] = models.SourceProfile
	}
	if rec.HostJoined == "" && facts.joined != "" {
		rec.HostJoined = facts.joined
		rec.Sources[models.FieldJoined] = models.SourceProfile
	}
}

func (e *Extractor) visitProfile(ctx context.Context, pg browser.Page, profileURL string) profileFacts {
	var facts profileFacts

	if err := pg.Navigate(ctx, profileURL, e.navTimeout); err != nil {
		e.logger.Debug("[extract] profile visit failed for %s: %v", profileURL, err)
		return facts
	}

	snap := e.capture(ctx, pg, profileURL)
	if snap == nil {
		return facts
	}

	if raw := pageRating(snap); raw != "" {
		if value, valid := ValidateField(models.FieldRating, raw); valid {
			facts.rating = value
		}
	}
	if raw := JoinedFromText(collapseSpace(snap.Doc.Find("body").Text())); raw != "" {
		if value, valid := ValidateField(models.FieldJoined, raw); valid {
			facts.joined = value
		}
	}
	return facts
}

// ValidateField applies field-specific validation and normalization to a raw
// candidate. Returns the normalized value and whether it is acceptable.
func ValidateField(field models.Field, raw string) (string, bool) {
	switch field {
	case models.FieldTitle:
		return validateTitle(raw)
	case models.FieldHostName:
		return validateHostName(raw)
	case models.FieldRating:
		return NormalizeRating(raw)
	case models.FieldJoined:
		return validateJoined(raw)
	case models.FieldLicense:
		v := licenseValueIn(raw)
		return v, v != ""
	case models.FieldProfileURL:
		v := AbsoluteProfileURL(raw)
		return v, v != ""
	}
	return "", false
}

func validateTitle(raw string) (string, bool) {
	v := collapseSpace(raw)
	return v, v != ""
}

func validateHostName(raw string) (string, bool) {
	v := collapseSpace(raw)
	if v == "" || len(v) > maxHostNameLen {
		return "", false
	}
	norm := normText(v)
	for _, stop := range hostNameStopPhrases {
		if norm == stop {
			return "", false
		}
	}
	return v, true
}

// NormalizeRating parses a decimal rating, tolerating a decimal comma,
// enforces the [3.0, 5.0] plausibility window, and formats to two decimals.
func NormalizeRating(raw string) (string, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if m := ratingOutOfRe.FindStringSubmatch(s); len(m) > 1 {
		s = strings.ReplaceAll(m[1], ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", false
	}
	if v < ratingFloor || v > ratingCeiling {
		return "", false
	}
	return strconv.FormatFloat(v, 'f', 2, 64), true
}

// validateJoined accepts a bare 4-digit year or a month+year token; any
// other string containing a plausible year (ISO timestamps from structured
// payloads, "Joined in March 2019" captures) is reduced to that year.
func validateJoined(raw string) (string, bool) {
	v := collapseSpace(raw)
	if v == "" {
		return "", false
	}
	if monthYearRe.MatchString(v) {
		return v, true
	}
	if year := yearTokenRe.FindString(v); year != "" {
		return year, true
	}
	return "", false
}
