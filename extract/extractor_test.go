package extract

import (
	"context"
	"testing"
	"time"

	"airbnb-host-scraper/models"
	"airbnb-host-scraper/utils"
)

// stubPage serves canned HTML per URL so enrichment can be driven without a
// browser.
type stubPage struct {
	pages     map[string]string
	current   string
	navigated []string
}

func (s *stubPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	s.current = url
	s.navigated = append(s.navigated, url)
	return nil
}

func (s *stubPage) Title(ctx context.Context) (string, error) { return "", nil }
func (s *stubPage) HTML(ctx context.Context) (string, error)  { return s.pages[s.current], nil }

func (s *stubPage) Anchors(ctx context.Context, substr string) ([]string, error) { return nil, nil }

func (s *stubPage) ClickByText(ctx context.Context, labels []string, timeout time.Duration) (bool, error) {
	return false, nil
}

func (s *stubPage) ScrollBy(ctx context.Context, dx, dy int) error  { return nil }
func (s *stubPage) Wait(ctx context.Context, d time.Duration) error { return ctx.Err() }
func (s *stubPage) DrainResponses() [][]byte                        { return nil }
func (s *stubPage) CloseDialogs(ctx context.Context) error          { return nil }

func (s *stubPage) Evaluate(ctx context.Context, js string, out any) error { return nil }

func newTestExtractor() *Extractor {
	return New(utils.NewLogger("test", false), 0)
}

func resolveFixture(t *testing.T, html, docTitle string) *models.ListingRecord {
	t.Helper()
	snap, err := NewSnapshot("https://www.airbnb.com/rooms/1", docTitle, html, nil)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	rec := &models.ListingRecord{
		URL:     snap.URL,
		Sources: make(map[models.Field]models.SourceKind),
	}
	newTestExtractor().Resolve(context.Background(), nil, snap, rec)
	return rec
}

func TestNormalizeRating(t *testing.T) {
	tests := []struct {
		raw   string
		want  string
		valid bool
	}{
		{"4,87", "4.87", true},
		{"4.87", "4.87", true},
		{"5", "5.00", true},
		{"4,87 out of 5", "4.87", true},
		{"2.1 out of 5", "", false}, // below the plausibility floor
		{"2.9", "", false},
		{"5.1", "", false},
		{"", "", false},
		{"New", "", false},
	}

	for _, tt := range tests {
		got, valid := NormalizeRating(tt.raw)
		if valid != tt.valid || got != tt.want {
			t.Errorf("NormalizeRating(%q) = (%q, %v); want (%q, %v)",
				tt.raw, got, valid, tt.want, tt.valid)
		}
	}
}

func TestValidateHostName(t *testing.T) {
	long := "This is clearly a mis-captured paragraph about the neighbourhood, not a person"

	tests := []struct {
		raw   string
		valid bool
	}{
		{"Fatima", true},
		{"Jean-Pierre Dupont", true},
		{"Host", false},
		{"hôte", false},
		{"Meet your host", false},
		{long, false},
		{"", false},
	}

	for _, tt := range tests {
		if _, valid := ValidateField(models.FieldHostName, tt.raw); valid != tt.valid {
			t.Errorf("host name %q valid = %v; want %v", tt.raw, valid, tt.valid)
		}
	}
}

func TestValidateJoined(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2019", "2019"},
		{"March 2019", "March 2019"},
		{"2018-05-01T00:00:00Z", "2018"},
		{"last year", ""},
		{"", ""},
	}

	for _, tt := range tests {
		got, _ := ValidateField(models.FieldJoined, tt.raw)
		if got != tt.want {
			t.Errorf("joined %q = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestValidateLicenseRejectsPlainWords(t *testing.T) {
	for _, raw := range []string{"Registration", "available", "superhost"} {
		if got, valid := ValidateField(models.FieldLicense, raw); valid {
			t.Errorf("license %q unexpectedly accepted as %q", raw, got)
		}
	}
	if got, _ := ValidateField(models.FieldLicense, "ABC-DEF-1234"); got != "ABC-DEF-1234" {
		t.Errorf("license shape rejected: %q", got)
	}
}

// The structured reader outranks everything else: the embedded license wins
// even when the visible text carries a different numeric string.
func TestResolveStructuredLicenseBeatsPageText(t *testing.T) {
	html := `<html><body>
		<script type="application/json">{"license":"1100042"}</script>
		<section>
			<h2>Meet your host</h2>
			<a href="/users/show/5">Omar</a>
		</section>
		<p>Registration number: 555555</p>
	</body></html>`

	rec := resolveFixture(t, html, "")

	if rec.LicenseCode != "1100042" {
		t.Errorf("license = %q; want %q from the structured payload", rec.LicenseCode, "1100042")
	}
	if rec.Sources[models.FieldLicense] != models.SourceStructured {
		t.Errorf("license source = %q; want structured", rec.Sources[models.FieldLicense])
	}
}

func TestResolveFallsThroughInvalidCandidates(t *testing.T) {
	// The scoped rating (2.1) is implausible and must not block the page
	// from keeping the field empty rather than wrong.
	html := `<html><body>
		<section>
			<h2>Meet your host</h2>
			<a href="/users/show/5">Omar</a>
			<span aria-label="2.1 out of 5"></span>
		</section>
	</body></html>`

	rec := resolveFixture(t, html, "")

	if rec.HostOverallRating != "" {
		t.Errorf("rating = %q; want empty for an implausible value", rec.HostOverallRating)
	}
	if rec.HostName != "Omar" {
		t.Errorf("host name = %q; want %q", rec.HostName, "Omar")
	}
}

func TestResolveTitleFallsBackToDocumentTitle(t *testing.T) {
	rec := resolveFixture(t, "<html><body><p>bare page</p></body></html>", "Quiet Cabin - Airbnb")

	if rec.Title != "Quiet Cabin - Airbnb" {
		t.Errorf("title = %q; want the document title fallback", rec.Title)
	}
	if rec.Sources[models.FieldTitle] != models.SourceUnscoped {
		t.Errorf("title source = %q; want unscoped", rec.Sources[models.FieldTitle])
	}
}

// Every resolver failing is a normal outcome: the record is still assembled
// with empty fields.
func TestResolveEmptyPageYieldsEmptyRecord(t *testing.T) {
	rec := resolveFixture(t, "<html><body></body></html>", "")

	for _, field := range models.TargetFields {
		if rec.Get(field) != "" {
			t.Errorf("field %s = %q; want empty", field, rec.Get(field))
		}
	}
	if rec.URL == "" {
		t.Error("record must keep its URL even when everything else is empty")
	}
}

// Facts filled by the secondary profile visit carry their own source kind,
// and the visit is made once per host thanks to the cache.
func TestResolveEnrichesFromProfileWithDistinctSource(t *testing.T) {
	listing := `<html><body>
		<section>
			<h2>Meet your host</h2>
			<a href="/users/show/42">Fatima</a>
		</section>
	</body></html>`
	profile := `<html><body>
		<h1>Fatima</h1>
		<span aria-label="4.93 out of 5"></span>
		<p>Joined in 2015</p>
	</body></html>`

	pg := &stubPage{pages: map[string]string{
		"https://www.airbnb.com/users/show/42": profile,
	}}
	ex := newTestExtractor()

	resolve := func(pageURL string) *models.ListingRecord {
		snap, err := NewSnapshot(pageURL, "", listing, nil)
		if err != nil {
			t.Fatalf("NewSnapshot: %v", err)
		}
		rec := &models.ListingRecord{
			URL:     pageURL,
			Sources: make(map[models.Field]models.SourceKind),
		}
		ex.Resolve(context.Background(), pg, snap, rec)
		return rec
	}

	rec := resolve("https://www.airbnb.com/rooms/1")

	if rec.HostOverallRating != "4.93" {
		t.Errorf("rating = %q; want %q from the profile page", rec.HostOverallRating, "4.93")
	}
	if rec.Sources[models.FieldRating] != models.SourceProfile {
		t.Errorf("rating source = %q; want profile", rec.Sources[models.FieldRating])
	}
	if rec.HostJoined != "2015" {
		t.Errorf("joined = %q; want %q", rec.HostJoined, "2015")
	}
	if rec.Sources[models.FieldJoined] != models.SourceProfile {
		t.Errorf("joined source = %q; want profile", rec.Sources[models.FieldJoined])
	}
	if len(pg.navigated) != 1 {
		t.Fatalf("profile visited %d times; want 1", len(pg.navigated))
	}

	// Second listing by the same host hits the cache.
	rec2 := resolve("https://www.airbnb.com/rooms/2")
	if rec2.HostOverallRating != "4.93" || rec2.HostJoined != "2015" {
		t.Errorf("cached facts missing: rating %q joined %q", rec2.HostOverallRating, rec2.HostJoined)
	}
	if len(pg.navigated) != 1 {
		t.Errorf("profile visited %d times across two listings; want 1", len(pg.navigated))
	}
}

func TestResolveHostNameNeverFromReviews(t *testing.T) {
	// Reviewer identity present, host section absent: the host fields must
	// stay empty instead of borrowing the reviewer's.
	html := `<html><body>
		<h1>Sunny Loft</h1>
		<section>
			<h2>Reviews</h2>
			<div><a href="/users/show/999">Rita Reviewer</a></div>
		</section>
	</body></html>`

	rec := resolveFixture(t, html, "")

	if rec.HostName != "" {
		t.Errorf("host name = %q; want empty — reviewer identity must not leak", rec.HostName)
	}
	if rec.HostProfileURL != "" {
		t.Errorf("profile = %q; want empty — reviewer link must not leak", rec.HostProfileURL)
	}
	if rec.Title != "Sunny Loft" {
		t.Errorf("title = %q; want %q", rec.Title, "Sunny Loft")
	}
}
