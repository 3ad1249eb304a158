package models

import "time"

// Field names the six semantic targets the extraction engine resolves,
// plus the bookkeeping columns that frame them in the output.
type Field string

const (
	FieldTitle      Field = "title"
	FieldLicense    Field = "license_code"
	FieldHostName   Field = "host_name"
	FieldRating     Field = "host_overall_rating"
	FieldProfileURL Field = "host_profile_url"
	FieldJoined     Field = "host_joined"
)

// TargetFields lists every resolvable field in output-column order.
var TargetFields = []Field{
	FieldTitle, FieldLicense, FieldHostName,
	FieldRating, FieldProfileURL, FieldJoined,
}

// SourceKind identifies which substrate a candidate value came from.
// Resolvers trust sources in this order: structured > scoped > unscoped.
type SourceKind string

const (
	SourceStructured SourceKind = "structured"
	SourceScoped     SourceKind = "scoped"
	SourceUnscoped   SourceKind = "unscoped"

	// SourceProfile marks values filled by the secondary host-profile visit,
	// kept distinct from listing-page scoped reads for diagnostics.
	SourceProfile SourceKind = "profile"
)

// Candidate is a raw value pulled by a source reader before validation.
// It lives only for the duration of one field resolution on one page.
type Candidate struct {
	Value  string
	Source SourceKind
}

// ListingRecord is the output unit: one record per visited detail page.
// Every field defaults to the empty string rather than null; a record is
// emitted even when every resolver comes up empty.
type ListingRecord struct {
	URL               string
	Title             string
	LicenseCode       string
	HostName          string
	HostOverallRating string
	HostProfileURL    string
	HostJoined        string
	ScrapedAt         time.Time

	// Sources records which substrate each resolved field came from.
	// Diagnostic only; never persisted.
	Sources map[Field]SourceKind
}

// Get returns the record's value for a target field.
func (r *ListingRecord) Get(f Field) string {
	switch f {
	case FieldTitle:
		return r.Title
	case FieldLicense:
		return r.LicenseCode
	case FieldHostName:
		return r.HostName
	case FieldRating:
		return r.HostOverallRating
	case FieldProfileURL:
		return r.HostProfileURL
	case FieldJoined:
		return r.HostJoined
	}
	return ""
}

// Set assigns the record's value for a target field.
func (r *ListingRecord) Set(f Field, v string) {
	switch f {
	case FieldTitle:
		r.Title = v
	case FieldLicense:
		r.LicenseCode = v
	case FieldHostName:
		r.HostName = v
	case FieldRating:
		r.HostOverallRating = v
	case FieldProfileURL:
		r.HostProfileURL = v
	case FieldJoined:
		r.HostJoined = v
	}
}
