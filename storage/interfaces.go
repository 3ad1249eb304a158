package storage

import "airbnb-host-scraper/models"

// RecordWriter is the interface any persistence backend must satisfy.
// Writers receive one record at a time so a crashed run keeps every row
// completed before the crash.
type RecordWriter interface {
	Write(rec *models.ListingRecord) error
	Close() error
}

// Header is the fixed output column order shared by every backend.
var Header = []string{
	"url", "title", "license_code", "host_name",
	"host_overall_rating", "host_profile_url", "host_joined", "scraped_at",
}
