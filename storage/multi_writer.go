package storage

import (
	"errors"

	"airbnb-host-scraper/models"
)

// MultiWriter fans every record out to several backends. A failing backend
// does not stop the others; errors are joined for the caller.
type MultiWriter struct {
	writers []RecordWriter
}

// NewMultiWriter wraps the given writers.
func NewMultiWriter(writers ...RecordWriter) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write delivers the record to each backend.
func (m *MultiWriter) Write(rec *models.ListingRecord) error {
	var errs []error
	for _, w := range m.writers {
		if err := w.Write(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every backend.
func (m *MultiWriter) Close() error {
	var errs []error
	for _, w := range m.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
