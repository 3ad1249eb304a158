package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"airbnb-host-scraper/models"
)

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestCSVWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "listings.csv")

	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}

	rec := &models.ListingRecord{
		URL:               "https://www.airbnb.com/rooms/123",
		Title:             "Sunny Loft, Downtown",
		LicenseCode:       "ABC-DEF-1234",
		HostName:          "Fatima",
		HostOverallRating: "4.87",
		HostProfileURL:    "https://www.airbnb.com/users/show/123",
		HostJoined:        "2019",
		ScrapedAt:         time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC),
	}
	if err := w.Write(rec); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rows := readRows(t, path)
	if len(rows) != 2 {
		t.Fatalf("got %d rows; want header + 1 record", len(rows))
	}
	for i, col := range Header {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q; want %q", i, rows[0][i], col)
		}
	}

	want := []string{
		rec.URL, rec.Title, rec.LicenseCode, rec.HostName,
		rec.HostOverallRating, rec.HostProfileURL, rec.HostJoined,
		"2026-08-23T10:30:00Z",
	}
	for i, v := range want {
		if rows[1][i] != v {
			t.Errorf("row[%d] = %q; want %q", i, rows[1][i], v)
		}
	}
}

func TestCSVWriterEmptyFieldsSurviveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.csv")

	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	rec := &models.ListingRecord{
		URL:       "https://www.airbnb.com/rooms/9",
		ScrapedAt: time.Now(),
	}
	if err := w.Write(rec); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rows := readRows(t, path)
	if len(rows) != 2 {
		t.Fatalf("got %d rows; want 2", len(rows))
	}
	// Unresolved fields come back as empty strings, not placeholders.
	for i := 1; i <= 6; i++ {
		if rows[1][i] != "" {
			t.Errorf("column %q = %q; want empty", Header[i], rows[1][i])
		}
	}
}

func TestCSVWriterAppendsWithoutDuplicateHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.csv")

	for run := 0; run < 2; run++ {
		w, err := NewCSVWriter(path)
		if err != nil {
			t.Fatalf("NewCSVWriter run %d: %v", run, err)
		}
		rec := &models.ListingRecord{
			URL:       "https://www.airbnb.com/rooms/1",
			ScrapedAt: time.Now(),
		}
		if err := w.Write(rec); err != nil {
			t.Fatalf("Write run %d: %v", run, err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close run %d: %v", run, err)
		}
	}

	rows := readRows(t, path)
	if len(rows) != 3 {
		t.Fatalf("got %d rows; want one header and two records", len(rows))
	}
	if rows[1][0] != rows[2][0] {
		t.Errorf("record rows diverge: %q vs %q", rows[1][0], rows[2][0])
	}
	if rows[2][0] == Header[0] {
		t.Error("second run wrote a duplicate header")
	}
}
