package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"airbnb-host-scraper/models"
)

// PostgresWriter persists listing records to PostgreSQL, upserting by URL so
// re-runs refresh rather than duplicate.
type PostgresWriter struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS listings (
	url                 TEXT PRIMARY KEY,
	title               TEXT NOT NULL DEFAULT '',
	license_code        TEXT NOT NULL DEFAULT '',
	host_name           TEXT NOT NULL DEFAULT '',
	host_overall_rating TEXT NOT NULL DEFAULT '',
	host_profile_url    TEXT NOT NULL DEFAULT '',
	host_joined         TEXT NOT NULL DEFAULT '',
	scraped_at          TIMESTAMPTZ NOT NULL
)`

const upsert = `
INSERT INTO listings
	(url, title, license_code, host_name, host_overall_rating, host_profile_url, host_joined, scraped_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (url) DO UPDATE SET
	title = EXCLUDED.title,
	license_code = EXCLUDED.license_code,
	host_name = EXCLUDED.host_name,
	host_overall_rating = EXCLUDED.host_overall_rating,
	host_profile_url = EXCLUDED.host_profile_url,
	host_joined = EXCLUDED.host_joined,
	scraped_at = EXCLUDED.scraped_at`

// NewPostgresWriter opens a connection, runs the schema migration, and
// returns a ready-to-use writer.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return &PostgresWriter{db: db}, nil
}

// Write upserts one record.
func (p *PostgresWriter) Write(rec *models.ListingRecord) error {
	_, err := p.db.Exec(upsert,
		rec.URL,
		rec.Title,
		rec.LicenseCode,
		rec.HostName,
		rec.HostOverallRating,
		rec.HostProfileURL,
		rec.HostJoined,
		rec.ScrapedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert %s: %w", rec.URL, err)
	}
	return nil
}

// Close closes the database handle.
func (p *PostgresWriter) Close() error {
	return p.db.Close()
}
