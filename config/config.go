package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Crawl
	StartURL    string        // seed: search feed or a direct detail page
	MaxListings int           // hard cap on discovered detail-page references
	MaxDuration time.Duration // wall-clock budget for the whole run
	InputFile   string        // optional file of detail URLs, one per line

	// Per-page behaviour
	NavTimeout time.Duration // top-level navigation timeout
	PageDelay  time.Duration // politeness delay between detail-page visits
	MaxRetries int

	// Browser
	Headless  bool
	Proxy     string
	ChromeBin string

	// Sinks
	CSVOutputPath string

	// MetricsAddr, when set, exposes the run's metrics at
	// http://<addr>/metrics for the duration of the run.
	MetricsAddr string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		StartURL:    getEnv("START_URL", "https://www.airbnb.com/s/Dubai/homes"),
		MaxListings: getEnvInt("MAX_LISTINGS", 50),
		MaxDuration: time.Duration(getEnvInt("MAX_MINUTES", 10)) * time.Minute,
		InputFile:   getEnv("INPUT_TXT", "urls.txt"),

		NavTimeout: time.Duration(getEnvInt("NAV_TIMEOUT_MS", 60000)) * time.Millisecond,
		PageDelay:  time.Duration(getEnvInt("PAGE_DELAY_MS", 2000)) * time.Millisecond,
		MaxRetries: getEnvInt("MAX_RETRIES", 3),

		Headless:  getEnvBool("HEADLESS", true),
		Proxy:     getEnv("PROXY", ""),
		ChromeBin: getEnv("CHROME_BIN", ""),

		CSVOutputPath: getEnv("OUT_CSV", "airbnb_results.csv"),
		MetricsAddr:   getEnv("METRICS_ADDR", ""),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "rental_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

// getEnvBool treats "0", "false" and "no" as false, everything else as true.
func getEnvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	switch val {
	case "0", "false", "no":
		return false
	}
	return true
}
