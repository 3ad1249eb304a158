package main

import (
	"bufio"
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"airbnb-host-scraper/config"
	"airbnb-host-scraper/scraper/airbnb"
	"airbnb-host-scraper/services"
	"airbnb-host-scraper/storage"
	"airbnb-host-scraper/utils"
)

func main() {
	runID := uuid.NewString()[:8]
	logger := utils.NewLogger(runID, os.Getenv("VERBOSE") != "")
	cfg := config.Load()

	logger.Info("=== Airbnb host-fact scraper starting ===")
	logger.Info("Config — seed: %s | max listings: %d | budget: %v | headless: %v",
		cfg.StartURL, cfg.MaxListings, cfg.MaxDuration, cfg.Headless)

	var writers []storage.RecordWriter

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		os.Exit(1)
	}
	writers = append(writers, csvWriter)

	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			os.Exit(1)
		}
		writers = append(writers, pgWriter)
	}

	sink := storage.NewMultiWriter(writers...)
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Error("Sink close failed: %v", err)
		}
	}()

	directURLs := gatherDirectURLs(cfg.InputFile, os.Args[1:], logger)

	metrics := airbnb.NewMetrics(runID)
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Warn("Metrics endpoint stopped: %v", err)
			}
		}()
		logger.Info("Metrics exposed at http://%s/metrics", cfg.MetricsAddr)
	}

	scraper := airbnb.New(cfg, logger, metrics)

	records, err := scraper.Run(context.Background(), directURLs, sink)
	if err != nil {
		logger.Error("Scrape failed: %v", err)
		os.Exit(1)
	}

	summarySvc := services.NewSummaryService(logger)
	summarySvc.Print(summarySvc.Generate(records))
	metrics.LogCounts(logger)

	logger.Info("Done. Output → %s", cfg.CSVOutputPath)
}

// gatherDirectURLs merges CLI arguments with the optional input file. When
// any direct URLs exist, frontier collection is bypassed entirely.
func gatherDirectURLs(inputFile string, args []string, logger *utils.Logger) []string {
	var urls []string

	for _, arg := range args {
		if strings.HasPrefix(arg, "http") {
			urls = append(urls, arg)
		}
	}

	if inputFile != "" {
		f, err := os.Open(inputFile)
		if err == nil {
			defer f.Close()
			sc := bufio.NewScanner(f)
			for sc.Scan() {
				line := strings.TrimSpace(sc.Text())
				if strings.HasPrefix(line, "http") {
					urls = append(urls, line)
				}
			}
			if len(urls) > 0 {
				logger.Info("Loaded direct URLs from %s", inputFile)
			}
		}
	}

	return urls
}
