package airbnb

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"airbnb-host-scraper/browser"
	"airbnb-host-scraper/config"
	"airbnb-host-scraper/extract"
	"airbnb-host-scraper/models"
	"airbnb-host-scraper/storage"
	"airbnb-host-scraper/utils"
)

const pageSettle = 1500 * time.Millisecond

// Scraper drives the full pipeline: frontier collection, strictly sequential
// detail-page visits, field extraction, and record handoff to the sink.
type Scraper struct {
	cfg       *config.Config
	logger    *utils.Logger
	metrics   *Metrics
	extractor *extract.Extractor
	retry     *utils.RetryConfig
	limiter   *rate.Limiter
}

// New creates a ready-to-use Scraper for one run.
func New(cfg *config.Config, logger *utils.Logger, metrics *Metrics) *Scraper {
	return &Scraper{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		extractor: extract.New(logger, cfg.NavTimeout),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		limiter: rate.NewLimiter(rate.Every(cfg.PageDelay), 1),
	}
}

// Run executes the crawl. When directURLs is non-empty, frontier collection
// is skipped and those detail pages are visited as given. One record is
// emitted per attempted reference, empty fields included; a single page's
// failure never affects its siblings. The wall-clock budget is cooperative:
// once exceeded, no new page is started, but the page in flight finishes.
func (s *Scraper) Run(ctx context.Context, directURLs []string, sink storage.RecordWriter) ([]*models.ListingRecord, error) {
	deadline := time.Now().Add(s.cfg.MaxDuration)

	session, err := browser.NewSession(ctx, browser.Options{
		Headless:  s.cfg.Headless,
		Proxy:     s.cfg.Proxy,
		ChromeBin: s.cfg.ChromeBin,
	})
	if err != nil {
		return nil, fmt.Errorf("start browser session: %w", err)
	}
	defer session.Close()

	page, err := session.NewPage()
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	refs := s.references(ctx, page, directURLs, deadline)
	s.logger.Info("[airbnb] %d detail pages to scrape", len(refs))

	records := make([]*models.ListingRecord, 0, len(refs))
	for i, ref := range refs {
		if time.Now().After(deadline) {
			s.logger.Warn("[airbnb] Crawl budget exhausted — stopping after %d/%d pages", i, len(refs))
			break
		}
		if err := s.limiter.Wait(ctx); err != nil {
			break
		}
		utils.RandomDelay(0, 500*time.Millisecond)

		s.logger.Info("[airbnb] [%d/%d] %s", i+1, len(refs), ref)
		rec := s.scrapeDetail(ctx, page, ref)
		records = append(records, rec)

		if err := sink.Write(rec); err != nil {
			s.logger.Error("[airbnb] Sink write failed for %s: %v", ref, err)
		}
	}

	s.logger.Info("[airbnb] Run complete — %d records emitted", len(records))
	return records, nil
}

// references decides the work list: direct URLs when supplied, otherwise a
// frontier collection bounded by what remains of the budget.
func (s *Scraper) references(ctx context.Context, page browser.Page, directURLs []string, deadline time.Time) []string {
	if len(directURLs) > 0 {
		seen := make(map[string]struct{}, len(directURLs))
		refs := make([]string, 0, len(directURLs))
		for _, raw := range directURLs {
			ref := raw
			if canonical, ok := CanonicalDetailURL(raw); ok {
				ref = canonical
			}
			if _, dup := seen[ref]; dup {
				continue
			}
			seen[ref] = struct{}{}
			refs = append(refs, ref)
		}
		s.logger.Info("[airbnb] Using %d directly supplied URLs", len(refs))
		return refs
	}

	collector := &Collector{
		Logger:     s.logger,
		Metrics:    s.metrics,
		NavTimeout: s.cfg.NavTimeout,
	}
	return collector.Collect(ctx, page, s.cfg.StartURL, s.cfg.MaxListings, time.Until(deadline))
}

// scrapeDetail visits one detail page and extracts a record. Navigation
// failure still yields an all-empty record for the reference.
func (s *Scraper) scrapeDetail(ctx context.Context, page browser.Page, ref string) *models.ListingRecord {
	s.metrics.IncPage()

	err := s.retry.Do(ctx, "navigate", func() error {
		return page.Navigate(ctx, ref, s.cfg.NavTimeout)
	})
	if err != nil {
		s.logger.Warn("[airbnb] Navigation failed for %s: %v", ref, err)
		s.metrics.IncNavFailure()
		s.metrics.IncEmptyRecord()
		return &models.ListingRecord{
			URL:       ref,
			ScrapedAt: time.Now().UTC(),
			Sources:   make(map[models.Field]models.SourceKind),
		}
	}

	if _, err := page.ClickByText(ctx, consentLabels, 2*time.Second); err != nil {
		s.logger.Debug("[airbnb] Consent dismissal failed: %v", err)
	}
	_ = page.Wait(ctx, pageSettle)

	rec := s.extractor.Extract(ctx, page, ref)

	resolved := 0
	for field, source := range rec.Sources {
		s.metrics.IncFieldResolved(string(field), string(source))
		resolved++
	}
	if resolved == 0 {
		s.metrics.IncEmptyRecord()
	}
	s.logger.Debug("[airbnb] %s — %d/%d fields resolved", ref, resolved, len(models.TargetFields))

	return rec
}
