package airbnb

import (
	"context"
	"time"

	"airbnb-host-scraper/browser"
	"airbnb-host-scraper/utils"
)

// Frontier collection: drive incremental scroll cycles against the search
// feed, harvest and canonicalize detail-page anchors, deduplicate, and stop
// on target count, stagnation, or budget exhaustion. References come back in
// discovery order.

const (
	defaultSettle          = 900 * time.Millisecond
	defaultStagnationLimit = 6
	defaultScrollStep      = 900
)

// Collector harvests detail-page references from an infinite-scroll feed.
type Collector struct {
	Logger  *utils.Logger
	Metrics *Metrics

	// NavTimeout bounds the initial feed navigation.
	NavTimeout time.Duration
	// Settle is the wait between scroll cycles.
	Settle time.Duration
	// StagnationLimit is how many consecutive no-growth cycles are tolerated
	// before load-more affordances are tried and collection terminates.
	StagnationLimit int
}

func (c *Collector) settle() time.Duration {
	if c.Settle > 0 {
		return c.Settle
	}
	return defaultSettle
}

func (c *Collector) stagnationLimit() int {
	if c.StagnationLimit > 0 {
		return c.StagnationLimit
	}
	return defaultStagnationLimit
}

// Collect returns up to maxCount canonical detail-page references discovered
// within maxDuration. Transient per-cycle errors are swallowed and count
// toward stagnation; an unreachable seed yields an empty result, not an
// error. A seed that is itself a detail page short-circuits to a singleton.
func (c *Collector) Collect(ctx context.Context, pg browser.Page, seed string, maxCount int, maxDuration time.Duration) []string {
	if canonical, ok := CanonicalDetailURL(seed); ok {
		c.Logger.Info("[frontier] Seed is a detail page — skipping collection")
		return []string{canonical}
	}
	if maxCount <= 0 {
		return nil
	}

	deadline := time.Now().Add(maxDuration)

	if err := pg.Navigate(ctx, seed, c.NavTimeout); err != nil {
		c.Logger.Warn("[frontier] Seed navigation failed: %v", err)
		return nil
	}
	// Cookie banners block scrolling on some locales; dismiss best-effort.
	if _, err := pg.ClickByText(ctx, consentLabels, 2*time.Second); err != nil {
		c.Logger.Debug("[frontier] Consent dismissal failed: %v", err)
	}

	seen := make(map[string]struct{})
	var ordered []string
	stagnant := 0

	for time.Now().Before(deadline) && ctx.Err() == nil {
		anchors, err := pg.Anchors(ctx, detailAnchorSubstr)
		if err != nil {
			// Treated as "no new references this cycle".
			c.Logger.Debug("[frontier] Harvest cycle failed: %v", err)
			anchors = nil
		}
		c.Metrics.IncFrontierCycle()

		added := 0
		for _, href := range anchors {
			canonical, ok := CanonicalDetailURL(href)
			if !ok {
				continue
			}
			if _, dup := seen[canonical]; dup {
				continue
			}
			seen[canonical] = struct{}{}
			ordered = append(ordered, canonical)
			added++
		}

		if len(ordered) >= maxCount {
			break
		}

		if added == 0 {
			stagnant++
			if stagnant >= c.stagnationLimit() {
				clicked, err := pg.ClickByText(ctx, loadMoreLabels, 2*time.Second)
				if err != nil || !clicked {
					c.Logger.Info("[frontier] Feed stagnated after %d cycles — stopping", stagnant)
					break
				}
				c.Logger.Debug("[frontier] Stagnated — clicked a load-more affordance")
				stagnant = 0
			}
		} else {
			stagnant = 0
			c.Logger.Debug("[frontier] +%d references (total %d)", added, len(ordered))
		}

		if err := pg.ScrollBy(ctx, 0, defaultScrollStep); err != nil {
			c.Logger.Debug("[frontier] Scroll failed: %v", err)
		}
		if err := pg.Wait(ctx, c.settle()); err != nil {
			break
		}
	}

	if len(ordered) > maxCount {
		ordered = ordered[:maxCount]
	}
	c.Logger.Info("[frontier] Collected %d detail-page references", len(ordered))
	return ordered
}
