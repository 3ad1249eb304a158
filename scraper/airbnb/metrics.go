package airbnb

import (
	"github.com/prometheus/client_golang/prometheus"

	"airbnb-host-scraper/utils"
)

// Metrics bundles Prometheus collectors for one crawl run.
type Metrics struct {
	Registry       *prometheus.Registry
	PagesVisited   prometheus.Counter
	NavFailures    prometheus.Counter
	FrontierCycles prometheus.Counter
	EmptyRecords   prometheus.Counter
	FieldsResolved *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry,
// stamped with the run identifier.
func NewMetrics(runID string) *Metrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"run_id": runID}

	pages := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "scraper_pages_visited_total",
		Help:        "Detail pages the scraper attempted to visit.",
		ConstLabels: constLabels,
	})
	navFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "scraper_navigation_failures_total",
		Help:        "Detail-page navigations that failed after retries.",
		ConstLabels: constLabels,
	})
	cycles := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "scraper_frontier_cycles_total",
		Help:        "Scroll/harvest cycles executed during frontier collection.",
		ConstLabels: constLabels,
	})
	empty := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "scraper_empty_records_total",
		Help:        "Records emitted with every target field unresolved.",
		ConstLabels: constLabels,
	})
	resolved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "scraper_fields_resolved_total",
		Help:        "Fields resolved, by field name and winning source.",
		ConstLabels: constLabels,
	}, []string{"field", "source"})

	registry.MustRegister(pages, navFailures, cycles, empty, resolved)

	return &Metrics{
		Registry:       registry,
		PagesVisited:   pages,
		NavFailures:    navFailures,
		FrontierCycles: cycles,
		EmptyRecords:   empty,
		FieldsResolved: resolved,
	}
}

// IncPage increments the visited-pages counter.
func (m *Metrics) IncPage() {
	if m == nil {
		return
	}
	m.PagesVisited.Inc()
}

// IncNavFailure increments the failed-navigations counter.
func (m *Metrics) IncNavFailure() {
	if m == nil {
		return
	}
	m.NavFailures.Inc()
}

// IncFrontierCycle increments the collection-cycles counter.
func (m *Metrics) IncFrontierCycle() {
	if m == nil {
		return
	}
	m.FrontierCycles.Inc()
}

// IncEmptyRecord increments the all-fields-empty counter.
func (m *Metrics) IncEmptyRecord() {
	if m == nil {
		return
	}
	m.EmptyRecords.Inc()
}

// IncFieldResolved increments the per-field resolution counter.
func (m *Metrics) IncFieldResolved(field, source string) {
	if m == nil {
		return
	}
	m.FieldsResolved.WithLabelValues(field, source).Inc()
}

// LogCounts gathers the registry and logs every non-zero counter so the run's
// numbers survive in the log even when no metrics endpoint was scraped.
func (m *Metrics) LogCounts(logger *utils.Logger) {
	if m == nil {
		return
	}
	families, err := m.Registry.Gather()
	if err != nil {
		logger.Warn("[metrics] Gather failed: %v", err)
		return
	}

	for _, family := range families {
		for _, metric := range family.GetMetric() {
			value := metric.GetCounter().GetValue()
			if value == 0 {
				continue
			}
			name := family.GetName()
			for _, label := range metric.GetLabel() {
				// run_id is constant across the whole registry.
				if label.GetName() == "run_id" {
					continue
				}
				name += " " + label.GetName() + "=" + label.GetValue()
			}
			logger.Info("[metrics] %s: %.0f", name, value)
		}
	}
}
