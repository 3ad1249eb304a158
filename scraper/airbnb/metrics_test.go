package airbnb

import (
	"testing"

	"airbnb-host-scraper/utils"
)

func TestMetricsGatherReflectsIncrements(t *testing.T) {
	m := NewMetrics("test")
	m.IncPage()
	m.IncPage()
	m.IncNavFailure()
	m.IncFieldResolved("title", "structured")
	m.IncFieldResolved("title", "structured")
	m.IncFieldResolved("host_name", "scoped")

	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	counts := make(map[string]float64)
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			key := family.GetName()
			for _, label := range metric.GetLabel() {
				if label.GetName() == "run_id" {
					continue
				}
				key += "/" + label.GetValue()
			}
			counts[key] = metric.GetCounter().GetValue()
		}
	}

	want := map[string]float64{
		"scraper_pages_visited_total":                    2,
		"scraper_navigation_failures_total":              1,
		"scraper_fields_resolved_total/title/structured": 2,
		"scraper_fields_resolved_total/host_name/scoped": 1,
	}
	for key, w := range want {
		if counts[key] != w {
			t.Errorf("%s = %v; want %v", key, counts[key], w)
		}
	}
}

func TestMetricsNilIsSafe(t *testing.T) {
	var m *Metrics
	m.IncPage()
	m.IncNavFailure()
	m.IncFrontierCycle()
	m.IncEmptyRecord()
	m.IncFieldResolved("title", "structured")
	m.LogCounts(utils.NewLogger("test", false))
}
