package services

import (
	"airbnb-host-scraper/models"
	"airbnb-host-scraper/utils"
)

// SummaryService reports per-field coverage over the emitted records: how
// many pages yielded each target field, and which source won.
type SummaryService struct {
	logger *utils.Logger
}

// FieldCoverage is the per-field slice of the report.
type FieldCoverage struct {
	Resolved int
	BySource map[models.SourceKind]int
}

// Report holds the computed coverage over one run's records.
type Report struct {
	TotalRecords int
	EmptyRecords int
	Coverage     map[models.Field]*FieldCoverage
}

// NewSummaryService creates a SummaryService with the given logger.
func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

// Generate computes coverage over the records.
func (s *SummaryService) Generate(records []*models.ListingRecord) *Report {
	report := &Report{
		TotalRecords: len(records),
		Coverage:     make(map[models.Field]*FieldCoverage, len(models.TargetFields)),
	}
	for _, field := range models.TargetFields {
		report.Coverage[field] = &FieldCoverage{BySource: make(map[models.SourceKind]int)}
	}

	for _, rec := range records {
		empty := true
		for _, field := range models.TargetFields {
			if rec.Get(field) == "" {
				continue
			}
			empty = false
			cov := report.Coverage[field]
			cov.Resolved++
			if source, ok := rec.Sources[field]; ok {
				cov.BySource[source]++
			}
		}
		if empty {
			report.EmptyRecords++
		}
	}

	return report
}

// Print logs the report in a readable form.
func (s *SummaryService) Print(report *Report) {
	s.logger.Info("[summary] Records: %d (all-empty: %d)", report.TotalRecords, report.EmptyRecords)
	for _, field := range models.TargetFields {
		cov := report.Coverage[field]
		s.logger.Info("[summary] %-20s resolved %d/%d (structured %d, scoped %d, unscoped %d, profile %d)",
			field, cov.Resolved, report.TotalRecords,
			cov.BySource[models.SourceStructured],
			cov.BySource[models.SourceScoped],
			cov.BySource[models.SourceUnscoped],
			cov.BySource[models.SourceProfile])
	}
}
