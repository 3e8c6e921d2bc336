package aggregate

import (
	"sort"
	"time"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
)

// Aggregate collects findings into a report ordered by severity desc, then
// estimated savings desc, then resource id. The ordering is deterministic:
// re-aggregating the same set yields identical order and totals. The
// orchestrator relies on it for highest-savings-first execution.
func Aggregate(findings []domain.Finding, skipped []domain.SkippedResource) domain.Report {
	ordered := make([]domain.Finding, len(findings))
	copy(ordered, findings)

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Severity != ordered[j].Severity {
			return ordered[i].Severity > ordered[j].Severity
		}
		if ordered[i].EstimatedSavings != ordered[j].EstimatedSavings {
			return ordered[i].EstimatedSavings > ordered[j].EstimatedSavings
		}
		return ordered[i].ResourceID < ordered[j].ResourceID
	})

	report := domain.Report{
		GeneratedAt:     time.Now().UTC(),
		Findings:        ordered,
		CountBySeverity: make(map[domain.Severity]int),
		Skipped:         skipped,
	}
	for _, f := range ordered {
		report.TotalSavings += f.EstimatedSavings
		report.TotalCost += f.CurrentCost
		report.CountBySeverity[f.Severity]++
	}
	return report
}
