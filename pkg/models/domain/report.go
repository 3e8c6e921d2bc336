package domain

import "time"

// Report is the aggregated output of one analysis run: findings ordered by
// severity desc, then estimated savings desc, then resource id. The
// orchestrator relies on this ordering for highest-savings-first execution.
type Report struct {
	GeneratedAt     time.Time
	Findings        []Finding
	TotalSavings    float64 // USD per month across all findings
	TotalCost       float64 // USD per month across all flagged resources
	CountBySeverity map[Severity]int

	// Skipped lists resources the classifier could not evaluate, with the
	// reason. Silent classification failure is disallowed.
	Skipped []SkippedResource
}

// SkippedResource records one insufficient-data outcome from classification.
type SkippedResource struct {
	ResourceType ResourceType
	ResourceID   string
	Reason       string
}
