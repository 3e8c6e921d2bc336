package adapters

import (
	"fmt"
	"time"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
	"github.com/de-tools/zombie-exorcist/pkg/models/store"
)

func MapFindingDomainToStore(f domain.Finding) store.Finding {
	return store.Finding{
		ResourceType:     string(f.ResourceType),
		ResourceID:       f.ResourceID,
		Platform:         f.Platform,
		Issue:            f.Issue,
		Recommendation:   string(f.Recommendation),
		Severity:         f.Severity.String(),
		EstimatedSavings: f.EstimatedSavings,
		CurrentCost:      f.CurrentCost,
		Metadata:         f.Metadata,
	}
}

func MapFindingStoreToDomain(f store.Finding) (domain.Finding, error) {
	rec, err := domain.ParseRecommendation(f.Recommendation)
	if err != nil {
		return domain.Finding{}, fmt.Errorf("finding %s: %w", f.ResourceID, err)
	}
	sev, err := domain.ParseSeverity(f.Severity)
	if err != nil {
		return domain.Finding{}, fmt.Errorf("finding %s: %w", f.ResourceID, err)
	}
	if f.EstimatedSavings < 0 {
		return domain.Finding{}, fmt.Errorf("finding %s: negative savings estimate", f.ResourceID)
	}
	return domain.Finding{
		ResourceType:     domain.ResourceType(f.ResourceType),
		ResourceID:       f.ResourceID,
		Platform:         f.Platform,
		Issue:            f.Issue,
		Recommendation:   rec,
		Severity:         sev,
		EstimatedSavings: f.EstimatedSavings,
		CurrentCost:      f.CurrentCost,
		Metadata:         f.Metadata,
	}, nil
}

func MapReportDomainToStore(r domain.Report) store.FindingsFile {
	file := store.FindingsFile{
		Summary: store.Summary{
			TotalFindings:         len(r.Findings),
			TotalPotentialSavings: r.TotalSavings,
			TotalCurrentCost:      r.TotalCost,
			CountBySeverity:       map[string]int{},
			GeneratedAt:           r.GeneratedAt.UTC().Format(time.RFC3339),
		},
		Findings: make([]store.Finding, 0, len(r.Findings)),
	}
	for sev, count := range r.CountBySeverity {
		file.Summary.CountBySeverity[sev.String()] = count
	}
	for _, f := range r.Findings {
		file.Findings = append(file.Findings, MapFindingDomainToStore(f))
	}
	for _, s := range r.Skipped {
		file.Skipped = append(file.Skipped, store.SkippedResource{
			ResourceType: string(s.ResourceType),
			ResourceID:   s.ResourceID,
			Reason:       s.Reason,
		})
	}
	return file
}

func MapReportStoreToDomain(file store.FindingsFile) (domain.Report, error) {
	report := domain.Report{
		Findings:        make([]domain.Finding, 0, len(file.Findings)),
		TotalSavings:    file.Summary.TotalPotentialSavings,
		TotalCost:       file.Summary.TotalCurrentCost,
		CountBySeverity: map[domain.Severity]int{},
	}
	if file.Summary.GeneratedAt != "" {
		ts, err := time.Parse(time.RFC3339, file.Summary.GeneratedAt)
		if err != nil {
			return domain.Report{}, fmt.Errorf("invalid generated_at: %w", err)
		}
		report.GeneratedAt = ts
	}
	for sevName, count := range file.Summary.CountBySeverity {
		sev, err := domain.ParseSeverity(sevName)
		if err != nil {
			return domain.Report{}, err
		}
		report.CountBySeverity[sev] = count
	}
	for _, f := range file.Findings {
		df, err := MapFindingStoreToDomain(f)
		if err != nil {
			return domain.Report{}, err
		}
		report.Findings = append(report.Findings, df)
	}
	for _, s := range file.Skipped {
		report.Skipped = append(report.Skipped, domain.SkippedResource{
			ResourceType: domain.ResourceType(s.ResourceType),
			ResourceID:   s.ResourceID,
			Reason:       s.Reason,
		})
	}
	return report, nil
}
