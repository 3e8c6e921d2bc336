package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
)

func finding(id string, sev domain.Severity, savings, cost float64) domain.Finding {
	return domain.Finding{
		ResourceType:     domain.ResourceCompute,
		ResourceID:       id,
		Platform:         "aws",
		Recommendation:   domain.RecommendStop,
		Severity:         sev,
		EstimatedSavings: savings,
		CurrentCost:      cost,
	}
}

func TestAggregateOrdering(t *testing.T) {
	findings := []domain.Finding{
		finding("c", domain.SeverityMedium, 50, 60),
		finding("a", domain.SeverityCritical, 600, 700),
		finding("b", domain.SeverityHigh, 120, 150),
		finding("d", domain.SeverityMedium, 50, 55),
		finding("e", domain.SeverityMedium, 80, 90),
	}

	report := Aggregate(findings, nil)

	ids := make([]string, len(report.Findings))
	for i, f := range report.Findings {
		ids[i] = f.ResourceID
	}
	// severity desc, then savings desc, then resource id for equal savings
	assert.Equal(t, []string{"a", "b", "e", "c", "d"}, ids)
}

func TestAggregateTotals(t *testing.T) {
	report := Aggregate([]domain.Finding{
		finding("a", domain.SeverityCritical, 600, 700),
		finding("b", domain.SeverityHigh, 120, 150),
	}, []domain.SkippedResource{
		{ResourceType: domain.ResourceCompute, ResourceID: "x", Reason: "missing metrics"},
	})

	assert.InDelta(t, 720, report.TotalSavings, 0.001)
	assert.InDelta(t, 850, report.TotalCost, 0.001)
	assert.Equal(t, 1, report.CountBySeverity[domain.SeverityCritical])
	assert.Equal(t, 1, report.CountBySeverity[domain.SeverityHigh])
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "x", report.Skipped[0].ResourceID)
}

func TestAggregateDeterministic(t *testing.T) {
	findings := []domain.Finding{
		finding("b", domain.SeverityHigh, 120, 150),
		finding("a", domain.SeverityCritical, 600, 700),
	}

	first := Aggregate(findings, nil)
	second := Aggregate(findings, nil)

	assert.Equal(t, first.Findings, second.Findings)
	assert.Equal(t, first.TotalSavings, second.TotalSavings)
}
