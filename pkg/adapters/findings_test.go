package adapters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
	"github.com/de-tools/zombie-exorcist/pkg/models/store"
)

func TestMapFindingRoundTrip(t *testing.T) {
	original := domain.Finding{
		ResourceType:     domain.ResourceCompute,
		ResourceID:       "i-0abc",
		Platform:         "aws",
		Issue:            "zombie instance - extremely low utilization",
		Recommendation:   domain.RecommendTerminate,
		Severity:         domain.SeverityHigh,
		EstimatedSavings: 138.24,
		CurrentCost:      138.24,
		Metadata:         map[string]string{"instance_type": "m5.xlarge"},
	}

	wire := MapFindingDomainToStore(original)
	assert.Equal(t, "compute", wire.ResourceType)
	assert.Equal(t, "terminate", wire.Recommendation)
	assert.Equal(t, "high", wire.Severity)

	back, err := MapFindingStoreToDomain(wire)
	require.NoError(t, err)
	assert.Equal(t, original, back)
}

func TestMapFindingStoreToDomainRejectsBadValues(t *testing.T) {
	valid := store.Finding{
		ResourceType:     "compute",
		ResourceID:       "i-1",
		Platform:         "aws",
		Recommendation:   "terminate",
		Severity:         "high",
		EstimatedSavings: 10,
	}

	tests := []struct {
		name    string
		mutate  func(f *store.Finding)
		errPart string
	}{
		{
			name:    "unknown recommendation",
			mutate:  func(f *store.Finding) { f.Recommendation = "obliterate" },
			errPart: "recommendation",
		},
		{
			name:    "unknown severity",
			mutate:  func(f *store.Finding) { f.Severity = "catastrophic" },
			errPart: "severity",
		},
		{
			name:    "negative savings",
			mutate:  func(f *store.Finding) { f.EstimatedSavings = -1 },
			errPart: "negative savings",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)
			_, err := MapFindingStoreToDomain(f)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
			assert.Contains(t, err.Error(), "i-1")
		})
	}
}

func TestMapReportRoundTrip(t *testing.T) {
	generated := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	report := domain.Report{
		Findings: []domain.Finding{
			{
				ResourceType:     domain.ResourceWarehouse,
				ResourceID:       "WH_A",
				Platform:         "snowflake",
				Issue:            "idle warehouse - minimal activity in period",
				Recommendation:   domain.RecommendSuspend,
				Severity:         domain.SeverityMedium,
				EstimatedSavings: 92.57,
				CurrentCost:      102.86,
			},
		},
		Skipped: []domain.SkippedResource{{
			ResourceType: domain.ResourceCompute,
			ResourceID:   "i-0broken",
			Reason:       "insufficient data: missing metrics [cpu_avg_7d]",
		}},
		TotalSavings:    92.57,
		TotalCost:       102.86,
		CountBySeverity: map[domain.Severity]int{domain.SeverityMedium: 1},
		GeneratedAt:     generated,
	}

	wire := MapReportDomainToStore(report)
	assert.Equal(t, 1, wire.Summary.TotalFindings)
	assert.Equal(t, map[string]int{"medium": 1}, wire.Summary.CountBySeverity)
	assert.Equal(t, "2026-08-30T12:00:00Z", wire.Summary.GeneratedAt)

	back, err := MapReportStoreToDomain(wire)
	require.NoError(t, err)
	assert.Equal(t, report.Findings, back.Findings)
	assert.Equal(t, report.Skipped, back.Skipped)
	assert.Equal(t, report.CountBySeverity, back.CountBySeverity)
	assert.True(t, back.GeneratedAt.Equal(generated))
}

func TestMapReportStoreToDomainBadTimestamp(t *testing.T) {
	file := store.FindingsFile{
		Summary:  store.Summary{GeneratedAt: "yesterday"},
		Findings: []store.Finding{},
	}
	_, err := MapReportStoreToDomain(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid generated_at")
}

func TestMapLedgerDomainToStore(t *testing.T) {
	ledger := domain.NewExecutionLedger(domain.ModeExecute)
	backedUp := time.Date(2026, 8, 30, 12, 0, 1, 0, time.UTC)
	applied := time.Date(2026, 8, 30, 12, 0, 2, 0, time.UTC)
	ledger.Append(domain.ExecutionRecord{
		Action: domain.Action{
			Kind:             domain.RecommendTerminate,
			ResourceType:     domain.ResourceCompute,
			ResourceID:       "i-0abc",
			Platform:         "aws",
			RiskTier:         domain.SeverityHigh,
			EstimatedSavings: 138.24,
		},
		State:          domain.ActionSucceeded,
		Reason:         "instance terminated",
		Backup:         &domain.BackupRef{ID: "i-0abc", Kind: "description"},
		BackedUpAt:     backedUp,
		AppliedAt:      applied,
		SavingsApplied: 138.24,
	})
	ledger.Append(domain.ExecutionRecord{
		Action: domain.Action{
			Kind:             domain.RecommendSuspend,
			ResourceType:     domain.ResourceWarehouse,
			ResourceID:       "WH_A",
			Platform:         "snowflake",
			RiskTier:         domain.SeverityMedium,
			EstimatedSavings: 50,
		},
		State:  domain.ActionSkipped,
		Reason: "confirmation declined",
	})

	file := MapLedgerDomainToStore(ledger)

	assert.Equal(t, "execute", file.Mode)
	assert.InDelta(t, 138.24, file.RealizedSavings, 0.001)
	assert.InDelta(t, 50, file.PotentialSavings, 0.001)
	assert.Equal(t, map[string]int{"succeeded": 1, "skipped": 1}, file.CountByState)

	require.Len(t, file.Entries, 2)
	first := file.Entries[0]
	assert.Equal(t, "terminate", first.Kind)
	assert.Equal(t, "high", first.RiskTier)
	assert.Equal(t, "description", first.BackupKind)
	assert.Equal(t, "2026-08-30T12:00:01Z", first.BackedUpAt)
	assert.Equal(t, "2026-08-30T12:00:02Z", first.AppliedAt)

	second := file.Entries[1]
	assert.Empty(t, second.BackupID)
	assert.Empty(t, second.BackedUpAt)
	assert.Zero(t, second.SavingsApplied)
}
