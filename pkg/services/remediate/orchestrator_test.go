package remediate

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
	"github.com/de-tools/zombie-exorcist/pkg/services/provider"
)

// MockProvider is a mock implementation of provider.Provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Platform() string { return "aws" }

func (m *MockProvider) SupportedResources() []domain.ResourceType {
	return []domain.ResourceType{domain.ResourceCompute, domain.ResourceBlockVolume}
}

func (m *MockProvider) ListResources(ctx context.Context, t domain.ResourceType) ([]domain.Snapshot, error) {
	args := m.Called(ctx, t)
	return args.Get(0).([]domain.Snapshot), args.Error(1)
}

func (m *MockProvider) ApplyAction(ctx context.Context, action domain.Action) (domain.ApplyResult, error) {
	args := m.Called(ctx, action)
	return args.Get(0).(domain.ApplyResult), args.Error(1)
}

func (m *MockProvider) CreateBackup(ctx context.Context, action domain.Action) (domain.BackupRef, error) {
	args := m.Called(ctx, action)
	return args.Get(0).(domain.BackupRef), args.Error(1)
}

// MockProviders resolves every platform to the same mock provider.
type MockProviders struct {
	provider *MockProvider
	err      error
}

func (m *MockProviders) Create(_ context.Context, _ string) (provider.Provider, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.provider, nil
}

// MockBackups is a mock implementation of the safety layer surface.
type MockBackups struct {
	mock.Mock
}

func (m *MockBackups) Backup(ctx context.Context, action domain.Action) (domain.BackupRef, error) {
	args := m.Called(ctx, action)
	return args.Get(0).(domain.BackupRef), args.Error(1)
}

func approveAll() ConfirmationGate {
	return GateFunc(func(context.Context, domain.Action) (bool, error) { return true, nil })
}

func testCtx() context.Context {
	return zerolog.Nop().WithContext(context.Background())
}

func terminateFinding(id string, sev domain.Severity, savings float64) domain.Finding {
	return domain.Finding{
		ResourceType:     domain.ResourceCompute,
		ResourceID:       id,
		Platform:         "aws",
		Issue:            "zombie instance - extremely low utilization",
		Recommendation:   domain.RecommendTerminate,
		Severity:         sev,
		EstimatedSavings: savings,
		CurrentCost:      savings,
	}
}

func suspendFinding(id string, sev domain.Severity, savings float64) domain.Finding {
	return domain.Finding{
		ResourceType:     domain.ResourceWarehouse,
		ResourceID:       id,
		Platform:         "aws",
		Issue:            "idle warehouse - minimal activity in period",
		Recommendation:   domain.RecommendSuspend,
		Severity:         sev,
		EstimatedSavings: savings,
		CurrentCost:      savings,
	}
}

func TestProcessReportModeTouchesNothing(t *testing.T) {
	mockProvider := new(MockProvider)
	mockBackups := new(MockBackups)
	orchestrator := NewOrchestrator(&MockProviders{provider: mockProvider}, mockBackups, approveAll())

	report := domain.Report{Findings: []domain.Finding{
		terminateFinding("i-1", domain.SeverityCritical, 600),
		suspendFinding("wh-1", domain.SeverityMedium, 50),
	}}

	ledger := orchestrator.Process(testCtx(), report, domain.ModeReport)

	require.Len(t, ledger.Records, 2)
	for _, rec := range ledger.Records {
		assert.Equal(t, domain.ActionSkipped, rec.State)
		assert.Contains(t, rec.Reason, "dry-run: would")
	}
	assert.Zero(t, ledger.RealizedSavings())
	assert.InDelta(t, 650, ledger.PotentialSavings(), 0.001)

	// no provider or backup call may happen in report mode
	mockProvider.AssertNotCalled(t, "ApplyAction", mock.Anything, mock.Anything)
	mockBackups.AssertNotCalled(t, "Backup", mock.Anything, mock.Anything)
}

func TestProcessExecuteAppliesWithBackupFirst(t *testing.T) {
	mockProvider := new(MockProvider)
	mockBackups := new(MockBackups)
	orchestrator := NewOrchestrator(&MockProviders{provider: mockProvider}, mockBackups, approveAll())

	backupRef := domain.BackupRef{ID: "snap-1", Kind: "snapshot"}
	mockBackups.On("Backup", mock.Anything, mock.Anything).Return(backupRef, nil)
	mockProvider.On("ApplyAction", mock.Anything, mock.Anything).
		Return(domain.ApplyResult{Detail: "instance terminated"}, nil)

	report := domain.Report{Findings: []domain.Finding{
		terminateFinding("i-1", domain.SeverityCritical, 600),
	}}

	ledger := orchestrator.Process(testCtx(), report, domain.ModeExecute)

	require.Len(t, ledger.Records, 1)
	rec := ledger.Records[0]
	assert.Equal(t, domain.ActionSucceeded, rec.State)
	require.NotNil(t, rec.Backup)
	assert.Equal(t, "snap-1", rec.Backup.ID)
	assert.False(t, rec.BackedUpAt.IsZero())
	assert.False(t, rec.AppliedAt.IsZero())
	// backup must be taken before the destructive call
	assert.False(t, rec.AppliedAt.Before(rec.BackedUpAt))
	assert.InDelta(t, 600, ledger.RealizedSavings(), 0.001)
}

func TestProcessBackupFailureAbortsAction(t *testing.T) {
	mockProvider := new(MockProvider)
	mockBackups := new(MockBackups)
	orchestrator := NewOrchestrator(&MockProviders{provider: mockProvider}, mockBackups, approveAll())

	mockBackups.On("Backup", mock.Anything, mock.Anything).
		Return(domain.BackupRef{}, errors.New("snapshot quota exceeded"))

	report := domain.Report{Findings: []domain.Finding{
		terminateFinding("i-1", domain.SeverityCritical, 600),
	}}

	ledger := orchestrator.Process(testCtx(), report, domain.ModeExecute)

	require.Len(t, ledger.Records, 1)
	rec := ledger.Records[0]
	assert.Equal(t, domain.ActionFailed, rec.State)
	assert.Equal(t, "backup failure", rec.Reason)
	assert.Contains(t, rec.Error, "snapshot quota exceeded")
	mockProvider.AssertNotCalled(t, "ApplyAction", mock.Anything, mock.Anything)
}

func TestProcessConfirmationDeclinedSkips(t *testing.T) {
	mockProvider := new(MockProvider)
	mockBackups := new(MockBackups)
	mockBackups.On("Backup", mock.Anything, mock.Anything).Return(domain.BackupRef{ID: "snap-1"}, nil)

	orchestrator := NewOrchestrator(&MockProviders{provider: mockProvider}, mockBackups, DenyAll())

	report := domain.Report{Findings: []domain.Finding{
		terminateFinding("i-1", domain.SeverityCritical, 600),
	}}

	ledger := orchestrator.Process(testCtx(), report, domain.ModeExecute)

	require.Len(t, ledger.Records, 1)
	rec := ledger.Records[0]
	assert.Equal(t, domain.ActionSkipped, rec.State)
	assert.Equal(t, "confirmation declined", rec.Reason)
	assert.Empty(t, rec.Error)
	mockProvider.AssertNotCalled(t, "ApplyAction", mock.Anything, mock.Anything)
}

func TestProcessProviderErrorDoesNotAbortRun(t *testing.T) {
	mockProvider := new(MockProvider)
	mockBackups := new(MockBackups)
	orchestrator := NewOrchestrator(&MockProviders{provider: mockProvider}, mockBackups, approveAll())

	mockProvider.On("ApplyAction", mock.Anything, mock.MatchedBy(func(a domain.Action) bool {
		return a.ResourceID == "wh-1"
	})).Return(domain.ApplyResult{}, errors.New("api throttled"))
	mockProvider.On("ApplyAction", mock.Anything, mock.MatchedBy(func(a domain.Action) bool {
		return a.ResourceID == "wh-2"
	})).Return(domain.ApplyResult{Detail: "warehouse suspended"}, nil)

	report := domain.Report{Findings: []domain.Finding{
		suspendFinding("wh-1", domain.SeverityMedium, 50),
		suspendFinding("wh-2", domain.SeverityMedium, 40),
	}}

	ledger := orchestrator.Process(testCtx(), report, domain.ModeExecute)

	require.Len(t, ledger.Records, 2)
	assert.Equal(t, domain.ActionFailed, ledger.Records[0].State)
	assert.Equal(t, "provider error", ledger.Records[0].Reason)
	assert.Equal(t, domain.ActionSucceeded, ledger.Records[1].State)
}

func TestProcessDuplicateFindingSkipped(t *testing.T) {
	mockProvider := new(MockProvider)
	mockBackups := new(MockBackups)
	orchestrator := NewOrchestrator(&MockProviders{provider: mockProvider}, mockBackups, approveAll())

	mockBackups.On("Backup", mock.Anything, mock.Anything).Return(domain.BackupRef{ID: "snap-1"}, nil)
	mockProvider.On("ApplyAction", mock.Anything, mock.Anything).
		Return(domain.ApplyResult{Detail: "instance terminated"}, nil).Once()

	report := domain.Report{Findings: []domain.Finding{
		terminateFinding("i-1", domain.SeverityCritical, 600),
		terminateFinding("i-1", domain.SeverityCritical, 600),
	}}

	ledger := orchestrator.Process(testCtx(), report, domain.ModeExecute)

	require.Len(t, ledger.Records, 2)
	assert.Equal(t, domain.ActionSucceeded, ledger.Records[0].State)
	assert.Equal(t, domain.ActionSkipped, ledger.Records[1].State)
	assert.Equal(t, "duplicate in same run", ledger.Records[1].Reason)
	mockProvider.AssertNumberOfCalls(t, "ApplyAction", 1)
}

func TestProcessRiskTierOrdering(t *testing.T) {
	mockProvider := new(MockProvider)
	mockBackups := new(MockBackups)
	orchestrator := NewOrchestrator(&MockProviders{provider: mockProvider}, mockBackups, approveAll())

	mockProvider.On("ApplyAction", mock.Anything, mock.Anything).
		Return(domain.ApplyResult{Detail: "warehouse suspended"}, nil)

	// report order interleaves tiers; execution must regroup them
	report := domain.Report{Findings: []domain.Finding{
		suspendFinding("wh-low", domain.SeverityLow, 5),
		suspendFinding("wh-crit", domain.SeverityCritical, 900),
		suspendFinding("wh-med", domain.SeverityMedium, 50),
		suspendFinding("wh-high", domain.SeverityHigh, 200),
	}}

	ledger := orchestrator.Process(testCtx(), report, domain.ModeExecute)

	require.Len(t, ledger.Records, 4)
	order := make([]string, len(ledger.Records))
	for i, rec := range ledger.Records {
		order[i] = rec.Action.ResourceID
	}
	assert.Equal(t, []string{"wh-crit", "wh-high", "wh-med", "wh-low"}, order)
}

func TestProcessAlreadyInTargetState(t *testing.T) {
	mockProvider := new(MockProvider)
	mockBackups := new(MockBackups)
	orchestrator := NewOrchestrator(&MockProviders{provider: mockProvider}, mockBackups, approveAll())

	mockProvider.On("ApplyAction", mock.Anything, mock.Anything).
		Return(domain.ApplyResult{AlreadyInTargetState: true, Detail: "warehouse already stopped"}, nil)

	report := domain.Report{Findings: []domain.Finding{
		suspendFinding("wh-1", domain.SeverityMedium, 50),
	}}

	ledger := orchestrator.Process(testCtx(), report, domain.ModeExecute)

	require.Len(t, ledger.Records, 1)
	rec := ledger.Records[0]
	assert.Equal(t, domain.ActionSucceeded, rec.State)
	assert.Contains(t, rec.Reason, "already in target state")
}

func TestProcessProviderUnavailableFails(t *testing.T) {
	mockBackups := new(MockBackups)
	orchestrator := NewOrchestrator(
		&MockProviders{err: errors.New("platform \"aws\" is not registered")},
		mockBackups, approveAll())

	report := domain.Report{Findings: []domain.Finding{
		suspendFinding("wh-1", domain.SeverityMedium, 50),
	}}

	ledger := orchestrator.Process(testCtx(), report, domain.ModeExecute)

	require.Len(t, ledger.Records, 1)
	assert.Equal(t, domain.ActionFailed, ledger.Records[0].State)
	assert.Equal(t, "provider unavailable", ledger.Records[0].Reason)
}
