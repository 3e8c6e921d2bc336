package remediate

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
	"github.com/de-tools/zombie-exorcist/pkg/services/provider"
	"github.com/rs/zerolog"
)

// Providers resolves the platform a finding came from to its live binding.
type Providers interface {
	Create(ctx context.Context, platform string) (provider.Provider, error)
}

// BackupManager is the safety layer surface the orchestrator depends on.
type BackupManager interface {
	Backup(ctx context.Context, action domain.Action) (domain.BackupRef, error)
}

// Orchestrator drives findings through the per-action state machine
// Pending -> BackedUp -> AwaitingConfirmation -> Applying -> terminal state.
// Actions run strictly sequentially, grouped by risk tier from Critical down
// to Low, so high-risk changes are confirmed and applied while reviewer
// attention is freshest. A single action's failure never aborts the run.
type Orchestrator struct {
	providers Providers
	safety    BackupManager
	gate      ConfirmationGate
}

func NewOrchestrator(providers Providers, safety BackupManager, gate ConfirmationGate) *Orchestrator {
	if gate == nil {
		gate = DenyAll()
	}
	return &Orchestrator{providers: providers, safety: safety, gate: gate}
}

// Process executes (or, in report mode, records) every finding in the
// report and returns the run's execution ledger.
func (o *Orchestrator) Process(ctx context.Context, report domain.Report, mode domain.ExecutionMode) *domain.ExecutionLedger {
	ledger := domain.NewExecutionLedger(mode)

	tiers := []domain.Severity{
		domain.SeverityCritical, domain.SeverityHigh, domain.SeverityMedium, domain.SeverityLow,
	}
	for _, tier := range tiers {
		for _, finding := range report.Findings {
			if finding.Severity != tier {
				continue
			}
			o.processFinding(ctx, ledger, finding, mode)
		}
	}
	return ledger
}

func (o *Orchestrator) processFinding(ctx context.Context, ledger *domain.ExecutionLedger,
	finding domain.Finding, mode domain.ExecutionMode) {
	logger := zerolog.Ctx(ctx).With().
		Str("resource_id", finding.ResourceID).
		Str("kind", string(finding.Recommendation)).
		Logger()

	action := ActionForFinding(finding)
	rec := domain.ExecutionRecord{Action: action}

	// Duplicate-finding protection: an identical (resource, kind) already
	// applied in this run is never applied twice.
	if ledger.HasSucceeded(action.ResourceID, action.Kind) {
		rec.State = domain.ActionSkipped
		rec.Reason = "duplicate in same run"
		ledger.Append(rec)
		logger.Info().Msg("duplicate action skipped")
		return
	}

	// Dry-run contract: record the would-be operation verbatim, touch nothing.
	if mode == domain.ModeReport {
		rec.State = domain.ActionSkipped
		rec.Reason = fmt.Sprintf("dry-run: would %s %s %s",
			action.Kind, action.ResourceType, action.ResourceID)
		ledger.Append(rec)
		return
	}

	if action.RequiresBackup {
		ref, err := o.safety.Backup(ctx, action)
		if err != nil {
			rec.State = domain.ActionFailed
			rec.Reason = "backup failure"
			rec.Error = err.Error()
			ledger.Append(rec)
			logger.Error().Err(err).Msg("backup failed, action aborted")
			return
		}
		rec.Backup = &ref
		rec.BackedUpAt = time.Now().UTC()
	}

	if action.RequiresConfirmation {
		approved, err := o.gate.Confirm(ctx, action)
		if err != nil {
			rec.State = domain.ActionFailed
			rec.Reason = "confirmation gate error"
			rec.Error = err.Error()
			ledger.Append(rec)
			return
		}
		if !approved {
			rec.State = domain.ActionSkipped
			rec.Reason = "confirmation declined"
			ledger.Append(rec)
			logger.Info().Msg("confirmation declined")
			return
		}
	}

	p, err := o.providers.Create(ctx, action.Platform)
	if err != nil {
		rec.State = domain.ActionFailed
		rec.Reason = "provider unavailable"
		rec.Error = err.Error()
		ledger.Append(rec)
		logger.Error().Err(err).Msg("provider unavailable")
		return
	}

	rec.AppliedAt = time.Now().UTC()
	result, err := p.ApplyAction(ctx, action)
	if err != nil {
		rec.State = domain.ActionFailed
		rec.Reason = "provider error"
		rec.Error = err.Error()
		ledger.Append(rec)
		logger.Error().Err(err).Msg("action failed")
		return
	}

	rec.State = domain.ActionSucceeded
	rec.SavingsApplied = action.EstimatedSavings
	if result.AlreadyInTargetState {
		rec.Reason = "already in target state"
		if result.Detail != "" {
			rec.Reason = fmt.Sprintf("already in target state: %s", result.Detail)
		}
	} else {
		rec.Reason = result.Detail
	}
	ledger.Append(rec)
	logger.Info().Float64("savings_usd_month", rec.SavingsApplied).Msg("action applied")
}
