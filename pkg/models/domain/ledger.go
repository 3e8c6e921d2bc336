package domain

import "time"

// ExecutionMode selects between reporting intended actions and actually
// invoking provider mutations. Report is the default (dry-run) mode.
type ExecutionMode string

const (
	ModeReport  ExecutionMode = "report"
	ModeExecute ExecutionMode = "execute"
)

// ExecutionRecord is one ledger entry: the action, its terminal state and
// the reason it got there.
type ExecutionRecord struct {
	Action         Action
	State          ActionState // terminal: succeeded, skipped or failed
	Reason         string
	Error          string
	Backup         *BackupRef
	BackedUpAt     time.Time
	AppliedAt      time.Time
	SavingsApplied float64 // USD per month, non-zero only on success
}

// ExecutionLedger is the ordered, per-run record of every action outcome.
// It is mutated only by the orchestrator's single execution goroutine.
type ExecutionLedger struct {
	Mode      ExecutionMode
	StartedAt time.Time
	Records   []ExecutionRecord
}

func NewExecutionLedger(mode ExecutionMode) *ExecutionLedger {
	return &ExecutionLedger{Mode: mode, StartedAt: time.Now().UTC()}
}

func (l *ExecutionLedger) Append(rec ExecutionRecord) {
	l.Records = append(l.Records, rec)
}

// HasSucceeded reports whether an identical (resource, kind) action already
// succeeded in this run. Used as the duplicate-finding guard.
func (l *ExecutionLedger) HasSucceeded(resourceID string, kind Recommendation) bool {
	for _, rec := range l.Records {
		if rec.State == ActionSucceeded &&
			rec.Action.ResourceID == resourceID &&
			rec.Action.Kind == kind {
			return true
		}
	}
	return false
}

// RealizedSavings sums savings from succeeded actions only.
func (l *ExecutionLedger) RealizedSavings() float64 {
	var total float64
	for _, rec := range l.Records {
		if rec.State == ActionSucceeded {
			total += rec.SavingsApplied
		}
	}
	return total
}

// PotentialSavings sums savings of actions that did not apply: dry-run,
// skipped or failed entries.
func (l *ExecutionLedger) PotentialSavings() float64 {
	var total float64
	for _, rec := range l.Records {
		if rec.State != ActionSucceeded {
			total += rec.Action.EstimatedSavings
		}
	}
	return total
}

// CountByState tallies records per terminal state for the final summary.
func (l *ExecutionLedger) CountByState() map[ActionState]int {
	counts := make(map[ActionState]int)
	for _, rec := range l.Records {
		counts[rec.State]++
	}
	return counts
}
