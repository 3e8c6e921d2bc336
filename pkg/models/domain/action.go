package domain

// ActionState tracks one remediation step through the orchestrator's state
// machine. Terminal states are Succeeded, Skipped and Failed.
type ActionState string

const (
	ActionPending              ActionState = "pending"
	ActionBackedUp             ActionState = "backed_up"
	ActionAwaitingConfirmation ActionState = "awaiting_confirmation"
	ActionApplying             ActionState = "applying"
	ActionSucceeded            ActionState = "succeeded"
	ActionSkipped              ActionState = "skipped"
	ActionFailed               ActionState = "failed"
)

// Action is the orchestrator's internal representation of one remediation
// step, derived 1:1 from a finding at dispatch time. It is transient; only
// its outcome is recorded in the execution ledger.
type Action struct {
	Kind                 Recommendation
	ResourceType         ResourceType
	ResourceID           string
	Platform             string
	RiskTier             Severity // inherited from the finding's severity
	RequiresConfirmation bool
	RequiresBackup       bool
	EstimatedSavings     float64 // USD per month
	Parameters           map[string]string
}

// BackupRef identifies a point-in-time backup created before a destructive
// step. Backups are retained indefinitely; this system never deletes them.
type BackupRef struct {
	ID       string // provider identifier, e.g. an EBS snapshot id
	Kind     string // snapshot, description, config
	Location string // where the artifact or provider object lives

	// Artifact carries the serialized pre-change state for backups that are
	// descriptions rather than provider-side snapshots. The safety layer
	// persists it and fills in Location.
	Artifact []byte
}

// ApplyResult is a provider's report on a mutation attempt.
type ApplyResult struct {
	// AlreadyInTargetState means the provider found the resource already
	// where the action wanted it. Treated as success with a note.
	AlreadyInTargetState bool
	Detail               string
}
