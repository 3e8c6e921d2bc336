package store

// Wire representation of an execution ledger, persisted after each
// remediation run for the status command and the audit sink.

type LedgerEntry struct {
	Kind           string  `json:"kind"`
	ResourceType   string  `json:"resource_type"`
	ResourceID     string  `json:"resource_id"`
	Platform       string  `json:"platform"`
	RiskTier       string  `json:"risk_tier"`
	State          string  `json:"state"`
	Reason         string  `json:"reason,omitempty"`
	Error          string  `json:"error,omitempty"`
	BackupID       string  `json:"backup_id,omitempty"`
	BackupKind     string  `json:"backup_kind,omitempty"`
	BackedUpAt     string  `json:"backed_up_at,omitempty"`
	AppliedAt      string  `json:"applied_at,omitempty"`
	SavingsApplied float64 `json:"savings_applied_usd_per_month"`
}

type LedgerFile struct {
	Mode             string         `json:"mode"`
	StartedAt        string         `json:"started_at"`
	RealizedSavings  float64        `json:"realized_savings_usd_per_month"`
	PotentialSavings float64        `json:"potential_savings_usd_per_month"`
	CountByState     map[string]int `json:"count_by_state"`
	Entries          []LedgerEntry  `json:"entries"`
}
