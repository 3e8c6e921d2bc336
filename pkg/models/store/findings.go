package store

// Wire representation of the findings file, the sole interchange format
// between an analysis run and a later remediation run. Every finding field
// must round-trip losslessly.

type Summary struct {
	TotalFindings         int            `json:"total_findings"`
	TotalPotentialSavings float64        `json:"total_potential_savings_usd"`
	TotalCurrentCost      float64        `json:"total_current_cost_usd"`
	CountBySeverity       map[string]int `json:"count_by_severity"`
	GeneratedAt           string         `json:"generated_at"`
}

type Finding struct {
	ResourceType     string            `json:"resource_type"`
	ResourceID       string            `json:"resource_id"`
	Platform         string            `json:"platform"`
	Issue            string            `json:"issue"`
	Recommendation   string            `json:"recommendation"`
	Severity         string            `json:"severity"`
	EstimatedSavings float64           `json:"estimated_savings_usd_per_month"`
	CurrentCost      float64           `json:"current_cost_usd_per_month"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

type SkippedResource struct {
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	Reason       string `json:"reason"`
}

type FindingsFile struct {
	Summary  Summary           `json:"summary"`
	Findings []Finding         `json:"findings"`
	Skipped  []SkippedResource `json:"skipped,omitempty"`
}
