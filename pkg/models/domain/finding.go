package domain

import "fmt"

type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// Savings buckets that map an estimated monthly saving to a severity.
const (
	criticalSavingsUSD = 500
	highSavingsUSD     = 100
	mediumSavingsUSD   = 20
)

// SeverityForSavings derives severity from the estimated monthly savings.
// Severity is a pure function of this value and is never set independently.
func SeverityForSavings(usdPerMonth float64) Severity {
	switch {
	case usdPerMonth >= criticalSavingsUSD:
		return SeverityCritical
	case usdPerMonth >= highSavingsUSD:
		return SeverityHigh
	case usdPerMonth >= mediumSavingsUSD:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	default:
		return "low"
	}
}

// ParseSeverity maps the wire representation back to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "critical":
		return SeverityCritical, nil
	case "high":
		return SeverityHigh, nil
	case "medium":
		return SeverityMedium, nil
	case "low":
		return SeverityLow, nil
	default:
		return SeverityLow, fmt.Errorf("unknown severity %q", s)
	}
}

// Recommendation is the closed vocabulary of remediation verbs a finding can
// carry. Unknown verbs fail at parse time instead of silently no-opping later.
type Recommendation string

const (
	RecommendTerminate      Recommendation = "terminate"
	RecommendStop           Recommendation = "stop"
	RecommendResize         Recommendation = "resize"
	RecommendDelete         Recommendation = "delete"
	RecommendSuspend        Recommendation = "suspend"
	RecommendDrop           Recommendation = "drop"
	RecommendSetAutoSuspend Recommendation = "set_auto_suspend"
	RecommendGlacier        Recommendation = "transition_to_glacier"
	RecommendAbortMultipart Recommendation = "abort_incomplete_uploads"
)

// ParseRecommendation validates a wire value against the closed set.
func ParseRecommendation(s string) (Recommendation, error) {
	switch r := Recommendation(s); r {
	case RecommendTerminate, RecommendStop, RecommendResize, RecommendDelete,
		RecommendSuspend, RecommendDrop, RecommendSetAutoSuspend,
		RecommendGlacier, RecommendAbortMultipart:
		return r, nil
	default:
		return "", fmt.Errorf("unknown recommendation %q", s)
	}
}

// Finding is the classifier's verdict on one zombie resource: a recommended
// action plus estimated savings and a savings-derived severity. Immutable
// once emitted.
type Finding struct {
	ResourceType     ResourceType
	ResourceID       string
	Platform         string
	Issue            string
	Recommendation   Recommendation
	Severity         Severity
	EstimatedSavings float64 // USD per month, never negative
	CurrentCost      float64 // USD per month
	Metadata         map[string]string
}
