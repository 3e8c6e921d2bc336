package remediate

import (
	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
)

// ActionForFinding derives the remediation action for one finding. The
// mapping is 1:1 and exhaustive over the closed recommendation set; risk
// tier is inherited from the finding's severity.
func ActionForFinding(f domain.Finding) domain.Action {
	return domain.Action{
		Kind:                 f.Recommendation,
		ResourceType:         f.ResourceType,
		ResourceID:           f.ResourceID,
		Platform:             f.Platform,
		RiskTier:             f.Severity,
		RequiresConfirmation: requiresConfirmation(f.Recommendation),
		RequiresBackup:       requiresBackup(f.Recommendation, f.ResourceType),
		EstimatedSavings:     f.EstimatedSavings,
		Parameters:           f.Metadata,
	}
}

// Destructive kinds always need explicit per-action confirmation,
// regardless of tier.
func requiresConfirmation(kind domain.Recommendation) bool {
	switch kind {
	case domain.RecommendTerminate, domain.RecommendDrop, domain.RecommendDelete:
		return true
	default:
		return false
	}
}

// Backup policy: snapshot before destroying storage, capture the pre-change
// description before irreversible or stop/modify/start operations.
func requiresBackup(kind domain.Recommendation, rt domain.ResourceType) bool {
	switch kind {
	case domain.RecommendDelete:
		return rt == domain.ResourceBlockVolume
	case domain.RecommendTerminate, domain.RecommendDrop:
		return true
	case domain.RecommendResize:
		return rt == domain.ResourceCompute
	default:
		return false
	}
}
