package remediate

import (
	"context"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
)

// ConfirmationGate decides per action whether a destructive mutation may
// proceed. Interactive runs prompt a human; headless runs supply a policy.
// Declining is an explicit user choice and yields Skipped, never Failed.
type ConfirmationGate interface {
	Confirm(ctx context.Context, action domain.Action) (bool, error)
}

// GateFunc adapts a function to the ConfirmationGate interface.
type GateFunc func(ctx context.Context, action domain.Action) (bool, error)

func (f GateFunc) Confirm(ctx context.Context, action domain.Action) (bool, error) {
	return f(ctx, action)
}

// DenyAll is the safe default for headless execute runs with no policy:
// every confirmation-gated action is skipped.
func DenyAll() ConfirmationGate {
	return GateFunc(func(context.Context, domain.Action) (bool, error) {
		return false, nil
	})
}

// ApproveBelow auto-approves actions whose risk tier is strictly below the
// given tier and denies the rest. Wrap it around a prompting gate to only
// bother a human for high-stakes actions.
func ApproveBelow(tier domain.Severity, fallback ConfirmationGate) ConfirmationGate {
	return GateFunc(func(ctx context.Context, action domain.Action) (bool, error) {
		if action.RiskTier < tier {
			return true, nil
		}
		return fallback.Confirm(ctx, action)
	})
}
