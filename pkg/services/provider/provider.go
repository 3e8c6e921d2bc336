package provider

import (
	"context"
	"errors"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
)

// ErrUnsupportedAction is returned by providers for action kinds they cannot
// express, e.g. mutations against a read-only snapshot source.
var ErrUnsupportedAction = errors.New("unsupported action for provider")

// Provider is the abstract capability set the core depends on. Concrete
// cloud bindings implement listing, mutation and point-in-time backups;
// everything above this interface is provider-agnostic.
type Provider interface {
	// Platform returns the stable platform key, e.g. "aws" or "snowflake".
	Platform() string

	// SupportedResources lists the resource types this provider can snapshot.
	SupportedResources() []domain.ResourceType

	// ListResources returns fresh usage snapshots for one resource type.
	ListResources(ctx context.Context, t domain.ResourceType) ([]domain.Snapshot, error)

	// ApplyAction performs one remediation mutation.
	ApplyAction(ctx context.Context, action domain.Action) (domain.ApplyResult, error)

	// CreateBackup captures a recoverable artifact before a destructive step
	// and returns its reference for the audit trail.
	CreateBackup(ctx context.Context, action domain.Action) (domain.BackupRef, error)
}
