package safety

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
	"github.com/de-tools/zombie-exorcist/pkg/services/provider"
	"github.com/rs/zerolog"
)

// ErrBackupFailed marks a failed pre-action backup. The orchestrator aborts
// the action and never proceeds to the mutation.
var ErrBackupFailed = errors.New("backup failed")

// Manager enforces the backup-before-destroy policy: destructive block
// volume operations get a provider-side snapshot, config-changing operations
// get the pre-change description captured as an artifact. Backups are never
// deleted by this system.
type Manager struct {
	registry     provider.Registry
	artifactsDir string
}

func NewManager(registry provider.Registry, artifactsDir string) *Manager {
	return &Manager{registry: registry, artifactsDir: artifactsDir}
}

// Backup creates the point-in-time backup an action requires and returns its
// reference for the audit trail.
func (m *Manager) Backup(ctx context.Context, action domain.Action) (domain.BackupRef, error) {
	logger := zerolog.Ctx(ctx)

	p, err := m.registry.Create(ctx, action.Platform)
	if err != nil {
		return domain.BackupRef{}, fmt.Errorf("%w: %v", ErrBackupFailed, err)
	}

	ref, err := p.CreateBackup(ctx, action)
	if err != nil {
		return domain.BackupRef{}, fmt.Errorf("%w: %v", ErrBackupFailed, err)
	}

	if len(ref.Artifact) > 0 && ref.Location == "" {
		location, err := m.persistArtifact(action, ref)
		if err != nil {
			return domain.BackupRef{}, fmt.Errorf("%w: %v", ErrBackupFailed, err)
		}
		ref.Location = location
	}

	logger.Info().
		Str("resource_id", action.ResourceID).
		Str("backup_id", ref.ID).
		Str("backup_kind", ref.Kind).
		Msg("backup created")
	return ref, nil
}

func (m *Manager) persistArtifact(action domain.Action, ref domain.BackupRef) (string, error) {
	if err := os.MkdirAll(m.artifactsDir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_%s_%s.json",
		action.ResourceID, action.Kind, time.Now().UTC().Format("20060102_150405"))
	path := filepath.Join(m.artifactsDir, name)
	if err := os.WriteFile(path, ref.Artifact, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
