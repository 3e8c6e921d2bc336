package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
	"github.com/de-tools/zombie-exorcist/pkg/runtime/terminal/export"
	"github.com/de-tools/zombie-exorcist/pkg/services/provider"
	fileprovider "github.com/de-tools/zombie-exorcist/pkg/services/provider/file"
)

// Deps are the collaborators shared across commands.
type Deps struct {
	Factories map[string]provider.Factory
	Reporter  *export.Reporter
	Out       io.Writer
}

// loggerContext attaches a structured logger to the command context.
// Diagnostics go to stderr so report output stays pipeable.
func loggerContext(cmd *cobra.Command) context.Context {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	return logger.WithContext(cmd.Context())
}

// buildRegistry wires the platform factories into a registry bound to one
// profile file.
func (d Deps) buildRegistry(profilePath string) (provider.Registry, error) {
	registry := provider.NewRegistry(profilePath)
	for platform, factory := range d.Factories {
		if err := registry.Register(platform, factory); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// collectLive snapshots every supported resource of the requested platforms.
// An empty platform list means all registered platforms.
func collectLive(ctx context.Context, registry provider.Registry, platforms []string) ([]domain.Snapshot, error) {
	if len(platforms) == 0 {
		platforms = registry.Platforms()
	}

	var snaps []domain.Snapshot
	for _, platform := range platforms {
		p, err := registry.Create(ctx, platform)
		if err != nil {
			return nil, fmt.Errorf("failed to create %q provider: %w", platform, err)
		}
		for _, rt := range p.SupportedResources() {
			batch, err := p.ListResources(ctx, rt)
			if err != nil {
				return nil, fmt.Errorf("failed to list %s resources on %s: %w", rt, platform, err)
			}
			snaps = append(snaps, batch...)
		}
	}
	return snaps, nil
}

// collectFiles loads snapshots from exported JSON or CSV usage files.
func collectFiles(paths []string) ([]domain.Snapshot, error) {
	var snaps []domain.Snapshot
	for _, path := range paths {
		batch, err := fileprovider.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		snaps = append(snaps, batch...)
	}
	return snaps, nil
}
