package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/zombie-exorcist/pkg/adapters"
	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
	"github.com/de-tools/zombie-exorcist/pkg/runtime/terminal/export"
	"github.com/de-tools/zombie-exorcist/pkg/services/aggregate"
	"github.com/de-tools/zombie-exorcist/pkg/services/classify"
	findingsstore "github.com/de-tools/zombie-exorcist/pkg/store/findings"
)

type AnalyzeCmd struct {
	profilePath  string
	settingsPath string
	outputDir    string
	platforms    []string
	live         bool
	deps         Deps
}

func NewAnalyzeCmd(deps Deps) *cobra.Command {
	ac := &AnalyzeCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "analyze [usage files...]",
		Short: "Classify resources and report zombies",
		Long: "Analyze exported usage files (JSON or CSV), or live cloud accounts " +
			"with --live, and produce a findings report.",
		RunE: ac.run,
	}

	cmd.Flags().StringVar(&ac.profilePath, "profile", "", "Path to the credentials profile file")
	cmd.Flags().StringVar(&ac.settingsPath, "settings", "", "Path to a classification settings file")
	cmd.Flags().StringVar(&ac.outputDir, "output-dir", "reports", "Directory for findings and report files")
	cmd.Flags().StringSliceVar(&ac.platforms, "platform", nil, "Platforms to scan (default all registered)")
	cmd.Flags().BoolVar(&ac.live, "live", false, "Scan live cloud accounts instead of files")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, args []string) error {
	ctx := loggerContext(cmd)
	logger := zerolog.Ctx(ctx)

	settings := classify.DefaultSettings()
	if ac.settingsPath != "" {
		loaded, err := classify.LoadSettings(ac.settingsPath)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		settings = loaded
	}
	classifier, err := classify.NewClassifier(settings)
	if err != nil {
		return err
	}

	var snaps []domain.Snapshot
	switch {
	case ac.live:
		if ac.profilePath == "" {
			return fmt.Errorf("--live requires --profile")
		}
		registry, err := ac.deps.buildRegistry(ac.profilePath)
		if err != nil {
			return err
		}
		snaps, err = collectLive(ctx, registry, ac.platforms)
		if err != nil {
			return err
		}
	case len(args) > 0:
		snaps, err = collectFiles(args)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("nothing to analyze: pass usage files or --live")
	}

	logger.Info().Int("snapshots", len(snaps)).Msg("classifying resources")

	result := classifier.ClassifyAll(ctx, snaps)
	report := aggregate.Aggregate(result.Findings, result.Skipped)

	findingsPath, err := findingsstore.SaveTimestamped(ac.outputDir, adapters.MapReportDomainToStore(report))
	if err != nil {
		return fmt.Errorf("failed to save findings: %w", err)
	}
	reportPath, err := writeMarkdownReport(ac.outputDir, &report)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	logger.Info().
		Str("findings", findingsPath).
		Str("report", reportPath).
		Msg("analysis artifacts written")

	return ac.deps.Reporter.Handle(&report)
}

func writeMarkdownReport(dir string, report *domain.Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("report_%s.md", time.Now().Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := export.WriteMarkdown(f, report); err != nil {
		return "", err
	}
	return path, nil
}
