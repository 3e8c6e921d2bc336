package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/zombie-exorcist/pkg/adapters"
	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
	"github.com/de-tools/zombie-exorcist/pkg/services/remediate"
	"github.com/de-tools/zombie-exorcist/pkg/services/safety"
	findingsstore "github.com/de-tools/zombie-exorcist/pkg/store/findings"
	ledgerstore "github.com/de-tools/zombie-exorcist/pkg/store/ledger"
)

type OptimizeCmd struct {
	profilePath  string
	findingsPath string
	outputDir    string
	execute      bool
	yes          bool
	approveBelow string
	deps         Deps
}

func NewOptimizeCmd(deps Deps) *cobra.Command {
	oc := &OptimizeCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "optimize [findings-file]",
		Short: "Remediate findings from a previous analysis",
		Long: "Walk the findings of the most recent (or a named) analysis through " +
			"the remediation pipeline. Without --execute, the run is a dry run that " +
			"records what would happen and changes nothing.",
		Args: cobra.MaximumNArgs(1),
		RunE: oc.run,
	}

	cmd.Flags().StringVar(&oc.profilePath, "profile", "", "Path to the credentials profile file")
	cmd.Flags().StringVar(&oc.findingsPath, "findings", "", "Findings file to remediate (default: latest in output dir)")
	cmd.Flags().StringVar(&oc.outputDir, "output-dir", "reports", "Directory holding findings and ledgers")
	cmd.Flags().BoolVar(&oc.execute, "execute", false, "Apply the remediations instead of a dry run")
	cmd.Flags().BoolVar(&oc.yes, "yes", false, "Approve every confirmation prompt (non-interactive runs)")
	cmd.Flags().StringVar(&oc.approveBelow, "approve-below", "",
		"Auto-approve actions below this risk tier (low|medium|high|critical); the rest still prompt")

	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

func (oc *OptimizeCmd) run(cmd *cobra.Command, args []string) error {
	ctx := loggerContext(cmd)
	logger := zerolog.Ctx(ctx)

	path := oc.findingsPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		latest, err := findingsstore.Latest(oc.outputDir)
		if err != nil {
			return fmt.Errorf("no findings to optimize: %w", err)
		}
		if latest == "" {
			return fmt.Errorf("no findings to optimize: run analyze first")
		}
		path = latest
	}

	file, err := findingsstore.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load findings: %w", err)
	}
	report, err := adapters.MapReportStoreToDomain(file)
	if err != nil {
		return fmt.Errorf("findings file %s is not usable: %w", path, err)
	}

	registry, err := oc.deps.buildRegistry(oc.profilePath)
	if err != nil {
		return err
	}

	mode := domain.ModeReport
	var gate remediate.ConfirmationGate
	if oc.execute {
		mode = domain.ModeExecute
		if oc.yes {
			gate = remediate.GateFunc(func(context.Context, domain.Action) (bool, error) { return true, nil })
		} else {
			gate = newPromptGate(os.Stdin, oc.deps.Out)
		}
		if oc.approveBelow != "" {
			tier, err := domain.ParseSeverity(oc.approveBelow)
			if err != nil {
				return fmt.Errorf("invalid --approve-below tier: %w", err)
			}
			gate = remediate.ApproveBelow(tier, gate)
		}
	}

	backups := safety.NewManager(registry, filepath.Join(oc.outputDir, "backups"))
	orchestrator := remediate.NewOrchestrator(registry, backups, gate)

	logger.Info().
		Str("findings", path).
		Str("mode", string(mode)).
		Int("count", len(report.Findings)).
		Msg("starting remediation run")

	ledger := orchestrator.Process(ctx, report, mode)

	ledgerPath, err := ledgerstore.SaveTimestamped(oc.outputDir, adapters.MapLedgerDomainToStore(ledger))
	if err != nil {
		return fmt.Errorf("failed to save execution ledger: %w", err)
	}
	logger.Info().Str("ledger", ledgerPath).Msg("execution ledger written")

	return oc.deps.Reporter.HandleLedger(ledger)
}
