package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	findingsstore "github.com/de-tools/zombie-exorcist/pkg/store/findings"
	ledgerstore "github.com/de-tools/zombie-exorcist/pkg/store/ledger"
)

// accountSpender is implemented by providers that can report last month's
// account-level spend.
type accountSpender interface {
	AccountMonthlySpend(ctx context.Context) (map[string]float64, error)
}

type StatusCmd struct {
	profilePath string
	outputDir   string
	live        bool
	deps        Deps
}

func NewStatusCmd(deps Deps) *cobra.Command {
	sc := &StatusCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Summarize the latest analysis and remediation runs",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.profilePath, "profile", "", "Path to the credentials profile file")
	cmd.Flags().StringVar(&sc.outputDir, "output-dir", "reports", "Directory holding findings and ledgers")
	cmd.Flags().BoolVar(&sc.live, "live", false, "Also query account-level spend from the cloud providers")

	return cmd
}

func (sc *StatusCmd) run(cmd *cobra.Command, args []string) error {
	ctx := loggerContext(cmd)
	logger := zerolog.Ctx(ctx)

	if path, err := findingsstore.Latest(sc.outputDir); err == nil && path != "" {
		file, err := findingsstore.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load findings: %w", err)
		}
		fmt.Fprintf(sc.deps.Out, "Latest analysis: %s\n", path)
		fmt.Fprintf(sc.deps.Out, "  findings: %d, potential savings: $%.2f/mo\n",
			file.Summary.TotalFindings, file.Summary.TotalPotentialSavings)
		for severity, count := range file.Summary.CountBySeverity {
			fmt.Fprintf(sc.deps.Out, "  %s: %d\n", severity, count)
		}
	} else {
		fmt.Fprintln(sc.deps.Out, "No analysis runs found.")
	}

	if path, err := ledgerstore.Latest(sc.outputDir); err == nil && path != "" {
		file, err := ledgerstore.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load ledger: %w", err)
		}
		fmt.Fprintf(sc.deps.Out, "Latest remediation: %s (%s mode)\n", path, file.Mode)
		fmt.Fprintf(sc.deps.Out, "  realized savings: $%.2f/mo, outstanding: $%.2f/mo\n",
			file.RealizedSavings, file.PotentialSavings)
		for state, count := range file.CountByState {
			fmt.Fprintf(sc.deps.Out, "  %s: %d\n", state, count)
		}
	} else {
		fmt.Fprintln(sc.deps.Out, "No remediation runs found.")
	}

	if !sc.live {
		return nil
	}
	if sc.profilePath == "" {
		return fmt.Errorf("--live requires --profile")
	}

	registry, err := sc.deps.buildRegistry(sc.profilePath)
	if err != nil {
		return err
	}
	for _, platform := range registry.Platforms() {
		p, err := registry.Create(ctx, platform)
		if err != nil {
			logger.Warn().Err(err).Str("platform", platform).Msg("provider unavailable")
			continue
		}
		spender, ok := p.(accountSpender)
		if !ok {
			continue
		}
		spend, err := spender.AccountMonthlySpend(ctx)
		if err != nil {
			logger.Warn().Err(err).Str("platform", platform).Msg("spend query failed")
			continue
		}

		services := make([]string, 0, len(spend))
		total := 0.0
		for service, amount := range spend {
			services = append(services, service)
			total += amount
		}
		sort.Strings(services)

		fmt.Fprintf(sc.deps.Out, "%s spend last month: $%.2f\n", platform, total)
		for _, service := range services {
			fmt.Fprintf(sc.deps.Out, "  %s: $%.2f\n", service, spend[service])
		}
	}
	return nil
}
