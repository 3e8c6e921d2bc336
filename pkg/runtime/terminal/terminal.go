package terminal

import (
	"io"
	"os"

	"github.com/de-tools/zombie-exorcist/pkg/runtime/terminal/commands"
	"github.com/de-tools/zombie-exorcist/pkg/runtime/terminal/export"
	"github.com/de-tools/zombie-exorcist/pkg/services/provider"

	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	deps    commands.Deps
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Factories map[string]provider.Factory
	Output    io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		deps: commands.Deps{
			Factories: opts.Factories,
			Reporter:  export.NewReporter(opts.Output),
			Out:       opts.Output,
		},
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exorcist",
		Short: "Detect and remediate idle cloud resources",
	}

	cmd.AddCommand(commands.NewAnalyzeCmd(cli.deps))
	cmd.AddCommand(commands.NewOptimizeCmd(cli.deps))
	cmd.AddCommand(commands.NewStatusCmd(cli.deps))
	cmd.AddCommand(commands.NewInteractiveCmd(cli.deps))
	cmd.AddCommand(commands.NewServeCmd(cli.deps))

	return cmd
}
