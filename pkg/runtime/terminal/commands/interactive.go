package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type InteractiveCmd struct {
	profilePath string
	outputDir   string
	deps        Deps
}

func NewInteractiveCmd(deps Deps) *cobra.Command {
	ic := &InteractiveCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Run analyze/optimize/status in a shell session",
		RunE:  ic.run,
	}

	cmd.Flags().StringVar(&ic.profilePath, "profile", "", "Default credentials profile for shell commands")
	cmd.Flags().StringVar(&ic.outputDir, "output-dir", "reports", "Default output directory for shell commands")

	return cmd
}

func (ic *InteractiveCmd) run(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(ic.deps.Out, "Zombie Exorcist interactive session. Type 'help' for commands, 'quit' to leave.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(ic.deps.Out, "exorcist> ")
		if !scanner.Scan() {
			fmt.Fprintln(ic.deps.Out)
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprintln(ic.deps.Out, "Commands:")
			fmt.Fprintln(ic.deps.Out, "  analyze [files...] [--live]   classify resources and report zombies")
			fmt.Fprintln(ic.deps.Out, "  optimize [--execute]          remediate the latest findings")
			fmt.Fprintln(ic.deps.Out, "  status                        summarize recent runs")
			fmt.Fprintln(ic.deps.Out, "  quit                          leave the session")
		case "analyze", "optimize", "status":
			if err := ic.dispatch(cmd, fields); err != nil {
				fmt.Fprintf(ic.deps.Out, "Error: %v\n", err)
			}
		default:
			fmt.Fprintf(ic.deps.Out, "Unknown command %q, type 'help'.\n", fields[0])
		}
	}
}

// dispatch runs one shell line through the matching cobra command, filling
// in the session's profile and output dir unless the line overrides them.
func (ic *InteractiveCmd) dispatch(parent *cobra.Command, fields []string) error {
	var sub *cobra.Command
	switch fields[0] {
	case "analyze":
		sub = NewAnalyzeCmd(ic.deps)
	case "optimize":
		sub = NewOptimizeCmd(ic.deps)
	case "status":
		sub = NewStatusCmd(ic.deps)
	}

	args := fields[1:]
	if ic.profilePath != "" && !hasFlag(args, "--profile") {
		args = append(args, "--profile", ic.profilePath)
	}
	if !hasFlag(args, "--output-dir") {
		args = append(args, "--output-dir", ic.outputDir)
	}

	sub.SetArgs(args)
	sub.SetContext(parent.Context())
	return sub.Execute()
}

func hasFlag(args []string, flag string) bool {
	for _, arg := range args {
		if arg == flag || strings.HasPrefix(arg, flag+"=") {
			return true
		}
	}
	return false
}
