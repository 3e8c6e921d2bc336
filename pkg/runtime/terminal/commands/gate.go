package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/de-tools/zombie-exorcist/pkg/models/domain"
	"github.com/de-tools/zombie-exorcist/pkg/services/remediate"
)

// promptGate asks for per-action approval on the terminal. Anything but an
// explicit yes declines.
type promptGate struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptGate(in io.Reader, out io.Writer) remediate.ConfirmationGate {
	return &promptGate{in: bufio.NewReader(in), out: out}
}

func (g *promptGate) Confirm(_ context.Context, action domain.Action) (bool, error) {
	fmt.Fprintf(g.out, "About to %s %s/%s (%s risk, ~$%.2f/mo). Proceed? [y/N]: ",
		action.Kind, action.ResourceType, action.ResourceID,
		action.RiskTier, action.EstimatedSavings)

	line, err := g.in.ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
