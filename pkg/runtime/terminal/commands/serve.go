package commands

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/zombie-exorcist/pkg/server"
)

type ServeCmd struct {
	addr      string
	outputDir string
	deps      Deps
}

func NewServeCmd(deps Deps) *cobra.Command {
	sc := &ServeCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve findings and run status over HTTP",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.addr, "addr", "localhost:8080", "Address to listen on")
	cmd.Flags().StringVar(&sc.outputDir, "output-dir", "reports", "Directory holding findings and ledgers")

	return cmd
}

func (sc *ServeCmd) run(cmd *cobra.Command, args []string) error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	api := server.NewWebAPI(logger, server.Config{
		Addr:       sc.addr,
		ReportsDir: sc.outputDir,
	})
	return api.Start()
}
