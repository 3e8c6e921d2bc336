package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/zombie-exorcist/pkg/server"
)

var (
	host       string
	port       string
	reportsDir string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "exorcist-web",
		Short: "Serve past analysis and remediation results over HTTP",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVar(&host, "host", "localhost", "Interface to listen on")
	rootCmd.Flags().StringVar(&port, "port", "8080", "Port to listen on")
	rootCmd.Flags().StringVar(&reportsDir, "reports-dir", "reports",
		"Directory holding findings and execution ledger files")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServer(_ *cobra.Command, _ []string) error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	api := server.NewWebAPI(logger, server.Config{
		Addr:            net.JoinHostPort(host, port),
		ReportsDir:      reportsDir,
		ShutdownTimeout: 10 * time.Second,
	})
	return api.Start()
}
