package main

import (
	"fmt"
	"os"

	"github.com/de-tools/zombie-exorcist/pkg/runtime/terminal"
	"github.com/de-tools/zombie-exorcist/pkg/services/provider"
	"github.com/de-tools/zombie-exorcist/pkg/services/provider/aws"
	"github.com/de-tools/zombie-exorcist/pkg/services/provider/azure"
	"github.com/de-tools/zombie-exorcist/pkg/services/provider/databricks"
	"github.com/de-tools/zombie-exorcist/pkg/services/provider/snowflake"
)

func main() {
	cli := terminal.NewCLI(terminal.Options{
		Factories: map[string]provider.Factory{
			aws.Platform:        aws.ProviderFactory,
			snowflake.Platform:  snowflake.ProviderFactory,
			databricks.Platform: databricks.ProviderFactory,
			azure.Platform:      azure.ProviderFactory,
		},
		Output: os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
