package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turbolytics/kevetl/internal/cmd/fixtures"
	"github.com/turbolytics/kevetl/internal/cmd/run"
	"github.com/turbolytics/kevetl/internal/cmd/schema"
)

func NewRootCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "kevetl",
		Short: "Loads the CISA Known Exploited Vulnerabilities catalog into a document store",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
		SilenceUsage: true,
	}

	cmd.AddCommand(run.NewCommand())
	cmd.AddCommand(fixtures.NewCommand())
	cmd.AddCommand(schema.NewCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
