package run

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turbolytics/kevetl/internal/config"
)

func NewCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Runs one extract, transform and load cycle of the KEV catalog.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c := config.Default()
			if configPath != "" {
				var err error
				if c, err = config.NewFromFile(configPath); err != nil {
					return err
				}
			}
			c.ApplyEnv(config.NewViper())
			if err := c.Validate(); err != nil {
				return err
			}

			logger, err := c.Logger.Build()
			if err != nil {
				return err
			}
			defer logger.Sync()
			l := logger.Named("kevetl.run")

			p, err := config.InitializePipeline(c, l)
			if err != nil {
				return err
			}

			result := p.Run(ctx)

			// Stage failures are reported, not returned. The next scheduled run
			// starts from scratch.
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run: %s\n", result.RunID)
			if result.ExtractError != "" {
				fmt.Fprintf(out, "extraction failed: %s\n", result.ExtractError)
				return nil
			}
			fmt.Fprintf(out, "extracted %d records, loaded %d into %s\n",
				result.NumSourceRecords, result.NumRecordsLoaded, result.Target)
			if result.LoadError != "" {
				fmt.Fprintf(out, "load failed: %s\n", result.LoadError)
			}
			if result.Archive != "" {
				fmt.Fprintf(out, "archived to %s\n", result.Archive)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	return cmd
}
