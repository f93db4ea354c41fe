package schema

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/turbolytics/kevetl/internal/parquet"
)

func NewCommand() *cobra.Command {
	var format string

	var cmd = &cobra.Command{
		Use:   "schema",
		Short: "Prints the parquet schema used for archived snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			switch format {
			case "yaml":
				bs, err := yaml.Marshal(parquet.KEVSchema)
				if err != nil {
					return err
				}
				fmt.Fprint(out, string(bs))
			case "parquet":
				fmt.Fprintln(out, strings.Join(parquet.KEVSchema.ToGoParquetSchema(), "\n"))
			default:
				return fmt.Errorf("unsupported format: %q", format)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format (yaml or parquet)")
	return cmd
}
