package cmd

import (
	"github.com/spf13/cobra"

	"github.com/draelsaid/dcmdb/internal/display"
)

// NewShowCommand creates the 'show' subcommand
func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [case...]",
		Short: "Print what the case data files record",
		Long: `Print the recorded index of the selected cases.

Detail levels:
  -1  case names only
   0  experiment names per case
   1  templates, date range and leadtimes of the first date
   2  leadtime range per date and an example path
   3  full leadtime list per date`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			c, err := e.loadCatalog(cmd, args)
			if err != nil {
				return err
			}
			display.Show(cmd.OutOrStdout(), c, e.cfg.PrintLevel)
			return nil
		},
	}

	cmd.Flags().Int("level", 0, "Detail level from -1 to 3 (default: print_level from config)")

	return cmd
}
