package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for dcmdb
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dcmdb",
		Short: "Catalog of forecast files by date and leadtime",
		Long: `dcmdb catalogs forecast model output scattered across local directory
trees or the remote archive.

Each case directory holds a meta.yaml describing its experiments: the file
templates naming their output and, per host, the path template of the
directory tree holding it. Templates use the placeholders %Y %m %d %H %M %S
for the forecast date, %LLLL or %LLL for the leadtime in hours and * for any
text. "dcmdb scan" records which (date, leadtime) combinations exist and
"dcmdb reconstruct" turns them back into file paths.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text; main prints
		// the error itself
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to config file (default: $DCMDB_CONFIG or .dcmdb/config.yaml)")
	flags.String("cases", "", "Directory holding the case definitions (overrides config)")
	flags.String("host", "", "Host whose path templates are used (default: detected from hostname)")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error")
	flags.StringSlice("exp", nil, "Select experiments as case:exp, or a whole case (repeatable)")

	cmd.AddCommand(NewListCommand())
	cmd.AddCommand(NewScanCommand())
	cmd.AddCommand(NewShowCommand())
	cmd.AddCommand(NewReconstructCommand())
	cmd.AddCommand(NewExportCommand())

	return cmd
}
