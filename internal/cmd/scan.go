package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/draelsaid/dcmdb/internal/logger"
)

// NewScanCommand creates the 'scan' subcommand
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [case...]",
		Short: "Scan experiment output and update the case data files",
		Long: `Scan the output of the selected experiments on the current host and
record which dates and leadtimes exist in each case's data.yaml.

Without arguments every case under the cases directory is scanned. A scan
that finds nothing keeps the previously recorded index.

Examples:
  # Scan everything
  dcmdb scan

  # Scan one experiment of one case
  dcmdb scan --exp summer:REF`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, true)
			if err != nil {
				return err
			}
			defer e.Close()

			return runScan(cmd, e, args)
		},
	}

	return cmd
}

func runScan(cmd *cobra.Command, e *env, args []string) error {
	// Interrupts stop the scan between listings; results of the cases already
	// written stay on disk.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := e.loadCatalog(cmd, args)
	if err != nil {
		return err
	}

	summaries, scanErr := c.Scan(ctx, e.builder())
	if ctx.Err() != nil {
		return fmt.Errorf("scan interrupted after %d experiment(s): %w", len(summaries), scanErr)
	}

	printScanSummary(cmd, summaries)

	if scanErr != nil {
		return fmt.Errorf("scan finished with errors: %w", scanErr)
	}
	return nil
}

func printScanSummary(cmd *cobra.Command, summaries []logger.ScanSummary) {
	out := cmd.OutOrStdout()
	found, files := 0, 0
	for _, s := range summaries {
		status := "no data"
		if s.Signal {
			found++
			files += s.Files
			status = fmt.Sprintf("%d dates, %d files", s.Timestamps, s.Files)
		}
		fmt.Fprintf(out, "%s/%s: %s\n", s.Case, s.Experiment, status)
	}
	fmt.Fprintf(out, "Scanned %d experiment(s), %d with data, %d files\n", len(summaries), found, files)
}
