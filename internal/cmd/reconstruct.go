package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/draelsaid/dcmdb/internal/index"
	"github.com/draelsaid/dcmdb/internal/template"
)

// NewReconstructCommand creates the 'reconstruct' subcommand
func NewReconstructCommand() *cobra.Command {
	var (
		dates        []string
		leadtimes    []string
		fileTemplate string
	)

	cmd := &cobra.Command{
		Use:   "reconstruct [case...]",
		Short: "Print the paths of recorded files",
		Long: `Print one path per line for every recorded file of the selected
experiments, optionally restricted to some dates, leadtimes or file templates.

Dates are given as "2006-01-02 15:04:05" or a compact form such as
2006010215. Leadtimes are in hours. --file-template takes a template exactly
as written in meta.yaml or a regular expression over the templates.

Examples:
  # All files of one experiment
  dcmdb reconstruct --exp summer:REF

  # The +6h and +12h files of one date
  dcmdb reconstruct summer --date 2023060100 --leadtime 6 --leadtime 12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := buildFilter(dates, leadtimes, fileTemplate)
			if err != nil {
				return err
			}

			e, err := newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			c, err := e.loadCatalog(cmd, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			paths := c.Reconstruct(f)
			for _, p := range paths {
				fmt.Fprintln(out, p)
			}
			e.log.LogDebug(fmt.Sprintf("reconstructed %d path(s)", len(paths)))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&dates, "date", nil, "Restrict to a forecast date (repeatable)")
	cmd.Flags().StringArrayVar(&leadtimes, "leadtime", nil, "Restrict to a leadtime in hours (repeatable)")
	cmd.Flags().StringVar(&fileTemplate, "file-template", "", "Restrict to matching file templates")

	return cmd
}

func buildFilter(dates, leadtimes []string, fileTemplate string) (index.Filter, error) {
	f := index.Filter{FileTemplate: fileTemplate}
	for _, d := range dates {
		ts, err := template.ParseTimestamp(d)
		if err != nil {
			return f, err
		}
		f.Timestamps = append(f.Timestamps, ts)
	}
	for _, l := range leadtimes {
		lt, err := template.ParseLeadtimeHours(l)
		if err != nil {
			return f, err
		}
		f.Leadtimes = append(f.Leadtimes, lt)
	}
	return f, nil
}
