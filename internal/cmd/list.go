package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/draelsaid/dcmdb/internal/catalog"
)

// NewListCommand creates the 'list' subcommand
func NewListCommand() *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the cases available under the cases directory",
		Long: `List the cases available under the cases directory.

A case is any subdirectory holding a meta.yaml file. With --long the
experiments of each case and the hosts they are defined for are shown too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			return runList(cmd, e, long)
		},
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "Show experiments and hosts of each case")

	return cmd
}

func runList(cmd *cobra.Command, e *env, long bool) error {
	out := cmd.OutOrStdout()

	names, err := catalog.Available(e.cfg.CasesPath)
	if err != nil {
		return fmt.Errorf("failed to list cases: %w", err)
	}
	if len(names) == 0 {
		return fmt.Errorf("%w in %s", catalog.ErrNoCases, e.cfg.CasesPath)
	}

	if !long {
		for _, name := range names {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	for _, name := range names {
		meta, err := catalog.ReadMeta(e.cfg.CasesPath, name)
		if err != nil {
			e.log.LogWarn(err.Error())
			fmt.Fprintf(out, "%s (unreadable)\n", name)
			continue
		}
		fmt.Fprintln(out, name)
		for _, expName := range sortedNames(meta) {
			fmt.Fprintf(out, "  %s [%s]\n", expName, strings.Join(meta[expName].Hosts(), ", "))
		}
	}
	return nil
}
