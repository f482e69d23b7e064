package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/draelsaid/dcmdb/internal/display"
	"github.com/draelsaid/dcmdb/internal/store"
	"github.com/draelsaid/dcmdb/internal/template"
)

// NewExportCommand creates the 'export' subcommand
func NewExportCommand() *cobra.Command {
	var (
		dbPath string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "export [case...]",
		Short: "Export recorded indexes to a SQLite database",
		Long: `Export the recorded index of every selected experiment on the current
host to a SQLite database. An export replaces whatever the database held for
the same host, case and experiment. Experiments that were never scanned or
found nothing are skipped, as are those whose index is unchanged since their
last export unless --force is given.

Examples:
  dcmdb export --sqlite catalog.db summer`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, true)
			if err != nil {
				return err
			}
			defer e.Close()

			if dbPath == "" {
				dbPath = e.cfg.Store.SQLitePath
			}
			return runExportSQLite(cmd, e, args, dbPath, force)
		},
	}

	cmd.Flags().StringVar(&dbPath, "sqlite", "", "Path to the SQLite database (default: store.sqlite_path from config)")
	cmd.Flags().BoolVar(&force, "force", false, "Export unchanged experiments again")

	return cmd
}

func runExportSQLite(cmd *cobra.Command, e *env, args []string, dbPath string, force bool) error {
	c, err := e.loadCatalog(cmd, args)
	if err != nil {
		return err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	var records []store.Record
	for _, caseName := range c.CaseNames() {
		cs := c.Cases[caseName]
		for _, expName := range cs.ExperimentNames() {
			idx := cs.Index(expName)
			if idx == nil || idx.Empty() {
				e.log.LogDebug(fmt.Sprintf("%s/%s: nothing recorded, skipped", caseName, expName))
				continue
			}
			records = append(records, store.Record{
				Key:   store.Key{Host: c.Host, Case: caseName, Experiment: expName},
				RunID: e.runID(),
				Index: idx,
			})
		}
	}

	progress := display.NewProgressIndicator(cmd.OutOrStdout(), "Exporting to "+dbPath, len(records))
	progress.Start()
	exported, unchanged, files := 0, 0, 0
	for _, rec := range records {
		if !force {
			last, err := unchangedSince(cmd.Context(), st, rec)
			if err != nil {
				return err
			}
			if last != nil {
				unchanged++
				progress.Step(fmt.Sprintf("%s unchanged since %s", rec.Key, last.RecordedAt.Format(template.TimestampLayout)))
				continue
			}
		}
		if _, err := st.RecordScan(cmd.Context(), rec); err != nil {
			return err
		}
		exported++
		files += rec.Index.Stats().Files
		progress.Step(rec.Key.String())
	}
	progress.Complete(fmt.Sprintf("exported %d experiment(s), %d files, %d unchanged", exported, files, unchanged))

	return nil
}

// unchangedSince returns the latest export of rec's experiment when it stored
// the same index, and nil when rec needs exporting.
func unchangedSince(ctx context.Context, st *store.Store, rec store.Record) (*store.Scan, error) {
	stored, err := st.LoadIndex(ctx, rec.Key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !stored.Equal(rec.Index) {
		return nil, nil
	}
	return st.LatestScan(ctx, rec.Key)
}
