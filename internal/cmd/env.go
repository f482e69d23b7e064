package cmd

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/draelsaid/dcmdb/internal/catalog"
	"github.com/draelsaid/dcmdb/internal/config"
	"github.com/draelsaid/dcmdb/internal/display"
	"github.com/draelsaid/dcmdb/internal/enumerate"
	"github.com/draelsaid/dcmdb/internal/index"
	"github.com/draelsaid/dcmdb/internal/logger"
)

// env is the state shared by the subcommands: merged configuration and the
// loggers built from it.
type env struct {
	cfg     *config.Config
	log     logger.Logger
	console *logger.ConsoleLogger
	fileLog *logger.FileLogger
}

// newEnv loads the configuration, merges the persistent flags into it and
// sets up logging. Console logs go to the command's error stream so that
// results on standard output stay machine readable. A run log file is only
// opened when runLog is set and a log directory is configured.
func newEnv(cmd *cobra.Command, runLog bool) (*env, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var casesPtr, hostPtr, levelPtr *string
	if cmd.Flags().Changed("cases") {
		v, _ := cmd.Flags().GetString("cases")
		casesPtr = &v
	}
	if cmd.Flags().Changed("host") {
		v, _ := cmd.Flags().GetString("host")
		hostPtr = &v
	}
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		levelPtr = &v
	}
	var levelFlag *int
	if f := cmd.Flags().Lookup("level"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetInt("level")
		levelFlag = &v
	}
	cfg.MergeWithFlags(casesPtr, hostPtr, levelPtr, levelFlag)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	e := &env{cfg: cfg}
	e.console = logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	e.log = e.console

	if runLog && cfg.LogDir != "" {
		e.fileLog, err = logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to create file logger: %w", err)
		}
		e.log = logger.MultiLogger{e.console, e.fileLog}
		e.console.LogDebug(fmt.Sprintf("run log: %s", e.fileLog.Path()))
	}

	return e, nil
}

// Close releases the run log.
func (e *env) Close() {
	if e.fileLog != nil {
		e.fileLog.Close()
	}
}

// runID returns the ID of the run log, or "" without file logging.
func (e *env) runID() string {
	if e.fileLog == nil {
		return ""
	}
	return e.fileLog.RunID()
}

// loadCatalog resolves the host and loads the cases named in args and the
// --exp selection. Problems with the selection are shown as warnings.
func (e *env) loadCatalog(cmd *cobra.Command, args []string) (*catalog.Catalog, error) {
	host, err := catalog.ResolveHost(e.cfg.Host, e.cfg.Hosts)
	if err != nil {
		return nil, err
	}

	exps, _ := cmd.Flags().GetStringSlice("exp")
	selection, err := parseSelection(exps)
	if err != nil {
		return nil, err
	}

	// cases named only through --exp are loaded alongside the arguments
	names := slices.Clone(args)
	if len(names) > 0 {
		for _, name := range sortedNames(selection) {
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}

	c, err := catalog.Load(catalog.Options{
		Root:      e.cfg.CasesPath,
		Host:      host,
		Names:     names,
		Selection: selection,
		Logger:    e.log,
	})
	if err != nil {
		return nil, err
	}

	warnCatalog(cmd.ErrOrStderr(), c)
	return c, nil
}

// builder returns an index builder configured for the archive settings.
func (e *env) builder() *index.Builder {
	return index.NewBuilder(enumerate.Options{
		Prefixes: e.cfg.Archive.Prefixes,
		Lister:   enumerate.NewCommandLister(e.cfg.Archive.ListCommand, e.cfg.Archive.Timeout),
		Logger:   e.log,
	}, e.log)
}

// parseSelection turns "case:exp" and "case" values into a Selection.
func parseSelection(values []string) (catalog.Selection, error) {
	sel := make(catalog.Selection)
	for _, v := range values {
		caseName, exp, hasExp := strings.Cut(v, ":")
		if caseName == "" || (hasExp && exp == "") {
			return nil, fmt.Errorf("invalid --exp %q: want case:exp or case", v)
		}
		if _, ok := sel[caseName]; !ok {
			sel[caseName] = []string{}
		}
		if hasExp {
			sel[caseName] = append(sel[caseName], exp)
		}
	}
	return sel, nil
}

func warnCatalog(w io.Writer, c *catalog.Catalog) {
	if len(c.MissingCases) > 0 {
		display.WarnMissingCases(c.Root, c.MissingCases).Display(w)
	}
	for _, name := range c.CaseNames() {
		cs := c.Cases[name]
		if len(cs.MissingExperiments) > 0 {
			display.WarnMissingExperiments(name, cs.MissingExperiments).Display(w)
		}
		if len(cs.Unavailable) > 0 {
			display.WarnUnavailable(name, c.Host, cs.Unavailable).Display(w)
		}
	}
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
