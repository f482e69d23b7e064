// Package catalog loads case definitions from a cases directory, scans the
// experiments they describe for the current host and persists the resulting
// indexes next to each definition.
//
// A cases directory holds one sub-directory per case:
//
//	cases/
//	  summer2023/
//	    meta.yaml   experiments, file templates and per-host path templates
//	    data.yaml   host -> experiment -> index, written by Scan
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/draelsaid/dcmdb/internal/fileutil"
	"github.com/draelsaid/dcmdb/internal/index"
	"github.com/draelsaid/dcmdb/internal/logger"
)

// ErrNoCases is returned by Load when none of the requested cases exist.
var ErrNoCases = errors.New("no cases found")

// Selection restricts cases to the listed experiments. A case mapped to an
// empty list keeps all of its experiments.
type Selection map[string][]string

// Options controls which cases Load reads.
type Options struct {
	Root string
	Host string
	// Names lists the cases to load; the keys of Selection when empty, and
	// every case under Root when both are empty
	Names     []string
	Selection Selection
	Logger    logger.Logger
}

// Catalog is the set of loaded cases for one host.
type Catalog struct {
	Root  string
	Host  string
	Cases map[string]*Case
	// MissingCases were requested but have no definition under Root
	MissingCases []string

	log logger.Logger
}

// Case is one case directory.
type Case struct {
	Name string
	Dir  string
	// Experiments holds the selected experiments available on the host
	Experiments map[string]*Experiment
	// Unavailable lists selected experiments without a path template for the host
	Unavailable []string
	// MissingExperiments were selected but are not defined
	MissingExperiments []string
	Data               Data

	host string
}

// Available returns the names of the cases under root, sorted. A case is a
// direct sub-directory holding a meta.yaml.
func Available(root string) ([]string, error) {
	scan, err := fileutil.ScanDirectory(root, fileutil.ScanOptions{
		Pattern:   `^[^/]+/` + strings.ReplaceAll(MetaFile, ".", `\.`) + `$`,
		Recursive: true,
		MaxDepth:  2,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list cases in %s: %w", root, err)
	}

	names := make([]string, 0, len(scan.Files))
	for _, f := range scan.Files {
		names = append(names, path.Dir(f))
	}
	sort.Strings(names)
	return names, nil
}

// Load reads the requested cases and their persisted data. Requested cases
// or experiments that do not exist are recorded and logged, not fatal. It
// fails with ErrNoCases when nothing is left to load.
func Load(opts Options) (*Catalog, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	available, err := Available(opts.Root)
	if err != nil {
		return nil, err
	}

	names := opts.Names
	if len(names) == 0 {
		for name := range opts.Selection {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	c := &Catalog{Root: opts.Root, Host: opts.Host, Cases: make(map[string]*Case), log: log}

	selected := available
	if len(names) > 0 {
		selected, c.MissingCases = intersect(names, available)
		if len(c.MissingCases) > 0 {
			log.LogDebug(fmt.Sprintf("could not find cases: %s", strings.Join(c.MissingCases, ", ")))
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w in %s (available: %s)", ErrNoCases, opts.Root, strings.Join(available, ", "))
	}

	for _, name := range selected {
		cs, err := loadCase(opts.Root, name, opts.Host, opts.Selection[name])
		if err != nil {
			return nil, err
		}
		if len(cs.MissingExperiments) > 0 {
			log.LogDebug(fmt.Sprintf("case %s: could not find experiments: %s", name, strings.Join(cs.MissingExperiments, ", ")))
		}
		c.Cases[name] = cs
	}
	log.LogDebug(fmt.Sprintf("loaded cases: %s", strings.Join(selected, ", ")))

	return c, nil
}

// ReadMeta reads the definition of the case name under root.
func ReadMeta(root, name string) (map[string]*Experiment, error) {
	raw, err := os.ReadFile(filepath.Join(root, name, MetaFile))
	if err != nil {
		return nil, fmt.Errorf("case %s: %w", name, err)
	}
	meta, err := ParseMeta(raw)
	if err != nil {
		return nil, fmt.Errorf("case %s: %w", name, err)
	}
	return meta, nil
}

func loadCase(root, name, host string, experiments []string) (*Case, error) {
	dir := filepath.Join(root, name)
	meta, err := ReadMeta(root, name)
	if err != nil {
		return nil, err
	}

	cs := &Case{Name: name, Dir: dir, Experiments: make(map[string]*Experiment), host: host}

	wanted := sortedKeys(meta)
	if len(experiments) > 0 {
		wanted, cs.MissingExperiments = intersect(experiments, wanted)
	}
	for _, exp := range wanted {
		if _, ok := meta[exp].PathTemplate(host); !ok {
			cs.Unavailable = append(cs.Unavailable, exp)
			continue
		}
		cs.Experiments[exp] = meta[exp]
	}

	cs.Data, err = loadData(cs.DataPath())
	if err != nil {
		return nil, fmt.Errorf("case %s: %w", name, err)
	}
	if cs.Data[host] == nil {
		cs.Data[host] = make(map[string]index.Index)
	}

	return cs, nil
}

// CaseNames returns the loaded case names, sorted.
func (c *Catalog) CaseNames() []string {
	return sortedKeys(c.Cases)
}

// ExperimentNames returns the experiment names of the case, sorted.
func (cs *Case) ExperimentNames() []string {
	return sortedKeys(cs.Experiments)
}

// DataPath returns the location of the case's data file.
func (cs *Case) DataPath() string {
	return filepath.Join(cs.Dir, DataFile)
}

// Index returns the stored index of an experiment for the catalog host, or
// nil when it was never scanned successfully.
func (cs *Case) Index(exp string) index.Index {
	return cs.Data[cs.host][exp]
}

// SetIndex replaces the stored index of an experiment.
func (cs *Case) SetIndex(exp string, idx index.Index) {
	if cs.Data[cs.host] == nil {
		cs.Data[cs.host] = make(map[string]index.Index)
	}
	cs.Data[cs.host][exp] = idx
}

// Save writes the case data file.
func (cs *Case) Save(ctx context.Context) error {
	return saveData(ctx, cs.DataPath(), cs.Data)
}

// Scan scans every loaded experiment and saves each case afterwards. A
// result replaces the stored index only when something was found. Scanning
// carries on past experiments with malformed templates and past cases that
// fail to save; those errors are joined into the returned error.
func (c *Catalog) Scan(ctx context.Context, b *index.Builder) ([]logger.ScanSummary, error) {
	var (
		summaries []logger.ScanSummary
		errs      []error
	)

	total := 0
	for _, cs := range c.Cases {
		total += len(cs.Experiments)
	}
	progress, _ := c.log.(interface{ LogProgress(done, total int) })

	done := 0
	for _, name := range c.CaseNames() {
		cs := c.Cases[name]
		for _, expName := range cs.ExperimentNames() {
			if err := ctx.Err(); err != nil {
				return summaries, err
			}

			exp := cs.Experiments[expName]
			pathTemplate, _ := exp.PathTemplate(c.Host)
			c.log.LogInfo(fmt.Sprintf("scan: %s/%s", name, expName))

			start := time.Now()
			report, err := b.ScanReport(ctx, pathTemplate, exp.FileTemplates)
			done++
			if err != nil {
				if ctx.Err() != nil {
					return summaries, ctx.Err()
				}
				c.log.LogError(fmt.Sprintf("%s/%s: %v", name, expName, err))
				errs = append(errs, fmt.Errorf("%s/%s: %w", name, expName, err))
				continue
			}

			stats := report.Index.Stats()
			summary := logger.ScanSummary{
				Case:       name,
				Experiment: expName,
				Templates:  stats.Templates,
				Timestamps: stats.Timestamps,
				Files:      stats.Files,
				Errors:     len(report.Errors),
				Signal:     report.Signal,
				Duration:   time.Since(start),
			}
			summaries = append(summaries, summary)
			c.log.LogScanSummary(summary)
			if progress != nil {
				progress.LogProgress(done, total)
			}

			if report.Signal {
				cs.SetIndex(expName, report.Index)
			} else {
				c.log.LogWarn(fmt.Sprintf("no data found for %s/%s", name, expName))
			}
		}

		if err := cs.Save(ctx); err != nil {
			c.log.LogError(err.Error())
			errs = append(errs, err)
			continue
		}
		c.log.LogDebug(fmt.Sprintf("wrote %s", cs.DataPath()))
	}

	return summaries, errors.Join(errs...)
}

// Reconstruct returns the paths of every experiment's indexed files matching
// f, by case and then experiment name.
func (c *Catalog) Reconstruct(f index.Filter) []string {
	paths := make([]string, 0)
	for _, name := range c.CaseNames() {
		paths = append(paths, c.Cases[name].Reconstruct(f)...)
	}
	return paths
}

// Reconstruct returns the paths of the case's indexed files matching f.
func (cs *Case) Reconstruct(f index.Filter) []string {
	paths := make([]string, 0)
	for _, expName := range cs.ExperimentNames() {
		exp := cs.Experiments[expName]
		pathTemplate, _ := exp.PathTemplate(cs.host)
		paths = append(paths, index.Reconstruct(pathTemplate, exp.FileTemplates, cs.Index(expName), f)...)
	}
	return paths
}

// intersect splits wanted into the names present in have and the rest,
// keeping the order of wanted.
func intersect(wanted, have []string) (found, missing []string) {
	set := make(map[string]bool, len(have))
	for _, h := range have {
		set[h] = true
	}
	for _, w := range wanted {
		if set[w] {
			found = append(found, w)
		} else {
			missing = append(missing, w)
		}
	}
	return found, missing
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
