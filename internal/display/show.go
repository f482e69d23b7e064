package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/draelsaid/dcmdb/internal/catalog"
	"github.com/draelsaid/dcmdb/internal/index"
	"github.com/draelsaid/dcmdb/internal/template"
)

// Detail levels understood by Show
const (
	LevelCases       = -1
	LevelExperiments = 0
	LevelSummary     = 1
	LevelDates       = 2
	LevelLeadtimes   = 3
)

// Show prints the catalog at the given detail level.
func Show(w io.Writer, c *catalog.Catalog, level int) {
	p := &printer{w: w, colors: newPalette(colorEnabled(w)), host: c.Host, level: level}

	if level <= LevelCases {
		fmt.Fprintf(w, "Cases: %s\n", strings.Join(c.CaseNames(), ", "))
		return
	}

	for _, name := range c.CaseNames() {
		p.showCase(c.Cases[name])
	}
}

type printer struct {
	w      io.Writer
	colors palette
	host   string
	level  int
}

func (p *printer) showCase(cs *catalog.Case) {
	fmt.Fprintf(p.w, "\nCase: %s\n", p.colors.caseName.Sprint(cs.Name))

	if p.level == LevelExperiments {
		fmt.Fprintf(p.w, " Runs: %s\n", strings.Join(cs.ExperimentNames(), ", "))
		return
	}

	for _, name := range cs.ExperimentNames() {
		p.showExperiment(cs, cs.Experiments[name])
	}
}

func (p *printer) showExperiment(cs *catalog.Case, exp *catalog.Experiment) {
	pathTemplate, _ := exp.PathTemplate(p.host)
	idx := cs.Index(exp.Name)

	fmt.Fprintf(p.w, "\n  %s\n", p.colors.expName.Sprint(exp.Name))
	p.field("   ", "File templates", strings.Join(exp.FileTemplates, ", "))
	p.field("   ", "Path template", pathTemplate)
	p.field("   ", "Domain", exp.Domain)

	for _, ft := range exp.FileTemplates {
		if _, ok := idx[ft]; !ok {
			continue
		}
		p.field("   ", "File", ft)

		dates := idx.Timestamps(ft)
		if len(dates) == 0 {
			fmt.Fprintln(p.w, "    no data")
			continue
		}

		switch {
		case p.level < LevelDates:
			p.field("    ", "Dates", dates[0]+" - "+dates[len(dates)-1])
			p.field("    ", "Leadtimes", leadtimeRange(idx.Leadtimes(ft, dates[0])))
		case p.level < LevelLeadtimes:
			for _, d := range dates {
				fmt.Fprintf(p.w, "    %s : %s\n", d, leadtimeRange(idx.Leadtimes(ft, d)))
			}
		default:
			for _, d := range dates {
				fmt.Fprintf(p.w, "    %s : %s\n", d, leadtimeList(idx.Leadtimes(ft, d)))
			}
		}

		if p.level >= LevelDates {
			if example := examplePath(pathTemplate, ft, idx, dates[0]); example != "" {
				p.field("    ", "Example", example)
			}
		}
	}
}

func (p *printer) field(indent, label, value string) {
	fmt.Fprintf(p.w, "%s%s %s\n", indent, p.colors.label.Sprint(label+":"), value)
}

// examplePath reconstructs the path of the last leadtime at the first date.
func examplePath(pathTemplate, ft string, idx index.Index, date string) string {
	ts, err := time.Parse(template.TimestampLayout, date)
	if err != nil {
		return ""
	}
	f := index.Filter{FileTemplate: ft, Timestamps: []time.Time{ts}}
	if lts := idx.Leadtimes(ft, date); len(lts) > 0 {
		f.Leadtimes = []time.Duration{time.Duration(lts[len(lts)-1]) * time.Second}
	}
	paths := index.Reconstruct(pathTemplate, []string{ft}, idx, f)
	if len(paths) == 0 {
		return ""
	}
	return paths[0]
}

func hours(seconds int64) int64 {
	return seconds / 3600
}

func leadtimeRange(lts []int64) string {
	if len(lts) == 0 {
		return "none"
	}
	return fmt.Sprintf("%d ... %d", hours(lts[0]), hours(lts[len(lts)-1]))
}

func leadtimeList(lts []int64) string {
	parts := make([]string, len(lts))
	for i, lt := range lts {
		parts[i] = fmt.Sprint(hours(lt))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
