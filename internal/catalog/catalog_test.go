package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/draelsaid/dcmdb/internal/enumerate"
	"github.com/draelsaid/dcmdb/internal/index"
	"github.com/draelsaid/dcmdb/internal/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// fixture creates a cases directory with two cases and a local data tree
// for the experiments of the "summer" case.
func fixture(t *testing.T) (root, dataDir string) {
	t.Helper()
	base := t.TempDir()
	root = filepath.Join(base, "cases")
	dataDir = filepath.Join(base, "data")

	writeFile(t, filepath.Join(root, "summer", MetaFile), `
REF:
  domain: METCOOP25D
  file_templates: ["fc%Y%m%d%H+%LLL.grib"]
  atos:
    path_template: "`+dataDir+`/ref/%Y/%m/%d/%H/"
TEST:
  domain: METCOOP25D
  file_templates: "an%Y%m%d%H.nc"
  atos:
    path_template: "`+dataDir+`/test/"
  lumi:
    path_template: "/scratch/test/"
LUMIONLY:
  domain: METCOOP25D
  file_templates: ["x"]
  lumi:
    path_template: "/scratch/x/"
`)
	writeFile(t, filepath.Join(root, "winter", MetaFile), `
REF:
  domain: IBERIA
  file_templates: ["fc%Y%m%d%H+%LLLL.grib"]
  atos:
    path_template: "`+dataDir+`/winter/"
`)
	writeFile(t, filepath.Join(root, "notacase", "README"), "")

	for _, f := range []string{
		"ref/2023/06/01/00/fc2023060100+000.grib",
		"ref/2023/06/01/00/fc2023060100+003.grib",
		"ref/2023/06/01/12/fc2023060112+000.grib",
		"test/an2023060100.nc",
		"winter/fc2023120100+0024.grib",
	} {
		writeFile(t, filepath.Join(dataDir, filepath.FromSlash(f)), "")
	}
	return root, dataDir
}

func TestParseMeta(t *testing.T) {
	exps, err := ParseMeta([]byte(`
EXP:
  domain: D
  file_templates: ["a%Y", "b%Y"]
  atos:
    path_template: "ec:/u/%Y/"
    comment: ignored
  lumi:
    path_template: "/scratch/"
`))
	require.NoError(t, err)
	require.Contains(t, exps, "EXP")
	exp := exps["EXP"]
	assert.Equal(t, "EXP", exp.Name)
	assert.Equal(t, "D", exp.Domain)
	assert.Equal(t, []string{"a%Y", "b%Y"}, exp.FileTemplates)
	assert.Equal(t, []string{"atos", "lumi"}, exp.Hosts())
	pt, ok := exp.PathTemplate("atos")
	assert.True(t, ok)
	assert.Equal(t, "ec:/u/%Y/", pt)
	_, ok = exp.PathTemplate("leonardo")
	assert.False(t, ok)
}

func TestParseMetaErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"not yaml", "EXP: [", "failed to parse"},
		{"no file templates", "EXP:\n  domain: D\n", "no file_templates"},
		{"host without path template", "EXP:\n  file_templates: [a]\n  atos:\n    other: x\n", "no path_template"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMeta([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDetectHost(t *testing.T) {
	patterns := map[string]string{"atos": `^a(a|b|c|d)`, "lumi": `^uan`, "bad": `(`}

	host, ok := DetectHost(patterns, "ac6-102.bullx")
	assert.True(t, ok)
	assert.Equal(t, "atos", host)

	host, ok = DetectHost(patterns, "uan01")
	assert.True(t, ok)
	assert.Equal(t, "lumi", host)

	_, ok = DetectHost(patterns, "laptop")
	assert.False(t, ok)

	host, err := ResolveHost("leonardo", patterns)
	require.NoError(t, err)
	assert.Equal(t, "leonardo", host)

	_, err = ResolveHost("", map[string]string{})
	assert.True(t, errors.Is(err, ErrUnknownHost))
}

func TestAvailable(t *testing.T) {
	root, _ := fixture(t)
	names, err := Available(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"summer", "winter"}, names)
}

func TestLoadAll(t *testing.T) {
	root, _ := fixture(t)
	c, err := Load(Options{Root: root, Host: "atos"})
	require.NoError(t, err)

	assert.Equal(t, []string{"summer", "winter"}, c.CaseNames())
	summer := c.Cases["summer"]
	assert.Equal(t, []string{"REF", "TEST"}, summer.ExperimentNames())
	assert.Equal(t, []string{"LUMIONLY"}, summer.Unavailable)
	assert.Nil(t, summer.Index("REF"))
}

func TestLoadSelection(t *testing.T) {
	root, _ := fixture(t)
	c, err := Load(Options{
		Root:      root,
		Host:      "atos",
		Selection: Selection{"summer": {"TEST", "NOPE"}, "autumn": nil},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"summer"}, c.CaseNames())
	assert.Equal(t, []string{"autumn"}, c.MissingCases)
	assert.Equal(t, []string{"TEST"}, c.Cases["summer"].ExperimentNames())
	assert.Equal(t, []string{"NOPE"}, c.Cases["summer"].MissingExperiments)
}

func TestLoadNoCases(t *testing.T) {
	root, _ := fixture(t)
	_, err := Load(Options{Root: root, Host: "atos", Names: []string{"autumn"}})
	require.True(t, errors.Is(err, ErrNoCases))
	assert.Contains(t, err.Error(), "summer, winter")

	_, err = Load(Options{Root: filepath.Join(t.TempDir(), "empty"), Host: "atos"})
	assert.True(t, errors.Is(err, ErrNoCases))
}

func TestScanPersistsAndReloads(t *testing.T) {
	root, _ := fixture(t)
	c, err := Load(Options{Root: root, Host: "atos"})
	require.NoError(t, err)

	summaries, err := c.Scan(context.Background(), index.NewBuilder(enumerate.Options{}, nil))
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "summer", summaries[0].Case)
	assert.Equal(t, "REF", summaries[0].Experiment)
	assert.True(t, summaries[0].Signal)
	assert.Equal(t, 3, summaries[0].Files)

	reloaded, err := Load(Options{Root: root, Host: "atos", Names: []string{"summer"}})
	require.NoError(t, err)
	ref := reloaded.Cases["summer"].Index("REF")
	assert.Equal(t, []int64{0, 10800}, ref.Leadtimes("fc%Y%m%d%H+%LLL.grib", "2023-06-01 00:00:00"))
	test := reloaded.Cases["summer"].Index("TEST")
	assert.True(t, test.Has("an%Y%m%d%H.nc", "2023-06-01 00:00:00"))

	raw, err := os.ReadFile(filepath.Join(root, "summer", DataFile))
	require.NoError(t, err)
	var generic map[string]map[string]map[string]map[string][]int64
	require.NoError(t, json.Unmarshal(raw, &generic), "data file is plain JSON")
	assert.Contains(t, generic["atos"], "REF")
}

func TestScanKeepsPreviousIndexWhenNothingFound(t *testing.T) {
	root, dataDir := fixture(t)
	c, err := Load(Options{Root: root, Host: "atos", Names: []string{"winter"}})
	require.NoError(t, err)
	_, err = c.Scan(context.Background(), index.NewBuilder(enumerate.Options{}, nil))
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(filepath.Join(dataDir, "winter")))

	c, err = Load(Options{Root: root, Host: "atos", Names: []string{"winter"}})
	require.NoError(t, err)
	summaries, err := c.Scan(context.Background(), index.NewBuilder(enumerate.Options{}, nil))
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.False(t, summaries[0].Signal)

	idx := c.Cases["winter"].Index("REF")
	assert.Equal(t, []int64{86400}, idx.Leadtimes("fc%Y%m%d%H+%LLLL.grib", "2023-12-01 00:00:00"))
}

func TestScanContinuesPastMalformedTemplate(t *testing.T) {
	root, dataDir := fixture(t)
	writeFile(t, filepath.Join(root, "broken", MetaFile), `
BAD:
  file_templates: ["fc%Q"]
  atos:
    path_template: "`+dataDir+`/ref/"
GOOD:
  file_templates: ["an%Y%m%d%H.nc"]
  atos:
    path_template: "`+dataDir+`/test/"
`)
	c, err := Load(Options{Root: root, Host: "atos", Names: []string{"broken"}})
	require.NoError(t, err)

	summaries, err := c.Scan(context.Background(), index.NewBuilder(enumerate.Options{}, nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, template.ErrMalformedTemplate))
	assert.True(t, strings.Contains(err.Error(), "broken/BAD"))
	require.Len(t, summaries, 1)
	assert.Equal(t, "GOOD", summaries[0].Experiment)
	assert.NotNil(t, c.Cases["broken"].Index("GOOD"))
}

func TestReconstruct(t *testing.T) {
	root, dataDir := fixture(t)
	c, err := Load(Options{Root: root, Host: "atos"})
	require.NoError(t, err)
	_, err = c.Scan(context.Background(), index.NewBuilder(enumerate.Options{}, nil))
	require.NoError(t, err)

	ts := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	paths := c.Reconstruct(index.Filter{Timestamps: []time.Time{ts}})
	assert.Equal(t, []string{
		dataDir + "/ref/2023/06/01/00/fc2023060100+000.grib",
		dataDir + "/ref/2023/06/01/00/fc2023060100+003.grib",
		dataDir + "/test/an2023060100.nc",
	}, paths)

	paths = c.Reconstruct(index.Filter{Leadtimes: []time.Duration{24 * time.Hour}})
	assert.Equal(t, []string{dataDir + "/winter/fc2023120100+0024.grib"}, paths)
}

func TestLoadLegacyDataFile(t *testing.T) {
	root, _ := fixture(t)
	writeFile(t, filepath.Join(root, "summer", DataFile), `{
 "atos": {
  "TEST": {"an%Y%m%d%H.nc": {"2023-06-01 00:00:00": [null]}}
 },
 "lumi": {}
}`)
	c, err := Load(Options{Root: root, Host: "atos", Names: []string{"summer"}})
	require.NoError(t, err)

	cs := c.Cases["summer"]
	assert.Equal(t, []int64{}, cs.Index("TEST").Leadtimes("an%Y%m%d%H.nc", "2023-06-01 00:00:00"))
	assert.Contains(t, cs.Data, "lumi", "other hosts are preserved")
	assert.Equal(t, []string{"/d/an2023060100.nc"},
		index.Reconstruct("/d/", []string{"an%Y%m%d%H.nc"}, cs.Index("TEST"), index.Filter{}))
}

func TestLoadCorruptDataFile(t *testing.T) {
	root, _ := fixture(t)
	writeFile(t, filepath.Join(root, "summer", DataFile), "{not json")
	_, err := Load(Options{Root: root, Host: "atos", Names: []string{"summer"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}
