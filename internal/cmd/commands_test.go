package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draelsaid/dcmdb/internal/catalog"
	"github.com/draelsaid/dcmdb/internal/store"
)

func TestListCommand(t *testing.T) {
	configPath, _ := testEnv(t, "")

	out, _, err := execute(t, "list", "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, "summer\nwinter\n", out)

	out, _, err = execute(t, "list", "-l", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "summer\n  LUMIONLY [lumi]\n  REF [atos]\n  TEST [atos]\n")
	assert.Contains(t, out, "winter\n  REF [atos]\n")
}

func TestListCommandNoCases(t *testing.T) {
	_, _, err := execute(t, "list", "--cases", t.TempDir(), "--config", filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrNoCases)
}

func TestScanCommand(t *testing.T) {
	configPath, _ := testEnv(t, "")

	out, stderr, err := execute(t, "scan", "summer", "--config", configPath)
	require.NoError(t, err)

	assert.Contains(t, out, "summer/REF: 2 dates, 3 files\n")
	assert.Contains(t, out, "summer/TEST: 1 dates, 1 files\n")
	assert.Contains(t, out, "Scanned 2 experiment(s), 2 with data, 4 files\n")
	assert.Contains(t, stderr, "Warning:")
	assert.Contains(t, stderr, "LUMIONLY")

	casesDir := filepath.Join(filepath.Dir(configPath), "cases")
	_, err = os.Stat(filepath.Join(casesDir, "summer", catalog.DataFile))
	assert.NoError(t, err, "data file written")
	_, err = os.Stat(filepath.Join(casesDir, "winter", catalog.DataFile))
	assert.True(t, os.IsNotExist(err), "unselected case left alone")
}

func TestScanCommandWritesRunLog(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "logs")
	configPath, _ := testEnv(t, logDir)

	_, _, err := execute(t, "scan", "--exp", "winter:REF", "--config", configPath)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(logDir, "latest.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "[SCAN] winter/REF FOUND")
}

func TestScanCommandEmptyExperimentKeepsIndex(t *testing.T) {
	configPath, dataDir := testEnv(t, "")

	_, _, err := execute(t, "scan", "--exp", "summer:TEST", "--config", configPath)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dataDir, "test", "an2023060100.nc")))

	out, _, err := execute(t, "scan", "--exp", "summer:TEST", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "summer/TEST: no data\n")

	out, _, err = execute(t, "reconstruct", "--exp", "summer:TEST", "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "test", "an2023060100.nc")+"\n", out)
}

func TestShowCommand(t *testing.T) {
	configPath, _ := testEnv(t, "")
	_, _, err := execute(t, "scan", "--config", configPath)
	require.NoError(t, err)

	out, _, err := execute(t, "show", "--level", "-1", "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, "Cases: summer, winter\n", out)

	out, _, err = execute(t, "show", "summer", "--level", "0", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Case: summer\n Runs: REF, TEST\n")

	out, _, err = execute(t, "show", "--exp", "summer:REF", "--level", "3", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "    2023-06-01 00:00:00 : [0, 3]\n")
	assert.Contains(t, out, "    2023-06-01 12:00:00 : [0]\n")
	assert.NotContains(t, out, "winter")
}

func TestShowCommandMissingCase(t *testing.T) {
	configPath, _ := testEnv(t, "")

	_, stderr, err := execute(t, "show", "summer", "autumn", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Warning:")
	assert.Contains(t, stderr, "autumn")

	_, _, err = execute(t, "show", "autumn", "--config", configPath)
	assert.ErrorIs(t, err, catalog.ErrNoCases)
}

func TestShowCommandInvalidLevel(t *testing.T) {
	configPath, _ := testEnv(t, "")
	_, _, err := execute(t, "show", "--level", "7", "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "print_level")
}

func TestReconstructCommand(t *testing.T) {
	configPath, dataDir := testEnv(t, "")
	_, _, err := execute(t, "scan", "--config", configPath)
	require.NoError(t, err)

	ref := func(rel string) string {
		return filepath.Join(dataDir, "ref", filepath.FromSlash(rel))
	}

	out, _, err := execute(t, "reconstruct", "--exp", "summer:REF", "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, []string{
		ref("2023/06/01/00/fc2023060100+000.grib"),
		ref("2023/06/01/00/fc2023060100+003.grib"),
		ref("2023/06/01/12/fc2023060112+000.grib"),
	}, strings.Fields(out))

	out, _, err = execute(t, "reconstruct", "summer",
		"--date", "2023060100", "--leadtime", "3", "--leadtime", "9", "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, ref("2023/06/01/00/fc2023060100+003.grib")+"\n", out)

	out, _, err = execute(t, "reconstruct", "--file-template", "an.*", "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "test", "an2023060100.nc")+"\n", out)
}

func TestReconstructCommandInvalidFilter(t *testing.T) {
	configPath, _ := testEnv(t, "")

	_, _, err := execute(t, "reconstruct", "--leadtime", "six", "--config", configPath)
	assert.ErrorContains(t, err, "invalid leadtime")

	_, _, err = execute(t, "reconstruct", "--date", "yesterday", "--config", configPath)
	assert.ErrorContains(t, err, "invalid timestamp")
}

func TestExportCommand(t *testing.T) {
	configPath, _ := testEnv(t, "")
	_, _, err := execute(t, "scan", "summer", "--config", configPath)
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	out, _, err := execute(t, "export", "--sqlite", dbPath, "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "[1/2] atos:summer/REF")
	assert.Contains(t, out, "exported 2 experiment(s), 4 files")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	keys, err := st.Experiments(context.Background())
	require.NoError(t, err)
	assert.Len(t, keys, 2, "winter was never scanned")

	idx, err := st.LoadIndex(context.Background(), store.Key{Host: "atos", Case: "summer", Experiment: "REF"})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 10800}, idx.Leadtimes("fc%Y%m%d%H+%LLL.grib", "2023-06-01 00:00:00"))
}

func TestExportCommandSkipsUnchanged(t *testing.T) {
	configPath, dataDir := testEnv(t, "")
	_, _, err := execute(t, "scan", "summer", "--config", configPath)
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	_, _, err = execute(t, "export", "--sqlite", dbPath, "--config", configPath)
	require.NoError(t, err)

	out, _, err := execute(t, "export", "--sqlite", dbPath, "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "[1/2] atos:summer/REF unchanged since ")
	assert.Contains(t, out, "exported 0 experiment(s), 0 files, 2 unchanged")

	out, _, err = execute(t, "export", "--sqlite", dbPath, "--force", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 2 experiment(s), 4 files, 0 unchanged")

	// a rescan with a new file changes only REF
	writeTestFile(t, filepath.Join(dataDir, "ref", "2023", "06", "02", "00", "fc2023060200+000.grib"), "")
	_, _, err = execute(t, "scan", "summer", "--config", configPath)
	require.NoError(t, err)

	out, _, err = execute(t, "export", "--sqlite", dbPath, "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "[1/2] atos:summer/REF\n")
	assert.Contains(t, out, "exported 1 experiment(s), 4 files, 1 unchanged")
}

func TestParseSelection(t *testing.T) {
	sel, err := parseSelection([]string{"summer:REF", "summer:TEST", "winter"})
	require.NoError(t, err)
	assert.Equal(t, catalog.Selection{
		"summer": {"REF", "TEST"},
		"winter": {},
	}, sel)

	for _, bad := range []string{":REF", "summer:", ""} {
		_, err := parseSelection([]string{bad})
		assert.Error(t, err, bad)
	}
}
