package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TrevorS/kdtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squareCSV = `# unit square
0,0
1,0
0,1
1,1
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// --- Matrix parsing ---

func TestReadMatrix(t *testing.T) {
	data, rows, dims, err := readMatrix(strings.NewReader(squareCSV))
	require.NoError(t, err)
	assert.Equal(t, 4, rows)
	assert.Equal(t, 2, dims)
	assert.Equal(t, []float32{0, 0, 1, 0, 0, 1, 1, 1}, data)
}

func TestReadMatrix_Errors(t *testing.T) {
	_, _, _, err := readMatrix(strings.NewReader("1,2\n3\n"))
	assert.Error(t, err)
	_, _, _, err = readMatrix(strings.NewReader("1,x\n"))
	assert.ErrorContains(t, err, "row 1 column 2")
	_, _, _, err = readMatrix(strings.NewReader("# nothing\n"))
	assert.Error(t, err)
}

func TestParseVector(t *testing.T) {
	v, err := parseVector("1, -2.5,3e1")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, -2.5, 30}, v)
	_, err = parseVector("1,,2")
	assert.Error(t, err)
}

// --- Config ---

func TestLoadConfig(t *testing.T) {
	path := writeTemp(t, "tree.yaml", `
decomposition: pca
pivot: median
height: 3
sort: false
sigma: [1, 0]
weighted: true
k: 2
radius: 0.5
workers: 4
log_level: debug
`)
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "pca", cfg.Decomposition)
	assert.Equal(t, []float32{1, 0}, cfg.Sigma)
	assert.True(t, cfg.Weighted)
	assert.Equal(t, 2, cfg.K)
	assert.Equal(t, float32(0.5), cfg.Radius)
	assert.Equal(t, 4, cfg.Workers)

	tc, err := cfg.treeConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, kdtree.DecompositionPCA, tc.Decomposition)
	assert.Equal(t, kdtree.PivotMedian, tc.Pivot)
	assert.Equal(t, 3, tc.Height)
	assert.False(t, tc.Sort)
	assert.NotNil(t, tc.Eigen)

	level, err := cfg.logLevel()
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", level.String())
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultFileConfig(), cfg)
	tc, err := cfg.treeConfig(nil)
	require.NoError(t, err)
	assert.True(t, tc.Sort)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	cfg, err := loadConfig(writeTemp(t, "bad.yaml", "pivot: sideways\n"))
	require.NoError(t, err)
	_, err = cfg.treeConfig(nil)
	assert.ErrorIs(t, err, kdtree.ErrInvalidConfig)

	cfg.LogLevel = "loud"
	_, err = cfg.logLevel()
	assert.Error(t, err)
}

// --- Commands ---

func TestQueryCommand(t *testing.T) {
	data := writeTemp(t, "square.csv", squareCSV)
	out, _, err := run(t, "query", "--data", data, "--verify", "0.9,0.1")
	require.NoError(t, err)
	assert.Contains(t, out, "query 0 (0.9,0.1): 1 found")
	assert.Contains(t, out, "  1\t0.02")
}

func TestQueryCommand_JSON(t *testing.T) {
	data := writeTemp(t, "square.csv", squareCSV)
	out, _, err := run(t, "query", "-d", data, "--k", "2", "--workers", "2", "--json", "0.9,0.1", "0,0.9")
	require.NoError(t, err)

	var results []queryResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, []int{1, 0}, results[0].Indices)
	assert.Equal(t, []int{2, 0}, results[1].Indices)
	assert.Equal(t, []float32{0, 0.9}, results[1].Query)
}

func TestQueryCommand_WeightedFromConfig(t *testing.T) {
	data := writeTemp(t, "square.csv", squareCSV)
	config := writeTemp(t, "tree.yaml", "sigma: [1, 0]\nweighted: true\nk: 2\ndecomposition: hyperplane\n")
	out, _, err := run(t, "query", "-d", data, "-c", config, "--json", "--verify", "0.2,1")
	require.NoError(t, err)

	var results []queryResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	// Only x counts: rows 0 and 2 are both at distance 0.04.
	assert.Equal(t, []int{0, 2}, results[0].Indices)
}

func TestQueryCommand_FlagsOverrideConfig(t *testing.T) {
	data := writeTemp(t, "square.csv", squareCSV)
	config := writeTemp(t, "tree.yaml", "k: 4\n")
	out, errOut, err := run(t, "query", "-d", data, "-c", config, "--k", "1", "--sigma", "0,1", "--weighted", "--profile", "0.9,0.1")
	require.NoError(t, err)
	// Only y counts: rows 0 and 1 tie at 0.01.
	assert.Contains(t, out, "1 found")
	assert.Contains(t, out, "  0\t0.01")
	assert.Contains(t, errOut, "searches=1")
}

func TestQueryCommand_Errors(t *testing.T) {
	data := writeTemp(t, "square.csv", squareCSV)

	_, _, err := run(t, "query", "-d", data, "1,2,3")
	var dm *kdtree.DimensionMismatchError
	assert.ErrorAs(t, err, &dm)

	_, _, err = run(t, "query", "-d", data, "1,2", "1")
	assert.ErrorAs(t, err, &dm)

	_, _, err = run(t, "query", "-d", data, "--k", "0", "1,2")
	assert.Error(t, err)

	_, _, err = run(t, "query", "-d", data, "--weighted", "1,2")
	assert.ErrorIs(t, err, kdtree.ErrNoSigma)

	_, _, err = run(t, "query", "-d", data, "--sigma", "1", "1,2")
	assert.ErrorAs(t, err, &dm)

	_, _, err = run(t, "query", "1,2")
	assert.Error(t, err)
}

func TestInfoCommand(t *testing.T) {
	data := writeTemp(t, "square.csv", squareCSV)
	out, _, err := run(t, "info", "-d", data)
	require.NoError(t, err)
	assert.Contains(t, out, "4 vectors of dimension 2")
	assert.NotContains(t, out, "node 1")

	out, _, err = run(t, "info", "-d", data, "-v", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "node 1 (inner)")
	assert.Contains(t, out, "(1, 1)")
}

func TestInfoCommand_DebugLog(t *testing.T) {
	data := writeTemp(t, "square.csv", squareCSV)
	config := writeTemp(t, "tree.yaml", "log_level: debug\npivot: median\n")
	_, errOut, err := run(t, "info", "-d", data, "-c", config)
	require.NoError(t, err)
	assert.Contains(t, errOut, "kdtree: build completed")
	assert.Contains(t, errOut, "pivot=median")
}
