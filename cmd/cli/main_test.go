package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salesCSV = `region,units,revenue,channel
north,10,100,web
south,20,200,store
north,30,300,web
south,40,400,store
north,50,500,web
south,60,600,store
`

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "ERROR"))
	err := cmd.Execute()
	return out.String(), err
}

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(salesCSV), 0o644))
	return path
}

func TestInferCommand_WritesAnnotations(t *testing.T) {
	path := writeFixture(t)
	target := filepath.Join(filepath.Dir(path), "types.yaml")

	out, err := runCLI(t, "infer", path, "--write", target)
	require.NoError(t, err)
	assert.Contains(t, out, "revenue")
	assert.Contains(t, out, "Categorical")

	written, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(written), "name: units")
}

func TestRelationshipsCommand_JSON(t *testing.T) {
	path := writeFixture(t)

	out, err := runCLI(t, "relationships", path, "--json")
	require.NoError(t, err)

	var rel struct {
		Correlations struct {
			StrongPairs []struct {
				ColumnA     string  `json:"column_a"`
				ColumnB     string  `json:"column_b"`
				Coefficient float64 `json:"coefficient"`
			} `json:"strong_pairs"`
		} `json:"correlations"`
		Groups       []json.RawMessage `json:"groups"`
		Independence []json.RawMessage `json:"independence"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rel))

	require.Len(t, rel.Correlations.StrongPairs, 1)
	assert.Equal(t, "units", rel.Correlations.StrongPairs[0].ColumnA)
	assert.Equal(t, "revenue", rel.Correlations.StrongPairs[0].ColumnB)
	assert.InDelta(t, 1.0, rel.Correlations.StrongPairs[0].Coefficient, 1e-9)
	assert.Len(t, rel.Groups, 4)
	assert.Len(t, rel.Independence, 1)
}

func TestReportCommand_Formats(t *testing.T) {
	path := writeFixture(t)

	out, err := runCLI(t, "report", path, "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "units & revenue: 1.00")

	out, err = runCLI(t, "report", path, "--format", "html")
	require.NoError(t, err)
	assert.Contains(t, out, "<html")

	_, err = runCLI(t, "report", path, "--format", "pdf")
	assert.Error(t, err)
}

func TestDescribeCommand_MissingFile(t *testing.T) {
	writeFixture(t)
	_, err := runCLI(t, "describe", "nope.csv")
	assert.Error(t, err)
}
