package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMapConsistentEndToEnd(t *testing.T) {
	dir := t.TempDir()

	configPath := filepath.Join(dir, "mapping.yaml")
	writeFile(t, configPath, `
Name: test-mapping
Constraint: consistent
Dimension: 2
Solver: dense
Basis: inverse-multiquadric
ShapeParam: 1.0
Polynomial: constant-separated
`)

	// Unit square corners with values 1,2,2,1; query the center.
	inputPath := filepath.Join(dir, "input.txt")
	writeFile(t, inputPath, `4 2 1
0 0 0 0 1
1 1 0 0 2
2 1 1 0 2
3 0 1 0 1
`)

	outputPath := filepath.Join(dir, "output.txt")
	writeFile(t, outputPath, `1 2 1
0 0.5 0.5 0 0
`)

	require.NoError(t, runMap(MapOptions{ConfigFile: configPath, InputFile: inputPath, OutputFile: outputPath}))

	_, field, err := loadMeshFile(outputPath)
	require.NoError(t, err)
	require.Len(t, field.Values, 1)
	assert.InDelta(t, 1.5, field.Values[0], 1e-6)
}

func TestRunMapMissingFlagsIsError(t *testing.T) {
	err := runMap(MapOptions{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "configFile"))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
