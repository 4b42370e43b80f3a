package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverScenarios_Directory(t *testing.T) {
	files, err := DiscoverScenarios("testdata/scenarios")
	require.NoError(t, err)
	assert.Len(t, files, 5)
	assert.Equal(t, filepath.Join("testdata/scenarios", "atomic_failure.yaml"), files[0])
}

func TestDiscoverScenarios_SingleFile(t *testing.T) {
	files, err := DiscoverScenarios("testdata/scenarios/status_update.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"testdata/scenarios/status_update.yaml"}, files)
}

func TestDiscoverScenarios_Missing(t *testing.T) {
	_, err := DiscoverScenarios(filepath.Join(t.TempDir(), "absent"))
	var notFound *ScenarioNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestRunSuite_AllFixturesPass(t *testing.T) {
	result, err := RunSuite("testdata/scenarios")
	require.NoError(t, err)
	assert.Equal(t, 5, result.TotalScenarios)
	assert.Equal(t, 5, result.Passed)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Failures)
}

func TestRunSuite_ReportsFailures(t *testing.T) {
	dir := t.TempDir()
	broken := "name: broken\ndescription: d\nflow: []\n"
	failing := `name: failing
description: expects a count it cannot get
analyses:
  - https://x.example
flow:
  - op: read
    analysis: 1
    expect: { count: 3 }
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_broken.yaml"), []byte(broken), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_failing.yml"), []byte(failing), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	result, err := RunSuite(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalScenarios)
	assert.Equal(t, 0, result.Passed)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Failures, 2)
	assert.Contains(t, result.Failures[0].Errors[0], "failed to load scenario")
	assert.Equal(t, "failing", result.Failures[1].Scenario)
	assert.Contains(t, result.Failures[1].Errors[0], "expected 3 recommendations, got 0")
}
