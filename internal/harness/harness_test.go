package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_Golden(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files, "no scenario files found")

	for _, file := range files {
		scenario, err := LoadScenario(file)
		require.NoError(t, err, file)

		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)

			for key, want := range scenario.Expect {
				assert.Equal(t, want, result.Final[key], "expectation %q", key)
			}
		})
	}
}

func TestRun_InitialStateFiresNothing(t *testing.T) {
	result, err := Run(&Scenario{
		Name:    "settled",
		Initial: map[string]string{"version": "1.0", "x": "1"},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Trace, "seeding initial state must not appear in the trace")
	assert.Equal(t, "1.0", result.Final["version"])
}

func TestRun_EmptyStepRejected(t *testing.T) {
	_, err := Run(&Scenario{
		Name:  "bad",
		Steps: []Step{{}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 1")
}

func TestLoadScenario_Errors(t *testing.T) {
	_, err := LoadScenario(filepath.Join("testdata", "does-not-exist.yaml"))
	require.Error(t, err)

	nameless := filepath.Join(t.TempDir(), "nameless.yaml")
	writeFile(t, nameless, "steps:\n  - open: true\n")
	_, err = LoadScenario(nameless)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}
