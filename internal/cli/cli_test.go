package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sheetwork/internal/host"
)

func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const testDefinition = `
sheet: {
	name:    "agon"
	version: "1.0"
	fields: ["epithet", "boons_4_check_1"]
	sections: [{name: "bonds", members: ["autogen", "name"]}]
}
`

func TestValidate_TextOutput(t *testing.T) {
	path := writeTempFile(t, "sheet.cue", testDefinition)

	stdout, _, err := executeCommand(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "agon v1.0: valid (2 fields, 1 sections)")
}

func TestValidate_JSONOutput(t *testing.T) {
	path := writeTempFile(t, "sheet.cue", testDefinition)

	stdout, _, err := executeCommand(t, "validate", path, "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, "agon", data["name"])
}

func TestValidate_InvalidDefinition(t *testing.T) {
	path := writeTempFile(t, "sheet.cue", `sheet: {version: "1.0"}`)

	stdout, _, err := executeCommand(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "INVALID_DEFINITION")
}

func TestRun_ExpectationsPass(t *testing.T) {
	path := writeTempFile(t, "settled.yaml", `name: settled
initial:
  version: "1.0"
steps: []
expect:
  version: "1.0"
`)

	stdout, _, err := executeCommand(t, "run", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "scenario: settled")
	assert.Contains(t, stdout, "ok (0 writes)")
}

func TestRun_ExpectationFailure(t *testing.T) {
	path := writeTempFile(t, "settled.yaml", `name: settled
initial:
  version: "1.0"
steps: []
expect:
  version: "2.0"
`)

	stdout, _, err := executeCommand(t, "run", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, `FAIL version: got "1.0", want "2.0"`)
}

func TestRun_MissingScenario(t *testing.T) {
	_, _, err := executeCommand(t, "run", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDump_TextOutput(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sheet.db")

	store, err := host.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, map[string]string{"version": "1.0"}, host.WriteOptions{}))
	require.NoError(t, store.Write(ctx, map[string]string{"epithet": "Swift"}, host.WriteOptions{}))
	require.NoError(t, store.Close())

	stdout, _, err := executeCommand(t, "dump", path)
	require.NoError(t, err)
	assert.Equal(t, "version = 1.0\nepithet = Swift\n", stdout)
}

func TestRootCommand_RejectsInvalidFormat(t *testing.T) {
	path := writeTempFile(t, "sheet.cue", testDefinition)

	_, _, err := executeCommand(t, "validate", path, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "boom", nil)))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}
