package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pqdeps/internal/cli/config"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

type document struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func TestRoot_SplitWithFlags(t *testing.T) {
	t.Chdir(t.TempDir())

	stdout, _, err := run(t, "## A\nlet a = 1 in a\n", "split", "--marker", "##", "-o", "json")
	require.NoError(t, err)

	var docs []document
	require.NoError(t, json.Unmarshal([]byte(stdout), &docs))
	assert.Equal(t, []document{{Name: "A", Code: "let a = 1 in a"}}, docs)
}

func TestRoot_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pqdeps.yaml"), []byte(`
split:
  default_name: Main
output: yaml
`), 0600))
	t.Chdir(dir)

	stdout, _, err := run(t, "let a = 1 in a", "split")
	require.NoError(t, err)
	assert.Equal(t, "- name: Main\n  code: let a = 1 in a\n", stdout)
}

func TestRoot_InvalidConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := run(t, "let a = 1 in a", "split", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output must be one of")
}

func TestRoot_VerboseLogsToStderr(t *testing.T) {
	t.Chdir(t.TempDir())

	stdout, stderr, err := run(t, "let a = 1 in a", "split", "-v", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "source loaded")
	assert.NotContains(t, stdout, "source loaded")
}

func TestRoot_Completion(t *testing.T) {
	stdout, _, err := run(t, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "pqdeps")
}

func TestRoot_VersionShowsBuildInfo(t *testing.T) {
	t.Chdir(t.TempDir())

	stdout, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "pqdeps v"+Version)
	assert.Contains(t, stdout, "commit: "+GitCommit)
	assert.Contains(t, stdout, "built:  "+BuildDate)
}
