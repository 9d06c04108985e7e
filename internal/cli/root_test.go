package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootRejectsInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "--format", "xml", "rules", "validate", "whatever.yaml")
	assert.Error(t, err)
}

func TestApplyCommand(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte(
		"name: tidy\nrules:\n  - rule: strip\n  - rule: upper\n"), 0o644))

	in := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(in, []byte("name\n ada \n"), 0o644))

	out, _, err := execute(t, "apply", "--rules", rules, filepath.Join(dir, "*.csv"))
	require.NoError(t, err)

	want := filepath.Join(dir, "people.burnished.csv")
	assert.Contains(t, out, want)

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "name\nADA\n", string(data))
}

func TestApplyCommandCustomSuffix(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte("rules:\n  - rule: strip\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("v\nx\n"), 0o644))

	_, _, err := execute(t, "apply", "--rules", rules, "--suffix", ".clean", filepath.Join(dir, "*.csv"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "a.clean.csv"))
	assert.NoError(t, err)
}

func TestApplyCommandJSONOutput(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte("rules:\n  - rule: lower\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("v\nX\n"), 0o644))

	out, _, err := execute(t, "--format", "json", "apply", "--rules", rules, filepath.Join(dir, "*.csv"))
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestApplyCommandMissingRuleFile(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, "apply", "--rules", filepath.Join(dir, "nope.yaml"), "*.csv")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestApplyCommandBadRuleFile(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte("rules:\n  - rule: sparkle\n"), 0o644))

	_, _, err := execute(t, "apply", "--rules", rules, "*.csv")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRulesShowCommand(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte(
		"name: tidy\nrules:\n  - rule: strip\n  - rule: lower\n"), 0o644))

	out, _, err := execute(t, "rules", "show", rules)
	require.NoError(t, err)
	assert.Contains(t, out, "tidy")
	assert.Contains(t, out, "1. strip")
	assert.Contains(t, out, "2. lower")
}

func TestRulesValidateCommand(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte("rules:\n  - rule: strip\n"), 0o644))

	out, _, err := execute(t, "rules", "validate", rules)
	require.NoError(t, err)
	assert.Contains(t, out, "1 rule(s)")
}

func TestRulesValidateCommandSchemaFailure(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte("name: x\n"), 0o644))

	_, _, err := execute(t, "rules", "validate", rules)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
