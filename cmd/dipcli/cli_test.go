package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/polite-betrayal/adjudicator/pkg/diplomacy"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMapCommand(t *testing.T) {
	out, err := run(t, "map")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "DIPLOMACY MAP OVERVIEW"))
	assert.Contains(t, out, "Spring 1901 Movement")
}

func TestCheckCommand(t *testing.T) {
	out, err := run(t, "check", "--power", "france", "A PAR - BUR", "F BRE - MAO")
	require.NoError(t, err)
	assert.Contains(t, out, "OK      A PAR - BUR")
	assert.Contains(t, out, "OK      F BRE - MAO")

	out, err = run(t, "check", "--power", "france", "A PAR - MOS")
	require.ErrorIs(t, err, errInvalidOrders)
	assert.Contains(t, out, "INVALID A PAR - MOS")
}

func TestCheckRequiresPower(t *testing.T) {
	_, err := run(t, "check", "A PAR H")
	assert.Error(t, err)
}

func TestReadOrders(t *testing.T) {
	orders, err := readOrders(strings.NewReader(`
# spring
France: A PAR - BUR
france: A MAR S A PAR - BUR
germany:A MUN - BUR
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"A PAR - BUR", "A MAR S A PAR - BUR"}, orders["france"])
	assert.Equal(t, []string{"A MUN - BUR"}, orders["germany"])

	_, err = readOrders(strings.NewReader("A PAR H\n"))
	assert.ErrorContains(t, err, "line 1")
}

func TestPlayWritesNextState(t *testing.T) {
	dir := t.TempDir()
	ordersPath := filepath.Join(dir, "spring.txt")
	statePath := filepath.Join(dir, "fall.json")
	require.NoError(t, os.WriteFile(ordersPath, []byte(
		"france: A PAR - BUR\nfrance: A MAR S A PAR - BUR\ngermany: A MUN - BUR\nitaly: A ROM - MOS\n",
	), 0o644))

	out, err := run(t, "play", "--orders", ordersPath, "--out", statePath)
	require.NoError(t, err)
	assert.Contains(t, out, "== Spring 1901 Movement ==")
	assert.Contains(t, out, "Rejected:")
	assert.Contains(t, out, "Next: Fall 1901 Movement")

	data, err := os.ReadFile(statePath)
	require.NoError(t, err)
	var st diplomacy.State
	require.NoError(t, json.Unmarshal(data, &st))
	assert.Equal(t, diplomacy.Season("fall"), st.Season)
	assert.Contains(t, st.Units["france"], "A BUR")
	assert.Contains(t, st.Units["germany"], "A MUN")

	out, err = run(t, "map", "--state", statePath)
	require.NoError(t, err)
	assert.Contains(t, out, "Fall 1901 Movement")
}

func TestPlayFromMissingState(t *testing.T) {
	_, err := run(t, "play", "--state", filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorContains(t, err, "read state")
}
