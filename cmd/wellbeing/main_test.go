package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"wellbeing/internal/app"
	"wellbeing/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCLI(t *testing.T) func(args ...string) (string, error) {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Driver = config.DriverMemory
	a, err := app.New(context.Background(), cfg, nil)
	require.NoError(t, err)

	c := &cli{open: func(context.Context) (*app.App, error) { return a, nil }}
	return func(args ...string) (string, error) {
		root := newRootCmd(c)
		var buf bytes.Buffer
		root.SetOut(&buf)
		root.SetErr(&buf)
		root.SetArgs(args)
		err := root.Execute()
		return buf.String(), err
	}
}

func TestAddListShowDelete(t *testing.T) {
	run := newTestCLI(t)

	id, err := run("add", "--persona", "Light User", "--happiness", "8", "--stress", "3",
		"--rec", "Keep it up", "--input", "sleep_hours_per_night=7.5")
	require.NoError(t, err)
	id = strings.TrimSpace(id)
	assert.True(t, strings.HasPrefix(id, "pred_"))

	_, err = run("add", "--persona", "Doom-Scroller", "--happiness", "3", "--stress", "8")
	require.NoError(t, err)

	listing, err := run("list", "--sort", "happiness")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(listing), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Light User")
	assert.Contains(t, lines[1], "just now")

	listing, err = run("list", "--persona", "Doom-Scroller")
	require.NoError(t, err)
	assert.NotContains(t, listing, "Light User")

	shown, err := run("show", id)
	require.NoError(t, err)
	assert.Contains(t, shown, `"sleep_hours_per_night": 7.5`)

	msg, err := run("delete", id)
	require.NoError(t, err)
	assert.Contains(t, msg, "Deleted")

	msg, err = run("delete", id)
	require.NoError(t, err)
	assert.Contains(t, msg, "nothing deleted")

	_, err = run("show", id)
	assert.Error(t, err)
}

func TestAddRequiresScores(t *testing.T) {
	run := newTestCLI(t)
	_, err := run("add", "--persona", "Light User")
	assert.Error(t, err)
}

func TestStatsChartTrends(t *testing.T) {
	run := newTestCLI(t)
	for _, args := range [][]string{
		{"--persona", "Light User", "--happiness", "8", "--stress", "6"},
		{"--persona", "Moderate User", "--happiness", "4", "--stress", "2"},
	} {
		_, err := run(append([]string{"add"}, args...)...)
		require.NoError(t, err)
	}

	stats, err := run("stats")
	require.NoError(t, err)
	assert.Contains(t, stats, "Total assessments:   2")
	assert.Contains(t, stats, "Average happiness:   6.0")
	assert.Contains(t, stats, "Average stress:      4.0")
	assert.Contains(t, stats, "50.0%")

	chart, err := run("chart", "--points", "5")
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(strings.TrimSpace(chart), "\n")))

	chart, err = run("chart", "--personas")
	require.NoError(t, err)
	assert.Contains(t, chart, "Moderate User")

	trends, err := run("trends", "--days", "7")
	require.NoError(t, err)
	assert.Contains(t, trends, "Last 7 days")
}

func TestExportClearImport(t *testing.T) {
	run := newTestCLI(t)
	_, err := run("add", "--persona", "Light User", "--happiness", "8", "--stress", "3")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "history.json")
	_, err = run("export", "-o", path)
	require.NoError(t, err)

	_, err = run("clear")
	assert.Error(t, err)
	_, err = run("clear", "--yes")
	require.NoError(t, err)

	exported, err := run("export")
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(exported))

	msg, err := run("import", path)
	require.NoError(t, err)
	assert.Contains(t, msg, "Imported 1 records")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not":"array"}`), 0600))
	_, err = run("import", bad)
	assert.Error(t, err)

	listing, err := run("list")
	require.NoError(t, err)
	assert.Contains(t, listing, "Light User")
}
