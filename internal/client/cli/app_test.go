package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinbuckley/tripwit/internal/client/config"
	"github.com/kevinbuckley/tripwit/internal/client/remote"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DataDir = t.TempDir()

	app, err := NewApp(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { app.store.Close() })
	return app
}

// run executes one command line against the app and returns its output.
func run(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := app.rootCmd()
	root.SetArgs(args)
	root.SetOut(&buf)
	root.SetErr(&buf)
	err := root.Execute()
	return buf.String(), err
}

func mustRun(t *testing.T, app *App, args ...string) string {
	t.Helper()
	out, err := run(t, app, args...)
	require.NoError(t, err, out)
	return out
}

func TestTripAndStopCommands(t *testing.T) {
	app := newTestApp(t)

	out := mustRun(t, app, "trip", "create", "Paris",
		"--destination", "France", "--start", "2026-05-01", "--end", "2026-05-03")
	fields := strings.Fields(out)
	require.GreaterOrEqual(t, len(fields), 5)
	assert.Equal(t, "3", fields[len(fields)-2])
	tripID := fields[2]

	out = mustRun(t, app, "trip", "list")
	assert.Contains(t, out, "Paris")
	assert.Contains(t, out, tripID)

	out = mustRun(t, app, "day", "list", tripID)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	dayID := strings.Fields(lines[0])[3]

	out = mustRun(t, app, "day", "note", dayID, "arrive late", "--location", "Montmartre")
	assert.Contains(t, out, "noted")
	out = mustRun(t, app, "day", "list", tripID)
	assert.Contains(t, out, "# arrive late")

	out = mustRun(t, app, "stop", "add", dayID, "Louvre", "--category", "attraction")
	assert.Contains(t, out, "position 0")
	louvreID := strings.Fields(out)[2]

	out = mustRun(t, app, "stop", "add", dayID, "Orsay", "--category", "attraction")
	assert.Contains(t, out, "position 1")
	orsayID := strings.Fields(out)[2]

	mustRun(t, app, "stop", "move", orsayID, "--to", "0")
	mustRun(t, app, "stop", "visit", louvreID, "--rating", "5")
	mustRun(t, app, "stop", "delete", orsayID)

	mustRun(t, app, "trip", "delete", tripID)
	out = mustRun(t, app, "trip", "list")
	assert.NotContains(t, out, "Paris")
}

func TestTripCreateRejectsBadDates(t *testing.T) {
	app := newTestApp(t)

	_, err := run(t, app, "trip", "create", "Nowhere",
		"--start", "yesterday", "--end", "2026-05-03")
	assert.ErrorContains(t, err, "not a date")

	_, err = run(t, app, "trip", "delete", "not-an-id")
	assert.ErrorContains(t, err, "not a valid id")

	_, err = run(t, app, "stop", "add", "not-an-id", "Louvre")
	assert.ErrorContains(t, err, "not a valid id")
}

func TestStopAddRejectsUnknownCategory(t *testing.T) {
	app := newTestApp(t)

	out := mustRun(t, app, "trip", "create", "Rome",
		"--start", "2026-06-01", "--end", "2026-06-01")
	tripID := strings.Fields(out)[2]

	out = mustRun(t, app, "day", "list", tripID)
	dayID := strings.Fields(out)[3]

	_, err := run(t, app, "stop", "add", dayID, "Colosseum", "--category", "ruin")
	assert.Error(t, err)
}

func TestSessionRoundTrip(t *testing.T) {
	dir := t.TempDir()

	_, err := loadSession(dir)
	assert.Error(t, err)

	want := remote.Session{UserID: "u1", AccessToken: "acc", RefreshToken: "ref"}
	require.NoError(t, saveSession(dir, want))

	got, err := loadSession(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
