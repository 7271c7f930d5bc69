package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deadline_notifier/internal/domain/notification"
)

type fixture struct {
	stageID uuid.UUID
	key     string
}

func setup(t *testing.T) fixture {
	t.Helper()
	color.NoColor = true

	dir := t.TempDir()
	events := filepath.Join(dir, "events.json")
	t.Setenv("DEADLINECTL_PATH", filepath.Join(dir, "store"))
	t.Setenv("DEADLINECTL_EVENTS", events)
	t.Setenv("DEADLINECTL_TIMEZONE", "UTC")
	t.Setenv("DEADLINECTL_NOTIFY", "false")
	t.Setenv("DEADLINECTL_LOG_LEVEL", "error")

	now := time.Now().UTC()
	due := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)
	stageID := uuid.New()

	data := fmt.Sprintf(`[{"id": %q, "title": "Hackathon", "stages": [
  {"id": %q, "name": "Submission", "deadline_end": %q, "sort_order": 1}
]}]`, uuid.NewString(), stageID, due.Format(time.RFC3339))
	require.NoError(t, os.WriteFile(events, []byte(data), 0o644))

	return fixture{
		stageID: stageID,
		key:     fmt.Sprintf("end-%s-%s", stageID, due.Format("2006-01-02")),
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := New()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err)
	return out
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DEADLINECTL_CONFIG_PATH", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "me", cfg.User)
	assert.Equal(t, "@every 1m", cfg.ScanEvery)
	assert.True(t, cfg.Notify)
	assert.NotContains(t, cfg.Path, "~")
	assert.True(t, filepath.IsAbs(cfg.Events))
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DEADLINECTL_CONFIG_PATH", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".deadlinectl.yaml"), []byte("user: ada\ntimezone: Europe/Berlin\nnotify: false\n"), 0o644))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "ada", cfg.User)
	assert.Equal(t, "Europe/Berlin", cfg.TimeZone)
	assert.False(t, cfg.Notify)
}

func TestScanListsDueReminders(t *testing.T) {
	f := setup(t)

	out := mustRun(t, "scan")
	assert.Contains(t, out, f.key)
	assert.Contains(t, out, "⏰ Deadline Today: Submission")
}

func TestScanAlertPresentsActions(t *testing.T) {
	f := setup(t)

	out := mustRun(t, "scan", "--alert")
	assert.Contains(t, out, "⏰ Deadline Today: Submission")
	assert.Contains(t, out, "[Snooze 1h] deadlinectl snooze "+f.key+" --hours 1")
	assert.Contains(t, out, "[Dismiss] deadlinectl dismiss "+f.key)
}

func TestDismissAndUndismiss(t *testing.T) {
	f := setup(t)

	assert.Contains(t, mustRun(t, "dismiss", f.key), "Dismissed")
	assert.Contains(t, mustRun(t, "scan"), "Nothing due.")

	assert.Contains(t, mustRun(t, "undismiss", f.key), "Restored")
	assert.Contains(t, mustRun(t, "scan"), f.key)
}

func TestSnooze(t *testing.T) {
	f := setup(t)

	assert.Contains(t, mustRun(t, "snooze", f.key, "--hours", "24"), "Snoozed for 24h")
	assert.Contains(t, mustRun(t, "scan"), "Nothing due.")
}

func TestSnoozeOnlyOfferedDurations(t *testing.T) {
	f := setup(t)

	_, err := run(t, "snooze", f.key, "--hours", "5")
	assert.ErrorIs(t, err, errInvalidSnooze)
	assert.Contains(t, mustRun(t, "scan"), f.key)

	assert.Contains(t, mustRun(t, "snooze", f.key, "--hours", "1"), "Snoozed for 1h")
	assert.Contains(t, mustRun(t, "scan"), "Nothing due.")
}

func TestActionsRejectInvalidKeys(t *testing.T) {
	setup(t)

	_, err := run(t, "dismiss", "bogus")
	assert.ErrorIs(t, err, notification.ErrInvalidKey)

	_, err = run(t, "snooze")
	assert.ErrorIs(t, err, errRequiresKey)
}

func TestPrefsTurnsOffWindow(t *testing.T) {
	f := setup(t)

	out := mustRun(t, "prefs", "--on-day=false")
	assert.Regexp(t, `On the day\s+off`, out)
	assert.Regexp(t, `Sound\s+on`, out)

	assert.NotContains(t, mustRun(t, "scan"), f.key)

	out = mustRun(t, "prefs")
	assert.Regexp(t, `On the day\s+off`, out)
}

func TestCompleteStage(t *testing.T) {
	f := setup(t)

	assert.Contains(t, mustRun(t, "complete", f.stageID.String()), "completed")
	assert.Contains(t, mustRun(t, "scan"), "Nothing due.")

	assert.Contains(t, mustRun(t, "complete", f.stageID.String(), "--undo"), "reopened")
	assert.Contains(t, mustRun(t, "scan"), f.key)

	_, err := run(t, "complete", "not-a-uuid")
	assert.Error(t, err)
}
