package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mavwarf/alerttone/internal/alert"
	"github.com/Mavwarf/alerttone/internal/config"
	"github.com/Mavwarf/alerttone/internal/eventlog"
)

func writeTempConfig(t *testing.T, data interface{}) string {
	t.Helper()
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "alerttone-config.json")
	if err := os.WriteFile(path, b, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return out.String(), err
}

func TestResolveVolumeCLIOverride(t *testing.T) {
	cfg := config.Config{Options: config.Options{Volume: 80}}
	if got := resolveVolume(50, cfg); got != 50 {
		t.Errorf("resolveVolume(50, cfg) = %d, want 50", got)
	}
}

func TestResolveVolumeFallsBackToConfig(t *testing.T) {
	cfg := config.Config{Options: config.Options{Volume: 80}}
	if got := resolveVolume(-1, cfg); got != 80 {
		t.Errorf("resolveVolume(-1, cfg) = %d, want 80", got)
	}
}

func TestUnknownMode(t *testing.T) {
	tests := []struct {
		mode string
		want bool
	}{
		{"", false},
		{"high", false},
		{"HIGH", false},
		{" medium ", false},
		{"Low", false},
		{"urgent", true},
		{"hi", true},
	}
	for _, tt := range tests {
		if got := unknownMode(tt.mode, alert.ParsePriority(tt.mode)); got != tt.want {
			t.Errorf("unknownMode(%q) = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestHelpDescribesOneShotTones(t *testing.T) {
	long := newRootCmd().Long
	if !strings.Contains(long, "plays once (--repeat loops every 11.52s)") {
		t.Errorf("help text does not describe one-shot high tone:\n%s", long)
	}
}

func TestLoadConfigAppliesOverrides(t *testing.T) {
	path := writeTempConfig(t, map[string]any{
		"config": map[string]any{"volume": 80, "low_source": "alarm.raw"},
	})
	cmd := &cobra.Command{}
	cmd.Flags().Bool("repeat", false, "")
	if err := cmd.Flags().Set("repeat", "true"); err != nil {
		t.Fatal(err)
	}

	opts := &rootOptions{configPath: path, volume: 30, backend: "beep", repeat: true}
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Options.Volume != 30 {
		t.Errorf("Volume = %d, want 30", cfg.Options.Volume)
	}
	if cfg.Options.Backend != "beep" {
		t.Errorf("Backend = %q, want beep", cfg.Options.Backend)
	}
	if !cfg.Options.Repeat {
		t.Error("Repeat should be set by flag")
	}
	if cfg.Options.LowSource != "alarm.raw" {
		t.Errorf("LowSource = %q, want alarm.raw", cfg.Options.LowSource)
	}
}

func TestLoadConfigRejectsInvalidOverride(t *testing.T) {
	path := writeTempConfig(t, map[string]any{"config": map[string]any{}})
	cmd := &cobra.Command{}
	cmd.Flags().Bool("repeat", false, "")

	if _, err := loadConfig(cmd, &rootOptions{configPath: path, volume: 150}); err == nil {
		t.Error("expected error for volume 150")
	}
	if _, err := loadConfig(cmd, &rootOptions{configPath: path, volume: -1, backend: "alsa"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestExportHigh(t *testing.T) {
	out := filepath.Join(t.TempDir(), "high.wav")
	stdout, err := execute(t, "export", "high", out)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	st, err := os.Stat(out)
	if err != nil {
		t.Fatal(err)
	}
	if want := int64(44 + 921600); st.Size() != want {
		t.Errorf("size = %d, want %d", st.Size(), want)
	}
	if !strings.Contains(stdout, "f32le 20000Hz 1ch") {
		t.Errorf("output %q missing format", stdout)
	}
}

func TestExportLowRejected(t *testing.T) {
	if _, err := execute(t, "export", "low", filepath.Join(t.TempDir(), "low.wav")); err == nil {
		t.Error("expected error exporting low priority")
	}
}

func TestMuteAndUnmute(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APPDATA", dir)

	out, err := execute(t, "mute", "10m", "--reason", "drill")
	if err != nil {
		t.Fatalf("mute: %v", err)
	}
	if !strings.Contains(out, "muted until") {
		t.Errorf("mute output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "alerttone", "mute.json")); err != nil {
		t.Errorf("mute state not written: %v", err)
	}

	out, _ = execute(t, "mute")
	if !strings.Contains(out, "muted until") {
		t.Errorf("status output = %q", out)
	}

	if _, err := execute(t, "unmute"); err != nil {
		t.Fatalf("unmute: %v", err)
	}
	out, _ = execute(t, "mute")
	if !strings.Contains(out, "not muted") {
		t.Errorf("status after unmute = %q", out)
	}
}

func TestMuteInvalidDuration(t *testing.T) {
	t.Setenv("APPDATA", t.TempDir())
	if _, err := execute(t, "mute", "soon"); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestHistoryNoLog(t *testing.T) {
	db := filepath.Join(t.TempDir(), "missing.db")
	cfg := writeTempConfig(t, map[string]any{"config": map[string]any{"storage": db}})

	out, err := execute(t, "history", "--config", cfg)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No event log found") {
		t.Errorf("output = %q", out)
	}
}

func TestHistoryListsEvents(t *testing.T) {
	db := filepath.Join(t.TempDir(), "alerttone.db")
	store, err := eventlog.NewSQLiteStore(db)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	for _, e := range []eventlog.Event{
		{Time: now, RunID: "r1", Priority: "high", Kind: eventlog.KindSynthesized, Bytes: 921600},
		{Time: now, RunID: "r1", Priority: "high", Kind: eventlog.KindPlayed, Bytes: 921600},
		{Time: now, RunID: "r2", Priority: "low", Kind: eventlog.KindFileUnavailable, Detail: "test.raw"},
	} {
		if err := store.Record(e); err != nil {
			t.Fatal(err)
		}
	}
	store.Close()

	cfg := writeTempConfig(t, map[string]any{"config": map[string]any{"storage": db}})
	out, err := execute(t, "history", "--config", cfg)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	for _, want := range []string{"played", "file_unavailable", `detail="test.raw"`, "Total"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "history", "--config", cfg, "--clear")
	if err != nil {
		t.Fatalf("history --clear: %v", err)
	}
	if !strings.Contains(out, "cleared") {
		t.Errorf("clear output = %q", out)
	}
	out, _ = execute(t, "history", "--config", cfg)
	if !strings.Contains(out, "empty") {
		t.Errorf("output after clear = %q", out)
	}
}

func TestRenderCounts(t *testing.T) {
	var b strings.Builder
	renderCounts(&b, []eventlog.Count{
		{Priority: "low", Kind: eventlog.KindPlayed, N: 1200},
		{Priority: "high", Kind: eventlog.KindPlayed, N: 3},
	})
	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), b.String())
	}
	if !strings.HasPrefix(lines[1], "high") {
		t.Errorf("rows not sorted by priority: %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "1,200") {
		t.Errorf("count not formatted: %q", lines[2])
	}
	if !strings.HasSuffix(lines[3], "1,203") {
		t.Errorf("total = %q, want 1,203", lines[3])
	}
}

func TestPadHelpers(t *testing.T) {
	if got := padL("7", 3); got != "  7" {
		t.Errorf("padL = %q", got)
	}
	if got := padR("ab", 4); got != "ab  " {
		t.Errorf("padR = %q", got)
	}
	if got := padR("abcdef", 3); got != "abcdef" {
		t.Errorf("padR overflow = %q", got)
	}
}

func TestHistoryTextLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "events.log")
	store, err := eventlog.Open(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Record(eventlog.Event{Time: time.Now(), Priority: "medium", Kind: eventlog.KindMuted}); err != nil {
		t.Fatal(err)
	}

	cfg := writeTempConfig(t, map[string]any{"config": map[string]any{"storage": logPath}})
	out, err := execute(t, "history", "--config", cfg, "--days", "1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "priority=medium  muted") {
		t.Errorf("output missing muted event:\n%s", out)
	}
}
