package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rcliao/vibecast/internal/app"
	"github.com/rcliao/vibecast/internal/kv"
)

func run(t *testing.T, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs(args)
	if err := RootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out.Bytes()
}

func TestOpenReactHistory(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VIBECAST_CONFIG", filepath.Join(dir, "config.toml"))
	t.Setenv("VIBECAST_BACKEND", "")
	t.Setenv("VIBECAST_TZ", "UTC")
	db := filepath.Join(dir, "vc.db")

	run(t, "open", "--db", db, "--log", "off", "--date", "2024-01-01")
	out := run(t, "open", "--db", db, "--log", "off", "--date", "2024-01-02", "--host", "Ava")

	var v app.View
	if err := json.Unmarshal(out, &v); err != nil {
		t.Fatalf("parse open output: %v\n%s", err, out)
	}
	if v.State.AuraScore != 1 || v.State.StreakCount != 1 {
		t.Errorf("expected score 1 streak 1, got %+v", v.State)
	}
	if v.Presentation.Quote == "" {
		t.Error("expected a quote for --host")
	}

	run(t, "react", "Cells", "--db", db, "--log", "off", "--date", "2024-01-02", "--mood", "calm", "--host", "Ava")
	out = run(t, "history", "--db", db, "--log", "off")

	var snap struct {
		Entries []struct {
			EpisodeName string `json:"episodeName"`
			AuraScore   int    `json:"auraScore"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(out, &snap); err != nil {
		t.Fatalf("parse history output: %v\n%s", err, out)
	}
	if len(snap.Entries) != 1 || snap.Entries[0].EpisodeName != "Cells" || snap.Entries[0].AuraScore != 1 {
		t.Errorf("unexpected history: %s", out)
	}
}

func TestAuraForScore(t *testing.T) {
	out := run(t, "aura", "85", "--host", "Max", "--format", "json")

	var p struct {
		Band      string `json:"band"`
		VibeLabel string `json:"vibe_label"`
	}
	if err := json.Unmarshal(out, &p); err != nil {
		t.Fatalf("parse: %v\n%s", err, out)
	}
	if p.Band != "max" || p.VibeLabel != "Max Aura" {
		t.Errorf("unexpected presentation: %s", out)
	}
}

func TestCommandErrorsAreReturned(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VIBECAST_CONFIG", filepath.Join(dir, "config.toml"))
	t.Setenv("VIBECAST_BACKEND", "")
	t.Setenv("VIBECAST_TZ", "UTC")
	db := filepath.Join(dir, "vc.db")

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"aura", "high"}, "score must be an integer"},
		{[]string{"import", filepath.Join(dir, "missing.json")}, "open file"},
		{[]string{"react", "Cells", "--db", db, "--log", "off", "--mood", "bored"}, "react"},
	}
	for _, tt := range tests {
		RootCmd.SetOut(&bytes.Buffer{})
		RootCmd.SetArgs(tt.args)
		err := RootCmd.Execute()
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%v: expected error containing %q, got %v", tt.args, tt.want, err)
		}
	}

	// The failed react closed its store, so the database is free for writers.
	s, err := kv.NewSQLiteStore(db, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if err := s.Set(context.Background(), "k", []byte("v")); err != nil {
		t.Errorf("set after failed command: %v", err)
	}
}
