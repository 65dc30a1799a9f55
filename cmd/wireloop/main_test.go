package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/wireloop/internal/config"
	"github.com/verte-zerg/wireloop/internal/levels"
	"github.com/verte-zerg/wireloop/internal/model"
)

func TestConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wireloop", "config.toml")
	if err := ensureConfigFile(path); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("template does not decode: %v", err)
	}
	if cfg.LogLevel != nil || cfg.Play.FPS != nil || cfg.Serve.Addr != nil {
		t.Fatalf("expected every template value commented out, got %+v", cfg)
	}
}

func TestEnsureConfigKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("log-level = \"debug\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ensureConfigFile(path); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "log-level = \"debug\"\n" {
		t.Fatalf("config was overwritten: %q", data)
	}
}

func TestStatsConfig(t *testing.T) {
	cfg, err := statsConfig(2, "2025-04-01", 10, 5)
	if err != nil {
		t.Fatalf("stats config: %v", err)
	}
	if cfg.Level != 2 || cfg.Last != 10 || cfg.CurveWindow != 5 || cfg.Since == nil {
		t.Fatalf("unexpected config %+v", cfg)
	}
	bad := []struct {
		level  int
		since  string
		last   int
		window int
	}{
		{-1, "", 0, 5},
		{0, "04/01/2025", 0, 5},
		{0, "", -3, 5},
		{0, "", 0, 0},
	}
	for _, tc := range bad {
		if _, err := statsConfig(tc.level, tc.since, tc.last, tc.window); err == nil {
			t.Fatalf("expected error for %+v", tc)
		}
	}
}

func TestWriteLevels(t *testing.T) {
	catalog := levels.NewCatalog(
		model.Level{ID: 1, Name: "Line", Difficulty: model.DifficultyEasy, Points: []model.Point{{X: 0}, {X: 10}}},
		model.Level{ID: 12, Name: "Long Winding Road", Difficulty: model.DifficultyExpert, Points: []model.Point{{X: 0}, {X: 10}, {X: 20}}},
	)
	var buf bytes.Buffer
	if err := writeLevels(&buf, catalog); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got %q", buf.String())
	}
	if !strings.Contains(lines[2], "Long Winding Road") || !strings.Contains(lines[2], "expert") || !strings.HasSuffix(lines[2], "3") {
		t.Fatalf("unexpected row %q", lines[2])
	}
	if !strings.HasPrefix(lines[1], "  1  Line ") {
		t.Fatalf("unexpected row %q", lines[1])
	}
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"config", "levels", "stats", "serve"} {
		if _, _, err := root.Find([]string{name}); err != nil {
			t.Fatalf("missing %s command: %v", name, err)
		}
	}
	if root.Flags().Lookup("touch") == nil || root.PersistentFlags().Lookup("log-level") == nil {
		t.Fatalf("expected play and persistent flags")
	}
}
