package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/cstrafe/internal/model"
)

func TestResolveConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := "[keys]\nleft = \"left\"\nright = \"right\"\n\n[display]\nfps = 60\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--config", path, "--fps", "240"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Left != "left" || cfg.Right != "right" {
		t.Fatalf("file keys not applied: %+v", cfg)
	}
	if cfg.FPS != 240 {
		t.Fatalf("explicit flag must win over file, got fps=%d", cfg.FPS)
	}
	if cfg.Shoot != "space" || cfg.Queue != 256 {
		t.Fatalf("defaults not kept: %+v", cfg)
	}
}

func TestResolveConfigValidates(t *testing.T) {
	cmd := newRootCmd()
	missing := filepath.Join(t.TempDir(), "none.toml")
	if err := cmd.ParseFlags([]string{"--config", missing, "--fps", "1"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if _, err := resolveConfig(cmd); err == nil {
		t.Fatalf("expected fps validation error")
	}
}

func TestKeyLabels(t *testing.T) {
	labels := keyLabels(model.Config{Left: "a", Right: "d", Shoot: "space", Quit: "escape"})
	if labels[model.KeyLeft] != "A" || labels[model.KeyRight] != "D" || labels[model.KeyShoot] != "SPACE" || labels[model.KeyQuit] != "ESC" {
		t.Fatalf("unexpected labels: %v", labels)
	}
}
