package tableau

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

const viewerYAML = `
title: Viewer
width: 1280
height: 720
show_fps: true
reload_key: r
screenshot_key: none
screenshot_dir: shots
fade_in: 0.25
batch: immediate
clear_color: {r: 0.1, g: 0.2, b: 0.3, a: 1}
`

func TestLoadRunConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "viewer.yaml", viewerYAML)
	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Title != "Viewer" || cfg.Width != 1280 || cfg.Height != 720 || !cfg.ShowFPS {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ReloadKey != "r" || cfg.ScreenshotKey != "none" || cfg.Batch != "immediate" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ClearColor == nil || *cfg.ClearColor != (Color{0.1, 0.2, 0.3, 1}) {
		t.Errorf("ClearColor = %+v", cfg.ClearColor)
	}
}

func TestLoadRunConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadRunConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	bad := writeFile(t, dir, "bad.yaml", "width: [1, 2")
	if _, err := LoadRunConfig(bad); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestRunConfigApply(t *testing.T) {
	path := writeFile(t, t.TempDir(), "viewer.yaml", viewerYAML)
	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	s := NewStage("scene.json", newFakeProvisioner())
	if err := cfg.Apply(s); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(s.ReloadKeys, []ebiten.Key{ebiten.KeyR}) {
		t.Errorf("ReloadKeys = %v", s.ReloadKeys)
	}
	if len(s.ScreenshotKeys) != 0 {
		t.Errorf("ScreenshotKeys = %v, want none", s.ScreenshotKeys)
	}
	if s.BatchMode != BatchImmediate || s.ScreenshotDir != "shots" || s.FadeIn != 0.25 || !s.ShowStats {
		t.Errorf("stage = mode %d dir %q fade %v stats %v", s.BatchMode, s.ScreenshotDir, s.FadeIn, s.ShowStats)
	}
	if s.ClearColor != (Color{0.1, 0.2, 0.3, 1}) {
		t.Errorf("ClearColor = %+v", s.ClearColor)
	}
	if s.windowTitle != "Viewer" || s.windowWidth != 1280 || s.windowHeight != 720 {
		t.Errorf("window = %q %dx%d", s.windowTitle, s.windowWidth, s.windowHeight)
	}
}

func TestRunConfigApply_Defaults(t *testing.T) {
	s := NewStage("scene.json", newFakeProvisioner())
	s.ScreenshotDir = "custom"
	if err := (RunConfig{}).Apply(s); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(s.ReloadKeys, []ebiten.Key{ebiten.KeyF5}) ||
		!slices.Equal(s.ScreenshotKeys, []ebiten.Key{ebiten.KeyF12}) {
		t.Errorf("keys = %v %v", s.ReloadKeys, s.ScreenshotKeys)
	}
	if s.BatchMode != BatchCoalesced || s.ScreenshotDir != "custom" || s.ClearColor != ColorBlack {
		t.Error("zero config should keep defaults")
	}
}

func TestRunConfigApply_Errors(t *testing.T) {
	for _, cfg := range []RunConfig{
		{ReloadKey: "NotAKey"},
		{ScreenshotKey: "F99"},
		{Batch: "sometimes"},
		{FadeIn: -1},
	} {
		if err := cfg.Apply(NewStage("scene.json", newFakeProvisioner())); err == nil {
			t.Errorf("%+v: expected error", cfg)
		}
	}
}

func TestParseKeyOption(t *testing.T) {
	tests := []struct {
		name string
		want []ebiten.Key
		ok   bool
	}{
		{"", []ebiten.Key{ebiten.KeyF1}, true},
		{"none", nil, true},
		{"NONE", nil, true},
		{"F5", []ebiten.Key{ebiten.KeyF5}, true},
		{"f12", []ebiten.Key{ebiten.KeyF12}, true},
		{"Space", []ebiten.Key{ebiten.KeySpace}, true},
		{"bogus", nil, false},
	}
	for _, tt := range tests {
		got, err := parseKeyOption(tt.name, ebiten.KeyF1)
		if (err == nil) != tt.ok || !slices.Equal(got, tt.want) {
			t.Errorf("parseKeyOption(%q) = %v, %v", tt.name, got, err)
		}
	}
}

func TestParseBatchMode(t *testing.T) {
	for name, want := range map[string]BatchMode{
		"":          BatchCoalesced,
		"coalesced": BatchCoalesced,
		"Immediate": BatchImmediate,
	} {
		got, err := parseBatchMode(name)
		if err != nil || got != want {
			t.Errorf("parseBatchMode(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := parseBatchMode("later"); err == nil {
		t.Error("expected error")
	}
}
