package tableau

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"gopkg.in/yaml.v3"
)

// RunConfig configures the window and stage behavior for Run. Zero values
// fall back to defaults; window title and size default to the scene's.
type RunConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`

	Resizable bool `yaml:"resizable"`
	ShowFPS   bool `yaml:"show_fps"`
	Debug     bool `yaml:"debug"`

	// ReloadKey and ScreenshotKey name an ebiten key ("F5", "R", ...).
	// Empty selects the default; "none" disables the key.
	ReloadKey     string `yaml:"reload_key"`
	ScreenshotKey string `yaml:"screenshot_key"`
	ScreenshotDir string `yaml:"screenshot_dir"`

	// FadeIn is the fade-in duration in seconds after each (re)load.
	FadeIn float64 `yaml:"fade_in"`

	// Batch is "coalesced" (default) or "immediate".
	Batch string `yaml:"batch"`

	ClearColor *Color `yaml:"clear_color"`
}

// LoadRunConfig reads a YAML RunConfig from path.
func LoadRunConfig(path string) (RunConfig, error) {
	var cfg RunConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("tableau: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("tableau: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Apply copies the configuration onto stage.
func (c RunConfig) Apply(stage *Stage) error {
	keys, err := parseKeyOption(c.ReloadKey, ebiten.KeyF5)
	if err != nil {
		return fmt.Errorf("tableau: reload_key: %w", err)
	}
	stage.ReloadKeys = keys

	keys, err = parseKeyOption(c.ScreenshotKey, ebiten.KeyF12)
	if err != nil {
		return fmt.Errorf("tableau: screenshot_key: %w", err)
	}
	stage.ScreenshotKeys = keys

	mode, err := parseBatchMode(c.Batch)
	if err != nil {
		return fmt.Errorf("tableau: batch: %w", err)
	}
	stage.BatchMode = mode

	if c.ScreenshotDir != "" {
		stage.ScreenshotDir = c.ScreenshotDir
	}
	if c.ClearColor != nil {
		stage.ClearColor = *c.ClearColor
	}
	if c.FadeIn < 0 {
		return fmt.Errorf("tableau: fade_in: must not be negative")
	}
	stage.FadeIn = float32(c.FadeIn)
	stage.ShowStats = c.ShowFPS
	stage.windowTitle = c.Title
	stage.windowWidth, stage.windowHeight = c.Width, c.Height
	if c.Debug {
		stage.SetDebugMode(true)
	}
	return nil
}

func parseBatchMode(name string) (BatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "coalesced":
		return BatchCoalesced, nil
	case "immediate":
		return BatchImmediate, nil
	}
	return BatchCoalesced, fmt.Errorf("unknown batch mode %q", name)
}

// parseKeyOption resolves a key name. Empty yields def, "none" yields no
// keys. Names are matched case-insensitively against ebiten.Key.String.
func parseKeyOption(name string, def ebiten.Key) ([]ebiten.Key, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return []ebiten.Key{def}, nil
	case "none":
		return nil, nil
	}
	for k := ebiten.Key(0); k <= ebiten.KeyMax; k++ {
		if strings.EqualFold(k.String(), name) {
			return []ebiten.Key{k}, nil
		}
	}
	return nil, fmt.Errorf("unknown key %q", name)
}

// Run applies cfg, loads the stage's scene if it has not been loaded yet,
// opens a window and runs the game loop until the window is closed. A
// failure of the initial load is returned; later reload failures keep the
// previous scene on screen.
func Run(stage *Stage, cfg RunConfig) error {
	if err := cfg.Apply(stage); err != nil {
		return err
	}
	stage.windowed = true

	if stage.Scene() == nil {
		if err := stage.Reload(context.Background()); err != nil {
			return err
		}
	} else {
		stage.applyWindow()
	}

	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	return ebiten.RunGame(stage)
}
