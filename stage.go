package tableau

import (
	"context"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tanema/gween/ease"
)

// EventStore is the interface for optional ECS integration.
// When set on a Stage, load and reload outcomes are forwarded to it.
type EventStore interface {
	EmitEvent(event StageEvent)
}

// StageEventType identifies a kind of stage event.
type StageEventType uint8

const (
	EventLoaded       StageEventType = iota // a scene was loaded and compiled; the graph was swapped
	EventReloadFailed                       // a load or compile failed; the previous graph is still live
)

// StageEvent carries the outcome of a (re)load.
type StageEvent struct {
	Type       StageEventType
	Generation uint64 // incremented on every successful load
	Scene      *Scene // the live scene after the event (nil if none was ever loaded)
	Nodes      int
	Err        error // set for EventReloadFailed
}

// generations is implemented by provisioners that keep the textures of a
// live graph alive while a new one is compiled.
type generations interface {
	Begin()
	Commit()
	Rollback()
}

// preloader is implemented by provisioners that can decode ahead of Compile.
type preloader interface {
	Preload(ctx context.Context, paths []string) error
}

// Stage owns the active scene and its compiled render graph, and runs them
// as an ebiten.Game. A reload recompiles the whole graph and swaps it in
// between frames; if the reload fails the previous graph stays live.
//
// Stage is not safe for concurrent use. Reload, Update and Draw must be
// called from the game loop goroutine.
type Stage struct {
	path  string
	prov  TextureProvisioner
	diag  Diagnostics
	store EventStore
	debug bool

	scene      *Scene
	nodes      []Node
	generation uint64

	// ClearColor fills the screen before each frame.
	ClearColor Color

	// BatchMode selects how blits are submitted to the GPU.
	BatchMode BatchMode

	// ReloadKeys trigger Reload when pressed. Empty disables hot reload.
	ReloadKeys []ebiten.Key

	// ScreenshotKeys queue a screenshot when pressed.
	ScreenshotKeys []ebiten.Key

	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string

	// FadeIn is the duration in seconds of the fade-in played after every
	// successful (re)load. Zero disables it.
	FadeIn float32

	// FadeEase is the easing of the fade-in. Nil uses ease.OutQuad.
	FadeEase ease.TweenFunc

	// ShowStats draws FPS and graph statistics in the top-left corner.
	ShowStats bool

	fade *Fade

	target       *ImageTarget
	lastStats    FrameStats
	updateFunc   func() error
	windowed     bool
	windowTitle  string
	windowWidth  int
	windowHeight int

	screenshotQueue []string
	testRunner      *TestRunner
}

// NewStage creates a stage for the scene file at path. The scene is not
// loaded until Reload (or Run) is called. A nil provisioner uses a new
// ImageProvisioner.
func NewStage(path string, prov TextureProvisioner) *Stage {
	if prov == nil {
		prov = NewImageProvisioner()
	}
	return &Stage{
		path:           path,
		prov:           prov,
		ClearColor:     ColorBlack,
		ReloadKeys:     []ebiten.Key{ebiten.KeyF5},
		ScreenshotKeys: []ebiten.Key{ebiten.KeyF12},
		ScreenshotDir:  "screenshots",
	}
}

// Path returns the scene file the stage loads.
func (s *Stage) Path() string { return s.path }

// Scene returns the live scene, or nil before the first successful load.
func (s *Stage) Scene() *Scene { return s.scene }

// Nodes returns the live render graph. The returned slice MUST NOT be
// mutated.
func (s *Stage) Nodes() []Node { return s.nodes }

// Generation returns the number of successful loads so far.
func (s *Stage) Generation() uint64 { return s.generation }

// SetDiagnostics routes loader, compiler and stage messages to d.
func (s *Stage) SetDiagnostics(d Diagnostics) { s.diag = d }

// SetEventStore sets the optional ECS bridge.
func (s *Stage) SetEventStore(store EventStore) { s.store = store }

// SetUpdateFunc sets a callback run at the end of every Update.
func (s *Stage) SetUpdateFunc(fn func() error) { s.updateFunc = fn }

// SetDebugMode enables or disables debug mode. When enabled, info-level
// diagnostics are printed and per-frame timing stats are logged to stderr.
func (s *Stage) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

func (s *Stage) diagnostics() Diagnostics {
	if s.diag == nil {
		return defaultDiagnostics()
	}
	return s.diag
}

// Reload loads the scene file and compiles it from scratch. On success the
// new scene and graph replace the old ones; on failure the old ones stay
// live and the error is returned.
func (s *Stage) Reload(ctx context.Context) error {
	diag := s.diagnostics()
	start := time.Now()

	scene, err := Load(s.path, WithDiagnostics(diag))
	if err != nil {
		return s.fail(err)
	}

	gen, _ := s.prov.(generations)
	if gen != nil {
		gen.Begin()
	}
	if pre, ok := s.prov.(preloader); ok {
		if err := pre.Preload(ctx, ScenePaths(scene)); err != nil {
			if gen != nil {
				gen.Rollback()
			}
			return s.fail(err)
		}
	}
	nodes, err := Compile(scene, s.prov, WithCompileDiagnostics(diag))
	if err != nil {
		if gen != nil {
			gen.Rollback()
		}
		return s.fail(err)
	}
	if gen != nil {
		gen.Commit()
	}

	s.scene, s.nodes = scene, nodes
	s.generation++
	s.activate()

	diag.Logf(LevelInfo, "scene %q active (generation %d, %d nodes, %d blits per frame) in %v",
		scene.Title, s.generation, len(nodes), countBlits(nodes), time.Since(start))
	s.emit(StageEvent{Type: EventLoaded, Generation: s.generation, Scene: scene, Nodes: len(nodes)})
	return nil
}

func (s *Stage) fail(err error) error {
	s.diagnostics().Logf(LevelError, "reload of %s failed, keeping previous scene: %v", s.path, err)
	s.emit(StageEvent{
		Type:       EventReloadFailed,
		Generation: s.generation,
		Scene:      s.scene,
		Nodes:      len(s.nodes),
		Err:        err,
	})
	return err
}

func (s *Stage) emit(ev StageEvent) {
	if s.store != nil {
		s.store.EmitEvent(ev)
	}
}

// activate applies the live scene's window settings and starts the fade-in.
func (s *Stage) activate() {
	if s.FadeIn > 0 {
		s.fade = NewFade(s.FadeIn, s.FadeEase)
	} else {
		s.fade = nil
	}
	s.applyWindow()
}

func (s *Stage) applyWindow() {
	if !s.windowed || s.scene == nil {
		return
	}
	title := s.windowTitle
	if title == "" {
		title = s.scene.Title
	}
	ebiten.SetWindowTitle(title)
	if s.windowWidth > 0 && s.windowHeight > 0 {
		ebiten.SetWindowSize(s.windowWidth, s.windowHeight)
	} else {
		ebiten.SetWindowSize(s.scene.Width, s.scene.Height)
	}
}

// Update runs one frame of scripted steps and key handling, then advances
// the fade-in.
func (s *Stage) Update() error {
	if s.testRunner != nil {
		if err := s.testRunner.step(s); err != nil {
			return err
		}
	}
	for _, k := range s.ReloadKeys {
		if inpututil.IsKeyJustPressed(k) {
			// A failed reload is already reported and keeps the old graph;
			// it must not stop the frame loop.
			_ = s.Reload(context.Background())
			break
		}
	}
	for _, k := range s.ScreenshotKeys {
		if inpututil.IsKeyJustPressed(k) {
			s.Screenshot("stage")
			break
		}
	}

	s.advanceFade(float32(1.0 / float64(ebiten.TPS())))

	if s.updateFunc != nil {
		return s.updateFunc()
	}
	return nil
}

func (s *Stage) advanceFade(dt float32) {
	if s.fade.Update(dt) {
		s.fade = nil
	}
}

// Draw clears the screen and replays the live render graph onto it.
func (s *Stage) Draw(screen *ebiten.Image) {
	screen.Fill(s.ClearColor.toRGBA())

	if s.target == nil {
		s.target = NewImageTarget(screen, s.BatchMode)
	} else {
		s.target.Reset(screen)
	}
	s.target.mode = s.BatchMode
	s.target.ColorScale.Reset()
	if a := s.fade.Alpha(); a < 1 {
		s.target.ColorScale.ScaleAlpha(a)
	}

	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	s.lastStats = RenderFrame(s.target, s.nodes)

	if s.debug {
		s.debugLog(debugStats{
			frame:     s.lastStats,
			drawCalls: s.target.DrawCalls(),
			drawTime:  time.Since(t0),
		})
	}

	if s.ShowStats {
		s.drawStats(screen)
	}

	s.flushScreenshots(screen)
}

// Layout returns the live scene's size, or the outside size before the
// first load.
func (s *Stage) Layout(outsideWidth, outsideHeight int) (int, int) {
	if s.scene == nil {
		return outsideWidth, outsideHeight
	}
	return s.scene.Width, s.scene.Height
}
