package tableau

import (
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// debugStats holds per-frame timing and draw-call metrics.
// Only populated when Stage.debug is true.
type debugStats struct {
	frame     FrameStats
	drawCalls int
	drawTime  time.Duration
}

// debugLog prints timing and draw-call stats to stderr.
func (s *Stage) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[tableau] draw: %v | nodes: %d | draws: %d | blits: %d | draw calls: %d\n",
		stats.drawTime, stats.frame.Nodes, stats.frame.Draws, stats.frame.Blits, stats.drawCalls)
}

// statsBackdrop sits behind the overlay text for readability.
var statsBackdrop = color.RGBA{0, 0, 0, 128}

// drawStats prints FPS/TPS and the last frame's graph statistics in the
// top-left corner of screen.
func (s *Stage) drawStats(screen *ebiten.Image) {
	msg := fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nnodes: %d  blits: %d\ngeneration: %d",
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		s.lastStats.Nodes, s.lastStats.Blits, s.generation)

	backdrop := screen.SubImage(Rect{0, 0, 160, 64}.Image()).(*ebiten.Image)
	backdrop.Fill(statsBackdrop)
	ebitenutil.DebugPrint(screen, msg)
}

// countBlits returns the number of blits RenderFrame issues for nodes,
// without issuing them.
func countBlits(nodes []Node) int {
	count := 0
	for i := range nodes {
		count += len(nodes[i].Simple)
		for _, d := range nodes[i].Repeating {
			count += d.RepeatX * d.RepeatY
		}
	}
	return count
}
