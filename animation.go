package tableau

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Fade animates an opacity from 0 to 1. Call Update(dt) each frame and
// read Alpha. A nil *Fade is finished and fully opaque.
//
// There is no global animation manager; the Stage updates its own fade.
type Fade struct {
	tween *gween.Tween
	alpha float32
	done  bool
}

// NewFade creates a fade lasting duration seconds using the easing function.
// A nil fn uses ease.OutQuad. A non-positive duration is finished at once.
func NewFade(duration float32, fn ease.TweenFunc) *Fade {
	if duration <= 0 {
		return &Fade{alpha: 1, done: true}
	}
	if fn == nil {
		fn = ease.OutQuad
	}
	return &Fade{tween: gween.New(0, 1, duration, fn)}
}

// Update advances the fade by dt seconds and reports whether it finished.
func (f *Fade) Update(dt float32) bool {
	if f == nil || f.done {
		return true
	}
	v, finished := f.tween.Update(dt)
	f.alpha = v
	if finished {
		f.alpha = 1
		f.done = true
	}
	return f.done
}

// Alpha returns the current opacity in [0, 1].
func (f *Fade) Alpha() float32 {
	if f == nil {
		return 1
	}
	return min(max(f.alpha, 0), 1)
}

// Done reports whether the fade has finished.
func (f *Fade) Done() bool {
	return f == nil || f.done
}
