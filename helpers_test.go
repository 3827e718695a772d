package tableau

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// --- Fixtures shared by the package tests ---

// fakeHandle is a TextureHandle with a fixed size.
type fakeHandle struct {
	path string
	w, h int
}

func (h *fakeHandle) Width() int  { return h.w }
func (h *fakeHandle) Height() int { return h.h }

// fakeProvisioner hands out fakeHandles by path and records every call.
type fakeProvisioner struct {
	sizes map[string][2]int
	fail  map[string]error
	calls []string
}

func newFakeProvisioner() *fakeProvisioner {
	return &fakeProvisioner{
		sizes: make(map[string][2]int),
		fail:  make(map[string]error),
	}
}

func (p *fakeProvisioner) add(path string, w, h int) *fakeProvisioner {
	p.sizes[path] = [2]int{w, h}
	return p
}

func (p *fakeProvisioner) ProvisionTexture(path string) (TextureHandle, error) {
	p.calls = append(p.calls, path)
	if err, ok := p.fail[path]; ok {
		return nil, err
	}
	sz, ok := p.sizes[path]
	if !ok {
		return nil, &ResourceUnavailableError{Path: path, Err: os.ErrNotExist}
	}
	return &fakeHandle{path: path, w: sz[0], h: sz[1]}, nil
}

// blit is one recorded RenderTarget call.
type blit struct {
	tex       TextureHandle
	clip, dst Rect
}

type recordingTarget struct {
	blits   []blit
	flushes int
}

func (t *recordingTarget) Blit(tex TextureHandle, clip, dst Rect) {
	t.blits = append(t.blits, blit{tex, clip, dst})
}

func (t *recordingTarget) Flush() { t.flushes++ }

// diagEntry is one recorded diagnostic.
type diagEntry struct {
	level Level
	msg   string
}

type recordingDiagnostics struct {
	entries []diagEntry
}

func (d *recordingDiagnostics) Logf(level Level, format string, args ...any) {
	d.entries = append(d.entries, diagEntry{level, fmt.Sprintf(format, args...)})
}

func (d *recordingDiagnostics) count(level Level) int {
	n := 0
	for _, e := range d.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

// has reports whether a message at level contains every substring.
func (d *recordingDiagnostics) has(level Level, subs ...string) bool {
	for _, e := range d.entries {
		if e.level != level {
			continue
		}
		match := true
		for _, s := range subs {
			if !strings.Contains(e.msg, s) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func (d *recordingDiagnostics) dump() string {
	var b strings.Builder
	for _, e := range d.entries {
		fmt.Fprintf(&b, "\n  %s: %s", e.level, e.msg)
	}
	return b.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeTestPNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}
