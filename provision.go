package tableau

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"runtime"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// TextureHandle is an opaque, uploaded texture. The core only reads its
// pixel size.
type TextureHandle interface {
	Width() int
	Height() int
}

// TextureProvisioner decodes an image file and uploads it to the active
// rendering context.
type TextureProvisioner interface {
	ProvisionTexture(path string) (TextureHandle, error)
}

// ProvisionerFunc adapts a plain function to TextureProvisioner.
type ProvisionerFunc func(path string) (TextureHandle, error)

// ProvisionTexture calls f(path).
func (f ProvisionerFunc) ProvisionTexture(path string) (TextureHandle, error) {
	return f(path)
}

// ImageTexture is the TextureHandle produced by ImageProvisioner.
type ImageTexture struct {
	Image *ebiten.Image
	Path  string
}

// Width returns the texture width in pixels.
func (t *ImageTexture) Width() int { return t.Image.Bounds().Dx() }

// Height returns the texture height in pixels.
func (t *ImageTexture) Height() int { return t.Image.Bounds().Dy() }

// ImageProvisioner loads image files into ebiten images. Textures are
// cached by path for one generation. Begin starts a new generation, which
// Commit makes live and Rollback throws away.
//
// ProvisionTexture must be called from the goroutine that owns the game
// loop. Preload may decode files on worker goroutines beforehand.
type ImageProvisioner struct {
	// Workers bounds the number of concurrent decodes in Preload.
	// Zero means runtime.NumCPU().
	Workers int

	mu      sync.Mutex
	decoded map[string]image.Image
	cache   map[string]*ImageTexture
	retired []*ImageTexture
}

// NewImageProvisioner creates an empty provisioner.
func NewImageProvisioner() *ImageProvisioner {
	return &ImageProvisioner{
		decoded: make(map[string]image.Image),
		cache:   make(map[string]*ImageTexture),
	}
}

// Preload decodes every path concurrently so that the subsequent
// ProvisionTexture calls only upload. The first decode failure cancels the
// rest and is returned as a *ResourceUnavailableError.
func (p *ImageProvisioner) Preload(ctx context.Context, paths []string) error {
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	seen := make(map[string]bool, len(paths))
	for _, path := range paths {
		if seen[path] || p.has(path) {
			continue
		}
		seen[path] = true

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := decodeImageFile(path)
			if err != nil {
				return &ResourceUnavailableError{Path: path, Err: err}
			}
			p.mu.Lock()
			p.decoded[path] = img
			p.mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func (p *ImageProvisioner) has(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, cached := p.cache[path]
	_, decoded := p.decoded[path]
	return cached || decoded
}

// ProvisionTexture returns the texture for path, decoding and uploading it
// on first use in the current generation.
func (p *ImageProvisioner) ProvisionTexture(path string) (TextureHandle, error) {
	p.mu.Lock()
	if t, ok := p.cache[path]; ok {
		p.mu.Unlock()
		return t, nil
	}
	img, ok := p.decoded[path]
	delete(p.decoded, path)
	p.mu.Unlock()

	if !ok {
		var err error
		img, err = decodeImageFile(path)
		if err != nil {
			return nil, &ResourceUnavailableError{Path: path, Err: err}
		}
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, &ResourceUnavailableError{Path: path, Err: fmt.Errorf("image is empty")}
	}

	t := &ImageTexture{Image: ebiten.NewImageFromImage(img), Path: path}
	p.mu.Lock()
	p.cache[path] = t
	p.mu.Unlock()
	return t, nil
}

// Begin starts a new generation. Textures of the current generation stay
// valid until Commit, so the previously compiled graph keeps drawing while a
// reload is in flight and after it fails.
func (p *ImageProvisioner) Begin() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.retired = p.retired[:0]
	for _, t := range p.cache {
		p.retired = append(p.retired, t)
	}
	p.cache = make(map[string]*ImageTexture)
	clear(p.decoded)
}

// Commit makes the generation started by Begin the live one and releases the
// textures of the previous generation.
func (p *ImageProvisioner) Commit() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, t := range p.retired {
		t.Image.Deallocate()
	}
	p.retired = p.retired[:0]
}

// Rollback discards the generation started by Begin and restores the
// previous one.
func (p *ImageProvisioner) Rollback() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, t := range p.cache {
		t.Image.Deallocate()
	}
	p.cache = make(map[string]*ImageTexture, len(p.retired))
	for _, t := range p.retired {
		p.cache[t.Path] = t
	}
	p.retired = p.retired[:0]
	clear(p.decoded)
}

func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

// ScenePaths returns the image path of every declared texture and
// spritesheet in compile order, without duplicates.
func ScenePaths(s *Scene) []string {
	paths := make([]string, 0, len(s.Textures)+len(s.Spritesheets))
	seen := make(map[string]bool, cap(paths))
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	for _, t := range s.Textures {
		add(t.Path)
	}
	for _, sh := range s.Spritesheets {
		add(sh.ImagePath)
	}
	return paths
}
