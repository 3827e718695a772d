package tableau

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// RenderTexture is a persistent offscreen canvas that a compiled render
// graph can be replayed onto. It is owned by the caller and is not recycled
// between frames.
//
// Texture returns a handle to the canvas, so a baked graph can be fed back
// into Compile through a ProvisionerFunc and drawn as a single texture.
type RenderTexture struct {
	image  *ebiten.Image
	w, h   int
	target *ImageTarget
}

// NewRenderTexture creates a persistent offscreen canvas of the given size.
func NewRenderTexture(w, h int) *RenderTexture {
	return &RenderTexture{
		image: ebiten.NewImage(w, h),
		w:     w,
		h:     h,
	}
}

// Image returns the underlying *ebiten.Image for direct manipulation.
func (rt *RenderTexture) Image() *ebiten.Image {
	return rt.image
}

// Width returns the texture width in pixels.
func (rt *RenderTexture) Width() int {
	return rt.w
}

// Height returns the texture height in pixels.
func (rt *RenderTexture) Height() int {
	return rt.h
}

// Texture returns a handle to the canvas usable wherever a TextureHandle
// from ImageProvisioner is.
func (rt *RenderTexture) Texture(label string) *ImageTexture {
	return &ImageTexture{Image: rt.image, Path: label}
}

// Clear fills the texture with transparent black.
func (rt *RenderTexture) Clear() {
	rt.image.Clear()
}

// Fill fills the entire texture with the given color.
func (rt *RenderTexture) Fill(c Color) {
	rt.image.Fill(c.toRGBA())
}

// Render replays nodes onto the canvas on top of its current contents.
func (rt *RenderTexture) Render(nodes []Node, mode BatchMode) FrameStats {
	if rt.target == nil {
		rt.target = NewImageTarget(rt.image, mode)
	} else {
		rt.target.Reset(rt.image)
		rt.target.mode = mode
	}
	return RenderFrame(rt.target, nodes)
}

// DrawCalls returns the number of GPU draw calls issued by the last Render.
func (rt *RenderTexture) DrawCalls() int {
	if rt.target == nil {
		return 0
	}
	return rt.target.DrawCalls()
}

// Resize deallocates the old image and creates a new one at the given dimensions.
func (rt *RenderTexture) Resize(width, height int) {
	if rt.image != nil {
		rt.image.Deallocate()
	}
	rt.image = ebiten.NewImage(width, height)
	rt.w = width
	rt.h = height
}

// Dispose deallocates the underlying image. The RenderTexture should not be
// used after calling Dispose.
func (rt *RenderTexture) Dispose() {
	if rt.image != nil {
		rt.image.Deallocate()
		rt.image = nil
	}
}
