package tableau

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// BatchMode selects how ImageTarget submits blits.
type BatchMode uint8

const (
	// BatchCoalesced merges consecutive blits from the same texture into a
	// single DrawTriangles32 call.
	BatchCoalesced BatchMode = iota
	// BatchImmediate issues one DrawImage per blit.
	BatchImmediate
)

// ImageTarget is a RenderTarget that draws onto an ebiten image. Textures
// must be *ImageTexture values. Blits are never reordered: coalescing only
// merges runs of consecutive blits that share a texture.
type ImageTarget struct {
	dst  *ebiten.Image
	mode BatchMode

	// ColorScale multiplies every blit. The zero value draws unmodified.
	ColorScale ebiten.ColorScale

	op    ebiten.DrawImageOptions
	run   *ebiten.Image
	verts []ebiten.Vertex
	inds  []uint32

	drawCalls int
}

// NewImageTarget returns a target drawing onto dst.
func NewImageTarget(dst *ebiten.Image, mode BatchMode) *ImageTarget {
	return &ImageTarget{dst: dst, mode: mode}
}

// Reset points the target at a new destination image for the next frame,
// keeping its scratch buffers.
func (t *ImageTarget) Reset(dst *ebiten.Image) {
	t.dst = dst
	t.run = nil
	t.verts = t.verts[:0]
	t.inds = t.inds[:0]
	t.drawCalls = 0
}

// DrawCalls returns the number of GPU draw calls issued since the last Reset.
func (t *ImageTarget) DrawCalls() int {
	return t.drawCalls
}

// Blit draws clip from tex to dst. tex must be an *ImageTexture.
func (t *ImageTarget) Blit(tex TextureHandle, clip, dst Rect) {
	it, ok := tex.(*ImageTexture)
	if !ok || it.Image == nil || clip.Width <= 0 || clip.Height <= 0 {
		return
	}

	if t.mode == BatchImmediate {
		t.drawImage(it.Image, clip, dst)
		return
	}

	if t.run != it.Image {
		t.Flush()
		t.run = it.Image
	}
	t.appendQuad(clip, dst)
}

// drawImage draws one blit with DrawImage, scaling the clip to the
// destination size.
func (t *ImageTarget) drawImage(img *ebiten.Image, clip, dst Rect) {
	sub := img.SubImage(clip.Image()).(*ebiten.Image)

	t.op.GeoM.Reset()
	if dst.Width != clip.Width || dst.Height != clip.Height {
		t.op.GeoM.Scale(float64(dst.Width)/float64(clip.Width), float64(dst.Height)/float64(clip.Height))
	}
	t.op.GeoM.Translate(float64(dst.X), float64(dst.Y))
	t.op.ColorScale = t.ColorScale

	t.dst.DrawImage(sub, &t.op)
	t.drawCalls++
}

// appendQuad appends 4 vertices and 6 indices for one blit.
func (t *ImageTarget) appendQuad(clip, dst Rect) {
	// TL, TR, BL, BR
	dx := [4]float32{float32(dst.X), float32(dst.X + dst.Width), float32(dst.X), float32(dst.X + dst.Width)}
	dy := [4]float32{float32(dst.Y), float32(dst.Y), float32(dst.Y + dst.Height), float32(dst.Y + dst.Height)}
	sx := [4]float32{float32(clip.X), float32(clip.X + clip.Width), float32(clip.X), float32(clip.X + clip.Width)}
	sy := [4]float32{float32(clip.Y), float32(clip.Y), float32(clip.Y + clip.Height), float32(clip.Y + clip.Height)}

	cr, cg, cb, ca := t.ColorScale.R(), t.ColorScale.G(), t.ColorScale.B(), t.ColorScale.A()

	base := uint32(len(t.verts))
	for i := 0; i < 4; i++ {
		t.verts = append(t.verts, ebiten.Vertex{
			DstX:   dx[i],
			DstY:   dy[i],
			SrcX:   sx[i],
			SrcY:   sy[i],
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		})
	}

	// Two triangles: TL-TR-BL, TR-BR-BL
	t.inds = append(t.inds,
		base+0, base+1, base+2,
		base+1, base+3, base+2,
	)
}

// Flush submits any pending coalesced quads. RenderFrame calls it at the
// end of every frame.
func (t *ImageTarget) Flush() {
	if len(t.verts) == 0 || t.run == nil {
		t.verts = t.verts[:0]
		t.inds = t.inds[:0]
		return
	}

	var triOp ebiten.DrawTrianglesOptions
	triOp.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha

	t.dst.DrawTriangles32(t.verts, t.inds, t.run, &triOp)
	t.drawCalls++

	t.verts = t.verts[:0]
	t.inds = t.inds[:0]
}
