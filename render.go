package tableau

// RenderTarget receives blits. Implementations must draw them in call order.
type RenderTarget interface {
	Blit(tex TextureHandle, clip, dst Rect)
}

// FrameStats counts the work done by one RenderFrame call.
type FrameStats struct {
	Nodes int
	Draws int
	Blits int
}

// RenderFrame replays nodes against target. Nodes are visited in order;
// within a node the simple draws come first, then the repeating draws, each
// in list order. A repeating draw is expanded into RepeatX*RepeatY blits by
// RepeatingDraw.Tiles. Nothing is resolved, validated, culled or reordered.
func RenderFrame(target RenderTarget, nodes []Node) FrameStats {
	var st FrameStats
	for i := range nodes {
		n := &nodes[i]
		st.Nodes++
		for _, d := range n.Simple {
			target.Blit(n.Texture, d.Clip, d.Dst)
			st.Draws++
			st.Blits++
		}
		for _, d := range n.Repeating {
			st.Draws++
			for dst := range d.Tiles() {
				target.Blit(n.Texture, d.Clip, dst)
				st.Blits++
			}
		}
	}
	if f, ok := target.(interface{ Flush() }); ok {
		f.Flush()
	}
	return st
}
