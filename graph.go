package tableau

import (
	"errors"
	"iter"
	"strings"
)

// SimpleDraw is one blit: Clip on the node's texture is copied to Dst.
type SimpleDraw struct {
	Dst  Rect
	Clip Rect
}

// RepeatingDraw is a SimpleDraw replicated across a RepeatX by RepeatY grid
// anchored at Dst's top-left corner. Each cell is Dst's size.
type RepeatingDraw struct {
	SimpleDraw
	RepeatX, RepeatY int
}

// Tiles yields the destination of every tile in replay order: rows top to
// bottom, and left to right within a row.
func (d RepeatingDraw) Tiles() iter.Seq[Rect] {
	return func(yield func(Rect) bool) {
		for ty := 0; ty < d.RepeatY; ty++ {
			for tx := 0; tx < d.RepeatX; tx++ {
				if !yield(d.Dst.Offset(tx*d.Dst.Width, ty*d.Dst.Height)) {
					return
				}
			}
		}
	}
}

// Node is a render-ready bundle of one texture and the draws that use it.
// Every draw's clip lies within [0,Width) x [0,Height).
type Node struct {
	// Resource is the id of the texture or spritesheet the node was built
	// from.
	Resource string

	Texture       TextureHandle
	Width, Height int

	Simple    []SimpleDraw
	Repeating []RepeatingDraw
}

// DrawCount returns the number of draw commands (not blits) in the node.
func (n *Node) DrawCount() int {
	return len(n.Simple) + len(n.Repeating)
}

// CompileOption configures Compile.
type CompileOption func(*compiler)

// WithCompileDiagnostics routes the compiler's warnings to d.
func WithCompileDiagnostics(d Diagnostics) CompileOption {
	return func(c *compiler) { c.diag = d }
}

type compiler struct {
	scene *Scene
	prov  TextureProvisioner
	diag  Diagnostics

	refs    []objectRef
	matched []bool
}

// objectRef is the draw-affecting state of one object, gathered from its
// components.
type objectRef struct {
	textureID string
	hasRef    bool
	repeat    Repeat
	hasRepeat bool
}

func refOf(o *Object) objectRef {
	var r objectRef
	for _, c := range o.Components {
		switch c := c.(type) {
		case TextureRef:
			r.textureID, r.hasRef = c.TextureID, true
		case Repeat:
			r.repeat, r.hasRepeat = c, true
		}
	}
	return r
}

// Compile resolves every object's texture reference against the scene's
// textures and spritesheets and returns one Node per resource that has at
// least one draw. Nodes for textures come first, then spritesheets, each in
// declaration order; draws within a node follow object declaration order.
//
// Compile never mutates the scene and always returns a fresh slice. It
// fails only when a texture cannot be provisioned. Unresolvable references
// are reported to diagnostics and skipped.
func Compile(scene *Scene, p TextureProvisioner, opts ...CompileOption) ([]Node, error) {
	c := &compiler{scene: scene, prov: p}
	for _, opt := range opts {
		opt(c)
	}
	if c.diag == nil {
		c.diag = defaultDiagnostics()
	}

	c.refs = make([]objectRef, len(scene.Objects))
	c.matched = make([]bool, len(scene.Objects))
	for i := range scene.Objects {
		c.refs[i] = refOf(&scene.Objects[i])
	}

	var nodes []Node
	for i := range scene.Textures {
		node, err := c.texture(&scene.Textures[i])
		if err != nil {
			return nil, err
		}
		if node.DrawCount() > 0 {
			nodes = append(nodes, node)
		}
	}
	for i := range scene.Spritesheets {
		node, err := c.spritesheet(&scene.Spritesheets[i])
		if err != nil {
			return nil, err
		}
		if node.DrawCount() > 0 {
			nodes = append(nodes, node)
		}
	}

	for i, ref := range c.refs {
		if ref.hasRef && !c.matched[i] {
			c.diag.Logf(LevelWarn, "object %q: texture %q matches no texture or spritesheet; not drawn",
				scene.Objects[i].ID, ref.textureID)
		}
	}

	c.diag.Logf(LevelInfo, "compiled %d nodes", len(nodes))
	return nodes, nil
}

func (c *compiler) provision(path string) (TextureHandle, error) {
	c.diag.Logf(LevelInfo, "provisioning %s", path)
	h, err := c.prov.ProvisionTexture(path)
	if err != nil {
		c.diag.Logf(LevelError, "failed to provision %s: %v", path, err)
		var ru *ResourceUnavailableError
		if errors.As(err, &ru) {
			return nil, err
		}
		return nil, &ResourceUnavailableError{Path: path, Err: err}
	}
	return h, nil
}

func (c *compiler) texture(t *Texture) (Node, error) {
	h, err := c.provision(t.Path)
	if err != nil {
		return Node{}, err
	}
	node := Node{Resource: t.ID, Texture: h, Width: h.Width(), Height: h.Height()}
	full := Rect{0, 0, node.Width, node.Height}

	for i, ref := range c.refs {
		if !ref.hasRef || ref.textureID != t.ID {
			continue
		}
		c.matched[i] = true
		obj := &c.scene.Objects[i]
		d := SimpleDraw{Dst: Rect{obj.X, obj.Y, node.Width, node.Height}, Clip: full}
		if ref.hasRepeat {
			node.Repeating = append(node.Repeating, RepeatingDraw{
				SimpleDraw: d,
				RepeatX:    ref.repeat.X,
				RepeatY:    ref.repeat.Y,
			})
		} else {
			node.Simple = append(node.Simple, d)
		}
	}
	return node, nil
}

func (c *compiler) spritesheet(s *Spritesheet) (Node, error) {
	h, err := c.provision(s.ImagePath)
	if err != nil {
		return Node{}, err
	}
	node := Node{Resource: s.ID, Texture: h, Width: h.Width(), Height: h.Height()}
	prefix := s.ID + ":"

	for i, ref := range c.refs {
		if !ref.hasRef {
			continue
		}
		name, ok := strings.CutPrefix(ref.textureID, prefix)
		if !ok {
			continue
		}
		c.matched[i] = true
		obj := &c.scene.Objects[i]

		region, ok := s.Region(name)
		if !ok {
			c.diag.Logf(LevelWarn, "object %q: texture %q has no region %q in spritesheet %q; not drawn",
				obj.ID, ref.textureID, name, s.ID)
			continue
		}
		if !region.Rect().Within(node.Width, node.Height) {
			c.diag.Logf(LevelWarn, "object %q: region %q %v lies outside spritesheet %q (%dx%d); not drawn",
				obj.ID, name, region.Rect(), s.ID, node.Width, node.Height)
			continue
		}
		if ref.hasRepeat {
			c.diag.Logf(LevelInfo, "object %q: repeat is not supported for spritesheet regions; drawing once", obj.ID)
		}

		node.Simple = append(node.Simple, SimpleDraw{
			Dst:  Rect{obj.X, obj.Y, region.Width, region.Height},
			Clip: region.Rect(),
		})
	}
	return node, nil
}
