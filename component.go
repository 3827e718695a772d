package tableau

import "strings"

// ComponentKind identifies a component variant. An object holds at most one
// component of each kind.
type ComponentKind uint8

const (
	KindTextureRef ComponentKind = iota // "texture"
	KindRepeat                          // "texture_repeat"
)

// String returns the descriptor's type discriminator for k.
func (k ComponentKind) String() string {
	switch k {
	case KindTextureRef:
		return "texture"
	case KindRepeat:
		return "texture_repeat"
	default:
		return "unknown"
	}
}

// Component is an optional capability attached to an Object. The set of
// variants is closed: TextureRef and Repeat.
type Component interface {
	Kind() ComponentKind
	component()
}

// TextureRef references either a Texture by id or a spritesheet region by
// the composite key "<sheet>:<region>".
type TextureRef struct {
	TextureID string
}

func (TextureRef) Kind() ComponentKind { return KindTextureRef }
func (TextureRef) component()          {}

// Split splits a composite "<sheet>:<region>" key at the first colon.
// ok is false for plain texture ids.
func (t TextureRef) Split() (sheet, region string, ok bool) {
	return strings.Cut(t.TextureID, ":")
}

// Repeat turns the object's draw into a tiled draw of X columns by Y rows.
type Repeat struct {
	X, Y int
}

func (Repeat) Kind() ComponentKind { return KindRepeat }
func (Repeat) component()          {}

// Object is one placed entity in a scene.
type Object struct {
	ID         string
	X, Y       int
	Components []Component
}

// Component returns the object's component of the given kind.
func (o *Object) Component(kind ComponentKind) (Component, bool) {
	for _, c := range o.Components {
		if c.Kind() == kind {
			return c, true
		}
	}
	return nil, false
}

// TextureRef returns the object's texture reference, if any.
func (o *Object) TextureRef() (TextureRef, bool) {
	c, ok := o.Component(KindTextureRef)
	if !ok {
		return TextureRef{}, false
	}
	return c.(TextureRef), true
}

// Repeat returns the object's repeat component, if any.
func (o *Object) Repeat() (Repeat, bool) {
	c, ok := o.Component(KindRepeat)
	if !ok {
		return Repeat{}, false
	}
	return c.(Repeat), true
}

// attach adds c unless a component of the same kind is already present.
// It reports whether c was attached.
func (o *Object) attach(c Component) bool {
	if _, dup := o.Component(c.Kind()); dup {
		return false
	}
	o.Components = append(o.Components, c)
	return true
}
