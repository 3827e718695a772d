package tableau

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Scene is the loaded, validated description of what to render. It is
// created by one Load call and replaced wholesale on reload.
type Scene struct {
	ID     string
	Title  string
	Width  int
	Height int

	Textures     []Texture
	Spritesheets []Spritesheet
	Objects      []Object

	// Path is the descriptor file the scene was loaded from.
	Path string
}

// Texture declares one flat image resource.
type Texture struct {
	ID   string
	Path string
}

// Spritesheet declares one atlas: a base image plus named regions.
// ImagePath comes from the atlas descriptor, not the scene file.
type Spritesheet struct {
	ID             string
	DescriptorPath string
	ImagePath      string
	Regions        []Region
}

// Region returns the first region with the given name.
func (s *Spritesheet) Region(name string) (Region, bool) {
	return findRegion(s.Regions, name)
}

// LoadOption configures Load.
type LoadOption func(*loader)

// WithDiagnostics routes the loader's warnings to d.
func WithDiagnostics(d Diagnostics) LoadOption {
	return func(l *loader) { l.diag = d }
}

type loader struct {
	path string
	dir  string
	diag Diagnostics
}

// Load reads and validates the scene descriptor at path. It fails only when
// the document itself, its top-level geometry, or a declared atlas cannot be
// read. Bad texture and object entries are skipped with a warning so a scene
// with some bad entries still loads the good ones.
func Load(path string, opts ...LoadOption) (*Scene, error) {
	l := &loader{path: path, dir: filepath.Dir(path)}
	for _, opt := range opts {
		opt(l)
	}
	if l.diag == nil {
		l.diag = defaultDiagnostics()
	}

	l.diag.Logf(LevelInfo, "loading scene from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SceneLoadError{Path: path, Err: err}
	}
	root, err := decodeDocument(path, data)
	if err != nil {
		return nil, &SceneLoadError{Path: path, Err: err}
	}

	s := &Scene{Path: path}
	if err := l.header(root, s); err != nil {
		return nil, err
	}
	if err := l.textures(root["textures"], s); err != nil {
		return nil, err
	}
	if err := l.spritesheets(root["spritesheets"], s); err != nil {
		return nil, err
	}
	if err := l.objects(root["objects"], s); err != nil {
		return nil, err
	}

	l.diag.Logf(LevelInfo, "scene %q: %d textures, %d spritesheets, %d objects",
		s.Title, len(s.Textures), len(s.Spritesheets), len(s.Objects))
	return s, nil
}

func (l *loader) fieldErr(field string, err error) error {
	return &SceneLoadError{Path: l.path, Field: field, Err: err}
}

// header reads the top-level scalars. The scene is unusable without its
// title and geometry, so any problem here is fatal.
func (l *loader) header(root map[string]any, s *Scene) error {
	if v, ok := root["id"]; ok && v != nil {
		id, ok := asString(v)
		if !ok {
			return l.fieldErr("id", fmt.Errorf("is %s, want a string", kindOf(v)))
		}
		s.ID = id
	}

	title, ok := asString(root["title"])
	if !ok {
		return l.fieldErr("title", missingOr(root["title"], "a string"))
	}
	s.Title = title

	for _, f := range [...]struct {
		name string
		dst  *int
	}{{"width", &s.Width}, {"height", &s.Height}} {
		v, ok := asInt(root[f.name])
		if !ok || v <= 0 {
			return l.fieldErr(f.name, missingOr(root[f.name], "a positive integer"))
		}
		*f.dst = v
	}
	return nil
}

func missingOr(v any, want string) error {
	if v == nil {
		return errors.New("missing")
	}
	return fmt.Errorf("is %s, want %s", kindOf(v), want)
}

func (l *loader) textures(v any, s *Scene) error {
	entries, ok := asArray(v)
	if !ok {
		l.diag.Logf(LevelWarn, "textures is %s, want an array; ignoring", kindOf(v))
		return nil
	}
	for i, e := range entries {
		id, path, ok := l.resourceEntry("texture", i, e)
		if !ok {
			continue
		}
		s.Textures = append(s.Textures, Texture{ID: id, Path: path})
	}
	return nil
}

func (l *loader) spritesheets(v any, s *Scene) error {
	entries, ok := asArray(v)
	if !ok {
		l.diag.Logf(LevelWarn, "spritesheets is %s, want an array; ignoring", kindOf(v))
		return nil
	}
	for i, e := range entries {
		id, path, ok := l.resourceEntry("spritesheet", i, e)
		if !ok {
			continue
		}

		l.diag.Logf(LevelInfo, "processing texture atlas %s", path)
		atlas, err := LoadAtlasFile(path)
		if err != nil {
			// A scene that references an unreadable atlas cannot render
			// correctly, so this is not soft-failed.
			return l.fieldErr(fmt.Sprintf("spritesheets[%d]", i), err)
		}
		l.diag.Logf(LevelInfo, "atlas %q: %d regions", id, len(atlas.Regions))

		s.Spritesheets = append(s.Spritesheets, Spritesheet{
			ID:             id,
			DescriptorPath: path,
			ImagePath:      atlas.ImagePath,
			Regions:        atlas.Regions,
		})
	}
	return nil
}

// resourceEntry reads an {id, path} entry, resolving path against the scene
// directory. Malformed entries are reported and skipped.
func (l *loader) resourceEntry(kind string, i int, e any) (id, path string, ok bool) {
	m, ok := asObject(e)
	if !ok {
		l.diag.Logf(LevelWarn, "%s #%d: entry is %s, want an object; skipping", kind, i, kindOf(e))
		return "", "", false
	}
	id, _ = asString(m["id"])
	if id == "" {
		l.diag.Logf(LevelWarn, "%s #%d: missing or empty id; skipping", kind, i)
		return "", "", false
	}
	raw, _ := asString(m["path"])
	if raw == "" {
		l.diag.Logf(LevelWarn, "%s %q: missing or empty path; skipping", kind, id)
		return "", "", false
	}
	return id, filepath.Join(l.dir, raw), true
}

func (l *loader) objects(v any, s *Scene) error {
	entries, ok := asArray(v)
	if !ok {
		l.diag.Logf(LevelWarn, "objects is %s, want an array; ignoring", kindOf(v))
		return nil
	}
	for i, e := range entries {
		obj, ok := l.object(i, e)
		if !ok {
			continue
		}
		s.Objects = append(s.Objects, obj)
	}
	return nil
}

func (l *loader) object(i int, e any) (Object, bool) {
	m, ok := asObject(e)
	if !ok {
		l.diag.Logf(LevelWarn, "object #%d: entry is %s, want an object; skipping", i, kindOf(e))
		return Object{}, false
	}

	id, _ := asString(m["id"])
	if id == "" {
		l.diag.Logf(LevelWarn, "object #%d: missing or empty id; skipping", i)
		return Object{}, false
	}

	x, y, ok := asIntPair(m["position"])
	if !ok {
		l.diag.Logf(LevelWarn, "object %q: position must be a pair of integers; skipping", id)
		return Object{}, false
	}

	obj := Object{ID: id, X: x, Y: y}

	comps, ok := asArray(m["components"])
	if !ok {
		l.diag.Logf(LevelWarn, "object %q: components is %s, want an array; ignoring", id, kindOf(m["components"]))
		return obj, true
	}
	for j, c := range comps {
		comp, ok := l.component(id, j, c)
		if !ok {
			continue
		}
		if !obj.attach(comp) {
			l.diag.Logf(LevelWarn, "object %q: duplicate %s component #%d ignored", id, comp.Kind(), j)
		}
	}
	return obj, true
}

func (l *loader) component(objID string, j int, c any) (Component, bool) {
	m, ok := asObject(c)
	if !ok {
		l.diag.Logf(LevelWarn, "object %q: component #%d is %s, want an object; ignoring", objID, j, kindOf(c))
		return nil, false
	}

	typ, _ := asString(m["type"])
	switch typ {
	case KindTextureRef.String():
		id, ok := asString(m["texture_id"])
		if !ok || id == "" {
			l.diag.Logf(LevelWarn, "object %q: texture component #%d needs a string texture_id; ignoring", objID, j)
			return nil, false
		}
		return TextureRef{TextureID: id}, true

	case KindRepeat.String():
		rx, ry, ok := asIntPair(m["repeat"])
		if !ok || rx < 1 || ry < 1 {
			l.diag.Logf(LevelWarn, "object %q: texture_repeat component #%d needs repeat as two integers >= 1; ignoring", objID, j)
			return nil, false
		}
		return Repeat{X: rx, Y: ry}, true

	default:
		l.diag.Logf(LevelWarn, "object %q: unknown component type %q ignored", objID, typ)
		return nil, false
	}
}
