package tableau

import (
	"errors"
	"reflect"
	"slices"
	"testing"
)

func obj(id string, x, y int, comps ...Component) Object {
	return Object{ID: id, X: x, Y: y, Components: comps}
}

func ref(id string) TextureRef { return TextureRef{TextureID: id} }

// graphScene has two textures, one spritesheet and objects referencing
// each of them, plus an unused texture.
func graphScene() *Scene {
	return &Scene{
		Title: "g", Width: 320, Height: 240,
		Textures: []Texture{
			{ID: "bg", Path: "bg.png"},
			{ID: "unused", Path: "unused.png"},
			{ID: "hero", Path: "hero.png"},
		},
		Spritesheets: []Spritesheet{{
			ID:        "sheet1",
			ImagePath: "sheet1.png",
			Regions: []Region{
				{Name: "regionA", X: 10, Y: 20, Width: 30, Height: 40},
				{Name: "regionB", X: 0, Y: 0, Width: 8, Height: 8},
			},
		}},
		Objects: []Object{
			obj("sky", 0, 0, ref("bg"), Repeat{X: 3, Y: 2}),
			obj("hero", 50, 60, ref("hero")),
			obj("a", 5, 6, ref("sheet1:regionA")),
			obj("hero2", 70, 80, ref("hero")),
			obj("b", 7, 8, ref("sheet1:regionB")),
			obj("marker", 1, 1),
		},
	}
}

func graphProvisioner() *fakeProvisioner {
	return newFakeProvisioner().
		add("bg.png", 64, 32).
		add("unused.png", 16, 16).
		add("hero.png", 24, 48).
		add("sheet1.png", 128, 128)
}

func compileOK(t *testing.T, s *Scene, p TextureProvisioner) ([]Node, *recordingDiagnostics) {
	t.Helper()
	diag := &recordingDiagnostics{}
	nodes, err := Compile(s, p, WithCompileDiagnostics(diag))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return nodes, diag
}

func resources(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i := range nodes {
		out[i] = nodes[i].Resource
	}
	return out
}

func TestCompile_NodeOrderSkipsUnusedResources(t *testing.T) {
	nodes, diag := compileOK(t, graphScene(), graphProvisioner())
	want := []string{"bg", "hero", "sheet1"}
	if got := resources(nodes); !slices.Equal(got, want) {
		t.Errorf("nodes = %v, want %v", got, want)
	}
	if diag.count(LevelWarn) != 0 || diag.count(LevelError) != 0 {
		t.Errorf("unexpected diagnostics:%s", diag.dump())
	}
}

func TestCompile_ProvisionsEveryDeclaredResource(t *testing.T) {
	p := graphProvisioner()
	compileOK(t, graphScene(), p)
	want := []string{"bg.png", "unused.png", "hero.png", "sheet1.png"}
	if !slices.Equal(p.calls, want) {
		t.Errorf("provisioned %v, want %v", p.calls, want)
	}
}

func TestCompile_PlainTextureDraws(t *testing.T) {
	nodes, _ := compileOK(t, graphScene(), graphProvisioner())
	hero := nodes[1]
	if hero.Width != 24 || hero.Height != 48 {
		t.Errorf("hero size = %dx%d", hero.Width, hero.Height)
	}
	want := []SimpleDraw{
		{Dst: Rect{50, 60, 24, 48}, Clip: Rect{0, 0, 24, 48}},
		{Dst: Rect{70, 80, 24, 48}, Clip: Rect{0, 0, 24, 48}},
	}
	if !reflect.DeepEqual(hero.Simple, want) {
		t.Errorf("hero draws = %+v, want %+v", hero.Simple, want)
	}
	if len(hero.Repeating) != 0 {
		t.Errorf("hero has %d repeating draws", len(hero.Repeating))
	}
}

func TestCompile_RepeatingDraw(t *testing.T) {
	nodes, _ := compileOK(t, graphScene(), graphProvisioner())
	bg := nodes[0]
	if len(bg.Simple) != 0 || len(bg.Repeating) != 1 {
		t.Fatalf("bg draws = %d simple, %d repeating", len(bg.Simple), len(bg.Repeating))
	}
	rd := bg.Repeating[0]
	if rd.RepeatX != 3 || rd.RepeatY != 2 {
		t.Errorf("repeat = %dx%d", rd.RepeatX, rd.RepeatY)
	}
	if rd.Dst != (Rect{0, 0, 64, 32}) || rd.Clip != (Rect{0, 0, 64, 32}) {
		t.Errorf("draw = %+v", rd.SimpleDraw)
	}
}

func TestCompile_SpritesheetRegionDraw(t *testing.T) {
	nodes, _ := compileOK(t, graphScene(), graphProvisioner())
	sheet := nodes[2]
	want := []SimpleDraw{
		{Dst: Rect{5, 6, 30, 40}, Clip: Rect{10, 20, 30, 40}},
		{Dst: Rect{7, 8, 8, 8}, Clip: Rect{0, 0, 8, 8}},
	}
	if !reflect.DeepEqual(sheet.Simple, want) {
		t.Errorf("sheet draws = %+v, want %+v", sheet.Simple, want)
	}
}

func TestCompile_Idempotent(t *testing.T) {
	s := graphScene()
	p := graphProvisioner()
	first, _ := compileOK(t, s, p)
	second, _ := compileOK(t, s, p)

	if len(first) != len(second) {
		t.Fatalf("node count %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.Resource != b.Resource || a.Width != b.Width || a.Height != b.Height {
			t.Errorf("node %d: %s %dx%d vs %s %dx%d", i, a.Resource, a.Width, a.Height, b.Resource, b.Width, b.Height)
		}
		if !reflect.DeepEqual(a.Simple, b.Simple) || !reflect.DeepEqual(a.Repeating, b.Repeating) {
			t.Errorf("node %d draw lists differ", i)
		}
	}
	if &first[0] == &second[0] {
		t.Error("Compile must return a fresh slice")
	}
}

func TestCompile_DoesNotMutateScene(t *testing.T) {
	s := graphScene()
	before := graphScene()
	compileOK(t, s, graphProvisioner())
	if !reflect.DeepEqual(s, before) {
		t.Error("Compile mutated the scene")
	}
}

func TestCompile_MissingRegionWarnsOnce(t *testing.T) {
	s := graphScene()
	s.Objects = append(s.Objects, obj("ghost", 0, 0, ref("sheet1:missing")))

	nodes, diag := compileOK(t, s, graphProvisioner())
	if n := diag.count(LevelWarn); n != 1 {
		t.Fatalf("got %d warnings, want 1:%s", n, diag.dump())
	}
	if !diag.has(LevelWarn, `"ghost"`, `"missing"`) {
		t.Errorf("warning should name the object and region:%s", diag.dump())
	}
	if got := resources(nodes); !slices.Equal(got, []string{"bg", "hero", "sheet1"}) {
		t.Errorf("nodes = %v", got)
	}
	if len(nodes[2].Simple) != 2 {
		t.Errorf("other sheet draws affected: %d", len(nodes[2].Simple))
	}
}

func TestCompile_UnresolvedReferenceWarns(t *testing.T) {
	s := graphScene()
	s.Objects = append(s.Objects,
		obj("typo", 0, 0, ref("heroo")),
		obj("nosheet", 0, 0, ref("sheet2:regionA")),
	)
	_, diag := compileOK(t, s, graphProvisioner())
	if n := diag.count(LevelWarn); n != 2 {
		t.Fatalf("got %d warnings, want 2:%s", n, diag.dump())
	}
	if !diag.has(LevelWarn, `"typo"`, `"heroo"`) || !diag.has(LevelWarn, `"nosheet"`) {
		t.Errorf("missing warnings:%s", diag.dump())
	}
}

func TestCompile_PlainMatchIsExact(t *testing.T) {
	// A texture whose id contains a colon is matched by its full id and
	// also by the prefix rule of a sheet with the leading id.
	s := &Scene{
		Textures:     []Texture{{ID: "sheet1:regionA", Path: "odd.png"}},
		Spritesheets: graphScene().Spritesheets,
		Objects:      []Object{obj("o", 1, 2, ref("sheet1:regionA"))},
	}
	p := graphProvisioner().add("odd.png", 4, 4)
	nodes, _ := compileOK(t, s, p)
	if got := resources(nodes); !slices.Equal(got, []string{"sheet1:regionA", "sheet1"}) {
		t.Errorf("nodes = %v", got)
	}
}

func TestCompile_SpritesheetIgnoresRepeat(t *testing.T) {
	s := graphScene()
	s.Objects = []Object{obj("tiled", 3, 4, ref("sheet1:regionB"), Repeat{X: 5, Y: 5})}
	nodes, diag := compileOK(t, s, graphProvisioner())
	if len(nodes) != 1 || len(nodes[0].Simple) != 1 || len(nodes[0].Repeating) != 0 {
		t.Fatalf("nodes = %+v", nodes)
	}
	if !diag.has(LevelInfo, `"tiled"`, "repeat") {
		t.Errorf("expected an info note about the ignored repeat:%s", diag.dump())
	}
}

func TestCompile_RegionOutsideImageSkipped(t *testing.T) {
	s := graphScene()
	s.Spritesheets[0].Regions = append(s.Spritesheets[0].Regions,
		Region{Name: "edge", X: 120, Y: 120, Width: 16, Height: 16})
	s.Objects = []Object{obj("e", 0, 0, ref("sheet1:edge"))}
	nodes, diag := compileOK(t, s, graphProvisioner())
	if len(nodes) != 0 {
		t.Errorf("nodes = %v, want none", resources(nodes))
	}
	if !diag.has(LevelWarn, `"edge"`, "outside") {
		t.Errorf("missing warning:%s", diag.dump())
	}
}

func TestCompile_ProvisioningFailureIsFatal(t *testing.T) {
	s := graphScene()

	t.Run("missing file", func(t *testing.T) {
		p := graphProvisioner()
		delete(p.sizes, "unused.png")
		nodes, err := Compile(s, p, WithCompileDiagnostics(DiscardDiagnostics))
		if nodes != nil {
			t.Error("expected nil nodes")
		}
		var ru *ResourceUnavailableError
		if !errors.As(err, &ru) || ru.Path != "unused.png" {
			t.Errorf("err = %v, want ResourceUnavailableError for unused.png", err)
		}
	})

	t.Run("plain error is wrapped", func(t *testing.T) {
		p := graphProvisioner()
		boom := errors.New("context lost")
		p.fail["sheet1.png"] = boom
		diag := &recordingDiagnostics{}
		_, err := Compile(s, p, WithCompileDiagnostics(diag))
		var ru *ResourceUnavailableError
		if !errors.As(err, &ru) || ru.Path != "sheet1.png" {
			t.Errorf("err = %v, want ResourceUnavailableError for sheet1.png", err)
		}
		if !errors.Is(err, boom) {
			t.Error("err should wrap the provisioner's error")
		}
		if diag.count(LevelError) != 1 {
			t.Errorf("expected one error diagnostic:%s", diag.dump())
		}
	})
}

func TestCompile_ReloadReplacesNodes(t *testing.T) {
	p := graphProvisioner()
	before, _ := compileOK(t, graphScene(), p)

	next := graphScene()
	next.Objects = []Object{obj("hero", 1, 1, ref("hero"))}
	after, _ := compileOK(t, next, p)

	if got := resources(after); !slices.Equal(got, []string{"hero"}) {
		t.Errorf("after reload nodes = %v, want [hero]", got)
	}
	if len(after[0].Simple) != 1 {
		t.Errorf("hero draws = %d, want 1", len(after[0].Simple))
	}
	if got := resources(before); !slices.Equal(got, []string{"bg", "hero", "sheet1"}) {
		t.Errorf("previous graph changed: %v", got)
	}
}

func TestCompile_FromLoadedScene(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tiles.xml", tilesXML)
	path := writeFile(t, dir, "scene.json", fullSceneJSON)
	s, err := Load(path, WithDiagnostics(DiscardDiagnostics))
	if err != nil {
		t.Fatal(err)
	}

	p := newFakeProvisioner().
		add(s.Textures[0].Path, 32, 32).
		add(s.Textures[1].Path, 8, 8).
		add(s.Spritesheets[0].ImagePath, 32, 16)
	nodes, _ := compileOK(t, s, p)
	if got := resources(nodes); !slices.Equal(got, []string{"bg", "tiles"}) {
		t.Fatalf("nodes = %v", got)
	}
	if nodes[1].Simple[0].Dst != (Rect{10, 200, 16, 16}) {
		t.Errorf("grass dst = %+v", nodes[1].Simple[0].Dst)
	}
}

func TestRepeatingDrawTiles(t *testing.T) {
	d := RepeatingDraw{
		SimpleDraw: SimpleDraw{Dst: Rect{10, 20, 4, 3}, Clip: Rect{0, 0, 4, 3}},
		RepeatX:    3,
		RepeatY:    2,
	}
	var got []Rect
	for r := range d.Tiles() {
		got = append(got, r)
	}
	want := []Rect{
		{10, 20, 4, 3}, {14, 20, 4, 3}, {18, 20, 4, 3},
		{10, 23, 4, 3}, {14, 23, 4, 3}, {18, 23, 4, 3},
	}
	if !slices.Equal(got, want) {
		t.Errorf("tiles = %v, want %v", got, want)
	}

	n := 0
	for range d.Tiles() {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("early break yielded %d", n)
	}
}
