// tiles10k compiles a generated YAML scene with 10,000 sprite sheet objects
// plus a tiled background and replays it every frame. A stress test for the
// render graph and the coalesced batcher.
//
// Press B to switch between coalesced and immediate batching and compare
// the FPS. Press F5 to recompile the scene from disk.
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/phanxgames/tableau"
	"gopkg.in/yaml.v3"
)

const (
	screenW  = 1280
	screenH  = 720
	count    = 10_000
	tileSize = 16
	sheetW   = 8
	sheetH   = 8
)

type sceneFile struct {
	ID           string        `yaml:"id"`
	Title        string        `yaml:"title"`
	Width        int           `yaml:"width"`
	Height       int           `yaml:"height"`
	Textures     []resource    `yaml:"textures"`
	Spritesheets []resource    `yaml:"spritesheets"`
	Objects      []sceneObject `yaml:"objects"`
}

type resource struct {
	ID   string `yaml:"id"`
	Path string `yaml:"path"`
}

type sceneObject struct {
	ID         string           `yaml:"id"`
	Position   []int            `yaml:"position,flow"`
	Components []map[string]any `yaml:"components"`
}

func main() {
	dir, err := os.MkdirTemp("", "tableau-tiles10k-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	scenePath, err := generate(dir)
	if err != nil {
		log.Fatalf("generate scene: %v", err)
	}

	stage := tableau.NewStage(scenePath, nil)
	stage.SetUpdateFunc(func() error {
		if inpututil.IsKeyJustPressed(ebiten.KeyB) {
			if stage.BatchMode == tableau.BatchCoalesced {
				stage.BatchMode = tableau.BatchImmediate
				ebiten.SetWindowTitle("Tableau — 10k Tiles (immediate)")
			} else {
				stage.BatchMode = tableau.BatchCoalesced
				ebiten.SetWindowTitle("Tableau — 10k Tiles (coalesced)")
			}
		}
		return nil
	})

	if err := tableau.Run(stage, tableau.RunConfig{
		Title:   "Tableau — 10k Tiles (coalesced)",
		ShowFPS: true,
	}); err != nil {
		log.Fatal(err)
	}
}

func generate(dir string) (string, error) {
	sheet := image.NewRGBA(image.Rect(0, 0, sheetW*tileSize, sheetH*tileSize))
	var xml strings.Builder
	xml.WriteString(`<TextureAtlas imagePath="sheet.png">` + "\n")
	for i := 0; i < sheetW*sheetH; i++ {
		x, y := (i%sheetW)*tileSize, (i/sheetW)*tileSize
		c := color.RGBA{
			R: uint8(64 + rand.IntN(192)),
			G: uint8(64 + rand.IntN(192)),
			B: uint8(64 + rand.IntN(192)),
			A: 255,
		}
		for py := y + 1; py < y+tileSize-1; py++ {
			for px := x + 1; px < x+tileSize-1; px++ {
				sheet.SetRGBA(px, py, c)
			}
		}
		fmt.Fprintf(&xml, "\t<SubTexture name=\"t%d\" x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\"/>\n",
			i, x, y, tileSize, tileSize)
	}
	xml.WriteString("</TextureAtlas>\n")

	dot := image.NewRGBA(image.Rect(0, 0, tileSize, tileSize))
	dot.SetRGBA(tileSize/2, tileSize/2, color.RGBA{R: 40, G: 40, B: 60, A: 255})

	if err := writePNG(filepath.Join(dir, "sheet.png"), sheet); err != nil {
		return "", err
	}
	if err := writePNG(filepath.Join(dir, "dot.png"), dot); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, "sheet.xml"), []byte(xml.String()), 0o644); err != nil {
		return "", err
	}

	scene := sceneFile{
		ID:           "tiles10k",
		Title:        "Tableau — 10k Tiles (coalesced)",
		Width:        screenW,
		Height:       screenH,
		Textures:     []resource{{ID: "dot", Path: "dot.png"}},
		Spritesheets: []resource{{ID: "sheet", Path: "sheet.xml"}},
	}
	scene.Objects = append(scene.Objects, sceneObject{
		ID:       "background",
		Position: []int{0, 0},
		Components: []map[string]any{
			{"type": "texture", "texture_id": "dot"},
			{"type": "texture_repeat", "repeat": []int{screenW / tileSize, screenH / tileSize}},
		},
	})
	for i := 0; i < count; i++ {
		scene.Objects = append(scene.Objects, sceneObject{
			ID:       fmt.Sprintf("tile%d", i),
			Position: []int{rand.IntN(screenW - tileSize), rand.IntN(screenH - tileSize)},
			Components: []map[string]any{
				{"type": "texture", "texture_id": fmt.Sprintf("sheet:t%d", rand.IntN(sheetW*sheetH))},
			},
		})
	}

	data, err := yaml.Marshal(&scene)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "scene.yaml")
	return path, os.WriteFile(path, data, 0o644)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
