// Package tableau compiles declarative 2D scene files into a flat render
// graph and replays that graph every frame on [Ebitengine].
//
// A scene file lists image resources (plain textures and sprite sheets) and
// placed objects that reference them. [Load] reads the file, [Compile]
// resolves every reference once into a [Node] per resource with precomputed
// source clips and destination rectangles, and [RenderFrame] issues one blit
// per draw with no lookups at frame time.
//
// # Quick start
//
// The simplest way to show a scene is [Run], which loads it, opens a window
// and reloads the file when F5 is pressed:
//
//	stage := tableau.NewStage("level1.json", nil)
//	if err := tableau.Run(stage, tableau.RunConfig{ShowFPS: true}); err != nil {
//		log.Fatal(err)
//	}
//
// For full control, drive the pipeline yourself:
//
//	scene, err := tableau.Load("level1.json")
//	// ...
//	nodes, err := tableau.Compile(scene, provisioner)
//	// ... every frame:
//	tableau.RenderFrame(target, nodes)
//
// # Scene files
//
// Scene files are JSON, or YAML when the extension is .yaml or .yml:
//
//	{
//	  "id": "level1",
//	  "title": "Level 1",
//	  "width": 640,
//	  "height": 480,
//	  "textures":     [{"id": "bg", "path": "bg.png"}],
//	  "spritesheets": [{"id": "tiles", "path": "tiles.xml"}],
//	  "objects": [
//	    {"id": "sky", "position": [0, 0],
//	     "components": [{"type": "texture", "texture_id": "bg"},
//	                    {"type": "texture_repeat", "repeat": [4, 1]}]},
//	    {"id": "grass", "position": [0, 448],
//	     "components": [{"type": "texture", "texture_id": "tiles:grass"}]}
//	  ]
//	}
//
// Resource paths are relative to the scene file. An object references a
// texture by its id, or a sprite sheet region as "sheet:region". A bad
// entry is reported through [Diagnostics] and skipped; only a malformed
// header or an unreadable sprite sheet fails the load.
//
// # Sprite sheets
//
// A sprite sheet descriptor is an XML atlas whose root names the image and
// whose children name the regions:
//
//	<TextureAtlas imagePath="tiles.png">
//	  <SubTexture name="grass" x="0" y="0" width="32" height="32"/>
//	</TextureAtlas>
//
// # Hot reload
//
// A [Stage] recompiles the whole graph on every reload and swaps it in
// between frames. If the reload fails the previous graph stays on screen.
// Reload outcomes can be forwarded to a [Donburi] world with the adapter in
// tableau/ecs.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package tableau
