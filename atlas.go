package tableau

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Region describes one named sub-rectangle of a spritesheet's base image.
type Region struct {
	Name          string
	X, Y          int
	Width, Height int
}

// Rect returns the region's rectangle on the base image.
func (r Region) Rect() Rect {
	return Rect{r.X, r.Y, r.Width, r.Height}
}

// Atlas is a parsed texture-atlas descriptor: one base image and its
// regions in document order.
type Atlas struct {
	ImagePath string
	Regions   []Region
}

// Region returns the first region with the given name.
func (a *Atlas) Region(name string) (Region, bool) {
	return findRegion(a.Regions, name)
}

func findRegion(regions []Region, name string) (Region, bool) {
	for _, r := range regions {
		if r.Name == name {
			return r, true
		}
	}
	return Region{}, false
}

// LoadAtlasFile parses the atlas descriptor at path. The returned image
// path is resolved relative to the descriptor's directory.
func LoadAtlasFile(path string) (*Atlas, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &AtlasLoadError{Path: path, Err: err}
	}
	defer f.Close()
	return parseAtlas(f, path, filepath.Dir(path))
}

// ParseAtlas parses an atlas descriptor from r. baseDir is joined with the
// root element's imagePath attribute.
//
// The descriptor is a single root element with an imagePath attribute whose
// child elements each carry name, x, y, width and height:
//
//	<TextureAtlas imagePath="sheet.png">
//	    <SubTexture name="ship" x="0" y="0" width="99" height="75"/>
//	</TextureAtlas>
func ParseAtlas(r io.Reader, baseDir string) (*Atlas, error) {
	return parseAtlas(r, "<reader>", baseDir)
}

func parseAtlas(r io.Reader, path, baseDir string) (*Atlas, error) {
	dec := xml.NewDecoder(r)

	var (
		atlas    *Atlas
		regions  []Region
		depth    int
		rootDone bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &AtlasLoadError{Path: path, Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch {
			case depth == 1 && rootDone:
				return nil, &AtlasLoadError{Path: path, Err: fmt.Errorf("more than one root element")}
			case depth == 1:
				raw, ok := attr(t, "imagePath")
				if !ok || raw == "" {
					return nil, &MissingBaseImageError{Path: path}
				}
				atlas = &Atlas{ImagePath: filepath.Join(baseDir, raw)}
			case depth == 2:
				region, err := parseRegion(t, path)
				if err != nil {
					return nil, err
				}
				regions = append(regions, region)
			}
		case xml.EndElement:
			depth--
			if depth == 0 {
				rootDone = true
			}
		}
	}

	if atlas == nil {
		return nil, &AtlasLoadError{Path: path, Err: fmt.Errorf("document has no root element")}
	}
	atlas.Regions = regions
	return atlas, nil
}

// regionFields lists the integer attributes every region carries, in the
// order they are checked.
var regionFields = [...]string{"x", "y", "width", "height"}

func parseRegion(el xml.StartElement, path string) (Region, error) {
	name, ok := attr(el, "name")
	if !ok || name == "" {
		return Region{}, &MalformedRegionError{Path: path, Field: "name"}
	}

	var vals [len(regionFields)]int
	for i, field := range regionFields {
		raw, ok := attr(el, field)
		if !ok {
			return Region{}, &MalformedRegionError{Path: path, Region: name, Field: field}
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return Region{}, &MalformedRegionError{Path: path, Region: name, Field: field}
		}
		vals[i] = v
	}

	return Region{Name: name, X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

func attr(el xml.StartElement, name string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
