package tableau

import (
	"errors"
	"fmt"
)

// ErrMissingBaseImage is matched by errors.Is for any *MissingBaseImageError.
var ErrMissingBaseImage = errors.New("tableau: atlas has no base image")

// SceneLoadError reports a fatal problem with the scene document itself:
// unreadable file, unparsable content, or a missing/malformed top-level
// field. Field is empty when the whole document is at fault.
type SceneLoadError struct {
	Path  string
	Field string
	Err   error
}

func (e *SceneLoadError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("tableau: scene %s: field %q: %v", e.Path, e.Field, e.Err)
	}
	return fmt.Sprintf("tableau: scene %s: %v", e.Path, e.Err)
}

func (e *SceneLoadError) Unwrap() error { return e.Err }

// AtlasLoadError reports that an atlas descriptor could not be opened or
// parsed as a document.
type AtlasLoadError struct {
	Path string
	Err  error
}

func (e *AtlasLoadError) Error() string {
	return fmt.Sprintf("tableau: atlas %s: %v", e.Path, e.Err)
}

func (e *AtlasLoadError) Unwrap() error { return e.Err }

// MissingBaseImageError reports an atlas root element without imagePath.
type MissingBaseImageError struct {
	Path string
}

func (e *MissingBaseImageError) Error() string {
	return fmt.Sprintf("tableau: atlas %s: root element has no imagePath attribute", e.Path)
}

func (e *MissingBaseImageError) Is(target error) bool { return target == ErrMissingBaseImage }

// MalformedRegionError reports a region element with a missing or
// non-numeric attribute. Region is empty when the name itself is missing.
type MalformedRegionError struct {
	Path   string
	Region string
	Field  string
}

func (e *MalformedRegionError) Error() string {
	if e.Region == "" {
		return fmt.Sprintf("tableau: atlas %s: region has missing or malformed %q", e.Path, e.Field)
	}
	return fmt.Sprintf("tableau: atlas %s: region %q has missing or malformed %q", e.Path, e.Region, e.Field)
}

// ResourceUnavailableError reports a texture that could not be decoded or
// uploaded.
type ResourceUnavailableError struct {
	Path string
	Err  error
}

func (e *ResourceUnavailableError) Error() string {
	return fmt.Sprintf("tableau: texture %s unavailable: %v", e.Path, e.Err)
}

func (e *ResourceUnavailableError) Unwrap() error { return e.Err }
