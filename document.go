package tableau

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scene descriptors are decoded into a generic tree first so that every
// entry can be validated (and skipped) on its own. JSON and YAML share the
// same tree shape: map[string]any, []any, string, bool and numbers.

// decodeDocument decodes data as YAML when path has a .yaml/.yml extension
// and as JSON otherwise. The root must be a mapping.
func decodeDocument(path string, data []byte) (map[string]any, error) {
	var root any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&root); err != nil {
			return nil, err
		}
		if dec.More() {
			return nil, fmt.Errorf("trailing data after document")
		}
	}
	m, ok := root.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("document root is %s, want an object", kindOf(root))
	}
	return m, nil
}

// asString returns v as a string.
func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// asInt returns v as an int if it is an integral number that fits.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) || n < math.MinInt || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return asInt(i)
	}
	return 0, false
}

// asIntPair returns v as exactly two integers.
func asIntPair(v any) (int, int, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) != 2 {
		return 0, 0, false
	}
	a, ok := asInt(arr[0])
	if !ok {
		return 0, 0, false
	}
	b, ok := asInt(arr[1])
	if !ok {
		return 0, 0, false
	}
	return a, b, true
}

// asArray returns v as a list. A missing (nil) value is an empty list.
func asArray(v any) ([]any, bool) {
	if v == nil {
		return nil, true
	}
	arr, ok := v.([]any)
	return arr, ok
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "an object"
	case []any:
		return "an array"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	default:
		if _, ok := asInt(v); ok {
			return "an integer"
		}
		return "a number"
	}
}
