package basket

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNotObject is returned when the top-level value of a basket is not an
	// object, so the request fields cannot be merged into it.
	ErrNotObject = errors.New("basket must be an object at the top level")

	// ErrEncoding is returned for input that is not valid UTF-8.
	ErrEncoding = errors.New("basket is not valid UTF-8")

	// ErrNonFinite is returned for YAML numbers such as .inf and .nan, which
	// have no JSON form.
	ErrNonFinite = errors.New("basket holds a non-finite number")
)

// Format is the serialization of a basket file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the decoder for a file name or object key. Anything that
// is not explicitly YAML is treated as JSON.
func FormatFor(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses raw basket bytes in the given format.
func Decode(data []byte, format Format) (Document, error) {
	if !utf8.Valid(data) {
		return nil, ErrEncoding
	}

	switch format {
	case FormatYAML:
		return decodeYAML(data)
	default:
		return decodeJSON(data)
	}
}

func decodeJSON(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	// Keep numbers as written so integer amounts are not turned into floats.
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid JSON: unexpected data after top-level value")
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return Document(obj), nil
}

func decodeYAML(data []byte) (Document, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	norm, err := normalizeYAML(v, "")
	if err != nil {
		return nil, err
	}
	obj, ok := norm.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return Document(obj), nil
}

// normalizeYAML rewrites maps with non-string keys into map[string]any so the
// result can be encoded as JSON. at is the path of v, used in errors.
func normalizeYAML(v any, at string) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			n, err := normalizeYAML(val, at+"."+k)
			if err != nil {
				return nil, err
			}
			t[k] = n
		}
		return t, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			key := fmt.Sprint(k)
			n, err := normalizeYAML(val, at+"."+key)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []any:
		for i, val := range t {
			n, err := normalizeYAML(val, fmt.Sprintf("%s[%d]", at, i))
			if err != nil {
				return nil, err
			}
			t[i] = n
		}
		return t, nil
	case float64:
		if math.IsInf(t, 0) || math.IsNaN(t) {
			return nil, fmt.Errorf("%w at %s", ErrNonFinite, strings.TrimPrefix(at, "."))
		}
		return t, nil
	default:
		return v, nil
	}
}
