package mindmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/mindcanvas/pkg/errors"
)

// Format identifies a tree payload encoding.
type Format string

// Supported payload formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the payload format from a file extension.
// Unknown extensions default to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// treeSchema describes the accepted payload shape. It is deliberately loose
// about missing ids and text (Normalize fills those in) and strict about
// structure: children must be an array of nodes.
const treeSchema = `{
  "$schema": "http://json-schema.org/draft-04/schema#",
  "type": "object",
  "properties": {
    "id": {"type": "string"},
    "text": {"type": ["string", "null"]},
    "children": {
      "type": ["array", "null"],
      "items": {
        "anyOf": [{"$ref": "#"}, {"type": "null"}]
      }
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(treeSchema))
})

// ReadTreeFile reads and validates a tree from a JSON or YAML file.
func ReadTreeFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTree(f, FormatFromPath(path))
}

// ReadTree decodes and validates a tree payload.
// Structurally invalid payloads are rejected with INVALID_INPUT.
func ReadTree(r io.Reader, format Format) (*Node, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return UnmarshalTree(raw, format)
}

// UnmarshalTree is [ReadTree] for in-memory payloads.
func UnmarshalTree(data []byte, format Format) (*Node, error) {
	doc, err := toJSON(data, format)
	if err != nil {
		return nil, err
	}
	if err := validate(doc); err != nil {
		return nil, err
	}

	var root Node
	if err := json.Unmarshal(doc, &root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode tree")
	}
	return &root, nil
}

// toJSON converts a YAML payload to JSON so both formats share one schema.
func toJSON(data []byte, format Format) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return data, nil
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode yaml")
		}
		out, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "convert yaml")
		}
		return out, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported tree format: %s", format)
	}
}

func validate(doc []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "compile tree schema")
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode tree")
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return errors.New(errors.ErrCodeInvalidInput, "invalid tree: %s", strings.Join(msgs, "; "))
}

// MarshalTree encodes a tree as indented JSON.
func MarshalTree(root *Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteTree(root, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTree writes a tree as indented JSON.
func WriteTree(root *Node, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
