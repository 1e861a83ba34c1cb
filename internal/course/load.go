package course

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a course document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the document format from a file extension.
// Anything other than .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadFile reads and parses the course document at path.
func LoadFile(path string) (Course, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Course{}, errors.Wrapf(err, "read course file %s", path)
	}
	c, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return Course{}, errors.Wrapf(err, "parse course file %s", path)
	}
	return c, nil
}

// Parse decodes a course document. Both the flat shape ({id, units}) and
// the hierarchical shape ({id, children}) are accepted; trees are
// flattened before returning. The document is checked against its JSON
// schema before decoding.
func Parse(data []byte, format Format) (Course, error) {
	raw, err := normalizeJSON(data, format)
	if err != nil {
		return Course{}, err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Course{}, errors.Wrap(err, "invalid JSON")
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return Course{}, errors.New("course document must be an object")
	}

	flatSchema, treeSchema, err := compiledSchemas()
	if err != nil {
		return Course{}, errors.Wrap(err, "compile course schema")
	}

	if _, isTree := obj["children"]; isTree {
		if err := treeSchema.Validate(doc); err != nil {
			return Course{}, errors.Wrap(err, "course tree schema validation failed")
		}
		var root Node
		if err := json.Unmarshal(raw, &root); err != nil {
			return Course{}, errors.Wrap(err, "decode course tree")
		}
		return Flatten(root), nil
	}

	if err := flatSchema.Validate(doc); err != nil {
		return Course{}, errors.Wrap(err, "course schema validation failed")
	}
	var c Course
	if err := json.Unmarshal(raw, &c); err != nil {
		return Course{}, errors.Wrap(err, "decode course")
	}
	return c, nil
}

// ParseTree decodes a hierarchical course document without flattening it.
func ParseTree(data []byte, format Format) (Node, error) {
	raw, err := normalizeJSON(data, format)
	if err != nil {
		return Node{}, err
	}
	var root Node
	if err := json.Unmarshal(raw, &root); err != nil {
		return Node{}, errors.Wrap(err, "decode course tree")
	}
	return root, nil
}

// normalizeJSON converts YAML input to JSON so both formats share one
// decoding path, including the legacy objective key shim.
func normalizeJSON(data []byte, format Format) ([]byte, error) {
	if format != FormatYAML {
		return data, nil
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "invalid YAML")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "convert YAML to JSON")
	}
	return raw, nil
}
