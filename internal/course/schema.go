package course

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

var objectiveSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":           map[string]any{"type": "string", "minLength": 1},
		"altKeys":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"nodeId":       map[string]any{"type": "string"},
		"kubitId":      map[string]any{"type": "string"},
		"masteryScore": map[string]any{"type": "number"},
	},
	"required": []any{"id"},
}

var completionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"masteryScore":        map[string]any{"type": "number"},
		"masteryPercentage":   map[string]any{"type": "number"},
		"minMasteredCount":    map[string]any{"type": "integer"},
		"requireAllContent":   map[string]any{"type": "boolean"},
		"requireAllExercises": map[string]any{"type": "boolean"},
	},
	"additionalProperties": false,
}

func unitProperties() map[string]any {
	return map[string]any{
		"id":                 map[string]any{"type": "string", "minLength": 1},
		"title":              map[string]any{"type": "string"},
		"order":              map[string]any{"type": "integer"},
		"prerequisites":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"objectives":         map[string]any{"type": "array", "items": objectiveSchema},
		"completionCriteria": completionSchema,
		"moveOn":             map[string]any{"type": "string"},
		"masteryScore":       map[string]any{"type": "number"},
	}
}

// flatCourseSchema describes a flat course document.
var flatCourseSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":      map[string]any{"type": "string", "minLength": 1},
		"title":   map[string]any{"type": "string"},
		"version": map[string]any{"type": "string"},
		"units": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":       "object",
				"properties": unitProperties(),
				"required":   []any{"id"},
			},
		},
	},
	"required": []any{"id", "units"},
}

// treeCourseSchema describes a hierarchical course document.
var treeCourseSchema = map[string]any{
	"$defs": map[string]any{
		"node": map[string]any{
			"type": "object",
			"properties": mergeProps(unitProperties(), map[string]any{
				"kind":     map[string]any{"enum": []any{"course", "block", "unit"}},
				"version":  map[string]any{"type": "string"},
				"children": map[string]any{"type": "array", "items": map[string]any{"$ref": "#/$defs/node"}},
			}),
			"required": []any{"id"},
		},
	},
	"$ref": "#/$defs/node",
}

func mergeProps(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

var (
	compileOnce  sync.Once
	flatCompiled *jsonschema.Schema
	treeCompiled *jsonschema.Schema
	compileErr   error
)

func compiledSchemas() (flat, tree *jsonschema.Schema, err error) {
	compileOnce.Do(func() {
		flatCompiled, compileErr = compileSchema("course-flat", flatCourseSchema)
		if compileErr != nil {
			return
		}
		treeCompiled, compileErr = compileSchema("course-tree", treeCourseSchema)
	})
	return flatCompiled, treeCompiled, compileErr
}

func compileSchema(name string, def map[string]any) (*jsonschema.Schema, error) {
	// The compiler expects a plain decoded JSON value.
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, errors.Wrap(err, "marshal schema definition")
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, errors.Wrap(err, "parse schema definition")
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, errors.Wrap(err, "add resource")
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, errors.Wrapf(err, "compile %s", name)
	}
	return compiled, nil
}
