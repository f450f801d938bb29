package quiz

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// definitionSchema is the JSON schema a fetched quiz definition must satisfy
// before it is handed to the grading engine.
var definitionSchema = map[string]any{
	"type":     "object",
	"required": []any{"questions"},
	"properties": map[string]any{
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"id", "type", "question"},
				"properties": map[string]any{
					"id":          map[string]any{"type": "string", "minLength": 1},
					"type":        map[string]any{"type": "string", "enum": []any{TypeMultipleSelect, TypeDragOrder}},
					"question":    map[string]any{"type": "string"},
					"explanation": map[string]any{"type": "string"},
					"options": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":     "object",
							"required": []any{"id", "text"},
							"properties": map[string]any{
								"id":      map[string]any{"type": "string", "minLength": 1},
								"text":    map[string]any{"type": "string"},
								"correct": map[string]any{"type": "boolean"},
							},
						},
					},
					"items": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":     "object",
							"required": []any{"id", "text"},
							"properties": map[string]any{
								"id":   map[string]any{"type": "string", "minLength": 1},
								"text": map[string]any{"type": "string"},
							},
						},
					},
					"correctOrder": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
			},
		},
		"passScore": map[string]any{
			"type":    "integer",
			"minimum": 0,
			"maximum": 100,
		},
	},
}

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	// The jsonschema library expects a parsed JSON value (any), not raw bytes.
	// Marshal then unmarshal to get a clean any representation.
	defBytes, err := json.Marshal(definitionSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema://quiz-definition.json", defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile("schema://quiz-definition.json")
})

// validateShape validates a parsed definition document against the schema.
func validateShape(parsed any) error {
	schema, err := compileSchema()
	if err != nil {
		return fmt.Errorf("compile quiz schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// validateDefinition enforces the constraints the schema cannot express:
// per-type required fields, unique ids, and correctOrder being a
// permutation of the item ids.
func validateDefinition(def *Definition) error {
	if len(def.Questions) == 0 {
		return fmt.Errorf("definition has no questions")
	}

	seen := make(map[string]bool, len(def.Questions))
	for _, q := range def.Questions {
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true

		switch q.Type {
		case TypeMultipleSelect:
			if len(q.Options) == 0 {
				return fmt.Errorf("question %q: multiple-select requires options", q.ID)
			}
			ids := make(map[string]bool, len(q.Options))
			for _, o := range q.Options {
				if ids[o.ID] {
					return fmt.Errorf("question %q: duplicate option id %q", q.ID, o.ID)
				}
				ids[o.ID] = true
			}
		case TypeDragOrder:
			if len(q.Items) == 0 {
				return fmt.Errorf("question %q: drag-order requires items", q.ID)
			}
			if len(q.CorrectOrder) != len(q.Items) {
				return fmt.Errorf("question %q: correctOrder length %d does not match %d items",
					q.ID, len(q.CorrectOrder), len(q.Items))
			}
			ids := make(map[string]bool, len(q.Items))
			for _, it := range q.Items {
				if ids[it.ID] {
					return fmt.Errorf("question %q: duplicate item id %q", q.ID, it.ID)
				}
				ids[it.ID] = true
			}
			for _, id := range q.CorrectOrder {
				if !ids[id] {
					return fmt.Errorf("question %q: correctOrder references unknown item %q", q.ID, id)
				}
				delete(ids, id)
			}
		default:
			return fmt.Errorf("question %q: unknown type %q", q.ID, q.Type)
		}
	}
	return nil
}
