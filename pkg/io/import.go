package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stateflow/pkg/errors"
	"github.com/matzehuels/stateflow/pkg/model"
)

const schemaURL = "https://stateflow.dev/schemas/diagram.json"

// diagramSchema only checks what every importer relies on. Entity-level
// problems are reported by lint, not rejected here.
const diagramSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["id", "name"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "name": {"type": "string", "minLength": 1},
    "description": {"type": ["string", "null"]}
  }
}`

var collections = []string{"actors", "states", "flows", "conditions"}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(diagramSchema))
		if err != nil {
			schemaErr = fmt.Errorf("unmarshal diagram schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add diagram schema resource: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// invalidFormat is the single failure reported for a rejected document.
func invalidFormat(cause error) error {
	return errors.Wrap(errors.ErrCodeInvalidFormat, cause, "invalid diagram format (id, name are required)")
}

// Import parses a diagram document. Timestamps missing from the document
// are set to now.
func Import(data []byte, format Format, now time.Time) (*model.Diagram, error) {
	doc, err := decodeDocument(data, format)
	if err != nil {
		return nil, invalidFormat(err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "compile diagram schema")
	}
	if err := sch.Validate(doc); err != nil {
		return nil, invalidFormat(err)
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, invalidFormat(fmt.Errorf("document is %T, not an object", doc))
	}
	applyDefaults(obj, now)

	d, err := decodeDiagram(obj)
	if err != nil {
		return nil, invalidFormat(err)
	}
	d.CreatedAt = d.CreatedAt.UTC().Truncate(time.Millisecond)
	d.UpdatedAt = d.UpdatedAt.UTC().Truncate(time.Millisecond)
	d.Normalize()
	return d, nil
}

// ImportFile reads and imports the document at path, choosing the format
// from its extension.
func ImportFile(path string, now time.Time) (*model.Diagram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Import(data, DetectFormat(path), now)
}

// decodeDocument returns a JSON value tree suitable for schema validation.
// YAML documents are re-encoded as JSON first so that YAML-native values
// such as timestamps become plain strings.
func decodeDocument(data []byte, format Format) (any, error) {
	switch format {
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("convert yaml: %w", err)
		}
		data = b
	case FormatJSON:
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return v, nil
}

func applyDefaults(obj map[string]any, now time.Time) {
	for _, key := range collections {
		if _, ok := obj[key].([]any); !ok {
			obj[key] = []any{}
		}
	}
	for _, key := range []string{"createdAt", "updatedAt"} {
		if s, ok := obj[key].(string); !ok || s == "" {
			obj[key] = FormatTime(now)
		}
	}
	if _, ok := obj["description"].(string); !ok {
		delete(obj, "description")
	}
}

func decodeDiagram(obj map[string]any) (*model.Diagram, error) {
	var d model.Diagram
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &d,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			numberToScalarHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(obj); err != nil {
		return nil, err
	}
	return &d, nil
}

// numberToScalarHook turns json.Number into the Go scalar the target field
// expects.
func numberToScalarHook(from, to reflect.Type, data any) (any, error) {
	n, ok := data.(json.Number)
	if !ok {
		return data, nil
	}
	switch to.Kind() {
	case reflect.String:
		return n.String(), nil
	case reflect.Bool:
		f, err := n.Float64()
		return f != 0, err
	case reflect.Float32, reflect.Float64:
		return n.Float64()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return n.Int64()
	}
	return data, nil
}
