// Package jsonschema generates JSON Schema documents from Go types via
// reflection. Tools use it to describe their input and output structures to
// LLM providers and MCP clients.
package jsonschema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Schema is a JSON Schema document. It covers the subset of the standard
// needed to describe tool arguments: object properties, required fields,
// arrays, enums, and $defs-based references for recursive types.
type Schema struct {
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Required    []string `json:"required,omitempty"`
	// Properties of an object type, each with its own schema
	Properties map[string]*Schema `json:"properties,omitempty"`
	// Items is the element schema for array types
	Items *Schema `json:"items,omitempty"`
	// AdditionalProperties is the value schema for map types
	AdditionalProperties any `json:"additionalProperties,omitempty"`
	// Enum lists the allowed values for the field
	Enum []any `json:"enum,omitempty"`
	// Ref points into Defs to break recursive type cycles
	Ref string `json:"$ref,omitempty"`
	// Defs holds reusable definitions referenced by Ref
	Defs map[string]*Schema `json:"$defs,omitempty"`
}

// For generates the schema for type T. Struct fields map to object
// properties using their json tags; a `jsonschema` tag refines the result
// with `description=...`, `enum=...` (repeatable), and `required` entries.
// Non-pointer fields without omitempty are required. Recursive struct types
// are emitted once under $defs and referenced from then on.
func For[T any]() (*Schema, error) {
	generator := &generator{
		visited: make(map[reflect.Type]string),
		defs:    make(map[string]*Schema),
	}

	schema, err := generator.typeSchema(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	if len(generator.defs) > 0 {
		schema.Defs = generator.defs
	}
	return schema, nil
}

type generator struct {
	visited map[reflect.Type]string
	defs    map[string]*Schema
}

func (g *generator) typeSchema(t reflect.Type) (*Schema, error) {
	switch t.Kind() {
	case reflect.Pointer:
		return g.typeSchema(t.Elem())

	case reflect.String:
		return &Schema{Type: "string"}, nil

	case reflect.Bool:
		return &Schema{Type: "boolean"}, nil

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}, nil

	case reflect.Slice, reflect.Array:
		items, err := g.typeSchema(t.Elem())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Items: items}, nil

	case reflect.Map:
		values, err := g.typeSchema(t.Elem())
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "object", AdditionalProperties: values}, nil

	case reflect.Struct:
		return g.structSchema(t)

	case reflect.Interface:
		// Opaque value, anything goes.
		return &Schema{}, nil

	default:
		return nil, fmt.Errorf("unsupported type kind %s", t.Kind())
	}
}

func (g *generator) structSchema(t reflect.Type) (*Schema, error) {
	// A type seen before is in (or being added to) defs; reference it.
	if defName, exists := g.visited[t]; exists {
		return &Schema{Ref: "#/$defs/" + defName}, nil
	}

	defName := defName(t)
	g.visited[t] = defName

	schema := &Schema{
		Type:       "object",
		Properties: make(map[string]*Schema),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		fieldName, omitEmpty, skip := jsonName(field)
		if skip {
			continue
		}

		fieldSchema, err := g.typeSchema(field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}

		requiredByTag, err := applyTag(field, fieldSchema)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}

		schema.Properties[fieldName] = fieldSchema
		if requiredByTag || (field.Type.Kind() != reflect.Pointer && !omitEmpty) {
			schema.Required = append(schema.Required, fieldName)
		}
	}

	// Only recursive types were referenced while we built this schema;
	// publish those under defs and hand back a reference. Everything else
	// inlines directly.
	if g.wasReferenced(t, schema) {
		g.defs[defName] = schema
		return &Schema{Ref: "#/$defs/" + defName}, nil
	}
	delete(g.visited, t)
	return schema, nil
}

// wasReferenced reports whether schema (or anything below it) contains a
// reference to t's definition, which happens exactly when t is recursive.
func (g *generator) wasReferenced(t reflect.Type, schema *Schema) bool {
	ref := "#/$defs/" + g.visited[t]
	var contains func(*Schema) bool
	contains = func(s *Schema) bool {
		if s == nil {
			return false
		}
		if s.Ref == ref {
			return true
		}
		if contains(s.Items) {
			return true
		}
		if nested, ok := s.AdditionalProperties.(*Schema); ok && contains(nested) {
			return true
		}
		for _, property := range s.Properties {
			if contains(property) {
				return true
			}
		}
		return false
	}
	return contains(schema)
}

// jsonName resolves the property name for a struct field from its json tag.
func jsonName(field reflect.StructField) (name string, omitEmpty bool, skip bool) {
	name = field.Name
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	if tag == "" {
		return name, false, false
	}
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		name = parts[0]
	}
	for _, option := range parts[1:] {
		if option == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

// applyTag parses the field's jsonschema tag into the schema. Supported
// entries: description=..., enum=... (repeatable, converted to the field's
// type), required.
func applyTag(field reflect.StructField, schema *Schema) (requiredByTag bool, err error) {
	tag := field.Tag.Get("jsonschema")
	if tag == "" {
		return false, nil
	}

	for _, item := range strings.Split(tag, ",") {
		key, value, hasValue := strings.Cut(item, "=")
		switch {
		case key == "required" && !hasValue:
			requiredByTag = true
		case key == "description" && hasValue:
			schema.Description = value
		case key == "enum" && hasValue:
			enumValue, err := convertEnum(field.Type, value)
			if err != nil {
				return false, err
			}
			schema.Enum = append(schema.Enum, enumValue)
		}
	}
	return requiredByTag, nil
}

func convertEnum(t reflect.Type, value string) (any, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return value, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("enum value %q is not an integer: %w", value, err)
		}
		return parsed, nil
	case reflect.Float32, reflect.Float64:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("enum value %q is not a number: %w", value, err)
		}
		return parsed, nil
	case reflect.Bool:
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("enum value %q is not a bool: %w", value, err)
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("enum tag unsupported for field type %s", t)
	}
}

func defName(t reflect.Type) string {
	if t.Name() != "" {
		return strings.ToLower(t.Name())
	}
	return "anonymousStruct"
}

// JSONString returns the schema as JSON, pretty-printed when indent is true.
func (s *Schema) JSONString(indent ...bool) (string, error) {
	var encoded []byte
	var err error
	if len(indent) > 0 && indent[0] {
		encoded, err = json.MarshalIndent(s, "", "  ")
	} else {
		encoded, err = json.Marshal(s)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}
	return string(encoded), nil
}

// String returns the compact JSON representation, or an error message if
// marshalling fails.
func (s *Schema) String() string {
	encoded, err := s.JSONString()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return encoded
}
