package pipeline

import "fmt"

// Schema describes the state record a graph threads through its nodes: the
// declared field names, how to default-construct a state, and how to
// rebuild one wholesale from a map returned by a node.
type Schema interface {
	// Fields returns the declared field names in declaration order.
	Fields() []string

	// New returns a default-constructed state with every field unset.
	New() State

	// Rebuild constructs a state from the given field map. Keys that are
	// not declared fields are a configuration error.
	Rebuild(fields map[string]any) (State, error)
}

// State is the structured record owned by a single run. Nodes read and
// write its fields as the graph executes; the schema that created the state
// decides which fields exist.
type State interface {
	// Get returns the value of the named field.
	Get(field string) (any, error)

	// Set writes the value of the named field.
	Set(field string, value any) error

	// Snapshot returns every field as a copied map, safe for the caller to
	// hold or modify.
	Snapshot() map[string]any
}

// MapSchema is the reflection-free schema returned by NewSchema. Field
// names are declared once at construction and every state it produces is
// backed by a plain map.
type MapSchema struct {
	fields []string
	known  map[string]struct{}
}

var _ Schema = (*MapSchema)(nil)

// NewSchema declares a state schema with the given field names. Duplicate
// names collapse to their first occurrence.
func NewSchema(fields ...string) *MapSchema {
	schema := &MapSchema{
		fields: make([]string, 0, len(fields)),
		known:  make(map[string]struct{}, len(fields)),
	}
	for _, field := range fields {
		if _, declared := schema.known[field]; declared {
			continue
		}
		schema.fields = append(schema.fields, field)
		schema.known[field] = struct{}{}
	}
	return schema
}

// Fields returns the declared field names in declaration order.
func (schema *MapSchema) Fields() []string {
	fields := make([]string, len(schema.fields))
	copy(fields, schema.fields)
	return fields
}

// New returns a state with every declared field set to nil.
func (schema *MapSchema) New() State {
	values := make(map[string]any, len(schema.fields))
	for _, field := range schema.fields {
		values[field] = nil
	}
	return &mapState{schema: schema, values: values}
}

// Rebuild constructs a state from the given field map. Unknown keys fail
// with ErrUnknownField; missing declared fields default to nil.
func (schema *MapSchema) Rebuild(fields map[string]any) (State, error) {
	for field := range fields {
		if _, declared := schema.known[field]; !declared {
			return nil, fmt.Errorf("rebuild state: field %q: %w", field, ErrUnknownField)
		}
	}

	state := schema.New().(*mapState)
	for field, value := range fields {
		state.values[field] = value
	}
	return state, nil
}

// mapState is the map-backed State produced by MapSchema.
type mapState struct {
	schema *MapSchema
	values map[string]any
}

var _ State = (*mapState)(nil)

func (state *mapState) Get(field string) (any, error) {
	if _, declared := state.schema.known[field]; !declared {
		return nil, fmt.Errorf("field %q: %w", field, ErrUnknownField)
	}
	return state.values[field], nil
}

func (state *mapState) Set(field string, value any) error {
	if _, declared := state.schema.known[field]; !declared {
		return fmt.Errorf("field %q: %w", field, ErrUnknownField)
	}
	state.values[field] = value
	return nil
}

func (state *mapState) Snapshot() map[string]any {
	snapshot := make(map[string]any, len(state.values))
	for field, value := range state.values {
		snapshot[field] = value
	}
	return snapshot
}
