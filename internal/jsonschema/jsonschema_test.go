package jsonschema

import (
	"strings"
	"testing"
)

type searchInput struct {
	Query      string   `json:"query" jsonschema:"description=The search query"`
	MaxResults int      `json:"max_results,omitempty"`
	Language   string   `json:"language" jsonschema:"enum=en,enum=it"`
	Boost      *float64 `json:"boost,omitempty"`
}

func TestFor_Struct(t *testing.T) {
	schema, err := For[searchInput]()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if schema.Type != "object" {
		t.Errorf("Expected object type, got %q", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Errorf("Expected 4 properties, got %d", len(schema.Properties))
	}

	query := schema.Properties["query"]
	if query == nil || query.Type != "string" {
		t.Fatalf("Expected string query property, got %+v", query)
	}
	if query.Description != "The search query" {
		t.Errorf("Expected description from tag, got %q", query.Description)
	}

	if got := schema.Properties["max_results"]; got == nil || got.Type != "integer" {
		t.Errorf("Expected integer max_results property, got %+v", got)
	}
	if got := schema.Properties["boost"]; got == nil || got.Type != "number" {
		t.Errorf("Expected number boost property, got %+v", got)
	}
}

func TestFor_RequiredFields(t *testing.T) {
	schema, err := For[searchInput]()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	required := strings.Join(schema.Required, ",")
	if !strings.Contains(required, "query") || !strings.Contains(required, "language") {
		t.Errorf("Expected non-pointer fields required, got %v", schema.Required)
	}
	if strings.Contains(required, "max_results") {
		t.Errorf("Expected omitempty field optional, got %v", schema.Required)
	}
	if strings.Contains(required, "boost") {
		t.Errorf("Expected pointer field optional, got %v", schema.Required)
	}
}

func TestFor_EnumConversion(t *testing.T) {
	type leveled struct {
		Name  string `json:"name"`
		Level int    `json:"level" jsonschema:"enum=1,enum=2,enum=3"`
	}

	schema, err := For[leveled]()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	level := schema.Properties["level"]
	if len(level.Enum) != 3 {
		t.Fatalf("Expected 3 enum values, got %v", level.Enum)
	}
	if level.Enum[0] != int64(1) {
		t.Errorf("Expected typed enum value int64(1), got %T %v", level.Enum[0], level.Enum[0])
	}
}

func TestFor_RequiredByTag(t *testing.T) {
	type withTag struct {
		Hint *string `json:"hint,omitempty" jsonschema:"required"`
	}

	schema, err := For[withTag]()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(schema.Required) != 1 || schema.Required[0] != "hint" {
		t.Errorf("Expected hint required by tag, got %v", schema.Required)
	}
}

func TestFor_NestedAndCollections(t *testing.T) {
	type inner struct {
		Value string `json:"value"`
	}
	type outer struct {
		Items  []inner           `json:"items"`
		Labels map[string]string `json:"labels"`
	}

	schema, err := For[outer]()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	items := schema.Properties["items"]
	if items.Type != "array" || items.Items == nil || items.Items.Type != "object" {
		t.Errorf("Expected array of objects, got %+v", items)
	}
	if items.Items.Properties["value"].Type != "string" {
		t.Errorf("Expected nested property schema, got %+v", items.Items)
	}

	labels := schema.Properties["labels"]
	additional, ok := labels.AdditionalProperties.(*Schema)
	if labels.Type != "object" || !ok || additional.Type != "string" {
		t.Errorf("Expected map with string values, got %+v", labels)
	}
}

func TestFor_RecursiveType(t *testing.T) {
	type node struct {
		Name     string `json:"name"`
		Children []node `json:"children,omitempty"`
	}

	schema, err := For[node]()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if schema.Ref == "" {
		t.Fatalf("Expected root reference for recursive type, got %+v", schema)
	}
	def := schema.Defs["node"]
	if def == nil {
		t.Fatalf("Expected node definition in $defs, got %v", schema.Defs)
	}
	children := def.Properties["children"]
	if children.Items == nil || children.Items.Ref != "#/$defs/node" {
		t.Errorf("Expected children to reference the definition, got %+v", children)
	}
}

func TestFor_SkipsUnexportedAndDashed(t *testing.T) {
	type mixed struct {
		Visible string `json:"visible"`
		Hidden  string `json:"-"`
		private string //nolint:unused // exercises the exported-fields-only rule
	}

	schema, err := For[mixed]()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(schema.Properties) != 1 {
		t.Errorf("Expected only the visible property, got %v", schema.Properties)
	}
}

func TestSchema_JSONString(t *testing.T) {
	schema, err := For[searchInput]()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	compact, err := schema.JSONString()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(compact, `"type":"object"`) {
		t.Errorf("Expected compact JSON, got %q", compact)
	}

	indented, err := schema.JSONString(true)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(indented, "\n") {
		t.Errorf("Expected indented JSON, got %q", indented)
	}
}
