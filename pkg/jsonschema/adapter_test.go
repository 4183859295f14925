package jsonschema_test

import (
	"context"
	"fmt"
	"testing"

	pkgjsonschema "github.com/goliatone/go-formspec/pkg/jsonschema"
	"github.com/goliatone/go-formspec/pkg/schema"
)

// memoryLoader serves documents from an in-memory table keyed by source
// location.
type memoryLoader struct {
	docs map[string][]byte
}

func (m *memoryLoader) Load(_ context.Context, src pkgjsonschema.Source) (schema.Document, error) {
	if src == nil {
		return schema.Document{}, fmt.Errorf("memory loader: source is nil")
	}
	raw, ok := m.docs[src.Location()]
	if !ok {
		return schema.Document{}, fmt.Errorf("memory loader: %s not found", src.Location())
	}
	return schema.NewDocument(src, raw)
}

func newAdapter(docs map[string][]byte) *pkgjsonschema.Adapter {
	return pkgjsonschema.NewAdapter(&memoryLoader{docs: docs})
}

func mustDocument(t *testing.T, name string, raw []byte) schema.Document {
	t.Helper()
	doc, err := schema.NewDocument(schema.SourceFromFS(name), raw)
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	return doc
}

func TestAdapter_Detect(t *testing.T) {
	adapter := newAdapter(nil)

	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"schema with $schema", `{"$schema": "https://json-schema.org/draft/2020-12/schema"}`, true},
		{"schema with properties", `{"type": "object", "properties": {}}`, true},
		{"openapi document", `{"openapi": "3.0.0", "paths": {}}`, false},
		{"swagger document", `{"swagger": "2.0"}`, false},
		{"unrelated json", `{"hello": "world"}`, false},
		{"garbage", `not json at all {{{`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := adapter.Detect(nil, []byte(tc.raw)); got != tc.want {
				t.Fatalf("Detect = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAdapter_NormalizeBasicObject(t *testing.T) {
	raw := []byte(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "person",
  "title": "Person",
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": { "type": "string", "minLength": 1 },
    "age": { "type": ["integer", "null"], "minimum": 0 }
  }
}`)
	adapter := newAdapter(nil)

	ir, err := adapter.Normalize(context.Background(), mustDocument(t, "person.json", raw), schema.NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	form, ok := ir.Form("person")
	if !ok {
		t.Fatalf("expected form keyed by $id, got %v", ir.FormRefs())
	}
	root := form.Schema
	if root.Type != "object" || len(root.Properties) != 2 {
		t.Fatalf("unexpected root: %#v", root)
	}

	name := root.Properties["name"]
	if name.Type != "string" || name.MinLength == nil || *name.MinLength != 1 {
		t.Fatalf("name property: %#v", name)
	}

	age := root.Properties["age"]
	if len(age.Types) != 2 {
		t.Fatalf("type array must survive normalization: %#v", age)
	}
	if age.Minimum == nil || *age.Minimum != 0 {
		t.Fatalf("minimum lost: %#v", age)
	}
}

// Properties come back in the order the schema author wrote them; decoding
// through Go maps alone would collapse them to alphabetical.
func TestAdapter_PropertyDeclarationOrder(t *testing.T) {
	raw := []byte(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "signup",
  "type": "object",
  "properties": {
    "username": { "type": "string" },
    "email": { "type": "string" },
    "address": {
      "type": "object",
      "properties": {
        "zip": { "type": "string" },
        "city": { "type": "string" }
      }
    }
  }
}`)
	adapter := newAdapter(nil)

	ir, err := adapter.Normalize(context.Background(), mustDocument(t, "signup.json", raw), schema.NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	form, ok := ir.Form("signup")
	if !ok {
		t.Fatalf("form missing: %v", ir.FormRefs())
	}

	if got := fmt.Sprintf("%v", form.Schema.PropertyKeys()); got != "[username email address]" {
		t.Fatalf("root property order lost: %s", got)
	}
	address := form.Schema.Properties["address"]
	if got := fmt.Sprintf("%v", address.PropertyKeys()); got != "[zip city]" {
		t.Fatalf("nested property order lost: %s", got)
	}
}

func TestAdapter_PropertyDeclarationOrderYAML(t *testing.T) {
	raw := []byte(`
$schema: https://json-schema.org/draft/2020-12/schema
$id: ordered
type: object
properties:
  zebra:
    type: string
  alpha:
    type: number
`)
	adapter := newAdapter(nil)

	ir, err := adapter.Normalize(context.Background(), mustDocument(t, "ordered.yaml", raw), schema.NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	form, ok := ir.Form("ordered")
	if !ok {
		t.Fatalf("form missing: %v", ir.FormRefs())
	}
	if got := fmt.Sprintf("%v", form.Schema.PropertyKeys()); got != "[zebra alpha]" {
		t.Fatalf("yaml property order lost: %s", got)
	}
}

func TestAdapter_NormalizeYAML(t *testing.T) {
	raw := []byte(`
$schema: https://json-schema.org/draft/2020-12/schema
type: object
properties:
  count:
    type: integer
    default: 3
`)
	adapter := newAdapter(nil)

	ir, err := adapter.Normalize(context.Background(), mustDocument(t, "doc.yaml", raw), schema.NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize yaml: %v", err)
	}
	form, _ := ir.Form("default")
	count := form.Schema.Properties["count"]
	if !count.HasDefault {
		t.Fatalf("default lost: %#v", count)
	}
	// YAML integers arrive as float64, matching JSON decoding.
	if count.Default != float64(3) {
		t.Fatalf("yaml default not normalized to float64: %T %v", count.Default, count.Default)
	}
}

func TestAdapter_RejectsOtherDialects(t *testing.T) {
	raw := []byte(`{"$schema": "http://json-schema.org/draft-07/schema#", "type": "object"}`)
	adapter := newAdapter(nil)

	if _, err := adapter.Normalize(context.Background(), mustDocument(t, "old.json", raw), schema.NormalizeOptions{}); err == nil {
		t.Fatal("expected draft-07 to be rejected")
	}
}

func TestAdapter_MissingDialectAccepted(t *testing.T) {
	raw := []byte(`{"type": "object", "properties": {"a": {"type": "string"}}}`)
	adapter := newAdapter(nil)

	if _, err := adapter.Normalize(context.Background(), mustDocument(t, "bare.json", raw), schema.NormalizeOptions{}); err != nil {
		t.Fatalf("documents without $schema must pass: %v", err)
	}
}

// $defs refs survive resolution so the field spec builder can resolve
// self-referential definitions lazily.
func TestAdapter_LocalDefsStayLazy(t *testing.T) {
	raw := []byte(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "tree": { "$ref": "#/$defs/node" }
  },
  "$defs": {
    "node": {
      "type": "object",
      "properties": {
        "label": { "type": "string" },
        "children": { "type": "array", "items": { "$ref": "#/$defs/node" } }
      }
    }
  }
}`)
	adapter := newAdapter(nil)

	ir, err := adapter.Normalize(context.Background(), mustDocument(t, "tree.json", raw), schema.NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	form, _ := ir.Form("default")
	root := form.Schema

	if root.Properties["tree"].Ref != "#/$defs/node" {
		t.Fatalf("local ref inlined eagerly: %#v", root.Properties["tree"])
	}
	node, ok := root.Defs["node"]
	if !ok {
		t.Fatalf("defs table missing: %#v", root.Defs)
	}
	items := node.Properties["children"].Items
	if items == nil || items.Ref != "#/$defs/node" {
		t.Fatalf("recursive ref lost: %#v", node.Properties["children"])
	}
}

func TestAdapter_FalseSchemaRejected(t *testing.T) {
	raw := []byte(`{"type": "object", "properties": {"locked": false}}`)
	adapter := newAdapter(nil)

	if _, err := adapter.Normalize(context.Background(), mustDocument(t, "false.json", raw), schema.NormalizeOptions{}); err == nil {
		t.Fatal("false schemas have no field mapping and must fail")
	}
}

func TestAdapter_FormDiscovery(t *testing.T) {
	raw := []byte(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Account",
  "type": "object",
  "properties": { "email": { "type": "string" } },
  "x-formspec": {
    "forms": [
      { "id": "create", "summary": "Create account" },
      { "id": "update", "summary": "Update account" }
    ]
  }
}`)
	adapter := newAdapter(nil)

	ir, err := adapter.Normalize(context.Background(), mustDocument(t, "account.json", raw), schema.NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	refs := ir.FormRefs()
	if len(refs) != 2 || refs[0].ID != "create" || refs[1].ID != "update" {
		t.Fatalf("unexpected refs: %#v", refs)
	}

	ir, err = adapter.Normalize(context.Background(), mustDocument(t, "account.json", raw), schema.NormalizeOptions{FormID: "update"})
	if err != nil {
		t.Fatalf("normalize with form id: %v", err)
	}
	if len(ir.FormRefs()) != 1 || ir.FormRefs()[0].ID != "update" {
		t.Fatalf("form filter failed: %#v", ir.FormRefs())
	}

	if _, err := adapter.Normalize(context.Background(), mustDocument(t, "account.json", raw), schema.NormalizeOptions{FormID: "missing"}); err == nil {
		t.Fatal("unknown form id must fail")
	}
}

func TestAdapter_OverlayAppliesExtensions(t *testing.T) {
	raw := []byte(`{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": { "name": { "type": "string" } }
}`)
	overlay := []byte(`{
  "$schema": "x-formspec-overlay/v1",
  "overrides": [
    { "path": "/properties/name", "x-formspec": { "widget": "slug" } }
  ]
}`)
	adapter := newAdapter(nil)

	ir, err := adapter.Normalize(context.Background(), mustDocument(t, "doc.json", raw), schema.NormalizeOptions{Overlay: overlay})
	if err != nil {
		t.Fatalf("normalize with overlay: %v", err)
	}
	form, _ := ir.Form("default")
	ext := form.Schema.Properties["name"].Extensions
	meta, _ := ext["x-formspec"].(map[string]any)
	if meta["widget"] != "slug" {
		t.Fatalf("overlay extension not applied: %#v", ext)
	}
}
