package fieldspec

import (
	"errors"
	"testing"

	"github.com/goliatone/go-formspec/pkg/schema"
)

func buildField(t *testing.T, node schema.Schema) *Field {
	t.Helper()
	field, err := New(Options{}).Build("root", node)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return field
}

func TestBuild_ObjectRequiredAndDefaults(t *testing.T) {
	node := schema.Schema{
		Type:     "object",
		Required: []string{"name", "role"},
		Properties: map[string]schema.Schema{
			"name": {Type: "string"},
			"role": {Type: "string", Default: "viewer", HasDefault: true},
			"age":  {Type: "integer"},
		},
	}
	field := buildField(t, node)

	if field.Kind != KindObject || len(field.Fields) != 3 {
		t.Fatalf("unexpected root: %#v", field)
	}

	byName := map[string]*Field{}
	for _, child := range field.Fields {
		byName[child.Name] = child
	}

	if !byName["name"].Required {
		t.Fatal("name must be required")
	}
	// A field with a static default can never be missing, so required-ness is
	// dropped.
	if byName["role"].Required {
		t.Fatal("role has a default and must not be required")
	}
	if !byName["role"].HasDefault || byName["role"].Default != "viewer" {
		t.Fatalf("role default lost: %#v", byName["role"])
	}
	if byName["age"].Required {
		t.Fatal("age was never required")
	}
	if !byName["age"].Integer {
		t.Fatal("integer flag lost")
	}
}

func TestBuild_LabelsFromKeys(t *testing.T) {
	node := schema.Schema{
		Type: "object",
		Properties: map[string]schema.Schema{
			"firstName":   {Type: "string"},
			"last_name":   {Type: "string"},
			"titledField": {Type: "string", Title: "Custom Title"},
		},
	}
	field := buildField(t, node)

	want := map[string]string{
		"firstName":   "First Name",
		"last_name":   "Last Name",
		"titledField": "Custom Title",
	}
	for _, child := range field.Fields {
		if child.Label != want[child.Name] {
			t.Fatalf("label for %s: got %q, want %q", child.Name, child.Label, want[child.Name])
		}
	}
}

func TestBuild_StringFormats(t *testing.T) {
	cases := []struct {
		format string
		want   Format
		kind   Kind
	}{
		{"email", FormatEmail, KindString},
		{"uri", FormatURL, KindString},
		{"password", FormatPassword, KindString},
		{"textarea", FormatTextarea, KindString},
		{"date", FormatDefault, KindDate},
		{"time", FormatDefault, KindTime},
		{"date-time", FormatDefault, KindDateTime},
		{"", FormatDefault, KindString},
	}
	for _, tc := range cases {
		field := buildField(t, schema.Schema{Type: "string", Format: tc.format})
		if field.Kind != tc.kind {
			t.Fatalf("format %q: kind %q, want %q", tc.format, field.Kind, tc.kind)
		}
		if field.Format != tc.want {
			t.Fatalf("format %q: got %q, want %q", tc.format, field.Format, tc.want)
		}
	}
}

func TestBuild_PasswordHeuristicIsOptIn(t *testing.T) {
	node := schema.Schema{
		Type:       "object",
		Properties: map[string]schema.Schema{"userPassword": {Type: "string"}},
	}

	plain, err := New(Options{}).Build("root", node)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if plain.Fields[0].Format != FormatDefault {
		t.Fatal("heuristic must be off by default")
	}

	opted, err := New(Options{PasswordHeuristic: true}).Build("root", node)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if opted.Fields[0].Format != FormatPassword {
		t.Fatal("heuristic did not apply")
	}
}

func TestBuild_EnumAndConst(t *testing.T) {
	enum := buildField(t, schema.Schema{Enum: []any{"a", "b"}})
	if enum.Kind != KindEnum || len(enum.Options) != 2 {
		t.Fatalf("enum: %#v", enum)
	}

	lit := buildField(t, schema.Schema{Const: "fixed", HasConst: true})
	if lit.Kind != KindEnum || len(lit.Options) != 1 {
		t.Fatalf("const: %#v", lit)
	}
	if !lit.HasDefault || lit.Default != "fixed" {
		t.Fatalf("const must default to its literal: %#v", lit)
	}

	_, err := New(Options{}).Build("root", schema.Schema{Enum: []any{map[string]any{"x": 1}}})
	var unsupported *UnsupportedTypeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected unsupported type error, got %v", err)
	}
}

func TestBuild_LiteralUnionBecomesEnum(t *testing.T) {
	node := schema.Schema{OneOf: []schema.Schema{
		{Const: "red", HasConst: true},
		{Const: "green", HasConst: true},
		{Const: "blue", HasConst: true},
	}}
	field := buildField(t, node)
	if field.Kind != KindEnum || len(field.Options) != 3 {
		t.Fatalf("literal union must collapse to enum: %#v", field)
	}
}

func TestBuild_DiscriminatedUnion(t *testing.T) {
	node := schema.Schema{OneOf: []schema.Schema{
		{
			Type: "object",
			Properties: map[string]schema.Schema{
				"kind":   {Const: "circle", HasConst: true},
				"radius": {Type: "number"},
			},
			Required: []string{"radius"},
		},
		{
			Type: "object",
			Properties: map[string]schema.Schema{
				"kind": {Const: "square", HasConst: true},
				"side": {Type: "number"},
			},
			Required: []string{"side"},
		},
	}}
	field := buildField(t, node)

	if field.Kind != KindUnion {
		t.Fatalf("expected union, got %q", field.Kind)
	}
	if field.Discriminator != "kind" {
		t.Fatalf("discriminator not inferred: %q", field.Discriminator)
	}
	if field.Branches[0].Name != "circle" || field.Branches[1].Name != "square" {
		t.Fatalf("branch names: %q, %q", field.Branches[0].Name, field.Branches[1].Name)
	}
}

func TestBuild_ExplicitDiscriminatorValidated(t *testing.T) {
	node := schema.Schema{
		Discriminator: "kind",
		OneOf: []schema.Schema{
			{Type: "object", Properties: map[string]schema.Schema{"kind": {Const: "a", HasConst: true}}},
			{Type: "object", Properties: map[string]schema.Schema{"other": {Type: "string"}}},
		},
	}
	if _, err := New(Options{}).Build("root", node); err == nil {
		t.Fatal("branch missing the discriminator literal must fail")
	}
}

func TestBuild_Record(t *testing.T) {
	node := schema.Schema{
		Type:                 "object",
		AdditionalProperties: &schema.Schema{Type: "string"},
	}
	field := buildField(t, node)
	if field.Kind != KindRecord || field.KeyKind != KindString {
		t.Fatalf("record: %#v", field)
	}
	if field.Values == nil || field.Values.Kind != KindString {
		t.Fatalf("record values: %#v", field.Values)
	}
}

func TestBuild_RecordNumericKeys(t *testing.T) {
	node := schema.Schema{
		Type:                 "object",
		PropertyNames:        &schema.Schema{Type: "integer"},
		AdditionalProperties: &schema.Schema{Type: "number"},
	}
	field := buildField(t, node)
	if field.KeyKind != KindNumber {
		t.Fatalf("expected numeric keys, got %q", field.KeyKind)
	}
}

func TestBuild_UnsupportedConstructs(t *testing.T) {
	cases := []struct {
		name string
		node schema.Schema
	}{
		{"tuple", schema.Schema{Type: "array", PrefixItems: []schema.Schema{{Type: "string"}}}},
		{"array without items", schema.Schema{Type: "array"}},
		{"closed key map", schema.Schema{
			Type:                 "object",
			PropertyNames:        &schema.Schema{Enum: []any{"a", "b"}},
			AdditionalProperties: &schema.Schema{Type: "string"},
		}},
		{"typeless", schema.Schema{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(Options{}).Build("root", tc.node)
			var unsupported *UnsupportedTypeError
			if !errors.As(err, &unsupported) {
				t.Fatalf("expected unsupported type error, got %v", err)
			}
		})
	}
}

func TestBuild_SelfReferentialDefs(t *testing.T) {
	nodeDef := schema.Schema{
		Type: "object",
		Properties: map[string]schema.Schema{
			"label": {Type: "string"},
			"children": {
				Type:  "array",
				Items: &schema.Schema{Ref: "#/$defs/node"},
			},
		},
	}
	root := schema.Schema{
		Ref:  "#/$defs/node",
		Defs: map[string]*schema.Schema{"node": &nodeDef},
	}

	field := buildField(t, root)
	if field.Kind != KindObject {
		t.Fatalf("expected resolved definition, got %#v", field)
	}

	children, ok := field.FieldByName("children")
	if !ok {
		t.Fatal("children missing")
	}
	item := children.Resolve().Items
	if item.Ref != "node" {
		t.Fatalf("expected lazy indirection, got %#v", item)
	}
	if item.Resolve().Kind != KindObject {
		t.Fatalf("indirection target unresolved: %#v", item.Resolve())
	}
	if _, ok := item.Resolve().FieldByName("label"); !ok {
		t.Fatal("target does not expose the definition's fields")
	}
}

func TestBuild_UnresolvedRefDegrades(t *testing.T) {
	field := buildField(t, schema.Schema{Ref: "#/$defs/missing"})
	if field.Kind != KindObject {
		t.Fatalf("expected placeholder object, got %q", field.Kind)
	}
	if field.Metadata["$ref"] != "#/$defs/missing" {
		t.Fatalf("placeholder must carry the ref: %#v", field.Metadata)
	}
}

func TestBuild_Overrides(t *testing.T) {
	one := 1
	two := 2
	options := Options{
		Overrides: Overrides{
			"root": {
				Fields: Overrides{
					"b": {Label: "B First", Order: &one},
					"a": {Order: &two, Default: "seeded", HasDefault: true},
					"c": {Format: FormatTextarea},
				},
			},
		},
	}
	node := schema.Schema{
		Type:     "object",
		Required: []string{"a"},
		Properties: map[string]schema.Schema{
			"a": {Type: "string"},
			"b": {Type: "string"},
			"c": {Type: "string"},
		},
	}

	field, err := New(options).Build("root", node)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if field.Fields[0].Name != "b" || field.Fields[1].Name != "a" {
		t.Fatalf("override ordering not applied: %v, %v", field.Fields[0].Name, field.Fields[1].Name)
	}
	if field.Fields[0].Label != "B First" {
		t.Fatalf("label override lost: %q", field.Fields[0].Label)
	}

	a := field.Fields[1]
	if a.Required {
		t.Fatal("an override default clears required-ness")
	}
	if a.Default != "seeded" {
		t.Fatalf("default override lost: %#v", a)
	}
	if field.Fields[2].Format != FormatTextarea {
		t.Fatalf("format override lost: %q", field.Fields[2].Format)
	}
}

func TestBuild_MetadataFromExtensions(t *testing.T) {
	node := schema.Schema{
		Type: "string",
		Extensions: map[string]any{
			"x-formspec":        map[string]any{"widget": "slug", "rows": float64(3)},
			"x-formspec-hidden": true,
			"x-other":           "ignored",
		},
	}
	field := buildField(t, node)

	if field.Metadata["widget"] != "slug" || field.Metadata["rows"] != "3" {
		t.Fatalf("namespace extensions lost: %#v", field.Metadata)
	}
	if field.Metadata["hidden"] != "true" {
		t.Fatalf("prefixed extension lost: %#v", field.Metadata)
	}
	if _, ok := field.Metadata["x-other"]; ok {
		t.Fatalf("foreign extension leaked: %#v", field.Metadata)
	}
}
