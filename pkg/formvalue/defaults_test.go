package formvalue_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formspec/pkg/fieldspec"
	"github.com/goliatone/go-formspec/pkg/formvalue"
)

func strField(name string, required bool) *fieldspec.Field {
	return &fieldspec.Field{Name: name, Kind: fieldspec.KindString, Required: required}
}

func numField(name string) *fieldspec.Field {
	return &fieldspec.Field{Name: name, Kind: fieldspec.KindNumber}
}

func profileSpec() *fieldspec.Field {
	return &fieldspec.Field{
		Name: "profile",
		Kind: fieldspec.KindObject,
		Fields: []*fieldspec.Field{
			strField("name", true),
			numField("age"),
			{Name: "active", Kind: fieldspec.KindBoolean, Default: true, HasDefault: true},
			{Name: "tags", Kind: fieldspec.KindArray, Items: strField("tagsItem", false)},
			{Name: "joined", Kind: fieldspec.KindDateTime},
		},
	}
}

func contactSpec() *fieldspec.Field {
	return &fieldspec.Field{
		Name:          "contact",
		Kind:          fieldspec.KindUnion,
		Required:      true,
		Discriminator: "kind",
		Branches: []*fieldspec.Field{
			{
				Name: "email",
				Kind: fieldspec.KindObject,
				Fields: []*fieldspec.Field{
					{Name: "kind", Kind: fieldspec.KindEnum, Default: "email", HasDefault: true,
						Options: []fieldspec.Option{{Label: "Email", Value: "email"}}},
					{Name: "address", Kind: fieldspec.KindString, Required: true, Format: fieldspec.FormatEmail},
				},
			},
			{
				Name: "phone",
				Kind: fieldspec.KindObject,
				Fields: []*fieldspec.Field{
					{Name: "kind", Kind: fieldspec.KindEnum, Default: "phone", HasDefault: true,
						Options: []fieldspec.Option{{Label: "Phone", Value: "phone"}}},
					{Name: "number", Kind: fieldspec.KindString, Required: true},
				},
			},
		},
	}
}

func TestDefaults_KindZeros(t *testing.T) {
	got := formvalue.Defaults(profileSpec())

	want := map[string]any{
		"name":   "",
		"age":    nil,
		"active": true,
		"tags":   []any{},
		"joined": map[string]any{"date": "", "time": ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaults_UnionPopulatesEveryBranch(t *testing.T) {
	got, ok := formvalue.Defaults(contactSpec()).(map[string]any)
	if !ok {
		t.Fatalf("expected staging map, got %T", got)
	}
	if got["selected"] != 0 {
		t.Fatalf("expected first branch selected, got %v", got["selected"])
	}
	options, ok := got["options"].([]any)
	if !ok || len(options) != 2 {
		t.Fatalf("expected one draft per branch, got %#v", got["options"])
	}
	emailDraft := options[0].(map[string]any)
	if emailDraft["kind"] != "email" {
		t.Fatalf("expected branch draft to carry its tag, got %v", emailDraft["kind"])
	}
}

func TestDefaultsWith_SelectsBranchByDiscriminator(t *testing.T) {
	override := map[string]any{"kind": "phone", "number": "555-0100"}
	got := formvalue.DefaultsWith(contactSpec(), override, true).(map[string]any)

	if got["selected"] != 1 {
		t.Fatalf("expected phone branch selected, got %v", got["selected"])
	}
	phoneDraft := got["options"].([]any)[1].(map[string]any)
	if phoneDraft["number"] != "555-0100" {
		t.Fatalf("expected override to seed the active branch, got %#v", phoneDraft)
	}
}

func TestDefaultsWith_RecordFoldsToEntries(t *testing.T) {
	spec := &fieldspec.Field{
		Name:    "settings",
		Kind:    fieldspec.KindRecord,
		KeyKind: fieldspec.KindString,
		Values:  strField("settingsValue", false),
	}
	got := formvalue.DefaultsWith(spec, map[string]any{"theme": "dark", "lang": "en"}, true)

	want := []any{
		map[string]any{"key": "lang", "value": "en"},
		map[string]any{"key": "theme", "value": "dark"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("record defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaults_RecursiveSpecTerminates(t *testing.T) {
	node := &fieldspec.Field{Name: "node", Kind: fieldspec.KindObject}
	node.Fields = []*fieldspec.Field{
		strField("label", false),
		{Name: "children", Kind: fieldspec.KindArray, Items: &fieldspec.Field{Name: "childrenItem", Ref: "node"}},
	}
	// Simulate the builder's lazy indirection by pointing the array item back
	// at the node through a resolved spec.
	item := node.Fields[1].Items
	*item = fieldspec.Field{Name: "childrenItem", Kind: fieldspec.KindObject, Fields: node.Fields}

	got := formvalue.Defaults(node).(map[string]any)
	if got["label"] != "" {
		t.Fatalf("expected empty label, got %v", got["label"])
	}
	children, ok := got["children"].([]any)
	if !ok || len(children) != 0 {
		t.Fatalf("expected empty children, got %#v", got["children"])
	}
}

func TestDefaultsWith_ArraySeedsItems(t *testing.T) {
	spec := &fieldspec.Field{
		Name:  "tags",
		Kind:  fieldspec.KindArray,
		Items: strField("tagsItem", false),
	}
	got := formvalue.DefaultsWith(spec, []any{"go", 7, "schema"}, true)

	// Non-string seeds degrade to the item kind's zero value.
	want := []any{"go", "", "schema"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("array defaults mismatch (-want +got):\n%s", diff)
	}
}
