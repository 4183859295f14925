package formvalue_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formspec/pkg/fieldspec"
	"github.com/goliatone/go-formspec/pkg/formvalue"
	"github.com/goliatone/go-formspec/pkg/schema"
)

// recursiveNodeSpec builds a linked-list shape whose "next" property points
// back at the node definition, going through the builder so the field tree
// carries the real lazy indirection cells.
func recursiveNodeSpec(t *testing.T) *fieldspec.Field {
	t.Helper()
	node := schema.Schema{
		Ref: "#/$defs/node",
		Defs: map[string]*schema.Schema{
			"node": {
				Type:     "object",
				Required: []string{"label"},
				Properties: map[string]schema.Schema{
					"label": {Type: "string"},
					"next":  {Ref: "#/$defs/node"},
				},
			},
		},
	}
	spec, err := fieldspec.NewBuilder().Build("tree", node)
	if err != nil {
		t.Fatalf("build recursive spec: %v", err)
	}
	return spec
}

func TestNormalize_DateTimeStagingJoins(t *testing.T) {
	spec := &fieldspec.Field{Name: "joined", Kind: fieldspec.KindDateTime}

	cases := []struct {
		name string
		raw  any
		want any
	}{
		{"both halves", map[string]any{"date": "2024-03-01", "time": "09:30"}, "2024-03-01T09:30"},
		{"date only", map[string]any{"date": "2024-03-01", "time": ""}, "2024-03-01"},
		{"time only", map[string]any{"date": "", "time": "09:30"}, ""},
		{"already canonical", "2024-03-01T09:30", "2024-03-01T09:30"},
		{"malformed", 42, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formvalue.Normalize(spec, tc.raw); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNormalize_ObjectDropsUndeclaredKeys(t *testing.T) {
	spec := profileSpec()
	raw := map[string]any{
		"name":       "Ada",
		"age":        float64(36),
		"active":     true,
		"tags":       []any{"math"},
		"joined":     "2024-03-01T09:30",
		"undeclared": "dropped",
	}
	got := formvalue.Normalize(spec, raw).(map[string]any)
	if _, ok := got["undeclared"]; ok {
		t.Fatalf("undeclared key survived normalization: %#v", got)
	}
	if got["name"] != "Ada" || got["age"] != float64(36) {
		t.Fatalf("declared values mangled: %#v", got)
	}
}

func TestNormalize_UnionCollapsesToActiveBranch(t *testing.T) {
	spec := contactSpec()
	raw := map[string]any{
		"selected": float64(1),
		"options": []any{
			map[string]any{"kind": "email", "address": "ada@example.com"},
			map[string]any{"kind": "phone", "number": "555-0100"},
		},
	}
	got := formvalue.Normalize(spec, raw)

	want := map[string]any{"kind": "phone", "number": "555-0100"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("active branch mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_UnionCanonicalInputPassesThrough(t *testing.T) {
	spec := contactSpec()
	canonical := map[string]any{"kind": "email", "address": "ada@example.com"}

	got := formvalue.Normalize(spec, canonical)
	if diff := cmp.Diff(canonical, got); diff != "" {
		t.Fatalf("canonical union input changed (-want +got):\n%s", diff)
	}
}

// Switching the active branch back and forth must recover the original draft:
// normalization discards inactive drafts, but the raw tree keeps them.
func TestNormalize_UnionBranchIsolation(t *testing.T) {
	spec := contactSpec()
	staging := map[string]any{
		"selected": 0,
		"options": []any{
			map[string]any{"kind": "email", "address": "ada@example.com"},
			map[string]any{"kind": "phone", "number": "555-0100"},
		},
	}

	first := formvalue.Normalize(spec, staging)
	staging["selected"] = 1
	second := formvalue.Normalize(spec, staging)
	staging["selected"] = 0
	third := formvalue.Normalize(spec, staging)

	if diff := cmp.Diff(first, third); diff != "" {
		t.Fatalf("switching branches lost the original draft (-first +third):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"kind": "phone", "number": "555-0100"}, second); diff != "" {
		t.Fatalf("second branch mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_RecordEntryListFolds(t *testing.T) {
	spec := &fieldspec.Field{
		Name:    "scores",
		Kind:    fieldspec.KindRecord,
		KeyKind: fieldspec.KindNumber,
		Values:  numField("scoresValue"),
	}
	raw := []any{
		map[string]any{"key": "1", "value": float64(10)},
		map[string]any{"key": "", "value": float64(99)},
		map[string]any{"key": "abc", "value": float64(1)},
	}
	got := formvalue.Normalize(spec, raw)

	want := map[string]any{"1": float64(10)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("record fold mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_RecordStringKeysTrimmed(t *testing.T) {
	spec := &fieldspec.Field{
		Name:    "settings",
		Kind:    fieldspec.KindRecord,
		KeyKind: fieldspec.KindString,
		Values:  strField("settingsValue", false),
	}
	raw := []any{
		map[string]any{"key": " theme ", "value": "dark"},
		map[string]any{"key": "   ", "value": "lost"},
	}
	got := formvalue.Normalize(spec, raw)

	want := map[string]any{"theme": "dark"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("record key handling mismatch (-want +got):\n%s", diff)
	}
}

// Normalize must be idempotent: projecting canonical output again returns it
// unchanged.
func TestNormalize_Idempotent(t *testing.T) {
	spec := profileSpec()
	raw := map[string]any{
		"name":   " Ada ",
		"age":    float64(36),
		"active": false,
		"tags":   []any{"math", "logic"},
		"joined": map[string]any{"date": "2024-03-01", "time": "09:30"},
	}

	once := formvalue.Normalize(spec, raw)
	twice := formvalue.Normalize(spec, once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("normalize is not idempotent (-once +twice):\n%s", diff)
	}
}

// A schema can reference itself through an object property alone. Normalize
// must still terminate: once the raw tree runs out, the recursive tail
// projects to an empty object instead of descending forever.
func TestNormalize_RecursiveSpecTerminates(t *testing.T) {
	spec := recursiveNodeSpec(t)
	raw := map[string]any{
		"label": "root",
		"next":  map[string]any{"label": "child"},
	}

	got := formvalue.Normalize(spec, raw)

	want := map[string]any{
		"label": "root",
		"next": map[string]any{
			"label": "child",
			"next":  map[string]any{},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("recursive normalize mismatch (-want +got):\n%s", diff)
	}

	twice := formvalue.Normalize(spec, got)
	if diff := cmp.Diff(got, twice); diff != "" {
		t.Fatalf("recursive normalize not idempotent (-once +twice):\n%s", diff)
	}
}

// Defaults round-trip: normalizing the derived defaults of canonical-shaped
// kinds yields a stable value on the second pass.
func TestNormalize_DefaultsRoundTrip(t *testing.T) {
	spec := profileSpec()
	defaults := formvalue.Defaults(spec)

	once := formvalue.Normalize(spec, defaults)
	twice := formvalue.Normalize(spec, once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("defaults round-trip unstable (-once +twice):\n%s", diff)
	}
}
