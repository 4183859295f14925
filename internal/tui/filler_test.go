package tui_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-formspec/internal/tui"
	"github.com/goliatone/go-formspec/pkg/fieldspec"
	"github.com/goliatone/go-formspec/pkg/testsupport"
)

// scriptDriver replays canned answers so fill logic runs without a terminal.
type scriptDriver struct {
	t         *testing.T
	inputs    []string
	passwords []string
	textareas []string
	confirms  []bool
	selects   []int
	infos     []string
}

func (d *scriptDriver) Input(_ context.Context, cfg tui.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		d.t.Fatalf("unexpected input prompt %q", cfg.Message)
	}
	out := d.inputs[0]
	d.inputs = d.inputs[1:]
	if cfg.Validator != nil {
		if err := cfg.Validator(out); err != nil {
			d.t.Fatalf("scripted answer %q rejected: %v", out, err)
		}
	}
	return out, nil
}

func (d *scriptDriver) Password(_ context.Context, cfg tui.InputConfig) (string, error) {
	if len(d.passwords) == 0 {
		d.t.Fatalf("unexpected password prompt %q", cfg.Message)
	}
	out := d.passwords[0]
	d.passwords = d.passwords[1:]
	return out, nil
}

func (d *scriptDriver) Confirm(_ context.Context, cfg tui.ConfirmConfig) (bool, error) {
	if len(d.confirms) == 0 {
		d.t.Fatalf("unexpected confirm prompt %q", cfg.Message)
	}
	out := d.confirms[0]
	d.confirms = d.confirms[1:]
	return out, nil
}

func (d *scriptDriver) Select(_ context.Context, cfg tui.SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		d.t.Fatalf("unexpected select prompt %q", cfg.Message)
	}
	out := d.selects[0]
	d.selects = d.selects[1:]
	return out, nil
}

func (d *scriptDriver) TextArea(_ context.Context, cfg tui.TextAreaConfig) (string, error) {
	if len(d.textareas) == 0 {
		d.t.Fatalf("unexpected textarea prompt %q", cfg.Message)
	}
	out := d.textareas[0]
	d.textareas = d.textareas[1:]
	return out, nil
}

func (d *scriptDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func fill(t *testing.T, driver *scriptDriver, spec *fieldspec.Field) any {
	t.Helper()
	value, err := tui.NewFiller(driver).Fill(context.Background(), spec)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	return value
}

func TestFill_LeafKinds(t *testing.T) {
	spec := &fieldspec.Field{
		Name: "profile",
		Kind: fieldspec.KindObject,
		Fields: []*fieldspec.Field{
			{Name: "name", Kind: fieldspec.KindString},
			{Name: "secret", Kind: fieldspec.KindString, Format: fieldspec.FormatPassword},
			{Name: "bio", Kind: fieldspec.KindString, Format: fieldspec.FormatTextarea},
			{Name: "age", Kind: fieldspec.KindNumber, Integer: true},
			{Name: "active", Kind: fieldspec.KindBoolean, Default: true, HasDefault: true},
		},
	}
	driver := &scriptDriver{
		t:         t,
		inputs:    []string{"Ada", "36"},
		passwords: []string{"hunter2"},
		textareas: []string{"First programmer."},
		confirms:  []bool{true},
	}

	got := fill(t, driver, spec)

	want := map[string]any{
		"name":   "Ada",
		"secret": "hunter2",
		"bio":    "First programmer.",
		"age":    float64(36),
		"active": true,
	}
	if diff := testsupport.DiffValues(want, got); diff != "" {
		t.Fatalf("filled tree mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infos) != 1 {
		t.Fatalf("object header not announced: %v", driver.infos)
	}
}

func TestFill_EnumUsesOptionValue(t *testing.T) {
	spec := &fieldspec.Field{
		Name: "role",
		Kind: fieldspec.KindEnum,
		Options: []fieldspec.Option{
			{Label: "Admin", Value: "admin"},
			{Label: "Viewer", Value: "viewer"},
		},
		Default:    "viewer",
		HasDefault: true,
	}
	driver := &scriptDriver{t: t, selects: []int{0}}

	if got := fill(t, driver, spec); got != "admin" {
		t.Fatalf("expected option value, got %v", got)
	}
}

func TestFill_NumberBlankMeansUnset(t *testing.T) {
	spec := &fieldspec.Field{Name: "age", Kind: fieldspec.KindNumber}
	driver := &scriptDriver{t: t, inputs: []string{""}}

	if got := fill(t, driver, spec); got != nil {
		t.Fatalf("blank number input must stay unset, got %v", got)
	}
}

func TestFill_ArrayRespectsBounds(t *testing.T) {
	one, two := 1, 2
	spec := &fieldspec.Field{
		Name:     "tags",
		Kind:     fieldspec.KindArray,
		MinItems: &one,
		MaxItems: &two,
		Items:    &fieldspec.Field{Name: "tag", Kind: fieldspec.KindString},
	}
	// First item is forced by minItems; one confirm admits the second; maxItems
	// stops the loop without a third prompt.
	driver := &scriptDriver{
		t:        t,
		inputs:   []string{"go", "forms"},
		confirms: []bool{true},
	}

	got := fill(t, driver, spec)
	if diff := testsupport.DiffValues([]any{"go", "forms"}, got); diff != "" {
		t.Fatalf("array mismatch (-want +got):\n%s", diff)
	}
	if len(driver.confirms) != 0 || len(driver.inputs) != 0 {
		t.Fatalf("unconsumed prompts: %v %v", driver.confirms, driver.inputs)
	}
}

func TestFill_RecordStagesEntries(t *testing.T) {
	spec := &fieldspec.Field{
		Name:    "settings",
		Kind:    fieldspec.KindRecord,
		KeyKind: fieldspec.KindString,
		Values:  &fieldspec.Field{Name: "value", Kind: fieldspec.KindString},
	}
	driver := &scriptDriver{
		t:        t,
		confirms: []bool{true, false},
		inputs:   []string{"theme", "dark"},
	}

	got := fill(t, driver, spec)
	want := []any{map[string]any{"key": "theme", "value": "dark"}}
	if diff := testsupport.DiffValues(want, got); diff != "" {
		t.Fatalf("record staging mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_DateTimeStaging(t *testing.T) {
	spec := &fieldspec.Field{Name: "starts", Kind: fieldspec.KindDateTime}
	driver := &scriptDriver{t: t, inputs: []string{"2024-03-01", "09:30"}}

	got := fill(t, driver, spec)
	want := map[string]any{"date": "2024-03-01", "time": "09:30"}
	if diff := testsupport.DiffValues(want, got); diff != "" {
		t.Fatalf("datetime staging mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_UnionFillsActiveBranchOnly(t *testing.T) {
	spec := &fieldspec.Field{
		Name: "contact",
		Kind: fieldspec.KindUnion,
		Branches: []*fieldspec.Field{
			{
				Name: "email",
				Kind: fieldspec.KindObject,
				Fields: []*fieldspec.Field{
					{Name: "address", Kind: fieldspec.KindString},
				},
			},
			{
				Name: "phone",
				Kind: fieldspec.KindObject,
				Fields: []*fieldspec.Field{
					{Name: "number", Kind: fieldspec.KindString},
				},
			},
		},
	}
	driver := &scriptDriver{
		t:       t,
		selects: []int{1},
		inputs:  []string{"555-0100"},
	}

	got := fill(t, driver, spec)
	want := map[string]any{
		"selected": float64(1),
		"options": []any{
			map[string]any{"address": ""},
			map[string]any{"number": "555-0100"},
		},
	}
	if diff := testsupport.DiffValues(want, got); diff != "" {
		t.Fatalf("union staging mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_ReadOnlyFallsBackToDefaults(t *testing.T) {
	spec := &fieldspec.Field{
		Name:       "id",
		Kind:       fieldspec.KindString,
		ReadOnly:   true,
		Default:    "generated",
		HasDefault: true,
	}
	driver := &scriptDriver{t: t}

	if got := fill(t, driver, spec); got != "generated" {
		t.Fatalf("read-only field must keep its default, got %v", got)
	}
}
