package openapi_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-formspec/pkg/openapi"
	"github.com/goliatone/go-formspec/pkg/schema"
)

type staticParser struct {
	ops map[string]openapi.Operation
}

func (p *staticParser) Operations(context.Context, openapi.Document) (map[string]openapi.Operation, error) {
	return p.ops, nil
}

func testOperations() map[string]openapi.Operation {
	create := openapi.MustNewOperation("createTask", "POST", "/tasks", schema.Schema{
		Type:       "object",
		Required:   []string{"title"},
		Properties: map[string]schema.Schema{"title": {Type: "string"}},
	}, nil)
	create.Summary = "Create a task"

	update := openapi.MustNewOperation("updateTask", "PATCH", "/tasks/{id}", schema.Schema{
		Type:       "object",
		Properties: map[string]schema.Schema{"title": {Type: "string"}},
	}, nil)

	return map[string]openapi.Operation{
		create.ID: create,
		update.ID: update,
	}
}

func TestAdapter_Detect(t *testing.T) {
	adapter := openapi.NewAdapter(nil, nil)

	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"openapi json", `{"openapi": "3.0.3", "paths": {}}`, true},
		{"swagger json", `{"swagger": "2.0"}`, true},
		{"openapi yaml", "openapi: 3.0.3\npaths: {}\n", true},
		{"json schema", `{"$schema": "https://json-schema.org/draft/2020-12/schema"}`, false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := adapter.Detect(nil, []byte(tc.raw)); got != tc.want {
				t.Fatalf("Detect = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAdapter_NormalizeBuildsForms(t *testing.T) {
	adapter := openapi.NewAdapter(nil, &staticParser{ops: testOperations()})
	doc := openapi.MustNewDocument(schema.SourceFromFS("spec.json"), []byte(`{"openapi":"3.0.3"}`))

	ir, err := adapter.Normalize(context.Background(), doc, schema.NormalizeOptions{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	refs := ir.FormRefs()
	if len(refs) != 2 {
		t.Fatalf("expected both operations, got %v", refs)
	}

	form, ok := ir.Form("createTask")
	if !ok {
		t.Fatal("createTask form missing")
	}
	if form.Method != "POST" || form.Endpoint != "/tasks" {
		t.Fatalf("routing metadata lost: %#v", form)
	}
	if form.Summary != "Create a task" {
		t.Fatalf("summary lost: %q", form.Summary)
	}
	if form.Schema.Type != "object" {
		t.Fatalf("request body not carried: %#v", form.Schema)
	}
}

func TestAdapter_NormalizeFormFilter(t *testing.T) {
	adapter := openapi.NewAdapter(nil, &staticParser{ops: testOperations()})
	doc := openapi.MustNewDocument(schema.SourceFromFS("spec.json"), []byte(`{"openapi":"3.0.3"}`))

	ir, err := adapter.Normalize(context.Background(), doc, schema.NormalizeOptions{FormID: "updateTask"})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	refs := ir.FormRefs()
	if len(refs) != 1 || refs[0].ID != "updateTask" {
		t.Fatalf("filter failed: %v", refs)
	}

	if _, err := adapter.Normalize(context.Background(), doc, schema.NormalizeOptions{FormID: "missing"}); err == nil {
		t.Fatal("unknown form id must fail")
	}
}
