// Package formspec turns schema documents (JSON Schema draft 2020-12, OpenAPI
// 3.x) into renderer-agnostic field specifications plus the value-side
// operations a form consumer needs: initial defaults, normalization of staged
// input, and required/constraint validation.
package formspec

import (
	"context"

	"github.com/goliatone/go-formspec/pkg/fieldspec"
	"github.com/goliatone/go-formspec/pkg/formvalue"
	"github.com/goliatone/go-formspec/pkg/orchestrator"
	"github.com/goliatone/go-formspec/pkg/schema"
)

// Request describes the inputs required to derive a field spec.
type Request = orchestrator.Request

// Session binds a field spec tree to defaults, validation, and submit
// handling for one form.
type Session = orchestrator.Session

// Option customises the orchestrator configuration.
type Option = orchestrator.Option

// Issues is the ordered list of validation findings for one value tree.
type Issues = formvalue.Issues

// New exposes the orchestrator constructor from the top-level module.
func New(options ...Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// FieldSpec loads the schema at src, normalizes it, and builds the field spec
// tree for the requested form. Empty formID requires the document to describe
// exactly one form.
func FieldSpec(ctx context.Context, src schema.Source, formID string, options ...Option) (*fieldspec.Field, error) {
	gen := orchestrator.New(options...)
	return gen.FieldSpec(ctx, Request{Source: src, FormID: formID})
}

// Open loads the schema at src and returns a Session for the requested form,
// ready to produce defaults and accept submissions.
func Open(ctx context.Context, src schema.Source, formID string, options ...Option) (*Session, error) {
	gen := orchestrator.New(options...)
	return gen.Session(ctx, Request{Source: src, FormID: formID})
}

// OpenDocument returns a Session for a pre-loaded document, bypassing the
// loader stage while still delegating to the orchestrator.
func OpenDocument(ctx context.Context, doc schema.Document, formID string, options ...Option) (*Session, error) {
	gen := orchestrator.New(options...)
	return gen.Session(ctx, Request{Document: &doc, FormID: formID})
}
