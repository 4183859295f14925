package openapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/goliatone/go-formspec/pkg/schema"
)

const DefaultAdapterName = "openapi"

// Adapter wraps the OpenAPI loader/parser flow behind the schema adapter
// interface.
type Adapter struct {
	loader Loader
	parser Parser
}

// NewAdapter constructs an OpenAPI adapter with the supplied loader and parser.
func NewAdapter(loader Loader, parser Parser) *Adapter {
	return &Adapter{
		loader: loader,
		parser: parser,
	}
}

// Name returns the adapter registry identifier.
func (a *Adapter) Name() string {
	return DefaultAdapterName
}

// Detect reports whether the raw payload appears to be OpenAPI.
func (a *Adapter) Detect(_ schema.Source, raw []byte) bool {
	return detectOpenAPI(raw)
}

// Load fetches the raw OpenAPI document.
func (a *Adapter) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if a == nil || a.loader == nil {
		return schema.Document{}, errors.New("openapi adapter: loader is nil")
	}
	doc, err := a.loader.Load(ctx, src)
	if err != nil {
		return schema.Document{}, err
	}
	return schema.NewDocument(doc.Source(), doc.Raw())
}

// Normalize parses operations and converts them into the canonical schema IR.
// Each operation carrying a request body becomes one form keyed by its
// operation id.
func (a *Adapter) Normalize(ctx context.Context, doc schema.Document, opts schema.NormalizeOptions) (schema.SchemaIR, error) {
	if a == nil || a.parser == nil {
		return schema.SchemaIR{}, errors.New("openapi adapter: parser is nil")
	}

	operations, err := a.parser.Operations(ctx, doc)
	if err != nil {
		return schema.SchemaIR{}, err
	}

	ir := schema.NewSchemaIR()
	for id, op := range operations {
		form := FormFromOperation(op)
		if form.ID == "" {
			form.ID = id
		}
		ir.Forms[form.ID] = form
	}

	if opts.FormID != "" {
		form, ok := ir.Form(opts.FormID)
		if !ok {
			return schema.SchemaIR{}, fmt.Errorf("openapi adapter: form %q not found", opts.FormID)
		}
		ir = schema.NewSchemaIR()
		ir.Forms[form.ID] = form
	}
	return ir, nil
}

// Forms returns the list of operation-backed form references.
func (a *Adapter) Forms(_ context.Context, ir schema.SchemaIR) ([]schema.FormRef, error) {
	return ir.FormRefs(), nil
}

// FormFromOperation converts an OpenAPI operation into a canonical form.
func FormFromOperation(op Operation) schema.Form {
	return schema.Form{
		ID:          op.ID,
		Method:      op.Method,
		Endpoint:    op.Path,
		Summary:     op.Summary,
		Description: op.Description,
		Schema:      op.RequestBody,
		Extensions:  op.Extensions,
	}
}

func detectOpenAPI(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	if trimmed[0] == '{' {
		var payload map[string]any
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			if _, ok := payload["openapi"]; ok {
				return true
			}
			if _, ok := payload["swagger"]; ok {
				return true
			}
		}
		return false
	}
	lower := strings.ToLower(string(trimmed))
	return strings.Contains(lower, "openapi:") || strings.Contains(lower, "swagger:")
}
