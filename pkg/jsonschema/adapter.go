package jsonschema

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/goliatone/go-formspec/pkg/schema"
	"gopkg.in/yaml.v3"
)

const DefaultAdapterName = "jsonschema"

// Adapter wraps JSON Schema parsing and normalization behind the schema
// adapter interface. Documents may be JSON or YAML; YAML input is transcoded
// before normalization.
type Adapter struct {
	loader   Loader
	resolver *Resolver
}

// AdapterOption configures a JSON Schema adapter.
type AdapterOption func(*adapterOptions)

type adapterOptions struct {
	resolver       *Resolver
	resolverConfig ResolveOptions
}

// WithResolver injects a custom resolver implementation.
func WithResolver(resolver *Resolver) AdapterOption {
	return func(opts *adapterOptions) {
		opts.resolver = resolver
	}
}

// WithResolverOptions supplies options to the default resolver.
func WithResolverOptions(options ResolveOptions) AdapterOption {
	return func(opts *adapterOptions) {
		opts.resolverConfig = options
	}
}

// NewAdapter constructs a JSON Schema adapter with the supplied loader.
func NewAdapter(loader Loader, options ...AdapterOption) *Adapter {
	opts := adapterOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	resolver := opts.resolver
	if resolver == nil {
		resolver = NewResolver(loader, opts.resolverConfig)
	}

	return &Adapter{
		loader:   loader,
		resolver: resolver,
	}
}

// Name returns the adapter registry identifier.
func (a *Adapter) Name() string {
	return DefaultAdapterName
}

// Detect reports whether the raw payload appears to be JSON Schema.
func (a *Adapter) Detect(_ schema.Source, raw []byte) bool {
	return detectJSONSchema(raw)
}

// Load fetches the raw JSON Schema document.
func (a *Adapter) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if a == nil || a.loader == nil {
		return schema.Document{}, errors.New("jsonschema adapter: loader is nil")
	}
	doc, err := a.loader.Load(ctx, src)
	if err != nil {
		return schema.Document{}, err
	}
	return schema.NewDocument(doc.Source(), doc.Raw())
}

// Normalize resolves external refs and converts JSON Schema into the canonical
// schema IR. Local refs into $defs survive as Ref pointers so the field spec
// builder can resolve self-referential definitions lazily.
func (a *Adapter) Normalize(ctx context.Context, doc schema.Document, opts schema.NormalizeOptions) (schema.SchemaIR, error) {
	if a == nil || a.resolver == nil {
		return schema.SchemaIR{}, errors.New("jsonschema adapter: resolver is nil")
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return schema.SchemaIR{}, errors.New("jsonschema adapter: empty document")
	}

	payload, err := parseJSONSchema(raw)
	if err != nil {
		return schema.SchemaIR{}, err
	}

	if err := validateDialect(payload); err != nil {
		return schema.SchemaIR{}, err
	}

	resolved, err := a.resolver.Resolve(ctx, doc, payload)
	if err != nil {
		return schema.SchemaIR{}, err
	}

	if len(opts.Overlay) > 0 {
		overlay, err := ParseOverlay(opts.Overlay)
		if err != nil {
			return schema.SchemaIR{}, err
		}
		if err := ApplyOverlay(resolved, overlay); err != nil {
			return schema.SchemaIR{}, err
		}
	}

	canonical, err := schemaFromJSONSchema(resolved, "#", propertyOrders(raw))
	if err != nil {
		return schema.SchemaIR{}, err
	}

	forms, err := DiscoverFormsFromMap(resolved, FormDiscoveryOptions{
		DefaultFormID: opts.DefaultFormID,
	})
	if err != nil {
		return schema.SchemaIR{}, err
	}

	if opts.FormID != "" {
		filtered := make([]schema.FormRef, 0, 1)
		for _, ref := range forms {
			if ref.ID == opts.FormID {
				filtered = append(filtered, ref)
				break
			}
		}
		if len(filtered) == 0 {
			return schema.SchemaIR{}, fmt.Errorf("jsonschema adapter: form %q not found", opts.FormID)
		}
		forms = filtered
	}

	ir := schema.NewSchemaIR()
	for _, ref := range forms {
		ir.Forms[ref.ID] = schema.Form{
			ID:          ref.ID,
			Summary:     ref.Summary,
			Description: ref.Description,
			Schema:      canonical,
		}
	}
	return ir, nil
}

// Forms returns the list of available form references.
func (a *Adapter) Forms(_ context.Context, ir schema.SchemaIR) ([]schema.FormRef, error) {
	return ir.FormRefs(), nil
}

func parseJSONSchema(raw []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("jsonschema: raw schema is empty")
	}

	var payload map[string]any
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return nil, fmt.Errorf("jsonschema: parse schema: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(trimmed, &payload); err != nil {
			return nil, fmt.Errorf("jsonschema: parse schema: %w", err)
		}
		payload = normalizeYAMLValue(payload).(map[string]any)
	}
	if payload == nil {
		return nil, errors.New("jsonschema: schema is nil")
	}
	return payload, nil
}

// normalizeYAMLValue rewrites yaml.v3 decoding artifacts (map[any]any keys,
// integer numbers) into the JSON-shaped values the rest of the pipeline
// expects.
func normalizeYAMLValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = normalizeYAMLValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprintf("%v", key)] = normalizeYAMLValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalizeYAMLValue(item)
		}
		return out
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	default:
		return typed
	}
}

// validateDialect rejects documents that declare a dialect other than draft
// 2020-12. Documents without $schema pass; structurally JSON-Schema-like
// input is accepted as-is.
func validateDialect(payload map[string]any) error {
	raw := strings.TrimSpace(readString(payload, "$schema"))
	if raw == "" {
		return nil
	}
	if !isDraft202012(raw) {
		return fmt.Errorf("jsonschema: unsupported $schema %q", raw)
	}
	return nil
}

func isDraft202012(value string) bool {
	trimmed := strings.TrimSuffix(strings.TrimSpace(value), "#")
	switch trimmed {
	case "https://json-schema.org/draft/2020-12/schema", "http://json-schema.org/draft/2020-12/schema":
		return true
	default:
		return false
	}
}

func detectJSONSchema(raw []byte) bool {
	payload, err := parseJSONSchema(raw)
	if err != nil {
		return false
	}
	if _, ok := payload["openapi"]; ok {
		return false
	}
	if _, ok := payload["swagger"]; ok {
		return false
	}
	for _, key := range []string{"$schema", "$id", "$defs", "properties", "type", "items"} {
		if _, ok := payload[key]; ok {
			return true
		}
	}
	return false
}
