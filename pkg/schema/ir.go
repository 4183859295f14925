package schema

import (
	"context"
	"sort"
	"strings"
)

// NormalizeOptions supplies optional hints to adapters during normalization.
type NormalizeOptions struct {
	// FormID optionally pins normalization to a specific form identifier.
	FormID string
	// DefaultFormID names the form synthesized for single-schema documents.
	DefaultFormID string
	// Overlay carries a raw overlay document with out-of-band field metadata.
	// Adapters that do not support overlays ignore it.
	Overlay []byte
}

// Form describes a normalized form entry extracted from a source document.
type Form struct {
	ID          string
	Method      string
	Endpoint    string
	Summary     string
	Description string
	Schema      Schema
	Extensions  map[string]any
}

// Schema is the canonical schema IR consumed by the field spec builder. It is
// a superset of the JSON Schema subset the adapters understand: wrapper facts
// (nullability, defaults, read-only) are carried as flags on the node so the
// unwrapper never needs to branch on source-dialect encodings.
type Schema struct {
	Ref         string
	Type        string
	Types       []string
	Format      string
	Title       string
	Description string
	Default     any
	HasDefault  bool
	Const       any
	HasConst    bool
	Enum        []any
	Required    []string

	Properties map[string]Schema
	// PropertyOrder preserves the declaration order of Properties for
	// adapters able to recover it; decoding through Go maps alone cannot.
	PropertyOrder        []string
	AdditionalProperties *Schema
	PropertyNames        *Schema

	Items       *Schema
	PrefixItems []Schema

	OneOf         []Schema
	AnyOf         []Schema
	AllOf         []Schema
	Discriminator string

	Nullable bool
	ReadOnly bool

	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum bool
	ExclusiveMaximum bool
	MultipleOf       *float64
	MinLength        *int
	MaxLength        *int
	MinItems         *int
	MaxItems         *int
	Pattern          string

	// Defs carries the document's $defs table. Adapters populate it on the
	// root node only; the builder resolves Ref pointers against it lazily so
	// self-referential schemas never expand eagerly.
	Defs map[string]*Schema

	Extensions map[string]any
}

// IsZero reports whether the node carries no usable type information.
func (s Schema) IsZero() bool {
	return s.Type == "" && len(s.Types) == 0 && s.Ref == "" &&
		len(s.Properties) == 0 && s.Items == nil && len(s.Enum) == 0 &&
		!s.HasConst && len(s.OneOf) == 0 && len(s.AnyOf) == 0 && len(s.AllOf) == 0 &&
		s.AdditionalProperties == nil
}

// PropertyKeys returns the property names in declaration order when the
// source adapter recorded one, falling back to sorted order. Keys the order
// list misses (inlined refs, hand-built nodes) append sorted at the end.
func (s Schema) PropertyKeys() []string {
	if len(s.Properties) == 0 {
		return nil
	}
	keys := make([]string, 0, len(s.Properties))
	taken := make(map[string]struct{}, len(s.PropertyOrder))
	for _, key := range s.PropertyOrder {
		if _, ok := s.Properties[key]; !ok {
			continue
		}
		if _, dup := taken[key]; dup {
			continue
		}
		taken[key] = struct{}{}
		keys = append(keys, key)
	}
	rest := make([]string, 0, len(s.Properties)-len(keys))
	for key := range s.Properties {
		if _, ok := taken[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// SchemaIR is the normalized schema set produced by adapters.
type SchemaIR struct {
	Forms map[string]Form
}

// FormRef provides minimal metadata about an available form.
type FormRef struct {
	ID          string
	Title       string
	Summary     string
	Description string
}

// NewSchemaIR constructs an empty schema IR container.
func NewSchemaIR() SchemaIR {
	return SchemaIR{Forms: make(map[string]Form)}
}

// Form looks up a form by id.
func (ir SchemaIR) Form(id string) (Form, bool) {
	if ir.Forms == nil {
		return Form{}, false
	}
	form, ok := ir.Forms[id]
	return form, ok
}

// FormRefs returns a sorted list of available form references.
func (ir SchemaIR) FormRefs() []FormRef {
	if len(ir.Forms) == 0 {
		return nil
	}
	ids := make([]string, 0, len(ir.Forms))
	for id := range ir.Forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	refs := make([]FormRef, 0, len(ids))
	for _, id := range ids {
		form := ir.Forms[id]
		refID := form.ID
		if strings.TrimSpace(refID) == "" {
			refID = id
		}
		refs = append(refs, FormRef{
			ID:          refID,
			Title:       strings.TrimSpace(form.Summary),
			Summary:     form.Summary,
			Description: form.Description,
		})
	}
	return refs
}

// FormatAdapter normalizes source documents into the canonical IR.
type FormatAdapter interface {
	Name() string
	Detect(src Source, raw []byte) bool
	Load(ctx context.Context, src Source) (Document, error)
	Normalize(ctx context.Context, doc Document, opts NormalizeOptions) (SchemaIR, error)
	Forms(ctx context.Context, ir SchemaIR) ([]FormRef, error)
}
