package orchestrator

import (
	"context"
	"errors"
	"fmt"

	jsonschemaLoader "github.com/goliatone/go-formspec/internal/jsonschema/loader"
	openapiLoader "github.com/goliatone/go-formspec/internal/openapi/loader"
	openapiParser "github.com/goliatone/go-formspec/internal/openapi/parser"
	"github.com/goliatone/go-formspec/pkg/fieldspec"
	"github.com/goliatone/go-formspec/pkg/formvalue"
	pkgjsonschema "github.com/goliatone/go-formspec/pkg/jsonschema"
	pkgopenapi "github.com/goliatone/go-formspec/pkg/openapi"
	"github.com/goliatone/go-formspec/pkg/schema"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithAdapters registers additional format adapters.
func WithAdapters(adapters ...schema.FormatAdapter) Option {
	return func(o *Orchestrator) {
		o.pending = append(o.pending, adapters...)
	}
}

// WithDefaultAdapter names the adapter used when detection is inconclusive.
func WithDefaultAdapter(name string) Option {
	return func(o *Orchestrator) {
		o.defaultAdapter = name
	}
}

// WithBuilderOptions configures the field spec builder (labels, overrides,
// heuristics).
func WithBuilderOptions(options ...fieldspec.BuilderOption) Option {
	return func(o *Orchestrator) {
		o.builderOptions = append(o.builderOptions, options...)
	}
}

// WithTransformer registers a hook that can mutate the field spec tree after
// building, before it reaches callers.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithDeepValidator installs a leaf-level constraint checker for sessions.
func WithDeepValidator(deep formvalue.DeepValidator) Option {
	return func(o *Orchestrator) {
		o.deep = deep
	}
}

// WithoutDeepValidation disables the built-in constraint checker so sessions
// guarantee only the presence contract.
func WithoutDeepValidation() Option {
	return func(o *Orchestrator) {
		o.noDeep = true
	}
}

// Orchestrator coordinates the pipeline from schema document to field spec
// tree and value sessions. Missing dependencies initialise with the built-in
// implementations so callers start with a single constructor call.
type Orchestrator struct {
	registry       *AdapterRegistry
	defaultAdapter string
	builderOptions []fieldspec.BuilderOption
	transformer    Transformer
	deep           formvalue.DeepValidator
	noDeep         bool

	pending         []schema.FormatAdapter
	defaultsApplied bool
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{}
	for _, opt := range options {
		if opt != nil {
			opt(o)
		}
	}
	o.applyDefaults()
	return o
}

// Request describes the inputs required to derive a field spec.
type Request struct {
	// Source identifies where the schema document lives. Optional when
	// Document is supplied.
	Source schema.Source

	// Document allows callers to bypass loading when they already have a raw
	// payload.
	Document *schema.Document

	// Format forces a specific adapter by name. Empty means auto-detect.
	Format string

	// FormID selects which form to build when the document describes several
	// (e.g. one per OpenAPI operation). Empty means the document must contain
	// exactly one form.
	FormID string
}

// Forms lists the form references a document exposes.
func (o *Orchestrator) Forms(ctx context.Context, req Request) ([]schema.FormRef, error) {
	_, ir, err := o.normalize(ctx, req)
	if err != nil {
		return nil, err
	}
	return ir.FormRefs(), nil
}

// FieldSpec executes adapter → IR → builder and returns the field spec tree
// for the requested form.
func (o *Orchestrator) FieldSpec(ctx context.Context, req Request) (*fieldspec.Field, error) {
	form, _, err := o.normalize(ctx, req)
	if err != nil {
		return nil, err
	}

	builder := fieldspec.NewBuilder(o.builderOptions...)
	name := form.ID
	if name == "" {
		name = "form"
	}
	spec, err := builder.Build(name, form.Schema)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build field spec: %w", err)
	}

	if o.transformer != nil {
		if err := o.transformer.Transform(ctx, spec); err != nil {
			return nil, fmt.Errorf("orchestrator: transform field spec: %w", err)
		}
	}
	return spec, nil
}

// Session derives the field spec and wraps it with the value-side operations
// a form consumer needs: initial defaults and submit handling.
func (o *Orchestrator) Session(ctx context.Context, req Request) (*Session, error) {
	spec, err := o.FieldSpec(ctx, req)
	if err != nil {
		return nil, err
	}
	validatorOptions := []formvalue.ValidatorOption{}
	if deep := o.deepValidator(); deep != nil {
		validatorOptions = append(validatorOptions, formvalue.WithDeepValidator(deep))
	}
	return &Session{
		spec:      spec,
		validator: formvalue.NewValidator(validatorOptions...),
	}, nil
}

func (o *Orchestrator) deepValidator() formvalue.DeepValidator {
	if o.noDeep {
		return nil
	}
	if o.deep != nil {
		return o.deep
	}
	return formvalue.NewTagValidator()
}

func (o *Orchestrator) normalize(ctx context.Context, req Request) (schema.Form, schema.SchemaIR, error) {
	if ctx == nil {
		return schema.Form{}, schema.SchemaIR{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return schema.Form{}, schema.SchemaIR{}, err
	}
	if err := o.initialiseErr; err != nil {
		return schema.Form{}, schema.SchemaIR{}, err
	}

	adapter, err := o.resolveAdapter(ctx, req)
	if err != nil {
		return schema.Form{}, schema.SchemaIR{}, err
	}
	doc, err := o.resolveDocument(ctx, req, adapter)
	if err != nil {
		return schema.Form{}, schema.SchemaIR{}, err
	}

	ir, err := adapter.Normalize(ctx, doc, schema.NormalizeOptions{FormID: req.FormID})
	if err != nil {
		return schema.Form{}, schema.SchemaIR{}, fmt.Errorf("orchestrator: normalize document: %w", err)
	}

	if req.FormID != "" {
		form, ok := ir.Form(req.FormID)
		if !ok {
			return schema.Form{}, schema.SchemaIR{}, fmt.Errorf("orchestrator: form %q not found (available: %s)", req.FormID, formatFormRefs(ir.FormRefs()))
		}
		return form, ir, nil
	}

	refs := ir.FormRefs()
	switch len(refs) {
	case 0:
		return schema.Form{}, schema.SchemaIR{}, errors.New("orchestrator: document contains no forms")
	case 1:
		form, _ := ir.Form(refs[0].ID)
		return form, ir, nil
	default:
		return schema.Form{}, schema.SchemaIR{}, fmt.Errorf("orchestrator: document contains multiple forms (%s), specify one", formatFormRefs(refs))
	}
}

func (o *Orchestrator) applyDefaults() {
	if o.defaultsApplied {
		return
	}
	o.defaultsApplied = true

	if o.registry == nil {
		o.registry = NewAdapterRegistry()
	}
	for _, adapter := range o.pending {
		if adapter == nil {
			continue
		}
		if err := o.registry.Register(adapter); err != nil {
			o.initialiseErr = err
			return
		}
	}
	o.pending = nil

	if !o.registry.Has(pkgopenapi.DefaultAdapterName) {
		loader := openapiLoader.New(pkgopenapi.NewLoaderOptions())
		parser := openapiParser.New(pkgopenapi.NewParserOptions())
		o.registry.MustRegister(pkgopenapi.NewAdapter(loader, parser))
	}
	if !o.registry.Has(pkgjsonschema.DefaultAdapterName) {
		loader := jsonschemaLoader.New(pkgjsonschema.ResolveLoaderOptions())
		o.registry.MustRegister(pkgjsonschema.NewAdapter(loader))
	}
}

// Session binds a field spec tree to the value-side operations of one form.
type Session struct {
	spec      *fieldspec.Field
	validator *formvalue.Validator
}

// Spec returns the session's field spec tree.
func (s *Session) Spec() *fieldspec.Field {
	return s.spec
}

// Defaults returns the raw value tree the form initializes with.
func (s *Session) Defaults() any {
	return formvalue.Defaults(s.spec)
}

// DefaultsWith derives initial values seeded from an override value.
func (s *Session) DefaultsWith(override any) any {
	return formvalue.DefaultsWith(s.spec, override, true)
}

// Validate checks a raw value tree and returns findings without normalizing.
func (s *Session) Validate(raw any) formvalue.Issues {
	return s.validator.ValidateAt(s.spec, raw, "")
}

// Submit validates the raw value tree and, when it passes, returns the
// canonical value. On failure the issues list is non-empty and the canonical
// value is nil.
func (s *Session) Submit(raw any) (any, formvalue.Issues) {
	if issues := s.validator.ValidateAt(s.spec, raw, ""); len(issues) > 0 {
		return nil, issues
	}
	return formvalue.Normalize(s.spec, raw), nil
}
