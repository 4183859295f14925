package fieldspec

import (
	internal "github.com/goliatone/go-formspec/internal/fieldspec"
	"github.com/goliatone/go-formspec/pkg/schema"
)

// Builder converts canonical schema nodes into field spec trees.
type Builder interface {
	Build(name string, node schema.Schema) (*Field, error)
}

// BuilderOption configures the builder behaviour.
type BuilderOption func(*builderOptions)

type builderOptions struct {
	labeler           func(string) string
	sanitizer         func(string) string
	passwordHeuristic bool
	overrides         Overrides
}

// WithLabeler overrides the default label generation function.
func WithLabeler(labeler func(string) string) BuilderOption {
	return func(opts *builderOptions) {
		opts.labeler = labeler
	}
}

// WithSanitizer overrides the default label/description sanitizer.
func WithSanitizer(sanitizer func(string) string) BuilderOption {
	return func(opts *builderOptions) {
		opts.sanitizer = sanitizer
	}
}

// WithPasswordHeuristic opts in to inferring the password format for string
// fields whose key contains "password".
func WithPasswordHeuristic() BuilderOption {
	return func(opts *builderOptions) {
		opts.passwordHeuristic = true
	}
}

// WithOverrides installs per-field overrides keyed by property name.
func WithOverrides(overrides Overrides) BuilderOption {
	return func(opts *builderOptions) {
		opts.overrides = overrides
	}
}

// NewBuilder returns a Builder backed by the internal implementation.
func NewBuilder(options ...BuilderOption) Builder {
	cfg := builderOptions{}
	for _, opt := range options {
		opt(&cfg)
	}
	return internal.New(internal.Options{
		Labeler:           cfg.labeler,
		Sanitizer:         cfg.sanitizer,
		PasswordHeuristic: cfg.passwordHeuristic,
		Overrides:         cfg.overrides,
	})
}
