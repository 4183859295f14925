package orchestrator

import (
	"context"

	"github.com/goliatone/go-formspec/pkg/fieldspec"
)

// Transformer mutates a field spec tree after building, before it reaches
// callers. Use it for cross-cutting adjustments that do not belong in the
// schema itself, such as forcing widget formats or pruning internal fields.
type Transformer interface {
	Transform(ctx context.Context, spec *fieldspec.Field) error
}

// TransformerFunc adapts a function into a Transformer.
type TransformerFunc func(ctx context.Context, spec *fieldspec.Field) error

// Transform calls the underlying function.
func (fn TransformerFunc) Transform(ctx context.Context, spec *fieldspec.Field) error {
	return fn(ctx, spec)
}

// Transformers composes several transformers into one, applied in order.
type Transformers []Transformer

// Transform applies each transformer, stopping at the first error.
func (ts Transformers) Transform(ctx context.Context, spec *fieldspec.Field) error {
	for _, t := range ts {
		if t == nil {
			continue
		}
		if err := t.Transform(ctx, spec); err != nil {
			return err
		}
	}
	return nil
}
