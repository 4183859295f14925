package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formspec/pkg/schema"
)

func (o *Orchestrator) resolveAdapter(ctx context.Context, req Request) (schema.FormatAdapter, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: adapter registry is nil")
	}

	if format := strings.TrimSpace(req.Format); format != "" {
		return o.registry.Get(format)
	}

	raw, src, err := o.rawForDetection(ctx, req)
	if err != nil {
		return nil, err
	}

	matches := o.registry.Detect(src, raw)
	switch len(matches) {
	case 0:
		if o.defaultAdapter == "" {
			return nil, errors.New("orchestrator: unable to detect format")
		}
		return o.registry.Get(o.defaultAdapter)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("orchestrator: multiple adapters matched payload (%s), specify format", formatAdapterNames(matches))
	}
}

func (o *Orchestrator) resolveDocument(ctx context.Context, req Request, adapter schema.FormatAdapter) (schema.Document, error) {
	if req.Document != nil {
		return *req.Document, nil
	}
	if req.Source == nil {
		return schema.Document{}, errors.New("orchestrator: source or document is required")
	}
	if adapter == nil {
		return schema.Document{}, errors.New("orchestrator: adapter is nil")
	}
	doc, err := adapter.Load(ctx, req.Source)
	if err != nil {
		return schema.Document{}, fmt.Errorf("orchestrator: load document: %w", err)
	}
	return doc, nil
}

// rawForDetection fetches the payload once so every registered adapter can
// sniff it. Any adapter's loader will do; they share source semantics.
func (o *Orchestrator) rawForDetection(ctx context.Context, req Request) ([]byte, schema.Source, error) {
	switch {
	case req.Document != nil:
		return req.Document.Raw(), req.Document.Source(), nil
	case req.Source != nil:
		var lastErr error
		for _, name := range o.registry.List() {
			adapter, err := o.registry.Get(name)
			if err != nil {
				continue
			}
			doc, err := adapter.Load(ctx, req.Source)
			if err != nil {
				lastErr = err
				continue
			}
			return doc.Raw(), req.Source, nil
		}
		if lastErr != nil {
			return nil, nil, fmt.Errorf("orchestrator: load document for detection: %w", lastErr)
		}
		return nil, nil, errors.New("orchestrator: no adapters registered")
	default:
		return nil, nil, errors.New("orchestrator: source or document is required")
	}
}

func formatFormRefs(refs []schema.FormRef) string {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.ID != "" {
			ids = append(ids, ref.ID)
		}
	}
	if len(ids) == 0 {
		return "none"
	}
	return strings.Join(ids, ", ")
}

func formatAdapterNames(adapters []schema.FormatAdapter) string {
	names := make([]string, 0, len(adapters))
	for _, adapter := range adapters {
		if adapter == nil {
			continue
		}
		if name := strings.TrimSpace(adapter.Name()); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}
