package jsonschema

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/goliatone/go-formspec/pkg/schema"
)

const fallbackFormID = "default"

// FormDiscoveryOptions configures fallback naming when no explicit forms exist.
type FormDiscoveryOptions struct {
	// DefaultFormID names the synthesized form for documents without an
	// x-formspec forms block.
	DefaultFormID string
}

// DiscoverFormsFromBytes parses a JSON schema document and returns form refs.
func DiscoverFormsFromBytes(raw []byte, opts FormDiscoveryOptions) ([]schema.FormRef, error) {
	if len(raw) == 0 {
		return nil, errors.New("jsonschema: raw schema is empty")
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("jsonschema: parse schema: %w", err)
	}
	return DiscoverFormsFromMap(payload, opts)
}

// DiscoverFormsFromMap derives form identifiers from a JSON schema document.
// Explicit x-formspec forms win; otherwise one form is synthesized from the
// configured default id, the document's $id, or its title.
func DiscoverFormsFromMap(payload map[string]any, opts FormDiscoveryOptions) ([]schema.FormRef, error) {
	if payload == nil {
		return nil, errors.New("jsonschema: schema is nil")
	}

	if refs, ok, err := formsFromExtension(payload); err != nil {
		return nil, err
	} else if ok {
		return refs, nil
	}

	id := strings.TrimSpace(opts.DefaultFormID)
	if id == "" {
		id = strings.TrimSpace(readString(payload, "$id"))
	}
	if id == "" {
		id = strings.TrimSpace(readString(payload, "title"))
	}
	if id == "" {
		id = fallbackFormID
	}
	return []schema.FormRef{{
		ID:          id,
		Title:       strings.TrimSpace(readString(payload, "title")),
		Description: strings.TrimSpace(readString(payload, "description")),
	}}, nil
}

func formsFromExtension(payload map[string]any) ([]schema.FormRef, bool, error) {
	raw, ok := payload["x-formspec"]
	if !ok {
		return nil, false, nil
	}
	meta, ok := raw.(map[string]any)
	if !ok {
		return nil, true, errors.New("jsonschema: x-formspec must be an object")
	}

	formsRaw, ok := meta["forms"]
	if !ok {
		return nil, false, nil
	}
	list, ok := formsRaw.([]any)
	if !ok {
		return nil, true, errors.New("jsonschema: x-formspec.forms must be an array")
	}
	if len(list) == 0 {
		return nil, true, errors.New("jsonschema: x-formspec.forms is empty")
	}

	refs := make([]schema.FormRef, 0, len(list))
	for idx, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, true, fmt.Errorf("jsonschema: x-formspec.forms[%d] must be an object", idx)
		}
		id := strings.TrimSpace(readString(entry, "id"))
		if id == "" {
			return nil, true, fmt.Errorf("jsonschema: x-formspec.forms[%d].id is required", idx)
		}
		refs = append(refs, schema.FormRef{
			ID:          id,
			Title:       strings.TrimSpace(readString(entry, "title")),
			Summary:     strings.TrimSpace(readString(entry, "summary")),
			Description: strings.TrimSpace(readString(entry, "description")),
		})
	}
	return refs, true, nil
}
