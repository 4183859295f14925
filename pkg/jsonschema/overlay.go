package jsonschema

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

const overlaySchemaID = "x-formspec-overlay/v1"

// Overlay carries out-of-band field metadata for a schema document: labels,
// help text, and widget hints addressed by JSON Pointer, kept separate so
// upstream schemas stay untouched.
type Overlay struct {
	Overrides []OverlayOverride
}

// OverlayOverride targets a schema node using a JSON Pointer and supplies
// extension overrides.
type OverlayOverride struct {
	Path       string
	Extensions map[string]any
}

// OverlayError reports malformed overlay documents or invalid override paths.
type OverlayError struct {
	Path    string
	Message string
}

func (e OverlayError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "invalid overlay"
	}
	if strings.TrimSpace(e.Path) == "" {
		return "jsonschema overlay: " + msg
	}
	return fmt.Sprintf("jsonschema overlay: %s (%s)", msg, e.Path)
}

// ParseOverlay parses a raw overlay document and extracts extension overrides.
func ParseOverlay(raw []byte) (Overlay, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return Overlay{}, OverlayError{Message: "overlay document is empty"}
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Overlay{}, OverlayError{Message: fmt.Sprintf("parse overlay: %v", err)}
	}
	if payload == nil {
		return Overlay{}, OverlayError{Message: "overlay document is nil"}
	}

	dialect := strings.TrimSuffix(strings.TrimSpace(readString(payload, "$schema")), "#")
	if dialect == "" {
		return Overlay{}, OverlayError{Message: "$schema is required"}
	}
	if dialect != overlaySchemaID {
		return Overlay{}, OverlayError{Message: fmt.Sprintf("unsupported $schema %q", dialect)}
	}

	rawOverrides, ok := payload["overrides"]
	if !ok {
		return Overlay{}, nil
	}
	list, ok := rawOverrides.([]any)
	if !ok {
		return Overlay{}, OverlayError{Message: "overrides must be an array"}
	}

	overrides := make([]OverlayOverride, 0, len(list))
	for idx, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			return Overlay{}, OverlayError{Message: fmt.Sprintf("overrides[%d] must be an object", idx)}
		}
		path := strings.TrimSpace(readString(entry, "path"))
		if path == "" {
			return Overlay{}, OverlayError{Message: fmt.Sprintf("overrides[%d].path is required", idx)}
		}

		extensions := make(map[string]any)
		for key, value := range entry {
			switch {
			case key == "path":
				continue
			case key == "x-formspec":
				if _, ok := value.(map[string]any); !ok {
					return Overlay{}, OverlayError{Path: path, Message: fmt.Sprintf("%s must be an object", key)}
				}
				extensions[key] = value
			case strings.HasPrefix(key, "x-formspec-"):
				extensions[key] = value
			}
		}
		if len(extensions) == 0 {
			continue
		}
		overrides = append(overrides, OverlayOverride{Path: path, Extensions: extensions})
	}
	return Overlay{Overrides: overrides}, nil
}

// ApplyOverlay mutates the resolved schema payload with overlay overrides.
func ApplyOverlay(payload map[string]any, overlay Overlay) error {
	if payload == nil || len(overlay.Overrides) == 0 {
		return nil
	}
	for _, override := range overlay.Overrides {
		target, err := resolveOverlayTarget(payload, override.Path)
		if err != nil {
			return OverlayError{Path: override.Path, Message: err.Error()}
		}
		for key, value := range override.Extensions {
			if key == "x-formspec" {
				overrideMap, _ := value.(map[string]any)
				mergeExtensionMap(target, key, overrideMap)
				continue
			}
			target[key] = value
		}
	}
	return nil
}

func resolveOverlayTarget(root map[string]any, pointer string) (map[string]any, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(pointer), "#")
	if trimmed == "" || trimmed == "/" {
		return root, nil
	}
	if !strings.HasPrefix(trimmed, "/") {
		return nil, fmt.Errorf("path must be a JSON pointer")
	}

	current := any(root)
	for _, part := range strings.Split(trimmed, "/")[1:] {
		decoded, err := url.PathUnescape(part)
		if err != nil {
			return nil, fmt.Errorf("invalid json pointer %q", pointer)
		}
		decoded = strings.ReplaceAll(decoded, "~1", "/")
		decoded = strings.ReplaceAll(decoded, "~0", "~")

		switch typed := current.(type) {
		case map[string]any:
			value, ok := typed[decoded]
			if !ok {
				return nil, fmt.Errorf("path not found")
			}
			current = value
		case []any:
			idx, err := strconv.Atoi(decoded)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil, fmt.Errorf("path not found")
			}
			current = typed[idx]
		default:
			return nil, fmt.Errorf("path not found")
		}
	}

	target, ok := current.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("path does not resolve to an object")
	}
	return target, nil
}

func mergeExtensionMap(target map[string]any, key string, override map[string]any) {
	if target == nil || override == nil {
		return
	}
	existing, _ := target[key].(map[string]any)
	if existing == nil {
		existing = make(map[string]any, len(override))
	}
	for nestedKey, value := range override {
		existing[nestedKey] = value
	}
	target[key] = existing
}
