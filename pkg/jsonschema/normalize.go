package jsonschema

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/goliatone/go-formspec/pkg/schema"
)

// schemaFromJSONSchema converts a JSON Schema payload into the canonical
// schema tree. Keywords outside the supported subset are skipped rather than
// rejected; unsupported structures surface later as classification errors
// with a field path attached. Local $defs refs stay as Ref pointers and the
// root node carries the $defs table for lazy resolution. The orders table
// (keyed by JSON pointer, recovered from the raw document) restores the
// declaration order of properties that map decoding discards.
func schemaFromJSONSchema(node any, path string, orders map[string][]string) (schema.Schema, error) {
	out, err := convertNode(node, path, orders)
	if err != nil {
		return schema.Schema{}, err
	}

	payload, _ := node.(map[string]any)
	if defsRaw, ok := payload["$defs"]; ok {
		defs, ok := defsRaw.(map[string]any)
		if !ok {
			return schema.Schema{}, fmt.Errorf("jsonschema: $defs must be an object at %s", path)
		}
		out.Defs = make(map[string]*schema.Schema, len(defs))
		for _, key := range sortedKeys(defs) {
			converted, err := convertNode(defs[key], joinPath(path, "$defs", key), orders)
			if err != nil {
				return schema.Schema{}, err
			}
			def := converted
			out.Defs[key] = &def
		}
	}
	return out, nil
}

func convertNode(node any, path string, orders map[string][]string) (schema.Schema, error) {
	if node == nil {
		return schema.Schema{}, fmt.Errorf("jsonschema: schema is nil at %s", path)
	}
	if allowed, ok := node.(bool); ok {
		// Boolean schemas: true admits anything, which the classifier reports
		// as typeless; false admits nothing and has no form mapping at all.
		if allowed {
			return schema.Schema{}, nil
		}
		return schema.Schema{}, fmt.Errorf("jsonschema: false schema at %s", path)
	}
	payload, ok := node.(map[string]any)
	if !ok {
		return schema.Schema{}, fmt.Errorf("jsonschema: schema must be an object at %s", path)
	}

	out := schema.Schema{
		Ref:         strings.TrimSpace(readString(payload, "$ref")),
		Title:       strings.TrimSpace(readString(payload, "title")),
		Description: strings.TrimSpace(readString(payload, "description")),
		Format:      strings.TrimSpace(readString(payload, "format")),
		Pattern:     readString(payload, "pattern"),
		Extensions:  extractExtensions(payload),
	}

	if err := readType(payload, &out, path); err != nil {
		return schema.Schema{}, err
	}

	if value, ok := payload["default"]; ok {
		out.Default = value
		out.HasDefault = true
	}
	if value, ok := payload["const"]; ok {
		out.Const = value
		out.HasConst = true
	}
	if value, ok := payload["nullable"].(bool); ok {
		out.Nullable = value
	}
	if value, ok := payload["readOnly"].(bool); ok {
		out.ReadOnly = value
	}

	if enumRaw, ok := payload["enum"]; ok {
		list, ok := enumRaw.([]any)
		if !ok {
			return schema.Schema{}, fmt.Errorf("jsonschema: enum must be an array at %s", path)
		}
		out.Enum = append([]any(nil), list...)
	}

	if err := readRequired(payload, &out, path); err != nil {
		return schema.Schema{}, err
	}
	if err := readNumericBounds(payload, &out, path); err != nil {
		return schema.Schema{}, err
	}
	if err := readSizeBounds(payload, &out, path); err != nil {
		return schema.Schema{}, err
	}

	if propsRaw, ok := payload["properties"]; ok {
		props, ok := propsRaw.(map[string]any)
		if !ok {
			return schema.Schema{}, fmt.Errorf("jsonschema: properties must be an object at %s", path)
		}
		out.Properties = make(map[string]schema.Schema, len(props))
		for _, key := range sortedKeys(props) {
			converted, err := convertNode(props[key], joinPath(path, "properties", key), orders)
			if err != nil {
				return schema.Schema{}, err
			}
			out.Properties[key] = converted
		}
		out.PropertyOrder = declaredOrder(orders, joinPath(path, "properties"), props)
	}

	if apRaw, ok := payload["additionalProperties"]; ok {
		switch typed := apRaw.(type) {
		case bool:
			// "additionalProperties": true on a propertyless object is a
			// record of typeless values; leave it unset so the classifier
			// reports it, and drop false which only tightens objects.
		case map[string]any:
			converted, err := convertNode(typed, joinPath(path, "additionalProperties"), orders)
			if err != nil {
				return schema.Schema{}, err
			}
			out.AdditionalProperties = &converted
		default:
			return schema.Schema{}, fmt.Errorf("jsonschema: additionalProperties must be a schema or boolean at %s", path)
		}
	}

	if pnRaw, ok := payload["propertyNames"]; ok {
		converted, err := convertNode(pnRaw, joinPath(path, "propertyNames"), orders)
		if err != nil {
			return schema.Schema{}, err
		}
		out.PropertyNames = &converted
	}

	if itemsRaw, ok := payload["items"]; ok {
		switch typed := itemsRaw.(type) {
		case map[string]any, bool:
			converted, err := convertNode(typed, joinPath(path, "items"), orders)
			if err != nil {
				return schema.Schema{}, err
			}
			out.Items = &converted
		case []any:
			// Draft-07 tuple syntax. Keep as prefix items so the classifier
			// rejects tuples with the proper field path.
			if err := readPrefixItems(typed, &out, path, orders); err != nil {
				return schema.Schema{}, err
			}
		default:
			return schema.Schema{}, fmt.Errorf("jsonschema: items must be a schema at %s", path)
		}
	}
	if prefixRaw, ok := payload["prefixItems"]; ok {
		list, ok := prefixRaw.([]any)
		if !ok {
			return schema.Schema{}, fmt.Errorf("jsonschema: prefixItems must be an array at %s", path)
		}
		if err := readPrefixItems(list, &out, path, orders); err != nil {
			return schema.Schema{}, err
		}
	}

	for _, keyword := range []string{"oneOf", "anyOf", "allOf"} {
		raw, ok := payload[keyword]
		if !ok {
			continue
		}
		list, ok := raw.([]any)
		if !ok {
			return schema.Schema{}, fmt.Errorf("jsonschema: %s must be an array at %s", keyword, path)
		}
		if len(list) == 0 {
			return schema.Schema{}, fmt.Errorf("jsonschema: %s must include at least one schema at %s", keyword, path)
		}
		branches := make([]schema.Schema, 0, len(list))
		for idx, entry := range list {
			converted, err := convertNode(entry, joinPath(path, keyword, fmt.Sprintf("%d", idx)), orders)
			if err != nil {
				return schema.Schema{}, err
			}
			branches = append(branches, converted)
		}
		switch keyword {
		case "oneOf":
			out.OneOf = branches
		case "anyOf":
			out.AnyOf = branches
		case "allOf":
			out.AllOf = branches
		}
	}

	if discRaw, ok := payload["discriminator"]; ok {
		switch typed := discRaw.(type) {
		case string:
			out.Discriminator = strings.TrimSpace(typed)
		case map[string]any:
			out.Discriminator = strings.TrimSpace(readString(typed, "propertyName"))
		}
	}

	return out, nil
}

func readType(payload map[string]any, out *schema.Schema, path string) error {
	raw, ok := payload["type"]
	if !ok {
		return nil
	}
	switch typed := raw.(type) {
	case string:
		out.Type = strings.TrimSpace(typed)
	case []any:
		types := make([]string, 0, len(typed))
		for idx, entry := range typed {
			str, ok := entry.(string)
			if !ok {
				return fmt.Errorf("jsonschema: type[%d] must be a string at %s", idx, path)
			}
			types = append(types, strings.TrimSpace(str))
		}
		if len(types) == 1 {
			out.Type = types[0]
		} else {
			out.Types = types
		}
	default:
		return fmt.Errorf("jsonschema: type must be a string or array at %s", path)
	}
	return nil
}

func readRequired(payload map[string]any, out *schema.Schema, path string) error {
	raw, ok := payload["required"]
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return fmt.Errorf("jsonschema: required must be an array at %s", path)
	}
	required := make([]string, 0, len(list))
	for idx, item := range list {
		str, ok := item.(string)
		if !ok || strings.TrimSpace(str) == "" {
			return fmt.Errorf("jsonschema: required[%d] must be a string at %s", idx, path)
		}
		required = append(required, str)
	}
	out.Required = required
	return nil
}

func readNumericBounds(payload map[string]any, out *schema.Schema, path string) error {
	if raw, ok := payload["minimum"]; ok {
		value, ok := toFloat(raw)
		if !ok {
			return fmt.Errorf("jsonschema: minimum must be a number at %s", path)
		}
		out.Minimum = &value
	}
	if raw, ok := payload["maximum"]; ok {
		value, ok := toFloat(raw)
		if !ok {
			return fmt.Errorf("jsonschema: maximum must be a number at %s", path)
		}
		out.Maximum = &value
	}
	if raw, ok := payload["exclusiveMinimum"]; ok {
		switch typed := raw.(type) {
		case bool:
			out.ExclusiveMinimum = typed
		default:
			value, ok := toFloat(raw)
			if !ok {
				return fmt.Errorf("jsonschema: exclusiveMinimum must be a number at %s", path)
			}
			if out.Minimum == nil {
				out.Minimum = &value
			}
			out.ExclusiveMinimum = true
		}
	}
	if raw, ok := payload["exclusiveMaximum"]; ok {
		switch typed := raw.(type) {
		case bool:
			out.ExclusiveMaximum = typed
		default:
			value, ok := toFloat(raw)
			if !ok {
				return fmt.Errorf("jsonschema: exclusiveMaximum must be a number at %s", path)
			}
			if out.Maximum == nil {
				out.Maximum = &value
			}
			out.ExclusiveMaximum = true
		}
	}
	if raw, ok := payload["multipleOf"]; ok {
		value, ok := toFloat(raw)
		if !ok || value <= 0 {
			return fmt.Errorf("jsonschema: multipleOf must be a positive number at %s", path)
		}
		out.MultipleOf = &value
	}
	return nil
}

func readSizeBounds(payload map[string]any, out *schema.Schema, path string) error {
	bounds := []struct {
		keyword string
		target  **int
	}{
		{"minLength", &out.MinLength},
		{"maxLength", &out.MaxLength},
		{"minItems", &out.MinItems},
		{"maxItems", &out.MaxItems},
	}
	for _, bound := range bounds {
		raw, ok := payload[bound.keyword]
		if !ok {
			continue
		}
		value, ok := toInt(raw)
		if !ok || value < 0 {
			return fmt.Errorf("jsonschema: %s must be a non-negative integer at %s", bound.keyword, path)
		}
		*bound.target = &value
	}
	return nil
}

func readPrefixItems(list []any, out *schema.Schema, path string, orders map[string][]string) error {
	out.PrefixItems = make([]schema.Schema, 0, len(list))
	for idx, entry := range list {
		converted, err := convertNode(entry, joinPath(path, "prefixItems", fmt.Sprintf("%d", idx)), orders)
		if err != nil {
			return err
		}
		out.PrefixItems = append(out.PrefixItems, converted)
	}
	return nil
}

// declaredOrder filters a recorded declaration order down to the keys that
// decoded. Nodes without a recorded order (inlined external refs) return nil
// so PropertyKeys falls back to sorted keys.
func declaredOrder(orders map[string][]string, pointer string, props map[string]any) []string {
	recorded, ok := orders[pointer]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(recorded))
	for _, key := range recorded {
		if _, ok := props[key]; ok {
			keys = append(keys, key)
		}
	}
	return keys
}

func isVendorExtension(key string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(key)), "x-")
}

func extractExtensions(payload map[string]any) map[string]any {
	var extensions map[string]any
	for _, key := range sortedKeys(payload) {
		if !isVendorExtension(key) {
			continue
		}
		if extensions == nil {
			extensions = make(map[string]any)
		}
		extensions[key] = payload[key]
	}
	return extensions
}

func readString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	str, _ := payload[key].(string)
	return str
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
		return 0, false
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

func joinPath(path string, segments ...string) string {
	if path == "" {
		path = "#"
	}
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		path = path + "/" + escapeJSONPointer(segment)
	}
	return path
}

func escapeJSONPointer(value string) string {
	replacer := strings.NewReplacer("~", "~0", "/", "~1")
	return replacer.Replace(value)
}

func sortedKeys(payload map[string]any) []string {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
