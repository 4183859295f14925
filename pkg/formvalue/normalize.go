package formvalue

import (
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-formspec/pkg/fieldspec"
)

// datetimeSeparator joins the date and time halves of a staging pair, matching
// the RFC 3339 layout used by datetime-local widgets.
const datetimeSeparator = "T"

// Normalize projects a raw editing-state value onto the canonical shape the
// schema describes. It is pure and total: missing or malformed input degrades
// to the kind's empty value, and normalizing an already-canonical value
// returns it unchanged. Union staging wrappers collapse to the active
// branch's value, record entry lists fold into mappings, and datetime staging
// pairs join into a single string.
func Normalize(field *fieldspec.Field, raw any) any {
	return normalizeValue(field, raw, map[*fieldspec.Field]struct{}{})
}

func normalizeValue(field *fieldspec.Field, raw any, seen map[*fieldspec.Field]struct{}) any {
	if field == nil {
		return nil
	}
	spec := field.Resolve()

	// A self-referential spec revisited with nothing left in the raw tree
	// projects to its empty value; descending further would rebuild the same
	// empty skeleton forever. Non-empty input keeps descending, bounded by
	// the depth of the raw tree.
	if _, revisit := seen[spec]; revisit {
		if isEmpty(raw) {
			return emptyCanonical(spec.Kind)
		}
	} else {
		seen[spec] = struct{}{}
		defer delete(seen, spec)
	}

	switch spec.Kind {
	case fieldspec.KindString, fieldspec.KindDate, fieldspec.KindTime:
		if str, ok := raw.(string); ok {
			return str
		}
		return ""

	case fieldspec.KindDateTime:
		return normalizeDateTime(raw)

	case fieldspec.KindNumber:
		if num, ok := numericValue(raw); ok {
			return num
		}
		return nil

	case fieldspec.KindBoolean:
		if b, ok := raw.(bool); ok {
			return b
		}
		return false

	case fieldspec.KindEnum:
		switch raw.(type) {
		case string, float64, int, int64:
			return raw
		}
		return nil

	case fieldspec.KindObject:
		return normalizeObject(spec, raw, seen)

	case fieldspec.KindArray:
		return normalizeArray(spec, raw, seen)

	case fieldspec.KindRecord:
		return normalizeRecord(spec, raw, seen)

	case fieldspec.KindUnion:
		return normalizeUnion(spec, raw, seen)
	}
	return nil
}

// emptyCanonical is the kind's canonical empty value, used when a cycle in
// the spec runs out of raw input.
func emptyCanonical(kind fieldspec.Kind) any {
	switch kind {
	case fieldspec.KindString, fieldspec.KindDate, fieldspec.KindTime, fieldspec.KindDateTime:
		return ""
	case fieldspec.KindBoolean:
		return false
	case fieldspec.KindObject, fieldspec.KindRecord:
		return map[string]any{}
	case fieldspec.KindArray:
		return []any{}
	}
	return nil
}

func normalizeDateTime(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case map[string]any:
		date, _ := v["date"].(string)
		timePart, _ := v["time"].(string)
		switch {
		case date != "" && timePart != "":
			return date + datetimeSeparator + timePart
		case date != "":
			return date
		default:
			return ""
		}
	}
	return ""
}

// normalizeObject rebuilds the value from declared properties only; keys the
// schema does not declare never reach canonical output.
func normalizeObject(spec *fieldspec.Field, raw any, seen map[*fieldspec.Field]struct{}) map[string]any {
	source, _ := raw.(map[string]any)
	out := make(map[string]any, len(spec.Fields))
	for _, child := range spec.Fields {
		out[child.Name] = normalizeValue(child, source[child.Name], seen)
	}
	return out
}

func normalizeArray(spec *fieldspec.Field, raw any, seen map[*fieldspec.Field]struct{}) []any {
	items, ok := raw.([]any)
	if !ok {
		return []any{}
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = normalizeValue(spec.Items, item, seen)
	}
	return out
}

// normalizeRecord folds the editing layer's entry list into a key-indexed
// mapping. Entries with an empty key are dropped; numeric-keyed records drop
// entries whose key does not parse as a number.
func normalizeRecord(spec *fieldspec.Field, raw any, seen map[*fieldspec.Field]struct{}) map[string]any {
	switch v := raw.(type) {
	case []any:
		out := make(map[string]any, len(v))
		for _, entry := range v {
			pair, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			key, ok := recordKey(spec.KeyKind, pair["key"])
			if !ok {
				continue
			}
			out[key] = normalizeValue(spec.Values, pair["value"], seen)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, value := range v {
			out[key] = normalizeValue(spec.Values, value, seen)
		}
		return out
	}
	return map[string]any{}
}

func recordKey(keyKind fieldspec.Kind, raw any) (string, bool) {
	var key string
	switch v := raw.(type) {
	case string:
		key = strings.TrimSpace(v)
	case float64:
		key = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		key = strconv.Itoa(v)
	default:
		return "", false
	}
	if key == "" {
		return "", false
	}
	if keyKind == fieldspec.KindNumber {
		parsed, err := strconv.ParseFloat(key, 64)
		if err != nil || math.IsNaN(parsed) {
			return "", false
		}
	}
	return key, true
}

// normalizeUnion collapses the staging wrapper to the active branch's value.
// Drafts for inactive branches are discarded here; they survive only in the
// raw tree the editing layer keeps. Canonical input (no wrapper) normalizes
// through the first shape-compatible branch.
func normalizeUnion(spec *fieldspec.Field, raw any, seen map[*fieldspec.Field]struct{}) any {
	if selected, draft, ok := unionStaging(raw); ok {
		idx := selected
		if idx < 0 || idx >= len(spec.Branches) {
			idx = 0
		}
		if len(spec.Branches) == 0 {
			return nil
		}
		var active any
		if idx < len(draft) {
			active = draft[idx]
		}
		return normalizeValue(spec.Branches[idx], active, seen)
	}
	if idx, ok := matchBranch(spec, raw); ok {
		return normalizeValue(spec.Branches[idx], raw, seen)
	}
	return raw
}

// unionStaging detects the {selected, options} wrapper. The selected index
// coerces to a number, defaulting to 0 on failure.
func unionStaging(raw any) (int, []any, bool) {
	mapping, ok := raw.(map[string]any)
	if !ok {
		return 0, nil, false
	}
	rawSelected, hasSelected := mapping["selected"]
	rawOptions, hasOptions := mapping["options"]
	if !hasSelected && !hasOptions {
		return 0, nil, false
	}
	options, ok := rawOptions.([]any)
	if !ok {
		return 0, nil, false
	}
	selected := 0
	switch v := rawSelected.(type) {
	case float64:
		selected = int(v)
	case int:
		selected = v
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			selected = parsed
		}
	}
	return selected, options, true
}
