package formvalue

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-formspec/pkg/fieldspec"
)

// Defaults derives the value tree a form initializes with. Precedence per
// field: caller override, then the spec's static default, then a kind-specific
// zero value. The result is a raw tree: unions hold a draft per branch so
// switching the active branch never loses input, records hold key/value
// entries, and datetime fields hold a {date, time} staging pair.
func Defaults(field *fieldspec.Field) any {
	return DefaultsWith(field, nil, false)
}

// DefaultsWith derives defaults with an explicit override value. hasOverride
// distinguishes "override to nil" from "no override".
func DefaultsWith(field *fieldspec.Field, override any, hasOverride bool) any {
	return deriveDefault(field, override, hasOverride, map[*fieldspec.Field]struct{}{})
}

func deriveDefault(field *fieldspec.Field, override any, hasOverride bool, seen map[*fieldspec.Field]struct{}) any {
	if field == nil {
		return nil
	}
	spec := field.Resolve()

	// Self-referential specs derive to their empty value past the first
	// visit, otherwise derivation diverges on recursive definitions.
	if _, revisit := seen[spec]; revisit {
		return emptyDefault(spec.Kind)
	}
	seen[spec] = struct{}{}
	defer delete(seen, spec)

	value := override
	has := hasOverride
	if !has && field.HasDefault {
		value, has = field.Default, true
	}
	if !has && spec != field && spec.HasDefault {
		value, has = spec.Default, true
	}

	switch spec.Kind {
	case fieldspec.KindString, fieldspec.KindDate, fieldspec.KindTime:
		if has {
			if str, ok := value.(string); ok {
				return str
			}
		}
		return ""

	case fieldspec.KindDateTime:
		if has {
			if str, ok := value.(string); ok {
				return str
			}
		}
		return map[string]any{"date": "", "time": ""}

	case fieldspec.KindNumber:
		if has {
			if num, ok := numericValue(value); ok {
				return num
			}
		}
		return nil

	case fieldspec.KindBoolean:
		if has {
			if b, ok := value.(bool); ok {
				return b
			}
		}
		return false

	case fieldspec.KindEnum:
		if has {
			return value
		}
		return nil

	case fieldspec.KindObject:
		return deriveObject(spec, value, has, seen)

	case fieldspec.KindArray:
		return deriveArray(spec, value, has, seen)

	case fieldspec.KindRecord:
		return deriveRecord(spec, value, has, seen)

	case fieldspec.KindUnion:
		return deriveUnion(spec, value, has, seen)
	}
	return nil
}

// emptyDefault is the kind's zero value without recursing into children, used
// when derivation revisits a self-referential spec.
func emptyDefault(kind fieldspec.Kind) any {
	switch kind {
	case fieldspec.KindString, fieldspec.KindDate, fieldspec.KindTime:
		return ""
	case fieldspec.KindDateTime:
		return map[string]any{"date": "", "time": ""}
	case fieldspec.KindBoolean:
		return false
	case fieldspec.KindObject:
		return map[string]any{}
	case fieldspec.KindArray, fieldspec.KindRecord:
		return []any{}
	case fieldspec.KindUnion:
		return map[string]any{"selected": 0, "options": []any{}}
	}
	return nil
}

func deriveObject(spec *fieldspec.Field, override any, has bool, seen map[*fieldspec.Field]struct{}) map[string]any {
	fold, _ := override.(map[string]any)
	out := make(map[string]any, len(spec.Fields))
	for _, child := range spec.Fields {
		childOverride, childHas := any(nil), false
		if has {
			childOverride, childHas = fold[child.Name]
		}
		out[child.Name] = deriveDefault(child, childOverride, childHas, seen)
	}
	return out
}

func deriveArray(spec *fieldspec.Field, override any, has bool, seen map[*fieldspec.Field]struct{}) []any {
	if !has {
		return []any{}
	}
	items, ok := override.([]any)
	if !ok {
		return []any{}
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = deriveDefault(spec.Items, item, true, seen)
	}
	return out
}

// deriveRecord converts a key-indexed mapping into the editing layer's entry
// list, deriving each value through the record's value template. Entries sort
// by key so derivation is deterministic.
func deriveRecord(spec *fieldspec.Field, override any, has bool, seen map[*fieldspec.Field]struct{}) []any {
	if !has {
		return []any{}
	}
	mapping, ok := override.(map[string]any)
	if !ok {
		return []any{}
	}
	keys := make([]string, 0, len(mapping))
	for key := range mapping {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(keys))
	for _, key := range keys {
		out = append(out, map[string]any{
			"key":   key,
			"value": deriveDefault(spec.Values, mapping[key], true, seen),
		})
	}
	return out
}

// deriveUnion pre-populates every branch so switching the active branch in
// the editing layer never loses drafts for the others. An override selects
// the first branch whose shape is compatible with the override's runtime
// shape and substitutes that branch's derived default.
func deriveUnion(spec *fieldspec.Field, override any, has bool, seen map[*fieldspec.Field]struct{}) map[string]any {
	options := make([]any, len(spec.Branches))
	selected := 0
	for i, branch := range spec.Branches {
		options[i] = deriveDefault(branch, nil, false, seen)
	}
	if has {
		if idx, ok := matchBranch(spec, override); ok {
			selected = idx
			options[idx] = deriveDefault(spec.Branches[idx], override, true, seen)
		}
	}
	return map[string]any{"selected": selected, "options": options}
}

// matchBranch finds the first branch whose kind is compatible with the
// override's runtime shape. Discriminated unions match on the discriminator
// literal before falling back to shape.
func matchBranch(spec *fieldspec.Field, override any) (int, bool) {
	if spec.Discriminator != "" {
		if mapping, ok := override.(map[string]any); ok {
			if tag, ok := mapping[spec.Discriminator]; ok {
				for i, branch := range spec.Branches {
					if branchTag(branch, spec.Discriminator) == fmt.Sprintf("%v", tag) {
						return i, true
					}
				}
			}
		}
	}
	for i, branch := range spec.Branches {
		if shapeMatches(branch.Resolve().Kind, override) {
			return i, true
		}
	}
	return 0, false
}

func branchTag(branch *fieldspec.Field, discriminator string) string {
	child, ok := branch.FieldByName(discriminator)
	if !ok || !child.HasDefault {
		return ""
	}
	return fmt.Sprintf("%v", child.Default)
}

func shapeMatches(kind fieldspec.Kind, value any) bool {
	switch value.(type) {
	case string:
		return kind == fieldspec.KindString || kind == fieldspec.KindDate ||
			kind == fieldspec.KindTime || kind == fieldspec.KindDateTime ||
			kind == fieldspec.KindEnum
	case bool:
		return kind == fieldspec.KindBoolean
	case float64, int, int64:
		return kind == fieldspec.KindNumber || kind == fieldspec.KindEnum
	case map[string]any:
		return kind == fieldspec.KindObject || kind == fieldspec.KindRecord
	case []any:
		return kind == fieldspec.KindArray
	}
	return false
}

func numericValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}
