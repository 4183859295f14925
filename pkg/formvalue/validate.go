package formvalue

import (
	"math"
	"strings"

	"github.com/goliatone/go-formspec/pkg/fieldspec"
)

// DeepValidator checks a leaf value against the constraints its field spec
// carries (format, pattern, bounds). Implementations return path-less issues;
// the Validator anchors them to the field's path. Required-ness is never a
// deep concern: the Validator checks presence uniformly before delegating.
type DeepValidator interface {
	ValidateLeaf(field *fieldspec.Field, value any) []Issue
}

// Validator walks a field spec tree against a raw value tree and returns
// validation findings as data. It never panics or errors on malformed input.
type Validator struct {
	deep DeepValidator
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithDeepValidator installs a leaf-level constraint checker. Without one the
// Validator guarantees only the presence contract.
func WithDeepValidator(deep DeepValidator) ValidatorOption {
	return func(v *Validator) {
		v.deep = deep
	}
}

// NewValidator constructs a Validator.
func NewValidator(options ...ValidatorOption) *Validator {
	v := &Validator{}
	for _, opt := range options {
		opt(v)
	}
	return v
}

// Validate walks the tree rooted at field. The root's path is its name.
func (v *Validator) Validate(field *fieldspec.Field, raw any) Issues {
	if field == nil {
		return nil
	}
	return v.validateField(field, raw, field.Name, map[*fieldspec.Field]struct{}{})
}

// ValidateAt walks the tree with an explicit root path, which may be empty so
// top-level object properties anchor at their bare names.
func (v *Validator) ValidateAt(field *fieldspec.Field, raw any, path string) Issues {
	if field == nil {
		return nil
	}
	return v.validateField(field, raw, path, map[*fieldspec.Field]struct{}{})
}

func (v *Validator) validateField(field *fieldspec.Field, raw any, path string, seen map[*fieldspec.Field]struct{}) Issues {
	spec := field.Resolve()

	// A self-referential spec revisited with an empty value reduces to its
	// presence check; recursing would walk the cycle forever. Non-empty input
	// keeps descending, bounded by the depth of the raw tree.
	if _, revisit := seen[spec]; revisit {
		if isEmpty(raw) {
			if field.Required && !field.Nullable {
				return Issues{requiredIssue(path, requiredMessage(field))}
			}
			return nil
		}
	} else {
		seen[spec] = struct{}{}
		defer delete(seen, spec)
	}

	switch spec.Kind {
	case fieldspec.KindObject:
		return v.validateObject(field, spec, raw, path, seen)
	case fieldspec.KindArray:
		return v.validateArray(field, spec, raw, path, seen)
	case fieldspec.KindRecord:
		return v.validateRecord(field, spec, raw, path, seen)
	case fieldspec.KindUnion:
		return v.validateUnion(field, spec, raw, path, seen)
	}
	return v.validateLeaf(field, spec, raw, path)
}

func (v *Validator) validateLeaf(field, spec *fieldspec.Field, raw any, path string) Issues {
	// Datetime staging pairs join before the checks so the deep validator
	// always sees the canonical string.
	if spec.Kind == fieldspec.KindDateTime {
		raw = normalizeDateTime(raw)
	}
	if isEmpty(raw) {
		if field.Required && !field.Nullable {
			return Issues{requiredIssue(path, requiredMessage(field))}
		}
		return nil
	}
	if v.deep == nil {
		return nil
	}
	var out Issues
	for _, issue := range v.deep.ValidateLeaf(spec, raw) {
		issue.Path = path
		out = append(out, issue)
	}
	return out
}

// validateObject emits the object's own required issue when the whole value
// is empty, then recurses into every declared property regardless, so leaf
// messages surface even inside an untouched section.
func (v *Validator) validateObject(field, spec *fieldspec.Field, raw any, path string, seen map[*fieldspec.Field]struct{}) Issues {
	var out Issues
	if field.Required && !field.Nullable && isEmpty(raw) {
		out = append(out, requiredIssue(path, requiredMessage(field)))
	}
	source, _ := raw.(map[string]any)
	for _, child := range spec.Fields {
		out = append(out, v.validateField(child, source[child.Name], joinPath(path, child.Name), seen)...)
	}
	return out
}

// validateArray short-circuits on a failed required check: item-level issues
// for a list the user never started are noise.
func (v *Validator) validateArray(field, spec *fieldspec.Field, raw any, path string, seen map[*fieldspec.Field]struct{}) Issues {
	items, _ := raw.([]any)
	if field.Required && !field.Nullable && isEmpty(raw) {
		return Issues{requiredIssue(path, requiredMessage(field))}
	}
	var out Issues
	for i, item := range items {
		out = append(out, v.validateField(spec.Items, item, joinPath(path, indexSegment(i)), seen)...)
	}
	return out
}

// validateRecord checks presence only: a required record is satisfied by at
// least one non-empty value. Entry values are leaf territory for this layer.
func (v *Validator) validateRecord(field, spec *fieldspec.Field, raw any, path string, seen map[*fieldspec.Field]struct{}) Issues {
	if !field.Required || field.Nullable {
		return nil
	}
	entries := normalizeRecord(spec, raw, seen)
	for _, value := range entries {
		if !isEmpty(value) {
			return nil
		}
	}
	return Issues{requiredIssue(path, requiredMessage(field))}
}

// validateUnion resolves the active branch the same way Normalize does and
// validates only that branch. Required issues anchor at the branch's sub-path
// so the editing layer highlights the active pane, not the tab strip.
func (v *Validator) validateUnion(field, spec *fieldspec.Field, raw any, path string, seen map[*fieldspec.Field]struct{}) Issues {
	if len(spec.Branches) == 0 {
		return nil
	}
	idx := 0
	var active any
	if selected, drafts, ok := unionStaging(raw); ok {
		if selected >= 0 && selected < len(spec.Branches) {
			idx = selected
		}
		if idx < len(drafts) {
			active = drafts[idx]
		}
	} else {
		active = raw
		if matched, ok := matchBranch(spec, raw); ok {
			idx = matched
		}
	}

	branchPath := joinPath(path, branchSegment(idx))
	if isEmpty(active) {
		if field.Required && !field.Nullable {
			return Issues{requiredIssue(branchPath, requiredMessage(field))}
		}
		return nil
	}
	return v.validateField(spec.Branches[idx], active, branchPath, seen)
}

func requiredMessage(field *fieldspec.Field) string {
	if field.ErrorMessage != "" {
		return field.ErrorMessage
	}
	return field.DisplayLabel() + " is required"
}

// isEmpty reports recursive emptiness: nil, whitespace-only strings, NaN,
// empty composites, or composites all of whose members are empty. Booleans
// are never empty; false is a legitimate answer.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return false
	case float64:
		return math.IsNaN(v)
	case float32:
		return math.IsNaN(float64(v))
	case int, int64, uint64:
		return false
	case []any:
		for _, item := range v {
			if !isEmpty(item) {
				return false
			}
		}
		return true
	case map[string]any:
		// A union staging wrapper is as empty as its active draft; the
		// selected index is bookkeeping, not content.
		if selected, drafts, ok := unionStaging(v); ok {
			if selected < 0 || selected >= len(drafts) {
				selected = 0
			}
			if len(drafts) == 0 {
				return true
			}
			return isEmpty(drafts[selected])
		}
		for _, item := range v {
			if !isEmpty(item) {
				return false
			}
		}
		return true
	}
	return false
}
