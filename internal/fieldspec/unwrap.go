package fieldspec

import (
	"fmt"

	"github.com/goliatone/go-formspec/pkg/schema"
)

// unwrapped captures the facts accumulated while peeling wrapper layers from
// a schema node: nullability, read-only, and a statically-known default. The
// base node is the first non-wrapper layer; when the base is a bare $ref the
// builder takes over so definitions resolve lazily.
type unwrapped struct {
	base         schema.Schema
	hasDefault   bool
	defaultValue any
	nullable     bool
	readOnly     bool
}

// maxUnwrapDepth guards against wrapper stacks that never reach a base type.
// Schemas are finite by construction; hitting the cap means a malformed IR.
const maxUnwrapDepth = 64

// unwrap iteratively peels the outermost wrapper until a non-wrapper node
// remains. Each wrapper kind updates exactly one flag, so the result is
// independent of wrapping order. Absence of wrappers is the terminal case,
// not an error.
func unwrap(node schema.Schema) (unwrapped, error) {
	out := unwrapped{}
	for depth := 0; depth < maxUnwrapDepth; depth++ {
		switch {
		case node.HasDefault && !out.hasDefault:
			out.hasDefault = true
			out.defaultValue = node.Default
			node.HasDefault = false
			node.Default = nil

		case node.Nullable:
			out.nullable = true
			node.Nullable = false

		case node.ReadOnly:
			out.readOnly = true
			node.ReadOnly = false

		case hasNullType(node.Types):
			out.nullable = true
			node = dropNullType(node)

		case hasNullBranch(node.OneOf):
			out.nullable = true
			node = dropNullBranch(node, true)

		case hasNullBranch(node.AnyOf):
			out.nullable = true
			node = dropNullBranch(node, false)

		case len(node.OneOf) == 1 && node.Type == "":
			node = inherit(node, node.OneOf[0])

		case len(node.AnyOf) == 1 && node.Type == "":
			node = inherit(node, node.AnyOf[0])

		case len(node.AllOf) > 0:
			merged, err := flattenAllOf(node)
			if err != nil {
				return unwrapped{}, err
			}
			node = merged

		default:
			out.base = node
			return out, nil
		}
	}
	return unwrapped{}, fmt.Errorf("fieldspec: wrapper depth exceeds %d", maxUnwrapDepth)
}

func hasNullType(types []string) bool {
	for _, t := range types {
		if t == "null" {
			return true
		}
	}
	return false
}

func dropNullType(node schema.Schema) schema.Schema {
	remaining := make([]string, 0, len(node.Types))
	for _, t := range node.Types {
		if t != "null" {
			remaining = append(remaining, t)
		}
	}
	switch len(remaining) {
	case 0:
		node.Types = nil
	case 1:
		node.Type = remaining[0]
		node.Types = nil
	default:
		node.Types = remaining
	}
	return node
}

func isNullNode(node schema.Schema) bool {
	return node.Type == "null" && len(node.Properties) == 0 && node.Items == nil
}

func hasNullBranch(branches []schema.Schema) bool {
	for _, branch := range branches {
		if isNullNode(branch) {
			return true
		}
	}
	return false
}

// dropNullBranch removes the null alternative from a union. A two-branch
// union collapses to the surviving branch; larger unions stay unions.
func dropNullBranch(node schema.Schema, oneOf bool) schema.Schema {
	src := node.AnyOf
	if oneOf {
		src = node.OneOf
	}
	remaining := make([]schema.Schema, 0, len(src))
	for _, branch := range src {
		if !isNullNode(branch) {
			remaining = append(remaining, branch)
		}
	}
	if oneOf {
		node.OneOf = remaining
	} else {
		node.AnyOf = remaining
	}
	return node
}

// inherit replaces the wrapper node with its single alternative while keeping
// wrapper-level metadata that the alternative does not define itself.
func inherit(wrapper, inner schema.Schema) schema.Schema {
	if inner.Title == "" {
		inner.Title = wrapper.Title
	}
	if inner.Description == "" {
		inner.Description = wrapper.Description
	}
	if !inner.HasDefault && wrapper.HasDefault {
		inner.Default = wrapper.Default
		inner.HasDefault = true
	}
	return inner
}

// flattenAllOf treats a single-branch allOf as a processing pipeline (unwrap
// to the output type) and merges multi-branch object compositions. Branch
// type conflicts have no field mapping and abort construction.
func flattenAllOf(node schema.Schema) (schema.Schema, error) {
	branches := node.AllOf
	node.AllOf = nil

	if len(branches) == 1 && node.IsZero() {
		return inherit(node, branches[0]), nil
	}

	merged := node
	for _, branch := range branches {
		if branch.Type != "" && branch.Type != "object" {
			if merged.Type != "" && merged.Type != branch.Type {
				return schema.Schema{}, fmt.Errorf("fieldspec: conflicting allOf types %q and %q", merged.Type, branch.Type)
			}
			merged = inherit(merged, branch)
			continue
		}
		if merged.Type == "" {
			merged.Type = branch.Type
		}
		if len(branch.Properties) > 0 {
			if merged.Properties == nil {
				merged.Properties = make(map[string]schema.Schema, len(branch.Properties))
			}
			for key, prop := range branch.Properties {
				if _, exists := merged.Properties[key]; !exists {
					merged.Properties[key] = prop
				}
			}
		}
		merged.Required = append(merged.Required, branch.Required...)
		if merged.Description == "" {
			merged.Description = branch.Description
		}
	}
	return merged, nil
}
