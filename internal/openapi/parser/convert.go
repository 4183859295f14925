package parser

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formspec/pkg/schema"
)

const extensionNamespace = "x-formspec"

func requestSchema(requestBody *openapi3.RequestBodyRef) schema.Schema {
	if requestBody == nil {
		return schema.Schema{}
	}
	if requestBody.Value == nil {
		return schema.Schema{Ref: requestBody.Ref}
	}
	content := requestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok {
			return convertSchema(mt.Schema)
		}
	}
	for _, mt := range content {
		return convertSchema(mt.Schema)
	}
	return schema.Schema{}
}

func responseSchemas(responses *openapi3.Responses) map[string]schema.Schema {
	if responses == nil || responses.Len() == 0 {
		return nil
	}
	result := make(map[string]schema.Schema)
	for status, ref := range responses.Map() {
		if ref == nil {
			continue
		}
		var converted schema.Schema
		if ref.Value == nil {
			converted = schema.Schema{Ref: ref.Ref}
		} else {
			content := ref.Value.Content
			if len(content) == 0 {
				continue
			}
			if mt, ok := content["application/json"]; ok {
				converted = convertSchema(mt.Schema)
			} else {
				for _, mt := range content {
					converted = convertSchema(mt.Schema)
					break
				}
			}
			if converted.Description == "" && ref.Value.Description != nil {
				converted.Description = *ref.Value.Description
			}
		}
		if converted.IsZero() {
			continue
		}
		result[status] = converted
	}
	return result
}

// convertSchema maps a kin-openapi schema node onto the canonical IR. Wrapper
// facts (nullable, read-only, defaults) land on the node directly so the
// field spec unwrapper handles OpenAPI and JSON Schema inputs identically.
func convertSchema(ref *openapi3.SchemaRef) schema.Schema {
	if ref == nil {
		return schema.Schema{}
	}
	if ref.Value == nil {
		return schema.Schema{Ref: ref.Ref}
	}
	src := ref.Value
	out := schema.Schema{
		Format:      src.Format,
		Title:       src.Title,
		Description: src.Description,
		Pattern:     src.Pattern,
		Nullable:    src.Nullable,
		ReadOnly:    src.ReadOnly,
		Extensions:  extractExtensions(src.Extensions),
	}

	if src.Type != nil {
		switch values := src.Type.Slice(); len(values) {
		case 0:
		case 1:
			out.Type = values[0]
		default:
			out.Types = append([]string(nil), values...)
		}
	}
	if src.Default != nil {
		out.Default = src.Default
		out.HasDefault = true
	}
	if len(src.Required) > 0 {
		out.Required = append([]string(nil), src.Required...)
	}
	if len(src.Enum) > 0 {
		out.Enum = append([]any(nil), src.Enum...)
	}
	if len(src.Properties) > 0 {
		out.Properties = make(map[string]schema.Schema, len(src.Properties))
		for name, property := range src.Properties {
			out.Properties[name] = convertSchema(property)
		}
	}
	if src.AdditionalProperties.Schema != nil {
		converted := convertSchema(src.AdditionalProperties.Schema)
		out.AdditionalProperties = &converted
	}
	if src.Items != nil {
		items := convertSchema(src.Items)
		out.Items = &items
	}

	out.OneOf = convertSchemaRefs(src.OneOf)
	out.AnyOf = convertSchemaRefs(src.AnyOf)
	out.AllOf = convertSchemaRefs(src.AllOf)
	if src.Discriminator != nil {
		out.Discriminator = src.Discriminator.PropertyName
	}

	if src.Min != nil {
		value := *src.Min
		out.Minimum = &value
	}
	if src.Max != nil {
		value := *src.Max
		out.Maximum = &value
	}
	out.ExclusiveMinimum = src.ExclusiveMin
	out.ExclusiveMaximum = src.ExclusiveMax
	if src.MultipleOf != nil {
		value := *src.MultipleOf
		out.MultipleOf = &value
	}
	if src.MinLength != 0 {
		value := int(src.MinLength)
		out.MinLength = &value
	}
	if src.MaxLength != nil {
		value := int(*src.MaxLength)
		out.MaxLength = &value
	}
	if src.MinItems != 0 {
		value := int(src.MinItems)
		out.MinItems = &value
	}
	if src.MaxItems != nil {
		value := int(*src.MaxItems)
		out.MaxItems = &value
	}
	return out
}

func convertSchemaRefs(refs openapi3.SchemaRefs) []schema.Schema {
	if len(refs) == 0 {
		return nil
	}
	out := make([]schema.Schema, 0, len(refs))
	for _, ref := range refs {
		out = append(out, convertSchema(ref))
	}
	return out
}

func extractExtensions(raw map[string]any) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	result := make(map[string]any)
	for key, value := range raw {
		switch {
		case key == extensionNamespace:
			if mapped, ok := value.(map[string]any); ok && len(mapped) > 0 {
				cloned := make(map[string]any, len(mapped))
				for k, v := range mapped {
					cloned[k] = v
				}
				result[key] = cloned
			}
		case strings.HasPrefix(key, extensionNamespace+"-"):
			result[key] = value
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
