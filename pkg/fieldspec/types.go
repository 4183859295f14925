package fieldspec

import internal "github.com/goliatone/go-formspec/internal/fieldspec"

// Kind is the closed enumeration of supported field kinds.
type Kind = internal.Kind

const (
	KindString   = internal.KindString
	KindNumber   = internal.KindNumber
	KindBoolean  = internal.KindBoolean
	KindDate     = internal.KindDate
	KindTime     = internal.KindTime
	KindDateTime = internal.KindDateTime
	KindEnum     = internal.KindEnum
	KindObject   = internal.KindObject
	KindArray    = internal.KindArray
	KindUnion    = internal.KindUnion
	KindRecord   = internal.KindRecord
)

// Format refines string fields for widget selection.
type Format = internal.Format

const (
	FormatDefault  = internal.FormatDefault
	FormatEmail    = internal.FormatEmail
	FormatURL      = internal.FormatURL
	FormatPassword = internal.FormatPassword
	FormatTextarea = internal.FormatTextarea
)

// Field is the normalized description of one schema field.
type Field = internal.Field

// Option is a single enum choice.
type Option = internal.Option

// Override customizes one field during spec construction.
type Override = internal.Override

// Overrides maps property keys to their overrides.
type Overrides = internal.Overrides

// UnsupportedTypeError reports a schema construct with no field kind mapping.
type UnsupportedTypeError = internal.UnsupportedTypeError

// DefaultLabeler converts a field key into a human-friendly label.
func DefaultLabeler(name string) string {
	return internal.DefaultLabeler(name)
}

// SanitizeText strips markup from schema-supplied labels and descriptions.
func SanitizeText(value string) string {
	return internal.SanitizeText(value)
}
