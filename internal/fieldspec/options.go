package fieldspec

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Override customizes one field during spec construction. Overrides always
// win over schema-derived attributes.
type Override struct {
	Label        string
	Description  string
	ErrorMessage string
	Format       Format
	// Order reorders object properties; lower values sort first, fields
	// without an explicit order keep the default ordering after them.
	Order      *int
	Default    any
	HasDefault bool
	// Fields applies overrides to nested object properties by key.
	Fields Overrides
}

// Overrides maps property keys to their overrides.
type Overrides map[string]Override

// Options configures the behaviour of the Builder. Options are constructed by
// the public adapter in pkg/fieldspec and passed into New.
type Options struct {
	Labeler   func(string) string
	Sanitizer func(string) string
	// PasswordHeuristic opts in to inferring Format=password for string
	// fields whose key matches /password/i. Per-field overrides still win.
	PasswordHeuristic bool
	Overrides         Overrides
}

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText strips markup from schema-supplied labels and descriptions
// before they reach renderers.
func SanitizeText(value string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(value))
}

func defaultOptions() Options {
	return Options{
		Labeler:   DefaultLabeler,
		Sanitizer: SanitizeText,
	}
}
