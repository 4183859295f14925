package fieldspec

// Kind is the closed enumeration of supported field kinds.
type Kind string

const (
	KindString   Kind = "string"
	KindNumber   Kind = "number"
	KindBoolean  Kind = "boolean"
	KindDate     Kind = "date"
	KindTime     Kind = "time"
	KindDateTime Kind = "datetime"
	KindEnum     Kind = "enum"
	KindObject   Kind = "object"
	KindArray    Kind = "array"
	KindUnion    Kind = "union"
	KindRecord   Kind = "record"
)

// Format refines string fields for widget selection.
type Format string

const (
	FormatDefault  Format = ""
	FormatEmail    Format = "email"
	FormatURL      Format = "url"
	FormatPassword Format = "password"
	FormatTextarea Format = "textarea"
)

// Option is a single enum choice.
type Option struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// Field is the normalized, kind-tagged description of one schema field,
// independent of the source schema dialect. Composite kinds own their child
// specs; Items, Values, and Branches entries are templates reused for every
// array item, record value, or union draft rather than instantiated per item.
type Field struct {
	Name         string            `json:"name"`
	Kind         Kind              `json:"kind"`
	Required     bool              `json:"required"`
	Nullable     bool              `json:"nullable,omitempty"`
	ReadOnly     bool              `json:"readOnly,omitempty"`
	Label        string            `json:"label,omitempty"`
	Description  string            `json:"description,omitempty"`
	Default      any               `json:"default,omitempty"`
	HasDefault   bool              `json:"hasDefault,omitempty"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`

	// string
	Format    Format `json:"format,omitempty"`
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	// number
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Step    *float64 `json:"step,omitempty"`
	Integer bool     `json:"integer,omitempty"`

	// date / datetime
	MinDate string `json:"minDate,omitempty"`
	MaxDate string `json:"maxDate,omitempty"`

	// enum
	Options []Option `json:"options,omitempty"`

	// object
	Fields []*Field `json:"fields,omitempty"`

	// array
	Items    *Field `json:"items,omitempty"`
	MinItems *int   `json:"minItems,omitempty"`
	MaxItems *int   `json:"maxItems,omitempty"`

	// union
	Branches      []*Field `json:"branches,omitempty"`
	Discriminator string   `json:"discriminator,omitempty"`

	// record
	KeyKind Kind   `json:"keyKind,omitempty"`
	Values  *Field `json:"values,omitempty"`

	// Ref names the definition this field lazily points at. Self-referential
	// schemas are represented by indirection instead of eager expansion; the
	// target is filled in once the definition finishes building.
	Ref    string `json:"ref,omitempty"`
	target *Field
}

// Resolve follows the lazy indirection cell, returning the field that carries
// the structural attributes (kind, children, constraints). Identity
// attributes such as Name, Required, and Label stay on the receiver.
func (f *Field) Resolve() *Field {
	if f == nil {
		return nil
	}
	if f.target != nil {
		return f.target
	}
	return f
}

// FieldByName returns the object child with the given name.
func (f *Field) FieldByName(name string) (*Field, bool) {
	for _, child := range f.Resolve().Fields {
		if child.Name == name {
			return child, true
		}
	}
	return nil, false
}

// DisplayLabel returns the label, falling back to the raw name.
func (f *Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}
