package fieldspec

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formspec/pkg/schema"
)

const extensionNamespace = "x-formspec"

var passwordKeyPattern = regexp.MustCompile(`(?i)password`)

// Builder converts canonical schema nodes into field specs.
type Builder struct {
	opts Options
}

// New creates a Builder with the supplied options.
func New(options Options) *Builder {
	opts := defaultOptions()
	if options.Labeler != nil {
		opts.Labeler = options.Labeler
	}
	if options.Sanitizer != nil {
		opts.Sanitizer = options.Sanitizer
	}
	opts.PasswordHeuristic = options.PasswordHeuristic
	opts.Overrides = options.Overrides
	return &Builder{opts: opts}
}

// Build constructs the field spec tree for a schema node. Definitions from
// the node's $defs table resolve lazily and are memoized by definition name,
// so self-referential schemas terminate and identical subtrees build once.
func (b *Builder) Build(name string, node schema.Schema) (*Field, error) {
	run := &builderRun{
		opts:     b.opts,
		defs:     node.Defs,
		built:    make(map[string]*Field),
		building: make(map[string]*Field),
	}
	override := Override{}
	if ov, ok := b.opts.Overrides[name]; ok {
		override = ov
	}
	return run.build(name, node, true, name, override)
}

type builderRun struct {
	opts     Options
	defs     map[string]*schema.Schema
	built    map[string]*Field
	building map[string]*Field
}

func (run *builderRun) build(name string, node schema.Schema, required bool, path string, ov Override) (*Field, error) {
	uw, err := unwrap(node)
	if err != nil {
		return nil, err
	}
	base := uw.base

	if base.Ref != "" {
		return run.buildRef(name, base.Ref, uw, required, path, ov)
	}

	field := run.newField(name, base, uw, required, ov)

	switch {
	case len(base.Enum) > 0:
		if err := run.buildEnum(field, base, path); err != nil {
			return nil, err
		}

	case base.HasConst:
		// Literals become single-option enums defaulting to the literal.
		option := optionFromValue(run.opts.Labeler, base.Const)
		field.Kind = KindEnum
		field.Options = []Option{option}
		if !field.HasDefault {
			field.Default = base.Const
			field.HasDefault = true
			field.Required = false
		}

	case len(base.OneOf) > 0 || len(base.AnyOf) > 0:
		if err := run.buildUnion(field, base, path); err != nil {
			return nil, err
		}

	case base.Type == "string":
		run.buildString(field, base)
		if ov.Format != FormatDefault {
			field.Format = ov.Format
		}

	case base.Type == "number" || base.Type == "integer":
		field.Kind = KindNumber
		field.Integer = base.Type == "integer"
		field.Min = base.Minimum
		field.Max = base.Maximum
		field.Step = base.MultipleOf

	case base.Type == "boolean":
		field.Kind = KindBoolean

	case base.Type == "array":
		if err := run.buildArray(field, base, path); err != nil {
			return nil, err
		}

	case base.Type == "object" || (base.Type == "" && len(base.Properties) > 0):
		if err := run.buildObjectOrRecord(field, base, path, ov); err != nil {
			return nil, err
		}

	case base.IsZero():
		return nil, &UnsupportedTypeError{Path: path, Construct: "no type found"}

	default:
		construct := base.Type
		if construct == "" {
			construct = strings.Join(base.Types, ",")
		}
		return nil, &UnsupportedTypeError{Path: path, Construct: construct}
	}

	return field, nil
}

// buildRef resolves a $ref through the definitions table. Definitions build
// exactly once; repeated and cyclic references receive an indirection field
// whose target is filled when the definition finishes.
func (run *builderRun) buildRef(name, ref string, uw unwrapped, required bool, path string, ov Override) (*Field, error) {
	defName, def, ok := run.lookupDef(ref)
	if !ok {
		// Unresolved references degrade to a placeholder instead of failing
		// the whole build; consumers see the ref in metadata.
		field := run.newField(name, schema.Schema{}, uw, required, ov)
		field.Kind = KindObject
		field.Metadata = mergeMetadata(field.Metadata, map[string]string{"$ref": ref})
		return field, nil
	}

	if target, ok := run.built[defName]; ok {
		return run.indirect(name, defName, target, uw, required, ov), nil
	}
	if target, ok := run.building[defName]; ok {
		return run.indirect(name, defName, target, uw, required, ov), nil
	}

	cell := &Field{}
	run.building[defName] = cell
	built, err := run.build(name, *def, required, path, ov)
	delete(run.building, defName)
	if err != nil {
		return nil, err
	}
	*cell = *built
	run.built[defName] = cell
	return cell, nil
}

func (run *builderRun) indirect(name, defName string, target *Field, uw unwrapped, required bool, ov Override) *Field {
	field := run.newField(name, schema.Schema{}, uw, required, ov)
	field.Ref = defName
	field.target = target
	return field
}

func (run *builderRun) lookupDef(ref string) (string, *schema.Schema, bool) {
	name := ref
	for _, prefix := range []string{"#/$defs/", "#/definitions/", "#/components/schemas/"} {
		if strings.HasPrefix(ref, prefix) {
			name = strings.TrimPrefix(ref, prefix)
			break
		}
	}
	if def, ok := run.defs[name]; ok {
		return name, def, true
	}
	return name, nil, false
}

func (run *builderRun) newField(name string, base schema.Schema, uw unwrapped, required bool, ov Override) *Field {
	field := &Field{
		Name:         name,
		Required:     required && !uw.hasDefault,
		Nullable:     uw.nullable,
		ReadOnly:     uw.readOnly,
		Label:        run.labelFor(name, base.Title, ov),
		Description:  run.opts.Sanitizer(firstNonEmpty(ov.Description, base.Description)),
		ErrorMessage: ov.ErrorMessage,
		Metadata:     metadataFromExtensions(base.Extensions),
	}
	if uw.hasDefault {
		field.Default = uw.defaultValue
		field.HasDefault = true
	}
	if ov.HasDefault {
		field.Default = ov.Default
		field.HasDefault = true
		field.Required = false
	}
	return field
}

func (run *builderRun) labelFor(name, title string, ov Override) string {
	if ov.Label != "" {
		return run.opts.Sanitizer(ov.Label)
	}
	if title != "" {
		return run.opts.Sanitizer(title)
	}
	return run.opts.Labeler(name)
}

func (run *builderRun) buildEnum(field *Field, base schema.Schema, path string) error {
	options := make([]Option, 0, len(base.Enum))
	for _, value := range base.Enum {
		switch value.(type) {
		case string, float64, int, int64:
		default:
			return &UnsupportedTypeError{Path: path, Construct: "enum with non-primitive values"}
		}
		options = append(options, optionFromValue(run.opts.Labeler, value))
	}
	field.Kind = KindEnum
	field.Options = options
	return nil
}

func (run *builderRun) buildString(field *Field, base schema.Schema) {
	switch strings.ToLower(base.Format) {
	case "date":
		field.Kind = KindDate
		return
	case "time":
		field.Kind = KindTime
		return
	case "date-time", "datetime", "datetime-local":
		field.Kind = KindDateTime
		return
	}

	field.Kind = KindString
	field.MinLength = base.MinLength
	field.MaxLength = base.MaxLength
	field.Pattern = base.Pattern
	field.Format = run.stringFormat(field.Name, base.Format)
}

func (run *builderRun) stringFormat(name, format string) Format {
	switch strings.ToLower(format) {
	case "email", "idn-email":
		return FormatEmail
	case "uri", "url", "iri", "uri-reference", "iri-reference":
		return FormatURL
	case "password":
		return FormatPassword
	case "textarea":
		return FormatTextarea
	}
	if run.opts.PasswordHeuristic && passwordKeyPattern.MatchString(name) {
		return FormatPassword
	}
	return FormatDefault
}

func (run *builderRun) buildArray(field *Field, base schema.Schema, path string) error {
	if len(base.PrefixItems) > 0 {
		return &UnsupportedTypeError{Path: path, Construct: "tuple"}
	}
	if base.Items == nil {
		return &UnsupportedTypeError{Path: path, Construct: "array without items"}
	}
	items, err := run.build(field.Name+"Item", *base.Items, false, joinPath(path, "[]"), Override{})
	if err != nil {
		return err
	}
	field.Kind = KindArray
	field.Items = items
	field.MinItems = base.MinItems
	field.MaxItems = base.MaxItems
	return nil
}

func (run *builderRun) buildObjectOrRecord(field *Field, base schema.Schema, path string, ov Override) error {
	if len(base.Properties) == 0 && base.AdditionalProperties != nil {
		return run.buildRecord(field, base, path)
	}

	requiredSet := make(map[string]struct{}, len(base.Required))
	for _, key := range base.Required {
		requiredSet[key] = struct{}{}
	}

	keys := orderedKeys(base, ov.Fields)
	children := make([]*Field, 0, len(keys))
	for _, key := range keys {
		_, isRequired := requiredSet[key]
		child, err := run.build(key, base.Properties[key], isRequired, joinPath(path, key), ov.Fields[key])
		if err != nil {
			return err
		}
		children = append(children, child)
	}

	field.Kind = KindObject
	field.Fields = children
	return nil
}

func (run *builderRun) buildRecord(field *Field, base schema.Schema, path string) error {
	keyKind := KindString
	if names := base.PropertyNames; names != nil {
		if len(names.Enum) > 0 {
			return &UnsupportedTypeError{Path: path, Construct: "map with closed key enumeration"}
		}
		switch names.Type {
		case "", "string":
		case "number", "integer":
			keyKind = KindNumber
		default:
			return &UnsupportedTypeError{Path: path, Construct: "map keyed by " + names.Type}
		}
	}

	values, err := run.build(field.Name+"Value", *base.AdditionalProperties, false, joinPath(path, "*"), Override{})
	if err != nil {
		return err
	}

	field.Kind = KindRecord
	field.KeyKind = keyKind
	field.Values = values
	return nil
}

func (run *builderRun) buildUnion(field *Field, base schema.Schema, path string) error {
	branches := base.OneOf
	if len(branches) == 0 {
		branches = base.AnyOf
	}
	if len(branches) == 0 {
		return &UnsupportedTypeError{Path: path, Construct: "empty union"}
	}

	// All-literal unions of one primitive type are closed enumerations.
	if values, ok := literalUnionValues(branches); ok {
		options := make([]Option, 0, len(values))
		for _, value := range values {
			options = append(options, optionFromValue(run.opts.Labeler, value))
		}
		field.Kind = KindEnum
		field.Options = options
		return nil
	}

	discriminator := base.Discriminator
	if discriminator == "" {
		discriminator = inferDiscriminator(branches)
	}
	if discriminator != "" {
		for idx, branch := range branches {
			if _, ok := discriminatorValue(branch, discriminator); !ok {
				return fmt.Errorf("fieldspec: union branch %d at %s does not carry discriminator %q as a literal", idx, path, discriminator)
			}
		}
	}

	built := make([]*Field, 0, len(branches))
	for idx, branch := range branches {
		name := branchName(branch, discriminator, idx)
		child, err := run.build(name, branch, true, joinPath(path, "options."+strconv.Itoa(idx)), Override{})
		if err != nil {
			return err
		}
		built = append(built, child)
	}

	field.Kind = KindUnion
	field.Branches = built
	field.Discriminator = discriminator
	return nil
}

// literalUnionValues reports whether every branch is a literal of one shared
// primitive type, returning the literal values in declaration order.
func literalUnionValues(branches []schema.Schema) ([]any, bool) {
	values := make([]any, 0, len(branches))
	sawString, sawNumber := false, false
	for _, branch := range branches {
		value, ok := literalValue(branch)
		if !ok {
			return nil, false
		}
		switch value.(type) {
		case string:
			sawString = true
		case float64, int, int64:
			sawNumber = true
		default:
			return nil, false
		}
		values = append(values, value)
	}
	if sawString && sawNumber {
		return nil, false
	}
	return values, true
}

func literalValue(node schema.Schema) (any, bool) {
	if node.HasConst {
		return node.Const, true
	}
	if len(node.Enum) == 1 && len(node.Properties) == 0 && node.Items == nil {
		return node.Enum[0], true
	}
	return nil, false
}

// inferDiscriminator finds a property that every object branch fixes to a
// distinct literal value.
func inferDiscriminator(branches []schema.Schema) string {
	if len(branches) < 2 {
		return ""
	}
	candidates := map[string]map[string]struct{}{}
	for key, prop := range branches[0].Properties {
		if value, ok := literalValue(prop); ok {
			candidates[key] = map[string]struct{}{literalKey(value): {}}
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	for _, branch := range branches[1:] {
		if branch.Type != "object" && len(branch.Properties) == 0 {
			return ""
		}
		for key := range candidates {
			value, ok := discriminatorValue(branch, key)
			if !ok {
				delete(candidates, key)
				continue
			}
			lk := literalKey(value)
			if _, dup := candidates[key][lk]; dup {
				delete(candidates, key)
				continue
			}
			candidates[key][lk] = struct{}{}
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	keys := make([]string, 0, len(candidates))
	for key := range candidates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys[0]
}

func discriminatorValue(branch schema.Schema, key string) (any, bool) {
	prop, ok := branch.Properties[key]
	if !ok {
		return nil, false
	}
	return literalValue(prop)
}

func literalKey(value any) string {
	switch v := value.(type) {
	case string:
		return "s:" + v
	default:
		return "v:" + fmt.Sprintf("%v", v)
	}
}

func branchName(branch schema.Schema, discriminator string, idx int) string {
	if discriminator != "" {
		if value, ok := discriminatorValue(branch, discriminator); ok {
			if str, ok := value.(string); ok && str != "" {
				return str
			}
		}
	}
	if branch.Title != "" {
		return branch.Title
	}
	return "option" + strconv.Itoa(idx)
}

// orderedKeys sorts property keys deterministically, honouring explicit
// override priorities (ascending) ahead of the default ordering.
func orderedKeys(base schema.Schema, overrides Overrides) []string {
	keys := base.PropertyKeys()
	if len(overrides) == 0 {
		return keys
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return keyPriority(overrides, keys[i]) < keyPriority(overrides, keys[j])
	})
	return keys
}

func keyPriority(overrides Overrides, key string) int {
	if ov, ok := overrides[key]; ok && ov.Order != nil {
		return *ov.Order
	}
	return int(^uint(0) >> 1)
}

func optionFromValue(labeler func(string) string, value any) Option {
	switch v := value.(type) {
	case string:
		return Option{Label: labeler(v), Value: v}
	case float64:
		return Option{Label: strconv.FormatFloat(v, 'f', -1, 64), Value: v}
	case int:
		return Option{Label: strconv.Itoa(v), Value: v}
	case int64:
		return Option{Label: strconv.FormatInt(v, 10), Value: v}
	default:
		return Option{Label: fmt.Sprintf("%v", v), Value: v}
	}
}

func metadataFromExtensions(ext map[string]any) map[string]string {
	if len(ext) == 0 {
		return nil
	}
	result := make(map[string]string)
	for key, value := range ext {
		if key == extensionNamespace {
			nested, ok := value.(map[string]any)
			if !ok {
				continue
			}
			for nestedKey, nestedValue := range nested {
				if str, ok := stringifyExtension(nestedValue); ok {
					result[nestedKey] = str
				}
			}
			continue
		}
		if strings.HasPrefix(key, extensionNamespace+"-") {
			if str, ok := stringifyExtension(value); ok {
				result[strings.TrimPrefix(key, extensionNamespace+"-")] = str
			}
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func stringifyExtension(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, v != ""
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	default:
		return "", false
	}
}

func mergeMetadata(target map[string]string, updates map[string]string) map[string]string {
	if len(updates) == 0 {
		return target
	}
	if target == nil {
		target = make(map[string]string, len(updates))
	}
	for key, value := range updates {
		target[key] = value
	}
	return target
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func joinPath(parent, segment string) string {
	if parent == "" {
		return segment
	}
	if segment == "" {
		return parent
	}
	return parent + "." + segment
}
