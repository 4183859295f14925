package formvalue

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goliatone/go-formspec/pkg/fieldspec"
)

// TagValidator is the built-in DeepValidator. It maps field spec constraints
// onto go-playground/validator tag checks for formats and bounds, and handles
// the constraints that have no tag equivalent (regex patterns, enum
// membership, date layouts) directly.
type TagValidator struct {
	validate *validator.Validate

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// NewTagValidator constructs the built-in leaf validator.
func NewTagValidator() *TagValidator {
	return &TagValidator{
		validate: validator.New(),
		patterns: make(map[string]*regexp.Regexp),
	}
}

// ValidateLeaf checks one leaf value against its spec's constraints. The
// value is assumed non-empty; presence is the caller's contract.
func (tv *TagValidator) ValidateLeaf(spec *fieldspec.Field, value any) []Issue {
	switch spec.Kind {
	case fieldspec.KindString:
		return tv.validateString(spec, value)
	case fieldspec.KindNumber:
		return tv.validateNumber(spec, value)
	case fieldspec.KindEnum:
		return tv.validateEnum(spec, value)
	case fieldspec.KindDate:
		return tv.validateTemporal(spec, value, []string{"2006-01-02"})
	case fieldspec.KindTime:
		return tv.validateTemporal(spec, value, []string{"15:04", "15:04:05"})
	case fieldspec.KindDateTime:
		return tv.validateTemporal(spec, value, []string{
			"2006-01-02T15:04", "2006-01-02T15:04:05", time.RFC3339,
		})
	}
	return nil
}

func (tv *TagValidator) validateString(spec *fieldspec.Field, value any) []Issue {
	str, ok := value.(string)
	if !ok {
		return []Issue{{Code: CodeFormat, Message: spec.DisplayLabel() + " must be text"}}
	}
	var issues []Issue

	switch spec.Format {
	case fieldspec.FormatEmail:
		if err := tv.validate.Var(str, "email"); err != nil {
			issues = append(issues, Issue{Code: CodeFormat, Message: spec.DisplayLabel() + " must be a valid email address"})
		}
	case fieldspec.FormatURL:
		if err := tv.validate.Var(str, "url"); err != nil {
			issues = append(issues, Issue{Code: CodeFormat, Message: spec.DisplayLabel() + " must be a valid URL"})
		}
	}

	if spec.MinLength != nil {
		if err := tv.validate.Var(str, fmt.Sprintf("min=%d", *spec.MinLength)); err != nil {
			issues = append(issues, Issue{Code: CodeLength, Message: fmt.Sprintf("%s must be at least %d characters", spec.DisplayLabel(), *spec.MinLength)})
		}
	}
	if spec.MaxLength != nil {
		if err := tv.validate.Var(str, fmt.Sprintf("max=%d", *spec.MaxLength)); err != nil {
			issues = append(issues, Issue{Code: CodeLength, Message: fmt.Sprintf("%s must be at most %d characters", spec.DisplayLabel(), *spec.MaxLength)})
		}
	}
	if spec.Pattern != "" {
		re, err := tv.pattern(spec.Pattern)
		if err == nil && !re.MatchString(str) {
			issues = append(issues, Issue{Code: CodePattern, Message: spec.DisplayLabel() + " has an invalid format"})
		}
	}
	return issues
}

func (tv *TagValidator) validateNumber(spec *fieldspec.Field, value any) []Issue {
	num, ok := numericValue(value)
	if !ok {
		return []Issue{{Code: CodeFormat, Message: spec.DisplayLabel() + " must be a number"}}
	}
	var issues []Issue
	if spec.Integer && num != math.Trunc(num) {
		issues = append(issues, Issue{Code: CodeFormat, Message: spec.DisplayLabel() + " must be a whole number"})
	}
	if spec.Min != nil {
		if err := tv.validate.Var(num, fmt.Sprintf("min=%v", *spec.Min)); err != nil {
			issues = append(issues, Issue{Code: CodeRange, Message: fmt.Sprintf("%s must be at least %v", spec.DisplayLabel(), *spec.Min)})
		}
	}
	if spec.Max != nil {
		if err := tv.validate.Var(num, fmt.Sprintf("max=%v", *spec.Max)); err != nil {
			issues = append(issues, Issue{Code: CodeRange, Message: fmt.Sprintf("%s must be at most %v", spec.DisplayLabel(), *spec.Max)})
		}
	}
	if spec.Step != nil && *spec.Step > 0 {
		if remainder := math.Mod(num, *spec.Step); math.Abs(remainder) > 1e-9 && math.Abs(remainder-*spec.Step) > 1e-9 {
			issues = append(issues, Issue{Code: CodeRange, Message: fmt.Sprintf("%s must be a multiple of %v", spec.DisplayLabel(), *spec.Step)})
		}
	}
	return issues
}

func (tv *TagValidator) validateEnum(spec *fieldspec.Field, value any) []Issue {
	for _, option := range spec.Options {
		if optionEqual(option.Value, value) {
			return nil
		}
	}
	return []Issue{{Code: CodeEnum, Message: spec.DisplayLabel() + " must be one of the listed options"}}
}

func (tv *TagValidator) validateTemporal(spec *fieldspec.Field, value any, layouts []string) []Issue {
	str, ok := value.(string)
	if !ok {
		return []Issue{{Code: CodeFormat, Message: spec.DisplayLabel() + " must be text"}}
	}
	str = strings.TrimSpace(str)
	for _, layout := range layouts {
		if _, err := time.Parse(layout, str); err == nil {
			return nil
		}
	}
	return []Issue{{Code: CodeFormat, Message: spec.DisplayLabel() + " is not a valid value"}}
}

func (tv *TagValidator) pattern(source string) (*regexp.Regexp, error) {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	if re, ok := tv.patterns[source]; ok {
		return re, nil
	}
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, err
	}
	tv.patterns[source] = re
	return re, nil
}

func optionEqual(option, value any) bool {
	if option == value {
		return true
	}
	left, lok := numericValue(option)
	right, rok := numericValue(value)
	return lok && rok && left == right
}
