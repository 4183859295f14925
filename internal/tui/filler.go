package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formspec/pkg/fieldspec"
	"github.com/goliatone/go-formspec/pkg/formvalue"
)

// Filler walks a field spec tree and collects a raw value tree from terminal
// prompts. The result uses the same staging shapes the validator and
// normalizer expect, so it can be handed straight to Session.Submit.
type Filler struct {
	driver PromptDriver
}

// NewFiller builds a Filler on the given prompt driver.
func NewFiller(driver PromptDriver) *Filler {
	if driver == nil {
		driver = NewSurveyDriver()
	}
	return &Filler{driver: driver}
}

// Fill prompts for every editable field in the spec and returns the raw value
// tree.
func (f *Filler) Fill(ctx context.Context, spec *fieldspec.Field) (any, error) {
	return f.fill(ctx, spec)
}

func (f *Filler) fill(ctx context.Context, field *fieldspec.Field) (any, error) {
	if field == nil {
		return nil, nil
	}
	resolved := field.Resolve()
	if resolved.ReadOnly {
		return formvalue.Defaults(field), nil
	}

	switch resolved.Kind {
	case fieldspec.KindString:
		return f.fillString(ctx, field, resolved)
	case fieldspec.KindNumber:
		return f.fillNumber(ctx, field, resolved)
	case fieldspec.KindBoolean:
		return f.fillBoolean(ctx, field, resolved)
	case fieldspec.KindDate:
		return f.fillTemporal(ctx, field, "2006-01-02", "YYYY-MM-DD")
	case fieldspec.KindTime:
		return f.fillTemporal(ctx, field, "15:04", "HH:MM")
	case fieldspec.KindDateTime:
		return f.fillDateTime(ctx, field)
	case fieldspec.KindEnum:
		return f.fillEnum(ctx, field, resolved)
	case fieldspec.KindObject:
		return f.fillObject(ctx, field, resolved)
	case fieldspec.KindArray:
		return f.fillArray(ctx, field, resolved)
	case fieldspec.KindRecord:
		return f.fillRecord(ctx, field, resolved)
	case fieldspec.KindUnion:
		return f.fillUnion(ctx, field, resolved)
	default:
		return nil, fmt.Errorf("tui: no prompt for kind %q", resolved.Kind)
	}
}

func (f *Filler) fillString(ctx context.Context, field, resolved *fieldspec.Field) (any, error) {
	cfg := InputConfig{
		Message: field.DisplayLabel(),
		Help:    field.Description,
	}
	if str, ok := field.Default.(string); ok {
		cfg.Default = str
	}

	switch resolved.Format {
	case fieldspec.FormatPassword:
		return f.driver.Password(ctx, cfg)
	case fieldspec.FormatTextarea:
		return f.driver.TextArea(ctx, TextAreaConfig{
			Message: cfg.Message,
			Default: cfg.Default,
			Help:    cfg.Help,
		})
	default:
		return f.driver.Input(ctx, cfg)
	}
}

func (f *Filler) fillNumber(ctx context.Context, field, resolved *fieldspec.Field) (any, error) {
	cfg := InputConfig{
		Message: field.DisplayLabel(),
		Help:    field.Description,
		Validator: func(raw string) error {
			trimmed := strings.TrimSpace(raw)
			if trimmed == "" {
				return nil
			}
			value, err := strconv.ParseFloat(trimmed, 64)
			if err != nil {
				return fmt.Errorf("enter a number")
			}
			if resolved.Integer && value != float64(int64(value)) {
				return fmt.Errorf("enter a whole number")
			}
			return nil
		},
	}
	if num, ok := field.Default.(float64); ok {
		cfg.Default = strconv.FormatFloat(num, 'f', -1, 64)
	}

	raw, err := f.driver.Input(ctx, cfg)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil, fmt.Errorf("tui: parse number: %w", err)
	}
	return value, nil
}

func (f *Filler) fillBoolean(ctx context.Context, field, _ *fieldspec.Field) (any, error) {
	cfg := ConfirmConfig{
		Message: field.DisplayLabel(),
		Help:    field.Description,
	}
	if b, ok := field.Default.(bool); ok {
		cfg.Default = b
	}
	return f.driver.Confirm(ctx, cfg)
}

func (f *Filler) fillTemporal(ctx context.Context, field *fieldspec.Field, layout, hint string) (any, error) {
	cfg := InputConfig{
		Message: fmt.Sprintf("%s (%s)", field.DisplayLabel(), hint),
		Help:    field.Description,
		Validator: func(raw string) error {
			trimmed := strings.TrimSpace(raw)
			if trimmed == "" {
				return nil
			}
			if _, err := time.Parse(layout, trimmed); err != nil {
				return fmt.Errorf("enter %s", hint)
			}
			return nil
		},
	}
	if str, ok := field.Default.(string); ok {
		cfg.Default = str
	}
	return f.driver.Input(ctx, cfg)
}

func (f *Filler) fillDateTime(ctx context.Context, field *fieldspec.Field) (any, error) {
	datePart, err := f.fillTemporal(ctx, field, "2006-01-02", "YYYY-MM-DD")
	if err != nil {
		return nil, err
	}
	timeField := &fieldspec.Field{Name: field.Name, Label: field.DisplayLabel() + " time"}
	timePart, err := f.fillTemporal(ctx, timeField, "15:04", "HH:MM")
	if err != nil {
		return nil, err
	}
	return map[string]any{"date": datePart, "time": timePart}, nil
}

func (f *Filler) fillEnum(ctx context.Context, field, resolved *fieldspec.Field) (any, error) {
	if len(resolved.Options) == 0 {
		return nil, nil
	}
	labels := make([]string, len(resolved.Options))
	defaultIndex := -1
	for idx, option := range resolved.Options {
		labels[idx] = option.Label
		if field.HasDefault && optionValueEqual(option.Value, field.Default) {
			defaultIndex = idx
		}
	}
	choice, err := f.driver.Select(ctx, SelectConfig{
		Message:      field.DisplayLabel(),
		Options:      labels,
		DefaultIndex: defaultIndex,
		Help:         field.Description,
	})
	if err != nil {
		return nil, err
	}
	if choice < 0 || choice >= len(resolved.Options) {
		return nil, nil
	}
	return resolved.Options[choice].Value, nil
}

func (f *Filler) fillObject(ctx context.Context, field, resolved *fieldspec.Field) (any, error) {
	if label := field.DisplayLabel(); label != "" {
		if err := f.driver.Info(ctx, label); err != nil {
			return nil, err
		}
	}
	out := make(map[string]any, len(resolved.Fields))
	for _, child := range resolved.Fields {
		value, err := f.fill(ctx, child)
		if err != nil {
			return nil, err
		}
		out[child.Name] = value
	}
	return out, nil
}

func (f *Filler) fillArray(ctx context.Context, field, resolved *fieldspec.Field) (any, error) {
	items := []any{}
	for {
		if resolved.MaxItems != nil && len(items) >= *resolved.MaxItems {
			break
		}
		mustAdd := resolved.MinItems != nil && len(items) < *resolved.MinItems
		if !mustAdd {
			more, err := f.driver.Confirm(ctx, ConfirmConfig{
				Message: fmt.Sprintf("Add %s entry?", field.DisplayLabel()),
				Default: len(items) == 0 && field.Required,
			})
			if err != nil {
				return nil, err
			}
			if !more {
				break
			}
		}
		value, err := f.fill(ctx, resolved.Items)
		if err != nil {
			return nil, err
		}
		items = append(items, value)
	}
	return items, nil
}

func (f *Filler) fillRecord(ctx context.Context, field, resolved *fieldspec.Field) (any, error) {
	entries := []any{}
	for {
		more, err := f.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Add %s entry?", field.DisplayLabel()),
			Default: len(entries) == 0 && field.Required,
		})
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		key, err := f.driver.Input(ctx, InputConfig{Message: "Key"})
		if err != nil {
			return nil, err
		}
		value, err := f.fill(ctx, resolved.Values)
		if err != nil {
			return nil, err
		}
		entries = append(entries, map[string]any{"key": key, "value": value})
	}
	return entries, nil
}

// fillUnion prompts for the active branch only; the other option slots keep
// their defaults so the staging shape stays complete.
func (f *Filler) fillUnion(ctx context.Context, field, resolved *fieldspec.Field) (any, error) {
	if len(resolved.Branches) == 0 {
		return nil, nil
	}
	labels := make([]string, len(resolved.Branches))
	for idx, branch := range resolved.Branches {
		labels[idx] = branch.DisplayLabel()
	}
	selected, err := f.driver.Select(ctx, SelectConfig{
		Message:      field.DisplayLabel(),
		Options:      labels,
		DefaultIndex: 0,
		Help:         field.Description,
	})
	if err != nil {
		return nil, err
	}
	if selected < 0 {
		selected = 0
	}

	options := make([]any, len(resolved.Branches))
	for idx, branch := range resolved.Branches {
		if idx == selected {
			value, err := f.fill(ctx, branch)
			if err != nil {
				return nil, err
			}
			options[idx] = value
			continue
		}
		options[idx] = formvalue.Defaults(branch)
	}
	return map[string]any{"selected": float64(selected), "options": options}, nil
}

func optionValueEqual(a, b any) bool {
	if a == b {
		return true
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}
