package main

import (
	"fmt"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	formspec "github.com/goliatone/go-formspec"
	"github.com/goliatone/go-formspec/pkg/fieldspec"
	"github.com/goliatone/go-formspec/pkg/orchestrator"
)

// cliConfig carries builder customization loaded from a config file: per-field
// overrides and opt-in heuristics.
type cliConfig struct {
	overrides         fieldspec.Overrides
	passwordHeuristic bool
}

func loadConfig(path string) (*cliConfig, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	cfg := &cliConfig{
		passwordHeuristic: k.Bool("passwordHeuristic"),
	}

	if raw := k.Get("overrides"); raw != nil {
		table, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("config %s: overrides must be an object", path)
		}
		overrides, err := overridesFromConfig(table)
		if err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		cfg.overrides = overrides
	}
	return cfg, nil
}

func (c *cliConfig) options() []formspec.Option {
	builderOptions := []fieldspec.BuilderOption{}
	if len(c.overrides) > 0 {
		builderOptions = append(builderOptions, fieldspec.WithOverrides(c.overrides))
	}
	if c.passwordHeuristic {
		builderOptions = append(builderOptions, fieldspec.WithPasswordHeuristic())
	}
	if len(builderOptions) == 0 {
		return nil
	}
	return []formspec.Option{orchestrator.WithBuilderOptions(builderOptions...)}
}

func overridesFromConfig(table map[string]any) (fieldspec.Overrides, error) {
	out := make(fieldspec.Overrides, len(table))
	for key, raw := range table {
		entry, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("overrides.%s must be an object", key)
		}
		override, err := overrideFromConfig(key, entry)
		if err != nil {
			return nil, err
		}
		out[key] = override
	}
	return out, nil
}

func overrideFromConfig(key string, entry map[string]any) (fieldspec.Override, error) {
	override := fieldspec.Override{}
	for name, value := range entry {
		switch name {
		case "label":
			override.Label, _ = value.(string)
		case "description":
			override.Description, _ = value.(string)
		case "errorMessage":
			override.ErrorMessage, _ = value.(string)
		case "format":
			str, _ := value.(string)
			override.Format = fieldspec.Format(str)
		case "order":
			num, ok := value.(float64)
			if !ok {
				return fieldspec.Override{}, fmt.Errorf("overrides.%s.order must be a number", key)
			}
			order := int(num)
			override.Order = &order
		case "default":
			override.Default = value
			override.HasDefault = true
		case "fields":
			nested, ok := value.(map[string]any)
			if !ok {
				return fieldspec.Override{}, fmt.Errorf("overrides.%s.fields must be an object", key)
			}
			fields, err := overridesFromConfig(nested)
			if err != nil {
				return fieldspec.Override{}, err
			}
			override.Fields = fields
		default:
			return fieldspec.Override{}, fmt.Errorf("overrides.%s: unknown key %q", key, name)
		}
	}
	return override, nil
}
