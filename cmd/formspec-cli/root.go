package main

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	formspec "github.com/goliatone/go-formspec"
	"github.com/goliatone/go-formspec/pkg/schema"
)

type rootFlags struct {
	source     string
	format     string
	formID     string
	configPath string
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "formspec-cli",
		Short:         "Derive field specs, defaults, and submissions from schema documents",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVarP(&flags.source, "source", "s", "", "schema document path or URL")
	cmd.PersistentFlags().StringVar(&flags.format, "format", "", "force adapter by name (jsonschema, openapi)")
	cmd.PersistentFlags().StringVar(&flags.formID, "form", "", "form identifier when the document describes several")
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file with field overrides (JSON)")

	cmd.AddCommand(
		newFormsCommand(flags),
		newFieldsCommand(flags),
		newDefaultsCommand(flags),
		newSubmitCommand(flags),
		newFillCommand(flags),
		newLintCommand(),
	)
	return cmd
}

func (f *rootFlags) request() (formspec.Request, error) {
	src := parseSource(f.source)
	if src == nil {
		return formspec.Request{}, fmt.Errorf("a schema source is required (--source)")
	}
	return formspec.Request{
		Source: src,
		Format: f.format,
		FormID: f.formID,
	}, nil
}

func (f *rootFlags) options() ([]formspec.Option, error) {
	if f.configPath == "" {
		return nil, nil
	}
	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return nil, err
	}
	return cfg.options(), nil
}

func parseSource(raw string) schema.Source {
	path := strings.TrimSpace(raw)
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return schema.SourceFromURL(path)
	}
	return schema.SourceFromFile(path)
}

func printJSON(cmd *cobra.Command, value any) error {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(payload))
	return err
}
