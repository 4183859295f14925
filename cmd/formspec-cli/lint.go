package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formspec/pkg/schema"
	"github.com/goliatone/go-formspec/pkg/validation"
)

func newLintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Check JSON Schema documents for adapter compatibility",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				raw, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				result := validation.ValidateJSONSchema(cmd.Context(), schema.SourceFromFile(path), raw, validation.JSONSchemaValidationOptions{})
				if result.Valid {
					continue
				}
				failed++
				for _, issue := range result.Issues {
					location := issue.Field
					if location == "" {
						location = issue.Path
					}
					if location == "" {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", path, issue.Message)
						continue
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s -> %s\n", path, location, issue.Message)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d document(s) failed", failed)
			}
			return nil
		},
	}
}
