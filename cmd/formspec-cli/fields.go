package main

import (
	"github.com/spf13/cobra"

	formspec "github.com/goliatone/go-formspec"
)

func newFieldsCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "Print the derived field spec tree as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			options, err := flags.options()
			if err != nil {
				return err
			}

			gen := formspec.New(options...)
			spec, err := gen.FieldSpec(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd, spec)
		},
	}
}
