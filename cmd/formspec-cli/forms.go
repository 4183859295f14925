package main

import (
	"fmt"

	"github.com/spf13/cobra"

	formspec "github.com/goliatone/go-formspec"
)

func newFormsCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "forms",
		Short: "List the forms a schema document exposes",
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
			refs, err := gen.Forms(cmd.Context(), req)
			if err != nil {
				return err
			}
			for _, ref := range refs {
				line := ref.ID
				if ref.Summary != "" {
					line = fmt.Sprintf("%s\t%s", ref.ID, ref.Summary)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}
