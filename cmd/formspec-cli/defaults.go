package main

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	formspec "github.com/goliatone/go-formspec"
)

func newDefaultsCommand(flags *rootFlags) *cobra.Command {
	var seedPath string

	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Print the initial value tree for a form",
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
			session, err := gen.Session(cmd.Context(), req)
			if err != nil {
				return err
			}

			if seedPath == "" {
				return printJSON(cmd, session.Defaults())
			}

			data, err := os.ReadFile(seedPath)
			if err != nil {
				return fmt.Errorf("read seed values: %w", err)
			}
			var seed any
			if err := json.Unmarshal(data, &seed); err != nil {
				return fmt.Errorf("parse seed values: %w", err)
			}
			return printJSON(cmd, session.DefaultsWith(seed))
		},
	}

	cmd.Flags().StringVar(&seedPath, "seed", "", "JSON file with values to seed the defaults with")
	return cmd
}
