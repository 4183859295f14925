package main

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	formspec "github.com/goliatone/go-formspec"
)

func newSubmitCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "submit [values.json]",
		Short: "Validate a raw value tree and print the canonical result",
		Long: "Reads a JSON value tree from the given file (or stdin when the " +
			"argument is omitted or \"-\"), validates it against the form, and " +
			"prints the canonical values. Validation findings go to stderr and " +
			"the command exits non-zero.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			options, err := flags.options()
			if err != nil {
				return err
			}

			raw, err := readValues(cmd, args)
			if err != nil {
				return err
			}

			gen := formspec.New(options...)
			session, err := gen.Session(cmd.Context(), req)
			if err != nil {
				return err
			}

			canonical, issues := session.Submit(raw)
			if len(issues) > 0 {
				for _, issue := range issues {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", issue.Path, issue.Message)
				}
				return fmt.Errorf("%d validation issue(s)", len(issues))
			}
			return printJSON(cmd, canonical)
		},
	}
}

func readValues(cmd *cobra.Command, args []string) (any, error) {
	var data []byte
	var err error
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse values: %w", err)
	}
	return raw, nil
}
