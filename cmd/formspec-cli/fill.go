package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	formspec "github.com/goliatone/go-formspec"
	"github.com/goliatone/go-formspec/internal/tui"
)

func newFillCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fill",
		Short: "Fill a form interactively and print the canonical values",
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

			filler := tui.NewFiller(tui.NewSurveyDriver())
			raw, err := filler.Fill(cmd.Context(), session.Spec())
			if err != nil {
				if errors.Is(err, tui.ErrAborted) {
					return fmt.Errorf("aborted")
				}
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
