package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vitalvas/routedoc/openapi"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file...]",
		Short: "Validate OpenAPI documents, or the generated one when no file is given",
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd, nil)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				doc, err := a.buildDocument()
				if err != nil {
					return err
				}
				report, err := openapi.Validate(doc)
				if err != nil {
					return err
				}
				printReport(out, "generated", report)
				return report.Err()
			}

			invalid := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				report, err := openapi.ValidateBytes(data)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				printReport(out, path, report)
				if !report.Valid() {
					invalid++
				}
			}

			if invalid > 0 {
				return fmt.Errorf("%w: %d of %d files", openapi.ErrInvalidDocument, invalid, len(args))
			}
			return nil
		},
	}
}

func printReport(w io.Writer, name string, report *openapi.ValidationReport) {
	if report.Valid() {
		fmt.Fprintf(w, "%s: valid (OpenAPI %s)\n", name, report.Version)
	} else {
		fmt.Fprintf(w, "%s: %d errors\n", name, len(report.Errors))
	}
	for _, e := range report.Errors {
		fmt.Fprintf(w, "  error: %s\n", e)
	}
	for _, warn := range report.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
}
