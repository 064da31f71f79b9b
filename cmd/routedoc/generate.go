package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vitalvas/routedoc/openapi"
)

const stdoutOutput = "-"

func newGenerateCmd(a *app) *cobra.Command {
	var (
		format   string
		validate bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the OpenAPI document to a file or stdout",
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd, map[string]string{"output": "output"})
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			output := a.cfg.Output

			f, err := outputFormat(format, output)
			if err != nil {
				return err
			}

			doc, err := a.buildDocument()
			if err != nil {
				return err
			}

			if validate {
				report, err := openapi.Validate(doc)
				if err != nil {
					return err
				}
				for _, w := range report.Warnings {
					a.logger.Warn().Str("warning", w).Msg("validation warning")
				}
				if err := report.Err(); err != nil {
					return err
				}
			}

			if output == stdoutOutput {
				data, err := openapi.Marshal(doc, f)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			if err := openapi.ExportFormat(doc, output, f); err != nil {
				return err
			}

			a.logger.Info().
				Str("path", output).
				Str("format", string(f)).
				Int("operations", doc.OperationCount()).
				Msg("document written")
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", openapi.DefaultOutput, `output file, "-" for stdout`)
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default from the output extension, yaml for stdout)")
	cmd.Flags().BoolVar(&validate, "validate", false, "validate the document before writing it")

	return cmd
}

func outputFormat(name, output string) (openapi.Format, error) {
	if name != "" {
		f, err := openapi.ParseFormat(name)
		if err != nil {
			return "", fmt.Errorf("--format: %w", err)
		}
		return f, nil
	}
	if output == stdoutOutput {
		return openapi.FormatYAML, nil
	}
	return openapi.FormatFromPath(output), nil
}
