package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"propbag/serialization"
)

type fmtOptions struct {
	minified   bool
	simplified bool
	config     string
}

func newFmtCmd() *cobra.Command {
	var opts fmtOptions

	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Re-emit a document pretty, minified or simplified",
		Long: `Reads a document in standard or simplified syntax and writes it again in
the selected format. Key order and number literals are kept.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.minified, "minified", false, "write no insignificant whitespace")
	cmd.Flags().BoolVar(&opts.simplified, "simplified", false, "write unquoted keys and '=' separators")
	cmd.Flags().StringVar(&opts.config, "config", "", "options file (YAML or TOML)")

	return cmd
}

func runFmt(cmd *cobra.Command, args []string, opts fmtOptions) error {
	logger := loggerFromContext(cmd.Context())

	params, err := loadParams(cmd, opts.config)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("minified") {
		params.Minified = opts.minified
	}

	if cmd.Flags().Changed("simplified") {
		params.Simplified = opts.simplified
	}

	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	view, err := serialization.ParseView(text)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	var format serialization.Format
	if params.Minified {
		format |= serialization.FormatMinified
	}

	if params.Simplified {
		format |= serialization.FormatSimplified
	}

	w := serialization.NewJSONWriter(max(params.InitialCapacity, len(text)), format)
	w.WriteView(view)

	logger.Debug("document formatted", "in", len(text), "out", w.Len())

	if _, err := w.WriteTo(cmd.OutOrStdout()); err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout())

	return err
}

// loadParams reads the options file at path, or returns empty Params.
func loadParams(cmd *cobra.Command, path string) (*serialization.Params, error) {
	if path == "" {
		return &serialization.Params{}, nil
	}

	params, err := serialization.LoadParams(path)
	if err != nil {
		return nil, err
	}

	loggerFromContext(cmd.Context()).Debug("options loaded", "path", path)

	return params, nil
}
