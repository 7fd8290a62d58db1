package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"propbag/serialization"
)

var errCheckFailed = errors.New("document has errors")

type checkOptions struct {
	strict bool
	config string
}

func newCheckCmd() *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Load a document and print every deserialization event",
		Long: `Loads a document into untyped values without failing and prints each
event with its severity and path. Unknown $type names, dangling $ref ids and
malformed metadata are reported. Exits non-zero when any Error or Exception
event was recorded.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "stop at the first error")
	cmd.Flags().StringVar(&opts.config, "config", "", "options file (YAML or TOML)")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts checkOptions) error {
	logger := loggerFromContext(cmd.Context())

	params, err := loadParams(cmd, opts.config)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("strict") {
		params.Strict = opts.strict
	}

	params.Context = serialization.NewContext(serialization.WithLogger(logger))

	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	var doc any
	result := serialization.TryFromJSON(text, &doc, params)

	out := cmd.OutOrStdout()
	for _, e := range result.Events() {
		path := e.Path
		if path == "" {
			path = "."
		}

		// the path has its own column
		e.Path = ""
		fmt.Fprintf(out, "%s\t%s\t%s\n", severityLabel(e.Severity), path, e)
	}

	if !result.DidSucceed() {
		return fmt.Errorf("%w: %d events", errCheckFailed, len(result.Events()))
	}

	logger.Info("document is valid", "events", len(result.Events()))

	return nil
}

func severityLabel(s serialization.EventType) string {
	switch s {
	case serialization.EventLog:
		return "log"
	case serialization.EventWarning:
		return "warning"
	case serialization.EventError:
		return "error"
	default:
		return "exception"
	}
}
