package main

import (
	"github.com/spf13/cobra"

	"propbag/internal/config"
)

func newConfigCmd() *cobra.Command {
	var asTOML bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the default options file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			marshal := config.Marshal
			if asTOML {
				marshal = config.MarshalTOML
			}

			data, err := marshal(config.Default())
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}

	cmd.Flags().BoolVar(&asTOML, "toml", false, "write TOML instead of YAML")

	return cmd
}
