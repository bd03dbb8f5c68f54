package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ajkula/GoArrival/config"
)

func newConfigCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	generate := &cobra.Command{
		Use:   "generate [path]",
		Short: "Write a configuration file holding the defaults",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "config.yaml"
			if len(args) == 1 {
				path = args[0]
			} else if c.configPath != "" {
				path = c.configPath
			}

			if _, err := os.Stat(path); err == nil && !force {
				return &exitError{code: exitFailure, err: fmt.Errorf("%s already exists, use --force to overwrite it", path)}
			}

			if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
				return &exitError{code: exitFailure, err: err}
			}
			fmt.Fprintf(c.stdout, "Default configuration file generated at: %s\n", path)
			return nil
		},
	}
	generate.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after environment and flag overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			return config.WriteConfig(cfg, c.stdout)
		},
	}

	cmd.AddCommand(generate, show)
	return cmd
}
