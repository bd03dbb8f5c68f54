package main

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ajkula/GoArrival/config"
)

const version = "1.0.0"

// cli is the state shared by every subcommand of one invocation
type cli struct {
	configPath string
	overrides  *viper.Viper
	stdout     io.Writer
	stderr     io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{
		overrides: config.NewOverrides(),
		stdout:    stdout,
		stderr:    stderr,
	}

	root := &cobra.Command{
		Use:   "arrival",
		Short: "Wait for files dropped into a directory to finish arriving",
		Long: `arrival watches a directory for a new file with a given extension and reports it
once its size has stopped changing. Files present when the wait starts and editor
lock files such as "~$report.xlsx" are never reported.

Every setting can come from a YAML config file, an ARRIVAL_* environment variable
(for example ARRIVAL_DETECTION_TIMEOUT=30s) or a flag, flags winning.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (defaults apply when omitted)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newWaitCmd(c),
		newLatestCmd(c),
		newServeCmd(c),
		newConfigCmd(c),
		newVersionCmd(c),
	)

	return root
}

// loadConfig reads the config file if one was given, then applies environment
// variables and the flags the user actually set on cmd.
func (c *cli) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if c.configPath != "" {
		loaded, err := config.LoadConfig(c.configPath)
		if err != nil {
			return nil, &exitError{code: exitFailure, err: err}
		}
		cfg = loaded
	}

	if err := c.bindFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	if err := cfg.ApplyOverrides(c.overrides); err != nil {
		return nil, &exitError{code: exitFailure, err: err}
	}
	return cfg, nil
}

// flagKeys maps flag names onto configuration keys
var flagKeys = map[string]string{
	"log-level":     "general.logLevel",
	"dir":           "detection.directory",
	"strategy":      "detection.strategy",
	"ext":           "detection.extension",
	"timeout":       "detection.timeout",
	"poll-interval": "detection.pollInterval",
	"settle":        "detection.settleTime",
	"address":       "http.address",
	"port":          "http.port",
}

// bindFlags binds the flags of the command being run. Binding happens at run time
// because several subcommands define a flag for the same key.
func (c *cli) bindFlags(flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := c.overrides.BindPFlag(key, flag); err != nil {
			return err
		}
	}
	return nil
}

// addDetectionFlags registers the flags shared by commands that look at a directory
func addDetectionFlags(cmd *cobra.Command) {
	defaults := config.DefaultConfig()

	flags := cmd.Flags()
	flags.StringP("dir", "d", "", "directory to watch (default: directory of the executable)")
	flags.StringP("ext", "e", defaults.Detection.Extension, "file extension to wait for")
	flags.String("strategy", defaults.Detection.Strategy, "detection strategy: polling or event")
	flags.Duration("timeout", defaults.Detection.Timeout, "give up after this long")
	flags.Duration("poll-interval", defaults.Detection.PollInterval, "rescan period of the polling strategy")
	flags.Duration("settle", defaults.Detection.SettleTime, "a file is complete when its size holds for this long")
}
