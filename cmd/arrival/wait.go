package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newWaitCmd(c *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Block until a new file has fully arrived",
		Long: `wait returns as soon as a new matching file has stopped growing and prints its path.

Exit status is 0 when a file arrived, 2 when the timeout elapsed or the wait was
interrupted, and 1 on errors such as a missing directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			keepStdoutClean(cfg)

			app, err := newApplication(cfg)
			if err != nil {
				return &exitError{code: exitFailure, err: err}
			}
			defer app.close()

			req, err := app.detectionRequest()
			if err != nil {
				return &exitError{code: exitFailure, err: err}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := app.arrivals.WaitForArrival(ctx, req)
			if err != nil {
				return &exitError{code: exitFailure, err: err}
			}

			if asJSON {
				enc := json.NewEncoder(c.stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return &exitError{code: exitFailure, err: err}
				}
			} else if result.Found() {
				fmt.Fprintln(c.stdout, result.Path)
			}

			if !result.Found() {
				if !asJSON {
					fmt.Fprintf(c.stderr, "No stable file arrived in %s (%s after %s)\n",
						result.Directory, result.Outcome, result.Elapsed().Round(time.Millisecond))
				}
				return &exitError{code: exitNotFound}
			}

			if !asJSON {
				fmt.Fprintf(c.stderr, "Arrived: %s, %s in %s\n",
					result.Path, humanize.Bytes(uint64(result.Size)), result.Elapsed().Round(time.Millisecond))
			}
			return nil
		},
	}

	addDetectionFlags(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full detection result as JSON")

	return cmd
}
