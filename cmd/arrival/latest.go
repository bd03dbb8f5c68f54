package main

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ajkula/GoArrival/domain/model"
)

func newLatestCmd(c *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Print the most recently modified matching file already present",
		Long: `latest does not wait. It prints the newest matching file in the directory and
exits 2 when there is none.`,
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

			dir, err := app.arrivals.ResolveDirectory(cfg.Detection.Directory)
			if err != nil {
				return &exitError{code: exitFailure, err: err}
			}

			entry, err := app.arrivals.FindLatest(cmd.Context(), dir, cfg.DetectionOptions())
			if err != nil {
				return &exitError{code: exitFailure, err: err}
			}

			if asJSON {
				enc := json.NewEncoder(c.stdout)
				enc.SetIndent("", "  ")
				enc.Encode(struct {
					Directory string                `json:"directory"`
					Found     bool                  `json:"found"`
					Entry     *model.DirectoryEntry `json:"entry,omitempty"`
				}{dir, entry != nil, entry})
			}

			if entry == nil {
				if !asJSON {
					fmt.Fprintf(c.stderr, "No %s file in %s\n", cfg.DetectionOptions().Extension, dir)
				}
				return &exitError{code: exitNotFound}
			}

			if !asJSON {
				fmt.Fprintln(c.stdout, entry.Path)
				fmt.Fprintf(c.stderr, "%s, modified %s\n", humanize.Bytes(uint64(entry.Size)), humanize.Time(entry.ModTime))
			}
			return nil
		},
	}

	addDetectionFlags(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")

	return cmd
}
