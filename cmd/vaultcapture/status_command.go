package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vaultcapture/internal/jobs"
	"vaultcapture/internal/preflight"
	"vaultcapture/internal/publisher"
	"vaultcapture/internal/secrets"
	"vaultcapture/internal/settings"
	"vaultcapture/internal/store"
)

type statusReport struct {
	Checks []preflight.Result  `json:"checks"`
	Jobs   map[jobs.Status]int `json:"jobs"`
	Ready  bool                `json:"ready"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the environment and summarize the job queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPool(cmd, func(pool *store.Pool) error {
				current, err := settings.NewRepository(pool).Get(cmd.Context())
				if err != nil {
					return err
				}
				stats, err := jobs.NewRepository(pool).Stats(cmd.Context())
				if err != nil {
					return err
				}
				source, _ := secrets.NewStore().Source()
				pub := publisher.NewFromConfig(ctx.config, ctx.ensureLogger())

				report := statusReport{
					Checks: preflight.RunAll(preflight.Inputs{
						Config:       ctx.config,
						Settings:     current,
						KeySource:    source,
						ResolveVault: pub.ResolveVault,
					}),
					Jobs:  stats,
					Ready: true,
				}
				for _, check := range report.Checks {
					if !check.Passed && !check.Optional {
						report.Ready = false
					}
				}
				if jsonOut {
					return writeJSON(cmd, report)
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, "Environment")
				for _, check := range report.Checks {
					fmt.Fprintln(out, renderStatusLine(check.Name, checkKind(check), check.Detail, colorize))
				}
				fmt.Fprintln(out, renderStatusLine("Write mode", statusInfo, string(current.WriteMode), colorize))
				fmt.Fprintln(out, "Jobs")
				parts := make([]string, 0, len(stats))
				for _, status := range jobs.AllStatuses() {
					parts = append(parts, string(status)+"="+strconv.Itoa(stats[status]))
				}
				fmt.Fprintln(out, renderStatusLine("Counts", statusInfo, strings.Join(parts, " "), colorize))
				if !report.Ready {
					fmt.Fprintln(out, renderStatusLine("Overall", statusError, "fix the errors above before ingesting", colorize))
				} else {
					fmt.Fprintln(out, renderStatusLine("Overall", statusOK, "ready", colorize))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
