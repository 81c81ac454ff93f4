package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaultcapture/internal/config"
	"vaultcapture/internal/lifecycle"
)

func newEnqueueCommand(ctx *commandContext) *cobra.Command {
	var title string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "enqueue FILE...",
		Short: "Store files in the content store and create a queued job",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := make([]string, 0, len(args))
			for _, arg := range args {
				expanded, err := config.ExpandPath(arg)
				if err != nil {
					return fmt.Errorf("resolve %q: %w", arg, err)
				}
				paths = append(paths, expanded)
			}
			return ctx.withLifecycle(cmd, func(svc *lifecycle.Service) error {
				id, err := svc.Enqueue(cmd.Context(), paths, title)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, map[string]any{"job_id": id, "files": len(paths)})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Enqueued job %s (%d files)\n", id, len(paths))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Job title (defaults to one derived from the file count)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
