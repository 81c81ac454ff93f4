package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaultcapture/internal/notes"
)

func newNoteCommand(ctx *commandContext) *cobra.Command {
	noteCmd := &cobra.Command{
		Use:   "note",
		Short: "Render and publish job notes",
	}
	noteCmd.AddCommand(newNotePreviewCommand(ctx))
	noteCmd.AddCommand(newNotePublishCommand(ctx))
	return noteCmd
}

func newNotePreviewCommand(ctx *commandContext) *cobra.Command {
	var summarize bool

	cmd := &cobra.Command{
		Use:   "preview ID",
		Short: "Print the note markdown for a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withNotes(cmd, func(svc *notes.Service) error {
				markdown, err := svc.Preview(cmd.Context(), args[0], summarize)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), markdown)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&summarize, "summarize", false, "Fill Key Insights from the summarizer")
	return cmd
}

func newNotePublishCommand(ctx *commandContext) *cobra.Command {
	var summarize bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "publish ID",
		Short: "Write the note for a job into the vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withNotes(cmd, func(svc *notes.Service) error {
				result, err := svc.Publish(cmd.Context(), args[0], summarize)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, result)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Published %s (%s)\n", result.NotePath, result.Method)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&summarize, "summarize", false, "Fill Key Insights from the summarizer")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newSummarizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize ID",
		Short: "Ask the summarizer about a job's source files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withNotes(cmd, func(svc *notes.Service) error {
				summary, err := svc.Summarize(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), summary)
				return nil
			})
		},
	}
}
