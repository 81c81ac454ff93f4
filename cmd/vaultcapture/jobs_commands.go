package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vaultcapture/internal/jobs"
	"vaultcapture/internal/lifecycle"
	"vaultcapture/internal/services"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and manage ingestion jobs",
	}

	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsStatsCommand(ctx))
	jobsCmd.AddCommand(newJobsStatusCommand(ctx))
	jobsCmd.AddCommand(newJobsRetryCommand(ctx))
	jobsCmd.AddCommand(newJobsCancelCommand(ctx))

	return jobsCmd
}

func parseStatuses(values []string) ([]jobs.Status, error) {
	statuses := make([]jobs.Status, 0, len(values))
	for _, value := range values {
		status, err := jobs.ParseStatus(value)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, most recently updated first",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatuses(listStatuses)
			if err != nil {
				return err
			}
			return ctx.withLifecycle(cmd, func(svc *lifecycle.Service) error {
				list, err := svc.ListJobs(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if jsonOut {
					if list == nil {
						list = []jobs.Job{}
					}
					return writeJSON(cmd, list)
				}
				out := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(out, "No jobs")
					return nil
				}
				fmt.Fprint(out, renderTable(
					[]string{"ID", "Title", "Status", "Assets", "Updated"},
					buildJobRows(list, shouldColorize(out), time.Now()),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by job status (repeatable)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func buildJobRows(list []jobs.Job, colorize bool, now time.Time) [][]string {
	rows := make([][]string, 0, len(list))
	for _, job := range list {
		rows = append(rows, []string{
			job.ID,
			job.Title,
			renderStatus(job.Status, colorize),
			strconv.Itoa(job.AssetCount),
			formatWhen(job.UpdatedAt, now),
		})
	}
	return rows
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a job and its assets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLifecycle(cmd, func(svc *lifecycle.Service) error {
				job, err := svc.FindJob(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if job == nil {
					return jobNotFound(args[0])
				}
				if jsonOut {
					return writeJSON(cmd, job)
				}
				printJob(cmd.OutOrStdout(), job, time.Now())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func printJob(out io.Writer, job *jobs.JobWithAssets, now time.Time) {
	colorize := shouldColorize(out)
	fmt.Fprintf(out, "Job:     %s\n", job.ID)
	fmt.Fprintf(out, "Title:   %s\n", job.Title)
	fmt.Fprintf(out, "Status:  %s\n", renderStatus(job.Status, colorize))
	fmt.Fprintf(out, "Created: %s\n", formatWhen(job.CreatedAt, now))
	fmt.Fprintf(out, "Updated: %s\n", formatWhen(job.UpdatedAt, now))
	if next := jobs.AllowedTransitions(job.Status); len(next) > 0 {
		names := make([]string, len(next))
		for i, s := range next {
			names[i] = string(s)
		}
		fmt.Fprintf(out, "Next:    %s\n", strings.Join(names, ", "))
	}
	if len(job.Assets) == 0 {
		return
	}
	fmt.Fprintln(out)
	rows := make([][]string, 0, len(job.Assets))
	for i, asset := range job.Assets {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			asset.OriginalPath,
			string(asset.MediaType),
			asset.MIMEType,
			formatSize(asset.SizeBytes),
			shortHash(asset.SHA256),
		})
	}
	fmt.Fprint(out, renderTable(
		[]string{"#", "Original", "Type", "MIME", "Size", "SHA-256"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))
}

func newJobsStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show job counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLifecycle(cmd, func(svc *lifecycle.Service) error {
				stats, err := svc.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, stats)
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				rows := make([][]string, 0, len(stats))
				for _, status := range jobs.AllStatuses() {
					rows = append(rows, []string{renderStatus(status, colorize), strconv.Itoa(stats[status])})
				}
				fmt.Fprint(out, renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newJobsStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Move a job to another status",
		Long:  "Move a job to another status. Only transitions allowed by the job lifecycle are accepted.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			next, err := jobs.ParseStatus(args[1])
			if err != nil {
				return err
			}
			return ctx.withLifecycle(cmd, func(svc *lifecycle.Service) error {
				ok, err := svc.UpdateStatus(cmd.Context(), args[0], next)
				if err != nil {
					return err
				}
				if !ok {
					return jobNotFound(args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Job %s is now %s\n", args[0], next)
				return nil
			})
		},
	}
}

func newJobsRetryCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "retry ID...",
		Short: "Return failed or cancelled jobs to the queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLifecycle(cmd, func(svc *lifecycle.Service) error {
				result, err := svc.Retry(cmd.Context(), args...)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, result)
				}
				printActionResult(cmd.OutOrStdout(), result, "queued for retry")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newJobsCancelCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "cancel ID...",
		Short: "Cancel queued or processing jobs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLifecycle(cmd, func(svc *lifecycle.Service) error {
				result, err := svc.Cancel(cmd.Context(), args...)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, result)
				}
				printActionResult(cmd.OutOrStdout(), result, "cancelled")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func printActionResult(out io.Writer, result lifecycle.ActionResult, verb string) {
	for _, item := range result.Items {
		switch item.Outcome {
		case lifecycle.OutcomeUpdated:
			fmt.Fprintf(out, "Job %s %s\n", item.ID, verb)
		case lifecycle.OutcomeNotFound:
			fmt.Fprintf(out, "Job %s not found\n", item.ID)
		case lifecycle.OutcomeNotAllowed:
			fmt.Fprintf(out, "Job %s is %s; skipped\n", item.ID, item.PriorStatus)
		}
	}
}

func jobNotFound(id string) error {
	return services.Wrap(services.ErrNotFound, "cli", "find job", fmt.Sprintf("job %s not found", strings.TrimSpace(id)), nil)
}
