package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/vytor/wordflash/internal/models"
)

func (c *cli) enqueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enqueue <job_type>",
		Short: "Queue a background job",
		Long: `Queue a background job.

Examples:
  wordflash enqueue refresh_stats --profile 3
  wordflash enqueue send_review_notifications
  wordflash enqueue import_words --payload '{"source_dir":"data/import"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profileID, _ := cmd.Flags().GetInt64("profile")
			rawPayload, _ := cmd.Flags().GetString("payload")
			delay, _ := cmd.Flags().GetDuration("delay")

			var profile *int64
			if profileID != 0 {
				profile = &profileID
			}
			var payload any
			if rawPayload != "" {
				if !json.Valid([]byte(rawPayload)) {
					return fmt.Errorf("--payload is not valid JSON")
				}
				payload = json.RawMessage(rawPayload)
			}
			var runAfter time.Time
			if delay > 0 {
				runAfter = utcNow().Add(delay)
			}

			a, err := openApp(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			job, err := a.queue.Enqueue(cmd.Context(), models.JobType(args[0]), profile, payload, runAfter)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), job)
		},
	}
	cmd.Flags().Int64("profile", 0, "profile the job runs for")
	cmd.Flags().String("payload", "", "JSON payload")
	cmd.Flags().Duration("delay", 0, "postpone the job by this long")
	return cmd
}

func (c *cli) jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect background jobs",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			jobType, _ := cmd.Flags().GetString("type")
			profileID, _ := cmd.Flags().GetInt64("profile")
			limit, _ := cmd.Flags().GetInt("limit")

			a, err := openApp(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			jobs, err := a.queue.List(cmd.Context(), models.JobFilter{
				Status:    models.JobStatus(status),
				Type:      models.JobType(jobType),
				ProfileID: profileID,
				Limit:     limit,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), jobs)
		},
	}
	list.Flags().String("status", "", "filter by status (pending, running, done, failed)")
	list.Flags().String("type", "", "filter by job type")
	list.Flags().Int64("profile", 0, "filter by profile")
	list.Flags().Int("limit", 50, "maximum number of jobs")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			job, err := a.queue.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), job)
		},
	}

	reclaim := &cobra.Command{
		Use:   "reclaim",
		Short: "Return running jobs claimed longer ago than --older-than to pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			olderThan, _ := cmd.Flags().GetDuration("older-than")
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			a, err := openApp(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.queue.ReclaimStale(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reclaimed %d job(s)\n", n)
			return nil
		},
	}
	reclaim.Flags().Duration("older-than", 10*time.Minute, "claim age after which a running job is considered abandoned")

	cmd.AddCommand(list, get, reclaim)
	return cmd
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
