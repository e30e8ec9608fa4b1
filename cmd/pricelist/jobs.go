package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/pricelist-tracker/internal/common"
	"github.com/joseph-ayodele/pricelist-tracker/internal/entity"
	"github.com/joseph-ayodele/pricelist-tracker/internal/export"
	"github.com/joseph-ayodele/pricelist-tracker/internal/ingest"
)

var jobFlags struct {
	provider string
	org      string
	list     string
	page     int
	source   string
	dir      string
	limit    int
	out      string
}

var addJobCmd = &cobra.Command{
	Use:   "add-job",
	Short: "Queue price-list pages for processing",
	Long: `Queues one page (--source and --page) or every page file of a directory
(--dir, numbered 1..n in file-name order).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v := common.NewValidator().
			Field("provider", jobFlags.provider, common.Required).
			Field("org", jobFlags.org, common.Required).
			Field("list", jobFlags.list, common.Required)
		if jobFlags.dir == "" {
			v.Field("page", jobFlags.page, common.Positive).
				Field("source", jobFlags.source, common.Required)
		}
		if err := v.Error(); err != nil {
			return err
		}

		ctx := cmd.Context()
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		_, jobs, _, err := newProcessor(db)
		if err != nil {
			return err
		}

		if jobFlags.dir != "" {
			ref := ingest.ListRef{ProviderID: jobFlags.provider, OrganizationID: jobFlags.org, ListID: jobFlags.list}
			results, stats, err := ingest.NewDirectoryIngestor(jobs, logger).IngestDirectory(ctx, ref, jobFlags.dir, true)
			if err != nil {
				return err
			}
			for _, r := range results {
				if r.Err != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", r.Path, r.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", r.PageNumber, r.JobID, r.Path)
			}
			if stats.Failed > 0 {
				return fmt.Errorf("%d of %d pages failed to queue", stats.Failed, stats.Matched)
			}
			return nil
		}

		job, err := jobs.Create(ctx, &entity.PageJob{
			ProviderID:     jobFlags.provider,
			OrganizationID: jobFlags.org,
			ListID:         jobFlags.list,
			PageNumber:     jobFlags.page,
			SourceURL:      jobFlags.source,
		})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), job.ID)
		return err
	},
}

var runCmd = &cobra.Command{
	Use:   "run [source...]",
	Short: "Process pending page jobs once",
	Long: `Processes pending page jobs in page order and exits. Sources given as
arguments are queued first as pages 1..n of --list, which makes
"run --inmem --out list.xlsx page1.jpg page2.jpg" a one-shot local run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		proc, jobs, items, err := newProcessor(db)
		if err != nil {
			return err
		}

		if len(args) > 0 {
			if jobFlags.list == "" {
				return fmt.Errorf("--list is required when sources are given")
			}
			for i, src := range args {
				if _, err := jobs.Create(ctx, &entity.PageJob{
					ProviderID:     jobFlags.provider,
					OrganizationID: jobFlags.org,
					ListID:         jobFlags.list,
					PageNumber:     i + 1,
					SourceURL:      src,
				}); err != nil {
					return err
				}
			}
		}

		sum, err := proc.RunPending(ctx, jobFlags.limit)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "processed=%d failed=%d skipped=%d items=%d\n",
			sum.Processed, sum.Failed, sum.Skipped, sum.Items)

		if jobFlags.out != "" {
			if jobFlags.list == "" {
				return fmt.Errorf("--list is required with --out")
			}
			data, err := export.NewService(items, logger).ExportListXLSX(ctx, jobFlags.list)
			if err != nil {
				return err
			}
			return os.WriteFile(jobFlags.out, data, 0o644)
		}
		return nil
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show how many pages of a list are done",
	RunE: func(cmd *cobra.Command, args []string) error {
		if jobFlags.list == "" {
			return fmt.Errorf("--list is required")
		}
		ctx := cmd.Context()
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		_, jobs, _, err := newProcessor(db)
		if err != nil {
			return err
		}
		p, err := jobs.Progress(ctx, jobFlags.list)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "list=%s total=%d pending=%d processing=%d processed=%d failed=%d done=%.0f%%\n",
			p.ListID, p.Total, p.Pending, p.Processing, p.Processed, p.Failed, p.Percent())
		return err
	},
}

var retryCmd = &cobra.Command{
	Use:   "retry <job-id>...",
	Short: "Put failed page jobs back to pending",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		_, jobs, _, err := newProcessor(db)
		if err != nil {
			return err
		}
		for _, arg := range args {
			id, err := uuid.Parse(arg)
			if err != nil {
				return common.WrapError(common.ErrInvalidInput, fmt.Sprintf("job id %q", arg))
			}
			if err := jobs.Requeue(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{addJobCmd, runCmd} {
		c.Flags().StringVar(&jobFlags.provider, "provider", "", "provider id")
		c.Flags().StringVar(&jobFlags.org, "org", "", "organization id")
	}
	for _, c := range []*cobra.Command{addJobCmd, runCmd, progressCmd} {
		c.Flags().StringVar(&jobFlags.list, "list", "", "price list id")
	}
	addJobCmd.Flags().IntVar(&jobFlags.page, "page", 0, "page number within the list")
	addJobCmd.Flags().StringVar(&jobFlags.source, "source", "", "page location: http(s) URL or local path")
	addJobCmd.Flags().StringVar(&jobFlags.dir, "dir", "", "queue every page file found under this directory")
	runCmd.Flags().IntVar(&jobFlags.limit, "limit", 0, "process at most this many jobs (0 = all)")
	runCmd.Flags().StringVar(&jobFlags.out, "out", "", "write the list's items to this XLSX file afterwards")
}
