package commands

import (
	"context"
	"log/slog"
	"sync"

	"maeto-catalog/internal/catalog"
	"maeto-catalog/internal/components/chrono"
	"maeto-catalog/lib/serviceutil"

	"github.com/spf13/cobra"
)

const report_watch_run = "watch.run"

var (
	watchSpec string
	watchNow  bool
)

func init() {
	watchCmd.Flags().StringVar(&watchSpec, "cron", "@every 6h", "When to search again, in cron syntax.")
	watchCmd.Flags().BoolVar(&watchNow, "now", false, "Also search once right away.")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch [--cron <spec>] [--now] <term>...",
	Short: "Searches for the given terms on a schedule and stores the results until interrupted.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp()
		defer a.Close()

		ctx := cmd.Context()
		// jobs never overlap, but a tick could still race an in-flight
		// `--now` run for the same database
		var mu sync.Mutex
		run := func() {
			mu.Lock()
			defer mu.Unlock()
			crawlTerms(ctx, a, args)
		}

		scheduler := chrono.NewStandardCron(tel)
		defer scheduler.Stop()
		job, err := scheduler.Schedule(watchSpec, run)
		if err != nil {
			serviceutil.Fatal("invalid cron spec", err)
		}

		slog.Info("watching", "terms", args, "cron", watchSpec, "next", scheduler.Next(job))
		if watchNow {
			run()
		}
		<-ctx.Done()
		slog.Info("stopping, waiting for the current search to finish")
	},
}

func crawlTerms(ctx context.Context, a app, terms []string) {
	for _, term := range terms {
		if ctx.Err() != nil {
			return
		}

		result := a.crawler.Crawl(ctx, term)
		if result.Halt == catalog.HaltSearchFailed {
			tel.ReportWarning(report_watch_run, "search page unreachable", term)
			continue
		}
		upserted, err := a.store.UpsertMany(ctx, result.Products, term)
		if err != nil {
			tel.ReportBroken(report_watch_run, err, term)
			continue
		}
		slog.Info(
			"search stored",
			"term", term,
			"halt", result.Halt.String(),
			"pages", result.Pages,
			"found", len(result.Products),
			"specs_fetched", result.Specs[catalog.SpecsFetched],
			"specs_reused", result.Specs[catalog.SpecsReused],
			"specs_missing", result.Specs[catalog.SpecsMissing]+result.Specs[catalog.SpecsFailed]+result.Specs[catalog.SpecsNoURL],
			"inserted", upserted.Inserted,
			"updated", upserted.Updated,
			"skipped", upserted.Skipped,
			"failed", upserted.Failed,
		)
	}
}
