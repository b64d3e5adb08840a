package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/narwhalmedia/catalogd/internal/catalog/service"
	"github.com/narwhalmedia/catalogd/pkg/database"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			migrator := database.NewMigrator(app.DB, app.Logger)
			out := cmd.OutOrStdout()

			if dryRun {
				pending, err := migrator.GetPendingMigrations()
				if err != nil {
					return err
				}
				if len(pending) == 0 {
					fmt.Fprintln(out, "Schema is up to date")
				}
				for _, m := range pending {
					fmt.Fprintf(out, "pending %s %s\n", m.Version, m.Name)
				}
				return nil
			}

			applied, err := migrator.Migrate()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Applied %d migrations\n", applied)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List pending migrations without applying them")
	return cmd
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "scan [source-id]",
		Short: "Crawl sources and enrich the new files",
		Long: "Crawls one source, or every active source with --all, records new video files " +
			"as pending entries and enriches each new batch before exiting.",
		Args: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return errors.New("pass a source id or --all, not both")
			}
			if !all && len(args) != 1 {
				return errors.New("a source id is required unless --all is set")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			var results []*service.ScanResult
			var scanErr error
			if all {
				results, scanErr = app.Collector.ScanAll(cmd.Context())
			} else {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid source id %q: %w", args[0], err)
				}
				var res *service.ScanResult
				res, scanErr = app.Collector.ScanSource(cmd.Context(), id)
				if res != nil {
					results = append(results, res)
				}
			}

			out := cmd.OutOrStdout()
			for _, r := range results {
				printScanResult(out, r)
			}

			// Enrichment of the new batches runs on the bus; wait for it.
			_ = app.Bus.Stop()
			return scanErr
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Scan every active source")
	return cmd
}

func printScanResult(out io.Writer, r *service.ScanResult) {
	fmt.Fprintf(out, "source=%s batch=%s found=%d inserted=%d skipped=%d invalid=%d\n",
		r.SourceID, r.BatchID, r.Found, r.Inserted, r.Skipped, r.Invalid)
}

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "enrich <batch-id>",
		Short: "Enrich the pending entries of a batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			runCtx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				runCtx, cancel = context.WithTimeout(runCtx, timeout)
				defer cancel()
			}

			result, err := app.Enrichment.RunBatch(runCtx, args[0])
			if result != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "batch=%s processed=%d matched=%d failed=%d paused=%t\n",
					result.BatchID, result.Processed, result.Matched, result.Failed, result.Paused)
			}
			if errors.Is(err, context.DeadlineExceeded) {
				fmt.Fprintln(cmd.OutOrStdout(), "Time budget spent, remaining entries stay pending")
				return nil
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Wall-clock budget for the run; unprocessed entries stay pending")
	return cmd
}

func newRequeueCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "requeue <batch-id>",
		Short: "Move failed and unmatched entries of a batch into a new pending batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			newBatch, n, err := app.Enrichment.Requeue(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d entries as batch %s\n", n, newBatch)
			return nil
		},
	}
}
