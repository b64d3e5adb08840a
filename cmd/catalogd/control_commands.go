package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

const memoryDriverNote = "Note: the memory cache driver keeps the flag in this process only; set enrichment.cache_driver=redis to share it"

func newControlCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		{
			Use:   "pause",
			Short: "Ask running enrichment to stop after the current entry",
			RunE: func(cmd *cobra.Command, args []string) error {
				app, cleanup, err := ctx.app(cmd.Context())
				if err != nil {
					return err
				}
				defer cleanup()

				if err := app.Control.Pause(cmd.Context()); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Enrichment paused")
				noteMemoryDriver(out, app)
				return nil
			},
		},
		{
			Use:   "resume",
			Short: "Clear the pause flag",
			RunE: func(cmd *cobra.Command, args []string) error {
				app, cleanup, err := ctx.app(cmd.Context())
				if err != nil {
					return err
				}
				defer cleanup()

				if err := app.Control.Resume(cmd.Context()); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Enrichment resumed")
				noteMemoryDriver(out, app)
				return nil
			},
		},
		{
			Use:   "status",
			Short: "Show the pause flag and the last processed count",
			RunE: func(cmd *cobra.Command, args []string) error {
				app, cleanup, err := ctx.app(cmd.Context())
				if err != nil {
					return err
				}
				defer cleanup()

				paused, err := app.Control.IsPaused(cmd.Context())
				if err != nil {
					return err
				}
				processed, err := app.Control.LastProcessed(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "paused: %t\n", paused)
				fmt.Fprintf(out, "last processed: %d\n", processed)
				return nil
			},
		},
	}
}

func noteMemoryDriver(out io.Writer, app *App) {
	if app.Config.Enrichment.CacheDriver == "memory" {
		fmt.Fprintln(out, memoryDriverNote)
	}
}
