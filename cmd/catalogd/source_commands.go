package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/narwhalmedia/catalogd/internal/catalog/domain"
)

func newSourceCommand(ctx *commandContext) *cobra.Command {
	sourceCmd := &cobra.Command{
		Use:   "source",
		Short: "Register and inspect media sources",
	}

	sourceCmd.AddCommand(newSourceAddCommand(ctx))
	sourceCmd.AddCommand(newSourceListCommand(ctx))
	sourceCmd.AddCommand(newSourceTestCommand(ctx))

	return sourceCmd
}

func newSourceAddCommand(ctx *commandContext) *cobra.Command {
	var (
		name        string
		baseURL     string
		scraperType string
		rawConfig   string
		priority    int
		inactive    bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a source",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := map[string]string{}
			if rawConfig != "" {
				if err := json.Unmarshal([]byte(rawConfig), &settings); err != nil {
					return fmt.Errorf("--scraper-config must be a JSON object of strings: %w", err)
				}
			}

			app, cleanup, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			source := &domain.Source{
				Name:        name,
				BaseURL:     baseURL,
				ScraperType: scraperType,
				Config:      settings,
				IsActive:    !inactive,
				HealthScore: 100,
				Priority:    priority,
			}

			// Reject types the registry cannot build before anything is stored.
			if _, err := app.Scrapers.Build(*source); err != nil {
				return err
			}

			if err := app.Repo.CreateSource(cmd.Context(), source); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Source %s registered: %s\n", source.Name, source.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Unique source name")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Root URL, s3://bucket/prefix or file:// path")
	cmd.Flags().StringVar(&scraperType, "type", "http_index", "Scraper type (http_index, json_api, s3, local or a server family alias)")
	cmd.Flags().StringVar(&rawConfig, "scraper-config", "", `Scraper settings as JSON, e.g. '{"max_depth":"4"}'`)
	cmd.Flags().IntVar(&priority, "priority", 0, "Higher priorities are scanned first")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Register the source disabled")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("base-url")

	return cmd
}

func newSourceListCommand(ctx *commandContext) *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			sources, err := app.Repo.ListSources(cmd.Context(), activeOnly)
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sources registered")
				return nil
			}

			rows := make([][]string, 0, len(sources))
			for _, s := range sources {
				lastScan := "never"
				if s.LastScanAt != nil {
					lastScan = s.LastScanAt.Local().Format("2006-01-02 15:04")
				}
				rows = append(rows, []string{
					s.ID.String(), s.Name, s.ScraperType,
					strconv.Itoa(s.Priority), strconv.FormatBool(s.IsActive), lastScan,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "NAME", "TYPE", "PRIORITY", "ACTIVE", "LAST SCAN"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only list active sources")
	return cmd
}

func newSourceTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test <source-id>",
		Short: "Check that a source is reachable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid source id %q: %w", args[0], err)
			}

			app, cleanup, err := ctx.app(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			source, err := app.Repo.GetSource(cmd.Context(), id)
			if err != nil {
				return err
			}
			scraper, err := app.Scrapers.Build(*source)
			if err != nil {
				return err
			}
			if err := scraper.TestConnection(cmd.Context()); err != nil {
				return fmt.Errorf("%s unreachable: %w", scraper.Name(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is reachable\n", scraper.Name())
			return nil
		},
	}
}
