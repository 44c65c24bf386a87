package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/docscout/crawl"
	"github.com/use-agent/docscout/store"
	"github.com/use-agent/docscout/webhook"
)

var (
	crawlCityLimit int
	crawlMaxPages  int
	crawlStore     string
	crawlOut       string
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl every city listing into the row store",
	Long: `Discovers every city on the directory index, pages through each city's
listing and appends one row per doctor and hospital. Cities already in the
store are skipped, so an interrupted crawl resumes where it stopped.

Examples:
  # First three cities into the default CSV file
  docscout crawl --city-limit 3

  # Everything into SQLite
  docscout crawl --store sqlite --out doctors.db`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if cmd.Flags().Changed("city-limit") {
			cfg.Crawl.CityLimit = crawlCityLimit
		}
		if cmd.Flags().Changed("max-pages") {
			cfg.Crawl.MaxPagesPerCity = crawlMaxPages
		}
		if crawlStore != "" {
			cfg.Store.Driver = crawlStore
		}
		if crawlOut != "" {
			if cfg.Store.Driver == store.DriverCSV {
				cfg.Store.Path = crawlOut
			} else {
				cfg.Store.DSN = crawlOut
			}
		}

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return fmt.Errorf("crawl: open store: %w", err)
		}
		defer st.Close()

		f, err := newFetchers(cfg)
		if err != nil {
			return fmt.Errorf("crawl: start browser: %w", err)
		}
		defer f.Close()

		notifier := webhook.New(cfg.Webhook.URL, cfg.Webhook.Secret)
		defer func() {
			wctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			notifier.Wait(wctx)
		}()

		sum, err := crawl.New(f.pages, st, notifier, cfg.Crawl).Run(ctx)
		if err != nil {
			return err
		}
		slog.Info("crawl finished", "run_id", sum.RunID, "rows", sum.Rows, "store", cfg.Store.Driver)
		fmt.Fprintf(cmd.OutOrStdout(), "cities: %d  completed: %d  skipped: %d  failed: %d  rows: %d\n",
			sum.Cities, sum.Completed, sum.Skipped, sum.Failed, sum.Rows)
		return nil
	},
}

func init() {
	crawlCmd.Flags().IntVar(&crawlCityLimit, "city-limit", 0, "process only the first N cities (0 = all)")
	crawlCmd.Flags().IntVar(&crawlMaxPages, "max-pages", 8, "listing pages per city")
	crawlCmd.Flags().StringVar(&crawlStore, "store", "", "row store: csv, sqlite or postgres")
	crawlCmd.Flags().StringVar(&crawlOut, "out", "", "CSV path or database DSN")
}
