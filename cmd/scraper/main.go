package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/advisory-service/internal/bootstrap"
	"github.com/user/advisory-service/internal/entity"
	"github.com/user/advisory-service/internal/extractor"
	"github.com/user/advisory-service/internal/output"
	"github.com/user/advisory-service/internal/usecase"
	"github.com/user/advisory-service/pkg/config"
	"github.com/user/advisory-service/pkg/logger"
)

var (
	countries []string
	workers   int
	outDir    string
	mode      string
)

var rootCmd = &cobra.Command{
	Use:          "scraper [--country <name>]... [--out <dir>]",
	SilenceUsage: true,
	Short:        "Scrapes the travel advice sections of each country into one JSON file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyFlags(cmd, cfg)

		log := logger.New(os.Stderr, cfg.LogLevel)
		defer log.Sync()

		pages, closePages, err := bootstrap.PageFetcher(cfg, log)
		if err != nil {
			return err
		}
		defer closePages()

		out := cmd.OutOrStdout()
		fetcher := usecase.NewSectionFetcher(pages, extractor.New(), usecase.FetcherConfig{
			BaseURL:  cfg.BaseURL,
			Sections: cfg.Sections,
			Workers:  cfg.MaxConcurrency,
			OnComplete: func(country string, _ entity.EntityResult) {
				fmt.Fprintf(out, "✅ %s terminé.\n", country)
			},
		}, log)

		fmt.Fprintln(out, "Début du scraping...")
		aggregate := fetcher.FetchAll(cmd.Context(), cfg.Countries)

		path, err := output.WriteJSON(cfg.OutputDir, cfg.Countries, aggregate)
		if err != nil {
			return err
		}
		log.Info("results written", zap.String("path", path), zap.Int("countries", aggregate.Len()))
		fmt.Fprintf(out, "\n✅ Données sauvegardées dans : %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringArrayVar(&countries, "country", nil, "Country to scrape, repeatable (default from COUNTRIES).")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "Maximum countries fetched at once (default from MAX_CONCURRENCY).")
	rootCmd.Flags().StringVar(&outDir, "out", "", "Directory the JSON file is written to (default from OUTPUT_DIR).")
	rootCmd.Flags().StringVar(&mode, "mode", "", `Page fetcher: "http" or "browser" (default from FETCH_MODE).`)
}

// applyFlags lets explicitly set flags win over configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("country") {
		cfg.Countries = countries
	}
	if cmd.Flags().Changed("workers") && workers > 0 {
		cfg.MaxConcurrency = workers
	}
	if cmd.Flags().Changed("out") {
		cfg.OutputDir = outDir
	}
	if cmd.Flags().Changed("mode") {
		cfg.FetchMode = mode
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
