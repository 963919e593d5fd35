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
	"github.com/user/advisory-service/internal/usecase"
	"github.com/user/advisory-service/pkg/config"
	"github.com/user/advisory-service/pkg/logger"
)

var (
	recordFile string
	backend    string
)

var rootCmd = &cobra.Command{
	Use:          "relay [--file <record.json>] [--backend postgres|postgrest|libsql|sqlite]",
	SilenceUsage: true,
	Short:        "Inserts a country record into the country tables, one row at a time.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cmd.Flags().Changed("backend") {
			cfg.RelayBackend = backend
		}

		log := logger.New(os.Stderr, cfg.LogLevel)
		defer log.Sync()

		record, err := loadRecord(recordFile)
		if err != nil {
			return err
		}

		store, closeStore, err := bootstrap.RelayBackend(cmd.Context(), cfg.RelayBackend, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		report := usecase.NewRelay(store, log).Insert(cmd.Context(), record)

		out := cmd.OutOrStdout()
		for _, o := range report.Outcomes {
			if o.OK {
				fmt.Fprintf(out, "Données insérées avec succès dans la table %s !\n", o.Table)
				continue
			}
			fmt.Fprintf(out, "Erreur lors de l'insertion dans la table %s.\n%v\n", o.Table, o.Err)
		}
		// Failed inserts are reported, not fatal.
		log.Info("relay summary",
			zap.String("backend", cfg.RelayBackend),
			zap.Int("attempted", len(report.Outcomes)),
			zap.Int("succeeded", report.Succeeded()),
		)
		return nil
	},
}

func loadRecord(path string) (entity.CountryRecord, error) {
	if path == "" {
		return entity.SampleCountryRecord()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return entity.CountryRecord{}, fmt.Errorf("read record: %w", err)
	}
	return entity.DecodeCountryRecord(data)
}

func init() {
	rootCmd.Flags().StringVar(&recordFile, "file", "", "JSON country record to insert (default: the bundled United States record).")
	rootCmd.Flags().StringVar(&backend, "backend", "", "Relational backend (default from RELAY_BACKEND).")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
