// Command leagueetl loads league statistics, rosters and contracts into the
// warehouse and renders the salary-cap workbook.
//
// Usage:
//
//	leagueetl migrate
//	leagueetl boxscores --date 2024-11-01
//	leagueetl boxscores --from 2024-10-22 --to 2024-11-01
//	leagueetl team-stats --season 2024 --season-type "Regular Season"
//	leagueetl players
//	leagueetl contracts --season 2025
//	leagueetl capsheet --season 2025 --out cap.xlsx
//	leagueetl fetch --path /api/querytool/game/team --param GameId --ids 0022400101,0022400102
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nbacap/ingestion/internal/config"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:          "leagueetl",
		Short:        "League salary-cap warehouse ingestion",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			setupLogger(cfg)

			if cfg.EnableMetrics {
				go startMetricsServer(cfg.MetricsPort)
			}
			return nil
		},
	}

	current := func() *config.Config { return cfg }

	root.AddCommand(
		migrateCmd(current),
		boxScoresCmd(current),
		teamStatsCmd(current),
		playersCmd(current),
		contractsCmd(current),
		capsheetCmd(current),
		fetchCmd(current),
	)

	return root
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// setupLogger configures the zerolog logger
func setupLogger(cfg *config.Config) {
	// Pretty console logging in development
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		level = parsed
	}
	zerolog.SetGlobalLevel(level)

	log.Debug().
		Str("level", level.String()).
		Str("env", cfg.AppEnv).
		Msg("Logger initialized")
}

// startMetricsServer serves Prometheus metrics while a command runs
func startMetricsServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	addr := fmt.Sprintf(":%d", port)
	log.Info().Int("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
