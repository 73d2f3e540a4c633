package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"nbacap/ingestion/internal/config"
	"nbacap/ingestion/internal/ingest"
	"nbacap/ingestion/internal/models"
	"nbacap/ingestion/internal/querytool"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

type configFunc func() *config.Config

func migrateCmd(cfg configFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the warehouse schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			a, err := newApp(ctx, cfg())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.db.Migrate(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func boxScoresCmd(cfg configFunc) *cobra.Command {
	var date, from, to string

	cmd := &cobra.Command{
		Use:   "boxscores",
		Short: "Load games and team/player box scores for a date or date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := resolveDates(date, from, to, time.Now())
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			a, err := newApp(ctx, cfg())
			if err != nil {
				return err
			}
			defer a.Close()

			pass := a.boxScorePass()
			if start.Equal(end) {
				report, err := pass.Run(ctx, start)
				if errors.Is(err, ingest.ErrNoGames) {
					fmt.Fprintf(cmd.OutOrStdout(), "no games on %s\n", start.Format(dateLayout))
					return nil
				}
				if report != nil {
					printReport(cmd.OutOrStdout(), report)
				}
				return err
			}

			reports, err := ingest.Backfill(ctx, pass, start, end)
			for _, report := range reports {
				printReport(cmd.OutOrStdout(), report)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "game date (YYYY-MM-DD), defaults to yesterday UTC")
	cmd.Flags().StringVar(&from, "from", "", "first date of a backfill range")
	cmd.Flags().StringVar(&to, "to", "", "last date of a backfill range")
	cmd.MarkFlagsMutuallyExclusive("date", "from")
	cmd.MarkFlagsRequiredTogether("from", "to")
	return cmd
}

func teamStatsCmd(cfg configFunc) *cobra.Command {
	var (
		season     int
		seasonType string
		perModes   []string
	)

	cmd := &cobra.Command{
		Use:   "team-stats",
		Short: "Load season aggregates for every team",
		RunE: func(cmd *cobra.Command, args []string) error {

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			a, err := newApp(ctx, cfg())
			if err != nil {
				return err
			}
			defer a.Close()

			season = a.resolveSeason(ctx, season)
			report, err := a.teamSeasonPass(perModes).Run(ctx, season, seasonType)
			if report != nil {
				printReport(cmd.OutOrStdout(), report)
			}
			return err
		},
	}

	cmd.Flags().IntVar(&season, "season", 0, "season start year, defaults to the current season")
	cmd.Flags().StringVar(&seasonType, "season-type", ingest.SeasonTypeRegular, "season type")
	cmd.Flags().StringSliceVar(&perModes, "per-mode", []string{ingest.PerModePerGame}, "per-mode values to load")
	return cmd
}

func playersCmd(cfg configFunc) *cobra.Command {
	var active bool

	cmd := &cobra.Command{
		Use:   "players",
		Short: "Refresh teams and players from the secondary provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			a, err := newApp(ctx, cfg())
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.playerPass(active).Run(ctx)
			if report != nil {
				printReport(cmd.OutOrStdout(), report)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&active, "active", false, "only refresh players currently on a roster")
	return cmd
}

func contractsCmd(cfg configFunc) *cobra.Command {
	var season int

	cmd := &cobra.Command{
		Use:   "contracts",
		Short: "Load the contract export for a season",
		RunE: func(cmd *cobra.Command, args []string) error {

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			a, err := newApp(ctx, cfg())
			if err != nil {
				return err
			}
			defer a.Close()

			season = a.resolveSeason(ctx, season)
			report, err := a.contractPass().Run(ctx, season)
			if report != nil {
				printReport(cmd.OutOrStdout(), report)
			}
			return err
		},
	}

	cmd.Flags().IntVar(&season, "season", 0, "season start year, defaults to the current season")
	return cmd
}

func capsheetCmd(cfg configFunc) *cobra.Command {
	var (
		season int
		out    string
	)

	cmd := &cobra.Command{
		Use:   "capsheet",
		Short: "Render the salary-cap workbook from stored contracts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			a, err := newApp(ctx, cfg())
			if err != nil {
				return err
			}
			defer a.Close()

			season = a.resolveSeason(ctx, season)
			if out == "" {
				out = fmt.Sprintf("capsheet-%s.xlsx", models.SeasonLabel(season))
			}

			states, err := a.capsheetBuilder().Write(ctx, season, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d teams)\n", out, len(states))
			return nil
		},
	}

	cmd.Flags().IntVar(&season, "season", 0, "season start year, defaults to the current season")
	cmd.Flags().StringVar(&out, "out", "", "output path, defaults to capsheet-<season>.xlsx")
	return cmd
}

// fetchCmd runs one batched query tool fetch and prints the rows as JSON
func fetchCmd(cfg configFunc) *cobra.Command {
	var (
		path       string
		batchParam string
		rowKey     string
		ids        []string
		params     map[string]string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Run one batched query tool fetch and print the rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			a := newClients(c)

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			if _, ok := params["LeagueID"]; !ok {
				if params == nil {
					params = map[string]string{}
				}
				params["LeagueID"] = c.StatsLeagueID
			}

			result, err := a.executor.FetchBatchedRows(ctx, querytool.Query{
				Path:                   path,
				IDs:                    ids,
				BaseParams:             params,
				BatchParam:             batchParam,
				RowKey:                 rowKey,
				BatchSize:              c.QueryToolBatchSize,
				MaxRowsReturned:        c.QueryToolMaxRows,
				TruncationThreshold:    c.QueryToolTruncationThreshold,
				SingleBatchMaxAttempts: c.QueryToolSingleBatchMaxAttempts,
			})
			if err != nil {
				return err
			}

			for _, w := range result.Warnings {
				log.Warn().Msg(w)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result.Rows)
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "query tool path")
	cmd.Flags().StringVar(&batchParam, "param", "GameId", "parameter carrying the identifier batch")
	cmd.Flags().StringVar(&rowKey, "row-key", "teams", "response field holding the rows")
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "identifiers to fetch")
	cmd.Flags().StringToStringVar(&params, "set", nil, "extra query parameters (key=value)")
	_ = cmd.MarkFlagRequired("path")
	_ = cmd.MarkFlagRequired("ids")
	return cmd
}

// resolveDates turns the boxscores flags into an inclusive UTC date range
func resolveDates(date, from, to string, now time.Time) (time.Time, time.Time, error) {
	if from != "" || to != "" {
		start, err := parseDate(from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
		}
		end, err := parseDate(to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
		}
		if end.Before(start) {
			return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s", to, from)
		}
		return start, end, nil
	}

	if date == "" {
		y, m, d := now.UTC().AddDate(0, 0, -1).Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return day, day, nil
	}

	day, err := parseDate(date)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --date: %w", err)
	}
	return day, day, nil
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
}

func printReport(w io.Writer, r *ingest.Report) {
	fmt.Fprintf(w, "%s %s: %s rows, %d calls, %d warnings (%s)\n",
		r.Pass, r.Slice, humanize.Comma(r.TotalRows()), r.Calls, len(r.Warnings),
		r.Duration.Round(time.Millisecond))
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
}
