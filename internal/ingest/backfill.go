package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// DatePass is satisfied by *BoxScorePass
type DatePass interface {
	Run(ctx context.Context, date time.Time) (*Report, error)
}

// Backfill runs pass for every date in [from, to], oldest first. Dates
// without games are skipped; the first other failure stops the run.
func Backfill(ctx context.Context, pass DatePass, from, to time.Time) ([]*Report, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("backfill range is empty: %s after %s",
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	var reports []*Report
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		report, err := pass.Run(ctx, day)
		if errors.Is(err, ErrNoGames) {
			log.Debug().Str("date", day.Format("2006-01-02")).Msg("No games, skipping")
			continue
		}
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			return reports, fmt.Errorf("backfill stopped at %s: %w", day.Format("2006-01-02"), err)
		}
	}

	log.Info().
		Str("from", from.Format("2006-01-02")).
		Str("to", to.Format("2006-01-02")).
		Int("dates", len(reports)).
		Msg("Backfill complete")

	return reports, nil
}
