package repository

import (
	"context"
	"fmt"
	"time"

	"nbacap/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// GameRepository handles game database operations
type GameRepository struct {
	db *Database
}

// Upsert inserts or updates a game
func (r *GameRepository) Upsert(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (
			game_id, game_date, season, home_team_id, away_team_id,
			home_tricode, away_tricode, status, status_text, tipoff_utc,
			home_score, away_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (game_id) DO UPDATE SET
			game_date = EXCLUDED.game_date,
			season = EXCLUDED.season,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			home_tricode = EXCLUDED.home_tricode,
			away_tricode = EXCLUDED.away_tricode,
			status = EXCLUDED.status,
			status_text = EXCLUDED.status_text,
			tipoff_utc = COALESCE(EXCLUDED.tipoff_utc, games.tipoff_utc),
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		game.GameID, game.GameDate, game.Season, game.HomeTeamID, game.AwayTeamID,
		game.HomeTricode, game.AwayTricode, game.Status, game.StatusText, game.TipoffUTC,
		game.HomeScore, game.AwayScore,
	).Scan(&game.ID, &game.CreatedAt, &game.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert game %s: %w", game.GameID, err)
	}

	log.Debug().
		Str("game_id", game.GameID).
		Str("home", game.HomeTricode).
		Str("away", game.AwayTricode).
		Int("status", game.Status).
		Msg("Game upserted")

	return nil
}

// ListByDate retrieves games played on date
func (r *GameRepository) ListByDate(ctx context.Context, date time.Time) ([]*models.Game, error) {
	query := `
		SELECT id, game_id, game_date, season, home_team_id, away_team_id,
		       home_tricode, away_tricode, status, status_text, tipoff_utc,
		       home_score, away_score, created_at, updated_at
		FROM games
		WHERE game_date = $1
		ORDER BY game_id
	`

	rows, err := r.db.Pool.Query(ctx, query, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		g := &models.Game{}
		if err := rows.Scan(
			&g.ID, &g.GameID, &g.GameDate, &g.Season, &g.HomeTeamID, &g.AwayTeamID,
			&g.HomeTricode, &g.AwayTricode, &g.Status, &g.StatusText, &g.TipoffUTC,
			&g.HomeScore, &g.AwayScore, &g.CreatedAt, &g.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}

// ListGameIDsBySeason returns the ids of finished games in a season
func (r *GameRepository) ListGameIDsBySeason(ctx context.Context, season int) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT game_id FROM games WHERE season = $1 AND status = $2 ORDER BY game_id`,
		season, models.GameStatusFinal)
	if err != nil {
		return nil, fmt.Errorf("failed to list game ids: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan game ids: %w", err)
	}
	return ids, nil
}
