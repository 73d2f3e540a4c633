package repository

import (
	"context"
	"errors"
	"fmt"

	"nbacap/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
)

// PlayerRepository handles player database operations
type PlayerRepository struct {
	db *Database
}

// Upsert inserts or updates a player keyed by provider id
func (r *PlayerRepository) Upsert(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (
			provider_player_id, person_id, first_name, last_name, team_tricode,
			position, jersey, status, injury_status, birth_date, experience
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (provider_player_id) DO UPDATE SET
			person_id = COALESCE(EXCLUDED.person_id, players.person_id),
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			team_tricode = EXCLUDED.team_tricode,
			position = EXCLUDED.position,
			jersey = EXCLUDED.jersey,
			status = EXCLUDED.status,
			injury_status = EXCLUDED.injury_status,
			birth_date = COALESCE(EXCLUDED.birth_date, players.birth_date),
			experience = EXCLUDED.experience,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		player.ProviderPlayerID, player.PersonID, player.FirstName, player.LastName,
		player.TeamTricode, player.Position, player.Jersey, player.Status,
		player.InjuryStatus, player.BirthDate, player.Experience,
	).Scan(&player.ID, &player.CreatedAt, &player.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert player %d: %w", player.ProviderPlayerID, err)
	}

	return nil
}

// GetByPersonID retrieves a player by stats API person id
func (r *PlayerRepository) GetByPersonID(ctx context.Context, personID int) (*models.Player, error) {
	query := `
		SELECT id, provider_player_id, person_id, first_name, last_name, team_tricode,
		       position, jersey, status, injury_status, birth_date, experience,
		       created_at, updated_at
		FROM players
		WHERE person_id = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var p models.Player
	err := r.db.Pool.QueryRow(ctx, query, personID).Scan(
		&p.ID, &p.ProviderPlayerID, &p.PersonID, &p.FirstName, &p.LastName, &p.TeamTricode,
		&p.Position, &p.Jersey, &p.Status, &p.InjuryStatus, &p.BirthDate, &p.Experience,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("player not found: person_id=%d", personID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return &p, nil
}

// Count returns the total number of players
func (r *PlayerRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM players`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}
