package repository

import (
	"context"
	"errors"
	"fmt"

	"nbacap/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// TeamRepository handles team database operations
type TeamRepository struct {
	db *Database
}

const teamColumns = `id, team_id, tricode, city, name, conference, division,
		       provider_team_id, created_at, updated_at`

func scanTeam(row pgx.Row, team *models.Team) error {
	return row.Scan(
		&team.ID, &team.TeamID, &team.Tricode, &team.City, &team.Name,
		&team.Conference, &team.Division, &team.ProviderTeamID,
		&team.CreatedAt, &team.UpdatedAt,
	)
}

// Upsert inserts or updates a team keyed by its stats API id
func (r *TeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (
			team_id, tricode, city, name, conference, division, provider_team_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (team_id) DO UPDATE SET
			tricode = EXCLUDED.tricode,
			city = EXCLUDED.city,
			name = EXCLUDED.name,
			conference = EXCLUDED.conference,
			division = EXCLUDED.division,
			provider_team_id = EXCLUDED.provider_team_id,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		team.TeamID, team.Tricode, team.City, team.Name,
		team.Conference, team.Division, team.ProviderTeamID,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}

	log.Debug().
		Int("team_id", team.TeamID).
		Str("tricode", team.Tricode).
		Msg("Team upserted")

	return nil
}

// GetByTeamID retrieves a team by its stats API id
func (r *TeamRepository) GetByTeamID(ctx context.Context, teamID int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE team_id = $1`

	var team models.Team
	err := scanTeam(r.db.Pool.QueryRow(ctx, query, teamID), &team)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("team not found: team_id=%d", teamID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// GetByTricode retrieves a team by its three-letter code
func (r *TeamRepository) GetByTricode(ctx context.Context, tricode string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE tricode = $1`

	var team models.Team
	err := scanTeam(r.db.Pool.QueryRow(ctx, query, tricode), &team)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("team not found: tricode=%s", tricode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// List retrieves all teams
func (r *TeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams ORDER BY tricode`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		var team models.Team
		if err := scanTeam(rows, &team); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, &team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// ListTeamIDs returns every stats API team id in ascending order
func (r *TeamRepository) ListTeamIDs(ctx context.Context) ([]int, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT team_id FROM teams ORDER BY team_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list team ids: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("failed to scan team ids: %w", err)
	}
	return ids, nil
}

// Count returns the total number of teams
func (r *TeamRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM teams`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}
	return count, nil
}
