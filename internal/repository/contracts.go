package repository

import (
	"context"
	"fmt"

	"nbacap/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
)

// ContractRepository handles contract database operations
type ContractRepository struct {
	db *Database
}

// Upsert inserts or updates one contract season
func (r *ContractRepository) Upsert(ctx context.Context, c *models.Contract) error {
	query := `
		INSERT INTO contracts (
			contract_id, season, person_id, player_name, team_tricode,
			salary, cap_hit, guaranteed, option_type, signing_type, signed_date,
			dead_money, two_way
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (contract_id, season) DO UPDATE SET
			person_id = COALESCE(EXCLUDED.person_id, contracts.person_id),
			player_name = EXCLUDED.player_name,
			team_tricode = EXCLUDED.team_tricode,
			salary = EXCLUDED.salary,
			cap_hit = EXCLUDED.cap_hit,
			guaranteed = EXCLUDED.guaranteed,
			option_type = EXCLUDED.option_type,
			signing_type = EXCLUDED.signing_type,
			signed_date = EXCLUDED.signed_date,
			dead_money = EXCLUDED.dead_money,
			two_way = EXCLUDED.two_way,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		c.ContractID, c.Season, c.PersonID, c.PlayerName, c.TeamTricode,
		c.Salary, c.CapHit, c.Guaranteed, c.OptionType, c.SigningType, c.SignedDate,
		c.DeadMoney, c.TwoWay,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert contract %s/%d: %w", c.ContractID, c.Season, err)
	}

	return nil
}

// ListBySeason returns every contract row for season ordered by team then cap hit
func (r *ContractRepository) ListBySeason(ctx context.Context, season int) ([]*models.Contract, error) {
	query := `
		SELECT id, contract_id, season, person_id, player_name, team_tricode,
		       salary, cap_hit, guaranteed, option_type, signing_type, signed_date,
		       dead_money, two_way, created_at, updated_at
		FROM contracts
		WHERE season = $1
		ORDER BY team_tricode, cap_hit DESC, player_name
	`

	rows, err := r.db.Pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*models.Contract
	for rows.Next() {
		c := &models.Contract{}
		if err := rows.Scan(
			&c.ID, &c.ContractID, &c.Season, &c.PersonID, &c.PlayerName, &c.TeamTricode,
			&c.Salary, &c.CapHit, &c.Guaranteed, &c.OptionType, &c.SigningType, &c.SignedDate,
			&c.DeadMoney, &c.TwoWay, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contracts: %w", err)
	}

	return contracts, nil
}

// TeamPayrolls sums cap-relevant amounts per team for season
func (r *ContractRepository) TeamPayrolls(ctx context.Context, season int) ([]models.TeamPayroll, error) {
	query := `
		SELECT team_tricode,
		       season,
		       COUNT(*) FILTER (WHERE NOT dead_money AND NOT two_way)::int AS players,
		       COALESCE(SUM(salary), 0)::bigint AS salary,
		       COALESCE(SUM(cap_hit), 0)::bigint AS cap_hit,
		       COALESCE(SUM(cap_hit) FILTER (WHERE dead_money), 0)::bigint AS dead_money
		FROM contracts
		WHERE season = $1
		GROUP BY team_tricode, season
		ORDER BY team_tricode
	`

	rows, err := r.db.Pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query team payrolls: %w", err)
	}

	payrolls, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.TeamPayroll])
	if err != nil {
		return nil, fmt.Errorf("failed to scan team payrolls: %w", err)
	}
	return payrolls, nil
}
