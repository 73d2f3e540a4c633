package repository

import (
	"context"
	"fmt"

	"nbacap/ingestion/internal/models"
)

// StatsRepository writes query tool rows into the stat tables
type StatsRepository struct {
	db *Database
}

// Upsert writes rows into table using its declared columns and conflict keys.
// Keys a row carries that the table does not declare are rejected.
func (r *StatsRepository) Upsert(ctx context.Context, table models.StatTable, rows []map[string]any) (int64, error) {
	for _, row := range rows {
		for col := range row {
			if !table.HasColumn(col) {
				return 0, fmt.Errorf("row has column %s not declared on %s", col, table.Name)
			}
		}
	}
	return r.db.UpsertRows(ctx, table.Name, table.Columns, rows, table.ConflictKeys)
}

// CountForGame returns the number of rows stored for gameID in table
func (r *StatsRepository) CountForGame(ctx context.Context, table models.StatTable, gameID string) (int, error) {
	if !table.HasColumn("game_id") {
		return 0, fmt.Errorf("%s is not keyed by game", table.Name)
	}

	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE game_id = $1", table.Name)
	if err := r.db.Pool.QueryRow(ctx, query, gameID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s rows: %w", table.Name, err)
	}
	return count, nil
}
