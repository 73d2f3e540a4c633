//go:build integration

package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"nbacap/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Integration tests for database operations
// Run with: go test -v -tags=integration ./internal/repository/...

func setupTestDB(t *testing.T) (*Database, context.Context) {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "nbacap",
				"POSTGRES_PASSWORD": "nbacap",
				"POSTGRES_DB":       "nbacap_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start postgres container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := NewDatabase(ctx, Config{
		Host:     host,
		Port:     port.Port(),
		User:     "nbacap",
		Password: "nbacap",
		Database: "nbacap_test",
		SSLMode:  "disable",
	})
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, db.Migrate(ctx))

	t.Cleanup(func() {
		db.Close()
		_ = container.Terminate(ctx)
	})

	return db, ctx
}

func TestDatabaseConnection(t *testing.T) {
	db, ctx := setupTestDB(t)

	assert.NoError(t, db.Health(ctx), "Database health check should pass")

	stats := db.PoolStats()
	assert.GreaterOrEqual(t, stats["max_conns"].(int32), int32(1), "Should have at least 1 max connection")

	// schema is idempotent
	assert.NoError(t, db.Migrate(ctx))
}

func TestTeamRepository_Upsert(t *testing.T) {
	db, ctx := setupTestDB(t)

	team := &models.Team{
		TeamID:     1610612737,
		Tricode:    "ATL",
		City:       "Atlanta",
		Name:       "Hawks",
		Conference: sql.NullString{String: "East", Valid: true},
	}
	require.NoError(t, db.Teams.Upsert(ctx, team))

	team.Conference = sql.NullString{String: "Eastern", Valid: true}
	require.NoError(t, db.Teams.Upsert(ctx, team))

	got, err := db.Teams.GetByTricode(ctx, "ATL")
	require.NoError(t, err)
	assert.Equal(t, "Eastern", got.Conference.String)

	ids, err := db.Teams.ListTeamIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1610612737}, ids)

	_, err = db.Teams.GetByTeamID(ctx, 1)
	assert.Error(t, err)
}

func TestGameRepository_UpsertAndList(t *testing.T) {
	db, ctx := setupTestDB(t)

	date := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	game := &models.Game{
		GameID:      "0022400101",
		GameDate:    date,
		Season:      2024,
		HomeTeamID:  1610612737,
		AwayTeamID:  1610612738,
		HomeTricode: "ATL",
		AwayTricode: "BOS",
		Status:      models.GameStatusInProgress,
	}
	require.NoError(t, db.Games.Upsert(ctx, game))

	game.Status = models.GameStatusFinal
	game.HomeScore = sql.NullInt32{Int32: 110, Valid: true}
	require.NoError(t, db.Games.Upsert(ctx, game))

	games, err := db.Games.ListByDate(ctx, date)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.True(t, games[0].IsFinal())
	assert.Equal(t, int32(110), games[0].HomeScore.Int32)

	ids, err := db.Games.ListGameIDsBySeason(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, []string{"0022400101"}, ids)
}

func TestStatsRepository_UpsertKeepsPopulatedColumns(t *testing.T) {
	db, ctx := setupTestDB(t)

	first := []map[string]any{
		{"game_id": "g1", "team_id": int64(1), "pts": int64(100), "off_rating": 112.5},
		{"game_id": "g1", "team_id": int64(2), "pts": int64(90)},
	}
	n, err := db.Stats.Upsert(ctx, models.TeamGameStatsTable, first)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	second := []map[string]any{
		{"game_id": "g1", "team_id": int64(1), "pts": int64(101), "off_rating": nil},
	}
	_, err = db.Stats.Upsert(ctx, models.TeamGameStatsTable, second)
	require.NoError(t, err)

	var pts int
	var rating float64
	err = db.Pool.QueryRow(ctx,
		`SELECT pts, off_rating FROM team_game_stats WHERE game_id = 'g1' AND team_id = 1`,
	).Scan(&pts, &rating)
	require.NoError(t, err)
	assert.Equal(t, 101, pts)
	assert.Equal(t, 112.5, rating)

	count, err := db.Stats.CountForGame(ctx, models.TeamGameStatsTable, "g1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = db.Stats.Upsert(ctx, models.TeamGameStatsTable, []map[string]any{{"game_id": "g1", "team_id": int64(1), "bogus": 1}})
	assert.Error(t, err)
}

func TestContractRepository_TeamPayrolls(t *testing.T) {
	db, ctx := setupTestDB(t)

	contracts := []*models.Contract{
		{ContractID: "c1", Season: 2025, PlayerName: "A", TeamTricode: "ATL", Salary: 40000000, CapHit: 40000000},
		{ContractID: "c2", Season: 2025, PlayerName: "B", TeamTricode: "ATL", Salary: 2000000, CapHit: 1000000, DeadMoney: true},
		{ContractID: "c3", Season: 2025, PlayerName: "C", TeamTricode: "BOS", Salary: 50000000, CapHit: 50000000},
		{ContractID: "c3", Season: 2026, PlayerName: "C", TeamTricode: "BOS", Salary: 52000000, CapHit: 52000000},
	}
	for _, c := range contracts {
		require.NoError(t, db.Contracts.Upsert(ctx, c))
	}

	payrolls, err := db.Contracts.TeamPayrolls(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, payrolls, 2)

	assert.Equal(t, "ATL", payrolls[0].TeamTricode)
	assert.Equal(t, 1, payrolls[0].Players)
	assert.Equal(t, int64(41000000), payrolls[0].CapHit)
	assert.Equal(t, int64(1000000), payrolls[0].DeadMoney)
	assert.Equal(t, int64(50000000), payrolls[1].CapHit)

	list, err := db.Contracts.ListBySeason(ctx, 2025)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
