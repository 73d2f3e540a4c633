package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"nbacap/ingestion/internal/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	values map[string][]byte
	ttls   map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	data, ok := m.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, out)
}

func (m *memoryCache) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = data
	m.ttls[key] = ttl
	return nil
}

const scoreboardBody = `{"scoreboard":{"gameDate":"2024-11-01","leagueId":"00","games":[
{"gameId":"0022400101","gameStatus":3,"gameStatusText":"Final",
 "homeTeam":{"teamId":1610612737,"teamTricode":"ATL","score":110},
 "awayTeam":{"teamId":1610612738,"teamTricode":"BOS","score":104}},
{"gameId":"0022400102","gameStatus":1,"gameStatusText":"7:30 pm ET",
 "homeTeam":{"teamId":1610612739,"teamTricode":"CLE"},
 "awayTeam":{"teamId":1610612740,"teamTricode":"NOP"}}]}}`

func TestScoreboard_ParsesGames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ScoreboardPath, r.URL.Path)
		assert.Equal(t, "2024-11-01", r.URL.Query().Get("GameDate"))
		assert.Equal(t, "00", r.URL.Query().Get("LeagueID"))
		_, _ = w.Write([]byte(scoreboardBody))
	}))
	defer server.Close()

	stats := NewStats(newTestClient(server.URL, &clock.Recorder{}), "00")
	games, err := stats.Scoreboard(context.Background(), time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, games, 2)

	assert.True(t, games[0].IsFinal())
	assert.False(t, games[1].IsFinal())
	assert.Equal(t, "ATL", games[0].HomeTeam.TeamTricode)
	require.NotNil(t, games[0].HomeTeam.Score)
	assert.Equal(t, 110, *games[0].HomeTeam.Score)
	assert.Nil(t, games[1].HomeTeam.Score)
}

func TestScoreboard_CachesPastDatesOnly(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(scoreboardBody))
	}))
	defer server.Close()

	cache := newMemoryCache()
	stats := NewStats(newTestClient(server.URL, &clock.Recorder{}), "00").WithCache(cache, time.Hour)
	stats.now = func() time.Time { return time.Date(2024, 11, 2, 12, 0, 0, 0, time.UTC) }

	past := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	_, err := stats.Scoreboard(context.Background(), past)
	require.NoError(t, err)
	games, err := stats.Scoreboard(context.Background(), past)
	require.NoError(t, err)

	assert.Len(t, games, 2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, time.Hour, cache.ttls["scoreboard:00:2024-11-01"])

	today := time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC)
	_, err = stats.Scoreboard(context.Background(), today)
	require.NoError(t, err)
	_, err = stats.Scoreboard(context.Background(), today)
	require.NoError(t, err)

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.NotContains(t, cache.values, "scoreboard:00:2024-11-02")
}

func TestScoreboard_PropagatesStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	stats := NewStats(newTestClient(server.URL, &clock.Recorder{}), "00")
	_, err := stats.Scoreboard(context.Background(), time.Now())
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusForbidden))
}

func TestProvider_FetchPlayersAndTeams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "provider-key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		switch r.URL.Path {
		case "/" + ProviderPlayersPath:
			_, _ = w.Write([]byte(`[{"PlayerID":20000441,"FirstName":"Trae","LastName":"Young","Team":"ATL","TeamID":1,"Position":"PG","Status":"Active","NbaDotComPlayerID":1629027}]`))
		case "/" + ProviderTeamsPath:
			_, _ = w.Write([]byte(`[{"TeamID":1,"Key":"ATL","City":"Atlanta","Name":"Hawks","Active":true,"NbaDotComTeamID":1610612737}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	provider := NewProvider(NewClient(Options{
		Name:       "provider",
		BaseURL:    server.URL,
		Credential: StaticCredential{Header: "Ocp-Apim-Subscription-Key", Value: "provider-key"},
		Sleeper:    &clock.Recorder{},
	}))

	players, err := provider.FetchPlayers(context.Background())
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "Young", players[0].LastName)
	require.NotNil(t, players[0].StatsPlayerID)
	assert.Equal(t, 1629027, *players[0].StatsPlayerID)

	teams, err := provider.FetchTeams(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 1)
	require.NotNil(t, teams[0].StatsTeamID)
	assert.Equal(t, 1610612737, *teams[0].StatsTeamID)

	_, err = provider.FetchCurrentSeason(context.Background())
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusNotFound))
}

func TestContracts_FetchContracts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ContractsExportPath, r.URL.Path)
		assert.Equal(t, "2025", r.URL.Query().Get("season"))
		_, _ = w.Write([]byte(`{"season":2025,"contracts":[
			{"contractId":"c-1","playerName":"Trae Young","nbaPlayerId":1629027,"team":"ATL","season":2025,"salary":45999660,"guaranteed":45999660},
			{"contractId":"c-2","playerName":"Waived Guy","team":"ATL","salary":2000000,"capHit":1000000,"deadMoney":true}]}`))
	}))
	defer server.Close()

	contracts := NewContracts(newTestClient(server.URL, &clock.Recorder{}))
	rows, err := contracts.FetchContracts(context.Background(), 2025)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, int64(45999660), rows[0].EffectiveCapHit())
	assert.Equal(t, 2025, rows[1].Season)
	assert.True(t, rows[1].DeadMoney)
	assert.Equal(t, int64(1000000), rows[1].EffectiveCapHit())
	assert.Nil(t, rows[1].StatsPlayerID)
}
