package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nbacap/ingestion/internal/client"
	"nbacap/ingestion/internal/config"
	"nbacap/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProviderServer(t *testing.T, handler http.HandlerFunc) *app {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return newClients(&config.Config{
		StatsBaseURL:    "http://127.0.0.1:1",
		StatsKeyHeader:  "X-Api-Key",
		StatsKeyEnv:     "STATS_API_KEY",
		StatsLeagueID:   "00",
		ProviderBaseURL: server.URL,
		ProviderAPIKey:  "provider-key",
		ProviderTimeout: 2 * time.Second,
	})
}

func TestResolveSeason_ExplicitWins(t *testing.T) {
	a := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected provider call to %s", r.URL.Path)
	})
	assert.Equal(t, 2022, a.resolveSeason(context.Background(), 2022))
}

func TestResolveSeason_FromProvider(t *testing.T) {
	a := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+client.ProviderCurrentSeasonPath, r.URL.Path)
		assert.Equal(t, "provider-key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		_, _ = w.Write([]byte(`{"Season":2025,"SeasonType":1,"ApiSeason":"2025REG","Description":"2024-25"}`))
	})
	assert.Equal(t, 2024, a.resolveSeason(context.Background(), 0))
}

func TestResolveSeason_FallsBackToCalendar(t *testing.T) {
	a := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	assert.Equal(t, models.SeasonForDate(time.Now().UTC()), a.resolveSeason(context.Background(), 0))
}

func TestPlayerSource_ActiveUsesActiveEndpoint(t *testing.T) {
	a := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+client.ProviderActivePlayersPath, r.URL.Path)
		_, _ = w.Write([]byte(`[{"PlayerID":20000441,"FirstName":"Trae","LastName":"Young","Team":"ATL","Status":"Active"}]`))
	})

	players, err := a.playerSource(true).FetchPlayers(context.Background())
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "Young", players[0].LastName)
}

func TestPlayerSource_DefaultUsesFullList(t *testing.T) {
	a := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+client.ProviderPlayersPath, r.URL.Path)
		_, _ = w.Write([]byte(`[]`))
	})

	players, err := a.playerSource(false).FetchPlayers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, players)
}

func TestContractsClient_BearerHeader(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"token set", "abc123", "Bearer abc123"},
		{"no token", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Values("Authorization")
				_, _ = w.Write([]byte(`{"season":2024,"contracts":[]}`))
			}))
			defer server.Close()

			a := newClients(&config.Config{
				ContractsBaseURL: server.URL,
				ContractsToken:   tt.token,
				ContractsTimeout: 2 * time.Second,
			})

			_, err := a.contracts.FetchContracts(context.Background(), 2024)
			require.NoError(t, err)

			if tt.want == "" {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, []string{tt.want}, got)
			}
		})
	}
}
