package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"nbacap/ingestion/internal/cache"
	"nbacap/ingestion/internal/capsheet"
	"nbacap/ingestion/internal/client"
	"nbacap/ingestion/internal/config"
	"nbacap/ingestion/internal/ingest"
	"nbacap/ingestion/internal/models"
	"nbacap/ingestion/internal/querytool"
	"nbacap/ingestion/internal/repository"

	"github.com/rs/zerolog/log"
)

// app holds the clients and stores one command needs
type app struct {
	cfg *config.Config

	db    *repository.Database
	cache *cache.RedisCache

	stats     *client.Stats
	provider  *client.Provider
	contracts *client.Contracts
	executor  *querytool.Executor
}

// newClients builds the upstream clients without touching the network
func newClients(cfg *config.Config) *app {
	statsClient := client.NewClient(client.Options{
		Name:    "stats",
		BaseURL: cfg.StatsBaseURL,
		Credential: client.EnvCredential{
			Header:   cfg.StatsKeyHeader,
			Variable: cfg.StatsKeyEnv,
		},
		Timeout:   cfg.StatsTimeout,
		Retries:   cfg.StatsRetries,
		RateLimit: cfg.APIRateLimit,
		Burst:     cfg.APIBurstLimit,
	})

	providerClient := client.NewClient(client.Options{
		Name:    "provider",
		BaseURL: cfg.ProviderBaseURL,
		Credential: client.StaticCredential{
			Header: "Ocp-Apim-Subscription-Key",
			Value:  cfg.ProviderAPIKey,
		},
		Timeout:   cfg.ProviderTimeout,
		RateLimit: cfg.APIRateLimit,
		Burst:     cfg.APIBurstLimit,
	})

	contractsClient := client.NewClient(client.Options{
		Name:       "contracts",
		BaseURL:    cfg.ContractsBaseURL,
		Credential: bearerCredential(cfg.ContractsToken),
		Timeout:    cfg.ContractsTimeout,
	})

	return &app{
		cfg:       cfg,
		stats:     client.NewStats(statsClient, cfg.StatsLeagueID),
		provider:  client.NewProvider(providerClient),
		contracts: client.NewContracts(contractsClient),
		executor:  querytool.NewExecutor(statsClient, nil),
	}
}

// bearerCredential sends no Authorization header when token is empty
func bearerCredential(token string) client.StaticCredential {
	if token == "" {
		return client.StaticCredential{Header: "Authorization"}
	}
	return client.StaticCredential{Header: "Authorization", Value: "Bearer " + token}
}

// newApp connects to the warehouse and, when enabled, the scoreboard cache
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := newClients(cfg)

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.db = db

	if cfg.RedisEnabled {
		rc, err := cache.New(ctx, cache.Config{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			// The cache only saves scoreboard calls; run without it
			log.Warn().Err(err).Msg("Failed to connect to Redis, continuing without cache")
		} else {
			a.cache = rc
			a.stats.WithCache(rc, cfg.ScoreboardCacheTTL())
		}
	}

	return a, nil
}

func (a *app) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
	if a.db != nil {
		log.Debug().Interface("pool", a.db.PoolStats()).Msg("Database pool stats")
		a.db.Close()
	}
}

func (a *app) settings() ingest.Settings {
	return ingest.Settings{
		LeagueID:               a.cfg.StatsLeagueID,
		BatchSize:              a.cfg.QueryToolBatchSize,
		MaxRowsReturned:        a.cfg.QueryToolMaxRows,
		TruncationThreshold:    a.cfg.QueryToolTruncationThreshold,
		SingleBatchMaxAttempts: a.cfg.QueryToolSingleBatchMaxAttempts,
	}
}

func (a *app) boxScorePass() *ingest.BoxScorePass {
	return &ingest.BoxScorePass{
		Games:    a.stats,
		GameRepo: a.db.Games,
		Fetcher:  a.executor,
		Stats:    a.db.Stats,
		Settings: a.settings(),
	}
}

func (a *app) teamSeasonPass(perModes []string) *ingest.TeamSeasonPass {
	return &ingest.TeamSeasonPass{
		Teams:    a.db.Teams,
		Fallback: a.provider,
		Fetcher:  a.executor,
		Stats:    a.db.Stats,
		Settings: a.settings(),
		PerModes: perModes,
	}
}

// activeRoster limits the player refresh to rostered players
type activeRoster struct {
	*client.Provider
}

func (r activeRoster) FetchPlayers(ctx context.Context) ([]models.PlayerInput, error) {
	return r.FetchActivePlayers(ctx)
}

func (a *app) playerSource(activeOnly bool) ingest.PlayerSource {
	if activeOnly {
		return activeRoster{a.provider}
	}
	return a.provider
}

func (a *app) playerPass(activeOnly bool) *ingest.PlayerPass {
	return &ingest.PlayerPass{
		Source:  a.playerSource(activeOnly),
		Teams:   a.db.Teams,
		Players: a.db.Players,
	}
}

func (a *app) contractPass() *ingest.ContractPass {
	return &ingest.ContractPass{
		Source:    a.contracts,
		Contracts: a.db.Contracts,
	}
}

func (a *app) capsheetBuilder() *capsheet.Builder {
	return &capsheet.Builder{
		Source:    a.db.Contracts,
		Constants: capConstants(a.cfg),
	}
}

// resolveSeason returns season when set, otherwise the provider's current
// season, otherwise the season in progress on today's date
func (a *app) resolveSeason(ctx context.Context, season int) int {
	if season > 0 {
		return season
	}

	current, err := a.provider.FetchCurrentSeason(ctx)
	if err == nil && current.Season > 0 {
		// The provider labels seasons by the year they end in
		return current.Season - 1
	}
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch current season, using calendar")
	}
	return models.SeasonForDate(time.Now().UTC())
}

func capConstants(cfg *config.Config) capsheet.Constants {
	return capsheet.Constants{
		SalaryCap:         cfg.SalaryCap,
		LuxuryTax:         cfg.LuxuryTax,
		FirstApron:        cfg.FirstApron,
		SecondApron:       cfg.SecondApron,
		MinimumTeamSalary: cfg.MinimumTeamSalary,
	}
}
