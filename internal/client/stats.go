package client

import (
	"context"
	"fmt"
	"time"

	"nbacap/ingestion/internal/metrics"
	"nbacap/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// Stats API paths
const (
	ScoreboardPath          = "/api/scores/scoreboard"
	QueryToolTeamGamePath   = "/api/querytool/game/team"
	QueryToolPlayerGamePath = "/api/querytool/game/player"
	QueryToolTeamSeasonPath = "/api/querytool/season/team"
)

// ResponseCache stores decoded enumeration responses
type ResponseCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type scoreboardResponse struct {
	Scoreboard struct {
		GameDate string             `json:"gameDate"`
		LeagueID string             `json:"leagueId"`
		Games    []models.GameInput `json:"games"`
	} `json:"scoreboard"`
}

// Stats wraps the primary stats API
type Stats struct {
	*Client
	leagueID string
	cache    ResponseCache
	cacheTTL time.Duration
	now      func() time.Time
}

// NewStats creates a stats API wrapper around c
func NewStats(c *Client, leagueID string) *Stats {
	return &Stats{Client: c, leagueID: leagueID, now: time.Now}
}

// WithCache enables caching of scoreboards for dates that are already over
func (s *Stats) WithCache(cache ResponseCache, ttl time.Duration) *Stats {
	s.cache = cache
	s.cacheTTL = ttl
	return s
}

// LeagueID returns the league the wrapper queries
func (s *Stats) LeagueID() string {
	return s.leagueID
}

// Scoreboard fetches the games scheduled on date
func (s *Stats) Scoreboard(ctx context.Context, date time.Time) ([]models.GameInput, error) {
	day := date.Format("2006-01-02")
	key := fmt.Sprintf("scoreboard:%s:%s", s.leagueID, day)

	cacheable := s.cache != nil && day < s.now().UTC().Format("2006-01-02")
	if cacheable {
		var cached []models.GameInput
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Scoreboard cache read failed")
		} else if hit {
			metrics.RecordCacheHit()
			return cached, nil
		}
		metrics.RecordCacheMiss()
	}

	var resp scoreboardResponse
	err := s.GetJSON(ctx, Request{
		Path: ScoreboardPath,
		Params: map[string]string{
			"GameDate": day,
			"LeagueID": s.leagueID,
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scoreboard for %s: %w", day, err)
	}

	games := resp.Scoreboard.Games
	log.Debug().Str("date", day).Int("games", len(games)).Msg("Scoreboard fetched")

	if cacheable {
		if err := s.cache.SetJSON(ctx, key, games, s.cacheTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Scoreboard cache write failed")
		}
	}

	return games, nil
}
