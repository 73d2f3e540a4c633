package client

import (
	"context"
	"fmt"

	"nbacap/ingestion/internal/models"
)

// Provider API paths
const (
	ProviderTeamsPath         = "scores/json/teams"
	ProviderPlayersPath       = "scores/json/Players"
	ProviderActivePlayersPath = "scores/json/PlayersActiveBasic"
	ProviderCurrentSeasonPath = "scores/json/CurrentSeason"
)

// ProviderSeason is the provider's notion of the current season
type ProviderSeason struct {
	Season      int    `json:"Season"`
	SeasonType  int    `json:"SeasonType"`
	ApiSeason   string `json:"ApiSeason"`
	Description string `json:"Description"`
}

// Provider wraps the secondary provider API
type Provider struct {
	client *Client
}

// NewProvider creates a provider API wrapper around c
func NewProvider(c *Client) *Provider {
	return &Provider{client: c}
}

// FetchCurrentSeason fetches the current season year
func (p *Provider) FetchCurrentSeason(ctx context.Context) (*ProviderSeason, error) {
	var season ProviderSeason
	if err := p.client.GetJSON(ctx, Request{Path: ProviderCurrentSeasonPath}, &season); err != nil {
		return nil, fmt.Errorf("failed to fetch current season: %w", err)
	}
	return &season, nil
}

// FetchTeams fetches all teams
func (p *Provider) FetchTeams(ctx context.Context) ([]models.TeamInput, error) {
	var teams []models.TeamInput
	if err := p.client.GetJSON(ctx, Request{Path: ProviderTeamsPath}, &teams); err != nil {
		return nil, fmt.Errorf("failed to fetch teams: %w", err)
	}
	return teams, nil
}

// FetchPlayers fetches every player the provider knows about
func (p *Provider) FetchPlayers(ctx context.Context) ([]models.PlayerInput, error) {
	var players []models.PlayerInput
	if err := p.client.GetJSON(ctx, Request{Path: ProviderPlayersPath}, &players); err != nil {
		return nil, fmt.Errorf("failed to fetch players: %w", err)
	}
	return players, nil
}

// FetchActivePlayers fetches players currently on a roster
func (p *Provider) FetchActivePlayers(ctx context.Context) ([]models.PlayerInput, error) {
	var players []models.PlayerInput
	if err := p.client.GetJSON(ctx, Request{Path: ProviderActivePlayersPath}, &players); err != nil {
		return nil, fmt.Errorf("failed to fetch active players: %w", err)
	}
	return players, nil
}
