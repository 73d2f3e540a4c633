package ingest

import (
	"context"
	"fmt"
	"time"

	"nbacap/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// PlayerSource is satisfied by *client.Provider
type PlayerSource interface {
	FetchTeams(ctx context.Context) ([]models.TeamInput, error)
	FetchPlayers(ctx context.Context) ([]models.PlayerInput, error)
}

// TeamStore is satisfied by *repository.TeamRepository
type TeamStore interface {
	Upsert(ctx context.Context, team *models.Team) error
}

// PlayerStore is satisfied by *repository.PlayerRepository
type PlayerStore interface {
	Upsert(ctx context.Context, player *models.Player) error
}

// PlayerPass refreshes teams and players from the secondary provider
type PlayerPass struct {
	Source  PlayerSource
	Teams   TeamStore
	Players PlayerStore
}

// Run refreshes every team, then every player. A single bad record is
// logged and skipped.
func (p *PlayerPass) Run(ctx context.Context) (report *Report, err error) {
	start := time.Now()
	report = newReport("players", "current")
	defer func() { report.finish(start, err) }()

	teams, err := p.Source.FetchTeams(ctx)
	if err != nil {
		return report, err
	}
	log.Info().Int("count", len(teams)).Msg("Teams fetched")

	savedTeams := 0
	for i := range teams {
		team := teams[i].ToTeam()
		if team == nil {
			continue
		}
		if err := p.Teams.Upsert(ctx, team); err != nil {
			log.Warn().Err(err).Str("tricode", team.Tricode).Msg("Failed to save team")
			report.Warnings = append(report.Warnings, fmt.Sprintf("team %s: %v", team.Tricode, err))
			continue
		}
		savedTeams++
	}
	report.Rows["teams"] = int64(savedTeams)

	players, err := p.Source.FetchPlayers(ctx)
	if err != nil {
		return report, err
	}
	report.IDs = len(players)
	log.Info().Int("count", len(players)).Msg("Players fetched")

	savedPlayers := 0
	for i := range players {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		player := players[i].ToPlayer()
		if err := p.Players.Upsert(ctx, player); err != nil {
			log.Warn().Err(err).Int("player_id", player.ProviderPlayerID).Msg("Failed to save player")
			report.Warnings = append(report.Warnings, fmt.Sprintf("player %d: %v", player.ProviderPlayerID, err))
			continue
		}
		savedPlayers++
		if savedPlayers%250 == 0 {
			log.Debug().Int("saved", savedPlayers).Msg("Saving players...")
		}
	}
	report.Rows["players"] = int64(savedPlayers)

	return report, nil
}
