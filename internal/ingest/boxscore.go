package ingest

import (
	"context"
	"fmt"
	"time"

	"nbacap/ingestion/internal/client"
	"nbacap/ingestion/internal/models"
	"nbacap/ingestion/internal/querytool"
	"nbacap/ingestion/internal/transform"

	"github.com/rs/zerolog/log"
)

// GameSource is satisfied by *client.Stats
type GameSource interface {
	Scoreboard(ctx context.Context, date time.Time) ([]models.GameInput, error)
}

// GameStore is satisfied by *repository.GameRepository
type GameStore interface {
	Upsert(ctx context.Context, game *models.Game) error
}

// BoxScoreMeasures are fetched for every finished game
var BoxScoreMeasures = []Measure{
	{MeasureType: MeasureBase, PerMode: PerModeTotals},
	{MeasureType: MeasureAdvanced, PerMode: PerModeTotals},
}

// BoxScorePass loads one date's games and their team and player box scores
type BoxScorePass struct {
	Games    GameSource
	GameRepo GameStore
	Fetcher  RowFetcher
	Stats    StatStore
	Settings Settings
}

type boxTarget struct {
	name   string
	path   string
	rowKey string
	table  models.StatTable
	maps   map[string]transform.FieldMap
}

var boxTargets = []boxTarget{
	{
		name:   "team",
		path:   client.QueryToolTeamGamePath,
		rowKey: "teams",
		table:  models.TeamGameStatsTable,
		maps: map[string]transform.FieldMap{
			MeasureBase:     transform.TeamGameBase,
			MeasureAdvanced: transform.TeamGameAdvanced,
		},
	},
	{
		name:   "player",
		path:   client.QueryToolPlayerGamePath,
		rowKey: "players",
		table:  models.PlayerGameStatsTable,
		maps: map[string]transform.FieldMap{
			MeasureBase:     transform.PlayerGameBase,
			MeasureAdvanced: transform.PlayerGameAdvanced,
		},
	},
}

// Run ingests date. Unfinished games are stored but not fetched.
func (p *BoxScorePass) Run(ctx context.Context, date time.Time) (report *Report, err error) {
	start := time.Now()
	day := date.Format("2006-01-02")
	report = newReport("boxscores", day)
	defer func() { report.finish(start, err) }()

	games, err := p.Games.Scoreboard(ctx, date)
	if err != nil {
		return report, fmt.Errorf("failed to enumerate games for %s: %w", day, err)
	}
	if len(games) == 0 {
		return report, fmt.Errorf("%s: %w", day, ErrNoGames)
	}

	var finished []string
	for i := range games {
		game := games[i].ToGame(date)
		if err := p.GameRepo.Upsert(ctx, game); err != nil {
			return report, err
		}
		if game.IsFinal() {
			finished = append(finished, game.GameID)
		}
	}
	report.Rows["games"] = int64(len(games))
	report.IDs = len(finished)

	if len(finished) == 0 {
		log.Info().Str("date", day).Int("games", len(games)).Msg("No finished games to fetch")
		return report, nil
	}

	params := map[string]string{
		"LeagueID": p.Settings.LeagueID,
		"Season":   models.SeasonLabel(models.SeasonForDate(date)),
	}

	for _, target := range boxTargets {
		var queries []querytool.Query
		var maps []mapper
		for _, m := range BoxScoreMeasures {
			qp := copyParams(params)
			qp["MeasureType"] = m.MeasureType
			qp["PerMode"] = m.PerMode
			queries = append(queries, p.Settings.query(target.path, finished, "GameId", target.rowKey, qp))
			maps = append(maps, target.maps[m.MeasureType].Apply)
		}

		groups, err := fetchMapped(ctx, p.Fetcher, report, queries, maps)
		if err != nil {
			return report, fmt.Errorf("failed to fetch %s box scores for %s: %w", target.name, day, err)
		}

		rows := transform.Merge(target.table.ConflictKeys, groups...)
		n, err := p.Stats.Upsert(ctx, target.table, rows)
		if err != nil {
			return report, err
		}
		report.Rows[target.table.Name] = n
	}

	return report, nil
}

func copyParams(params map[string]string) map[string]string {
	out := make(map[string]string, len(params)+2)
	for k, v := range params {
		out[k] = v
	}
	return out
}
