package ingest

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"nbacap/ingestion/internal/client"
	"nbacap/ingestion/internal/models"
	"nbacap/ingestion/internal/querytool"
	"nbacap/ingestion/internal/transform"

	"github.com/rs/zerolog/log"
)

// TeamIDSource is satisfied by *repository.TeamRepository
type TeamIDSource interface {
	ListTeamIDs(ctx context.Context) ([]int, error)
}

// TeamLister is satisfied by *client.Provider
type TeamLister interface {
	FetchTeams(ctx context.Context) ([]models.TeamInput, error)
}

// TeamSeasonPass loads season aggregates for every team
type TeamSeasonPass struct {
	Teams    TeamIDSource
	Fallback TeamLister
	Fetcher  RowFetcher
	Stats    StatStore
	Settings Settings

	// PerModes defaults to PerGame
	PerModes []string
}

// Run ingests season (start year) for seasonType
func (p *TeamSeasonPass) Run(ctx context.Context, season int, seasonType string) (report *Report, err error) {
	start := time.Now()
	label := models.SeasonLabel(season)
	report = newReport("team-season", label+" "+seasonType)
	defer func() { report.finish(start, err) }()

	ids, err := p.teamIDs(ctx)
	if err != nil {
		return report, err
	}
	report.IDs = len(ids)

	perModes := p.PerModes
	if len(perModes) == 0 {
		perModes = []string{PerModePerGame}
	}

	table := models.TeamSeasonStatsTable
	var all []map[string]any

	for _, perMode := range perModes {
		var queries []querytool.Query
		var maps []mapper
		for _, measure := range []string{MeasureBase, MeasureAdvanced} {
			params := map[string]string{
				"LeagueID":    p.Settings.LeagueID,
				"Season":      label,
				"SeasonType":  seasonType,
				"MeasureType": measure,
				"PerMode":     perMode,
			}
			queries = append(queries, p.Settings.query(client.QueryToolTeamSeasonPath, ids, "TeamId", "teams", params))

			fieldMap := transform.TeamSeasonBase
			if measure == MeasureAdvanced {
				fieldMap = transform.TeamSeasonAdvanced
			}
			maps = append(maps, seasonMapper(fieldMap, season, seasonType, perMode))
		}

		groups, err := fetchMapped(ctx, p.Fetcher, report, queries, maps)
		if err != nil {
			return report, fmt.Errorf("failed to fetch %s team season stats for %s: %w", perMode, label, err)
		}
		all = append(all, transform.Merge(table.ConflictKeys, groups...)...)
	}

	n, err := p.Stats.Upsert(ctx, table, all)
	if err != nil {
		return report, err
	}
	report.Rows[table.Name] = n

	return report, nil
}

func seasonMapper(m transform.FieldMap, season int, seasonType, perMode string) mapper {
	return func(row map[string]any) map[string]any {
		out := m.Apply(row)
		out["season"] = int64(season)
		out["season_type"] = seasonType
		out["per_mode"] = perMode
		return out
	}
}

// teamIDs reads team ids from the warehouse, falling back to the provider
// when the warehouse has none yet
func (p *TeamSeasonPass) teamIDs(ctx context.Context) ([]string, error) {
	ids, err := p.Teams.ListTeamIDs(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read team ids from warehouse, using provider")
	}

	if len(ids) == 0 && p.Fallback != nil {
		teams, ferr := p.Fallback.FetchTeams(ctx)
		if ferr != nil {
			return nil, fmt.Errorf("failed to resolve team ids: %w", ferr)
		}
		for _, t := range teams {
			if t.StatsTeamID != nil && t.Active {
				ids = append(ids, *t.StatsTeamID)
			}
		}
	}

	if len(ids) == 0 {
		if err != nil {
			return nil, fmt.Errorf("failed to resolve team ids: %w", err)
		}
		return nil, fmt.Errorf("no team ids available")
	}

	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.Itoa(id)
	}
	return out, nil
}
