package models

// StatTable declares a warehouse table written through the generic upsert
type StatTable struct {
	Name         string
	ConflictKeys []string
	Columns      []string
}

// HasColumn reports whether column belongs to the table
func (t StatTable) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

var shootingColumns = []string{
	"minutes", "pts",
	"fgm", "fga", "fg_pct",
	"fg3m", "fg3a", "fg3_pct",
	"ftm", "fta", "ft_pct",
	"oreb", "dreb", "reb",
	"ast", "stl", "blk", "tov", "pf", "plus_minus",
}

var advancedColumns = []string{
	"off_rating", "def_rating", "net_rating",
	"ts_pct", "efg_pct", "ast_pct", "oreb_pct", "dreb_pct", "tov_pct",
	"pace", "pie", "possessions",
}

func columns(groups ...[]string) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// TeamGameStatsTable holds one row per team per game
var TeamGameStatsTable = StatTable{
	Name:         "team_game_stats",
	ConflictKeys: []string{"game_id", "team_id"},
	Columns: columns(
		[]string{"game_id", "team_id", "team_tricode"},
		shootingColumns,
		advancedColumns,
	),
}

// PlayerGameStatsTable holds one row per player per game
var PlayerGameStatsTable = StatTable{
	Name:         "player_game_stats",
	ConflictKeys: []string{"game_id", "person_id"},
	Columns: columns(
		[]string{"game_id", "person_id", "team_id", "player_name", "start_position"},
		shootingColumns,
		advancedColumns,
		[]string{"usg_pct"},
	),
}

// TeamSeasonStatsTable holds one row per team, season, season type and per-mode
var TeamSeasonStatsTable = StatTable{
	Name:         "team_season_stats",
	ConflictKeys: []string{"season", "season_type", "per_mode", "team_id"},
	Columns: columns(
		[]string{"season", "season_type", "per_mode", "team_id", "team_tricode", "gp", "w", "l"},
		shootingColumns,
		advancedColumns,
	),
}
