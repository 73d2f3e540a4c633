package transform

var boxShooting = FieldMap{
	{"minutes", "minutes", Minutes},
	{"points", "pts", Int},
	{"fieldGoalsMade", "fgm", Int},
	{"fieldGoalsAttempted", "fga", Int},
	{"fieldGoalsPercentage", "fg_pct", Percent},
	{"threePointersMade", "fg3m", Int},
	{"threePointersAttempted", "fg3a", Int},
	{"threePointersPercentage", "fg3_pct", Percent},
	{"freeThrowsMade", "ftm", Int},
	{"freeThrowsAttempted", "fta", Int},
	{"freeThrowsPercentage", "ft_pct", Percent},
	{"reboundsOffensive", "oreb", Int},
	{"reboundsDefensive", "dreb", Int},
	{"reboundsTotal", "reb", Int},
	{"assists", "ast", Int},
	{"steals", "stl", Int},
	{"blocks", "blk", Int},
	{"turnovers", "tov", Int},
	{"foulsPersonal", "pf", Int},
	{"plusMinusPoints", "plus_minus", Int},
}

var seasonShooting = FieldMap{
	{"minutes", "minutes", Minutes},
	{"points", "pts", Float},
	{"fieldGoalsMade", "fgm", Float},
	{"fieldGoalsAttempted", "fga", Float},
	{"fieldGoalsPercentage", "fg_pct", Percent},
	{"threePointersMade", "fg3m", Float},
	{"threePointersAttempted", "fg3a", Float},
	{"threePointersPercentage", "fg3_pct", Percent},
	{"freeThrowsMade", "ftm", Float},
	{"freeThrowsAttempted", "fta", Float},
	{"freeThrowsPercentage", "ft_pct", Percent},
	{"reboundsOffensive", "oreb", Float},
	{"reboundsDefensive", "dreb", Float},
	{"reboundsTotal", "reb", Float},
	{"assists", "ast", Float},
	{"steals", "stl", Float},
	{"blocks", "blk", Float},
	{"turnovers", "tov", Float},
	{"foulsPersonal", "pf", Float},
	{"plusMinusPoints", "plus_minus", Float},
}

var advanced = FieldMap{
	{"offensiveRating", "off_rating", Float},
	{"defensiveRating", "def_rating", Float},
	{"netRating", "net_rating", Float},
	{"trueShootingPercentage", "ts_pct", Percent},
	{"effectiveFieldGoalPercentage", "efg_pct", Percent},
	{"assistPercentage", "ast_pct", Percent},
	{"offensiveReboundPercentage", "oreb_pct", Percent},
	{"defensiveReboundPercentage", "dreb_pct", Percent},
	{"turnoverRatio", "tov_pct", Percent},
	{"pace", "pace", Pace},
	{"PIE", "pie", PIE},
	{"possessions", "possessions", Float},
}

func join(maps ...FieldMap) FieldMap {
	var out FieldMap
	for _, m := range maps {
		out = append(out, m...)
	}
	return out
}

var (
	teamGameKeys   = FieldMap{{"gameId", "game_id", String}, {"teamId", "team_id", Int}, {"teamTricode", "team_tricode", String}}
	playerGameKeys = FieldMap{
		{"gameId", "game_id", String},
		{"personId", "person_id", Int},
		{"teamId", "team_id", Int},
		{"playerName", "player_name", String},
		{"position", "start_position", String},
	}
	teamSeasonKeys = FieldMap{
		{"teamId", "team_id", Int},
		{"teamTricode", "team_tricode", String},
		{"gamesPlayed", "gp", Int},
		{"wins", "w", Int},
		{"losses", "l", Int},
	}
)

// Field maps by row shape and measure type
var (
	TeamGameBase       = join(teamGameKeys, boxShooting)
	TeamGameAdvanced   = join(teamGameKeys, advanced)
	PlayerGameBase     = join(playerGameKeys, boxShooting)
	PlayerGameAdvanced = join(playerGameKeys, advanced, FieldMap{{"usagePercentage", "usg_pct", Percent}})
	TeamSeasonBase     = join(teamSeasonKeys, seasonShooting)
	TeamSeasonAdvanced = join(teamSeasonKeys, advanced)
)
