package models

import (
	"database/sql"
	"fmt"
	"time"
)

// Game status codes reported by the scoreboard
const (
	GameStatusScheduled  = 1
	GameStatusInProgress = 2
	GameStatusFinal      = 3
)

// Game represents one league game
type Game struct {
	ID          int            `db:"id"`
	GameID      string         `db:"game_id"` // e.g. 0022400101
	GameDate    time.Time      `db:"game_date"`
	Season      int            `db:"season"`
	HomeTeamID  int            `db:"home_team_id"`
	AwayTeamID  int            `db:"away_team_id"`
	HomeTricode string         `db:"home_tricode"`
	AwayTricode string         `db:"away_tricode"`
	Status      int            `db:"status"`
	StatusText  sql.NullString `db:"status_text"`
	TipoffUTC   sql.NullTime   `db:"tipoff_utc"`
	HomeScore   sql.NullInt32  `db:"home_score"`
	AwayScore   sql.NullInt32  `db:"away_score"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// IsFinal returns true if the game has finished
func (g *Game) IsFinal() bool {
	return g.Status == GameStatusFinal
}

// ScoreboardTeam is one side of a scoreboard game
type ScoreboardTeam struct {
	TeamID      int    `json:"teamId"`
	TeamTricode string `json:"teamTricode"`
	TeamCity    string `json:"teamCity"`
	TeamName    string `json:"teamName"`
	Score       *int   `json:"score"`
}

// GameInput is one game on a date's scoreboard
type GameInput struct {
	GameID         string         `json:"gameId"`
	GameCode       string         `json:"gameCode"`
	GameStatus     int            `json:"gameStatus"`
	GameStatusText string         `json:"gameStatusText"`
	GameTimeUTC    string         `json:"gameTimeUTC"`
	HomeTeam       ScoreboardTeam `json:"homeTeam"`
	AwayTeam       ScoreboardTeam `json:"awayTeam"`
}

// IsFinal returns true if the game has finished
func (gi *GameInput) IsFinal() bool {
	return gi.GameStatus == GameStatusFinal
}

// ToGame converts GameInput (from API) to Game model. date is the scoreboard
// date the game was listed under.
func (gi *GameInput) ToGame(date time.Time) *Game {
	game := &Game{
		GameID:      gi.GameID,
		GameDate:    time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		Season:      SeasonForDate(date),
		HomeTeamID:  gi.HomeTeam.TeamID,
		AwayTeamID:  gi.AwayTeam.TeamID,
		HomeTricode: gi.HomeTeam.TeamTricode,
		AwayTricode: gi.AwayTeam.TeamTricode,
		Status:      gi.GameStatus,
	}

	if gi.GameStatusText != "" {
		game.StatusText = sql.NullString{String: gi.GameStatusText, Valid: true}
	}
	if gi.GameTimeUTC != "" {
		if t, err := time.Parse(time.RFC3339, gi.GameTimeUTC); err == nil {
			game.TipoffUTC = sql.NullTime{Time: t, Valid: true}
		}
	}
	if gi.HomeTeam.Score != nil {
		game.HomeScore = sql.NullInt32{Int32: int32(*gi.HomeTeam.Score), Valid: true}
	}
	if gi.AwayTeam.Score != nil {
		game.AwayScore = sql.NullInt32{Int32: int32(*gi.AwayTeam.Score), Valid: true}
	}

	return game
}

// SeasonForDate returns the starting year of the season date falls in.
// Seasons roll over on July 1.
func SeasonForDate(date time.Time) int {
	if date.Month() >= time.July {
		return date.Year()
	}
	return date.Year() - 1
}

// SeasonLabel formats a season start year the way the stats API expects (2024-25)
func SeasonLabel(season int) string {
	return fmt.Sprintf("%d-%02d", season, (season+1)%100)
}
