package models

import (
	"database/sql"
	"strings"
	"time"
)

// Player represents a rostered or formerly rostered player
type Player struct {
	ID               int            `db:"id"`
	ProviderPlayerID int            `db:"provider_player_id"`
	PersonID         sql.NullInt32  `db:"person_id"` // stats API person id
	FirstName        string         `db:"first_name"`
	LastName         string         `db:"last_name"`
	TeamTricode      sql.NullString `db:"team_tricode"`
	Position         sql.NullString `db:"position"`
	Jersey           sql.NullInt32  `db:"jersey"`
	Status           string         `db:"status"`
	InjuryStatus     sql.NullString `db:"injury_status"`
	BirthDate        sql.NullTime   `db:"birth_date"`
	Experience       sql.NullInt32  `db:"experience"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// FullName returns "First Last"
func (p *Player) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// PlayerInput is a player as returned by the secondary provider
type PlayerInput struct {
	PlayerID      int    `json:"PlayerID"`
	FirstName     string `json:"FirstName"`
	LastName      string `json:"LastName"`
	Team          string `json:"Team"`
	Position      string `json:"Position"`
	Jersey        *int   `json:"Jersey,omitempty"`
	Status        string `json:"Status"`
	InjuryStatus  string `json:"InjuryStatus"`
	BirthDate     string `json:"BirthDate"` // 2006-01-02T15:04:05
	Experience    *int   `json:"Experience,omitempty"`
	StatsPlayerID *int   `json:"NbaDotComPlayerID,omitempty"`
}

// ToPlayer converts PlayerInput (from API) to Player model
func (pi *PlayerInput) ToPlayer() *Player {
	player := &Player{
		ProviderPlayerID: pi.PlayerID,
		FirstName:        pi.FirstName,
		LastName:         pi.LastName,
		Status:           pi.Status,
	}

	if player.Status == "" {
		player.Status = "Unknown"
	}
	if pi.StatsPlayerID != nil {
		player.PersonID = sql.NullInt32{Int32: int32(*pi.StatsPlayerID), Valid: true}
	}
	if pi.Team != "" {
		player.TeamTricode = sql.NullString{String: pi.Team, Valid: true}
	}
	if pi.Position != "" {
		player.Position = sql.NullString{String: pi.Position, Valid: true}
	}
	if pi.Jersey != nil {
		player.Jersey = sql.NullInt32{Int32: int32(*pi.Jersey), Valid: true}
	}
	if pi.InjuryStatus != "" && pi.InjuryStatus != "Scrambled" {
		player.InjuryStatus = sql.NullString{String: pi.InjuryStatus, Valid: true}
	}
	if pi.Experience != nil {
		player.Experience = sql.NullInt32{Int32: int32(*pi.Experience), Valid: true}
	}
	if pi.BirthDate != "" {
		for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, pi.BirthDate); err == nil {
				player.BirthDate = sql.NullTime{Time: t, Valid: true}
				break
			}
		}
	}

	return player
}
