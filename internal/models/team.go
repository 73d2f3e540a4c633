package models

import (
	"database/sql"
	"time"
)

// Team represents a league franchise
type Team struct {
	ID             int            `db:"id"`
	TeamID         int            `db:"team_id"` // stats API team id
	Tricode        string         `db:"tricode"`
	City           string         `db:"city"`
	Name           string         `db:"name"`
	Conference     sql.NullString `db:"conference"`
	Division       sql.NullString `db:"division"`
	ProviderTeamID sql.NullInt32  `db:"provider_team_id"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// TeamInput is a team as returned by the secondary provider
type TeamInput struct {
	TeamID      int    `json:"TeamID"` // provider id
	Key         string `json:"Key"`    // API returns "Key" for tricode
	City        string `json:"City"`
	Name        string `json:"Name"`
	Conference  string `json:"Conference"`
	Division    string `json:"Division"`
	Active      bool   `json:"Active"`
	StatsTeamID *int   `json:"NbaDotComTeamID,omitempty"`
}

// ToTeam converts TeamInput (from API) to Team model. Teams without a
// stats API id cannot be joined to box scores and yield nil.
func (ti *TeamInput) ToTeam() *Team {
	if ti.StatsTeamID == nil {
		return nil
	}

	team := &Team{
		TeamID:         *ti.StatsTeamID,
		Tricode:        ti.Key,
		City:           ti.City,
		Name:           ti.Name,
		ProviderTeamID: sql.NullInt32{Int32: int32(ti.TeamID), Valid: ti.TeamID != 0},
	}

	if ti.Conference != "" {
		team.Conference = sql.NullString{String: ti.Conference, Valid: true}
	}
	if ti.Division != "" {
		team.Division = sql.NullString{String: ti.Division, Valid: true}
	}

	return team
}
