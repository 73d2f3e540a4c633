package models

import (
	"database/sql"
	"time"
)

// Contract option types
const (
	OptionNone   = ""
	OptionPlayer = "PO"
	OptionTeam   = "TO"
	OptionETO    = "ETO"
)

// Contract is one season of a player contract
type Contract struct {
	ID          int            `db:"id"`
	ContractID  string         `db:"contract_id"`
	Season      int            `db:"season"`
	PersonID    sql.NullInt32  `db:"person_id"`
	PlayerName  string         `db:"player_name"`
	TeamTricode string         `db:"team_tricode"`
	Salary      int64          `db:"salary"`
	CapHit      int64          `db:"cap_hit"`
	Guaranteed  int64          `db:"guaranteed"`
	OptionType  sql.NullString `db:"option_type"`
	SigningType sql.NullString `db:"signing_type"`
	SignedDate  sql.NullTime   `db:"signed_date"`
	DeadMoney   bool           `db:"dead_money"`
	TwoWay      bool           `db:"two_way"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// ContractInput is one player-season row of the contract export
type ContractInput struct {
	ContractID       string `json:"contractId"`
	PlayerName       string `json:"playerName"`
	StatsPlayerID    *int   `json:"nbaPlayerId,omitempty"`
	TeamAbbreviation string `json:"team"`
	Season           int    `json:"season"`
	Salary           int64  `json:"salary"`
	CapHit           *int64 `json:"capHit,omitempty"`
	Guaranteed       int64  `json:"guaranteed"`
	OptionType       string `json:"option"`
	SigningType      string `json:"signingType"`
	SignedDate       string `json:"signedDate"`
	DeadMoney        bool   `json:"deadMoney"`
	TwoWay           bool   `json:"twoWay"`
}

// EffectiveCapHit is the amount counted against the cap for the season.
// Two-way contracts do not count.
func (ci *ContractInput) EffectiveCapHit() int64 {
	if ci.TwoWay {
		return 0
	}
	if ci.CapHit != nil {
		return *ci.CapHit
	}
	return ci.Salary
}

// ToContract converts ContractInput (from API) to Contract model
func (ci *ContractInput) ToContract() *Contract {
	contract := &Contract{
		ContractID:  ci.ContractID,
		Season:      ci.Season,
		PlayerName:  ci.PlayerName,
		TeamTricode: ci.TeamAbbreviation,
		Salary:      ci.Salary,
		CapHit:      ci.EffectiveCapHit(),
		Guaranteed:  ci.Guaranteed,
		DeadMoney:   ci.DeadMoney,
		TwoWay:      ci.TwoWay,
	}

	if ci.StatsPlayerID != nil {
		contract.PersonID = sql.NullInt32{Int32: int32(*ci.StatsPlayerID), Valid: true}
	}
	if ci.OptionType != OptionNone {
		contract.OptionType = sql.NullString{String: ci.OptionType, Valid: true}
	}
	if ci.SigningType != "" {
		contract.SigningType = sql.NullString{String: ci.SigningType, Valid: true}
	}
	if ci.SignedDate != "" {
		if t, err := time.Parse("2006-01-02", ci.SignedDate); err == nil {
			contract.SignedDate = sql.NullTime{Time: t, Valid: true}
		}
	}

	return contract
}

// TeamPayroll is the cap-relevant total for one team and season
type TeamPayroll struct {
	TeamTricode string `db:"team_tricode"`
	Season      int    `db:"season"`
	Players     int    `db:"players"`
	Salary      int64  `db:"salary"`
	CapHit      int64  `db:"cap_hit"`
	DeadMoney   int64  `db:"dead_money"`
}
