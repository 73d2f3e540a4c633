// Package capsheet computes team salary-cap positions and writes them to a
// self-contained workbook.
package capsheet

import (
	"nbacap/ingestion/internal/models"
)

// Cap status labels, lowest to highest
const (
	StatusUnderCap    = "Under Cap"
	StatusOverCap     = "Over Cap"
	StatusTaxpayer    = "Taxpayer"
	StatusFirstApron  = "First Apron"
	StatusSecondApron = "Second Apron"
)

// Constants are the league-year thresholds
type Constants struct {
	SalaryCap         int64
	LuxuryTax         int64
	FirstApron        int64
	SecondApron       int64
	MinimumTeamSalary int64
}

// TeamCapState is one team's position against every threshold. Room values
// are negative when the team is above the line.
type TeamCapState struct {
	TeamTricode     string
	Players         int
	Payroll         int64
	DeadMoney       int64
	CapSpace        int64
	TaxRoom         int64
	FirstApronRoom  int64
	SecondApronRoom int64
	BelowMinimum    bool
	Status          string
}

// Evaluate places a team payroll against c
func Evaluate(p models.TeamPayroll, c Constants) TeamCapState {
	state := TeamCapState{
		TeamTricode:     p.TeamTricode,
		Players:         p.Players,
		Payroll:         p.CapHit,
		DeadMoney:       p.DeadMoney,
		CapSpace:        c.SalaryCap - p.CapHit,
		TaxRoom:         c.LuxuryTax - p.CapHit,
		FirstApronRoom:  c.FirstApron - p.CapHit,
		SecondApronRoom: c.SecondApron - p.CapHit,
		BelowMinimum:    p.CapHit < c.MinimumTeamSalary,
	}

	switch {
	case p.CapHit > c.SecondApron:
		state.Status = StatusSecondApron
	case p.CapHit > c.FirstApron:
		state.Status = StatusFirstApron
	case p.CapHit > c.LuxuryTax:
		state.Status = StatusTaxpayer
	case p.CapHit > c.SalaryCap:
		state.Status = StatusOverCap
	default:
		state.Status = StatusUnderCap
	}

	return state
}
