package capsheet

import (
	"context"
	"fmt"
	"time"

	"nbacap/ingestion/internal/models"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// Sheet names
const (
	SummarySheet   = "Summary"
	ContractsSheet = "Contracts"
	ConstantsSheet = "Constants"
)

const moneyFormat = `"$"#,##0;[Red]-"$"#,##0`

// Source is satisfied by *repository.ContractRepository
type Source interface {
	TeamPayrolls(ctx context.Context, season int) ([]models.TeamPayroll, error)
	ListBySeason(ctx context.Context, season int) ([]*models.Contract, error)
}

// Builder renders the cap workbook for a season
type Builder struct {
	Source    Source
	Constants Constants
	Now       func() time.Time
}

// Build assembles the workbook in memory. The caller owns the returned file.
func (b *Builder) Build(ctx context.Context, season int) (*excelize.File, []TeamCapState, error) {
	payrolls, err := b.Source.TeamPayrolls(ctx, season)
	if err != nil {
		return nil, nil, err
	}
	contracts, err := b.Source.ListBySeason(ctx, season)
	if err != nil {
		return nil, nil, err
	}

	states := make([]TeamCapState, len(payrolls))
	for i, p := range payrolls {
		states[i] = Evaluate(p, b.Constants)
	}

	f := excelize.NewFile()
	if err := b.render(f, season, states, contracts); err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	return f, states, nil
}

// Write builds the workbook and saves it to path
func (b *Builder) Write(ctx context.Context, season int, path string) ([]TeamCapState, error) {
	f, states, err := b.Build(ctx, season)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("failed to save workbook %s: %w", path, err)
	}

	log.Info().
		Str("path", path).
		Int("season", season).
		Int("teams", len(states)).
		Msg("Cap workbook written")

	return states, nil
}

func (b *Builder) render(f *excelize.File, season int, states []TeamCapState, contracts []*models.Contract) error {
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(ContractsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(ConstantsSheet); err != nil {
		return err
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return err
	}
	money := moneyFormat
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &money})
	if err != nil {
		return err
	}

	if err := b.renderSummary(f, season, states, header, moneyStyle); err != nil {
		return err
	}
	if err := renderContracts(f, contracts, header, moneyStyle); err != nil {
		return err
	}
	return b.renderConstants(f, season, header, moneyStyle)
}

func (b *Builder) renderSummary(f *excelize.File, season int, states []TeamCapState, header, moneyStyle int) error {
	headers := []interface{}{
		"Team", "Players", "Payroll", "Dead Money", "Cap Space",
		"Tax Room", "First Apron Room", "Second Apron Room", "Below Minimum", "Status",
	}
	if err := writeHeader(f, SummarySheet, headers, header); err != nil {
		return err
	}

	var league int64
	for i, s := range states {
		row := []interface{}{
			s.TeamTricode, s.Players, s.Payroll, s.DeadMoney, s.CapSpace,
			s.TaxRoom, s.FirstApronRoom, s.SecondApronRoom, s.BelowMinimum, s.Status,
		}
		if err := setRow(f, SummarySheet, i+2, row); err != nil {
			return err
		}
		league += s.Payroll
	}

	last := len(states) + 1
	if len(states) > 0 {
		if err := f.SetCellStyle(SummarySheet, "C2", fmt.Sprintf("H%d", last), moneyStyle); err != nil {
			return err
		}
	}

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	note := fmt.Sprintf("%s season, %d teams, league payroll $%s. Generated %s.",
		models.SeasonLabel(season), len(states), humanize.Comma(league), now().UTC().Format("2006-01-02 15:04 MST"))
	if err := f.SetCellValue(SummarySheet, fmt.Sprintf("A%d", last+2), note); err != nil {
		return err
	}

	return f.SetColWidth(SummarySheet, "A", "J", 16)
}

func renderContracts(f *excelize.File, contracts []*models.Contract, header, moneyStyle int) error {
	headers := []interface{}{
		"Team", "Player", "Person ID", "Salary", "Cap Hit", "Guaranteed",
		"Option", "Signing", "Dead Money", "Two-Way",
	}
	if err := writeHeader(f, ContractsSheet, headers, header); err != nil {
		return err
	}

	for i, c := range contracts {
		var personID interface{}
		if c.PersonID.Valid {
			personID = c.PersonID.Int32
		}
		row := []interface{}{
			c.TeamTricode, c.PlayerName, personID, c.Salary, c.CapHit, c.Guaranteed,
			c.OptionType.String, c.SigningType.String, c.DeadMoney, c.TwoWay,
		}
		if err := setRow(f, ContractsSheet, i+2, row); err != nil {
			return err
		}
	}

	if len(contracts) > 0 {
		if err := f.SetCellStyle(ContractsSheet, "D2", fmt.Sprintf("F%d", len(contracts)+1), moneyStyle); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(ContractsSheet, "A", "J", 14); err != nil {
		return err
	}
	return f.SetColWidth(ContractsSheet, "B", "B", 28)
}

func (b *Builder) renderConstants(f *excelize.File, season int, header, moneyStyle int) error {
	if err := writeHeader(f, ConstantsSheet, []interface{}{"Threshold", "Amount"}, header); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Season", models.SeasonLabel(season)},
		{"Salary Cap", b.Constants.SalaryCap},
		{"Luxury Tax", b.Constants.LuxuryTax},
		{"First Apron", b.Constants.FirstApron},
		{"Second Apron", b.Constants.SecondApron},
		{"Minimum Team Salary", b.Constants.MinimumTeamSalary},
	}
	for i, row := range rows {
		if err := setRow(f, ConstantsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SetCellStyle(ConstantsSheet, "B3", fmt.Sprintf("B%d", len(rows)+1), moneyStyle); err != nil {
		return err
	}
	return f.SetColWidth(ConstantsSheet, "A", "B", 22)
}

func writeHeader(f *excelize.File, sheet string, headers []interface{}, style int) error {
	if err := setRow(f, sheet, 1, headers); err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", end, style)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
