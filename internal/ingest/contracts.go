package ingest

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"nbacap/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// ContractSource is satisfied by *client.Contracts
type ContractSource interface {
	FetchContracts(ctx context.Context, season int) ([]models.ContractInput, error)
}

// ContractStore is satisfied by *repository.ContractRepository
type ContractStore interface {
	Upsert(ctx context.Context, c *models.Contract) error
}

// ContractPass loads the contract export for one season
type ContractPass struct {
	Source    ContractSource
	Contracts ContractStore
}

// Run ingests season. Rows missing a contract id or team are skipped with a warning.
func (p *ContractPass) Run(ctx context.Context, season int) (report *Report, err error) {
	start := time.Now()
	report = newReport("contracts", strconv.Itoa(season))
	defer func() { report.finish(start, err) }()

	rows, err := p.Source.FetchContracts(ctx, season)
	if err != nil {
		return report, err
	}
	report.IDs = len(rows)

	saved := 0
	for i := range rows {
		row := &rows[i]
		if row.ContractID == "" || row.TeamAbbreviation == "" {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("contract row %d (%s) has no contract id or team; skipping", i, row.PlayerName))
			continue
		}

		if err := p.Contracts.Upsert(ctx, row.ToContract()); err != nil {
			return report, err
		}
		saved++
	}
	report.Rows["contracts"] = int64(saved)

	log.Info().Int("season", season).Int("saved", saved).Msg("Contracts saved")
	return report, nil
}
