package client

import (
	"context"
	"fmt"
	"strconv"

	"nbacap/ingestion/internal/models"
)

// ContractsExportPath is the contract-management export endpoint
const ContractsExportPath = "/export/contracts"

type contractsResponse struct {
	Season    int                    `json:"season"`
	Generated string                 `json:"generatedAt"`
	Contracts []models.ContractInput `json:"contracts"`
}

// Contracts wraps the contract-management export
type Contracts struct {
	client *Client
}

// NewContracts creates a contract export wrapper around c
func NewContracts(c *Client) *Contracts {
	return &Contracts{client: c}
}

// FetchContracts fetches every contract row for season
func (c *Contracts) FetchContracts(ctx context.Context, season int) ([]models.ContractInput, error) {
	var resp contractsResponse
	err := c.client.GetJSON(ctx, Request{
		Path:   ContractsExportPath,
		Params: map[string]string{"season": strconv.Itoa(season), "format": "json"},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contracts for season %d: %w", season, err)
	}

	for i := range resp.Contracts {
		if resp.Contracts[i].Season == 0 {
			resp.Contracts[i].Season = season
		}
	}

	return resp.Contracts, nil
}
