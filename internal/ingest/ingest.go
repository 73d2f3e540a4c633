// Package ingest runs one logical ingest pass at a time: it resolves the
// identifiers for a slice (a date, a season), fetches their rows through
// the query tool executor, maps them into warehouse rows and upserts them.
package ingest

import (
	"context"
	"errors"
	"time"

	"nbacap/ingestion/internal/metrics"
	"nbacap/ingestion/internal/models"
	"nbacap/ingestion/internal/querytool"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

// ErrNoGames is returned when a date has no games on the scoreboard
var ErrNoGames = errors.New("no games scheduled")

// Measure types and per-modes understood by the query tool
const (
	MeasureBase     = "Base"
	MeasureAdvanced = "Advanced"

	PerModeTotals  = "Totals"
	PerModePerGame = "PerGame"

	SeasonTypeRegular  = "Regular Season"
	SeasonTypePlayoffs = "Playoffs"
)

// Measure is one (measure type, per-mode) combination
type Measure struct {
	MeasureType string
	PerMode     string
}

// RowFetcher is satisfied by *querytool.Executor
type RowFetcher interface {
	FetchBatchedRows(ctx context.Context, q querytool.Query) (*querytool.Result, error)
}

// StatStore is satisfied by *repository.StatsRepository
type StatStore interface {
	Upsert(ctx context.Context, table models.StatTable, rows []map[string]any) (int64, error)
}

// Settings carries the query tool knobs shared by every pass
type Settings struct {
	LeagueID               string
	BatchSize              int
	MaxRowsReturned        int
	TruncationThreshold    int
	SingleBatchMaxAttempts int
}

func (s Settings) query(path string, ids []string, batchParam, rowKey string, params map[string]string) querytool.Query {
	return querytool.Query{
		Path:                   path,
		IDs:                    ids,
		BaseParams:             params,
		BatchParam:             batchParam,
		RowKey:                 rowKey,
		BatchSize:              s.BatchSize,
		MaxRowsReturned:        s.MaxRowsReturned,
		TruncationThreshold:    s.TruncationThreshold,
		SingleBatchMaxAttempts: s.SingleBatchMaxAttempts,
	}
}

// Report summarises one pass
type Report struct {
	Pass     string
	Slice    string
	IDs      int
	Calls    int
	Rows     map[string]int64
	Warnings []string
	Duration time.Duration
}

func newReport(pass, slice string) *Report {
	return &Report{Pass: pass, Slice: slice, Rows: make(map[string]int64), Warnings: []string{}}
}

func (r *Report) absorb(result *querytool.Result) {
	r.Calls += result.Calls
	r.Warnings = append(r.Warnings, result.Warnings...)
}

// TotalRows returns the number of rows written across all tables
func (r *Report) TotalRows() int64 {
	var total int64
	for _, n := range r.Rows {
		total += n
	}
	return total
}

// finish records metrics and the summary log line for a pass
func (r *Report) finish(start time.Time, err error) {
	r.Duration = time.Since(start)

	status := "success"
	switch {
	case errors.Is(err, ErrNoGames):
		status = "empty"
	case err != nil:
		status = "error"
		metrics.RecordError("ingest", r.Pass)
	case len(r.Warnings) > 0:
		status = "partial"
	}
	metrics.RecordPass(r.Pass, status, r.Duration.Seconds())

	event := log.Info()
	if err != nil && status == "error" {
		event = log.Error().Err(err)
	}
	event.
		Str("pass", r.Pass).
		Str("slice", r.Slice).
		Int("ids", r.IDs).
		Int("calls", r.Calls).
		Str("rows", humanize.Comma(r.TotalRows())).
		Int("warnings", len(r.Warnings)).
		Dur("duration", r.Duration).
		Str("status", status).
		Msg("Ingest pass finished")
}

// fetchMapped runs one query per measure and maps each accumulator with its field map
func fetchMapped(ctx context.Context, fetcher RowFetcher, report *Report, queries []querytool.Query, maps []mapper) ([][]map[string]any, error) {
	groups := make([][]map[string]any, 0, len(queries))
	for i, q := range queries {
		result, err := fetcher.FetchBatchedRows(ctx, q)
		if err != nil {
			return nil, err
		}
		report.absorb(result)

		mapped := make([]map[string]any, 0, len(result.Rows))
		for _, row := range result.Rows {
			mapped = append(mapped, maps[i](row))
		}
		groups = append(groups, mapped)
	}
	return groups, nil
}

type mapper func(row map[string]any) map[string]any
