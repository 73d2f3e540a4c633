// Package querytool fetches bulk statistics from the stats API's query
// tool endpoints. Each call carries a comma-joined batch of identifiers and
// the server caps the rows it will return, so batches that fail or look
// truncated are bisected and resubmitted until they fit.
package querytool

import (
	"container/list"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"nbacap/ingestion/internal/client"
	"nbacap/ingestion/internal/clock"
	"nbacap/ingestion/internal/metrics"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultSingleBatchMaxAttempts caps calls for one unsplittable batch
	DefaultSingleBatchMaxAttempts = 4

	// DefaultRequestRetries is the adapter's own attempt budget per call.
	// Recovery is driven by the executor, so the adapter gets one shot.
	DefaultRequestRetries = 1

	// MaxRowsParam is the query parameter carrying the server row cap
	MaxRowsParam = "MaxRowsReturned"

	maxBackoffSeconds = 5
)

// Row is one row object from a query tool response
type Row = map[string]any

// Fetcher issues a single upstream call. *client.Client satisfies it.
type Fetcher interface {
	Request(ctx context.Context, req client.Request) (client.Payload, error)
}

// Query describes one batched fetch
type Query struct {
	// Path is the upstream path, also used in warnings
	Path string

	IDs        []string
	BaseParams map[string]string

	// BatchParam names the query parameter carrying the joined batch (e.g. GameId)
	BatchParam string

	// RowKey is the response field holding the row array
	RowKey string

	BatchSize       int
	MaxRowsReturned int

	// TruncationThreshold is the row count at or above which a response is
	// treated as possibly truncated. Zero falls back to MaxRowsReturned.
	TruncationThreshold int

	SingleBatchMaxAttempts int

	// RequestRetries is handed to the adapter per call; zero means DefaultRequestRetries
	RequestRetries int
}

// Result is the accumulator and warning log of one fetch
type Result struct {
	Rows     []Row
	Warnings []string

	Calls    int
	Splits   int
	Requeues int
}

// Executor drives batches through split, backoff and accept decisions
type Executor struct {
	fetcher Fetcher
	sleeper clock.Sleeper
}

// NewExecutor creates an executor. A nil sleeper sleeps on the wall clock.
func NewExecutor(fetcher Fetcher, sleeper clock.Sleeper) *Executor {
	if sleeper == nil {
		sleeper = clock.Real{}
	}
	return &Executor{fetcher: fetcher, sleeper: sleeper}
}

type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeSplittable
	outcomeFatal
)

// outcome is the classified result of one call
type outcome struct {
	kind    outcomeKind
	payload client.Payload
	reason  string // splittable only: text used in the skip warning
	label   string // splittable only: metric label
	err     error
}

// splittableStatuses signal an oversized batch or an overloaded upstream
var splittableStatuses = map[int]bool{
	http.StatusRequestURITooLong:   true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// IsSplittableStatus reports whether status triggers bisection
func IsSplittableStatus(status int) bool {
	return splittableStatuses[status]
}

func classify(payload client.Payload, err error) outcome {
	if err == nil {
		return outcome{kind: outcomeSuccess, payload: payload}
	}

	var transportErr *client.TransportError
	if errors.As(err, &transportErr) {
		detail := err.Error()
		if transportErr.Err != nil {
			detail = transportErr.Err.Error()
		}
		return outcome{
			kind:   outcomeSplittable,
			reason: fmt.Sprintf("transport error (%s)", detail),
			label:  "transport",
			err:    err,
		}
	}

	if status, ok := client.StatusCode(err); ok && IsSplittableStatus(status) {
		return outcome{
			kind:   outcomeSplittable,
			reason: fmt.Sprintf("failed with HTTP %d", status),
			label:  strconv.Itoa(status),
			err:    err,
		}
	}

	return outcome{kind: outcomeFatal, err: err}
}

// FetchBatchedRows fetches rows for every identifier in q.IDs. Splittable
// failures and suspected truncation bisect a batch; a single-identifier
// batch that keeps failing is retried after a pause and eventually skipped
// with a warning. Any other upstream failure aborts the whole fetch and no
// partial result is returned.
func (e *Executor) FetchBatchedRows(ctx context.Context, q Query) (*Result, error) {
	result := &Result{Rows: []Row{}, Warnings: []string{}}
	if len(q.IDs) == 0 {
		return result, nil
	}

	maxAttempts := q.SingleBatchMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultSingleBatchMaxAttempts
	}
	retries := q.RequestRetries
	if retries <= 0 {
		retries = DefaultRequestRetries
	}

	threshold := q.TruncationThreshold
	if threshold <= 0 {
		threshold = q.MaxRowsReturned
	}

	pending := list.New()
	for _, ids := range Chunk(q.IDs, q.BatchSize) {
		pending.PushBack(newBatch(ids))
	}

	// only single-identifier batches are ever counted here
	attempts := make(map[string]int)

	log.Debug().
		Str("path", q.Path).
		Str("batch_param", q.BatchParam).
		Int("ids", len(q.IDs)).
		Int("batches", pending.Len()).
		Msg("Starting batched fetch")

	for pending.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch := pending.Remove(pending.Front()).(Batch)
		if batch.Len() == 0 {
			continue
		}

		payload, err := e.fetcher.Request(ctx, client.Request{
			Path:    q.Path,
			Params:  q.batchParams(batch),
			Retries: retries,
		})
		result.Calls++

		out := classify(payload, err)
		if out.kind != outcomeSuccess && ctx.Err() != nil {
			return nil, ctx.Err()
		}

		switch out.kind {
		case outcomeFatal:
			metrics.RecordBatchCall(q.Path, "fatal")
			return nil, fmt.Errorf("%s: %w", batch.describe(q.Path, q.BatchParam), out.err)

		case outcomeSplittable:
			metrics.RecordBatchCall(q.Path, out.label)

			if batch.Len() > 1 {
				e.split(pending, batch, q, out.label, result)
				continue
			}

			n := attempts[batch.Key()] + 1
			attempts[batch.Key()] = n

			if n < maxAttempts {
				backoff := time.Duration(minInt(maxBackoffSeconds, n)) * time.Second
				log.Warn().
					Err(out.err).
					Str("path", q.Path).
					Str(q.BatchParam, batch.Key()).
					Int("attempt", n).
					Dur("backoff", backoff).
					Msg("Single-id batch failed, requeueing after backoff")

				if err := e.sleeper.Sleep(ctx, backoff); err != nil {
					return nil, err
				}
				pending.PushBack(batch)
				result.Requeues++
				metrics.RecordBatchRequeue(q.Path)
				continue
			}

			warning := fmt.Sprintf("%s %s after %d attempts; skipping",
				batch.describe(q.Path, q.BatchParam), out.reason, n)
			e.warn(result, q, batch, "skipped", warning)

		case outcomeSuccess:
			rows, rawCount := extractRows(out.payload, q.RowKey)
			rowsReturned, haveRowsReturned := extractRowsReturned(out.payload)

			suspicious := threshold > 0 && (rawCount >= threshold ||
				(haveRowsReturned && rowsReturned >= int64(threshold)))

			if suspicious && batch.Len() > 1 {
				metrics.RecordBatchCall(q.Path, "truncated")
				e.split(pending, batch, q, "truncated", result)
				continue
			}

			if suspicious {
				returned := "unknown"
				if haveRowsReturned {
					returned = strconv.FormatInt(rowsReturned, 10)
				}
				warning := fmt.Sprintf("%s may be truncated (rows=%d, rowsReturned=%s)",
					batch.describe(q.Path, q.BatchParam), rawCount, returned)
				e.warn(result, q, batch, "truncated", warning)
			} else {
				metrics.RecordBatchCall(q.Path, "accepted")
			}

			result.Rows = append(result.Rows, rows...)
			metrics.RecordBatchRows(q.Path, len(rows))
		}
	}

	log.Info().
		Str("path", q.Path).
		Int("ids", len(q.IDs)).
		Int("rows", len(result.Rows)).
		Int("calls", result.Calls).
		Int("splits", result.Splits).
		Int("requeues", result.Requeues).
		Int("warnings", len(result.Warnings)).
		Msg("Batched fetch complete")

	return result, nil
}

// split replaces batch with its halves at the front of the queue, left first
func (e *Executor) split(pending *list.List, batch Batch, q Query, reason string, result *Result) {
	left, right := batch.Split()
	pending.PushFront(right)
	pending.PushFront(left)
	result.Splits++
	metrics.RecordBatchSplit(q.Path, reason)

	log.Debug().
		Str("path", q.Path).
		Str("reason", reason).
		Int("size", batch.Len()).
		Int("left", left.Len()).
		Int("right", right.Len()).
		Msg("Splitting batch")
}

func (e *Executor) warn(result *Result, q Query, batch Batch, kind, warning string) {
	result.Warnings = append(result.Warnings, warning)
	metrics.RecordBatchWarning(q.Path, kind)
	log.Warn().
		Str("path", q.Path).
		Str("batch_param", q.BatchParam).
		Str("first", batch.ids[0]).
		Str("last", batch.ids[len(batch.ids)-1]).
		Msg(warning)
}

// batchParams builds the per-call parameter set
func (q Query) batchParams(batch Batch) map[string]string {
	params := make(map[string]string, len(q.BaseParams)+2)
	for k, v := range q.BaseParams {
		params[k] = v
	}
	params[q.BatchParam] = batch.Key()
	if q.MaxRowsReturned > 0 {
		params[MaxRowsParam] = strconv.Itoa(q.MaxRowsReturned)
	}
	return params
}

// extractRows returns the row objects under key and the raw element count.
// A missing or null key yields no rows.
func extractRows(payload client.Payload, key string) ([]Row, int) {
	raw, ok := payload[key]
	if !ok || raw == nil {
		return nil, 0
	}

	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []map[string]any:
		rows := make([]Row, len(v))
		copy(rows, v)
		return rows, len(v)
	default:
		log.Warn().Str("row_key", key).Msgf("Unexpected row container %T, treating as empty", raw)
		return nil, 0
	}

	rows := make([]Row, 0, len(items))
	for _, item := range items {
		if row, ok := item.(map[string]any); ok {
			rows = append(rows, row)
		}
	}
	return rows, len(items)
}

// extractRowsReturned reads meta.rowsReturned when it is an integer
func extractRowsReturned(payload client.Payload) (int64, bool) {
	meta, ok := payload["meta"].(map[string]any)
	if !ok {
		return 0, false
	}
	return asInt(meta["rowsReturned"])
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n), true
		}
	}
	return 0, false
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
