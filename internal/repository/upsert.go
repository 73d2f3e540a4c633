package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nbacap/ingestion/internal/metrics"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// maxParams is the PostgreSQL bind parameter limit per statement
const maxParams = 65535

// UpsertRows writes rows into table. Each row is a column->value map; columns
// absent from a row are written as NULL on insert. On conflict with
// conflictKeys, non-key columns take the incoming value unless it is NULL,
// so a partial refresh never blanks a column that was already populated.
// Rows sharing a conflict key collapse to the last one. It returns the
// number of rows written.
func (db *Database) UpsertRows(ctx context.Context, table string, columns []string, rows []map[string]any, conflictKeys []string) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("upsert into %s: no columns", table)
	}
	if len(conflictKeys) == 0 {
		return 0, fmt.Errorf("upsert into %s: no conflict keys", table)
	}
	for _, key := range conflictKeys {
		if !contains(columns, key) {
			return 0, fmt.Errorf("upsert into %s: conflict key %s is not a column", table, key)
		}
	}

	rows = dedupeByKey(rows, conflictKeys)

	start := time.Now()
	chunkSize := maxParams / len(columns)

	var written int64
	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		for offset := 0; offset < len(rows); offset += chunkSize {
			end := offset + chunkSize
			if end > len(rows) {
				end = len(rows)
			}

			query, args := buildUpsert(table, columns, rows[offset:end], conflictKeys)
			tag, err := tx.Exec(ctx, query, args...)
			if err != nil {
				return err
			}
			written += tag.RowsAffected()
		}
		return nil
	})
	if err != nil {
		metrics.RecordError("repository", "upsert")
		return 0, fmt.Errorf("failed to upsert into %s: %w", table, err)
	}

	metrics.RecordUpsert(table, written, time.Since(start).Seconds())
	log.Debug().
		Str("table", table).
		Int("rows", len(rows)).
		Int64("written", written).
		Msg("Rows upserted")

	return written, nil
}

// buildUpsert renders one multi-row INSERT ... ON CONFLICT statement
func buildUpsert(table string, columns []string, rows []map[string]any, conflictKeys []string) (string, []any) {
	quotedTable := pgx.Identifier{table}.Sanitize()
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", quotedTable, strings.Join(quoted, ", "))

	args := make([]any, 0, len(rows)*len(columns))
	for r, row := range rows {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c, col := range columns {
			if c > 0 {
				b.WriteString(", ")
			}
			args = append(args, row[col])
			fmt.Fprintf(&b, "$%d", len(args))
		}
		b.WriteByte(')')
	}

	keys := make([]string, len(conflictKeys))
	for i, k := range conflictKeys {
		keys[i] = pgx.Identifier{k}.Sanitize()
	}
	fmt.Fprintf(&b, " ON CONFLICT (%s) DO UPDATE SET ", strings.Join(keys, ", "))

	var sets []string
	for i, col := range columns {
		if contains(conflictKeys, col) {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = COALESCE(EXCLUDED.%s, %s.%s)", quoted[i], quoted[i], quotedTable, quoted[i]))
	}
	sets = append(sets, "updated_at = NOW()")
	b.WriteString(strings.Join(sets, ", "))

	return b.String(), args
}

func dedupeByKey(rows []map[string]any, keys []string) []map[string]any {
	index := make(map[string]int, len(rows))
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprint(row[k])
		}
		key := strings.Join(parts, "\x1f")
		if i, ok := index[key]; ok {
			out[i] = row
			continue
		}
		index[key] = len(out)
		out = append(out, row)
	}
	return out
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
