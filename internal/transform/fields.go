package transform

import (
	"strconv"
	"strings"
)

// Kind selects the coercion applied to a source field
type Kind int

const (
	String Kind = iota
	Int
	Float
	Minutes
	Percent
	PIE
	Pace
)

// Field maps one upstream field to one warehouse column
type Field struct {
	Source string
	Column string
	Kind   Kind
}

// FieldMap is an ordered list of field mappings
type FieldMap []Field

// Columns returns the destination columns in map order
func (m FieldMap) Columns() []string {
	cols := make([]string, len(m))
	for i, f := range m {
		cols[i] = f.Column
	}
	return cols
}

// Apply converts an upstream row. Every mapped column is present in the
// result; missing or uncoercible values become nil.
func (m FieldMap) Apply(row map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for _, f := range m {
		out[f.Column] = Convert(f.Kind, lookup(row, f.Source))
	}
	return out
}

// Convert coerces v according to kind, returning nil when it cannot
func Convert(kind Kind, v any) any {
	switch kind {
	case String:
		if s, ok := ToString(v); ok {
			return s
		}
	case Int:
		if i, ok := ToInt(v); ok {
			return i
		}
	case Float:
		if f, ok := ToFloat(v); ok {
			return f
		}
	case Minutes:
		if f, ok := ParseMinutes(v); ok {
			return f
		}
	case Percent:
		if f, ok := ToFloat(v); ok {
			return ScalePercent(f)
		}
	case PIE:
		if f, ok := ToFloat(v); ok {
			return ScalePIE(f)
		}
	case Pace:
		if f, ok := ToFloat(v); ok {
			if p, ok := ClampPace(f); ok {
				return p
			}
		}
	}
	return nil
}

// lookup finds source in row, falling back to a case-insensitive match
func lookup(row map[string]any, source string) any {
	if v, ok := row[source]; ok {
		return v
	}
	for k, v := range row {
		if strings.EqualFold(k, source) {
			return v
		}
	}
	return nil
}

// Merge folds rows from several measure types into one record per key.
// Later non-nil values overwrite earlier ones; first-seen key order is kept.
func Merge(keyColumns []string, groups ...[]map[string]any) []map[string]any {
	index := make(map[string]int)
	var merged []map[string]any

	for _, rows := range groups {
		for _, row := range rows {
			key, ok := rowKey(row, keyColumns)
			if !ok {
				continue
			}

			i, seen := index[key]
			if !seen {
				index[key] = len(merged)
				record := make(map[string]any, len(row))
				for k, v := range row {
					record[k] = v
				}
				merged = append(merged, record)
				continue
			}

			for k, v := range row {
				if v != nil {
					merged[i][k] = v
				} else if _, exists := merged[i][k]; !exists {
					merged[i][k] = nil
				}
			}
		}
	}

	return merged
}

func rowKey(row map[string]any, keyColumns []string) (string, bool) {
	parts := make([]string, len(keyColumns))
	for i, col := range keyColumns {
		v, ok := row[col]
		if !ok || v == nil {
			return "", false
		}
		s, ok := keyString(v)
		if !ok {
			return "", false
		}
		parts[i] = s
	}
	return strings.Join(parts, "\x1f"), true
}

func keyString(v any) (string, bool) {
	if s, ok := ToString(v); ok {
		return s, true
	}
	if i, ok := ToInt(v); ok {
		return strconv.FormatInt(i, 10), true
	}
	return "", false
}
