// Package transform maps query tool rows into warehouse rows.
package transform

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ToInt coerces a decoded JSON value to an integer. Floats are accepted only
// when they are integral.
func ToInt(v any) (int64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return floatToInt(n)
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInt(f)
		}
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

// ToFloat coerces a decoded JSON value to a float
func ToFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, false
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ToString coerces a decoded JSON value to a non-empty string
func ToString(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", false
	case string:
		s = strings.TrimSpace(s)
		return s, s != ""
	case json.Number:
		return s.String(), true
	default:
		return "", false
	}
}

var isoDuration = regexp.MustCompile(`^PT(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?$`)

// ParseMinutes converts a playing-time value to decimal minutes. Accepted
// forms are "MM:SS", ISO-8601 durations such as "PT34M12.00S", and plain
// numbers already expressed in minutes.
func ParseMinutes(v any) (float64, bool) {
	s, ok := v.(string)
	if !ok {
		return ToFloat(v)
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if strings.HasPrefix(s, "PT") {
		m := isoDuration.FindStringSubmatch(s)
		if m == nil || s == "PT" {
			return 0, false
		}
		hours := parseOr0(m[1])
		minutes := parseOr0(m[2])
		seconds := parseOr0(m[3])
		return round2(hours*60 + minutes + seconds/60), true
	}

	if mins, secs, found := strings.Cut(s, ":"); found {
		// playing time is never negative; "-0:30" included
		if strings.HasPrefix(mins, "-") {
			return 0, false
		}
		m, err := strconv.ParseFloat(mins, 64)
		if err != nil {
			return 0, false
		}
		sec, err := strconv.ParseFloat(secs, 64)
		if err != nil || sec < 0 || sec >= 60 {
			return 0, false
		}
		return round2(m + sec/60), true
	}

	return ToFloat(s)
}

func parseOr0(s string) float64 {
	if s == "" {
		return 0
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
