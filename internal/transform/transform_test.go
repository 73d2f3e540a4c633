package transform

import (
	"encoding/json"
	"math"
	"testing"

	"nbacap/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
		ok   bool
	}{
		{"json int", json.Number("42"), 42, true},
		{"json integral float", json.Number("42.0"), 42, true},
		{"json fraction", json.Number("42.5"), 0, false},
		{"float64", 7.0, 7, true},
		{"string", " 12 ", 12, true},
		{"bad string", "abc", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToInt(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToFloat(t *testing.T) {
	f, ok := ToFloat(json.Number("0.512"))
	require.True(t, ok)
	assert.InDelta(t, 0.512, f, 1e-9)

	_, ok = ToFloat(math.NaN())
	assert.False(t, ok)

	_, ok = ToFloat([]any{})
	assert.False(t, ok)
}

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{"34:30", 34.5, true},
		{"240:00", 240, true},
		{"PT34M12.00S", 34.2, true},
		{"PT1H2M", 62, true},
		{"PT45S", 0.75, true},
		{"PT", 0, false},
		{"12:75", 0, false},
		{"-1:30", 0, false},
		{"-0:30", 0, false},
		{"1:-30", 0, false},
		{"", 0, false},
		{json.Number("31.5"), 31.5, true},
		{"18.25", 18.25, true},
		{nil, 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseMinutes(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, "%v", tt.in)
	}
}

func TestScaling(t *testing.T) {
	assert.Equal(t, 0.5, ScalePercent(50))
	assert.Equal(t, 0.5, ScalePercent(0.5))
	assert.Equal(t, 1.0, ScalePercent(1))

	assert.InDelta(t, 0.125, ScalePIE(1250), 1e-9)
	assert.InDelta(t, 0.125, ScalePIE(12.5), 1e-9)
	assert.InDelta(t, 0.125, ScalePIE(0.125), 1e-9)
	assert.InDelta(t, 1.0, ScalePIE(100), 1e-9)

	p, ok := ClampPace(99.8)
	assert.True(t, ok)
	assert.Equal(t, 99.8, p)
	_, ok = ClampPace(10000)
	assert.False(t, ok)
	_, ok = ClampPace(-12000)
	assert.False(t, ok)
}

func TestFieldMap_Apply(t *testing.T) {
	row := map[string]any{
		"gameId":               "0022400101",
		"teamId":               json.Number("1610612737"),
		"teamTricode":          "ATL",
		"minutes":              "240:00",
		"points":               json.Number("110"),
		"fieldGoalsPercentage": json.Number("47.8"),
		"PIE":                  json.Number("5120"),
		"pace":                 json.Number("12345"),
		"unmapped":             "x",
	}

	out := join(TeamGameBase, FieldMap{{"pie", "pie", PIE}, {"pace", "pace", Pace}}).Apply(row)

	assert.Equal(t, "0022400101", out["game_id"])
	assert.Equal(t, int64(1610612737), out["team_id"])
	assert.Equal(t, 240.0, out["minutes"])
	assert.Equal(t, int64(110), out["pts"])
	assert.InDelta(t, 0.478, out["fg_pct"], 1e-9)
	assert.InDelta(t, 0.512, out["pie"], 1e-9)
	assert.Nil(t, out["pace"])
	assert.Nil(t, out["reb"])
	assert.Contains(t, out, "reb")
	assert.NotContains(t, out, "unmapped")
}

func TestMerge(t *testing.T) {
	base := TeamGameBase.Apply(map[string]any{"gameId": "g1", "teamId": json.Number("1"), "points": json.Number("100")})
	base2 := TeamGameBase.Apply(map[string]any{"gameId": "g1", "teamId": json.Number("2"), "points": json.Number("90")})
	adv := TeamGameAdvanced.Apply(map[string]any{"gameId": "g1", "teamId": json.Number("1"), "offensiveRating": json.Number("112.5")})
	orphan := map[string]any{"game_id": nil, "team_id": int64(3)}

	merged := Merge([]string{"game_id", "team_id"}, []map[string]any{base, base2}, []map[string]any{adv, orphan})
	require.Len(t, merged, 2)

	assert.Equal(t, int64(1), merged[0]["team_id"])
	assert.Equal(t, int64(100), merged[0]["pts"])
	assert.Equal(t, 112.5, merged[0]["off_rating"])
	assert.Equal(t, int64(2), merged[1]["team_id"])
	assert.Nil(t, merged[1]["off_rating"])
}

func TestFieldMaps_TargetDeclaredColumns(t *testing.T) {
	cases := []struct {
		table models.StatTable
		maps  []FieldMap
	}{
		{models.TeamGameStatsTable, []FieldMap{TeamGameBase, TeamGameAdvanced}},
		{models.PlayerGameStatsTable, []FieldMap{PlayerGameBase, PlayerGameAdvanced}},
		{models.TeamSeasonStatsTable, []FieldMap{TeamSeasonBase, TeamSeasonAdvanced}},
	}

	for _, c := range cases {
		for _, m := range c.maps {
			for _, col := range m.Columns() {
				assert.True(t, c.table.HasColumn(col), "%s has no column %s", c.table.Name, col)
			}
		}
	}
}
