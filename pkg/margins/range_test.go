package margins

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMarginRangeJSONInfiniteBoundsAreNull(t *testing.T) {
	data, err := json.Marshal(DefaultMarginRanges()[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"minMargin":null,"maxMargin":0,"label":"loss","color":"#7f1d1d"}`, string(data))

	data, err = json.Marshal(DefaultMarginRanges()[4])
	require.NoError(t, err)
	assert.JSONEq(t, `{"minMargin":0.35,"maxMargin":null,"label":"premium","color":"#2563eb"}`, string(data))
}

func TestMarginRangeUnmarshalJSON(t *testing.T) {
	input := `[
		{"minMargin": null, "maxMargin": 0.2, "label": "thin"},
		{"minMargin": "0.2", "maxMargin": 0.4, "label": "healthy"},
		{"minMargin": 0.4, "maxMargin": "Infinity", "label": "premium"}
	]`

	var ranges []MarginRange
	require.NoError(t, json.Unmarshal([]byte(input), &ranges))
	require.Len(t, ranges, 3)
	assert.True(t, math.IsInf(ranges[0].MinMargin, -1))
	assert.Equal(t, 0.2, ranges[1].MinMargin)
	assert.True(t, math.IsInf(ranges[2].MaxMargin, 1))
	assert.NoError(t, Validate(ranges))
}

func TestMarginRangeUnmarshalJSONMissingBounds(t *testing.T) {
	var r MarginRange
	require.NoError(t, json.Unmarshal([]byte(`{"label":"all"}`), &r))
	assert.True(t, math.IsInf(r.MinMargin, -1))
	assert.True(t, math.IsInf(r.MaxMargin, 1))
}

func TestMarginRangeUnmarshalJSONRejectsGarbage(t *testing.T) {
	var r MarginRange
	err := json.Unmarshal([]byte(`{"minMargin":"lots","maxMargin":0.2}`), &r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minMargin")

	err = json.Unmarshal([]byte(`{"minMargin":0,"maxMargin":true}`), &r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maxMargin")
}

func TestMarginRangeRoundTripJSON(t *testing.T) {
	data, err := json.Marshal(DefaultMarginRanges())
	require.NoError(t, err)

	var decoded []MarginRange
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, DefaultMarginRanges(), decoded)
}

func TestMarginRangeUnmarshalYAML(t *testing.T) {
	input := `
- {minMargin: -.inf, maxMargin: 0, label: loss, color: "#000"}
- {minMargin: 0, maxMargin: 0.3, label: ok}
- {minMargin: 0.3, maxMargin: "+inf", label: great}
`
	var ranges []MarginRange
	require.NoError(t, yaml.Unmarshal([]byte(input), &ranges))
	require.Len(t, ranges, 3)
	assert.True(t, math.IsInf(ranges[0].MinMargin, -1))
	assert.Equal(t, "#000", ranges[0].Color)
	assert.Equal(t, 0.0, ranges[1].MinMargin)
	assert.True(t, math.IsInf(ranges[2].MaxMargin, 1))
	assert.NoError(t, Validate(ranges))
}

func TestParseBound(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  float64
	}{
		{"nil is unbounded", nil, math.Inf(1)},
		{"float", 0.25, 0.25},
		{"int", 0, 0},
		{"string number", "0.15", 0.15},
		{"string inf", "inf", math.Inf(1)},
		{"string negative infinity", "-Infinity", math.Inf(-1)},
		{"yaml style", "-.inf", math.Inf(-1)},
		{"json number", json.Number("0.35"), 0.35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBound(tt.value, math.Inf(1))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContainsAndIsTop(t *testing.T) {
	r := MarginRange{MinMargin: 0.25, MaxMargin: 0.35}
	assert.True(t, r.Contains(0.25))
	assert.False(t, r.Contains(0.35))
	assert.False(t, r.IsTop())
	assert.True(t, MarginRange{MinMargin: 0.35, MaxMargin: math.Inf(1)}.IsTop())
}
