// Package margins holds the margin band table: validation, lookup of the band
// covering a margin, and conversion of band bounds into prices for a cost.
//
// A margin is (price - cost) / price. Bands are half-open [MinMargin,
// MaxMargin), so a margin sitting exactly on a boundary belongs to the higher
// band.
package margins

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MarginRange is one band of the classification table.
type MarginRange struct {
	MinMargin float64 `json:"minMargin" yaml:"minMargin" mapstructure:"minMargin"`
	MaxMargin float64 `json:"maxMargin" yaml:"maxMargin" mapstructure:"maxMargin"`
	Label     string  `json:"label" yaml:"label" mapstructure:"label"`
	Color     string  `json:"color" yaml:"color" mapstructure:"color"`
}

// Contains reports whether margin falls inside [MinMargin, MaxMargin).
func (r MarginRange) Contains(margin float64) bool {
	return r.MinMargin <= margin && margin < r.MaxMargin
}

// IsTop reports whether the range is open-ended above.
func (r MarginRange) IsTop() bool {
	return math.IsInf(r.MaxMargin, 1)
}

type rawRange struct {
	MinMargin interface{} `json:"minMargin" yaml:"minMargin"`
	MaxMargin interface{} `json:"maxMargin" yaml:"maxMargin"`
	Label     string      `json:"label" yaml:"label"`
	Color     string      `json:"color" yaml:"color"`
}

// MarshalJSON writes infinite bounds as null, since JSON has no infinity.
func (r MarginRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(rawRange{
		MinMargin: jsonBound(r.MinMargin),
		MaxMargin: jsonBound(r.MaxMargin),
		Label:     r.Label,
		Color:     r.Color,
	})
}

// UnmarshalJSON accepts numbers, null, or strings such as "-inf" and
// "Infinity" for each bound. A null or missing MinMargin is -Inf and a null
// or missing MaxMargin is +Inf.
func (r *MarginRange) UnmarshalJSON(data []byte) error {
	var raw rawRange
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return r.fromRaw(raw)
}

// UnmarshalYAML accepts the same bound forms as UnmarshalJSON plus YAML's
// native .inf and -.inf.
func (r *MarginRange) UnmarshalYAML(node *yaml.Node) error {
	var raw rawRange
	if err := node.Decode(&raw); err != nil {
		return err
	}
	return r.fromRaw(raw)
}

func (r *MarginRange) fromRaw(raw rawRange) error {
	minMargin, err := ParseBound(raw.MinMargin, math.Inf(-1))
	if err != nil {
		return fmt.Errorf("minMargin: %w", err)
	}
	maxMargin, err := ParseBound(raw.MaxMargin, math.Inf(1))
	if err != nil {
		return fmt.Errorf("maxMargin: %w", err)
	}
	*r = MarginRange{
		MinMargin: minMargin,
		MaxMargin: maxMargin,
		Label:     raw.Label,
		Color:     raw.Color,
	}
	return nil
}

// ParseBound converts a decoded bound value into a float. A nil value maps to
// unbounded.
func ParseBound(value interface{}, unbounded float64) (float64, error) {
	switch v := value.(type) {
	case nil:
		return unbounded, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case json.Number:
		return parseBoundString(v.String())
	case string:
		return parseBoundString(v)
	}
	return 0, fmt.Errorf("unsupported bound value %v (%T)", value, value)
}

func parseBoundString(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	switch strings.ToLower(trimmed) {
	case ".inf", "+.inf":
		return math.Inf(1), nil
	case "-.inf":
		return math.Inf(-1), nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid bound %q", s)
	}
	return f, nil
}

func jsonBound(v float64) interface{} {
	if math.IsInf(v, 0) {
		return nil
	}
	return v
}
