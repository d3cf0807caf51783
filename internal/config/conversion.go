// Package config defines conversion utilities for configuration objects.
package config

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/iwvelando/margin-pricing/pkg/margins"
	"github.com/mitchellh/mapstructure"
)

var marginRangeType = reflect.TypeOf(margins.MarginRange{})

// decodeHook extends viper's default hooks with margin range decoding, so
// bounds may be written as -.inf, "-inf", "Infinity" or left empty.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		marginRangeHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

func marginRangeHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != marginRangeType {
			return data, nil
		}
		fields, ok := toStringMap(data)
		if !ok {
			return data, nil
		}
		return ToMarginRange(fields)
	}
}

// ToMarginRange converts a decoded configuration map into a MarginRange.
// Keys are matched case-insensitively; a missing bound is unbounded.
func ToMarginRange(fields map[string]interface{}) (margins.MarginRange, error) {
	minMargin, err := margins.ParseBound(lookupFold(fields, "minMargin"), math.Inf(-1))
	if err != nil {
		return margins.MarginRange{}, fmt.Errorf("minMargin: %w", err)
	}
	maxMargin, err := margins.ParseBound(lookupFold(fields, "maxMargin"), math.Inf(1))
	if err != nil {
		return margins.MarginRange{}, fmt.Errorf("maxMargin: %w", err)
	}
	return margins.MarginRange{
		MinMargin: minMargin,
		MaxMargin: maxMargin,
		Label:     fmt.Sprint(valueOrEmpty(lookupFold(fields, "label"))),
		Color:     fmt.Sprint(valueOrEmpty(lookupFold(fields, "color"))),
	}, nil
}

// TenantTables converts every configured tenant into a validated table,
// keyed by lower-cased tenant id.
func (c *Configuration) TenantTables() (map[string]margins.Table, error) {
	tables := make(map[string]margins.Table, len(c.Tenants))
	for _, id := range c.TenantIDs() {
		table, err := margins.NewTable(c.Tenants[id].Ranges)
		if err != nil {
			return nil, fmt.Errorf("tenant %q: %w", id, err)
		}
		tables[strings.ToLower(id)] = table
	}
	return tables, nil
}

func toStringMap(data interface{}) (map[string]interface{}, bool) {
	switch m := data.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, true
	}
	return nil, false
}

func lookupFold(fields map[string]interface{}, key string) interface{} {
	if v, ok := fields[key]; ok {
		return v
	}
	for k, v := range fields {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}

func valueOrEmpty(v interface{}) interface{} {
	if v == nil {
		return ""
	}
	return v
}
