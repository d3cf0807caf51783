// Package engine dispatches pricing requests to the margin engine: it
// resolves which margin table applies and runs the requested operation.
package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/margin-pricing/internal/config"
	"github.com/iwvelando/margin-pricing/pkg/classify"
	"github.com/iwvelando/margin-pricing/pkg/constants"
	"github.com/iwvelando/margin-pricing/pkg/discount"
	"github.com/iwvelando/margin-pricing/pkg/margins"
	"github.com/iwvelando/margin-pricing/pkg/pricing"
	"github.com/iwvelando/margin-pricing/pkg/validation"
	"go.uber.org/zap"
)

// Table sources reported in a Response.
const (
	TableSourceInline  = "inline"
	TableSourceTenant  = "tenant"
	TableSourceDefault = "default"
)

// ErrUnknownTenant is returned when a request names a tenant without a
// configured table.
var ErrUnknownTenant = errors.New("unknown tenant")

// Request carries one operation and the numeric inputs it needs. Ranges, when
// present, override the tenant's table; when both are absent the default
// table applies.
type Request struct {
	Operation       string                `json:"operation" yaml:"operation"`
	Tenant          string                `json:"tenant,omitempty" yaml:"tenant,omitempty"`
	Cost            float64               `json:"cost" yaml:"cost"`
	Price           float64               `json:"price,omitempty" yaml:"price,omitempty"`
	TargetMargin    *float64              `json:"targetMargin,omitempty" yaml:"targetMargin,omitempty"`
	DiscountPercent float64               `json:"discountPercent,omitempty" yaml:"discountPercent,omitempty"`
	MonthlySales    float64               `json:"monthlySales,omitempty" yaml:"monthlySales,omitempty"`
	Ranges          []margins.MarginRange `json:"ranges,omitempty" yaml:"ranges,omitempty"`
}

// Response holds the result of exactly one operation.
type Response struct {
	Operation      string               `json:"operation"`
	Tenant         string               `json:"tenant,omitempty"`
	TableSource    string               `json:"tableSource"`
	TableVersion   string               `json:"tableVersion,omitempty"`
	Pricing        *pricing.FullPricing `json:"pricing,omitempty"`
	Classification *classify.Result     `json:"classification,omitempty"`
	Discount       *discount.Result     `json:"discount,omitempty"`
}

// Tenant describes one configured tenant table.
type Tenant struct {
	ID     string                `json:"id"`
	Name   string                `json:"name,omitempty"`
	Ranges []margins.MarginRange `json:"ranges"`
}

// Engine runs requests against the configured defaults and tenant tables. It
// holds no mutable state and is safe for concurrent use.
type Engine struct {
	logger              *zap.Logger
	defaultTargetMargin float64
	tenants             map[string]margins.Table
	tenantNames         map[string]string
}

// New builds an Engine from conf. A nil conf uses config.Default().
func New(logger *zap.Logger, conf *config.Configuration) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if conf == nil {
		conf = config.Default()
	}

	if err := validation.ValidateTargetMargin(conf.Pricing.DefaultTargetMargin); err != nil {
		return nil, fmt.Errorf("default target margin: %w", err)
	}
	tenants, err := conf.TenantTables()
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(conf.Tenants))
	for id, tenant := range conf.Tenants {
		names[normalizeTenant(id)] = tenant.Name
	}

	logger.Debug("engine initialized",
		zap.String("op", "engine.New"),
		zap.Float64("defaultTargetMargin", conf.Pricing.DefaultTargetMargin),
		zap.Int("tenants", len(tenants)),
	)

	return &Engine{
		logger:              logger,
		defaultTargetMargin: conf.Pricing.DefaultTargetMargin,
		tenants:             tenants,
		tenantNames:         names,
	}, nil
}

// DefaultTargetMargin returns the margin used by price requests that omit one.
func (e *Engine) DefaultTargetMargin() float64 {
	return e.defaultTargetMargin
}

// HasTenant reports whether a tenant table is configured for id.
func (e *Engine) HasTenant(id string) bool {
	_, ok := e.tenants[normalizeTenant(id)]
	return ok
}

// Tenants returns the configured tenants sorted by id.
func (e *Engine) Tenants() []Tenant {
	out := make([]Tenant, 0, len(e.tenants))
	for id, table := range e.tenants {
		out = append(out, Tenant{ID: id, Name: e.tenantNames[id], Ranges: table.Ranges()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ResolveTable picks the table for req: inline ranges, then the tenant's
// table, then the default. It returns the table and its source.
func (e *Engine) ResolveTable(req Request) (margins.Table, string, error) {
	if len(req.Ranges) > 0 {
		table, err := margins.NewTable(req.Ranges)
		if err != nil {
			return margins.Table{}, "", err
		}
		return table, TableSourceInline, nil
	}

	if tenant := normalizeTenant(req.Tenant); tenant != "" {
		table, ok := e.tenants[tenant]
		if !ok {
			return margins.Table{}, "", fmt.Errorf("%w: %q", ErrUnknownTenant, req.Tenant)
		}
		return table, TableSourceTenant, nil
	}

	return margins.DefaultTable, TableSourceDefault, nil
}

// Run executes req and returns its result. Validation failures are returned
// as errors; loss-making prices and unreachable breakeven are not errors.
func (e *Engine) Run(req Request) (*Response, error) {
	op := "engine.Run"
	if err := validation.ValidateOperation(req.Operation); err != nil {
		return nil, err
	}

	table, source, err := e.ResolveTable(req)
	if err != nil {
		e.logger.Debug("failed to resolve margin table",
			zap.String("op", op),
			zap.String("tenant", req.Tenant),
			zap.Error(err),
		)
		return nil, err
	}

	resp := &Response{
		Operation:   req.Operation,
		Tenant:      normalizeTenant(req.Tenant),
		TableSource: source,
	}
	if source == TableSourceDefault {
		resp.TableVersion = margins.DefaultRangesVersion
	}

	switch req.Operation {
	case constants.OperationPrice:
		targetMargin := e.defaultTargetMargin
		if req.TargetMargin != nil {
			targetMargin = *req.TargetMargin
		}
		resp.Pricing, err = pricing.CalculateFullPricing(req.Cost, targetMargin, table)
	case constants.OperationClassify:
		resp.Classification, err = classify.Classify(req.Price, req.Cost, table)
	case constants.OperationSimulateDiscount:
		resp.Discount, err = discount.SimulateDiscount(req.Price, req.Cost, req.DiscountPercent, req.MonthlySales, table)
	}
	if err != nil {
		e.logger.Debug("operation rejected",
			zap.String("op", op),
			zap.String("operation", req.Operation),
			zap.Error(err),
		)
		return nil, err
	}

	e.logger.Debug("operation completed",
		zap.String("op", op),
		zap.String("operation", req.Operation),
		zap.String("tableSource", source),
		zap.String("tenant", resp.Tenant),
	)
	return resp, nil
}

// IsClientError reports whether err was caused by the request rather than the
// engine: invalid inputs, a malformed table or an unknown tenant.
func IsClientError(err error) bool {
	var tableErr *margins.TableError
	return validation.IsInputError(err) || errors.As(err, &tableErr) || errors.Is(err, ErrUnknownTenant)
}

func normalizeTenant(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
