// Package output provides utilities for formatting and displaying pricing results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/margin-pricing/internal/engine"
	"github.com/iwvelando/margin-pricing/pkg/classify"
	"github.com/iwvelando/margin-pricing/pkg/constants"
	"github.com/iwvelando/margin-pricing/pkg/discount"
	"github.com/iwvelando/margin-pricing/pkg/format"
	"github.com/iwvelando/margin-pricing/pkg/margins"
	"github.com/iwvelando/margin-pricing/pkg/mathutil"
	"github.com/iwvelando/margin-pricing/pkg/pricing"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Write renders resp to w in the named output format.
func Write(w io.Writer, outputFormat string, resp *engine.Response) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return Pretty(w, resp)
	case constants.OutputFormatCSV:
		return CSV(w, resp)
	case constants.OutputFormatJSON:
		return JSON(w, resp)
	}
	return fmt.Errorf("invalid output format: %s", outputFormat)
}

// Pretty outputs a human-readable rather than machine-readable report.
func Pretty(w io.Writer, resp *engine.Response) error {
	p := message.NewPrinter(language.English)
	_, _ = fmt.Fprintf(w, "--- %s (table: %s) ---\n", resp.Operation, tableName(resp))

	switch {
	case resp.Pricing != nil:
		prettyPricing(w, resp.Pricing)
	case resp.Classification != nil:
		prettyClassification(w, resp.Classification)
	case resp.Discount != nil:
		prettyDiscount(w, p, resp.Discount)
	default:
		return fmt.Errorf("response for %q has no result", resp.Operation)
	}
	return nil
}

func tableName(resp *engine.Response) string {
	switch resp.TableSource {
	case engine.TableSourceDefault:
		return "default " + resp.TableVersion
	case engine.TableSourceTenant:
		return "tenant " + resp.Tenant
	}
	return resp.TableSource
}

func prettyPricing(w io.Writer, fp *pricing.FullPricing) {
	_, _ = fmt.Fprintf(w, "Cost              | %s\n", format.Currency(fp.Cost))
	_, _ = fmt.Fprintf(w, "Target margin     | %s\n", format.Percent(fp.TargetMargin))
	_, _ = fmt.Fprintf(w, "Recommended price | %s\n", format.Currency(fp.RecommendedPrice))
	_, _ = fmt.Fprintf(w, "Markup on cost    | %s\n", format.Percent(fp.MarkupOnCost))
	_, _ = fmt.Fprintf(w, "Category          | %s (%s)\n", fp.Category, fp.Color)
	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "Band | Margins | Min price | Max price\n")
	_, _ = fmt.Fprintf(w, "____ | _______ | _________ | _________\n")
	for _, b := range fp.MarginBandBoundaries {
		_, _ = fmt.Fprintf(w, "%s | %s | %s | %s\n",
			b.Range.Label, format.Interval(b.Range), format.Currency(b.MinPrice), format.OptionalCurrency(b.MaxPrice))
	}
}

func prettyClassification(w io.Writer, c *classify.Result) {
	_, _ = fmt.Fprintf(w, "Margin      | %s\n", format.Percent(c.Margin))
	_, _ = fmt.Fprintf(w, "Category    | %s (%s)\n", c.Category, c.Color)
	_, _ = fmt.Fprintf(w, "Loss-making | %s\n", yesNo(c.LossMaking))
	if c.NextThresholdPrice != nil {
		_, _ = fmt.Fprintf(w, "Next band   | %s at %s\n", c.NextCategory, format.Currency(*c.NextThresholdPrice))
	} else {
		_, _ = fmt.Fprintf(w, "Next band   | %s (top band)\n", format.NotApplicable)
	}
}

func prettyDiscount(w io.Writer, p *message.Printer, d *discount.Result) {
	_, _ = fmt.Fprintf(w, "New price               | %s\n", format.Currency(d.NewPrice))
	_, _ = fmt.Fprintf(w, "Margin                  | %s -> %s\n", format.Percent(d.OriginalMargin), format.Percent(d.NewMargin))
	_, _ = fmt.Fprintf(w, "Category                | %s -> %s\n", d.OriginalClassification.Category, d.NewClassification.Category)
	_, _ = fmt.Fprintf(w, "Original monthly profit | %s\n", format.Currency(d.OriginalMonthlyProfit))
	_, _ = fmt.Fprintf(w, "Profit per unit after   | %s\n", format.Currency(d.ProfitPerUnitAfterDiscount))
	if d.LossMaking {
		_, _ = fmt.Fprintf(w, "Breakeven units         | %s (discounted price does not cover cost)\n", format.NotApplicable)
		return
	}
	_, _ = p.Fprintf(w, "Breakeven units         | %.2f\n", *d.BreakevenUnits)
	if d.VolumeIncreasePercent != nil {
		_, _ = p.Fprintf(w, "Volume increase         | %.2f%%\n", *d.VolumeIncreasePercent)
	} else {
		_, _ = fmt.Fprintf(w, "Volume increase         | %s\n", format.NotApplicable)
	}
}

// CSV outputs in comma-separated value format. Pricing responses produce one
// row per band; classification and discount responses produce a single row.
func CSV(w io.Writer, resp *engine.Response) error {
	cw := csv.NewWriter(w)

	switch {
	case resp.Pricing != nil:
		fp := resp.Pricing
		_ = cw.Write([]string{"cost", "target_margin", "recommended_price", "markup_on_cost", "category",
			"band", "color", "min_margin", "max_margin", "min_price", "max_price"})
		for _, b := range fp.MarginBandBoundaries {
			_ = cw.Write([]string{
				money(fp.Cost), ratio(fp.TargetMargin), money(fp.RecommendedPrice), ratio(fp.MarkupOnCost), fp.Category,
				b.Range.Label, b.Range.Color, ratio(b.Range.MinMargin), ratio(b.Range.MaxMargin), money(b.MinPrice), optional(b.MaxPrice, money),
			})
		}
	case resp.Classification != nil:
		c := resp.Classification
		_ = cw.Write([]string{"margin", "category", "color", "loss_making", "next_category", "next_threshold_price"})
		_ = cw.Write([]string{
			margin(c.Margin), c.Category, c.Color, strconv.FormatBool(c.LossMaking), c.NextCategory, optional(c.NextThresholdPrice, money),
		})
	case resp.Discount != nil:
		d := resp.Discount
		_ = cw.Write([]string{"new_price", "original_margin", "new_margin", "original_category", "new_category", "band_changed",
			"original_monthly_profit", "profit_per_unit_after_discount", "loss_making", "breakeven_units", "volume_increase_percent"})
		_ = cw.Write([]string{
			money(d.NewPrice), margin(d.OriginalMargin), margin(d.NewMargin),
			d.OriginalClassification.Category, d.NewClassification.Category, strconv.FormatBool(d.BandChanged),
			money(d.OriginalMonthlyProfit), money(d.ProfitPerUnitAfterDiscount), strconv.FormatBool(d.LossMaking),
			optional(d.BreakevenUnits, ratio), optional(d.VolumeIncreasePercent, ratio),
		})
	default:
		return fmt.Errorf("response for %q has no result", resp.Operation)
	}

	cw.Flush()
	return cw.Error()
}

// JSON outputs resp as indented JSON.
func JSON(w io.Writer, resp interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(resp)
}

// WriteRanges renders a margin table in the named output format. Version may
// be empty for tables that are not published.
func WriteRanges(w io.Writer, outputFormat, version string, ranges []margins.MarginRange) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		if version != "" {
			_, _ = fmt.Fprintf(w, "--- margin ranges (version %s) ---\n", version)
		} else {
			_, _ = fmt.Fprintf(w, "--- margin ranges ---\n")
		}
		_, _ = fmt.Fprintf(w, "Band | Margins | Color\n")
		_, _ = fmt.Fprintf(w, "____ | _______ | _____\n")
		for _, r := range ranges {
			_, _ = fmt.Fprintf(w, "%s | %s | %s\n", r.Label, format.Interval(r), r.Color)
		}
		return nil
	case constants.OutputFormatCSV:
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"label", "color", "min_margin", "max_margin"})
		for _, r := range ranges {
			_ = cw.Write([]string{r.Label, r.Color, ratio(r.MinMargin), ratio(r.MaxMargin)})
		}
		cw.Flush()
		return cw.Error()
	case constants.OutputFormatJSON:
		return JSON(w, struct {
			Version string                `json:"version,omitempty"`
			Ranges  []margins.MarginRange `json:"ranges"`
		}{Version: version, Ranges: ranges})
	}
	return fmt.Errorf("invalid output format: %s", outputFormat)
}

// money rounds half-up to cents; margin rounds computed margins to basis
// points; ratio keeps full precision and writes infinities as +Inf and -Inf.
func money(v float64) string {
	return strconv.FormatFloat(mathutil.Round(v), 'f', constants.DecimalPlaces, 64)
}

func margin(v float64) string {
	return strconv.FormatFloat(mathutil.RoundMargin(v), 'f', -1, 64)
}

func ratio(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optional(v *float64, render func(float64) string) string {
	if v == nil {
		return ""
	}
	return render(*v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
