package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iwvelando/margin-pricing/internal/engine"
	"github.com/iwvelando/margin-pricing/pkg/constants"
	"github.com/iwvelando/margin-pricing/pkg/margins"
	"github.com/iwvelando/margin-pricing/pkg/testutil"
)

func run(t *testing.T, req engine.Request) *engine.Response {
	t.Helper()
	e, err := engine.New(nil, nil)
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	resp, err := e.Run(req)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return resp
}

func priceResponse(t *testing.T) *engine.Response {
	return run(t, engine.Request{Operation: constants.OperationPrice, Cost: 100, TargetMargin: testutil.Float(0.25)})
}

func classifyResponse(t *testing.T) *engine.Response {
	return run(t, engine.Request{Operation: constants.OperationClassify, Price: 133.33, Cost: 100})
}

func discountResponse(t *testing.T, sales float64) *engine.Response {
	return run(t, engine.Request{
		Operation:       constants.OperationSimulateDiscount,
		Price:           100,
		Cost:            60,
		DiscountPercent: 10,
		MonthlySales:    sales,
	})
}

func assertContains(t *testing.T, output string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(output, w) {
			t.Errorf("output missing %q\n%s", w, output)
		}
	}
}

func TestPrettyPricing(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, priceResponse(t)); err != nil {
		t.Fatalf("Pretty failed: %v", err)
	}

	assertContains(t, buf.String(),
		"--- price (table: default "+margins.DefaultRangesVersion+") ---",
		"Recommended price | $133.34",
		"Target margin     | 25.00%",
		"Category          | healthy (#16a34a)",
		"Band | Margins | Min price | Max price",
		"loss | (-inf, 0.00%) | $0.00 | $100.00",
		"healthy | [25.00%, 35.00%) | $133.33 | $153.85",
		"premium | [35.00%, +inf) | $153.85 | n/a",
	)
}

func TestPrettyClassification(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, classifyResponse(t)); err != nil {
		t.Fatalf("Pretty failed: %v", err)
	}

	assertContains(t, buf.String(),
		"Margin      | 25.00%",
		"Category    | healthy (#16a34a)",
		"Loss-making | no",
		"Next band   | premium at $153.85",
	)
}

func TestPrettyClassificationTopBand(t *testing.T) {
	resp := run(t, engine.Request{Operation: constants.OperationClassify, Price: 200, Cost: 100})

	var buf bytes.Buffer
	if err := Pretty(&buf, resp); err != nil {
		t.Fatalf("Pretty failed: %v", err)
	}
	assertContains(t, buf.String(), "Next band   | n/a (top band)")
}

func TestPrettyDiscount(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, discountResponse(t, 50000)); err != nil {
		t.Fatalf("Pretty failed: %v", err)
	}

	assertContains(t, buf.String(),
		"New price               | $90.00",
		"Margin                  | 40.00% -> 33.33%",
		"Category                | premium -> healthy",
		"Original monthly profit | $2,000,000.00",
		"Breakeven units         | 66,666.67",
		"Volume increase         | 33.33%",
	)
}

func TestPrettyDiscountLossMaking(t *testing.T) {
	resp := run(t, engine.Request{
		Operation:       constants.OperationSimulateDiscount,
		Price:           100,
		Cost:            60,
		DiscountPercent: 50,
		MonthlySales:    10,
	})

	var buf bytes.Buffer
	if err := Pretty(&buf, resp); err != nil {
		t.Fatalf("Pretty failed: %v", err)
	}
	assertContains(t, buf.String(),
		"Profit per unit after   | -$10.00",
		"Breakeven units         | n/a (discounted price does not cover cost)",
	)
}

func TestPrettyEmptyResponse(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, &engine.Response{Operation: constants.OperationPrice}); err == nil {
		t.Fatal("expected error for a response without a result")
	}
}

func TestCSVPricing(t *testing.T) {
	var buf bytes.Buffer
	if err := CSV(&buf, priceResponse(t)); err != nil {
		t.Fatalf("CSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV output: %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("expected header plus 5 band rows, got %d", len(records))
	}
	if records[0][0] != "cost" || records[0][10] != "max_price" {
		t.Errorf("unexpected header %v", records[0])
	}

	healthy := records[4]
	want := []string{"100.00", "0.25", "133.34", "0.3334", "healthy", "healthy", "#16a34a", "0.25", "0.35", "133.33", "153.85"}
	for i := range want {
		if healthy[i] != want[i] {
			t.Errorf("column %s = %q, want %q", records[0][i], healthy[i], want[i])
		}
	}

	premium := records[5]
	if premium[8] != "+Inf" || premium[10] != "" {
		t.Errorf("expected open top band, got %v", premium)
	}
}

func TestCSVClassification(t *testing.T) {
	var buf bytes.Buffer
	if err := CSV(&buf, classifyResponse(t)); err != nil {
		t.Fatalf("CSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV output: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	want := []string{"0.25", "healthy", "#16a34a", "false", "premium", "153.85"}
	for i := range want {
		if records[1][i] != want[i] {
			t.Errorf("column %s = %q, want %q", records[0][i], records[1][i], want[i])
		}
	}
}

func TestCSVDiscount(t *testing.T) {
	var buf bytes.Buffer
	if err := CSV(&buf, discountResponse(t, 0)); err != nil {
		t.Fatalf("CSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV output: %v", err)
	}
	row := records[1]
	if row[0] != "90.00" || row[5] != "true" || row[9] != "0" || row[10] != "" {
		t.Errorf("unexpected discount row %v", row)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, constants.OutputFormatJSON, classifyResponse(t)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var decoded engine.Response
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode JSON output: %v", err)
	}
	if decoded.Classification == nil || decoded.Classification.Category != "healthy" {
		t.Errorf("unexpected decoded response %+v", decoded)
	}
}

func TestWriteInvalidFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "xml", classifyResponse(t)); err == nil {
		t.Fatal("expected error for invalid format")
	}
	if err := WriteRanges(&buf, "xml", "", nil); err == nil {
		t.Fatal("expected error for invalid format")
	}
}

func TestWriteRanges(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   []string
	}{
		{
			name:   "pretty",
			format: constants.OutputFormatPretty,
			want:   []string{"--- margin ranges (version 2024.1) ---", "fair | [15.00%, 25.00%) | #f59e0b"},
		},
		{
			name:   "csv",
			format: constants.OutputFormatCSV,
			want:   []string{"label,color,min_margin,max_margin", "loss,#7f1d1d,-Inf,0"},
		},
		{
			name:   "json",
			format: constants.OutputFormatJSON,
			want:   []string{`"version": "2024.1"`, `"minMargin": null`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteRanges(&buf, tt.format, margins.DefaultRangesVersion, margins.DefaultMarginRanges()); err != nil {
				t.Fatalf("WriteRanges failed: %v", err)
			}
			assertContains(t, buf.String(), tt.want...)
		})
	}
}
