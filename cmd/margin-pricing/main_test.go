package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/margin-pricing/internal/config"
	"github.com/iwvelando/margin-pricing/internal/engine"
	"github.com/iwvelando/margin-pricing/internal/server"
	"github.com/iwvelando/margin-pricing/pkg/margins"
)

const exampleConfig = "../../config.yaml.example"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name     string
		logging  config.LoggingConfig
		override string
		wantErr  bool
	}{
		{name: "defaults", logging: config.LoggingConfig{}},
		{name: "console debug", logging: config.LoggingConfig{Level: "debug", Format: "console"}},
		{name: "override wins", logging: config.LoggingConfig{Level: "bogus"}, override: "warn"},
		{name: "invalid level", logging: config.LoggingConfig{Level: "verbose"}, wantErr: true},
		{name: "invalid format", logging: config.LoggingConfig{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.logging, tt.override)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("initializeLogger() error = %v", err)
			}
			if logger == nil {
				t.Fatal("expected logger")
			}
		})
	}
}

func TestInitializeLoggerOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "margin-pricing.log")

	logger, err := initializeLogger(config.LoggingConfig{OutputFile: path}, "info")
	if err != nil {
		t.Fatalf("initializeLogger() error = %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("expected log line in file, got %q", string(data))
	}
}

func TestPriceCommand(t *testing.T) {
	out, err := execute(t, "price", "--cost", "100", "--margin", "0.25")
	if err != nil {
		t.Fatalf("price failed: %v", err)
	}
	if !strings.Contains(out, "Recommended price | $133.34") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestPriceCommandDefaultMargin(t *testing.T) {
	out, err := execute(t, "price", "--cost", "73", "--output-format", "json")
	if err != nil {
		t.Fatalf("price failed: %v", err)
	}

	var resp engine.Response
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if resp.Pricing.TargetMargin != 0.27 {
		t.Fatalf("expected default target margin 0.27, got %v", resp.Pricing.TargetMargin)
	}
	if resp.Pricing.RecommendedPrice != 100 {
		t.Fatalf("expected 100, got %v", resp.Pricing.RecommendedPrice)
	}
}

func TestClassifyCommandWithTenant(t *testing.T) {
	out, err := execute(t, "classify", "--price", "110", "--cost", "100",
		"--config", exampleConfig, "--tenant", "acme")
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	for _, want := range []string{"(table: tenant acme)", "Category    | thin", "Next band   | healthy at $125.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSimulateCommandCSV(t *testing.T) {
	out, err := execute(t, "simulate", "--price", "100", "--cost", "60", "--discount", "10", "--sales", "50",
		"--output-format", "csv")
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[1], "90.00,0.4,0.3333,premium,healthy,true,") {
		t.Fatalf("unexpected row %q", lines[1])
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing explicit config", args: []string{"price", "--cost", "10", "--config", "/nonexistent/config.yaml"}},
		{name: "invalid output format", args: []string{"price", "--cost", "10", "--output-format", "xml"}},
		{name: "invalid cost", args: []string{"price", "--cost", "-1"}},
		{name: "missing required flag", args: []string{"classify", "--cost", "10"}},
		{name: "unknown tenant", args: []string{"price", "--cost", "10", "--tenant", "ghost"}},
		{name: "full discount", args: []string{"simulate", "--price", "10", "--cost", "5", "--discount", "100"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Fatal("expected error but got nil")
			}
		})
	}
}

func TestRangesYAMLRoundTrip(t *testing.T) {
	out, err := execute(t, "ranges", "--yaml")
	if err != nil {
		t.Fatalf("ranges failed: %v", err)
	}
	if !strings.Contains(out, "-.inf") {
		t.Fatalf("expected YAML infinity in output:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "table.yaml")
	if err := os.WriteFile(path, []byte(out), 0600); err != nil {
		t.Fatalf("failed to write table file: %v", err)
	}

	out, err = execute(t, "validate-table", path)
	if err != nil {
		t.Fatalf("validate-table failed: %v", err)
	}
	if !strings.Contains(out, "valid margin table with 5 ranges") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRangesTenantPretty(t *testing.T) {
	out, err := execute(t, "ranges", "--config", exampleConfig, "--tenant", "corner-bakery")
	if err != nil {
		t.Fatalf("ranges failed: %v", err)
	}
	if !strings.Contains(out, "good | [30.00%, +inf) | #16a34a") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestValidateTableJSON(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.json")
	if err := os.WriteFile(valid, []byte(`{"ranges":[{"minMargin":null,"maxMargin":0.3,"label":"low"},{"minMargin":0.3,"maxMargin":null,"label":"good"}]}`), 0600); err != nil {
		t.Fatalf("failed to write table file: %v", err)
	}
	if _, err := execute(t, "validate-table", valid); err != nil {
		t.Fatalf("expected valid table, got %v", err)
	}

	gap := filepath.Join(dir, "gap.json")
	if err := os.WriteFile(gap, []byte(`{"ranges":[{"minMargin":null,"maxMargin":0.1},{"minMargin":0.2,"maxMargin":null}]}`), 0600); err != nil {
		t.Fatalf("failed to write table file: %v", err)
	}
	_, err := execute(t, "validate-table", gap)
	if !errors.Is(err, margins.ErrTableGap) {
		t.Fatalf("expected gap error, got %v", err)
	}

	if _, err := execute(t, "validate-table", filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "margin-pricing version dev") || !strings.Contains(out, margins.DefaultRangesVersion) {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestServeFlagsOverrideServerConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server-config.yaml")
	if err := os.WriteFile(path, []byte("address: 127.0.0.1:9000\nmaxBodySize: 16K\n"), 0600); err != nil {
		t.Fatalf("failed to write server config: %v", err)
	}

	serve := func(args ...string) (server.Config, error) {
		cmd := newServeCmd(&app{})
		if err := cmd.Flags().Parse(args); err != nil {
			return server.Config{}, err
		}
		address, err := cmd.Flags().GetString("address")
		if err != nil {
			t.Fatalf("address flag: %v", err)
		}
		size, ok := cmd.Flags().Lookup("max-body-size").Value.(*server.ByteSize)
		if !ok {
			t.Fatal("max-body-size flag is not a byte size")
		}
		return loadServerConfig(cmd, path, address, *size)
	}

	cfg, err := serve()
	if err != nil {
		t.Fatalf("loadServerConfig() error = %v", err)
	}
	if cfg.Address != "127.0.0.1:9000" || cfg.MaxBodySize != 16*1024 {
		t.Fatalf("expected file settings without flags, got %+v", cfg)
	}

	cfg, err = serve("--address", "127.0.0.1:0", "--max-body-size", "1M")
	if err != nil {
		t.Fatalf("loadServerConfig() error = %v", err)
	}
	if cfg.Address != "127.0.0.1:0" || cfg.MaxBodySize != 1024*1024 {
		t.Fatalf("expected flag overrides, got %+v", cfg)
	}

	if _, err := serve("--max-body-size", "2GB"); err == nil {
		t.Fatal("expected error for unsupported body size")
	}
	if _, err := serve("--address", " "); err == nil {
		t.Fatal("expected error for blank address")
	}
}
