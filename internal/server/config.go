package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/margin-pricing/internal/config"
	"github.com/iwvelando/margin-pricing/pkg/constants"
	"gopkg.in/yaml.v3"
)

const (
	kilobyte = 1024
	megabyte = 1024 * kilobyte
)

// Config defines runtime parameters for the pricing API server.
//
// PricingConfig points at the tenant and pricing configuration the engine is
// built from. Logging, when left empty, falls back to the logging section of
// that file.
type Config struct {
	Address           string               `yaml:"address"`
	MaxBodySize       ByteSize             `yaml:"maxBodySize"`
	ReadHeaderTimeout time.Duration        `yaml:"readHeaderTimeout"`
	ShutdownTimeout   time.Duration        `yaml:"shutdownTimeout"`
	PricingConfig     string               `yaml:"pricingConfig"`
	Logging           config.LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the settings used when no server config file exists.
func DefaultConfig() Config {
	return Config{
		Address:           constants.DefaultServerAddress,
		MaxBodySize:       ByteSize(constants.DefaultMaxBodySizeBytes),
		ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		ShutdownTimeout:   constants.DefaultShutdownTimeout,
		PricingConfig:     constants.DefaultConfigFile,
	}
}

// LoadConfig reads the YAML file at path over DefaultConfig. A missing file
// yields the defaults; unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read server config: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse server config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Address) == "" {
		return errors.New("server address must not be empty")
	}
	if c.MaxBodySize <= 0 {
		return fmt.Errorf("maxBodySize must be positive, got %d", c.MaxBodySize)
	}
	if c.ReadHeaderTimeout <= 0 {
		return fmt.Errorf("readHeaderTimeout must be positive, got %s", c.ReadHeaderTimeout)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdownTimeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

// ByteSize is a request body limit in bytes. It is written as a plain count
// or with a K/KB or M/MB suffix, and doubles as a command-line flag value.
type ByteSize int64

// String renders the size with the largest suffix that divides it exactly.
func (s ByteSize) String() string {
	switch {
	case s > 0 && s%megabyte == 0:
		return strconv.FormatInt(int64(s/megabyte), 10) + "M"
	case s > 0 && s%kilobyte == 0:
		return strconv.FormatInt(int64(s/kilobyte), 10) + "K"
	}
	return strconv.FormatInt(int64(s), 10)
}

// Set parses value with ParseSize.
func (s *ByteSize) Set(value string) error {
	n, err := ParseSize(value)
	if err != nil {
		return err
	}
	*s = ByteSize(n)
	return nil
}

// Type names the flag value type in help output.
func (s *ByteSize) Type() string {
	return "size"
}

// UnmarshalYAML accepts a scalar such as 65536, "64K" or "1MB".
func (s *ByteSize) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: size must be a scalar", node.Line)
	}
	if err := s.Set(node.Value); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	return nil
}

// ParseSize converts a human-friendly byte string (e.g., "64K", "1M") into a
// positive number of bytes.
func ParseSize(value string) (int64, error) {
	upper := strings.ToUpper(strings.TrimSpace(value))
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %q", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("size must be positive, got %q", value)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = kilobyte
	case "M", "MB":
		multiplier = megabyte
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	if n > (1<<63-1)/multiplier {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return n * multiplier, nil
}
