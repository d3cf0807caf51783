// Package constants provides shared constants for the margin-pricing application.
package constants

import "time"

// Numeric precision constants
const (
	// DecimalPlaces is the number of decimals kept for monetary outputs
	DecimalPlaces = 2

	// MarginDecimalPlaces resolves margins to basis points (0.0001)
	MarginDecimalPlaces = 4

	// FloatNoiseTolerance absorbs binary floating point error when deciding
	// whether a rounded price fell below its exact value
	FloatNoiseTolerance = 1e-9

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Pricing defaults
const (
	// DefaultTargetMargin is the margin used when a price request omits one
	DefaultTargetMargin = 0.27

	// MaxDiscountPercent is the exclusive upper bound of a discount
	MaxDiscountPercent = 100.0
)

// Operation discriminators accepted at the engine boundary
const (
	// OperationPrice recommends a price for a cost and target margin
	OperationPrice = "price"

	// OperationSimulateDiscount simulates a discount on an existing price
	OperationSimulateDiscount = "simulate-discount"

	// OperationClassify classifies an existing price into a margin band
	OperationClassify = "classify"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultReadHeaderTimeout bounds how long a client may take to send headers
	DefaultReadHeaderTimeout = 5 * time.Second

	// DefaultShutdownTimeout bounds graceful shutdown of in-flight requests
	DefaultShutdownTimeout = 10 * time.Second

	// RequestIDHeader carries the request id in and out of the HTTP API
	RequestIDHeader = "X-Request-ID"
)
