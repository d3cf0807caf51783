// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/margin-pricing/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateOperation checks if the operation discriminator is supported.
func ValidateOperation(operation string) error {
	switch operation {
	case constants.OperationPrice, constants.OperationSimulateDiscount, constants.OperationClassify:
		return nil
	}
	return fmt.Errorf("%w: %q (expected %s, %s or %s)", ErrUnknownOperation, operation,
		constants.OperationPrice, constants.OperationSimulateDiscount, constants.OperationClassify)
}
