package validation

import (
	"errors"
	"fmt"

	"github.com/iwvelando/margin-pricing/pkg/constants"
	"github.com/iwvelando/margin-pricing/pkg/mathutil"
)

// Input validation failures. Callers match them with errors.Is; the wrapped
// message names the offending value.
var (
	ErrInvalidCost      = errors.New("invalid cost")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrInvalidMargin    = errors.New("invalid margin")
	ErrInvalidDiscount  = errors.New("invalid discount")
	ErrInvalidSales     = errors.New("invalid monthly sales")
	ErrUnknownOperation = errors.New("unknown operation")
)

// IsInputError reports whether err is one of the input validation failures.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidCost) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidMargin) ||
		errors.Is(err, ErrInvalidDiscount) ||
		errors.Is(err, ErrInvalidSales) ||
		errors.Is(err, ErrUnknownOperation)
}

// ValidateCost requires a positive, finite cost.
func ValidateCost(cost float64) error {
	if !mathutil.IsFinite(cost) || cost <= 0 {
		return fmt.Errorf("%w: cost must be positive and finite, got %v", ErrInvalidCost, cost)
	}
	return nil
}

// ValidatePrice requires a positive, finite price.
func ValidatePrice(price float64) error {
	if !mathutil.IsFinite(price) || price <= 0 {
		return fmt.Errorf("%w: price must be positive and finite, got %v", ErrInvalidPrice, price)
	}
	return nil
}

// ValidateTargetMargin requires a margin fraction in [0, 1).
func ValidateTargetMargin(margin float64) error {
	if !mathutil.IsFinite(margin) || margin < 0 || margin >= 1 {
		return fmt.Errorf("%w: target margin must be in [0, 1), got %v", ErrInvalidMargin, margin)
	}
	return nil
}

// ValidateDiscountPercent requires a discount percentage in [0, 100).
func ValidateDiscountPercent(discountPercent float64) error {
	if !mathutil.IsFinite(discountPercent) || discountPercent < 0 || discountPercent >= constants.MaxDiscountPercent {
		return fmt.Errorf("%w: discount must be in [0, %v), got %v",
			ErrInvalidDiscount, constants.MaxDiscountPercent, discountPercent)
	}
	return nil
}

// ValidateMonthlySales requires a non-negative, finite sales volume.
func ValidateMonthlySales(monthlySales float64) error {
	if !mathutil.IsFinite(monthlySales) || monthlySales < 0 {
		return fmt.Errorf("%w: monthly sales must be non-negative and finite, got %v", ErrInvalidSales, monthlySales)
	}
	return nil
}
