package validation

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestInputValidators(t *testing.T) {
	tests := []struct {
		name    string
		check   func(float64) error
		value   float64
		wantErr error
	}{
		{"cost positive", ValidateCost, 60, nil},
		{"cost zero", ValidateCost, 0, ErrInvalidCost},
		{"cost negative", ValidateCost, -1, ErrInvalidCost},
		{"cost infinite", ValidateCost, math.Inf(1), ErrInvalidCost},
		{"cost NaN", ValidateCost, math.NaN(), ErrInvalidCost},
		{"price positive", ValidatePrice, 0.01, nil},
		{"price zero", ValidatePrice, 0, ErrInvalidPrice},
		{"price infinite", ValidatePrice, math.Inf(1), ErrInvalidPrice},
		{"margin zero", ValidateTargetMargin, 0, nil},
		{"margin default", ValidateTargetMargin, 0.27, nil},
		{"margin just below one", ValidateTargetMargin, 0.9999, nil},
		{"margin one", ValidateTargetMargin, 1, ErrInvalidMargin},
		{"margin negative", ValidateTargetMargin, -0.1, ErrInvalidMargin},
		{"margin NaN", ValidateTargetMargin, math.NaN(), ErrInvalidMargin},
		{"discount zero", ValidateDiscountPercent, 0, nil},
		{"discount 99.99", ValidateDiscountPercent, 99.99, nil},
		{"discount 100", ValidateDiscountPercent, 100, ErrInvalidDiscount},
		{"discount negative", ValidateDiscountPercent, -5, ErrInvalidDiscount},
		{"sales zero", ValidateMonthlySales, 0, nil},
		{"sales negative", ValidateMonthlySales, -1, ErrInvalidSales},
		{"sales infinite", ValidateMonthlySales, math.Inf(1), ErrInvalidSales},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check(tt.value)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error for %v: %v", tt.value, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error for %v = %v, expected %v", tt.value, err, tt.wantErr)
			}
			if !IsInputError(err) {
				t.Errorf("IsInputError(%v) = false, expected true", err)
			}
		})
	}
}

func TestIsInputErrorRejectsOtherErrors(t *testing.T) {
	if IsInputError(errors.New("boom")) {
		t.Errorf("IsInputError should not match unrelated errors")
	}
	if !IsInputError(fmt.Errorf("wrapped: %w", ValidateCost(0))) {
		t.Errorf("IsInputError should see through wrapping")
	}
}
