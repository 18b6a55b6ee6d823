package errors

import (
	"math"
	"unicode"
)

// MaxCardIDLength bounds card ids accepted from outside.
const MaxCardIDLength = 128

// ValidateCardID rejects empty, oversized or control-character ids.
func ValidateCardID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "card id cannot be empty")
	}
	if len(id) > MaxCardIDLength {
		return New(ErrCodeInvalidInput, "card id too long (max %d characters)", MaxCardIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "card id contains invalid control characters")
		}
	}
	return nil
}

// ValidateFinite rejects NaN and infinite coordinates.
func ValidateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be a finite number, got %v", name, v)
	}
	return nil
}

// ValidatePositive rejects values that are not finite and strictly positive.
func ValidatePositive(name string, v float64) error {
	if err := ValidateFinite(name, v); err != nil {
		return err
	}
	if v <= 0 {
		return New(ErrCodeInvalidInput, "%s must be positive, got %v", name, v)
	}
	return nil
}
