package task

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims surrounding whitespace and applies Unicode NFC so that
// names which render identically compare equal. Uniqueness is checked on
// the normalized form.
func NormalizeName(name string) (string, error) {
	normalized := norm.NFC.String(strings.TrimSpace(name))
	if normalized == "" {
		return "", NewValidationError("name", "name is required")
	}
	return normalized, nil
}

// ValidateCost rejects negative, NaN and infinite costs.
func ValidateCost(cost float64) error {
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return NewValidationError("cost", "cost must be a finite number")
	}
	if cost < 0 {
		return NewValidationError("cost", fmt.Sprintf("cost must not be negative, got %v", cost))
	}
	return nil
}

// ValidateTarget checks that target is a usable rank in a list of n tasks.
// Out-of-range targets are rejected, never clamped.
func ValidateTarget(target, n int) error {
	if target < 1 {
		return NewValidationError("rank", fmt.Sprintf("rank must be a positive integer, got %d", target))
	}
	if target > n {
		return NewValidationError("rank", fmt.Sprintf("rank %d is out of range [1, %d]", target, n))
	}
	return nil
}
