package errors

import (
	"math"
	"strings"
	"unicode"
)

// MaxExpressionLength bounds the text accepted by the expression compiler.
const MaxExpressionLength = 4096

// MaxScreenSize bounds each pixel dimension of a drawing surface.
const MaxScreenSize = 10000

// ValidateExpressionText rejects text that cannot be a reasonable formula
// before it reaches the parser: empty, oversized, or containing control
// characters.
func ValidateExpressionText(text string) error {
	if strings.TrimSpace(text) == "" {
		return New(ErrCodeSyntax, "empty expression")
	}
	if len(text) > MaxExpressionLength {
		return New(ErrCodeSyntax, "expression too long (max %d characters)", MaxExpressionLength)
	}
	for _, r := range text {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return New(ErrCodeSyntax, "expression contains invalid control characters")
		}
	}
	return nil
}

// ValidateRange checks that lo < hi and both are finite.
// name is used in the message, e.g. "x" or "y".
func ValidateRange(name string, lo, hi float64) error {
	if !finite(lo) || !finite(hi) {
		return New(ErrCodeInvalidArgument, "%s range must be finite, got [%g, %g]", name, lo, hi)
	}
	if hi <= lo {
		return New(ErrCodeInvalidArgument, "degenerate %s range [%g, %g]: max must exceed min", name, lo, hi)
	}
	return nil
}

// ValidatePoints checks a sample count.
func ValidatePoints(points int) error {
	if points < 2 {
		return New(ErrCodeInvalidArgument, "points must be at least 2, got %d", points)
	}
	return nil
}

// ValidateFactor checks a zoom factor.
func ValidateFactor(factor float64) error {
	if !finite(factor) || factor <= 0 {
		return New(ErrCodeInvalidArgument, "zoom factor must be positive, got %g", factor)
	}
	return nil
}

// ValidateTolerance checks a convergence tolerance.
func ValidateTolerance(tol float64) error {
	if !finite(tol) || tol <= 0 {
		return New(ErrCodeInvalidArgument, "tolerance must be positive, got %g", tol)
	}
	return nil
}

// ValidateScreenSize checks pixel dimensions.
func ValidateScreenSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidArgument, "screen size must be positive, got %dx%d", width, height)
	}
	if width > MaxScreenSize || height > MaxScreenSize {
		return New(ErrCodeInvalidArgument, "screen size %dx%d too large (max %d per side)", width, height, MaxScreenSize)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
