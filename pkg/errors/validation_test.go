package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateExpressionText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "x^2", false},
		{"with spaces", "  sin(x) + 1  ", false},
		{"with tab", "x\t+ 1", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("x+", MaxExpressionLength), true},
		{"null byte", "x\x00", true},
		{"control char", "x\x01+1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExpressionText(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateExpressionText(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeSyntax) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeSyntax)
			}
		})
	}
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name    string
		lo, hi  float64
		wantErr bool
	}{
		{"valid", -1, 1, false},
		{"tiny", 0, 1e-12, false},

		{"equal", 1, 1, true},
		{"reversed", 2, 1, true},
		{"nan", math.NaN(), 1, true},
		{"inf", 0, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange("x", tt.lo, tt.hi)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRange(%g, %g) error = %v, wantErr %v", tt.lo, tt.hi, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidArgument) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidArgument)
			}
		})
	}
}

func TestValidateScalars(t *testing.T) {
	if err := ValidatePoints(2); err != nil {
		t.Errorf("ValidatePoints(2) = %v", err)
	}
	if err := ValidatePoints(1); err == nil {
		t.Error("ValidatePoints(1) should fail")
	}
	if err := ValidateFactor(0.5); err != nil {
		t.Errorf("ValidateFactor(0.5) = %v", err)
	}
	for _, f := range []float64{0, -2, math.NaN(), math.Inf(1)} {
		if err := ValidateFactor(f); err == nil {
			t.Errorf("ValidateFactor(%g) should fail", f)
		}
	}
	if err := ValidateTolerance(1e-6); err != nil {
		t.Errorf("ValidateTolerance(1e-6) = %v", err)
	}
	if err := ValidateTolerance(0); err == nil {
		t.Error("ValidateTolerance(0) should fail")
	}
}

func TestValidateScreenSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		wantErr       bool
	}{
		{"typical", 800, 600, false},
		{"limit", MaxScreenSize, MaxScreenSize, false},

		{"zero width", 0, 600, true},
		{"negative height", 800, -1, true},
		{"too wide", MaxScreenSize + 1, 600, true},
		{"huge", 1 << 30, 1 << 30, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScreenSize(tt.width, tt.height)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateScreenSize(%d, %d) error = %v, wantErr %v", tt.width, tt.height, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidArgument) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidArgument)
			}
		})
	}
}
