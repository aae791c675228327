package expr

import (
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	ferrors "github.com/matzehuels/funcplot/pkg/errors"
)

var approx = []cmp.Option{cmpopts.EquateApprox(0, 1e-12), cmpopts.EquateNaNs()}

func TestSetExpressionValid(t *testing.T) {
	e := NewEngine()
	if !e.SetExpression(0, "x^2") {
		t.Fatalf("SetExpression failed: %s", e.Diagnostic(0))
	}
	if !e.IsValid(0) {
		t.Error("slot 0 should be valid")
	}
	if d := e.Diagnostic(0); d != "" {
		t.Errorf("Diagnostic = %q, want empty", d)
	}
	if got := e.Expression(0); got != "x^2" {
		t.Errorf("Expression = %q", got)
	}
}

func TestSetExpressionInvalid(t *testing.T) {
	e := NewEngine()
	if e.SetExpression(0, "1/(") {
		t.Fatal("SetExpression(1/() should fail")
	}
	if e.IsValid(0) {
		t.Error("slot 0 should be invalid")
	}
	if e.Diagnostic(0) == "" {
		t.Error("invalid slot must carry a diagnostic")
	}

	_, err := e.Evaluate(0, 1)
	if !ferrors.Is(err, ferrors.ErrCodeUndefinedSlot) {
		t.Errorf("Evaluate error = %v, want UNDEFINED_SLOT", err)
	}
}

func TestSlotStatesAreExclusive(t *testing.T) {
	e := NewEngine()
	e.SetExpression(0, "sin(x)")
	e.SetExpression(1, "sin(")

	for i := 0; i < e.Len(); i++ {
		s, _ := e.Slot(i)
		hasProgram := s.Program() != nil
		hasDiag := s.Diagnostic() != ""
		if hasProgram == hasDiag {
			t.Errorf("slot %d: program=%v diagnostic=%v, want exactly one", i, hasProgram, hasDiag)
		}
	}
}

func TestSetExpressionGrowsSlots(t *testing.T) {
	e := NewEngine()
	if !e.SetExpression(3, "x") {
		t.Fatal("SetExpression(3) failed")
	}
	if e.Len() != 4 {
		t.Fatalf("Len = %d, want 4", e.Len())
	}
	for i := 0; i < 3; i++ {
		if e.IsValid(i) {
			t.Errorf("intervening slot %d should be invalid", i)
		}
		if e.Diagnostic(i) == "" {
			t.Errorf("intervening slot %d should carry a diagnostic", i)
		}
	}
}

func TestSetExpressionRejectsBadIndex(t *testing.T) {
	e := NewEngine()
	if e.SetExpression(-1, "x") {
		t.Error("negative index should be rejected")
	}
	if e.SetExpression(MaxSlots, "x") {
		t.Error("index >= MaxSlots should be rejected")
	}
	if e.Len() != 0 {
		t.Errorf("rejected indices must not create slots, Len = %d", e.Len())
	}
}

func TestOverwriteReplacesProgram(t *testing.T) {
	e := NewEngine()
	e.SetExpression(0, "x + 1")
	e.SetExpression(0, "x + 2")
	if got, _ := e.Evaluate(0, 0); got != 2 {
		t.Errorf("Evaluate after overwrite = %v, want 2", got)
	}
	e.SetExpression(0, "x +")
	if e.IsValid(0) {
		t.Error("overwrite with bad text should invalidate the slot")
	}
}

func TestEvaluateRange(t *testing.T) {
	e := NewEngine()
	e.SetExpression(0, "x^2")

	got := e.EvaluateRange(0, []float64{-2, -1, 0, 1, 2})
	want := []float64{4, 1, 0, 1, 4}
	if diff := cmp.Diff(want, got, approx...); diff != "" {
		t.Errorf("EvaluateRange mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluateRangePerElementFailure(t *testing.T) {
	e := NewEngine()
	e.SetExpression(0, "log(x)")

	got := e.EvaluateRange(0, []float64{-1, 0, 1, math.E})
	want := []float64{math.NaN(), math.NaN(), 0, 1}
	if diff := cmp.Diff(want, got, approx...); diff != "" {
		t.Errorf("EvaluateRange mismatch (-want +got):\n%s", diff)
	}

	undefined := e.EvaluateRange(7, []float64{1, 2})
	for i, v := range undefined {
		if !math.IsNaN(v) {
			t.Errorf("undefined slot element %d = %v, want NaN", i, v)
		}
	}
}

func TestEvaluateErrors(t *testing.T) {
	tests := []struct {
		src  string
		x    float64
		code ferrors.Code
	}{
		{"log(x)", -1, ferrors.ErrCodeDomain},
		{"log(x)", 0, ferrors.ErrCodeDomain},
		{"log10(x)", -5, ferrors.ErrCodeDomain},
		{"sqrt(x)", -4, ferrors.ErrCodeDomain},
		{"asin(x)", 2, ferrors.ErrCodeDomain},
		{"acos(x)", -1.5, ferrors.ErrCodeDomain},
		{"1/x", 0, ferrors.ErrCodeDomain},
		{"sin(x)/x", 0, ferrors.ErrCodeDomain},
		{"x^-1", 0, ferrors.ErrCodeDomain},
		{"x^0.5", -4, ferrors.ErrCodeDomain},
		{"exp(x)", 1000, ferrors.ErrCodeRuntime},
		{"x", math.NaN(), ferrors.ErrCodeRuntime},
		{"x", math.Inf(1), ferrors.ErrCodeRuntime},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e := NewEngine()
			if !e.SetExpression(0, tt.src) {
				t.Fatalf("SetExpression: %s", e.Diagnostic(0))
			}
			v, err := e.Evaluate(0, tt.x)
			if !ferrors.Is(err, tt.code) {
				t.Errorf("Evaluate(%g) error = %v, want %s", tt.x, err, tt.code)
			}
			if !math.IsNaN(v) {
				t.Errorf("failed Evaluate should return NaN, got %v", v)
			}
		})
	}
}

func TestNegativeBaseIntegerPower(t *testing.T) {
	e := NewEngine()
	e.SetExpression(0, "x^3")
	if got, err := e.Evaluate(0, -2); err != nil || got != -8 {
		t.Errorf("(-2)^3 = %v, %v; want -8", got, err)
	}
}

func TestConstantFoldingKeepsErrors(t *testing.T) {
	p := MustCompile("x + log(-1)")
	if _, err := p.Eval(1); !ferrors.Is(err, ferrors.ErrCodeDomain) {
		t.Errorf("folded constant error lost: %v", err)
	}

	c := MustCompile("2 * pi")
	if c.DependsOnX() {
		t.Error("2*pi should not depend on x")
	}
	if v, _ := c.Eval(123); v != 2*math.Pi {
		t.Errorf("constant program = %v", v)
	}
}

func TestClearAndRemove(t *testing.T) {
	e := NewEngine()
	e.SetExpression(0, "x")
	e.SetExpression(1, "2*x")
	e.SetExpression(2, "3*x")

	e.Clear(1)
	if e.IsValid(1) || e.Len() != 3 {
		t.Errorf("Clear(1): valid=%v len=%d", e.IsValid(1), e.Len())
	}
	if e.Expression(1) != "" {
		t.Errorf("cleared slot text = %q", e.Expression(1))
	}

	e.Remove(0)
	if e.Len() != 2 {
		t.Fatalf("Remove(0): len=%d, want 2", e.Len())
	}
	if got, _ := e.Evaluate(1, 1); got != 3 {
		t.Errorf("slot shifted into 1 evaluates to %v, want 3", got)
	}
	if idx := e.Valid(); len(idx) != 1 || idx[0] != 1 {
		t.Errorf("Valid() = %v, want [1]", idx)
	}

	e.ClearAll()
	if e.Len() != 0 || e.IsValid(0) {
		t.Error("ClearAll should remove every slot")
	}
	// out of range operations are no-ops
	e.Clear(5)
	e.Remove(5)
}

func TestProgramConcurrentEval(t *testing.T) {
	p := MustCompile("sin(x)^2 + cos(x)^2")
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				v, err := p.Eval(float64(w*1000 + i))
				if err != nil {
					errs <- err
					return
				}
				if math.Abs(v-1) > 1e-12 {
					errs <- ferrors.New(ferrors.ErrCodeInternal, "got %v", v)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestSupportedFunctions(t *testing.T) {
	names := SupportedFunctions()
	if len(names) != 16 {
		t.Errorf("SupportedFunctions() has %d entries, want 16", len(names))
	}
	for _, src := range ExampleExpressions() {
		if _, err := Compile(src); err != nil {
			t.Errorf("example %q does not compile: %v", src, err)
		}
	}
}

func TestSyntaxErrorUnwrapsToCode(t *testing.T) {
	_, err := Compile("sin(")
	if !ferrors.Is(err, ferrors.ErrCodeSyntax) {
		t.Errorf("compile error should carry SYNTAX_ERROR, got %v", err)
	}
}
