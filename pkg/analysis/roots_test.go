package analysis

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	ferrors "github.com/matzehuels/funcplot/pkg/errors"
)

func TestRoot(t *testing.T) {
	a := newAnalyzer(t, "x^2 - 4", "x - 1", "cos(x)")

	tests := []struct {
		name   string
		index  int
		lo, hi float64
		tol    float64
		want   float64
	}{
		{"positive root", 0, 0, 3, 1e-6, 2},
		{"negative root", 0, -3, 0, 1e-6, -2},
		{"reversed bracket", 0, 3, 0, 1e-6, 2},
		{"zero at left endpoint", 1, 1, 2, 1e-6, 1},
		{"zero at right endpoint", 1, 0, 1, 1e-6, 1},
		{"cosine", 2, 0, 3, 1e-10, math.Pi / 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Root(tt.index, tt.lo, tt.hi, tt.tol)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.want) > 10*tt.tol {
				t.Errorf("Root = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRootEndpointExact(t *testing.T) {
	a := newAnalyzer(t, "x - 1")
	if got := a.FindRoot(0, 1, 2, 1e-6); got != 1 {
		t.Errorf("FindRoot = %v, want exactly 1", got)
	}
}

func TestRootErrors(t *testing.T) {
	a := newAnalyzer(t, "x^2 - 4", "x*x - 2", "sqrt(x) - 1")

	tests := []struct {
		name   string
		index  int
		lo, hi float64
		tol    float64
		code   ferrors.Code
	}{
		{"no sign change", 0, 0, 1, 1e-6, ferrors.ErrCodeInvalidArgument},
		{"zero tolerance", 0, 0, 3, 0, ferrors.ErrCodeInvalidArgument},
		{"negative tolerance", 0, 0, 3, -1, ferrors.ErrCodeInvalidArgument},
		{"nan bracket", 0, math.NaN(), 3, 1e-6, ferrors.ErrCodeInvalidArgument},
		{"undefined slot", 9, 0, 3, 1e-6, ferrors.ErrCodeUndefinedSlot},
		{"exhausted", 1, 0, 3, 1e-300, ferrors.ErrCodeNonConvergence},
		{"endpoint outside domain", 2, -1, 4, 1e-6, ferrors.ErrCodeDomain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Root(tt.index, tt.lo, tt.hi, tt.tol)
			if !ferrors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
			if !math.IsNaN(got) {
				t.Errorf("failed Root = %v, want NaN", got)
			}
			if v := a.FindRoot(tt.index, tt.lo, tt.hi, tt.tol); !math.IsNaN(v) {
				t.Errorf("FindRoot = %v, want NaN", v)
			}
		})
	}
}

func TestFindRoots(t *testing.T) {
	a := newAnalyzer(t, "sin(x)", "tan(x)", "x^2 + 1")

	got := a.FindRoots(0, -1, 7)
	want := []float64{0, math.Pi, 2 * math.Pi}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-8)); diff != "" {
		t.Errorf("roots of sin mismatch (-want +got):\n%s", diff)
	}

	if poles := a.FindRoots(1, 1, 2); len(poles) != 0 {
		t.Errorf("tan(x) on [1, 2] has no roots, got %v", poles)
	}
	if none := a.FindRoots(2, -5, 5); len(none) != 0 {
		t.Errorf("x^2+1 has no roots, got %v", none)
	}
	if bad := a.FindRoots(0, 1, 1); bad != nil {
		t.Errorf("empty range = %v, want nil", bad)
	}
}

func TestFindExtrema(t *testing.T) {
	a := newAnalyzer(t, "x^2", "sin(x)", "3", "x")

	ext := a.FindExtrema(0, -5, 5)
	found := false
	for _, x := range ext {
		if math.Abs(x) < 1e-3 {
			found = true
		}
	}
	if !found {
		t.Errorf("FindExtrema(x^2) = %v, want a value near 0", ext)
	}

	sin := a.FindExtrema(1, 0, 2*math.Pi)
	want := []float64{math.Pi / 2, 3 * math.Pi / 2}
	if diff := cmp.Diff(want, sin, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("extrema of sin mismatch (-want +got):\n%s", diff)
	}

	if flat := a.FindExtrema(2, -1, 1); len(flat) != 0 {
		t.Errorf("constant function extrema = %v, want none", flat)
	}
	if line := a.FindExtrema(3, -1, 1); len(line) != 0 {
		t.Errorf("linear function extrema = %v, want none", line)
	}
	if undef := a.FindExtrema(8, -1, 1); undef != nil {
		t.Errorf("undefined slot extrema = %v, want nil", undef)
	}
}

func TestClassifyExtrema(t *testing.T) {
	a := newAnalyzer(t, "sin(x)", "x^3")

	got := a.ClassifyExtrema(0, a.FindExtrema(0, 0, 2*math.Pi))
	if len(got) != 2 {
		t.Fatalf("ClassifyExtrema = %+v, want 2 points", got)
	}
	if got[0].Kind != Maximum || math.Abs(got[0].Y-1) > 1e-9 {
		t.Errorf("first extremum = %+v, want maximum at y=1", got[0])
	}
	if got[1].Kind != Minimum || math.Abs(got[1].Y+1) > 1e-9 {
		t.Errorf("second extremum = %+v, want minimum at y=-1", got[1])
	}

	inflection := a.ClassifyExtrema(1, []float64{0})
	if len(inflection) != 1 || inflection[0].Kind != Flat {
		t.Errorf("x^3 at 0 = %+v, want flat", inflection)
	}
}

func TestScanDeduplicates(t *testing.T) {
	xs := []float64{0, 1, 2, 3}
	ys := []float64{-1, 0, 1, 2}
	got := scan(xs, ys, func(lo, hi float64) (float64, bool) {
		if lo == 1 {
			return lo, true
		}
		return hi, true
	})
	if diff := cmp.Diff([]float64{1}, got); diff != "" {
		t.Errorf("scan mismatch (-want +got):\n%s", diff)
	}
}

func TestScanSkipsFlatStretches(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4, 5}
	ys := []float64{-1, 0, 0, 0, 1, 2}
	var brackets [][2]float64
	got := scan(xs, ys, func(lo, hi float64) (float64, bool) {
		brackets = append(brackets, [2]float64{lo, hi})
		if lo == 0 {
			return hi, true
		}
		return lo, true
	})
	if diff := cmp.Diff([][2]float64{{0, 1}, {3, 4}}, brackets); diff != "" {
		t.Errorf("refined brackets mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1, 3}, got); diff != "" {
		t.Errorf("scan mismatch (-want +got):\n%s", diff)
	}

	a := newAnalyzer(t, "0", "x - x")
	for i := 0; i < 2; i++ {
		if r := a.FindRoots(i, -1, 1); len(r) != 0 {
			t.Errorf("slot %d: identically zero function roots = %v, want none", i, r)
		}
		if e := a.FindExtrema(i, -1, 1); len(e) != 0 {
			t.Errorf("slot %d: identically zero function extrema = %v, want none", i, e)
		}
	}
}
