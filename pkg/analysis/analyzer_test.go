package analysis

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	ferrors "github.com/matzehuels/funcplot/pkg/errors"
	"github.com/matzehuels/funcplot/pkg/expr"
)

// newAnalyzer registers each expression in its own slot, in order.
func newAnalyzer(t *testing.T, exprs ...string) *Analyzer {
	t.Helper()
	e := expr.NewEngine()
	for i, src := range exprs {
		if !e.SetExpression(i, src) {
			t.Fatalf("SetExpression(%d, %q): %s", i, src, e.Diagnostic(i))
		}
	}
	a := New(e)
	a.Logger = nil
	return a
}

func TestLinspace(t *testing.T) {
	tests := []struct {
		lo, hi float64
		n      int
		want   []float64
	}{
		{0, 1, 5, []float64{0, 0.25, 0.5, 0.75, 1}},
		{-1, 1, 3, []float64{-1, 0, 1}},
		{2, 3, 1, []float64{2}},
		{0, 1, 0, nil},
	}
	for _, tt := range tests {
		got := Linspace(tt.lo, tt.hi, tt.n)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Linspace(%v, %v, %d) mismatch (-want +got):\n%s", tt.lo, tt.hi, tt.n, diff)
		}
	}

	xs := Linspace(0, 0.3, 7)
	if xs[len(xs)-1] != 0.3 {
		t.Errorf("last value = %v, want exactly 0.3", xs[len(xs)-1])
	}
}

func TestSample(t *testing.T) {
	a := newAnalyzer(t, "x^2")
	s, err := a.Sample(0, -2, 2, 5)
	if err != nil {
		t.Fatal(err)
	}
	want := Series{X: []float64{-2, -1, 0, 1, 2}, Y: []float64{4, 1, 0, 1, 4}}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("Sample mismatch (-want +got):\n%s", diff)
	}
	if s.Len() != 5 {
		t.Errorf("Len = %d", s.Len())
	}
	if x, y := s.XY(4); x != 2 || y != 4 {
		t.Errorf("XY(4) = (%v, %v)", x, y)
	}
}

func TestSampleMarksFailuresNaN(t *testing.T) {
	a := newAnalyzer(t, "log(x)")
	s, err := a.Sample(0, -1, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(s.Y[0]) || !math.IsNaN(s.Y[1]) || s.Y[2] != 0 {
		t.Errorf("Y = %v, want [NaN NaN 0]", s.Y)
	}
	if s.Finite() != 1 {
		t.Errorf("Finite = %d, want 1", s.Finite())
	}
}

func TestSampleErrors(t *testing.T) {
	a := newAnalyzer(t, "x")
	tests := []struct {
		name       string
		index      int
		xMin, xMax float64
		points     int
		code       ferrors.Code
	}{
		{"one point", 0, 0, 1, 1, ferrors.ErrCodeInvalidArgument},
		{"zero points", 0, 0, 1, 0, ferrors.ErrCodeInvalidArgument},
		{"reversed", 0, 1, 0, 10, ferrors.ErrCodeInvalidArgument},
		{"empty range", 0, 1, 1, 10, ferrors.ErrCodeInvalidArgument},
		{"infinite", 0, 0, math.Inf(1), 10, ferrors.ErrCodeInvalidArgument},
		{"undefined slot", 3, 0, 1, 10, ferrors.ErrCodeUndefinedSlot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Sample(tt.index, tt.xMin, tt.xMax, tt.points)
			if !ferrors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestSampleParallelMatchesSequential(t *testing.T) {
	a := newAnalyzer(t, "sin(x)/x + sqrt(x)")
	a.Workers = 1
	seq, err := a.Sample(0, -10, 10, 3*ParallelThreshold+7)
	if err != nil {
		t.Fatal(err)
	}
	a.Workers = 4
	par, err := a.Sample(0, -10, 10, 3*ParallelThreshold+7)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(seq, par, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("parallel sample differs (-seq +par):\n%s", diff)
	}
}

func TestSampleContextCancelled(t *testing.T) {
	a := newAnalyzer(t, "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		a.Workers = workers
		_, err := a.SampleContext(ctx, 0, 0, 1, 2*ParallelThreshold)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("workers=%d: error = %v, want context.Canceled", workers, err)
		}
	}
}

func TestStatistics(t *testing.T) {
	a := newAnalyzer(t, "sin(x)", "log(x)")

	s, err := a.Statistics(0, -math.Pi, math.Pi)
	if err != nil {
		t.Fatal(err)
	}
	if s.ValidCount != Resolution {
		t.Errorf("ValidCount = %d, want %d", s.ValidCount, Resolution)
	}
	if math.Abs(s.Mean) > 1e-6 {
		t.Errorf("Mean = %v, want ~0", s.Mean)
	}
	if math.Abs(s.Min+1) > 1e-4 || math.Abs(s.Max-1) > 1e-4 {
		t.Errorf("Min, Max = %v, %v; want ~-1, ~1", s.Min, s.Max)
	}

	empty, err := a.Statistics(1, -2, -1)
	if err != nil {
		t.Fatal(err)
	}
	if empty.ValidCount != 0 || !math.IsNaN(empty.Mean) || !math.IsNaN(empty.Min) ||
		!math.IsNaN(empty.Max) || !math.IsNaN(empty.StdDev) {
		t.Errorf("all-invalid statistics = %+v, want NaN fields", empty)
	}

	if _, err := a.Statistics(9, 0, 1); !ferrors.Is(err, ferrors.ErrCodeUndefinedSlot) {
		t.Errorf("undefined slot error = %v", err)
	}
}

func TestDescribeIsPopulation(t *testing.T) {
	s := Describe([]float64{1, 2, math.NaN(), 3, 4, math.Inf(1)})
	want := Stats{Min: 1, Max: 4, Mean: 2.5, StdDev: math.Sqrt(1.25), ValidCount: 4}
	if diff := cmp.Diff(want, s, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Describe mismatch (-want +got):\n%s", diff)
	}
}

func TestYRange(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name   string
		ys     []float64
		lo, hi float64
	}{
		{"spread", []float64{0, 5, 10}, -1, 11},
		{"flat", []float64{3, 3, nan}, 2, 4},
		{"nothing finite", []float64{nan, math.Inf(-1)}, FallbackYMin, FallbackYMax},
		{"empty", nil, FallbackYMin, FallbackYMax},
	}
	for _, tt := range tests {
		lo, hi := YRange(tt.ys)
		if math.Abs(lo-tt.lo) > 1e-12 || math.Abs(hi-tt.hi) > 1e-12 {
			t.Errorf("%s: YRange = [%v, %v], want [%v, %v]", tt.name, lo, hi, tt.lo, tt.hi)
		}
	}
}

func TestOptimalYRange(t *testing.T) {
	a := newAnalyzer(t, "2*x")
	lo, hi, err := a.OptimalYRange(0, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(lo+0.2) > 1e-12 || math.Abs(hi-2.2) > 1e-12 {
		t.Errorf("OptimalYRange = [%v, %v], want [-0.2, 2.2]", lo, hi)
	}
}
