package viewport

import (
	"math"
	"testing"

	ferrors "github.com/matzehuels/funcplot/pkg/errors"
)

// xys is a minimal XYer for tests.
type xys struct{ x, y []float64 }

func (s xys) Len() int                    { return len(s.x) }
func (s xys) XY(i int) (float64, float64) { return s.x[i], s.y[i] }

func mustNew(t *testing.T, xMin, xMax, yMin, yMax float64, w, h int) *Viewport {
	t.Helper()
	v, err := New(xMin, xMax, yMin, yMax, w, h)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return v
}

func TestDefault(t *testing.T) {
	v := Default()
	xMin, xMax, yMin, yMax := v.Bounds()
	if xMin != -10 || xMax != 10 || yMin != -10 || yMax != 10 {
		t.Errorf("Bounds = %v %v %v %v", xMin, xMax, yMin, yMax)
	}
	xs, ys := v.Scale()
	if xs != 40 || ys != 30 {
		t.Errorf("Scale = %v, %v; want 40, 30", xs, ys)
	}
}

func TestMapping(t *testing.T) {
	v := mustNew(t, -10, 10, -5, 5, 800, 600)

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"left edge", v.ToScreenX(-10), 0},
		{"right edge", v.ToScreenX(10), 800},
		{"center x", v.ToScreenX(0), 400},
		{"top edge", v.ToScreenY(5), 0},
		{"bottom edge", v.ToScreenY(-5), 600},
		{"center y", v.ToScreenY(0), 300},
		{"far off screen", v.ToScreenX(1e300), pixelLimit},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}

	ox, oy := v.Origin()
	if ox != 400 || oy != 300 {
		t.Errorf("Origin = (%d, %d), want (400, 300)", ox, oy)
	}
}

func TestRoundTrip(t *testing.T) {
	viewports := []*Viewport{
		mustNew(t, -10, 10, -10, 10, 800, 600),
		mustNew(t, -0.001, 0.002, 1e3, 1e4, 317, 211),
		mustNew(t, 3, 1e6, -1e-6, 1e-6, 1920, 1080),
	}
	for _, v := range viewports {
		xMin, xMax, yMin, yMax := v.Bounds()
		xScale, yScale := v.Scale()
		for i := 0; i <= 50; i++ {
			mx := xMin + (xMax-xMin)*float64(i)/50
			my := yMin + (yMax-yMin)*float64(i)/50

			if got := v.ToMathX(v.ToScreenX(mx)); math.Abs(got-mx) > 1/xScale {
				t.Errorf("%v: x round trip %v -> %v exceeds one pixel", v, mx, got)
			}
			if got := v.ToMathY(v.ToScreenY(my)); math.Abs(got-my) > 1/yScale {
				t.Errorf("%v: y round trip %v -> %v exceeds one pixel", v, my, got)
			}
		}
	}
}

func TestSetterIdempotence(t *testing.T) {
	v := Default()
	_ = v.SetRange(-3, 7, -2, 2)
	x1, y1 := v.Scale()
	_ = v.SetRange(-3, 7, -2, 2)
	x2, y2 := v.Scale()
	if x1 != x2 || y1 != y2 {
		t.Errorf("SetRange not idempotent: (%v, %v) vs (%v, %v)", x1, y1, x2, y2)
	}

	_ = v.SetScreenSize(640, 480)
	x1, y1 = v.Scale()
	_ = v.SetScreenSize(640, 480)
	x2, y2 = v.Scale()
	if x1 != x2 || y1 != y2 {
		t.Errorf("SetScreenSize not idempotent: (%v, %v) vs (%v, %v)", x1, y1, x2, y2)
	}
	if x1 != 64 || y1 != 120 {
		t.Errorf("Scale = (%v, %v), want (64, 120)", x1, y1)
	}
}

func TestRejectsDegenerate(t *testing.T) {
	v := Default()
	before := v.String()

	bad := [][4]float64{
		{1, 1, 0, 1},
		{2, 1, 0, 1},
		{0, 1, 5, 5},
		{0, 1, 1, 0},
		{math.NaN(), 1, 0, 1},
		{0, math.Inf(1), 0, 1},
	}
	for _, r := range bad {
		err := v.SetRange(r[0], r[1], r[2], r[3])
		if !ferrors.Is(err, ferrors.ErrCodeInvalidArgument) {
			t.Errorf("SetRange(%v) error = %v, want INVALID_ARGUMENT", r, err)
		}
	}
	if err := v.SetScreenSize(0, 10); err == nil {
		t.Error("SetScreenSize(0, 10) should fail")
	}
	if _, err := New(0, 0, 0, 1, 10, 10); err == nil {
		t.Error("New with degenerate x range should fail")
	}
	if v.String() != before {
		t.Errorf("rejected mutations changed the viewport: %s -> %s", before, v)
	}
}

func TestIsVisible(t *testing.T) {
	v := mustNew(t, -1, 1, -1, 1, 100, 100)
	if !v.IsVisible(1, -1) {
		t.Error("corners are inclusive")
	}
	if v.IsVisible(1.0001, 0) || v.IsVisible(0, math.NaN()) {
		t.Error("points outside the range must not be visible")
	}
}
