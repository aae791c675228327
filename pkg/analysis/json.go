package analysis

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// number is a float64 whose JSON form is null for NaN and ±Inf, which
// encoding/json refuses to marshal.
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if !finite(f) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

func (n *number) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*n = number(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = number(f)
	return nil
}

func toNumbers(fs []float64) []number {
	out := make([]number, len(fs))
	for i, f := range fs {
		out[i] = number(f)
	}
	return out
}

func fromNumbers(ns []number) []float64 {
	out := make([]float64, len(ns))
	for i, n := range ns {
		out[i] = float64(n)
	}
	return out
}

type seriesJSON struct {
	X []number `json:"x"`
	Y []number `json:"y"`
}

// MarshalJSON encodes undefined samples as null.
func (s Series) MarshalJSON() ([]byte, error) {
	return json.Marshal(seriesJSON{X: toNumbers(s.X), Y: toNumbers(s.Y)})
}

// UnmarshalJSON decodes null samples as NaN.
func (s *Series) UnmarshalJSON(b []byte) error {
	var raw seriesJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	s.X, s.Y = fromNumbers(raw.X), fromNumbers(raw.Y)
	return nil
}

type statsJSON struct {
	Min        number `json:"min"`
	Max        number `json:"max"`
	Mean       number `json:"mean"`
	StdDev     number `json:"stddev"`
	ValidCount int    `json:"valid_count"`
}

// MarshalJSON encodes the NaN fields of an empty summary as null.
func (s Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(statsJSON{
		Min:        number(s.Min),
		Max:        number(s.Max),
		Mean:       number(s.Mean),
		StdDev:     number(s.StdDev),
		ValidCount: s.ValidCount,
	})
}

// UnmarshalJSON decodes null fields as NaN.
func (s *Stats) UnmarshalJSON(b []byte) error {
	var raw statsJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = Stats{
		Min:        float64(raw.Min),
		Max:        float64(raw.Max),
		Mean:       float64(raw.Mean),
		StdDev:     float64(raw.StdDev),
		ValidCount: raw.ValidCount,
	}
	return nil
}
