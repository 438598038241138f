// Package mfd holds magnitude-frequency distributions.
//
// An MFD is a list of (magnitude, annual rate) bins. Magnitudes are bin centers.
package mfd

import (
	"errors"
	"fmt"
	"math"
)

// Bin is one magnitude bin with its annual occurrence rate.
type Bin struct {
	Mag  float64
	Rate float64
}

// MFD is anything that can enumerate its magnitude bins.
type MFD interface {
	Rates() []Bin
	Validate() error
}

// TruncatedGR is a Gutenberg-Richter distribution truncated to
// [MinMag, MaxMag] and discretized into BinWidth bins.
type TruncatedGR struct {
	MinMag   float64
	MaxMag   float64
	BinWidth float64
	AVal     float64
	BVal     float64
}

func (g TruncatedGR) Validate() error {
	if g.BinWidth <= 0 {
		return fmt.Errorf("mfd: bin width must be > 0, got %v", g.BinWidth)
	}
	if g.MinMag < 0 || g.MaxMag <= g.MinMag {
		return fmt.Errorf("mfd: need 0 <= min_mag < max_mag, got %v..%v", g.MinMag, g.MaxMag)
	}
	if g.MaxMag-g.MinMag < g.BinWidth {
		return errors.New("mfd: magnitude range narrower than one bin")
	}
	if g.BVal <= 0 {
		return fmt.Errorf("mfd: b value must be > 0, got %v", g.BVal)
	}
	return nil
}

// Rates returns bin centers from MinMag+w/2 up to MaxMag-w/2. The range is
// first snapped to multiples of the bin width.
func (g TruncatedGR) Rates() []Bin {
	w := g.BinWidth
	lo := math.Round(g.MinMag/w) * w
	hi := math.Round(g.MaxMag/w) * w
	n := int(math.Round((hi - lo) / w))
	out := make([]Bin, 0, n)
	for i := 0; i < n; i++ {
		mag := lo + (float64(i)+0.5)*w
		rate := math.Pow(10, g.AVal-g.BVal*(mag-w/2)) - math.Pow(10, g.AVal-g.BVal*(mag+w/2))
		out = append(out, Bin{Mag: mag, Rate: rate})
	}
	return out
}

// EvenlyDiscretized lists rates for magnitudes MinMag, MinMag+BinWidth, ...
type EvenlyDiscretized struct {
	MinMag      float64
	BinWidth    float64
	Occurrences []float64
}

func (e EvenlyDiscretized) Validate() error {
	if e.BinWidth <= 0 {
		return fmt.Errorf("mfd: bin width must be > 0, got %v", e.BinWidth)
	}
	if len(e.Occurrences) == 0 {
		return errors.New("mfd: no occurrence rates")
	}
	for i, r := range e.Occurrences {
		if r < 0 || math.IsNaN(r) {
			return fmt.Errorf("mfd: occurrence rate %d is negative: %v", i, r)
		}
	}
	return nil
}

func (e EvenlyDiscretized) Rates() []Bin {
	out := make([]Bin, len(e.Occurrences))
	for i, r := range e.Occurrences {
		out[i] = Bin{Mag: e.MinMag + float64(i)*e.BinWidth, Rate: r}
	}
	return out
}
