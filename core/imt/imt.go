// Package imt names intensity measure types.
package imt

import (
	"fmt"
	"strconv"
	"strings"
)

// IMT is an intensity measure type. Period is only meaningful for SA.
// The struct is comparable and usable as a map key.
type IMT struct {
	Name   string
	Period float64
}

// Names of the supported types.
const (
	NamePGA = "PGA"
	NamePGV = "PGV"
	NamePGD = "PGD"
	NameSA  = "SA"
)

func PGA() IMT { return IMT{Name: NamePGA} }
func PGV() IMT { return IMT{Name: NamePGV} }
func PGD() IMT { return IMT{Name: NamePGD} }

// SA is spectral acceleration at the given period (s).
func SA(period float64) IMT { return IMT{Name: NameSA, Period: period} }

// String renders PGA, PGV, PGD or SA(0.2).
func (m IMT) String() string {
	if m.Name == NameSA {
		return "SA(" + strconv.FormatFloat(m.Period, 'g', -1, 64) + ")"
	}
	return m.Name
}

// Parse is the inverse of String. It is case-insensitive.
func Parse(s string) (IMT, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	switch u {
	case NamePGA:
		return PGA(), nil
	case NamePGV:
		return PGV(), nil
	case NamePGD:
		return PGD(), nil
	}
	if strings.HasPrefix(u, "SA(") && strings.HasSuffix(u, ")") {
		p, err := strconv.ParseFloat(u[3:len(u)-1], 64)
		if err != nil || p <= 0 {
			return IMT{}, fmt.Errorf("imt: bad SA period in %q", s)
		}
		return SA(p), nil
	}
	return IMT{}, fmt.Errorf("imt: unknown intensity measure type %q", s)
}
