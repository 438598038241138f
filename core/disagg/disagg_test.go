package disagg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seisdisagg-core/filters"
)

func TestDisaggregation(t *testing.T) {
	f := newFixture()
	edges, m, err := Disaggregation(f.request())
	require.NoError(t, err)

	assertEdges(t, []float64{3, 6, 9}, edges.Mag)
	assertEdges(t, []float64{0, 4, 8, 12, 16}, edges.Dist)
	assertEdges(t, []float64{9.6, 12, 14.4, 16.8, 19.2, 21.6, 24}, edges.Lon)
	assertEdges(t, []float64{43.2, 45.6, 48}, edges.Lat)
	assertEdges(t, []float64{-1, -1.0 / 3, 1.0 / 3, 1}, edges.Eps)
	assert.Equal(t, []string{"trt1", "trt2"}, edges.TRT)

	assert.Equal(t, Shape{2, 4, 6, 2, 3, 2}, m.Shape())
	assert.InDelta(t, 1, m.Sum(), 1e-12)
	assertCells(t, m, map[Index]float64{
		{0, 2, 4, 0, 0, 0}: 0.0912090,
		{0, 2, 4, 0, 1, 0}: 0.1918015,
		{0, 2, 4, 0, 2, 0}: 0.1195847,
		{0, 2, 5, 0, 0, 0}: 0.1320546,
		{0, 2, 5, 0, 1, 0}: 0.2095765,
		{0, 2, 5, 0, 2, 0}: 0.1396779,
		{0, 3, 5, 0, 1, 0}: 0.0441073,
		{0, 3, 5, 0, 2, 0}: 0.0008821,
		{1, 1, 0, 0, 1, 1}: 0.0106927,
		{1, 1, 0, 0, 2, 1}: 0.0042771,
		{1, 1, 0, 1, 0, 1}: 0.0080195,
		{1, 1, 0, 1, 1, 1}: 0.0400975,
		{1, 1, 0, 1, 2, 1}: 0.0080195,
	}, 1e-6)
}

func TestDisaggregation_Idempotent(t *testing.T) {
	f := newFixture()
	e1, m1, err := Disaggregation(f.request())
	require.NoError(t, err)
	e2, m2, err := Disaggregation(f.request())
	require.NoError(t, err)

	assert.Equal(t, e1, e2)
	assert.Equal(t, m1.Values(), m2.Values())
}

func TestDisaggregation_NoRuptures(t *testing.T) {
	f := newFixture()
	req := f.request()
	req.RuptureSiteFilter = filters.RuptureSiteDistance(1)

	edges, m, err := Disaggregation(req)
	assert.ErrorIs(t, err, ErrNoRuptures)
	assert.Nil(t, edges)
	assert.Nil(t, m)
}

func TestDisaggregation_NoContribution(t *testing.T) {
	f := newFixture()
	for r := range f.model.poes {
		f.model.poes[r] = []float64{0, 0, 0}
	}
	edges, m, err := Disaggregation(f.request())
	assert.ErrorIs(t, err, ErrNoContribution)
	require.NotNil(t, edges)
	require.NotNil(t, m)
	assert.Equal(t, edges.Shape(), m.Shape())
	assert.Zero(t, m.Sum())
}

func TestDisaggregation_InvalidWidth(t *testing.T) {
	f := newFixture()
	req := f.request()
	req.CoordBinWidth = 0
	_, _, err := Disaggregation(req)
	assert.ErrorIs(t, err, ErrInvalidBinWidth)
}

func TestDisaggregation_AcrossAntimeridian(t *testing.T) {
	f := newFixture()
	lons := []float64{179.5, -179.5, 180, 178.2}
	for i, r := range f.src1.rups[:len(lons)] {
		r.(*fakeRupture).surf.lon = lons[i]
	}
	for i, r := range f.src1.rups[len(lons):] {
		r.(*fakeRupture).surf.lon = lons[i%len(lons)]
	}
	for _, r := range f.src2.rups {
		r.(*fakeRupture).surf.lon = -179.9
	}

	req := f.request()
	req.CoordBinWidth = 1
	edges, m, err := Disaggregation(req)
	require.NoError(t, err)
	assertEdges(t, []float64{178, 179, -180, -179}, edges.Lon)
	assert.InDelta(t, 1, m.Sum(), 1e-12)

	lon := LonLatPMF(m)
	assert.Equal(t, []int{3, len(edges.Lat) - 1}, lon.Shape)
}

func TestDisaggregation_CoordWidthTooWide(t *testing.T) {
	f := newFixture()
	for _, r := range append(f.src1.rups, f.src2.rups...) {
		r.(*fakeRupture).surf.lon = 3
	}
	for _, w := range []float64{180, 190} {
		req := f.request()
		req.CoordBinWidth = w
		_, _, err := Disaggregation(req)
		assert.ErrorIs(t, err, ErrInvalidBinWidth, "width %v", w)
	}
}

func TestDisaggregation_NonFiniteDistance(t *testing.T) {
	f := newFixture()
	f.src1.rups[1].(*fakeRupture).surf.dist = math.NaN()
	assert.NotPanics(t, func() {
		_, _, err := Disaggregation(f.request())
		assert.ErrorIs(t, err, ErrContractViolation)
	})
}
