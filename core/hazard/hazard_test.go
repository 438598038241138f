package hazard

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seisdisagg-core/filters"
	"seisdisagg-core/geo"
	"seisdisagg-core/gsim"
	"seisdisagg-core/imt"
	"seisdisagg-core/site"
	"seisdisagg-core/source"
	"seisdisagg-core/tom"
)

type fakeRupture struct{ prob float64 }

func (r *fakeRupture) Magnitude() float64                { return 6 }
func (r *fakeRupture) Rake() float64                     { return 0 }
func (r *fakeRupture) Hypocenter() geo.Point             { return geo.Point{} }
func (r *fakeRupture) Surface() source.Surface           { return nil }
func (r *fakeRupture) Probability() float64              { return r.prob }
func (r *fakeRupture) ProbabilityOneOccurrence() float64 { return r.prob }

type fakeSource struct {
	id, trt string
	rups    []source.Rupture
	tom     tom.OccurrenceModel
}

func (s *fakeSource) ID() string                 { return s.id }
func (s *fakeSource) TectonicRegionType() string { return s.trt }
func (s *fakeSource) Ruptures(m tom.OccurrenceModel) []source.Rupture {
	if m != s.tom {
		panic("unexpected occurrence model")
	}
	return s.rups
}

type fakeGSIM struct {
	trunc float64
	poes  map[source.Rupture]map[imt.IMT][]float64
}

func (g *fakeGSIM) MakeContexts(_ *site.Site, rup source.Rupture) (gsim.SitesContext, gsim.RuptureContext, gsim.DistancesContext) {
	return gsim.SitesContext{}, gsim.RuptureContext{Rupture: rup}, gsim.DistancesContext{}
}

func (g *fakeGSIM) PoEs(_ gsim.SitesContext, rctx gsim.RuptureContext, _ gsim.DistancesContext,
	m imt.IMT, imls []float64, trunc float64) ([]float64, error) {
	if trunc != g.trunc {
		return nil, fmt.Errorf("truncation %v, want %v", trunc, g.trunc)
	}
	p := g.poes[rctx.Rupture][m]
	if len(p) != len(imls) {
		return nil, fmt.Errorf("no poes for %s", m)
	}
	return p, nil
}

func (g *fakeGSIM) DisaggregatePoE(gsim.SitesContext, gsim.RuptureContext, gsim.DistancesContext,
	imt.IMT, float64, float64, int) ([]float64, error) {
	return nil, fmt.Errorf("not used")
}

func fixture(t *testing.T) Request {
	t.Helper()
	const trunc = 3.4
	poisson, err := tom.NewPoisson(49.2)
	require.NoError(t, err)

	rup11, rup12, rup21 := &fakeRupture{0.23}, &fakeRupture{0.15}, &fakeRupture{0.04}
	src1 := &fakeSource{id: "s1", trt: "Active Shallow Crust", rups: []source.Rupture{rup11, rup12}, tom: poisson}
	src2 := &fakeSource{id: "s2", trt: "Volcanic", rups: []source.Rupture{rup21}, tom: poisson}

	gsim1 := &fakeGSIM{trunc: trunc, poes: map[source.Rupture]map[imt.IMT][]float64{
		rup11: {imt.PGA(): {0.1, 0.05, 0.03}, imt.PGD(): {0.4, 0.33}},
		rup12: {imt.PGA(): {0.12, 0.052, 0.035}, imt.PGD(): {0.38, 0.332}},
	}}
	gsim2 := &fakeGSIM{trunc: trunc, poes: map[source.Rupture]map[imt.IMT][]float64{
		rup21: {imt.PGA(): {0.5, 0.3, 0.2}, imt.PGD(): {0.24, 0.08}},
	}}
	return Request{
		Sources: []source.Source{src1, src2},
		Site:    site.New(0, 0, 760, false, 40, 1),
		IMTs:    map[imt.IMT][]float64{imt.PGA(): {1, 2, 3}, imt.PGD(): {2, 4}},
		GSIMs: map[string]gsim.GroundMotionModel{
			"Active Shallow Crust": gsim1,
			"Volcanic":             gsim2,
		},
		TOM:             poisson,
		TruncationLevel: trunc,
	}
}

func TestCurves(t *testing.T) {
	curves, err := Curves(fixture(t))
	require.NoError(t, err)

	want := map[imt.IMT][]float64{
		imt.PGA(): {0.0639157, 0.03320212, 0.02145989},
		imt.PGD(): {0.16146619, 0.1336553},
	}
	if diff := cmp.Diff(want, curves, cmpopts.EquateApprox(0, 1e-7)); diff != "" {
		t.Fatalf("curves mismatch (-want +got):\n%s", diff)
	}
}

func TestCurvesWithSourceFilter(t *testing.T) {
	req := fixture(t)
	req.SourceSiteFilter = filters.SourceSiteByTRT("Volcanic")
	curves, err := Curves(req)
	require.NoError(t, err)
	// only rup21: 1 - 0.96^poe
	assert.InDelta(t, 0.0202041, curves[imt.PGA()][0], 1e-7)
}

func TestCurvesErrors(t *testing.T) {
	req := fixture(t)
	delete(req.GSIMs, "Volcanic")
	_, err := Curves(req)
	assert.ErrorContains(t, err, "no ground motion model")

	req = fixture(t)
	req.Site = nil
	_, err = Curves(req)
	assert.Error(t, err)

	req = fixture(t)
	req.IMTs = nil
	_, err = Curves(req)
	assert.Error(t, err)
}
