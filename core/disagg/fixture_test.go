package disagg

import (
	"fmt"

	"seisdisagg-core/geo"
	"seisdisagg-core/gsim"
	"seisdisagg-core/imt"
	"seisdisagg-core/site"
	"seisdisagg-core/source"
	"seisdisagg-core/tom"
)

type fakeSurface struct{ dist, lon, lat float64 }

func (s fakeSurface) JoynerBooreDistance(*site.Site) float64 { return s.dist }
func (s fakeSurface) RuptureDistance(*site.Site) float64     { return s.dist }
func (s fakeSurface) ClosestPoint(*site.Site) geo.Point      { return geo.Point{Lon: s.lon, Lat: s.lat} }

type fakeRupture struct {
	mag, prob float64
	surf      fakeSurface
}

func newRupture(mag, prob, dist, lon, lat float64) *fakeRupture {
	return &fakeRupture{mag: mag, prob: prob, surf: fakeSurface{dist, lon, lat}}
}

func (r *fakeRupture) Magnitude() float64                { return r.mag }
func (r *fakeRupture) Rake() float64                     { return 0 }
func (r *fakeRupture) Hypocenter() geo.Point             { return geo.Point{} }
func (r *fakeRupture) Surface() source.Surface           { return r.surf }
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

// fakeGSIM hands back canned per-band probabilities and checks it was asked
// for the configured level.
type fakeGSIM struct {
	iml   float64
	imt   imt.IMT
	trunc float64
	nEps  int
	poes  map[source.Rupture][]float64
}

func (g *fakeGSIM) MakeContexts(_ *site.Site, rup source.Rupture) (gsim.SitesContext, gsim.RuptureContext, gsim.DistancesContext) {
	return gsim.SitesContext{}, gsim.RuptureContext{Rupture: rup}, gsim.DistancesContext{}
}

func (g *fakeGSIM) PoEs(gsim.SitesContext, gsim.RuptureContext, gsim.DistancesContext, imt.IMT, []float64, float64) ([]float64, error) {
	return nil, fmt.Errorf("not used")
}

func (g *fakeGSIM) DisaggregatePoE(_ gsim.SitesContext, rctx gsim.RuptureContext, _ gsim.DistancesContext,
	m imt.IMT, iml, trunc float64, nEps int) ([]float64, error) {
	if m != g.imt || iml != g.iml || trunc != g.trunc || nEps != g.nEps {
		return nil, fmt.Errorf("unexpected call (%v, %v, %v, %d)", m, iml, trunc, nEps)
	}
	p, ok := g.poes[rctx.Rupture]
	if !ok {
		return nil, fmt.Errorf("unknown rupture")
	}
	return p, nil
}

type fixture struct {
	src1, src2 *fakeSource
	model      *fakeGSIM
	tom        tom.OccurrenceModel
	site       *site.Site
}

type rupPoes struct {
	poes []float64
	rup  *fakeRupture
}

func newFixture() *fixture {
	set1 := []rupPoes{
		{[]float64{0, 0, 0}, newRupture(5, 0.1, 3, 22, 44)},
		{[]float64{0.1, 0.2, 0.1}, newRupture(5, 0.2, 11, 22, 44)},
		{[]float64{0, 0, 0.3}, newRupture(5, 0.01, 12, 22, 45)},
		{[]float64{0, 0.05, 0.001}, newRupture(5, 0.33, 13, 22, 45)},
		{[]float64{0, 0, 0}, newRupture(9, 0.4, 14, 21, 44)},
		{[]float64{0, 0, 0.02}, newRupture(5, 0.05, 11, 21, 44)},
		{[]float64{0.04, 0.1, 0.04}, newRupture(5, 0.53, 11, 21, 45)},
		{[]float64{0.2, 0.3, 0.2}, newRupture(5, 0.066, 10, 21, 45)},
		{[]float64{0.3, 0.4, 0.3}, newRupture(6, 0.1, 12, 22, 44)},
		{[]float64{0, 0, 0.1}, newRupture(6, 0.1, 12, 21, 44)},
		{[]float64{0, 0, 0}, newRupture(6, 0.1, 11, 22, 45)},
	}
	set2 := []rupPoes{
		{[]float64{0, 0.1, 0.04}, newRupture(8, 0.04, 5, 11, 45)},
		{[]float64{0.1, 0.5, 0.1}, newRupture(7, 0.03, 5, 11, 46)},
	}
	occ, err := tom.NewPoisson(10)
	if err != nil {
		panic(err)
	}
	f := &fixture{
		tom:   occ,
		site:  site.New(0, 0, 2, false, 4, 5),
		model: &fakeGSIM{iml: 0.1, imt: imt.PGA(), trunc: 1, nEps: 3, poes: map[source.Rupture][]float64{}},
	}
	mk := func(id, trt string, set []rupPoes) *fakeSource {
		s := &fakeSource{id: id, trt: trt, tom: occ}
		for _, rp := range set {
			s.rups = append(s.rups, rp.rup)
			f.model.poes[rp.rup] = rp.poes
		}
		return s
	}
	f.src1 = mk("src1", "trt1", set1)
	f.src2 = mk("src2", "trt2", set2)
	return f
}

func (f *fixture) request() Request {
	return Request{
		Sources:         []source.Source{f.src1, f.src2},
		Site:            f.site,
		IMT:             f.model.imt,
		IML:             f.model.iml,
		GSIMs:           map[string]gsim.GroundMotionModel{"trt1": f.model, "trt2": f.model},
		TOM:             f.tom,
		TruncationLevel: f.model.trunc,
		NEpsilons:       f.model.nEps,
		MagBinWidth:     3,
		DistBinWidth:    4,
		CoordBinWidth:   2.4,
	}
}

// binnedData is a hand-built collection used by the assembler tests.
func binnedData() (*BinData, *BinEdges) {
	data := &BinData{
		Mags:  []float64{5, 9, 5, 5, 9, 7, 5, 5, 6, 6, 9.2, 8, 7},
		Dists: []float64{3, 1, 5, 13, 14, 6, 12, 10, 7, 4, 11, 13.4, 5},
		Lons:  []float64{22, 21, 20, 21, 21, 22, 21, 21, 20.3, 21, 20.5, 21.5, 22},
		Lats:  []float64{44, 44, 45, 45, 44, 44, 45, 45, 44, 44, 45, 45, 43.3},
		JointProbs: [][]float64{
			{0, 0, 0},
			{0.02, 0.04, 0.02},
			{0, 0, 0.003},
			{0, 0.0165, 0.00033},
			{0, 0, 0},
			{0, 0, 0.001},
			{0.0212, 0.053, 0.0212},
			{0.0132, 0.0198, 0.0132},
			{0.03, 0.04, 0.03},
			{0, 0, 0.01},
			{0, 0, 0},
			{0, 0.004, 0.0016},
			{0.003, 0.015, 0.003},
		},
		TRTs:      []int{0, 0, 1, 1, 0, 1, 0, 1, 0, 0, 0, 1, 1},
		TRTBins:   []string{"trt1", "trt2"},
		NEpsilons: 3,
	}
	edges := &BinEdges{
		Mag:  []float64{4, 6, 8, 10},
		Dist: []float64{0, 4, 8, 12, 16},
		Lon:  []float64{19.2, 21, 22.8},
		Lat:  []float64{43.2, 44.4, 45.6},
		Eps:  []float64{-1.2, -0.4, 0.4, 1.2},
		TRT:  data.TRTBins,
	}
	return data, edges
}
