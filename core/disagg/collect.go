package disagg

import (
	"fmt"
	"math"

	"seisdisagg-core/filters"
	"seisdisagg-core/geo"
)

// BinData holds one record per surviving rupture. All per-rupture slices have
// the same length; TRTs index into TRTBins, which lists region types in the
// order they were first seen.
type BinData struct {
	Mags       []float64
	Dists      []float64 // Joyner-Boore distance, km
	Lons       []float64 // normalized to [-180, 180)
	Lats       []float64
	JointProbs [][]float64 // P(one occurrence) x P(exceed within band), per epsilon band
	TRTs       []int
	TRTBins    []string
	NEpsilons  int
}

// Len is the number of rupture records.
func (d *BinData) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Mags)
}

func (d *BinData) trtIndex(trt string, seen map[string]int) int {
	if i, ok := seen[trt]; ok {
		return i
	}
	i := len(d.TRTBins)
	seen[trt] = i
	d.TRTBins = append(d.TRTBins, trt)
	return i
}

func (d *BinData) add(mag, dist, lon, lat float64, joint []float64, trt int) {
	d.Mags = append(d.Mags, mag)
	d.Dists = append(d.Dists, dist)
	d.Lons = append(d.Lons, lon)
	d.Lats = append(d.Lats, lat)
	d.JointProbs = append(d.JointProbs, joint)
	d.TRTs = append(d.TRTs, trt)
}

// validateCoords checks that the four coordinate slices line up and hold
// finite values, which is all DefineBins reads.
func (d *BinData) validateCoords() error {
	if err := d.checkLens(false); err != nil {
		return err
	}
	for _, ax := range []struct {
		name string
		vs   []float64
	}{{"magnitude", d.Mags}, {"distance", d.Dists}, {"longitude", d.Lons}, {"latitude", d.Lats}} {
		for r, v := range ax.vs {
			if !isFinite(v) {
				return fmt.Errorf("%w: record %d: non-finite %s %v", ErrContractViolation, r, ax.name, v)
			}
		}
	}
	return nil
}

// validate checks that every per-record slice has one entry per record.
func (d *BinData) validate() error { return d.checkLens(true) }

func (d *BinData) checkLens(all bool) error {
	if d == nil {
		return fmt.Errorf("%w: nil data", ErrShapeMismatch)
	}
	n := d.Len()
	if len(d.Dists) != n || len(d.Lons) != n || len(d.Lats) != n {
		return fmt.Errorf("%w: ragged coordinate records", ErrShapeMismatch)
	}
	if all && (len(d.JointProbs) != n || len(d.TRTs) != n) {
		return fmt.Errorf("%w: ragged records", ErrShapeMismatch)
	}
	return nil
}

// CollectBinsData visits every (source, rupture) pair that survives the
// request filters and records its bin coordinates and per-band joint
// probability. No surviving rupture yields empty data and no error.
func CollectBinsData(req Request) (*BinData, error) {
	if err := req.validateCollect(); err != nil {
		return nil, err
	}
	ssf, rsf := req.filters()

	data := &BinData{NEpsilons: req.NEpsilons}
	seen := map[string]int{}

	pairs := make([]filters.SourceSite, len(req.Sources))
	for i, src := range req.Sources {
		pairs[i] = filters.SourceSite{Source: src, Site: req.Site}
	}
	for _, ss := range ssf(pairs) {
		if ss.Site == nil {
			continue
		}
		src := ss.Source
		trt := src.TectonicRegionType()
		model, ok := req.GSIMs[trt]
		if !ok || model == nil {
			return nil, fmt.Errorf("%w %q (source %q)", ErrMissingGSIM, trt, src.ID())
		}

		rups := src.Ruptures(req.TOM)
		rpairs := make([]filters.RuptureSite, len(rups))
		for i, r := range rups {
			rpairs[i] = filters.RuptureSite{Rupture: r, Site: ss.Site}
		}
		for _, rs := range rsf(rpairs) {
			if rs.Site == nil {
				continue
			}
			rup := rs.Rupture
			sctx, rctx, dctx := model.MakeContexts(rs.Site, rup)
			poes, err := model.DisaggregatePoE(sctx, rctx, dctx, req.IMT, req.IML, req.TruncationLevel, req.NEpsilons)
			if err != nil {
				return nil, fmt.Errorf("source %q: %w", src.ID(), err)
			}
			if len(poes) != req.NEpsilons {
				return nil, fmt.Errorf("%w: source %q: model returned %d bands, want %d",
					ErrContractViolation, src.ID(), len(poes), req.NEpsilons)
			}
			p := rup.ProbabilityOneOccurrence()
			if !isProb(p) {
				return nil, fmt.Errorf("%w: source %q: occurrence probability %v", ErrContractViolation, src.ID(), p)
			}
			joint := make([]float64, len(poes))
			for k, poe := range poes {
				if !isProb(poe) {
					return nil, fmt.Errorf("%w: source %q: band %d probability %v", ErrContractViolation, src.ID(), k, poe)
				}
				joint[k] = p * poe
			}

			surf := rup.Surface()
			pt := surf.ClosestPoint(rs.Site)
			mag, dist := rup.Magnitude(), surf.JoynerBooreDistance(rs.Site)
			for _, c := range []struct {
				name string
				v    float64
			}{{"magnitude", mag}, {"distance", dist}, {"longitude", pt.Lon}, {"latitude", pt.Lat}} {
				if !isFinite(c.v) {
					return nil, fmt.Errorf("%w: source %q: non-finite %s %v", ErrContractViolation, src.ID(), c.name, c.v)
				}
			}
			data.add(mag, dist, geo.NormalizeLon(pt.Lon), pt.Lat, joint, data.trtIndex(trt, seen))
		}
	}
	return data, nil
}

// MergeBinData concatenates partial collections in order, re-indexing region
// types so the result matches a single collection over the same sources.
// Rows of JointProbs are shared with the inputs.
func MergeBinData(parts ...*BinData) (*BinData, error) {
	out := &BinData{}
	seen := map[string]int{}
	for pi, part := range parts {
		if part == nil {
			continue
		}
		switch {
		case out.NEpsilons == 0:
			out.NEpsilons = part.NEpsilons
		case part.NEpsilons != out.NEpsilons:
			return nil, fmt.Errorf("%w: part %d has %d epsilon bands, want %d",
				ErrShapeMismatch, pi, part.NEpsilons, out.NEpsilons)
		}
		if err := part.validate(); err != nil {
			return nil, fmt.Errorf("part %d: %w", pi, err)
		}
		for r := 0; r < part.Len(); r++ {
			t := part.TRTs[r]
			if t < 0 || t >= len(part.TRTBins) {
				return nil, fmt.Errorf("%w: part %d record %d: region index %d", ErrOutOfRange, pi, r, t)
			}
			out.add(part.Mags[r], part.Dists[r], part.Lons[r], part.Lats[r],
				part.JointProbs[r], out.trtIndex(part.TRTBins[t], seen))
		}
	}
	return out, nil
}

func isProb(p float64) bool { return p >= 0 && p <= 1 }

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
