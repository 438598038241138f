package disagg

// Disaggregation collects, bins and normalizes in one call. With no
// surviving ruptures it returns ErrNoRuptures. When ruptures survive but
// none contributes, it returns valid edges, a zero matrix and
// ErrNoContribution.
func Disaggregation(req Request) (*BinEdges, *Matrix, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	data, err := CollectBinsData(req)
	if err != nil {
		return nil, nil, err
	}
	if data.Len() == 0 {
		return nil, nil, ErrNoRuptures
	}
	edges, err := DefineBins(data, req.MagBinWidth, req.DistBinWidth, req.CoordBinWidth,
		req.TruncationLevel, req.NEpsilons)
	if err != nil {
		return nil, nil, err
	}
	m, err := ArrangeDataInBins(data, edges)
	if err != nil && m == nil {
		return nil, nil, err
	}
	return edges, m, err
}
