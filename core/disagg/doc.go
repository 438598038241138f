// Package disagg decomposes the probability of exceeding an intensity level
// at a site into contributions from bins of magnitude, distance, longitude,
// latitude, epsilon and tectonic region type.
//
// The calculation runs in three steps:
//
//	CollectBinsData   one record per surviving rupture
//	DefineBins        bin edges per axis, derived from the records
//	ArrangeDataInBins dense 6-D matrix, normalized to unit mass
//
// Contributions falling in the same cell are combined as independent events,
// 1-(1-a)(1-b), never summed. Marginals (MagPMF, LonLatPMF, ...) collapse axes
// with the same rule.
//
// Numeric bins are closed on the right: a value equal to an interior edge
// belongs to the lower bin, and the first bin also includes its left edge.
//
// This package has no app/output deps and never logs.
package disagg
