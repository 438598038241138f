package output

// CellTSVHeader is the header row of cell listings (TSV and text).
const CellTSVHeader = "mag_lo\tmag_hi\tdist_lo\tdist_hi\tlon_lo\tlon_hi\tlat_lo\tlat_hi\teps_lo\teps_hi\ttrt\tprob"

// CurveTSVHeader is the header row of hazard-curve listings.
const CurveTSVHeader = "imt\timl\tpoe"
