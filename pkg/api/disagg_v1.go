// pkg/api/disagg_v1.go
package api

// Schema identifiers carried in every top-level document.
const (
	DisaggregationSchemaV1 = "seisdisagg/disaggregation/v1"
	CurvesSchemaV1         = "seisdisagg/curves/v1"
)

// Status values of DisaggregationV1.
const (
	StatusOK             = "ok"
	StatusNoContribution = "no_contribution"
)

// DisaggregationV1 is the stable JSON schema for one disaggregation run.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type DisaggregationV1 struct {
	Schema          string   `json:"schema"`
	Scenario        string   `json:"scenario"`
	Site            SiteV1   `json:"site"`
	IMT             string   `json:"imt"`
	IML             float64  `json:"iml"`
	TimeSpan        float64  `json:"time_span"`
	TruncationLevel float64  `json:"truncation_level"`
	Ruptures        int      `json:"ruptures"`
	Status          string   `json:"status"` // "ok" | "no_contribution"
	Edges           EdgesV1  `json:"edges"`
	Shape           []int    `json:"shape"` // mag, dist, lon, lat, eps, trt
	PMFs            []PMFV1  `json:"pmfs,omitempty"`
	Cells           []CellV1 `json:"cells,omitempty"` // non-zero cells only
	RunID           int64    `json:"run_id,omitempty"`
}

type SiteV1 struct {
	Lon  float64 `json:"lon"`
	Lat  float64 `json:"lat"`
	Vs30 float64 `json:"vs30"`
}

// EdgesV1 lists bin edges per axis; lon edges are in [-180, 180) and wrap
// across the antimeridian when needed.
type EdgesV1 struct {
	Mag  []float64 `json:"mag"`
	Dist []float64 `json:"dist"`
	Lon  []float64 `json:"lon"`
	Lat  []float64 `json:"lat"`
	Eps  []float64 `json:"eps"`
	TRT  []string  `json:"trt"`
}

// PMFV1 is one marginal; Values are row-major over Axes.
type PMFV1 struct {
	Name   string    `json:"name"`
	Axes   []string  `json:"axes"`
	Shape  []int     `json:"shape"`
	Values []float64 `json:"values"`
}

// CellV1 is one matrix cell addressed by bin indices. It is also the JSONL
// line schema.
type CellV1 struct {
	Mag  int     `json:"mag"`
	Dist int     `json:"dist"`
	Lon  int     `json:"lon"`
	Lat  int     `json:"lat"`
	Eps  int     `json:"eps"`
	TRT  int     `json:"trt"`
	Prob float64 `json:"prob"`
}

// CurvesV1 is the stable JSON schema for hazard curves at one site.
type CurvesV1 struct {
	Schema   string          `json:"schema"`
	Scenario string          `json:"scenario"`
	Site     SiteV1          `json:"site"`
	TimeSpan float64         `json:"time_span"`
	Curves   []HazardCurveV1 `json:"curves"`
}

type HazardCurveV1 struct {
	IMT    string    `json:"imt"`
	Levels []float64 `json:"levels"`
	PoEs   []float64 `json:"poes"`
}
