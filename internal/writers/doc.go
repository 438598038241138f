// Package writers turns disaggregation reports and hazard curves into
// serialized outputs.
//
// Design:
//   - Writers own all presentation knowledge (text, TSV, JSON, JSONL).
//   - The pipeline stays orchestration-only and never formats anything.
//   - JSON/JSONL go through pkg/api (v1) for a stable wire format.
package writers
