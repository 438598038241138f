// Package pipeline runs a disaggregation request over contiguous source
// shards with a bounded worker pool, then bins once and merges the partial
// matrices.
//
// The only inputs are a disagg.Request and a Config; the core functions do
// all the numerics, so the pipeline stays orchestration-only and testable
// against disagg.Disaggregation.
package pipeline
