// internal/integration/integration_test.go
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"seisdisagg/internal/app"
	"seisdisagg/pkg/api"
)

// clearEnv keeps SEISDISAGG_* settings of the developer's shell out of the tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SEISDISAGG_LOG_LEVEL", "SEISDISAGG_LOG_FORMAT", "SEISDISAGG_WORKERS",
		"SEISDISAGG_DB", "SEISDISAGG_OTEL_ENDPOINT", "SEISDISAGG_OTEL_ENABLED",
	} {
		t.Setenv(k, "")
	}
}

func run(t *testing.T, argv ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errBuf bytes.Buffer
	code = app.RunContext(context.Background(), argv, &out, &errBuf)
	return code, out.String(), errBuf.String()
}

func mustRun(t *testing.T, argv ...string) string {
	t.Helper()
	code, out, errOut := run(t, argv...)
	if code != 0 {
		t.Fatalf("%v: exit %d, stderr=%s", argv, code, errOut)
	}
	return out
}

func decodeDisagg(t *testing.T, s string) api.DisaggregationV1 {
	t.Helper()
	var doc api.DisaggregationV1
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		t.Fatalf("decode json: %v\n%s", err, s)
	}
	return doc
}

func TestEndToEndText(t *testing.T) {
	clearEnv(t)
	out := mustRun(t, "disagg", "--scenario", "crustal", "--pmf", "mag,trt")
	for _, want := range []string{
		"scenario    crustal",
		"level       PGA > 0.1 over 50 yr",
		"pmf mag (mag) shape",
		"pmf trt (trt) shape [",
		"largest)\n" + "mag_lo",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "pmf mag_dist ") {
		t.Fatalf("--pmf should restrict marginals:\n%s", out)
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	clearEnv(t)
	for _, sc := range []string{"crustal", "antimeridian"} {
		t.Run(sc, func(t *testing.T) {
			serial := decodeDisagg(t, mustRun(t, "disagg", "-s", sc, "-o", "json", "--workers", "1"))
			parallel := decodeDisagg(t, mustRun(t, "disagg", "-s", sc, "-o", "json", "--workers", "4", "--shards", "3"))
			if serial.Status != api.StatusOK {
				t.Fatalf("status %q", serial.Status)
			}
			if diff := cmp.Diff(serial, parallel, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
				t.Fatalf("parallel differs from serial (-serial +parallel):\n%s", diff)
			}
		})
	}
}

func TestJSONDocumentInvariants(t *testing.T) {
	clearEnv(t)
	doc := decodeDisagg(t, mustRun(t, "disagg", "-s", "antimeridian", "-o", "json"))
	if doc.Schema != api.DisaggregationSchemaV1 || len(doc.Shape) != 6 || len(doc.PMFs) != 8 {
		t.Fatalf("doc header: schema=%s shape=%v pmfs=%d", doc.Schema, doc.Shape, len(doc.PMFs))
	}
	// Marginals stay probabilities.
	for _, p := range doc.PMFs {
		for _, v := range p.Values {
			if v < 0 || v > 1 {
				t.Fatalf("pmf %s value %g outside [0,1]", p.Name, v)
			}
		}
	}
	// Longitude edges wrap across the antimeridian.
	lon := doc.Edges.Lon
	if lon[0] < 0 || lon[len(lon)-1] > 0 {
		t.Fatalf("lon edges should run from east to west of 180: %v", lon)
	}
	sum := 0.0
	for _, c := range doc.Cells {
		sum += c.Prob
	}
	if sum < 1-1e-9 || sum > 1+1e-9 {
		t.Fatalf("cells sum to %g, want 1", sum)
	}
}

func TestJSONLMatchesJSONCells(t *testing.T) {
	clearEnv(t)
	doc := decodeDisagg(t, mustRun(t, "disagg", "-s", "crustal", "-o", "json", "--workers", "1"))
	lines := strings.Split(strings.TrimSpace(mustRun(t, "disagg", "-s", "crustal", "-o", "jsonl", "--workers", "1")), "\n")
	if len(lines) != len(doc.Cells) {
		t.Fatalf("jsonl lines %d, json cells %d", len(lines), len(doc.Cells))
	}
	for i, l := range lines {
		var c api.CellV1
		if err := json.Unmarshal([]byte(l), &c); err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if c != doc.Cells[i] {
			t.Fatalf("line %d: %+v != %+v", i, c, doc.Cells[i])
		}
	}

	tsv := strings.Split(strings.TrimSpace(mustRun(t, "disagg", "-s", "crustal", "-o", "tsv", "--header=false")), "\n")
	if len(tsv) != len(doc.Cells) {
		t.Fatalf("tsv rows %d, cells %d", len(tsv), len(doc.Cells))
	}
}

func TestNoContributionExit4(t *testing.T) {
	clearEnv(t)
	code, out, errOut := run(t, "disagg", "-s", "crustal", "--iml", "1e6", "-o", "json")
	if code != app.ExitNoContribution {
		t.Fatalf("exit %d, want 4; stderr=%s", code, errOut)
	}
	doc := decodeDisagg(t, out)
	if doc.Status != api.StatusNoContribution || len(doc.Cells) != 0 {
		t.Fatalf("status=%s cells=%d", doc.Status, len(doc.Cells))
	}
	if !strings.Contains(errOut, "no contribution") {
		t.Fatalf("stderr: %s", errOut)
	}
}

func TestUsageErrorsExit2(t *testing.T) {
	clearEnv(t)
	cases := [][]string{
		{"disagg"},
		{"disagg", "-s", "crustal", "-o", "yaml"},
		{"disagg", "-s", "crustal", "--pmf", "depth"},
		{"disagg", "-s", "crustal", "--workers", "0"},
		{"disagg", "-s", "atlantis"},
		{"disagg", "-s", "crustal", "--iml", "-1"},
		{"disagg", "-s", "crustal", "--log-level", "loud"},
		{"disagg", "--no-such-flag"},
		{"curve", "-s", "crustal", "-o", "text"},
		{"runs", "list"},
		{"frobnicate"},
	}
	for _, argv := range cases {
		t.Run(strings.Join(argv, "_"), func(t *testing.T) {
			code, _, errOut := run(t, argv...)
			if code != app.ExitUsage {
				t.Fatalf("exit %d, want 2; stderr=%s", code, errOut)
			}
		})
	}
}

func TestCurve(t *testing.T) {
	clearEnv(t)
	out := mustRun(t, "curve", "-s", "crustal")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "imt\timl\tpoe" || len(lines) != 1+5+4 {
		t.Fatalf("curve tsv:\n%s", out)
	}
	if !strings.HasPrefix(lines[1], "PGA\t0.01\t") || !strings.HasPrefix(lines[6], "SA(0.2)\t0.02\t") {
		t.Fatalf("curve rows out of order:\n%s", out)
	}

	var doc api.CurvesV1
	if err := json.Unmarshal([]byte(mustRun(t, "curve", "-s", "crustal", "-o", "json")), &doc); err != nil {
		t.Fatal(err)
	}
	for _, c := range doc.Curves {
		for i := 1; i < len(c.PoEs); i++ {
			if c.PoEs[i] > c.PoEs[i-1] {
				t.Fatalf("%s curve not decreasing: %v", c.IMT, c.PoEs)
			}
		}
	}
}

func TestScenariosAndVersion(t *testing.T) {
	clearEnv(t)
	out := mustRun(t, "scenarios")
	if !strings.Contains(out, "antimeridian") || !strings.Contains(out, "crustal") {
		t.Fatalf("scenarios:\n%s", out)
	}
	if out := mustRun(t, "version"); !strings.HasPrefix(out, "seisdisagg version ") {
		t.Fatalf("version: %q", out)
	}
}

func TestRecordedRuns(t *testing.T) {
	clearEnv(t)
	db := filepath.Join(t.TempDir(), "runs.db")

	live := decodeDisagg(t, mustRun(t, "disagg", "-s", "crustal", "-o", "json", "--db", db))
	if live.RunID != 1 {
		t.Fatalf("run id %d, want 1", live.RunID)
	}
	t.Setenv("SEISDISAGG_DB", db)
	mustRun(t, "disagg", "-s", "antimeridian", "-o", "tsv")

	list := mustRun(t, "runs", "list")
	if !strings.Contains(list, "antimeridian") || !strings.Contains(list, "crustal") {
		t.Fatalf("runs list:\n%s", list)
	}

	shown := decodeDisagg(t, mustRun(t, "runs", "show", "1", "-o", "json"))
	if diff := cmp.Diff(live, shown, cmpopts.EquateApprox(0, 1e-15)); diff != "" {
		t.Fatalf("stored run differs (-live +shown):\n%s", diff)
	}

	mustRun(t, "runs", "rm", "1")
	if code, _, _ := run(t, "runs", "show", "1"); code != app.ExitUsage {
		t.Fatalf("show of deleted run: exit %d", code)
	}
	if code, _, _ := run(t, "runs", "show", "x"); code != app.ExitUsage {
		t.Fatalf("bad id: exit %d", code)
	}
}
