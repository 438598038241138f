package imt

import "testing"

func TestParseRoundTrip(t *testing.T) {
	for _, m := range []IMT{PGA(), PGV(), PGD(), SA(0.2), SA(1)} {
		got, err := Parse(m.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", m.String(), err)
		}
		if got != m {
			t.Fatalf("Parse(%q) = %+v, want %+v", m.String(), got, m)
		}
	}
}

func TestParseLowercaseAndErrors(t *testing.T) {
	if got, err := Parse(" sa(0.3) "); err != nil || got != SA(0.3) {
		t.Fatalf("Parse lowercase: %+v, %v", got, err)
	}
	for _, s := range []string{"", "MMI", "SA()", "SA(-1)", "SA(x)"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q): expected error", s)
		}
	}
}
