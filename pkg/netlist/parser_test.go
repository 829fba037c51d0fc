package netlist

import (
	"math"
	"testing"
)

func TestParseValue(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"10", 10},
		{"-4.7", -4.7},
		{"1k", 1e3},
		{"2.2K", 2.2e3},
		{"100n", 1e-7},
		{"1u", 1e-6},
		{"5m", 5e-3},
		{"2meg", 2e6},
		{"3G", 3e9},
		{"1.5e-4", 1.5e-4},
		{"100nF", 1e-7},
		{"10V", 10},
	}
	for _, c := range cases {
		got, err := ParseValue(c.in)
		if err != nil {
			t.Errorf("ParseValue(%q) failed: %v", c.in, err)
			continue
		}
		if math.Abs(got-c.want) > math.Abs(c.want)*1e-12 {
			t.Errorf("ParseValue(%q) = %v, want %v", c.in, got, c.want)
		}
	}

	if _, err := ParseValue("abc"); err == nil {
		t.Error("ParseValue(\"abc\") should fail")
	}
}

func TestParseDivider(t *testing.T) {
	nl, err := ParseString(`
* voltage divider
.title divider
V1 in 0 10
R1 in out 100
R2 out gnd 100
`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if nl.Title != "divider" {
		t.Errorf("title = %q, want %q", nl.Title, "divider")
	}
	if got := len(nl.Circuit.Components()); got != 3 {
		t.Fatalf("component count = %d, want 3", got)
	}

	if err := nl.Circuit.Solve(0); err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	out, ok := nl.Node("out")
	if !ok {
		t.Fatal("node out not registered")
	}
	if math.Abs(out.Voltage-5.0) > 1e-6 {
		t.Errorf("V(out) = %v, want 5", out.Voltage)
	}
}

func TestParseTranDirective(t *testing.T) {
	nl, err := ParseString(`
V1 in 0 10
R1 in out 1k
C1 out 0 1u
.tran 100u 10m
`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if nl.Tran == nil {
		t.Fatal("tran directive not recorded")
	}
	if math.Abs(nl.Tran.Step-1e-4) > 1e-18 || math.Abs(nl.Tran.Stop-1e-2) > 1e-16 {
		t.Errorf("tran = %+v, want step 1e-4 stop 1e-2", nl.Tran)
	}
}

func TestParseTransformer(t *testing.T) {
	nl, err := ParseString(`
V1 p 0 10
X1 p 0 s 0 2.0
RL s 0 100
`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if err := nl.Circuit.Solve(0); err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	s, _ := nl.Node("s")
	if math.Abs(s.Voltage-20.0) > 1e-6 {
		t.Errorf("V(s) = %v, want 20", s.Voltage)
	}
}

func TestParseRejectsBadCards(t *testing.T) {
	cases := []string{
		"Q1 1 2 3 model",        // unsupported element
		"R1 1 0 0",              // zero resistance
		"X1 1 0 2 0 0",          // zero transformer ratio
		"R1 1 0",                // missing value
		".tran 0 1m",            // zero step
		".fft v(1)",             // unsupported directive
	}
	for _, src := range cases {
		if _, err := ParseString(src); err == nil {
			t.Errorf("ParseString(%q) should fail", src)
		}
	}
}
