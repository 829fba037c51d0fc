package analysis

import (
	"math"
	"testing"

	"voltlab/pkg/circuit"
	"voltlab/pkg/device"
)

func buildRC() (*circuit.Circuit, *device.Node) {
	ckt := circuit.New("rc")
	n1 := ckt.AddNode()
	n2 := ckt.AddNode()
	ckt.AddComponent(device.NewVoltageSource("V1", n1, ckt.Ground(), 10))
	ckt.AddComponent(device.NewResistor("R1", n1, n2, 1000))
	ckt.AddComponent(device.NewCapacitor("C1", n2, ckt.Ground(), 1e-6))
	return ckt, n2
}

func TestTransientRCCharging(t *testing.T) {
	ckt, n2 := buildRC()

	tr := NewTransient(1e-4, 5e-3)
	tr.UseIC = true // start from the uncharged capacitor
	if err := tr.Setup(ckt); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := tr.Execute(); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	results := tr.GetResults()
	times := results["TIME"]
	wave := results["V(2)"]
	if len(times) != 50 || len(wave) != 50 {
		t.Fatalf("recorded %d/%d samples, want 50", len(times), len(wave))
	}

	// Backward Euler recurrence with alpha = dt/(R*C) = 0.1.
	alpha := 0.1
	expected := 0.0
	for i, got := range wave {
		expected = (expected + alpha*10) / (1 + alpha)
		if math.Abs(got-expected) > 1e-3 {
			t.Fatalf("sample %d: V = %v, want %v", i, got, expected)
		}
	}
	if wave[49] <= 9.9 {
		t.Errorf("final V = %v, want > 9.9", wave[49])
	}
	if math.Abs(n2.Voltage-wave[49]) > 1e-12 {
		t.Errorf("node voltage %v out of sync with last sample %v", n2.Voltage, wave[49])
	}
}

func TestTransientSetupRunsOperatingPoint(t *testing.T) {
	ckt, n2 := buildRC()

	tr := NewTransient(1e-4, 1e-3)
	if err := tr.Setup(ckt); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	// The DC pass publishes the open-circuit node voltage. Transient
	// history stays empty: state only advances on dt > 0 steps.
	if math.Abs(n2.Voltage-10) > 1e-6 {
		t.Fatalf("V(n2) after OP = %v, want 10", n2.Voltage)
	}

	if err := tr.Execute(); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	wave := tr.GetResults()["V(2)"]
	if len(wave) != 10 {
		t.Fatalf("recorded %d samples, want 10", len(wave))
	}

	// The capacitor starts uncharged, so the run follows the same
	// Backward Euler recurrence as the UseIC case.
	alpha := 0.1
	expected := 0.0
	for i, got := range wave {
		expected = (expected + alpha*10) / (1 + alpha)
		if math.Abs(got-expected) > 1e-3 {
			t.Fatalf("sample %d: V = %v, want %v", i, got, expected)
		}
	}
}

func TestOperatingPointResults(t *testing.T) {
	ckt := circuit.New("divider")
	n1 := ckt.AddNode()
	n2 := ckt.AddNode()
	ckt.AddComponent(device.NewVoltageSource("V1", n1, ckt.Ground(), 10))
	ckt.AddComponent(device.NewResistor("R1", n1, n2, 100))
	ckt.AddComponent(device.NewResistor("R2", n2, ckt.Ground(), 100))

	op := NewOP()
	if err := op.Setup(ckt); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := op.Execute(); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	results := op.GetResults()
	if got := results["V(2)"]; len(got) != 1 || math.Abs(got[0]-5) > 1e-6 {
		t.Errorf("V(2) = %v, want [5]", got)
	}
	if got := results["I(V1)"]; len(got) != 1 || math.Abs(got[0]+0.05) > 1e-9 {
		t.Errorf("I(V1) = %v, want [-0.05]", got)
	}
}
