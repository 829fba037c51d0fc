package analysis

import (
	"fmt"
	"math"

	"voltlab/pkg/circuit"
)

// Transient runs a fixed-step Backward Euler simulation. Unless
// UseIC is set, Setup first solves the DC operating point, which
// publishes the DC node voltages and leaves nonlinear devices
// linearized there. Capacitor and inductor history only advances on
// dt > 0 steps, so the DC pass does not seed it: reactive devices
// start from zero history either way.
type Transient struct {
	BaseAnalysis
	Step  float64
	Stop  float64
	UseIC bool

	time float64
}

func NewTransient(step, stop float64) *Transient {
	return &Transient{
		BaseAnalysis: *NewBaseAnalysis(),
		Step:         step,
		Stop:         stop,
	}
}

func (tr *Transient) Setup(ckt *circuit.Circuit) error {
	tr.Circuit = ckt

	if !tr.UseIC {
		op := NewOP()
		if err := op.Setup(ckt); err != nil {
			return err
		}
		if err := op.Execute(); err != nil {
			return fmt.Errorf("operating point: %w", err)
		}
	}
	return nil
}

func (tr *Transient) Execute() error {
	if tr.Circuit == nil {
		return fmt.Errorf("circuit not set")
	}
	if tr.Step <= 0 || tr.Stop <= 0 {
		return fmt.Errorf("step and stop must be positive")
	}

	steps := int(math.Round(tr.Stop / tr.Step))
	for i := 0; i < steps; i++ {
		if err := tr.Circuit.Solve(tr.Step); err != nil {
			return fmt.Errorf("transient failed at t=%g: %w", tr.time, err)
		}
		tr.time = float64(i+1) * tr.Step

		tr.append("TIME", tr.time)
		tr.storeSolution()
	}

	return nil
}
