package analysis

import (
	"errors"
	"fmt"
	"math"

	"voltlab/pkg/circuit"
)

// OperatingPoint computes the DC solution. When the plain Newton
// solve fails to converge it retries with gmin stepping: start from
// a heavily shunted system and relax the shunt back down in decades.
type OperatingPoint struct{ BaseAnalysis }

func NewOP() *OperatingPoint {
	return &OperatingPoint{BaseAnalysis: *NewBaseAnalysis()}
}

func (op *OperatingPoint) Setup(ckt *circuit.Circuit) error {
	op.Circuit = ckt
	return nil
}

func (op *OperatingPoint) Execute() error {
	ckt := op.Circuit

	err := ckt.Solve(0)
	if err == nil {
		op.storeSolution()
		return nil
	}

	var nc *circuit.NonConvergenceError
	if !errors.As(err, &nc) {
		return err
	}

	origGmin := ckt.Gmin
	defer func() { ckt.Gmin = origGmin }()

	numGminSteps := 10
	gmin := origGmin * math.Pow(10, float64(numGminSteps))
	for i := 0; i <= numGminSteps; i++ {
		ckt.Gmin = gmin
		if err := ckt.Solve(0); err != nil {
			return fmt.Errorf("gmin stepping failed at %g: %w", gmin, err)
		}
		gmin /= 10
	}

	ckt.Gmin = origGmin
	if err := ckt.Solve(0); err != nil {
		return fmt.Errorf("final solution failed after gmin stepping: %w", err)
	}

	op.storeSolution()
	return nil
}
