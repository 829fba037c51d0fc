package device

import (
	"math"

	"voltlab/pkg/matrix"
)

// Shockley model parameters, fixed.
const (
	diodeIs = 1e-12 // Saturation current (A)
	diodeVt = 0.026 // Thermal voltage (V)
	diodeN  = 1.0   // Emission coefficient

	// Junction limiting window. The upper clamp bounds the
	// exponential argument and damps the Newton iteration.
	diodeVdMin = -5.0
	diodeVdMax = 0.9

	diodeExpArgMax = 40.0
)

// Diode is a Shockley junction linearized at its operating point.
// Each Newton iteration restamps the companion conductance and
// current from the junction voltage of the previous iteration.
type Diode struct {
	BaseDevice
	Node1, Node2 *Node

	vd float64 // Linearization point
}

var _ OperatingPointUpdater = (*Diode)(nil)

func NewDiode(name string, n1, n2 *Node) *Diode {
	return &Diode{
		BaseDevice: newBaseDevice(name),
		Node1:      n1,
		Node2:      n2,
		vd:         0.6,
	}
}

func (d *Diode) GetType() string { return "D" }
func (d *Diode) GetNodes() []*Node { return []*Node{d.Node1, d.Node2} }
func (d *Diode) RequiresIteration() bool { return true }
func (d *Diode) RequiresPerStepRestamp() bool { return true }

func (d *Diode) Stamp(m matrix.DeviceMatrix, dt float64) error {
	vd := clampVd(d.vd)

	arg := vd / (diodeN * diodeVt)
	if arg > diodeExpArgMax {
		arg = diodeExpArgMax
	}
	e := math.Exp(arg)

	geq := diodeIs / (diodeN * diodeVt) * e
	id := diodeIs * (e - 1.0)
	ieq := id - geq*vd

	n1, n2 := d.Node1.ID, d.Node2.ID
	stampConductance(m, n1, n2, geq)
	if n1 != 0 {
		m.AddRHS(n1, -ieq)
	}
	if n2 != 0 {
		m.AddRHS(n2, ieq)
	}
	return nil
}

func (d *Diode) UpdateOperatingPoint(solution []float64) {
	d.vd = clampVd(nodeVoltage(solution, d.Node1) - nodeVoltage(solution, d.Node2))
}

// JunctionVoltage returns the present linearization point.
func (d *Diode) JunctionVoltage() float64 { return d.vd }

func clampVd(vd float64) float64 {
	if vd < diodeVdMin {
		return diodeVdMin
	}
	if vd > diodeVdMax {
		return diodeVdMax
	}
	return vd
}
