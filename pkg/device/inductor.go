package device

import (
	"voltlab/pkg/matrix"
)

// dcShortConductance stands in for the inductor's zero DC resistance
// at dt = 0 without adding a branch equation.
const dcShortConductance = 1.0 / 1e-9

// Inductor integrates with the Backward Euler companion model: a
// conductance dt/L in parallel with a current source carrying the
// previous step's current. At dt = 0 it is a near-short.
type Inductor struct {
	BaseDevice
	Node1, Node2 *Node
	Inductance   float64

	prevCurrent float64
}

var _ StateUpdater = (*Inductor)(nil)

func NewInductor(name string, n1, n2 *Node, inductance float64) *Inductor {
	return &Inductor{
		BaseDevice: newBaseDevice(name),
		Node1:      n1,
		Node2:      n2,
		Inductance: inductance,
	}
}

func (l *Inductor) GetType() string { return "L" }
func (l *Inductor) GetNodes() []*Node { return []*Node{l.Node1, l.Node2} }
func (l *Inductor) RequiresPerStepRestamp() bool { return true }

func (l *Inductor) Stamp(m matrix.DeviceMatrix, dt float64) error {
	n1, n2 := l.Node1.ID, l.Node2.ID

	switch {
	case dt > 0:
		geq := dt / l.Inductance
		ieq := l.prevCurrent

		stampConductance(m, n1, n2, geq)
		if n1 != 0 {
			m.AddRHS(n1, -ieq)
		}
		if n2 != 0 {
			m.AddRHS(n2, ieq)
		}

	case dt == 0:
		stampConductance(m, n1, n2, dcShortConductance)
	}

	return nil
}

// UpdateState advances I_n = I_(n-1) + (dt/L)*V_n.
func (l *Inductor) UpdateState(solution []float64, dt float64) {
	if dt <= 0 {
		return
	}
	vd := nodeVoltage(solution, l.Node1) - nodeVoltage(solution, l.Node2)
	l.prevCurrent += (dt / l.Inductance) * vd
}

// StoredCurrent returns the current through the inductor at the last
// accepted step, flowing n1 -> n2.
func (l *Inductor) StoredCurrent() float64 { return l.prevCurrent }
