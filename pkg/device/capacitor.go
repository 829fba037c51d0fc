package device

import (
	"voltlab/pkg/matrix"
)

// Capacitor integrates with the Backward Euler companion model: a
// conductance C/dt in parallel with a current source carrying the
// previous step's voltage. At dt <= 0 it is a DC open circuit.
type Capacitor struct {
	BaseDevice
	Node1, Node2 *Node
	Capacitance  float64

	prevVoltage float64
}

var _ StateUpdater = (*Capacitor)(nil)

func NewCapacitor(name string, n1, n2 *Node, capacitance float64) *Capacitor {
	return &Capacitor{
		BaseDevice:  newBaseDevice(name),
		Node1:       n1,
		Node2:       n2,
		Capacitance: capacitance,
	}
}

func (c *Capacitor) GetType() string { return "C" }
func (c *Capacitor) GetNodes() []*Node { return []*Node{c.Node1, c.Node2} }
func (c *Capacitor) RequiresPerStepRestamp() bool { return true }

func (c *Capacitor) Stamp(m matrix.DeviceMatrix, dt float64) error {
	if dt <= 0 {
		return nil
	}

	// I = C*(V - Vprev)/dt = Geq*V - Geq*Vprev; the constant term
	// moves to the RHS as a companion current source.
	geq := c.Capacitance / dt
	ieq := geq * c.prevVoltage

	n1, n2 := c.Node1.ID, c.Node2.ID
	stampConductance(m, n1, n2, geq)
	if n1 != 0 {
		m.AddRHS(n1, ieq)
	}
	if n2 != 0 {
		m.AddRHS(n2, -ieq)
	}
	return nil
}

func (c *Capacitor) UpdateState(solution []float64, dt float64) {
	if dt <= 0 {
		return
	}
	c.prevVoltage = nodeVoltage(solution, c.Node1) - nodeVoltage(solution, c.Node2)
}

// StoredVoltage returns the voltage across the capacitor at the last
// accepted step.
func (c *Capacitor) StoredVoltage() float64 { return c.prevVoltage }
