package device

import (
	"fmt"

	"voltlab/pkg/matrix"
)

type Resistor struct {
	BaseDevice
	Node1, Node2 *Node
	Resistance   float64
}

func NewResistor(name string, n1, n2 *Node, resistance float64) *Resistor {
	return &Resistor{
		BaseDevice: newBaseDevice(name),
		Node1:      n1,
		Node2:      n2,
		Resistance: resistance,
	}
}

func (r *Resistor) GetType() string { return "R" }
func (r *Resistor) GetNodes() []*Node { return []*Node{r.Node1, r.Node2} }

func (r *Resistor) Stamp(m matrix.DeviceMatrix, dt float64) error {
	if r.Resistance == 0 {
		return fmt.Errorf("resistor %s: resistance must be nonzero", r.Name)
	}
	stampConductance(m, r.Node1.ID, r.Node2.ID, 1.0/r.Resistance)
	return nil
}

// Current returns the branch current n1 -> n2 from the published
// node voltages.
func (r *Resistor) Current() float64 {
	return (r.Node1.Voltage - r.Node2.Voltage) / r.Resistance
}
