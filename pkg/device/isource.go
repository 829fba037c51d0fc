package device

import (
	"voltlab/pkg/matrix"
)

// CurrentSource drives a fixed current through its branch; positive
// Current flows from n1 to n2. Current is mutable between solves.
type CurrentSource struct {
	BaseDevice
	Node1, Node2 *Node
	Current      float64
}

func NewCurrentSource(name string, n1, n2 *Node, current float64) *CurrentSource {
	return &CurrentSource{
		BaseDevice: newBaseDevice(name),
		Node1:      n1,
		Node2:      n2,
		Current:    current,
	}
}

func (i *CurrentSource) GetType() string { return "I" }
func (i *CurrentSource) GetNodes() []*Node { return []*Node{i.Node1, i.Node2} }
func (i *CurrentSource) RequiresPerStepRestamp() bool { return true }

func (i *CurrentSource) Stamp(m matrix.DeviceMatrix, dt float64) error {
	if i.Node1.ID != 0 {
		m.AddRHS(i.Node1.ID, -i.Current)
	}
	if i.Node2.ID != 0 {
		m.AddRHS(i.Node2.ID, i.Current)
	}
	return nil
}
