package device

import (
	"voltlab/pkg/matrix"
)

// VoltageSource enforces V(n1) - V(n2) = Voltage through an auxiliary
// branch equation. The auxiliary unknown is the branch current
// flowing n1 -> n2, observable for power accounting. Voltage is
// mutable between solves; the device restamps every step.
type VoltageSource struct {
	BaseDevice
	Node1, Node2 *Node
	Voltage      float64
}

func NewVoltageSource(name string, n1, n2 *Node, voltage float64) *VoltageSource {
	return &VoltageSource{
		BaseDevice: newBaseDevice(name),
		Node1:      n1,
		Node2:      n2,
		Voltage:    voltage,
	}
}

func (v *VoltageSource) GetType() string { return "V" }
func (v *VoltageSource) GetNodes() []*Node { return []*Node{v.Node1, v.Node2} }
func (v *VoltageSource) HasExtraEquation() bool { return true }
func (v *VoltageSource) RequiresPerStepRestamp() bool { return true }

func (v *VoltageSource) Stamp(m matrix.DeviceMatrix, dt float64) error {
	k := v.MatrixIndex()
	if k < 0 {
		// Stamped before the branch row was assigned; skip.
		return nil
	}

	n1, n2 := v.Node1.ID, v.Node2.ID
	if n1 != 0 {
		m.AddElement(n1, k, 1)
		m.AddElement(k, n1, 1)
	}
	if n2 != 0 {
		m.AddElement(n2, k, -1)
		m.AddElement(k, n2, -1)
	}
	m.AddRHS(k, v.Voltage)
	return nil
}

// BranchCurrent reads the source's auxiliary unknown from a solution
// vector: the current flowing n1 -> n2 through the source.
func (v *VoltageSource) BranchCurrent(solution []float64) float64 {
	k := v.MatrixIndex()
	if k < 0 || k >= len(solution) {
		return 0
	}
	return solution[k]
}
