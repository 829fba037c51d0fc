package device

import (
	"voltlab/pkg/matrix"
)

// Transformer is an ideal 4-terminal transformer with ratio
// n = Ns/Np. Primary is (Node1, Node2), secondary (Node3, Node4).
// One auxiliary unknown carries the primary current; the secondary
// current is -(1/n) times it. Ratio must be nonzero; the engine does
// not guard against 0.
type Transformer struct {
	BaseDevice
	Node1, Node2 *Node
	Node3, Node4 *Node
	Ratio        float64
}

func NewTransformer(name string, n1, n2, n3, n4 *Node, ratio float64) *Transformer {
	return &Transformer{
		BaseDevice: newBaseDevice(name),
		Node1:      n1,
		Node2:      n2,
		Node3:      n3,
		Node4:      n4,
		Ratio:      ratio,
	}
}

func (t *Transformer) GetType() string { return "X" }
func (t *Transformer) GetNodes() []*Node {
	return []*Node{t.Node1, t.Node2, t.Node3, t.Node4}
}
func (t *Transformer) HasExtraEquation() bool { return true }

// Stamp enforces (V(n1)-V(n2)) - (1/n)*(V(n3)-V(n4)) = 0 on the
// auxiliary row and couples the primary and secondary currents
// through the auxiliary column.
func (t *Transformer) Stamp(m matrix.DeviceMatrix, dt float64) error {
	k := t.MatrixIndex()
	if k < 0 {
		return nil
	}

	inv := 1.0 / t.Ratio
	n1, n2, n3, n4 := t.Node1.ID, t.Node2.ID, t.Node3.ID, t.Node4.ID

	if n1 != 0 {
		m.AddElement(k, n1, 1)
		m.AddElement(n1, k, 1)
	}
	if n2 != 0 {
		m.AddElement(k, n2, -1)
		m.AddElement(n2, k, -1)
	}
	if n3 != 0 {
		m.AddElement(k, n3, -inv)
		m.AddElement(n3, k, -inv)
	}
	if n4 != 0 {
		m.AddElement(k, n4, inv)
		m.AddElement(n4, k, inv)
	}
	return nil
}

// PrimaryCurrent reads the auxiliary unknown from a solution vector:
// the current into Node1 and out of Node2.
func (t *Transformer) PrimaryCurrent(solution []float64) float64 {
	k := t.MatrixIndex()
	if k < 0 || k >= len(solution) {
		return 0
	}
	return solution[k]
}

// SecondaryCurrent is the coupled current into Node3 and out of
// Node4.
func (t *Transformer) SecondaryCurrent(solution []float64) float64 {
	return -t.PrimaryCurrent(solution) / t.Ratio
}
