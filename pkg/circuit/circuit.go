package circuit

import (
	"fmt"
	"math"

	"voltlab/internal/consts"
	"voltlab/pkg/device"
	"voltlab/pkg/matrix"
)

// Circuit owns the node table, the ordered component list and the
// assembled MNA system. Solve(dt) runs one DC operating point
// (dt = 0) or one Backward Euler transient step (dt > 0). A Circuit
// must not be solved concurrently; distinct Circuits are independent.
type Circuit struct {
	name string

	nodes      []*device.Node
	components []device.Component

	sys      *matrix.SystemMatrix
	numExtra int

	dirty        bool
	stampVersion uint64

	requiresIteration bool
	requiresRestamp   bool

	ConvergenceTolerance float64
	MaxIterations        int
	Gmin                 float64

	// LastIterations is the Newton iteration count of the last
	// Solve; 0 means the static fast path was taken.
	LastIterations int

	xPrev            []float64
	solved           bool
	lastDt           float64
	lastStampVersion uint64
}

func New(name string) *Circuit {
	c := &Circuit{
		name:                 name,
		ConvergenceTolerance: consts.DefaultConvergenceTol,
		MaxIterations:        consts.DefaultMaxIterations,
		Gmin:                 consts.Gmin,
		dirty:                true,
	}
	c.nodes = append(c.nodes, &device.Node{ID: 0}) // ground
	return c
}

func (c *Circuit) Name() string { return c.name }
func (c *Circuit) Ground() *device.Node { return c.nodes[0] }
func (c *Circuit) Nodes() []*device.Node { return c.nodes }
func (c *Circuit) Components() []device.Component { return c.components }
func (c *Circuit) NumNodes() int { return len(c.nodes) }

// Solution exposes the raw solution vector: node voltages in
// [0, NumNodes), auxiliary branch currents after them. Valid after a
// successful Solve.
func (c *Circuit) Solution() []float64 {
	if c.sys == nil {
		return nil
	}
	return c.sys.Solution()
}

// AddNode appends a node with the next dense id.
func (c *Circuit) AddNode() *device.Node {
	n := &device.Node{ID: len(c.nodes)}
	c.nodes = append(c.nodes, n)
	c.dirty = true
	return n
}

// AddComponent appends comp and marks the circuit dirty so the next
// Solve rebuilds the system layout.
func (c *Circuit) AddComponent(comp device.Component) {
	c.components = append(c.components, comp)
	c.dirty = true
	if comp.RequiresIteration() {
		c.requiresIteration = true
	}
	if comp.RequiresPerStepRestamp() {
		c.requiresRestamp = true
	}
}

// BuildSystem assigns contiguous auxiliary rows to every component
// that needs one, sizes the system to numNodes + numExtra, runs an
// initial stamp pass and recomputes the aggregate flags. Auxiliary
// indices stay immutable until the next build.
func (c *Circuit) BuildSystem() error {
	numNodes := len(c.nodes)

	extra := 0
	c.requiresIteration = false
	c.requiresRestamp = false
	for _, comp := range c.components {
		if comp.HasExtraEquation() {
			comp.SetMatrixIndex(numNodes + extra)
			extra++
		} else {
			comp.SetMatrixIndex(-1)
		}
		if comp.RequiresIteration() {
			c.requiresIteration = true
		}
		if comp.RequiresPerStepRestamp() {
			c.requiresRestamp = true
		}
	}
	c.numExtra = extra

	size := numNodes + extra
	if c.sys == nil {
		c.sys = matrix.NewSystem(size, numNodes)
	} else {
		c.sys.Resize(size, numNodes)
	}
	if len(c.xPrev) != size {
		c.xPrev = make([]float64, size)
	}

	// Initial stamp pass with DC semantics establishes the system
	// structure.
	c.sys.Clear(true)
	if err := c.stampAll(0); err != nil {
		return err
	}

	c.dirty = false
	c.solved = false
	c.stampVersion++
	return nil
}

func (c *Circuit) stampAll(dt float64) error {
	c.sys.AnchorGround()
	c.sys.LoadGmin(c.Gmin)
	for _, comp := range c.components {
		if err := comp.Stamp(c.sys, dt); err != nil {
			return fmt.Errorf("stamping %s: %w", comp.GetName(), err)
		}
	}
	return nil
}

// Solve computes node voltages and auxiliary branch currents for one
// step. dt = 0 selects DC semantics per device (capacitor open,
// inductor short); dt > 0 advances one Backward Euler step. On
// success every node's Voltage is published and component transient
// history advances. On failure the history is left untouched and the
// circuit stays usable for another attempt.
func (c *Circuit) Solve(dt float64) error {
	if c.dirty || c.sys == nil {
		if err := c.BuildSystem(); err != nil {
			return err
		}
	}

	// Static fast path: a linear circuit with no per-step restamps,
	// re-solved unchanged, reuses the previous solution outright.
	if !c.requiresIteration && !c.requiresRestamp && c.solved &&
		dt == c.lastDt && c.stampVersion == c.lastStampVersion {
		c.publish(c.sys.Solution())
		c.LastIterations = 0
		return nil
	}

	maxIter := 1
	if c.requiresIteration {
		maxIter = c.MaxIterations
	}
	invalidate := c.requiresIteration || c.requiresRestamp

	var stepNorm, residualNorm float64
	accepted := false

	for iter := 0; iter < maxIter; iter++ {
		c.sys.Clear(invalidate)
		if err := c.stampAll(dt); err != nil {
			return err
		}

		if err := c.sys.Solve(!invalidate); err != nil {
			return err
		}
		x := c.sys.Solution()
		c.publish(x)

		for _, comp := range c.components {
			if nl, ok := comp.(device.OperatingPointUpdater); ok {
				nl.UpdateOperatingPoint(x)
			}
		}

		if !c.requiresIteration {
			c.LastIterations = iter + 1
			accepted = true
			break
		}

		// The residual is checked against the system assembled this
		// iteration, so the first iteration can never be accepted.
		if iter > 0 {
			stepNorm = infNormDiff(x, c.xPrev)
			residualNorm = c.sys.ResidualNorm(x)
			tol := c.ConvergenceTolerance
			if stepNorm < tol*(1+infNorm(x)) && residualNorm < tol*(1+c.sys.RHSNorm()) {
				c.LastIterations = iter + 1
				accepted = true
				break
			}
		}
		copy(c.xPrev, x)
	}

	if !accepted {
		return &NonConvergenceError{
			Iterations:   maxIter,
			StepNorm:     stepNorm,
			ResidualNorm: residualNorm,
		}
	}

	x := c.sys.Solution()
	for _, comp := range c.components {
		if su, ok := comp.(device.StateUpdater); ok {
			su.UpdateState(x, dt)
		}
	}

	c.solved = true
	c.lastDt = dt
	c.lastStampVersion = c.stampVersion
	return nil
}

func (c *Circuit) publish(x []float64) {
	for i, n := range c.nodes {
		n.Voltage = x[i]
	}
}

func infNorm(v []float64) float64 {
	norm := 0.0
	for _, x := range v {
		if a := math.Abs(x); a > norm {
			norm = a
		}
	}
	return norm
}

func infNormDiff(a, b []float64) float64 {
	norm := 0.0
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > norm {
			norm = d
		}
	}
	return norm
}
