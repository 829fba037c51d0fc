package matrix

import (
	"fmt"
	"math"
)

// Solver selection thresholds. Small or filled-in systems amortize
// better through a contiguous dense LU than through sparse
// bookkeeping.
const (
	denseSizeLimit  = 96
	denseDensityMin = 0.18
)

type entry struct {
	row, col int
	value    float64
}

// SystemMatrix holds the MNA system A*x = z. Stamps accumulate as
// (row, col, value) entries; the compressed-column form, the dense
// buffer and the sparse factorization are derived lazily and reused
// across solves where the assembly allows it.
type SystemMatrix struct {
	size     int
	numNodes int

	entries  []entry
	rhs      []float64
	solution []float64

	cc      *compressed
	ccValid bool

	dense *denseLU

	sp       *sparseSolver
	spCached bool

	residual []float64
}

func NewSystem(size, numNodes int) *SystemMatrix {
	m := &SystemMatrix{}
	m.Resize(size, numNodes)
	return m
}

// Resize prepares the buffers for a system of the given size and
// drops every cached form. Existing allocations are kept when the
// size matches.
func (m *SystemMatrix) Resize(size, numNodes int) {
	if size != m.size {
		m.rhs = make([]float64, size)
		m.solution = make([]float64, size)
		m.residual = make([]float64, size)
		m.dense = nil
	}
	m.size = size
	m.numNodes = numNodes
	m.entries = m.entries[:0]
	m.cc = nil
	m.ccValid = false
	m.sp = nil
	m.spCached = false
}

func (m *SystemMatrix) Size() int { return m.size }

// Clear resets the accumulated entries and the RHS. When invalidate
// is set the compressed form and the cached factorization are dropped
// as well; a static linear assembly keeps both. On the sparse path the
// next Solve then reduces to a back substitution against the fresh
// RHS; the dense path reloads and refactors on every Solve.
func (m *SystemMatrix) Clear(invalidate bool) {
	m.entries = m.entries[:0]
	for i := range m.rhs {
		m.rhs[i] = 0
	}
	if invalidate {
		m.cc = nil
		m.ccValid = false
		m.spCached = false
	}
}

func (m *SystemMatrix) AddElement(i, j int, value float64) {
	if i < 0 || j < 0 || i >= m.size || j >= m.size {
		fmt.Printf("Warning: matrix index out of bounds (i=%d, j=%d, size=%d)\n", i, j, m.size)
		return
	}
	m.entries = append(m.entries, entry{row: i, col: j, value: value})
}

func (m *SystemMatrix) AddRHS(i int, value float64) {
	if i < 0 || i >= m.size {
		fmt.Printf("Warning: RHS index out of bounds (i=%d, size=%d)\n", i, m.size)
		return
	}
	m.rhs[i] += value
}

// AnchorGround writes the identity equation V0 = 0 into row 0.
// Stamps never touch row or column 0, so the row survives assembly.
func (m *SystemMatrix) AnchorGround() {
	m.AddElement(0, 0, 1.0)
}

// LoadGmin adds a small shunt conductance to every non-ground node
// diagonal so floating subgraphs stay solvable.
func (m *SystemMatrix) LoadGmin(gmin float64) {
	for i := 1; i < m.numNodes; i++ {
		m.AddElement(i, i, gmin)
	}
}

// Element returns the accumulated coefficient at (i, j). Intended for
// tests and debugging; it walks the raw entry list.
func (m *SystemMatrix) Element(i, j int) float64 {
	v := 0.0
	for _, e := range m.entries {
		if e.row == i && e.col == j {
			v += e.value
		}
	}
	return v
}

func (m *SystemMatrix) RHS() []float64 { return m.rhs }
func (m *SystemMatrix) Solution() []float64 { return m.solution }

// RHSNorm returns the infinity norm of z.
func (m *SystemMatrix) RHSNorm() float64 {
	norm := 0.0
	for _, v := range m.rhs {
		if a := math.Abs(v); a > norm {
			norm = a
		}
	}
	return norm
}

func (m *SystemMatrix) ensureCompressed() *compressed {
	if !m.ccValid {
		m.cc = newCompressed(m.size, m.entries)
		m.ccValid = true
	}
	return m.cc
}

// Solve factors A and solves for x. The dense path handles small or
// filled-in systems; everything else goes through the sparse LU.
// When cacheFactorization is set (static linear assembly) the sparse
// factorization is kept for reuse by later solves.
func (m *SystemMatrix) Solve(cacheFactorization bool) error {
	cc := m.ensureCompressed()

	density := float64(cc.nnz()) / float64(m.size*m.size)
	if m.size <= denseSizeLimit || density >= denseDensityMin {
		return m.solveDense(cc)
	}
	return m.solveSparse(cc, cacheFactorization)
}

func (m *SystemMatrix) solveDense(cc *compressed) error {
	if m.dense == nil || m.dense.n != m.size {
		m.dense = newDenseLU(m.size)
	}
	m.dense.load(cc)
	if err := m.dense.factor(); err != nil {
		return err
	}
	m.dense.solve(m.rhs, m.solution)
	return nil
}

func (m *SystemMatrix) solveSparse(cc *compressed, cache bool) error {
	if m.sp == nil || m.sp.size != m.size {
		m.sp = newSparseSolver(m.size)
		m.spCached = false
	}
	if !m.spCached {
		if err := m.sp.factor(cc, m.rhs); err != nil {
			return err
		}
		m.spCached = cache
	}
	return m.sp.solve(m.rhs, m.solution)
}

// ResidualNorm returns ||A*x - z|| in the infinity norm, computed
// against the compressed form of the current assembly.
func (m *SystemMatrix) ResidualNorm(x []float64) float64 {
	cc := m.ensureCompressed()
	cc.matVec(x, m.residual)

	norm := 0.0
	for i := range m.residual {
		if a := math.Abs(m.residual[i] - m.rhs[i]); a > norm {
			norm = a
		}
	}
	return norm
}
