package matrix

import (
	"fmt"

	"github.com/edp1096/sparse"
)

// Relative pivot threshold for the sparse LU. Relaxed pivoting is
// acceptable because ground anchoring plus gmin keep the diagonal
// usable.
const sparsePivotThreshold = 1.0

// sparseSolver adapts the 1-based sparse package to the 0-based
// system. The element structure and the pivot ordering are built on
// the first factorization and reused for every refactor; Newton
// iterations and restamps change values, never positions.
type sparseSolver struct {
	size    int
	mat     *sparse.Matrix
	rhs     []float64 // 1-based scratch
	ordered bool
}

func newSparseSolver(size int) *sparseSolver {
	config := &sparse.Configuration{
		Real:           true,
		Expandable:     true,
		ModifiedNodal:  true,
		TiesMultiplier: 5,
		PrinterWidth:   140,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		fmt.Printf("Error creating sparse matrix: %v\n", err)
		return nil
	}

	return &sparseSolver{
		size: size,
		mat:  mat,
		rhs:  make([]float64, size+1),
	}
}

func (s *sparseSolver) load(cc *compressed) {
	s.mat.Clear()
	for j := 0; j < cc.n; j++ {
		for k := cc.colPtr[j]; k < cc.colPtr[j+1]; k++ {
			s.mat.GetElement(int64(cc.rowIdx[k]+1), int64(j+1)).Real += cc.values[k]
		}
	}
}

func (s *sparseSolver) factor(cc *compressed, rhs []float64) error {
	s.load(cc)
	for i, v := range rhs {
		s.rhs[i+1] = v
	}

	if !s.ordered {
		if err := s.mat.OrderAndFactor(s.rhs, sparsePivotThreshold, 0.0, true); err != nil {
			return &SingularMatrixError{
				Row: int(s.mat.SingularRow) - 1,
				Col: int(s.mat.SingularCol) - 1,
			}
		}
		s.ordered = true
		return nil
	}

	if err := s.mat.Factor(); err == nil {
		return nil
	}

	// A pivot went bad under the cached ordering; reload the values
	// and reorder from scratch before giving up.
	s.load(cc)
	if err := s.mat.OrderAndFactor(s.rhs, sparsePivotThreshold, 0.0, true); err != nil {
		return &SingularMatrixError{
			Row: int(s.mat.SingularRow) - 1,
			Col: int(s.mat.SingularCol) - 1,
		}
	}
	return nil
}

func (s *sparseSolver) solve(rhs, x []float64) error {
	for i, v := range rhs {
		s.rhs[i+1] = v
	}
	sol, err := s.mat.Solve(s.rhs)
	if err != nil {
		return fmt.Errorf("sparse solve: %w", err)
	}
	copy(x, sol[1:s.size+1])
	return nil
}
