package matrix

import "fmt"

// SingularMatrixError reports an LU factorization that could not find
// a usable pivot. It usually indicates a topology defect that the
// gmin anchoring could not compensate for.
type SingularMatrixError struct {
	Row   int
	Col   int
	Pivot float64
}

func (e *SingularMatrixError) Error() string {
	return fmt.Sprintf("singular matrix at (%d,%d), pivot magnitude %g", e.Row, e.Col, e.Pivot)
}
