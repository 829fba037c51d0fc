package matrix

import "math"

const densePivotFloor = 1e-15

// denseLU is an in-place Doolittle factorization with partial row
// pivoting over a contiguous row-major buffer. The buffer is reused
// across solves of the same size.
type denseLU struct {
	n    int
	a    []float64
	perm []int
	y    []float64
}

func newDenseLU(n int) *denseLU {
	return &denseLU{
		n:    n,
		a:    make([]float64, n*n),
		perm: make([]int, n),
		y:    make([]float64, n),
	}
}

func (lu *denseLU) load(cc *compressed) {
	for i := range lu.a {
		lu.a[i] = 0
	}
	for j := 0; j < cc.n; j++ {
		for k := cc.colPtr[j]; k < cc.colPtr[j+1]; k++ {
			lu.a[cc.rowIdx[k]*lu.n+j] = cc.values[k]
		}
	}
}

func (lu *denseLU) factor() error {
	n := lu.n
	a := lu.a
	for i := range lu.perm {
		lu.perm[i] = i
	}

	for k := 0; k < n; k++ {
		// Partial pivoting: largest magnitude in column k at or
		// below the diagonal.
		maxRow := k
		maxVal := math.Abs(a[lu.perm[k]*n+k])
		for i := k + 1; i < n; i++ {
			if v := math.Abs(a[lu.perm[i]*n+k]); v > maxVal {
				maxVal = v
				maxRow = i
			}
		}
		if maxVal < densePivotFloor {
			return &SingularMatrixError{Row: k, Col: k, Pivot: maxVal}
		}
		lu.perm[k], lu.perm[maxRow] = lu.perm[maxRow], lu.perm[k]

		pivotRow := lu.perm[k] * n
		pivot := a[pivotRow+k]
		for i := k + 1; i < n; i++ {
			row := lu.perm[i] * n
			factor := a[row+k] / pivot
			if factor == 0 {
				continue
			}
			a[row+k] = factor
			for j := k + 1; j < n; j++ {
				a[row+j] -= factor * a[pivotRow+j]
			}
		}
	}
	return nil
}

func (lu *denseLU) solve(rhs, x []float64) {
	n := lu.n
	a := lu.a

	// Forward substitution: L*y = P*b.
	for i := 0; i < n; i++ {
		row := lu.perm[i] * n
		sum := rhs[lu.perm[i]]
		for j := 0; j < i; j++ {
			sum -= a[row+j] * lu.y[j]
		}
		lu.y[i] = sum
	}

	// Back substitution: U*x = y.
	for i := n - 1; i >= 0; i-- {
		row := lu.perm[i] * n
		sum := lu.y[i]
		for j := i + 1; j < n; j++ {
			sum -= a[row+j] * x[j]
		}
		x[i] = sum / a[row+i]
	}
}
