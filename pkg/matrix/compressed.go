package matrix

import "sort"

// compressed is the compressed-column form of the assembled system.
// Duplicate stamp entries are folded additively during conversion.
type compressed struct {
	n      int
	colPtr []int
	rowIdx []int
	values []float64
}

func newCompressed(n int, entries []entry) *compressed {
	cc := &compressed{n: n, colPtr: make([]int, n+1)}

	counts := make([]int, n)
	for _, e := range entries {
		counts[e.col]++
	}
	for j := 0; j < n; j++ {
		cc.colPtr[j+1] = cc.colPtr[j] + counts[j]
	}

	cc.rowIdx = make([]int, len(entries))
	cc.values = make([]float64, len(entries))
	next := make([]int, n)
	copy(next, cc.colPtr[:n])
	for _, e := range entries {
		k := next[e.col]
		cc.rowIdx[k] = e.row
		cc.values[k] = e.value
		next[e.col]++
	}

	// Sort each column by row and fold duplicates in place.
	out := 0
	for j := 0; j < n; j++ {
		lo, hi := cc.colPtr[j], cc.colPtr[j+1]
		seg := colSegment{rows: cc.rowIdx[lo:hi], vals: cc.values[lo:hi]}
		sort.Sort(seg)

		cc.colPtr[j] = out
		for k := lo; k < hi; k++ {
			if out > cc.colPtr[j] && cc.rowIdx[out-1] == cc.rowIdx[k] {
				cc.values[out-1] += cc.values[k]
				continue
			}
			cc.rowIdx[out] = cc.rowIdx[k]
			cc.values[out] = cc.values[k]
			out++
		}
	}
	cc.colPtr[n] = out
	cc.rowIdx = cc.rowIdx[:out]
	cc.values = cc.values[:out]

	return cc
}

func (cc *compressed) nnz() int { return len(cc.values) }

// matVec computes y = A*x.
func (cc *compressed) matVec(x, y []float64) {
	for i := range y {
		y[i] = 0
	}
	for j := 0; j < cc.n; j++ {
		xj := x[j]
		if xj == 0 {
			continue
		}
		for k := cc.colPtr[j]; k < cc.colPtr[j+1]; k++ {
			y[cc.rowIdx[k]] += cc.values[k] * xj
		}
	}
}

type colSegment struct {
	rows []int
	vals []float64
}

func (s colSegment) Len() int { return len(s.rows) }
func (s colSegment) Less(i, j int) bool { return s.rows[i] < s.rows[j] }
func (s colSegment) Swap(i, j int) {
	s.rows[i], s.rows[j] = s.rows[j], s.rows[i]
	s.vals[i], s.vals[j] = s.vals[j], s.vals[i]
}
