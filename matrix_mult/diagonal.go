package matrix_mult

import (
	"fmt"

	ltx "lattigov5_hecompute/lattigo_extension"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// DiagonalSet holds the non-zero generalized diagonals of a square matrix keyed by offset:
// D[l][t] = M[t][(t+l) mod n]. It is the form consumed by ltx.NewLinearTransform.
type DiagonalSet map[int][]float64

func checkSquare(matrix [][]float64, op string) (n int, err error) {
	n = len(matrix)
	if n == 0 {
		return 0, fmt.Errorf("cannot %s: empty matrix: %w", op, ltx.ErrInvalidArgument)
	}
	for i, row := range matrix {
		if len(row) != n {
			return 0, fmt.Errorf("cannot %s: row %d has %d entries, want %d: %w", op, i, len(row), n, ltx.ErrInvalidArgument)
		}
	}
	return n, nil
}

// ExtractDiagonal returns the wrap-around diagonal of matrix at offset.
func ExtractDiagonal(matrix [][]float64, offset int) ([]float64, error) {
	n, err := checkSquare(matrix, "ExtractDiagonal")
	if err != nil {
		return nil, err
	}
	if offset < 0 || offset >= n {
		return nil, fmt.Errorf("cannot ExtractDiagonal: offset %d outside [0, %d): %w", offset, n, ltx.ErrInvalidArgument)
	}
	diag := make([]float64, n)
	for t := range diag {
		diag[t] = matrix[t][(t+offset)%n]
	}
	return diag, nil
}

// ExtractAllDiagonals returns the n diagonals of matrix in offset order.
func ExtractAllDiagonals(matrix [][]float64) ([][]float64, error) {
	n, err := checkSquare(matrix, "ExtractAllDiagonals")
	if err != nil {
		return nil, err
	}
	diags := make([][]float64, n)
	for l := range diags {
		if diags[l], err = ExtractDiagonal(matrix, l); err != nil {
			return nil, err
		}
	}
	return diags, nil
}

// IndicatorMask returns the n×n 0/1 matrix selecting the cells of diagonal offset,
// i.e. mask[i][j] = 1 iff j = (i+offset) mod n. Cells are selected by position, so
// matrices with repeated values get the same mask as any other matrix of that size.
func IndicatorMask(matrix [][]float64, offset int) ([][]float64, error) {
	n, err := checkSquare(matrix, "IndicatorMask")
	if err != nil {
		return nil, err
	}
	if offset < 0 || offset >= n {
		return nil, fmt.Errorf("cannot IndicatorMask: offset %d outside [0, %d): %w", offset, n, ltx.ErrInvalidArgument)
	}
	mask := make([][]float64, n)
	for i := range mask {
		mask[i] = make([]float64, n)
		mask[i][(i+offset)%n] = 1
	}
	return mask, nil
}

// NewDiagonalSet extracts the diagonals of matrix and drops the all-zero ones.
func NewDiagonalSet(matrix [][]float64) (DiagonalSet, error) {
	diags, err := ExtractAllDiagonals(matrix)
	if err != nil {
		return nil, err
	}
	set := make(DiagonalSet, len(diags))
	for l, diag := range diags {
		if !isAllZero(diag) {
			set[l] = diag
		}
	}
	return set, nil
}

// Offsets returns the offsets of the set in increasing order.
func (set DiagonalSet) Offsets() []int {
	offsets := maps.Keys(set)
	slices.Sort(offsets)
	return offsets
}

// Matrix rebuilds the n×n matrix the set describes.
func (set DiagonalSet) Matrix(n int) [][]float64 {
	M := make([][]float64, n)
	for i := range M {
		M[i] = make([]float64, n)
	}
	for l, diag := range set {
		j := ((l % n) + n) % n
		for i := 0; i < n; i++ {
			M[i][j] = diag[i]
			j = (j + 1) % n
		}
	}
	return M
}

func isAllZero(arr []float64) bool {
	for _, v := range arr {
		if v != 0 {
			return false
		}
	}
	return true
}
