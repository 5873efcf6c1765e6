package matrix_mult

import (
	"fmt"

	ltx "lattigov5_hecompute/lattigo_extension"
)

// The structural maps of the packed product below act on a d×d matrix flattened row-major
// into a d²-vector. Each one is a permutation: output slot r reads input slot src[r].

// permutationDiagonals returns the diagonals of the 0/1 matrix P with P[r][src[r]] = 1.
func permutationDiagonals(src []int) DiagonalSet {
	m := len(src)
	set := DiagonalSet{}
	for r, c := range src {
		l := ((c-r)%m + m) % m
		if set[l] == nil {
			set[l] = make([]float64, m)
		}
		set[l][r] = 1
	}
	return set
}

func permutationSource(d int, f func(i, j int) (int, int)) []int {
	src := make([]int, d*d)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			si, sj := f(i, j)
			src[i*d+j] = si*d + sj
		}
	}
	return src
}

func checkDimension(d int, op string) error {
	if d <= 0 {
		return fmt.Errorf("cannot %s: dimension %d: %w", op, d, ltx.ErrInvalidArgument)
	}
	return nil
}

func checkShift(d, k int, op string) error {
	if err := checkDimension(d, op); err != nil {
		return err
	}
	if k < 0 || k >= d {
		return fmt.Errorf("cannot %s: shift %d outside [0, %d): %w", op, k, d, ltx.ErrInvalidArgument)
	}
	return nil
}

// SigmaDiagonals returns the diagonals of sigma: sigma(A)[i][j] = A[i][(i+j) mod d].
func SigmaDiagonals(d int) (DiagonalSet, error) {
	if err := checkDimension(d, "SigmaDiagonals"); err != nil {
		return nil, err
	}
	return permutationDiagonals(permutationSource(d, func(i, j int) (int, int) {
		return i, (i + j) % d
	})), nil
}

// TauDiagonals returns the diagonals of tau: tau(B)[i][j] = B[(i+j) mod d][j].
func TauDiagonals(d int) (DiagonalSet, error) {
	if err := checkDimension(d, "TauDiagonals"); err != nil {
		return nil, err
	}
	return permutationDiagonals(permutationSource(d, func(i, j int) (int, int) {
		return (i + j) % d, j
	})), nil
}

// ColShiftDiagonals returns the diagonals of phi^k, the left shift of the columns by k:
// phi^k(A)[i][j] = A[i][(j+k) mod d]. Non-zero diagonals sit at k and k-d.
func ColShiftDiagonals(d, k int) (DiagonalSet, error) {
	if err := checkShift(d, k, "ColShiftDiagonals"); err != nil {
		return nil, err
	}
	return permutationDiagonals(permutationSource(d, func(i, j int) (int, int) {
		return i, (j + k) % d
	})), nil
}

// RowShiftDiagonals returns the diagonals of psi^k, the upward shift of the rows by k:
// psi^k(B)[i][j] = B[(i+k) mod d][j]. Its only diagonal is the all-ones one at k·d.
func RowShiftDiagonals(d, k int) (DiagonalSet, error) {
	if err := checkShift(d, k, "RowShiftDiagonals"); err != nil {
		return nil, err
	}
	return permutationDiagonals(permutationSource(d, func(i, j int) (int, int) {
		return (i + k) % d, j
	})), nil
}
