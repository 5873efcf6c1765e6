package matrix_mult

// Plaintext counterparts of the packed product, used to check the encrypted results.

import (
	"fmt"
	"math"

	ltx "lattigov5_hecompute/lattigo_extension"

	"gonum.org/v1/gonum/mat"
)

func newSquare(d int) [][]float64 {
	rslt := make([][]float64, d)
	for i := range rslt {
		rslt[i] = make([]float64, d)
	}
	return rslt
}

func SigmaPermute(A [][]float64) [][]float64 {
	d := len(A)
	rslt := newSquare(d)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			rslt[i][j] = A[i][(i+j)%d]
		}
	}
	return rslt
}

func TauPermute(A [][]float64) [][]float64 {
	d := len(A)
	rslt := newSquare(d)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			rslt[i][j] = A[(i+j)%d][j]
		}
	}
	return rslt
}

// PhiPermute shifts the columns of A left by one.
func PhiPermute(A [][]float64) [][]float64 {
	d := len(A)
	rslt := newSquare(d)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			rslt[i][j] = A[i][(j+1)%d]
		}
	}
	return rslt
}

// PsiPermute shifts the rows of A up by one.
func PsiPermute(A [][]float64) [][]float64 {
	d := len(A)
	rslt := newSquare(d)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			rslt[i][j] = A[(i+1)%d][j]
		}
	}
	return rslt
}

// RowOrdering reshapes a d²-vector into the d×d matrix it packs row-major.
func RowOrdering(a []float64) (A [][]float64, err error) {
	n := len(a)
	d := int(math.Sqrt(float64(n)))
	if d*d != n || d == 0 {
		return nil, fmt.Errorf("cannot RowOrdering: length %d is not a square: %w", n, ltx.ErrInvalidArgument)
	}
	A = newSquare(d)
	for i := 0; i < d; i++ {
		copy(A[i], a[i*d:(i+1)*d])
	}
	return
}

// RowOrderingInv flattens A row-major.
func RowOrderingInv(A [][]float64) (a []float64) {
	if len(A) == 0 {
		return nil
	}
	col := len(A[0])
	a = make([]float64, len(A)*col)
	for i := range A {
		copy(a[i*col:], A[i])
	}
	return
}

func hadamardMult(A, B [][]float64) [][]float64 {
	C := newSquare(len(A))
	for i := range A {
		for j := range A[i] {
			C[i][j] = A[i][j] * B[i][j]
		}
	}
	return C
}

// SquareMatrixProductPermuteVersion computes A·B through the same permutations as the
// encrypted product: Σ_k phi^k(sigma(A)) ⊙ psi^k(tau(B)).
func SquareMatrixProductPermuteVersion(A, B [][]float64) (C [][]float64, err error) {
	d, err := checkSquare(A, "SquareMatrixProductPermuteVersion")
	if err != nil {
		return nil, err
	}
	if db, err := checkSquare(B, "SquareMatrixProductPermuteVersion"); err != nil {
		return nil, err
	} else if db != d {
		return nil, fmt.Errorf("cannot SquareMatrixProductPermuteVersion: %d×%d times %d×%d: %w", d, d, db, db, ltx.ErrDimensionMismatch)
	}
	C = newSquare(d)
	colshiftA := SigmaPermute(A)
	rowshiftB := TauPermute(B)
	for k := 0; k < d; k++ {
		prod := hadamardMult(colshiftA, rowshiftB)
		for i := range C {
			for j := range C[i] {
				C[i][j] += prod[i][j]
			}
		}
		colshiftA = PhiPermute(colshiftA)
		rowshiftB = PsiPermute(rowshiftB)
	}
	return
}

// PlainMatrixMult is the reference product computed with gonum.
func PlainMatrixMult(A, B [][]float64) ([][]float64, error) {
	if len(A) == 0 || len(B) == 0 || len(A[0]) != len(B) {
		return nil, fmt.Errorf("cannot PlainMatrixMult: inner dimensions disagree: %w", ltx.ErrDimensionMismatch)
	}
	var C mat.Dense
	C.Mul(ToDense(A), ToDense(B))
	return FromDense(&C), nil
}

// ToDense copies a row-major [][]float64 into a gonum matrix.
func ToDense(A [][]float64) *mat.Dense {
	return mat.NewDense(len(A), len(A[0]), RowOrderingInv(A))
}

// FromDense copies a gonum matrix into a [][]float64.
func FromDense(M mat.Matrix) [][]float64 {
	r, c := M.Dims()
	A := make([][]float64, r)
	for i := range A {
		A[i] = make([]float64, c)
		for j := range A[i] {
			A[i][j] = M.At(i, j)
		}
	}
	return A
}
