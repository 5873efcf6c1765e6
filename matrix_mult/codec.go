package matrix_mult

import (
	"fmt"

	ltx "lattigov5_hecompute/lattigo_extension"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
)

// PackRows merges n encrypted rows, each holding n values in its first slots, into one
// ciphertext holding the n×n matrix in row-major order: row i is rotated right by i·n
// and the rows are summed. The rows are left untouched; the result sits at the lowest
// input level.
func PackRows(eng *ltx.Engine, rows []*rlwe.Ciphertext) (ctOut *rlwe.Ciphertext, err error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("cannot PackRows: no row: %w", ltx.ErrInvalidArgument)
	}
	if n*n > eng.Slots() {
		return nil, fmt.Errorf("cannot PackRows: %d×%d matrix exceeds %d slots: %w", n, n, eng.Slots(), ltx.ErrDimensionMismatch)
	}
	level := rows[0].Level()
	for _, row := range rows[1:] {
		if row.Level() < level {
			level = row.Level()
		}
	}
	for i, row := range rows {
		rot := row
		if i != 0 {
			if rot, err = eng.RotateNew(row, -i*n); err != nil {
				return nil, err
			}
		}
		if ctOut == nil {
			ctOut = rot.CopyNew()
			if err = eng.DropToLevel(ctOut, level); err != nil {
				return nil, err
			}
			continue
		}
		if err = eng.Eval.Add(ctOut, rot, ctOut); err != nil {
			return nil, fmt.Errorf("cannot PackRows: %w", err)
		}
	}
	return ctOut, nil
}

// PackRowsRotations returns the rotations PackRows needs keys for.
func PackRowsRotations(n int) []int {
	rots := make([]int, 0, n)
	for i := 1; i < n; i++ {
		rots = append(rots, -i*n)
	}
	return rots
}

// PadWithOffset embeds vector at position offset of a zero vector of length total.
func PadWithOffset(vector []float64, offset, total int) ([]float64, error) {
	if offset < 0 || offset+len(vector) > total {
		return nil, fmt.Errorf("cannot PadWithOffset: %d values at offset %d exceed length %d: %w", len(vector), offset, total, ltx.ErrInvalidArgument)
	}
	padded := make([]float64, total)
	copy(padded[offset:], vector)
	return padded, nil
}

// SigmaMatrix assembles the dense n²×n² sigma permutation row by row: the n rows of block k
// are the rows of IndicatorMask(·, k), each placed at column offset k·n.
func SigmaMatrix(n int) ([][]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("cannot SigmaMatrix: dimension %d: %w", n, ltx.ErrInvalidArgument)
	}
	shape := make([][]float64, n)
	for i := range shape {
		shape[i] = make([]float64, n)
	}
	U := make([][]float64, 0, n*n)
	for k := 0; k < n; k++ {
		mask, err := IndicatorMask(shape, k)
		if err != nil {
			return nil, err
		}
		for _, row := range mask {
			padded, err := PadWithOffset(row, k*n, n*n)
			if err != nil {
				return nil, err
			}
			U = append(U, padded)
		}
	}
	return U, nil
}
