package data_process

import (
	"fmt"

	ltx "lattigov5_hecompute/lattigo_extension"
	mtrxmult "lattigov5_hecompute/matrix_mult"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
)

// EncMatrixF64 encrypts matrix in row-major order at level. With a nil encryptor on
// eng only the plaintext is returned.
func EncMatrixF64(eng *ltx.Engine, matrix [][]float64, level int) (ciphertext *rlwe.Ciphertext, plaintext *rlwe.Plaintext, err error) {
	return encode(eng, mtrxmult.RowOrderingInv(matrix), level)
}

// EncRowVectorF64 encrypts count consecutive copies of vector at level.
func EncRowVectorF64(eng *ltx.Engine, vector []float64, count int, level int) (ciphertext *rlwe.Ciphertext, plaintext *rlwe.Plaintext, err error) {
	if count*len(vector) > eng.Slots() {
		return nil, nil, fmt.Errorf("cannot EncRowVectorF64: %d copies of %d values exceed %d slots: %w", count, len(vector), eng.Slots(), ltx.ErrDimensionMismatch)
	}
	plainVals := make([]float64, count*len(vector))
	for i := 0; i < count; i++ {
		copy(plainVals[i*len(vector):], vector)
	}
	return encode(eng, plainVals, level)
}

func encode(eng *ltx.Engine, values []float64, level int) (ciphertext *rlwe.Ciphertext, plaintext *rlwe.Plaintext, err error) {
	if plaintext, err = eng.EncodeAt(values, level, eng.Params.DefaultScale()); err != nil {
		return nil, nil, err
	}
	if eng.Encryptor == nil {
		return nil, plaintext, nil
	}
	if ciphertext, err = eng.Encryptor.EncryptNew(plaintext); err != nil {
		return nil, nil, err
	}
	return ciphertext, plaintext, nil
}

// EncFeatureColumns encrypts the n generalized diagonals of an n×n sample block, one
// ciphertext per diagonal, in the layout expected by the feature scorer.
func EncFeatureColumns(eng *ltx.Engine, block [][]float64, level int) ([]*rlwe.Ciphertext, error) {
	diags, err := mtrxmult.ExtractAllDiagonals(block)
	if err != nil {
		return nil, err
	}
	cts := make([]*rlwe.Ciphertext, len(diags))
	for i := range diags {
		if cts[i], err = eng.EncryptAt(diags[i], level); err != nil {
			return nil, err
		}
	}
	return cts, nil
}
