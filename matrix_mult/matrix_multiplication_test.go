package matrix_mult

import (
	"math/rand"
	"testing"

	ltx "lattigov5_hecompute/lattigo_extension"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/he/hefloat"
)

var testParamsLiteral = hefloat.ParametersLiteral{
	LogN:            10,
	LogQ:            []int{55, 45, 45, 45, 45, 45},
	LogP:            []int{60},
	LogDefaultScale: 45,
}

type testContext struct {
	params hefloat.Parameters
	kc     *ltx.KeyChain
	eng    *ltx.Engine
}

func newTestContext(t *testing.T, rotations []int) *testContext {
	params, err := hefloat.NewParametersFromLiteral(testParamsLiteral)
	require.NoError(t, err)
	kc := ltx.GenKeyChain(params, rotations)
	return &testContext{params: params, kc: kc, eng: ltx.NewEngine(params, kc.Evk, kc.Encryptor)}
}

func (tc *testContext) encrypt(t *testing.T, values []float64) *rlwe.Ciphertext {
	ct, err := tc.eng.EncryptAt(values, tc.params.MaxLevel())
	require.NoError(t, err)
	return ct
}

func (tc *testContext) decrypt(t *testing.T, ct *rlwe.Ciphertext, n int) []float64 {
	values := make([]float64, tc.params.MaxSlots())
	require.NoError(t, tc.eng.Encoder.Decode(tc.kc.Decryptor.DecryptNew(ct), values))
	return values[:n]
}

func TestMatrixMultRotations(t *testing.T) {
	rots, err := MatrixMultRotations(2)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 508}, ltx.NormalizeRotations(rots, 512))

	_, err = MatrixMultRotations(0)
	require.ErrorIs(t, err, ltx.ErrInvalidArgument)
}

func TestMultiplyMatrices(t *testing.T) {
	testCases := []struct {
		name string
		A, B [][]float64
	}{
		{
			name: "2x2",
			A:    [][]float64{{1, 2}, {3, 4}},
			B:    [][]float64{{5, 6}, {7, 8}},
		},
		{
			name: "4x4",
			A:    randomMatrix(rand.New(rand.NewSource(4)), 4),
			B:    randomMatrix(rand.New(rand.NewSource(5)), 4),
		},
		{
			name: "1x1",
			A:    [][]float64{{3}},
			B:    [][]float64{{-2}},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			d := len(tt.A)
			rots, err := MatrixMultRotations(d)
			require.NoError(t, err)
			tc := newTestContext(t, rots)

			mm, err := NewMatrixMultiplier(tc.eng, d)
			require.NoError(t, err)
			require.Equal(t, d, mm.Dimension())
			require.Subset(t, ltx.NormalizeRotations(rots, tc.eng.Slots()), mm.Rotations())

			ctA := tc.encrypt(t, RowOrderingInv(tt.A))
			ctB := tc.encrypt(t, RowOrderingInv(tt.B))
			ctC, err := mm.MultiplyMatrices(ctA, ctB)
			require.NoError(t, err)
			if d > 1 {
				require.Equal(t, ctA.Level()-MultiplyMatricesDepth, ctC.Level())
			}
			require.Equal(t, tc.params.MaxLevel(), ctA.Level())

			want, err := PlainMatrixMult(tt.A, tt.B)
			require.NoError(t, err)
			have, err := RowOrdering(tc.decrypt(t, ctC, d*d))
			require.NoError(t, err)
			require.True(t, cmp.Equal(want, have, cmpopts.EquateApprox(0, 1e-4)), cmp.Diff(want, have))

			// the precomputed transforms are reused
			ctC2, err := mm.MultiplyMatrices(ctA, ctB)
			require.NoError(t, err)
			have2, err := RowOrdering(tc.decrypt(t, ctC2, d*d))
			require.NoError(t, err)
			require.True(t, cmp.Equal(want, have2, cmpopts.EquateApprox(0, 1e-4)))
		})
	}
}

func TestMultiplyMatricesErrors(t *testing.T) {
	rots, err := MatrixMultRotations(2)
	require.NoError(t, err)
	tc := newTestContext(t, rots)

	mm, err := NewMatrixMultiplier(tc.eng, 2)
	require.NoError(t, err)

	t.Run("LevelExhausted", func(t *testing.T) {
		ctA := tc.encrypt(t, []float64{1, 2, 3, 4})
		ctB := tc.encrypt(t, []float64{1, 0, 0, 1})
		require.NoError(t, tc.eng.DropToLevel(ctB, MultiplyMatricesDepth-1))
		_, err := mm.MultiplyMatrices(ctA, ctB)
		require.ErrorIs(t, err, ltx.ErrLevelExhausted)
	})

	t.Run("MixedLevels", func(t *testing.T) {
		ctA := tc.encrypt(t, []float64{1, 2, 3, 4})
		ctB := tc.encrypt(t, []float64{1, 0, 0, 1})
		require.NoError(t, tc.eng.DropToLevel(ctB, MultiplyMatricesDepth))
		ctC, err := mm.MultiplyMatrices(ctA, ctB)
		require.NoError(t, err)
		require.Equal(t, 0, ctC.Level())
		require.True(t, cmp.Equal([]float64{1, 2, 3, 4}, tc.decrypt(t, ctC, 4), cmpopts.EquateApprox(0, 1e-4)))
	})

	t.Run("Dimension", func(t *testing.T) {
		_, err := NewMatrixMultiplier(tc.eng, 0)
		require.ErrorIs(t, err, ltx.ErrInvalidArgument)
		// 23² = 529 does not fit twice in 512 slots
		_, err = NewMatrixMultiplier(tc.eng, 23)
		require.ErrorIs(t, err, ltx.ErrDimensionMismatch)
	})
}

func TestPackRows(t *testing.T) {
	const n = 3
	tc := newTestContext(t, PackRowsRotations(n))
	rows := [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}

	cts := make([]*rlwe.Ciphertext, n)
	for i := range rows {
		cts[i] = tc.encrypt(t, rows[i])
	}
	require.NoError(t, tc.eng.DropToLevel(cts[2], 3))

	packed, err := PackRows(tc.eng, cts)
	require.NoError(t, err)
	require.Equal(t, 3, packed.Level())
	require.Equal(t, tc.params.MaxLevel(), cts[0].Level())

	have, err := RowOrdering(tc.decrypt(t, packed, n*n))
	require.NoError(t, err)
	require.True(t, cmp.Equal(rows, have, cmpopts.EquateApprox(0, 1e-6)))
	require.InDelta(t, 0, tc.decrypt(t, packed, n*n+1)[n*n], 1e-6)

	_, err = PackRows(tc.eng, nil)
	require.ErrorIs(t, err, ltx.ErrInvalidArgument)
	_, err = PackRows(tc.eng, make([]*rlwe.Ciphertext, 23))
	require.ErrorIs(t, err, ltx.ErrDimensionMismatch)
}
