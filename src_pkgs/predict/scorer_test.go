package predict

import (
	"testing"

	ltx "lattigov5_hecompute/lattigo_extension"
	mtrxmult "lattigov5_hecompute/matrix_mult"
	nonpolyfunc "lattigov5_hecompute/nonpoly_func"

	"github.com/stretchr/testify/require"
	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/he/hefloat"
)

type testContext struct {
	params hefloat.Parameters
	kc     *ltx.KeyChain
	eng    *ltx.Engine
}

func newTestContext(t *testing.T) *testContext {
	params, err := hefloat.NewParametersFromLiteral(hefloat.ParametersLiteral{
		LogN:            10,
		LogQ:            []int{55, 45, 45, 45, 45, 45},
		LogP:            []int{60},
		LogDefaultScale: 45,
	})
	require.NoError(t, err)
	kc := ltx.GenKeyChain(params, nil)
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

func TestRotateVec(t *testing.T) {
	v := []float64{1, 2, 3}
	testCases := []struct {
		i    int
		want []float64
	}{
		{0, []float64{1, 2, 3}},
		{1, []float64{2, 3, 1}},
		{2, []float64{3, 1, 2}},
		{3, []float64{1, 2, 3}},
	}
	for _, tt := range testCases {
		have, err := RotateVec(v, tt.i)
		require.NoError(t, err)
		require.Equal(t, tt.want, have)
	}
	require.Equal(t, []float64{1, 2, 3}, v)

	for _, i := range []int{4, 100, -1} {
		_, err := RotateVec(v, i)
		require.ErrorIs(t, err, ltx.ErrInvalidArgument)
	}
}

func TestScoreFeatures(t *testing.T) {
	tc := newTestContext(t)

	t.Run("AllOnes", func(t *testing.T) {
		ones := make([]float64, tc.params.MaxSlots())
		for i := range ones {
			ones[i] = 1
		}
		features := []*rlwe.Ciphertext{tc.encrypt(t, ones), tc.encrypt(t, ones)}
		ct, err := NewFeatureScorer(tc.eng, nil).ScoreFeatures(features, []float64{2, 3})
		require.NoError(t, err)
		have := tc.decrypt(t, ct, 3)
		require.InDelta(t, 5, have[0], 1e-6)
		require.InDelta(t, 5, have[1], 1e-6)
		require.InDelta(t, 0, have[2], 1e-6)
		require.Equal(t, tc.params.MaxLevel()-1, ct.Level())
		require.InDelta(t, features[0].Scale.Float64(), ct.Scale.Float64(), 1e-3)
	})

	t.Run("MatrixVector", func(t *testing.T) {
		X := [][]float64{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}, {0.7, 0.8, 0.9}}
		w := []float64{1, -2, 0.5}
		diags, err := mtrxmult.ExtractAllDiagonals(X)
		require.NoError(t, err)
		features := make([]*rlwe.Ciphertext, len(diags))
		for i := range diags {
			features[i] = tc.encrypt(t, diags[i])
		}
		// one column a level lower
		require.NoError(t, tc.eng.DropToLevel(features[1], 3))

		ct, err := NewFeatureScorer(tc.eng, nil).ScoreFeatures(features, w)
		require.NoError(t, err)
		require.Equal(t, 2, ct.Level())
		require.Equal(t, tc.params.MaxLevel(), features[0].Level())
		have := tc.decrypt(t, ct, 3)
		for i := range X {
			want := X[i][0]*w[0] + X[i][1]*w[1] + X[i][2]*w[2]
			require.InDelta(t, want, have[i], 1e-6)
		}
	})

	t.Run("Sigmoid", func(t *testing.T) {
		approx := nonpolyfunc.PolynomialApproximator{
			Evaluator:    nonpolyfunc.NewPolynomialEvaluator(tc.eng),
			Coefficients: nonpolyfunc.SigmoidDeg3,
		}
		features := []*rlwe.Ciphertext{tc.encrypt(t, []float64{1, -1}), tc.encrypt(t, []float64{0.5, 2})}
		ct, err := NewFeatureScorer(tc.eng, approx).ScoreFeatures(features, []float64{2, 3})
		require.NoError(t, err)
		// slot 0: 1·2 + 0.5·3, slot 1: -1·3 + 2·2
		have := tc.decrypt(t, ct, 2)
		require.InDelta(t, nonpolyfunc.EvaluatePlainPolynomial(nonpolyfunc.SigmoidDeg3, 3.5), have[0], 1e-3)
		require.InDelta(t, nonpolyfunc.EvaluatePlainPolynomial(nonpolyfunc.SigmoidDeg3, 1), have[1], 1e-3)
	})

	t.Run("Errors", func(t *testing.T) {
		ct := tc.encrypt(t, []float64{1})
		_, err := NewFeatureScorer(tc.eng, nil).ScoreFeatures([]*rlwe.Ciphertext{ct}, []float64{1, 2})
		require.ErrorIs(t, err, ltx.ErrDimensionMismatch)
		_, err = NewFeatureScorer(tc.eng, nil).ScoreFeatures(nil, nil)
		require.ErrorIs(t, err, ltx.ErrInvalidArgument)
	})
}

func TestClassify(t *testing.T) {
	labels := Classify([]float64{0.1, 0.5, 0.9}, 0.5)
	require.Equal(t, []int{0, 1, 1}, labels)
	acc, err := Accuracy(labels, []int{0, 0, 1})
	require.NoError(t, err)
	require.InDelta(t, 2.0/3, acc, 1e-12)
	_, err = Accuracy(labels, nil)
	require.ErrorIs(t, err, ltx.ErrDimensionMismatch)
}
