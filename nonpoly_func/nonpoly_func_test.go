package nonpolyfunc

import (
	"math"
	"math/rand"
	"testing"

	ltx "lattigov5_hecompute/lattigo_extension"
	mathFunc "lattigov5_hecompute/src_pkgs/mathematical_func"

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

func newTestContext(t *testing.T) *testContext {
	params, err := hefloat.NewParametersFromLiteral(testParamsLiteral)
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

// bruteForceLevel recomputes the optimal depth by exhaustive recursion over all splits.
func bruteForceLevel(i int) int {
	if i <= 1 {
		return 0
	}
	best := math.MaxInt
	for j := 1; j <= i/2; j++ {
		l := bruteForceLevel(j)
		if r := bruteForceLevel(i - j); r > l {
			l = r
		}
		if l < best {
			best = l
		}
	}
	return best + 1
}

func TestPowerSchedule(t *testing.T) {
	const d = 16
	ps, err := NewPowerSchedule(d)
	require.NoError(t, err)
	require.Equal(t, 0, ps.Levels[0])
	require.Equal(t, 0, ps.Levels[1])
	for i := 2; i <= d; i++ {
		ceilLog := int(math.Ceil(math.Log2(float64(i))))
		require.Equal(t, bruteForceLevel(i), ps.Levels[i], "i=%d", i)
		require.LessOrEqual(t, ps.Levels[i], ceilLog+1)
		j := ps.Splits[i]
		require.True(t, 1 <= j && j <= i/2)
		require.Equal(t, ps.Levels[i]-1, max(ps.Levels[j], ps.Levels[i-j]))
		// no smaller split reaches the same depth
		for k := 1; k < j; k++ {
			require.Greater(t, max(ps.Levels[k], ps.Levels[i-k]), ps.Levels[i]-1)
		}
	}
	require.Equal(t, 4, ps.Depth())
	require.Equal(t, 1, ps.Splits[3])
	require.Equal(t, 2, ps.Splits[4])
	require.Equal(t, 1, ps.Splits[5])

	ps, err = NewPowerSchedule(4)
	require.NoError(t, err)
	require.Equal(t, [][]int{{1}, {2}, {3, 4}}, ps.Layers())

	ps, err = NewPowerSchedule(1)
	require.NoError(t, err)
	require.Equal(t, 0, ps.Depth())

	for _, d := range []int{0, -3} {
		_, err = NewPowerSchedule(d)
		require.ErrorIs(t, err, ltx.ErrInvalidDegree)
	}
}

func TestComputePowers(t *testing.T) {
	tc := newTestContext(t)
	const d = 7
	x := tc.encrypt(t, []float64{0.5, -0.9, 1})

	powers, err := ComputePowers(tc.eng, x, d)
	require.NoError(t, err)
	require.Len(t, powers, d+1)
	require.Nil(t, powers[0])
	require.Same(t, x, powers[1])
	require.Equal(t, tc.params.MaxLevel(), x.Level())

	ps, err := NewPowerSchedule(d)
	require.NoError(t, err)
	for i := 1; i <= d; i++ {
		require.Equal(t, x.Level()-ps.Levels[i], powers[i].Level(), "i=%d", i)
		have := tc.decrypt(t, powers[i], 3)
		require.InDelta(t, math.Pow(0.5, float64(i)), have[0], 1e-6)
		require.InDelta(t, math.Pow(-0.9, float64(i)), have[1], 1e-6)
		require.InDelta(t, 1, have[2], 1e-6)
	}

	low := x.CopyNew()
	require.NoError(t, tc.eng.DropToLevel(low, 2))
	_, err = ComputePowers(tc.eng, low, d)
	require.ErrorIs(t, err, ltx.ErrLevelExhausted)
	_, err = ComputePowers(tc.eng, x, 0)
	require.ErrorIs(t, err, ltx.ErrInvalidDegree)
}

func TestEvaluatePolynomial(t *testing.T) {
	tc := newTestContext(t)
	pe := NewPolynomialEvaluator(tc.eng)

	t.Run("Cubic", func(t *testing.T) {
		x := tc.encrypt(t, []float64{0.5})
		ct, err := pe.EvaluatePolynomial(x, []float64{0.1, 0.2, 0.3, 0.4})
		require.NoError(t, err)
		require.InDelta(t, 0.325, tc.decrypt(t, ct, 1)[0], 1e-6)
		require.Equal(t, tc.params.DefaultScale().Float64(), ct.Scale.Float64())
		require.Equal(t, x.Level()-3, ct.Level())
	})

	t.Run("Degree7", func(t *testing.T) {
		r := rand.New(rand.NewSource(1))
		coeffs := make([]float64, 8)
		for i := range coeffs {
			coeffs[i] = 2*r.Float64() - 1
		}
		values := make([]float64, 16)
		for i := range values {
			values[i] = 2*r.Float64() - 1
		}
		ct, err := pe.EvaluatePolynomial(tc.encrypt(t, values), coeffs)
		require.NoError(t, err)
		have := tc.decrypt(t, ct, len(values))
		for i, v := range values {
			require.InDelta(t, EvaluatePlainPolynomial(coeffs, v), have[i], 1e-4)
		}
	})

	t.Run("Constant", func(t *testing.T) {
		x := tc.encrypt(t, []float64{0.5})
		ct, err := pe.EvaluatePolynomial(x, []float64{0.25})
		require.NoError(t, err)
		require.Equal(t, x.Level(), ct.Level())
		require.InDelta(t, 0.25, tc.decrypt(t, ct, 1)[0], 1e-6)
	})

	t.Run("Errors", func(t *testing.T) {
		x := tc.encrypt(t, []float64{0.5})
		_, err := pe.EvaluatePolynomial(x, nil)
		require.ErrorIs(t, err, ltx.ErrInvalidDegree)

		require.NoError(t, tc.eng.DropToLevel(x, 2))
		_, err = pe.EvaluatePolynomial(x, []float64{1, 1, 1, 1})
		require.ErrorIs(t, err, ltx.ErrLevelExhausted)

		noEnc := NewPolynomialEvaluator(ltx.NewEngine(tc.params, tc.kc.Evk, nil))
		_, err = noEnc.EvaluatePolynomial(x, []float64{1, 1})
		require.ErrorIs(t, err, ltx.ErrInvalidArgument)
	})
}

func TestPolynomialApproximator(t *testing.T) {
	tc := newTestContext(t)
	var approx NonlinearityApproximator = PolynomialApproximator{
		Evaluator:    NewPolynomialEvaluator(tc.eng),
		Coefficients: SigmoidDeg3,
	}
	values := make([]float64, 17)
	for i := range values {
		values[i] = float64(i - 8)
	}
	ct, err := approx.Approximate(tc.encrypt(t, values))
	require.NoError(t, err)
	have := tc.decrypt(t, ct, len(values))
	for i, v := range values {
		require.InDelta(t, EvaluatePlainPolynomial(SigmoidDeg3, v), have[i], 1e-3)
		require.InDelta(t, mathFunc.Sigmoid(v), have[i], 0.12)
	}
}

func TestEvaluatePlainPolynomial(t *testing.T) {
	require.InDelta(t, 0.325, EvaluatePlainPolynomial([]float64{0.1, 0.2, 0.3, 0.4}, 0.5), 1e-12)
	require.Equal(t, 0.0, EvaluatePlainPolynomial(nil, 3))
}
