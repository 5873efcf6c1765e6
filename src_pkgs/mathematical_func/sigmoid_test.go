package mathematical_func

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSigmoid(t *testing.T) {
	require.Equal(t, 0.5, Sigmoid(0))
	require.InDelta(t, 1, Sigmoid(800), 1e-12)
	require.InDelta(t, 0, Sigmoid(-800), 1e-12)
	require.InDelta(t, 1-Sigmoid(2), SigmoidReversed(2), 1e-15)
}

func TestFitPolynomial(t *testing.T) {
	cubic := func(x float64) float64 { return 1 - 2*x + 0.5*x*x*x }
	have, err := FitPolynomial(cubic, -2, 2, 3, 20)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{1, -2, 0, 0.5}, have, 1e-9)

	sig, err := FitPolynomial(Sigmoid, -8, 8, 3, 200)
	require.NoError(t, err)
	require.InDelta(t, 0.5, sig[0], 1e-9)
	require.InDelta(t, 0.15, sig[1], 0.01)
	require.InDelta(t, 0, sig[2], 1e-9)
	for x := -8.0; x <= 8; x += 0.25 {
		y := sig[0] + x*(sig[1]+x*(sig[2]+x*sig[3]))
		require.InDelta(t, Sigmoid(x), y, 0.13)
	}

	_, err = FitPolynomial(Sigmoid, 1, -1, 3, 10)
	require.Error(t, err)
	_, err = FitPolynomial(Sigmoid, -1, 1, 3, 3)
	require.Error(t, err)
}
