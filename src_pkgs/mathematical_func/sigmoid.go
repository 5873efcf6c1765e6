package mathematical_func

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SigmoidReversed is sigmoid(-x).
func SigmoidReversed(x float64) float64 {
	return Sigmoid(-x)
}

// Sigmoid is 1/(1+e^-x), evaluated without overflow for large |x|.
func Sigmoid(x float64) float64 {
	if x > 0 {
		return 1.0 / (1.0 + math.Exp(-x))
	}
	return math.Exp(x) / (1.0 + math.Exp(x))
}

// FitPolynomial returns the coefficients, lowest degree first, of the least-squares
// polynomial of the given degree through f sampled at points evenly spaced on [a, b].
func FitPolynomial(f func(float64) float64, a, b float64, degree, points int) ([]float64, error) {
	if degree < 0 || points <= degree || !(a < b) {
		return nil, fmt.Errorf("cannot FitPolynomial: degree %d, %d points on [%v, %v]", degree, points, a, b)
	}
	vander := mat.NewDense(points, degree+1, nil)
	y := mat.NewVecDense(points, nil)
	for i := 0; i < points; i++ {
		x := a + (b-a)*float64(i)/float64(points-1)
		p := 1.0
		for j := 0; j <= degree; j++ {
			vander.Set(i, j, p)
			p *= x
		}
		y.SetVec(i, f(x))
	}
	var coeffs mat.VecDense
	if err := coeffs.SolveVec(vander, y); err != nil {
		return nil, fmt.Errorf("cannot FitPolynomial: %w", err)
	}
	return coeffs.RawVector().Data, nil
}
