package nonpolyfunc

import "github.com/tuneinsight/lattigo/v5/core/rlwe"

// SigmoidDeg3 is the least-squares degree-3 approximation of the sigmoid on [-8, 8].
var SigmoidDeg3 = []float64{0.5, 0.15012, 0, -0.0015930}

// NonlinearityApproximator evaluates an approximation of a scalar function slot-wise on a ciphertext.
type NonlinearityApproximator interface {
	Approximate(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error)
}

// PolynomialApproximator approximates a function by a fixed polynomial.
type PolynomialApproximator struct {
	Evaluator    *PolynomialEvaluator
	Coefficients []float64
}

func (pa PolynomialApproximator) Approximate(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	return pa.Evaluator.EvaluatePolynomial(ct, pa.Coefficients)
}
