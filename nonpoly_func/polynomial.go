package nonpolyfunc

import (
	"fmt"

	ltx "lattigov5_hecompute/lattigo_extension"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
)

// PolynomialEvaluator evaluates polynomials with plaintext coefficients on a ciphertext,
// one power at a time on top of ComputePowers.
type PolynomialEvaluator struct {
	eng *ltx.Engine
}

// NewPolynomialEvaluator returns an evaluator working through eng, whose Encryptor must
// be set: the constant term is encrypted rather than added as a plaintext.
func NewPolynomialEvaluator(eng *ltx.Engine) *PolynomialEvaluator {
	return &PolynomialEvaluator{eng: eng}
}

// Depth returns the number of rescales EvaluatePolynomial consumes for the given degree.
func (pe *PolynomialEvaluator) Depth(degree int) (int, error) {
	if degree == 0 {
		return 0, nil
	}
	ps, err := NewPowerSchedule(degree)
	if err != nil {
		return 0, err
	}
	return ps.Depth() + 1, nil
}

// EvaluatePolynomial returns Σ_i coefficients[i]·x^i.
// Each term c_i·x^i is rescaled to the nominal scale of the parameters, so the terms
// coming from different branches of the power tree add up without scale mismatch.
func (pe *PolynomialEvaluator) EvaluatePolynomial(x *rlwe.Ciphertext, coefficients []float64) (acc *rlwe.Ciphertext, err error) {
	eng := pe.eng
	if len(coefficients) == 0 {
		return nil, fmt.Errorf("cannot EvaluatePolynomial: no coefficient: %w", ltx.ErrInvalidDegree)
	}
	if eng.Encryptor == nil {
		return nil, fmt.Errorf("cannot EvaluatePolynomial: engine has no encryptor: %w", ltx.ErrInvalidArgument)
	}
	degree := len(coefficients) - 1

	var depth int
	if depth, err = pe.Depth(degree); err != nil {
		return nil, err
	}
	if err = eng.CheckRescales(x, depth, "EvaluatePolynomial"); err != nil {
		return nil, err
	}

	if acc, err = eng.EncryptAt(constant(coefficients[0], eng.Slots()), x.Level()); err != nil {
		return nil, err
	}
	if degree == 0 {
		return acc, nil
	}

	var powers []*rlwe.Ciphertext
	if powers, err = ComputePowers(eng, x, degree); err != nil {
		return nil, err
	}

	nominal := eng.Params.DefaultScale()
	for i := 1; i <= degree; i++ {
		pow := powers[i]

		var q rlwe.Scale
		if q, err = eng.RescaleFactor(pow.Level()); err != nil {
			return nil, err
		}
		ptScale := rlwe.NewScale(nominal.Float64() * q.Float64() / pow.Scale.Float64())

		var pt *rlwe.Plaintext
		if pt, err = eng.EncodeConstAt(coefficients[i], pow.Level(), ptScale); err != nil {
			return nil, err
		}
		var term *rlwe.Ciphertext
		if term, err = eng.Eval.MulNew(pow, pt); err != nil {
			return nil, fmt.Errorf("cannot EvaluatePolynomial: %w", err)
		}
		if err = eng.Rescale(term); err != nil {
			return nil, err
		}
		if err = eng.AlignLevels(acc, term); err != nil {
			return nil, err
		}
		term.Scale = nominal
		acc.Scale = nominal
		if err = eng.Eval.Add(acc, term, acc); err != nil {
			return nil, fmt.Errorf("cannot EvaluatePolynomial: %w", err)
		}
	}
	eng.Logf("%d levels consumed for EvaluatePolynomial", x.Level()-acc.Level())
	return acc, nil
}

// EvaluatePlainPolynomial is the plaintext counterpart of EvaluatePolynomial (Horner).
func EvaluatePlainPolynomial(coefficients []float64, x float64) (y float64) {
	for i := len(coefficients) - 1; i >= 0; i-- {
		y = y*x + coefficients[i]
	}
	return
}

func constant(value float64, slots int) []float64 {
	values := make([]float64, slots)
	for i := range values {
		values[i] = value
	}
	return values
}
