package check

import (
	"fmt"
	"io"
	"log"
	"math/rand"

	"lattigov5_hecompute/auxiliary_io"
	"lattigov5_hecompute/configs"
	ltx "lattigov5_hecompute/lattigo_extension"
	mtrxmult "lattigov5_hecompute/matrix_mult"
	nonpolyfunc "lattigov5_hecompute/nonpoly_func"
	dataProc "lattigov5_hecompute/src_pkgs/data_process"
	"lattigov5_hecompute/src_pkgs/predict"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"gonum.org/v1/gonum/mat"
)

// Routine runs one end-to-end check and reports the precision of its decrypted output.
type Routine func(cfg configs.Config, w io.Writer) (PrecisionStats, error)

// Routines lists the checks runnable from the command line.
var Routines = map[string]Routine{
	"matrixmult": MatrixMultCheck,
	"polynomial": PolynomialCheck,
	"score":      ScoreCheck,
}

type session struct {
	kc  *ltx.KeyChain
	eng *ltx.Engine
	rng *rand.Rand
}

func newSession(cfg configs.Config, w io.Writer, rotations []int) (*session, error) {
	params, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	kc := ltx.GenKeyChain(params, rotations)
	eng := ltx.NewEngine(params, kc.Evk, kc.Encryptor)
	eng.SetLogger(log.New(w, "", 0))
	return &session{kc: kc, eng: eng, rng: rand.New(rand.NewSource(cfg.Seed))}, nil
}

func (s *session) randomMatrix(d int) [][]float64 {
	m := make([][]float64, d)
	for i := range m {
		m[i] = make([]float64, d)
		for j := range m[i] {
			m[i][j] = 2*s.rng.Float64() - 1
		}
	}
	return m
}

func (s *session) operands(cfg configs.Config) (A, B [][]float64, err error) {
	if cfg.Input == "" {
		return s.randomMatrix(cfg.Dimension), s.randomMatrix(cfg.Dimension), nil
	}
	var dense *mat.Dense
	if dense, err = dataProc.ReadMatrixXLSX(cfg.Input, "A"); err != nil {
		return
	}
	A = mtrxmult.FromDense(dense)
	if dense, err = dataProc.ReadMatrixXLSX(cfg.Input, "B"); err != nil {
		return
	}
	B = mtrxmult.FromDense(dense)
	if len(A) != cfg.Dimension || len(B) != cfg.Dimension {
		return nil, nil, fmt.Errorf("cannot read operands: %d and %d rows for dimension %d: %w", len(A), len(B), cfg.Dimension, ltx.ErrDimensionMismatch)
	}
	return
}

// MatrixMultCheck multiplies two encrypted d×d matrices and compares with the plaintext
// product. A is encrypted row-major in one go, B row by row and then packed.
func MatrixMultCheck(cfg configs.Config, w io.Writer) (ps PrecisionStats, err error) {
	d := cfg.Dimension
	rots, err := mtrxmult.MatrixMultRotations(d)
	if err != nil {
		return
	}
	s, err := newSession(cfg, w, append(rots, mtrxmult.PackRowsRotations(d)...))
	if err != nil {
		return
	}
	A, B, err := s.operands(cfg)
	if err != nil {
		return
	}
	level := s.eng.Params.MaxLevel()

	ctA, _, err := dataProc.EncMatrixF64(s.eng, A, level)
	if err != nil {
		return
	}
	rows := make([]*rlwe.Ciphertext, d)
	for i := range rows {
		if rows[i], err = s.eng.EncryptAt(B[i], level); err != nil {
			return
		}
	}
	ctB, err := mtrxmult.PackRows(s.eng, rows)
	if err != nil {
		return
	}

	mm, err := mtrxmult.NewMatrixMultiplier(s.eng, d)
	if err != nil {
		return
	}
	ctC, err := mm.MultiplyMatrices(ctA, ctB)
	if err != nil {
		return
	}
	if err = auxiliary_io.QuickCheckInfos(w, ctC, "A×B"); err != nil {
		return
	}
	have, err := auxiliary_io.DecryptDecode(s.eng, s.kc.Decryptor, ctC, d*d)
	if err != nil {
		return
	}
	C, err := mtrxmult.PlainMatrixMult(A, B)
	if err != nil {
		return
	}
	if err = auxiliary_io.PrintMatrixF64(w, have, d, d, false); err != nil {
		return
	}
	if cfg.Output != "" {
		haveM, _ := mtrxmult.RowOrdering(have)
		if err = dataProc.WriteMatrixXLSX(cfg.Output, map[string]mat.Matrix{
			"AB":   mtrxmult.ToDense(haveM),
			"want": mtrxmult.ToDense(C),
		}); err != nil {
			return
		}
	}
	return PrecisionReport(have, mtrxmult.RowOrderingInv(C))
}

// PolynomialCheck evaluates the configured polynomial on random inputs in [-8, 8].
func PolynomialCheck(cfg configs.Config, w io.Writer) (ps PrecisionStats, err error) {
	s, err := newSession(cfg, w, nil)
	if err != nil {
		return
	}
	x := make([]float64, s.eng.Slots())
	want := make([]float64, len(x))
	for i := range x {
		x[i] = 16*s.rng.Float64() - 8
		want[i] = nonpolyfunc.EvaluatePlainPolynomial(cfg.Coefficients, x[i])
	}
	ct, err := s.eng.EncryptAt(x, s.eng.Params.MaxLevel())
	if err != nil {
		return
	}
	pe := nonpolyfunc.NewPolynomialEvaluator(s.eng)
	if ct, err = pe.EvaluatePolynomial(ct, cfg.Coefficients); err != nil {
		return
	}
	if err = auxiliary_io.QuickCheckInfos(w, ct, "p(x)"); err != nil {
		return
	}
	have, err := auxiliary_io.DecryptDecode(s.eng, s.kc.Decryptor, ct, len(x))
	if err != nil {
		return
	}
	if err = auxiliary_io.PrintVectorF64(w, have, false); err != nil {
		return
	}
	return PrecisionReport(have, want)
}

// ScoreCheck scores a random d×d sample block against random weights, applies the
// configured polynomial and thresholds the result.
func ScoreCheck(cfg configs.Config, w io.Writer) (ps PrecisionStats, err error) {
	d := cfg.Dimension
	s, err := newSession(cfg, w, nil)
	if err != nil {
		return
	}
	X := s.randomMatrix(d)
	weights := make([]float64, d)
	for i := range weights {
		weights[i] = 2*s.rng.Float64() - 1
	}
	features, err := dataProc.EncFeatureColumns(s.eng, X, s.eng.Params.MaxLevel())
	if err != nil {
		return
	}

	approx := nonpolyfunc.PolynomialApproximator{
		Evaluator:    nonpolyfunc.NewPolynomialEvaluator(s.eng),
		Coefficients: cfg.Coefficients,
	}
	ct, err := predict.NewFeatureScorer(s.eng, approx).ScoreFeatures(features, weights)
	if err != nil {
		return
	}
	have, err := auxiliary_io.DecryptDecode(s.eng, s.kc.Decryptor, ct, d)
	if err != nil {
		return
	}

	want := make([]float64, d)
	for i := range X {
		dot := 0.0
		for j := range weights {
			dot += X[i][j] * weights[j]
		}
		want[i] = nonpolyfunc.EvaluatePlainPolynomial(cfg.Coefficients, dot)
	}
	labels := predict.Classify(have, cfg.Threshold)
	acc, err := predict.Accuracy(labels, predict.Classify(want, cfg.Threshold))
	if err != nil {
		return
	}
	if _, err = fmt.Fprintf(w, "labels %v, agreement with plaintext %.2f\n", labels, acc); err != nil {
		return
	}
	return PrecisionReport(have, want)
}
