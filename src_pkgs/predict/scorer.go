package predict

import (
	"fmt"

	ltx "lattigov5_hecompute/lattigo_extension"
	nonpolyfunc "lattigov5_hecompute/nonpoly_func"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
)

// RotateVec returns v rotated left by i: rotated[t] = v[(t+i) mod len(v)].
// Amounts outside [0, len(v)] are rejected.
func RotateVec(v []float64, i int) ([]float64, error) {
	if i < 0 || i > len(v) {
		return nil, fmt.Errorf("cannot RotateVec: rotation %d outside [0, %d]: %w", i, len(v), ltx.ErrInvalidArgument)
	}
	rotated := make([]float64, len(v))
	for t := range v {
		rotated[t] = v[(t+i)%len(v)]
	}
	return rotated, nil
}

// FeatureScorer computes encrypted weighted sums of encrypted feature columns with
// plaintext weights, optionally followed by a nonlinearity.
type FeatureScorer struct {
	eng          *ltx.Engine
	nonlinearity nonpolyfunc.NonlinearityApproximator
}

// NewFeatureScorer returns a scorer. nonlinearity may be nil, in which case the raw
// weighted sum is returned.
func NewFeatureScorer(eng *ltx.Engine, nonlinearity nonpolyfunc.NonlinearityApproximator) *FeatureScorer {
	return &FeatureScorer{eng: eng, nonlinearity: nonlinearity}
}

// ScoreFeatures returns Σ_i features[i] ⊙ rot_i(weights), where rot_i is the left
// rotation by i of the weights held in the first len(weights) slots. With feature
// columns laid out as the generalized diagonals of a sample matrix, this is the
// matrix-vector product of the samples with the weights. The features are not modified.
func (fs *FeatureScorer) ScoreFeatures(features []*rlwe.Ciphertext, weights []float64) (ct *rlwe.Ciphertext, err error) {
	eng := fs.eng
	n := len(weights)
	if n == 0 {
		return nil, fmt.Errorf("cannot ScoreFeatures: no weight: %w", ltx.ErrInvalidArgument)
	}
	if len(features) != n {
		return nil, fmt.Errorf("cannot ScoreFeatures: %d feature columns for %d weights: %w", len(features), n, ltx.ErrDimensionMismatch)
	}

	level := features[0].Level()
	for _, f := range features[1:] {
		if f.Level() < level {
			level = f.Level()
		}
	}
	aligned := make([]*rlwe.Ciphertext, n)
	for i, f := range features {
		aligned[i] = f
		if f.Level() > level {
			aligned[i] = eng.Eval.DropLevelNew(f, f.Level()-level)
		}
	}

	scale, err := eng.RescaleFactor(level)
	if err != nil {
		return nil, err
	}
	rotations := make([]*rlwe.Plaintext, n)
	for i := range rotations {
		var rot []float64
		if rot, err = RotateVec(weights, i); err != nil {
			return nil, err
		}
		if rotations[i], err = eng.EncodeAt(rot, level, scale); err != nil {
			return nil, err
		}
	}

	if ct, err = eng.EvaluateEncryptedPlainVector(aligned, rotations); err != nil {
		return nil, err
	}
	if fs.nonlinearity == nil {
		return ct, nil
	}
	return fs.nonlinearity.Approximate(ct)
}

// Classify thresholds decrypted scores into 0/1 labels.
func Classify(scores []float64, threshold float64) []int {
	labels := make([]int, len(scores))
	for i, s := range scores {
		if s >= threshold {
			labels[i] = 1
		}
	}
	return labels
}

// Accuracy returns the fraction of labels equal to want.
func Accuracy(labels, want []int) (float64, error) {
	if len(labels) != len(want) || len(labels) == 0 {
		return 0, fmt.Errorf("cannot Accuracy: %d labels for %d references: %w", len(labels), len(want), ltx.ErrDimensionMismatch)
	}
	correct := 0
	for i := range labels {
		if labels[i] == want[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(labels)), nil
}
