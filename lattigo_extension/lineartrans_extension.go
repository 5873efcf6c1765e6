package lattigoextension

import (
	"fmt"
	"sync"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// LinearTransform is a dim×dim linear map stored as its non-zero generalized diagonals:
// Diagonals[l][t] = M[t][(t+l) mod dim]. It is evaluated on a ciphertext holding a
// dim-vector in its first dim slots (zero elsewhere) with the rotate-and-sum method.
//
// A LinearTransform caches the plaintext encodings of its diagonals per level and may be
// shared by goroutines evaluating on distinct engines.
type LinearTransform struct {
	Dim       int
	Diagonals map[int][]float64

	mu    sync.Mutex
	cache map[int]map[int]*rlwe.Plaintext
}

// NewLinearTransform normalizes the diagonal offsets into [0, dim), sums diagonals
// landing on the same offset and drops all-zero ones.
func NewLinearTransform(dim int, diagonals map[int][]float64) (*LinearTransform, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("cannot NewLinearTransform: dimension %d: %w", dim, ErrInvalidArgument)
	}
	diags := make(map[int][]float64, len(diagonals))
	for k, diag := range diagonals {
		if len(diag) != dim {
			return nil, fmt.Errorf("cannot NewLinearTransform: diagonal %d has length %d, want %d: %w", k, len(diag), dim, ErrDimensionMismatch)
		}
		l := ((k % dim) + dim) % dim
		if _, ok := diags[l]; !ok {
			diags[l] = make([]float64, dim)
		}
		for t, v := range diag {
			diags[l][t] += v
		}
	}
	for l, diag := range diags {
		if isAllZero(diag) {
			delete(diags, l)
		}
	}
	if len(diags) == 0 {
		return nil, fmt.Errorf("cannot NewLinearTransform: all diagonals are zero: %w", ErrInvalidArgument)
	}
	return &LinearTransform{Dim: dim, Diagonals: diags, cache: map[int]map[int]*rlwe.Plaintext{}}, nil
}

// Offsets returns the non-zero diagonal offsets in increasing order.
func (lt *LinearTransform) Offsets() []int {
	offsets := maps.Keys(lt.Diagonals)
	slices.Sort(offsets)
	return offsets
}

// Rotations returns the rotations an evaluation needs keys for.
func (lt *LinearTransform) Rotations() []int {
	rots := []int{-lt.Dim}
	for _, l := range lt.Offsets() {
		if l != 0 {
			rots = append(rots, l)
		}
	}
	return rots
}

// Apply is the plaintext counterpart of EvaluateLinearTransform.
func (lt *LinearTransform) Apply(vec []float64) ([]float64, error) {
	if len(vec) != lt.Dim {
		return nil, fmt.Errorf("cannot Apply: vector of length %d, want %d: %w", len(vec), lt.Dim, ErrDimensionMismatch)
	}
	out := make([]float64, lt.Dim)
	for l, diag := range lt.Diagonals {
		for t := range out {
			out[t] += diag[t] * vec[(t+l)%lt.Dim]
		}
	}
	return out, nil
}

func (lt *LinearTransform) plaintexts(eng *Engine, level int) (map[int]*rlwe.Plaintext, error) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	if pts, ok := lt.cache[level]; ok {
		return pts, nil
	}
	scale, err := eng.RescaleFactor(level)
	if err != nil {
		return nil, err
	}
	pts := make(map[int]*rlwe.Plaintext, len(lt.Diagonals))
	for l, diag := range lt.Diagonals {
		if pts[l], err = eng.EncodeAt(diag, level, scale); err != nil {
			return nil, err
		}
	}
	lt.cache[level] = pts
	return pts, nil
}

// CheckDim verifies that a dim-vector and its rotated copy fit in the slots.
func (eng *Engine) CheckDim(dim int, op string) error {
	if dim <= 0 {
		return fmt.Errorf("cannot %s: dimension %d: %w", op, dim, ErrInvalidArgument)
	}
	if dim != eng.Slots() && 2*dim > eng.Slots() {
		return fmt.Errorf("cannot %s: dimension %d needs %d slots, have %d: %w", op, dim, 2*dim, eng.Slots(), ErrDimensionMismatch)
	}
	return nil
}

// duplicateExtend returns ct + rot(ct, -dim), so that left rotations by 0..dim-1 of the
// result read the input cyclically in its first dim slots. When dim fills all the
// slots the rotation is already cyclic and ct is copied.
func (eng *Engine) duplicateExtend(ct *rlwe.Ciphertext, dim int) (*rlwe.Ciphertext, error) {
	if dim == eng.Slots() {
		return ct.CopyNew(), nil
	}
	rot, err := eng.RotateNew(ct, -dim)
	if err != nil {
		return nil, err
	}
	if err = eng.Eval.Add(rot, ct, rot); err != nil {
		return nil, fmt.Errorf("cannot duplicateExtend: %w", err)
	}
	return rot, nil
}

// EvaluateLinearTransform applies lt to ctIn with plaintext diagonals and consumes one rescale.
// The diagonals are encoded with the rescale factor, so ctOut keeps the scale of ctIn.
func (eng *Engine) EvaluateLinearTransform(ctIn *rlwe.Ciphertext, lt *LinearTransform) (ctOut *rlwe.Ciphertext, err error) {
	if err = eng.CheckDim(lt.Dim, "EvaluateLinearTransform"); err != nil {
		return nil, err
	}
	if err = eng.CheckRescales(ctIn, 1, "EvaluateLinearTransform"); err != nil {
		return nil, err
	}
	pts, err := lt.plaintexts(eng, ctIn.Level())
	if err != nil {
		return nil, err
	}
	ctExt, err := eng.duplicateExtend(ctIn, lt.Dim)
	if err != nil {
		return nil, err
	}
	for _, l := range lt.Offsets() {
		var rot *rlwe.Ciphertext
		if rot, err = eng.RotateNew(ctExt, l); err != nil {
			return nil, err
		}
		var prod *rlwe.Ciphertext
		if prod, err = eng.Eval.MulNew(rot, pts[l]); err != nil {
			return nil, fmt.Errorf("cannot EvaluateLinearTransform: %w", err)
		}
		if ctOut == nil {
			ctOut = prod
			continue
		}
		if err = eng.Eval.Add(ctOut, prod, ctOut); err != nil {
			return nil, fmt.Errorf("cannot EvaluateLinearTransform: %w", err)
		}
	}
	if err = eng.Rescale(ctOut); err != nil {
		return nil, err
	}
	eng.Logf("%d levels consumed for LinearTransform", ctIn.Level()-ctOut.Level())
	return ctOut, nil
}

// EvaluateEncryptedTransform applies the dim×dim map whose diagonals are given encrypted,
// keyed by offset. The diagonals are not modified. Each product is relinearized and the
// sum is rescaled once.
func (eng *Engine) EvaluateEncryptedTransform(ctIn *rlwe.Ciphertext, diagonals map[int]*rlwe.Ciphertext, dim int) (ctOut *rlwe.Ciphertext, err error) {
	if err = eng.CheckDim(dim, "EvaluateEncryptedTransform"); err != nil {
		return nil, err
	}
	if len(diagonals) == 0 {
		return nil, fmt.Errorf("cannot EvaluateEncryptedTransform: no diagonal: %w", ErrInvalidArgument)
	}
	offsets := maps.Keys(diagonals)
	slices.Sort(offsets)
	for _, l := range offsets {
		if l < 0 || l >= dim {
			return nil, fmt.Errorf("cannot EvaluateEncryptedTransform: offset %d outside [0, %d): %w", l, dim, ErrInvalidArgument)
		}
	}
	lowest := ctIn
	for _, l := range offsets {
		if diagonals[l].Level() < lowest.Level() {
			lowest = diagonals[l]
		}
	}
	if err = eng.CheckRescales(lowest, 1, "EvaluateEncryptedTransform"); err != nil {
		return nil, err
	}
	ctExt, err := eng.duplicateExtend(ctIn, dim)
	if err != nil {
		return nil, err
	}
	for _, l := range offsets {
		var rot, prod *rlwe.Ciphertext
		if rot, err = eng.RotateNew(ctExt, l); err != nil {
			return nil, err
		}
		diag := diagonals[l]
		if diag.Level() > rot.Level() {
			diag = eng.Eval.DropLevelNew(diag, diag.Level()-rot.Level())
		} else if err = eng.DropToLevel(rot, diag.Level()); err != nil {
			return nil, err
		}
		if prod, err = eng.Eval.MulRelinNew(rot, diag); err != nil {
			return nil, fmt.Errorf("cannot EvaluateEncryptedTransform: %w", err)
		}
		if ctOut == nil {
			ctOut = prod
			continue
		}
		if err = eng.Eval.Add(ctOut, prod, ctOut); err != nil {
			return nil, fmt.Errorf("cannot EvaluateEncryptedTransform: %w", err)
		}
	}
	if err = eng.Rescale(ctOut); err != nil {
		return nil, err
	}
	eng.Logf("%d levels consumed for EncryptedTransform", ctIn.Level()-ctOut.Level())
	return ctOut, nil
}

// EvaluateEncryptedPlainVector computes Σ_i diagonals[i] ⊙ vectors[i] for encrypted
// diagonals and plaintext vectors, then rescales. No rotation is involved: the vectors
// are expected to be already rotated.
func (eng *Engine) EvaluateEncryptedPlainVector(diagonals []*rlwe.Ciphertext, vectors []*rlwe.Plaintext) (ctOut *rlwe.Ciphertext, err error) {
	if len(diagonals) == 0 {
		return nil, fmt.Errorf("cannot EvaluateEncryptedPlainVector: no diagonal: %w", ErrInvalidArgument)
	}
	if len(diagonals) != len(vectors) {
		return nil, fmt.Errorf("cannot EvaluateEncryptedPlainVector: %d diagonals for %d vectors: %w", len(diagonals), len(vectors), ErrDimensionMismatch)
	}
	level := diagonals[0].Level()
	for i := range diagonals {
		if diagonals[i].Level() != level || vectors[i].Level() != level {
			return nil, fmt.Errorf("cannot EvaluateEncryptedPlainVector: operand %d not at level %d: %w", i, level, ErrDimensionMismatch)
		}
	}
	if err = eng.CheckRescales(diagonals[0], 1, "EvaluateEncryptedPlainVector"); err != nil {
		return nil, err
	}
	if ctOut, err = eng.Eval.MulNew(diagonals[0], vectors[0]); err != nil {
		return nil, fmt.Errorf("cannot EvaluateEncryptedPlainVector: %w", err)
	}
	for i := 1; i < len(diagonals); i++ {
		var prod *rlwe.Ciphertext
		if prod, err = eng.Eval.MulNew(diagonals[i], vectors[i]); err != nil {
			return nil, fmt.Errorf("cannot EvaluateEncryptedPlainVector: %w", err)
		}
		if err = eng.Eval.Add(ctOut, prod, ctOut); err != nil {
			return nil, fmt.Errorf("cannot EvaluateEncryptedPlainVector: %w", err)
		}
	}
	if err = eng.Rescale(ctOut); err != nil {
		return nil, err
	}
	eng.Logf("%d levels consumed for EncryptedPlainVector", level-ctOut.Level())
	return ctOut, nil
}

func isAllZero(arr []float64) bool {
	for _, v := range arr {
		if v != 0 {
			return false
		}
	}
	return true
}
