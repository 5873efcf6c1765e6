package lattigoextension

import (
	"fmt"
	"io"
	"log"
	"math/big"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/he/hefloat"
)

// Engine is the handle through which the matrix, polynomial and scoring routines reach CKKS.
// It is built once per parameter set and key set, and is not safe for concurrent use:
// goroutines must each work on their own ShallowCopy.
type Engine struct {
	Params  hefloat.Parameters
	Encoder *hefloat.Encoder
	Eval    *hefloat.Evaluator
	// Encryptor is optional. Only the polynomial evaluator needs it, to encrypt the constant term.
	Encryptor *rlwe.Encryptor

	logger *log.Logger
}

func NewEngine(params hefloat.Parameters, evk rlwe.EvaluationKeySet, encryptor *rlwe.Encryptor) *Engine {
	return &Engine{
		Params:    params,
		Encoder:   hefloat.NewEncoder(params),
		Eval:      hefloat.NewEvaluator(params, evk),
		Encryptor: encryptor,
		logger:    log.New(io.Discard, "", 0),
	}
}

// SetLogger sets the destination of the level-consumption traces. A nil logger silences them.
func (eng *Engine) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	eng.logger = logger
}

func (eng *Engine) Logf(format string, args ...interface{}) {
	eng.logger.Printf(format, args...)
}

// ShallowCopy returns an Engine sharing parameters and keys with eng but owning its own buffers.
func (eng *Engine) ShallowCopy() *Engine {
	cpy := &Engine{
		Params:  eng.Params,
		Encoder: eng.Encoder.ShallowCopy(),
		Eval:    eng.Eval.ShallowCopy(),
		logger:  eng.logger,
	}
	if eng.Encryptor != nil {
		cpy.Encryptor = eng.Encryptor.ShallowCopy()
	}
	return cpy
}

func (eng *Engine) Slots() int {
	return eng.Params.MaxSlots()
}

// RescaleFactor returns the product of the primes removed by a rescale of a ciphertext at level.
// A plaintext multiplier encoded with this scale leaves the ciphertext scale unchanged after the rescale.
func (eng *Engine) RescaleFactor(level int) (rlwe.Scale, error) {
	nb := eng.Params.LevelsConsumedPerRescaling()
	if level < nb {
		return rlwe.Scale{}, fmt.Errorf("cannot RescaleFactor: level %d below %d: %w", level, nb, ErrLevelExhausted)
	}
	Q := eng.Params.Q()
	prod := new(big.Int).SetUint64(Q[level])
	for i := 1; i < nb; i++ {
		prod.Mul(prod, new(big.Int).SetUint64(Q[level-i]))
	}
	return rlwe.NewScale(prod), nil
}

// EncodeAt encodes values into the first len(values) slots of a plaintext at the given level and scale.
func (eng *Engine) EncodeAt(values []float64, level int, scale rlwe.Scale) (pt *rlwe.Plaintext, err error) {
	if len(values) > eng.Slots() {
		return nil, fmt.Errorf("cannot EncodeAt: %d values for %d slots: %w", len(values), eng.Slots(), ErrDimensionMismatch)
	}
	if level < 0 || level > eng.Params.MaxLevel() {
		return nil, fmt.Errorf("cannot EncodeAt: level %d outside [0, %d]: %w", level, eng.Params.MaxLevel(), ErrInvalidArgument)
	}
	slotVals := make([]float64, eng.Slots())
	copy(slotVals, values)
	pt = hefloat.NewPlaintext(eng.Params, level)
	pt.Scale = scale
	if err = eng.Encoder.Encode(slotVals, pt); err != nil {
		return nil, fmt.Errorf("cannot EncodeAt: %w", err)
	}
	return
}

// EncodeConstAt encodes value replicated in every slot.
func (eng *Engine) EncodeConstAt(value float64, level int, scale rlwe.Scale) (*rlwe.Plaintext, error) {
	values := make([]float64, eng.Slots())
	for i := range values {
		values[i] = value
	}
	return eng.EncodeAt(values, level, scale)
}

// EncryptAt encodes values at the default scale and encrypts them at the given level.
func (eng *Engine) EncryptAt(values []float64, level int) (ct *rlwe.Ciphertext, err error) {
	if eng.Encryptor == nil {
		return nil, fmt.Errorf("cannot EncryptAt: engine has no encryptor: %w", ErrInvalidArgument)
	}
	var pt *rlwe.Plaintext
	if pt, err = eng.EncodeAt(values, level, eng.Params.DefaultScale()); err != nil {
		return nil, err
	}
	if ct, err = eng.Encryptor.EncryptNew(pt); err != nil {
		return nil, fmt.Errorf("cannot EncryptAt: %w", err)
	}
	return
}

// CheckRescales returns ErrLevelExhausted if ct cannot go through n more rescales.
func (eng *Engine) CheckRescales(ct *rlwe.Ciphertext, n int, op string) error {
	need := n * eng.Params.LevelsConsumedPerRescaling()
	if ct.Level() < need {
		return fmt.Errorf("cannot %s: ciphertext at level %d, need %d: %w", op, ct.Level(), need, ErrLevelExhausted)
	}
	return nil
}

// Rescale rescales ct in place.
func (eng *Engine) Rescale(ct *rlwe.Ciphertext) error {
	if err := eng.CheckRescales(ct, 1, "Rescale"); err != nil {
		return err
	}
	if err := eng.Eval.Rescale(ct, ct); err != nil {
		return fmt.Errorf("cannot Rescale: %w", err)
	}
	return nil
}

// DropToLevel mod-switches ct in place down to level.
func (eng *Engine) DropToLevel(ct *rlwe.Ciphertext, level int) error {
	if level < 0 {
		return fmt.Errorf("cannot DropToLevel: target level %d: %w", level, ErrLevelExhausted)
	}
	if level > ct.Level() {
		return fmt.Errorf("cannot DropToLevel: target level %d above ciphertext level %d: %w", level, ct.Level(), ErrInvalidArgument)
	}
	eng.Eval.DropLevel(ct, ct.Level()-level)
	return nil
}

// AlignLevels drops the higher of a and b to the level of the other.
func (eng *Engine) AlignLevels(a, b *rlwe.Ciphertext) error {
	switch {
	case a.Level() > b.Level():
		return eng.DropToLevel(a, b.Level())
	case b.Level() > a.Level():
		return eng.DropToLevel(b, a.Level())
	}
	return nil
}

// RotateNew rotates ct left by k slots (right for negative k). A rotation by a multiple
// of the slot count is a copy and needs no key.
func (eng *Engine) RotateNew(ct *rlwe.Ciphertext, k int) (*rlwe.Ciphertext, error) {
	if k%eng.Slots() == 0 {
		return ct.CopyNew(), nil
	}
	rot, err := eng.Eval.RotateNew(ct, k)
	if err != nil {
		return nil, fmt.Errorf("cannot RotateNew by %d: %w", k, err)
	}
	return rot, nil
}
