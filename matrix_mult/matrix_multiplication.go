package matrix_mult

import (
	"fmt"
	"sync"

	ltx "lattigov5_hecompute/lattigo_extension"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
)

// MultiplyMatricesDepth is the number of rescales MultiplyMatrices consumes for d > 1:
// one for sigma/tau, one for the column/row shifts and one for the products.
const MultiplyMatricesDepth = 3

// MatrixMultiplier multiplies d×d matrices packed row-major in a single ciphertext,
// following AB = Σ_k phi^k(sigma(A)) ⊙ psi^k(tau(B)).
// The structural transforms depend on d only; they are built once and reused across calls.
type MatrixMultiplier struct {
	eng *ltx.Engine
	dim int
	structuralTransforms
}

type structuralTransforms struct {
	sigma    *ltx.LinearTransform
	tau      *ltx.LinearTransform
	colShift []*ltx.LinearTransform
	rowShift []*ltx.LinearTransform
}

func newStructuralTransforms(d int) (st structuralTransforms, err error) {
	if err = checkDimension(d, "newStructuralTransforms"); err != nil {
		return
	}
	st.colShift = make([]*ltx.LinearTransform, d)
	st.rowShift = make([]*ltx.LinearTransform, d)

	var diags DiagonalSet
	if diags, err = SigmaDiagonals(d); err != nil {
		return
	}
	if st.sigma, err = ltx.NewLinearTransform(d*d, diags); err != nil {
		return
	}
	if diags, err = TauDiagonals(d); err != nil {
		return
	}
	if st.tau, err = ltx.NewLinearTransform(d*d, diags); err != nil {
		return
	}
	for k := 1; k < d; k++ {
		if diags, err = ColShiftDiagonals(d, k); err != nil {
			return
		}
		if st.colShift[k], err = ltx.NewLinearTransform(d*d, diags); err != nil {
			return
		}
		if diags, err = RowShiftDiagonals(d, k); err != nil {
			return
		}
		if st.rowShift[k], err = ltx.NewLinearTransform(d*d, diags); err != nil {
			return
		}
	}
	return
}

func (st structuralTransforms) rotations() (rots []int) {
	rots = append(rots, st.sigma.Rotations()...)
	rots = append(rots, st.tau.Rotations()...)
	for k := 1; k < len(st.colShift); k++ {
		rots = append(rots, st.colShift[k].Rotations()...)
		rots = append(rots, st.rowShift[k].Rotations()...)
	}
	return
}

// MatrixMultRotations returns the rotations a MatrixMultiplier of dimension d needs keys for,
// so that keys can be generated before any Engine exists.
func MatrixMultRotations(d int) ([]int, error) {
	st, err := newStructuralTransforms(d)
	if err != nil {
		return nil, err
	}
	return st.rotations(), nil
}

func NewMatrixMultiplier(eng *ltx.Engine, d int) (*MatrixMultiplier, error) {
	if err := checkDimension(d, "NewMatrixMultiplier"); err != nil {
		return nil, err
	}
	if err := eng.CheckDim(d*d, "NewMatrixMultiplier"); err != nil {
		return nil, err
	}
	st, err := newStructuralTransforms(d)
	if err != nil {
		return nil, err
	}
	return &MatrixMultiplier{eng: eng, dim: d, structuralTransforms: st}, nil
}

func (mm *MatrixMultiplier) Dimension() int {
	return mm.dim
}

// Rotations returns every rotation the precomputed transforms need keys for.
func (mm *MatrixMultiplier) Rotations() []int {
	return ltx.NormalizeRotations(mm.rotations(), mm.eng.Slots())
}

// MultiplyMatrices returns the encryption of A·B given the row-major packings of A and B.
// The operands are not modified. The inputs are first brought to a common level, which
// must leave room for MultiplyMatricesDepth rescales.
func (mm *MatrixMultiplier) MultiplyMatrices(ctA, ctB *rlwe.Ciphertext) (ctOut *rlwe.Ciphertext, err error) {
	eng := mm.eng
	d := mm.dim

	a, b := ctA.CopyNew(), ctB.CopyNew()
	if err = eng.AlignLevels(a, b); err != nil {
		return nil, err
	}
	if err = eng.CheckRescales(a, MultiplyMatricesDepth, "MultiplyMatrices"); err != nil {
		return nil, err
	}

	// Step 1
	var sigmaA, tauB *rlwe.Ciphertext
	if sigmaA, err = eng.EvaluateLinearTransform(a, mm.sigma); err != nil {
		return nil, err
	}
	if tauB, err = eng.EvaluateLinearTransform(b, mm.tau); err != nil {
		return nil, err
	}

	// Step 2, one goroutine per shift
	shiftedA := make([]*rlwe.Ciphertext, d)
	shiftedB := make([]*rlwe.Ciphertext, d)
	errs := make([]error, d)
	var wg sync.WaitGroup
	for k := 1; k < d; k++ {
		wg.Add(1)
		go func(k int, eng *ltx.Engine) {
			defer wg.Done()
			if shiftedA[k], errs[k] = eng.EvaluateLinearTransform(sigmaA, mm.colShift[k]); errs[k] != nil {
				return
			}
			shiftedB[k], errs[k] = eng.EvaluateLinearTransform(tauB, mm.rowShift[k])
		}(k, eng.ShallowCopy())
	}
	wg.Wait()
	for _, err = range errs {
		if err != nil {
			return nil, err
		}
	}

	shiftedA[0], shiftedB[0] = sigmaA, tauB
	if d > 1 {
		// the k = 0 terms skipped step 2 and must join the others one rescale lower
		if err = eng.DropToLevel(sigmaA, shiftedA[1].Level()); err != nil {
			return nil, err
		}
		if err = eng.DropToLevel(tauB, shiftedB[1].Level()); err != nil {
			return nil, err
		}
	}

	// Step 3
	for k := 0; k < d; k++ {
		var prod *rlwe.Ciphertext
		if prod, err = eng.Eval.MulRelinNew(shiftedA[k], shiftedB[k]); err != nil {
			return nil, fmt.Errorf("cannot MultiplyMatrices: %w", err)
		}
		if ctOut == nil {
			ctOut = prod
			continue
		}
		if err = eng.Eval.Add(ctOut, prod, ctOut); err != nil {
			return nil, fmt.Errorf("cannot MultiplyMatrices: %w", err)
		}
	}
	if err = eng.Rescale(ctOut); err != nil {
		return nil, err
	}
	eng.Logf("%d levels consumed for MultiplyMatrices", a.Level()-ctOut.Level())
	return ctOut, nil
}
