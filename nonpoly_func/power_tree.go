package nonpolyfunc

import (
	"fmt"
	"sync"

	ltx "lattigov5_hecompute/lattigo_extension"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
)

// PowerSchedule says how to obtain x^1..x^Degree with the smallest multiplicative depth.
// x^i is computed as x^Splits[i] · x^(i-Splits[i]) and lies Levels[i] multiplications
// away from x. Entries 0 and 1 are zero.
type PowerSchedule struct {
	Degree int
	Levels []int
	Splits []int
}

// NewPowerSchedule runs the depth-minimizing dynamic program up to degree d. Among the
// splits reaching the minimal depth, the smallest one wins.
func NewPowerSchedule(d int) (*PowerSchedule, error) {
	if d < 1 {
		return nil, fmt.Errorf("cannot NewPowerSchedule: degree %d: %w", d, ltx.ErrInvalidDegree)
	}
	ps := &PowerSchedule{
		Degree: d,
		Levels: make([]int, d+1),
		Splits: make([]int, d+1),
	}
	for i := 2; i <= d; i++ {
		best := -1
		for j := 1; j <= i/2; j++ {
			cand := ps.Levels[j]
			if ps.Levels[i-j] > cand {
				cand = ps.Levels[i-j]
			}
			if best < 0 || cand < best {
				best = cand
				ps.Splits[i] = j
			}
		}
		ps.Levels[i] = best + 1
	}
	return ps, nil
}

// Depth returns the largest level of the schedule.
func (ps *PowerSchedule) Depth() (depth int) {
	for _, l := range ps.Levels {
		if l > depth {
			depth = l
		}
	}
	return
}

// Layers groups the exponents 1..Degree by level. Every exponent of layer L only
// depends on exponents of layers below L.
func (ps *PowerSchedule) Layers() [][]int {
	layers := make([][]int, ps.Depth()+1)
	for i := 1; i <= ps.Degree; i++ {
		layers[ps.Levels[i]] = append(layers[ps.Levels[i]], i)
	}
	return layers
}

// ComputePowers returns powers with powers[i] = x^i for i in 1..d; powers[0] is nil and
// powers[1] is x itself. No ciphertext of the result is modified afterwards. The
// multiplications of one layer run concurrently, each on its own copy of eng.
func ComputePowers(eng *ltx.Engine, x *rlwe.Ciphertext, d int) (powers []*rlwe.Ciphertext, err error) {
	ps, err := NewPowerSchedule(d)
	if err != nil {
		return nil, err
	}
	if err = eng.CheckRescales(x, ps.Depth(), "ComputePowers"); err != nil {
		return nil, err
	}

	powers = make([]*rlwe.Ciphertext, d+1)
	powers[1] = x
	layers := ps.Layers()
	for _, layer := range layers[1:] {
		errs := make([]error, len(layer))
		var wg sync.WaitGroup
		for idx, i := range layer {
			wg.Add(1)
			go func(idx, i int, eng *ltx.Engine) {
				defer wg.Done()
				j := ps.Splits[i]
				powers[i], errs[idx] = mulAligned(eng, powers[j], powers[i-j])
			}(idx, i, eng.ShallowCopy())
		}
		wg.Wait()
		for _, err = range errs {
			if err != nil {
				return nil, err
			}
		}
	}
	eng.Logf("%d levels consumed for ComputePowers", x.Level()-powers[d].Level())
	return powers, nil
}

// mulAligned mod-switches a copy of the higher operand down to the other one, then
// multiplies, relinearizes and rescales. a and b are left untouched.
func mulAligned(eng *ltx.Engine, a, b *rlwe.Ciphertext) (prod *rlwe.Ciphertext, err error) {
	switch {
	case a.Level() > b.Level():
		a = eng.Eval.DropLevelNew(a, a.Level()-b.Level())
	case b.Level() > a.Level():
		b = eng.Eval.DropLevelNew(b, b.Level()-a.Level())
	}
	if prod, err = eng.Eval.MulRelinNew(a, b); err != nil {
		return nil, fmt.Errorf("cannot mulAligned: %w", err)
	}
	if err = eng.Rescale(prod); err != nil {
		return nil, err
	}
	return prod, nil
}
