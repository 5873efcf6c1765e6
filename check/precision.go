package check

import (
	"fmt"
	"math"

	ltx "lattigov5_hecompute/lattigo_extension"

	"github.com/montanaflynn/stats"
)

// PrecisionStats summarizes the absolute error between decrypted and expected values.
type PrecisionStats struct {
	Mean, Median, Max, StdDev float64
}

// Bits is -log2 of the mean absolute error.
func (ps PrecisionStats) Bits() float64 {
	if ps.Mean == 0 {
		return math.Inf(1)
	}
	return -math.Log2(ps.Mean)
}

func (ps PrecisionStats) String() string {
	return fmt.Sprintf("|err| mean %.3e median %.3e max %.3e stddev %.3e (%.2f bits)", ps.Mean, ps.Median, ps.Max, ps.StdDev, ps.Bits())
}

// PrecisionReport compares have against want slot by slot.
func PrecisionReport(have, want []float64) (ps PrecisionStats, err error) {
	if len(have) != len(want) || len(want) == 0 {
		return ps, fmt.Errorf("cannot PrecisionReport: %d values against %d: %w", len(have), len(want), ltx.ErrDimensionMismatch)
	}
	diff := make(stats.Float64Data, len(want))
	for i := range want {
		diff[i] = math.Abs(have[i] - want[i])
	}
	if ps.Mean, err = stats.Mean(diff); err != nil {
		return
	}
	if ps.Median, err = stats.Median(diff); err != nil {
		return
	}
	if ps.Max, err = stats.Max(diff); err != nil {
		return
	}
	ps.StdDev, err = stats.StandardDeviation(diff)
	return
}
