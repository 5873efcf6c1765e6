package data_process

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// NormalizeMaxMin rescales every column except skip to [0, 1] (max-min). Constant
// columns become 0. Pass skip < 0 to normalize all columns.
func NormalizeMaxMin(data *mat.Dense, skip int) *mat.Dense {
	rows, cols := data.Dims()
	out := mat.NewDense(rows, cols, nil)
	out.Copy(data)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		if j == skip {
			continue
		}
		mat.Col(col, j, data)
		lo, hi := floats.Min(col), floats.Max(col)
		for i := range col {
			if hi > lo {
				col[i] = (col[i] - lo) / (hi - lo)
			} else {
				col[i] = 0
			}
		}
		out.SetCol(j, col)
	}
	return out
}

// Padding pads data with zeros to 2^logRowSize rows and 2^logColSize columns.
func Padding(data *mat.Dense, logColSize int, logRowSize int) (*mat.Dense, error) {
	row, col := data.Dims()
	newRowSize, newColSize := 1<<logRowSize, 1<<logColSize
	if col > newColSize || row > newRowSize {
		return nil, fmt.Errorf("cannot Padding: %dx%d does not fit %dx%d", row, col, newRowSize, newColSize)
	}
	out := mat.NewDense(newRowSize, newColSize, nil)
	out.Slice(0, row, 0, col).(*mat.Dense).Copy(data)
	return out, nil
}

// SplitLabels separates the label column from the features.
func SplitLabels(data *mat.Dense, labelCol int) (features *mat.Dense, labels []int, err error) {
	rows, cols := data.Dims()
	if labelCol < 0 || labelCol >= cols || cols < 2 {
		return nil, nil, fmt.Errorf("cannot SplitLabels: label column %d of %d", labelCol, cols)
	}
	features = mat.NewDense(rows, cols-1, nil)
	labels = make([]int, rows)
	for i := 0; i < rows; i++ {
		labels[i] = int(data.At(i, labelCol))
		for j, k := 0, 0; j < cols; j++ {
			if j == labelCol {
				continue
			}
			features.Set(i, k, data.At(i, j))
			k++
		}
	}
	return features, labels, nil
}

// SplitData shuffles the rows with rng and returns the first percent of them as the
// test set and the rest as the training set. data is not modified.
func SplitData(data *mat.Dense, percent float64, rng *rand.Rand) (testData *mat.Dense, trainData *mat.Dense, err error) {
	rows, cols := data.Dims()
	nTest := int(float64(rows) * percent)
	if percent < 0 || percent > 1 || nTest == 0 || nTest == rows {
		return nil, nil, fmt.Errorf("cannot SplitData: %v of %d rows", percent, rows)
	}
	perm := rng.Perm(rows)
	testData = mat.NewDense(nTest, cols, nil)
	trainData = mat.NewDense(rows-nTest, cols, nil)
	for i, p := range perm {
		if i < nTest {
			testData.SetRow(i, data.RawRowView(p))
		} else {
			trainData.SetRow(i-nTest, data.RawRowView(p))
		}
	}
	return testData, trainData, nil
}

// Blocks cuts the rows of samples into n×n blocks, zero-padding the columns up to n
// and the last block's rows. Each block is a square operand for the diagonal layout.
func Blocks(samples *mat.Dense, n int) ([][][]float64, error) {
	rows, cols := samples.Dims()
	if n < 1 || cols > n {
		return nil, fmt.Errorf("cannot Blocks: %d columns into blocks of %d", cols, n)
	}
	blocks := make([][][]float64, (rows+n-1)/n)
	for b := range blocks {
		blocks[b] = make([][]float64, n)
		for i := range blocks[b] {
			blocks[b][i] = make([]float64, n)
			if r := b*n + i; r < rows {
				copy(blocks[b][i], samples.RawRowView(r))
			}
		}
	}
	return blocks, nil
}
