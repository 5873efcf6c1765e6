package auxiliary_io

import (
	"fmt"
	"io"
)

const printRowSize = 4

func writeRow(w io.Writer, row []float64) (err error) {
	if _, err = fmt.Fprint(w, "["); err != nil {
		return
	}
	for _, v := range row {
		if _, err = fmt.Fprintf(w, "%4f ", v); err != nil {
			return
		}
	}
	_, err = fmt.Fprint(w, "]\n")
	return
}

// PrintMatrixF64 prints the row-major rows×cols matrix held in arr. Unless full is
// set, only the first and last 4 rows of larger matrices are printed.
func PrintMatrixF64(w io.Writer, arr []float64, rows int, cols int, full bool) error {
	if rows*cols > len(arr) {
		return fmt.Errorf("cannot PrintMatrixF64: %dx%d matrix from %d values", rows, cols, len(arr))
	}
	if full || rows <= 2*printRowSize {
		for i := 0; i < rows; i++ {
			if err := writeRow(w, arr[i*cols:(i+1)*cols]); err != nil {
				return err
			}
		}
		return nil
	}
	for i := 0; i < printRowSize; i++ {
		if err := writeRow(w, arr[i*cols:(i+1)*cols]); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, "........."); err != nil {
		return err
	}
	for i := rows - printRowSize; i < rows; i++ {
		if err := writeRow(w, arr[i*cols:(i+1)*cols]); err != nil {
			return err
		}
	}
	return nil
}

// PrintVectorF64 prints arr, eliding the middle of long vectors unless full is set.
func PrintVectorF64(w io.Writer, arr []float64, full bool) (err error) {
	if full || len(arr) <= 2*printRowSize {
		return writeRow(w, arr)
	}
	if _, err = fmt.Fprint(w, "["); err != nil {
		return
	}
	for _, v := range arr[:printRowSize] {
		if _, err = fmt.Fprintf(w, "%4f ", v); err != nil {
			return
		}
	}
	if _, err = fmt.Fprint(w, "........."); err != nil {
		return
	}
	for _, v := range arr[len(arr)-printRowSize:] {
		if _, err = fmt.Fprintf(w, "%4f ", v); err != nil {
			return
		}
	}
	_, err = fmt.Fprint(w, "]\n")
	return
}
