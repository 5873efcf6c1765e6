package auxiliary_io

/*
 * This part of package auxiliary_io
 * (1) wraps decryption and decoding, so results can be checked as matrices;
 * (2) provides a simple disk I/O structure, Filetracker, storing and retrieving Marshalable
 *     objects back to back in one file. Most Lattigo structures are marshalable, so
 *     ciphertexts and keys can be stored with it.
 *
 * File layout: entry_0 | entry_1 | ... | size_0 | ... | size_{n-1} | n, every size and n
 * as a big-endian uint64.
 */

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	ltx "lattigov5_hecompute/lattigo_extension"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
)

// ErrCorruptFile is returned when a tracker trailer does not match the file.
var ErrCorruptFile = errors.New("corrupt tracker file")

type Marshalable interface {
	MarshalBinary() ([]byte, error)
	UnmarshalBinary([]byte) error
	BinarySize() int
}

// Filetracker appends Marshalable objects to a file and reads them back in order.
type Filetracker struct {
	Fp        string
	Off       int
	Offidx    int
	Hierarchy []int
}

// DecryptDecode decrypts ct and returns its first n slots.
func DecryptDecode(eng *ltx.Engine, decryptor *rlwe.Decryptor, ct *rlwe.Ciphertext, n int) ([]float64, error) {
	if n < 0 {
		return nil, fmt.Errorf("cannot DecryptDecode: %d slots requested: %w", n, ltx.ErrInvalidArgument)
	}
	values := make([]float64, eng.Slots())
	if err := eng.Encoder.Decode(decryptor.DecryptNew(ct), values); err != nil {
		return nil, fmt.Errorf("cannot DecryptDecode: %w", err)
	}
	if n > len(values) {
		n = len(values)
	}
	return values[:n], nil
}

// QuickCheckMatrix decrypts ct and prints it as a rows×cols matrix.
func QuickCheckMatrix(w io.Writer, eng *ltx.Engine, decryptor *rlwe.Decryptor, ct *rlwe.Ciphertext, rows, cols int, full bool) error {
	values, err := DecryptDecode(eng, decryptor, ct, rows*cols)
	if err != nil {
		return err
	}
	return PrintMatrixF64(w, values, rows, cols, full)
}

func QuickCheckInfos(w io.Writer, ct *rlwe.Ciphertext, name string) error {
	_, err := fmt.Fprintf(w, "%s has scale %f, level %d\n", name, math.Log2(ct.Scale.Float64()), ct.Level())
	return err
}

// NewTracker truncates fp and returns a tracker ready to store.
func NewTracker(fp string) (*Filetracker, error) {
	file, err := os.OpenFile(fp, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o666)
	if err != nil {
		return nil, fmt.Errorf("cannot NewTracker: %w", err)
	}
	if err = file.Close(); err != nil {
		return nil, fmt.Errorf("cannot NewTracker: %w", err)
	}
	return &Filetracker{Fp: fp, Hierarchy: make([]int, 0)}, nil
}

// NewTracker4File opens a file written by a tracker and positions it on the first entry.
func NewTracker4File(fp string) (tracker *Filetracker, err error) {
	tracker = &Filetracker{Fp: fp}
	if err = tracker.ReadInit(); err != nil {
		return nil, err
	}
	return tracker, nil
}

// Len is the number of entries known to the tracker.
func (tracker *Filetracker) Len() int {
	return len(tracker.Hierarchy)
}

func writeAt(fp string, data []byte, offset int) (n int, err error) {
	file, err := os.OpenFile(fp, os.O_WRONLY|os.O_CREATE, 0o666)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return file.WriteAt(data, int64(offset))
}

// StoreUpdateOne appends stuff at the current offset.
func (tracker *Filetracker) StoreUpdateOne(stuff Marshalable) (n int, err error) {
	buffer, err := stuff.MarshalBinary()
	if err != nil {
		return 0, fmt.Errorf("cannot StoreUpdateOne: %w", err)
	}
	if n, err = writeAt(tracker.Fp, buffer, tracker.Off); err != nil {
		return n, fmt.Errorf("cannot StoreUpdateOne: %w", err)
	}
	tracker.Off += n
	tracker.Offidx++
	tracker.Hierarchy = append(tracker.Hierarchy, n)
	return n, nil
}

// StoreUpdateMany appends every element of stuffs.
func (tracker *Filetracker) StoreUpdateMany(stuffs []Marshalable) (n int, err error) {
	for _, stuff := range stuffs {
		var written int
		written, err = tracker.StoreUpdateOne(stuff)
		n += written
		if err != nil {
			return
		}
	}
	return
}

// StoreFinish writes the trailer. No entry can be stored afterwards.
func (tracker *Filetracker) StoreFinish() (n int, err error) {
	data, err := tracker.MarshalBinary()
	if err != nil {
		return 0, err
	}
	if n, err = writeAt(tracker.Fp, data, tracker.Off); err != nil {
		return n, fmt.Errorf("cannot StoreFinish: %w", err)
	}
	tracker.Off += n
	return n, nil
}

// ReadInit loads the trailer of the tracked file and rewinds to the first entry.
func (tracker *Filetracker) ReadInit() (err error) {
	data, err := os.ReadFile(tracker.Fp)
	if err != nil {
		return fmt.Errorf("cannot ReadInit: %w", err)
	}
	if len(data) < 8 {
		return fmt.Errorf("cannot ReadInit: %d bytes: %w", len(data), ErrCorruptFile)
	}
	count := binary.BigEndian.Uint64(data[len(data)-8:])
	if count > uint64(len(data)-8)/8 {
		return fmt.Errorf("cannot ReadInit: %d entries: %w", count, ErrCorruptFile)
	}
	trailer := 8 + 8*int(count)
	if err = tracker.UnmarshalBinary(data[len(data)-trailer:]); err != nil {
		return err
	}
	total := 0
	for _, size := range tracker.Hierarchy {
		total += size
	}
	if total+trailer != len(data) {
		return fmt.Errorf("cannot ReadInit: entries span %d bytes of %d: %w", total, len(data)-trailer, ErrCorruptFile)
	}
	tracker.Off = 0
	tracker.Offidx = 0
	return nil
}

// ReadUpdateOne reads the entry at the current position into stuff and advances.
func (tracker *Filetracker) ReadUpdateOne(stuff Marshalable) (n int, err error) {
	if tracker.Offidx >= len(tracker.Hierarchy) {
		return 0, io.EOF
	}
	file, err := os.Open(tracker.Fp)
	if err != nil {
		return 0, fmt.Errorf("cannot ReadUpdateOne: %w", err)
	}
	defer file.Close()
	buffer := make([]byte, tracker.Hierarchy[tracker.Offidx])
	if n, err = file.ReadAt(buffer, int64(tracker.Off)); err != nil {
		return n, fmt.Errorf("cannot ReadUpdateOne: %w", err)
	}
	if err = stuff.UnmarshalBinary(buffer); err != nil {
		return n, fmt.Errorf("cannot ReadUpdateOne: %w", err)
	}
	tracker.Off += n
	tracker.Offidx++
	return n, nil
}

// Locate moves the read position to entry idxLocation.
func (tracker *Filetracker) Locate(idxLocation int) error {
	if idxLocation < 0 || idxLocation > len(tracker.Hierarchy) {
		return fmt.Errorf("cannot Locate: entry %d of %d", idxLocation, len(tracker.Hierarchy))
	}
	tracker.Off = 0
	for i := 0; i < idxLocation; i++ {
		tracker.Off += tracker.Hierarchy[i]
	}
	tracker.Offidx = idxLocation
	return nil
}

func (tracker *Filetracker) MarshalBinary() (data []byte, err error) {
	data = make([]byte, tracker.BinarySize())
	ptr := 0
	for i := 0; i < len(tracker.Hierarchy); i++ {
		binary.BigEndian.PutUint64(data[ptr:], uint64(tracker.Hierarchy[i]))
		ptr += 8
	}
	binary.BigEndian.PutUint64(data[ptr:], uint64(len(tracker.Hierarchy)))
	return
}

func (tracker *Filetracker) UnmarshalBinary(data []byte) (err error) {
	if len(data) < 8 || (len(data)-8)%8 != 0 {
		return fmt.Errorf("cannot UnmarshalBinary: %d bytes: %w", len(data), ErrCorruptFile)
	}
	count := int(binary.BigEndian.Uint64(data[len(data)-8:]))
	if count != (len(data)-8)/8 {
		return fmt.Errorf("cannot UnmarshalBinary: %d entries in %d bytes: %w", count, len(data), ErrCorruptFile)
	}
	tracker.Hierarchy = make([]int, count)
	for i := range tracker.Hierarchy {
		tracker.Hierarchy[i] = int(binary.BigEndian.Uint64(data[8*i:]))
	}
	return nil
}

func (tracker *Filetracker) BinarySize() int {
	return 8 + 8*len(tracker.Hierarchy)
}

// WriteCiphertexts stores cts to fp.
func WriteCiphertexts(fp string, cts []*rlwe.Ciphertext) error {
	tracker, err := NewTracker(fp)
	if err != nil {
		return err
	}
	stuffs := make([]Marshalable, len(cts))
	for i := range cts {
		stuffs[i] = cts[i]
	}
	if _, err = tracker.StoreUpdateMany(stuffs); err != nil {
		return err
	}
	_, err = tracker.StoreFinish()
	return err
}

// ReadCiphertexts loads every ciphertext stored in fp by WriteCiphertexts.
func ReadCiphertexts(fp string) ([]*rlwe.Ciphertext, error) {
	tracker, err := NewTracker4File(fp)
	if err != nil {
		return nil, err
	}
	cts := make([]*rlwe.Ciphertext, tracker.Len())
	for i := range cts {
		cts[i] = new(rlwe.Ciphertext)
		if _, err = tracker.ReadUpdateOne(cts[i]); err != nil {
			return nil, err
		}
	}
	return cts, nil
}
