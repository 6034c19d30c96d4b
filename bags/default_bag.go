package bags

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/go-sif/bag"
	"github.com/go-sif/bag/config"
	errors "github.com/go-sif/bag/errors"
	iutil "github.com/go-sif/bag/internal/util"
	"github.com/go-sif/bag/logging"
	uuid "github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pierrec/lz4"
	pkgerrors "github.com/pkg/errors"
)

const defaultBagType = "DefaultBag"

// rough per-value overheads used by MemorySize
const (
	tupleOverhead = 24 // slice header
	fieldOverhead = 16 // interface header
)

// DefaultBag is a materialized Bag. Tuples are held in memory until the Bag is spilled,
// at which point they are written to an lz4-compressed file in the configured spill
// directory. Iteration visits spilled Tuples first, then resident ones, which preserves
// insertion order. A DefaultBag may be spilled from another goroutine while its owner
// adds to it.
type DefaultBag struct {
	id         string
	conf       *config.Config
	lock       sync.Mutex
	tuples     []bag.Tuple
	memSize    int64
	spillFiles []string
	numTuples  int64
	stale      bool
}

// NewDefaultBag creates an empty DefaultBag. A nil conf uses config.Default().
func NewDefaultBag(conf *config.Config) *DefaultBag {
	if conf == nil {
		conf = config.Default()
	}
	id, err := uuid.NewV4()
	if err != nil {
		logging.Logger().Fatalf("failed to generate UUID for DefaultBag: %v", err)
	}
	return &DefaultBag{
		id:     id.String(),
		conf:   conf,
		tuples: make([]bag.Tuple, 0),
	}
}

// ID retrieves the ID of this Bag
func (b *DefaultBag) ID() string {
	return b.id
}

func estimateSize(t bag.Tuple) int64 {
	size := int64(tupleOverhead + fieldOverhead*len(t))
	for _, v := range t {
		switch x := v.(type) {
		case string:
			size += int64(len(x))
		case []byte:
			size += int64(len(x))
		case bag.Tuple:
			size += estimateSize(x)
		case []interface{}:
			size += estimateSize(bag.Tuple(x))
		}
	}
	return size
}

// MemorySize estimates the number of bytes held in memory by this Bag
func (b *DefaultBag) MemorySize() int64 {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.memSize
}

// Spill writes all resident Tuples to disk, returning the number of bytes released
func (b *DefaultBag) Spill() (int64, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.spill()
}

func (b *DefaultBag) spill() (released int64, err error) {
	if len(b.tuples) == 0 {
		return 0, nil
	}
	path := filepath.Join(b.conf.SpillDir, fmt.Sprintf("sif-bag-%s-%d.lz4", b.id, len(b.spillFiles)))
	f, err := os.Create(path)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "unable to create spill file %s", path)
	}
	var multierr *multierror.Error
	w := lz4.NewWriter(f)
	e := gob.NewEncoder(w)
	for _, t := range b.tuples {
		if err := e.Encode(t); err != nil {
			multierr = multierror.Append(multierr, pkgerrors.Wrapf(err, "unable to spill tuple %s", t))
			break
		}
	}
	if err := w.Close(); err != nil {
		multierr = multierror.Append(multierr, err)
	}
	if err := f.Close(); err != nil {
		multierr = multierror.Append(multierr, err)
	}
	if err := multierr.ErrorOrNil(); err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			logging.Logger().Warnf("Unable to remove partial spill file %s: %v", path, rmErr)
		}
		return 0, err
	}
	logging.Logger().Debugf("Spilled %d tuples from bag %s to %s", len(b.tuples), b.id, path)
	released = b.memSize
	b.spillFiles = append(b.spillFiles, path)
	b.tuples = make([]bag.Tuple, 0)
	b.memSize = 0
	return released, nil
}

// Add appends a Tuple to this Bag, spilling first if the configured threshold has been reached
func (b *DefaultBag) Add(t bag.Tuple) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.conf.SpillThreshold > 0 && int64(len(b.tuples)) >= b.conf.SpillThreshold {
		if _, err := b.spill(); err != nil {
			return err
		}
	}
	b.tuples = append(b.tuples, t)
	b.memSize += estimateSize(t)
	b.numTuples++
	return nil
}

// AddAll drains another Bag into this one. The other Bag is iterated exactly once, so a
// ReadOnceBag may be materialized this way.
func (b *DefaultBag) AddAll(o bag.Bag) error {
	it := o.Iterator()
	for it.HasNext() {
		t, err := it.Next()
		if err != nil {
			return err
		}
		if err := b.Add(t); err != nil {
			return err
		}
	}
	return nil
}

// Clear empties this Bag, removing any spill files
func (b *DefaultBag) Clear() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.clear()
}

func (b *DefaultBag) clear() error {
	var multierr *multierror.Error
	for _, path := range b.spillFiles {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			multierr = multierror.Append(multierr, err)
		}
	}
	b.spillFiles = nil
	b.tuples = make([]bag.Tuple, 0)
	b.memSize = 0
	b.numTuples = 0
	if err := multierr.ErrorOrNil(); err != nil {
		logging.Logger().Warnf("Unable to remove spill files for bag %s:\n%s", b.id, iutil.FormatMultiError(multierr.Errors))
		return err
	}
	return nil
}

// IsDistinct is always false: a DefaultBag retains duplicates
func (b *DefaultBag) IsDistinct() (bool, error) {
	return false, nil
}

// IsSorted is always false: a DefaultBag iterates in insertion order
func (b *DefaultBag) IsSorted() (bool, error) {
	return false, nil
}

// MarkStale flags this Bag as no longer needed by its owner
func (b *DefaultBag) MarkStale(stale bool) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.stale = stale
	return nil
}

// IsStale returns the flag set by MarkStale
func (b *DefaultBag) IsStale() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.stale
}

// Size returns the number of Tuples in this Bag, including spilled ones
func (b *DefaultBag) Size() (int64, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.numTuples, nil
}

// Iterator returns an independent iterator over a snapshot of this Bag
func (b *DefaultBag) Iterator() bag.TupleIterator {
	b.lock.Lock()
	defer b.lock.Unlock()
	files := make([]string, len(b.spillFiles))
	copy(files, b.spillFiles)
	return &defaultBagIterator{
		spillFiles: files,
		tuples:     b.tuples[:len(b.tuples):len(b.tuples)],
	}
}

// CompareTo orders Bags by size, then Tuple by Tuple in iteration order
func (b *DefaultBag) CompareTo(o bag.Bag) (int, error) {
	if other, ok := o.(*DefaultBag); ok && other == b {
		return 0, nil
	}
	size, _ := b.Size()
	oSize, err := o.Size()
	if err != nil {
		return 0, err
	}
	if size != oSize {
		if size < oSize {
			return -1, nil
		}
		return 1, nil
	}
	it, oit := b.Iterator(), o.Iterator()
	for it.HasNext() && oit.HasNext() {
		t, err := it.Next()
		if err != nil {
			return 0, err
		}
		ot, err := oit.Next()
		if err != nil {
			return 0, err
		}
		if c := t.Compare(ot); c != 0 {
			return c, nil
		}
	}
	return 0, nil
}

// Equals returns true iff o holds equal Tuples in the same order
func (b *DefaultBag) Equals(o bag.Bag) bool {
	c, err := b.CompareTo(o)
	return err == nil && c == 0
}

// Hash combines the hashes of all Tuples in iteration order. It returns 0 if spilled data cannot be read.
func (b *DefaultBag) Hash() uint64 {
	d := xxhash.New()
	var buf [8]byte
	it := b.Iterator()
	for it.HasNext() {
		t, err := it.Next()
		if err != nil {
			logging.Logger().Warnf("Unable to hash bag %s: %v", b.id, err)
			return 0
		}
		binary.LittleEndian.PutUint64(buf[:], t.Hash())
		d.Write(buf[:])
	}
	return d.Sum64()
}

// MarshalBinary serializes every Tuple in this Bag
func (b *DefaultBag) MarshalBinary() ([]byte, error) {
	all := make([]bag.Tuple, 0)
	it := b.Iterator()
	for it.HasNext() {
		t, err := it.Next()
		if err != nil {
			return nil, err
		}
		all = append(all, t)
	}
	buff := new(bytes.Buffer)
	if err := gob.NewEncoder(buff).Encode(all); err != nil {
		return nil, pkgerrors.Wrapf(err, "unable to serialize bag %s", b.id)
	}
	return buff.Bytes(), nil
}

// UnmarshalBinary replaces the contents of this Bag with serialized Tuples
func (b *DefaultBag) UnmarshalBinary(data []byte) error {
	var all []bag.Tuple
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&all); err != nil {
		return pkgerrors.Wrapf(err, "unable to deserialize bag %s", b.id)
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	if err := b.clear(); err != nil {
		return err
	}
	for _, t := range all {
		b.tuples = append(b.tuples, t)
		b.memSize += estimateSize(t)
	}
	b.numTuples = int64(len(all))
	return nil
}

// defaultBagIterator reads spill files in order, followed by resident Tuples
type defaultBagIterator struct {
	spillFiles []string
	tuples     []bag.Tuple
	nextTuple  int
	file       *os.File
	decoder    *gob.Decoder
	peeked     bag.Tuple
	err        error
}

// advance loads the next spilled Tuple into peeked, if there is one
func (it *defaultBagIterator) advance() {
	for it.peeked == nil && it.err == nil {
		if it.decoder == nil {
			if len(it.spillFiles) == 0 {
				return
			}
			path := it.spillFiles[0]
			it.spillFiles = it.spillFiles[1:]
			f, err := os.Open(path)
			if err != nil {
				it.err = pkgerrors.Wrapf(err, "unable to open spill file %s", path)
				return
			}
			it.file = f
			it.decoder = gob.NewDecoder(lz4.NewReader(f))
		}
		var t bag.Tuple
		err := it.decoder.Decode(&t)
		if err == io.EOF {
			it.closeFile()
			continue
		} else if err != nil {
			it.closeFile()
			it.err = pkgerrors.Wrap(err, "unable to read spilled tuple")
			return
		}
		if t == nil {
			t = bag.Tuple{} // gob decodes empty slices as nil
		}
		it.peeked = t
	}
}

func (it *defaultBagIterator) closeFile() {
	if it.file != nil {
		if err := it.file.Close(); err != nil {
			logging.Logger().Warnf("Unable to close spill file %s: %v", it.file.Name(), err)
		}
	}
	it.file = nil
	it.decoder = nil
}

// HasNext returns true iff another Tuple (or a read error) is available
func (it *defaultBagIterator) HasNext() bool {
	it.advance()
	return it.peeked != nil || it.err != nil || it.nextTuple < len(it.tuples)
}

// Next returns the next Tuple
func (it *defaultBagIterator) Next() (bag.Tuple, error) {
	it.advance()
	if it.err != nil {
		return nil, it.err
	}
	if it.peeked != nil {
		t := it.peeked
		it.peeked = nil
		return t, nil
	}
	if it.nextTuple >= len(it.tuples) {
		return nil, errors.NoMoreTuplesError{}
	}
	t := it.tuples[it.nextTuple]
	it.nextTuple++
	return t, nil
}

// Remove is not supported
func (it *defaultBagIterator) Remove() error {
	return errors.UnsupportedOperationError{Type: defaultBagType, Op: "iterator.remove"}
}
