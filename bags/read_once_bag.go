package bags

import (
	"reflect"

	"github.com/go-sif/bag"
	errors "github.com/go-sif/bag/errors"
	iutil "github.com/go-sif/bag/internal/util"
)

const readOnceBagType = "ReadOnceBag"

// ReadOnceBag is a Bag which does not store its Tuples, reading them instead from an
// iterator over the raw records of a single group (typically provided by the shuffle).
// Use it when such an iterator already exists and the group should not be copied.
//
// A ReadOnceBag supports exactly one pass and nothing else: every capability which
// would require buffering, random access, mutation or a second pass returns an
// errors.UnsupportedOperationError, and serialization returns an
// errors.SerializationForbiddenError. A ReadOnceBag must not be shared between goroutines.
type ReadOnceBag struct {
	pkgr       bag.Packager
	valueTuple iutil.ValueTupleOperation
	tuples     bag.IndexedTupleIterator
	key        bag.GroupKey
	err        error // first reconstruction failure, which ends the traversal
}

// NewReadOnceBag creates a Bag over an existing iterator of raw records, taking ownership
// of the iterator and NOT copying its elements. tuples must not be handed to any other Bag.
func NewReadOnceBag(pkgr bag.Packager, tuples bag.IndexedTupleIterator, key bag.GroupKey) *ReadOnceBag {
	return &ReadOnceBag{
		pkgr:       pkgr,
		valueTuple: iutil.SafeValueTupleOperation(pkgr),
		tuples:     tuples,
		key:        key,
	}
}

func unsupported(op string) error {
	return errors.UnsupportedOperationError{Type: readOnceBagType, Op: op}
}

// Key returns the group key of this Bag
func (b *ReadOnceBag) Key() bag.GroupKey {
	return b.key
}

// MemorySize is always 0, since a ReadOnceBag holds no Tuples
func (b *ReadOnceBag) MemorySize() int64 {
	return 0
}

// Spill is not supported. There is nothing to spill, so a ReadOnceBag should never be chosen for spilling.
func (b *ReadOnceBag) Spill() (int64, error) {
	return 0, unsupported("spill")
}

// Add is not supported
func (b *ReadOnceBag) Add(t bag.Tuple) error {
	return unsupported("add")
}

// AddAll is not supported
func (b *ReadOnceBag) AddAll(o bag.Bag) error {
	return unsupported("addAll")
}

// Clear is not supported
func (b *ReadOnceBag) Clear() error {
	return unsupported("clear")
}

// IsDistinct is not supported
func (b *ReadOnceBag) IsDistinct() (bool, error) {
	return false, unsupported("isDistinct")
}

// IsSorted is not supported
func (b *ReadOnceBag) IsSorted() (bool, error) {
	return false, unsupported("isSorted")
}

// MarkStale is not supported
func (b *ReadOnceBag) MarkStale(stale bool) error {
	return unsupported("markStale")
}

// Size is not supported, since it would require a second pass
func (b *ReadOnceBag) Size() (int64, error) {
	return 0, unsupported("size")
}

// CompareTo is not supported. ReadOnceBags cannot be compared.
func (b *ReadOnceBag) CompareTo(o bag.Bag) (int, error) {
	return 0, unsupported("compareTo")
}

// MarshalBinary always fails: a ReadOnceBag should never be serialized
func (b *ReadOnceBag) MarshalBinary() ([]byte, error) {
	return nil, errors.SerializationForbiddenError{Type: readOnceBagType}
}

// UnmarshalBinary always fails: a ReadOnceBag should never be serialized
func (b *ReadOnceBag) UnmarshalBinary(data []byte) error {
	return errors.SerializationForbiddenError{Type: readOnceBagType}
}

// Iterator returns an iterator over the value Tuples of this group. Every iterator
// returned by a ReadOnceBag shares the same position in the underlying records:
// advancing one advances them all.
func (b *ReadOnceBag) Iterator() bag.TupleIterator {
	return &readOnceBagIterator{b: b}
}

// Equals returns true iff o is a ReadOnceBag over the same underlying iterator, with a
// key that is equal once rendered by the Packager. Content is never compared.
func (b *ReadOnceBag) Equals(o bag.Bag) bool {
	other, ok := o.(*ReadOnceBag)
	if !ok || other == nil {
		return false
	}
	if b == other {
		return true
	}
	if !sameIterator(b.tuples, other.tuples) {
		return false
	}
	if b.pkgr.KeyIsTuple() != other.pkgr.KeyIsTuple() {
		return false
	}
	if b.pkgr.KeyIsTuple() {
		return b.pkgr.KeyAsTuple(b.key).Equals(other.pkgr.KeyAsTuple(other.key))
	}
	return bag.EqualValues(b.pkgr.Key(b.key), other.pkgr.Key(other.key))
}

// Hash returns a hash of the rendered group key
func (b *ReadOnceBag) Hash() uint64 {
	if b.pkgr.KeyIsTuple() {
		return b.pkgr.KeyAsTuple(b.key).Hash()
	}
	return bag.Tuple{b.pkgr.Key(b.key)}.Hash()
}

// sameIterator reports whether two iterators are the same instance. Iterators with
// uncomparable dynamic types are never the same.
func sameIterator(l bag.IndexedTupleIterator, r bag.IndexedTupleIterator) bool {
	if l == nil || r == nil {
		return l == nil && r == nil
	}
	lt := reflect.TypeOf(l)
	if lt != reflect.TypeOf(r) || !lt.Comparable() {
		return false
	}
	return l == r
}

// readOnceBagIterator reconstructs value Tuples from the raw records of a ReadOnceBag
type readOnceBagIterator struct {
	b *ReadOnceBag
}

// HasNext returns true iff the underlying records have not been exhausted and no reconstruction has failed
func (it *readOnceBagIterator) HasNext() bool {
	if it.b.err != nil {
		return false
	}
	return it.b.tuples.HasNext()
}

// Next reconstructs the next value Tuple. A reconstruction failure is returned as an
// errors.ReconstructionError and ends the traversal for every iterator of this Bag.
func (it *readOnceBagIterator) Next() (bag.Tuple, error) {
	if it.b.err != nil {
		return nil, it.b.err
	}
	raw, err := it.b.tuples.Next()
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.NoMoreTuplesError{}
	}
	t, err := it.b.valueTuple(it.b.key, raw, raw.Index)
	if err != nil {
		it.b.err = errors.ReconstructionError{Key: it.b.key.String(), Index: raw.Index, Err: err}
		return nil, it.b.err
	}
	return t, nil
}

// Remove is not supported
func (it *readOnceBagIterator) Remove() error {
	return unsupported("iterator.remove")
}
