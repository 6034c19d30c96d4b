package bag

// Spillable describes anything which participates in memory accounting
type Spillable interface {
	MemorySize() int64     // MemorySize estimates the resident size of this object in bytes
	Spill() (int64, error) // Spill writes resident data to disk, returning the number of bytes released
}

// TupleIterator iterates over the value Tuples in a Bag
type TupleIterator interface {
	HasNext() bool
	Next() (Tuple, error)
	Remove() error
}

// A Bag is a collection of value Tuples belonging to a single group. Every Bag variant
// implements the full contract so that variants are interchangeable at call sites.
// Variants which cannot honour a capability return an error rather than omitting it.
// MarshalBinary and UnmarshalBinary satisfy encoding.BinaryMarshaler and
// encoding.BinaryUnmarshaler, so encoding/gob goes through them as well.
type Bag interface {
	Spillable
	Add(t Tuple) error                 // Add appends a Tuple to this Bag
	AddAll(b Bag) error                // AddAll appends every Tuple from another Bag, consuming its iterator once
	Clear() error                      // Clear empties this Bag
	IsDistinct() (bool, error)         // IsDistinct reports whether this Bag eliminates duplicates
	IsSorted() (bool, error)           // IsSorted reports whether this Bag iterates in sorted order
	Iterator() TupleIterator           // Iterator returns an iterator over the Tuples in this Bag
	MarkStale(stale bool) error        // MarkStale flags this Bag as no longer needed by its owner
	Size() (int64, error)              // Size returns the number of Tuples in this Bag
	CompareTo(o Bag) (int, error)      // CompareTo imposes a total order on Bags
	MarshalBinary() ([]byte, error)    // MarshalBinary serializes this Bag
	UnmarshalBinary(data []byte) error // UnmarshalBinary replaces the contents of this Bag with serialized data
	Equals(o Bag) bool                 // Equals reports whether two Bags are equal
	Hash() uint64                      // Hash returns a hash consistent with Equals
}
