package bag

// A Packager reconstructs value Tuples from the raw records of a group, and knows how the
// group key should be rendered. A Packager is read-only once constructed, and a single
// Packager is shared by every Bag it spawns.
type Packager interface {
	KeyIsTuple() bool                                                       // KeyIsTuple reports whether group keys are composite
	KeyAsTuple(key GroupKey) Tuple                                          // KeyAsTuple renders a group key as a Tuple
	Key(key GroupKey) interface{}                                           // Key renders a group key as a scalar value
	ValueTuple(key GroupKey, it *IndexedTuple, index uint8) (Tuple, error) // ValueTuple reconstructs the value Tuple for a raw record of the given input
}
