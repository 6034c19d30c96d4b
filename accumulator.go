package bag

// An Accumulator is a downstream aggregation which siphons the value Tuples of a
// group into a custom data structure. Accumulators built on different workers may
// be merged, and are serialized for transport between them.
type Accumulator interface {
	Accumulate(t Tuple) error                  // Accumulate adds a Tuple to this Accumulator
	Merge(o Accumulator) error                 // Merge merges another Accumulator into this one
	ToBytes() ([]byte, error)                  // ToBytes serializes this Accumulator
	FromBytes(buf []byte) (Accumulator, error) // FromBytes produce a new Accumulator from serialized data
}

// AccumulatorFactory is a function that produces a fresh Accumulator
type AccumulatorFactory func() Accumulator
