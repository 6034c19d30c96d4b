package bag

// An IndexedTuple is a raw record emitted by the shuffle for the current group key.
// Index identifies which of several co-grouped inputs produced it.
type IndexedTuple struct {
	Index   uint8  // Index of the input relation which produced this record
	Payload []byte // Payload is the raw, not yet reconstructed, record
}

// IndexedTupleIterator is a single-pass, forward-only sequence of IndexedTuples, regardless of where they come from
type IndexedTupleIterator interface {
	HasNext() bool
	// Next returns errors.NoMoreTuplesError once the sequence is exhausted
	Next() (*IndexedTuple, error)
}
