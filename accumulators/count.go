package accumulators

import (
	"encoding/binary"
	"fmt"

	"github.com/go-sif/bag"
	errors "github.com/go-sif/bag/errors"
)

// Counter returns a new Count Accumulator
func Counter() bag.Accumulator {
	return new(Count)
}

// Count counts value Tuples
type Count struct {
	count uint64
}

// GetCount returns the Tuple count from this Accumulator
func (a *Count) GetCount() uint64 {
	return a.count
}

// Accumulate adds a Tuple to this Accumulator
func (a *Count) Accumulate(t bag.Tuple) error {
	a.count++
	return nil
}

// Merge merges another Accumulator into this one
func (a *Count) Merge(o bag.Accumulator) error {
	ca, ok := o.(*Count)
	if !ok {
		return errors.IncompatibleAccumulatorError{Expected: "Count"}
	}
	a.count += ca.count
	return nil
}

// ToBytes serializes this Accumulator
func (a *Count) ToBytes() ([]byte, error) {
	buff := make([]byte, 8)
	binary.LittleEndian.PutUint64(buff, a.count)
	return buff, nil
}

// FromBytes produce a new Accumulator from serialized data
func (a *Count) FromBytes(buff []byte) (bag.Accumulator, error) {
	if len(buff) != 8 {
		return nil, fmt.Errorf("Count Accumulator expects 8 bytes, got %d", len(buff))
	}
	return &Count{count: binary.LittleEndian.Uint64(buff)}, nil
}
