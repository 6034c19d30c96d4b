package accumulators

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-sif/bag"
	errors "github.com/go-sif/bag/errors"
)

// Adder returns a new Sum Accumulator over the field at position col of each Tuple
func Adder(col int) func() bag.Accumulator {
	return func() bag.Accumulator {
		return &Sum{col: col}
	}
}

// Sum sums a numeric field. Nil fields are skipped.
type Sum struct {
	col int
	sum float64
}

// GetSum returns the Sum from this Accumulator
func (a *Sum) GetSum() float64 {
	return a.sum
}

// Accumulate adds a Tuple to this Accumulator
func (a *Sum) Accumulate(t bag.Tuple) error {
	if a.col < 0 || a.col >= len(t) {
		return fmt.Errorf("Tuple %s has no field %d", t, a.col)
	}
	switch v := t[a.col].(type) {
	case nil:
	case int:
		a.sum += float64(v)
	case int8:
		a.sum += float64(v)
	case int16:
		a.sum += float64(v)
	case int32:
		a.sum += float64(v)
	case int64:
		a.sum += float64(v)
	case uint:
		a.sum += float64(v)
	case uint8:
		a.sum += float64(v)
	case uint16:
		a.sum += float64(v)
	case uint32:
		a.sum += float64(v)
	case uint64:
		a.sum += float64(v)
	case float32:
		a.sum += float64(v)
	case float64:
		a.sum += v
	default:
		return fmt.Errorf("Field %d of Tuple %s is not numeric", a.col, t)
	}
	return nil
}

// Merge merges another Accumulator into this one
func (a *Sum) Merge(o bag.Accumulator) error {
	ca, ok := o.(*Sum)
	if !ok {
		return errors.IncompatibleAccumulatorError{Expected: "Sum"}
	}
	a.sum += ca.sum
	return nil
}

// ToBytes serializes this Accumulator
func (a *Sum) ToBytes() ([]byte, error) {
	buff := make([]byte, 8)
	binary.LittleEndian.PutUint64(buff, math.Float64bits(a.sum))
	return buff, nil
}

// FromBytes produce a new Accumulator from serialized data
func (a *Sum) FromBytes(buff []byte) (bag.Accumulator, error) {
	if len(buff) != 8 {
		return nil, fmt.Errorf("Sum Accumulator expects 8 bytes, got %d", len(buff))
	}
	return &Sum{col: a.col, sum: math.Float64frombits(binary.LittleEndian.Uint64(buff))}, nil
}
