package accumulators

import (
	"bytes"
	"encoding/gob"

	"github.com/go-sif/bag"
	errors "github.com/go-sif/bag/errors"
)

// Compose returns a new Composed Accumulator
func Compose(faccs ...func() bag.Accumulator) func() bag.Accumulator {
	return func() bag.Accumulator {
		accs := make([]bag.Accumulator, len(faccs))
		for i, f := range faccs {
			accs[i] = f()
		}
		return &Composed{accs: accs}
	}
}

// Composed composes other Accumulators
type Composed struct {
	accs []bag.Accumulator
}

// GetResults returns the contained Accumulators, so that their results may be accessed
func (c *Composed) GetResults() []bag.Accumulator {
	return c.accs
}

// Accumulate adds a Tuple to all contained Accumulators
func (c *Composed) Accumulate(t bag.Tuple) error {
	for _, a := range c.accs {
		err := a.Accumulate(t)
		if err != nil {
			return err
		}
	}
	return nil
}

// Merge merges another Composed Accumulator into this one, merging all contained Accumulators
func (c *Composed) Merge(o bag.Accumulator) error {
	compa, ok := o.(*Composed)
	if !ok || len(compa.accs) != len(c.accs) {
		return errors.IncompatibleAccumulatorError{Expected: "Composed"}
	}
	for i, a := range c.accs {
		err := a.Merge(compa.accs[i])
		if err != nil {
			return err
		}
	}
	return nil
}

// ToBytes serializes this Accumulator
func (c *Composed) ToBytes() ([]byte, error) {
	result := make([][]byte, len(c.accs))
	for i, a := range c.accs {
		buff, err := a.ToBytes()
		if err != nil {
			return nil, err
		}
		result[i] = buff
	}
	buff := new(bytes.Buffer)
	e := gob.NewEncoder(buff)
	err := e.Encode(result)
	if err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

// FromBytes produce a new Accumulator from serialized data
func (c *Composed) FromBytes(buff []byte) (bag.Accumulator, error) {
	var deser [][]byte
	d := gob.NewDecoder(bytes.NewBuffer(buff))
	err := d.Decode(&deser)
	if err != nil {
		return nil, err
	}
	if len(deser) != len(c.accs) {
		return nil, errors.IncompatibleAccumulatorError{Expected: "Composed"}
	}
	newAcs := make([]bag.Accumulator, len(c.accs))
	for i, b := range deser {
		a, err := c.accs[i].FromBytes(b)
		if err != nil {
			return nil, err
		}
		newAcs[i] = a
	}
	return &Composed{accs: newAcs}, nil
}
