package bag

import "fmt"

// A GroupKey identifies one group produced by the shuffle. It is either a scalar value,
// a composite of several field values, or the null key (used when an outer co-group
// produces records with no key). GroupKeys are immutable.
type GroupKey struct {
	value     interface{}
	fields    Tuple
	composite bool
}

// ScalarKey produces a GroupKey from a single value
func ScalarKey(value interface{}) GroupKey {
	return GroupKey{value: value}
}

// CompositeKey produces a GroupKey from multiple field values
func CompositeKey(fields ...interface{}) GroupKey {
	t := make(Tuple, len(fields))
	copy(t, fields)
	return GroupKey{fields: t, composite: true}
}

// NullKey produces the GroupKey representing "no key"
func NullKey() GroupKey {
	return GroupKey{}
}

// IsComposite returns true iff this key is made up of multiple fields
func (k GroupKey) IsComposite() bool {
	return k.composite
}

// IsNull returns true iff this is the null key
func (k GroupKey) IsNull() bool {
	return !k.composite && k.value == nil
}

// Value returns the scalar value of this key. Composite keys return their fields as a Tuple.
func (k GroupKey) Value() interface{} {
	if k.composite {
		return k.Fields()
	}
	return k.value
}

// Fields returns a copy of the fields of this key. A scalar key has a single field and
// the null key has none.
func (k GroupKey) Fields() Tuple {
	if k.composite {
		t := make(Tuple, len(k.fields))
		copy(t, k.fields)
		return t
	}
	if k.value == nil {
		return Tuple{}
	}
	return Tuple{k.value}
}

// Equals reports whether two keys are of the same shape and hold equal values
func (k GroupKey) Equals(o GroupKey) bool {
	if k.composite != o.composite {
		return false
	}
	if k.composite {
		return k.fields.Equals(o.fields)
	}
	return EqualValues(k.value, o.value)
}

// String returns a human-readable representation of this key
func (k GroupKey) String() string {
	if k.composite {
		return k.fields.String()
	}
	if k.value == nil {
		return "<null>"
	}
	return fmt.Sprintf("%v", k.value)
}
