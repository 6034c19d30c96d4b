package bag

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/cespare/xxhash/v2"
)

func init() {
	// interface-typed fields travel through gob during spills and serialization
	gob.Register(Tuple{})
	gob.Register([]interface{}{})
	gob.Register(map[string]interface{}{})
}

// A Tuple is a value record: an ordered list of field values. Fields may be nil,
// booleans, integers, floats, strings, byte slices or nested Tuples.
type Tuple []interface{}

// valueKind ranks field types for comparison and hashing
type valueKind byte

const (
	nilKind valueKind = iota
	boolKind
	intKind
	uintKind
	floatKind
	stringKind
	bytesKind
	tupleKind
	otherKind
)

func kindOf(v interface{}) valueKind {
	switch v.(type) {
	case nil:
		return nilKind
	case bool:
		return boolKind
	case int, int8, int16, int32, int64:
		return intKind
	case uint, uint8, uint16, uint32, uint64:
		return uintKind
	case float32, float64:
		return floatKind
	case string:
		return stringKind
	case []byte:
		return bytesKind
	case Tuple, []interface{}:
		return tupleKind
	default:
		return otherKind
	}
}

func asInt64(v interface{}) int64 {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	default:
		return x.(int64)
	}
}

func asUint64(v interface{}) uint64 {
	switch x := v.(type) {
	case uint:
		return uint64(x)
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	default:
		return x.(uint64)
	}
}

func asFloat64(v interface{}) float64 {
	if f, ok := v.(float32); ok {
		return float64(f)
	}
	f := v.(float64)
	if f == 0 {
		return 0 // -0 == 0
	}
	return f
}

func asTuple(v interface{}) Tuple {
	if t, ok := v.(Tuple); ok {
		return t
	}
	return Tuple(v.([]interface{}))
}

func compareOrdered(l, r float64) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

// CompareValues imposes a total order on field values. Values of different kinds are
// ordered by kind; integers of any width compare as int64, unsigned integers as uint64
// and floats as float64. NaN sorts before every other float.
func CompareValues(l interface{}, r interface{}) int {
	lk, rk := kindOf(l), kindOf(r)
	if lk != rk {
		if lk < rk {
			return -1
		}
		return 1
	}
	switch lk {
	case nilKind:
		return 0
	case boolKind:
		lb, rb := l.(bool), r.(bool)
		if lb == rb {
			return 0
		} else if !lb {
			return -1
		}
		return 1
	case intKind:
		li, ri := asInt64(l), asInt64(r)
		if li < ri {
			return -1
		} else if li > ri {
			return 1
		}
		return 0
	case uintKind:
		lu, ru := asUint64(l), asUint64(r)
		if lu < ru {
			return -1
		} else if lu > ru {
			return 1
		}
		return 0
	case floatKind:
		lf, rf := asFloat64(l), asFloat64(r)
		lnan, rnan := math.IsNaN(lf), math.IsNaN(rf)
		if lnan || rnan {
			if lnan && rnan {
				return 0
			} else if lnan {
				return -1
			}
			return 1
		}
		return compareOrdered(lf, rf)
	case stringKind:
		return strings.Compare(l.(string), r.(string))
	case bytesKind:
		return bytes.Compare(l.([]byte), r.([]byte))
	case tupleKind:
		return asTuple(l).Compare(asTuple(r))
	default:
		if reflect.DeepEqual(l, r) {
			return 0
		}
		return strings.Compare(fmt.Sprintf("%#v", l), fmt.Sprintf("%#v", r))
	}
}

// EqualValues reports whether two field values are equal under CompareValues
func EqualValues(l interface{}, r interface{}) bool {
	return CompareValues(l, r) == 0
}

// Compare orders Tuples by length, then field by field
func (t Tuple) Compare(o Tuple) int {
	if len(t) != len(o) {
		if len(t) < len(o) {
			return -1
		}
		return 1
	}
	for i := range t {
		if c := CompareValues(t[i], o[i]); c != 0 {
			return c
		}
	}
	return 0
}

// Equals reports whether two Tuples hold equal values
func (t Tuple) Equals(o Tuple) bool {
	return t.Compare(o) == 0
}

// Hash returns an xxhash of this Tuple, consistent with Equals
func (t Tuple) Hash() uint64 {
	d := xxhash.New()
	writeTuple(d, t)
	return d.Sum64()
}

func writeTuple(d *xxhash.Digest, t Tuple) {
	var buf [9]byte
	buf[0] = byte(tupleKind)
	binary.LittleEndian.PutUint64(buf[1:], uint64(len(t)))
	d.Write(buf[:])
	for _, v := range t {
		writeValue(d, v)
	}
}

func writeValue(d *xxhash.Digest, v interface{}) {
	var buf [9]byte
	kind := kindOf(v)
	buf[0] = byte(kind)
	switch kind {
	case nilKind:
		d.Write(buf[:1])
	case boolKind:
		if v.(bool) {
			buf[1] = 1
		}
		d.Write(buf[:2])
	case intKind:
		binary.LittleEndian.PutUint64(buf[1:], uint64(asInt64(v)))
		d.Write(buf[:])
	case uintKind:
		binary.LittleEndian.PutUint64(buf[1:], asUint64(v))
		d.Write(buf[:])
	case floatKind:
		f := asFloat64(v)
		if math.IsNaN(f) {
			f = math.NaN()
		}
		binary.LittleEndian.PutUint64(buf[1:], math.Float64bits(f))
		d.Write(buf[:])
	case stringKind:
		s := v.(string)
		binary.LittleEndian.PutUint64(buf[1:], uint64(len(s)))
		d.Write(buf[:])
		d.Write([]byte(s))
	case bytesKind:
		b := v.([]byte)
		binary.LittleEndian.PutUint64(buf[1:], uint64(len(b)))
		d.Write(buf[:])
		d.Write(b)
	case tupleKind:
		writeTuple(d, asTuple(v))
	default:
		d.Write(buf[:1])
		d.Write([]byte(fmt.Sprintf("%#v", v)))
	}
}

// String returns a human-readable representation of this Tuple
func (t Tuple) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, v := range t {
		if i > 0 {
			sb.WriteByte(',')
		}
		switch x := v.(type) {
		case nil:
		case []byte:
			fmt.Fprintf(&sb, "%x", x)
		default:
			fmt.Fprintf(&sb, "%v", x)
		}
	}
	sb.WriteByte(')')
	return sb.String()
}
