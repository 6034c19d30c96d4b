// Package packager provides Packagers, which reconstruct value Tuples from the raw
// records of a shuffled group.
package packager

import (
	"strings"

	"github.com/go-sif/bag"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// optionalPrefix marks a field path which may be absent from a record
const optionalPrefix = "?"

// JSONConfig configures a JSONPackager
type JSONConfig struct {
	Fields     [][]string // Fields[i] lists the gjson paths projected, in order, from records of input i. Paths prefixed with "?" are optional.
	KeyTuple   bool       // KeyTuple indicates that group keys are composite
	IncludeKey bool       // IncludeKey prepends the rendered key fields to every value Tuple
}

type fieldPath struct {
	path     string
	optional bool
}

// JSONPackager reconstructs value Tuples from JSON-encoded records. A JSONPackager is
// never modified after construction, and is safe for concurrent use.
type JSONPackager struct {
	fields     [][]fieldPath
	keyTuple   bool
	includeKey bool
}

// NewJSONPackager creates a JSONPackager
func NewJSONPackager(conf JSONConfig) *JSONPackager {
	fields := make([][]fieldPath, len(conf.Fields))
	for i, paths := range conf.Fields {
		fields[i] = make([]fieldPath, len(paths))
		for j, p := range paths {
			fields[i][j] = fieldPath{
				path:     strings.TrimPrefix(p, optionalPrefix),
				optional: strings.HasPrefix(p, optionalPrefix),
			}
		}
	}
	return &JSONPackager{
		fields:     fields,
		keyTuple:   conf.KeyTuple,
		includeKey: conf.IncludeKey,
	}
}

// KeyIsTuple reports whether group keys are composite
func (p *JSONPackager) KeyIsTuple() bool {
	return p.keyTuple
}

// KeyAsTuple renders a group key as a Tuple. Scalar keys become a single-field Tuple, and the null key an empty one.
func (p *JSONPackager) KeyAsTuple(key bag.GroupKey) bag.Tuple {
	return key.Fields()
}

// Key renders a group key as a scalar value
func (p *JSONPackager) Key(key bag.GroupKey) interface{} {
	return key.Value()
}

// ValueTuple projects the configured fields of input index out of a JSON record
func (p *JSONPackager) ValueTuple(key bag.GroupKey, it *bag.IndexedTuple, index uint8) (bag.Tuple, error) {
	if it == nil {
		return nil, errors.Errorf("nil record for input %d", index)
	}
	if int(index) >= len(p.fields) {
		return nil, errors.Errorf("input index %d out of range, packager has %d inputs", index, len(p.fields))
	}
	if !gjson.ValidBytes(it.Payload) {
		return nil, errors.Errorf("record for input %d is not valid JSON: %q", index, it.Payload)
	}
	paths := p.fields[index]
	var t bag.Tuple
	if p.includeKey {
		keyFields := p.KeyAsTuple(key)
		t = make(bag.Tuple, 0, len(keyFields)+len(paths))
		t = append(t, keyFields...)
	} else {
		t = make(bag.Tuple, 0, len(paths))
	}
	results := gjson.GetManyBytes(it.Payload, pathStrings(paths)...)
	for i, r := range results {
		if !r.Exists() {
			if !paths[i].optional {
				return nil, errors.Errorf("record for input %d is missing field %s", index, paths[i].path)
			}
			t = append(t, nil)
			continue
		}
		t = append(t, toValue(r))
	}
	return t, nil
}

func pathStrings(paths []fieldPath) []string {
	result := make([]string, len(paths))
	for i, p := range paths {
		result[i] = p.path
	}
	return result
}

// toValue converts a gjson Result into a Tuple field. Arrays become nested Tuples and
// objects remain maps.
func toValue(r gjson.Result) interface{} {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return r.Num
	case gjson.String:
		return r.Str
	default:
		if r.IsArray() {
			arr := r.Array()
			t := make(bag.Tuple, len(arr))
			for i, elem := range arr {
				t[i] = toValue(elem)
			}
			return t
		}
		return r.Value()
	}
}
