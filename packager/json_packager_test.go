package packager

import (
	"testing"

	"github.com/go-sif/bag"
	"github.com/stretchr/testify/require"
)

func createTestPackager(includeKey bool) *JSONPackager {
	return NewJSONPackager(JSONConfig{
		Fields: [][]string{
			{"name", "fare", "?tip"},
			{"zone.id", "tags"},
		},
		KeyTuple:   true,
		IncludeKey: includeKey,
	})
}

func TestJSONPackagerValueTuple(t *testing.T) {
	pkgr := createTestPackager(false)
	key := bag.CompositeKey("a", 1)
	tup, err := pkgr.ValueTuple(key, &bag.IndexedTuple{Payload: []byte(`{"name":"x","fare":12.5,"tip":null}`)}, 0)
	require.Nil(t, err)
	require.Equal(t, bag.Tuple{"x", 12.5, nil}, tup)

	tup, err = pkgr.ValueTuple(key, &bag.IndexedTuple{Index: 1, Payload: []byte(`{"zone":{"id":7},"tags":["a",true]}`)}, 1)
	require.Nil(t, err)
	require.Equal(t, bag.Tuple{7.0, bag.Tuple{"a", true}}, tup)
}

func TestJSONPackagerOptionalField(t *testing.T) {
	pkgr := createTestPackager(false)
	tup, err := pkgr.ValueTuple(bag.NullKey(), &bag.IndexedTuple{Payload: []byte(`{"name":"x","fare":1}`)}, 0)
	require.Nil(t, err)
	require.Equal(t, bag.Tuple{"x", 1.0, nil}, tup)
}

func TestJSONPackagerIncludeKey(t *testing.T) {
	pkgr := createTestPackager(true)
	tup, err := pkgr.ValueTuple(bag.CompositeKey("a", 1), &bag.IndexedTuple{Payload: []byte(`{"name":"x","fare":2,"tip":false}`)}, 0)
	require.Nil(t, err)
	require.Equal(t, bag.Tuple{"a", 1, "x", 2.0, false}, tup)
}

func TestJSONPackagerErrors(t *testing.T) {
	pkgr := createTestPackager(false)
	key := bag.ScalarKey("k")
	_, err := pkgr.ValueTuple(key, &bag.IndexedTuple{Payload: []byte(`{"name":`)}, 0)
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "not valid JSON")

	_, err = pkgr.ValueTuple(key, &bag.IndexedTuple{Payload: []byte(`{"name":"x"}`)}, 0)
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "missing field fare")

	_, err = pkgr.ValueTuple(key, &bag.IndexedTuple{Index: 2, Payload: []byte(`{}`)}, 2)
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "out of range")

	_, err = pkgr.ValueTuple(key, nil, 0)
	require.NotNil(t, err)
}

func TestJSONPackagerKeyRendering(t *testing.T) {
	pkgr := createTestPackager(false)
	require.True(t, pkgr.KeyIsTuple())
	require.Equal(t, bag.Tuple{"a", 1}, pkgr.KeyAsTuple(bag.CompositeKey("a", 1)))
	require.Equal(t, bag.Tuple{"a"}, pkgr.KeyAsTuple(bag.ScalarKey("a")))
	require.Equal(t, bag.Tuple{}, pkgr.KeyAsTuple(bag.NullKey()))
	require.Equal(t, "a", pkgr.Key(bag.ScalarKey("a")))
	require.Nil(t, pkgr.Key(bag.NullKey()))

	scalar := NewJSONPackager(JSONConfig{})
	require.False(t, scalar.KeyIsTuple())
}
