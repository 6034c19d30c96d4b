package bags

import (
	"bytes"
	"encoding/gob"
	"io/ioutil"
	"testing"

	"github.com/go-sif/bag"
	"github.com/go-sif/bag/config"
	errors "github.com/go-sif/bag/errors"
	"github.com/stretchr/testify/require"
)

func createTestConfig(t *testing.T, spillThreshold int64) *config.Config {
	conf := config.Default()
	conf.SpillDir = t.TempDir()
	conf.SpillThreshold = spillThreshold
	return conf
}

func numSpillFiles(t *testing.T, conf *config.Config) int {
	files, err := ioutil.ReadDir(conf.SpillDir)
	require.Nil(t, err)
	return len(files)
}

func TestDefaultBagAdd(t *testing.T) {
	b := NewDefaultBag(createTestConfig(t, 0))
	require.NotEmpty(t, b.ID())
	size, err := b.Size()
	require.Nil(t, err)
	require.Equal(t, int64(0), size)
	require.Equal(t, int64(0), b.MemorySize())

	require.Nil(t, b.Add(bag.Tuple{"a", 1}))
	require.Nil(t, b.Add(bag.Tuple{"b", 2}))
	size, err = b.Size()
	require.Nil(t, err)
	require.Equal(t, int64(2), size)
	require.True(t, b.MemorySize() > 0)
	require.Equal(t, []bag.Tuple{{"a", 1}, {"b", 2}}, drain(t, b.Iterator()))
	// iterators are independent
	require.Equal(t, []bag.Tuple{{"a", 1}, {"b", 2}}, drain(t, b.Iterator()))
}

func TestDefaultBagCapabilities(t *testing.T) {
	b := NewDefaultBag(nil)
	distinct, err := b.IsDistinct()
	require.Nil(t, err)
	require.False(t, distinct)
	sorted, err := b.IsSorted()
	require.Nil(t, err)
	require.False(t, sorted)
	require.False(t, b.IsStale())
	require.Nil(t, b.MarkStale(true))
	require.True(t, b.IsStale())
	require.True(t, errors.IsUnsupported(b.Iterator().Remove()))
}

func TestDefaultBagSpill(t *testing.T) {
	conf := createTestConfig(t, 0)
	b := NewDefaultBag(conf)
	require.Nil(t, b.Add(bag.Tuple{"a", 1, 2.5, nil, []byte("x"), bag.Tuple{"n", true}}))
	require.Nil(t, b.Add(bag.Tuple{}))
	resident := b.MemorySize()
	released, err := b.Spill()
	require.Nil(t, err)
	require.Equal(t, resident, released)
	require.Equal(t, int64(0), b.MemorySize())
	require.Equal(t, 1, numSpillFiles(t, conf))

	// spilling an empty bag is a no-op
	released, err = b.Spill()
	require.Nil(t, err)
	require.Equal(t, int64(0), released)
	require.Equal(t, 1, numSpillFiles(t, conf))

	require.Nil(t, b.Add(bag.Tuple{"c", 3}))
	size, err := b.Size()
	require.Nil(t, err)
	require.Equal(t, int64(3), size)
	require.Equal(t, []bag.Tuple{
		{"a", 1, 2.5, nil, []byte("x"), bag.Tuple{"n", true}},
		{},
		{"c", 3},
	}, drain(t, b.Iterator()))

	require.Nil(t, b.Clear())
	require.Equal(t, 0, numSpillFiles(t, conf))
	size, err = b.Size()
	require.Nil(t, err)
	require.Equal(t, int64(0), size)
	require.False(t, b.Iterator().HasNext())
}

func TestDefaultBagSpillThreshold(t *testing.T) {
	conf := createTestConfig(t, 2)
	b := NewDefaultBag(conf)
	expected := make([]bag.Tuple, 0)
	for i := 0; i < 5; i++ {
		tup := bag.Tuple{i}
		expected = append(expected, tup)
		require.Nil(t, b.Add(tup))
	}
	require.Equal(t, 2, numSpillFiles(t, conf))
	require.Equal(t, expected, drain(t, b.Iterator()))
}

func TestDefaultBagIteratorSnapshot(t *testing.T) {
	b := NewDefaultBag(createTestConfig(t, 0))
	require.Nil(t, b.Add(bag.Tuple{1}))
	it := b.Iterator()
	require.Nil(t, b.Add(bag.Tuple{2}))
	_, err := b.Spill()
	require.Nil(t, err)
	require.Equal(t, []bag.Tuple{{1}}, drain(t, it))
}

func TestDefaultBagMaterializesReadOnceBag(t *testing.T) {
	it := newSliceIterator(0, "a", "b", "c")
	rob := NewReadOnceBag(&testPackager{}, it, bag.ScalarKey("k"))
	b := NewDefaultBag(createTestConfig(t, 0))
	require.Nil(t, b.AddAll(rob))
	size, err := b.Size()
	require.Nil(t, err)
	require.Equal(t, int64(3), size)
	require.Equal(t, 3, it.pulled)
	// the copy may be replayed
	require.Len(t, drain(t, b.Iterator()), 3)
	require.Len(t, drain(t, b.Iterator()), 3)
}

func TestDefaultBagAddAllPropagatesReconstructionError(t *testing.T) {
	rob := NewReadOnceBag(&testPackager{failOn: 2}, newSliceIterator(0, "a", "b", "c"), bag.ScalarKey("k"))
	b := NewDefaultBag(createTestConfig(t, 0))
	err := b.AddAll(rob)
	require.True(t, errors.IsReconstruction(err))
	size, _ := b.Size()
	require.Equal(t, int64(1), size)
}

func TestDefaultBagCompareTo(t *testing.T) {
	conf := createTestConfig(t, 0)
	l, r := NewDefaultBag(conf), NewDefaultBag(conf)
	for i := 0; i < 3; i++ {
		require.Nil(t, l.Add(bag.Tuple{i}))
		require.Nil(t, r.Add(bag.Tuple{i}))
	}
	_, err := l.Spill()
	require.Nil(t, err)
	c, err := l.CompareTo(r)
	require.Nil(t, err)
	require.Equal(t, 0, c)
	require.True(t, l.Equals(r))
	require.Equal(t, l.Hash(), r.Hash())

	require.Nil(t, r.Add(bag.Tuple{0}))
	c, err = l.CompareTo(r)
	require.Nil(t, err)
	require.Equal(t, -1, c)
	require.False(t, l.Equals(r))

	require.Nil(t, l.Add(bag.Tuple{5}))
	c, err = l.CompareTo(r)
	require.Nil(t, err)
	require.Equal(t, 1, c)

	_, err = l.CompareTo(NewReadOnceBag(&testPackager{}, newSliceIterator(0), bag.NullKey()))
	require.True(t, errors.IsUnsupported(err))
	require.False(t, l.Equals(NewReadOnceBag(&testPackager{}, newSliceIterator(0), bag.NullKey())))
}

func TestDefaultBagSerialization(t *testing.T) {
	conf := createTestConfig(t, 0)
	b := NewDefaultBag(conf)
	require.Nil(t, b.Add(bag.Tuple{"a", int64(1)}))
	_, err := b.Spill()
	require.Nil(t, err)
	require.Nil(t, b.Add(bag.Tuple{"b", bag.Tuple{2.5}}))

	buff := new(bytes.Buffer)
	require.Nil(t, gob.NewEncoder(buff).Encode(b))
	restored := NewDefaultBag(conf)
	require.Nil(t, restored.Add(bag.Tuple{"stale"}))
	require.Nil(t, gob.NewDecoder(buff).Decode(restored))
	require.True(t, b.Equals(restored))
	size, err := restored.Size()
	require.Nil(t, err)
	require.Equal(t, int64(2), size)

	require.NotNil(t, restored.UnmarshalBinary([]byte("garbage")))
}
