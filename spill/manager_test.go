package spill

import (
	"fmt"
	"testing"

	"github.com/go-sif/bag"
	"github.com/go-sif/bag/bags"
	"github.com/go-sif/bag/config"
	"github.com/go-sif/bag/packager"
	"github.com/stretchr/testify/require"
)

type emptyIterator struct{}

func (it *emptyIterator) HasNext() bool {
	return false
}

func (it *emptyIterator) Next() (*bag.IndexedTuple, error) {
	return nil, fmt.Errorf("empty")
}

func createTestBag(t *testing.T, conf *config.Config, numTuples int) *bags.DefaultBag {
	b := bags.NewDefaultBag(conf)
	for i := 0; i < numTuples; i++ {
		require.Nil(t, b.Add(bag.Tuple{fmt.Sprintf("value-%d", i)}))
	}
	return b
}

func TestManagerSpillsLargestFirst(t *testing.T) {
	conf := config.Default()
	conf.SpillDir = t.TempDir()
	small, large := createTestBag(t, conf, 2), createTestBag(t, conf, 20)
	rob := bags.NewReadOnceBag(packager.NewJSONPackager(packager.JSONConfig{}), &emptyIterator{}, bag.NullKey())
	conf.MemoryLimit = small.MemorySize() + 1

	m := NewManager(conf)
	require.Nil(t, m.Register(rob))
	require.Nil(t, m.Register(small))
	require.Nil(t, m.Register(large))
	require.Nil(t, m.Register(large))
	require.Equal(t, 3, m.Len())
	require.Equal(t, small.MemorySize()+large.MemorySize(), m.MemorySize())

	largeSize := large.MemorySize()
	released, err := m.Check()
	require.Nil(t, err)
	require.Equal(t, largeSize, released)
	require.Equal(t, int64(0), large.MemorySize())
	require.True(t, small.MemorySize() > 0)
	size, err := large.Size()
	require.Nil(t, err)
	require.Equal(t, int64(20), size)

	// under the limit, nothing happens
	released, err = m.Check()
	require.Nil(t, err)
	require.Equal(t, int64(0), released)

	m.Unregister(large)
	m.Unregister(rob)
	require.Equal(t, 1, m.Len())
}

func TestManagerNeverSpillsReadOnceBags(t *testing.T) {
	conf := config.Default()
	conf.MemoryLimit = 1
	m := NewManager(conf)
	for i := 0; i < 3; i++ {
		rob := bags.NewReadOnceBag(packager.NewJSONPackager(packager.JSONConfig{}), &emptyIterator{}, bag.ScalarKey(i))
		require.Nil(t, m.Register(rob))
	}
	released, err := m.Check()
	require.Nil(t, err)
	require.Equal(t, int64(0), released)
}

func TestManagerWithoutLimit(t *testing.T) {
	conf := config.Default()
	conf.SpillDir = t.TempDir()
	m := NewManager(conf)
	b := createTestBag(t, conf, 5)
	require.Nil(t, m.Register(b))
	released, err := m.Check()
	require.Nil(t, err)
	require.Equal(t, int64(0), released)
	require.True(t, b.MemorySize() > 0)
}

type valueSpillable []int

func (v valueSpillable) MemorySize() int64 {
	return int64(len(v))
}

func (v valueSpillable) Spill() (int64, error) {
	return 0, nil
}

func TestManagerRejectsUncomparable(t *testing.T) {
	m := NewManager(nil)
	require.NotNil(t, m.Register(valueSpillable{1}))
	require.NotNil(t, m.Register(nil))
	require.Equal(t, 0, m.Len())
}
