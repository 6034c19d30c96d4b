package group

import (
	"sync"

	"github.com/go-sif/bag"
	errors "github.com/go-sif/bag/errors"
)

// A KeyedTuple is a raw shuffle record along with the group key it was sorted by
type KeyedTuple struct {
	Key   bag.GroupKey
	Tuple bag.IndexedTuple
}

// SortedStream is the output of the shuffle: KeyedTuples in key order, such that all
// records sharing a key are adjacent
type SortedStream interface {
	HasNext() bool
	Next() (*KeyedTuple, error)
}

// sliceStream produces a simple SortedStream over KeyedTuples stored in a slice
type sliceStream struct {
	tuples []KeyedTuple
	next   int
	lock   sync.Mutex
}

// NewSliceStream produces a SortedStream over already-sorted KeyedTuples
func NewSliceStream(tuples []KeyedTuple) SortedStream {
	return &sliceStream{
		tuples: tuples,
		next:   0,
	}
}

// HasNext returns true iff this SortedStream can produce another KeyedTuple
func (s *sliceStream) HasNext() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.next < len(s.tuples)
}

// Next returns the next KeyedTuple if one is available, or an error
func (s *sliceStream) Next() (*KeyedTuple, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.next >= len(s.tuples) {
		return nil, errors.NoMoreTuplesError{}
	}
	kt := &s.tuples[s.next]
	s.next++
	return kt, nil
}
