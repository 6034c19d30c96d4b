package accumulators

import (
	"sync"

	"github.com/go-sif/bag"
)

// AccumulateBag drains a Bag into an Accumulator, iterating it exactly once
func AccumulateBag(b bag.Bag, acc bag.Accumulator) error {
	it := b.Iterator()
	for it.HasNext() {
		t, err := it.Next()
		if err != nil {
			return err
		}
		if err := acc.Accumulate(t); err != nil {
			return err
		}
	}
	return nil
}

// GroupResult is the Accumulator produced for a single group
type GroupResult struct {
	Key         bag.GroupKey
	Accumulator bag.Accumulator
}

// PerGroup accumulates every group it is handed into a fresh Accumulator. Its OnGroup
// method may be passed to group.Groups or group.GroupsParallel.
type PerGroup struct {
	factory bag.AccumulatorFactory
	lock    sync.Mutex
	results []GroupResult
}

// NewPerGroup creates a PerGroup which produces Accumulators using factory
func NewPerGroup(factory bag.AccumulatorFactory) *PerGroup {
	return &PerGroup{factory: factory, results: make([]GroupResult, 0)}
}

// OnGroup accumulates the Bag of one group
func (p *PerGroup) OnGroup(key bag.GroupKey, b bag.Bag) error {
	acc := p.factory()
	if err := AccumulateBag(b, acc); err != nil {
		return err
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	p.results = append(p.results, GroupResult{Key: key, Accumulator: acc})
	return nil
}

// Results returns the Accumulators produced so far, in the order their groups completed
func (p *PerGroup) Results() []GroupResult {
	p.lock.Lock()
	defer p.lock.Unlock()
	results := make([]GroupResult, len(p.results))
	copy(results, p.results)
	return results
}
