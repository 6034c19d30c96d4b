// Package spill tracks the memory held by Spillable Bags and spills them when a
// memory limit is exceeded.
package spill

import (
	"container/list"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/go-sif/bag"
	"github.com/go-sif/bag/config"
	"github.com/go-sif/bag/logging"
	"github.com/hashicorp/go-multierror"
)

// Manager watches registered Spillables. When their combined MemorySize exceeds the
// configured limit, Check spills the largest ones until the total is back under it.
// Spillables which report a MemorySize of 0 hold nothing and are never chosen.
type Manager struct {
	limit   int64
	lock    sync.Mutex
	entries *list.List // back is oldest, front is newest
	index   map[bag.Spillable]*list.Element
}

// NewManager creates a Manager using conf.MemoryLimit. A nil conf uses config.Default().
func NewManager(conf *config.Config) *Manager {
	if conf == nil {
		conf = config.Default()
	}
	return &Manager{
		limit:   conf.MemoryLimit,
		entries: list.New(),
		index:   make(map[bag.Spillable]*list.Element),
	}
}

// Register starts tracking a Spillable. Registering the same Spillable twice has no effect.
func (m *Manager) Register(s bag.Spillable) error {
	if s == nil || !reflect.TypeOf(s).Comparable() {
		return fmt.Errorf("Spillable of type %T cannot be tracked", s)
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	if _, ok := m.index[s]; ok {
		return nil
	}
	m.index[s] = m.entries.PushFront(s)
	return nil
}

// Unregister stops tracking a Spillable
func (m *Manager) Unregister(s bag.Spillable) {
	if s == nil || !reflect.TypeOf(s).Comparable() {
		return
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	if e, ok := m.index[s]; ok {
		m.entries.Remove(e)
		delete(m.index, s)
	}
}

// Len returns the number of tracked Spillables
func (m *Manager) Len() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.entries.Len()
}

// MemorySize returns the combined MemorySize of all tracked Spillables
func (m *Manager) MemorySize() int64 {
	m.lock.Lock()
	defer m.lock.Unlock()
	var total int64
	for e := m.entries.Front(); e != nil; e = e.Next() {
		total += e.Value.(bag.Spillable).MemorySize()
	}
	return total
}

type candidate struct {
	s    bag.Spillable
	size int64
}

// Check spills tracked Spillables, largest first, until their combined MemorySize no
// longer exceeds the limit. It returns the number of bytes released.
func (m *Manager) Check() (int64, error) {
	if m.limit <= 0 {
		return 0, nil
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	var total int64
	candidates := make([]candidate, 0, m.entries.Len())
	for e := m.entries.Back(); e != nil; e = e.Prev() {
		s := e.Value.(bag.Spillable)
		size := s.MemorySize()
		total += size
		if size > 0 {
			candidates = append(candidates, candidate{s: s, size: size})
		}
	}
	if total <= m.limit {
		return 0, nil
	}
	// oldest first among equals
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].size > candidates[j].size
	})
	var released int64
	var multierr *multierror.Error
	for _, c := range candidates {
		if total <= m.limit {
			break
		}
		n, err := c.s.Spill()
		if err != nil {
			multierr = multierror.Append(multierr, err)
			continue
		}
		released += n
		total -= n
	}
	logging.Logger().Debugf("Spilled %d bytes, %d bytes remain resident (limit %d)", released, total, m.limit)
	return released, multierr.ErrorOrNil()
}
