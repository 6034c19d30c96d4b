package util

import (
	"fmt"

	"github.com/go-sif/bag"
)

// ValueTupleOperation reconstructs a value Tuple from a raw record
type ValueTupleOperation func(key bag.GroupKey, it *bag.IndexedTuple, index uint8) (bag.Tuple, error)

// GroupOperation consumes the Bag for a single group
type GroupOperation func(key bag.GroupKey, b bag.Bag) error

// SafeValueTupleOperation wraps a Packager's ValueTuple such that panics are recovered and nice error messages are constructed
func SafeValueTupleOperation(pkgr bag.Packager) (safeOp ValueTupleOperation) {
	return func(key bag.GroupKey, it *bag.IndexedTuple, index uint8) (result bag.Tuple, err error) {
		defer func() {
			if r := recover(); r != nil {
				if anErr, ok := r.(error); ok {
					err = fmt.Errorf("ValueTuple Panic: %w\nKey: %s\n%s", anErr, key.String(), GetTrace())
				} else {
					err = fmt.Errorf("ValueTuple Panic: %v\nKey: %s\n%s", r, key.String(), GetTrace())
				}
			}
		}()
		result, err = pkgr.ValueTuple(key, it, index)
		return
	}
}

// SafeGroupOperation wraps a GroupOperation such that panics are recovered and nice error messages are constructed
func SafeGroupOperation(groupOp GroupOperation) (safeGroupOp GroupOperation) {
	return func(key bag.GroupKey, b bag.Bag) (err error) {
		defer func() {
			if r := recover(); r != nil {
				if anErr, ok := r.(error); ok {
					err = fmt.Errorf("Group Panic: %w\nKey: %s\n%s", anErr, key.String(), GetTrace())
				} else {
					err = fmt.Errorf("Group Panic: %v\nKey: %s\n%s", r, key.String(), GetTrace())
				}
			} else if err != nil {
				err = fmt.Errorf("Group Error: %w\nKey: %s", err, key.String())
			}
		}()
		err = groupOp(key, b)
		return
	}
}
