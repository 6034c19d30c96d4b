package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// UnsupportedOperationError occurs when a Bag variant is asked for a capability it does not implement
type UnsupportedOperationError struct {
	Type string // the Bag variant, e.g. ReadOnceBag
	Op   string // the rejected operation, e.g. size
}

// Error returns a textual representation of this UnsupportedOperationError
func (e UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s does not support %s operation", e.Type, e.Op)
}

// SerializationForbiddenError occurs when something attempts to serialize a Bag which is bound
// to a live upstream stream. This always indicates a bug: the Bag escaped its intended lifetime.
type SerializationForbiddenError struct{ Type string }

// Error returns a textual representation of this SerializationForbiddenError
func (e SerializationForbiddenError) Error() string {
	return fmt.Sprintf("%s should never be serialized", e.Type)
}

// ReconstructionError occurs when a Packager cannot produce a value Tuple from a raw record
type ReconstructionError struct {
	Key   string // the group key being read
	Index uint8  // the input index of the raw record
	Err   error  // the Packager error
}

// Error returns a textual representation of this ReconstructionError
func (e ReconstructionError) Error() string {
	return fmt.Sprintf("ReadOnceBag failed to get value tuple for key %s (input %d): %v", e.Key, e.Index, e.Err)
}

// Unwrap returns the Packager error which caused this ReconstructionError
func (e ReconstructionError) Unwrap() error {
	return e.Err
}

// Cause returns the Packager error which caused this ReconstructionError
func (e ReconstructionError) Cause() error {
	return e.Err
}

// NoMoreTuplesError occurs when Next is called on an exhausted iterator
type NoMoreTuplesError struct{}

// Error returns a textual representation of this NoMoreTuplesError
func (e NoMoreTuplesError) Error() string {
	return "No more tuples"
}

// IncompatibleAccumulatorError occurs when Accumulators of different kinds are merged
type IncompatibleAccumulatorError struct{ Expected string }

// Error returns a textual representation of this IncompatibleAccumulatorError
func (e IncompatibleAccumulatorError) Error() string {
	return fmt.Sprintf("Incoming accumulator is not a %s Accumulator", e.Expected)
}

// IsUnsupported returns true iff err is, or wraps, an UnsupportedOperationError
func IsUnsupported(err error) bool {
	var target UnsupportedOperationError
	return pkgerrors.As(err, &target)
}

// IsSerializationForbidden returns true iff err is, or wraps, a SerializationForbiddenError
func IsSerializationForbidden(err error) bool {
	var target SerializationForbiddenError
	return pkgerrors.As(err, &target)
}

// IsReconstruction returns true iff err is, or wraps, a ReconstructionError
func IsReconstruction(err error) bool {
	var target ReconstructionError
	return pkgerrors.As(err, &target)
}
