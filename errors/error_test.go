package errors

import (
	"fmt"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	unsupported := UnsupportedOperationError{Type: "ReadOnceBag", Op: "size"}
	require.Equal(t, "ReadOnceBag does not support size operation", unsupported.Error())
	require.True(t, IsUnsupported(unsupported))
	require.False(t, IsSerializationForbidden(unsupported))

	forbidden := SerializationForbiddenError{Type: "ReadOnceBag"}
	require.True(t, IsSerializationForbidden(forbidden))
	require.False(t, IsUnsupported(forbidden))

	cause := fmt.Errorf("bad payload")
	reconstruction := ReconstructionError{Key: "(a,1)", Index: 2, Err: cause}
	require.Equal(t, "ReadOnceBag failed to get value tuple for key (a,1) (input 2): bad payload", reconstruction.Error())
	require.Equal(t, cause, pkgerrors.Cause(reconstruction))
	require.True(t, IsReconstruction(pkgerrors.Wrap(reconstruction, "group a")))
	require.True(t, IsReconstruction(fmt.Errorf("wrapped: %w", reconstruction)))
	require.False(t, IsReconstruction(cause))
}
