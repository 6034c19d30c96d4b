package bag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalarKey(t *testing.T) {
	k := ScalarKey("a")
	require.False(t, k.IsComposite())
	require.False(t, k.IsNull())
	require.Equal(t, "a", k.Value())
	require.Equal(t, Tuple{"a"}, k.Fields())
	require.Equal(t, "a", k.String())
	require.True(t, k.Equals(ScalarKey("a")))
	require.False(t, k.Equals(ScalarKey("b")))
	require.False(t, k.Equals(CompositeKey("a")))
}

func TestCompositeKey(t *testing.T) {
	fields := []interface{}{"a", 1}
	k := CompositeKey(fields...)
	fields[0] = "mutated"
	require.True(t, k.IsComposite())
	require.False(t, k.IsNull())
	require.Equal(t, Tuple{"a", 1}, k.Fields())
	require.Equal(t, Tuple{"a", 1}, k.Value())
	require.Equal(t, "(a,1)", k.String())
	require.True(t, k.Equals(CompositeKey("a", int32(1))))
	require.False(t, k.Equals(CompositeKey("a", 2)))

	// Fields returns a copy
	k.Fields()[0] = "mutated"
	require.Equal(t, Tuple{"a", 1}, k.Fields())
}

func TestNullKey(t *testing.T) {
	k := NullKey()
	require.True(t, k.IsNull())
	require.False(t, k.IsComposite())
	require.Nil(t, k.Value())
	require.Equal(t, Tuple{}, k.Fields())
	require.Equal(t, "<null>", k.String())
	require.True(t, k.Equals(ScalarKey(nil)))
	require.False(t, k.Equals(CompositeKey()))
}
