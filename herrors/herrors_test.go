package herrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsMatchesKind(t *testing.T) {
	err := New(KeyNotFound, "no such key")
	require.True(t, Is(err, KeyNotFound))
	require.False(t, Is(err, KeyCorrupt))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk failure")
	err := Wrap(Internal, "reading blob", cause)
	require.True(t, Is(err, Internal))
	require.ErrorIs(t, err, cause)
}

func TestErrorStringIncludesKindAndMessage(t *testing.T) {
	err := New(NoiseExceeded, "residual too large")
	require.Contains(t, err.Error(), "NoiseExceeded")
	require.Contains(t, err.Error(), "residual too large")
}
