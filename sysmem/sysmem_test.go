package sysmem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReserveReleaseRoundTrip(t *testing.T) {
	sz := PageSize()
	require.NotZero(t, sz)

	ptr, err := Reserve(sz, false)
	require.NoError(t, err)
	require.NotZero(t, ptr)

	err = Release(ptr, sz)
	require.NoError(t, err)
}

func TestReserveZero(t *testing.T) {
	ptr, err := Reserve(0, false)
	require.NoError(t, err)
	require.Zero(t, ptr)
}

func TestReleaseNilIsNoOp(t *testing.T) {
	require.NoError(t, Release(0, 0))
}

func TestPageSizeCached(t *testing.T) {
	a := PageSize()
	b := PageSize()
	require.Equal(t, a, b)
}
