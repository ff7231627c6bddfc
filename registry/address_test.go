package registry_test

import (
	"encoding/hex"
	"testing"

	"github.com/nspcc-dev/app-registry/chain"
	"github.com/nspcc-dev/app-registry/registry"
	"github.com/stretchr/testify/require"
)

func TestDeriveAddress(t *testing.T) {
	for id, expected := range map[uint64]string{
		0:    "f5ff74bbc5bee47a2b4ea2f9e80603935defc405579dfda923e22ae64e4e4600",
		1002: "76eb88293cedd0bae8d51bb9c5b34833e83d4311bb4b7eab9918b41e047cce6f",
	} {
		addr := registry.DeriveAddress(id)
		require.Equal(t, expected, hex.EncodeToString(addr[:]), id)
		require.Equal(t, chain.ApplicationAddress(id), addr, id)

		k := registry.DeriveBucketKey(id)
		require.Equal(t, addr[:registry.BucketKeyLen], k[:])
	}
}

func TestFindMatch(t *testing.T) {
	target := registry.DeriveAddress(1005)

	id, ok := registry.FindMatch(target, []uint64{1003, 1004, 1005, 1005})
	require.True(t, ok)
	require.EqualValues(t, 1005, id)

	_, ok = registry.FindMatch(target, []uint64{1003, 1004})
	require.False(t, ok)

	_, ok = registry.FindMatch(target, nil)
	require.False(t, ok)

	t.Run("same prefix", func(t *testing.T) {
		other := target
		other[len(other)-1] ^= 1
		require.Equal(t, registry.BucketKeyOf(target), registry.BucketKeyOf(other))

		_, ok := registry.FindMatch(other, []uint64{1005})
		require.False(t, ok)
	})
}
