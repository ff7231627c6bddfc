package common

import (
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

type mapStorage map[string][]byte

func (m mapStorage) Get(key []byte) []byte { return m[string(key)] }
func (m mapStorage) Put(key, value []byte) { m[string(key)] = value }
func (m mapStorage) Delete(key []byte)     { delete(m, string(key)) }

func TestList(t *testing.T) {
	st := make(mapStorage)
	key := []byte("list")

	require.Equal(t, []uint64{}, GetList(st, key))

	list := []uint64{1003, 0, 1 << 63, 1002}
	PutList(st, key, list)
	require.Equal(t, list, GetList(st, key))

	t.Run("invalid", func(t *testing.T) {
		SetSerialized(st, key, stackitem.NewByteArray([]byte{1, 2}))
		require.Panics(t, func() { GetList(st, key) })

		SetSerialized(st, key, stackitem.NewArray([]stackitem.Item{stackitem.Make(-1)}))
		require.Panics(t, func() { GetList(st, key) })

		st.Put(key, []byte{0xFF})
		require.Panics(t, func() { GetList(st, key) })
	})
}

func TestIntegers(t *testing.T) {
	st := make(mapStorage)

	require.Zero(t, GetInt(st, []byte("int")))
	for _, v := range []int64{0, 1, -1, 1 << 40} {
		PutInt(st, []byte("int"), v)
		require.Equal(t, v, GetInt(st, []byte("int")))
	}

	_, ok := GetFixed(st, []byte("fixed"))
	require.False(t, ok)

	PutFixed(st, []byte("fixed"), 1)
	require.Len(t, st.Get([]byte("fixed")), 8)

	v, ok := GetFixed(st, []byte("fixed"))
	require.True(t, ok)
	require.EqualValues(t, 1, v)

	st.Put([]byte("fixed"), []byte{1})
	require.Panics(t, func() { GetFixed(st, []byte("fixed")) })
}

func TestCheckVersion(t *testing.T) {
	require.NotPanics(t, func() { CheckVersion(Version-1, Version) })
	require.PanicsWithValue(t, ErrAlreadyUpdated+": 3000", func() { CheckVersion(Version, Version) })
	require.Panics(t, func() { CheckVersion(Version+1, Version) })
}
