package batch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroupChunks(t *testing.T) {
	ids := make([]uint64, 23)
	for i := range ids {
		ids[i] = uint64(i)
	}

	groups := groupChunks(ids, 7, 2)
	require.Len(t, groups, 2)
	require.Len(t, groups[0], 2)
	require.Len(t, groups[1], 2)
	require.Equal(t, ids[:7], groups[0][0])
	require.Equal(t, ids[21:], groups[1][1])

	require.Empty(t, groupChunks([]uint64{}, 7, 15))
	require.Equal(t, [][][]uint64{{{1}}}, groupChunks([]uint64{1}, 7, 15))

	t.Run("chunks don't alias", func(t *testing.T) {
		c := chunk(ids, 5)
		c[0] = append(c[0], 100)
		require.EqualValues(t, 5, ids[5])
	})
}

func TestDedup(t *testing.T) {
	require.Equal(t, []uint64{3, 1, 2}, dedup([]uint64{3, 1, 3, 2, 1}))
	require.Empty(t, dedup(nil))
}
