package tests

import (
	"testing"

	"github.com/nspcc-dev/app-registry/registry"
)

// FindCollision returns two identifiers not less than from which derived
// addresses share the bucket key.
func FindCollision(tb testing.TB, from uint64) (uint64, uint64) {
	const limit = 1 << 22

	seen := make(map[registry.BucketKey]uint64)
	for id := from; id < from+limit; id++ {
		k := registry.DeriveBucketKey(id)
		if prev, ok := seen[k]; ok {
			return prev, id
		}
		seen[k] = id
	}

	tb.Fatalf("no bucket collision in [%d, %d)", from, from+limit)
	return 0, 0
}
