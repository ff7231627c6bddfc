package registry

import (
	"github.com/nspcc-dev/app-registry/common"
	"github.com/nspcc-dev/app-registry/interop"
)

// BucketIndex maps bucket keys to identifiers in insertion order. A bucket
// never holds duplicates and is never stored empty.
type BucketIndex struct{}

// Register adds id into its bucket and reports whether it was added. Adding
// an already registered id is a no-op unless the contract was deployed with
// strict duplicates policy.
func (BucketIndex) Register(s *State, id uint64) bool {
	key := bucketStorageKey(BucketKeyOf(s.derive(id)))
	ids := common.GetList(s.st, key)

	for i := range ids {
		if ids[i] == id {
			if s.strictDuplicates() {
				panic(ErrAlreadyRegistered)
			}
			return false
		}
	}

	ids = append(ids, id)
	common.PutList(s.st, key, ids)
	s.addTotal(1)

	return true
}

// RegisterBatch registers ids in order and returns number of added ones.
func (x BucketIndex) RegisterBatch(s *State, ids []uint64) int {
	var n int
	for i := range ids {
		if x.Register(s, ids[i]) {
			n++
		}
	}
	return n
}

// Resolve returns identifier owning the address.
func (BucketIndex) Resolve(s *State, addr interop.Address) (uint64, bool) {
	ids := common.GetList(s.st, bucketStorageKey(BucketKeyOf(addr)))
	if len(ids) == 0 {
		return 0, false
	}

	return s.match(addr, ids)
}

// ResolveWithAuth resolves the address and its delegated-authority address.
func (x BucketIndex) ResolveWithAuth(s *State, addr interop.Address) (id uint64, found bool, authID uint64, authFound bool) {
	id, found = x.Resolve(s, addr)

	auth := s.rt.AuthAddress(addr)
	if !auth.IsZero() {
		authID, authFound = x.Resolve(s, auth)
	}

	return
}

// Bucket returns identifiers stored under the key.
func (BucketIndex) Bucket(s *State, k BucketKey) []uint64 {
	return common.GetList(s.st, bucketStorageKey(k))
}

// Delete removes buckets with all their identifiers. Missing keys are skipped.
func (BucketIndex) Delete(s *State, keys []BucketKey) int {
	var removed int

	for i := range keys {
		key := bucketStorageKey(keys[i])

		ids := common.GetList(s.st, key)
		if len(ids) == 0 {
			continue
		}

		s.st.Delete(key)
		s.addTotal(-int64(len(ids)))
		removed += len(ids)
	}

	return removed
}
