package registry

import (
	"crypto/sha512"
	"encoding/binary"

	"github.com/nspcc-dev/app-registry/interop"
)

// BucketKeyLen is the length of the address prefix buckets are keyed by.
const BucketKeyLen = 4

// BucketKey is an address prefix shared by all identifiers of a bucket.
type BucketKey [BucketKeyLen]byte

var appIDPrefix = []byte("appID")

// DeriveAddress returns account address of the application with the given
// identifier: SHA-512/256 of "appID" followed by big-endian identifier.
func DeriveAddress(id uint64) interop.Address {
	var buf [5 + 8]byte
	copy(buf[:], appIDPrefix)
	binary.BigEndian.PutUint64(buf[len(appIDPrefix):], id)

	return sha512.Sum512_256(buf[:])
}

// DeriveBucketKey returns bucket key of the given identifier.
func DeriveBucketKey(id uint64) BucketKey {
	return BucketKeyOf(DeriveAddress(id))
}

// BucketKeyOf returns bucket key of the given address.
func BucketKeyOf(addr interop.Address) BucketKey {
	var k BucketKey
	copy(k[:], addr[:BucketKeyLen])
	return k
}

// FindMatch returns the first candidate whose derived address equals target.
// Candidates of a bucket share the prefix only, so full addresses are compared.
func FindMatch(target interop.Address, candidates []uint64) (uint64, bool) {
	for i := range candidates {
		if DeriveAddress(candidates[i]) == target {
			return candidates[i], true
		}
	}

	return 0, false
}
