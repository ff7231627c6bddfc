package interop

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// AddressLen is the length of an account address in bytes.
const AddressLen = 32

// Address identifies an account of the substrate. Addresses of keyed accounts
// and of application accounts share the same space.
type Address [AddressLen]byte

var errAddressLen = errors.New("invalid address length")

// String returns base58 representation of the address.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// IsZero checks whether a is the zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}

// DecodeAddress decodes Address from its base58 representation.
func DecodeAddress(s string) (Address, error) {
	var a Address

	b, err := base58.Decode(s)
	if err != nil {
		return a, fmt.Errorf("decode base58: %w", err)
	}

	return AddressFromBytes(b)
}

// AddressFromBytes converts b into Address. b must be exactly AddressLen bytes.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLen {
		return a, fmt.Errorf("%w: %d", errAddressLen, len(b))
	}

	copy(a[:], b)

	return a, nil
}
