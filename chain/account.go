package chain

import (
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"github.com/nspcc-dev/app-registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
)

// Account is a keyed account able to sign groups.
type Account struct {
	key     *keys.PrivateKey
	Address interop.Address
}

// NewAccount generates new random account.
func NewAccount() (*Account, error) {
	k, err := keys.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate private key: %w", err)
	}

	return AccountFromKey(k), nil
}

// AccountFromKey returns account of the given private key.
func AccountFromKey(k *keys.PrivateKey) *Account {
	return &Account{
		key:     k,
		Address: KeyAddress(k.PublicKey()),
	}
}

// PublicKey returns public key of the account.
func (a *Account) PublicKey() *keys.PublicKey {
	return a.key.PublicKey()
}

// KeyAddress returns address of the keyed account: SHA-256 of the compressed
// public key.
func KeyAddress(pub *keys.PublicKey) interop.Address {
	return interop.Address(hash.Sha256(pub.Bytes()))
}

// ApplicationAddress returns address of the application account with the
// given identifier.
func ApplicationAddress(appID uint64) interop.Address {
	var buf [13]byte
	copy(buf[:], "appID")
	binary.BigEndian.PutUint64(buf[5:], appID)

	return sha512.Sum512_256(buf[:])
}
