package chain

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/nspcc-dev/app-registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
)

// Ledger store layout.
const (
	balancePrefix = 'a'
	usagePrefix   = 'u'
	authPrefix    = 'k'
	storagePrefix = 's'
)

// usage is the storage owned by an account.
type usage struct {
	boxes int64
	bytes int64
}

func accountKey(prefix byte, addr interop.Address) []byte {
	return append([]byte{prefix}, addr[:]...)
}

func contractKey(addr interop.Address, key []byte) []byte {
	k := make([]byte, 0, 1+len(addr)+len(key))
	k = append(k, storagePrefix)
	k = append(k, addr[:]...)
	return append(k, key...)
}

// ledger reads and writes account state of a store.
type ledger struct {
	cfg   *Config
	store *storage.MemCachedStore
}

func (l ledger) get(key []byte) []byte {
	v, err := l.store.Get(key)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			panic(err)
		}
		return nil
	}
	return v
}

func (l ledger) balance(addr interop.Address) int64 {
	v := l.get(accountKey(balancePrefix, addr))
	if v == nil {
		return 0
	}
	return bigint.FromBytes(v).Int64()
}

func (l ledger) setBalance(addr interop.Address, amount int64) {
	k := accountKey(balancePrefix, addr)
	if amount == 0 {
		l.store.Delete(k)
		return
	}
	l.store.Put(k, bigint.ToBytes(big.NewInt(amount)))
}

func (l ledger) usage(addr interop.Address) usage {
	v := l.get(accountKey(usagePrefix, addr))
	if len(v) != 16 {
		return usage{}
	}
	return usage{
		boxes: int64(binary.BigEndian.Uint64(v)),
		bytes: int64(binary.BigEndian.Uint64(v[8:])),
	}
}

func (l ledger) setUsage(addr interop.Address, u usage) {
	k := accountKey(usagePrefix, addr)
	if u.boxes == 0 {
		l.store.Delete(k)
		return
	}

	v := make([]byte, 16)
	binary.BigEndian.PutUint64(v, uint64(u.boxes))
	binary.BigEndian.PutUint64(v[8:], uint64(u.bytes))
	l.store.Put(k, v)
}

// storageCost returns minimum balance of the account.
func (l ledger) storageCost(addr interop.Address) int64 {
	u := l.usage(addr)
	return l.cfg.MinBalance + l.cfg.BoxFlatCost*u.boxes + l.cfg.BoxByteCost*u.bytes
}

func (l ledger) authAddress(addr interop.Address) interop.Address {
	var a interop.Address
	copy(a[:], l.get(accountKey(authPrefix, addr)))
	return a
}

func (l ledger) setAuthAddress(addr, auth interop.Address) {
	k := accountKey(authPrefix, addr)
	if auth.IsZero() {
		l.store.Delete(k)
		return
	}
	l.store.Put(k, auth[:])
}
