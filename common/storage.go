package common

import (
	"encoding/binary"
	"math/big"

	"github.com/nspcc-dev/app-registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// ErrInvalidStorageItem is thrown when stored value has unexpected format.
const ErrInvalidStorageItem = "invalid storage item"

// GetList returns list of unsigned integers stored under the key. Missing
// key results in an empty list.
func GetList(st interop.Storage, key []byte) []uint64 {
	data := st.Get(key)
	if data == nil {
		return []uint64{}
	}

	item, err := stackitem.Deserialize(data)
	if err != nil {
		panic(ErrInvalidStorageItem + ": " + err.Error())
	}

	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		panic(ErrInvalidStorageItem + ": not an array")
	}

	res := make([]uint64, len(arr))
	for i := range arr {
		n, err := arr[i].TryInteger()
		if err != nil || !n.IsUint64() {
			panic(ErrInvalidStorageItem + ": not an unsigned integer")
		}
		res[i] = n.Uint64()
	}

	return res
}

// PutList serializes list and puts it into contract storage.
func PutList(st interop.Storage, key []byte, list []uint64) {
	items := make([]stackitem.Item, len(list))
	for i := range list {
		items[i] = stackitem.NewBigInteger(new(big.Int).SetUint64(list[i]))
	}

	SetSerialized(st, key, stackitem.NewArray(items))
}

// SetSerialized serializes data and puts it into contract storage.
func SetSerialized(st interop.Storage, key []byte, value stackitem.Item) {
	data, err := stackitem.Serialize(value)
	if err != nil {
		panic(ErrInvalidStorageItem + ": " + err.Error())
	}

	st.Put(key, data)
}

// GetInt returns integer stored under the key or 0 if it's missing.
func GetInt(st interop.Storage, key []byte) int64 {
	data := st.Get(key)
	if data == nil {
		return 0
	}

	return bigint.FromBytes(data).Int64()
}

// PutInt puts variable-length integer into contract storage.
func PutInt(st interop.Storage, key []byte, v int64) {
	st.Put(key, bigint.ToBytes(big.NewInt(v)))
}

// GetFixed returns 8-byte integer stored under the key. The second value
// is false if the key is missing.
func GetFixed(st interop.Storage, key []byte) (uint64, bool) {
	data := st.Get(key)
	if data == nil {
		return 0, false
	}

	if len(data) != 8 {
		panic(ErrInvalidStorageItem + ": fixed integer expected")
	}

	return binary.BigEndian.Uint64(data), true
}

// PutFixed puts integer into contract storage as 8 big-endian bytes. The size
// of the item never depends on the value.
func PutFixed(st interop.Storage, key []byte, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	st.Put(key, buf[:])
}
