package common

import "github.com/nspcc-dev/app-registry/interop"

// OwnerKey is a storage key of the contract owner address.
var OwnerKey = []byte("contractOwner")

// SetOwner stores contract owner. Owner is set once on deploy.
func SetOwner(rt interop.Runtime, owner interop.Address) {
	rt.Storage().Put(OwnerKey, owner[:])
}

// Owner returns stored contract owner.
func Owner(rt interop.Runtime) interop.Address {
	a, err := interop.AddressFromBytes(rt.Storage().Get(OwnerKey))
	if err != nil {
		panic(ErrInvalidStorageItem + ": owner")
	}
	return a
}

// HasOwnerAccess returns true if the call is sent by the contract owner.
func HasOwnerAccess(rt interop.Runtime) bool {
	return rt.Caller() == Owner(rt)
}
