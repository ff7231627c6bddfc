package common

import "github.com/nspcc-dev/app-registry/interop"

// ErrOwnerWitnessFailed appears when the method must be called by the
// contract owner but was not.
const ErrOwnerWitnessFailed = "owner witness check failed"

// CheckOwnerWitness checks that the call is sent by the contract owner.
// It panics with ErrOwnerWitnessFailed message on fail.
func CheckOwnerWitness(rt interop.Runtime) {
	if !HasOwnerAccess(rt) {
		panic(ErrOwnerWitnessFailed)
	}
}
