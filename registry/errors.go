package registry

import "github.com/nspcc-dev/app-registry/common"

// Exception messages the contract aborts execution with.
const (
	ErrUnauthorized       = common.ErrOwnerWitnessFailed
	ErrNotFound           = "identifier not found"
	ErrInsufficientCredit = "insufficient credit"
	ErrReceiverMismatch   = "payment receiver mismatch"
	ErrZeroAmount         = "zero amount"
	ErrNoAccount          = "credit account not found"
	ErrAlreadyRegistered  = "identifier is already registered"
	ErrInvalidArgument    = "invalid argument"
	ErrNotEmpty           = "registry is not empty"
	ErrFundsReserved      = "contract funds are reserved"
	ErrDestroyed          = "contract is destroyed"
	ErrUnknownMethod      = "method not found"
)
