package registry

import (
	"errors"
	"strings"

	"github.com/nspcc-dev/app-registry/chain"
	contract "github.com/nspcc-dev/app-registry/registry"
)

var kinds = []string{
	contract.ErrUnauthorized,
	contract.ErrNotFound,
	contract.ErrInsufficientCredit,
	contract.ErrReceiverMismatch,
	contract.ErrZeroAmount,
	contract.ErrNoAccount,
	contract.ErrAlreadyRegistered,
	contract.ErrInvalidArgument,
	contract.ErrNotEmpty,
	contract.ErrFundsReserved,
	contract.ErrDestroyed,
	contract.ErrUnknownMethod,
}

// ErrorKind returns the contract exception the group faulted with or an
// empty string if the error is not a contract fault.
func ErrorKind(err error) string {
	var fe *chain.FaultError
	if !errors.As(err, &fe) {
		return ""
	}

	for _, k := range kinds {
		if strings.Contains(fe.Exception, k) {
			return k
		}
	}

	return ""
}

// IsKind checks whether err is a contract fault of the given kind.
func IsKind(err error, kind string) bool {
	return kind != "" && ErrorKind(err) == kind
}
