package chain

import (
	"errors"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Execution states.
const (
	HaltState  = "HALT"
	FaultState = "FAULT"
)

// Fault exceptions raised by the substrate itself.
const (
	ErrBudgetExceeded    = "dynamic cost budget exceeded"
	ErrBelowMinBalance   = "balance below minimum"
	ErrInsufficientFunds = "insufficient funds"
	ErrFeeTooLow         = "fee too low"
	ErrContractNotFound  = "contract not found"
	ErrMethodNotFound    = "method not found"
	ErrNestedInnerCall   = "inner calls can't be nested"
	ErrTooManyInnerCalls = "too many inner calls"
	ErrReadOnly          = "read-only context"
	ErrNegativeAmount    = "negative amount"
)

var (
	// ErrGroupSize is returned for empty or oversized groups.
	ErrGroupSize = errors.New("invalid group size")
	// ErrAlreadyExists is returned on resubmission of a known group.
	ErrAlreadyExists = errors.New("group already exists")
	// ErrConfirmationTimeout is returned if the group is not applied within the
	// requested number of rounds. The group stays in the pool and may still be
	// applied later.
	ErrConfirmationTimeout = errors.New("confirmation timeout")
	// ErrUnknownGroup is returned when awaiting a group which was never
	// submitted.
	ErrUnknownGroup = errors.New("unknown group")
)

// SimulateOpts configures group simulation.
type SimulateOpts struct {
	// Skip witness verification.
	AllowUnsignedCalls bool
	// Compute units added to the group pool.
	ExtraBudget int64
}

// SimulateResult is the outcome of group execution.
type SimulateResult struct {
	State          string
	FaultException string
	// Index of the top-level call that faulted, -1 if the fault happened
	// outside of calls.
	FaultCall int
	// Results of top-level calls which completed.
	Stack []stackitem.Item
	// Compute units consumed by the group.
	ComputeConsumed int64
	// Number of call budgets the group pool consists of, inner calls
	// included.
	CallEquivalents int
}

// Err returns *FaultError if the execution faulted.
func (r *SimulateResult) Err() error {
	if r.State == HaltState {
		return nil
	}
	return &FaultError{Exception: r.FaultException, Call: r.FaultCall}
}

// Confirmation describes applied group.
type Confirmation struct {
	ID     util.Uint256
	Round  uint32
	TxIDs  []util.Uint256
	Stack  []stackitem.Item
	Result *SimulateResult
}

// FaultError is returned for groups which faulted on application.
type FaultError struct {
	Exception string
	Call      int
}

func (e *FaultError) Error() string {
	return "group faulted: " + e.Exception
}
