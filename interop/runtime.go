package interop

import "github.com/nspcc-dev/neo-go/pkg/vm/stackitem"

// Compute budget prices of the operations a contract performs. Storage
// operations are charged by the Storage view itself, hashing must be charged
// by the contract before it hashes.
const (
	PriceDispatch     = 10
	PriceHash         = 45
	PriceStorageRead  = 25
	PriceStorageWrite = 40
	PricePerByte      = 1
)

// Payment is a value transfer attached to a call. The substrate moves the
// amount before the contract method starts.
type Payment struct {
	Sender   Address
	Receiver Address
	Amount   int64
}

// Storage is a contract-scoped key-value view. Get returns nil for missing
// keys. Put and Delete panic if the view is read-only.
type Storage interface {
	Get(key []byte) []byte
	Put(key, value []byte)
	Delete(key []byte)
}

// Runtime is the per-call execution context of a contract.
type Runtime interface {
	// Storage returns metered storage of the executing contract.
	Storage() Storage
	// Self returns address of the executing contract account.
	Self() Address
	// Caller returns address of the call sender.
	Caller() Address
	// Payment returns payment attached to the call if any.
	Payment() (Payment, bool)
	// Balance returns current balance of the executing contract account.
	Balance() int64
	// StorageCost returns minimum balance currently reserved by the executing
	// contract account, including the reservation for its storage.
	StorageCost() int64
	// Transfer pays amount from the contract account to the given one.
	Transfer(to Address, amount int64)
	// Consume charges the group compute budget.
	Consume(units int64)
	// CallInner issues an inner call of the executing contract's method. Inner
	// calls can't be nested.
	CallInner(method string, args ...stackitem.Item) stackitem.Item
	// AuthAddress returns delegated-authority address of the account or zero
	// Address if none is set.
	AuthAddress(addr Address) Address
	// Log writes message into the substrate log.
	Log(msg string)
}

// Contract is a code deployed into the substrate.
type Contract interface {
	// Deploy initializes contract storage, it's executed once by the deployer.
	Deploy(rt Runtime, args []stackitem.Item)
	// Call executes the named method. Unknown method must panic.
	Call(rt Runtime, method string, args []stackitem.Item) stackitem.Item
	// IsSafe reports whether the method exists and whether it's read-only.
	IsSafe(method string) (safe bool, ok bool)
}
