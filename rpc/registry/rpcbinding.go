// Package registry contains RPC wrappers for the application registry contract.
package registry

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/app-registry/chain"
	"github.com/nspcc-dev/app-registry/interop"
	contract "github.com/nspcc-dev/app-registry/registry"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// ReadBudget is the compute budget added to every read simulation.
const ReadBudget = 100_000

// Lookup is the result of identifier resolution. Found is false if no
// identifier is registered for the address.
type Lookup struct {
	ID    uint64
	Found bool
}

// AuthLookup is the result of resolution of the address together with its
// delegated-authority address.
type AuthLookup struct {
	Lookup
	Auth Lookup
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Sender() interop.Address
	Config() chain.Config
	Simulate(ctx context.Context, g *chain.Group, opts chain.SimulateOpts) (*chain.SimulateResult, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	Sign(g *chain.Group) error
	Submit(ctx context.Context, g *chain.Group) (util.Uint256, error)
	AwaitConfirmation(ctx context.Context, id util.Uint256, maxRounds int) (*chain.Confirmation, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash    interop.Address
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	actor Actor
}

// NewReader creates an instance of ContractReader using provided contract
// address and the given Invoker.
func NewReader(invoker Invoker, hash interop.Address) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract address and the
// given Actor.
func New(actor Actor, hash interop.Address) *Contract {
	return &Contract{ContractReader{actor, hash}, actor}
}

// Hash returns contract address.
func (c *ContractReader) Hash() interop.Address {
	return c.hash
}

func (c *ContractReader) newCall(method string, args ...stackitem.Item) chain.Call {
	return chain.Call{
		Sender:   c.invoker.Sender(),
		Contract: c.hash,
		Method:   method,
		Args:     args,
		Fee:      c.invoker.Config().MinFee,
	}
}

// Simulate runs read-only group and returns results of its calls.
func (c *ContractReader) Simulate(ctx context.Context, calls ...chain.Call) ([]stackitem.Item, error) {
	res, err := c.invoker.Simulate(ctx, chain.NewGroup(calls...), chain.SimulateOpts{
		AllowUnsignedCalls: true,
		ExtraBudget:        ReadBudget,
	})
	if err != nil {
		return nil, err
	}

	if err := res.Err(); err != nil {
		return nil, err
	}

	return res.Stack, nil
}

func (c *ContractReader) call(ctx context.Context, method string, args ...stackitem.Item) (stackitem.Item, error) {
	stack, err := c.Simulate(ctx, c.newCall(method, args...))
	if err != nil {
		return nil, err
	}
	return stack[0], nil
}

// Exists invokes `exists` method of contract.
func (c *ContractReader) Exists(ctx context.Context, addr interop.Address) (bool, error) {
	item, err := c.call(ctx, "exists", addressItem(addr))
	if err != nil {
		return false, err
	}
	return item.TryBool()
}

// Get invokes `get` method of contract. Zero is returned for addresses without
// identifier.
func (c *ContractReader) Get(ctx context.Context, addr interop.Address) (uint64, error) {
	item, err := c.call(ctx, "get", addressItem(addr))
	if err != nil {
		return 0, err
	}
	return itemUint64(item)
}

// MustGet invokes `mustGet` method of contract.
func (c *ContractReader) MustGet(ctx context.Context, addr interop.Address) (uint64, error) {
	item, err := c.call(ctx, "mustGet", addressItem(addr))
	if err != nil {
		return 0, err
	}
	return itemUint64(item)
}

// GetBatchCall returns `getBatch` call of the addresses.
func (c *ContractReader) GetBatchCall(addrs []interop.Address) chain.Call {
	return c.newCall("getBatch", addressesItem(addrs))
}

// GetBatch invokes `getBatch` method of contract.
func (c *ContractReader) GetBatch(ctx context.Context, addrs []interop.Address) ([]Lookup, error) {
	stack, err := c.Simulate(ctx, c.GetBatchCall(addrs))
	if err != nil {
		return nil, err
	}
	return LookupsFromItem(stack[0])
}

// MustGetBatch invokes `mustGetBatch` method of contract.
func (c *ContractReader) MustGetBatch(ctx context.Context, addrs []interop.Address) ([]uint64, error) {
	item, err := c.call(ctx, "mustGetBatch", addressesItem(addrs))
	if err != nil {
		return nil, err
	}

	arr, err := itemArray(item)
	if err != nil {
		return nil, err
	}

	res := make([]uint64, len(arr))
	for i := range arr {
		if res[i], err = itemUint64(arr[i]); err != nil {
			return nil, fmt.Errorf("item #%d: %w", i, err)
		}
	}

	return res, nil
}

// GetWithAuth invokes `getWithAuth` method of contract. Zero is returned for
// missing identifiers.
func (c *ContractReader) GetWithAuth(ctx context.Context, addr interop.Address) (uint64, uint64, error) {
	item, err := c.call(ctx, "getWithAuth", addressItem(addr))
	if err != nil {
		return 0, 0, err
	}

	pair, err := itemPair(item)
	if err != nil {
		return 0, 0, err
	}

	id, err := itemUint64(pair[0])
	if err != nil {
		return 0, 0, err
	}

	authID, err := itemUint64(pair[1])
	if err != nil {
		return 0, 0, err
	}

	return id, authID, nil
}

// GetWithAuthBatch invokes `getWithAuthBatch` method of contract.
func (c *ContractReader) GetWithAuthBatch(ctx context.Context, addrs []interop.Address) ([]AuthLookup, error) {
	item, err := c.call(ctx, "getWithAuthBatch", addressesItem(addrs))
	if err != nil {
		return nil, err
	}

	arr, err := itemArray(item)
	if err != nil {
		return nil, err
	}

	res := make([]AuthLookup, len(arr))
	for i := range arr {
		pair, err := itemPair(arr[i])
		if err != nil {
			return nil, fmt.Errorf("item #%d: %w", i, err)
		}

		if res[i].Lookup, err = itemLookup(pair[0]); err != nil {
			return nil, fmt.Errorf("item #%d: %w", i, err)
		}

		if res[i].Auth, err = itemLookup(pair[1]); err != nil {
			return nil, fmt.Errorf("item #%d: %w", i, err)
		}
	}

	return res, nil
}

// Bucket invokes `bucket` method of contract.
func (c *ContractReader) Bucket(ctx context.Context, key contract.BucketKey) ([]uint64, error) {
	item, err := c.call(ctx, "bucket", stackitem.NewByteArray(key[:]))
	if err != nil {
		return nil, err
	}

	arr, err := itemArray(item)
	if err != nil {
		return nil, err
	}

	res := make([]uint64, len(arr))
	for i := range arr {
		if res[i], err = itemUint64(arr[i]); err != nil {
			return nil, fmt.Errorf("item #%d: %w", i, err)
		}
	}

	return res, nil
}

// TotalCount invokes `totalCount` method of contract.
func (c *ContractReader) TotalCount(ctx context.Context) (uint64, error) {
	item, err := c.call(ctx, "totalCount")
	if err != nil {
		return 0, err
	}
	return itemUint64(item)
}

// CreditOf invokes `creditOf` method of contract.
func (c *ContractReader) CreditOf(ctx context.Context, owner interop.Address) (int64, error) {
	item, err := c.call(ctx, "creditOf", addressItem(owner))
	if err != nil {
		return 0, err
	}
	return itemInt64(item)
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version(ctx context.Context) (int64, error) {
	item, err := c.call(ctx, "version")
	if err != nil {
		return 0, err
	}
	return itemInt64(item)
}

// RegisterCall creates a call invoking `register` method of the contract.
func (c *Contract) RegisterCall(id uint64) chain.Call {
	return c.newCall("register", uintItem(id))
}

// RegisterBatchCall creates a call invoking `registerBatch` method of the
// contract.
func (c *Contract) RegisterBatchCall(ids []uint64) chain.Call {
	items := make([]stackitem.Item, len(ids))
	for i := range ids {
		items[i] = uintItem(ids[i])
	}
	return c.newCall("registerBatch", stackitem.NewArray(items))
}

// DepositCreditCall creates a call invoking `depositCredit` method of the
// contract. The amount is paid from the sender to the contract.
func (c *Contract) DepositCreditCall(owner interop.Address, amount int64) chain.Call {
	call := c.newCall("depositCredit", addressItem(owner))
	call.Payment = &chain.Payment{Receiver: c.hash, Amount: amount}
	return call
}

// WithdrawCreditCall creates a call invoking `withdrawCredit` method of the
// contract.
func (c *Contract) WithdrawCreditCall() chain.Call {
	return c.newCall("withdrawCredit")
}

// DeleteBucketsCall creates a call invoking `deleteBuckets` method of the
// contract.
func (c *Contract) DeleteBucketsCall(keys []contract.BucketKey) chain.Call {
	items := make([]stackitem.Item, len(keys))
	for i := range keys {
		items[i] = stackitem.NewByteArray(append([]byte(nil), keys[i][:]...))
	}
	return c.newCall("deleteBuckets", stackitem.NewArray(items))
}

// WithdrawCall creates a call invoking `withdraw` method of the contract.
func (c *Contract) WithdrawCall(amount int64) chain.Call {
	return c.newCall("withdraw", stackitem.NewBigInteger(big.NewInt(amount)))
}

// IncreaseComputeBudgetCall creates a call invoking `increaseComputeBudget`
// method of the contract. The fee covers the inner calls.
func (c *Contract) IncreaseComputeBudgetCall(n int) chain.Call {
	call := c.newCall("increaseComputeBudget", stackitem.NewBigInteger(big.NewInt(int64(n))))
	call.Fee *= int64(1 + n)
	return call
}

// UpdateCall creates a call invoking `update` method of the contract.
func (c *Contract) UpdateCall(version int64) chain.Call {
	return c.newCall("update", stackitem.NewBigInteger(big.NewInt(version)))
}

// DestroyCall creates a call invoking `destroy` method of the contract.
func (c *Contract) DestroyCall() chain.Call {
	return c.newCall("destroy")
}

// Send signs the group of calls, submits it and waits for its application
// during maxRounds rounds. Sending a group which is already known to the
// chain waits for the known one.
func (c *Contract) Send(ctx context.Context, maxRounds int, calls ...chain.Call) (*chain.Confirmation, error) {
	g := chain.NewGroup(calls...)

	if err := c.actor.Sign(g); err != nil {
		return nil, fmt.Errorf("sign group: %w", err)
	}

	id, err := c.actor.Submit(ctx, g)
	if err != nil && !errors.Is(err, chain.ErrAlreadyExists) {
		return nil, fmt.Errorf("submit group: %w", err)
	}

	return c.actor.AwaitConfirmation(ctx, id, maxRounds)
}

var errUnexpectedItem = errors.New("unexpected stack item")

func addressItem(a interop.Address) stackitem.Item {
	return stackitem.NewByteArray(a[:])
}

func addressesItem(addrs []interop.Address) stackitem.Item {
	items := make([]stackitem.Item, len(addrs))
	for i := range addrs {
		items[i] = addressItem(addrs[i])
	}
	return stackitem.NewArray(items)
}

func uintItem(v uint64) stackitem.Item {
	return stackitem.NewBigInteger(new(big.Int).SetUint64(v))
}

func itemUint64(item stackitem.Item) (uint64, error) {
	n, err := item.TryInteger()
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() {
		return 0, fmt.Errorf("%w: %s is not uint64", errUnexpectedItem, n)
	}
	return n.Uint64(), nil
}

func itemInt64(item stackitem.Item) (int64, error) {
	n, err := item.TryInteger()
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() {
		return 0, fmt.Errorf("%w: %s is not int64", errUnexpectedItem, n)
	}
	return n.Int64(), nil
}

func itemLookup(item stackitem.Item) (Lookup, error) {
	if _, ok := item.(stackitem.Null); ok {
		return Lookup{}, nil
	}

	id, err := itemUint64(item)
	if err != nil {
		return Lookup{}, err
	}

	return Lookup{ID: id, Found: true}, nil
}

func itemArray(item stackitem.Item) ([]stackitem.Item, error) {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an array", errUnexpectedItem, item.Type())
	}
	return arr, nil
}

func itemPair(item stackitem.Item) ([]stackitem.Item, error) {
	arr, err := itemArray(item)
	if err != nil {
		return nil, err
	}
	if len(arr) != 2 {
		return nil, fmt.Errorf("%w: %d elements instead of 2", errUnexpectedItem, len(arr))
	}
	return arr, nil
}

// LookupsFromItem decodes result of `getBatch` method.
func LookupsFromItem(item stackitem.Item) ([]Lookup, error) {
	arr, err := itemArray(item)
	if err != nil {
		return nil, err
	}

	res := make([]Lookup, len(arr))
	for i := range arr {
		if res[i], err = itemLookup(arr[i]); err != nil {
			return nil, fmt.Errorf("item #%d: %w", i, err)
		}
	}

	return res, nil
}
