package registry

import (
	"math/big"

	"github.com/nspcc-dev/app-registry/common"
	"github.com/nspcc-dev/app-registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Contract is the registry contract composed of the bucket index and the
// credit ledger.
type Contract struct {
	Index  BucketIndex
	Ledger CreditLedger
}

type method struct {
	safe bool
	call func(c *Contract, s *State, args []stackitem.Item) stackitem.Item
}

var methods = map[string]method{
	"register":              {call: (*Contract).register},
	"registerBatch":         {call: (*Contract).registerBatch},
	"exists":                {safe: true, call: (*Contract).exists},
	"get":                   {safe: true, call: (*Contract).get},
	"mustGet":               {safe: true, call: (*Contract).mustGet},
	"getBatch":              {safe: true, call: (*Contract).getBatch},
	"mustGetBatch":          {safe: true, call: (*Contract).mustGetBatch},
	"getWithAuth":           {safe: true, call: (*Contract).getWithAuth},
	"getWithAuthBatch":      {safe: true, call: (*Contract).getWithAuthBatch},
	"bucket":                {safe: true, call: (*Contract).bucket},
	"totalCount":            {safe: true, call: (*Contract).totalCount},
	"depositCredit":         {call: (*Contract).depositCredit},
	"withdrawCredit":        {call: (*Contract).withdrawCredit},
	"creditOf":              {safe: true, call: (*Contract).creditOf},
	"deleteBuckets":         {call: (*Contract).deleteBuckets},
	"withdraw":              {call: (*Contract).withdraw},
	"increaseComputeBudget": {call: (*Contract).increaseComputeBudget},
	"noop":                  {safe: true, call: (*Contract).noop},
	"version":               {safe: true, call: (*Contract).version},
	"update":                {call: (*Contract).update},
	"destroy":               {call: (*Contract).destroy},
}

// New returns registry contract ready to be deployed.
func New() *Contract {
	return new(Contract)
}

// Deploy makes the deployer the contract owner. An optional boolean argument
// switches the contract to strict duplicates policy: registering an already
// registered identifier fails instead of being a no-op.
func (c *Contract) Deploy(rt interop.Runtime, args []stackitem.Item) {
	st := rt.Storage()

	common.SetOwner(rt, rt.Caller())
	common.PutInt(st, common.VersionKey, common.Version)
	common.PutFixed(st, totalKey, 0)
	common.PutFixed(st, creditsKey, 0)
	common.PutFixed(st, outstandingKey, 0)

	if len(args) > 0 && toBool(args[0]) {
		st.Put(strictKey, []byte{1})
	}

	rt.Log("registry contract initialized")
}

// Call implements interop.Contract.
func (c *Contract) Call(rt interop.Runtime, name string, args []stackitem.Item) stackitem.Item {
	m, ok := methods[name]
	if !ok {
		panic(ErrUnknownMethod + ": " + name)
	}

	if !m.safe && rt.Storage().Get(common.OwnerKey) == nil {
		panic(ErrDestroyed)
	}

	return m.call(c, newState(rt), args)
}

// IsSafe implements interop.Contract.
func (c *Contract) IsSafe(name string) (bool, bool) {
	m, ok := methods[name]
	return m.safe, ok
}

func (c *Contract) register(s *State, args []stackitem.Item) stackitem.Item {
	checkArgs(args, 1)
	id := toUint64(args[0])

	before := s.rt.StorageCost()
	c.Index.Register(s, id)
	c.Ledger.Settle(s, s.rt.Caller(), before, s.rt.StorageCost())

	return stackitem.Null{}
}

func (c *Contract) registerBatch(s *State, args []stackitem.Item) stackitem.Item {
	checkArgs(args, 1)
	ids := toUint64List(args[0])

	before := s.rt.StorageCost()
	c.Index.RegisterBatch(s, ids)
	c.Ledger.Settle(s, s.rt.Caller(), before, s.rt.StorageCost())

	return stackitem.Null{}
}

func (c *Contract) exists(s *State, args []stackitem.Item) stackitem.Item {
	checkArgs(args, 1)
	_, ok := c.Index.Resolve(s, toAddress(args[0]))
	return stackitem.NewBool(ok)
}

// get keeps zero result for missing addresses for compatibility with
// existing callers. Batch methods return Null instead.
func (c *Contract) get(s *State, args []stackitem.Item) stackitem.Item {
	checkArgs(args, 1)
	id, _ := c.Index.Resolve(s, toAddress(args[0]))
	return uintItem(id)
}

func (c *Contract) mustGet(s *State, args []stackitem.Item) stackitem.Item {
	checkArgs(args, 1)
	id, ok := c.Index.Resolve(s, toAddress(args[0]))
	if !ok {
		panic(ErrNotFound)
	}
	return uintItem(id)
}

func (c *Contract) getBatch(s *State, args []stackitem.Item) stackitem.Item {
	checkArgs(args, 1)
	addrs := toAddressList(args[0])

	res := make([]stackitem.Item, len(addrs))
	for i := range addrs {
		res[i] = optUintItem(c.Index.Resolve(s, addrs[i]))
	}

	return stackitem.NewArray(res)
}

func (c *Contract) mustGetBatch(s *State, args []stackitem.Item) stackitem.Item {
	checkArgs(args, 1)
	addrs := toAddressList(args[0])

	res := make([]stackitem.Item, len(addrs))
	for i := range addrs {
		id, ok := c.Index.Resolve(s, addrs[i])
		if !ok {
			panic(ErrNotFound + ": " + addrs[i].String())
		}
		res[i] = uintItem(id)
	}

	return stackitem.NewArray(res)
}

func (c *Contract) getWithAuth(s *State, args []stackitem.Item) stackitem.Item {
	checkArgs(args, 1)
	id, _, authID, _ := c.Index.ResolveWithAuth(s, toAddress(args[0]))
	return stackitem.NewArray([]stackitem.Item{uintItem(id), uintItem(authID)})
}

func (c *Contract) getWithAuthBatch(s *State, args []stackitem.Item) stackitem.Item {
	checkArgs(args, 1)
	addrs := toAddressList(args[0])

	res := make([]stackitem.Item, len(addrs))
	for i := range addrs {
		id, ok, authID, authOK := c.Index.ResolveWithAuth(s, addrs[i])
		res[i] = stackitem.NewArray([]stackitem.Item{optUintItem(id, ok), optUintItem(authID, authOK)})
	}

	return stackitem.NewArray(res)
}

func (c *Contract) bucket(s *State, args []stackitem.Item) stackitem.Item {
	checkArgs(args, 1)
	ids := c.Index.Bucket(s, toBucketKey(args[0]))

	res := make([]stackitem.Item, len(ids))
	for i := range ids {
		res[i] = uintItem(ids[i])
	}

	return stackitem.NewArray(res)
}

func (c *Contract) totalCount(s *State, _ []stackitem.Item) stackitem.Item {
	return uintItem(s.Total())
}

func (c *Contract) depositCredit(s *State, args []stackitem.Item) stackitem.Item {
	checkArgs(args, 1)
	return stackitem.NewBigInteger(big.NewInt(c.Ledger.Deposit(s, toAddress(args[0]))))
}

func (c *Contract) withdrawCredit(s *State, _ []stackitem.Item) stackitem.Item {
	return stackitem.NewBigInteger(big.NewInt(c.Ledger.Withdraw(s, s.rt.Caller())))
}

func (c *Contract) creditOf(s *State, args []stackitem.Item) stackitem.Item {
	checkArgs(args, 1)
	bal, _ := c.Ledger.Balance(s, toAddress(args[0]))
	return stackitem.NewBigInteger(big.NewInt(bal))
}

func (c *Contract) noop(*State, []stackitem.Item) stackitem.Item {
	return stackitem.Null{}
}

func (c *Contract) version(s *State, _ []stackitem.Item) stackitem.Item {
	return stackitem.NewBigInteger(big.NewInt(common.GetInt(s.st, common.VersionKey)))
}

func checkArgs(args []stackitem.Item, n int) {
	if len(args) != n {
		panic(ErrInvalidArgument + ": wrong number of arguments")
	}
}

func uintItem(v uint64) stackitem.Item {
	return stackitem.NewBigInteger(new(big.Int).SetUint64(v))
}

func optUintItem(v uint64, ok bool) stackitem.Item {
	if !ok {
		return stackitem.Null{}
	}
	return uintItem(v)
}

func toBool(item stackitem.Item) bool {
	b, err := item.TryBool()
	if err != nil {
		panic(ErrInvalidArgument + ": " + err.Error())
	}
	return b
}

func toInt64(item stackitem.Item) int64 {
	n, err := item.TryInteger()
	if err != nil || !n.IsInt64() {
		panic(ErrInvalidArgument + ": integer expected")
	}
	return n.Int64()
}

func toUint64(item stackitem.Item) uint64 {
	n, err := item.TryInteger()
	if err != nil || !n.IsUint64() {
		panic(ErrInvalidArgument + ": unsigned integer expected")
	}
	return n.Uint64()
}

func toAddress(item stackitem.Item) interop.Address {
	b, err := item.TryBytes()
	if err != nil {
		panic(ErrInvalidArgument + ": " + err.Error())
	}

	a, err := interop.AddressFromBytes(b)
	if err != nil {
		panic(ErrInvalidArgument + ": " + err.Error())
	}
	return a
}

func toBucketKey(item stackitem.Item) BucketKey {
	b, err := item.TryBytes()
	if err != nil || len(b) != BucketKeyLen {
		panic(ErrInvalidArgument + ": bucket key expected")
	}

	var k BucketKey
	copy(k[:], b)
	return k
}

func toArray(item stackitem.Item) []stackitem.Item {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		panic(ErrInvalidArgument + ": array expected")
	}
	return arr
}

func toUint64List(item stackitem.Item) []uint64 {
	arr := toArray(item)
	res := make([]uint64, len(arr))
	for i := range arr {
		res[i] = toUint64(arr[i])
	}
	return res
}

func toAddressList(item stackitem.Item) []interop.Address {
	arr := toArray(item)
	res := make([]interop.Address, len(arr))
	for i := range arr {
		res[i] = toAddress(arr[i])
	}
	return res
}

func toBucketKeyList(item stackitem.Item) []BucketKey {
	arr := toArray(item)
	res := make([]BucketKey, len(arr))
	for i := range arr {
		res[i] = toBucketKey(arr[i])
	}
	return res
}
