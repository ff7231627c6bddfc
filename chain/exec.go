package chain

import (
	"fmt"
	"math"

	"github.com/nspcc-dev/app-registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"go.uber.org/zap"
)

// execution is a single atomic group execution over a cache layer of the
// chain store.
type execution struct {
	ledger
	contracts map[interop.Address]interop.Contract
	log       *zap.Logger

	pool     int64
	consumed int64
	calls    int
	inner    int

	// simulation neither charges fees nor checks the fee floor
	simulation bool

	// accounts which balance or storage changed
	touched map[interop.Address]struct{}
}

func newExecution(c *Chain, pool int64) *execution {
	return &execution{
		ledger: ledger{
			cfg:   &c.cfg,
			store: storage.NewMemCachedStore(c.store),
		},
		contracts: c.contracts,
		log:       c.log,
		pool:      pool,
		touched:   make(map[interop.Address]struct{}),
	}
}

// try runs f converting panics into fault exception.
func (e *execution) try(f func()) (exception string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case string:
				exception = v
			case error:
				exception = v.Error()
			default:
				exception = fmt.Sprint(v)
			}
			ok = false
		}
	}()

	f()

	return "", true
}

func (e *execution) consume(units int64) {
	if units < 0 {
		panic(ErrNegativeAmount)
	}
	e.consumed += units
	if e.consumed > e.pool {
		panic(ErrBudgetExceeded)
	}
}

func (e *execution) transfer(from, to interop.Address, amount int64) {
	if amount < 0 {
		panic(ErrNegativeAmount)
	}

	bal := e.balance(from)
	if bal < amount {
		panic(fmt.Sprintf("%s: %s has %d, needs %d", ErrInsufficientFunds, from, bal, amount))
	}

	e.setBalance(from, bal-amount)
	e.setBalance(to, e.balance(to)+amount)
	e.touch(from, to)
}

// burn removes fee from the sender.
func (e *execution) burn(from interop.Address, amount int64) {
	bal := e.balance(from)
	if bal < amount {
		panic(fmt.Sprintf("%s: %s can't pay fee %d", ErrInsufficientFunds, from, amount))
	}

	e.setBalance(from, bal-amount)
	e.touch(from)
}

func (e *execution) touch(addrs ...interop.Address) {
	for i := range addrs {
		e.touched[addrs[i]] = struct{}{}
	}
}

// checkMinBalances panics if some touched non-empty account holds less than
// its minimum balance.
func (e *execution) checkMinBalances() {
	for addr := range e.touched {
		bal := e.balance(addr)
		if bal == 0 && e.usage(addr).boxes == 0 {
			continue
		}

		if need := e.storageCost(addr); bal < need {
			panic(fmt.Sprintf("%s: %s has %d, needs %d", ErrBelowMinBalance, addr, bal, need))
		}
	}
}

// invoke executes top-level call.
func (e *execution) invoke(call *Call) stackitem.Item {
	ctr, ok := e.contracts[call.Contract]
	if !ok {
		panic(fmt.Sprintf("%s: %s", ErrContractNotFound, call.Contract))
	}

	safe, ok := ctr.IsSafe(call.Method)
	if !ok {
		panic(fmt.Sprintf("%s: %s", ErrMethodNotFound, call.Method))
	}

	rt := &runtime{
		e:        e,
		contract: call.Contract,
		caller:   call.Sender,
		readOnly: safe,
	}

	if call.Payment != nil {
		e.transfer(call.Sender, call.Payment.Receiver, call.Payment.Amount)
		rt.payment = &interop.Payment{
			Sender:   call.Sender,
			Receiver: call.Payment.Receiver,
			Amount:   call.Payment.Amount,
		}
	}

	e.consume(interop.PriceDispatch)

	return ctr.Call(rt, call.Method, call.Args)
}

// run executes the group calls in order.
func (e *execution) run(g *Group) *SimulateResult {
	res := &SimulateResult{FaultCall: -1}
	cur := -1

	exc, ok := e.try(func() {
		var fees int64
		for i := range g.Calls {
			if g.Calls[i].Fee < 0 {
				panic(ErrNegativeAmount)
			}
			if !e.simulation {
				e.burn(g.Calls[i].Sender, g.Calls[i].Fee)
			}
			fees += g.Calls[i].Fee
		}

		for i := range g.Calls {
			cur = i
			res.Stack = append(res.Stack, e.invoke(&g.Calls[i]))
		}
		cur = -1

		if need := e.cfg.MinFee * int64(e.calls+e.inner); !e.simulation && fees < need {
			panic(fmt.Sprintf("%s: %d < %d", ErrFeeTooLow, fees, need))
		}

		e.checkMinBalances()
	})

	res.ComputeConsumed = e.consumed
	res.CallEquivalents = e.calls + e.inner

	if ok {
		res.State = HaltState
	} else {
		res.State = FaultState
		res.FaultException = exc
		res.FaultCall = cur
	}

	return res
}

// runtime implements interop.Runtime for a single call.
type runtime struct {
	e        *execution
	contract interop.Address
	caller   interop.Address
	payment  *interop.Payment
	readOnly bool
	inner    bool
}

func (r *runtime) Storage() interop.Storage {
	return &contractStorage{e: r.e, owner: r.contract, readOnly: r.readOnly}
}

func (r *runtime) Self() interop.Address { return r.contract }

func (r *runtime) Caller() interop.Address { return r.caller }

func (r *runtime) Payment() (interop.Payment, bool) {
	if r.payment == nil {
		return interop.Payment{}, false
	}
	return *r.payment, true
}

func (r *runtime) Balance() int64 { return r.e.balance(r.contract) }

func (r *runtime) StorageCost() int64 { return r.e.storageCost(r.contract) }

func (r *runtime) Transfer(to interop.Address, amount int64) {
	if r.readOnly {
		panic(ErrReadOnly)
	}
	r.e.transfer(r.contract, to, amount)
}

func (r *runtime) Consume(units int64) { r.e.consume(units) }

func (r *runtime) CallInner(method string, args ...stackitem.Item) stackitem.Item {
	if r.inner {
		panic(ErrNestedInnerCall)
	}

	e := r.e
	if e.inner >= e.cfg.MaxInnerCalls {
		panic(ErrTooManyInnerCalls)
	}

	ctr := e.contracts[r.contract]

	safe, ok := ctr.IsSafe(method)
	if !ok {
		panic(fmt.Sprintf("%s: %s", ErrMethodNotFound, method))
	}

	e.inner++
	if e.pool < math.MaxInt64-e.cfg.CallBudget {
		e.pool += e.cfg.CallBudget
	}
	e.consume(e.cfg.InnerCallOverhead)

	return ctr.Call(&runtime{
		e:        e,
		contract: r.contract,
		caller:   r.contract,
		readOnly: r.readOnly || safe,
		inner:    true,
	}, method, args)
}

func (r *runtime) AuthAddress(addr interop.Address) interop.Address {
	r.e.consume(interop.PriceStorageRead)
	return r.e.authAddress(addr)
}

func (r *runtime) Log(msg string) {
	r.e.log.Debug("contract log",
		zap.Stringer("contract", r.contract),
		zap.String("message", msg))
}

// contractStorage is a metered storage view of a contract account. Items are
// accounted in the owner's usage.
type contractStorage struct {
	e        *execution
	owner    interop.Address
	readOnly bool
}

func (s *contractStorage) Get(key []byte) []byte {
	v := s.e.get(contractKey(s.owner, key))
	s.e.consume(interop.PriceStorageRead + interop.PricePerByte*int64(len(v)))
	return v
}

func (s *contractStorage) Put(key, value []byte) {
	if s.readOnly {
		panic(ErrReadOnly)
	}

	s.e.consume(interop.PriceStorageWrite + interop.PricePerByte*int64(len(key)+len(value)))

	k := contractKey(s.owner, key)
	old := s.e.get(k)
	u := s.e.usage(s.owner)

	if old == nil {
		u.boxes++
		u.bytes += int64(len(key) + len(value))
	} else {
		u.bytes += int64(len(value) - len(old))
	}

	s.e.setUsage(s.owner, u)
	s.e.store.Put(k, value)
	s.e.touch(s.owner)
}

func (s *contractStorage) Delete(key []byte) {
	if s.readOnly {
		panic(ErrReadOnly)
	}

	s.e.consume(interop.PriceStorageWrite)

	k := contractKey(s.owner, key)
	old := s.e.get(k)
	if old == nil {
		return
	}

	u := s.e.usage(s.owner)
	u.boxes--
	u.bytes -= int64(len(key) + len(old))

	s.e.setUsage(s.owner, u)
	s.e.store.Delete(k)
	s.e.touch(s.owner)
}
