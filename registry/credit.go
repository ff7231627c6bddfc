package registry

import (
	"github.com/nspcc-dev/app-registry/common"
	"github.com/nspcc-dev/app-registry/interop"
)

// CreditLedger keeps prepaid credit of the accounts the contract stores data
// for. Balances are stored as fixed-size values, so balance changes never
// change contract storage cost.
type CreditLedger struct{}

// Balance returns credit of the owner. The second value is false if the owner
// has no credit account.
func (CreditLedger) Balance(s *State, owner interop.Address) (int64, bool) {
	v, ok := common.GetFixed(s.st, creditStorageKey(owner))
	return int64(v), ok
}

func (CreditLedger) put(s *State, owner interop.Address, v int64) {
	common.PutFixed(s.st, creditStorageKey(owner), uint64(v))
}

// Deposit credits the owner with the payment attached to the call. The first
// deposit creates the account and pays for its storage from the same amount.
func (x CreditLedger) Deposit(s *State, owner interop.Address) int64 {
	p, ok := s.rt.Payment()
	if !ok || p.Receiver != s.rt.Self() {
		panic(ErrReceiverMismatch)
	}
	if p.Amount <= 0 {
		panic(ErrZeroAmount)
	}

	bal, exists := x.Balance(s, owner)
	if exists {
		bal += p.Amount
		x.put(s, owner, bal)
		s.addOutstanding(p.Amount)
		return bal
	}

	before := s.rt.StorageCost()
	x.put(s, owner, p.Amount)
	s.addCredits(1)

	cost := s.rt.StorageCost() - before
	if cost > p.Amount {
		panic(ErrInsufficientCredit)
	}

	bal = p.Amount - cost
	x.put(s, owner, bal)
	s.addOutstanding(bal)

	return bal
}

// Withdraw deletes credit account of the owner and pays out its balance
// together with the refunded account storage cost.
func (x CreditLedger) Withdraw(s *State, owner interop.Address) int64 {
	bal, ok := x.Balance(s, owner)
	if !ok {
		panic(ErrNoAccount)
	}

	before := s.rt.StorageCost()
	s.st.Delete(creditStorageKey(owner))
	s.addCredits(-1)
	s.addOutstanding(-bal)

	total := bal + before - s.rt.StorageCost()
	if total > 0 {
		s.rt.Transfer(owner, total)
	}

	return total
}

// Settle charges the owner for storage cost growth between before and after
// or refunds the shrinkage.
func (x CreditLedger) Settle(s *State, owner interop.Address, before, after int64) {
	switch {
	case after > before:
		bal, ok := x.Balance(s, owner)
		if !ok || bal < after-before {
			panic(ErrInsufficientCredit)
		}
		x.put(s, owner, bal-(after-before))
		s.addOutstanding(before - after)
	case after < before:
		bal, ok := x.Balance(s, owner)
		if !ok {
			panic(ErrNoAccount)
		}
		x.put(s, owner, bal+before-after)
		s.addOutstanding(before - after)
	}
}
