package registry

import (
	"github.com/nspcc-dev/app-registry/common"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// deleteBuckets removes buckets by their keys. The storage released is not
// refunded to anyone's credit, the owner withdraws it with withdraw.
func (c *Contract) deleteBuckets(s *State, args []stackitem.Item) stackitem.Item {
	common.CheckOwnerWitness(s.rt)
	checkArgs(args, 1)

	c.Index.Delete(s, toBucketKeyList(args[0]))

	return stackitem.Null{}
}

// withdraw pays the amount from the contract account to the owner. Funds
// reserved for storage and backing outstanding credit stay untouched.
func (c *Contract) withdraw(s *State, args []stackitem.Item) stackitem.Item {
	common.CheckOwnerWitness(s.rt)
	checkArgs(args, 1)

	amount := toInt64(args[0])
	if amount <= 0 {
		panic(ErrZeroAmount)
	}

	if free := s.rt.Balance() - s.rt.StorageCost() - s.Outstanding(); amount > free {
		panic(ErrFundsReserved)
	}

	s.rt.Transfer(s.rt.Caller(), amount)

	return stackitem.Null{}
}

// increaseComputeBudget issues n inner calls, each of them adds its budget to
// the group.
func (c *Contract) increaseComputeBudget(s *State, args []stackitem.Item) stackitem.Item {
	checkArgs(args, 1)

	n := toInt64(args[0])
	if n < 0 {
		panic(ErrInvalidArgument + ": negative number of calls")
	}

	for i := int64(0); i < n; i++ {
		s.rt.CallInner("noop")
	}

	return stackitem.Null{}
}

// update records new code version of the contract.
func (c *Contract) update(s *State, args []stackitem.Item) stackitem.Item {
	common.CheckOwnerWitness(s.rt)
	checkArgs(args, 1)

	to := toInt64(args[0])
	common.CheckVersion(common.GetInt(s.st, common.VersionKey), to)
	common.PutInt(s.st, common.VersionKey, to)

	s.rt.Log("registry contract updated")

	return stackitem.Null{}
}

// destroy wipes contract storage and pays everything above the account base
// reservation to the owner. Registry must be empty and have no credit accounts.
func (c *Contract) destroy(s *State, _ []stackitem.Item) stackitem.Item {
	common.CheckOwnerWitness(s.rt)

	credits, _ := common.GetFixed(s.st, creditsKey)
	if s.Total() != 0 || credits != 0 {
		panic(ErrNotEmpty)
	}

	for _, key := range [][]byte{totalKey, creditsKey, outstandingKey, strictKey, common.VersionKey, common.OwnerKey} {
		s.st.Delete(key)
	}

	if rest := s.rt.Balance() - s.rt.StorageCost(); rest > 0 {
		s.rt.Transfer(s.rt.Caller(), rest)
	}

	s.rt.Log("registry contract destroyed")

	return stackitem.Null{}
}
