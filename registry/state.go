package registry

import (
	"github.com/nspcc-dev/app-registry/common"
	"github.com/nspcc-dev/app-registry/interop"
)

// Storage layout.
const (
	bucketPrefix = 'b'
	creditPrefix = 'c'
)

var (
	totalKey   = []byte("total")
	creditsKey = []byte("credits")
	// sum of all credit balances
	outstandingKey = []byte("outstanding")
	strictKey      = []byte("strict")
)

// State is the registry storage aggregate bound to a single call. All index
// and ledger operations go through it.
type State struct {
	rt interop.Runtime
	st interop.Storage

	strict *bool
}

func newState(rt interop.Runtime) *State {
	return &State{rt: rt, st: rt.Storage()}
}

// derive returns address of id charging hashing price.
func (s *State) derive(id uint64) interop.Address {
	s.rt.Consume(interop.PriceHash)
	return DeriveAddress(id)
}

// match is FindMatch charging hashing price for every candidate.
func (s *State) match(target interop.Address, candidates []uint64) (uint64, bool) {
	s.rt.Consume(interop.PriceHash * int64(len(candidates)))
	return FindMatch(target, candidates)
}

// Total returns number of registered identifiers.
func (s *State) Total() uint64 {
	n, _ := common.GetFixed(s.st, totalKey)
	return n
}

func (s *State) addTotal(delta int64) {
	common.PutFixed(s.st, totalKey, uint64(int64(s.Total())+delta))
}

func (s *State) addCredits(delta int64) {
	n, _ := common.GetFixed(s.st, creditsKey)
	common.PutFixed(s.st, creditsKey, uint64(int64(n)+delta))
}

// Outstanding returns total credit of all accounts. Contract funds backing it
// can't be withdrawn by the owner.
func (s *State) Outstanding() int64 {
	n, _ := common.GetFixed(s.st, outstandingKey)
	return int64(n)
}

func (s *State) addOutstanding(delta int64) {
	if delta != 0 {
		common.PutFixed(s.st, outstandingKey, uint64(s.Outstanding()+delta))
	}
}

func (s *State) strictDuplicates() bool {
	if s.strict == nil {
		v := s.st.Get(strictKey) != nil
		s.strict = &v
	}
	return *s.strict
}

func bucketStorageKey(k BucketKey) []byte {
	return append([]byte{bucketPrefix}, k[:]...)
}

func creditStorageKey(owner interop.Address) []byte {
	return append([]byte{creditPrefix}, owner[:]...)
}
