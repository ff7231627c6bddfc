package tests

import (
	"context"
	"testing"

	"github.com/nspcc-dev/app-registry/batch"
	"github.com/nspcc-dev/app-registry/chain"
	"github.com/nspcc-dev/app-registry/deploy"
	"github.com/nspcc-dev/app-registry/interop"
	rpcregistry "github.com/nspcc-dev/app-registry/rpc/registry"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Default fixture amounts.
const (
	AccountFunds  = 100_000_000
	OwnerCredit   = 5_000_000
	DefaultCredit = 1_000_000
)

// Env is a chain with deployed registry contract.
type Env struct {
	Chain *chain.Chain
	Owner *chain.Account
	AppID uint64
	Hash  interop.Address
}

// NewEnv creates new chain and deploys registry with the given duplicates
// policy. The owner gets OwnerCredit.
func NewEnv(t testing.TB, strict bool) *Env {
	return NewEnvWithConfig(t, chain.DefaultConfig(), strict)
}

// NewEnvWithConfig is NewEnv with custom chain parameters.
func NewEnvWithConfig(t testing.TB, cfg chain.Config, strict bool) *Env {
	c := chain.New(cfg, zaptest.NewLogger(t))

	owner, err := chain.NewAccount()
	require.NoError(t, err)
	c.Mint(owner.Address, AccountFunds)

	res, err := deploy.Deploy(context.Background(), deploy.Prm{
		Logger:           zaptest.NewLogger(t),
		Chain:            c,
		LocalAccount:     owner,
		RegistryContract: deploy.RegistryContractPrm{StrictDuplicates: strict},
		InitialCredit:    OwnerCredit,
	})
	require.NoError(t, err)

	return &Env{
		Chain: c,
		Owner: owner,
		AppID: res.AppID,
		Hash:  res.Address,
	}
}

// NewAccount returns new account holding AccountFunds. Non-zero credit is
// deposited for it.
func (e *Env) NewAccount(t testing.TB, credit int64) *chain.Account {
	return e.NewAccountWithFunds(t, AccountFunds, credit)
}

// NewAccountWithFunds is NewAccount with the given initial balance. The
// credit and the deposit fee are paid from it.
func (e *Env) NewAccountWithFunds(t testing.TB, funds, credit int64) *chain.Account {
	acc, err := chain.NewAccount()
	require.NoError(t, err)
	e.Chain.Mint(acc.Address, funds)

	if credit > 0 {
		c := e.Contract(acc)
		_, err = c.Send(context.Background(), 1, c.DepositCreditCall(acc.Address, credit))
		require.NoError(t, err)
	}

	return acc
}

// Contract returns registry client sending groups on behalf of the account.
func (e *Env) Contract(acc *chain.Account) *rpcregistry.Contract {
	return rpcregistry.New(chain.NewActor(e.Chain, acc), e.Hash)
}

// Reader returns registry client reading on behalf of the owner.
func (e *Env) Reader() *rpcregistry.ContractReader {
	return rpcregistry.NewReader(chain.NewInvoker(e.Chain, e.Owner.Address), e.Hash)
}

// OwnerInvoker returns ContractInvoker signing with the owner account.
func (e *Env) OwnerInvoker() *ContractInvoker {
	return e.Invoker(e.Owner)
}

// Invoker returns ContractInvoker signing with the account.
func (e *Env) Invoker(acc *chain.Account) *ContractInvoker {
	return &ContractInvoker{chain: e.Chain, hash: e.Hash, signer: acc}
}

// Send provisions compute budget for the calls, signs them with the account
// and applies the group.
func (e *Env) Send(t testing.TB, acc *chain.Account, calls ...chain.Call) (*chain.Confirmation, error) {
	ctx := context.Background()
	actor := chain.NewActor(e.Chain, acc)
	c := rpcregistry.New(actor, e.Hash)

	calls, _, err := batch.NewNegotiator(actor, c, zaptest.NewLogger(t)).Negotiate(ctx, calls)
	if err != nil {
		return nil, err
	}

	return c.Send(ctx, 1, calls...)
}
