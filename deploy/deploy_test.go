package deploy

import (
	"context"
	"testing"

	"github.com/nspcc-dev/app-registry/chain"
	"github.com/nspcc-dev/app-registry/registry"
	rpcregistry "github.com/nspcc-dev/app-registry/rpc/registry"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newLocalAccount(t *testing.T, c *chain.Chain, funds int64) *chain.Account {
	acc, err := chain.NewAccount()
	require.NoError(t, err)
	c.Mint(acc.Address, funds)
	return acc
}

func TestDeploy(t *testing.T) {
	ctx := context.Background()
	c := chain.New(chain.DefaultConfig(), zaptest.NewLogger(t))
	acc := newLocalAccount(t, c, 10_000_000)

	res, err := Deploy(ctx, Prm{
		Logger:        zaptest.NewLogger(t),
		Chain:         c,
		LocalAccount:  acc,
		InitialCredit: 500_000,
	})
	require.NoError(t, err)
	require.EqualValues(t, chain.FirstAppID, res.AppID)
	require.Equal(t, registry.DeriveAddress(res.AppID), res.Address)
	require.GreaterOrEqual(t, c.BalanceOf(res.Address), c.StorageCostOf(res.Address))

	reader := rpcregistry.NewReader(chain.NewInvoker(c, acc.Address), res.Address)

	credit, err := reader.CreditOf(ctx, acc.Address)
	require.NoError(t, err)
	require.Positive(t, credit)
	require.Less(t, credit, int64(500_000))

	total, err := reader.TotalCount(ctx)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestDeployStrict(t *testing.T) {
	ctx := context.Background()
	c := chain.New(chain.DefaultConfig(), zaptest.NewLogger(t))
	acc := newLocalAccount(t, c, 10_000_000)

	res, err := Deploy(ctx, Prm{
		Chain:            c,
		LocalAccount:     acc,
		RegistryContract: RegistryContractPrm{StrictDuplicates: true},
		InitialCredit:    500_000,
	})
	require.NoError(t, err)

	ctr := rpcregistry.New(chain.NewActor(c, acc), res.Address)

	_, err = ctr.Send(ctx, 1, ctr.RegisterCall(1002))
	require.NoError(t, err)

	_, err = ctr.Send(ctx, 1, ctr.RegisterBatchCall([]uint64{1003, 1002}))
	require.True(t, rpcregistry.IsKind(err, registry.ErrAlreadyRegistered), err)
}

func TestDeployValidation(t *testing.T) {
	ctx := context.Background()
	c := chain.New(chain.DefaultConfig(), zaptest.NewLogger(t))

	_, err := Deploy(ctx, Prm{Chain: c})
	require.Error(t, err)

	poor := newLocalAccount(t, c, DefaultFunding)
	_, err = Deploy(ctx, Prm{Chain: c, LocalAccount: poor})
	require.ErrorContains(t, err, "not enough funds")

	rich := newLocalAccount(t, c, 10_000_000)
	_, err = Deploy(ctx, Prm{
		Chain:            c,
		LocalAccount:     rich,
		RegistryContract: RegistryContractPrm{Funding: c.Config().MinBalance - 1},
	})
	require.ErrorContains(t, err, "minimum account balance")
}
