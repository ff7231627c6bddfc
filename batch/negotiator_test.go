package batch_test

import (
	"context"
	"testing"

	"github.com/nspcc-dev/app-registry/batch"
	"github.com/nspcc-dev/app-registry/chain"
	"github.com/nspcc-dev/app-registry/registry"
	rpcregistry "github.com/nspcc-dev/app-registry/rpc/registry"
	"github.com/nspcc-dev/app-registry/tests"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func seq(from uint64, n int) []uint64 {
	res := make([]uint64, n)
	for i := range res {
		res[i] = from + uint64(i)
	}
	return res
}

func TestNegotiator(t *testing.T) {
	e := tests.NewEnv(t, false)
	ctx := context.Background()
	actor := chain.NewActor(e.Chain, e.Owner)
	c := rpcregistry.New(actor, e.Hash)
	n := batch.NewNegotiator(actor, c, zaptest.NewLogger(t))

	t.Run("enough budget", func(t *testing.T) {
		calls := []chain.Call{c.RegisterCall(1002)}

		res, inner, err := n.Negotiate(ctx, calls)
		require.NoError(t, err)
		require.Zero(t, inner)
		require.Equal(t, calls, res)
	})

	t.Run("top-up", func(t *testing.T) {
		calls := []chain.Call{
			c.RegisterBatchCall(seq(2000, 7)),
			c.RegisterBatchCall(seq(3000, 7)),
		}

		_, err := c.Send(ctx, 1, calls...)
		require.ErrorContains(t, err, chain.ErrBudgetExceeded)

		res, inner, err := n.Negotiate(ctx, calls)
		require.NoError(t, err)
		require.Positive(t, inner)
		require.Len(t, res, len(calls)+1)
		require.Equal(t, "increaseComputeBudget", res[0].Method)
		require.Equal(t, e.Chain.Config().MinFee*int64(1+inner), res[0].Fee)
		require.Equal(t, calls, res[1:])

		conf, err := c.Send(ctx, 1, res...)
		require.NoError(t, err)
		require.Len(t, conf.TxIDs, len(res))

		total, err := c.TotalCount(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 14, total)
	})

	t.Run("fault", func(t *testing.T) {
		poorActor := chain.NewActor(e.Chain, e.NewAccount(t, 0))
		poor := rpcregistry.New(poorActor, e.Hash)
		np := batch.NewNegotiator(poorActor, poor, nil)

		_, _, err := np.Negotiate(ctx, []chain.Call{poor.RegisterCall(4000)})
		require.True(t, rpcregistry.IsKind(err, registry.ErrInsufficientCredit), err)

		_, _, err = n.Negotiate(ctx, []chain.Call{c.RegisterCall(4000), c.WithdrawCreditCall(), c.RegisterCall(4001)})
		require.True(t, rpcregistry.IsKind(err, registry.ErrInsufficientCredit), err)
	})

	t.Run("low funds", func(t *testing.T) {
		acc := e.NewAccountWithFunds(t, 400_000, 150_000)
		require.Less(t, e.Chain.BalanceOf(acc.Address), e.Chain.Config().MinFee*int64(e.Chain.Config().MaxInnerCalls))

		actor := chain.NewActor(e.Chain, acc)
		c := rpcregistry.New(actor, e.Hash)

		calls := []chain.Call{c.RegisterCall(4242)}

		res, inner, err := batch.NewNegotiator(actor, c, zaptest.NewLogger(t)).Negotiate(ctx, calls)
		require.NoError(t, err)
		require.Zero(t, inner)

		_, err = c.Send(ctx, 1, res...)
		require.NoError(t, err)

		ok, err := c.Exists(ctx, registry.DeriveAddress(4242))
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("too large", func(t *testing.T) {
		cfg := e.Chain.Config()

		calls := make([]chain.Call, cfg.MaxGroupSize+1)
		for i := range calls {
			calls[i] = c.RegisterCall(uint64(5000 + i))
		}
		_, _, err := n.Negotiate(ctx, calls)
		require.ErrorIs(t, err, batch.ErrGroupTooLarge)

		calls = make([]chain.Call, cfg.MaxGroupSize)
		for i := range calls {
			calls[i] = c.RegisterBatchCall(seq(uint64(6000+10*i), 7))
		}
		_, _, err = n.Negotiate(ctx, calls)
		require.ErrorIs(t, err, batch.ErrGroupTooLarge)
	})
}
