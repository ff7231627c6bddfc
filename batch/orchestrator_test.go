package batch_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/nspcc-dev/app-registry/batch"
	"github.com/nspcc-dev/app-registry/chain"
	"github.com/nspcc-dev/app-registry/interop"
	"github.com/nspcc-dev/app-registry/registry"
	"github.com/nspcc-dev/app-registry/tests"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// flakyActor fails first submissions.
type flakyActor struct {
	*chain.Actor
	failures atomic.Int32
}

func (a *flakyActor) Submit(ctx context.Context, g *chain.Group) (util.Uint256, error) {
	if a.failures.Add(-1) >= 0 {
		return util.Uint256{}, errors.New("connection reset")
	}
	return a.Actor.Submit(ctx, g)
}

func addresses(ids []uint64) []interop.Address {
	res := make([]interop.Address, len(ids))
	for i := range ids {
		res[i] = registry.DeriveAddress(ids[i])
	}
	return res
}

func TestOrchestrator_RegisterAndLookup(t *testing.T) {
	e := tests.NewEnv(t, false)
	ctx := context.Background()
	reg := prometheus.NewRegistry()

	o := batch.New(chain.NewActor(e.Chain, e.Owner), e.Hash, batch.Prm{
		Logger:     zaptest.NewLogger(t),
		Registerer: reg,
	})

	ids := seq(10_000, 100)

	txIDs, err := o.Register(ctx, ids, batch.Options{})
	require.NoError(t, err)
	require.NotEmpty(t, txIDs)

	registered, err := o.LookupIDs(ctx, append(seq(20_000, 3), ids...), batch.Options{Concurrency: 2})
	require.NoError(t, err)
	for _, id := range ids {
		require.True(t, registered[id], id)
	}
	for _, id := range seq(20_000, 3) {
		require.False(t, registered[id], id)
	}

	total, err := e.Reader().TotalCount(ctx)
	require.NoError(t, err)
	require.EqualValues(t, len(ids), total)

	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP app_registry_batch_ids_total Number of identifiers in processed register groups by outcome.
# TYPE app_registry_batch_ids_total counter
app_registry_batch_ids_total{outcome="success"} 100
# HELP app_registry_batch_passes_total Number of register passes.
# TYPE app_registry_batch_passes_total counter
app_registry_batch_passes_total 1
`), "app_registry_batch_ids_total", "app_registry_batch_passes_total"))

	t.Run("already registered", func(t *testing.T) {
		txIDs, err := o.Register(ctx, append(ids[:10:10], ids[:10]...), batch.Options{})
		require.NoError(t, err)
		require.Empty(t, txIDs)
	})

	t.Run("skip check", func(t *testing.T) {
		txIDs, err := o.Register(ctx, ids[:3], batch.Options{SkipCheck: true})
		require.NoError(t, err)
		require.NotEmpty(t, txIDs)

		total, err := e.Reader().TotalCount(ctx)
		require.NoError(t, err)
		require.EqualValues(t, len(ids), total)
	})
}

func TestOrchestrator_Scenarios(t *testing.T) {
	e := tests.NewEnv(t, false)
	ctx := context.Background()
	o := batch.New(chain.NewActor(e.Chain, e.Owner), e.Hash, batch.Prm{Logger: zaptest.NewLogger(t)})

	_, err := o.Register(ctx, []uint64{1002}, batch.Options{})
	require.NoError(t, err)

	res, err := o.Lookup(ctx, addresses([]uint64{1002, 1003}), batch.Options{})
	require.NoError(t, err)
	require.Equal(t, map[interop.Address]uint64{registry.DeriveAddress(1002): 1002}, res)

	ids := seq(1003, 7)
	_, err = o.Register(ctx, ids, batch.Options{})
	require.NoError(t, err)

	reversed := make([]uint64, len(ids))
	for i := range ids {
		reversed[len(ids)-1-i] = ids[i]
	}

	res, err = o.Lookup(ctx, addresses(reversed), batch.Options{})
	require.NoError(t, err)
	require.Len(t, res, len(ids))
	for _, id := range reversed {
		require.Equal(t, id, res[registry.DeriveAddress(id)])
	}
}

func TestOrchestrator_LookupMerge(t *testing.T) {
	e := tests.NewEnv(t, false)
	ctx := context.Background()
	reg := prometheus.NewRegistry()

	o := batch.New(chain.NewActor(e.Chain, e.Owner), e.Hash, batch.Prm{
		Logger:              zaptest.NewLogger(t),
		Registerer:          reg,
		AddrsPerLookupCall:  3,
		CallsPerLookupGroup: 2,
		Concurrency:         3,
	})

	a, b := tests.FindCollision(t, 1<<40)
	ids := append(seq(40_000, 20), a, b)

	_, err := o.Register(ctx, ids, batch.Options{SkipCheck: true})
	require.NoError(t, err)

	query := append(addresses(ids), addresses(seq(50_000, 5))...)
	res, err := o.Lookup(ctx, query, batch.Options{})
	require.NoError(t, err)
	require.Len(t, res, len(ids))
	for _, id := range ids {
		require.Equal(t, id, res[registry.DeriveAddress(id)])
	}

	// 27 addresses in groups of 6
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP app_registry_batch_groups_total Number of processed call groups by operation and outcome.
# TYPE app_registry_batch_groups_total counter
app_registry_batch_groups_total{op="lookup",outcome="success"} 5
app_registry_batch_groups_total{op="register",outcome="success"} 1
`), "app_registry_batch_groups_total"))
}

func TestOrchestrator_Retry(t *testing.T) {
	e := tests.NewEnv(t, false)
	ctx := context.Background()
	reg := prometheus.NewRegistry()

	actor := &flakyActor{Actor: chain.NewActor(e.Chain, e.Owner)}
	actor.failures.Store(2)

	o := batch.New(actor, e.Hash, batch.Prm{
		Logger:                zaptest.NewLogger(t),
		Registerer:            reg,
		IDsPerRegisterCall:    2,
		CallsPerRegisterGroup: 3,
	})

	ids := seq(60_000, 30)

	_, err := o.Register(ctx, ids, batch.Options{})
	require.NoError(t, err)

	registered, err := o.LookupIDs(ctx, ids, batch.Options{})
	require.NoError(t, err)
	for _, id := range ids {
		require.True(t, registered[id], id)
	}

	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP app_registry_batch_ids_total Number of identifiers in processed register groups by outcome.
# TYPE app_registry_batch_ids_total counter
app_registry_batch_ids_total{outcome="failure"} 12
app_registry_batch_ids_total{outcome="success"} 30
# HELP app_registry_batch_passes_total Number of register passes.
# TYPE app_registry_batch_passes_total counter
app_registry_batch_passes_total 2
`), "app_registry_batch_ids_total", "app_registry_batch_passes_total"))
}

func TestOrchestrator_PersistentFailure(t *testing.T) {
	e := tests.NewEnv(t, false)
	ctx := context.Background()
	reg := prometheus.NewRegistry()

	o := batch.New(chain.NewActor(e.Chain, e.NewAccount(t, 0)), e.Hash, batch.Prm{
		Logger:     zaptest.NewLogger(t),
		Registerer: reg,
	})

	ids := seq(70_000, 20)

	_, err := o.Register(ctx, ids, batch.Options{})
	require.ErrorIs(t, err, batch.ErrPersistentBatchFailure)

	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP app_registry_batch_passes_total Number of register passes.
# TYPE app_registry_batch_passes_total counter
app_registry_batch_passes_total 2
`), "app_registry_batch_passes_total"))

	total, err := e.Reader().TotalCount(ctx)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestOrchestrator_LowFunds(t *testing.T) {
	e := tests.NewEnv(t, false)
	ctx := context.Background()

	acc := e.NewAccountWithFunds(t, 400_000, 150_000)

	o := batch.New(chain.NewActor(e.Chain, acc), e.Hash, batch.Prm{Logger: zaptest.NewLogger(t)})

	_, err := o.Register(ctx, []uint64{4243}, batch.Options{SkipCheck: true})
	require.NoError(t, err)

	unfunded, err := chain.NewAccount()
	require.NoError(t, err)

	res, err := batch.New(chain.NewActor(e.Chain, unfunded), e.Hash, batch.Prm{}).
		Lookup(ctx, addresses([]uint64{4243, 4244}), batch.Options{})
	require.NoError(t, err)
	require.Equal(t, map[interop.Address]uint64{registry.DeriveAddress(4243): 4243}, res)
}

// cancellingActor cancels the context once the first group is confirmed.
type cancellingActor struct {
	*chain.Actor
	cancel context.CancelFunc
}

func (a *cancellingActor) AwaitConfirmation(ctx context.Context, id util.Uint256, maxRounds int) (*chain.Confirmation, error) {
	conf, err := a.Actor.AwaitConfirmation(ctx, id, maxRounds)
	a.cancel()
	return conf, err
}

func TestOrchestrator_Cancel(t *testing.T) {
	e := tests.NewEnv(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	o := batch.New(&cancellingActor{Actor: chain.NewActor(e.Chain, e.Owner), cancel: cancel}, e.Hash, batch.Prm{
		Logger:                zaptest.NewLogger(t),
		IDsPerRegisterCall:    1,
		CallsPerRegisterGroup: 1,
	})

	txIDs, err := o.Register(ctx, seq(80_000, 3), batch.Options{SkipCheck: true, Concurrency: 1})
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, txIDs, 1)

	total, err := e.Reader().TotalCount(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
}

func TestOrchestrator_Limits(t *testing.T) {
	e := tests.NewEnv(t, false)
	ctx := context.Background()

	o := batch.New(chain.NewActor(e.Chain, e.Owner), e.Hash, batch.Prm{
		CallsPerRegisterGroup: e.Chain.Config().MaxGroupSize + 1,
		CallsPerLookupGroup:   e.Chain.Config().MaxGroupSize + 1,
	})

	_, err := o.Register(ctx, []uint64{1}, batch.Options{SkipCheck: true})
	require.ErrorIs(t, err, batch.ErrGroupTooLarge)

	_, err = o.Lookup(ctx, addresses([]uint64{1}), batch.Options{})
	require.ErrorIs(t, err, batch.ErrGroupTooLarge)
}
