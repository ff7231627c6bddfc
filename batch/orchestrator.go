package batch

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nspcc-dev/app-registry/chain"
	"github.com/nspcc-dev/app-registry/interop"
	contract "github.com/nspcc-dev/app-registry/registry"
	rpcregistry "github.com/nspcc-dev/app-registry/rpc/registry"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Orchestrator registers and resolves identifiers in bulk.
type Orchestrator struct {
	prm        Prm
	contract   *rpcregistry.Contract
	negotiator *Negotiator
	maxGroup   int
	metrics    *metrics
}

// New returns Orchestrator working with the registry contract on behalf of
// the actor.
func New(actor rpcregistry.Actor, hash interop.Address, prm Prm) *Orchestrator {
	prm.setDefaults()

	c := rpcregistry.New(actor, hash)

	return &Orchestrator{
		prm:        prm,
		contract:   c,
		negotiator: NewNegotiator(actor, c, prm.Logger),
		maxGroup:   actor.Config().MaxGroupSize,
		metrics:    newMetrics(prm.Registerer),
	}
}

func (o *Orchestrator) concurrency(opts Options) int {
	if opts.Concurrency > 0 {
		return opts.Concurrency
	}
	return o.prm.Concurrency
}

// Register registers identifiers and returns transaction ids of all applied
// groups. Failed groups are retried in passes. ErrPersistentBatchFailure is
// returned if a pass fails as many identifiers as the previous one or the
// number of passes exceeds the limit.
func (o *Orchestrator) Register(ctx context.Context, ids []uint64, opts Options) ([]util.Uint256, error) {
	if o.prm.CallsPerRegisterGroup > o.maxGroup {
		return nil, fmt.Errorf("%w: %d calls per group, chain allows %d",
			ErrGroupTooLarge, o.prm.CallsPerRegisterGroup, o.maxGroup)
	}

	log := o.prm.Logger.With(zap.Stringer("run", uuid.New()))

	pending := dedup(ids)
	if !opts.SkipCheck && len(pending) > 0 {
		registered, err := o.LookupIDs(ctx, pending, opts)
		if err != nil {
			return nil, fmt.Errorf("check registered identifiers: %w", err)
		}

		unregistered := pending[:0]
		for _, id := range pending {
			if !registered[id] {
				unregistered = append(unregistered, id)
			}
		}
		log.Debug("registered identifiers skipped",
			zap.Int("skipped", len(pending)-len(unregistered)))
		pending = unregistered
	}

	var (
		txIDs      []util.Uint256
		prevFailed = -1
	)

	for pass := 1; len(pending) > 0; pass++ {
		if pass > o.prm.MaxPasses {
			return txIDs, fmt.Errorf("%w: %d identifiers left after %d passes",
				ErrPersistentBatchFailure, len(pending), o.prm.MaxPasses)
		}

		o.metrics.passes.Inc()

		applied, failed, err := o.registerPass(ctx, pending, o.concurrency(opts))
		txIDs = append(txIDs, applied...)
		if err != nil {
			return txIDs, err
		}

		log.Info("register pass finished",
			zap.Int("pass", pass),
			zap.Int("ids", len(pending)),
			zap.Int("failed", len(failed)))

		if len(failed) > 0 && len(failed) == prevFailed {
			return txIDs, fmt.Errorf("%w: %d identifiers failed twice in a row at pass %d",
				ErrPersistentBatchFailure, len(failed), pass)
		}

		prevFailed = len(failed)
		pending = failed
	}

	return txIDs, nil
}

type groupResult struct {
	ids   []uint64
	txIDs []util.Uint256
	err   error
}

func (o *Orchestrator) registerPass(ctx context.Context, ids []uint64, concurrency int) ([]util.Uint256, []uint64, error) {
	var (
		groups  = groupChunks(ids, o.prm.IDsPerRegisterCall, o.prm.CallsPerRegisterGroup)
		results = make([]groupResult, len(groups))
		eg      errgroup.Group
	)

	eg.SetLimit(concurrency)

	for i := range groups {
		i := i
		eg.Go(func() error {
			results[i] = o.registerGroup(ctx, groups[i])
			return nil
		})
	}

	_ = eg.Wait()

	var (
		txIDs  []util.Uint256
		failed []uint64
	)

	if err := ctx.Err(); err != nil {
		for i := range results {
			txIDs = append(txIDs, results[i].txIDs...)
		}
		return txIDs, nil, err
	}

	for i := range results {
		if results[i].err != nil {
			o.prm.Logger.Warn("register group failed",
				zap.Int("group", i),
				zap.Int("ids", len(results[i].ids)),
				zap.Error(results[i].err))
			failed = append(failed, results[i].ids...)
			continue
		}
		txIDs = append(txIDs, results[i].txIDs...)
	}

	return txIDs, failed, nil
}

func (o *Orchestrator) registerGroup(ctx context.Context, chunks [][]uint64) (res groupResult) {
	for i := range chunks {
		res.ids = append(res.ids, chunks[i]...)
	}

	defer func() {
		o.metrics.groups.WithLabelValues(opRegister, outcome(res.err)).Inc()
		o.metrics.ids.WithLabelValues(outcome(res.err)).Add(float64(len(res.ids)))
	}()

	calls := make([]chain.Call, len(chunks))
	for i := range chunks {
		calls[i] = o.contract.RegisterBatchCall(chunks[i])
	}

	calls, inner, err := o.negotiator.Negotiate(ctx, calls)
	if err != nil {
		res.err = fmt.Errorf("negotiate budget: %w", err)
		return
	}

	if inner > 0 {
		o.metrics.topups.Inc()
	}

	conf, err := o.contract.Send(ctx, o.prm.ConfirmationRounds, calls...)
	if err != nil {
		res.err = err
		return
	}

	res.txIDs = conf.TxIDs

	return
}

// Lookup resolves addresses. Addresses without identifier are absent in the
// result.
func (o *Orchestrator) Lookup(ctx context.Context, addrs []interop.Address, opts Options) (map[interop.Address]uint64, error) {
	if o.prm.CallsPerLookupGroup > o.maxGroup {
		return nil, fmt.Errorf("%w: %d calls per group, chain allows %d",
			ErrGroupTooLarge, o.prm.CallsPerLookupGroup, o.maxGroup)
	}

	var (
		groups  = groupChunks(addrs, o.prm.AddrsPerLookupCall, o.prm.CallsPerLookupGroup)
		results = make([][]rpcregistry.Lookup, len(groups))
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(o.concurrency(opts))

	for i := range groups {
		i := i
		eg.Go(func() (err error) {
			defer func() {
				o.metrics.groups.WithLabelValues(opLookup, outcome(err)).Inc()
			}()

			results[i], err = o.lookupGroup(ctx, groups[i])
			if err != nil {
				return fmt.Errorf("lookup group #%d: %w", i, err)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res := make(map[interop.Address]uint64, len(addrs))
	for i := range groups {
		var k int
		for _, c := range groups[i] {
			for _, addr := range c {
				if results[i][k].Found {
					res[addr] = results[i][k].ID
				}
				k++
			}
		}
	}

	return res, nil
}

func (o *Orchestrator) lookupGroup(ctx context.Context, chunks [][]interop.Address) ([]rpcregistry.Lookup, error) {
	calls := make([]chain.Call, len(chunks))
	for i := range chunks {
		calls[i] = o.contract.GetBatchCall(chunks[i])
	}

	stack, err := o.contract.Simulate(ctx, calls...)
	if err != nil {
		return nil, err
	}

	var res []rpcregistry.Lookup
	for i := range stack {
		l, err := rpcregistry.LookupsFromItem(stack[i])
		if err != nil {
			return nil, fmt.Errorf("call #%d: %w", i, err)
		}
		if len(l) != len(chunks[i]) {
			return nil, fmt.Errorf("call #%d: %d results for %d addresses", i, len(l), len(chunks[i]))
		}
		res = append(res, l...)
	}

	return res, nil
}

// LookupIDs checks which identifiers are registered.
func (o *Orchestrator) LookupIDs(ctx context.Context, ids []uint64, opts Options) (map[uint64]bool, error) {
	addrs := make([]interop.Address, len(ids))
	for i := range ids {
		addrs[i] = contract.DeriveAddress(ids[i])
	}

	found, err := o.Lookup(ctx, addrs, opts)
	if err != nil {
		return nil, err
	}

	res := make(map[uint64]bool, len(ids))
	for i := range ids {
		id, ok := found[addrs[i]]
		res[ids[i]] = ok && id == ids[i]
	}

	return res, nil
}

func dedup(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	res := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			res = append(res, id)
		}
	}
	return res
}
