package batch

import (
	"context"
	"fmt"

	"github.com/nspcc-dev/app-registry/chain"
	rpcregistry "github.com/nspcc-dev/app-registry/rpc/registry"
	"go.uber.org/zap"
)

// Negotiator provisions compute budget for call groups.
type Negotiator struct {
	contract *rpcregistry.Contract
	actor    rpcregistry.Actor
	log      *zap.Logger
}

// NewNegotiator returns Negotiator buying budget from the registry contract.
func NewNegotiator(actor rpcregistry.Actor, contract *rpcregistry.Contract, log *zap.Logger) *Negotiator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Negotiator{contract: contract, actor: actor, log: log}
}

// Negotiate measures compute cost of the calls and returns them unchanged if
// the group budget covers it. Otherwise the calls are returned with a budget
// call prepended, the second value is the number of inner calls it buys.
// A group which faults in simulation is reported as *chain.FaultError.
func (n *Negotiator) Negotiate(ctx context.Context, calls []chain.Call) ([]chain.Call, int, error) {
	cfg := n.actor.Config()

	if len(calls) == 0 || len(calls) > cfg.MaxGroupSize {
		return nil, 0, fmt.Errorf("%w: %d calls", ErrGroupTooLarge, len(calls))
	}

	res, err := n.actor.Simulate(ctx, chain.NewGroup(calls...), chain.SimulateOpts{
		AllowUnsignedCalls: true,
		ExtraBudget:        cfg.CallBudget * int64(cfg.MaxInnerCalls),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("simulate group: %w", err)
	}

	if err := res.Err(); err != nil {
		return nil, 0, err
	}

	available := cfg.CallBudget * int64(res.CallEquivalents)
	if res.ComputeConsumed <= available {
		return calls, 0, nil
	}

	var (
		shortfall = res.ComputeConsumed - available
		perCall   = cfg.CallBudget - cfg.InnerCallOverhead
		inner     = int((shortfall + perCall - 1) / perCall)
	)

	if len(calls)+1 > cfg.MaxGroupSize || inner > cfg.MaxInnerCalls {
		return nil, 0, fmt.Errorf("%w: %d calls need %d budget calls", ErrGroupTooLarge, len(calls), inner)
	}

	n.log.Debug("compute budget top-up",
		zap.Int64("consumed", res.ComputeConsumed),
		zap.Int64("available", available),
		zap.Int("inner calls", inner))

	return append([]chain.Call{n.contract.IncreaseComputeBudgetCall(inner)}, calls...), inner, nil
}
