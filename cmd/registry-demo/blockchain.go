package main

import (
	"context"
	"fmt"

	"github.com/nspcc-dev/app-registry/chain"
	"github.com/nspcc-dev/app-registry/deploy"
	"github.com/nspcc-dev/app-registry/interop"
	rpcregistry "github.com/nspcc-dev/app-registry/rpc/registry"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	accountFunds  = 1_000_000_000
	initialCredit = 500_000_000
)

// in-memory chain with deployed registry and a funded account to work with.
type localBlockchain struct {
	log *zap.Logger

	chain    *chain.Chain
	actor    *chain.Actor
	registry interop.Address
}

func newLocalBlockchain(ctx context.Context, l *zap.Logger, cfg chain.Config, strict bool) (*localBlockchain, error) {
	c := chain.New(cfg, l.Named("chain"))

	acc, err := chain.NewAccount()
	if err != nil {
		return nil, fmt.Errorf("generate new account: %w", err)
	}

	c.Mint(acc.Address, accountFunds)

	res, err := deploy.Deploy(ctx, deploy.Prm{
		Logger:           l,
		Chain:            c,
		LocalAccount:     acc,
		RegistryContract: deploy.RegistryContractPrm{StrictDuplicates: strict},
		InitialCredit:    initialCredit,
	})
	if err != nil {
		return nil, fmt.Errorf("deploy registry: %w", err)
	}

	return &localBlockchain{
		log:      l,
		chain:    c,
		actor:    chain.NewActor(c, acc),
		registry: res.Address,
	}, nil
}

func (x *localBlockchain) report(ctx context.Context, reg *prometheus.Registry) error {
	r := rpcregistry.NewReader(x.actor, x.registry)

	total, err := r.TotalCount(ctx)
	if err != nil {
		return fmt.Errorf("read total number of identifiers: %w", err)
	}

	credit, err := r.CreditOf(ctx, x.actor.Sender())
	if err != nil {
		return fmt.Errorf("read credit: %w", err)
	}

	x.log.Info("registry state",
		zap.Uint64("total", total),
		zap.Int64("credit left", credit),
		zap.Int64("balance", x.chain.BalanceOf(x.registry)),
		zap.Int64("min balance", x.chain.StorageCostOf(x.registry)),
		zap.Int64("storage items", x.chain.StorageItems(x.registry)))

	mfs, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			fields := []zap.Field{zap.Float64("value", m.GetCounter().GetValue())}
			for _, lp := range m.GetLabel() {
				fields = append(fields, zap.String(lp.GetName(), lp.GetValue()))
			}
			x.log.Info(mf.GetName(), fields...)
		}
	}

	return nil
}
