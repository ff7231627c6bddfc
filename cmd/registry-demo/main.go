package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/nspcc-dev/app-registry/batch"
	"github.com/nspcc-dev/app-registry/chain"
	"github.com/nspcc-dev/app-registry/interop"
	"github.com/nspcc-dev/app-registry/registry"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	nIDs := flag.Uint64("ids", 1000, "Number of identifiers to register")
	firstID := flag.Uint64("from", chain.FirstAppID+1, "First identifier to register")
	strict := flag.Bool("strict", false, "Deploy registry rejecting already registered identifiers")
	concurrency := flag.Int("concurrency", batch.DefaultConcurrency, "Number of groups processed in parallel")
	groupsPerRound := flag.Int("round", 0, "Maximum number of groups applied per round, 0 means unlimited")
	timeout := flag.Duration("timeout", time.Minute, "Overall timeout")
	debug := flag.Bool("debug", false, "Enable debug logs")

	flag.Parse()

	switch {
	case *nIDs == 0:
		log.Fatal("zero number of identifiers")
	case *concurrency <= 0:
		log.Fatal("non-positive concurrency")
	}

	logCfg := zap.NewProductionConfig()
	if *debug {
		logCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	l, err := logCfg.Build()
	if err != nil {
		log.Fatal(fmt.Errorf("init logger: %w", err))
	}

	defer func() { _ = l.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	cfg := chain.DefaultConfig()
	cfg.MaxGroupsPerRound = *groupsPerRound

	err = run(ctx, l, cfg, demoPrm{
		first:       *firstID,
		count:       *nIDs,
		strict:      *strict,
		concurrency: *concurrency,
	})
	if err != nil {
		l.Fatal("demo failed", zap.Error(err))
	}
}

type demoPrm struct {
	first, count uint64
	strict       bool
	concurrency  int
}

func run(ctx context.Context, l *zap.Logger, cfg chain.Config, prm demoPrm) error {
	b, err := newLocalBlockchain(ctx, l, cfg, prm.strict)
	if err != nil {
		return fmt.Errorf("init local blockchain: %w", err)
	}

	reg := prometheus.NewRegistry()

	o := batch.New(b.actor, b.registry, batch.Prm{
		Logger:      l,
		Registerer:  reg,
		Concurrency: prm.concurrency,
	})

	ids := make([]uint64, prm.count)
	for i := range ids {
		ids[i] = prm.first + uint64(i)
	}

	start := time.Now()

	txIDs, err := o.Register(ctx, ids, batch.Options{})
	if err != nil {
		return fmt.Errorf("register identifiers: %w", err)
	}

	l.Info("identifiers registered",
		zap.Int("ids", len(ids)),
		zap.Int("transactions", len(txIDs)),
		zap.Uint32("height", b.chain.Height()),
		zap.Duration("took", time.Since(start)))

	addrs := make([]interop.Address, len(ids))
	for i := range ids {
		addrs[i] = registry.DeriveAddress(ids[i])
	}

	start = time.Now()

	res, err := o.Lookup(ctx, addrs, batch.Options{})
	if err != nil {
		return fmt.Errorf("look up identifiers: %w", err)
	}

	for i := range ids {
		if id, ok := res[addrs[i]]; !ok || id != ids[i] {
			return fmt.Errorf("identifier %d is not resolved by its address %s", ids[i], addrs[i])
		}
	}

	l.Info("identifiers resolved",
		zap.Int("addresses", len(addrs)),
		zap.Duration("took", time.Since(start)))

	return b.report(ctx, reg)
}
