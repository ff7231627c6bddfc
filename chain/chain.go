package chain

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/nspcc-dev/app-registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"go.uber.org/zap"
)

// FirstAppID is the identifier of the first deployed application.
const FirstAppID = 1001

// Chain is an in-memory substrate instance. It's safe for concurrent use.
type Chain struct {
	cfg Config
	log *zap.Logger

	mtx       sync.Mutex
	store     *storage.MemCachedStore
	contracts map[interop.Address]interop.Contract
	nextAppID uint64
	height    uint32

	pending []pendingGroup
	queued  map[util.Uint256]struct{}
	applied map[util.Uint256]appliedGroup
}

type pendingGroup struct {
	id    util.Uint256
	group *Group
}

type appliedGroup struct {
	conf *Confirmation
	err  error
}

// New returns empty chain with the given parameters.
func New(cfg Config, log *zap.Logger) *Chain {
	if log == nil {
		log = zap.NewNop()
	}

	return &Chain{
		cfg:       cfg,
		log:       log,
		store:     storage.NewMemCachedStore(storage.NewMemoryStore()),
		contracts: make(map[interop.Address]interop.Contract),
		nextAppID: FirstAppID,
		queued:    make(map[util.Uint256]struct{}),
		applied:   make(map[util.Uint256]appliedGroup),
	}
}

// Config returns chain parameters.
func (c *Chain) Config() Config {
	return c.cfg
}

// Height returns number of processed rounds.
func (c *Chain) Height() uint32 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.height
}

// Mint credits the account out of thin air.
func (c *Chain) Mint(addr interop.Address, amount int64) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	l := ledger{cfg: &c.cfg, store: c.store}
	l.setBalance(addr, l.balance(addr)+amount)
}

// BalanceOf returns account balance.
func (c *Chain) BalanceOf(addr interop.Address) int64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return ledger{cfg: &c.cfg, store: c.store}.balance(addr)
}

// StorageCostOf returns minimum balance of the account: the base minimum
// plus the reservation for every storage item the account owns.
func (c *Chain) StorageCostOf(addr interop.Address) int64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return ledger{cfg: &c.cfg, store: c.store}.storageCost(addr)
}

// StorageItems returns number of storage items owned by the account.
func (c *Chain) StorageItems(addr interop.Address) int64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return ledger{cfg: &c.cfg, store: c.store}.usage(addr).boxes
}

// SetAuthAddress delegates authority over addr to auth. Zero auth resets
// delegation.
func (c *Chain) SetAuthAddress(addr, auth interop.Address) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	ledger{cfg: &c.cfg, store: c.store}.setAuthAddress(addr, auth)
}

// Deploy creates application account funded by the deployer and runs
// contract initialization on it. Returns identifier and address of the
// application.
func (c *Chain) Deploy(deployer *Account, ctr interop.Contract, funding int64, args ...stackitem.Item) (uint64, interop.Address, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	appID := c.nextAppID
	addr := ApplicationAddress(appID)

	if _, ok := c.contracts[addr]; ok {
		return 0, addr, fmt.Errorf("application %d already exists", appID)
	}

	e := newExecution(c, math.MaxInt64)
	exc, ok := e.try(func() {
		e.transfer(deployer.Address, addr, funding)
		ctr.Deploy(&runtime{e: e, contract: addr, caller: deployer.Address}, args)
		e.checkMinBalances()
	})
	if !ok {
		return 0, addr, &FaultError{Exception: exc, Call: -1}
	}

	if err := c.persist(e); err != nil {
		return 0, addr, err
	}

	c.contracts[addr] = ctr
	c.nextAppID++

	c.log.Info("application deployed",
		zap.Uint64("app id", appID),
		zap.Stringer("address", addr))

	return appID, addr, nil
}

func (c *Chain) persist(e *execution) error {
	if _, err := e.store.Persist(); err != nil {
		return fmt.Errorf("persist execution: %w", err)
	}
	return nil
}

func (c *Chain) checkSize(g *Group) error {
	if len(g.Calls) == 0 || len(g.Calls) > c.cfg.MaxGroupSize {
		return fmt.Errorf("%w: %d calls, max %d", ErrGroupSize, len(g.Calls), c.cfg.MaxGroupSize)
	}
	return nil
}

func (c *Chain) execute(g *Group, extra int64, simulation bool) (*execution, *SimulateResult) {
	pool := c.cfg.CallBudget * int64(len(g.Calls))
	if extra > 0 {
		if extra > math.MaxInt64-pool {
			pool = math.MaxInt64
		} else {
			pool += extra
		}
	}

	e := newExecution(c, pool)
	e.calls = len(g.Calls)
	e.simulation = simulation

	return e, e.run(g)
}

// Simulate executes the group against current state without applying it.
// Fees are neither charged nor checked. Execution fault is reported in the
// result, not as an error.
func (c *Chain) Simulate(ctx context.Context, g *Group, opts SimulateOpts) (*SimulateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := c.checkSize(g); err != nil {
		return nil, err
	}

	if !opts.AllowUnsignedCalls {
		if err := g.verify(); err != nil {
			return nil, err
		}
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	_, res := c.execute(g, opts.ExtraBudget, true)

	return res, nil
}

// Submit verifies the group and puts it into the pool.
func (c *Chain) Submit(ctx context.Context, g *Group) (util.Uint256, error) {
	if err := ctx.Err(); err != nil {
		return util.Uint256{}, err
	}

	if err := c.checkSize(g); err != nil {
		return util.Uint256{}, err
	}

	if err := g.verify(); err != nil {
		return util.Uint256{}, err
	}

	id, err := g.Hash()
	if err != nil {
		return id, err
	}

	var fees int64
	for i := range g.Calls {
		fees += g.Calls[i].Fee
	}
	if need := c.cfg.MinFee * int64(len(g.Calls)); fees < need {
		return id, fmt.Errorf("%s: %d < %d", ErrFeeTooLow, fees, need)
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	_, queued := c.queued[id]
	_, applied := c.applied[id]
	if queued || applied {
		return id, fmt.Errorf("%w: %s", ErrAlreadyExists, id.StringLE())
	}

	c.queued[id] = struct{}{}
	c.pending = append(c.pending, pendingGroup{id: id, group: g})

	c.log.Debug("group submitted",
		zap.Stringer("id", id),
		zap.Int("calls", len(g.Calls)))

	return id, nil
}

// ProcessRound applies pending groups.
func (c *Chain) ProcessRound() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.processRound()
}

func (c *Chain) processRound() {
	c.height++

	n := len(c.pending)
	if c.cfg.MaxGroupsPerRound > 0 && n > c.cfg.MaxGroupsPerRound {
		n = c.cfg.MaxGroupsPerRound
	}

	for _, p := range c.pending[:n] {
		delete(c.queued, p.id)

		e, res := c.execute(p.group, 0, false)
		if res.State != HaltState {
			c.applied[p.id] = appliedGroup{err: res.Err()}
			c.log.Debug("group faulted",
				zap.Stringer("id", p.id),
				zap.Uint32("round", c.height),
				zap.Int("call", res.FaultCall),
				zap.String("exception", res.FaultException))
			continue
		}

		if err := c.persist(e); err != nil {
			c.applied[p.id] = appliedGroup{err: err}
			continue
		}

		txIDs := make([]util.Uint256, len(p.group.Calls))
		for i := range txIDs {
			txIDs[i] = CallID(p.id, i)
		}

		c.applied[p.id] = appliedGroup{conf: &Confirmation{
			ID:     p.id,
			Round:  c.height,
			TxIDs:  txIDs,
			Stack:  res.Stack,
			Result: res,
		}}

		c.log.Debug("group applied",
			zap.Stringer("id", p.id),
			zap.Uint32("round", c.height),
			zap.Int64("compute", res.ComputeConsumed))
	}

	c.pending = append(c.pending[:0], c.pending[n:]...)
}

// AwaitConfirmation waits for the submitted group to be applied during at
// most maxRounds rounds. Faulted groups are reported with *FaultError.
func (c *Chain) AwaitConfirmation(ctx context.Context, id util.Uint256, maxRounds int) (*Confirmation, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	for round := 0; ; round++ {
		if a, ok := c.applied[id]; ok {
			return a.conf, a.err
		}

		if _, ok := c.queued[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, id.StringLE())
		}

		if round >= maxRounds {
			return nil, fmt.Errorf("%w: %s after %d rounds", ErrConfirmationTimeout, id.StringLE(), maxRounds)
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c.processRound()
	}
}
