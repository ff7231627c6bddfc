package chain

import (
	"context"

	"github.com/nspcc-dev/app-registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Invoker simulates groups on behalf of the address. It doesn't need the key
// since simulations are allowed to skip signatures.
type Invoker struct {
	chain  *Chain
	sender interop.Address
}

// Actor sends groups to the chain on behalf of the account.
type Actor struct {
	Invoker
	acc *Account
}

// NewInvoker returns Invoker for the address.
func NewInvoker(c *Chain, sender interop.Address) *Invoker {
	return &Invoker{chain: c, sender: sender}
}

// NewActor returns Actor of the account.
func NewActor(c *Chain, acc *Account) *Actor {
	return &Actor{
		Invoker: Invoker{chain: c, sender: acc.Address},
		acc:     acc,
	}
}

// Sender returns address calls are made from.
func (i *Invoker) Sender() interop.Address {
	return i.sender
}

// Config returns chain parameters.
func (i *Invoker) Config() Config {
	return i.chain.Config()
}

// Simulate executes the group without applying it.
func (i *Invoker) Simulate(ctx context.Context, g *Group, opts SimulateOpts) (*SimulateResult, error) {
	return i.chain.Simulate(ctx, g, opts)
}

// Sign adds actor's witness to the group.
func (a *Actor) Sign(g *Group) error {
	return g.Sign(a.acc)
}

// Submit puts signed group into the pool.
func (a *Actor) Submit(ctx context.Context, g *Group) (util.Uint256, error) {
	return a.chain.Submit(ctx, g)
}

// AwaitConfirmation waits for the group application.
func (a *Actor) AwaitConfirmation(ctx context.Context, id util.Uint256, maxRounds int) (*Confirmation, error) {
	return a.chain.AwaitConfirmation(ctx, id, maxRounds)
}
