package chain

import (
	"crypto/elliptic"
	"errors"
	"fmt"
	"math/rand"

	"github.com/nspcc-dev/app-registry/interop"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Payment is a value transfer attached to a call. It's made from the call
// sender before the method is executed.
type Payment struct {
	Receiver interop.Address
	Amount   int64
}

// Call is a single contract method invocation.
type Call struct {
	Sender   interop.Address
	Contract interop.Address
	Method   string
	Args     []stackitem.Item
	Payment  *Payment
	Fee      int64
}

// Witness proves the sender of calls signed the group.
type Witness struct {
	PublicKey []byte
	Signature []byte
}

// Group is a set of calls executed atomically in order. Nonce makes groups
// of the same calls distinct.
type Group struct {
	Nonce     uint32
	Calls     []Call
	Witnesses []Witness
}

var (
	// ErrMissingWitness is returned for groups not signed by some sender.
	ErrMissingWitness = errors.New("missing witness")
	// ErrInvalidWitness is returned for groups with invalid signatures.
	ErrInvalidWitness = errors.New("invalid witness")
)

// NewGroup returns unsigned group of the given calls with random nonce.
func NewGroup(calls ...Call) *Group {
	return &Group{Nonce: rand.Uint32(), Calls: calls}
}

func (c *Call) encode(w *io.BinWriter) {
	w.WriteBytes(c.Sender[:])
	w.WriteBytes(c.Contract[:])
	w.WriteString(c.Method)

	w.WriteVarUint(uint64(len(c.Args)))
	for i := range c.Args {
		data, err := stackitem.Serialize(c.Args[i])
		if err != nil {
			w.Err = fmt.Errorf("argument #%d: %w", i, err)
			return
		}
		w.WriteVarBytes(data)
	}

	w.WriteBool(c.Payment != nil)
	if c.Payment != nil {
		w.WriteBytes(c.Payment.Receiver[:])
		w.WriteU64LE(uint64(c.Payment.Amount))
	}

	w.WriteU64LE(uint64(c.Fee))
}

// Hash returns group identifier. Witnesses are not hashed.
func (g *Group) Hash() (util.Uint256, error) {
	w := io.NewBufBinWriter()

	w.WriteU32LE(g.Nonce)
	w.WriteVarUint(uint64(len(g.Calls)))
	for i := range g.Calls {
		g.Calls[i].encode(w.BinWriter)
	}

	if w.Err != nil {
		return util.Uint256{}, fmt.Errorf("encode group: %w", w.Err)
	}

	return hash.Sha256(w.Bytes()), nil
}

// CallID returns identifier of the i-th call of the group.
func CallID(group util.Uint256, i int) util.Uint256 {
	w := io.NewBufBinWriter()
	w.WriteBytes(group.BytesBE())
	w.WriteU32LE(uint32(i))

	return hash.Sha256(w.Bytes())
}

// Sign adds witness of the account to the group. Calls must not be changed
// after signing.
func (g *Group) Sign(acc *Account) error {
	h, err := g.Hash()
	if err != nil {
		return err
	}

	g.Witnesses = append(g.Witnesses, Witness{
		PublicKey: acc.PublicKey().Bytes(),
		Signature: acc.key.Sign(h.BytesBE()),
	})

	return nil
}

// Senders returns distinct senders of the group calls in order of appearance.
func (g *Group) Senders() []interop.Address {
	var (
		res  []interop.Address
		seen = make(map[interop.Address]struct{}, len(g.Calls))
	)

	for i := range g.Calls {
		if _, ok := seen[g.Calls[i].Sender]; !ok {
			seen[g.Calls[i].Sender] = struct{}{}
			res = append(res, g.Calls[i].Sender)
		}
	}

	return res
}

// verify checks that every sender signed the group.
func (g *Group) verify() error {
	h, err := g.Hash()
	if err != nil {
		return err
	}

	digest := hash.Sha256(h.BytesBE()).BytesBE()
	signed := make(map[interop.Address]struct{}, len(g.Witnesses))

	for i := range g.Witnesses {
		pub, err := keys.NewPublicKeyFromBytes(g.Witnesses[i].PublicKey, elliptic.P256())
		if err != nil {
			return fmt.Errorf("%w: witness #%d: %v", ErrInvalidWitness, i, err)
		}

		if !pub.Verify(g.Witnesses[i].Signature, digest) {
			return fmt.Errorf("%w: witness #%d: wrong signature", ErrInvalidWitness, i)
		}

		signed[KeyAddress(pub)] = struct{}{}
	}

	for _, s := range g.Senders() {
		if _, ok := signed[s]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingWitness, s)
		}
	}

	return nil
}
