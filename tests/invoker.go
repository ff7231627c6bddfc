package tests

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/nspcc-dev/app-registry/chain"
	"github.com/nspcc-dev/app-registry/interop"
	"github.com/nspcc-dev/app-registry/registry"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

// ContractInvoker sends single-call groups to the contract and checks their
// results.
type ContractInvoker struct {
	chain  *chain.Chain
	hash   interop.Address
	signer *chain.Account
}

// WithSigner returns invoker signing with the account.
func (c *ContractInvoker) WithSigner(acc *chain.Account) *ContractInvoker {
	cp := *c
	cp.signer = acc
	return &cp
}

// Call returns call of the contract method from the signer.
func (c *ContractInvoker) Call(method string, args ...any) chain.Call {
	items := make([]stackitem.Item, len(args))
	for i := range args {
		items[i] = ToItem(args[i])
	}

	return chain.Call{
		Sender:   c.signer.Address,
		Contract: c.hash,
		Method:   method,
		Args:     items,
		Fee:      c.chain.Config().MinFee,
	}
}

// Send signs and applies the group of calls.
func (c *ContractInvoker) Send(t testing.TB, calls ...chain.Call) (*chain.Confirmation, error) {
	g := chain.NewGroup(calls...)
	require.NoError(t, g.Sign(c.signer))

	id, err := c.chain.Submit(context.Background(), g)
	require.NoError(t, err)

	return c.chain.AwaitConfirmation(context.Background(), id, 1)
}

// Invoke applies the method call and checks it returned the expected result.
// Nil result is not checked.
func (c *ContractInvoker) Invoke(t testing.TB, result any, method string, args ...any) *chain.Confirmation {
	conf, err := c.Send(t, c.Call(method, args...))
	require.NoError(t, err)

	if result != nil {
		RequireItem(t, ToItem(result), conf.Stack[0])
	}

	return conf
}

// InvokeFail applies the method call and checks it faulted with the message.
func (c *ContractInvoker) InvokeFail(t testing.TB, message string, method string, args ...any) {
	_, err := c.Send(t, c.Call(method, args...))
	RequireFault(t, err, message)
}

// RequireFault checks err is the group fault containing message.
func RequireFault(t testing.TB, err error, message string) {
	var fe *chain.FaultError
	require.ErrorAs(t, err, &fe)
	require.Contains(t, fe.Exception, message)
}

// RequireItem checks stack items are equal. Arrays are compared by value.
func RequireItem(t testing.TB, expected, actual stackitem.Item) {
	require.True(t, itemsEqual(expected, actual), "expected %s, got %s", dump(expected), dump(actual))
}

func itemsEqual(a, b stackitem.Item) bool {
	arrA, okA := a.Value().([]stackitem.Item)
	arrB, okB := b.Value().([]stackitem.Item)
	if okA || okB {
		if !okA || !okB || len(arrA) != len(arrB) {
			return false
		}
		for i := range arrA {
			if !itemsEqual(arrA[i], arrB[i]) {
				return false
			}
		}
		return true
	}

	return a.Equals(b)
}

func dump(item stackitem.Item) string {
	if arr, ok := item.Value().([]stackitem.Item); ok {
		s := "["
		for i := range arr {
			if i > 0 {
				s += " "
			}
			s += dump(arr[i])
		}
		return s + "]"
	}
	return fmt.Sprintf("%s(%v)", item.Type(), item.Value())
}

// ToItem converts test values into stack items.
func ToItem(v any) stackitem.Item {
	switch x := v.(type) {
	case stackitem.Item:
		return x
	case nil:
		return stackitem.Null{}
	case interop.Address:
		return stackitem.NewByteArray(x[:])
	case registry.BucketKey:
		return stackitem.NewByteArray(x[:])
	case uint64:
		return stackitem.NewBigInteger(new(big.Int).SetUint64(x))
	case int64:
		return stackitem.NewBigInteger(big.NewInt(x))
	case int:
		return stackitem.NewBigInteger(big.NewInt(int64(x)))
	case bool:
		return stackitem.NewBool(x)
	case []byte:
		return stackitem.NewByteArray(x)
	case []uint64:
		items := make([]stackitem.Item, len(x))
		for i := range x {
			items[i] = ToItem(x[i])
		}
		return stackitem.NewArray(items)
	case []interop.Address:
		items := make([]stackitem.Item, len(x))
		for i := range x {
			items[i] = ToItem(x[i])
		}
		return stackitem.NewArray(items)
	case []registry.BucketKey:
		items := make([]stackitem.Item, len(x))
		for i := range x {
			items[i] = ToItem(x[i])
		}
		return stackitem.NewArray(items)
	case []any:
		items := make([]stackitem.Item, len(x))
		for i := range x {
			items[i] = ToItem(x[i])
		}
		return stackitem.NewArray(items)
	}

	panic(fmt.Sprintf("unsupported test value %T", v))
}
