package registry

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/nspcc-dev/app-registry/chain"
	contract "github.com/nspcc-dev/app-registry/registry"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

func TestLookupsFromItem(t *testing.T) {
	res, err := LookupsFromItem(stackitem.NewArray([]stackitem.Item{
		stackitem.NewBigInteger(big.NewInt(1002)),
		stackitem.Null{},
		stackitem.NewBigInteger(big.NewInt(0)),
	}))
	require.NoError(t, err)
	require.Equal(t, []Lookup{{ID: 1002, Found: true}, {}, {ID: 0, Found: true}}, res)

	t.Run("invalid", func(t *testing.T) {
		_, err := LookupsFromItem(stackitem.Null{})
		require.ErrorIs(t, err, errUnexpectedItem)

		_, err = LookupsFromItem(stackitem.NewArray([]stackitem.Item{
			stackitem.NewBigInteger(big.NewInt(-1)),
		}))
		require.ErrorIs(t, err, errUnexpectedItem)
	})
}

func TestErrorKind(t *testing.T) {
	fault := func(exc string) error {
		return fmt.Errorf("send: %w", &chain.FaultError{Exception: exc})
	}

	require.Equal(t, contract.ErrNotFound, ErrorKind(fault(contract.ErrNotFound+": 3mJr7AoUXx2Wqd")))
	require.True(t, IsKind(fault(contract.ErrInsufficientCredit), contract.ErrInsufficientCredit))
	require.True(t, IsKind(fault(contract.ErrUnauthorized), contract.ErrUnauthorized))
	require.False(t, IsKind(fault(chain.ErrBudgetExceeded), contract.ErrNotFound))
	require.Empty(t, ErrorKind(fault(chain.ErrBudgetExceeded)))
	require.Empty(t, ErrorKind(errors.New(contract.ErrNotFound)))
	require.False(t, IsKind(nil, ""))
}
