package deploy

import (
	"context"
	"errors"
	"fmt"

	"github.com/nspcc-dev/app-registry/chain"
	"github.com/nspcc-dev/app-registry/common"
	"github.com/nspcc-dev/app-registry/interop"
	"github.com/nspcc-dev/app-registry/registry"
	rpcregistry "github.com/nspcc-dev/app-registry/rpc/registry"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"go.uber.org/zap"
)

// DefaultFunding is the default initial balance of the registry application
// account.
const DefaultFunding = 1_000_000

// DefaultConfirmationRounds is the default number of rounds to wait for the
// deployment transactions.
const DefaultConfirmationRounds = 10

// RegistryContractPrm groups deployment parameters of the registry contract.
type RegistryContractPrm struct {
	// Fail registration of already registered identifiers instead of
	// ignoring it.
	StrictDuplicates bool

	// Initial balance of the application account paid by the local account.
	// Defaults to DefaultFunding.
	Funding int64
}

// Prm groups all parameters of the registry deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Chain to deploy the registry to.
	Chain *chain.Chain

	// Local account deploying the contract. It becomes the contract owner.
	LocalAccount *chain.Account

	RegistryContract RegistryContractPrm

	// Credit deposited for the local account right after deployment. Zero
	// means no deposit.
	InitialCredit int64

	// Defaults to DefaultConfirmationRounds.
	ConfirmationRounds int
}

// Result describes deployed registry.
type Result struct {
	AppID   uint64
	Address interop.Address
}

// Deploy deploys the registry contract on behalf of the local account, funds
// its application account and optionally opens credit account of the local
// account.
func Deploy(ctx context.Context, prm Prm) (Result, error) {
	var res Result

	if prm.Logger == nil {
		prm.Logger = zap.NewNop()
	}
	if prm.Chain == nil {
		return res, errors.New("missing chain")
	}
	if prm.LocalAccount == nil {
		return res, errors.New("missing local account")
	}
	if prm.RegistryContract.Funding == 0 {
		prm.RegistryContract.Funding = DefaultFunding
	}
	if prm.ConfirmationRounds <= 0 {
		prm.ConfirmationRounds = DefaultConfirmationRounds
	}

	cfg := prm.Chain.Config()
	if prm.RegistryContract.Funding < cfg.MinBalance {
		return res, fmt.Errorf("funding %d is lower than the minimum account balance %d",
			prm.RegistryContract.Funding, cfg.MinBalance)
	}

	need := prm.RegistryContract.Funding + prm.InitialCredit + cfg.MinFee
	if bal := prm.Chain.BalanceOf(prm.LocalAccount.Address); bal < need {
		return res, fmt.Errorf("not enough funds on the local account %s: %d < %d",
			prm.LocalAccount.Address, bal, need)
	}

	prm.Logger.Info("deploying registry contract...",
		zap.Bool("strict duplicates", prm.RegistryContract.StrictDuplicates),
		zap.Int64("funding", prm.RegistryContract.Funding))

	var args []stackitem.Item
	if prm.RegistryContract.StrictDuplicates {
		args = append(args, stackitem.NewBool(true))
	}

	appID, addr, err := prm.Chain.Deploy(prm.LocalAccount, registry.New(), prm.RegistryContract.Funding, args...)
	if err != nil {
		return res, fmt.Errorf("deploy registry contract: %w", err)
	}

	res.AppID, res.Address = appID, addr

	prm.Logger.Info("registry contract successfully deployed",
		zap.Uint64("app id", appID), zap.Stringer("address", addr))

	c := rpcregistry.New(chain.NewActor(prm.Chain, prm.LocalAccount), addr)

	v, err := c.Version(ctx)
	if err != nil {
		return res, fmt.Errorf("read version of the deployed contract: %w", err)
	}
	if v != common.Version {
		return res, fmt.Errorf("unexpected version of the deployed contract: %d instead of %d", v, common.Version)
	}

	if prm.InitialCredit > 0 {
		prm.Logger.Info("depositing initial credit...", zap.Int64("amount", prm.InitialCredit))

		_, err = c.Send(ctx, prm.ConfirmationRounds, c.DepositCreditCall(prm.LocalAccount.Address, prm.InitialCredit))
		if err != nil {
			return res, fmt.Errorf("deposit initial credit: %w", err)
		}

		credit, err := c.CreditOf(ctx, prm.LocalAccount.Address)
		if err != nil {
			return res, fmt.Errorf("read initial credit: %w", err)
		}

		prm.Logger.Info("initial credit successfully deposited", zap.Int64("credit", credit))
	}

	return res, nil
}
