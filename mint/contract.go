package mint

import (
	"context"
	"math/big"

	"deplebs-mint-tui/wallet"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ContractReader is the read side of the sale contract.
type ContractReader interface {
	Owner(ctx context.Context) (common.Address, error)
	PublicMintStarted(ctx context.Context) (bool, error)
	TokenIDs(ctx context.Context) (*big.Int, error)
	Minted(ctx context.Context, account common.Address) (bool, error)
}

// ContractWriter is the write side of the sale contract.
type ContractWriter interface {
	StartPublicMint(ctx context.Context) (*types.Transaction, error)
	Mint(ctx context.Context, value *big.Int) (*types.Transaction, error)
	Withdraw(ctx context.Context) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Binder attaches the contract to a wallet capability. Only a Signing
// capability yields a writer.
type Binder interface {
	Reader(c wallet.Capability) ContractReader
	Writer(c wallet.Signing) ContractWriter
}
