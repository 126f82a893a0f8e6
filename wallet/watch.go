package wallet

import (
	"context"
	"math/big"

	"deplebs-mint-tui/errs"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// WatchProvider observes the sale as a fixed address without holding a
// key. It never signs.
type WatchProvider struct {
	address common.Address
	backend ChainBackend
}

// NewWatchProvider returns a read-only provider for address. The zero
// address reads the sale without a caller.
func NewWatchProvider(address common.Address, backend ChainBackend) *WatchProvider {
	return &WatchProvider{address: address, backend: backend}
}

func (p *WatchProvider) RequestAccount(context.Context) (common.Address, error) {
	return p.address, nil
}

func (p *WatchProvider) ChainID(ctx context.Context) (*big.Int, error) {
	return p.backend.ChainID(ctx)
}

func (p *WatchProvider) Backend() Backend { return p.backend }

func (p *WatchProvider) Transactor(common.Address, *big.Int) (*bind.TransactOpts, error) {
	return nil, errs.WithMessage(errs.ErrUserRejected, "signer", "watch-only account cannot sign")
}
