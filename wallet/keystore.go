package wallet

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"deplebs-mint-tui/errs"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ChainBackend is a Backend that can report its chain id. *ethclient.Client
// satisfies it.
type ChainBackend interface {
	Backend
	ChainID(ctx context.Context) (*big.Int, error)
}

// Selection is the answer to the wallet's account prompt.
type Selection struct {
	Account    common.Address
	Passphrase string
}

// KeystoreProvider is a Provider backed by an encrypted go-ethereum
// keystore directory. The account prompt is answered ahead of time with
// Preselect; an empty passphrase leaves the key locked, so the session can
// read but the wallet refuses to sign.
type KeystoreProvider struct {
	ks      *keystore.KeyStore
	backend ChainBackend

	mu      sync.Mutex
	pending *Selection
}

// NewKeystoreProvider opens the keystore in dir.
func NewKeystoreProvider(dir string, backend ChainBackend) *KeystoreProvider {
	ks := keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP)
	return NewKeystoreProviderFrom(ks, backend)
}

// NewKeystoreProviderFrom wraps an already opened keystore.
func NewKeystoreProviderFrom(ks *keystore.KeyStore, backend ChainBackend) *KeystoreProvider {
	return &KeystoreProvider{ks: ks, backend: backend}
}

// Accounts lists the addresses held in the keystore.
func (p *KeystoreProvider) Accounts() []common.Address {
	accs := p.ks.Accounts()
	out := make([]common.Address, 0, len(accs))
	for _, a := range accs {
		out = append(out, a.Address)
	}
	return out
}

// Preselect records the answer to the next account prompt.
func (p *KeystoreProvider) Preselect(sel Selection) {
	p.mu.Lock()
	p.pending = &sel
	p.mu.Unlock()
}

// RequestAccount consumes the pending selection and unlocks the key if a
// passphrase was given.
func (p *KeystoreProvider) RequestAccount(ctx context.Context) (common.Address, error) {
	p.mu.Lock()
	sel := p.pending
	p.pending = nil
	p.mu.Unlock()

	if sel == nil {
		return common.Address{}, errs.WithMessage(errs.ErrUserRejected, "connect", "no account selected")
	}
	if err := ctx.Err(); err != nil {
		return common.Address{}, errs.Wrap(errs.ErrUserRejected, "connect", err)
	}

	acct, err := p.ks.Find(accounts.Account{Address: sel.Account})
	if err != nil {
		return common.Address{}, errs.Wrap(errs.ErrUserRejected, "connect", err)
	}
	if sel.Passphrase != "" {
		if err := p.ks.Unlock(acct, sel.Passphrase); err != nil {
			return common.Address{}, errs.Wrap(errs.ErrUserRejected, "unlock", err)
		}
	}
	return acct.Address, nil
}

// ChainID reports the network the backend is connected to.
func (p *KeystoreProvider) ChainID(ctx context.Context) (*big.Int, error) {
	if p.backend == nil {
		return nil, errors.New("no RPC backend")
	}
	return p.backend.ChainID(ctx)
}

// Backend returns the node backend.
func (p *KeystoreProvider) Backend() Backend {
	if p.backend == nil {
		return nil
	}
	return p.backend
}

// Transactor returns signer options for account. A locked key is refused.
func (p *KeystoreProvider) Transactor(account common.Address, chainID *big.Int) (*bind.TransactOpts, error) {
	acct := accounts.Account{Address: account}
	if _, err := p.ks.SignHash(acct, crypto.Keccak256([]byte("deplebs-unlock-probe"))); err != nil {
		return nil, errs.WithMessage(errs.ErrUserRejected, "signer",
			"account is locked; reconnect with its passphrase to sign")
	}
	return bind.NewKeyStoreTransactorWithChainID(p.ks, acct, chainID)
}

// Release locks the account's key again.
func (p *KeystoreProvider) Release(account common.Address) {
	_ = p.ks.Lock(account)
}
