// Package deplebs binds the DePlebs sale contract to wallet capabilities.
package deplebs

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"deplebs-mint-tui/mint"
	"deplebs-mint-tui/wallet"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Binder attaches the contract at a fixed address.
type Binder struct {
	address common.Address
	parsed  abi.ABI
}

// NewBinder parses the ABI for the contract at address.
func NewBinder(address common.Address) (*Binder, error) {
	parsed, err := abi.JSON(strings.NewReader(ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse DePlebs ABI: %w", err)
	}
	return &Binder{address: address, parsed: parsed}, nil
}

// Address returns the bound contract address.
func (b *Binder) Address() common.Address { return b.address }

// Reader returns a query-only binding for any capability.
func (b *Binder) Reader(c wallet.Capability) mint.ContractReader {
	return b.Caller(c.Caller())
}

// Writer returns a binding able to submit transactions.
func (b *Binder) Writer(s wallet.Signing) mint.ContractWriter {
	return &Transactor{
		Caller:  b.Caller(s.Caller()),
		signing: s,
		contract: bind.NewBoundContract(b.address, b.parsed,
			s.Caller(), s.Transactor(), nil),
	}
}

// Caller returns a query-only binding over caller.
func (b *Binder) Caller(caller bind.ContractCaller) *Caller {
	return &Caller{contract: bind.NewBoundContract(b.address, b.parsed, caller, nil, nil)}
}

// Caller performs eth_call against the contract.
type Caller struct {
	contract *bind.BoundContract
}

func (c *Caller) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: empty result", method)
	}
	return out, nil
}

func (c *Caller) Owner(ctx context.Context) (common.Address, error) {
	out, err := c.call(ctx, "owner")
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func (c *Caller) PublicMintStarted(ctx context.Context) (bool, error) {
	out, err := c.call(ctx, "publicMintStarted")
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (c *Caller) TokenIDs(ctx context.Context) (*big.Int, error) {
	out, err := c.call(ctx, "tokenIds")
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (c *Caller) Minted(ctx context.Context, account common.Address) (bool, error) {
	out, err := c.call(ctx, "minted", account)
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// MaxTokenIDs returns the capacity the contract enforces.
func (c *Caller) MaxTokenIDs(ctx context.Context) (*big.Int, error) {
	out, err := c.call(ctx, "maxTokenIds")
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// TokenURI returns the metadata URL of a minted token.
func (c *Caller) TokenURI(ctx context.Context, id *big.Int) (string, error) {
	out, err := c.call(ctx, "tokenURI", id)
	if err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

// Transactor submits contract transactions with a signing capability.
type Transactor struct {
	*Caller
	signing  wallet.Signing
	contract *bind.BoundContract
}

func (t *Transactor) StartPublicMint(ctx context.Context) (*types.Transaction, error) {
	return t.contract.Transact(t.signing.TransactOpts(ctx), "startPublicMint")
}

// Mint sends value with the mint call.
func (t *Transactor) Mint(ctx context.Context, value *big.Int) (*types.Transaction, error) {
	opts := t.signing.TransactOpts(ctx)
	opts.Value = value
	return t.contract.Transact(opts, "mint")
}

func (t *Transactor) Withdraw(ctx context.Context) (*types.Transaction, error) {
	return t.contract.Transact(t.signing.TransactOpts(ctx), "withdraw")
}

// WaitMined blocks until tx is included or ctx ends.
func (t *Transactor) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return bind.WaitMined(ctx, t.signing.Receipts(), tx)
}
