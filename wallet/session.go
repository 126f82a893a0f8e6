// Package wallet acquires wallet sessions, validates the network they are
// on and hands out read-only or signing capabilities.
package wallet

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// Level is the capability level of a session.
type Level int

// Capability levels.
const (
	LevelReadOnly Level = iota
	LevelSigning
)

func (l Level) String() string {
	switch l {
	case LevelSigning:
		return "signing"
	default:
		return "read-only"
	}
}

// Session is an acquired wallet connection.
type Session struct {
	Address common.Address
	ChainID *big.Int
	Level   Level
}

// Backend is what a connected node offers: contract calls, transaction
// submission and receipt lookups.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// Provider is the wallet the user interacts with. RequestAccount may show
// the wallet's own account selection; a refusal is reported as
// errs.ErrUserRejected.
type Provider interface {
	RequestAccount(ctx context.Context) (common.Address, error)
	ChainID(ctx context.Context) (*big.Int, error)
	Backend() Backend
	Transactor(account common.Address, chainID *big.Int) (*bind.TransactOpts, error)
}

// Releaser is implemented by providers that hold per-account state (such
// as an unlocked key) which must be dropped on disconnect.
type Releaser interface {
	Release(account common.Address)
}

// Capability is either a ReadOnly or a Signing handle.
type Capability interface {
	Session() Session
	Caller() bind.ContractCaller
	Level() Level
}

// ReadOnly permits contract queries only.
type ReadOnly struct {
	session Session
	caller  bind.ContractCaller
}

// Session returns the session the capability was derived from.
func (r ReadOnly) Session() Session { return r.session }

// Caller returns the backend used for eth_call.
func (r ReadOnly) Caller() bind.ContractCaller { return r.caller }

// Level returns LevelReadOnly.
func (r ReadOnly) Level() Level { return LevelReadOnly }

// Signing permits queries, transaction submission and receipt waits.
type Signing struct {
	ReadOnly
	backend Backend
	opts    *bind.TransactOpts
}

// Level returns LevelSigning.
func (s Signing) Level() Level { return LevelSigning }

// Session returns the session with its level set to signing.
func (s Signing) Session() Session {
	sess := s.session
	sess.Level = LevelSigning
	return sess
}

// Transactor returns the backend used to submit transactions.
func (s Signing) Transactor() bind.ContractTransactor { return s.backend }

// Receipts returns the backend used to wait for inclusion.
func (s Signing) Receipts() bind.DeployBackend { return s.backend }

// TransactOpts returns a fresh copy of the signer options bound to ctx.
func (s Signing) TransactOpts(ctx context.Context) *bind.TransactOpts {
	opts := *s.opts
	opts.Context = ctx
	return &opts
}
