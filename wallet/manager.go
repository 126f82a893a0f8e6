package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"deplebs-mint-tui/errs"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
)

// Manager owns the current wallet session. The network id is re-read on
// every capability request, never cached.
type Manager struct {
	provider Provider
	target   *big.Int
	logger   *log.Logger

	mu      sync.RWMutex
	session *Session
}

// NewManager returns a manager that only accepts sessions on chain target.
func NewManager(provider Provider, target *big.Int, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		provider: provider,
		target:   new(big.Int).Set(target),
		logger:   logger.WithPrefix("wallet"),
	}
}

// Target returns the required chain id.
func (m *Manager) Target() *big.Int {
	return new(big.Int).Set(m.target)
}

// Connect asks the wallet for an account and stores the resulting session.
// A session on the wrong network is not stored.
func (m *Manager) Connect(ctx context.Context) (Session, error) {
	addr, err := m.provider.RequestAccount(ctx)
	if err != nil {
		if errs.KindOf(err) != "" {
			return Session{}, err
		}
		return Session{}, errs.Wrap(errs.ErrUserRejected, "connect", err)
	}

	chainID, err := m.checkNetwork(ctx, "connect")
	if err != nil {
		return Session{}, err
	}

	s := Session{Address: addr, ChainID: chainID, Level: LevelReadOnly}
	m.mu.Lock()
	m.session = &s
	m.mu.Unlock()

	m.logger.Info("connected", "address", addr.Hex(), "chain", chainID)
	return s, nil
}

// Session returns the current session, if any.
func (m *Manager) Session() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return Session{}, false
	}
	return *m.session, true
}

// Disconnect forgets the current session.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	s := m.session
	m.session = nil
	m.mu.Unlock()

	if s == nil {
		return
	}
	if r, ok := m.provider.(Releaser); ok {
		r.Release(s.Address)
	}
	m.logger.Info("disconnected", "address", s.Address.Hex())
}

// Capability returns a Signing handle when needSigning is set and a
// ReadOnly handle otherwise.
func (m *Manager) Capability(ctx context.Context, needSigning bool) (Capability, error) {
	if needSigning {
		return m.Signing(ctx)
	}
	return m.ReadOnly(ctx)
}

// ReadOnly validates the network and returns a query-only handle.
func (m *Manager) ReadOnly(ctx context.Context) (ReadOnly, error) {
	s, ok := m.Session()
	if !ok {
		return ReadOnly{}, errs.ErrNotConnected
	}
	if _, err := m.checkNetwork(ctx, "capability"); err != nil {
		return ReadOnly{}, err
	}
	return ReadOnly{session: s, caller: m.provider.Backend()}, nil
}

// Signing validates the network and returns a handle able to submit
// transactions. The wallet may still refuse to sign.
func (m *Manager) Signing(ctx context.Context) (Signing, error) {
	ro, err := m.ReadOnly(ctx)
	if err != nil {
		return Signing{}, err
	}
	s := ro.session
	opts, err := m.provider.Transactor(s.Address, s.ChainID)
	if err != nil {
		if errs.KindOf(err) != "" {
			return Signing{}, err
		}
		if IsRejection(err) {
			return Signing{}, errs.Wrap(errs.ErrUserRejected, "signer", err)
		}
		return Signing{}, errs.Wrap(errs.ErrRPCFailure, "signer", err)
	}
	return Signing{ReadOnly: ro, backend: m.provider.Backend(), opts: opts}, nil
}

func (m *Manager) checkNetwork(ctx context.Context, op string) (*big.Int, error) {
	id, err := m.provider.ChainID(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrRPCFailure, op, err)
	}
	if id == nil || id.Cmp(m.target) != 0 {
		m.logger.Warn("network mismatch", "got", id, "want", m.target)
		return nil, errs.WithMessage(errs.ErrNetworkMismatch, op,
			fmt.Sprintf("wallet is on chain %v, need chain %s", id, m.target))
	}
	return id, nil
}

// IsRejection reports whether err means the wallet refused to authorize.
func IsRejection(err error) bool {
	if err == nil {
		return false
	}
	if errs.KindOf(err) == errs.KindUserRejected {
		return true
	}
	var authNeeded *accounts.AuthNeededError
	if errors.As(err, &authNeeded) {
		return true
	}
	if errors.Is(err, keystore.ErrDecrypt) || errors.Is(err, keystore.ErrLocked) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "user rejected") || strings.Contains(msg, "user denied")
}
