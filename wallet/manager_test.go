package wallet

import (
	"context"
	"errors"
	"io"
	"math/big"
	"sync"
	"testing"

	"deplebs-mint-tui/errs"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAccount = common.HexToAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")

type fakeProvider struct {
	mu         sync.Mutex
	account    common.Address
	requestErr error
	chainID    *big.Int
	chainErr   error
	chainReads int
	signerErr  error
	released   []common.Address
}

func (f *fakeProvider) RequestAccount(context.Context) (common.Address, error) {
	if f.requestErr != nil {
		return common.Address{}, f.requestErr
	}
	return f.account, nil
}

func (f *fakeProvider) ChainID(context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chainReads++
	if f.chainErr != nil {
		return nil, f.chainErr
	}
	return new(big.Int).Set(f.chainID), nil
}

func (f *fakeProvider) setChain(id int64) {
	f.mu.Lock()
	f.chainID = big.NewInt(id)
	f.mu.Unlock()
}

func (f *fakeProvider) reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chainReads
}

func (f *fakeProvider) Backend() Backend { return nil }

func (f *fakeProvider) Transactor(account common.Address, _ *big.Int) (*bind.TransactOpts, error) {
	if f.signerErr != nil {
		return nil, f.signerErr
	}
	return &bind.TransactOpts{From: account}, nil
}

func (f *fakeProvider) Release(account common.Address) {
	f.released = append(f.released, account)
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestManager(p *fakeProvider) *Manager {
	return NewManager(p, big.NewInt(4), quietLogger())
}

func TestConnectStoresSession(t *testing.T) {
	p := &fakeProvider{account: testAccount, chainID: big.NewInt(4)}
	m := newTestManager(p)

	s, err := m.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testAccount, s.Address)
	assert.Equal(t, LevelReadOnly, s.Level)
	assert.Equal(t, int64(4), s.ChainID.Int64())

	got, ok := m.Session()
	require.True(t, ok)
	assert.Equal(t, s, got)
}

func TestConnectRejected(t *testing.T) {
	p := &fakeProvider{requestErr: errors.New("user closed the prompt"), chainID: big.NewInt(4)}
	m := newTestManager(p)

	_, err := m.Connect(context.Background())
	require.ErrorIs(t, err, errs.ErrUserRejected)

	_, ok := m.Session()
	assert.False(t, ok)
}

func TestConnectWrongNetworkStoresNothing(t *testing.T) {
	p := &fakeProvider{account: testAccount, chainID: big.NewInt(1)}
	m := newTestManager(p)

	_, err := m.Connect(context.Background())
	require.ErrorIs(t, err, errs.ErrNetworkMismatch)

	_, ok := m.Session()
	assert.False(t, ok)

	target := m.Target()
	assert.Equal(t, int64(4), target.Int64())
	target.SetInt64(1)
	assert.Equal(t, int64(4), m.Target().Int64(), "target is returned by copy")
}

func TestCapabilityRereadsNetworkEveryCall(t *testing.T) {
	p := &fakeProvider{account: testAccount, chainID: big.NewInt(4)}
	m := newTestManager(p)
	_, err := m.Connect(context.Background())
	require.NoError(t, err)
	before := p.reads()

	for i := 0; i < 3; i++ {
		_, err := m.Capability(context.Background(), false)
		require.NoError(t, err)
	}
	assert.Equal(t, before+3, p.reads())
}

func TestCapabilityNetworkMismatchLeavesSession(t *testing.T) {
	p := &fakeProvider{account: testAccount, chainID: big.NewInt(4)}
	m := newTestManager(p)
	connected, err := m.Connect(context.Background())
	require.NoError(t, err)

	for _, chain := range []int64{1, 5, 11155111, 0} {
		p.setChain(chain)
		for _, needSigning := range []bool{false, true} {
			_, err := m.Capability(context.Background(), needSigning)
			require.ErrorIs(t, err, errs.ErrNetworkMismatch, "chain %d signing=%v", chain, needSigning)

			s, ok := m.Session()
			require.True(t, ok)
			assert.Equal(t, connected, s)
		}
	}

	p.setChain(4)
	_, err = m.Capability(context.Background(), true)
	require.NoError(t, err)
}

func TestCapabilityLevels(t *testing.T) {
	p := &fakeProvider{account: testAccount, chainID: big.NewInt(4)}
	m := newTestManager(p)
	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	ro, err := m.Capability(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, LevelReadOnly, ro.Level())
	_, isSigning := ro.(Signing)
	assert.False(t, isSigning)

	sc, err := m.Capability(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, LevelSigning, sc.Level())
	assert.Equal(t, LevelSigning, sc.Session().Level)

	signing, ok := sc.(Signing)
	require.True(t, ok)
	opts := signing.TransactOpts(context.Background())
	assert.Equal(t, testAccount, opts.From)
	assert.NotNil(t, opts.Context)

	stored, _ := m.Session()
	assert.Equal(t, LevelReadOnly, stored.Level)
}

func TestCapabilityNotConnected(t *testing.T) {
	m := newTestManager(&fakeProvider{chainID: big.NewInt(4)})

	_, err := m.ReadOnly(context.Background())
	require.ErrorIs(t, err, errs.ErrNotConnected)
	_, err = m.Signing(context.Background())
	require.ErrorIs(t, err, errs.ErrNotConnected)
}

func TestSigningRefusedByWallet(t *testing.T) {
	p := &fakeProvider{account: testAccount, chainID: big.NewInt(4), signerErr: keystore.ErrLocked}
	m := newTestManager(p)
	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	_, err = m.Signing(context.Background())
	require.ErrorIs(t, err, errs.ErrUserRejected)
}

func TestChainReadFailureIsRPCFailure(t *testing.T) {
	p := &fakeProvider{account: testAccount, chainID: big.NewInt(4)}
	m := newTestManager(p)
	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	p.chainErr = errors.New("timeout")
	_, err = m.ReadOnly(context.Background())
	require.ErrorIs(t, err, errs.ErrRPCFailure)
}

func TestDisconnectReleasesAccount(t *testing.T) {
	p := &fakeProvider{account: testAccount, chainID: big.NewInt(4)}
	m := newTestManager(p)
	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	m.Disconnect()
	_, ok := m.Session()
	assert.False(t, ok)
	assert.Equal(t, []common.Address{testAccount}, p.released)

	m.Disconnect()
	assert.Len(t, p.released, 1)
}

func TestIsRejection(t *testing.T) {
	assert.True(t, IsRejection(keystore.ErrLocked))
	assert.True(t, IsRejection(keystore.ErrDecrypt))
	assert.True(t, IsRejection(errors.New("MetaMask Tx Signature: User denied transaction signature.")))
	assert.True(t, IsRejection(errs.ErrUserRejected))
	assert.False(t, IsRejection(errors.New("insufficient funds")))
	assert.False(t, IsRejection(nil))
}
