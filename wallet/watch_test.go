package wallet

import (
	"context"
	"math/big"
	"testing"

	"deplebs-mint-tui/errs"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchProviderReadsButNeverSigns(t *testing.T) {
	addr := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	m := NewManager(NewWatchProvider(addr, chainOnly{id: big.NewInt(4)}), big.NewInt(4), quietLogger())

	s, err := m.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, addr, s.Address)

	ro, err := m.ReadOnly(context.Background())
	require.NoError(t, err)
	assert.Equal(t, LevelReadOnly, ro.Level())

	_, err = m.Signing(context.Background())
	assert.ErrorIs(t, err, errs.ErrUserRejected)
}

func TestWatchProviderWrongChain(t *testing.T) {
	m := NewManager(NewWatchProvider(common.Address{}, chainOnly{id: big.NewInt(1)}), big.NewInt(4), quietLogger())

	_, err := m.Connect(context.Background())
	assert.ErrorIs(t, err, errs.ErrNetworkMismatch)
}
