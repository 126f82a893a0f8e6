package main

import (
	"bytes"
	"encoding/json"
	"math/big"
	"path/filepath"
	"strings"
	"testing"

	"deplebs-mint-tui/config"
	"deplebs-mint-tui/errs"
	"deplebs-mint-tui/metadata"
	"deplebs-mint-tui/mint"
	"deplebs-mint-tui/rpc"
	"deplebs-mint-tui/wallet"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testContract = "0x3a6b8f4bd2d4e1f0c6c6b1c4f4b0a2d9e8c7b6a5"

func testModel(t *testing.T) *model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ContractAddress = testContract
	cfg.KeystoreDir = t.TempDir()
	m, err := newModel(cfg, filepath.Join(t.TempDir(), config.FileName))
	require.NoError(t, err)
	m.w, m.h = 120, 40
	t.Cleanup(m.teardownController)
	return &m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSyncBuffer(t *testing.T) {
	var b syncBuffer
	_, err := b.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, b.Len())
	assert.Equal(t, "hello", b.String())

	b.Reset()
	assert.Zero(t, b.Len())
}

func TestShowErrorDialog(t *testing.T) {
	m := testModel(t)
	m.showErrorDialog(errs.Wrap(errs.ErrNetworkMismatch, "connect", nil))

	assert.True(t, m.showError)
	assert.Equal(t, "Wrong Network", m.errTitle)
	assert.Equal(t, errs.SuggestionOf(errs.ErrNetworkMismatch), m.errSuggestion)

	_, _ = m.Update(key("enter"))
	assert.False(t, m.showError)
	assert.Empty(t, m.errMessage)
}

func TestConfirmDeclinedIsRejection(t *testing.T) {
	m := testModel(t)
	m.showConfirm = true
	m.confirmOp = mint.OpMint
	m.confirmYesSelected = true

	_, cmd := m.Update(key("esc"))
	assert.Nil(t, cmd)
	assert.False(t, m.showConfirm)
	assert.True(t, m.showError)
	assert.Equal(t, errs.Title(errs.ErrUserRejected), m.errTitle)
	assert.Equal(t, mint.Op(0), m.pending)
}

func TestConfirmToggle(t *testing.T) {
	m := testModel(t)
	m.showConfirm = true
	m.confirmOp = mint.OpWithdraw
	m.confirmYesSelected = true

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.False(t, m.confirmYesSelected)

	// enter on "No" declines
	_, _ = m.Update(key("enter"))
	assert.False(t, m.showConfirm)
	assert.Equal(t, "Request Rejected", m.errTitle)
}

func TestConnectWithoutRPC(t *testing.T) {
	m := testModel(t)

	_, _ = m.Update(key("c"))
	assert.Nil(t, m.connectForm)
	assert.True(t, m.showError)
	assert.Equal(t, "RPC Failure", m.errTitle)
}

func TestConnectWithEmptyKeystore(t *testing.T) {
	m := testModel(t)
	m.provider = wallet.NewKeystoreProvider(m.cfg.KeystoreDir, nil)

	m.requestAction()
	assert.Nil(t, m.connectForm)
	assert.Equal(t, "Request Rejected", m.errTitle)
	assert.Contains(t, m.errMessage, "no accounts in keystore")
}

func TestRefreshWithoutController(t *testing.T) {
	m := testModel(t)

	_, cmd := m.Update(key("r"))
	assert.Nil(t, cmd)
	assert.Equal(t, "Not Connected", m.errTitle)
}

func TestRPCFailure(t *testing.T) {
	m := testModel(t)
	m.rpcConnecting = true

	_, _ = m.Update(rpcConnectedMsg{err: assert.AnError})
	assert.False(t, m.rpcConnecting)
	assert.False(t, m.rpcConnected)
	assert.Equal(t, "RPC Failure", m.errTitle)
	assert.Nil(t, m.ctrl)
}

func TestRPCOnWrongChain(t *testing.T) {
	m := testModel(t)

	_, cmd := m.Update(rpcConnectedMsg{client: &rpc.Client{}, chainID: big.NewInt(1)})
	require.NotNil(t, cmd)
	require.NotNil(t, m.ctrl)
	assert.Equal(t, "1", m.chainID)
	assert.Equal(t, "Wrong Network", m.errTitle)
	assert.Nil(t, m.connectForm)
	assert.Equal(t, mint.StateDisconnected, m.state())
}

func TestTeardownStopsSnapshotListener(t *testing.T) {
	m := testModel(t)
	m.setupController(&rpc.Client{})
	listen := waitForSnapshot(m.ctrl, m.ctrlDone)

	m.teardownController()
	assert.Nil(t, listen())
	assert.Nil(t, m.ctrl)
}

func TestShowTxResultForMint(t *testing.T) {
	m := testModel(t)
	m.cfg.ChainID = 4
	conf := mint.Confirmation{
		Op:       mint.OpMint,
		TxHash:   common.HexToHash("0xabc"),
		Block:    big.NewInt(42),
		Snapshot: mint.Snapshot{MintedCount: 7, Capacity: 500},
		Synced:   true,
	}

	m.showTxResult(conf)
	require.True(t, m.showTxResultPanel)
	assert.True(t, strings.HasPrefix(m.txURL, "https://rinkeby.etherscan.io/tx/"))

	var doc metadata.Document
	require.NoError(t, json.Unmarshal([]byte(m.txMetadata), &doc))
	assert.Equal(t, "DePleb #7", doc.Name)

	text := m.txPanelText()
	assert.Contains(t, text, m.txURL)
	assert.Contains(t, text, "DePleb #7")
	assert.Contains(t, m.View(), "Mint confirmed")

	_, _ = m.Update(key("esc"))
	assert.False(t, m.showTxResultPanel)
}

func TestShowTxResultWithoutSync(t *testing.T) {
	m := testModel(t)
	m.showTxResult(mint.Confirmation{Op: mint.OpMint, Snapshot: mint.Snapshot{MintedCount: 7}})
	assert.Empty(t, m.txMetadata)
	assert.Equal(t, m.txURL, m.txPanelText())
}

func TestSettingsNavigation(t *testing.T) {
	m := testModel(t)
	m.cfg.RPCURLs = []config.RPCUrl{
		{Name: "a", URL: "http://a", Active: true},
		{Name: "b", URL: "http://b"},
	}

	_, _ = m.Update(key("s"))
	require.True(t, m.showSettings)
	assert.Contains(t, m.View(), "RPC Endpoints")

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.selectedRPCIdx)

	_, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.False(t, m.showSettings)
	assert.True(t, m.rpcConnecting)
	assert.Equal(t, "http://b", m.rpcURL)
	assert.False(t, m.cfg.RPCURLs[0].Active)
	assert.True(t, m.cfg.RPCURLs[1].Active)

	saved, err := config.Load(m.configPath)
	require.NoError(t, err)
	active, _ := saved.ActiveRPC()
	assert.Equal(t, "http://b", active.URL)
}

func TestViewDisconnected(t *testing.T) {
	m := testModel(t)
	v := m.View()
	assert.Contains(t, v, "Welcome to DePlebs!")
	assert.Contains(t, v, "Not connected")
}

func TestMetadataCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"metadata", "12", "--config", filepath.Join(t.TempDir(), config.FileName)})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	var doc metadata.Document
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "DePleb #12", doc.Name)
	assert.Equal(t, metadata.DefaultImageBase+"12.png", doc.Image)
}

func TestMetadataCommandRejectsBadID(t *testing.T) {
	rootCmd.SetArgs([]string{"metadata", "zero", "--config", filepath.Join(t.TempDir(), config.FileName)})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token id")
}

func TestTokenURIAfterMint(t *testing.T) {
	m := testModel(t)
	m.showTxResult(mint.Confirmation{
		Op:       mint.OpMint,
		TxHash:   common.HexToHash("0xabc"),
		Snapshot: mint.Snapshot{MintedCount: 7, Capacity: 500},
		Synced:   true,
	})
	require.NotNil(t, m.txTokenID)

	msg := loadTokenURI(testCaller(t, 500), m.txTokenID)()
	_, _ = m.Update(msg)
	assert.Equal(t, "https://deplebs.example/api/7", m.txTokenURI)
	assert.Contains(t, m.txPanelText(), m.txTokenURI)
	assert.Contains(t, m.View(), "Token URI")

	// an answer for another token is ignored
	_, _ = m.Update(tokenURIMsg{id: big.NewInt(3), uri: "https://deplebs.example/api/3"})
	assert.Equal(t, "https://deplebs.example/api/7", m.txTokenURI)

	_, _ = m.Update(key("esc"))
	assert.Empty(t, m.txTokenURI)
}

func TestStaleControllerMessagesDropped(t *testing.T) {
	m := testModel(t)
	m.setupController(&rpc.Client{})
	old := m.ctrl
	m.setupController(&rpc.Client{})
	require.NotSame(t, old, m.ctrl)
	m.connecting = true

	_, cmd := m.Update(sessionStartedMsg{ctrl: old, session: wallet.Session{Address: common.HexToAddress(testContract)}})
	assert.Nil(t, cmd)
	assert.True(t, m.connecting)
	assert.Empty(t, m.cfg.ActiveAccount())

	_, cmd = m.Update(snapshotMsg{ctrl: old})
	assert.Nil(t, cmd, "no second listener for a replaced controller")

	_, cmd = m.Update(snapshotMsg{ctrl: m.ctrl})
	assert.NotNil(t, cmd)

	_, _ = m.Update(refreshedMsg{ctrl: old, err: assert.AnError})
	assert.False(t, m.showError)
}

func TestDisconnectWhileConnectingRefused(t *testing.T) {
	m := testModel(t)
	m.setupController(&rpc.Client{})
	m.connecting = true

	_, _ = m.Update(key("d"))
	assert.True(t, m.showError)
	assert.Equal(t, errs.Title(errs.ErrBusy), m.errTitle)
	assert.True(t, m.connecting)
}
