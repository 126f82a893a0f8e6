package main

import (
	"context"
	"math/big"
	"strings"
	"time"

	"deplebs-mint-tui/config"
	"deplebs-mint-tui/deplebs"
	"deplebs-mint-tui/errs"
	"deplebs-mint-tui/helpers"
	"deplebs-mint-tui/metadata"
	"deplebs-mint-tui/mint"
	"deplebs-mint-tui/rpc"
	"deplebs-mint-tui/views/home"
	"deplebs-mint-tui/wallet"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
)

// Timeouts for work started from the UI
const (
	connectTimeout = 30 * time.Second
	refreshTimeout = 15 * time.Second
	submitTimeout  = 10 * time.Minute
)

// -------------------- COMMAND FUNCTIONS --------------------
// Functions that return tea.Cmd for async operations

// connectRPC establishes an RPC connection to the Ethereum node
func connectRPC(url string) tea.Cmd {
	return func() tea.Msg {
		result := rpc.Connect(url)
		return rpcConnectedMsg{client: result.Client, chainID: result.ChainID, err: result.Error}
	}
}

// initLogViewport initializes the log viewport
func initLogViewport() tea.Cmd {
	return func() tea.Msg {
		return logInitMsg{}
	}
}

// startSession connects the wallet and starts syncing the sale
func startSession(ctrl *mint.Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		s, err := ctrl.Init(ctx)
		return sessionStartedMsg{ctrl: ctrl, session: s, err: err}
	}
}

// waitForSnapshot delivers the next snapshot the controller applies. It
// returns nil once done is closed.
func waitForSnapshot(ctrl *mint.Controller, done <-chan struct{}) tea.Cmd {
	updates := ctrl.Updates()
	return func() tea.Msg {
		select {
		case s := <-updates:
			return snapshotMsg{ctrl: ctrl, snap: s}
		case <-done:
			return nil
		}
	}
}

// refreshSale asks for an immediate poll
func refreshSale(ctrl *mint.Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		_, err := ctrl.Refresh(ctx)
		return refreshedMsg{ctrl: ctrl, err: err}
	}
}

// runSubmission executes a claimed submission
func runSubmission(sub *mint.Submission) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		conf, err := sub.Run(ctx)
		return txDoneMsg{op: sub.Op(), conf: conf, err: err}
	}
}

// loadDetails fetches the connected account's balance
func loadDetails(client *rpc.Client, addr common.Address) tea.Cmd {
	return func() tea.Msg {
		return detailsLoadedMsg{d: rpc.LoadAccountDetails(client, addr)}
	}
}

// loadTokenURI reads the metadata URL the contract reports for id
func loadTokenURI(caller *deplebs.Caller, id *big.Int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		uri, err := caller.TokenURI(ctx, id)
		return tokenURIMsg{id: id, uri: uri, err: err}
	}
}

// copyToClipboard copies text to clipboard
func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err == nil {
			return clipboardCopiedMsg{}
		}
		return nil
	}
}

// copyTxToClipboard copies the transaction panel text to clipboard
func copyTxToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err == nil {
			return txCopiedMsg{}
		}
		return nil
	}
}

// clearClipboardFeedback waits 2 seconds then clears clipboard feedback
func clearClipboardFeedback() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return clearClipboardMsg{}
	})
}

// -------------------- HELPER METHODS --------------------

// addLog writes a UI event to the log panel
func (m *model) addLog(logType, message string, keyvals ...interface{}) {
	if m.logger == nil {
		return
	}
	switch logType {
	case "success":
		m.logger.Info("✓ "+message, keyvals...)
	case "error":
		m.logger.Error(message, keyvals...)
	case "warning":
		m.logger.Warn(message, keyvals...)
	case "debug":
		m.logger.Debug(message, keyvals...)
	default:
		m.logger.Info(message, keyvals...)
	}
	m.updateLogViewport()
}

// updateLogViewport syncs the viewport with the log buffer when it grew
func (m *model) updateLogViewport() {
	if !m.logEnabled || !m.logReady || m.logBuffer == nil {
		return
	}
	n := m.logBuffer.Len()
	if n == m.logShown {
		return
	}
	m.logShown = n
	m.logViewport.SetContent(m.logBuffer.String())
	m.logViewport.GotoBottom()
}

// showErrorDialog fills the blocking notification for err
func (m *model) showErrorDialog(err error) {
	m.showError = true
	m.errTitle = errs.Title(err)
	m.errMessage = err.Error()
	m.errSuggestion = errs.SuggestionOf(err)
	m.addLog("error", m.errTitle, "err", err)
}

// openConnectForm opens the wallet's account prompt
func (m *model) openConnectForm() {
	if m.provider == nil {
		m.showErrorDialog(errs.WithMessage(errs.ErrRPCFailure, "connect", "RPC endpoint not connected"))
		return
	}
	addrs := m.provider.Accounts()
	if len(addrs) == 0 {
		m.showErrorDialog(errs.WithMessage(errs.ErrUserRejected, "connect", "no accounts in keystore "+m.cfg.KeystoreDir))
		return
	}
	accounts := make([]home.Account, 0, len(addrs))
	for _, a := range addrs {
		accounts = append(accounts, home.Account{Address: a.Hex(), Label: m.cfg.AccountLabel(a.Hex())})
	}
	m.connectForm = home.CreateForm(accounts, m.cfg.ActiveAccount())
}

// submitConnectForm hands the form answer to the wallet and connects
func (m *model) submitConnectForm() tea.Cmd {
	m.connectForm = nil
	if !helpers.IsValidEthAddress(home.TempAccount) {
		m.showErrorDialog(errs.WithMessage(errs.ErrUserRejected, "connect", "no account selected"))
		return nil
	}
	m.provider.Preselect(wallet.Selection{
		Account:    common.HexToAddress(home.TempAccount),
		Passphrase: home.TempPassphrase,
	})
	home.TempPassphrase = ""
	m.connecting = true
	m.addLog("info", "Connecting wallet", "account", helpers.ShortenAddr(home.TempAccount))
	return startSession(m.ctrl)
}

// setupController builds the wallet and controller for a fresh RPC client
func (m *model) setupController(client *rpc.Client) tea.Cmd {
	m.teardownController()

	m.provider = wallet.NewKeystoreProvider(m.cfg.KeystoreDir, client)
	conn := wallet.NewManager(m.provider, big.NewInt(m.cfg.ChainID), m.logger)
	m.ctrl = mint.NewController(m.saleCfg, conn, m.binder, m.logger)
	m.ctrlDone = make(chan struct{})
	return waitForSnapshot(m.ctrl, m.ctrlDone)
}

// teardownController disconnects and drops the current controller
func (m *model) teardownController() {
	if m.ctrl != nil {
		m.ctrl.Teardown()
		close(m.ctrlDone)
	}
	m.ctrl = nil
	m.ctrlDone = nil
	m.provider = nil
	m.connecting = false
	m.details = rpc.AccountDetails{}
}

// disconnect ends the wallet session but keeps the controller
func (m *model) disconnect() {
	if m.ctrl == nil {
		return
	}
	if m.ctrl.Busy() || m.connecting {
		m.showErrorDialog(errs.Wrap(errs.ErrBusy, "disconnect", nil))
		return
	}
	m.ctrl.Teardown()
	m.details = rpc.AccountDetails{}
	m.addLog("info", "Wallet disconnected")
}

// requestAction handles the primary key for the current state
func (m *model) requestAction() {
	state := m.state()
	action, op := state.Action()
	switch action {
	case mint.ActionConnect:
		if !m.connecting {
			m.openConnectForm()
		}
	case mint.ActionSubmit:
		m.showConfirm = true
		m.confirmOp = op
		m.confirmYesSelected = true
	default:
		m.addLog("debug", "No action available", "state", state)
	}
}

// confirmAction runs or declines the pending confirmation
func (m *model) confirmAction(approved bool) tea.Cmd {
	op := m.confirmOp
	m.showConfirm = false
	m.confirmOp = 0
	if !approved {
		m.showErrorDialog(errs.Wrap(errs.ErrUserRejected, op.String(), nil))
		return nil
	}
	if m.ctrl == nil {
		m.showErrorDialog(errs.Wrap(errs.ErrNotConnected, op.String(), nil))
		return nil
	}
	sub, err := m.ctrl.Begin(op)
	if err != nil {
		m.showErrorDialog(err)
		return nil
	}
	m.pending = op
	m.addLog("info", "Submitting", "op", op)
	return runSubmission(sub)
}

// showTxResult fills the transaction panel for a confirmation. For a mint
// it also asks the contract for the new token's URI.
func (m *model) showTxResult(conf mint.Confirmation) tea.Cmd {
	m.showTxResultPanel = true
	m.txResult = conf
	m.txURL = helpers.ExplorerTxURL(m.cfg.ChainID, conf.TxHash.Hex())
	m.txMetadata = ""
	m.txTokenID = nil
	m.txTokenURI = ""
	if conf.Op != mint.OpMint || !conf.Synced || conf.Snapshot.MintedCount == 0 {
		return nil
	}
	id := new(big.Int).SetUint64(conf.Snapshot.MintedCount)
	m.txTokenID = id
	if js, err := metadata.ForToken(id, m.cfg.MetadataImageURL).JSON(); err == nil {
		m.txMetadata = js
	}
	if m.ethClient == nil || m.ethClient.Client == nil {
		return nil
	}
	return loadTokenURI(m.binder.Caller(m.ethClient), id)
}

// txPanelText is what the transaction panel copies to the clipboard
func (m *model) txPanelText() string {
	parts := []string{m.txURL}
	if m.txTokenURI != "" {
		parts = append(parts, m.txTokenURI)
	}
	if m.txMetadata != "" {
		parts = append(parts, m.txMetadata)
	}
	return strings.Join(parts, "\n")
}

// saveConfig persists config changes made from the UI
func (m *model) saveConfig() {
	if m.configPath == "" {
		return
	}
	if err := config.Save(m.configPath, m.cfg); err != nil {
		m.addLog("warning", "Could not save config", "err", err)
	}
}
