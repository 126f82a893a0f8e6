package main

import (
	"fmt"
	"strings"

	"deplebs-mint-tui/errs"
	"deplebs-mint-tui/helpers"
	"deplebs-mint-tui/mint"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// -------------------- UPDATE --------------------

// appMsg reports whether msg is produced by the app itself. Those are
// handled even while the connect form has focus.
func appMsg(msg tea.Msg) bool {
	switch msg.(type) {
	case logInitMsg, rpcConnectedMsg, sessionStartedMsg, snapshotMsg, refreshedMsg,
		txDoneMsg, tokenURIMsg, detailsLoadedMsg, clipboardCopiedMsg, txCopiedMsg, clearClipboardMsg,
		spinner.TickMsg, tea.WindowSizeMsg:
		return true
	}
	return false
}

// Update implements tea.Model interface and handles all state transitions
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Connect form gets all input while open
	if m.connectForm != nil && !appMsg(msg) {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "ctrl+c":
				return m.quit()
			case "esc":
				m.connectForm = nil
				m.showErrorDialog(errs.WithMessage(errs.ErrUserRejected, "connect", "account prompt dismissed"))
				return m, nil
			}
		}

		form, cmd := m.connectForm.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.connectForm = f
		}
		switch m.connectForm.State {
		case huh.StateCompleted:
			return m, m.submitConnectForm()
		case huh.StateAborted:
			m.connectForm = nil
			m.showErrorDialog(errs.WithMessage(errs.ErrUserRejected, "connect", "account prompt dismissed"))
			return m, nil
		}
		return m, cmd
	}

	switch msg := msg.(type) {

	case logInitMsg:
		m.logReady = true
		if m.w > 0 {
			m.logViewport.Width = m.w - 6
		}
		m.logShown = -1
		m.updateLogViewport()
		m.addLog("info", "Logger enabled")
		return m, nil

	case rpcConnectedMsg:
		m.rpcConnecting = false
		if msg.err != nil {
			m.rpcConnected = false
			m.ethClient = nil
			m.showErrorDialog(errs.Wrap(errs.ErrRPCFailure, "rpc", msg.err))
			return m, nil
		}
		m.ethClient = msg.client
		m.rpcConnected = true
		m.chainID = msg.chainID.String()
		m.addLog("success", "Connected to RPC", "url", m.rpcURL, "chain", m.chainID)

		cmd := m.setupController(msg.client)
		if msg.chainID.Int64() != m.cfg.ChainID {
			m.showErrorDialog(errs.WithMessage(errs.ErrNetworkMismatch, "rpc",
				fmt.Sprintf("endpoint is on chain %s, the sale is on chain %d", m.chainID, m.cfg.ChainID)))
			return m, cmd
		}
		if len(m.provider.Accounts()) > 0 {
			m.openConnectForm()
		} else {
			m.addLog("warning", "No accounts found", "keystore", m.cfg.KeystoreDir)
		}
		return m, cmd

	case sessionStartedMsg:
		if msg.ctrl != m.ctrl {
			m.addLog("debug", "Dropped session from a replaced controller")
			return m, nil
		}
		m.connecting = false
		if msg.err != nil {
			m.showErrorDialog(msg.err)
			return m, nil
		}
		addr := msg.session.Address.Hex()
		m.addLog("success", "Wallet connected", "account", helpers.ShortenAddr(addr), "mode", msg.session.Level)
		m.cfg.MarkActive(addr)
		m.saveConfig()
		if m.ethClient == nil {
			return m, nil
		}
		m.loading = true
		return m, loadDetails(m.ethClient, msg.session.Address)

	case snapshotMsg:
		// the listener of a replaced controller ends here
		if msg.ctrl != m.ctrl {
			return m, nil
		}
		m.addLog("debug", "Sale state synced",
			"minted", fmt.Sprintf("%d/%d", msg.snap.MintedCount, msg.snap.Capacity),
			"started", msg.snap.SaleStarted())
		return m, waitForSnapshot(m.ctrl, m.ctrlDone)

	case refreshedMsg:
		if msg.ctrl == m.ctrl && msg.err != nil {
			m.showErrorDialog(msg.err)
		}
		return m, nil

	case txDoneMsg:
		m.pending = 0
		if msg.err != nil {
			m.showErrorDialog(msg.err)
			return m, nil
		}
		m.addLog("success", "Transaction confirmed", "op", msg.op, "tx", msg.conf.TxHash.Hex(), "block", msg.conf.Block)
		if !msg.conf.Synced {
			m.addLog("warning", "Sale state not refreshed after confirmation")
		}
		cmds := []tea.Cmd{m.showTxResult(msg.conf)}
		if s, ok := m.session(); ok && m.ethClient != nil {
			m.loading = true
			cmds = append(cmds, loadDetails(m.ethClient, s.Address))
		}
		return m, tea.Batch(cmds...)

	case tokenURIMsg:
		if !m.showTxResultPanel || m.txTokenID == nil || m.txTokenID.Cmp(msg.id) != 0 {
			return m, nil
		}
		if msg.err != nil {
			m.addLog("warning", "Could not read token URI", "token", msg.id, "err", msg.err)
			return m, nil
		}
		m.txTokenURI = msg.uri
		return m, nil

	case detailsLoadedMsg:
		m.loading = false
		m.details = msg.d
		if m.details.ErrMessage != "" {
			m.addLog("error", fmt.Sprintf("Account `%s`: %s", helpers.ShortenAddr(m.details.Address), m.details.ErrMessage))
		} else {
			m.addLog("debug", fmt.Sprintf("Loaded balance for `%s`: %s", helpers.ShortenAddr(m.details.Address), helpers.FormatETH(m.details.EthWei)))
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.w, m.h = msg.Width, msg.Height
		if m.logEnabled {
			m.logViewport.Width = max(0, m.w-6)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		var cmds []tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
		// Update log spinner too if log is enabled but not ready
		if m.logEnabled && !m.logReady {
			m.logSpinner, cmd = m.logSpinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		// Pick up lines logged by background work
		m.updateLogViewport()
		return m, tea.Batch(cmds...)

	case clipboardCopiedMsg:
		m.copiedMsg = "Copied!"
		return m, clearClipboardFeedback()

	case txCopiedMsg:
		m.txCopiedMsg = "✓ Copied to clipboard!"
		return m, clearClipboardFeedback()

	case clearClipboardMsg:
		m.copiedMsg = ""
		m.txCopiedMsg = ""
		return m, nil

	case tea.MouseMsg:
		if m.logEnabled && m.logReady {
			var cmd tea.Cmd
			m.logViewport, cmd = m.logViewport.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey routes a key press to the topmost overlay, then the globals
func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	// Error notification blocks everything else
	if m.showError {
		switch msg.String() {
		case "esc", "enter", " ":
			m.showError = false
			m.errTitle, m.errMessage, m.errSuggestion = "", "", ""
		}
		return m, nil
	}

	if m.showConfirm {
		switch msg.String() {
		case "left", "right", "tab":
			m.confirmYesSelected = !m.confirmYesSelected
			return m, nil
		case "y", "Y":
			return m, m.confirmAction(true)
		case "n", "N", "esc":
			return m, m.confirmAction(false)
		case "enter":
			return m, m.confirmAction(m.confirmYesSelected)
		}
		return m, nil
	}

	if m.showTxResultPanel {
		switch msg.String() {
		case "y", "c":
			m.addLog("info", "Copied transaction link to clipboard")
			return m, copyTxToClipboard(m.txPanelText())
		case "esc", "enter":
			m.showTxResultPanel = false
			m.txURL = ""
			m.txMetadata = ""
			m.txTokenID = nil
			m.txTokenURI = ""
			m.txCopiedMsg = ""
		}
		return m, nil
	}

	if m.showSettings {
		switch msg.String() {
		case "up", "k":
			if m.selectedRPCIdx > 0 {
				m.selectedRPCIdx--
			}
			return m, nil
		case "down", "j":
			if m.selectedRPCIdx < len(m.cfg.RPCURLs)-1 {
				m.selectedRPCIdx++
			}
			return m, nil
		case "enter":
			return m, m.activateRPC(m.selectedRPCIdx)
		case "esc":
			m.showSettings = false
			return m, nil
		}
	}

	// global keys
	switch msg.String() {
	case "q":
		return m.quit()

	case "l", "L":
		m.logEnabled = !m.logEnabled
		m.cfg.Logger = m.logEnabled
		m.saveConfig()
		if m.logEnabled {
			if m.w > 0 {
				m.logViewport.Width = m.w - 6
			}
			m.logReady = false
			return m, tea.Batch(initLogViewport(), m.logSpinner.Tick)
		}
		m.logBuffer.Reset()
		m.logShown = 0
		m.logReady = false
		return m, nil

	case "pageup", "pagedown":
		if m.logEnabled && m.logReady {
			var cmd tea.Cmd
			m.logViewport, cmd = m.logViewport.Update(msg)
			return m, cmd
		}
		return m, nil

	case "s", "S":
		m.showSettings = !m.showSettings
		return m, nil
	}

	if m.showSettings {
		return m, nil
	}

	switch msg.String() {
	case "c", "C":
		if m.state() == mint.StateDisconnected && !m.connecting {
			m.openConnectForm()
		}
		return m, nil

	case "enter", " ":
		m.requestAction()
		return m, nil

	case "r", "R":
		if m.ctrl == nil {
			m.showErrorDialog(errs.Wrap(errs.ErrNotConnected, "refresh", nil))
			return m, nil
		}
		m.addLog("debug", "Refreshing sale state")
		return m, refreshSale(m.ctrl)

	case "d", "D":
		m.disconnect()
		return m, nil

	case "y", "Y":
		if s, ok := m.session(); ok {
			m.addLog("info", "Copied address to clipboard", "address", helpers.ShortenAddr(s.Address.Hex()))
			return m, copyToClipboard(s.Address.Hex())
		}
		return m, nil
	}

	return m, nil
}

// activateRPC switches to the endpoint at idx and reconnects
func (m *model) activateRPC(idx int) tea.Cmd {
	if idx < 0 || idx >= len(m.cfg.RPCURLs) {
		return nil
	}
	if m.ctrl != nil && m.ctrl.Busy() {
		m.showErrorDialog(errs.WithMessage(errs.ErrBusy, "rpc", "wait for the pending transaction before switching endpoints"))
		return nil
	}
	for i := range m.cfg.RPCURLs {
		m.cfg.RPCURLs[i].Active = i == idx
	}
	m.saveConfig()

	m.teardownController()
	if m.ethClient != nil {
		m.ethClient.Close()
		m.ethClient = nil
	}
	m.rpcURL = m.cfg.RPCURLs[idx].URL
	m.rpcConnected = false
	m.rpcConnecting = true
	m.chainID = ""
	m.showSettings = false
	m.addLog("info", "Switching RPC endpoint", "name", m.cfg.RPCURLs[idx].Name, "url", strings.TrimSpace(m.rpcURL))
	return connectRPC(m.rpcURL)
}

// quit disconnects the wallet and leaves the program
func (m *model) quit() (tea.Model, tea.Cmd) {
	m.teardownController()
	if m.ethClient != nil {
		m.ethClient.Close()
	}
	return m, tea.Quit
}
