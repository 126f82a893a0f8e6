package main

import (
	"fmt"
	"strings"

	"deplebs-mint-tui/helpers"
	"deplebs-mint-tui/mint"
	"deplebs-mint-tui/styles"
	"deplebs-mint-tui/views/details"
	"deplebs-mint-tui/views/home"
	logview "deplebs-mint-tui/views/log"
	"deplebs-mint-tui/views/settings"

	"github.com/charmbracelet/lipgloss"
)

// -------------------- VIEW --------------------

var (
	dialogBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 2).
			BorderTop(true).
			BorderLeft(true).
			BorderRight(true).
			BorderBottom(true)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF7DB")).
			Background(lipgloss.Color("#888B7E")).
			Padding(0, 3).
			MarginTop(1)

	activeButtonStyle = buttonStyle.
				Foreground(lipgloss.Color("#FFF7DB")).
				Background(lipgloss.Color("#F25D94")).
				MarginRight(2).
				Underline(true)
)

// renderConfirmDialog asks the user to approve the pending transaction
func (m *model) renderConfirmDialog() string {
	what := m.confirmOp.String()
	if m.confirmOp == mint.OpMint {
		what = "mint a DePleb for " + helpers.FormatETH(m.saleCfg.Price)
	}
	msg := helpers.FadeString("Approve transaction: "+what+"?", "#F25D94", "#EDFF82")
	question := lipgloss.NewStyle().Width(50).Align(lipgloss.Center).Render(msg)

	from := ""
	if s, ok := m.session(); ok {
		from = lipgloss.NewStyle().Width(50).Align(lipgloss.Center).Foreground(cMuted).
			Render("from " + helpers.ShortenAddr(s.Address.Hex()))
	}

	var okButton, cancelButton string
	if m.confirmYesSelected {
		okButton = activeButtonStyle.Render("Yes")
		cancelButton = buttonStyle.Render("No")
	} else {
		okButton = buttonStyle.MarginRight(2).Render("Yes")
		cancelButton = activeButtonStyle.MarginRight(0).Render("No")
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Top, okButton, cancelButton)
	ui := lipgloss.JoinVertical(lipgloss.Center, question, from, buttons)

	return lipgloss.Place(
		m.w, m.h,
		lipgloss.Center, lipgloss.Center,
		dialogBoxStyle.Render(ui),
	)
}

// renderErrorDialog shows the blocking error notification
func (m *model) renderErrorDialog() string {
	title := lipgloss.NewStyle().Foreground(cWarn).Bold(true).Width(56).Align(lipgloss.Center).Render(m.errTitle)
	body := lipgloss.NewStyle().Foreground(cText).Width(56).Align(lipgloss.Center).Render(m.errMessage)

	parts := []string{title, "", body}
	if m.errSuggestion != "" {
		parts = append(parts, "", lipgloss.NewStyle().Foreground(cAccent2).Italic(true).Width(56).Align(lipgloss.Center).Render(m.errSuggestion))
	}
	parts = append(parts, activeButtonStyle.MarginRight(0).Render("OK"))

	return lipgloss.Place(
		m.w, m.h,
		lipgloss.Center, lipgloss.Center,
		dialogBoxStyle.BorderForeground(cWarn).Render(lipgloss.JoinVertical(lipgloss.Center, parts...)),
	)
}

func (m *model) renderTxResultContent() string {
	title := "Transaction Confirmed"
	if m.txResult.Op != 0 {
		title = strings.ToUpper(m.txResult.Op.String()[:1]) + m.txResult.Op.String()[1:] + " confirmed"
	}
	content := styles.TitleStyle.Render(title) + "\n\n"

	content += helpers.GenerateQRCode(m.txURL) + "\n"
	content += lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Render("Transaction:") + "\n"
	content += m.txResult.TxHash.Hex() + "\n"
	content += lipgloss.NewStyle().Foreground(cMuted).Render(fmt.Sprintf("block %d", m.txResult.Block))

	if m.txTokenURI != "" {
		content += "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Render("Token URI:") + "\n" + m.txTokenURI
	}
	if m.txMetadata != "" {
		content += "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Render("Token metadata:") + "\n"
		content += lipgloss.NewStyle().Align(lipgloss.Left).Render(m.txMetadata)
	}

	content += "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).Render("Scan the QR code to open the transaction in a block explorer")
	content += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).Render("Press y to copy • Press ESC or Enter to close")

	if m.txCopiedMsg != "" {
		content += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true).Render(m.txCopiedMsg)
	}
	return content
}

func (m *model) renderTxResultPanel() string {
	contentWidth := max(0, m.w-8)
	centeredContent := lipgloss.NewStyle().Width(contentWidth).Align(lipgloss.Center).Render(m.renderTxResultContent())
	content := panelStyle.Width(max(0, m.w-4)).Render(centeredContent)
	return appStyle.Render(lipgloss.Place(
		m.w, m.h,
		lipgloss.Center, lipgloss.Center,
		content,
	))
}

func (m *model) globalHeader() string {
	availableWidth := max(0, m.w-8) // Account for panel padding

	var addrDisplay string
	if s, ok := m.session(); ok {
		addrDisplay = lipgloss.NewStyle().
			Foreground(cAccent2).
			Bold(true).
			Render("Account: " + helpers.FadeString(helpers.ShortenAddr(s.Address.Hex()), "#F25D94", "#EDFF82"))
	} else {
		addrDisplay = lipgloss.NewStyle().
			Foreground(cMuted).
			Render("Account: Not connected")
	}

	// RPC status dot
	var statusIcon string
	var statusColor lipgloss.Color
	var statusText string

	switch {
	case m.rpcURL == "":
		statusIcon = "○"
		statusColor = lipgloss.Color("#c01c28")
		statusText = "No RPC"
	case m.rpcConnecting:
		statusIcon = "○"
		statusColor = lipgloss.Color("#c01c28")
		statusText = "Connecting..."
	case !m.rpcConnected:
		statusIcon = "○"
		statusColor = lipgloss.Color("#c01c28")
		statusText = "Connection Failed"
	default:
		statusIcon = "●"
		statusColor = cAccent
		if m.chainID != fmt.Sprint(m.cfg.ChainID) {
			statusColor = cWarn
		}
		if r, ok := m.cfg.ActiveRPC(); ok && r.URL == m.rpcURL {
			statusText = r.Name
		}
		if statusText == "" {
			statusText = "Connected"
		}
		statusText += " · chain " + m.chainID
	}

	rpcDisplay := lipgloss.NewStyle().
		Foreground(statusColor).
		Bold(true).
		Render(statusIcon + " " + statusText)

	titleText := lipgloss.NewStyle().
		Foreground(cAccent).
		Bold(true).
		Render(helpers.FadeString("DePlebs", "#7EE787", "#82CFFD"))

	addrWidth := lipgloss.Width(addrDisplay)
	rpcWidth := lipgloss.Width(rpcDisplay)
	titleWidth := lipgloss.Width(titleText)
	totalOtherWidth := addrWidth + rpcWidth + titleWidth

	var headerLine string
	if totalOtherWidth+4 > availableWidth {
		// Not enough space, stack vertically
		headerLine = addrDisplay + "\n" + titleText + "\n" + rpcDisplay
	} else {
		// Three-column layout: Address | Title (centered) | RPC
		remainingSpace := availableWidth - totalOtherWidth
		leftPadding := remainingSpace / 2
		rightPadding := remainingSpace - leftPadding

		headerLine = addrDisplay +
			strings.Repeat(" ", max(1, leftPadding)) +
			titleText +
			strings.Repeat(" ", max(1, rightPadding)) +
			rpcDisplay
	}

	separator := lipgloss.NewStyle().
		Foreground(cBorder).
		Render(strings.Repeat("─", availableWidth))

	return headerLine + "\n" + separator
}

// saleData collects what the sale panel shows
func (m *model) saleData() details.Data {
	d := details.Data{
		State:       m.state(),
		Price:       m.saleCfg.Price,
		Pending:     m.pending,
		CopiedMsg:   m.copiedMsg,
		SpinnerView: m.spin.View(),
	}
	if s, ok := m.session(); ok {
		d.Address = s.Address.Hex()
		d.Label = m.cfg.AccountLabel(d.Address)
		if !m.loading && m.details.ErrMessage == "" {
			d.Balance = m.details.EthWei
		}
	}
	d.Snapshot, d.HasSnapshot = m.snapshot()
	return d
}

func (m *model) View() string {
	if m.showError {
		return m.renderErrorDialog()
	}
	if m.showConfirm {
		return m.renderConfirmDialog()
	}
	if m.showTxResultPanel {
		return m.renderTxResultPanel()
	}

	headerPanel := panelStyle.Width(max(0, m.w-2)).Render(m.globalHeader())

	var pageContent, nav string
	switch {
	case m.connectForm != nil:
		pageContent = panelStyle.Width(max(0, m.w-2)).Render(home.Render(m.connectForm))
		nav = home.Nav(m.w - 2)
	case m.showSettings:
		pageContent = panelStyle.Width(max(0, m.w-2)).Render(
			settings.Render(m.cfg.RPCURLs, m.selectedRPCIdx, m.cfg.ChainID, m.chainID))
		nav = settings.Nav(m.w - 2)
	default:
		pageContent = panelStyle.Width(max(0, m.w-2)).Render(details.Render(m.saleData()))
		nav = details.Nav(m.w-2, m.state())
	}

	sections := []string{headerPanel, pageContent, nav}
	if m.logEnabled {
		m.logViewport.Height = logview.Height(m.h)
		sections = append(sections, logview.Render(m.w, m.h, m.logReady, m.logSpinner.View(), m.logViewport))
	}

	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}
