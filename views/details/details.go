package details

import (
	"fmt"
	"math/big"
	"strings"

	"deplebs-mint-tui/helpers"
	"deplebs-mint-tui/mint"
	"deplebs-mint-tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// Data is everything the sale panel shows
type Data struct {
	State       mint.UIState
	Address     string
	Label       string
	Snapshot    mint.Snapshot
	HasSnapshot bool
	Balance     *big.Int
	Price       *big.Int
	Pending     mint.Op
	CopiedMsg   string
	SpinnerView string
}

// Nav returns the navigation bar for the sale panel
func Nav(width int, state mint.UIState) string {
	keys := []string{}
	switch action, op := state.Action(); action {
	case mint.ActionConnect:
		keys = append(keys, styles.Key("c")+" connect")
	case mint.ActionSubmit:
		keys = append(keys, styles.Key("Enter")+" "+op.String())
	}
	if state != mint.StateDisconnected {
		keys = append(keys,
			styles.Key("r")+" refresh",
			styles.Key("y")+" copy address",
			styles.Key("d")+" disconnect",
		)
	}
	keys = append(keys,
		styles.Key("s")+" rpc",
		styles.Key("l")+" log",
		styles.Key("q")+" quit",
	)
	return styles.NavStyle.Width(width).Render(strings.Join(keys, "   "))
}

// Button renders a call to action, highlighted when it can be pressed
func Button(label string, active bool) string {
	s := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFF7DB")).
		Background(lipgloss.Color("#888B7E")).
		Padding(0, 3).
		MarginTop(1)
	if active {
		s = s.Background(lipgloss.Color("#F25D94")).Underline(true)
	}
	return s.Render(label)
}

// Render renders the sale panel
func Render(d Data) string {
	muted := lipgloss.NewStyle().Foreground(styles.CMuted)
	text := lipgloss.NewStyle().Foreground(styles.CText)

	lines := []string{
		styles.TitleStyle.Render("Welcome to DePlebs!"),
		muted.Render("It's an NFT collection for degen plebs."),
		"",
	}

	if d.State != mint.StateDisconnected {
		sub := muted.Underline(true).Render(d.Address)
		if d.Label != "" {
			sub = lipgloss.NewStyle().Foreground(styles.CAccent2).Italic(true).Render("\""+d.Label+"\"") + "  " + sub
		}
		if d.CopiedMsg != "" {
			sub += "  " + lipgloss.NewStyle().Foreground(styles.CAccent).Render(d.CopiedMsg)
		}
		lines = append(lines, sub)
		if d.Balance != nil {
			lines = append(lines, fmt.Sprintf("%s  %s",
				lipgloss.NewStyle().Foreground(styles.CAccent2).Bold(true).Render("ETH"),
				text.Render(helpers.FormatETH(d.Balance))))
		}
		lines = append(lines, "")
	}

	if d.HasSnapshot {
		lines = append(lines, text.Render(fmt.Sprintf("%d/%d DePlebs have been minted", min(d.Snapshot.MintedCount, d.Snapshot.Capacity), d.Snapshot.Capacity)))
		if left := d.Snapshot.Remaining(); left > 0 {
			lines = append(lines, muted.Render(fmt.Sprintf("%d left", left)))
		}
		lines = append(lines, muted.Render("synced "+helpers.LoadedAt(d.Snapshot.ReadAt, false)))
	} else if d.State != mint.StateDisconnected {
		lines = append(lines, d.SpinnerView+" syncing sale state…")
	}

	lines = append(lines, stateBlock(d)...)
	return strings.Join(lines, "\n")
}

func stateBlock(d Data) []string {
	muted := lipgloss.NewStyle().Foreground(styles.CMuted)
	accent := lipgloss.NewStyle().Foreground(styles.CAccent).Bold(true)

	switch d.State {
	case mint.StateDisconnected:
		return []string{Button("Connect your wallet", true), muted.Render("Press c to connect")}
	case mint.StateSoldOut:
		return []string{"", helpers.FadeString("Sold out! All DePlebs have found a home.", "#F25D94", "#EDFF82")}
	case mint.StateBusy:
		what := "Waiting for confirmation"
		if d.Pending != 0 {
			what = "Waiting for " + d.Pending.String() + " to confirm"
		}
		return []string{"", d.SpinnerView + " " + muted.Render(what+"…")}
	case mint.StateOwnerPreSale:
		return []string{Button("Start public mint", true), muted.Render("You own the contract. Press Enter to open the sale.")}
	case mint.StateAwaitingSale:
		return []string{"", muted.Render("The public sale hasn't started yet. Check back soon.")}
	case mint.StateOwnerPostSale:
		return []string{"", accent.Render("Public mint is live."), Button("Withdraw proceeds", true)}
	case mint.StatePublicMint:
		label := "Public Mint 🚀"
		if d.Price != nil {
			label += " (" + helpers.FormatETH(d.Price) + ")"
		}
		lines := []string{"", accent.Render("Public mint has started!")}
		if d.HasSnapshot && d.Snapshot.MintedByCaller {
			return append(lines, muted.Render("You already own a DePleb."))
		}
		return append(lines, Button(label, true))
	}
	return nil
}
