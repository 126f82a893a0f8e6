package settings

import (
	"fmt"
	"strings"

	"deplebs-mint-tui/config"
	"deplebs-mint-tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// Nav returns the navigation bar for the endpoint picker
func Nav(width int) string {
	left := strings.Join([]string{
		styles.Key("↑/↓") + " select",
		styles.Key("Enter") + " activate",
		styles.Key("l") + " log",
		styles.Key("Esc") + " back",
	}, "   ")

	return styles.NavStyle.Width(width).Render(left)
}

// Render renders the RPC endpoint picker. The sale only works on chain
// wantChain; the active endpoint's chain is shown when known.
func Render(rpcURLs []config.RPCUrl, selectedIdx int, wantChain int64, activeChain string) string {
	h := styles.TitleStyle.Render("RPC Endpoints")
	muted := lipgloss.NewStyle().Foreground(styles.CMuted)

	lines := []string{h, muted.Render(fmt.Sprintf("The sale contract lives on chain %d.", wantChain)), ""}

	if len(rpcURLs) == 0 {
		lines = append(lines, muted.Render("No RPC URLs configured."))
		lines = append(lines, muted.Render("Set ")+styles.Key(config.EnvRPCURL)+muted.Render(" or edit the config file."))
		return strings.Join(lines, "\n")
	}

	for i, rpc := range rpcURLs {
		marker := muted.Render("○ ")
		if rpc.Active {
			marker = lipgloss.NewStyle().Foreground(styles.CAccent).Render("● ")
		}

		nameStyle := lipgloss.NewStyle().Foreground(styles.CText)
		urlStyle := muted
		if i == selectedIdx {
			nameStyle = nameStyle.Background(styles.CPanel).Foreground(styles.CAccent2).Bold(true)
			urlStyle = urlStyle.Background(styles.CPanel)
			marker = lipgloss.NewStyle().Foreground(styles.CAccent2).Render("▶ ")
		}

		line := marker + nameStyle.Render(rpc.Name)
		if rpc.Active && activeChain != "" {
			line += muted.Render("  chain " + activeChain)
		}
		lines = append(lines, line, "  "+urlStyle.Render(rpc.URL), "")
	}

	return strings.Join(lines, "\n")
}
