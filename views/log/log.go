package log

import (
	"fmt"

	"deplebs-mint-tui/helpers"
	"deplebs-mint-tui/styles"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// Height returns the viewport height for a screen of the given height.
// The panel takes at most a third of the screen and never more than 15 lines.
func Height(screenHeight int) int {
	// header (4 lines), panel (~12), nav (1), title + borders (4)
	available := helpers.Max(5, screenHeight-21)
	return helpers.Min(available, helpers.Min(screenHeight/3, 15))
}

// Render renders the activity log panel
func Render(width, screenHeight int, ready bool, spinnerView string, vp viewport.Model) string {
	title := lipgloss.NewStyle().
		Foreground(styles.CAccent2).
		Bold(true).
		Render("Activity")

	h := Height(screenHeight)
	vp.Height = h

	border := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.CBorder).
		Padding(0, 1).
		Width(helpers.Max(0, width-2)).
		Height(h + 2)

	if !ready {
		return border.Render(title + "\n\n" + "initializing...\n" + spinnerView)
	}

	scrollInfo := ""
	if vp.TotalLineCount() > vp.Height {
		scrollInfo = lipgloss.NewStyle().
			Foreground(styles.CMuted).
			Render(fmt.Sprintf(" [%d%%] pgup/pgdn", int(vp.ScrollPercent()*100)))
	}

	return border.Render(title + scrollInfo + "\n\n" + vp.View())
}
