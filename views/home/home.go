package home

import (
	"strings"

	"deplebs-mint-tui/helpers"
	"deplebs-mint-tui/styles"

	"github.com/charmbracelet/huh"
)

// Temp values bound to the connect form
var (
	TempAccount    string
	TempPassphrase string
)

// Account is a keystore entry offered in the form
type Account struct {
	Address string
	Label   string
}

// CreateForm creates the wallet connect form. preferred is preselected when
// it is one of accounts.
func CreateForm(accounts []Account, preferred string) *huh.Form {
	TempAccount = ""
	TempPassphrase = ""

	options := make([]huh.Option[string], 0, len(accounts))
	for _, a := range accounts {
		name := a.Address
		if a.Label != "" {
			name = a.Label + "  " + helpers.ShortenAddr(a.Address)
		}
		options = append(options, huh.NewOption(name, a.Address))
		if strings.EqualFold(a.Address, preferred) {
			TempAccount = a.Address
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Options(options...).
				Title("Connect Wallet").
				Description("Choose the account to use").
				Value(&TempAccount),
			huh.NewInput().
				Title("Passphrase").
				Description("Leave empty to connect read-only").
				EchoMode(huh.EchoModePassword).
				Value(&TempPassphrase),
		),
	).WithTheme(huh.ThemeCatppuccin())

	form.Init()
	return form
}

// Render renders the connect form
func Render(form *huh.Form) string {
	if form != nil {
		return styles.TitleStyle.Render("Connect Wallet") + "\n\n" + form.View()
	}
	return "Loading accounts..."
}

// Nav returns the navigation bar while the form is open
func Nav(width int) string {
	left := strings.Join([]string{
		styles.Key("↑/↓") + " account",
		styles.Key("Tab") + " next",
		styles.Key("Enter") + " connect",
		styles.Key("Esc") + " cancel",
	}, "   ")

	return styles.NavStyle.Width(width).Render(left)
}
