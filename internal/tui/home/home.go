// ABOUTME: Home screen rendering the profile and account balances
// ABOUTME: Shows a spinner while the overview fetch is in flight

package home

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dtv/mbank-cli/internal/client"
	"github.com/dtv/mbank-cli/internal/session"
	"github.com/dtv/mbank-cli/internal/tui/icons"
	"github.com/dtv/mbank-cli/internal/tui/styles"
)

// Model is the home screen
type Model struct {
	overview *session.Overview
	err      error
	loading  bool
	spinner  spinner.Model
	width    int
}

// New creates the home screen in its loading state
func New() *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Primary)
	return &Model{loading: true, spinner: sp}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetWidth sets the render width
func (m *Model) SetWidth(width int) {
	m.width = width
}

// SetLoading puts the screen back into its loading state
func (m *Model) SetLoading() tea.Cmd {
	m.loading = true
	m.err = nil
	return m.spinner.Tick
}

// SetOverview displays fetched data
func (m *Model) SetOverview(ov *session.Overview) {
	m.overview = ov
	m.err = nil
	m.loading = false
}

// SetAccounts replaces only the account listing, keeping the profile
func (m *Model) SetAccounts(accounts []client.Account) {
	if m.overview == nil {
		return
	}
	m.overview.Accounts = accounts
	m.loading = false
	m.err = nil
}

// SetError displays a fetch failure; any previous data stays visible
func (m *Model) SetError(err error) {
	m.err = err
	m.loading = false
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); ok && m.loading {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model
func (m *Model) View() string {
	if m.loading {
		return m.spinner.View() + " Loading..."
	}

	var sb strings.Builder

	if m.err != nil {
		sb.WriteString(styles.StatusCritical.Render("Error: " + m.err.Error()))
		sb.WriteString("\n\n")
	}

	if m.overview == nil {
		sb.WriteString("No data.")
		return sb.String()
	}

	if m.overview.User != nil {
		greeting := fmt.Sprintf("%s Hello, %s", icons.User.String(), m.overview.User.FullName)
		sb.WriteString(styles.Title.Render(greeting))
		sb.WriteString("\n")
		sb.WriteString(styles.Subtitle.Render(m.overview.User.Username + " · " + m.overview.User.Role))
		sb.WriteString("\n\n")
	}

	if len(m.overview.Accounts) == 0 {
		sb.WriteString("No accounts found.")
		return sb.String()
	}

	for i, acct := range m.overview.Accounts {
		label := acct.AccountNumber
		if label == "" {
			label = fmt.Sprintf("account %d", i+1)
		}
		line := fmt.Sprintf("%s %-16s %s", icons.Account.String(), label,
			styles.ValueStyle.Render(fmt.Sprintf("%d", acct.Balance)))
		if i == 0 {
			line += styles.Subtitle.Render("  (primary)")
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}
