// ABOUTME: Login screen as a bubbletea model
// ABOUTME: Collects username and password with a huh form

package loginform

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/dtv/mbank-cli/internal/tui/styles"
)

// SubmitMsg is sent when the user confirms the login form
type SubmitMsg struct {
	Username string
	Password string
}

// CancelledMsg is sent when the user backs out of the login screen
type CancelledMsg struct{}

// Form is the login screen
type Form struct {
	form      *huh.Form
	username  string
	password  string
	notice    string
	submitted bool
	width     int
}

// New creates a login form. A non-empty notice is shown above the form,
// used for the session-expired redirect.
func New(notice string) *Form {
	f := &Form{notice: notice}
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				CharLimit(64).
				Value(&f.username).
				Validate(required("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				CharLimit(128).
				Value(&f.password).
				Validate(required("password")),
		).Title("Log in"),
	).WithTheme(huh.ThemeBase())
	return f
}

func required(field string) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// SetWidth sets the render width
func (f *Form) SetWidth(width int) {
	f.width = width
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		return f, func() tea.Msg { return CancelledMsg{} }
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if f.form.State == huh.StateCompleted && !f.submitted {
		f.submitted = true
		username, password := f.username, f.password
		return f, func() tea.Msg {
			return SubmitMsg{Username: username, Password: password}
		}
	}

	return f, cmd
}

// View implements tea.Model
func (f *Form) View() string {
	var sb strings.Builder
	if f.notice != "" {
		sb.WriteString(styles.StatusWarning.Render(f.notice))
		sb.WriteString("\n\n")
	}
	sb.WriteString(f.form.View())
	return sb.String()
}
