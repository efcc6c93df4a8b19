// ABOUTME: PIN setup screen as a bubbletea model
// ABOUTME: Drives the OTP request and the password/OTP/PIN confirm form

package pinsetup

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/dtv/mbank-cli/internal/tui/icons"
	"github.com/dtv/mbank-cli/internal/tui/styles"
)

// RequestOtpMsg is sent when the user asks for a one-time code
type RequestOtpMsg struct{}

// ConfirmMsg is sent when the user submits the confirm form
type ConfirmMsg struct {
	Password string
	Otp      string
	NewPin   string
}

// CancelledMsg is sent when the user backs out of PIN setup
type CancelledMsg struct{}

// pinLength matches the backend's PIN rule
const pinLength = 6

type state int

const (
	stateMenu state = iota
	stateForm
)

// Model is the PIN setup screen
type Model struct {
	state     state
	form      *huh.Form
	password  string
	otp       string
	newPin    string
	status    string
	statusOK  bool
	submitted bool
	width     int
}

// New creates the PIN setup screen
func New() *Model {
	return &Model{state: stateMenu}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// SetWidth sets the render width
func (m *Model) SetWidth(width int) {
	m.width = width
}

// SetStatus shows the outcome of an OTP request or PIN confirm and
// returns to the action menu.
func (m *Model) SetStatus(text string, ok bool) {
	m.status = text
	m.statusOK = ok
	m.state = stateMenu
	m.submitted = false
}

func (m *Model) newConfirmForm() *huh.Form {
	m.password = ""
	m.otp = ""
	m.newPin = ""
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				CharLimit(128).
				Value(&m.password).
				Validate(requiredField("password")),
			huh.NewInput().
				Title("OTP").
				Placeholder("code from email").
				CharLimit(10).
				Value(&m.otp).
				Validate(requiredField("OTP")),
			huh.NewInput().
				Title("New PIN").
				EchoMode(huh.EchoModePassword).
				CharLimit(pinLength).
				Value(&m.newPin).
				Validate(validPin),
		).Title("Confirm new PIN"),
	).WithTheme(huh.ThemeBase())
}

func requiredField(field string) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

func validPin(v string) error {
	if len(v) != pinLength {
		return fmt.Errorf("PIN must be exactly %d digits", pinLength)
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return errors.New("PIN must contain digits only")
		}
	}
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "o":
				return m, func() tea.Msg { return RequestOtpMsg{} }
			case "c":
				m.state = stateForm
				m.form = m.newConfirmForm()
				return m, m.form.Init()
			case "esc", "b":
				return m, func() tea.Msg { return CancelledMsg{} }
			}
		}
		return m, nil

	case stateForm:
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			m.state = stateMenu
			return m, nil
		}

		form, cmd := m.form.Update(msg)
		if hf, ok := form.(*huh.Form); ok {
			m.form = hf
		}

		if m.form.State == huh.StateCompleted && !m.submitted {
			m.submitted = true
			confirm := ConfirmMsg{Password: m.password, Otp: m.otp, NewPin: m.newPin}
			return m, func() tea.Msg { return confirm }
		}
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Lock.String() + " PIN setup"))
	sb.WriteString("\n")

	if m.status != "" {
		style := styles.StatusCritical
		if m.statusOK {
			style = styles.StatusOK
		}
		sb.WriteString(style.Render(m.status))
		sb.WriteString("\n\n")
	}

	switch m.state {
	case stateMenu:
		sb.WriteString("o  Request OTP by email\n")
		sb.WriteString("c  Confirm new PIN\n")
		sb.WriteString("b  Back to home\n")
	case stateForm:
		sb.WriteString(m.form.View())
	}
	return sb.String()
}
