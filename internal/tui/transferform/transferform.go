// ABOUTME: Transfer screen as a bubbletea model
// ABOUTME: Collects receiver, amount, and PIN with a huh form

package transferform

import (
	"errors"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/dtv/mbank-cli/internal/transfer"
	"github.com/dtv/mbank-cli/internal/tui/styles"
)

// SubmitMsg is sent when the user confirms the transfer form
type SubmitMsg struct {
	Input transfer.Input
}

// CancelledMsg is sent when the user backs out of the transfer screen
type CancelledMsg struct{}

// Form is the transfer screen
type Form struct {
	form      *huh.Form
	receiver  string
	amount    string
	pin       string
	errText   string
	submitted bool
	width     int
}

// New creates a transfer form
func New() *Form {
	f := &Form{}
	f.form = f.newForm()
	return f
}

// newForm binds the inputs to the Form's fields, so a rebuilt form keeps
// whatever the user already typed.
func (f *Form) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Receiver account number").
				Placeholder("e.g., 1234567890").
				CharLimit(32).
				Value(&f.receiver).
				Validate(nonEmpty("receiver account number")),
			huh.NewInput().
				Title("Amount").
				Placeholder("whole currency units").
				CharLimit(15).
				Value(&f.amount).
				Validate(validAmount),
			huh.NewInput().
				Title("PIN").
				EchoMode(huh.EchoModePassword).
				CharLimit(6).
				Value(&f.pin).
				Validate(nonEmpty("PIN")),
		).Title("Transfer funds"),
	).WithTheme(huh.ThemeBase())
}

func nonEmpty(field string) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

// validAmount gives early feedback in the form; the workflow revalidates
// before anything touches the network.
func validAmount(v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New("amount is required")
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return errors.New("invalid amount")
	}
	if n <= 0 {
		return errors.New("amount must be positive")
	}
	return nil
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// SetWidth sets the render width
func (f *Form) SetWidth(width int) {
	f.width = width
}

// SetError shows a submission failure and rebuilds the form so the input
// is editable again. A completed huh form would otherwise stay completed
// and fire a second submit on the next keystroke; resubmitting a transfer
// must always be a deliberate act.
func (f *Form) SetError(text string) tea.Cmd {
	f.errText = text
	f.submitted = false
	f.form = f.newForm()
	return f.form.Init()
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
		input := transfer.Input{Receiver: f.receiver, Amount: f.amount, PIN: f.pin}
		return f, func() tea.Msg {
			return SubmitMsg{Input: input}
		}
	}

	return f, cmd
}

// View implements tea.Model
func (f *Form) View() string {
	var sb strings.Builder
	if f.errText != "" {
		sb.WriteString(styles.StatusCritical.Render(f.errText))
		sb.WriteString("\n\n")
	}
	sb.WriteString(f.form.View())
	return sb.String()
}
