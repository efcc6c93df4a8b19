// ABOUTME: Root bubbletea model for the banking TUI
// ABOUTME: Routes screens and guards async completions against staleness

package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dtv/mbank-cli/internal/client"
	"github.com/dtv/mbank-cli/internal/session"
	"github.com/dtv/mbank-cli/internal/transfer"
	"github.com/dtv/mbank-cli/internal/tui/debuglog"
	"github.com/dtv/mbank-cli/internal/tui/home"
	"github.com/dtv/mbank-cli/internal/tui/icons"
	"github.com/dtv/mbank-cli/internal/tui/loginform"
	"github.com/dtv/mbank-cli/internal/tui/pinsetup"
	"github.com/dtv/mbank-cli/internal/tui/styles"
	"github.com/dtv/mbank-cli/internal/tui/transferform"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenHome
	ScreenTransfer
	ScreenPin
)

// Layout constants
const (
	minTerminalWidth = 60
	panelPadding     = 4
)

// loginDoneMsg is sent when a login attempt resolves
type loginDoneMsg struct {
	seq int
	err error
}

// overviewMsg is sent when the profile+accounts fetch resolves
type overviewMsg struct {
	seq      int
	overview *session.Overview
	err      error
}

// transferDoneMsg is sent when the transfer workflow resolves
type transferDoneMsg struct {
	seq    int
	result *transfer.Result
	err    error
}

// otpRequestedMsg is sent when the OTP request resolves
type otpRequestedMsg struct {
	seq int
	err error
}

// pinSetMsg is sent when the PIN confirm resolves
type pinSetMsg struct {
	seq int
	err error
}

// App is the root model for the TUI
type App struct {
	controller *session.Controller
	workflow   *transfer.Workflow
	screen     Screen
	width      int
	height     int
	lastUpdate time.Time

	// seq tags every network dispatch; a completion carrying an older seq
	// belongs to a screen or session that no longer exists and is dropped
	seq int

	// Child models
	login          *loginform.Form
	homeScreen     *home.Model
	transferScreen *transferform.Form
	pinScreen      *pinsetup.Model
}

// New creates the TUI application, routed by the controller's state.
func New(controller *session.Controller) *App {
	a := &App{
		controller: controller,
		workflow:   transfer.New(controller),
	}
	if controller.CurrentState() == session.StateAuthenticated {
		a.screen = ScreenHome
		a.homeScreen = home.New()
	} else {
		a.screen = ScreenLogin
		a.login = loginform.New("")
	}
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	if a.screen == ScreenHome {
		return tea.Batch(a.homeScreen.Init(), a.fetchOverview())
	}
	return a.login.Init()
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeChildren()
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.routeKey(msg)

	case loginform.SubmitMsg:
		return a, a.doLogin(msg.Username, msg.Password)

	case loginform.CancelledMsg:
		return a, tea.Quit

	case loginDoneMsg:
		return a.handleLoginDone(msg)

	case overviewMsg:
		return a.handleOverview(msg)

	case transferform.SubmitMsg:
		return a, a.doTransfer(msg.Input)

	case transferform.CancelledMsg:
		a.toHome()
		return a, a.refreshHome()

	case transferDoneMsg:
		return a.handleTransferDone(msg)

	case pinsetup.RequestOtpMsg:
		return a, a.doRequestOtp()

	case pinsetup.CancelledMsg:
		a.toHome()
		return a, a.refreshHome()

	case pinsetup.ConfirmMsg:
		return a, a.doSetPin(msg)

	case otpRequestedMsg:
		return a.handleOtpRequested(msg)

	case pinSetMsg:
		return a.handlePinSet(msg)

	default:
		// Forward everything else to the active child (spinner ticks,
		// huh form internals)
		return a.forward(msg)
	}
}

// routeKey sends key input to the active screen
func (a *App) routeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.screen {
	case ScreenHome:
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "r":
			return a, a.refreshHome()
		case "t":
			a.screen = ScreenTransfer
			a.transferScreen = transferform.New()
			a.transferScreen.SetWidth(a.contentWidth())
			return a, a.transferScreen.Init()
		case "p":
			a.screen = ScreenPin
			a.pinScreen = pinsetup.New()
			a.pinScreen.SetWidth(a.contentWidth())
			return a, a.pinScreen.Init()
		case "l":
			return a.logout()
		}
		return a, nil
	default:
		return a.forward(msg)
	}
}

// forward routes a message to the active child model
func (a *App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch a.screen {
	case ScreenLogin:
		if a.login == nil {
			return a, nil
		}
		model, cmd := a.login.Update(msg)
		a.login = model.(*loginform.Form)
		return a, cmd
	case ScreenHome:
		if a.homeScreen == nil {
			return a, nil
		}
		model, cmd := a.homeScreen.Update(msg)
		a.homeScreen = model.(*home.Model)
		return a, cmd
	case ScreenTransfer:
		if a.transferScreen == nil {
			return a, nil
		}
		model, cmd := a.transferScreen.Update(msg)
		a.transferScreen = model.(*transferform.Form)
		return a, cmd
	case ScreenPin:
		if a.pinScreen == nil {
			return a, nil
		}
		model, cmd := a.pinScreen.Update(msg)
		a.pinScreen = model.(*pinsetup.Model)
		return a, cmd
	}
	return a, nil
}

// stale reports whether a completion belongs to an abandoned dispatch
func (a *App) stale(seq int) bool {
	return seq != a.seq
}

// nextSeq tags a new dispatch and implicitly invalidates older ones
func (a *App) nextSeq() int {
	a.seq++
	return a.seq
}

// doLogin dispatches the login call
func (a *App) doLogin(username, password string) tea.Cmd {
	seq := a.nextSeq()
	return func() tea.Msg {
		err := a.controller.Login(context.Background(), username, password)
		return loginDoneMsg{seq: seq, err: err}
	}
}

// fetchOverview dispatches the concurrent profile+accounts fetch
func (a *App) fetchOverview() tea.Cmd {
	seq := a.nextSeq()
	return func() tea.Msg {
		ov, err := a.controller.FetchOverview(context.Background())
		return overviewMsg{seq: seq, overview: ov, err: err}
	}
}

// doTransfer dispatches the transfer workflow
func (a *App) doTransfer(in transfer.Input) tea.Cmd {
	seq := a.nextSeq()
	return func() tea.Msg {
		result, err := a.workflow.Run(context.Background(), in)
		return transferDoneMsg{seq: seq, result: result, err: err}
	}
}

// doRequestOtp dispatches the OTP request
func (a *App) doRequestOtp() tea.Cmd {
	seq := a.nextSeq()
	return func() tea.Msg {
		_, err := a.controller.RequestPinOtp(context.Background())
		return otpRequestedMsg{seq: seq, err: err}
	}
}

// doSetPin dispatches the PIN confirm
func (a *App) doSetPin(msg pinsetup.ConfirmMsg) tea.Cmd {
	seq := a.nextSeq()
	return func() tea.Msg {
		_, err := a.controller.SetPin(context.Background(), msg.Password, msg.Otp, msg.NewPin)
		return pinSetMsg{seq: seq, err: err}
	}
}

func (a *App) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	if a.stale(msg.seq) || a.screen != ScreenLogin {
		return a, nil
	}
	if msg.err != nil {
		notice := "Login failed: " + loginFailureText(msg.err)
		a.login = loginform.New(notice)
		a.login.SetWidth(a.contentWidth())
		return a, a.login.Init()
	}

	a.screen = ScreenHome
	a.homeScreen = home.New()
	a.homeScreen.SetWidth(a.contentWidth())
	a.login = nil
	return a, tea.Batch(a.homeScreen.Init(), a.fetchOverview())
}

func (a *App) handleOverview(msg overviewMsg) (tea.Model, tea.Cmd) {
	if a.stale(msg.seq) || a.screen != ScreenHome {
		return a, nil
	}
	if msg.err != nil {
		if errors.Is(msg.err, session.ErrSessionInvalid) || errors.Is(msg.err, session.ErrNotAuthenticated) {
			return a.toLogin("Session expired. Please log in again.")
		}
		a.homeScreen.SetError(msg.err)
		return a, nil
	}

	a.homeScreen.SetOverview(msg.overview)
	a.lastUpdate = time.Now()
	return a, nil
}

func (a *App) handleTransferDone(msg transferDoneMsg) (tea.Model, tea.Cmd) {
	if a.stale(msg.seq) || a.screen != ScreenTransfer {
		return a, nil
	}
	if msg.err != nil {
		if errors.Is(msg.err, session.ErrSessionInvalid) || errors.Is(msg.err, session.ErrNotAuthenticated) {
			return a.toLogin("Session expired. Please log in again.")
		}

		var ve *transfer.ValidationError
		switch {
		case errors.As(msg.err, &ve):
			return a, a.transferScreen.SetError(ve.Message)
		case client.IsUnreachable(msg.err):
			return a, a.transferScreen.SetError("Connection failed, please retry.")
		default:
			// Not reachable for guarded rejections, which arrive as
			// ErrSessionInvalid under the coarse invalidation policy
			return a, a.transferScreen.SetError("Transfer failed: bad account or insufficient funds.")
		}
	}

	a.toHome()
	if msg.result.RefreshErr != nil {
		slog.Warn("balance refresh after transfer failed", "error", msg.result.RefreshErr)
		a.homeScreen.SetError(fmt.Errorf("transfer complete, but balances may be stale"))
		return a, nil
	}
	// The workflow already refreshed balances, no second fetch
	a.homeScreen.SetAccounts(msg.result.Accounts)
	a.lastUpdate = time.Now()
	return a, nil
}

func (a *App) handleOtpRequested(msg otpRequestedMsg) (tea.Model, tea.Cmd) {
	if a.stale(msg.seq) || a.screen != ScreenPin {
		return a, nil
	}
	if msg.err != nil {
		if errors.Is(msg.err, session.ErrSessionInvalid) || errors.Is(msg.err, session.ErrNotAuthenticated) {
			return a.toLogin("Session expired. Please log in again.")
		}
		a.pinScreen.SetStatus("Could not send OTP, please retry.", false)
		return a, nil
	}
	a.pinScreen.SetStatus("OTP sent, check your email.", true)
	return a, nil
}

func (a *App) handlePinSet(msg pinSetMsg) (tea.Model, tea.Cmd) {
	if a.stale(msg.seq) || a.screen != ScreenPin {
		return a, nil
	}
	if msg.err != nil {
		if errors.Is(msg.err, session.ErrSessionInvalid) || errors.Is(msg.err, session.ErrNotAuthenticated) {
			return a.toLogin("Session expired. Please log in again.")
		}
		if client.IsRejected(msg.err) {
			a.pinScreen.SetStatus("PIN setup failed: wrong OTP or password.", false)
			return a, nil
		}
		a.pinScreen.SetStatus("Connection failed, please retry.", false)
		return a, nil
	}
	a.pinScreen.SetStatus("PIN set successfully.", true)
	return a, nil
}

// logout clears the session and returns to the login screen
func (a *App) logout() (tea.Model, tea.Cmd) {
	if err := a.controller.Logout(); err != nil {
		slog.Warn("logout failed to clear credential", "error", err)
	}
	return a.toLogin("Logged out.")
}

// toLogin drops all authenticated screens and shows the login form.
// Bumping seq makes any in-flight completion stale.
func (a *App) toLogin(notice string) (tea.Model, tea.Cmd) {
	a.nextSeq()
	a.screen = ScreenLogin
	a.homeScreen = nil
	a.transferScreen = nil
	a.pinScreen = nil
	a.login = loginform.New(notice)
	a.login.SetWidth(a.contentWidth())
	return a, a.login.Init()
}

// toHome switches back to the home screen, keeping previous data visible
func (a *App) toHome() {
	a.screen = ScreenHome
	a.transferScreen = nil
	a.pinScreen = nil
	if a.homeScreen == nil {
		a.homeScreen = home.New()
		a.homeScreen.SetWidth(a.contentWidth())
	}
}

// refreshHome re-fetches the overview for the home screen
func (a *App) refreshHome() tea.Cmd {
	if a.homeScreen == nil {
		return nil
	}
	return tea.Batch(a.homeScreen.SetLoading(), a.fetchOverview())
}

func (a *App) resizeChildren() {
	w := a.contentWidth()
	if a.login != nil {
		a.login.SetWidth(w)
	}
	if a.homeScreen != nil {
		a.homeScreen.SetWidth(w)
	}
	if a.transferScreen != nil {
		a.transferScreen.SetWidth(w)
	}
	if a.pinScreen != nil {
		a.pinScreen.SetWidth(w)
	}
}

// loginFailureText maps a login error to a short user-facing reason
func loginFailureText(err error) string {
	if client.IsUnreachable(err) {
		return "cannot reach the bank, check your connection"
	}
	if client.IsRejected(err) {
		return "wrong username or password"
	}
	return err.Error()
}

// View implements tea.Model
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenLogin:
		if a.login != nil {
			content = a.login.View()
		}
	case ScreenHome:
		if a.homeScreen != nil {
			content = styles.ActivePanel.Width(a.contentWidth()).Render(a.homeScreen.View())
		}
	case ScreenTransfer:
		if a.transferScreen != nil {
			content = a.transferScreen.View()
		}
	case ScreenPin:
		if a.pinScreen != nil {
			content = a.pinScreen.View()
		}
	}

	return a.renderHeader() + "\n" + content + "\n" + a.renderFooter()
}

// renderHeader creates the header bar with app branding
func (a *App) renderHeader() string {
	width := a.width
	if width < minTerminalWidth {
		width = minTerminalWidth
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)

	leftText := fmt.Sprintf(" %s %s", icons.Bank.String(), titleStyle.Render("mbank"))
	leftWidth := lipgloss.Width(leftText)

	fillWidth := width - 4 - leftWidth
	if fillWidth < 0 {
		fillWidth = 0
	}

	header := "╭─" + leftText + strings.Repeat("─", fillWidth) + "─╮"
	return borderStyle.Render(header)
}

// renderFooter creates the footer with keyboard shortcuts
func (a *App) renderFooter() string {
	width := a.width
	if width < minTerminalWidth {
		width = minTerminalWidth
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	var shortcuts []string
	switch a.screen {
	case ScreenLogin:
		shortcuts = []string{"Tab Next field", "Enter Submit", "Esc Quit"}
	case ScreenHome:
		shortcuts = []string{"r Refresh", "t Transfer", "p PIN", "l Logout", "q Quit"}
	case ScreenTransfer:
		shortcuts = []string{"Tab Next field", "Enter Submit", "Esc Back"}
	case ScreenPin:
		shortcuts = []string{"o OTP", "c Confirm", "Esc Back"}
	}

	var styledShortcuts []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styledShortcuts = append(styledShortcuts, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styledShortcuts = append(styledShortcuts, s)
		}
	}

	leftText := " " + strings.Join(styledShortcuts, "  ")
	leftPlainText := " " + strings.Join(shortcuts, "  ")

	rightText := ""
	rightPlainText := ""
	if !a.lastUpdate.IsZero() && a.screen == ScreenHome {
		elapsed := formatTimeSince(a.lastUpdate)
		rightText = statusStyle.Render("Updated "+elapsed) + " "
		rightPlainText = "Updated " + elapsed + " "
	}

	fillWidth := width - 4 - lipgloss.Width(leftPlainText) - lipgloss.Width(rightPlainText)
	if fillWidth < 0 {
		fillWidth = 0
	}

	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯"
	return borderStyle.Render(footer)
}

// formatTimeSince formats a duration since the given time in human-readable form
func formatTimeSince(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 5 {
			return "just now"
		}
		return fmt.Sprintf("%ds ago", secs)
	}

	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	}

	hours := int(d.Hours())
	if hours == 1 {
		return "1h ago"
	}
	return fmt.Sprintf("%dh ago", hours)
}

// contentWidth is the width available inside the frame
func (a *App) contentWidth() int {
	if a.width < minTerminalWidth {
		return minTerminalWidth - panelPadding
	}
	return a.width - panelPadding
}

// Run starts the TUI
func Run(controller *session.Controller, configDir, logLevel string) error {
	if err := debuglog.Init(configDir, logLevel); err != nil {
		// Degraded logging is not fatal to the UI
		slog.Warn("debug log unavailable", "error", err)
	}
	defer debuglog.Close()

	p := tea.NewProgram(
		New(controller),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
