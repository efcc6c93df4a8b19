// ABOUTME: Integration tests for the TUI app
// ABOUTME: Tests screen routing, completion handling, and stale-message drops

package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dtv/mbank-cli/internal/client"
	"github.com/dtv/mbank-cli/internal/session"
	"github.com/dtv/mbank-cli/internal/transfer"
)

type fakeStore struct {
	token string
	has   bool
}

func (s *fakeStore) Save(token string) error { s.token, s.has = token, true; return nil }
func (s *fakeStore) Load() (string, bool, error) {
	return s.token, s.has, nil
}
func (s *fakeStore) Clear() error { s.token, s.has = "", false; return nil }

type fakeGateway struct{}

func (g *fakeGateway) Login(ctx context.Context, username, password string) (string, error) {
	return "tok-test", nil
}
func (g *fakeGateway) GetProfile(ctx context.Context, token string) (*client.User, error) {
	return &client.User{Username: "alice", FullName: "Alice Doe"}, nil
}
func (g *fakeGateway) ListAccounts(ctx context.Context, token string) ([]client.Account, error) {
	return []client.Account{{AccountNumber: "111-222", Balance: 5000}}, nil
}
func (g *fakeGateway) SubmitTransfer(ctx context.Context, token string, req client.TransferRequest) (*client.TransferResult, error) {
	return &client.TransferResult{}, nil
}
func (g *fakeGateway) RequestPinOtp(ctx context.Context, token string) (*client.Acknowledgement, error) {
	return &client.Acknowledgement{}, nil
}
func (g *fakeGateway) SetPin(ctx context.Context, token, password, otp, newPin string) (*client.Acknowledgement, error) {
	return &client.Acknowledgement{}, nil
}

func newTestApp(loggedIn bool) *App {
	store := &fakeStore{}
	if loggedIn {
		store.Save("tok-test")
	}
	controller := session.NewController(&fakeGateway{}, store, nil)
	app := New(controller)
	app.width = 100
	app.height = 40
	return app
}

func TestAppInitialState_LoggedOut(t *testing.T) {
	app := newTestApp(false)

	if app.screen != ScreenLogin {
		t.Errorf("expected initial screen to be ScreenLogin, got %d", app.screen)
	}
	if app.login == nil {
		t.Error("expected login form to be initialized")
	}
}

func TestAppInitialState_LoggedIn(t *testing.T) {
	app := newTestApp(true)

	if app.screen != ScreenHome {
		t.Errorf("expected initial screen to be ScreenHome, got %d", app.screen)
	}
	if app.homeScreen == nil {
		t.Error("expected home screen to be initialized")
	}
}

func TestAppLoginDoneShowsHome(t *testing.T) {
	app := newTestApp(false)
	seq := app.nextSeq()

	updated, _ := app.Update(loginDoneMsg{seq: seq})

	result := updated.(*App)
	if result.screen != ScreenHome {
		t.Errorf("expected ScreenHome after login, got %d", result.screen)
	}
	if result.login != nil {
		t.Error("expected login form to be discarded")
	}
}

func TestAppLoginFailureReopensForm(t *testing.T) {
	app := newTestApp(false)
	seq := app.nextSeq()

	updated, _ := app.Update(loginDoneMsg{seq: seq, err: &client.RejectedError{Status: 401, Message: "bad creds"}})

	result := updated.(*App)
	if result.screen != ScreenLogin {
		t.Errorf("expected to stay on ScreenLogin, got %d", result.screen)
	}
	if !strings.Contains(result.login.View(), "wrong username or password") {
		t.Error("expected a failure notice on the login form")
	}
}

func TestAppOverviewPopulatesHome(t *testing.T) {
	app := newTestApp(true)
	seq := app.nextSeq()

	ov := &session.Overview{
		User:     &client.User{Username: "alice", FullName: "Alice Doe"},
		Accounts: []client.Account{{AccountNumber: "111-222", Balance: 5000}},
	}
	updated, _ := app.Update(overviewMsg{seq: seq, overview: ov})

	result := updated.(*App)
	view := result.homeScreen.View()
	if !strings.Contains(view, "Alice Doe") {
		t.Error("expected the profile name on the home screen")
	}
	if !strings.Contains(view, "5000") {
		t.Error("expected account balances on the home screen")
	}
}

func TestAppStaleOverviewDropped(t *testing.T) {
	app := newTestApp(true)
	stale := app.nextSeq()
	app.nextSeq()

	ov := &session.Overview{User: &client.User{FullName: "Stale Data"}}
	updated, _ := app.Update(overviewMsg{seq: stale, overview: ov})

	result := updated.(*App)
	if strings.Contains(result.homeScreen.View(), "Stale Data") {
		t.Error("expected the stale completion to be dropped")
	}
}

func TestAppSessionInvalidRoutesToLogin(t *testing.T) {
	app := newTestApp(true)
	seq := app.nextSeq()

	updated, _ := app.Update(overviewMsg{seq: seq, err: session.ErrSessionInvalid})

	result := updated.(*App)
	if result.screen != ScreenLogin {
		t.Errorf("expected ScreenLogin after session invalidation, got %d", result.screen)
	}
	if !strings.Contains(result.login.View(), "Session expired") {
		t.Error("expected a session-expired notice on the login form")
	}
	if result.homeScreen != nil {
		t.Error("expected authenticated screens to be dropped")
	}
}

func TestAppTransferKeysOpenScreens(t *testing.T) {
	app := newTestApp(true)

	updated, _ := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	result := updated.(*App)
	if result.screen != ScreenTransfer {
		t.Errorf("expected ScreenTransfer after 't', got %d", result.screen)
	}

	result.toHome()
	updated, _ = result.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	result = updated.(*App)
	if result.screen != ScreenPin {
		t.Errorf("expected ScreenPin after 'p', got %d", result.screen)
	}
}

func TestAppTransferDoneShowsRefreshedBalances(t *testing.T) {
	app := newTestApp(true)
	app.homeScreen.SetOverview(&session.Overview{
		User:     &client.User{FullName: "Alice Doe"},
		Accounts: []client.Account{{AccountNumber: "111-222", Balance: 5000}},
	})
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	seq := app.nextSeq()

	result := &transfer.Result{Accounts: []client.Account{{AccountNumber: "111-222", Balance: 4500}}}
	updated, _ := app.Update(transferDoneMsg{seq: seq, result: result})

	a := updated.(*App)
	if a.screen != ScreenHome {
		t.Errorf("expected ScreenHome after a completed transfer, got %d", a.screen)
	}
	if !strings.Contains(a.homeScreen.View(), "4500") {
		t.Error("expected the refreshed balance on the home screen")
	}
}

func TestAppTransferValidationStaysOnForm(t *testing.T) {
	app := newTestApp(true)
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	seq := app.nextSeq()

	updated, _ := app.Update(transferDoneMsg{seq: seq, err: &transfer.ValidationError{Message: "invalid amount"}})

	a := updated.(*App)
	if a.screen != ScreenTransfer {
		t.Errorf("expected to stay on ScreenTransfer, got %d", a.screen)
	}
	if !strings.Contains(a.transferScreen.View(), "invalid amount") {
		t.Error("expected the validation message on the form")
	}
}

func TestAppLogoutKeyReturnsToLogin(t *testing.T) {
	app := newTestApp(true)

	updated, _ := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})

	result := updated.(*App)
	if result.screen != ScreenLogin {
		t.Errorf("expected ScreenLogin after logout, got %d", result.screen)
	}
	if result.controller.CurrentState() != session.StateUnauthenticated {
		t.Error("expected the controller to be logged out")
	}
}

func TestAppPinStatusMessages(t *testing.T) {
	app := newTestApp(true)
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})

	seq := app.nextSeq()
	updated, _ := app.Update(otpRequestedMsg{seq: seq})
	a := updated.(*App)
	if !strings.Contains(a.pinScreen.View(), "OTP sent") {
		t.Error("expected an OTP confirmation on the PIN screen")
	}

	seq = a.nextSeq()
	updated, _ = a.Update(pinSetMsg{seq: seq, err: &client.RejectedError{Status: 400, Message: "invalid OTP"}})
	a = updated.(*App)
	if a.screen != ScreenPin {
		t.Errorf("expected to stay on ScreenPin after a rejected confirmation, got %d", a.screen)
	}
	if !strings.Contains(a.pinScreen.View(), "wrong OTP or password") {
		t.Error("expected a failure status on the PIN screen")
	}
}

func TestFormatTimeSince(t *testing.T) {
	tests := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{"just now", 2 * time.Second, "just now"},
		{"seconds", 30 * time.Second, "s ago"},
		{"minutes", 5 * time.Minute, "m ago"},
		{"hours", 3 * time.Hour, "h ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatTimeSince(time.Now().Add(-tt.ago))
			if !strings.Contains(got, tt.want) {
				t.Errorf("expected %q to contain %q", got, tt.want)
			}
		})
	}
}
