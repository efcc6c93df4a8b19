// ABOUTME: Session state machine and credential-guarded API orchestration
// ABOUTME: Routes rejected responses to logout, transient failures to retry

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/errgroup"

	"github.com/dtv/mbank-cli/internal/client"
)

// State is the controller's authentication state.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

var (
	// ErrNotAuthenticated is returned by guarded calls when no credential is
	// held; the network is never touched in that case.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionInvalid signals that a guarded call was rejected, the
	// credential has been cleared, and the user must log in again.
	ErrSessionInvalid = errors.New("session invalid, login required")
)

// Gateway is the API surface the controller orchestrates.
type Gateway interface {
	Login(ctx context.Context, username, password string) (string, error)
	GetProfile(ctx context.Context, token string) (*client.User, error)
	ListAccounts(ctx context.Context, token string) ([]client.Account, error)
	SubmitTransfer(ctx context.Context, token string, req client.TransferRequest) (*client.TransferResult, error)
	RequestPinOtp(ctx context.Context, token string) (*client.Acknowledgement, error)
	SetPin(ctx context.Context, token, password, otp, newPin string) (*client.Acknowledgement, error)
}

// TokenStore is the durable credential slot the controller owns.
type TokenStore interface {
	Save(token string) error
	Load() (string, bool, error)
	Clear() error
}

// Controller decides whether the user is authenticated, attaches the
// credential to guarded calls, and interprets their failures. A stored
// token means "believed valid" until a call proves otherwise.
type Controller struct {
	gateway Gateway
	store   TokenStore
	logger  *slog.Logger

	mu    sync.Mutex
	token string
	state State
}

// NewController seeds the state machine from the token store once; the
// credential is not verified against the server until the first guarded call.
func NewController(gateway Gateway, store TokenStore, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		gateway: gateway,
		store:   store,
		logger:  logger,
		state:   StateUnauthenticated,
	}

	token, ok, err := store.Load()
	if err != nil {
		logger.Warn("failed to load stored credential, starting logged out", "error", err)
		return c
	}
	if ok {
		c.token = token
		c.state = StateAuthenticated
	}
	return c
}

// CurrentState returns the routing state for the presentation layer.
func (c *Controller) CurrentState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Login authenticates against the backend and stores the credential.
// A rejected login leaves the controller unchanged and nothing stored.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	token, err := c.gateway.Login(ctx, username, password)
	if err != nil {
		return err
	}

	if err := c.store.Save(token); err != nil {
		return fmt.Errorf("login succeeded but credential could not be stored: %w", err)
	}

	c.mu.Lock()
	c.token = token
	c.state = StateAuthenticated
	c.mu.Unlock()

	c.logger.Info("logged in", "username", username)
	return nil
}

// Logout clears the credential and returns to unauthenticated.
func (c *Controller) Logout() error {
	c.mu.Lock()
	c.token = ""
	c.state = StateUnauthenticated
	c.mu.Unlock()

	c.logger.Info("logged out")
	return c.store.Clear()
}

// guarded runs one credential-bearing call. A rejected response is taken
// as evidence the session is dead: credential cleared, state flipped, the
// error wrapped in ErrSessionInvalid. Unreachable leaves state untouched.
func (c *Controller) guarded(ctx context.Context, call func(token string) error) error {
	return c.guardedWith(ctx, call, false)
}

// guardedKeepSession runs a credential-bearing call whose rejection does
// not condemn the session. The PIN confirm step uses it: a wrong OTP or
// password is an error to show, not a reason to log the user out.
func (c *Controller) guardedKeepSession(ctx context.Context, call func(token string) error) error {
	return c.guardedWith(ctx, call, true)
}

func (c *Controller) guardedWith(ctx context.Context, call func(token string) error, keepSession bool) error {
	c.mu.Lock()
	if c.state != StateAuthenticated {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	token := c.token
	c.mu.Unlock()

	err := call(token)
	if err == nil {
		return nil
	}

	if client.IsRejected(err) && !keepSession {
		c.invalidate(token)
		return fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}
	return err
}

// invalidate clears the credential that a rejected call was made with.
// If the session changed while the call was in flight the result is stale
// and must not touch the newer credential.
func (c *Controller) invalidate(usedToken string) {
	c.mu.Lock()
	if c.state != StateAuthenticated || c.token != usedToken {
		c.mu.Unlock()
		return
	}
	c.token = ""
	c.state = StateUnauthenticated
	c.mu.Unlock()

	c.logger.Info("session invalidated by rejected call")
	if err := c.store.Clear(); err != nil {
		c.logger.Warn("failed to clear stored credential", "error", err)
	}
}

// Profile fetches the authenticated user's identity.
func (c *Controller) Profile(ctx context.Context) (*client.User, error) {
	var user *client.User
	err := c.guarded(ctx, func(token string) error {
		var callErr error
		user, callErr = c.gateway.GetProfile(ctx, token)
		return callErr
	})
	return user, err
}

// Accounts fetches the account summaries in server order.
func (c *Controller) Accounts(ctx context.Context) ([]client.Account, error) {
	var accounts []client.Account
	err := c.guarded(ctx, func(token string) error {
		var callErr error
		accounts, callErr = c.gateway.ListAccounts(ctx, token)
		return callErr
	})
	return accounts, err
}

// SubmitTransfer performs a transfer with the stored credential.
func (c *Controller) SubmitTransfer(ctx context.Context, req client.TransferRequest) (*client.TransferResult, error) {
	var result *client.TransferResult
	err := c.guarded(ctx, func(token string) error {
		var callErr error
		result, callErr = c.gateway.SubmitTransfer(ctx, token, req)
		return callErr
	})
	return result, err
}

// RequestPinOtp asks the backend to email an OTP for PIN setup.
func (c *Controller) RequestPinOtp(ctx context.Context) (*client.Acknowledgement, error) {
	var ack *client.Acknowledgement
	err := c.guarded(ctx, func(token string) error {
		var callErr error
		ack, callErr = c.gateway.RequestPinOtp(ctx, token)
		return callErr
	})
	return ack, err
}

// SetPin confirms the new PIN with password and OTP. A wrong OTP or
// password keeps the session alive.
func (c *Controller) SetPin(ctx context.Context, password, otp, newPin string) (*client.Acknowledgement, error) {
	var ack *client.Acknowledgement
	err := c.guardedKeepSession(ctx, func(token string) error {
		var callErr error
		ack, callErr = c.gateway.SetPin(ctx, token, password, otp, newPin)
		return callErr
	})
	return ack, err
}

// Overview bundles the data the home screen shows.
type Overview struct {
	User     *client.User
	Accounts []client.Account
}

// Primary returns the primary account: index 0 of the server's response
// order, a client policy rather than a server guarantee.
func (o *Overview) Primary() (client.Account, bool) {
	if o == nil || len(o.Accounts) == 0 {
		return client.Account{}, false
	}
	return o.Accounts[0], true
}

// FetchOverview fetches profile and accounts concurrently; the two calls
// are independent and unordered relative to each other.
func (c *Controller) FetchOverview(ctx context.Context) (*Overview, error) {
	ov := &Overview{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		user, err := c.Profile(gctx)
		if err != nil {
			return err
		}
		ov.User = user
		return nil
	})
	g.Go(func() error {
		accounts, err := c.Accounts(gctx)
		if err != nil {
			return err
		}
		ov.Accounts = accounts
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ov, nil
}

// Snapshot describes the locally held session for display. When the token
// decodes as a JWT its subject and expiry are included, unverified and
// advisory only; routing state never depends on claims, only on presence.
type Snapshot struct {
	State     State
	Subject   string
	ExpiresAt time.Time
}

// Snapshot returns the current session snapshot.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	token := c.token
	state := c.state
	c.mu.Unlock()

	snap := Snapshot{State: state}
	if token == "" {
		return snap
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return snap
	}
	snap.Subject = claims.Subject
	if claims.ExpiresAt != nil {
		snap.ExpiresAt = claims.ExpiresAt.Time
	}
	return snap
}
