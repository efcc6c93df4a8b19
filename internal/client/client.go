// ABOUTME: HTTP client for the mobile banking API
// ABOUTME: One typed method per endpoint with rejected/unreachable error classification

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds every call; expiry surfaces as an UnreachableError.
const DefaultTimeout = 15 * time.Second

// Client is the API client for the banking backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client with the given base URL.
func New(baseURL string) *Client {
	return NewWithTimeout(baseURL, DefaultTimeout)
}

// NewWithTimeout creates a client with an explicit per-call timeout.
func NewWithTimeout(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// loginRequest matches the backend's LoginRequest schema
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse carries the session token issued on successful login
type loginResponse struct {
	Token string `json:"token"`
}

// User represents the /api/users/me response
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Account represents one entry of the /api/accounts/me response
type Account struct {
	AccountNumber string `json:"account_number,omitempty"`
	Balance       int64  `json:"balance"`
}

// TransferRequest matches the backend's transfer schema
type TransferRequest struct {
	ReceiverAccountNumber string `json:"receiver_account_number"`
	Amount                int64  `json:"amount"`
	PIN                   string `json:"pin"`
}

// TransferResult marks a completed transfer; the call is atomic from the
// client's perspective, there is no partial or pending state.
type TransferResult struct {
	Message string `json:"message,omitempty"`
}

// Acknowledgement is the generic message response of the PIN endpoints
type Acknowledgement struct {
	Message string `json:"message,omitempty"`
}

// errorResponse covers the error body shapes the backend produces
type errorResponse struct {
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (e errorResponse) message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Error
}

// Login calls POST /api/auth/login and returns the session token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", loginRequest{
		Username: username,
		Password: password,
	}, &resp, nil)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

// GetProfile calls GET /api/users/me.
func (c *Client) GetProfile(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/users/me", token, nil, &user, nil); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListAccounts calls GET /api/accounts/me. Order is the server's; callers
// treating the first entry as primary is client policy.
func (c *Client) ListAccounts(ctx context.Context, token string) ([]Account, error) {
	var accounts []Account
	if err := c.do(ctx, http.MethodGet, "/api/accounts/me", token, nil, &accounts, nil); err != nil {
		return nil, err
	}
	return accounts, nil
}

// SubmitTransfer calls POST /api/transactions/transfer. Each submission
// carries a fresh Idempotency-Key so a retried request cannot double-spend.
func (c *Client) SubmitTransfer(ctx context.Context, token string, req TransferRequest) (*TransferResult, error) {
	var result TransferResult
	extra := map[string]string{"Idempotency-Key": uuid.NewString()}
	if err := c.do(ctx, http.MethodPost, "/api/transactions/transfer", token, req, &result, extra); err != nil {
		return nil, err
	}
	return &result, nil
}

// RequestPinOtp calls POST /api/pin/request-otp; the backend emails an OTP.
func (c *Client) RequestPinOtp(ctx context.Context, token string) (*Acknowledgement, error) {
	var ack Acknowledgement
	if err := c.do(ctx, http.MethodPost, "/api/pin/request-otp", token, nil, &ack, nil); err != nil {
		return nil, err
	}
	return &ack, nil
}

// SetPin calls POST /api/pin/set with the password/OTP/new-PIN triplet.
// The client holds no OTP state; the challenge lives entirely server-side.
func (c *Client) SetPin(ctx context.Context, token, password, otp, newPin string) (*Acknowledgement, error) {
	body := struct {
		Password string `json:"password"`
		Otp      string `json:"otp"`
		NewPin   string `json:"newPin"`
	}{Password: password, Otp: otp, NewPin: newPin}

	var ack Acknowledgement
	if err := c.do(ctx, http.MethodPost, "/api/pin/set", token, body, &ack, nil); err != nil {
		return nil, err
	}
	return &ack, nil
}

// do executes one API call. A non-empty token is attached as a bearer
// authorization header; the gateway does not decide whether one is
// required, callers pass it only where the contract demands it.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any, extraHeaders map[string]string) error {
	var body *bytes.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UnreachableError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.rejection(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &UnreachableError{Op: method + " " + path, Err: fmt.Errorf("invalid response body: %w", err)}
		}
	}
	return nil
}

// rejection turns a non-2xx response into a RejectedError, decoding the
// error body on a best-effort basis. No distinction is made among 4xx/5xx.
func (c *Client) rejection(resp *http.Response) error {
	var errResp errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return &RejectedError{Status: resp.StatusCode}
	}
	return &RejectedError{Status: resp.StatusCode, Message: errResp.message()}
}
