// ABOUTME: Tests for the transfer command
// ABOUTME: Verifies validation exit codes, refresh warnings, and output formats

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dtv/mbank-cli/internal/client"
	"github.com/dtv/mbank-cli/internal/transfer"
)

func TestFormatTransferHuman_WithBalance(t *testing.T) {
	result := &transfer.Result{
		Accounts: []client.Account{{AccountNumber: "111-222", Balance: 4500}},
	}

	output := formatTransferHuman(result)

	if !strings.Contains(output, "Transfer complete") {
		t.Errorf("expected completion message, got: %s", output)
	}
	if !strings.Contains(output, "4500") {
		t.Errorf("expected refreshed balance, got: %s", output)
	}
}

func TestFormatTransferHuman_RefreshFailed(t *testing.T) {
	result := &transfer.Result{RefreshErr: fmt.Errorf("boom")}

	output := formatTransferHuman(result)

	if !strings.Contains(output, "Transfer complete") {
		t.Errorf("expected completion message, got: %s", output)
	}
	if !strings.Contains(output, "stale") {
		t.Errorf("expected a staleness warning, got: %s", output)
	}
}

func TestFormatTransferJSON(t *testing.T) {
	result := &transfer.Result{
		Accounts:   []client.Account{{AccountNumber: "111-222", Balance: 4500}},
		RefreshErr: fmt.Errorf("boom"),
	}

	output := formatTransferJSON(result)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed["status"] != "completed" {
		t.Errorf("expected completed status, got %v", parsed["status"])
	}
	if parsed["refresh_error"] != "boom" {
		t.Errorf("expected refresh_error in JSON, got %v", parsed["refresh_error"])
	}
}

func TestNeedsPinPrompt(t *testing.T) {
	tests := []struct {
		name   string
		to     string
		amount string
		pin    string
		want   bool
	}{
		{"all fields present by flag", "333-444", "500", "123456", false},
		{"pin missing", "333-444", "500", "", true},
		{"receiver missing", "", "500", "", false},
		{"amount missing", "333-444", "", "", false},
		{"everything missing", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := needsPinPrompt(tt.to, tt.amount, tt.pin); got != tt.want {
				t.Errorf("needsPinPrompt(%q, %q, %q) = %v, want %v", tt.to, tt.amount, tt.pin, got, tt.want)
			}
		})
	}
}

func TestRunTransfer_InvalidAmount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for invalid input")
	}))
	defer server.Close()

	dir := useBackend(t, server.URL)
	seedToken(t, dir, "tok-abc")

	var buf bytes.Buffer
	code := runTransfer(context.Background(), &buf, transfer.Input{
		Receiver: "333-444",
		Amount:   "ten",
		PIN:      "123456",
	})

	if code != exitRejected {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(buf.String(), "invalid amount") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestRunTransfer_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/transactions/transfer":
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			if body["receiver_account_number"] != "333-444" {
				t.Errorf("unexpected receiver %v", body["receiver_account_number"])
			}
			json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
		case "/api/accounts/me":
			json.NewEncoder(w).Encode([]client.Account{{AccountNumber: "111-222", Balance: 4500}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	dir := useBackend(t, server.URL)
	seedToken(t, dir, "tok-abc")

	var buf bytes.Buffer
	code := runTransfer(context.Background(), &buf, transfer.Input{
		Receiver: "333-444",
		Amount:   "500",
		PIN:      "123456",
	})

	if code != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "New balance: 4500") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestRunTransfer_RejectedByBackend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "insufficient funds"})
	}))
	defer server.Close()

	dir := useBackend(t, server.URL)
	seedToken(t, dir, "tok-abc")

	var buf bytes.Buffer
	code := runTransfer(context.Background(), &buf, transfer.Input{
		Receiver: "333-444",
		Amount:   "500",
		PIN:      "123456",
	})

	if code != exitRejected {
		t.Errorf("expected exit code 1, got %d", code)
	}
}
