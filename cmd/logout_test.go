// ABOUTME: Tests for the logout command
// ABOUTME: Verifies token removal and logout idempotency

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dtv/mbank-cli/internal/session"
)

func TestRunLogout_ClearsToken(t *testing.T) {
	dir := useBackend(t, "http://127.0.0.1:1")
	seedToken(t, dir, "tok-abc")

	var buf bytes.Buffer
	code := runLogout(&buf)

	if code != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", code, buf.String())
	}
	if _, ok, _ := session.NewStore(dir).Load(); ok {
		t.Error("expected the token to be removed")
	}
}

func TestRunLogout_AlreadyLoggedOut(t *testing.T) {
	useBackend(t, "http://127.0.0.1:1")

	var buf bytes.Buffer
	code := runLogout(&buf)

	if code != exitOK {
		t.Errorf("expected logout to be a no-op when logged out, got exit code %d", code)
	}
	if !strings.Contains(buf.String(), "Logged out") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}
