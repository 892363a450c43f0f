package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"forgectl/internal/config"
	"forgectl/internal/logging"

	"github.com/zalando/go-keyring"
)

// newTestSession builds a session whose config already knows the given
// server, so connecting does not try to persist anything to disk.
func newTestSession(t *testing.T, server string) *Session {
	t.Helper()
	keyring.MockInit()

	cfg := config.DefaultConfig()
	cfg.Host = server
	if server != "" {
		cfg.KnownServers = []string{server}
	}

	logger, _ := logging.NewTestLogger()
	return New(&cfg, logger)
}

// newStubForge serves the two endpoints a connect round-trip needs.
func newStubForge(t *testing.T, userStatus int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/version":
			fmt.Fprint(w, `{"version":"1.22.0"}`)
		case "/api/v1/user":
			if userStatus != http.StatusOK {
				http.Error(w, "unauthorized", userStatus)
				return
			}
			fmt.Fprint(w, `{"id":1,"login":"bob"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestActiveServerFallsBackToConfiguredHost(t *testing.T) {
	sess := newTestSession(t, "gitea.example.org")

	if got := sess.ActiveServer(); got != "gitea.example.org" {
		t.Errorf("ActiveServer() = %q, want configured host", got)
	}
}

func TestClientRequiresConfiguration(t *testing.T) {
	sess := newTestSession(t, "")

	_, err := sess.Client("")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Client(\"\") = %v, want ErrNotConfigured", err)
	}

	_, err = sess.ActiveClient()
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("ActiveClient without host = %v, want ErrNotConfigured", err)
	}
}

func TestClientMissingTokenReadsAsNotConfigured(t *testing.T) {
	sess := newTestSession(t, "gitea.example.org")

	_, err := sess.Client("gitea.example.org")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Client without stored token = %v, want ErrNotConfigured", err)
	}
}

func TestClientIsMemoized(t *testing.T) {
	sess := newTestSession(t, "gitea.example.org")

	if err := sess.Creds.Set("gitea.example.org", "tok-123", ""); err != nil {
		t.Fatal(err)
	}

	first, err := sess.Client("gitea.example.org")
	if err != nil {
		t.Fatalf("Client: %v", err)
	}
	second, err := sess.Client("gitea.example.org")
	if err != nil {
		t.Fatalf("Client: %v", err)
	}
	if first != second {
		t.Error("repeated Client calls should return the same instance")
	}
}

func TestConnectVerifiesTokenAndActivatesServer(t *testing.T) {
	forge := newStubForge(t, http.StatusOK)
	sess := newTestSession(t, forge.URL)

	user, err := sess.Connect(context.Background(), forge.URL, "tok-123", "")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if user.Login != "bob" {
		t.Errorf("user.Login = %q, want bob", user.Login)
	}
	if sess.ActiveServer() != forge.URL {
		t.Errorf("ActiveServer() = %q, want %q", sess.ActiveServer(), forge.URL)
	}
	if !sess.Creds.Has(forge.URL) {
		t.Error("credential should be stored after Connect")
	}
}

func TestConnectRejectsBadToken(t *testing.T) {
	forge := newStubForge(t, http.StatusUnauthorized)
	sess := newTestSession(t, forge.URL)

	_, err := sess.Connect(context.Background(), forge.URL, "bad-token", "")
	if err == nil {
		t.Fatal("expected verification failure for rejected token")
	}
	if sess.active != "" {
		t.Error("server must not become active when verification fails")
	}
}

func TestConnectValidatesInput(t *testing.T) {
	sess := newTestSession(t, "")

	if _, err := sess.Connect(context.Background(), "", "tok", ""); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Connect with empty server = %v, want ErrNotConfigured", err)
	}
	if _, err := sess.Connect(context.Background(), "gitea.example.org", "  ", ""); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Connect with blank token = %v, want ErrNotConfigured", err)
	}
}

func TestDisconnect(t *testing.T) {
	forge := newStubForge(t, http.StatusOK)
	sess := newTestSession(t, forge.URL)

	if _, err := sess.Connect(context.Background(), forge.URL, "tok-123", ""); err != nil {
		t.Fatal(err)
	}

	if err := sess.Disconnect(forge.URL); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}

	if sess.Creds.Has(forge.URL) {
		t.Error("credential should be gone after Disconnect")
	}
	if sess.active != "" {
		t.Error("active server should be cleared")
	}

	// The known-servers list is append-only and keeps the entry
	if len(sess.Config.KnownServers) != 1 {
		t.Errorf("KnownServers = %v, want the entry retained", sess.Config.KnownServers)
	}
}
