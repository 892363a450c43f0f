package credentials

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

// recordingRegistrar counts RegisterServer calls for assertions.
type recordingRegistrar struct {
	servers []string
	fail    bool
}

func (r *recordingRegistrar) RegisterServer(server string) error {
	if r.fail {
		return errors.New("registrar failure")
	}
	r.servers = append(r.servers, server)
	return nil
}

func TestSetAndGet(t *testing.T) {
	keyring.MockInit()
	store := NewStore(nil)

	if err := store.Set("gitea.example.org", "tok-123", "bob"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	cred, err := store.Get("gitea.example.org")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cred.Token != "tok-123" || cred.Username != "bob" || cred.Server != "gitea.example.org" {
		t.Errorf("Get = %+v, want token tok-123 / user bob", cred)
	}
}

func TestSetWithoutUsername(t *testing.T) {
	keyring.MockInit()
	store := NewStore(nil)

	if err := store.Set("gitea.example.org", "tok-123", ""); err != nil {
		t.Fatalf("Set: %v", err)
	}

	cred, err := store.Get("gitea.example.org")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cred.Username != "" {
		t.Errorf("Username = %q, want empty", cred.Username)
	}
}

func TestGetMissingReturnsErrNotFound(t *testing.T) {
	keyring.MockInit()
	store := NewStore(nil)

	_, err := store.Get("nowhere.example.org")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get error = %v, want ErrNotFound", err)
	}
}

func TestValidation(t *testing.T) {
	keyring.MockInit()
	store := NewStore(nil)

	tests := []struct {
		name string
		call func() error
	}{
		{"set empty server", func() error { return store.Set("", "tok", "") }},
		{"set empty token", func() error { return store.Set("gitea.example.org", "   ", "") }},
		{"get empty server", func() error { _, err := store.Get(""); return err }},
		{"delete empty server", func() error { return store.Delete("") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestGetPrefersCacheOverVault(t *testing.T) {
	keyring.MockInit()
	store := NewStore(nil)

	if err := store.Set("gitea.example.org", "tok-123", ""); err != nil {
		t.Fatal(err)
	}

	// Remove the vault entry behind the store's back; the cached copy
	// must still satisfy the lookup.
	if err := keyring.Delete(credentialService, "gitea.example.org"); err != nil {
		t.Fatal(err)
	}

	cred, err := store.Get("gitea.example.org")
	if err != nil {
		t.Fatalf("Get after vault wipe: %v", err)
	}
	if cred.Token != "tok-123" {
		t.Errorf("Token = %q, want tok-123", cred.Token)
	}
}

func TestDelete(t *testing.T) {
	keyring.MockInit()
	store := NewStore(nil)

	if err := store.Set("gitea.example.org", "tok-123", ""); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete("gitea.example.org"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if store.Has("gitea.example.org") {
		t.Error("Has = true after Delete")
	}
	if _, err := store.Get("gitea.example.org"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete = %v, want ErrNotFound", err)
	}

	// Deleting an absent credential is not an error
	if err := store.Delete("gitea.example.org"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestSetRegistersServerOnce(t *testing.T) {
	keyring.MockInit()
	registrar := &recordingRegistrar{}
	store := NewStore(registrar)

	if err := store.Set("gitea.example.org", "tok-123", ""); err != nil {
		t.Fatal(err)
	}
	if len(registrar.servers) != 1 || registrar.servers[0] != "gitea.example.org" {
		t.Errorf("registered servers = %v, want [gitea.example.org]", registrar.servers)
	}
}

func TestSetSurfacesRegistrarFailure(t *testing.T) {
	keyring.MockInit()
	store := NewStore(&recordingRegistrar{fail: true})

	err := store.Set("gitea.example.org", "tok-123", "")
	if err == nil {
		t.Fatal("expected error from failing registrar")
	}

	// The token itself was still stored
	if !store.Has("gitea.example.org") {
		t.Error("token should be stored even when the registrar fails")
	}
}

func TestHas(t *testing.T) {
	keyring.MockInit()
	store := NewStore(nil)

	if store.Has("gitea.example.org") {
		t.Error("Has = true before Set")
	}
	if err := store.Set("gitea.example.org", "tok-123", ""); err != nil {
		t.Fatal(err)
	}
	if !store.Has("gitea.example.org") {
		t.Error("Has = false after Set")
	}
}
