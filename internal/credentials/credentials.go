// Package credentials stores per-server forge tokens in the OS credential
// store, mirrored by an in-memory cache for fast repeated lookups within a
// session. Tokens live until explicitly deleted; there is no expiry.
package credentials

import (
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service name for the OS credential store
	credentialService = "forgectl"
	// Separator between token and username inside a stored secret
	recordSeparator = "\n"
)

// ErrNotFound indicates no credential is stored for the requested server.
var ErrNotFound = keyring.ErrNotFound

// Credential is a token (and optional username) for one forge server.
type Credential struct {
	Server   string
	Token    string
	Username string
}

// Registrar records servers for UI enumeration. Set delegates to it so the
// ordinary (non-secret) settings keep an append-only known-servers list.
type Registrar interface {
	RegisterServer(server string) error
}

// Store handles secure storage and retrieval of per-server credentials.
//
// Get checks the in-memory cache before the vault. Set and Delete write
// through to the vault and keep the cache coherent. No network calls are
// made anywhere in this package.
type Store struct {
	service   string
	cache     map[string]Credential
	registrar Registrar
}

// NewStore creates a credential store. The registrar may be nil, in which
// case the known-servers side effect is skipped.
func NewStore(registrar Registrar) *Store {
	return &Store{
		service:   credentialService,
		cache:     make(map[string]Credential),
		registrar: registrar,
	}
}

// Get retrieves the credential for a server, preferring the session cache.
func (s *Store) Get(server string) (Credential, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		return Credential{}, fmt.Errorf("server cannot be empty")
	}

	if cred, ok := s.cache[server]; ok {
		return cred, nil
	}

	secret, err := keyring.Get(s.service, server)
	if err != nil {
		if err == keyring.ErrNotFound {
			return Credential{}, fmt.Errorf("no token stored for %s: %w", server, ErrNotFound)
		}
		return Credential{}, fmt.Errorf("failed to read credential store: %w", err)
	}

	cred := decodeSecret(server, secret)
	if cred.Token == "" {
		return Credential{}, fmt.Errorf("stored token for %s is empty - reconnect to refresh it", server)
	}

	s.cache[server] = cred
	return cred, nil
}

// Set stores a token (and optional username) for a server and records the
// server in the known-servers list.
func (s *Store) Set(server, token, username string) error {
	server = strings.TrimSpace(server)
	if server == "" {
		return fmt.Errorf("server cannot be empty")
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token cannot be empty")
	}

	cred := Credential{Server: server, Token: token, Username: username}
	if err := keyring.Set(s.service, server, encodeSecret(cred)); err != nil {
		return fmt.Errorf("failed to store token in credential store: %w", err)
	}
	s.cache[server] = cred

	if s.registrar != nil {
		if err := s.registrar.RegisterServer(server); err != nil {
			return fmt.Errorf("token stored but failed to record server: %w", err)
		}
	}
	return nil
}

// Delete removes the stored credential for a server.
// Returns nil if no credential exists.
func (s *Store) Delete(server string) error {
	server = strings.TrimSpace(server)
	if server == "" {
		return fmt.Errorf("server cannot be empty")
	}

	delete(s.cache, server)

	err := keyring.Delete(s.service, server)
	if err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to delete token from credential store: %w", err)
	}
	return nil
}

// Has checks whether a credential is stored without retrieving it.
func (s *Store) Has(server string) bool {
	if _, ok := s.cache[server]; ok {
		return true
	}
	_, err := keyring.Get(s.service, server)
	return err == nil
}

// encodeSecret joins token and username into a single vault entry.
func encodeSecret(cred Credential) string {
	if cred.Username == "" {
		return cred.Token
	}
	return cred.Token + recordSeparator + cred.Username
}

// decodeSecret splits a vault entry back into token and username.
func decodeSecret(server, secret string) Credential {
	token, username, _ := strings.Cut(secret, recordSeparator)
	return Credential{
		Server:   server,
		Token:    strings.TrimSpace(token),
		Username: strings.TrimSpace(username),
	}
}
