// Package session owns the per-run application state: configuration,
// credential store, API clients and the virtual filesystem. Command
// handlers receive a *Session instead of reading ambient globals.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"forgectl/internal/config"
	"forgectl/internal/credentials"
	"forgectl/internal/gitea"
	"forgectl/internal/localrepo"
	"forgectl/internal/logging"
	"forgectl/internal/vfs"
)

// ErrNotConfigured indicates a missing host or token. It is checked before
// any network call and surfaced as a blocking warning.
var ErrNotConfigured = errors.New("no forge server configured - run `forgectl connect` first")

// Session is the explicit application context for one run.
type Session struct {
	Config *config.Config
	Creds  *credentials.Store
	FS     *vfs.FS
	Local  *localrepo.Manager

	logger  *logging.AppLogger
	clients map[string]*gitea.Client
	active  string
}

// New assembles a session from loaded configuration.
func New(cfg *config.Config, logger *logging.AppLogger) *Session {
	s := &Session{
		Config:  cfg,
		logger:  logger,
		clients: make(map[string]*gitea.Client),
	}
	s.Creds = credentials.NewStore(s)
	s.FS = vfs.New(s.contentsClient, logger)
	s.Local = localrepo.NewManager(cfg.CloneRoot, cfg.SyncExcludes, logger)
	return s
}

// RegisterServer implements credentials.Registrar: it records the server in
// the known-servers list and persists the config.
func (s *Session) RegisterServer(server string) error {
	if !s.Config.AddServer(server) {
		return nil
	}
	return s.Config.Save()
}

// ActiveServer returns the server the session talks to: an explicitly
// connected one, or the configured default host.
func (s *Session) ActiveServer() string {
	if s.active != "" {
		return s.active
	}
	return s.Config.Host
}

// Client returns the API client for a server, building it on first use
// with the stored credential.
func (s *Session) Client(server string) (*gitea.Client, error) {
	server = strings.TrimSpace(server)
	if server == "" {
		return nil, ErrNotConfigured
	}

	if client, ok := s.clients[server]; ok {
		return client, nil
	}

	cred, err := s.Creds.Get(server)
	if err != nil {
		if errors.Is(err, credentials.ErrNotFound) {
			return nil, fmt.Errorf("%w (server %s)", ErrNotConfigured, server)
		}
		return nil, err
	}

	client := gitea.NewClient(server, cred.Token,
		gitea.WithInsecureTLS(s.Config.InsecureTLS),
		gitea.WithLogger(s.logger),
	)
	s.clients[server] = client
	return client, nil
}

// ActiveClient returns the client for the active server.
func (s *Session) ActiveClient() (*gitea.Client, error) {
	return s.Client(s.ActiveServer())
}

// contentsClient adapts Client for the virtual filesystem's factory.
func (s *Session) contentsClient(server string) (vfs.Contents, error) {
	return s.Client(server)
}

// Connect stores a credential for a server, records it for enumeration and
// verifies it by fetching the authenticated user.
func (s *Session) Connect(ctx context.Context, server, token, username string) (gitea.User, error) {
	server = strings.TrimSpace(server)
	if server == "" || strings.TrimSpace(token) == "" {
		return gitea.User{}, ErrNotConfigured
	}

	if err := s.Creds.Set(server, token, username); err != nil {
		return gitea.User{}, err
	}

	// Drop any stale client built from an older token.
	delete(s.clients, server)

	client, err := s.Client(server)
	if err != nil {
		return gitea.User{}, err
	}

	user, err := client.GetCurrentUser(ctx)
	if err != nil {
		return gitea.User{}, fmt.Errorf("token verification failed: %w", err)
	}

	s.active = server
	if s.Config.Host == "" {
		s.Config.Host = server
		if err := s.Config.Save(); err != nil {
			s.logger.Warn("Connected but failed to persist default host", "error", err)
		}
	}

	s.logger.Info("Connected to forge", "server", server, "user", user.Login)
	return user, nil
}

// Disconnect deletes the stored credential, drops the cached client and
// clears the virtual filesystem cache for the server. The known-servers
// list is append-only and keeps the entry.
func (s *Session) Disconnect(server string) error {
	if err := s.Creds.Delete(server); err != nil {
		return err
	}
	delete(s.clients, server)
	s.FS.ClearServerCache(server)
	if s.active == server {
		s.active = ""
	}
	s.logger.Info("Disconnected from forge", "server", server)
	return nil
}
