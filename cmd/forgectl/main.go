// Package main is the entry point for the forgectl CLI.
//
// Startup sequence:
//
// 1. Initialize the logging system
// 2. Create a default configuration on first run
// 3. Load user configuration from disk
// 4. Detect whether the current directory is a tracked clone (sidecar file)
// 5. Build the session and dispatch the requested command
//
// Ctrl-C cancels the active operation (clone in particular) through the
// command context; the cancellation surfaces as "operation cancelled"
// rather than a generic process failure.
package main

import (
	"context"
	"os"
	"os/signal"

	"forgectl/internal/cli"
	"forgectl/internal/config"
	"forgectl/internal/localrepo"
	"forgectl/internal/logging"
	"forgectl/internal/session"
)

func main() {
	appLogger := logging.NewAppLogger()

	if config.IsFirstRun() {
		cfg := config.DefaultConfig()
		if err := cfg.Save(); err != nil {
			appLogger.Error("Failed to write initial configuration", "error", err)
			os.Exit(1)
		}
		appLogger.Info("Created default configuration")
	}

	cfg, err := config.Load()
	if err != nil {
		appLogger.Error("Error loading config", "error", err)
		os.Exit(1)
	}
	appLogger.SetVerbose(cfg.EnableLogs)

	// Provenance detection: an open folder that carries the sidecar file
	// originated from a known forge server.
	if cwd, err := os.Getwd(); err == nil {
		if meta, err := localrepo.ReadMetadata(cwd); err == nil {
			appLogger.Info("Current directory is a tracked clone",
				"server", meta.Server, "repo", meta.Owner+"/"+meta.Repo)
			if cfg.Host == "" {
				cfg.Host = meta.Server
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess := session.New(cfg, appLogger)

	// Eagerly build the default client so a missing or stale token is
	// reported up front instead of on the first command that needs it.
	if cfg.AutoConnect && cfg.Host != "" {
		if _, err := sess.ActiveClient(); err != nil {
			appLogger.Warn("Auto-connect failed", "server", cfg.Host, "error", err)
		}
	}

	root := cli.NewRootCmd(sess)

	if err := root.ExecuteContext(ctx); err != nil {
		appLogger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
