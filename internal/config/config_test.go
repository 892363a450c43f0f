package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Host = "gitea.example.org"
	cfg.KnownServers = []string{"gitea.example.org", "forge.internal"}
	cfg.RefreshSecs = 60
	cfg.CloneRoot = "/tmp/repos"
	cfg.SyncExcludes = []string{"*.log"}

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if loaded.Host != cfg.Host {
		t.Errorf("Host = %q, want %q", loaded.Host, cfg.Host)
	}
	if len(loaded.KnownServers) != 2 || loaded.KnownServers[0] != "gitea.example.org" {
		t.Errorf("KnownServers = %v", loaded.KnownServers)
	}
	if loaded.RefreshSecs != 60 {
		t.Errorf("RefreshSecs = %d, want 60", loaded.RefreshSecs)
	}
	if loaded.CloneRoot != "/tmp/repos" {
		t.Errorf("CloneRoot = %q", loaded.CloneRoot)
	}
	if loaded.InitTime == 0 {
		t.Error("InitTime should be set on first save")
	}
}

func TestSaveUsesRestrictivePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode = %o, want 0600", perm)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadFromMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("host: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Host != "" {
		t.Errorf("Host = %q, want empty", cfg.Host)
	}
	if !cfg.FetchPRs {
		t.Error("FetchPRs should default to true")
	}
	if cfg.RefreshSecs != 300 {
		t.Errorf("RefreshSecs = %d, want 300", cfg.RefreshSecs)
	}
	if cfg.MaxRepos != 50 {
		t.Errorf("MaxRepos = %d, want 50", cfg.MaxRepos)
	}
	if !cfg.CloneEnabled {
		t.Error("CloneEnabled should default to true")
	}
	if cfg.CloneRoot == "" {
		t.Error("CloneRoot should have a default")
	}
}

func TestAddServer(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.AddServer("gitea.example.org") {
		t.Error("first AddServer should report an addition")
	}
	if cfg.AddServer("gitea.example.org") {
		t.Error("duplicate AddServer should report no addition")
	}
	if !cfg.AddServer("forge.internal") {
		t.Error("second distinct AddServer should report an addition")
	}

	want := []string{"gitea.example.org", "forge.internal"}
	if len(cfg.KnownServers) != len(want) {
		t.Fatalf("KnownServers = %v, want %v", cfg.KnownServers, want)
	}
	for i := range want {
		if cfg.KnownServers[i] != want[i] {
			t.Errorf("KnownServers[%d] = %q, want %q", i, cfg.KnownServers[i], want[i])
		}
	}
}

func TestRefreshInterval(t *testing.T) {
	tests := []struct {
		name string
		secs int
		want time.Duration
	}{
		{"configured", 60, time.Minute},
		{"zero falls back to default", 0, 5 * time.Minute},
		{"negative falls back to default", -10, 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{RefreshSecs: tt.secs}
			if got := cfg.RefreshInterval(); got != tt.want {
				t.Errorf("RefreshInterval() = %v, want %v", got, tt.want)
			}
		})
	}
}
