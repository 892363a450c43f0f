package localrepo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MetadataFileName is the fixed name of the sidecar file dropped into a
// cloned folder to record where it came from.
const MetadataFileName = ".forgectl.json"

// Metadata records the provenance of a cloned folder. It is written after
// a successful clone and read at startup to detect that an open folder
// originated from a given server.
type Metadata struct {
	Server    string    `json:"server"`
	Owner     string    `json:"owner"`
	Repo      string    `json:"repo"`
	Branch    string    `json:"branch"`
	Timestamp time.Time `json:"timestamp"`
}

// WriteMetadata writes the sidecar file at the clone root.
func WriteMetadata(cloneRoot string, meta Metadata) error {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	encoded, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sidecar metadata: %w", err)
	}

	path := filepath.Join(cloneRoot, MetadataFileName)
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("failed to write sidecar metadata: %w", err)
	}
	return nil
}

// ReadMetadata reads and validates the sidecar file at the clone root.
// A present sidecar must carry non-empty owner and repo.
func ReadMetadata(cloneRoot string) (Metadata, error) {
	path := filepath.Join(cloneRoot, MetadataFileName)

	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, err
	}

	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse sidecar metadata: %w", err)
	}

	if meta.Owner == "" || meta.Repo == "" {
		return Metadata{}, fmt.Errorf("sidecar metadata missing owner/repo")
	}
	return meta, nil
}

// HasMetadata reports whether a folder carries a valid sidecar file.
func HasMetadata(cloneRoot string) bool {
	_, err := ReadMetadata(cloneRoot)
	return err == nil
}
