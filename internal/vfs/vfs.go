// Package vfs exposes remote forge repositories as a browsable, read-only
// filesystem named by gitea:// URIs.
//
// The adapter implements the stdlib io/fs contract (fs.FS, fs.ReadDirFS,
// fs.ReadFileFS, fs.StatFS) over full URI strings, so callers can reuse
// fs.WalkDir and friends against remote content. There is deliberately no
// mutation path back to the forge through this adapter: writes happen via
// the API client's pull-request/branch operations or through a full local
// clone.
package vfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"forgectl/internal/gitea"
	"forgectl/internal/logging"
	"forgectl/internal/uri"
)

// ErrReadOnly is returned by every mutating operation.
var ErrReadOnly = fmt.Errorf("filesystem is read-only: %w", fs.ErrPermission)

// Contents is the slice of the API client the filesystem needs.
type Contents interface {
	GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
	ListContents(ctx context.Context, owner, repo, path, ref string) ([]gitea.ContentsEntry, error)
	StatContents(ctx context.Context, owner, repo, path, ref string) (gitea.ContentsEntry, error)
}

// ClientFactory builds an authenticated API client for a server hostname.
type ClientFactory func(server string) (Contents, error)

// FS is a read-only filesystem over forge content.
//
// Clients are constructed lazily and memoized per server hostname. File
// reads cache the full decoded byte content keyed by the exact URI string;
// both caches are unbounded and cleared only explicitly, which is
// acceptable for a single session.
type FS struct {
	factory ClientFactory
	clients map[string]Contents
	cache   map[string][]byte
	logger  *logging.AppLogger
}

// New creates a filesystem backed by the given client factory.
func New(factory ClientFactory, logger *logging.AppLogger) *FS {
	return &FS{
		factory: factory,
		clients: make(map[string]Contents),
		cache:   make(map[string][]byte),
		logger:  logger,
	}
}

// client returns the memoized API client for a server, constructing it on
// first use.
func (f *FS) client(server string) (Contents, error) {
	if c, ok := f.clients[server]; ok {
		return c, nil
	}
	c, err := f.factory(server)
	if err != nil {
		return nil, err
	}
	f.clients[server] = c
	return c, nil
}

// ClearCache drops all cached file content.
func (f *FS) ClearCache() {
	f.cache = make(map[string][]byte)
}

// ClearServerCache drops cached content and the memoized client for one
// server. Keys are matched by hostname substring; callers invoke this on
// disconnect.
func (f *FS) ClearServerCache(server string) {
	delete(f.clients, server)
	for key := range f.cache {
		if strings.Contains(key, server) {
			delete(f.cache, key)
		}
	}
}

// notFound maps an underlying failure to a generic not-found error.
// Information about the cause is dropped at this boundary.
func notFound(op, name string) error {
	return &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
}

// ReadFile reads and caches the full content of the file named by a
// gitea:// URI. Repeated reads of the identical URI return the cached
// bytes without a network round-trip.
func (f *FS) ReadFile(name string) ([]byte, error) {
	addr, err := uri.Parse(name)
	if err != nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}

	if content, ok := f.cache[name]; ok {
		if f.logger != nil {
			f.logger.Debug("Serving file from cache", "uri", name)
		}
		return content, nil
	}

	client, err := f.client(addr.Server)
	if err != nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}

	content, err := client.GetFileContent(context.Background(), addr.Owner, addr.Repo, addr.Path, addr.Ref)
	if err != nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}

	f.cache[name] = content
	return content, nil
}

// ReadDir lists one directory level named by a gitea:// URI.
func (f *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	addr, err := uri.Parse(name)
	if err != nil {
		return nil, notFound("readdir", name)
	}

	client, err := f.client(addr.Server)
	if err != nil {
		return nil, notFound("readdir", name)
	}

	entries, err := client.ListContents(context.Background(), addr.Owner, addr.Repo, addr.Path, addr.Ref)
	if err != nil {
		return nil, notFound("readdir", name)
	}

	dirEntries := make([]fs.DirEntry, 0, len(entries))
	for _, entry := range entries {
		dirEntries = append(dirEntries, remoteDirEntry{entry})
	}
	return dirEntries, nil
}

// Stat fetches metadata for the entry named by a gitea:// URI.
// The repository root is reported as a directory without a network call.
func (f *FS) Stat(name string) (fs.FileInfo, error) {
	addr, err := uri.Parse(name)
	if err != nil {
		return nil, notFound("stat", name)
	}

	if addr.Path == "" {
		return remoteFileInfo{name: addr.Repo, dir: true}, nil
	}

	client, err := f.client(addr.Server)
	if err != nil {
		return nil, notFound("stat", name)
	}

	entry, err := client.StatContents(context.Background(), addr.Owner, addr.Repo, addr.Path, addr.Ref)
	if err != nil {
		return nil, notFound("stat", name)
	}

	return remoteFileInfo{name: entry.Name, size: entry.Size, dir: entry.IsDir()}, nil
}

// Open opens the file or directory named by a gitea:// URI.
func (f *FS) Open(name string) (fs.File, error) {
	info, err := f.Stat(name)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return &remoteDir{fsys: f, name: name, info: info}, nil
	}

	content, err := f.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return &remoteFile{
		reader: bytes.NewReader(content),
		info:   remoteFileInfo{name: info.Name(), size: int64(len(content))},
	}, nil
}

// WriteFile always fails: the filesystem is read-only.
func (f *FS) WriteFile(name string, _ []byte) error {
	return &fs.PathError{Op: "write", Path: name, Err: ErrReadOnly}
}

// Remove always fails: the filesystem is read-only.
func (f *FS) Remove(name string) error {
	return &fs.PathError{Op: "remove", Path: name, Err: ErrReadOnly}
}

// Rename always fails: the filesystem is read-only.
func (f *FS) Rename(oldname, _ string) error {
	return &fs.PathError{Op: "rename", Path: oldname, Err: ErrReadOnly}
}

// Mkdir always fails: the filesystem is read-only.
func (f *FS) Mkdir(name string) error {
	return &fs.PathError{Op: "mkdir", Path: name, Err: ErrReadOnly}
}

// Watch is a deliberate no-op: remote content cannot push change
// notifications. The returned closer does nothing.
func (f *FS) Watch(string) io.Closer {
	return noopCloser{}
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }

// remoteFileInfo implements fs.FileInfo for remote entries.
type remoteFileInfo struct {
	name string
	size int64
	dir  bool
}

func (i remoteFileInfo) Name() string { return path.Base(i.name) }
func (i remoteFileInfo) Size() int64  { return i.size }
func (i remoteFileInfo) Mode() fs.FileMode {
	if i.dir {
		return fs.ModeDir | 0o555
	}
	return 0o444
}
func (i remoteFileInfo) ModTime() time.Time { return time.Time{} }
func (i remoteFileInfo) IsDir() bool        { return i.dir }
func (i remoteFileInfo) Sys() any           { return nil }

// remoteDirEntry implements fs.DirEntry for a contents listing entry.
type remoteDirEntry struct {
	entry gitea.ContentsEntry
}

func (d remoteDirEntry) Name() string { return d.entry.Name }
func (d remoteDirEntry) IsDir() bool  { return d.entry.IsDir() }
func (d remoteDirEntry) Type() fs.FileMode {
	if d.entry.IsDir() {
		return fs.ModeDir
	}
	return 0
}
func (d remoteDirEntry) Info() (fs.FileInfo, error) {
	return remoteFileInfo{name: d.entry.Name, size: d.entry.Size, dir: d.entry.IsDir()}, nil
}

// remoteFile is an open read-only file handle.
type remoteFile struct {
	reader *bytes.Reader
	info   remoteFileInfo
}

func (f *remoteFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *remoteFile) Read(p []byte) (int, error) { return f.reader.Read(p) }
func (f *remoteFile) Close() error               { return nil }

// remoteDir is an open directory handle; ReadDir fetches lazily.
type remoteDir struct {
	fsys    *FS
	name    string
	info    fs.FileInfo
	entries []fs.DirEntry
	offset  int
}

func (d *remoteDir) Stat() (fs.FileInfo, error) { return d.info, nil }
func (d *remoteDir) Close() error               { return nil }

func (d *remoteDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: errors.New("is a directory")}
}

func (d *remoteDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if d.entries == nil {
		entries, err := d.fsys.ReadDir(d.name)
		if err != nil {
			return nil, err
		}
		d.entries = entries
	}

	if n <= 0 {
		remaining := d.entries[d.offset:]
		d.offset = len(d.entries)
		return remaining, nil
	}

	if d.offset >= len(d.entries) {
		return nil, io.EOF
	}
	end := d.offset + n
	if end > len(d.entries) {
		end = len(d.entries)
	}
	page := d.entries[d.offset:end]
	d.offset = end
	return page, nil
}
