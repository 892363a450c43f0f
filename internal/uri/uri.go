// Package uri implements the gitea:// addressing scheme used to name
// files and directories on a remote forge.
//
// An address has the form
//
//	gitea://server/owner/repo[/path...][?ref=REF]
//
// where a missing ref query parameter means "HEAD". The codec is
// asymmetric on purpose: parsing an address without a ref yields "HEAD",
// while serializing an address whose ref is "HEAD" omits the parameter,
// keeping default-branch addresses canonical and short.
package uri

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Scheme is the URI scheme for remote forge addresses.
const Scheme = "gitea"

// DefaultRef is the ref used when an address carries no ref parameter.
const DefaultRef = "HEAD"

// ErrMalformed indicates a string that is not a valid forge address.
var ErrMalformed = errors.New("malformed forge address")

// Address identifies a file or directory on a forge server.
// It is an immutable value; construct one per call and discard it.
type Address struct {
	Server string // hostname, e.g. "gitea.example.org"
	Owner  string // repository owner or organization
	Repo   string // repository name
	Path   string // path within the repository, "" for the root
	Ref    string // branch, tag or commit; "HEAD" for the default branch
}

// New builds an Address, applying the DefaultRef when ref is empty.
func New(server, owner, repo, path, ref string) Address {
	if ref == "" {
		ref = DefaultRef
	}
	return Address{
		Server: server,
		Owner:  owner,
		Repo:   repo,
		Path:   strings.Trim(path, "/"),
		Ref:    ref,
	}
}

// Parse decodes a gitea:// URI string into an Address.
//
// Failures are wrapped ErrMalformed errors: wrong scheme, missing host,
// or fewer than two path segments (owner and repo are mandatory).
func Parse(raw string) (Address, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if u.Scheme != Scheme {
		return Address{}, fmt.Errorf("%w: unexpected scheme %q", ErrMalformed, u.Scheme)
	}
	if u.Host == "" {
		return Address{}, fmt.Errorf("%w: missing server host", ErrMalformed)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return Address{}, fmt.Errorf("%w: path must contain owner/repo: %q", ErrMalformed, u.Path)
	}

	ref := u.Query().Get("ref")
	if ref == "" {
		ref = DefaultRef
	}

	return Address{
		Server: u.Host,
		Owner:  segments[0],
		Repo:   segments[1],
		Path:   strings.Join(segments[2:], "/"),
		Ref:    ref,
	}, nil
}

// String serializes the Address back into a gitea:// URI.
// It is the left inverse of Parse for all valid inputs. The ref query
// parameter is omitted when the ref equals DefaultRef.
func (a Address) String() string {
	u := url.URL{
		Scheme: Scheme,
		Host:   a.Server,
		Path:   "/" + a.Owner + "/" + a.Repo,
	}
	if a.Path != "" {
		u.Path += "/" + strings.Trim(a.Path, "/")
	}
	if a.Ref != "" && a.Ref != DefaultRef {
		q := url.Values{}
		q.Set("ref", a.Ref)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// FullName returns the owner/repo pair, e.g. "bob/widgets".
func (a Address) FullName() string {
	return a.Owner + "/" + a.Repo
}
