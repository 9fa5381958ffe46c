// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

// Package session is the single source of truth for "who is logged
// in". The authenticated identity and its bearer token live together in
// a session file (analogous to SSH keys: authenticate once with "quill
// login", then every command loads the session transparently), and an
// in-memory Store exposes the identity to permission checks without any
// I/O on the hot path.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Role values the server assigns to users.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Identity is the authenticated user's public profile, as returned by
// the server's login call.
type Identity struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsZero reports whether no identity is set (logged out).
func (identity Identity) IsZero() bool {
	return identity.ID == 0 && identity.Username == ""
}

// IsAdmin reports whether the identity carries the admin role. False
// for the zero Identity, so a failed session restore degrades to
// ordinary unauthenticated behavior in every permission check.
func (identity Identity) IsAdmin() bool {
	return identity.Role == RoleAdmin
}

// sessionFile is the on-disk shape. The token and identity share one
// file so login and logout stay atomic: a single write creates both, a
// single remove clears both.
type sessionFile struct {
	// Server is the base URL of the blog API this session belongs to.
	Server string `json:"server"`

	// Token is the opaque bearer token proving the identity.
	Token string `json:"token"`

	// User is the authenticated identity.
	User Identity `json:"user"`
}

// DefaultPath returns the session file location. Checks the
// QUILL_SESSION_FILE environment variable first, then falls back to
// $XDG_CONFIG_HOME/quill/session.json or ~/.config/quill/session.json.
func DefaultPath() string {
	if envPath := os.Getenv("QUILL_SESSION_FILE"); envPath != "" {
		return envPath
	}

	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			// Fallback — this should rarely happen.
			return filepath.Join("/tmp", "quill-session.json")
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "quill", "session.json")
}

// Store holds the current identity in memory and persists it (with the
// token) to the session file. Mutations are synchronous; readers
// observe the new value on the next call.
type Store struct {
	path     string
	identity Identity
	server   string
}

// NewStore creates a Store bound to the given session file path. No
// I/O happens until Load, Login, or Logout.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the session file path this store reads and writes.
func (store *Store) Path() string { return store.path }

// Load restores the identity (and server URL) from the session file.
// A missing file means logged out and is not an error. A corrupt or
// partial file also degrades to logged out, with the parse failure
// returned so callers can mention it; the store is still usable.
//
// Only the identity is restored here. The token is read independently
// by Token() when the API gateway builds request headers — the two
// reads are deliberately uncoupled, and a half-written file yields an
// identity with no credential rather than a crash.
func (store *Store) Load() error {
	store.identity = Identity{}
	store.server = ""

	data, err := os.ReadFile(store.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading session file %s: %w", store.path, err)
	}

	var file sessionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing session file %s: %w", store.path, err)
	}

	store.identity = file.User
	store.server = file.Server
	return nil
}

// Login persists the session file and then sets the in-memory
// identity. The write happens first, so there is no window where the
// identity is visible but the token is not retrievable. The file is
// written with mode 0600 (owner-only) since it contains the token; the
// parent directory is created with mode 0700 if needed.
func (store *Store) Login(server, token string, identity Identity) error {
	data, err := json.MarshalIndent(sessionFile{
		Server: server,
		Token:  token,
		User:   identity,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	data = append(data, '\n')

	directory := filepath.Dir(store.path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return fmt.Errorf("creating session directory %s: %w", directory, err)
	}
	if err := os.WriteFile(store.path, data, 0600); err != nil {
		return fmt.Errorf("writing session file %s: %w", store.path, err)
	}

	store.identity = identity
	store.server = server
	return nil
}

// Logout removes the session file and clears the in-memory identity.
// Safe to call when already logged out.
func (store *Store) Logout() error {
	store.identity = Identity{}
	store.server = ""

	if err := os.Remove(store.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file %s: %w", store.path, err)
	}
	return nil
}

// CurrentIdentity returns the in-memory identity, or the zero Identity
// when logged out. Never does I/O.
func (store *Store) CurrentIdentity() Identity {
	return store.identity
}

// Server returns the API base URL recorded at login, or empty when
// logged out.
func (store *Store) Server() string {
	return store.server
}

// Token reads the bearer token from the session file. This is the API
// gateway's header-construction read: independent of Load, so the
// in-memory identity and the credential never have to be consistent
// with each other. Any failure (missing file, corrupt JSON) returns
// the empty string, which the gateway treats as "attach no
// Authorization header".
func (store *Store) Token() string {
	data, err := os.ReadFile(store.path)
	if err != nil {
		return ""
	}
	var file sessionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return ""
	}
	return file.Token
}
