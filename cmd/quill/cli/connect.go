// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/quill-blog/quill/lib/api"
	"github.com/quill-blog/quill/lib/session"
)

// DefaultServer is used when no --server flag, environment variable,
// or saved session names one.
const DefaultServer = "http://localhost:8080"

// OpenSession loads the persisted session. A missing file is the
// normal logged-out state; a corrupt file is logged and treated the
// same way.
func OpenSession(logger *slog.Logger) *session.Store {
	store := session.NewStore(session.DefaultPath())
	if err := store.Load(); err != nil {
		logger.Warn("session file unreadable, treating as logged out",
			"path", store.Path(), "error", err)
	}
	return store
}

// ResolveServer picks the server URL by precedence: the --server flag,
// then $QUILL_SERVER, then the server recorded at login, then the
// default.
func ResolveServer(store *session.Store, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if fromEnv := os.Getenv("QUILL_SERVER"); fromEnv != "" {
		return fromEnv
	}
	if saved := store.Server(); saved != "" {
		return saved
	}
	return DefaultServer
}

// Connect builds an anonymous API client against the resolved server.
func Connect(store *session.Store, serverFlag string, logger *slog.Logger) (*api.Client, error) {
	client, err := api.NewClient(api.ClientConfig{
		ServerURL: ResolveServer(store, serverFlag),
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting: %w", err)
	}
	return client, nil
}

// ConnectAuthenticated builds the client pair for commands that need a
// signed-in user. The session store doubles as the token source, so
// the request header always reflects the file's current contents.
func ConnectAuthenticated(store *session.Store, serverFlag string, logger *slog.Logger) (*api.Client, *api.Session, session.Identity, error) {
	identity := store.CurrentIdentity()
	if identity.IsZero() {
		return nil, nil, session.Identity{}, fmt.Errorf("not logged in: run 'quill login <username>' first")
	}
	client, err := Connect(store, serverFlag, logger)
	if err != nil {
		return nil, nil, session.Identity{}, err
	}
	return client, client.WithToken(store), identity, nil
}
