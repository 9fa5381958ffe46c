// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates the structured logger for CLI commands.
// When stderr is a terminal it uses the text handler for readability;
// when piped or redirected it switches to JSON so scripts and CI get
// machine-parseable lines.
//
// Commands scope it with command-specific context via With():
//
//	logger := cli.NewCommandLogger().With("command", "posts/create")
func NewCommandLogger() *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}
