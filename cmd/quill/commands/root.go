// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands defines the quill command tree.
package commands

import (
	"github.com/quill-blog/quill/cmd/quill/cli"
)

// Root returns the top-level quill command.
func Root() *cli.Command {
	return &cli.Command{
		Name:    "quill",
		Summary: "terminal client for a Quill blog server",
		Description: "quill reads and writes posts on a Quill blog server.\n" +
			"Listing and reading are open to everyone; creating, editing,\n" +
			"and deleting need a signed-in account. Admins also manage\n" +
			"user roles.",
		Subcommands: []*cli.Command{
			browseCommand(),
			postsCommand(),
			usersCommand(),
			loginCommand(),
			logoutCommand(),
			registerCommand(),
			whoamiCommand(),
		},
		Examples: []cli.Example{
			{Description: "browse posts interactively", Command: "quill browse"},
			{Description: "sign in", Command: "quill login alice"},
			{Description: "publish a post from a draft file", Command: "quill posts create --draft post.jsonc"},
		},
	}
}
