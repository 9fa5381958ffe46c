// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/quill-blog/quill/cmd/quill/cli"
	"github.com/quill-blog/quill/lib/clock"
	"github.com/quill-blog/quill/lib/notify"
	"github.com/quill-blog/quill/lib/postui"
)

func browseCommand() *cli.Command {
	var serverFlag string

	return &cli.Command{
		Name:    "browse",
		Summary: "browse posts interactively",
		Description: "Open the full-screen post browser. Anyone can read; a\n" +
			"signed-in session unlocks deleting your own posts, and an\n" +
			"admin session adds the user roster tab.",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("browse", pflag.ContinueOnError)
			flags.StringVar(&serverFlag, "server", "", "blog server URL")
			return flags
		},
		Run: func(args []string) error {
			logger := cli.NewCommandLogger().With("command", "browse")
			store := cli.OpenSession(logger)

			client, err := cli.Connect(store, serverFlag, logger)
			if err != nil {
				return err
			}
			apiSession := client.WithToken(store)

			broadcaster := notify.NewBroadcaster(clock.Real())
			model := postui.NewModel(postui.Config{
				Backend:  postui.NewBackend(client, apiSession),
				Identity: store.CurrentIdentity(),
				Notices:  broadcaster,
				Logger:   logger,
			})
			defer model.Close()

			program := tea.NewProgram(model, tea.WithAltScreen())
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("running browse view: %w", err)
			}
			return nil
		},
	}
}
