// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/quill-blog/quill/cmd/quill/cli"
)

// commandTimeout bounds the API calls of one-shot commands.
const commandTimeout = 30 * time.Second

func loginCommand() *cli.Command {
	var serverFlag string
	var passwordFile string

	return &cli.Command{
		Name:    "login",
		Summary: "sign in and persist the session",
		Description: "Sign in to the blog server and write the session file.\n" +
			"Later commands pick the credential up from there until logout.",
		Usage: "quill login <username> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("login", pflag.ContinueOnError)
			flags.StringVar(&serverFlag, "server", "", "blog server URL")
			flags.StringVar(&passwordFile, "password-file", "", "read the password from this file instead of prompting")
			return flags
		},
		Examples: []cli.Example{
			{Command: "quill login alice"},
			{Description: "against another server", Command: "quill login alice --server https://blog.example.com"},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: quill login <username>")
			}
			username := args[0]

			logger := cli.NewCommandLogger().With("command", "login")
			store := cli.OpenSession(logger)

			password, err := readSecret(passwordFile, "password: ")
			if err != nil {
				return err
			}

			client, err := cli.Connect(store, serverFlag, logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			auth, err := client.Login(ctx, username, password)
			if err != nil {
				return err
			}

			server := cli.ResolveServer(store, serverFlag)
			if err := store.Login(server, auth.Token, auth.User); err != nil {
				return fmt.Errorf("persisting session: %w", err)
			}

			fmt.Printf("logged in as %s (%s)\n", auth.User.Username, auth.User.Role)
			return nil
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:    "logout",
		Summary: "discard the persisted session",
		Run: func(args []string) error {
			logger := cli.NewCommandLogger().With("command", "logout")
			store := cli.OpenSession(logger)

			if store.CurrentIdentity().IsZero() {
				fmt.Println("not logged in")
				return nil
			}
			if err := store.Logout(); err != nil {
				return fmt.Errorf("removing session: %w", err)
			}
			fmt.Println("logged out")
			return nil
		},
	}
}

func registerCommand() *cli.Command {
	var serverFlag string
	var passwordFile string

	return &cli.Command{
		Name:    "register",
		Summary: "create a new account",
		Usage:   "quill register <username> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("register", pflag.ContinueOnError)
			flags.StringVar(&serverFlag, "server", "", "blog server URL")
			flags.StringVar(&passwordFile, "password-file", "", "read the password from this file instead of prompting")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: quill register <username>")
			}
			username := args[0]

			logger := cli.NewCommandLogger().With("command", "register")
			store := cli.OpenSession(logger)

			password, err := readSecret(passwordFile, "password: ")
			if err != nil {
				return err
			}
			if passwordFile == "" {
				again, err := cli.ReadPassword("repeat password: ")
				if err != nil {
					return err
				}
				if again != password {
					return fmt.Errorf("passwords do not match")
				}
			}

			client, err := cli.Connect(store, serverFlag, logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := client.Register(ctx, username, password); err != nil {
				return err
			}

			fmt.Printf("registered %s; run 'quill login %s' to sign in\n", username, username)
			return nil
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:    "whoami",
		Summary: "show the signed-in identity",
		Run: func(args []string) error {
			logger := cli.NewCommandLogger().With("command", "whoami")
			store := cli.OpenSession(logger)

			identity := store.CurrentIdentity()
			if identity.IsZero() {
				fmt.Println("not logged in")
				return nil
			}
			fmt.Printf("%s (%s) on %s\n", identity.Username, identity.Role, store.Server())
			return nil
		},
	}
}

// readSecret reads a password from the given file, or prompts when the
// path is empty.
func readSecret(path, prompt string) (string, error) {
	if path == "" {
		return cli.ReadPassword(prompt)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading password file: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
