// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/quill-blog/quill/cmd/quill/cli"
	"github.com/quill-blog/quill/lib/api"
	"github.com/quill-blog/quill/lib/postui"
)

func usersCommand() *cli.Command {
	return &cli.Command{
		Name:    "users",
		Summary: "manage user roles (admin only)",
		Subcommands: []*cli.Command{
			usersListCommand(),
			usersPromoteCommand(),
			usersDemoteCommand(),
		},
	}
}

func usersListCommand() *cli.Command {
	var serverFlag string
	var jsonFlag bool

	return &cli.Command{
		Name:    "list",
		Summary: "list all registered users",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flags.StringVar(&serverFlag, "server", "", "blog server URL")
			flags.BoolVar(&jsonFlag, "json", false, "print the raw user objects as JSON")
			return flags
		},
		Run: func(args []string) error {
			logger := cli.NewCommandLogger().With("command", "users/list")
			store := cli.OpenSession(logger)
			_, apiSession, _, err := cli.ConnectAuthenticated(store, serverFlag, logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			users, err := apiSession.ListUsers(ctx)
			if err != nil {
				return err
			}

			if jsonFlag {
				return cli.PrintJSON(os.Stdout, users)
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tROLE\tCREATED")
			for _, user := range users {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
					user.ID, user.Username, user.Role, user.CreatedAt.Format("2006-01-02"))
			}
			return tw.Flush()
		},
	}
}

func usersPromoteCommand() *cli.Command {
	var serverFlag string
	var yesFlag bool

	return &cli.Command{
		Name:    "promote",
		Summary: "grant the admin role",
		Usage:   "quill users promote <id> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("promote", pflag.ContinueOnError)
			flags.StringVar(&serverFlag, "server", "", "blog server URL")
			flags.BoolVar(&yesFlag, "yes", false, "skip the confirmation prompt")
			return flags
		},
		Run: func(args []string) error {
			return runRoleChange(args, serverFlag, yesFlag, true)
		},
	}
}

func usersDemoteCommand() *cli.Command {
	var serverFlag string
	var yesFlag bool

	return &cli.Command{
		Name:    "demote",
		Summary: "revoke the admin role",
		Usage:   "quill users demote <id> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("demote", pflag.ContinueOnError)
			flags.StringVar(&serverFlag, "server", "", "blog server URL")
			flags.BoolVar(&yesFlag, "yes", false, "skip the confirmation prompt")
			return flags
		},
		Run: func(args []string) error {
			return runRoleChange(args, serverFlag, yesFlag, false)
		},
	}
}

// runRoleChange shares the promote/demote flow: resolve the target
// from the roster, gate locally the same way the browse view does,
// confirm, then send.
func runRoleChange(args []string, serverFlag string, yes, promote bool) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one user ID argument")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user ID %q", args[0])
	}

	action := "demote"
	if promote {
		action = "promote"
	}
	logger := cli.NewCommandLogger().With("command", "users/"+action)
	store := cli.OpenSession(logger)
	_, apiSession, identity, err := cli.ConnectAuthenticated(store, serverFlag, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	target, err := findUser(ctx, apiSession, id)
	if err != nil {
		return err
	}

	if promote {
		if !postui.CanPromote(identity, *target) {
			return fmt.Errorf("cannot promote %s: already an admin, or you are not one", target.Username)
		}
	} else {
		if !postui.CanDemote(identity, *target) {
			return fmt.Errorf("cannot demote %s: only the superadmin may demote other admins", target.Username)
		}
	}

	if !yes && !cli.Confirm(fmt.Sprintf("%s %s (%s)?", action, target.Username, target.Role)) {
		fmt.Println("aborted")
		return nil
	}

	var updated *api.User
	if promote {
		updated, err = apiSession.PromoteUser(ctx, id)
	} else {
		updated, err = apiSession.DemoteUser(ctx, id)
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s is now %s\n", updated.Username, updated.Role)
	return nil
}

func findUser(ctx context.Context, apiSession *api.Session, id int64) (*api.User, error) {
	users, err := apiSession.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if user.ID == id {
			return &user, nil
		}
	}
	return nil, fmt.Errorf("no user with ID %d", id)
}
