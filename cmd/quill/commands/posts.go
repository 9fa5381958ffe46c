// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/quill-blog/quill/cmd/quill/cli"
	"github.com/quill-blog/quill/lib/api"
	"github.com/quill-blog/quill/lib/draft"
	"github.com/quill-blog/quill/lib/postui"
	"github.com/quill-blog/quill/lib/tui"
)

func postsCommand() *cli.Command {
	return &cli.Command{
		Name:    "posts",
		Summary: "list, read, and manage posts",
		Subcommands: []*cli.Command{
			postsListCommand(),
			postsShowCommand(),
			postsCreateCommand(),
			postsEditCommand(),
			postsDeleteCommand(),
		},
	}
}

func postsListCommand() *cli.Command {
	var serverFlag string
	var tagFlag string
	var sortFlag string
	var jsonFlag bool

	return &cli.Command{
		Name:    "list",
		Summary: "list posts",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flags.StringVar(&serverFlag, "server", "", "blog server URL")
			flags.StringVar(&tagFlag, "tag", "", "only posts carrying this tag")
			flags.StringVar(&sortFlag, "sort", "default", "ordering: default, newest, or oldest")
			flags.BoolVar(&jsonFlag, "json", false, "print the raw post objects as JSON")
			return flags
		},
		Examples: []cli.Example{
			{Command: "quill posts list"},
			{Description: "newest go posts", Command: "quill posts list --tag go --sort newest"},
		},
		Run: func(args []string) error {
			sortKey, err := parseSortKey(sortFlag)
			if err != nil {
				return err
			}

			logger := cli.NewCommandLogger().With("command", "posts/list")
			store := cli.OpenSession(logger)
			client, err := cli.Connect(store, serverFlag, logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			var posts []api.Post
			if tagFlag == "" {
				posts, err = client.ListPosts(ctx)
			} else {
				posts, err = client.ListPostsByTag(ctx, tagFlag)
			}
			if err != nil {
				return err
			}

			posts = postui.SortPosts(posts, sortKey)

			if jsonFlag {
				return cli.PrintJSON(os.Stdout, posts)
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tCREATED\tTAGS")
			for _, post := range posts {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
					post.ID,
					post.Title,
					post.Author,
					post.CreatedAt.Format("2006-01-02"),
					strings.Join(post.TagNames(), ","))
			}
			return tw.Flush()
		},
	}
}

func postsShowCommand() *cli.Command {
	var serverFlag string
	var jsonFlag bool
	var rawFlag bool

	return &cli.Command{
		Name:    "show",
		Summary: "print one post",
		Usage:   "quill posts show <id> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("show", pflag.ContinueOnError)
			flags.StringVar(&serverFlag, "server", "", "blog server URL")
			flags.BoolVar(&jsonFlag, "json", false, "print the raw post object as JSON")
			flags.BoolVar(&rawFlag, "raw", false, "print the body as plain markdown instead of rendering")
			return flags
		},
		Run: func(args []string) error {
			id, err := parsePostID(args)
			if err != nil {
				return err
			}

			logger := cli.NewCommandLogger().With("command", "posts/show")
			store := cli.OpenSession(logger)
			client, err := cli.Connect(store, serverFlag, logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			post, err := client.GetPost(ctx, id)
			if err != nil {
				return err
			}

			if jsonFlag {
				return cli.PrintJSON(os.Stdout, post)
			}
			printPost(post, !rawFlag)
			return nil
		},
	}
}

func postsCreateCommand() *cli.Command {
	var serverFlag string
	var draftFlag string

	return &cli.Command{
		Name:    "create",
		Summary: "publish a new post from a draft file",
		Usage:   "quill posts create --draft <file> [flags]",
		Description: "Publish a post described by a JSONC draft file. The draft\n" +
			"names the title, content (inline or via content_file), tags,\n" +
			"and ordering weight. The command prints the post as the server\n" +
			"stored it.",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("create", pflag.ContinueOnError)
			flags.StringVar(&serverFlag, "server", "", "blog server URL")
			flags.StringVar(&draftFlag, "draft", "", "path to the JSONC draft file")
			return flags
		},
		Examples: []cli.Example{
			{Command: "quill posts create --draft post.jsonc"},
		},
		Run: func(args []string) error {
			postDraft, err := loadDraft(draftFlag)
			if err != nil {
				return err
			}

			logger := cli.NewCommandLogger().With("command", "posts/create")
			store := cli.OpenSession(logger)
			client, apiSession, _, err := cli.ConnectAuthenticated(store, serverFlag, logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			created, err := apiSession.CreatePost(ctx, *postDraft)
			if err != nil {
				return err
			}

			// Show the server's stored copy, not the request we sent.
			post, err := client.GetPost(ctx, created.ID)
			if err != nil {
				return err
			}

			fmt.Printf("created post %d\n\n", post.ID)
			printPost(post, false)
			return nil
		},
	}
}

func postsEditCommand() *cli.Command {
	var serverFlag string
	var draftFlag string

	return &cli.Command{
		Name:    "edit",
		Summary: "replace a post's content from a draft file",
		Usage:   "quill posts edit <id> --draft <file> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("edit", pflag.ContinueOnError)
			flags.StringVar(&serverFlag, "server", "", "blog server URL")
			flags.StringVar(&draftFlag, "draft", "", "path to the JSONC draft file")
			return flags
		},
		Run: func(args []string) error {
			id, err := parsePostID(args)
			if err != nil {
				return err
			}
			postDraft, err := loadDraft(draftFlag)
			if err != nil {
				return err
			}

			logger := cli.NewCommandLogger().With("command", "posts/edit")
			store := cli.OpenSession(logger)
			client, apiSession, _, err := cli.ConnectAuthenticated(store, serverFlag, logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if _, err := apiSession.UpdatePost(ctx, id, *postDraft); err != nil {
				return err
			}

			// Show the server's stored copy, not the request we sent.
			post, err := client.GetPost(ctx, id)
			if err != nil {
				return err
			}

			fmt.Printf("updated post %d\n\n", post.ID)
			printPost(post, false)
			return nil
		},
	}
}

func postsDeleteCommand() *cli.Command {
	var serverFlag string
	var yesFlag bool

	return &cli.Command{
		Name:    "delete",
		Summary: "delete a post",
		Usage:   "quill posts delete <id> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("delete", pflag.ContinueOnError)
			flags.StringVar(&serverFlag, "server", "", "blog server URL")
			flags.BoolVar(&yesFlag, "yes", false, "skip the confirmation prompt")
			return flags
		},
		Run: func(args []string) error {
			id, err := parsePostID(args)
			if err != nil {
				return err
			}

			logger := cli.NewCommandLogger().With("command", "posts/delete")
			store := cli.OpenSession(logger)
			client, apiSession, _, err := cli.ConnectAuthenticated(store, serverFlag, logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			// Fetch first so the prompt can name the post, and so a
			// bad ID fails before the confirmation.
			post, err := client.GetPost(ctx, id)
			if err != nil {
				return err
			}

			if !yesFlag && !cli.Confirm(fmt.Sprintf("delete post %d %q?", post.ID, post.Title)) {
				fmt.Println("aborted")
				return nil
			}

			if err := apiSession.DeletePost(ctx, id); err != nil {
				return err
			}
			fmt.Printf("deleted post %d\n", id)
			return nil
		},
	}
}

// parsePostID expects exactly one positional argument, a numeric ID.
func parsePostID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one post ID argument")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid post ID %q", args[0])
	}
	return id, nil
}

func parseSortKey(value string) (postui.SortKey, error) {
	switch postui.SortKey(value) {
	case postui.SortDefault, postui.SortNewest, postui.SortOldest:
		return postui.SortKey(value), nil
	}
	return "", fmt.Errorf("invalid sort %q: want default, newest, or oldest", value)
}

// loadDraft reads and validates the draft named by the --draft flag.
func loadDraft(path string) (*api.PostDraft, error) {
	if path == "" {
		return nil, fmt.Errorf("--draft is required")
	}
	postDraft, err := draft.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := draft.Validate(postDraft); err != nil {
		return nil, err
	}
	return postDraft, nil
}

// printPost writes a post in readable form: header lines, a blank
// line, then the body. With rendered set and stdout on a terminal the
// body is rendered markdown at the terminal width; otherwise it is the
// raw markdown source.
func printPost(post *api.Post, rendered bool) {
	fmt.Printf("title:   %s\n", post.Title)
	fmt.Printf("author:  %s\n", post.Author)
	fmt.Printf("created: %s\n", post.CreatedAt.Format("2006-01-02 15:04"))
	if post.UpdatedAt.After(post.CreatedAt) {
		fmt.Printf("updated: %s\n", post.UpdatedAt.Format("2006-01-02 15:04"))
	}
	if len(post.Tags) > 0 {
		fmt.Printf("tags:    %s\n", strings.Join(post.TagNames(), ", "))
	}
	if post.Description != "" {
		fmt.Printf("about:   %s\n", post.Description)
	}

	body := post.Content
	if rendered && term.IsTerminal(int(os.Stdout.Fd())) {
		width, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || width <= 0 {
			width = 80
		}
		body = postui.RenderMarkdown(post.Content, tui.DefaultTheme, width)
	}
	fmt.Printf("\n%s\n", body)
}
