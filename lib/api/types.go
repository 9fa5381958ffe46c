// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"time"

	"github.com/quill-blog/quill/lib/session"
)

// Post is a blog post as the server returns it. The client's copy is a
// view-session cache, never authoritative: deletes patch the local
// collection after the server acknowledges, creates and edits re-fetch.
type Post struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content"`
	Author      string    `json:"author,omitempty"`
	Image       string    `json:"image,omitempty"`
	Weight      int       `json:"weight"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Tags        []Tag     `json:"tags,omitempty"`
}

// TagNames returns the post's tag names in server order.
func (post Post) TagNames() []string {
	names := make([]string, len(post.Tags))
	for i, tag := range post.Tags {
		names[i] = tag.Name
	}
	return names
}

// Tag labels a post. Tags are created server-side on first use.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PostDraft is the request body for creating or editing a post. Tags
// are plain names; the server resolves them to Tag rows.
type PostDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Content     string   `json:"content"`
	Image       string   `json:"image,omitempty"`
	Weight      int      `json:"weight"`
	Tags        []string `json:"tags"`
}

// AuthResponse is the server's reply to a successful login.
type AuthResponse struct {
	Token string           `json:"token"`
	User  session.Identity `json:"user"`
}

// User is a row in the admin user listing. Same shape as
// session.Identity; aliased so call sites read naturally.
type User = session.Identity
