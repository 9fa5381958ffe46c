// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Session performs the authenticated blog API calls. It holds no token
// itself — the TokenSource is consulted when each request's headers are
// built, so the session file remains the single durable home of the
// credential.
type Session struct {
	client *Client
	tokens TokenSource
}

// Client returns the underlying anonymous client, for the read calls
// that need no credential.
func (s *Session) Client() *Client {
	return s.client
}

// CreatePost creates a post and returns the server's object.
func (s *Session) CreatePost(ctx context.Context, draft PostDraft) (*Post, error) {
	return s.postBody(ctx, http.MethodPost, "/posts", draft, "create post")
}

// UpdatePost replaces the post's content fields and returns the
// server's updated object.
func (s *Session) UpdatePost(ctx context.Context, id int64, draft PostDraft) (*Post, error) {
	return s.postBody(ctx, http.MethodPut, fmt.Sprintf("/posts/%d", id), draft, fmt.Sprintf("edit post %d", id))
}

// DeletePost deletes a post. The server answers 204 with no body.
func (s *Session) DeletePost(ctx context.Context, id int64) error {
	if _, err := s.client.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d", id), s.tokens.Token(), nil); err != nil {
		return fmt.Errorf("api: delete post %d: %w", id, err)
	}
	return nil
}

// ListUsers returns every registered user. Admin only.
func (s *Session) ListUsers(ctx context.Context) ([]User, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/admin/users", s.tokens.Token(), nil)
	if err != nil {
		return nil, fmt.Errorf("api: list users: %w", err)
	}

	var users []User
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, fmt.Errorf("api: parsing users response: %w", err)
	}
	return users, nil
}

// PromoteUser grants the admin role and returns the updated user.
// Admin only.
func (s *Session) PromoteUser(ctx context.Context, id int64) (*User, error) {
	return s.userAction(ctx, id, "promote")
}

// DemoteUser revokes the admin role and returns the updated user.
// Admin only.
func (s *Session) DemoteUser(ctx context.Context, id int64) (*User, error) {
	return s.userAction(ctx, id, "demote")
}

func (s *Session) userAction(ctx context.Context, id int64, action string) (*User, error) {
	body, err := s.client.doRequest(ctx, http.MethodPost, fmt.Sprintf("/admin/users/%d/%s", id, action), s.tokens.Token(), nil)
	if err != nil {
		return nil, fmt.Errorf("api: %s user %d: %w", action, id, err)
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("api: parsing user response: %w", err)
	}
	return &user, nil
}

// postBody sends a JSON body and decodes a Post from the response.
func (s *Session) postBody(ctx context.Context, method, path string, draft PostDraft, operation string) (*Post, error) {
	body, err := s.client.doRequest(ctx, method, path, s.tokens.Token(), draft)
	if err != nil {
		return nil, fmt.Errorf("api: %s: %w", operation, err)
	}

	var post Post
	if err := json.Unmarshal(body, &post); err != nil {
		return nil, fmt.Errorf("api: parsing post response: %w", err)
	}
	return &post, nil
}
