// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

// Package draft parses and validates post-draft files for "quill posts
// create" and "quill posts edit". Drafts are authored on disk as JSONC
// (JSON extended with comments and trailing commas); the body can be
// inlined in the draft or loaded from a separate markdown file next to
// it.
//
// The typical flow:
//
//  1. ReadFile: JSONC bytes → api.PostDraft (resolving content_file)
//  2. Validate: required fields, checked before any network call
package draft

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/quill-blog/quill/lib/api"
)

// file is the on-disk draft shape. Content and ContentFile are
// mutually exclusive; ContentFile is resolved relative to the draft
// file's directory.
type file struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	ContentFile string   `json:"content_file"`
	Image       string   `json:"image"`
	Weight      int      `json:"weight"`
	Tags        []string `json:"tags"`
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a PostDraft. baseDir resolves a relative
// content_file reference; pass the draft file's directory.
func Parse(data []byte, baseDir string) (*api.PostDraft, error) {
	stripped := jsonc.ToJSON(data)

	var parsed file
	if err := json.Unmarshal(stripped, &parsed); err != nil {
		return nil, fmt.Errorf("parsing draft: %w", err)
	}

	if parsed.Content != "" && parsed.ContentFile != "" {
		return nil, fmt.Errorf("draft sets both content and content_file")
	}

	content := parsed.Content
	if parsed.ContentFile != "" {
		path := parsed.ContentFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading content_file: %w", err)
		}
		content = string(body)
	}

	tags := make([]string, 0, len(parsed.Tags))
	for _, tag := range parsed.Tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed != "" {
			tags = append(tags, trimmed)
		}
	}

	return &api.PostDraft{
		Title:       strings.TrimSpace(parsed.Title),
		Description: parsed.Description,
		Content:     content,
		Image:       parsed.Image,
		Weight:      parsed.Weight,
		Tags:        tags,
	}, nil
}

// ReadFile reads a JSONC draft file from disk and parses it. Returns a
// descriptive error if the file cannot be read or the JSON is
// malformed.
func ReadFile(path string) (*api.PostDraft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	parsed, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return parsed, nil
}

// Validate checks the fields the server requires. Called before
// dispatch so an incomplete draft never costs a network round trip.
func Validate(postDraft *api.PostDraft) error {
	if postDraft.Title == "" {
		return fmt.Errorf("draft is missing a title")
	}
	if postDraft.Content == "" {
		return fmt.Errorf("draft is missing content (set content or content_file)")
	}
	return nil
}
