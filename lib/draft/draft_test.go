// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package draft

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quill-blog/quill/lib/api"
)

func TestParseWithComments(t *testing.T) {
	input := `{
	// the headline shown in the list view
	"title": "Profiling Go allocations",
	"description": "Notes from a week of pprof",
	"content": "# Heap\n\nSome findings.",
	"weight": 3,
	"tags": ["go", " profiling ", ""],
}`

	parsed, err := Parse([]byte(input), ".")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if parsed.Title != "Profiling Go allocations" {
		t.Errorf("Title = %q", parsed.Title)
	}
	if parsed.Weight != 3 {
		t.Errorf("Weight = %d", parsed.Weight)
	}
	// Tags are trimmed and empties dropped.
	if len(parsed.Tags) != 2 || parsed.Tags[1] != "profiling" {
		t.Errorf("Tags = %q", parsed.Tags)
	}
}

func TestParseContentFile(t *testing.T) {
	dir := t.TempDir()
	body := "# From a file\n\nbody text\n"
	if err := os.WriteFile(filepath.Join(dir, "body.md"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	draftPath := filepath.Join(dir, "post.jsonc")
	input := `{"title": "t", "content_file": "body.md"}`
	if err := os.WriteFile(draftPath, []byte(input), 0644); err != nil {
		t.Fatal(err)
	}

	parsed, err := ReadFile(draftPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if parsed.Content != body {
		t.Errorf("Content = %q", parsed.Content)
	}
}

func TestParseRejectsBothContentForms(t *testing.T) {
	input := `{"title": "t", "content": "a", "content_file": "b.md"}`
	if _, err := Parse([]byte(input), "."); err == nil {
		t.Error("draft with both content and content_file accepted")
	}
}

func TestParseMissingContentFile(t *testing.T) {
	input := `{"title": "t", "content_file": "nope.md"}`
	_, err := Parse([]byte(input), t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "content_file") {
		t.Errorf("err = %v, want content_file read failure", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		draft   api.PostDraft
		wantErr bool
	}{
		{"complete", api.PostDraft{Title: "t", Content: "c"}, false},
		{"missing title", api.PostDraft{Content: "c"}, true},
		{"missing content", api.PostDraft{Title: "t"}, true},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			err := Validate(&testCase.draft)
			if (err != nil) != testCase.wantErr {
				t.Errorf("Validate = %v, wantErr %v", err, testCase.wantErr)
			}
		})
	}
}
