// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package postui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/quill-blog/quill/lib/tui"
)

func renderPlain(t *testing.T, input string, width int) string {
	t.Helper()
	return ansi.Strip(RenderMarkdown(input, tui.DefaultTheme, width))
}

func TestMarkdownSoftBreaksReflow(t *testing.T) {
	// Hard-wrapped source should reflow into one line at a generous
	// width.
	input := "alpha beta\ngamma delta"
	output := renderPlain(t, input, 80)
	if output != "alpha beta gamma delta" {
		t.Fatalf("got %q, want the reflowed paragraph", output)
	}
}

func TestMarkdownWrapsToWidth(t *testing.T) {
	input := "one two three four five six seven eight nine ten"
	output := renderPlain(t, input, 20)
	for _, line := range strings.Split(output, "\n") {
		if len(line) > 20 {
			t.Fatalf("line %q exceeds the wrap width", line)
		}
	}
	if !strings.Contains(output, "\n") {
		t.Fatal("narrow width should force at least one wrap")
	}
}

func TestMarkdownHeadingAndList(t *testing.T) {
	input := "# Title\n\n- first\n- second\n"
	output := renderPlain(t, input, 60)

	if !strings.Contains(output, "Title") {
		t.Fatalf("heading missing from %q", output)
	}
	if !strings.Contains(output, "- first") || !strings.Contains(output, "- second") {
		t.Fatalf("list bullets missing from %q", output)
	}
}

func TestMarkdownBlockquotePrefix(t *testing.T) {
	output := renderPlain(t, "> quoted text", 60)
	if !strings.Contains(output, "│ quoted text") {
		t.Fatalf("blockquote prefix missing from %q", output)
	}
}

func TestMarkdownFencedCodeSurvives(t *testing.T) {
	input := "```go\nfunc main() {}\n```\n"
	output := renderPlain(t, input, 60)
	if !strings.Contains(output, "func main() {}") {
		t.Fatalf("code content missing from %q", output)
	}
}

func TestMarkdownLinkShowsDestination(t *testing.T) {
	output := renderPlain(t, "[docs](https://example.com)", 60)
	if !strings.Contains(output, "docs") || !strings.Contains(output, "(https://example.com)") {
		t.Fatalf("link text or destination missing from %q", output)
	}
}

func TestMarkdownEmptyInput(t *testing.T) {
	if got := RenderMarkdown("", tui.DefaultTheme, 60); got != "" {
		t.Fatalf("empty input rendered %q", got)
	}
}
