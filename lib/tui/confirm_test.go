// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestConfirmModalResolution(t *testing.T) {
	cases := []struct {
		key  string
		want ConfirmResult
	}{
		{"y", ConfirmYes},
		{"Y", ConfirmYes},
		{"enter", ConfirmYes},
		{"n", ConfirmNo},
		{"N", ConfirmNo},
		{"esc", ConfirmNo},
		{"q", ConfirmPending},
		{"d", ConfirmPending},
	}

	modal := NewConfirmModal("Delete this post?", DefaultTheme)
	for _, testCase := range cases {
		if got := modal.Update(keyMsg(testCase.key)); got != testCase.want {
			t.Errorf("key %q: result = %d, want %d", testCase.key, got, testCase.want)
		}
	}
}

func TestConfirmModalRenderCentered(t *testing.T) {
	modal := NewConfirmModal("Delete this post?", DefaultTheme)

	lines, anchorX, anchorY := modal.Render(80, 24)
	if len(lines) == 0 {
		t.Fatal("no overlay lines")
	}
	if anchorX <= 0 || anchorY <= 0 {
		t.Errorf("anchor = (%d, %d), want centered away from origin", anchorX, anchorY)
	}
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "Delete this post?") {
		t.Error("rendered modal does not contain the question")
	}
	if !strings.Contains(joined, "y confirm") {
		t.Error("rendered modal does not contain the footer hint")
	}
}

func TestSpliceOverlayReplacesRegion(t *testing.T) {
	view := strings.Join([]string{
		"aaaaaaaaaa",
		"bbbbbbbbbb",
		"cccccccccc",
	}, "\n")

	result := SpliceOverlay(view, []string{"XX"}, 4, 1)
	lines := strings.Split(result, "\n")

	if lines[0] != "aaaaaaaaaa" || lines[2] != "cccccccccc" {
		t.Error("rows outside the overlay changed")
	}
	if !strings.Contains(lines[1], "XX") {
		t.Errorf("overlay row = %q, missing overlay content", lines[1])
	}
	if !strings.HasPrefix(lines[1], "bbbb") {
		t.Errorf("overlay row = %q, prefix lost", lines[1])
	}
	if !strings.HasSuffix(lines[1], "bbbb") {
		t.Errorf("overlay row = %q, suffix lost", lines[1])
	}
}

func TestSpliceOverlayOutOfBoundsRowsIgnored(t *testing.T) {
	view := "only row"
	result := SpliceOverlay(view, []string{"X", "Y", "Z"}, 0, -1)
	lines := strings.Split(result, "\n")
	if len(lines) != 1 {
		t.Fatalf("line count changed: %d", len(lines))
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	if got := TruncateWithEllipsis("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := TruncateWithEllipsis("a long headline", 7); got != "a long…" {
		t.Errorf("got %q", got)
	}
}
