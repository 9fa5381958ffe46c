// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// ConfirmModal is a blocking yes/no gate rendered as a centered
// overlay. Mutating operations (delete, promote, demote) open one
// before dispatching anything to the server; "y"/enter confirms,
// "n"/esc declines.
type ConfirmModal struct {
	// Question is the prompt shown in the modal body.
	Question string

	theme Theme
}

// ConfirmResult is the outcome of a key press routed to the modal.
type ConfirmResult int

const (
	// ConfirmPending means the key did not resolve the modal.
	ConfirmPending ConfirmResult = iota
	// ConfirmYes means the user accepted.
	ConfirmYes
	// ConfirmNo means the user declined or dismissed.
	ConfirmNo
)

// NewConfirmModal creates a modal asking the given question.
func NewConfirmModal(question string, theme Theme) ConfirmModal {
	return ConfirmModal{Question: question, theme: theme}
}

// Update resolves a key press. Only y/enter and n/esc resolve the
// modal; everything else leaves it open.
func (modal ConfirmModal) Update(message tea.KeyMsg) ConfirmResult {
	switch message.String() {
	case "y", "Y", "enter":
		return ConfirmYes
	case "n", "N", "esc":
		return ConfirmNo
	}
	return ConfirmPending
}

// Modal chrome overhead: 2 columns border + 2 columns padding
// horizontal; 2 lines border + 1 footer vertical.
const (
	confirmChromeWidth = 4
	confirmMaxWidth    = 60
)

// Render produces the modal overlay lines and the anchor position
// (top-left corner in screen coordinates) for splicing onto the view.
func (modal ConfirmModal) Render(screenWidth, screenHeight int) ([]string, int, int) {
	innerWidth := ansi.StringWidth(modal.Question)
	if innerWidth > confirmMaxWidth {
		innerWidth = confirmMaxWidth
	}
	if maxInner := screenWidth - confirmChromeWidth; innerWidth > maxInner && maxInner > 0 {
		innerWidth = maxInner
	}

	background := modal.theme.ModalBackground

	questionStyle := lipgloss.NewStyle().
		Foreground(modal.theme.NormalText).
		Background(background).
		Width(innerWidth)

	footerStyle := lipgloss.NewStyle().
		Foreground(modal.theme.FaintText).
		Background(background).
		Width(innerWidth)

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(modal.theme.BorderColor).
		Background(background).
		Padding(0, 1)

	inner := questionStyle.Render(modal.Question) + "\n" + footerStyle.Render("y confirm  n cancel")
	rendered := borderStyle.Render(inner)

	resultLines := strings.Split(rendered, "\n")
	renderedWidth := 0
	if len(resultLines) > 0 {
		renderedWidth = ansi.StringWidth(resultLines[0])
	}

	anchorX := (screenWidth - renderedWidth) / 2
	anchorY := (screenHeight - len(resultLines)) / 2
	if anchorX < 0 {
		anchorX = 0
	}
	if anchorY < 0 {
		anchorY = 0
	}

	return resultLines, anchorX, anchorY
}
