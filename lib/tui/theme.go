// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides the generic terminal UI primitives shared by
// Quill's interactive views: the color theme, rectangular overlay
// splicing, and a yes/no confirmation modal.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/quill-blog/quill/lib/notify"
	"github.com/quill-blog/quill/lib/session"
)

// Theme defines the color palette for Quill's terminal UI. All colors
// use lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Notification severities.
	SeveritySuccess lipgloss.Color
	SeverityError   lipgloss.Color
	SeverityInfo    lipgloss.Color

	// User roles in the admin table.
	RoleAdmin lipgloss.Color
	RoleUser  lipgloss.Color

	// Markdown accents.
	Heading       lipgloss.Color
	Link          lipgloss.Color
	CodeText       lipgloss.Color
	CodeBackground lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
	TagForeground    lipgloss.Color

	// Modal surfaces.
	ModalBackground lipgloss.Color
}

// SeverityColor returns the color for a notification severity. Unknown
// values render as info.
func (theme Theme) SeverityColor(severity notify.Severity) lipgloss.Color {
	switch severity {
	case notify.SeveritySuccess:
		return theme.SeveritySuccess
	case notify.SeverityError:
		return theme.SeverityError
	default:
		return theme.SeverityInfo
	}
}

// RoleColor returns the color for a user role badge.
func (theme Theme) RoleColor(role string) lipgloss.Color {
	if role == session.RoleAdmin {
		return theme.RoleAdmin
	}
	return theme.RoleUser
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	SeveritySuccess: lipgloss.Color("114"), // green
	SeverityError:   lipgloss.Color("196"), // red
	SeverityInfo:    lipgloss.Color("75"),  // blue

	RoleAdmin: lipgloss.Color("114"), // green badge
	RoleUser:  lipgloss.Color("220"), // amber badge

	Heading:        lipgloss.Color("255"),
	Link:           lipgloss.Color("75"),
	CodeText:       lipgloss.Color("252"),
	CodeBackground: lipgloss.Color("237"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
	TagForeground:    lipgloss.Color("141"), // light purple

	ModalBackground: lipgloss.Color("237"),
}
