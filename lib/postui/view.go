// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package postui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/quill-blog/quill/lib/api"
	"github.com/quill-blog/quill/lib/tui"
)

// View renders the full screen: header, body for the active tab,
// footer, then the notice overlay and any pending confirmation modal
// spliced on top.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	header := m.renderHeader()
	footer := m.renderFooter()
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	var body string
	switch {
	case m.focus == FocusDetail:
		body = m.renderDetail(bodyHeight)
	case m.tab == TabUsers:
		body = m.renderUsers(bodyHeight)
	default:
		body = m.renderPostList(bodyHeight)
	}

	view := header + "\n" + padToHeight(body, bodyHeight) + "\n" + footer

	if len(m.liveNotices) > 0 {
		anchorX := m.width - noticeWidth - 1
		if anchorX < 0 {
			anchorX = 0
		}
		view = tui.SpliceOverlay(view, m.renderNotices(), anchorX, 1)
	}

	if m.focus == FocusConfirm {
		lines, anchorX, anchorY := m.confirm.Render(m.width, m.height)
		view = tui.SpliceOverlay(view, lines, anchorX, anchorY)
	}

	return view
}

func (m *Model) renderHeader() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(m.theme.HeaderForeground)
	faint := lipgloss.NewStyle().Foreground(m.theme.FaintText)

	left := titleStyle.Render("quill")
	if m.identity.IsAdmin() {
		left += "  " + m.renderTabBar()
	}
	if m.tagFilter != "" {
		left += "  " + faint.Render("tag:") + lipgloss.NewStyle().
			Foreground(m.theme.TagForeground).Render(m.tagFilter)
	}
	if m.sortKey != SortDefault {
		left += "  " + faint.Render("sort:"+string(m.sortKey))
	}
	if m.loading {
		left += "  " + faint.Render("loading...")
	}

	var right string
	if m.identity.IsZero() {
		right = faint.Render("not signed in")
	} else {
		roleStyle := lipgloss.NewStyle().Foreground(m.theme.RoleColor(m.identity.Role))
		right = m.identity.Username + " " + roleStyle.Render("["+m.identity.Role+"]")
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	line := left + strings.Repeat(" ", gap) + right

	rule := lipgloss.NewStyle().Foreground(m.theme.BorderColor).
		Render(strings.Repeat("─", m.width))
	return line + "\n" + rule
}

func (m *Model) renderTabBar() string {
	active := lipgloss.NewStyle().Bold(true).Foreground(m.theme.SelectedForeground)
	inactive := lipgloss.NewStyle().Foreground(m.theme.FaintText)

	posts := inactive.Render("posts")
	users := inactive.Render("users")
	if m.tab == TabPosts {
		posts = active.Render("posts")
	} else {
		users = active.Render("users")
	}
	return posts + " " + users
}

func (m *Model) renderPostList(height int) string {
	if len(m.visible) == 0 {
		empty := "no posts"
		if m.tagFilter != "" {
			empty = "no posts tagged " + m.tagFilter
		}
		return lipgloss.NewStyle().Foreground(m.theme.FaintText).Render(empty)
	}

	// Each row takes two lines plus a spacer.
	rowHeight := 3
	visibleRows := height / rowHeight
	if visibleRows < 1 {
		visibleRows = 1
	}

	// Scroll the window so the selection stays visible.
	first := 0
	if m.selected >= visibleRows {
		first = m.selected - visibleRows + 1
	}
	last := first + visibleRows
	if last > len(m.visible) {
		last = len(m.visible)
	}

	var rows []string
	for index := first; index < last; index++ {
		rows = append(rows, m.renderPostRow(m.visible[index], index == m.selected))
	}
	return strings.Join(rows, "\n")
}

func (m *Model) renderPostRow(post api.Post, selected bool) string {
	titleStyle := lipgloss.NewStyle().Foreground(m.theme.NormalText).Bold(true)
	metaStyle := lipgloss.NewStyle().Foreground(m.theme.FaintText)
	tagStyle := lipgloss.NewStyle().Foreground(m.theme.TagForeground)

	marker := "  "
	if selected {
		marker = lipgloss.NewStyle().Foreground(m.theme.SelectedForeground).Render("> ")
		titleStyle = titleStyle.Foreground(m.theme.SelectedForeground)
	}

	title := tui.TruncateWithEllipsis(post.Title, m.width-4)
	line1 := marker + titleStyle.Render(title)

	meta := fmt.Sprintf("%s · %s", post.Author, post.CreatedAt.Format("2006-01-02"))
	if len(post.Tags) > 0 {
		meta += " · "
	}
	line2 := "  " + metaStyle.Render(meta)
	if len(post.Tags) > 0 {
		line2 += tagStyle.Render(strings.Join(post.TagNames(), " "))
	}

	if post.Description != "" {
		description := tui.TruncateWithEllipsis(post.Description, m.width-4)
		line2 += "\n  " + metaStyle.Render(description)
	}

	return line1 + "\n" + line2 + "\n"
}

func (m *Model) renderDetail(height int) string {
	post, ok := m.SelectedPost()
	if !ok {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Heading)
	metaStyle := lipgloss.NewStyle().Foreground(m.theme.FaintText)

	var header strings.Builder
	header.WriteString(titleStyle.Render(post.Title) + "\n")
	header.WriteString(metaStyle.Render(fmt.Sprintf("%s · created %s",
		post.Author, post.CreatedAt.Format("2006-01-02 15:04"))))
	if len(post.Tags) > 0 {
		tagStyle := lipgloss.NewStyle().Foreground(m.theme.TagForeground)
		header.WriteString("  " + tagStyle.Render(strings.Join(post.TagNames(), " ")))
	}
	header.WriteString("\n\n")

	body := RenderMarkdown(post.Content, m.theme, m.width-2)
	lines := strings.Split(header.String()+body, "\n")

	// Clamp the scroll so the last page stays full.
	maxScroll := len(lines) - height
	if maxScroll < 0 {
		maxScroll = 0
	}
	if m.detailScroll > maxScroll {
		m.detailScroll = maxScroll
	}
	end := m.detailScroll + height
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[m.detailScroll:end], "\n")
}

func (m *Model) renderUsers(height int) string {
	if len(m.users) == 0 {
		return lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("no users loaded")
	}

	first := 0
	if m.userSelected >= height {
		first = m.userSelected - height + 1
	}
	last := first + height
	if last > len(m.users) {
		last = len(m.users)
	}

	var rows []string
	for index := first; index < last; index++ {
		user := m.users[index]
		marker := "  "
		nameStyle := lipgloss.NewStyle().Foreground(m.theme.NormalText)
		if index == m.userSelected {
			marker = "> "
			nameStyle = nameStyle.Foreground(m.theme.SelectedForeground).Bold(true)
		}
		roleStyle := lipgloss.NewStyle().Foreground(m.theme.RoleColor(user.Role))
		rows = append(rows, fmt.Sprintf("%s%s %s",
			marker,
			nameStyle.Render(fmt.Sprintf("%-24s", tui.TruncateWithEllipsis(user.Username, 24))),
			roleStyle.Render(user.Role)))
	}
	return strings.Join(rows, "\n")
}

func (m *Model) renderFooter() string {
	helpStyle := lipgloss.NewStyle().Foreground(m.theme.HelpText)

	if m.focus == FocusTagInput {
		prompt := lipgloss.NewStyle().Foreground(m.theme.NormalText).
			Render("filter tag: " + m.tagInput + "▌")
		return prompt + "  " + helpStyle.Render("enter apply · esc cancel")
	}

	if m.showHelp {
		return helpStyle.Render(m.fullHelp())
	}

	// The delete hint only appears when the selected post is one the
	// signed-in user may actually delete.
	deletable := false
	if post, ok := m.SelectedPost(); ok {
		deletable = CanModify(m.identity, post)
	}

	var parts []string
	switch {
	case m.focus == FocusDetail:
		parts = []string{"↑/↓ scroll", "esc back"}
		if deletable {
			parts = append(parts, "d delete")
		}
		parts = append(parts, "q quit")
	case m.tab == TabUsers:
		parts = []string{"↑/↓ move", "p promote", "m demote", "tab posts", "q quit"}
	default:
		parts = []string{"enter read", "s sort", "t tag", "r refresh"}
		if deletable {
			parts = append(parts, "d delete")
		}
		parts = append(parts, "? help", "q quit")
	}
	return helpStyle.Render(strings.Join(parts, " · "))
}

func (m *Model) fullHelp() string {
	bindings := []struct{ keys, what string }{
		{"↑/k ↓/j", "move"},
		{"g/G", "top/bottom"},
		{"enter", "read post"},
		{"esc", "back / clear filter"},
		{"s", "cycle sort (default/newest/oldest)"},
		{"t", "filter by tag"},
		{"r", "refresh"},
		{"d", "delete post"},
		{"tab", "posts/users (admin)"},
		{"p/m", "promote/demote (admin)"},
		{"x", "dismiss notice"},
		{"q", "quit"},
	}
	var parts []string
	for _, binding := range bindings {
		parts = append(parts, binding.keys+" "+binding.what)
	}
	return strings.Join(parts, " · ")
}

// noticeWidth is the fixed column width of the notice overlay.
const noticeWidth = 40

// renderNotices renders the live notices as a stack of right-anchored
// single-line badges, newest on top.
func (m *Model) renderNotices() []string {
	var lines []string
	for index, message := range m.liveNotices {
		if index >= 5 {
			break
		}
		badgeStyle := lipgloss.NewStyle().
			Foreground(m.theme.SeverityColor(message.Severity)).
			Background(m.theme.ModalBackground)
		text := tui.TruncateWithEllipsis(" "+message.Text+" ", noticeWidth)
		pad := noticeWidth - lipgloss.Width(text)
		if pad > 0 {
			text += strings.Repeat(" ", pad)
		}
		lines = append(lines, badgeStyle.Render(text))
	}
	return lines
}

// padToHeight pads content with blank lines so the footer lands on the
// last row.
func padToHeight(content string, height int) string {
	lines := strings.Count(content, "\n") + 1
	if lines >= height {
		return content
	}
	return content + strings.Repeat("\n", height-lines)
}
