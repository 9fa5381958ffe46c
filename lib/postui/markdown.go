// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package postui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/quill-blog/quill/lib/tui"
)

// The goldmark parser configuration never changes and the Parser is
// safe to share, so one instance serves every render.
var (
	markdownParser     goldmark.Markdown
	markdownParserOnce sync.Once
)

func getMarkdownParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParser = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return markdownParser
}

// RenderMarkdown parses a post body and renders it as styled terminal
// text wrapped to the given width. Soft line breaks become spaces so
// hard-wrapped source reflows at any terminal width. Fenced code
// blocks are syntax-highlighted with Chroma.
func RenderMarkdown(input string, theme tui.Theme, width int) string {
	if input == "" {
		return ""
	}
	source := []byte(input)
	document := getMarkdownParser().Parser().Parse(text.NewReader(source))

	// Force the ANSI256 profile: this output always targets a
	// terminal, and auto-detection would strip colors when no TTY is
	// attached (tests, piped output).
	lipRenderer := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(termenv.ANSI256))
	lipRenderer.SetColorProfile(termenv.ANSI256)

	walker := &markdownWalker{
		source:      source,
		theme:       theme,
		width:       width,
		lipRenderer: lipRenderer,
	}
	ast.Walk(document, walker.walk)
	return strings.TrimRight(walker.output.String(), "\n")
}

// markdownWalker walks the goldmark AST directly instead of using the
// renderer interface: paragraph inline content must accumulate in a
// buffer and word-wrap as a unit when the paragraph closes, which the
// streaming NodeRendererFunc callbacks do not accommodate.
type markdownWalker struct {
	source []byte
	theme  tui.Theme
	width  int

	output strings.Builder

	// Inline accumulator, flushed with word-wrap when the containing
	// block closes.
	inline strings.Builder

	// Prefix for continuation lines of nested blocks (blockquotes,
	// list item bodies).
	prefix      string
	prefixWidth int

	// Bullet that replaces the prefix on the next emitted line only.
	pendingBullet string

	// Counters rather than booleans so nested emphasis unwinds
	// correctly.
	boldCount          int
	italicCount        int
	strikethroughCount int

	listStack []listLevel

	lipRenderer *lipgloss.Renderer

	trailingNewlines int
}

type listLevel struct {
	ordered bool
	counter int
	tight   bool
}

func (walker *markdownWalker) newStyle() lipgloss.Style {
	return walker.lipRenderer.NewStyle()
}

func (walker *markdownWalker) contentWidth() int {
	width := walker.width - walker.prefixWidth
	if width < 10 {
		width = 10
	}
	return width
}

func (walker *markdownWalker) pushPrefix(text string, visibleWidth int) {
	walker.prefix += text
	walker.prefixWidth += visibleWidth
}

func (walker *markdownWalker) popPrefix(text string, visibleWidth int) {
	walker.prefix = walker.prefix[:len(walker.prefix)-len(text)]
	walker.prefixWidth -= visibleWidth
}

func (walker *markdownWalker) inTightList() bool {
	if len(walker.listStack) == 0 {
		return false
	}
	return walker.listStack[len(walker.listStack)-1].tight
}

func (walker *markdownWalker) write(s string) {
	if s == "" {
		return
	}
	walker.output.WriteString(s)
	trailing := 0
	allNewlines := true
	for index := len(s) - 1; index >= 0; index-- {
		if s[index] == '\n' {
			trailing++
		} else {
			allNewlines = false
			break
		}
	}
	if allNewlines {
		walker.trailingNewlines += trailing
	} else {
		walker.trailingNewlines = trailing
	}
}

func (walker *markdownWalker) ensureNewline() {
	if walker.trailingNewlines < 1 {
		walker.write("\n")
	}
}

func (walker *markdownWalker) ensureBlankLine() {
	for walker.trailingNewlines < 2 {
		walker.write("\n")
	}
}

// consumePrefix returns the pending bullet (and clears it) if one is
// set, otherwise the regular continuation prefix.
func (walker *markdownWalker) consumePrefix() string {
	if walker.pendingBullet != "" {
		bullet := walker.pendingBullet
		walker.pendingBullet = ""
		return bullet
	}
	return walker.prefix
}

// applyPrefixes prepends the line prefix to every line of content; the
// first line takes the pending bullet when one is set.
func (walker *markdownWalker) applyPrefixes(content string) string {
	lines := strings.Split(content, "\n")
	var result strings.Builder
	for index, line := range lines {
		if index == 0 {
			result.WriteString(walker.consumePrefix())
		} else {
			result.WriteString(walker.prefix)
		}
		result.WriteString(line)
		if index < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

func (walker *markdownWalker) flushInline() string {
	content := walker.inline.String()
	walker.inline.Reset()
	if content == "" {
		return ""
	}
	content = ansi.Wrap(content, walker.contentWidth(), " ,.;-+|")
	return walker.applyPrefixes(content)
}

func (walker *markdownWalker) styledText(content string) string {
	style := walker.newStyle().Foreground(walker.theme.NormalText)
	if walker.boldCount > 0 {
		style = style.Bold(true)
	}
	if walker.italicCount > 0 {
		style = style.Italic(true)
	}
	if walker.strikethroughCount > 0 {
		style = style.Strikethrough(true)
	}
	return style.Render(content)
}

// collectInline renders a node's children into a string, preserving
// the caller's inline buffer and style counters.
func (walker *markdownWalker) collectInline(node ast.Node) string {
	savedInline := walker.inline.String()
	savedBold := walker.boldCount
	savedItalic := walker.italicCount
	savedStrikethrough := walker.strikethroughCount

	walker.inline.Reset()
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		ast.Walk(child, walker.walk)
	}
	result := walker.inline.String()

	walker.inline.Reset()
	walker.inline.WriteString(savedInline)
	walker.boldCount = savedBold
	walker.italicCount = savedItalic
	walker.strikethroughCount = savedStrikethrough
	return result
}

func (walker *markdownWalker) highlightCode(code, language string) string {
	if language == "" {
		return walker.newStyle().Foreground(walker.theme.CodeText).Render(code)
	}
	var buffer strings.Builder
	if err := quick.Highlight(&buffer, code, language, "terminal256", "monokai"); err != nil {
		return walker.newStyle().Foreground(walker.theme.CodeText).Render(code)
	}
	return buffer.String()
}

func (walker *markdownWalker) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node.Kind() {

	case ast.KindDocument:

	case ast.KindParagraph, ast.KindTextBlock:
		if entering {
			walker.inline.Reset()
		} else {
			flushed := walker.flushInline()
			if flushed != "" {
				walker.write(flushed)
				walker.ensureNewline()
				if !walker.inTightList() {
					walker.ensureBlankLine()
				}
			}
		}

	case ast.KindHeading:
		if entering {
			walker.inline.Reset()
		} else {
			walker.leaveHeading(node.(*ast.Heading))
		}

	case ast.KindFencedCodeBlock:
		if entering {
			walker.renderFencedCodeBlock(node.(*ast.FencedCodeBlock))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindCodeBlock:
		if entering {
			walker.renderIndentedCodeBlock(node.(*ast.CodeBlock))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindBlockquote:
		if entering {
			walker.pushPrefix("│ ", 2)
		} else {
			walker.popPrefix("│ ", 2)
			walker.ensureBlankLine()
		}

	case ast.KindList:
		if entering {
			list := node.(*ast.List)
			start := 0
			if list.IsOrdered() {
				start = list.Start
			}
			walker.listStack = append(walker.listStack, listLevel{
				ordered: list.IsOrdered(),
				counter: start,
				tight:   list.IsTight,
			})
		} else {
			walker.listStack = walker.listStack[:len(walker.listStack)-1]
			if !walker.inTightList() {
				walker.ensureBlankLine()
			}
		}

	case ast.KindListItem:
		if entering {
			walker.enterListItem()
		} else {
			walker.leaveListItem()
		}

	case ast.KindThematicBreak:
		if entering {
			rule := strings.Repeat("─", walker.contentWidth())
			ruleStyle := walker.newStyle().Foreground(walker.theme.BorderColor)
			walker.ensureBlankLine()
			walker.write(walker.applyPrefixes(ruleStyle.Render(rule)))
			walker.ensureNewline()
			walker.ensureBlankLine()
		}

	case ast.KindText:
		if entering {
			textNode := node.(*ast.Text)
			walker.inline.WriteString(walker.styledText(string(textNode.Segment.Value(walker.source))))
			if textNode.SoftLineBreak() {
				// Soft breaks become spaces so hard-wrapped source
				// reflows to the terminal width.
				walker.inline.WriteString(" ")
			}
			if textNode.HardLineBreak() {
				walker.inline.WriteString("\n")
			}
		}

	case ast.KindString:
		if entering {
			walker.inline.WriteString(walker.styledText(string(node.(*ast.String).Value)))
		}

	case ast.KindEmphasis:
		emphasis := node.(*ast.Emphasis)
		delta := 1
		if !entering {
			delta = -1
		}
		if emphasis.Level >= 2 {
			walker.boldCount += delta
		} else {
			walker.italicCount += delta
		}

	case ast.KindCodeSpan:
		if entering {
			walker.renderCodeSpan(node)
			return ast.WalkSkipChildren, nil
		}

	case ast.KindLink:
		if entering {
			link := node.(*ast.Link)
			walker.inline.WriteString(walker.collectInline(node))
			if url := string(link.Destination); url != "" {
				urlStyle := walker.newStyle().Foreground(walker.theme.Link)
				walker.inline.WriteString(" " + urlStyle.Render("("+url+")"))
			}
			return ast.WalkSkipChildren, nil
		}

	case ast.KindAutoLink:
		if entering {
			autoLink := node.(*ast.AutoLink)
			urlStyle := walker.newStyle().Foreground(walker.theme.Link)
			walker.inline.WriteString(urlStyle.Render(string(autoLink.URL(walker.source))))
		}

	case ast.KindImage:
		if entering {
			image := node.(*ast.Image)
			faint := walker.newStyle().Foreground(walker.theme.FaintText)
			walker.inline.WriteString(faint.Render("[" + walker.collectInline(node) + "]"))
			if url := string(image.Destination); url != "" {
				walker.inline.WriteString(" " + faint.Render("("+url+")"))
			}
			return ast.WalkSkipChildren, nil
		}

	case extast.KindStrikethrough:
		if entering {
			walker.strikethroughCount++
		} else {
			walker.strikethroughCount--
		}
	}

	return ast.WalkContinue, nil
}

func (walker *markdownWalker) leaveHeading(heading *ast.Heading) {
	// Strip inline styling accumulated by styledText: the heading
	// style replaces it wholesale.
	content := ansi.Strip(walker.inline.String())
	walker.inline.Reset()
	if content == "" {
		return
	}

	style := walker.newStyle().Bold(true)
	if heading.Level <= 2 {
		style = style.Foreground(walker.theme.Heading)
	} else {
		style = style.Foreground(walker.theme.NormalText)
	}

	wrapped := ansi.Wrap(style.Render(content), walker.contentWidth(), " ,.;-+|")
	walker.ensureBlankLine()
	walker.write(walker.applyPrefixes(wrapped))
	walker.ensureNewline()
	walker.ensureBlankLine()
}

func (walker *markdownWalker) renderFencedCodeBlock(node *ast.FencedCodeBlock) {
	language := string(node.Language(walker.source))
	var code strings.Builder
	lines := node.Lines()
	for index := 0; index < lines.Len(); index++ {
		segment := lines.At(index)
		code.Write(segment.Value(walker.source))
	}

	highlighted := walker.highlightCode(code.String(), language)
	walker.ensureBlankLine()
	for _, line := range strings.Split(strings.TrimRight(highlighted, "\n"), "\n") {
		walker.write(walker.consumePrefix() + line)
		walker.ensureNewline()
	}
	walker.ensureBlankLine()
}

func (walker *markdownWalker) renderIndentedCodeBlock(node *ast.CodeBlock) {
	var code strings.Builder
	lines := node.Lines()
	for index := 0; index < lines.Len(); index++ {
		segment := lines.At(index)
		code.Write(segment.Value(walker.source))
	}

	codeStyle := walker.newStyle().Foreground(walker.theme.CodeText)
	walker.ensureBlankLine()
	for _, line := range strings.Split(strings.TrimRight(code.String(), "\n"), "\n") {
		walker.write(walker.consumePrefix() + codeStyle.Render(line))
		walker.ensureNewline()
	}
	walker.ensureBlankLine()
}

func (walker *markdownWalker) enterListItem() {
	if len(walker.listStack) == 0 {
		return
	}
	top := &walker.listStack[len(walker.listStack)-1]

	var bullet string
	if top.ordered {
		bullet = fmt.Sprintf("%d. ", top.counter)
		top.counter++
	} else {
		bullet = "- "
	}

	bulletWidth := len(bullet) // ASCII, so bytes == columns.
	walker.pendingBullet = walker.prefix + bullet
	walker.pushPrefix(strings.Repeat(" ", bulletWidth), bulletWidth)
}

func (walker *markdownWalker) leaveListItem() {
	top := walker.listStack[len(walker.listStack)-1]
	bulletWidth := 2
	if top.ordered {
		bulletWidth = len(fmt.Sprintf("%d. ", top.counter-1))
	}
	walker.popPrefix(strings.Repeat(" ", bulletWidth), bulletWidth)
	if walker.inTightList() {
		walker.ensureNewline()
	} else {
		walker.ensureBlankLine()
	}
}

func (walker *markdownWalker) renderCodeSpan(node ast.Node) {
	var code strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch typed := child.(type) {
		case *ast.Text:
			code.Write(typed.Segment.Value(walker.source))
		case *ast.String:
			code.Write(typed.Value)
		}
	}
	codeStyle := walker.newStyle().Foreground(walker.theme.CodeText)
	walker.inline.WriteString(codeStyle.Render(code.String()))
}
