// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"regexp"
	"strings"
)

// =============================================================================
// BLOCK TYPES
// =============================================================================

// Block is one rendered unit: a *Heading, *List or *Paragraph.
type Block interface {
	block()
}

// Span is a run of inline text.
type Span struct {
	Text string
	Bold bool
}

// Inline is the span sequence of one line.
type Inline []Span

// Heading is a level 1-3 heading.
type Heading struct {
	Level  int
	Inline Inline
}

// List is a run of consecutive list items.
type List struct {
	Items []Inline
}

// Paragraph is a single non-blank line that is neither heading nor item.
type Paragraph struct {
	Inline Inline
}

func (*Heading) block()   {}
func (*List) block()      {}
func (*Paragraph) block() {}

// Plain returns the inline text without formatting.
func (in Inline) Plain() string {
	var sb strings.Builder
	for _, s := range in {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// =============================================================================
// RENDER
// =============================================================================

var headingPrefixes = [...]string{"# ", "## ", "### "}

// Render converts text into blocks.
func Render(text string) []Block {
	blocks := make([]Block, 0)
	var items []Inline

	closeList := func() {
		if items != nil {
			blocks = append(blocks, &List{Items: items})
			items = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			closeList()
			continue
		}

		if level, content, ok := heading(trimmed); ok {
			closeList()
			blocks = append(blocks, &Heading{Level: level, Inline: ParseInline(content)})
			continue
		}

		if strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "- ") {
			items = append(items, ParseInline(trimmed[2:]))
			continue
		}

		closeList()
		blocks = append(blocks, &Paragraph{Inline: ParseInline(line)})
	}
	closeList()

	return blocks
}

func heading(trimmed string) (int, string, bool) {
	for i, prefix := range headingPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return i + 1, trimmed[len(prefix):], true
		}
	}
	return 0, "", false
}

// =============================================================================
// INLINE
// =============================================================================

// boldPattern matches the shortest "**...**" run.
var boldPattern = regexp.MustCompile(`\*\*.*?\*\*`)

// ParseInline splits s into plain and bold spans. Unpaired "**" stays
// literal and empty spans are dropped.
func ParseInline(s string) Inline {
	var spans Inline
	pos := 0
	for _, m := range boldPattern.FindAllStringIndex(s, -1) {
		if m[0] > pos {
			spans = append(spans, Span{Text: s[pos:m[0]]})
		}
		if inner := s[m[0]+2 : m[1]-2]; inner != "" {
			spans = append(spans, Span{Text: inner, Bold: true})
		}
		pos = m[1]
	}
	if pos < len(s) {
		spans = append(spans, Span{Text: s[pos:]})
	}
	return spans
}
