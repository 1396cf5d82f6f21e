// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/markdown"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/model"
)

var boldStyle = lipgloss.NewStyle().Bold(true)

// Printer writes a streamed reply to a terminal.
//
// With a width, text is buffered per line and each completed line is
// word-wrapped (and styled when styled is set). Without one, fragments are
// written as they arrive, which keeps piped output byte-exact.
type Printer struct {
	w      io.Writer
	width  int
	styled bool

	line    strings.Builder
	written bool
}

// NewPrinter returns a printer for w. A width of 0 disables wrapping.
func NewPrinter(w io.Writer, width int, styled bool) *Printer {
	return &Printer{w: w, width: width, styled: styled}
}

// Fragment prints the next piece of the reply.
func (p *Printer) Fragment(text string) {
	p.written = p.written || text != ""
	if p.width <= 0 {
		io.WriteString(p.w, text)
		return
	}
	for {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			p.line.WriteString(text)
			return
		}
		p.line.WriteString(text[:i])
		p.emit(p.line.String())
		p.line.Reset()
		text = text[i+1:]
	}
}

// Flush prints any buffered partial line and ends the reply with a newline.
func (p *Printer) Flush() {
	if p.width > 0 && p.line.Len() > 0 {
		p.emit(p.line.String())
		p.line.Reset()
		return
	}
	if p.width <= 0 && p.written {
		io.WriteString(p.w, "\n")
	}
}

// Written reports whether any text has been printed.
func (p *Printer) Written() bool {
	return p.written
}

// emit prints one complete line.
func (p *Printer) emit(line string) {
	fmt.Fprintln(p.w, p.renderLine(line))
}

func (p *Printer) renderLine(line string) string {
	if strings.TrimSpace(line) == "" {
		return ""
	}
	if !p.styled {
		return wordwrap.String(line, p.width)
	}

	blocks := markdown.Render(line)
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		switch b := b.(type) {
		case *markdown.Heading:
			out = append(out, TitleStyle.Render(wordwrap.String(b.Inline.Plain(), p.width)))
		case *markdown.List:
			for _, item := range b.Items {
				text := wordwrap.String(renderInline(item), p.width-2)
				out = append(out, GhostStyle.Render("•")+" "+strings.ReplaceAll(text, "\n", "\n  "))
			}
		case *markdown.Paragraph:
			out = append(out, wordwrap.String(renderInline(b.Inline), p.width))
		}
	}
	return strings.Join(out, "\n")
}

func renderInline(in markdown.Inline) string {
	var sb strings.Builder
	for _, span := range in {
		if span.Bold {
			sb.WriteString(boldStyle.Render(span.Text))
		} else {
			sb.WriteString(span.Text)
		}
	}
	return sb.String()
}

// printSources lists cited pages under a reply.
func printSources(w io.Writer, sources []model.WebSource, styled bool) {
	if len(sources) == 0 {
		return
	}
	label := "SOURCES:"
	if styled {
		label = TitleStyle.Render(label)
	}
	fmt.Fprintf(w, "\n%s\n", label)
	for i, src := range sources {
		uri := src.URI
		if styled {
			uri = LinkStyle.Render(uri)
		}
		if src.Title != "" {
			fmt.Fprintf(w, "  %d. %s\n     %s\n", i+1, src.Title, uri)
		} else {
			fmt.Fprintf(w, "  %d. %s\n", i+1, uri)
		}
	}
}

// renderMarkdown renders a markdown document for the terminal with glamour.
// Unstyled output, or a renderer failure, returns the document unchanged.
func renderMarkdown(doc string, width int, styled bool) string {
	if !styled {
		return doc
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return doc
	}
	out, err := r.Render(doc)
	if err != nil {
		return doc
	}
	return out
}
