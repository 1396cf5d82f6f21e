// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/markdown"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/model"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/storage"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations to a standalone HTML page with
// embedded CSS. Message text goes through the same renderer as the
// terminal, so the page shows exactly the headings, lists and bold text the
// chat view shows.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a conversation to HTML format.
func (e *HTMLExporter) Export(conv *storage.StoredConversation) ([]byte, error) {
	if err := validate(conv); err != nil {
		return nil, err
	}
	title := html.EscapeString(conv.Title())

	theme := e.options.Theme
	if theme != "light" {
		theme = "dark"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", title)
	sb.WriteString("    <meta name=\"generator\" content=\"ghost\">\n")
	fmt.Fprintf(&sb, "    <meta name=\"date\" content=\"%s\">\n", conv.CreatedAt.Format(time.RFC3339))
	sb.WriteString(css)
	sb.WriteString("</head>\n")
	fmt.Fprintf(&sb, "<body class=\"%s-theme\">\n", theme)
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		e.renderHeader(&sb, conv, title)
	}

	sb.WriteString("        <main class=\"conversation\">\n")
	for i := range conv.Messages {
		e.renderMessage(&sb, &conv.Messages[i])
	}
	sb.WriteString("        </main>\n")

	if e.options.IncludeMetadata {
		sb.WriteString("        <footer class=\"footer\">\n")
		fmt.Fprintf(&sb, "            <p>Exported from <strong>ghost</strong> on %s</p>\n",
			time.Now().Format("January 2, 2006 at 3:04 PM"))
		sb.WriteString("        </footer>\n")
	}

	sb.WriteString("    </div>\n</body>\n</html>\n")
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

func (e *HTMLExporter) renderHeader(sb *strings.Builder, conv *storage.StoredConversation, title string) {
	sb.WriteString("        <header class=\"header\">\n")
	fmt.Fprintf(sb, "            <h1>%s</h1>\n", title)
	sb.WriteString("            <div class=\"metadata\">\n")
	if conv.Model != "" {
		fmt.Fprintf(sb, "                <span class=\"meta-item\"><strong>Model:</strong> %s</span>\n", html.EscapeString(conv.Model))
	}
	fmt.Fprintf(sb, "                <span class=\"meta-item\"><strong>Created:</strong> %s</span>\n", formatTimestamp(conv.CreatedAt))
	fmt.Fprintf(sb, "                <span class=\"meta-item\"><strong>Messages:</strong> %d</span>\n", len(conv.Messages))
	if n := conv.SourceCount(); n > 0 {
		fmt.Fprintf(sb, "                <span class=\"meta-item\"><strong>Sources:</strong> %d</span>\n", n)
	}
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")
}

func (e *HTMLExporter) renderMessage(sb *strings.Builder, msg *storage.StoredMessage) {
	fmt.Fprintf(sb, "            <div class=\"message %s-message\">\n", html.EscapeString(msg.Role.String()))

	sb.WriteString("                <div class=\"message-header\">\n")
	fmt.Fprintf(sb, "                    <span class=\"role-label\">%s</span>\n", html.EscapeString(roleLabel(msg.Role)))
	if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
		fmt.Fprintf(sb, "                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(msg.Timestamp))
	}
	sb.WriteString("                </div>\n")

	sb.WriteString("                <div class=\"message-content\">\n")
	sb.WriteString(renderBlocks(msg.Content))
	sb.WriteString("                </div>\n")

	if len(msg.Sources) > 0 {
		sb.WriteString(renderSources(msg.Sources))
	}

	sb.WriteString("            </div>\n")
}

// renderBlocks converts reply text to HTML through markdown.Render.
func renderBlocks(text string) string {
	var sb strings.Builder
	for _, b := range markdown.Render(text) {
		switch b := b.(type) {
		case *markdown.Heading:
			fmt.Fprintf(&sb, "<h%d>%s</h%d>\n", b.Level+1, renderInline(b.Inline), b.Level+1)
		case *markdown.List:
			sb.WriteString("<ul>\n")
			for _, item := range b.Items {
				fmt.Fprintf(&sb, "<li>%s</li>\n", renderInline(item))
			}
			sb.WriteString("</ul>\n")
		case *markdown.Paragraph:
			fmt.Fprintf(&sb, "<p>%s</p>\n", renderInline(b.Inline))
		}
	}
	return sb.String()
}

func renderInline(in markdown.Inline) string {
	var sb strings.Builder
	for _, span := range in {
		text := html.EscapeString(span.Text)
		if span.Bold {
			sb.WriteString("<strong>" + text + "</strong>")
		} else {
			sb.WriteString(text)
		}
	}
	return sb.String()
}

func renderSources(sources []model.WebSource) string {
	var sb strings.Builder
	sb.WriteString("                <div class=\"sources\">\n")
	sb.WriteString("                    <div class=\"sources-label\">Sources</div>\n")
	sb.WriteString("                    <ol>\n")
	for _, src := range sources {
		label := html.EscapeString(sourceLabel(src))
		if safeLink(src.URI) {
			fmt.Fprintf(&sb, "                        <li><a href=\"%s\" rel=\"noopener noreferrer\">%s</a></li>\n",
				html.EscapeString(src.URI), label)
		} else {
			fmt.Fprintf(&sb, "                        <li>%s</li>\n", label)
		}
	}
	sb.WriteString("                    </ol>\n")
	sb.WriteString("                </div>\n")
	return sb.String()
}

// safeLink reports whether uri may become an href.
func safeLink(uri string) bool {
	u, err := url.Parse(uri)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

const css = `    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        :root {
            --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
        }

        .dark-theme {
            --bg-primary: #0d0f14;
            --bg-secondary: #161a22;
            --bg-tertiary: #262b36;
            --text-primary: #e6e6e6;
            --text-muted: #8a8f98;
            --border-color: #262b36;
            --accent-user: #00bcd4;
            --accent-model: #ff9800;
        }

        .light-theme {
            --bg-primary: #ffffff;
            --bg-secondary: #f7f8fa;
            --bg-tertiary: #e1e4e8;
            --text-primary: #24292e;
            --text-muted: #6a737d;
            --border-color: #e1e4e8;
            --accent-user: #0366d6;
            --accent-model: #d9730d;
        }

        body {
            font-family: var(--font-sans);
            line-height: 1.6;
            color: var(--text-primary);
            background: var(--bg-primary);
            padding: 20px;
        }

        .container {
            max-width: 900px;
            margin: 0 auto;
            background: var(--bg-secondary);
            border-radius: 12px;
            overflow: hidden;
        }

        .header { padding: 32px; background: var(--bg-tertiary); }
        .header h1 { font-size: 26px; margin-bottom: 12px; }
        .metadata { display: flex; flex-wrap: wrap; gap: 16px; font-size: 14px; color: var(--text-muted); }

        .conversation { padding: 24px 32px; }

        .message {
            margin-bottom: 24px;
            padding: 20px;
            border-radius: 8px;
            border-left: 4px solid transparent;
            background: var(--bg-primary);
        }
        .user-message { border-left-color: var(--accent-user); }
        .model-message { border-left-color: var(--accent-model); }

        .message-header { display: flex; justify-content: space-between; margin-bottom: 12px; font-size: 14px; }
        .role-label { font-weight: 600; }
        .timestamp { color: var(--text-muted); font-size: 13px; }

        .message-content h2, .message-content h3, .message-content h4 { margin: 12px 0 8px; }
        .message-content p { margin-bottom: 8px; }
        .message-content ul { margin: 0 0 8px 24px; }

        .sources { margin-top: 12px; padding-top: 12px; border-top: 1px solid var(--border-color); font-size: 14px; }
        .sources-label { font-weight: 600; color: var(--text-muted); margin-bottom: 4px; }
        .sources ol { margin-left: 24px; }
        .sources a { color: var(--accent-user); }

        .footer { padding: 20px 32px; text-align: center; font-size: 14px; color: var(--text-muted); }

        @media print {
            body { padding: 0; }
            .message { page-break-inside: avoid; }
        }
    </style>
`
