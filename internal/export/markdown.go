// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/model"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/storage"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a conversation to Markdown format. Reply text is written
// as-is since replies are already markdown.
func (e *MarkdownExporter) Export(conv *storage.StoredConversation) ([]byte, error) {
	if err := validate(conv); err != nil {
		return nil, err
	}
	title := conv.Title()

	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "title: %s\n", escapeYAML(title))
		fmt.Fprintf(&sb, "id: %s\n", conv.ID)
		if conv.Provider != "" {
			fmt.Fprintf(&sb, "provider: %s\n", conv.Provider)
		}
		if conv.Model != "" {
			fmt.Fprintf(&sb, "model: %s\n", escapeYAML(conv.Model))
		}
		fmt.Fprintf(&sb, "date: %s\n", conv.CreatedAt.Format(time.RFC3339))
		fmt.Fprintf(&sb, "updated: %s\n", conv.UpdatedAt.Format(time.RFC3339))
		fmt.Fprintf(&sb, "messages: %d\n", len(conv.Messages))
		fmt.Fprintf(&sb, "sources: %d\n", conv.SourceCount())
		sb.WriteString("generator: ghost\n")
		sb.WriteString("---\n\n")
	}

	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(title))

	for i, msg := range conv.Messages {
		label := roleLabel(msg.Role)
		if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
			fmt.Fprintf(&sb, "### %s <sub>%s</sub>\n\n", label, formatShortTimestamp(msg.Timestamp))
		} else {
			fmt.Fprintf(&sb, "### %s\n\n", label)
		}

		sb.WriteString(strings.TrimSpace(msg.Content))
		sb.WriteString("\n\n")

		if len(msg.Sources) > 0 {
			sb.WriteString(e.formatSources(msg.Sources))
			sb.WriteString("\n")
		}

		if i < len(conv.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	if e.options.IncludeMetadata {
		fmt.Fprintf(&sb, "---\n\n*Exported from ghost on %s*\n",
			time.Now().Format("January 2, 2006 at 3:04 PM"))
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// formatSources renders a numbered link list.
func (e *MarkdownExporter) formatSources(sources []model.WebSource) string {
	var sb strings.Builder
	sb.WriteString("**Sources:**\n\n")
	for i, src := range sources {
		fmt.Fprintf(&sb, "%d. [%s](%s)\n", i+1, escapeMarkdown(sourceLabel(src)), escapeLinkTarget(src.URI))
	}
	return sb.String()
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"#", `\#`,
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"\n", " ",
)

// escapeMarkdown escapes characters that would break titles and link text.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// escapeLinkTarget keeps a URI from closing the link early.
func escapeLinkTarget(s string) string {
	return strings.NewReplacer(" ", "%20", "(", "%28", ")", "%29").Replace(s)
}

// escapeYAML quotes values containing YAML syntax.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return `"` + s + `"`
	}
	return s
}
