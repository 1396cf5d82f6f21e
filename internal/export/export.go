// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/model"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/storage"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter converts a conversation into one output format.
type Exporter interface {
	// Export converts a conversation to the target format and returns the content.
	Export(conv *storage.StoredConversation) ([]byte, error)

	// FileExtension returns the file extension including the dot.
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// Format names an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatMarkdown, FormatHTML, FormatJSON}

// ErrUnsupportedFormat is returned for an unknown format name.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat accepts a format name or a common alias ("md", "htm").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
	}
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is where generated file names are placed. Default: "."
	OutputDir string

	// Path, when set, is the exact output file and OutputDir is ignored.
	Path string

	// OpenAfterExport opens the file in the default application.
	OpenAfterExport bool

	// IncludeMetadata includes the header block (provider, model, dates).
	IncludeMetadata bool

	// IncludeTimestamps includes per-message timestamps.
	IncludeTimestamps bool

	// Theme for HTML export ("light" or "dark"). Default: "dark"
	Theme string

	// Logger receives warnings such as a failed open. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
		Theme:             "dark",
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// New returns the exporter for format.
func New(format Format, opts *Options) (Exporter, error) {
	switch format {
	case FormatMarkdown:
		return NewMarkdownExporter(opts), nil
	case FormatHTML:
		return NewHTMLExporter(opts), nil
	case FormatJSON:
		return NewJSONExporter(opts), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Render converts conv to format without touching the filesystem.
func Render(conv *storage.StoredConversation, format Format, opts *Options) ([]byte, error) {
	exporter, err := New(format, opts)
	if err != nil {
		return nil, err
	}
	return exporter.Export(conv)
}

// ExportToFile exports a conversation to a file using the specified exporter.
// Returns the output file path or an error.
func ExportToFile(conv *storage.StoredConversation, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(conv)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	outputPath := opts.Path
	if outputPath == "" {
		dir := opts.OutputDir
		if dir == "" {
			dir = "."
		}
		filename := fmt.Sprintf("ghost_%s_%s%s",
			sanitizeFilename(conv.Title()),
			time.Now().Format("20060102_150405"),
			exporter.FileExtension(),
		)
		outputPath = filepath.Join(dir, filename)
	}

	if err := util.AtomicWriteFile(outputPath, content, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	if opts.OpenAfterExport {
		if err := openFile(outputPath); err != nil {
			// Non-fatal, the file was written.
			logger(opts).Warn("could not open exported file", "path", outputPath, "err", err)
		}
	}

	return outputPath, nil
}

// ExportTranscript snapshots the frozen entries of t and writes them in format.
func ExportTranscript(t *model.Transcript, provider, modelName string, format Format, opts *Options) (string, error) {
	conv := storage.FromTranscript(t, provider, modelName)
	if len(conv.Messages) == 0 {
		return "", errors.New("conversation has no messages")
	}
	exporter, err := New(format, opts)
	if err != nil {
		return "", err
	}
	return ExportToFile(conv, exporter, opts)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func logger(opts *Options) *slog.Logger {
	if opts != nil && opts.Logger != nil {
		return opts.Logger
	}
	return slog.Default()
}

// validate rejects conversations that cannot be rendered.
func validate(conv *storage.StoredConversation) error {
	if conv == nil {
		return errors.New("conversation is nil")
	}
	if len(conv.Messages) == 0 {
		return errors.New("conversation has no messages")
	}
	if conv.CreatedAt.IsZero() {
		return errors.New("conversation has invalid creation timestamp")
	}
	return nil
}

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	const maxLen = 50
	if runes := []rune(s); len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	var sb strings.Builder
	for _, r := range s {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			sb.WriteRune('-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			sb.WriteRune('_')
		case r < 32 || r == 127:
			sb.WriteRune('-')
		default:
			sb.WriteRune(r)
		}
	}

	if sb.Len() == 0 {
		return "conversation"
	}
	return sb.String()
}

// openFile opens a file in the default application for the OS.
func openFile(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

func roleLabel(role model.Role) string {
	if role == "" {
		return "Unknown"
	}
	return role.DisplayName()
}

// sourceLabel is the visible text of a source link.
func sourceLabel(src model.WebSource) string {
	if strings.TrimSpace(src.Title) != "" {
		return src.Title
	}
	return src.URI
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
