// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types, display and exit codes for ghost commands.
//
// Commands always return errors; Execute decides how to show them and
// which exit code to use.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/config"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/llm"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/storage"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/stream"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates a missing or rejected API key
	ExitAuthError = 4
	// ExitNetworkError indicates the provider could not be reached
	ExitNetworkError = 5
	// ExitNotFoundError indicates a conversation or source was not found
	ExitNotFoundError = 6
	// ExitTimeoutError indicates the provider stopped responding
	ExitTimeoutError = 8
	// ExitInterrupted indicates the user cancelled with Ctrl+C
	ExitInterrupted = 130
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError is a malformed command line.
type UsageError struct {
	Message    string
	Suggestion string // closest valid command, if any
}

func (e *UsageError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (did you mean %q?)", e.Message, e.Suggestion)
	}
	return e.Message
}

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "export")
	Action  string // Action being performed (e.g., "write")
	Err     error
}

func (e *CommandError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Command, e.Action, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ErrMissingArgument reports a required positional argument.
func ErrMissingArgument(argName, usage string) error {
	return &UsageError{Message: fmt.Sprintf("missing %s\nUsage: %s", argName, usage)}
}

// ErrTooManyArguments reports extra positional arguments.
func ErrTooManyArguments(usage string) error {
	return &UsageError{Message: "too many arguments\nUsage: " + usage}
}

// =============================================================================
// DISPLAY AND EXIT CODES
// =============================================================================

// DisplayError writes err to w in the CLI's error style, with a hint for
// the common setup problems.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), err.Error())
	if hint := errorHint(err); hint != "" {
		fmt.Fprintln(w, DimStyle.Render(hint))
	}
}

func errorHint(err error) string {
	var usage *UsageError
	switch {
	case errors.As(err, &usage):
		return "Run 'ghost help' for usage."
	case errors.Is(err, llm.ErrMissingCredentials):
		return "Set GEMINI_API_KEY (or OPENROUTER_API_KEY) in the environment or a .env file, or run 'ghost config set gemini.api_key <key>'."
	case errors.Is(err, llm.ErrUnauthorized):
		return "Check that your API key is valid."
	case errors.Is(err, llm.ErrUnavailable):
		return "Check your network connection, or that Ollama is running for the ollama provider."
	}
	return ""
}

// GetExitCode determines the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *UsageError
	if errors.As(err, &usage) {
		return ExitUsageError
	}
	var validation config.ValidateErrors
	if errors.As(err, &validation) {
		return ExitConfigError
	}

	switch {
	case errors.Is(err, stream.ErrCancelled), errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, llm.ErrMissingCredentials), errors.Is(err, llm.ErrUnauthorized):
		return ExitAuthError
	case errors.Is(err, llm.ErrUnavailable):
		return ExitNetworkError
	case errors.Is(err, storage.ErrConversationNotFound):
		return ExitNotFoundError
	case errors.Is(err, stream.ErrIdleTimeout), errors.Is(err, context.DeadlineExceeded):
		return ExitTimeoutError
	}

	// Wrapped config load failures carry no type.
	if strings.Contains(strings.ToLower(err.Error()), "config") {
		return ExitConfigError
	}
	return ExitGeneralError
}
