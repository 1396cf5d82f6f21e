// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - Confirmation prompts for destructive operations.

package cli

import (
	"bufio"
	"fmt"
	"strings"
)

// confirm asks a yes/no question before a destructive action. --yes skips
// the question; without a terminal to ask on, the action is refused.
func (a *App) confirm(action string) (bool, error) {
	if a.Args.Yes {
		return true, nil
	}
	if !isTerminal(a.In) {
		return false, &UsageError{Message: fmt.Sprintf("refusing to %s without confirmation; pass --yes", action)}
	}

	fmt.Fprintf(a.Err, "%s %s? [y/N]: ", WarningStyle.Render("Confirm:"), action)
	input, err := bufio.NewReader(a.In).ReadString('\n')
	if err != nil {
		return false, nil
	}
	response := strings.ToLower(strings.TrimSpace(input))
	return response == "y" || response == "yes", nil
}
