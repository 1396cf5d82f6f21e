// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ghost - FREE FIRE Ghost Assistant, a terminal chat for Free Fire players.
package main

import (
	"context"
	"os"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:]))
}
