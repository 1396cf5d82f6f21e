// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sources.go - Search the library of pages the Ghost has cited.
//
// Examples:
//   ghost sources                 Most recently cited pages
//   ghost sources "diamond royale"
//   ghost sources awm --json

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/index"
)

// sourcesPanelLimit caps /sources results in chat.
const sourcesPanelLimit = 10

// SourceData is the JSON form of a library entry.
type SourceData struct {
	URI             string    `json:"uri"`
	Title           string    `json:"title,omitempty"`
	Host            string    `json:"host"`
	FirstSeen       time.Time `json:"first_seen"`
	LastSeen        time.Time `json:"last_seen"`
	Citations       int       `json:"citations"`
	Conversations   int       `json:"conversations"`
	ConversationIDs []string  `json:"conversation_ids"` // most recent first
}

func (a *App) runSources(ctx context.Context) error {
	query := strings.TrimSpace(strings.Join(a.Args.Raw, " "))
	lib, err := a.Library()
	if err != nil {
		return err
	}
	found, err := lib.Search(ctx, query, a.Args.Limit)
	if err != nil {
		return &CommandError{Command: "sources", Action: "search", Err: err}
	}

	if a.Args.JSON {
		out := make([]SourceData, 0, len(found))
		for _, s := range found {
			ids, err := lib.ConversationsFor(ctx, s.URI)
			if err != nil {
				return &CommandError{Command: "sources", Action: "search", Err: err}
			}
			out = append(out, SourceData{
				URI:             s.URI,
				Title:           s.Title,
				Host:            s.Host,
				FirstSeen:       s.FirstSeen,
				LastSeen:        s.LastSeen,
				Citations:       s.Count,
				Conversations:   s.Conversations,
				ConversationIDs: ids,
			})
		}
		return writeJSON(a.Out, out)
	}

	if len(found) == 0 {
		a.infof("%s", noSourcesMessage(query))
		return nil
	}
	if !a.Args.Quiet {
		total, err := lib.Count(ctx)
		if err == nil {
			a.infof("%s", DimStyle.Render(fmt.Sprintf("Showing %d of %s cited pages",
				len(found), humanize.Comma(int64(total)))))
		}
	}
	printSourceList(a.Out, found, a.styled())
	return nil
}

func noSourcesMessage(query string) string {
	if query == "" {
		return "No sources cited yet."
	}
	return fmt.Sprintf("No sources match %q.", query)
}

// printSourceList prints library entries with how often and how recently
// each was cited.
func printSourceList(w io.Writer, sources []index.Source, styled bool) {
	for i, src := range sources {
		title := src.Title
		if title == "" {
			title = src.Host
		}
		uri := src.URI
		meta := fmt.Sprintf("%s · cited %s in %s · last %s",
			src.Host,
			english.Plural(src.Count, "time", "times"),
			english.Plural(src.Conversations, "conversation", "conversations"),
			humanize.Time(src.LastSeen))
		if styled {
			title = boldStyle.Render(title)
			uri = LinkStyle.Render(uri)
			meta = DimStyle.Render(meta)
		}
		fmt.Fprintf(w, "%2d. %s\n    %s\n    %s\n", i+1, title, uri, meta)
	}
}
