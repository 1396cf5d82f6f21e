// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package citation

import (
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/llm"
	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/model"
)

// Candidate is a possibly incomplete source reference.
type Candidate struct {
	URI   string
	Title string
}

// Dedupe filters and deduplicates candidates. Candidates with an empty URI
// or title are dropped. For repeated URIs the first occurrence wins, title
// and position. The result is never nil.
func Dedupe(candidates []Candidate) []model.WebSource {
	out := make([]model.WebSource, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if c.URI == "" || c.Title == "" {
			continue
		}
		if _, ok := seen[c.URI]; ok {
			continue
		}
		seen[c.URI] = struct{}{}
		out = append(out, model.WebSource{URI: c.URI, Title: c.Title})
	}
	return out
}

// FromSources converts web sources back to candidates.
func FromSources(sources []model.WebSource) []Candidate {
	out := make([]Candidate, len(sources))
	for i, s := range sources {
		out[i] = Candidate{URI: s.URI, Title: s.Title}
	}
	return out
}

// FromGrounding extracts candidates from grounding metadata. Non-web
// references are skipped. A nil metadata yields no candidates.
func FromGrounding(g *llm.GroundingMetadata) []Candidate {
	if g == nil {
		return nil
	}
	out := make([]Candidate, 0, len(g.Chunks))
	for _, chunk := range g.Chunks {
		if chunk.Web == nil {
			continue
		}
		out = append(out, Candidate{URI: chunk.Web.URI, Title: chunk.Web.Title})
	}
	return out
}

// FromHistory reads the grounding attached to the first part of the last
// history entry, which is where providers record it for the latest reply.
func FromHistory(history []llm.Content) []Candidate {
	if len(history) == 0 {
		return nil
	}
	last := history[len(history)-1]
	if len(last.Parts) == 0 {
		return nil
	}
	return FromGrounding(last.Parts[0].Grounding)
}

// Sources is the full pipeline used after a reply completes: it extracts
// and deduplicates the latest reply's references.
func Sources(history []llm.Content) []model.WebSource {
	return Dedupe(FromHistory(history))
}
