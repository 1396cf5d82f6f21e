// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/model"
)

func openLibrary(t *testing.T) *Library {
	t.Helper()
	lib, err := Open(filepath.Join(t.TempDir(), "sources.db"))
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	return lib
}

func reply(at time.Time, sources ...model.WebSource) model.Entry {
	e := model.NewEntry(model.RoleModel, "reply")
	e.CreatedAt = at
	e.Sources = sources
	return e
}

var (
	garena = model.WebSource{URI: "https://www.ff.garena.com/news/faded-wheel", Title: "Faded Wheel returns"}
	sens   = model.WebSource{URI: "https://example.org/sensitivity", Title: "Best Headshot Sensitivity"}
)

func uris(sources []Source) []string {
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		out = append(out, s.URI)
	}
	return out
}

func TestRecordAndSearch(t *testing.T) {
	lib := openLibrary(t)
	ctx := context.Background()
	t0 := time.Unix(1_700_000_000, 0)

	require.NoError(t, lib.Record(ctx, "conv_a", reply(t0, garena, sens)))
	require.NoError(t, lib.Record(ctx, "conv_b", reply(t0.Add(time.Hour), garena)))

	n, err := lib.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	hits, err := lib.Search(ctx, "faded", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	got := hits[0]
	assert.Equal(t, garena.URI, got.URI)
	assert.Equal(t, "Faded Wheel returns", got.Title)
	assert.Equal(t, "ff.garena.com", got.Host)
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, 2, got.Conversations)
	assert.True(t, got.FirstSeen.Equal(t0))
	assert.True(t, got.LastSeen.Equal(t0.Add(time.Hour)))

	// Prefix match on the host, every word must match.
	hits, err = lib.Search(ctx, "gare", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{garena.URI}, uris(hits))

	hits, err = lib.Search(ctx, "headshot sens", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{sens.URI}, uris(hits))

	hits, err = lib.Search(ctx, "headshot garena", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestRecord_KeepsFirstTitleAndIsIdempotent(t *testing.T) {
	lib := openLibrary(t)
	ctx := context.Background()
	e := reply(time.Now(), garena)

	require.NoError(t, lib.Record(ctx, "conv_a", e))
	require.NoError(t, lib.Record(ctx, "conv_a", e))

	renamed := reply(time.Now(), model.WebSource{URI: garena.URI, Title: "Another title"})
	require.NoError(t, lib.Record(ctx, "conv_a", renamed))

	hits, err := lib.Search(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Faded Wheel returns", hits[0].Title)
	assert.Equal(t, 2, hits[0].Count, "same entry counted once")
	assert.Equal(t, 1, hits[0].Conversations)
}

func TestRecord_Rejects(t *testing.T) {
	lib := openLibrary(t)
	ctx := context.Background()

	user := model.NewEntry(model.RoleUser, "q")
	assert.ErrorIs(t, lib.Record(ctx, "c", user), ErrNotModelEntry)

	assert.NoError(t, lib.Record(ctx, "c", reply(time.Now())))
	n, _ := lib.Count(ctx)
	assert.Zero(t, n)
}

func TestSearch_EmptyQueryListsRecent(t *testing.T) {
	lib := openLibrary(t)
	ctx := context.Background()
	t0 := time.Unix(1_700_000_000, 0)

	require.NoError(t, lib.Record(ctx, "c1", reply(t0, sens)))
	require.NoError(t, lib.Record(ctx, "c2", reply(t0.Add(time.Minute), garena)))

	hits, err := lib.Search(ctx, "  ", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{garena.URI, sens.URI}, uris(hits))

	hits, err = lib.Search(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearch_SyntaxCharactersAreLiteral(t *testing.T) {
	lib := openLibrary(t)
	ctx := context.Background()
	require.NoError(t, lib.Record(ctx, "c1", reply(time.Now(), garena)))

	for _, q := range []string{`"faded`, `faded*`, `NEAR(faded`, `title:faded`, `-faded`, `faded OR`} {
		hits, err := lib.Search(ctx, q, 0)
		require.NoError(t, err, "query %q", q)
		assert.Len(t, hits, 1, "query %q", q)
	}
}

func TestBuildFTSQuery(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"faded wheel", `"faded"* "wheel"*`},
		{"NEAR(faded", `"faded"*`},
		{"title:faded", `"faded"*`},
		{"faded OR wheel", `"faded"* "wheel"*`},
		{"or not", `"or"* "not"*`},
		{"AND", ""},
		{"sources:", ""},
		{"  ", ""},
		{`  faded "wheel" `, `"faded"* "wheel"*`},
		{`*"():`, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, buildFTSQuery(tt.query), "query %q", tt.query)
	}
}

func TestSearch_OperatorWordsIgnored(t *testing.T) {
	lib := openLibrary(t)
	ctx := context.Background()
	require.NoError(t, lib.Record(ctx, "c1", reply(time.Now(), garena, sens)))

	hits, err := lib.Search(ctx, "faded AND wheel", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{garena.URI}, uris(hits))

	hits, err = lib.Search(ctx, "OR", 0)
	require.NoError(t, err)
	assert.Len(t, hits, 2, "nothing left to match lists recent sources")
}

func TestConversationsFor(t *testing.T) {
	lib := openLibrary(t)
	ctx := context.Background()
	t0 := time.Unix(1_700_000_000, 0)

	require.NoError(t, lib.Record(ctx, "conv_old", reply(t0, garena)))
	require.NoError(t, lib.Record(ctx, "conv_new", reply(t0.Add(time.Hour), garena)))

	ids, err := lib.ConversationsFor(ctx, garena.URI)
	require.NoError(t, err)
	assert.Equal(t, []string{"conv_new", "conv_old"}, ids)
}

func TestRecordTranscript_SkipsOpenReply(t *testing.T) {
	lib := openLibrary(t)
	ctx := context.Background()

	tr := model.NewTranscript()
	_, p, err := tr.Begin("q")
	require.NoError(t, err)
	require.NoError(t, p.SetSources([]model.WebSource{garena}))

	require.NoError(t, lib.RecordTranscript(ctx, tr))
	n, _ := lib.Count(ctx)
	assert.Zero(t, n, "streaming entry not recorded")

	_, err = p.Commit()
	require.NoError(t, err)
	require.NoError(t, lib.RecordTranscript(ctx, tr))
	n, _ = lib.Count(ctx)
	assert.Equal(t, 1, n)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.db")
	lib, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, lib.Record(context.Background(), "c", reply(time.Now(), sens)))
	require.NoError(t, lib.Close())

	lib, err = Open(path)
	require.NoError(t, err)
	defer lib.Close()
	hits, err := lib.Search(context.Background(), "sensitivity", 0)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "ff.garena.com", hostOf("https://WWW.ff.garena.com/x"))
}
