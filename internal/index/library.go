// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/bg9806664-lang/Freefire-Ai-Assistant/internal/model"
)

// DefaultLimit caps Search results when the caller passes 0.
const DefaultLimit = 50

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrDatabaseError = errors.New("database error")
	ErrNotModelEntry = errors.New("only model replies carry sources")
)

// =============================================================================
// TYPES
// =============================================================================

// Source is a cited web page with its citation history.
type Source struct {
	URI       string
	Title     string
	Host      string
	FirstSeen time.Time
	LastSeen  time.Time
	// Count is the number of model replies that cited the page.
	Count int
	// Conversations is the number of distinct conversations that cited it.
	Conversations int
}

// =============================================================================
// LIBRARY
// =============================================================================

// Library stores cited sources in SQLite. It is safe for concurrent use;
// writes are serialized by the single connection.
type Library struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the library database at path.
func Open(path string) (*Library, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	lib := &Library{db: db, path: path}
	if err := lib.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return lib, nil
}

// initSchema creates the database schema
func (l *Library) initSchema() error {
	if _, err := l.db.Exec(Schema); err != nil {
		return err
	}
	_, err := l.db.Exec(InitMetadata)
	return err
}

// Path returns the database file path.
func (l *Library) Path() string { return l.path }

// Close closes the database.
func (l *Library) Close() error {
	return l.db.Close()
}

// Record stores the sources of a frozen model entry. Recording the same
// entry twice does not count it twice. An entry without sources is a no-op.
func (l *Library) Record(ctx context.Context, conversationID string, entry model.Entry) error {
	if !entry.IsModel() {
		return ErrNotModelEntry
	}
	if !entry.HasSources() {
		return nil
	}

	at := entry.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	ts := at.Unix()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	for _, src := range entry.Sources {
		var id int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO sources (uri, title, host, first_seen, last_seen)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(uri) DO UPDATE SET
				last_seen = MAX(sources.last_seen, excluded.last_seen),
				first_seen = MIN(sources.first_seen, excluded.first_seen)
			RETURNING id
		`, src.URI, src.Title, hostOf(src.URI), ts, ts).Scan(&id)
		if err != nil {
			return fmt.Errorf("%w: upsert source: %v", ErrDatabaseError, err)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO citations (source_id, conversation_id, entry_id, cited_at)
			VALUES (?, ?, ?, ?)
		`, id, conversationID, entry.ID, ts)
		if err != nil {
			return fmt.Errorf("%w: insert citation: %v", ErrDatabaseError, err)
		}
		if n, _ := res.RowsAffected(); n == 1 {
			if _, err := tx.ExecContext(ctx, `UPDATE sources SET cite_count = cite_count + 1 WHERE id = ?`, id); err != nil {
				return fmt.Errorf("%w: count citation: %v", ErrDatabaseError, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// RecordTranscript records every cited model entry of a transcript.
func (l *Library) RecordTranscript(ctx context.Context, t *model.Transcript) error {
	open := t.OpenID()
	for _, e := range t.Entries() {
		if !e.IsModel() || e.ID == open {
			continue
		}
		if err := l.Record(ctx, t.ID(), e); err != nil {
			return err
		}
	}
	return nil
}

const sourceColumns = `
	s.uri, s.title, s.host, s.first_seen, s.last_seen, s.cite_count,
	(SELECT COUNT(DISTINCT c.conversation_id) FROM citations c WHERE c.source_id = s.id)
`

// Search returns sources matching every word of query by prefix, best match
// first. An empty query lists the most recently cited sources.
func (l *Library) Search(ctx context.Context, query string, limit int) ([]Source, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var (
		rows *sql.Rows
		err  error
	)
	if fts := buildFTSQuery(query); fts != "" {
		rows, err = l.db.QueryContext(ctx, `
			SELECT `+sourceColumns+`
			FROM sources_fts
			JOIN sources s ON s.id = sources_fts.rowid
			WHERE sources_fts MATCH ?
			ORDER BY sources_fts.rank, s.last_seen DESC
			LIMIT ?
		`, fts, limit)
	} else {
		rows, err = l.db.QueryContext(ctx, `
			SELECT `+sourceColumns+`
			FROM sources s
			ORDER BY s.last_seen DESC, s.id DESC
			LIMIT ?
		`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	results := make([]Source, 0)
	for rows.Next() {
		var (
			s           Source
			first, last int64
		)
		if err := rows.Scan(&s.URI, &s.Title, &s.Host, &first, &last, &s.Count, &s.Conversations); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		s.FirstSeen = time.Unix(first, 0)
		s.LastSeen = time.Unix(last, 0)
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return results, nil
}

// ConversationsFor returns the IDs of conversations that cited uri, most
// recent first.
func (l *Library) ConversationsFor(ctx context.Context, uri string) ([]string, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT c.conversation_id
		FROM citations c
		JOIN sources s ON s.id = c.source_id
		WHERE s.uri = ?
		GROUP BY c.conversation_id
		ORDER BY MAX(c.cited_at) DESC
	`, uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the number of distinct sources in the library.
func (l *Library) Count(ctx context.Context) (int, error) {
	var n int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sources`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return n, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// ftsOperators are FTS5 keywords that carry no search meaning in free text.
var ftsOperators = map[string]bool{"AND": true, "OR": true, "NOT": true, "NEAR": true}

// buildFTSQuery turns free text into an FTS5 query: every letter/digit run
// becomes a quoted prefix term, so user input never reaches the FTS5 query
// syntax. Operator words and "column:" prefixes are dropped.
func buildFTSQuery(query string) string {
	var terms []string
	for _, field := range strings.Fields(query) {
		if i := strings.LastIndexByte(field, ':'); i >= 0 {
			field = field[i+1:]
		}
		words := strings.FieldsFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, w := range words {
			if ftsOperators[w] {
				continue
			}
			terms = append(terms, `"`+w+`"*`)
		}
	}
	return strings.Join(terms, " ")
}

// hostOf returns the host of uri without a leading "www.".
func hostOf(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
