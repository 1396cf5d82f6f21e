// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

const (
	// SchemaVersion tracks the database schema version for migrations
	SchemaVersion = 1
)

// Schema is the SQLite schema for the citation library with FTS5 search
// over source titles, URIs and hosts.
const Schema = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- One row per distinct URI ever cited.
CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    uri TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    host TEXT NOT NULL,
    first_seen INTEGER NOT NULL, -- Unix timestamp
    last_seen INTEGER NOT NULL,  -- Unix timestamp
    cite_count INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_sources_last_seen ON sources(last_seen);

-- One row per (source, model reply) pair.
CREATE TABLE IF NOT EXISTS citations (
    source_id INTEGER NOT NULL,
    conversation_id TEXT NOT NULL,
    entry_id TEXT NOT NULL,
    cited_at INTEGER NOT NULL,
    PRIMARY KEY (source_id, entry_id),
    FOREIGN KEY(source_id) REFERENCES sources(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_citations_conversation ON citations(conversation_id);

CREATE VIRTUAL TABLE IF NOT EXISTS sources_fts USING fts5(
    title,
    uri,
    host,
    content='sources',
    content_rowid='id',
    tokenize='unicode61 remove_diacritics 2'
);

-- External-content FTS5 tables need the old values to remove a row.
CREATE TRIGGER IF NOT EXISTS sources_ai AFTER INSERT ON sources BEGIN
    INSERT INTO sources_fts(rowid, title, uri, host)
    VALUES (new.id, new.title, new.uri, new.host);
END;

CREATE TRIGGER IF NOT EXISTS sources_ad AFTER DELETE ON sources BEGIN
    INSERT INTO sources_fts(sources_fts, rowid, title, uri, host)
    VALUES ('delete', old.id, old.title, old.uri, old.host);
END;

CREATE TRIGGER IF NOT EXISTS sources_au AFTER UPDATE OF title, uri, host ON sources BEGIN
    INSERT INTO sources_fts(sources_fts, rowid, title, uri, host)
    VALUES ('delete', old.id, old.title, old.uri, old.host);
    INSERT INTO sources_fts(rowid, title, uri, host)
    VALUES (new.id, new.title, new.uri, new.host);
END;
`

// InitMetadata initializes the metadata table with default values
const InitMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
INSERT OR IGNORE INTO metadata (key, value) VALUES ('created_at', strftime('%s', 'now'));
`
