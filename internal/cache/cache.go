// Package cache implements a content-addressed store for tree-token
// flattenings, keyed by the hash of the source text that produced them.
// Parse and the treetoken flatten operations never touch this package —
// it exists purely for callers (cmd/structlens) that want to avoid
// re-lexing and re-parsing a file that has not changed since its last
// flattening.
package cache

import (
	"bytes"
	"crypto/sha256"
	"database/sql"
	"encoding/gob"
	"encoding/hex"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/codeglass/structlens/internal/config"
	"github.com/codeglass/structlens/internal/position"
	"github.com/codeglass/structlens/internal/treetoken"
)

// Entry is the serializable projection of a treetoken.TreeToken: the
// cache stores this, not the TreeToken itself, because OriginalNode
// carries live Parent/Children pointers into a specific parse tree and
// has no business surviving a round trip through gob into a future
// process that never built that tree.
type Entry struct {
	Text      string
	TokenType treetoken.Kind
	Range     *position.Range
}

// Key identifies one cached flattening: the source text's content hash,
// the language it was parsed as, and the fidelity mode it was flattened
// at. Two requests for the same source under the same language and mode
// always hit the same row; anything else is a cache miss, never a
// stale hit.
type Key struct {
	SourceHash string
	Language   config.Language
	Mode       string
}

// NewKey derives a Key from source text. mode is caller-defined (e.g.
// "faithful:3" for FidelityFunctionsAndClassesAndArguments, or
// "simplified:    " for a given indent unit) so both flatten families
// share one table without the cache needing to know either one's shape.
func NewKey(source string, language config.Language, mode string) Key {
	sum := sha256.Sum256([]byte(source))
	return Key{SourceHash: hex.EncodeToString(sum[:]), Language: language, Mode: mode}
}

// Store is a sqlite-backed cache of []Entry values keyed by Key. It is
// safe for concurrent use (database/sql pools its own connections).
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a cache database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS tree_tokens (
	source_hash TEXT NOT NULL,
	language    TEXT NOT NULL,
	mode        TEXT NOT NULL,
	payload     BLOB NOT NULL,
	PRIMARY KEY (source_hash, language, mode)
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached entries for key, and whether they were found.
func (s *Store) Get(key Key) ([]Entry, bool, error) {
	row := s.db.QueryRow(
		`SELECT payload FROM tree_tokens WHERE source_hash = ? AND language = ? AND mode = ?`,
		key.SourceHash, string(key.Language), key.Mode,
	)
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache: get %+v: %w", key, err)
	}
	var entries []Entry
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&entries); err != nil {
		return nil, false, fmt.Errorf("cache: decode %+v: %w", key, err)
	}
	return entries, true, nil
}

// Put stores entries under key, overwriting any previous value.
func (s *Store) Put(key Key, entries []Entry) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entries); err != nil {
		return fmt.Errorf("cache: encode %+v: %w", key, err)
	}
	_, err := s.db.Exec(
		`INSERT INTO tree_tokens (source_hash, language, mode, payload) VALUES (?, ?, ?, ?)
		 ON CONFLICT (source_hash, language, mode) DO UPDATE SET payload = excluded.payload`,
		key.SourceHash, string(key.Language), key.Mode, buf.Bytes(),
	)
	if err != nil {
		return fmt.Errorf("cache: put %+v: %w", key, err)
	}
	return nil
}

// FromTreeTokens projects a []treetoken.TreeToken into its cacheable form.
func FromTreeTokens(toks []treetoken.TreeToken) []Entry {
	entries := make([]Entry, len(toks))
	for i, t := range toks {
		entries[i] = Entry{Text: t.Text, TokenType: t.TokenType, Range: t.Range}
	}
	return entries
}

// ToTreeTokens expands cached entries back into TreeTokens with a nil
// OriginalNode — a cache hit never had the live tree to attach one to.
func ToTreeTokens(entries []Entry) []treetoken.TreeToken {
	toks := make([]treetoken.TreeToken, len(entries))
	for i, e := range entries {
		toks[i] = treetoken.TreeToken{Text: e.Text, TokenType: e.TokenType, Range: e.Range}
	}
	return toks
}
