// Package cache persists extraction results between runs. Entries are keyed
// by a hash of file contents plus the normalization switches, so a changed
// file or changed configuration misses cleanly. Payloads are zstd-compressed
// in sqlite, with a small in-memory LRU tier in front.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"modbound/internal/errors"
)

const (
	cacheFileName     = "cache.db"
	defaultMemEntries = 1024
)

// Store is a two-tier extraction cache. Safe for concurrent use.
type Store struct {
	db  *sql.DB
	mem *lru.Cache[string, []byte]
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Open creates or opens the cache database under dir.
func Open(dir string, maxEntries int) (*Store, error) {
	if maxEntries <= 0 {
		maxEntries = defaultMemEntries
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.New(errors.DiskWriteFailed, "creating cache directory", err).WithFile(dir)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, cacheFileName))
	if err != nil {
		return nil, errors.New(errors.InternalError, "opening cache database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.New(errors.InternalError, "configuring cache database", err)
		}
	}

	schema := `CREATE TABLE IF NOT EXISTS extraction_cache (
		key        TEXT PRIMARY KEY,
		payload    BLOB NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.New(errors.InternalError, "creating cache schema", err)
	}

	mem, err := lru.New[string, []byte](maxEntries)
	if err != nil {
		db.Close()
		return nil, errors.New(errors.InternalError, "creating cache memory tier", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, errors.New(errors.InternalError, "creating compressor", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, errors.New(errors.InternalError, "creating decompressor", err)
	}

	return &Store{db: db, mem: mem, enc: enc, dec: dec}, nil
}

// Key derives a cache key from file contents and the switches that influence
// extraction output.
func Key(contents []byte, switches ...string) string {
	h := sha256.New()
	h.Write(contents)
	for _, s := range switches {
		h.Write([]byte{0})
		h.Write([]byte(s))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached payload for key, or false on a miss. Corrupt
// entries are treated as misses.
func (s *Store) Get(key string) ([]byte, bool) {
	if payload, ok := s.mem.Get(key); ok {
		return payload, true
	}

	var compressed []byte
	err := s.db.QueryRow("SELECT payload FROM extraction_cache WHERE key = ?", key).Scan(&compressed)
	if err != nil {
		return nil, false
	}
	payload, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		s.db.Exec("DELETE FROM extraction_cache WHERE key = ?", key)
		return nil, false
	}
	s.mem.Add(key, payload)
	return payload, true
}

// Put stores a payload under key in both tiers.
func (s *Store) Put(key string, payload []byte) error {
	compressed := s.enc.EncodeAll(payload, nil)
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO extraction_cache (key, payload) VALUES (?, ?)",
		key, compressed,
	)
	if err != nil {
		return errors.New(errors.DiskWriteFailed, "writing cache entry", err)
	}
	s.mem.Add(key, payload)
	return nil
}

// Close releases the database and compressor resources.
func (s *Store) Close() error {
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}
