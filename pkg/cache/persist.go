package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

const createCacheTable = `
CREATE TABLE IF NOT EXISTS cache_entries (
	fingerprint TEXT PRIMARY KEY,
	payload BLOB NOT NULL,
	compressed INTEGER NOT NULL,
	metadata TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	accessed_at DATETIME NOT NULL,
	access_count INTEGER NOT NULL,
	size_bytes INTEGER NOT NULL,
	original_size INTEGER NOT NULL,
	compression_ratio REAL NOT NULL
);
`

// persistence mirrors cache entries into SQLite, keyed by fingerprint.
// Writes are per-entry, not transactional across entries; a stale row left
// by a crash is overwritten on the next successful save or purged on load
// once expired.
type persistence struct {
	db *sql.DB
}

func openPersistence(path string) (*persistence, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(createCacheTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}
	return &persistence{db: db}, nil
}

func (p *persistence) close() error {
	return p.db.Close()
}

// save upserts one entry.
func (p *persistence) save(e *entry) error {
	meta, err := json.Marshal(e.meta)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	_, err = p.db.Exec(
		`INSERT OR REPLACE INTO cache_entries
		 (fingerprint, payload, compressed, metadata, created_at, accessed_at, access_count, size_bytes, original_size, compression_ratio)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.key, e.payload, boolToInt(e.compressed), string(meta),
		e.createdAt.UTC(), e.accessedAt.UTC(), e.accessCount, e.sizeBytes, e.originalSize, e.compressionRatio,
	)
	if err != nil {
		return fmt.Errorf("save entry: %w", err)
	}
	return nil
}

func (p *persistence) delete(key string) error {
	_, err := p.db.Exec(`DELETE FROM cache_entries WHERE fingerprint = ?`, key)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

func (p *persistence) clear() error {
	_, err := p.db.Exec(`DELETE FROM cache_entries`)
	if err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	return nil
}

// load returns surviving entries ordered least-recently-accessed first.
// Expired rows are purged immediately; corrupt rows are treated as absent
// and purged rather than failing the load.
func (p *persistence) load(ttl time.Duration) []*entry {
	rows, err := p.db.Query(
		`SELECT fingerprint, payload, compressed, metadata, created_at, accessed_at, access_count, size_bytes, original_size, compression_ratio
		 FROM cache_entries ORDER BY accessed_at ASC`)
	if err != nil {
		log.Printf("cache: load durable tier: %v", err)
		return nil
	}
	defer rows.Close()

	now := time.Now()
	var loaded []*entry
	var purge []string

	for rows.Next() {
		var (
			e          entry
			compressed int
			metaJSON   string
		)
		err := rows.Scan(&e.key, &e.payload, &compressed, &metaJSON,
			&e.createdAt, &e.accessedAt, &e.accessCount, &e.sizeBytes, &e.originalSize, &e.compressionRatio)
		if err != nil {
			log.Printf("cache: skipping unreadable durable record: %v", err)
			continue
		}
		if err := json.Unmarshal([]byte(metaJSON), &e.meta); err != nil {
			log.Printf("cache: purging corrupt durable record %.16s: %v", e.key, err)
			purge = append(purge, e.key)
			continue
		}
		if e.expired(ttl, now) {
			purge = append(purge, e.key)
			continue
		}
		e.compressed = compressed != 0
		loaded = append(loaded, &e)
	}

	for _, key := range purge {
		if err := p.delete(key); err != nil {
			log.Printf("cache: purge durable %.16s: %v", key, err)
		}
	}
	return loaded
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
