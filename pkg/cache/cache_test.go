package cache

import (
	"bytes"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/condense-ai/condense/pkg/models"
)

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	s, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSetAndGet(t *testing.T) {
	s := newTestStore(t, Options{MaxBytes: 1 << 20, TTL: time.Hour})

	meta := models.EntryMetadata{OriginalTokens: 100, OptimizedTokens: 60, QualityScore: 0.9}
	if !s.Set("key1", []byte("optimized text"), meta) {
		t.Fatal("set should succeed")
	}

	hit, ok := s.Get("key1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(hit.Payload) != "optimized text" {
		t.Errorf("unexpected payload: %q", hit.Payload)
	}
	if hit.Meta.OriginalTokens != 100 || hit.Meta.OptimizedTokens != 60 {
		t.Errorf("metadata not preserved: %+v", hit.Meta)
	}
	if hit.AccessCount != 2 {
		t.Errorf("expected access count 2 (set + get), got %d", hit.AccessCount)
	}

	if _, ok := s.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestSetRejectsEmptyPayload(t *testing.T) {
	s := newTestStore(t, Options{MaxBytes: 1 << 20, TTL: time.Hour})

	if s.Set("key1", nil, models.EntryMetadata{}) {
		t.Error("empty payload should be rejected")
	}
	if s.Set("key1", []byte{}, models.EntryMetadata{}) {
		t.Error("zero-length payload should be rejected")
	}
}

func TestExpiredEntryIsMissAndRemoved(t *testing.T) {
	s := newTestStore(t, Options{MaxBytes: 1 << 20, TTL: 0})

	s.Set("key1", []byte("data"), models.EntryMetadata{})
	time.Sleep(2 * time.Millisecond)

	if _, ok := s.Get("key1"); ok {
		t.Error("expired entry must never be returned")
	}

	stats := s.Stats()
	if stats.HitCount != 0 {
		t.Errorf("expired lookup must count as miss, got %d hits", stats.HitCount)
	}
	if stats.MissCount != 1 {
		t.Errorf("expected 1 miss, got %d", stats.MissCount)
	}
	if stats.TotalEntries != 0 {
		t.Errorf("expired entry should be removed during lookup, have %d", stats.TotalEntries)
	}
}

func TestCleanupExpired(t *testing.T) {
	s := newTestStore(t, Options{MaxBytes: 1 << 20, TTL: 10 * time.Millisecond})

	s.Set("a", []byte("data a"), models.EntryMetadata{})
	s.Set("b", []byte("data b"), models.EntryMetadata{})
	time.Sleep(20 * time.Millisecond)
	s.Set("c", []byte("data c"), models.EntryMetadata{})

	removed := s.CleanupExpired()
	if removed != 2 {
		t.Errorf("expected 2 expired entries removed, got %d", removed)
	}
	if _, ok := s.Get("c"); !ok {
		t.Error("fresh entry should survive the sweep")
	}
}

func TestEvictionBound(t *testing.T) {
	s := newTestStore(t, Options{MaxBytes: 1000, TTL: time.Hour})

	payload := bytes.Repeat([]byte("x"), 150)
	for i := 0; i < 10; i++ {
		if !s.Set(fmt.Sprintf("key%d", i), payload, models.EntryMetadata{}) {
			t.Fatalf("set %d should succeed after eviction", i)
		}
		if got := s.Stats().TotalSizeBytes; got > 1000 {
			t.Fatalf("size %d exceeds budget after set %d", got, i)
		}
	}

	stats := s.Stats()
	if stats.TotalEntries > 6 {
		t.Errorf("expected at most 6 entries retained, got %d", stats.TotalEntries)
	}
	if stats.EvictionCount < 4 {
		t.Errorf("expected at least 4 evictions, got %d", stats.EvictionCount)
	}
}

func TestLRUEvictionOrder(t *testing.T) {
	s := newTestStore(t, Options{MaxBytes: 320, TTL: time.Hour})
	payload := bytes.Repeat([]byte("x"), 150)

	s.Set("a", payload, models.EntryMetadata{})
	s.Set("b", payload, models.EntryMetadata{})

	// Touch a so b becomes least recently used.
	if _, ok := s.Get("a"); !ok {
		t.Fatal("expected hit for a")
	}

	s.Set("c", payload, models.EntryMetadata{})

	if _, ok := s.Get("b"); ok {
		t.Error("b should have been evicted as LRU")
	}
	if _, ok := s.Get("a"); !ok {
		t.Error("recently accessed a should survive")
	}
	if _, ok := s.Get("c"); !ok {
		t.Error("newly inserted c should survive")
	}
}

func TestOversizePayloadRejected(t *testing.T) {
	s := newTestStore(t, Options{MaxBytes: 100, TTL: time.Hour})

	s.Set("small", []byte("fits"), models.EntryMetadata{})
	if s.Set("huge", bytes.Repeat([]byte{0xff}, 200), models.EntryMetadata{}) {
		t.Error("payload larger than the whole budget should be rejected")
	}
	if _, ok := s.Get("small"); !ok {
		t.Error("rejected oversize set must not evict existing entries")
	}
}

func TestCompressionRoundTrip(t *testing.T) {
	s := newTestStore(t, Options{MaxBytes: 1 << 20, TTL: time.Hour, Compression: true})

	// Highly repetitive, well above the 1KB threshold.
	payload := bytes.Repeat([]byte("the same line of text again\n"), 200)
	if !s.Set("big", payload, models.EntryMetadata{}) {
		t.Fatal("set should succeed")
	}

	stats := s.Stats()
	if stats.CompressionSavingsBytes <= 0 {
		t.Error("repetitive payload should compress with measurable savings")
	}
	if stats.TotalSizeBytes >= int64(len(payload)) {
		t.Errorf("stored size %d should be below original %d", stats.TotalSizeBytes, len(payload))
	}

	hit, ok := s.Get("big")
	if !ok {
		t.Fatal("expected hit")
	}
	if !bytes.Equal(hit.Payload, payload) {
		t.Error("decompressed payload differs from original")
	}
}

func TestSmallPayloadNotCompressed(t *testing.T) {
	s := newTestStore(t, Options{MaxBytes: 1 << 20, TTL: time.Hour, Compression: true})

	s.Set("small", []byte("short"), models.EntryMetadata{})
	if s.Stats().CompressionSavingsBytes != 0 {
		t.Error("payloads under 1KB must be stored uncompressed")
	}
}

func TestDeleteAndClear(t *testing.T) {
	s := newTestStore(t, Options{MaxBytes: 1 << 20, TTL: time.Hour})

	s.Set("a", []byte("data"), models.EntryMetadata{})
	s.Set("b", []byte("data"), models.EntryMetadata{})

	if !s.Delete("a") {
		t.Error("delete of existing key should report true")
	}
	if s.Delete("a") {
		t.Error("delete of absent key should report false")
	}

	s.Clear()
	stats := s.Stats()
	if stats.TotalEntries != 0 || stats.TotalSizeBytes != 0 {
		t.Errorf("clear should reset entries and size, got %+v", stats)
	}
}

func TestHitRate(t *testing.T) {
	s := newTestStore(t, Options{MaxBytes: 1 << 20, TTL: time.Hour})

	s.Set("a", []byte("data"), models.EntryMetadata{})
	s.Get("a")
	s.Get("a")
	s.Get("missing")
	s.Get("missing")

	stats := s.Stats()
	if stats.HitCount != 2 || stats.MissCount != 2 {
		t.Fatalf("expected 2 hits / 2 misses, got %d/%d", stats.HitCount, stats.MissCount)
	}
	if stats.HitRate != 50 {
		t.Errorf("expected 50%% hit rate, got %.1f", stats.HitRate)
	}
}

func TestDescribe(t *testing.T) {
	s := newTestStore(t, Options{MaxBytes: 1000, TTL: time.Hour})

	s.Set("hot", []byte("data"), models.EntryMetadata{})
	s.Set("cold", []byte("data"), models.EntryMetadata{})
	s.Get("hot")
	s.Get("hot")

	info := s.Describe()
	if len(info.TopEntries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(info.TopEntries))
	}
	if info.TopEntries[0].Key != "hot" {
		t.Errorf("most accessed entry should rank first, got %s", info.TopEntries[0].Key)
	}
	if info.UtilizationPercent <= 0 {
		t.Error("expected non-zero utilization")
	}
}

func TestPersistenceReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	s1, err := New(Options{MaxBytes: 1 << 20, TTL: time.Hour, Path: path})
	if err != nil {
		t.Fatal(err)
	}
	meta := models.EntryMetadata{OriginalTokens: 50, OptimizedTokens: 30, QualityScore: 0.8}
	s1.Set("persisted", []byte("durable payload"), meta)
	if err := s1.Close(); err != nil {
		t.Fatal(err)
	}

	s2 := newTestStore(t, Options{MaxBytes: 1 << 20, TTL: time.Hour, Path: path})
	hit, ok := s2.Get("persisted")
	if !ok {
		t.Fatal("entry should survive a restart")
	}
	if string(hit.Payload) != "durable payload" {
		t.Errorf("unexpected payload after reload: %q", hit.Payload)
	}
	if hit.Meta.OptimizedTokens != 30 {
		t.Errorf("metadata not restored: %+v", hit.Meta)
	}
	if got := s2.Stats().TotalEntries; got != 1 {
		t.Errorf("stats should be rebuilt from loaded entries, got %d", got)
	}
}

func TestPersistenceExpiredPurgedOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	s1, err := New(Options{MaxBytes: 1 << 20, TTL: 10 * time.Millisecond, Path: path})
	if err != nil {
		t.Fatal(err)
	}
	s1.Set("shortlived", []byte("data"), models.EntryMetadata{})
	if err := s1.Close(); err != nil {
		t.Fatal(err)
	}

	time.Sleep(20 * time.Millisecond)

	s2 := newTestStore(t, Options{MaxBytes: 1 << 20, TTL: 10 * time.Millisecond, Path: path})
	if _, ok := s2.Get("shortlived"); ok {
		t.Error("expired durable entry must be purged on load")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM cache_entries WHERE fingerprint = 'shortlived'`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Error("expired durable row should be deleted, not just skipped")
	}
}

func TestPersistenceCorruptRecordPurged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	s1, err := New(Options{MaxBytes: 1 << 20, TTL: time.Hour, Path: path})
	if err != nil {
		t.Fatal(err)
	}
	s1.Set("good", []byte("data"), models.EntryMetadata{})
	if err := s1.Close(); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now().UTC()
	_, err = db.Exec(
		`INSERT INTO cache_entries VALUES (?, ?, 0, ?, ?, ?, 1, 4, 4, 1.0)`,
		"corrupt", []byte("data"), "{not json", now, now,
	)
	if err != nil {
		t.Fatal(err)
	}
	db.Close()

	s2 := newTestStore(t, Options{MaxBytes: 1 << 20, TTL: time.Hour, Path: path})
	if _, ok := s2.Get("corrupt"); ok {
		t.Error("corrupt durable record must be treated as absent")
	}
	if _, ok := s2.Get("good"); !ok {
		t.Error("valid records must still load alongside corrupt ones")
	}
}
