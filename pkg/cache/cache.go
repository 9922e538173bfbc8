// Package cache is a byte-budgeted, LRU-evicting, TTL-expiring store for
// optimization outcomes, with transparent compression and an optional
// SQLite-backed durable tier.
package cache

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/condense-ai/condense/pkg/models"
)

const (
	// minCompressSize is the smallest payload worth compressing.
	minCompressSize = 1024
	// maxCompressRatio is the largest compressed/original ratio kept;
	// anything above it is stored uncompressed.
	maxCompressRatio = 0.8
	// accessSampleWindow bounds the rolling latency sample.
	accessSampleWindow = 100
)

// Options configure a Store.
type Options struct {
	MaxBytes    int64
	TTL         time.Duration
	Compression bool
	// Path enables the durable tier when non-empty.
	Path string
}

// entry is a stored payload with its access bookkeeping. Owned exclusively
// by the Store; sizeBytes reflects the stored (post-compression) payload.
type entry struct {
	key              string
	payload          []byte
	compressed       bool
	meta             models.EntryMetadata
	createdAt        time.Time
	accessedAt       time.Time
	accessCount      int64
	sizeBytes        int64
	originalSize     int64
	compressionRatio float64
}

func (e *entry) expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(e.createdAt) > ttl
}

// Hit is the result of a successful Get.
type Hit struct {
	Payload     []byte
	Meta        models.EntryMetadata
	CreatedAt   time.Time
	AccessCount int64
}

// Store is the cache. All operations hold one store-wide lock for their
// whole duration; eviction state and stats stay consistent under
// concurrent use.
type Store struct {
	mu   sync.Mutex
	opts Options

	entries map[string]*entry
	// order tracks access recency: least recently used at the front.
	// Ties between untouched entries fall back to insertion order.
	order []string

	stats       models.CacheStats
	accessTimes []float64

	persist *persistence
}

// New creates a Store. When Options.Path is set, durable entries are loaded,
// already-expired ones purged, and corrupt records discarded.
func New(opts Options) (*Store, error) {
	s := &Store{
		opts:    opts,
		entries: make(map[string]*entry),
	}

	if opts.Path != "" {
		p, err := openPersistence(opts.Path)
		if err != nil {
			return nil, err
		}
		s.persist = p
		s.loadDurable()
	}

	return s, nil
}

// Close releases the durable tier, if any.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.persist == nil {
		return nil
	}
	return s.persist.close()
}

// Get returns the payload and metadata for a fingerprint. An entry found
// expired during lookup is removed as a side effect and counted as a miss.
func (s *Store) Get(key string) (Hit, bool) {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		s.stats.MissCount++
		s.updateHitRate()
		return Hit{}, false
	}

	now := time.Now()
	if e.expired(s.opts.TTL, now) {
		s.removeEntry(key)
		s.stats.MissCount++
		s.updateHitRate()
		return Hit{}, false
	}

	payload := e.payload
	if e.compressed {
		raw, err := decompress(e.payload)
		if err != nil {
			// Unreadable payload is treated as absent.
			log.Printf("cache: discarding corrupt entry %.16s: %v", key, err)
			s.removeEntry(key)
			s.stats.MissCount++
			s.updateHitRate()
			return Hit{}, false
		}
		payload = raw
	}

	e.accessedAt = now
	e.accessCount++
	s.touch(key)

	s.stats.HitCount++
	s.updateHitRate()
	s.recordAccessTime(time.Since(start))

	return Hit{
		Payload:     payload,
		Meta:        e.meta,
		CreatedAt:   e.createdAt,
		AccessCount: e.accessCount,
	}, true
}

// Set stores a payload under a fingerprint, evicting least-recently-used
// entries as needed to honor the byte budget. Empty payloads are rejected.
// A payload too large to ever fit the budget is rejected rather than
// flushing the whole cache for nothing.
func (s *Store) Set(key string, payload []byte, meta models.EntryMetadata) bool {
	if len(payload) == 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, compressed, ratio := maybeCompress(payload, s.opts.Compression, minCompressSize, maxCompressRatio)
	size := int64(len(stored))

	if size > s.opts.MaxBytes {
		return false
	}

	// Overwriting: drop the old entry first so sizes stay accurate.
	if _, ok := s.entries[key]; ok {
		s.removeEntry(key)
	}

	// Evict until the new entry fits. The inserted entry is not yet in the
	// map, so it can never evict itself.
	for s.stats.TotalSizeBytes+size > s.opts.MaxBytes && len(s.order) > 0 {
		lru := s.order[0]
		s.removeEntry(lru)
		s.stats.EvictionCount++
	}

	now := time.Now()
	e := &entry{
		key:              key,
		payload:          stored,
		compressed:       compressed,
		meta:             meta,
		createdAt:        now,
		accessedAt:       now,
		accessCount:      1,
		sizeBytes:        size,
		originalSize:     int64(len(payload)),
		compressionRatio: ratio,
	}

	s.entries[key] = e
	s.order = append(s.order, key)

	s.stats.TotalEntries = len(s.entries)
	s.stats.TotalSizeBytes += size
	if compressed {
		s.stats.CompressionSavingsBytes += int64(len(payload)) - size
	}

	if s.persist != nil {
		if err := s.persist.save(e); err != nil {
			log.Printf("cache: persist %.16s: %v", key, err)
		}
	}

	return true
}

// Delete removes an entry by fingerprint.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false
	}
	s.removeEntry(key)
	return true
}

// Clear removes every entry and resets statistics.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*entry)
	s.order = s.order[:0]
	s.stats = models.CacheStats{}
	s.accessTimes = nil

	if s.persist != nil {
		if err := s.persist.clear(); err != nil {
			log.Printf("cache: clear durable tier: %v", err)
		}
	}
}

// CleanupExpired eagerly removes every expired entry and returns the count.
func (s *Store) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var expired []string
	for key, e := range s.entries {
		if e.expired(s.opts.TTL, now) {
			expired = append(expired, key)
		}
	}
	for _, key := range expired {
		s.removeEntry(key)
	}
	return len(expired)
}

// Stats returns a snapshot of the cache counters.
func (s *Store) Stats() models.CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Describe returns a diagnostic snapshot: the ten most-accessed entries and
// the utilization of the byte budget.
func (s *Store) Describe() models.CacheInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]models.CacheEntryInfo, 0, len(s.entries))
	for _, e := range s.entries {
		infos = append(infos, models.CacheEntryInfo{
			Key:              e.key,
			SizeBytes:        e.sizeBytes,
			CreatedAt:        e.createdAt,
			AccessCount:      e.accessCount,
			CompressionRatio: e.compressionRatio,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].AccessCount != infos[j].AccessCount {
			return infos[i].AccessCount > infos[j].AccessCount
		}
		return infos[i].Key < infos[j].Key
	})
	if len(infos) > 10 {
		infos = infos[:10]
	}

	utilization := 0.0
	if s.opts.MaxBytes > 0 {
		utilization = float64(s.stats.TotalSizeBytes) / float64(s.opts.MaxBytes) * 100
	}
	avgSize := int64(0)
	if len(s.entries) > 0 {
		avgSize = s.stats.TotalSizeBytes / int64(len(s.entries))
	}

	return models.CacheInfo{
		Stats:              s.stats,
		TopEntries:         infos,
		UtilizationPercent: utilization,
		AverageEntrySize:   avgSize,
	}
}

// touch moves a key to the most-recently-used position.
func (s *Store) touch(key string) {
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.order = append(s.order, key)
}

// removeEntry drops an entry from the map, the access order, the stats, and
// the durable tier. Caller holds the lock.
func (s *Store) removeEntry(key string) {
	e, ok := s.entries[key]
	if !ok {
		return
	}
	delete(s.entries, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	s.stats.TotalEntries = len(s.entries)
	s.stats.TotalSizeBytes -= e.sizeBytes

	if s.persist != nil {
		if err := s.persist.delete(key); err != nil {
			log.Printf("cache: delete durable %.16s: %v", key, err)
		}
	}
}

func (s *Store) updateHitRate() {
	total := s.stats.HitCount + s.stats.MissCount
	if total > 0 {
		s.stats.HitRate = float64(s.stats.HitCount) / float64(total) * 100
	}
}

func (s *Store) recordAccessTime(d time.Duration) {
	s.accessTimes = append(s.accessTimes, float64(d.Microseconds())/1000)
	if len(s.accessTimes) > accessSampleWindow {
		s.accessTimes = s.accessTimes[1:]
	}
	sum := 0.0
	for _, t := range s.accessTimes {
		sum += t
	}
	s.stats.AverageAccessTimeMs = sum / float64(len(s.accessTimes))
}

// loadDurable pulls surviving entries from the durable tier in LRU order
// and rebuilds size stats from them. Called from New, before the store is
// shared.
func (s *Store) loadDurable() {
	loaded := s.persist.load(s.opts.TTL)
	for _, e := range loaded {
		s.entries[e.key] = e
		s.order = append(s.order, e.key)
		s.stats.TotalSizeBytes += e.sizeBytes
	}
	s.stats.TotalEntries = len(s.entries)
	if len(loaded) > 0 {
		log.Printf("cache: loaded %d entries from durable storage", len(loaded))
	}
}
