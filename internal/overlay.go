package internal

import (
	"encoding/json"
	"sort"
	"strconv"
	"time"
)

// CatalogRecord is the contract a record must satisfy to live in the
// overlay cache and the catalog clients.
type CatalogRecord interface {
	RecordID() int
	Active() bool
	SearchText() string
}

// Overlay namespaces, one per entity kind, so the two catalogs never
// collide in the shared store.
const (
	OverlayKindEnfoques  = "enfoques"
	OverlayKindProductos = "productos"
)

// OverlayCache is the optimistic write-through cache for one entity kind.
// It papers over read-after-write inconsistency in the backend: a record
// written here right after a confirmed mutation is merged into every
// subsequent listing until the read path catches up.
//
// All persistence failures are swallowed: a broken store behaves like an
// empty cache and writes become no-ops. The overlay is a convenience layer,
// never a correctness requirement.
type OverlayCache[T CatalogRecord] struct {
	kind   string
	store  KVStore
	maxAge time.Duration
	now    func() time.Time
}

// NewOverlayCache creates an overlay cache for the given entity kind.
// maxAge bounds how long an entry may keep shadowing server reads; zero
// disables age-based eviction.
func NewOverlayCache[T CatalogRecord](kind string, store KVStore, maxAge time.Duration) *OverlayCache[T] {
	return &OverlayCache[T]{
		kind:   kind,
		store:  store,
		maxAge: maxAge,
		now:    time.Now,
	}
}

func (c *OverlayCache[T]) storageKey() string {
	return "overlay:" + c.kind
}

// load reads the persisted map, dropping entries past maxAge. Any storage
// or decode failure yields an empty map.
func (c *OverlayCache[T]) load() map[string]OverlayEntry[T] {
	entries := make(map[string]OverlayEntry[T])

	value, err := c.store.Get(c.storageKey())
	if err != nil {
		LogDebug("overlay %s: read failed, treating as empty: %v", c.kind, err)
		return entries
	}
	if value == "" {
		return entries
	}

	if err := json.Unmarshal([]byte(value), &entries); err != nil {
		LogDebug("overlay %s: corrupt cache, treating as empty: %v", c.kind, err)
		return make(map[string]OverlayEntry[T])
	}

	if c.maxAge > 0 {
		cutoff := c.now().Add(-c.maxAge)
		for key, entry := range entries {
			if entry.CapturedAt.Before(cutoff) {
				delete(entries, key)
			}
		}
	}

	return entries
}

// save persists the map; failures are swallowed
func (c *OverlayCache[T]) save(entries map[string]OverlayEntry[T]) {
	data, err := json.Marshal(entries)
	if err != nil {
		LogDebug("overlay %s: marshal failed, skipping write: %v", c.kind, err)
		return
	}
	if err := c.store.Set(c.storageKey(), string(data)); err != nil {
		LogDebug("overlay %s: write failed, skipping: %v", c.kind, err)
	}
}

// Upsert records a just-written entity. No-op when the record id is zero.
func (c *OverlayCache[T]) Upsert(record T) {
	if record.RecordID() == 0 {
		return
	}
	entries := c.load()
	entries[strconv.Itoa(record.RecordID())] = OverlayEntry[T]{
		Record:     record,
		CapturedAt: c.now(),
	}
	c.save(entries)
}

// Get returns the cached record for id, if an entry exists
func (c *OverlayCache[T]) Get(id int) (T, bool) {
	entry, found := c.load()[strconv.Itoa(id)]
	return entry.Record, found
}

// Remove deletes the entry for id, stopping future reinjection
func (c *OverlayCache[T]) Remove(id int) {
	entries := c.load()
	key := strconv.Itoa(id)
	if _, found := entries[key]; !found {
		return
	}
	delete(entries, key)
	c.save(entries)
}

// Entries returns a snapshot of the persisted map
func (c *OverlayCache[T]) Entries() map[string]OverlayEntry[T] {
	return c.load()
}

// Clear drops every entry for this kind
func (c *OverlayCache[T]) Clear() {
	if err := c.store.Delete(c.storageKey()); err != nil {
		LogDebug("overlay %s: clear failed: %v", c.kind, err)
	}
}

// MergeWithListing reconciles a freshly fetched listing with the overlay:
//
//  1. A record present in both keeps the cached version (cache wins — it
//     reflects a write the read path may not have observed yet).
//  2. A cached record absent from the listing is injected, unless onlyActive
//     filtering is in effect and the cached record is inactive.
//  3. Injected records are prepended, most recently captured first; the
//     listing's own order is preserved after them.
//
// Read-only: the cache itself is not mutated.
func (c *OverlayCache[T]) MergeWithListing(listing []T, onlyActive bool) []T {
	entries := c.load()

	listed := make(map[string]bool, len(listing))
	for _, rec := range listing {
		listed[strconv.Itoa(rec.RecordID())] = true
	}

	type injected struct {
		record     T
		capturedAt time.Time
	}
	var extra []injected
	for key, entry := range entries {
		if listed[key] {
			continue
		}
		if onlyActive && !entry.Record.Active() {
			continue
		}
		extra = append(extra, injected{record: entry.Record, capturedAt: entry.CapturedAt})
	}
	sort.Slice(extra, func(i, j int) bool {
		return extra[i].capturedAt.After(extra[j].capturedAt)
	})

	merged := make([]T, 0, len(extra)+len(listing))
	for _, inj := range extra {
		merged = append(merged, inj.record)
	}
	for _, rec := range listing {
		if entry, found := entries[strconv.Itoa(rec.RecordID())]; found {
			merged = append(merged, entry.Record)
		} else {
			merged = append(merged, rec)
		}
	}
	return merged
}

// EvictConfirmed drops entries whose server-listed row is now
// field-identical to the cached record: the read path has caught up, so the
// overlay no longer needs to shadow it. Records that differ are kept
// (cache still wins for them).
func (c *OverlayCache[T]) EvictConfirmed(listing []T) {
	entries := c.load()
	if len(entries) == 0 {
		return
	}

	changed := false
	for _, rec := range listing {
		key := strconv.Itoa(rec.RecordID())
		entry, found := entries[key]
		if !found {
			continue
		}
		if jsonEqual(entry.Record, rec) {
			delete(entries, key)
			changed = true
		}
	}

	if changed {
		c.save(entries)
	}
}
