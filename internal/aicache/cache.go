// Package aicache memoizes externally generated artifacts (weekly
// summaries, mood insights) per time period and input set.
//
// # Validity rules
//
// A stored record is served only while BOTH hold:
//   - it is younger than the 24h staleness window, and
//   - the content hash of the current input entries matches the hash
//     recorded at generation time.
//
// A record failing either check is treated as absent for lookups but stays
// in storage until the next Put overwrites it. The cache is advisory: any
// read or deserialize failure is a miss, never an error — the external
// generator is always the fallback.
package aicache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/threelines/threelines-cli/internal/core"
	"github.com/threelines/threelines-cli/internal/journal"
	"github.com/threelines/threelines-cli/internal/storage"
)

// ArtifactType names a class of generated content.
type ArtifactType string

const (
	ArtifactSummary ArtifactType = "summary"
	ArtifactMood    ArtifactType = "mood"
)

// record is the JSON stored per (artifact type, period) slot.
type record struct {
	Value       string `json:"value"`
	Timestamp   int64  `json:"timestamp"` // unix milliseconds
	ContentHash string `json:"contentHash"`
}

// Cache is a content-addressed cache over a storage backend. It owns its
// keys independently of the entry store and never mutates entries.
type Cache struct {
	backend storage.Backend
	clock   core.Clock
	ttl     time.Duration
}

// New creates a cache with the standard 24h staleness window.
func New(backend storage.Backend, clock core.Clock) *Cache {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &Cache{backend: backend, clock: clock, ttl: core.AICacheTTL}
}

// Key returns the storage key for a cache slot, e.g. "ai_summary_2024-06-03".
func Key(artifact ArtifactType, periodKey string) string {
	return fmt.Sprintf("%s%s_%s", core.AICacheKeyPrefix, artifact, periodKey)
}

// Get returns the cached value for (artifact, periodKey) if it is fresh and
// was generated from exactly the given entries. The boolean reports a hit.
func (c *Cache) Get(artifact ArtifactType, periodKey string, currentEntries []journal.Entry) (string, bool) {
	data, err := c.backend.Get(Key(artifact, periodKey))
	if err != nil {
		return "", false
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", false
	}

	age := c.clock.Now().Sub(time.UnixMilli(rec.Timestamp))
	if age < 0 || age >= c.ttl {
		return "", false
	}
	if rec.ContentHash != ContentHash(currentEntries) {
		return "", false
	}
	return rec.Value, true
}

// Put stores value for (artifact, periodKey), stamped with now and the
// content hash of the entries it was generated from.
func (c *Cache) Put(artifact ArtifactType, periodKey, value string, currentEntries []journal.Entry) error {
	rec := record{
		Value:       value,
		Timestamp:   c.clock.Now().UnixMilli(),
		ContentHash: ContentHash(currentEntries),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.backend.Set(Key(artifact, periodKey), data)
}

// hashTuple is the per-entry slice of the hash input. Image payloads
// contribute only their presence; re-hashing megabytes of photo data buys
// nothing once the id and sentences are covered.
type hashTuple struct {
	ID        string                        `json:"id"`
	Sentences [journal.SentenceCount]string `json:"sentences"`
	HasImage  bool                          `json:"hasImage"`
}

// ContentHash computes a deterministic digest over the ordered entry list.
// Any change to an entry's identity or content for the period changes the
// hash. The digest is SHA-256 over the canonical JSON of the tuple list;
// stability matters here, not cryptographic strength.
func ContentHash(entries []journal.Entry) string {
	tuples := make([]hashTuple, 0, len(entries))
	for _, e := range entries {
		tuples = append(tuples, hashTuple{
			ID:        e.ID,
			Sentences: e.Sentences,
			HasImage:  e.Image != "",
		})
	}
	data, err := json.Marshal(tuples)
	if err != nil {
		// Marshaling fixed-shape structs cannot fail; keep the signature simple.
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
