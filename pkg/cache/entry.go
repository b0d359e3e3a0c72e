package cache

import (
	"time"
)

// Entry is the envelope RedisStore persists for each key.
type Entry struct {
	// Data is the cached value
	Data []byte `json:"data"`

	// CachedAt is when the value was stored
	CachedAt time.Time `json:"cached_at"`

	// Expires is when the entry becomes absent
	Expires time.Time `json:"expires"`
}

// newEntry builds an entry that expires ttl after now.
func newEntry(data []byte, now time.Time, ttl time.Duration) *Entry {
	return &Entry{
		Data:     data,
		CachedAt: now,
		Expires:  now.Add(ttl),
	}
}

// IsExpired returns true if the cache entry has expired.
func (e *Entry) IsExpired() bool {
	return !time.Now().Before(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}
