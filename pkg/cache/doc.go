// Package cache provides the short-lived response cache used by the users
// service.
//
// The service depends on the Store interface only, so any backend that offers
// get/set/delete with a per-entry TTL can be injected:
//
//   - MemoryStore keeps entries in process (jellydator/ttlcache)
//   - RedisStore keeps entries in Redis under a per-process namespace
//
// Expired entries are reported as ErrCacheMiss. Entries are never written
// without a TTL, and a Store never outlives the process that created it.
//
// # Basic Usage
//
//	store := cache.NewMemoryStore()
//	defer store.Close()
//
//	if err := cache.SetJSON(ctx, store, cache.UserKey(2), user, 5*time.Minute); err != nil {
//		return err
//	}
//
//	var cached users.User
//	hit, err := cache.GetJSON(ctx, store, cache.UserKey(2), &cached)
//
// # Metrics
//
// Stores export Prometheus metrics:
//
//   - users_cache_hits_total{layer} - Cache hits
//   - users_cache_misses_total{layer} - Cache misses
//   - users_cache_errors_total{layer,operation} - Cache operation errors
package cache
