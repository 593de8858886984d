// Package cache provides a generic, thread-safe LRU cache with optional entry expiry.
//
// Every cache keeps Statistics. Prometheus metrics are exported as well when a
// registrar is given through WithMetrics:
//
//	payloads, err := cache.NewLRU[[]byte](128,
//	    cache.WithTTL[[]byte](10*time.Minute),
//	    cache.WithMetrics[[]byte](registry, "retrieval"))
//	if err != nil {
//	    return err
//	}
//	if _, err := payloads.Set(key, data); err != nil {
//	    return err
//	}
//
// Entries past their TTL are dropped lazily, on the Get that finds them.
package cache
