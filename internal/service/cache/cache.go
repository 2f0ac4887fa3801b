package cache

import "time"

// BytesCache is a minimal cache API storing raw bytes with TTL. Forecast
// responses are cached as serialized JSON under a per-request key.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
