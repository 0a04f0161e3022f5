package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"time"
)

// Cache stores LLM results keyed by a hash of the request that produced them.
type Cache interface {
	// Get returns the cached value and whether it was found.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a value with TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Close closes the cache connection
	Close() error
}

// Key derives a cache key from a result kind ("summary", "answer") and the
// request inputs. Inputs are length-prefixed so ("ab","c") and ("a","bc")
// never collide.
func Key(kind string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write([]byte(p))
	}
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}
