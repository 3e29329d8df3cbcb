// Package cache memoizes full extraction results by input fingerprint.
package cache

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mmtuentertainment/PayPlan-sub009/internal/models"
)

// DefaultSize bounds the number of memoized results when no capacity is
// configured.
const DefaultSize = 128

// Cache is a bounded-recency store of extraction results. A hit returns
// the literal memoized result, ids included, so repeat pastes are stable.
type Cache struct {
	lru *lru.Cache[string, *models.ExtractionResult]
}

// New creates a cache holding at most size results. Non-positive sizes
// fall back to DefaultSize.
func New(size int) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	// lru.New only fails on non-positive size, which is guarded above.
	l, _ := lru.New[string, *models.ExtractionResult](size)
	return &Cache{lru: l}
}

// Fingerprint derives the cache key from the exact input text, timezone,
// and effective locale. The raw text is used rather than the normalized
// form, so whitespace-different pastes are distinct entries.
func Fingerprint(text, timezone, locale string) string {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(timezone))
	h.Write([]byte{0})
	h.Write([]byte(locale))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the memoized result for key, if present.
func (c *Cache) Get(key string) (*models.ExtractionResult, bool) {
	return c.lru.Get(key)
}

// Add stores a result under key, evicting the least recently used entry
// when at capacity.
func (c *Cache) Add(key string, res *models.ExtractionResult) {
	c.lru.Add(key, res)
}

// Len reports the number of cached results.
func (c *Cache) Len() int {
	return c.lru.Len()
}
