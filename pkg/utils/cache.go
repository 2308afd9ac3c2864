package utils

import (
	"sync"
	"time"
)

// In-process TTL cache backing the OAuth state handshake. sync.Map keeps it
// safe under concurrent callbacks.
var memoryCache sync.Map

type cacheItem struct {
	value      string
	expiration int64
}

// SetCache stores a value for 10 minutes, enough to complete an
// authorization round-trip.
func SetCache(key, value string) {
	exp := time.Now().Add(10 * time.Minute).Unix()
	memoryCache.Store(key, cacheItem{value: value, expiration: exp})
}

// GetCache returns the value and whether it is still alive.
func GetCache(key string) (string, bool) {
	val, ok := memoryCache.Load(key)
	if !ok {
		return "", false
	}
	item := val.(cacheItem)
	if time.Now().Unix() > item.expiration {
		memoryCache.Delete(key) // lazy eviction
		return "", false
	}
	return item.value, true
}

// DeleteCache removes a key. States are single-use.
func DeleteCache(key string) {
	memoryCache.Delete(key)
}
