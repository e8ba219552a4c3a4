// Package cache provides the TTL key-value store backing weather lookups.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DataType tags what kind of record an entry holds.
type DataType string

const (
	TypeCurrent  DataType = "weather"
	TypeForecast DataType = "forecast"
	TypeHourly   DataType = "hourly"
)

// Entry is one cached record. Entries are immutable after creation except
// for access bookkeeping.
type Entry struct {
	Key         string
	DataType    DataType
	Location    string
	Payload     []byte // serialized domain record
	CreatedAt   time.Time
	ExpiresAt   time.Time
	AccessCount int
}

// Store is a key-value store with per-entry TTL supporting exact, stale and
// similar-location lookups.
type Store interface {
	// Get returns a fresh entry. An expired entry is removed and treated
	// as a miss.
	Get(key string, dataType DataType) (Entry, bool)
	// GetStale returns an entry for the exact key ignoring its TTL.
	GetStale(key string, dataType DataType) (Entry, bool)
	// GetSimilar returns the most recent entry whose location resembles
	// the given one, created within the window.
	GetSimilar(location string, dataType DataType, window time.Duration) (Entry, bool)
	Put(key string, dataType DataType, location string, payload []byte, ttl time.Duration)
	// Sweep removes expired entries and reports how many were dropped.
	Sweep() int
}

// Key derives a deterministic cache key from the normalized location, the
// data type and the sorted extra parameters. Identical inputs always yield
// identical keys; changing any parameter changes the key.
func Key(location string, dataType DataType, params map[string]string) string {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(location)), " ", "_")

	components := []string{normalized, string(dataType)}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		components = append(components, fmt.Sprintf("%s:%s", k, params[k]))
	}

	sum := md5.Sum([]byte(strings.Join(components, "|")))
	return "weather_cache:" + hex.EncodeToString(sum[:])
}
