// Package cache persists per-page fetch records between crawl runs.
//
// The cache lets a re-crawl of the same site report which pages changed
// since the last run, keyed by a checksum of the fetched HTML.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

// Entry is the stored record for a fetched page.
type Entry struct {
	URL       string    `json:"url"`
	Checksum  string    `json:"checksum"`
	Title     string    `json:"title"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Cache manages the bbolt database of page entries.
type Cache struct {
	db *bbolt.DB
}

var bucketName = []byte("pages")

// Open creates or opens the cache database at path, creating parent
// directories as needed.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Put stores an entry, keyed by its URL.
func (c *Cache) Put(entry *Entry) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}

		encoded, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}

		return b.Put([]byte(entry.URL), encoded)
	})
}

// Get retrieves the entry for a URL, or nil if the URL has never been
// cached.
func (c *Cache) Get(url string) (*Entry, error) {
	var entry *Entry
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}

		v := b.Get([]byte(url))
		if v == nil {
			return nil
		}

		entry = &Entry{}
		return json.Unmarshal(v, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return entry, nil
}

// Len reports the number of cached pages.
func (c *Cache) Len() (int, error) {
	var n int
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}
		n = b.Stats().KeyN
		return nil
	})
	return n, err
}

// Clean removes all cached entries.
func (c *Cache) Clean() error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketName) == nil {
			return nil
		}
		return tx.DeleteBucket(bucketName)
	})
}
