// internal/adapters/out/gcs/upload_cache.go
package gcs

import (
	"sync"

	"marketcart/internal/application/usecase"
)

// UploadKey identifies one logical file upload. Two requests carrying the
// same name, content type, size, and lastModified are the same upload.
type UploadKey struct {
	Name         string
	ContentType  string
	Size         int64
	LastModified int64
}

func KeyFor(f usecase.ReceiptFile) UploadKey {
	return UploadKey{
		Name:         f.Name,
		ContentType:  f.ContentType,
		Size:         f.Size,
		LastModified: f.LastModified,
	}
}

type uploadEntry struct {
	done chan struct{}
	url  string
	err  error
}

// UploadCache de-duplicates concurrent uploads of the same file. The first
// caller for a key performs the upload; later callers block until it
// finishes and share its result. Failed uploads are evicted so the next
// caller retries.
//
// The cache is an explicit dependency of the store, never package state:
// construct one per process and inject it.
type UploadCache struct {
	mu      sync.Mutex
	entries map[UploadKey]*uploadEntry
}

func NewUploadCache() *UploadCache {
	return &UploadCache{entries: map[UploadKey]*uploadEntry{}}
}

// Do runs fn for key unless an identical upload already ran or is running.
func (c *UploadCache) Do(key UploadKey, fn func() (string, error)) (string, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		<-e.done
		return e.url, e.err
	}

	e := &uploadEntry{done: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	e.url, e.err = fn()
	close(e.done)

	if e.err != nil {
		c.mu.Lock()
		if c.entries[key] == e {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}
	return e.url, e.err
}

// Len reports the number of cached (in-flight or completed) uploads.
func (c *UploadCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
