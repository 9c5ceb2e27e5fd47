// internal/adapters/out/gcs/upload_cache_test.go
package gcs

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketcart/internal/application/usecase"
)

func testKey() UploadKey {
	return KeyFor(usecase.ReceiptFile{
		Name:         "receipt.pdf",
		ContentType:  "application/pdf",
		Size:         2048,
		LastModified: 1700000000,
	})
}

func TestUploadCacheRunsOncePerKey(t *testing.T) {
	cache := NewUploadCache()

	var calls int32
	fn := func() (string, error) {
		atomic.AddInt32(&calls, 1)
		return "https://storage.googleapis.com/b/receipts/s/receipt.pdf", nil
	}

	var wg sync.WaitGroup
	urls := make([]string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			url, err := cache.Do(testKey(), fn)
			require.NoError(t, err)
			urls[i] = url
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, u := range urls {
		assert.Equal(t, "https://storage.googleapis.com/b/receipts/s/receipt.pdf", u)
	}
	assert.Equal(t, 1, cache.Len())
}

func TestUploadCacheDistinctKeysDoNotShare(t *testing.T) {
	cache := NewUploadCache()

	a := testKey()
	b := testKey()
	b.Size = 4096 // same name, different size is a different file

	var calls int32
	fn := func() (string, error) {
		atomic.AddInt32(&calls, 1)
		return "url", nil
	}

	_, err := cache.Do(a, fn)
	require.NoError(t, err)
	_, err = cache.Do(b, fn)
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls)
	assert.Equal(t, 2, cache.Len())
}

func TestUploadCacheEvictsFailedUpload(t *testing.T) {
	cache := NewUploadCache()

	boom := errors.New("write failed")
	_, err := cache.Do(testKey(), func() (string, error) { return "", boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, cache.Len())

	url, err := cache.Do(testKey(), func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", url)
}

func TestObjectPathRejectsEmptyParts(t *testing.T) {
	_, err := objectPath("", "receipt.pdf")
	assert.Error(t, err)
	_, err = objectPath("sess", "  ")
	assert.Error(t, err)

	p, err := objectPath("sess", "/receipt.pdf")
	require.NoError(t, err)
	assert.Equal(t, "receipts/sess/receipt.pdf", p)
}
