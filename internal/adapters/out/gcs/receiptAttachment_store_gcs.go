// internal/adapters/out/gcs/receiptAttachment_store_gcs.go
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"cloud.google.com/go/storage"

	"marketcart/internal/application/usecase"
)

// =====================================================
// GCS-based object storage for checkout receipt files
// =====================================================

// ReceiptAttachmentStoreGCS implements usecase.AttachmentStorePort.
// Uploads are de-duplicated through the injected UploadCache: a file that
// is already stored (or in flight) answers the existing URL without a
// second write.
type ReceiptAttachmentStoreGCS struct {
	Client *storage.Client
	Bucket string
	Cache  *UploadCache
}

func NewReceiptAttachmentStoreGCS(client *storage.Client, bucket string, cache *UploadCache) *ReceiptAttachmentStoreGCS {
	if cache == nil {
		cache = NewUploadCache()
	}
	return &ReceiptAttachmentStoreGCS{
		Client: client,
		Bucket: strings.TrimSpace(bucket),
		Cache:  cache,
	}
}

func (s *ReceiptAttachmentStoreGCS) bucketName() (string, error) {
	if s == nil || s.Client == nil {
		return "", errors.New("receiptAttachment: GCS client is nil")
	}
	b := strings.TrimSpace(s.Bucket)
	if b == "" {
		return "", errors.New("receiptAttachment: bucket is empty")
	}
	return b, nil
}

// objectPath builds "receipts/<sessionID>/<fileName>".
func objectPath(sessionID, fileName string) (string, error) {
	sid := strings.TrimSpace(sessionID)
	f := strings.TrimLeft(strings.TrimSpace(fileName), "/")
	if sid == "" || f == "" {
		return "", fmt.Errorf("invalid sessionID or fileName: %q, %q", sessionID, fileName)
	}
	return "receipts/" + sid + "/" + f, nil
}

func (s *ReceiptAttachmentStoreGCS) Upload(ctx context.Context, sessionID string, f usecase.ReceiptFile, r io.Reader) (string, error) {
	b, err := s.bucketName()
	if err != nil {
		return "", err
	}
	path, err := objectPath(sessionID, f.Name)
	if err != nil {
		return "", err
	}

	return s.Cache.Do(KeyFor(f), func() (string, error) {
		w := s.Client.Bucket(b).Object(path).NewWriter(ctx)
		if ct := strings.TrimSpace(f.ContentType); ct != "" {
			w.ContentType = ct
		}
		w.Metadata = map[string]string{
			"lastModified": fmt.Sprintf("%d", f.LastModified),
		}

		if _, err := io.Copy(w, r); err != nil {
			_ = w.Close()
			return "", fmt.Errorf("receiptAttachment: write %s: %w", path, err)
		}
		if err := w.Close(); err != nil {
			return "", fmt.Errorf("receiptAttachment: close %s: %w", path, err)
		}

		url := publicURL(b, path)
		log.Printf("[gcs] receipt stored: %s", url)
		return url, nil
	})
}

// Delete removes one stored receipt. Missing objects are tolerated.
func (s *ReceiptAttachmentStoreGCS) Delete(ctx context.Context, sessionID, fileName string) error {
	b, err := s.bucketName()
	if err != nil {
		return err
	}
	path, err := objectPath(sessionID, fileName)
	if err != nil {
		return err
	}
	if err := s.Client.Bucket(b).Object(path).Delete(ctx); err != nil &&
		!errors.Is(err, storage.ErrObjectNotExist) {
		return err
	}
	return nil
}

// publicURL builds a public GCS URL.
func publicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, strings.TrimLeft(objectPath, "/"))
}
