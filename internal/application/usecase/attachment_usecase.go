// internal/application/usecase/attachment_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrAttachmentInvalid  = errors.New("attachment: invalid file")
	ErrAttachmentTooLarge = errors.New("attachment: file too large")
)

// DefaultMaxAttachmentBytes caps receipt uploads at 10 MiB.
const DefaultMaxAttachmentBytes int64 = 10 << 20

// ReceiptFile carries the client-reported metadata of an uploaded file.
// The four fields together identify one logical upload for de-duplication.
type ReceiptFile struct {
	Name         string `json:"name"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`
	LastModified int64  `json:"last_modified"`
}

// AttachmentStorePort persists a receipt file and answers its public URL.
// Implementations de-duplicate concurrent uploads of the same file.
type AttachmentStorePort interface {
	Upload(ctx context.Context, sessionID string, f ReceiptFile, r io.Reader) (string, error)
}

// AttachmentUsecase validates receipt uploads before handing them to the
// store.
type AttachmentUsecase struct {
	store    AttachmentStorePort
	maxBytes int64
}

func NewAttachmentUsecase(store AttachmentStorePort) *AttachmentUsecase {
	return &AttachmentUsecase{store: store, maxBytes: DefaultMaxAttachmentBytes}
}

func NewAttachmentUsecaseWithLimit(store AttachmentStorePort, maxBytes int64) *AttachmentUsecase {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxAttachmentBytes
	}
	return &AttachmentUsecase{store: store, maxBytes: maxBytes}
}

// Attach stores one receipt file for the session and returns its URL.
func (u *AttachmentUsecase) Attach(ctx context.Context, sessionID string, f ReceiptFile, r io.Reader) (string, error) {
	if u == nil || u.store == nil {
		return "", errors.New("attachment: usecase not initialized")
	}
	if strings.TrimSpace(sessionID) == "" {
		return "", fmt.Errorf("%w: session id is empty", ErrAttachmentInvalid)
	}
	if strings.TrimSpace(f.Name) == "" {
		return "", fmt.Errorf("%w: file name is empty", ErrAttachmentInvalid)
	}
	if f.Size <= 0 {
		return "", fmt.Errorf("%w: size must be positive", ErrAttachmentInvalid)
	}
	if f.Size > u.maxBytes {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", ErrAttachmentTooLarge, f.Size, u.maxBytes)
	}
	if r == nil {
		return "", fmt.Errorf("%w: missing file body", ErrAttachmentInvalid)
	}
	return u.store.Upload(ctx, strings.TrimSpace(sessionID), f, r)
}
