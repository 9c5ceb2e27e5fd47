// internal/adapters/in/http/handlers/attachment_handler.go
package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	usecase "marketcart/internal/application/usecase"
)

// maxMultipartMemory bounds the in-memory part of multipart parsing.
const maxMultipartMemory = 32 << 20

// AttachmentHandler serves POST /checkout/attachments: a multipart receipt
// upload stored against the checkout session. The form carries the file
// under "file" and optionally "last_modified" (unix millis) so repeated
// uploads of the same file hit the de-dup cache.
type AttachmentHandler struct {
	uc *usecase.AttachmentUsecase
}

func NewAttachmentHandler(uc *usecase.AttachmentUsecase) http.Handler {
	return &AttachmentHandler{uc: uc}
}

func (h *AttachmentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "attachment handler is not configured")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	sid := readSessionID(r)
	if sid == "" {
		badRequest(w, "session id is required")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		badRequest(w, "malformed multipart form")
		return
	}

	file, hdr, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "file part is required")
		return
	}
	defer file.Close()

	var lastModified int64
	if v := strings.TrimSpace(r.FormValue("last_modified")); v != "" {
		if n, perr := strconv.ParseInt(v, 10, 64); perr == nil {
			lastModified = n
		}
	}

	meta := usecase.ReceiptFile{
		Name:         hdr.Filename,
		ContentType:  hdr.Header.Get("Content-Type"),
		Size:         hdr.Size,
		LastModified: lastModified,
	}

	url, err := h.uc.Attach(r.Context(), sid, meta, file)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrAttachmentTooLarge):
			writeErr(w, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, usecase.ErrAttachmentInvalid):
			badRequest(w, err.Error())
		default:
			log.Printf("[attachment_handler] upload failed: %v elapsed=%s", err, time.Since(start))
			writeErr(w, http.StatusBadGateway, "attachment storage unavailable")
		}
		return
	}

	log.Printf("[attachment_handler] upload ok name=%q size=%d elapsed=%s", meta.Name, meta.Size, time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"url":     url,
	})
}
