// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"io"
	"net/http"
)

const defaultMaxUploadBytes = 5 << 20

// UploadHandler handles gait CSV uploads.
type UploadHandler struct {
	deps     Dependencies
	maxBytes int64
}

// NewUploadHandler creates a new upload handler with a request size cap.
func NewUploadHandler(deps Dependencies, maxBytes int64) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	return &UploadHandler{deps: deps, maxBytes: maxBytes}
}

type uploadResponse struct {
	Message  string `json:"message"`
	RecordID string `json:"record_id,omitempty"`
}

// HandleUpload handles POST /api/uploads/gait multipart requests. The file
// travels in the "file" field.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file_too_large", "The file exceeds the upload size limit.")
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_file", ErrMissingFile.Error())
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest.Error())
		return
	}
	res, err := h.deps.UploadGait(r.Context(), sessionID(r), header.Filename, content)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{Message: res.Message, RecordID: res.RecordID})
}
