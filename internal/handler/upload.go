package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"inkstand/internal/domain"
	cmsSvc "inkstand/internal/domain/services/cms"
	"inkstand/internal/httputil"
)

// multipartOverhead is headroom for form fields around the chunk body
const multipartOverhead = 1 << 20

// UploadHandler handles chunked uploads and serves completed files
type UploadHandler struct {
	uploadService cmsSvc.UploadService
	maxChunkBytes int64
	publicBaseURL string
	logger        *slog.Logger
}

// NewUploadHandler creates a new upload handler.
// publicBaseURL may be empty, in which case it is derived per request.
func NewUploadHandler(uploadService cmsSvc.UploadService, maxChunkBytes int64, publicBaseURL string, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		maxChunkBytes: maxChunkBytes,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

// UploadChunk accepts one chunk as multipart/form-data
// POST /api/upload
func (h *UploadHandler) UploadChunk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxChunkBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxChunkBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleError(w, h.logger, &domain.ValidationError{Message: "chunk exceeds the maximum chunk size"})
			return
		}
		handleError(w, h.logger, &domain.ValidationError{Message: "invalid multipart form: " + err.Error()})
		return
	}
	defer r.MultipartForm.RemoveAll()

	req, err := h.chunkRequest(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handleError(w, h.logger, &domain.ValidationError{Message: "file is required"})
		return
	}
	defer file.Close()
	req.Data = file
	req.DataSize = header.Size

	result, err := h.uploadService.UploadChunk(r.Context(), req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondOK(w, http.StatusOK, uploadMessage(result.Status), result)
}

func (h *UploadHandler) chunkRequest(r *http.Request) (*cmsSvc.UploadChunkRequest, error) {
	size, err := formInt(r, "size")
	if err != nil {
		return nil, err
	}
	idx, err := formInt(r, "chunkIndex")
	if err != nil {
		return nil, err
	}
	total, err := formInt(r, "totalChunks")
	if err != nil {
		return nil, err
	}

	baseURL := h.publicBaseURL
	if baseURL == "" {
		baseURL = httputil.BaseURL(r)
	}

	return &cmsSvc.UploadChunkRequest{
		Name:        r.FormValue("name"),
		Size:        size,
		Type:        r.FormValue("type"),
		Hash:        r.FormValue("hash"),
		ChunkIndex:  int(idx),
		TotalChunks: int(total),
		BaseURL:     baseURL,
	}, nil
}

func formInt(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return 0, &domain.ValidationError{Message: name + " is required"}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &domain.ValidationError{Message: fmt.Sprintf("%s must be an integer", name)}
	}
	return n, nil
}

func uploadMessage(status string) string {
	switch status {
	case cmsSvc.UploadComplete:
		return "upload complete"
	case cmsSvc.UploadCached:
		return "file already uploaded"
	case cmsSvc.UploadResume:
		return "chunk already received"
	default:
		return "chunk received"
	}
}

// ServePublic serves a completed upload
// GET /api/public/{file}
func (h *UploadHandler) ServePublic(w http.ResponseWriter, r *http.Request) {
	f, info, err := h.uploadService.OpenPublic(r.PathValue("file"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	defer f.Close()

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
