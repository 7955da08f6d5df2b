package cms

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"inkstand/internal/domain"
	models "inkstand/internal/domain/models/cms"
	cmsRepo "inkstand/internal/domain/repositories/cms"
	cmsSvc "inkstand/internal/domain/services/cms"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// PublicPath is the URL prefix completed uploads are served under
const PublicPath = "/api/public/"

type uploadService struct {
	sessionRepo   cmsRepo.UploadSessionRepository
	store         cmsSvc.FileStore
	locker        cmsSvc.SessionLocker
	maxChunkBytes int64
	logger        *slog.Logger
}

// NewUploadService creates a new upload service
func NewUploadService(
	sessionRepo cmsRepo.UploadSessionRepository,
	store cmsSvc.FileStore,
	locker cmsSvc.SessionLocker,
	maxChunkBytes int64,
	logger *slog.Logger,
) cmsSvc.UploadService {
	return &uploadService{
		sessionRepo:   sessionRepo,
		store:         store,
		locker:        locker,
		maxChunkBytes: maxChunkBytes,
		logger:        logger,
	}
}

// UploadChunk stores one chunk of the file identified by (hash, name).
//
// A completed file short-circuits to "cached" and a chunk that is already
// stored to "resume", without touching disk. A single-chunk upload is written
// straight to its public name. Otherwise the chunk is stored and, once every
// index 0..total-1 has arrived in any order, the chunks are merged. All of this
// runs under a per-hash lock, so a file is merged at most once.
func (s *uploadService) UploadChunk(ctx context.Context, req *cmsSvc.UploadChunkRequest) (*cmsSvc.UploadResult, error) {
	if err := s.validateChunkRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// sessions with the same hash share the temp hash directory and the public
	// file, so they serialize even when their names differ
	unlock, err := s.locker.Lock(ctx, req.Hash)
	if err != nil {
		return nil, fmt.Errorf("lock upload session: %w", err)
	}
	defer unlock()

	session, err := s.sessionRepo.Get(ctx, req.Hash, req.Name)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if session != nil {
		if session.IsComplete {
			s.logger.Debug("upload cached", "hash", req.Hash, "name", req.Name)
			return &cmsSvc.UploadResult{Status: cmsSvc.UploadCached, URL: session.URL}, nil
		}
		if session.TotalChunks != req.TotalChunks {
			return nil, &domain.ValidationError{Message: fmt.Sprintf(
				"total_chunks %d does not match the %d declared when the upload started",
				req.TotalChunks, session.TotalChunks)}
		}
		if session.HasChunk(req.ChunkIndex) {
			return resumeResult(session), nil
		}
	} else {
		session = models.NewUploadSession(req.Hash, req.Name, req.Size, req.Type, req.TotalChunks)
	}

	finalName := publicName(req.Hash, req.Name)
	url := strings.TrimSuffix(req.BaseURL, "/") + PublicPath + finalName

	if req.TotalChunks == 1 {
		path, err := s.store.WriteFile(finalName, req.Data)
		if err != nil {
			return nil, err
		}
		session.MarkChunk(0)
		session.MarkComplete(path, url)
		if err := s.sessionRepo.Save(ctx, session); err != nil {
			return nil, err
		}
		s.logger.Info("upload complete", "hash", req.Hash, "name", req.Name, "chunks", 1)
		return &cmsSvc.UploadResult{Status: cmsSvc.UploadComplete, URL: url}, nil
	}

	if err := s.store.WriteChunk(req.Hash, req.Name, req.ChunkIndex, req.Data); err != nil {
		return nil, err
	}
	session.MarkChunk(req.ChunkIndex)

	if session.AllReceived() {
		// On failure the session is not saved: it stays in progress without
		// this chunk, so the client may retry it.
		path, err := s.store.MergeChunks(req.Hash, req.Name, finalName, req.TotalChunks)
		if err != nil {
			s.logger.Error("merge chunks failed", "hash", req.Hash, "name", req.Name, "error", err)
			return nil, err
		}
		session.MarkComplete(path, url)
		if err := s.sessionRepo.Save(ctx, session); err != nil {
			return nil, err
		}
		s.logger.Info("upload complete", "hash", req.Hash, "name", req.Name, "chunks", req.TotalChunks)
		return &cmsSvc.UploadResult{Status: cmsSvc.UploadComplete, URL: url}, nil
	}

	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	idx, received := req.ChunkIndex, session.ReceivedCount
	s.logger.Debug("chunk stored", "hash", req.Hash, "chunk_index", idx, "received", received)
	return &cmsSvc.UploadResult{
		Status:        cmsSvc.UploadAccepted,
		ChunkIndex:    &idx,
		ReceivedCount: &received,
	}, nil
}

// OpenPublic opens a completed upload by its public file name
func (s *uploadService) OpenPublic(name string) (*os.File, fs.FileInfo, error) {
	return s.store.Open(name)
}

func (s *uploadService) validateChunkRequest(req *cmsSvc.UploadChunkRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, notBlank),
		validation.Field(&req.Type, validation.Required),
		validation.Field(&req.Hash, validation.Required, validation.Match(hashPattern)),
		validation.Field(&req.Size, validation.Min(int64(0))),
		validation.Field(&req.TotalChunks, validation.Required, validation.Min(1)),
		validation.Field(&req.ChunkIndex, validation.Min(0), validation.Max(req.TotalChunks-1)),
		validation.Field(&req.Data, validation.NotNil),
	)
	if err != nil {
		return err
	}
	if s.maxChunkBytes > 0 && req.DataSize > s.maxChunkBytes {
		return fmt.Errorf("chunk of %d bytes exceeds the %d byte limit", req.DataSize, s.maxChunkBytes)
	}
	return nil
}

func resumeResult(session *models.UploadSession) *cmsSvc.UploadResult {
	received := session.ReceivedCount
	return &cmsSvc.UploadResult{Status: cmsSvc.UploadResume, ReceivedCount: &received}
}

// publicName is the hash (or the original base name when there is no hash)
// plus the original extension.
func publicName(hash, name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if hash == "" {
		return base
	}
	return hash + ext
}
