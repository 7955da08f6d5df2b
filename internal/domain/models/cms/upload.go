package cms

import (
	"time"

	"github.com/RoaringBitmap/roaring"
)

// UploadSession tracks one resumable upload, keyed by (Hash, Name).
//
// State: absent -> in progress (Received non-empty, !IsComplete) -> complete.
type UploadSession struct {
	Hash          string          `json:"hash" db:"hash"`
	Name          string          `json:"name" db:"name"`
	Size          int64           `json:"size" db:"size"`
	MimeType      string          `json:"type" db:"mime_type"`
	TotalChunks   int             `json:"total_chunks" db:"total_chunks"`
	ReceivedCount int             `json:"received_count" db:"received_count"`
	Received      *roaring.Bitmap `json:"-" db:"received_chunks"`
	IsComplete    bool            `json:"is_complete" db:"is_complete"`
	FinalPath     string          `json:"-" db:"final_path"`
	URL           string          `json:"url,omitempty" db:"url"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// NewUploadSession starts an in-progress session with no chunks.
func NewUploadSession(hash, name string, size int64, mimeType string, total int) *UploadSession {
	return &UploadSession{
		Hash:        hash,
		Name:        name,
		Size:        size,
		MimeType:    mimeType,
		TotalChunks: total,
		Received:    roaring.New(),
	}
}

// HasChunk reports whether chunk idx was already stored.
func (s *UploadSession) HasChunk(idx int) bool {
	return s.Received != nil && s.Received.Contains(uint32(idx))
}

// MarkChunk records chunk idx as stored. ReceivedCount never decreases.
func (s *UploadSession) MarkChunk(idx int) {
	if s.Received == nil {
		s.Received = roaring.New()
	}
	s.Received.Add(uint32(idx))
	if n := int(s.Received.GetCardinality()); n > s.ReceivedCount {
		s.ReceivedCount = n
	}
}

// AllReceived reports whether every chunk 0..TotalChunks-1 is stored.
func (s *UploadSession) AllReceived() bool {
	return s.Received != nil && s.TotalChunks > 0 &&
		s.Received.GetCardinality() == uint64(s.TotalChunks)
}

// MarkComplete finalizes the session.
func (s *UploadSession) MarkComplete(finalPath, url string) {
	s.IsComplete = true
	s.FinalPath = finalPath
	s.URL = url
	s.ReceivedCount = s.TotalChunks
}
