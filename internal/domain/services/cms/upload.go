package cms

import (
	"context"
	"io"
	"io/fs"
	"os"
)

// Upload statuses reported to the client
const (
	UploadAccepted = "accepted" // chunk stored, more expected
	UploadResume   = "resume"   // chunk already stored; continue from ReceivedCount
	UploadComplete = "complete" // file assembled by this request
	UploadCached   = "cached"   // file was already complete; nothing written
)

// UploadService accepts resumable chunked uploads
type UploadService interface {
	UploadChunk(ctx context.Context, req *UploadChunkRequest) (*UploadResult, error)
	// OpenPublic opens a completed file for serving
	OpenPublic(name string) (*os.File, fs.FileInfo, error)
}

// FileStore holds chunks and completed files
type FileStore interface {
	WriteChunk(hash, name string, idx int, r io.Reader) error
	WriteFile(finalName string, r io.Reader) (string, error)
	MergeChunks(hash, name, finalName string, total int) (string, error)
	Open(name string) (*os.File, fs.FileInfo, error)
}

// SessionLocker serializes requests for one upload session
type SessionLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// UploadChunkRequest carries one chunk and the file metadata sent with it
type UploadChunkRequest struct {
	Name        string
	Size        int64
	Type        string
	Hash        string
	ChunkIndex  int
	TotalChunks int
	Data        io.Reader
	DataSize    int64
	// BaseURL prefixes public URLs, e.g. "https://example.com"
	BaseURL string
}

// UploadResult is the data returned for every accepted request
type UploadResult struct {
	Status        string `json:"status"`
	ChunkIndex    *int   `json:"chunk_index,omitempty"`
	ReceivedCount *int   `json:"received_count,omitempty"`
	URL           string `json:"url,omitempty"`
}
