// Package storage keeps uploaded files on the local filesystem.
//
// Completed files live flat in the public directory as <hash-or-name><ext>.
// Chunks of an in-progress upload live in temp/<hash>/<name-key>/<hash>_<index>.tmp
// until MergeChunks assembles them. The name key keeps two uploads of the same
// content under different names from sharing chunk files.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"inkstand/internal/domain"
)

const tempDirName = "temp"

// LocalStore stores chunks and completed files under one root directory.
type LocalStore struct {
	publicDir string
	tempRoot  string
}

// NewLocalStore creates the public and temp directories if needed.
func NewLocalStore(publicDir string) (*LocalStore, error) {
	s := &LocalStore{
		publicDir: publicDir,
		tempRoot:  filepath.Join(publicDir, tempDirName),
	}
	if err := os.MkdirAll(s.tempRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dirs: %w", err)
	}
	return s, nil
}

// ChunkName is the file name of chunk idx of hash.
func ChunkName(hash string, idx int) string {
	return fmt.Sprintf("%s_%d.tmp", hash, idx)
}

// NameKey is the directory name used for the chunks of one file name
func NameKey(name string) string {
	sum := sha256.Sum256([]byte(name))
	return hex.EncodeToString(sum[:8])
}

func (s *LocalStore) chunkDir(hash, name string) string {
	return filepath.Join(s.tempRoot, hash, NameKey(name))
}

// WriteChunk stores one chunk of the upload (hash, name). The chunk file
// appears only once fully written.
func (s *LocalStore) WriteChunk(hash, name string, idx int, r io.Reader) error {
	dir := s.chunkDir(hash, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create chunk dir: %w: %w", domain.ErrStorage, err)
	}
	if err := writeAtomic(dir, ChunkName(hash, idx), r); err != nil {
		return fmt.Errorf("write chunk %d: %w: %w", idx, domain.ErrStorage, err)
	}
	return nil
}

// WriteFile stores a whole file directly in the public directory and returns its path.
func (s *LocalStore) WriteFile(finalName string, r io.Reader) (string, error) {
	if err := writeAtomic(s.publicDir, finalName, r); err != nil {
		return "", fmt.Errorf("write %s: %w: %w", finalName, domain.ErrStorage, err)
	}
	return filepath.Join(s.publicDir, finalName), nil
}

// MergeChunks concatenates the chunks of (hash, name) in index order into
// finalName, then removes the chunk files and their directory. The hash
// directory goes too once no other name has chunks in it.
//
// A missing chunk directory, a file count other than total, or a gap in the
// indices is an integrity error. The final file is written to a temporary name
// and renamed into place, so it is never observed half-written.
func (s *LocalStore) MergeChunks(hash, name, finalName string, total int) (string, error) {
	dir := s.chunkDir(hash, name)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("chunk dir for %s missing: %w", hash, domain.ErrIntegrity)
		}
		return "", fmt.Errorf("read chunk dir: %w: %w", domain.ErrStorage, err)
	}
	if len(entries) != total {
		return "", fmt.Errorf("expected %d chunks for %s, found %d: %w", total, hash, len(entries), domain.ErrIntegrity)
	}

	chunks := sortedChunks(hash, entries)
	for i, c := range chunks {
		if c.index != i {
			return "", fmt.Errorf("chunk %d of %s missing: %w", i, hash, domain.ErrIntegrity)
		}
	}
	if len(chunks) != total {
		return "", fmt.Errorf("chunk dir for %s holds foreign files: %w", hash, domain.ErrIntegrity)
	}

	out, err := os.CreateTemp(s.publicDir, ".merge-*")
	if err != nil {
		return "", fmt.Errorf("create merge file: %w: %w", domain.ErrStorage, err)
	}
	tmpPath := out.Name()
	defer os.Remove(tmpPath) // no-op after the rename

	for _, c := range chunks {
		if err := appendFile(out, filepath.Join(dir, c.name)); err != nil {
			out.Close()
			return "", fmt.Errorf("merge chunk %d: %w: %w", c.index, domain.ErrStorage, err)
		}
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close merge file: %w: %w", domain.ErrStorage, err)
	}

	finalPath := filepath.Join(s.publicDir, finalName)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", fmt.Errorf("publish %s: %w: %w", finalName, domain.ErrStorage, err)
	}

	for _, c := range chunks {
		if err := os.Remove(filepath.Join(dir, c.name)); err != nil {
			return finalPath, fmt.Errorf("remove chunk %d: %w: %w", c.index, domain.ErrStorage, err)
		}
	}
	if err := os.Remove(dir); err != nil {
		return finalPath, fmt.Errorf("remove chunk dir: %w: %w", domain.ErrStorage, err)
	}
	// fails while another name still has chunks here
	_ = os.Remove(filepath.Dir(dir))

	return finalPath, nil
}

// Open opens a completed public file. Only flat names are served.
func (s *LocalStore) Open(name string) (*os.File, fs.FileInfo, error) {
	if name == "" || name != filepath.Base(name) || name == tempDirName || strings.HasPrefix(name, ".") {
		return nil, nil, fmt.Errorf("file %q: %w", name, domain.ErrNotFound)
	}

	f, err := os.Open(filepath.Join(s.publicDir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("file %q: %w", name, domain.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("open %s: %w: %w", name, domain.ErrStorage, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w: %w", name, domain.ErrStorage, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, fmt.Errorf("file %q: %w", name, domain.ErrNotFound)
	}
	return f, info, nil
}

type chunkFile struct {
	index int
	name  string
}

// sortedChunks keeps the entries named <hash>_<index>.tmp, sorted by index.
func sortedChunks(hash string, entries []fs.DirEntry) []chunkFile {
	prefix := hash + "_"
	chunks := make([]chunkFile, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".tmp") {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".tmp"))
		if err != nil || idx < 0 {
			continue
		}
		chunks = append(chunks, chunkFile{index: idx, name: name})
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].index < chunks[j].index })
	return chunks
}

func appendFile(dst io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(dst, f)
	return err
}

func writeAtomic(dir, name string, r io.Reader) error {
	tmp, err := os.CreateTemp(dir, ".part-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, name))
}
