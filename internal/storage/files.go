package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidFileName is returned for names that could escape the store directory.
var ErrInvalidFileName = errors.New("invalid file name")

// FileInfo describes one stored file.
type FileInfo struct {
	Filename string    `json:"filename"`
	FileSize int64     `json:"file_size"`
	Width    int       `json:"width,omitempty"`
	Height   int       `json:"height,omitempty"`
	Modified time.Time `json:"modified"`
}

// FileStats summarise a tenant's stored files.
type FileStats struct {
	Count     int    `json:"count"`
	TotalSize int64  `json:"total_size"`
	Dir       string `json:"storage_dir"`
}

// FileStore keeps uploaded files on disk, one directory per tenant. Stored
// names are generated, so callers never pick a path.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir. Directories are created on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) tenantDir(tenantID string) string {
	sum := sha256.Sum256([]byte(tenantID))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:8]))
}

func (s *FileStore) path(tenantID, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidFileName
	}
	return filepath.Join(s.tenantDir(tenantID), name), nil
}

// Extension returns the lower-cased extension of an uploaded file name,
// without the dot, or fallback when it has none usable.
func Extension(filename, fallback string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(strings.TrimSpace(filename)), "."))
	if ext == "" || len(ext) > 8 {
		return fallback
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return fallback
		}
	}
	return ext
}

// Put writes data under a new unique name that keeps the extension of
// filename, and returns that name.
func (s *FileStore) Put(tenantID, filename string, data []byte) (string, error) {
	dir := s.tenantDir(tenantID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating file directory: %w", err)
	}
	name := uuid.NewString() + "." + Extension(filename, "bin")

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("storing file: %w", err)
	}
	return name, nil
}

// Path returns the absolute location of a stored file.
func (s *FileStore) Path(tenantID, name string) (string, error) {
	p, err := s.path(tenantID, name)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	return p, nil
}

// Info reports size and, for decodable images, dimensions.
func (s *FileStore) Info(tenantID, name string) (FileInfo, error) {
	p, err := s.Path(tenantID, name)
	if err != nil {
		return FileInfo{}, err
	}
	st, err := os.Stat(p)
	if err != nil {
		return FileInfo{}, fmt.Errorf("reading file metadata: %w", err)
	}
	info := FileInfo{Filename: name, FileSize: st.Size(), Modified: st.ModTime().UTC()}
	if f, err := os.Open(p); err == nil {
		if cfg, _, err := image.DecodeConfig(f); err == nil {
			info.Width, info.Height = cfg.Width, cfg.Height
		}
		f.Close()
	}
	return info, nil
}

// Delete removes a stored file. A missing file is not an error.
func (s *FileStore) Delete(tenantID, name string) error {
	p, err := s.path(tenantID, name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}

// List returns a tenant's stored file names in lexical order.
func (s *FileStore) List(tenantID string) ([]string, error) {
	entries, err := os.ReadDir(s.tenantDir(tenantID))
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading file directory: %w", err)
	}
	names := []string{}
	for _, e := range entries {
		if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Stats counts a tenant's files and their total size.
func (s *FileStore) Stats(tenantID string) (FileStats, error) {
	dir := s.tenantDir(tenantID)
	names, err := s.List(tenantID)
	if err != nil {
		return FileStats{}, err
	}
	stats := FileStats{Dir: dir}
	for _, name := range names {
		st, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		stats.Count++
		stats.TotalSize += st.Size()
	}
	return stats, nil
}
