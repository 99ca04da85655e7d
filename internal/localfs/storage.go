// Package localfs is the local storage collaborator used by the planner and
// by plan execution.
package localfs

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

const partSuffix = ".part"

// Storage wraps an afero filesystem with the handful of operations the sync
// flow needs.
type Storage struct {
	fs afero.Fs
}

// New returns a Storage backed by fs.
func New(fs afero.Fs) *Storage {
	return &Storage{fs: fs}
}

// NewOS returns a Storage backed by the host filesystem.
func NewOS() *Storage {
	return New(afero.NewOsFs())
}

func (s *Storage) Fs() afero.Fs {
	return s.fs
}

func (s *Storage) Exists(path string) (bool, error) {
	return afero.Exists(s.fs, path)
}

func (s *Storage) SizeOf(path string) (int64, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (s *Storage) ParentDirectoryOf(path string) string {
	return filepath.Dir(path)
}

func (s *Storage) CreateDirectories(path string) error {
	return s.fs.MkdirAll(path, 0o755)
}

// Create opens path for writing, creating parent directories first. Any
// existing file is truncated.
func (s *Storage) Create(path string) (afero.File, error) {
	if err := s.CreateDirectories(s.ParentDirectoryOf(path)); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return s.fs.Create(path)
}

// CreateTemp creates a new hidden file next to path for staging its
// content. The name never matches an existing file.
func (s *Storage) CreateTemp(path string) (afero.File, error) {
	dir := s.ParentDirectoryOf(path)
	if err := s.CreateDirectories(dir); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return afero.TempFile(s.fs, dir, "."+filepath.Base(path)+".*"+partSuffix)
}

// Rename moves from onto to, replacing to.
func (s *Storage) Rename(from, to string) error {
	return s.fs.Rename(from, to)
}

func (s *Storage) Remove(path string) error {
	return s.fs.Remove(path)
}

// CopyFile copies src to dst, creating dst's parent directories and
// replacing any existing file.
func (s *Storage) CopyFile(src, dst string) (int64, error) {
	in, err := s.fs.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := s.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dst, err)
	}

	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	return n, nil
}
