package adapter

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/lore/pkg/model"
)

// fileStorage implements Storage interface on the local filesystem
type fileStorage struct {
	baseDir string
}

// NewFileStorage creates a Storage that resolves relative keys under baseDir
func NewFileStorage(baseDir string) Storage {
	return &fileStorage{baseDir: baseDir}
}

func (s *fileStorage) path(key string) string {
	if filepath.IsAbs(key) {
		return key
	}
	return filepath.Join(s.baseDir, key)
}

func (s *fileStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	path := s.path(key)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(err, "file not found",
				goerr.V("path", path),
				goerr.T(model.ErrTagNotFound))
		}
		return nil, goerr.Wrap(err, "failed to open file", goerr.V("path", path))
	}
	return f, nil
}

// Put writes into a temporary file next to the target and renames it on Close,
// so the previous contents stay intact if writing fails halfway.
func (s *fileStorage) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	path := s.path(key)
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create temporary file", goerr.V("dir", dir))
	}

	mode := fs.FileMode(0644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}

	return &atomicFile{tmp: tmp, path: path, mode: mode}, nil
}

type atomicFile struct {
	tmp    *os.File
	path   string
	mode   fs.FileMode
	failed bool
}

func (f *atomicFile) Write(p []byte) (int, error) {
	n, err := f.tmp.Write(p)
	if err != nil {
		f.failed = true
		return n, goerr.Wrap(err, "failed to write temporary file", goerr.V("path", f.tmp.Name()))
	}
	return n, nil
}

func (f *atomicFile) Close() error {
	tmpName := f.tmp.Name()
	defer func() {
		// no-op once renamed
		_ = os.Remove(tmpName)
	}()

	if err := f.tmp.Sync(); err != nil {
		_ = f.tmp.Close()
		return goerr.Wrap(err, "failed to sync temporary file", goerr.V("path", tmpName))
	}
	if err := f.tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close temporary file", goerr.V("path", tmpName))
	}
	if f.failed {
		return goerr.New("discard incomplete file", goerr.V("path", f.path))
	}
	// keep permissions of the file being replaced
	if err := os.Chmod(tmpName, f.mode); err != nil {
		return goerr.Wrap(err, "failed to set file mode", goerr.V("path", tmpName))
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return goerr.Wrap(err, "failed to replace file", goerr.V("path", f.path))
	}
	return nil
}

func contentType(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".yaml", ".yml":
		return "application/yaml"
	default:
		return "application/json"
	}
}
