package store

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	fileExt = ".vfx"
	revExt  = ".rev.json"
)

// FileStore keeps each asset as a document file plus a JSON revision
// sidecar under a base directory. Slashes in names become subdirectories.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file store rooted at baseDir.
// If baseDir is empty, defaults to ~/.local/share/vfxgraph/assets.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, storageErr(err, "get home dir")
		}
		baseDir = filepath.Join(home, ".local", "share", "vfxgraph", "assets")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, storageErr(err, "create asset dir")
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Dir returns the base directory.
func (s *FileStore) Dir() string { return s.baseDir }

func (s *FileStore) dataPath(name string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(name)+fileExt)
}

func (s *FileStore) revPath(name string) string {
	return s.dataPath(name) + revExt
}

func (s *FileStore) Get(ctx context.Context, name string) (doc *Document, err error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	start, size := time.Now(), 0
	defer observeLoad(ctx, "file", name, start, &size, &err)

	s.mu.RLock()
	defer s.mu.RUnlock()

	rev, err := s.readRevision(s.revPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(name)
		}
		return nil, storageErr(err, "read revision of %q", name)
	}
	data, err := os.ReadFile(s.dataPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(name)
		}
		return nil, storageErr(err, "read %q", name)
	}
	size = len(data)
	return &Document{Revision: rev, Data: data}, nil
}

func (s *FileStore) Put(ctx context.Context, name string, data []byte) (rev Revision, err error) {
	if err := ValidateName(name); err != nil {
		return Revision{}, err
	}
	defer observeSave(ctx, "file", name, time.Now(), len(data), &err)

	rev = NewRevision(name, data)
	meta, err := json.MarshalIndent(rev, "", "  ")
	if err != nil {
		return Revision{}, storageErr(err, "marshal revision")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.dataPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Revision{}, storageErr(err, "create dir for %q", name)
	}
	prev, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return Revision{}, storageErr(err, "read %q", name)
	}
	existed := err == nil

	if err := writeAtomic(path, data); err != nil {
		return Revision{}, storageErr(err, "write %q", name)
	}
	if err := writeAtomic(s.revPath(name), meta); err != nil {
		// Put the old data back so it stays paired with the old revision.
		if existed {
			_ = writeAtomic(path, prev)
		} else {
			_ = os.Remove(path)
		}
		return Revision{}, storageErr(err, "write revision of %q", name)
	}
	return rev, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.revPath(name)); err != nil {
		if os.IsNotExist(err) {
			return notFound(name)
		}
		return storageErr(err, "delete %q", name)
	}
	if err := os.Remove(s.dataPath(name)); err != nil && !os.IsNotExist(err) {
		return storageErr(err, "delete %q", name)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Revision
	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, fileExt+revExt) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rev, err := s.readRevision(path)
		if err != nil {
			return err
		}
		out = append(out, rev)
		return nil
	})
	if err != nil {
		return nil, storageErr(err, "list assets")
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) readRevision(path string) (Revision, error) {
	var rev Revision
	data, err := os.ReadFile(path)
	if err != nil {
		return rev, err
	}
	err = json.Unmarshal(data, &rev)
	return rev, err
}

// writeAtomic writes data to a temp file in the target directory and
// renames it into place, so readers never see a partial file.
func writeAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
