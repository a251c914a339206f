// Package storage implements the flat-file record store: one JSON document
// per (resource type, key), laid out as <root>/<type>/<key>.json.
//
// Writes go to a temporary file in the target directory which is synced and
// then renamed into place, so a reader sees either the previous document or
// the new one and a crash mid-write leaves no visible record. Mutations of a
// single key are serialized; read-modify-write sequences spanning several
// calls are not, and concurrent updates of the same record race with the last
// write winning.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/uptimekeeper/internal/common"
	"github.com/dmitrijs2005/uptimekeeper/internal/filex"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/spf13/afero"
)

const (
	recordExt = ".json"
	tempExt   = ".tmp"
)

// Store persists JSON-serializable records addressed by resource type and key.
type Store interface {
	// Create fails with common.ErrorAlreadyExists if the key is taken.
	Create(ctx context.Context, resource, key string, record any) error
	// Read decodes the record into out. Missing records yield
	// common.ErrorNotFound, undecodable ones common.ErrorCorrupt.
	Read(ctx context.Context, resource, key string, out any) error
	// Update fully replaces an existing record.
	Update(ctx context.Context, resource, key string, record any) error
	Delete(ctx context.Context, resource, key string) error
	// List returns the keys present for resource, sorted. An empty
	// resource yields an empty, non-nil slice.
	List(ctx context.Context, resource string) ([]string, error)
}

// FileStore is a Store on top of an afero filesystem.
type FileStore struct {
	fs    afero.Fs
	root  string
	locks *xsync.MapOf[string, *keyLock]
}

// keyLock is dropped from the lock table once its last holder or waiter
// releases it.
type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewFileStore prepares a directory under root for each resource type.
func NewFileStore(fsys afero.Fs, root string, resources ...string) (*FileStore, error) {
	for _, r := range resources {
		if err := validateKey(r); err != nil {
			return nil, fmt.Errorf("resource %q: %w", r, err)
		}
		if _, err := filex.EnsureSubDir(fsys, root, r); err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrorStorage, err)
		}
	}

	return &FileStore{
		fs:    fsys,
		root:  root,
		locks: xsync.NewMapOf[string, *keyLock](),
	}, nil
}

func (s *FileStore) Create(ctx context.Context, resource, key string, record any) error {
	path, err := s.recordPath(resource, key)
	if err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", resource, key, err)
	}

	unlock := s.lock(resource, key)
	defer unlock()

	exists, err := s.exists(path)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%s/%s: %w", resource, key, common.ErrorAlreadyExists)
	}

	return s.writeAtomic(path, key, data)
}

func (s *FileStore) Read(ctx context.Context, resource, key string, out any) error {
	path, err := s.recordPath(resource, key)
	if err != nil {
		return err
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s/%s: %w", resource, key, common.ErrorNotFound)
		}
		return fmt.Errorf("%w: read %s: %w", common.ErrorStorage, path, err)
	}

	if len(data) == 0 {
		return fmt.Errorf("%s/%s: empty file: %w", resource, key, common.ErrorCorrupt)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s/%s: %w: %v", resource, key, common.ErrorCorrupt, err)
	}

	return nil
}

func (s *FileStore) Update(ctx context.Context, resource, key string, record any) error {
	path, err := s.recordPath(resource, key)
	if err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", resource, key, err)
	}

	unlock := s.lock(resource, key)
	defer unlock()

	exists, err := s.exists(path)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%s/%s: %w", resource, key, common.ErrorNotFound)
	}

	return s.writeAtomic(path, key, data)
}

func (s *FileStore) Delete(ctx context.Context, resource, key string) error {
	path, err := s.recordPath(resource, key)
	if err != nil {
		return err
	}

	unlock := s.lock(resource, key)
	defer unlock()

	if err := s.fs.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s/%s: %w", resource, key, common.ErrorNotFound)
		}
		return fmt.Errorf("%w: remove %s: %w", common.ErrorStorage, path, err)
	}

	return nil
}

func (s *FileStore) List(ctx context.Context, resource string) ([]string, error) {
	if err := validateKey(resource); err != nil {
		return nil, err
	}

	dir := filepath.Join(s.root, resource)
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", common.ErrorStorage, dir, err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, recordExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, recordExt))
	}
	sort.Strings(keys)

	return keys, nil
}

// writeAtomic must be called with the key lock held.
func (s *FileStore) writeAtomic(path, key string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := afero.TempFile(s.fs, dir, "."+key+"-*"+tempExt)
	if err != nil {
		return fmt.Errorf("%w: create temp file in %s: %w", common.ErrorStorage, dir, err)
	}
	tmpName := tmp.Name()

	fail := func(op string, err error) error {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("%w: %s %s: %w", common.ErrorStorage, op, tmpName, err)
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %w", common.ErrorStorage, tmpName, err)
	}
	if err := s.fs.Rename(tmpName, path); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("%w: rename %s: %w", common.ErrorStorage, path, err)
	}

	return nil
}

func (s *FileStore) exists(path string) (bool, error) {
	_, err := s.fs.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("%w: stat %s: %w", common.ErrorStorage, path, err)
}

func (s *FileStore) lock(resource, key string) func() {
	id := resource + "/" + key

	l, _ := s.locks.Compute(id, func(l *keyLock, loaded bool) (*keyLock, bool) {
		if !loaded {
			l = &keyLock{}
		}
		l.refs++
		return l, false
	})
	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		s.locks.Compute(id, func(l *keyLock, _ bool) (*keyLock, bool) {
			l.refs--
			return l, l.refs == 0
		})
	}
}

func (s *FileStore) recordPath(resource, key string) (string, error) {
	if err := validateKey(resource); err != nil {
		return "", fmt.Errorf("resource: %w", err)
	}
	if err := validateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.root, resource, key+recordExt), nil
}

func validateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.HasPrefix(key, ".") ||
		strings.ContainsAny(key, `/\`) || strings.ContainsRune(key, 0) {
		return fmt.Errorf("%q: %w", key, common.ErrorInvalidKey)
	}
	return nil
}
