// Package storagetest provides filesystem fakes for exercising storage
// failure paths.
package storagetest

import (
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// FaultFs wraps an afero.Fs and fails selected operations. Failures are
// keyed by file base name, e.g. "c2.json".
type FaultFs struct {
	afero.Fs

	mu     sync.Mutex
	remove map[string]error
	rename map[string]error
}

func NewFaultFs(base afero.Fs) *FaultFs {
	return &FaultFs{
		Fs:     base,
		remove: map[string]error{},
		rename: map[string]error{},
	}
}

// FailRemove makes Remove of the named file return err.
func (f *FaultFs) FailRemove(baseName string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.remove[baseName] = err
}

// FailRename makes any rename onto the named file return err.
func (f *FaultFs) FailRename(baseName string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rename[baseName] = err
}

func (f *FaultFs) Remove(name string) error {
	f.mu.Lock()
	err, ok := f.remove[filepath.Base(name)]
	f.mu.Unlock()
	if ok {
		return err
	}
	return f.Fs.Remove(name)
}

func (f *FaultFs) Rename(oldname, newname string) error {
	f.mu.Lock()
	err, ok := f.rename[filepath.Base(newname)]
	f.mu.Unlock()
	if ok {
		return err
	}
	return f.Fs.Rename(oldname, newname)
}
