// Package filex contains filesystem helpers shared by the store and the CLI.
package filex

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// EnsureSubDir creates base/name on fs if it does not exist yet and returns
// its path.
func EnsureSubDir(fs afero.Fs, base, name string) (string, error) {
	dir := filepath.Join(base, name)

	if err := fs.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}
