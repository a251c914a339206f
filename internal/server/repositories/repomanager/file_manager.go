package repomanager

import (
	"fmt"

	"github.com/dmitrijs2005/uptimekeeper/internal/common"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/repositories/checks"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/storage"
	"github.com/spf13/afero"
)

// Resources lists every resource type the store must hold.
var Resources = []string{common.ResourceUsers, common.ResourceTokens, common.ResourceChecks}

type FileRepositoryManager struct {
	users  *users.FileRepository
	tokens *tokens.FileRepository
	checks *checks.FileRepository
}

// NewFileRepositoryManager opens (creating if needed) the data directory on fs.
func NewFileRepositoryManager(fs afero.Fs, dataDir string) (*FileRepositoryManager, error) {
	store, err := storage.NewFileStore(fs, dataDir, Resources...)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}
	return NewManagerForStore(store), nil
}

// NewManagerForStore wraps an already opened store.
func NewManagerForStore(store storage.Store) *FileRepositoryManager {
	return &FileRepositoryManager{
		users:  users.NewFileRepository(store),
		tokens: tokens.NewFileRepository(store),
		checks: checks.NewFileRepository(store),
	}
}

func (m *FileRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *FileRepositoryManager) Tokens() tokens.Repository {
	return m.tokens
}

func (m *FileRepositoryManager) Checks() checks.Repository {
	return m.checks
}
