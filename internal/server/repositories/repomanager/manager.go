// Package repomanager hands out the per-resource repositories backed by one
// shared store.
package repomanager

import (
	"github.com/dmitrijs2005/uptimekeeper/internal/server/repositories/checks"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users() users.Repository
	Tokens() tokens.Repository
	Checks() checks.Repository
}
