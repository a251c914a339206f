// Package tokens declares the repository contract for bearer tokens.
package tokens

import (
	"context"

	"github.com/dmitrijs2005/uptimekeeper/internal/server/models"
)

// Repository stores tokens keyed by their id. Expiry is not interpreted
// here; callers decide validity at read time.
type Repository interface {
	Create(ctx context.Context, token *models.Token) error

	// Find returns common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, id string) (*models.Token, error)

	Update(ctx context.Context, token *models.Token) error

	// Delete returns common.ErrorNotFound when the token is absent.
	Delete(ctx context.Context, id string) error

	List(ctx context.Context) ([]string, error)
}
