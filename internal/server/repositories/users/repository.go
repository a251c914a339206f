// Package users declares the repository contract for user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/uptimekeeper/internal/server/models"
)

// Repository stores users keyed by phone number.
type Repository interface {
	// Create fails with common.ErrorAlreadyExists for a taken phone number.
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, phone string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, phone string) error
	List(ctx context.Context) ([]string, error)
}
