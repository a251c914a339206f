package users

import (
	"context"

	"github.com/dmitrijs2005/uptimekeeper/internal/common"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/models"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/storage"
)

type FileRepository struct {
	store storage.Store
}

func NewFileRepository(store storage.Store) *FileRepository {
	return &FileRepository{store: store}
}

func (r *FileRepository) Create(ctx context.Context, user *models.User) error {
	return r.store.Create(ctx, common.ResourceUsers, user.Phone, user)
}

func (r *FileRepository) Get(ctx context.Context, phone string) (*models.User, error) {
	user := &models.User{}
	if err := r.store.Read(ctx, common.ResourceUsers, phone, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *FileRepository) Update(ctx context.Context, user *models.User) error {
	return r.store.Update(ctx, common.ResourceUsers, user.Phone, user)
}

func (r *FileRepository) Delete(ctx context.Context, phone string) error {
	return r.store.Delete(ctx, common.ResourceUsers, phone)
}

func (r *FileRepository) List(ctx context.Context) ([]string, error) {
	return r.store.List(ctx, common.ResourceUsers)
}
