package checks

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

func (r *FileRepository) Create(ctx context.Context, check *models.Check) error {
	return r.store.Create(ctx, common.ResourceChecks, check.ID, check)
}

func (r *FileRepository) Get(ctx context.Context, id string) (*models.Check, error) {
	check := &models.Check{}
	if err := r.store.Read(ctx, common.ResourceChecks, id, check); err != nil {
		return nil, err
	}
	return check, nil
}

func (r *FileRepository) Update(ctx context.Context, check *models.Check) error {
	return r.store.Update(ctx, common.ResourceChecks, check.ID, check)
}

func (r *FileRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, common.ResourceChecks, id)
}

func (r *FileRepository) List(ctx context.Context) ([]string, error) {
	return r.store.List(ctx, common.ResourceChecks)
}
