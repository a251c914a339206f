package tokens

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

func (r *FileRepository) Create(ctx context.Context, token *models.Token) error {
	return r.store.Create(ctx, common.ResourceTokens, token.ID, token)
}

func (r *FileRepository) Find(ctx context.Context, id string) (*models.Token, error) {
	token := &models.Token{}
	if err := r.store.Read(ctx, common.ResourceTokens, id, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (r *FileRepository) Update(ctx context.Context, token *models.Token) error {
	return r.store.Update(ctx, common.ResourceTokens, token.ID, token)
}

func (r *FileRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, common.ResourceTokens, id)
}

func (r *FileRepository) List(ctx context.Context) ([]string, error) {
	return r.store.List(ctx, common.ResourceTokens)
}
