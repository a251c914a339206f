package users

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/uptimekeeper/internal/common"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/models"
	"github.com/dmitrijs2005/uptimekeeper/internal/server/storage"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *FileRepository {
	t.Helper()
	s, err := storage.NewFileStore(afero.NewMemMapFs(), "/data", common.ResourceUsers)
	require.NoError(t, err)
	return NewFileRepository(s)
}

func TestFileRepository_Lifecycle(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	u := &models.User{
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Phone:          "5551234567",
		HashedPassword: "h",
		TOSAgreement:   true,
		Checks:         []string{},
	}
	require.NoError(t, repo.Create(ctx, u))
	require.ErrorIs(t, repo.Create(ctx, u), common.ErrorAlreadyExists)

	got, err := repo.Get(ctx, u.Phone)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(u, got))

	got.Checks = append(got.Checks, "c1")
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.Get(ctx, u.Phone)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, again.Checks)

	keys, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{u.Phone}, keys)

	require.NoError(t, repo.Delete(ctx, u.Phone))
	_, err = repo.Get(ctx, u.Phone)
	require.ErrorIs(t, err, common.ErrorNotFound)
}
