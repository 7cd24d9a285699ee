package rpapp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratools/internal/app/domains/entity/etapp"
	"stratools/internal/app/infra/persistence/dbtest"
)

func TestAppRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAppRepository(dbtest.Open(t))

	app, err := etapp.NewApp("zapier", nil, etapp.PermissionRead, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, app))

	got, err := repo.GetBySecret(ctx, app.Secret)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, app.ID, got.ID)
	assert.Equal(t, etapp.PermissionRead, got.Permission)
	assert.True(t, got.IsActive)
	assert.Nil(t, got.ActiveUntil)

	missing, err := repo.GetBySecret(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	dup, err := etapp.NewApp("zapier", nil, etapp.PermissionWrite, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicateName)
}
