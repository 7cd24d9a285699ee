package svapp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratools/internal/app/domains/entity/etapp"
	"stratools/internal/app/domains/modules/mdapp"
	"stratools/internal/app/domains/repo/rpapp"
	"stratools/internal/app/infra/persistence/dbtest"
	"stratools/internal/app/pkg/errorx"
	"stratools/internal/app/pkg/logger"
)

func newTestService(t *testing.T) *AppService {
	t.Helper()
	return NewAppService(mdapp.NewAppModule(rpapp.NewAppRepository(dbtest.Open(t))), logger.NewNop())
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	app, err := svc.CreateApp(ctx, "zapier", nil, etapp.PermissionWrite, nil)
	require.NoError(t, err)
	assert.Len(t, app.Secret, 64)

	got, err := svc.Authenticate(ctx, app.Secret)
	require.NoError(t, err)
	assert.Equal(t, app.ID, got.ID)
	assert.True(t, got.CanWrite())

	_, err = svc.Authenticate(ctx, "")
	assert.True(t, errorx.IsCode(err, errorx.CodeUnauthorized))
	_, err = svc.Authenticate(ctx, "wrong")
	assert.True(t, errorx.IsCode(err, errorx.CodeUnauthorized))
}

func TestAuthenticate_Expired(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	until := time.Now().Add(time.Hour)
	app, err := svc.CreateApp(ctx, "make", nil, etapp.PermissionRead, &until)
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, app.Secret)
	require.NoError(t, err)

	svc.now = func() time.Time { return until.Add(time.Second) }
	_, err = svc.Authenticate(ctx, app.Secret)
	assert.True(t, errorx.IsCode(err, errorx.CodeUnauthorized))
}

func TestCreateApp_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.CreateApp(ctx, "n8n", nil, "ADMIN", nil)
	assert.True(t, errorx.IsCode(err, errorx.CodeValidation))

	_, err = svc.CreateApp(ctx, "bad name", nil, etapp.PermissionRead, nil)
	assert.True(t, errorx.IsCode(err, errorx.CodeInvalidName))

	_, err = svc.CreateApp(ctx, "n8n", nil, etapp.PermissionRead, nil)
	require.NoError(t, err)
	_, err = svc.CreateApp(ctx, "n8n", nil, etapp.PermissionRead, nil)
	assert.True(t, errorx.IsCode(err, errorx.CodeDuplicateName))
}
