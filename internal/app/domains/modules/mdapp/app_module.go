package mdapp

import (
	"context"
	"errors"
	"fmt"

	"stratools/internal/app/domains/entity/etapp"
	"stratools/internal/app/domains/repo/rpapp"
	"stratools/internal/app/pkg/errorx"
)

// AppModule App 凭证模块
type AppModule struct {
	appRepo rpapp.AppRepository
}

// NewAppModule 创建 App 模块
func NewAppModule(appRepo rpapp.AppRepository) *AppModule {
	return &AppModule{
		appRepo: appRepo,
	}
}

// CreateApp 创建 App
func (m *AppModule) CreateApp(ctx context.Context, app *etapp.App) error {
	if err := m.appRepo.Create(ctx, app); err != nil {
		if errors.Is(err, rpapp.ErrDuplicateName) {
			return errorx.DuplicateName("app", app.Name)
		}
		return errorx.Internal(fmt.Errorf("create app: %w", err))
	}
	return nil
}

// GetAppBySecret 根据 api key 查询，不存在返回 nil
func (m *AppModule) GetAppBySecret(ctx context.Context, secret string) (*etapp.App, error) {
	app, err := m.appRepo.GetBySecret(ctx, secret)
	if err != nil {
		return nil, errorx.Internal(fmt.Errorf("get app by secret: %w", err))
	}
	return app, nil
}
