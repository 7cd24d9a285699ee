package svapp

import (
	"context"
	"errors"
	"time"

	"stratools/internal/app/domains/entity/etapp"
	"stratools/internal/app/domains/modules/mdapp"
	"stratools/internal/app/pkg/errorx"
	"stratools/internal/app/pkg/logger"
)

// AppService App 凭证服务
type AppService struct {
	appModule *mdapp.AppModule
	logger    logger.Logger
	now       func() time.Time
}

// NewAppService 创建 App 服务实例
func NewAppService(appModule *mdapp.AppModule, log logger.Logger) *AppService {
	return &AppService{
		appModule: appModule,
		logger:    log,
		now:       time.Now,
	}
}

// CreateApp 创建 App 并生成 secret
func (s *AppService) CreateApp(ctx context.Context, name string, description *string, permission etapp.Permission, activeUntil *time.Time) (*etapp.App, error) {
	app, err := etapp.NewApp(name, description, permission, activeUntil)
	if err != nil {
		if errors.Is(err, etapp.ErrInvalidPermission) {
			return nil, errorx.Validation(err.Error(), errorx.ErrorDetail{Path: "permission", Info: err.Error()})
		}
		return nil, err
	}
	if err := s.appModule.CreateApp(ctx, app); err != nil {
		return nil, err
	}
	s.logger.Infof(ctx, "app created: name=%s, id=%s, permission=%s", app.Name, app.ID, app.Permission)
	return app, nil
}

// Authenticate 根据 api key 解析调用方
// 1. key 缺失或不存在返回 UNAUTHORIZED
// 2. 已停用或已过期返回 UNAUTHORIZED
func (s *AppService) Authenticate(ctx context.Context, apiKey string) (*etapp.App, error) {
	if apiKey == "" {
		return nil, errorx.Unauthorized("missing api key")
	}
	app, err := s.appModule.GetAppBySecret(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, errorx.Unauthorized("invalid api key")
	}
	if !app.Usable(s.now()) {
		return nil, errorx.Unauthorized("app is inactive or expired")
	}
	return app, nil
}
