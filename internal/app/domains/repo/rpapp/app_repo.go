package rpapp

import (
	"context"
	"errors"

	"stratools/internal/app/domains/entity/etapp"
)

// ErrDuplicateName App 名称冲突
var ErrDuplicateName = errors.New("app name already exists")

// AppRepository App 凭证仓储接口
type AppRepository interface {
	// Create 创建 App
	Create(ctx context.Context, app *etapp.App) error

	// GetBySecret 根据 api key 查询，不存在返回 nil, nil
	GetBySecret(ctx context.Context, secret string) (*etapp.App, error)
}
