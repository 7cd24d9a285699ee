package rpapp

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"stratools/internal/app/domains/entity/etapp"
	"stratools/internal/common/entity"
)

// AppRepositoryImpl App 仓储实现（GORM）
type AppRepositoryImpl struct {
	db *gorm.DB
}

// NewAppRepository 创建 App 仓储实例
func NewAppRepository(db *gorm.DB) AppRepository {
	return &AppRepositoryImpl{db: db}
}

// Create 创建 App
func (r *AppRepositoryImpl) Create(ctx context.Context, app *etapp.App) error {
	err := r.db.WithContext(ctx).Create(toGormModel(app)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateName
	}
	return err
}

// GetBySecret 根据 api key 查询
func (r *AppRepositoryImpl) GetBySecret(ctx context.Context, secret string) (*etapp.App, error) {
	var po entity.App
	if err := r.db.WithContext(ctx).Where("secret = ?", secret).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainModel(&po), nil
}

// toGormModel 领域对象转换为 GORM 模型
func toGormModel(app *etapp.App) *entity.App {
	return &entity.App{
		ID:          app.ID,
		Name:        app.Name,
		Description: app.Description,
		Secret:      app.Secret,
		IsActive:    app.IsActive,
		ActiveUntil: app.ActiveUntil,
		Permission:  string(app.Permission),
		CreatedAt:   app.CreatedAt,
		UpdatedAt:   app.UpdatedAt,
	}
}

// toDomainModel GORM 模型转换为领域对象
func toDomainModel(po *entity.App) *etapp.App {
	return &etapp.App{
		ID:          po.ID,
		Name:        po.Name,
		Description: po.Description,
		Secret:      po.Secret,
		IsActive:    po.IsActive,
		ActiveUntil: po.ActiveUntil,
		Permission:  etapp.Permission(po.Permission),
		CreatedAt:   po.CreatedAt,
		UpdatedAt:   po.UpdatedAt,
	}
}
