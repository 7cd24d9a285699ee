package entity

import "time"

// App 调用方凭证（租户）实体
type App struct {
	ID          string     `gorm:"column:id;primaryKey;type:varchar(64)"`
	Name        string     `gorm:"column:name;type:varchar(100);uniqueIndex:uk_app_name;not null"`
	Description *string    `gorm:"column:description;type:varchar(500)"`
	Secret      string     `gorm:"column:secret;type:varchar(128);uniqueIndex:uk_app_secret;not null"`
	IsActive    bool       `gorm:"column:is_active;not null"`
	ActiveUntil *time.Time `gorm:"column:active_until"`
	Permission  string     `gorm:"column:permission;type:varchar(16);not null"`

	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (App) TableName() string {
	return "apps"
}

// 权限常量
const (
	PermissionRead  = "READ"
	PermissionWrite = "WRITE"
	PermissionNone  = "NONE"
)

// All 返回全部持久化模型（用于 AutoMigrate）
func All() []interface{} {
	return []interface{}{
		&App{},
		&Set{},
		&SetValue{},
		&Lookup{},
		&LookupValue{},
		&Warning{},
	}
}
