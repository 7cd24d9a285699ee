package etapp

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stratools/internal/app/domains/entity/etprimitive"
)

// Permission App 权限
type Permission string

const (
	PermissionRead  Permission = "READ"
	PermissionWrite Permission = "WRITE"
	PermissionNone  Permission = "NONE"
)

// 错误定义
var (
	ErrInvalidPermission = errors.New("permission must be one of READ, WRITE, NONE")
)

// App 调用方凭证（领域对象）
type App struct {
	ID          string
	Name        string
	Description *string
	Secret      string
	IsActive    bool
	ActiveUntil *time.Time
	Permission  Permission
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewApp 创建 App 并生成 32 字节随机 secret
func NewApp(name string, description *string, permission Permission, activeUntil *time.Time) (*App, error) {
	if err := etprimitive.ValidateName(name); err != nil {
		return nil, err
	}
	switch permission {
	case PermissionRead, PermissionWrite, PermissionNone:
	default:
		return nil, ErrInvalidPermission
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, fmt.Errorf("generate secret failed: %w", err)
	}

	now := time.Now()
	return &App{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Secret:      secret,
		IsActive:    true,
		ActiveUntil: activeUntil,
		Permission:  permission,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Usable 未停用且未过期
func (a *App) Usable(now time.Time) bool {
	if !a.IsActive {
		return false
	}
	return a.ActiveUntil == nil || now.Before(*a.ActiveUntil)
}

// CanRead READ 或 WRITE 权限可读
func (a *App) CanRead() bool {
	return a.Permission == PermissionRead || a.Permission == PermissionWrite
}

// CanWrite 只有 WRITE 权限可写
func (a *App) CanWrite() bool {
	return a.Permission == PermissionWrite
}

func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
