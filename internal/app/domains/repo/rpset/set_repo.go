package rpset

import (
	"context"
	"errors"

	"stratools/internal/app/domains/entity/etset"
)

// 错误定义
var (
	// ErrDuplicateName 名称唯一索引冲突
	ErrDuplicateName = errors.New("set name already exists")
	// ErrSetNotFound 加锁时集合已不存在
	ErrSetNotFound = errors.New("set not found")
)

// SetRepository 集合仓储接口
// 查询类方法在记录不存在时返回 nil, nil
type SetRepository interface {
	// Create 创建集合，名称冲突返回 ErrDuplicateName
	Create(ctx context.Context, set *etset.Set) error

	// GetByName 根据名称查询集合
	GetByName(ctx context.Context, name string) (*etset.Set, error)

	// List 分页查询集合（按名称升序）
	List(ctx context.Context, limit, offset int) ([]*etset.Set, int64, error)

	// Update 更新描述和策略
	Update(ctx context.Context, set *etset.Set) error

	// Delete 在同一事务中先删除全部值再删除集合
	Delete(ctx context.Context, setID string) error

	// CountValues 统计集合中的值数量
	CountValues(ctx context.Context, setIDs ...string) (map[string]int64, error)

	// CreateValue 写入一个值
	CreateValue(ctx context.Context, value *etset.Value) error

	// FindValue 查询第一个匹配的值（最早写入者优先）
	FindValue(ctx context.Context, setID, value string) (*etset.Value, error)

	// FindValues 批量查询，每个值只返回第一个匹配
	FindValues(ctx context.Context, setID string, values []string) (map[string]*etset.Value, error)

	// GetValue 根据 ID 查询值
	GetValue(ctx context.Context, setID, valueID string) (*etset.Value, error)

	// UpdateValue 更新值和元数据
	UpdateValue(ctx context.Context, value *etset.Value) error

	// DeleteValueByKey 删除 ID 或字面值等于 key 的记录，返回删除条数
	DeleteValueByKey(ctx context.Context, setID, key string) (int64, error)

	// DeleteValues 按 ID 列表删除
	DeleteValues(ctx context.Context, setID string, valueIDs []string) (int64, error)

	// ClearValues 清空集合
	ClearValues(ctx context.Context, setID string) (int64, error)

	// ListValues 分页查询值（新写入在前）
	ListValues(ctx context.Context, setID string, limit, offset int) ([]*etset.Value, int64, error)

	// WithSetLock 开启事务并锁住集合行，fn 中的 repo 共用该事务，fn 返回错误时回滚
	WithSetLock(ctx context.Context, setID string, fn func(ctx context.Context, repo SetRepository) error) error
}
