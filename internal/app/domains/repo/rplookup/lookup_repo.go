package rplookup

import (
	"context"
	"errors"

	"stratools/internal/app/domains/entity/etlookup"
)

// 错误定义
var (
	// ErrDuplicateName 名称唯一索引冲突
	ErrDuplicateName = errors.New("lookup name already exists")
	// ErrLookupNotFound 加锁时映射表已不存在
	ErrLookupNotFound = errors.New("lookup not found")
)

// LookupRepository 映射表仓储接口
// 查询类方法在记录不存在时返回 nil, nil
type LookupRepository interface {
	Create(ctx context.Context, lookup *etlookup.Lookup) error
	GetByName(ctx context.Context, name string) (*etlookup.Lookup, error)
	List(ctx context.Context, limit, offset int) ([]*etlookup.Lookup, int64, error)
	// ListAll 全量查询（检测任务使用）
	ListAll(ctx context.Context) ([]*etlookup.Lookup, error)
	Update(ctx context.Context, lookup *etlookup.Lookup) error
	// Delete 在同一事务中先删除全部映射再删除映射表
	Delete(ctx context.Context, lookupID string) error
	CountValues(ctx context.Context, lookupIDs ...string) (map[string]int64, error)

	CreateValue(ctx context.Context, value *etlookup.Value) error
	GetValue(ctx context.Context, lookupID, valueID string) (*etlookup.Value, error)
	UpdateValue(ctx context.Context, value *etlookup.Value) error
	DeleteValue(ctx context.Context, lookupID, valueID string) (int64, error)
	DeleteValues(ctx context.Context, lookupID string, valueIDs []string) (int64, error)
	ClearValues(ctx context.Context, lookupID string) (int64, error)
	ListValues(ctx context.Context, lookupID string, limit, offset int) ([]*etlookup.Value, int64, error)
	// ListAllValues 全量查询某映射表的映射（检测任务使用）
	ListAllValues(ctx context.Context, lookupID string) ([]*etlookup.Value, error)

	// Search left/right 精确匹配，search 两侧不区分大小写子串匹配，新写入在前
	Search(ctx context.Context, lookupID string, q etlookup.SearchQuery) ([]*etlookup.Value, int64, error)

	// FindFirst 严格模式写前检查，left/right 为 nil 的一侧不参与条件，excludeID 非空时排除自身
	FindFirst(ctx context.Context, lookupID string, left, right *string, excludeID string) (*etlookup.Value, error)
	// FindByLefts 批量按 left 查询，每个 left 只返回最早写入的一条
	FindByLefts(ctx context.Context, lookupID string, lefts []string) (map[string]*etlookup.Value, error)
	// FindPairs 批量按 left/right 组合键查询
	FindPairs(ctx context.Context, lookupID string, lefts []string) (map[etlookup.Pair]*etlookup.Value, error)

	// WithLookupLock 开启事务并锁住映射表行，fn 中的 repo 共用该事务，fn 返回错误时回滚
	WithLookupLock(ctx context.Context, lookupID string, fn func(ctx context.Context, repo LookupRepository) error) error
}
