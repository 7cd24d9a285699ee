package rpwarning

import (
	"context"
	"time"

	"stratools/internal/app/domains/entity/etwarning"
)

// WarningRepository 告警仓储接口
type WarningRepository interface {
	// List 过滤分页查询，未处理在前，级别从高到低，新产生在前
	List(ctx context.Context, filter etwarning.Filter) ([]*etwarning.Warning, int64, error)

	// Get 根据 ID 查询，不存在返回 nil, nil
	Get(ctx context.Context, id string) (*etwarning.Warning, error)

	// Stats 统计
	Stats(ctx context.Context) (*etwarning.Stats, error)

	// Resolve 标记单条为已处理，仅作用于未处理记录，返回影响条数
	Resolve(ctx context.Context, id, resolvedBy string, at time.Time) (int64, error)

	// ResolveBulk 批量标记，不存在或已处理的 ID 忽略
	ResolveBulk(ctx context.Context, ids []string, resolvedBy string, at time.Time) (int64, error)

	Delete(ctx context.Context, id string) (int64, error)

	// ClearResolved 删除全部已处理告警
	ClearResolved(ctx context.Context) (int64, error)

	// ReplaceByType 在同一事务内删除某类型的全部告警并写入新结果
	ReplaceByType(ctx context.Context, typ string, warnings []*etwarning.Warning) error
}
