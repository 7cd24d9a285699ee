package mdwarning

import (
	"context"
	"fmt"
	"time"

	"stratools/internal/app/domains/entity/etwarning"
	"stratools/internal/app/domains/repo/rpwarning"
	"stratools/internal/app/pkg/errorx"
)

// WarningModule 告警模块（数据操作）
type WarningModule struct {
	warningRepo rpwarning.WarningRepository
}

// NewWarningModule 创建告警模块
func NewWarningModule(warningRepo rpwarning.WarningRepository) *WarningModule {
	return &WarningModule{
		warningRepo: warningRepo,
	}
}

// ListWarnings 过滤分页查询
func (m *WarningModule) ListWarnings(ctx context.Context, filter etwarning.Filter) ([]*etwarning.Warning, int64, error) {
	warnings, total, err := m.warningRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, errorx.Internal(fmt.Errorf("list warnings: %w", err))
	}
	return warnings, total, nil
}

// MustGetWarning 查询告警，不存在返回 NOT_FOUND
func (m *WarningModule) MustGetWarning(ctx context.Context, id string) (*etwarning.Warning, error) {
	w, err := m.warningRepo.Get(ctx, id)
	if err != nil {
		return nil, errorx.Internal(fmt.Errorf("get warning %s: %w", id, err))
	}
	if w == nil {
		return nil, errorx.NotFound("warning '%s' not found", id)
	}
	return w, nil
}

// Stats 统计
func (m *WarningModule) Stats(ctx context.Context) (*etwarning.Stats, error) {
	stats, err := m.warningRepo.Stats(ctx)
	if err != nil {
		return nil, errorx.Internal(fmt.Errorf("warning stats: %w", err))
	}
	return stats, nil
}

// Resolve 标记为已处理，返回是否有记录被更新
func (m *WarningModule) Resolve(ctx context.Context, id, resolvedBy string, at time.Time) (bool, error) {
	n, err := m.warningRepo.Resolve(ctx, id, resolvedBy, at)
	if err != nil {
		return false, errorx.Internal(fmt.Errorf("resolve warning %s: %w", id, err))
	}
	return n > 0, nil
}

// ResolveBulk 批量标记
func (m *WarningModule) ResolveBulk(ctx context.Context, ids []string, resolvedBy string, at time.Time) (int64, error) {
	n, err := m.warningRepo.ResolveBulk(ctx, ids, resolvedBy, at)
	if err != nil {
		return 0, errorx.Internal(fmt.Errorf("resolve warnings: %w", err))
	}
	return n, nil
}

// DeleteWarning 删除，不存在返回 NOT_FOUND
func (m *WarningModule) DeleteWarning(ctx context.Context, id string) error {
	n, err := m.warningRepo.Delete(ctx, id)
	if err != nil {
		return errorx.Internal(fmt.Errorf("delete warning %s: %w", id, err))
	}
	if n == 0 {
		return errorx.NotFound("warning '%s' not found", id)
	}
	return nil
}

// ClearResolved 删除全部已处理告警
func (m *WarningModule) ClearResolved(ctx context.Context) (int64, error) {
	n, err := m.warningRepo.ClearResolved(ctx)
	if err != nil {
		return 0, errorx.Internal(fmt.Errorf("clear resolved warnings: %w", err))
	}
	return n, nil
}

// Replace 全量替换某类型告警
func (m *WarningModule) Replace(ctx context.Context, typ string, warnings []*etwarning.Warning) error {
	if err := m.warningRepo.ReplaceByType(ctx, typ, warnings); err != nil {
		return fmt.Errorf("replace %s warnings: %w", typ, err)
	}
	return nil
}
