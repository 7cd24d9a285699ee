package svwarning

import (
	"context"
	"fmt"
	"time"

	"stratools/internal/app/domains/entity/etprimitive"
	"stratools/internal/app/domains/entity/etwarning"
	"stratools/internal/app/domains/modules/mdwarning"
	"stratools/internal/app/pkg/errorx"
	"stratools/internal/app/pkg/logger"
)

// WarningService 告警台账服务
type WarningService struct {
	warningModule *mdwarning.WarningModule
	logger        logger.Logger
	now           func() time.Time
}

// NewWarningService 创建告警服务实例
func NewWarningService(warningModule *mdwarning.WarningModule, log logger.Logger) *WarningService {
	return &WarningService{
		warningModule: warningModule,
		logger:        log,
		now:           time.Now,
	}
}

// ListWarnings 过滤分页查询
func (s *WarningService) ListWarnings(ctx context.Context, filter etwarning.Filter) ([]*etwarning.Warning, etprimitive.Pagination, error) {
	page := etprimitive.NewPagination(filter.Limit, filter.Offset)
	filter.Limit, filter.Offset = page.Limit, page.Offset

	if filter.Severity != nil && !filter.Severity.Valid() {
		return nil, page, errorx.Validation(fmt.Sprintf("invalid severity '%s'", *filter.Severity),
			errorx.ErrorDetail{Path: "severity", Info: "severity must be one of LOW, MEDIUM, HIGH, CRITICAL"})
	}

	warnings, total, err := s.warningModule.ListWarnings(ctx, filter)
	if err != nil {
		return nil, page, err
	}
	return warnings, page.WithTotal(total), nil
}

// Stats 告警统计
func (s *WarningService) Stats(ctx context.Context) (*etwarning.Stats, error) {
	return s.warningModule.Stats(ctx)
}

// GetWarning 查询单条告警
func (s *WarningService) GetWarning(ctx context.Context, id string) (*etwarning.Warning, error) {
	return s.warningModule.MustGetWarning(ctx, id)
}

// ResolveWarning 标记告警为已处理
// 1. 不存在返回 NOT_FOUND
// 2. 已处理返回 ALREADY_RESOLVED
// 3. 条件更新，并发下只有一次成功
func (s *WarningService) ResolveWarning(ctx context.Context, id, resolvedBy string) (*etwarning.Warning, error) {
	w, err := s.warningModule.MustGetWarning(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.IsResolved {
		return nil, errorx.AlreadyResolved(id)
	}

	at := s.now()
	ok, err := s.warningModule.Resolve(ctx, id, resolvedBy, at)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errorx.AlreadyResolved(id)
	}

	w.IsResolved = true
	w.ResolvedAt = &at
	w.ResolvedBy = &resolvedBy
	s.logger.Infof(ctx, "warning resolved: id=%s, by=%s", id, resolvedBy)
	return w, nil
}

// ResolveBulk 批量标记，不存在或已处理的 ID 静默忽略
func (s *WarningService) ResolveBulk(ctx context.Context, ids []string, resolvedBy string) (int64, error) {
	if len(ids) == 0 {
		return 0, errorx.Validation("ids is required", errorx.ErrorDetail{Path: "ids", Info: "at least one id is required"})
	}
	n, err := s.warningModule.ResolveBulk(ctx, ids, resolvedBy, s.now())
	if err != nil {
		return 0, err
	}
	s.logger.Infof(ctx, "warnings resolved: requested=%d, resolved=%d, by=%s", len(ids), n, resolvedBy)
	return n, nil
}

// DeleteWarning 删除告警
func (s *WarningService) DeleteWarning(ctx context.Context, id string) error {
	return s.warningModule.DeleteWarning(ctx, id)
}

// ClearResolved 删除全部已处理告警
func (s *WarningService) ClearResolved(ctx context.Context) (int64, error) {
	n, err := s.warningModule.ClearResolved(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Infof(ctx, "resolved warnings cleared: deleted=%d", n)
	return n, nil
}
