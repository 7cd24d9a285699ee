package svset

import (
	"context"
	"encoding/json"
	"fmt"

	"stratools/internal/app/config"
	"stratools/internal/app/domains/entity/etprimitive"
	"stratools/internal/app/domains/entity/etset"
	"stratools/internal/app/domains/modules/mdset"
	"stratools/internal/app/pkg/errorx"
	"stratools/internal/app/pkg/logger"
)

// SetService 集合服务，负责集合与值的业务编排
type SetService struct {
	setModule *mdset.SetModule
	bulk      config.BulkConfig
	logger    logger.Logger
}

// NewSetService 创建集合服务实例
func NewSetService(setModule *mdset.SetModule, bulk config.BulkConfig, log logger.Logger) *SetService {
	return &SetService{
		setModule: setModule,
		bulk:      bulk,
		logger:    log,
	}
}

// CreateSet 创建集合
// 1. 校验名称和描述
// 2. 落库，名称冲突返回 DUPLICATE_NAME
func (s *SetService) CreateSet(ctx context.Context, name string, opts etset.Options) (*etset.Set, error) {
	set, err := etset.NewSet(name, opts)
	if err != nil {
		return nil, err
	}
	if err := s.setModule.CreateSet(ctx, set); err != nil {
		return nil, err
	}

	s.logger.Infof(ctx, "set created: name=%s, id=%s, allow_duplicates=%v, strict=%v",
		set.Name, set.ID, set.AllowDuplicates, set.StrictChecking)
	return set, nil
}

// GetSet 查询集合（含值数量）
func (s *SetService) GetSet(ctx context.Context, name string) (*etset.Set, error) {
	set, err := s.setModule.MustGetSet(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.setModule.FillValueCount(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

// ListSets 分页查询集合（含值数量）
func (s *SetService) ListSets(ctx context.Context, page etprimitive.Pagination) ([]*etset.Set, etprimitive.Pagination, error) {
	sets, total, err := s.setModule.ListSets(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, page, err
	}
	if err := s.setModule.FillValueCount(ctx, sets...); err != nil {
		return nil, page, err
	}
	return sets, page.WithTotal(total), nil
}

// UpdateSet 更新描述和策略
func (s *SetService) UpdateSet(ctx context.Context, name string, opts etset.Options) (*etset.Set, error) {
	set, err := s.setModule.MustGetSet(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := set.Apply(opts); err != nil {
		return nil, err
	}
	if err := s.setModule.UpdateSet(ctx, set); err != nil {
		return nil, err
	}
	if err := s.setModule.FillValueCount(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

// DeleteSet 删除集合及其全部值
func (s *SetService) DeleteSet(ctx context.Context, name string) error {
	set, err := s.setModule.MustGetSet(ctx, name)
	if err != nil {
		return err
	}
	if err := s.setModule.DeleteSet(ctx, set); err != nil {
		return err
	}
	s.logger.Infof(ctx, "set deleted: name=%s, id=%s", set.Name, set.ID)
	return nil
}

// AddValue 写入单个值
func (s *SetService) AddValue(ctx context.Context, name, value string, metadata json.RawMessage) (*etset.Value, error) {
	set, err := s.setModule.MustGetSet(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.addValue(ctx, set, value, metadata)
}

func (s *SetService) addValue(ctx context.Context, set *etset.Set, value string, metadata json.RawMessage) (*etset.Value, error) {
	v, err := etset.NewValue(set.ID, value, metadata)
	if err != nil {
		return nil, err
	}
	err = s.guarded(ctx, set, func(ctx context.Context, m *mdset.SetModule) error {
		if err := checkPolicy(ctx, m, set, value, ""); err != nil {
			return err
		}
		return m.CreateValue(ctx, v)
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// guarded 拒绝重复时检查与写入放在同一事务并锁住集合行，避免并发写入同时通过检查
func (s *SetService) guarded(ctx context.Context, set *etset.Set, fn func(ctx context.Context, m *mdset.SetModule) error) error {
	if !set.RejectsDuplicates() {
		return fn(ctx, s.setModule)
	}
	return s.setModule.WithSetLock(ctx, set, fn)
}

// checkPolicy 严格模式且不允许重复时拒绝已存在的值，selfID 为更新场景下的自身 ID
func checkPolicy(ctx context.Context, m *mdset.SetModule, set *etset.Set, value, selfID string) error {
	if !set.RejectsDuplicates() {
		return nil
	}
	existing, err := m.FindValue(ctx, set.ID, value)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return errorx.DuplicateValue("value '%s' already exists in set '%s'", value, set.Name)
	}
	return nil
}

// CheckValue 检查值是否存在，存在重复时返回最早写入的一条
func (s *SetService) CheckValue(ctx context.Context, name, value string) (*etset.Check, error) {
	set, err := s.setModule.MustGetSet(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := etprimitive.ValidateValue("value", value); err != nil {
		return nil, err
	}
	v, err := s.setModule.FindValue(ctx, set.ID, value)
	if err != nil {
		return nil, err
	}
	return &etset.Check{Value: value, Exists: v != nil, SetValue: v}, nil
}

// AddValuesBulk 批量写入，按批次顺序逐条落库，单条失败不影响其他条目
func (s *SetService) AddValuesBulk(ctx context.Context, name string, items []etset.BulkItem) (*etset.BulkAddResult, error) {
	if err := s.checkBulkSize(len(items)); err != nil {
		return nil, err
	}
	set, err := s.setModule.MustGetSet(ctx, name)
	if err != nil {
		return nil, err
	}

	results := make([]etprimitive.ItemResult[*etset.Value], 0, len(items))
	for _, batch := range etprimitive.Batches(len(items), s.bulk.BatchSize) {
		for i := batch[0]; i < batch[1]; i++ {
			v, err := s.addValue(ctx, set, items[i].Value, items[i].Metadata)
			if err != nil {
				results = append(results, etprimitive.Err[*etset.Value](i, err))
				continue
			}
			results = append(results, etprimitive.Ok(i, v))
		}
	}

	out := etset.NewBulkAddResult(results)
	s.logger.Infof(ctx, "set bulk add: name=%s, total=%d, created=%d, errors=%d",
		set.Name, len(items), out.Created, len(out.Errors))
	return out, nil
}

// CheckValuesBulk 批量检查，每批一次查询；查询失败时整批条目记为失败
func (s *SetService) CheckValuesBulk(ctx context.Context, name string, values []string) (*etset.BulkCheckResult, error) {
	if err := s.checkBulkSize(len(values)); err != nil {
		return nil, err
	}
	set, err := s.setModule.MustGetSet(ctx, name)
	if err != nil {
		return nil, err
	}

	results := make([]etprimitive.ItemResult[*etset.Check], 0, len(values))
	for _, batch := range etprimitive.Batches(len(values), s.bulk.BatchSize) {
		results = append(results, s.checkBatch(ctx, set, values, batch[0], batch[1])...)
	}
	return etset.NewBulkCheckResult(results), nil
}

func (s *SetService) checkBatch(ctx context.Context, set *etset.Set, values []string, start, end int) []etprimitive.ItemResult[*etset.Check] {
	results := make([]etprimitive.ItemResult[*etset.Check], end-start)
	query := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		if err := etprimitive.ValidateValue("value", values[i]); err != nil {
			results[i-start] = etprimitive.Err[*etset.Check](i, err)
			continue
		}
		query = append(query, values[i])
	}

	found, err := s.setModule.FindValues(ctx, set.ID, query)
	for i := start; i < end; i++ {
		if results[i-start].Error != nil {
			continue
		}
		if err != nil {
			results[i-start] = etprimitive.Err[*etset.Check](i, err)
			continue
		}
		v := found[values[i]]
		results[i-start] = etprimitive.Ok(i, &etset.Check{Value: values[i], Exists: v != nil, SetValue: v})
	}
	if err != nil {
		s.logger.Errorf(ctx, "set bulk check batch failed: name=%s, range=[%d,%d), error=%v", set.Name, start, end, err)
	}
	return results
}

// RemoveValue 按 ID 或字面值删除
func (s *SetService) RemoveValue(ctx context.Context, name, key string) error {
	set, err := s.setModule.MustGetSet(ctx, name)
	if err != nil {
		return err
	}
	return s.setModule.RemoveValue(ctx, set, key)
}

// UpdateValue 修改值和元数据
func (s *SetService) UpdateValue(ctx context.Context, name, valueID, value string, metadata json.RawMessage) (*etset.Value, error) {
	set, err := s.setModule.MustGetSet(ctx, name)
	if err != nil {
		return nil, err
	}
	v, err := s.setModule.MustGetValue(ctx, set, valueID)
	if err != nil {
		return nil, err
	}
	if err := v.Update(value, metadata); err != nil {
		return nil, err
	}
	err = s.guarded(ctx, set, func(ctx context.Context, m *mdset.SetModule) error {
		if err := checkPolicy(ctx, m, set, value, v.ID); err != nil {
			return err
		}
		return m.UpdateValue(ctx, v)
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ListValues 分页查询值
func (s *SetService) ListValues(ctx context.Context, name string, page etprimitive.Pagination) ([]*etset.Value, etprimitive.Pagination, error) {
	set, err := s.setModule.MustGetSet(ctx, name)
	if err != nil {
		return nil, page, err
	}
	values, total, err := s.setModule.ListValues(ctx, set, page.Limit, page.Offset)
	if err != nil {
		return nil, page, err
	}
	return values, page.WithTotal(total), nil
}

// ClearValues 清空集合，返回删除条数
func (s *SetService) ClearValues(ctx context.Context, name string) (int64, error) {
	set, err := s.setModule.MustGetSet(ctx, name)
	if err != nil {
		return 0, err
	}
	n, err := s.setModule.ClearValues(ctx, set)
	if err != nil {
		return 0, err
	}
	s.logger.Infof(ctx, "set cleared: name=%s, deleted=%d", set.Name, n)
	return n, nil
}

// DeleteValuesList 按 ID 列表删除，返回删除条数
func (s *SetService) DeleteValuesList(ctx context.Context, name string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, errorx.Validation("ids is required", errorx.ErrorDetail{Path: "ids", Info: "at least one id is required"})
	}
	if err := s.checkBulkSize(len(ids)); err != nil {
		return 0, err
	}
	set, err := s.setModule.MustGetSet(ctx, name)
	if err != nil {
		return 0, err
	}
	return s.setModule.DeleteValues(ctx, set, ids)
}

func (s *SetService) checkBulkSize(n int) error {
	if s.bulk.MaxItems > 0 && n > s.bulk.MaxItems {
		return errorx.Validation(fmt.Sprintf("too many items: %d (max %d)", n, s.bulk.MaxItems),
			errorx.ErrorDetail{Path: "values", Info: fmt.Sprintf("at most %d items per request", s.bulk.MaxItems)})
	}
	return nil
}
