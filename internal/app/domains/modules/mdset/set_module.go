package mdset

import (
	"context"
	"errors"
	"fmt"

	"stratools/internal/app/domains/entity/etset"
	"stratools/internal/app/domains/repo/rpset"
	"stratools/internal/app/pkg/errorx"
)

// SetModule 集合模块（数据操作）
// 负责把仓储层的 nil/哨兵错误翻译成业务错误
type SetModule struct {
	setRepo rpset.SetRepository
}

// NewSetModule 创建集合模块
func NewSetModule(setRepo rpset.SetRepository) *SetModule {
	return &SetModule{
		setRepo: setRepo,
	}
}

// CreateSet 创建集合
func (m *SetModule) CreateSet(ctx context.Context, set *etset.Set) error {
	if err := m.setRepo.Create(ctx, set); err != nil {
		if errors.Is(err, rpset.ErrDuplicateName) {
			return errorx.DuplicateName("set", set.Name)
		}
		return errorx.Internal(fmt.Errorf("create set: %w", err))
	}
	return nil
}

// MustGetSet 查询集合，不存在返回 NOT_FOUND
func (m *SetModule) MustGetSet(ctx context.Context, name string) (*etset.Set, error) {
	set, err := m.setRepo.GetByName(ctx, name)
	if err != nil {
		return nil, errorx.Internal(fmt.Errorf("get set %s: %w", name, err))
	}
	if set == nil {
		return nil, errorx.NotFound("set '%s' not found", name)
	}
	return set, nil
}

// FillValueCount 回填值数量
func (m *SetModule) FillValueCount(ctx context.Context, sets ...*etset.Set) error {
	ids := make([]string, 0, len(sets))
	for _, s := range sets {
		ids = append(ids, s.ID)
	}
	counts, err := m.setRepo.CountValues(ctx, ids...)
	if err != nil {
		return errorx.Internal(fmt.Errorf("count set values: %w", err))
	}
	for _, s := range sets {
		s.ValueCount = counts[s.ID]
	}
	return nil
}

// ListSets 分页查询集合
func (m *SetModule) ListSets(ctx context.Context, limit, offset int) ([]*etset.Set, int64, error) {
	sets, total, err := m.setRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, errorx.Internal(fmt.Errorf("list sets: %w", err))
	}
	return sets, total, nil
}

// UpdateSet 更新集合
func (m *SetModule) UpdateSet(ctx context.Context, set *etset.Set) error {
	if err := m.setRepo.Update(ctx, set); err != nil {
		return errorx.Internal(fmt.Errorf("update set %s: %w", set.Name, err))
	}
	return nil
}

// DeleteSet 级联删除集合
func (m *SetModule) DeleteSet(ctx context.Context, set *etset.Set) error {
	if err := m.setRepo.Delete(ctx, set.ID); err != nil {
		return errorx.Internal(fmt.Errorf("delete set %s: %w", set.Name, err))
	}
	return nil
}

// WithSetLock 在锁住集合行的事务中执行 fn，fn 的业务错误原样返回
func (m *SetModule) WithSetLock(ctx context.Context, set *etset.Set, fn func(ctx context.Context, tx *SetModule) error) error {
	var fnErr error
	err := m.setRepo.WithSetLock(ctx, set.ID, func(ctx context.Context, repo rpset.SetRepository) error {
		fnErr = fn(ctx, &SetModule{setRepo: repo})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if errors.Is(err, rpset.ErrSetNotFound) {
		return errorx.NotFound("set '%s' not found", set.Name)
	}
	if err != nil {
		return errorx.Internal(fmt.Errorf("lock set %s: %w", set.Name, err))
	}
	return nil
}

// CreateValue 写入值
func (m *SetModule) CreateValue(ctx context.Context, value *etset.Value) error {
	if err := m.setRepo.CreateValue(ctx, value); err != nil {
		return errorx.Internal(fmt.Errorf("create set value: %w", err))
	}
	return nil
}

// FindValue 查询第一个匹配的值，不存在返回 nil
func (m *SetModule) FindValue(ctx context.Context, setID, value string) (*etset.Value, error) {
	v, err := m.setRepo.FindValue(ctx, setID, value)
	if err != nil {
		return nil, errorx.Internal(fmt.Errorf("find set value: %w", err))
	}
	return v, nil
}

// FindValues 批量查询
func (m *SetModule) FindValues(ctx context.Context, setID string, values []string) (map[string]*etset.Value, error) {
	found, err := m.setRepo.FindValues(ctx, setID, values)
	if err != nil {
		return nil, errorx.Internal(fmt.Errorf("find set values: %w", err))
	}
	return found, nil
}

// MustGetValue 查询值，不存在返回 NOT_FOUND
func (m *SetModule) MustGetValue(ctx context.Context, set *etset.Set, valueID string) (*etset.Value, error) {
	v, err := m.setRepo.GetValue(ctx, set.ID, valueID)
	if err != nil {
		return nil, errorx.Internal(fmt.Errorf("get set value: %w", err))
	}
	if v == nil {
		return nil, errorx.NotFound("value '%s' not found in set '%s'", valueID, set.Name)
	}
	return v, nil
}

// UpdateValue 更新值
func (m *SetModule) UpdateValue(ctx context.Context, value *etset.Value) error {
	if err := m.setRepo.UpdateValue(ctx, value); err != nil {
		return errorx.Internal(fmt.Errorf("update set value: %w", err))
	}
	return nil
}

// RemoveValue 按 ID 或字面值删除，一条都没删到返回 NOT_FOUND
func (m *SetModule) RemoveValue(ctx context.Context, set *etset.Set, key string) error {
	n, err := m.setRepo.DeleteValueByKey(ctx, set.ID, key)
	if err != nil {
		return errorx.Internal(fmt.Errorf("remove set value: %w", err))
	}
	if n == 0 {
		return errorx.NotFound("value '%s' not found in set '%s'", key, set.Name)
	}
	return nil
}

// DeleteValues 按 ID 列表删除
func (m *SetModule) DeleteValues(ctx context.Context, set *etset.Set, ids []string) (int64, error) {
	n, err := m.setRepo.DeleteValues(ctx, set.ID, ids)
	if err != nil {
		return 0, errorx.Internal(fmt.Errorf("delete set values: %w", err))
	}
	return n, nil
}

// ClearValues 清空集合
func (m *SetModule) ClearValues(ctx context.Context, set *etset.Set) (int64, error) {
	n, err := m.setRepo.ClearValues(ctx, set.ID)
	if err != nil {
		return 0, errorx.Internal(fmt.Errorf("clear set values: %w", err))
	}
	return n, nil
}

// ListValues 分页查询值
func (m *SetModule) ListValues(ctx context.Context, set *etset.Set, limit, offset int) ([]*etset.Value, int64, error) {
	values, total, err := m.setRepo.ListValues(ctx, set.ID, limit, offset)
	if err != nil {
		return nil, 0, errorx.Internal(fmt.Errorf("list set values: %w", err))
	}
	return values, total, nil
}
