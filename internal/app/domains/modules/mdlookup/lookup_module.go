package mdlookup

import (
	"context"
	"errors"
	"fmt"

	"stratools/internal/app/domains/entity/etlookup"
	"stratools/internal/app/domains/repo/rplookup"
	"stratools/internal/app/pkg/errorx"
)

// LookupModule 映射表模块（数据操作）
type LookupModule struct {
	lookupRepo rplookup.LookupRepository
}

// NewLookupModule 创建映射表模块
func NewLookupModule(lookupRepo rplookup.LookupRepository) *LookupModule {
	return &LookupModule{
		lookupRepo: lookupRepo,
	}
}

// CreateLookup 创建映射表
func (m *LookupModule) CreateLookup(ctx context.Context, lookup *etlookup.Lookup) error {
	if err := m.lookupRepo.Create(ctx, lookup); err != nil {
		if errors.Is(err, rplookup.ErrDuplicateName) {
			return errorx.DuplicateName("lookup", lookup.Name)
		}
		return errorx.Internal(fmt.Errorf("create lookup: %w", err))
	}
	return nil
}

// MustGetLookup 查询映射表，不存在返回 NOT_FOUND
func (m *LookupModule) MustGetLookup(ctx context.Context, name string) (*etlookup.Lookup, error) {
	lookup, err := m.lookupRepo.GetByName(ctx, name)
	if err != nil {
		return nil, errorx.Internal(fmt.Errorf("get lookup %s: %w", name, err))
	}
	if lookup == nil {
		return nil, errorx.NotFound("lookup '%s' not found", name)
	}
	return lookup, nil
}

// FillValueCount 回填映射数量
func (m *LookupModule) FillValueCount(ctx context.Context, lookups ...*etlookup.Lookup) error {
	ids := make([]string, 0, len(lookups))
	for _, l := range lookups {
		ids = append(ids, l.ID)
	}
	counts, err := m.lookupRepo.CountValues(ctx, ids...)
	if err != nil {
		return errorx.Internal(fmt.Errorf("count lookup values: %w", err))
	}
	for _, l := range lookups {
		l.ValueCount = counts[l.ID]
	}
	return nil
}

// ListLookups 分页查询
func (m *LookupModule) ListLookups(ctx context.Context, limit, offset int) ([]*etlookup.Lookup, int64, error) {
	lookups, total, err := m.lookupRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, errorx.Internal(fmt.Errorf("list lookups: %w", err))
	}
	return lookups, total, nil
}

// ListAllLookups 全量查询
func (m *LookupModule) ListAllLookups(ctx context.Context) ([]*etlookup.Lookup, error) {
	lookups, err := m.lookupRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all lookups: %w", err)
	}
	return lookups, nil
}

// UpdateLookup 更新映射表
func (m *LookupModule) UpdateLookup(ctx context.Context, lookup *etlookup.Lookup) error {
	if err := m.lookupRepo.Update(ctx, lookup); err != nil {
		return errorx.Internal(fmt.Errorf("update lookup %s: %w", lookup.Name, err))
	}
	return nil
}

// DeleteLookup 级联删除
func (m *LookupModule) DeleteLookup(ctx context.Context, lookup *etlookup.Lookup) error {
	if err := m.lookupRepo.Delete(ctx, lookup.ID); err != nil {
		return errorx.Internal(fmt.Errorf("delete lookup %s: %w", lookup.Name, err))
	}
	return nil
}

// CreateValue 写入映射
func (m *LookupModule) CreateValue(ctx context.Context, value *etlookup.Value) error {
	if err := m.lookupRepo.CreateValue(ctx, value); err != nil {
		return errorx.Internal(fmt.Errorf("create lookup value: %w", err))
	}
	return nil
}

// MustGetValue 查询映射，不存在返回 NOT_FOUND
func (m *LookupModule) MustGetValue(ctx context.Context, lookup *etlookup.Lookup, valueID string) (*etlookup.Value, error) {
	v, err := m.lookupRepo.GetValue(ctx, lookup.ID, valueID)
	if err != nil {
		return nil, errorx.Internal(fmt.Errorf("get lookup value: %w", err))
	}
	if v == nil {
		return nil, errorx.NotFound("value '%s' not found in lookup '%s'", valueID, lookup.Name)
	}
	return v, nil
}

// UpdateValue 更新映射
func (m *LookupModule) UpdateValue(ctx context.Context, value *etlookup.Value) error {
	if err := m.lookupRepo.UpdateValue(ctx, value); err != nil {
		return errorx.Internal(fmt.Errorf("update lookup value: %w", err))
	}
	return nil
}

// RemoveValue 按 ID 删除，不存在返回 NOT_FOUND
func (m *LookupModule) RemoveValue(ctx context.Context, lookup *etlookup.Lookup, valueID string) error {
	n, err := m.lookupRepo.DeleteValue(ctx, lookup.ID, valueID)
	if err != nil {
		return errorx.Internal(fmt.Errorf("remove lookup value: %w", err))
	}
	if n == 0 {
		return errorx.NotFound("value '%s' not found in lookup '%s'", valueID, lookup.Name)
	}
	return nil
}

// DeleteValues 按 ID 列表删除
func (m *LookupModule) DeleteValues(ctx context.Context, lookup *etlookup.Lookup, ids []string) (int64, error) {
	n, err := m.lookupRepo.DeleteValues(ctx, lookup.ID, ids)
	if err != nil {
		return 0, errorx.Internal(fmt.Errorf("delete lookup values: %w", err))
	}
	return n, nil
}

// ClearValues 清空映射表
func (m *LookupModule) ClearValues(ctx context.Context, lookup *etlookup.Lookup) (int64, error) {
	n, err := m.lookupRepo.ClearValues(ctx, lookup.ID)
	if err != nil {
		return 0, errorx.Internal(fmt.Errorf("clear lookup values: %w", err))
	}
	return n, nil
}

// Search 组合条件搜索
func (m *LookupModule) Search(ctx context.Context, lookup *etlookup.Lookup, q etlookup.SearchQuery) ([]*etlookup.Value, int64, error) {
	values, total, err := m.lookupRepo.Search(ctx, lookup.ID, q)
	if err != nil {
		return nil, 0, errorx.Internal(fmt.Errorf("search lookup values: %w", err))
	}
	return values, total, nil
}

// ListAllValues 全量查询映射（检测任务使用，错误不转业务错误）
func (m *LookupModule) ListAllValues(ctx context.Context, lookupID string) ([]*etlookup.Value, error) {
	return m.lookupRepo.ListAllValues(ctx, lookupID)
}

// WithLookupLock 在锁住映射表行的事务中执行 fn，fn 的业务错误原样返回
func (m *LookupModule) WithLookupLock(ctx context.Context, lookup *etlookup.Lookup, fn func(ctx context.Context, tx *LookupModule) error) error {
	var fnErr error
	err := m.lookupRepo.WithLookupLock(ctx, lookup.ID, func(ctx context.Context, repo rplookup.LookupRepository) error {
		fnErr = fn(ctx, &LookupModule{lookupRepo: repo})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if errors.Is(err, rplookup.ErrLookupNotFound) {
		return errorx.NotFound("lookup '%s' not found", lookup.Name)
	}
	if err != nil {
		return errorx.Internal(fmt.Errorf("lock lookup %s: %w", lookup.Name, err))
	}
	return nil
}

// CheckPolicy 严格模式下校验待写入的映射是否违反重复策略
// excludeID 为更新场景下的自身 ID
func (m *LookupModule) CheckPolicy(ctx context.Context, lookup *etlookup.Lookup, left, right, excludeID string) error {
	if !lookup.Enforces() {
		return nil
	}

	type rule struct {
		enabled bool
		left    *string
		right   *string
		msg     string
	}
	rules := []rule{
		{!lookup.AllowLeftRightDups, &left, &right, fmt.Sprintf("pair '%s' -> '%s' already exists", left, right)},
		{!lookup.AllowLeftDups, &left, nil, fmt.Sprintf("left value '%s' already exists", left)},
		{!lookup.AllowRightDups, nil, &right, fmt.Sprintf("right value '%s' already exists", right)},
	}

	for _, r := range rules {
		if !r.enabled {
			continue
		}
		existing, err := m.lookupRepo.FindFirst(ctx, lookup.ID, r.left, r.right, excludeID)
		if err != nil {
			return errorx.Internal(fmt.Errorf("check lookup policy: %w", err))
		}
		if existing != nil {
			return errorx.DuplicateValue("%s in lookup '%s'", r.msg, lookup.Name)
		}
	}
	return nil
}

// FindByLefts 批量按 left 查询
func (m *LookupModule) FindByLefts(ctx context.Context, lookup *etlookup.Lookup, lefts []string) (map[string]*etlookup.Value, error) {
	found, err := m.lookupRepo.FindByLefts(ctx, lookup.ID, lefts)
	if err != nil {
		return nil, errorx.Internal(fmt.Errorf("find lookup values by left: %w", err))
	}
	return found, nil
}

// FindPairs 批量按组合键查询
func (m *LookupModule) FindPairs(ctx context.Context, lookup *etlookup.Lookup, lefts []string) (map[etlookup.Pair]*etlookup.Value, error) {
	found, err := m.lookupRepo.FindPairs(ctx, lookup.ID, lefts)
	if err != nil {
		return nil, errorx.Internal(fmt.Errorf("find lookup pairs: %w", err))
	}
	return found, nil
}
