package svlookup

import (
	"context"
	"fmt"

	"stratools/internal/app/config"
	"stratools/internal/app/domains/entity/etlookup"
	"stratools/internal/app/domains/entity/etprimitive"
	"stratools/internal/app/domains/modules/mdlookup"
	"stratools/internal/app/pkg/errorx"
	"stratools/internal/app/pkg/logger"
)

// LookupService 映射表服务，负责映射表与映射值的业务编排
type LookupService struct {
	lookupModule *mdlookup.LookupModule
	bulk         config.BulkConfig
	logger       logger.Logger
}

// NewLookupService 创建映射表服务实例
func NewLookupService(lookupModule *mdlookup.LookupModule, bulk config.BulkConfig, log logger.Logger) *LookupService {
	return &LookupService{
		lookupModule: lookupModule,
		bulk:         bulk,
		logger:       log,
	}
}

// CreateLookup 创建映射表
func (s *LookupService) CreateLookup(ctx context.Context, name string, opts etlookup.Options) (*etlookup.Lookup, error) {
	lookup, err := etlookup.NewLookup(name, opts)
	if err != nil {
		return nil, err
	}
	if err := s.lookupModule.CreateLookup(ctx, lookup); err != nil {
		return nil, err
	}

	s.logger.Infof(ctx, "lookup created: name=%s, id=%s, strict=%v", lookup.Name, lookup.ID, lookup.StrictChecking)
	return lookup, nil
}

// GetLookup 查询映射表（含映射数量）
func (s *LookupService) GetLookup(ctx context.Context, name string) (*etlookup.Lookup, error) {
	lookup, err := s.lookupModule.MustGetLookup(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.lookupModule.FillValueCount(ctx, lookup); err != nil {
		return nil, err
	}
	return lookup, nil
}

// ListLookups 分页查询映射表
func (s *LookupService) ListLookups(ctx context.Context, page etprimitive.Pagination) ([]*etlookup.Lookup, etprimitive.Pagination, error) {
	lookups, total, err := s.lookupModule.ListLookups(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, page, err
	}
	if err := s.lookupModule.FillValueCount(ctx, lookups...); err != nil {
		return nil, page, err
	}
	return lookups, page.WithTotal(total), nil
}

// UpdateLookup 更新描述、系统名和策略
func (s *LookupService) UpdateLookup(ctx context.Context, name string, opts etlookup.Options) (*etlookup.Lookup, error) {
	lookup, err := s.lookupModule.MustGetLookup(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := lookup.Apply(opts); err != nil {
		return nil, err
	}
	if err := s.lookupModule.UpdateLookup(ctx, lookup); err != nil {
		return nil, err
	}
	if err := s.lookupModule.FillValueCount(ctx, lookup); err != nil {
		return nil, err
	}
	return lookup, nil
}

// DeleteLookup 删除映射表及其全部映射
func (s *LookupService) DeleteLookup(ctx context.Context, name string) error {
	lookup, err := s.lookupModule.MustGetLookup(ctx, name)
	if err != nil {
		return err
	}
	if err := s.lookupModule.DeleteLookup(ctx, lookup); err != nil {
		return err
	}
	s.logger.Infof(ctx, "lookup deleted: name=%s, id=%s", lookup.Name, lookup.ID)
	return nil
}

// AddValue 写入单条映射
func (s *LookupService) AddValue(ctx context.Context, name string, item etlookup.BulkItem) (*etlookup.Value, error) {
	lookup, err := s.lookupModule.MustGetLookup(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.insert(ctx, lookup, item)
}

func (s *LookupService) insert(ctx context.Context, lookup *etlookup.Lookup, item etlookup.BulkItem) (*etlookup.Value, error) {
	v, err := etlookup.NewValue(lookup.ID, item.Left, item.Right, item.LeftMetadata, item.RightMetadata)
	if err != nil {
		return nil, err
	}
	err = s.guarded(ctx, lookup, func(ctx context.Context, m *mdlookup.LookupModule) error {
		if err := m.CheckPolicy(ctx, lookup, v.Left, v.Right, ""); err != nil {
			return err
		}
		return m.CreateValue(ctx, v)
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// guarded 严格模式下检查与写入放在同一事务并锁住映射表行，避免并发写入同时通过检查
func (s *LookupService) guarded(ctx context.Context, lookup *etlookup.Lookup, fn func(ctx context.Context, m *mdlookup.LookupModule) error) error {
	if !lookup.Enforces() {
		return fn(ctx, s.lookupModule)
	}
	return s.lookupModule.WithLookupLock(ctx, lookup, fn)
}

// checkAndUpdate 校验策略后更新
func (s *LookupService) checkAndUpdate(ctx context.Context, lookup *etlookup.Lookup, v *etlookup.Value) error {
	return s.guarded(ctx, lookup, func(ctx context.Context, m *mdlookup.LookupModule) error {
		if err := m.CheckPolicy(ctx, lookup, v.Left, v.Right, v.ID); err != nil {
			return err
		}
		return m.UpdateValue(ctx, v)
	})
}

// AddValuesBulk 批量写入
// insert: 逐条新增
// skip: 已存在完全相同的 left/right 时跳过
// upsert: 已存在相同 left 时原地更新，内容完全一致时跳过
func (s *LookupService) AddValuesBulk(ctx context.Context, name string, mode etlookup.BulkMode, items []etlookup.BulkItem) (*etlookup.BulkAddResult, error) {
	if mode == "" {
		mode = etlookup.BulkModeInsert
	}
	if !mode.Valid() {
		return nil, errorx.Validation(fmt.Sprintf("invalid bulk mode '%s'", mode),
			errorx.ErrorDetail{Path: "mode", Info: "mode must be one of insert, skip, upsert"})
	}
	if err := s.checkBulkSize(len(items)); err != nil {
		return nil, err
	}
	lookup, err := s.lookupModule.MustGetLookup(ctx, name)
	if err != nil {
		return nil, err
	}

	results := make([]etprimitive.ItemResult[*etlookup.BulkOutcome], 0, len(items))
	for _, batch := range etprimitive.Batches(len(items), s.bulk.BatchSize) {
		results = append(results, s.addBatch(ctx, lookup, mode, items, batch[0], batch[1])...)
	}

	out := etlookup.NewBulkAddResult(results)
	s.logger.Infof(ctx, "lookup bulk add: name=%s, mode=%s, total=%d, created=%d, updated=%d, skipped=%d, errors=%d",
		lookup.Name, mode, len(items), out.Created, out.Updated, out.Skipped, len(out.Errors))
	return out, nil
}

func (s *LookupService) addBatch(ctx context.Context, lookup *etlookup.Lookup, mode etlookup.BulkMode, items []etlookup.BulkItem, start, end int) []etprimitive.ItemResult[*etlookup.BulkOutcome] {
	results := make([]etprimitive.ItemResult[*etlookup.BulkOutcome], 0, end-start)

	// skip/upsert 模式每批预取一次已有映射
	var (
		pairs  map[etlookup.Pair]*etlookup.Value
		byLeft map[string]*etlookup.Value
	)
	if mode != etlookup.BulkModeInsert {
		lefts := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			lefts = append(lefts, items[i].Left)
		}
		var err error
		if mode == etlookup.BulkModeSkip {
			pairs, err = s.lookupModule.FindPairs(ctx, lookup, lefts)
		} else {
			byLeft, err = s.lookupModule.FindByLefts(ctx, lookup, lefts)
		}
		if err != nil {
			s.logger.Errorf(ctx, "lookup bulk prefetch failed: name=%s, range=[%d,%d), error=%v", lookup.Name, start, end, err)
			for i := start; i < end; i++ {
				results = append(results, etprimitive.Err[*etlookup.BulkOutcome](i, err))
			}
			return results
		}
	}

	for i := start; i < end; i++ {
		var (
			outcome *etlookup.BulkOutcome
			err     error
		)
		switch mode {
		case etlookup.BulkModeSkip:
			outcome, err = s.addOrSkip(ctx, lookup, items[i], pairs)
		case etlookup.BulkModeUpsert:
			outcome, err = s.upsert(ctx, lookup, items[i], byLeft)
		default:
			outcome, err = s.create(ctx, lookup, items[i])
		}
		if err != nil {
			results = append(results, etprimitive.Err[*etlookup.BulkOutcome](i, err))
			continue
		}
		results = append(results, etprimitive.Ok(i, outcome))
	}
	return results
}

func (s *LookupService) create(ctx context.Context, lookup *etlookup.Lookup, item etlookup.BulkItem) (*etlookup.BulkOutcome, error) {
	v, err := s.insert(ctx, lookup, item)
	if err != nil {
		return nil, err
	}
	return &etlookup.BulkOutcome{Outcome: etlookup.OutcomeCreated, Value: v}, nil
}

// addOrSkip 完全相同的 left/right 已存在时跳过
func (s *LookupService) addOrSkip(ctx context.Context, lookup *etlookup.Lookup, item etlookup.BulkItem, pairs map[etlookup.Pair]*etlookup.Value) (*etlookup.BulkOutcome, error) {
	if v, ok := pairs[etlookup.Pair{Left: item.Left, Right: item.Right}]; ok {
		return &etlookup.BulkOutcome{Outcome: etlookup.OutcomeSkipped, Value: v}, nil
	}
	v, err := s.insert(ctx, lookup, item)
	if err != nil {
		return nil, err
	}
	pairs[v.Pair()] = v
	return &etlookup.BulkOutcome{Outcome: etlookup.OutcomeCreated, Value: v}, nil
}

// upsert 同 left 的映射原地更新，内容一致时跳过
func (s *LookupService) upsert(ctx context.Context, lookup *etlookup.Lookup, item etlookup.BulkItem, byLeft map[string]*etlookup.Value) (*etlookup.BulkOutcome, error) {
	current, ok := byLeft[item.Left]
	if !ok {
		v, err := s.insert(ctx, lookup, item)
		if err != nil {
			return nil, err
		}
		byLeft[v.Left] = v
		return &etlookup.BulkOutcome{Outcome: etlookup.OutcomeCreated, Value: v}, nil
	}

	// 先在副本上校验，失败时不污染预取结果
	next := *current
	if err := next.Update(item.Left, item.Right, item.LeftMetadata, item.RightMetadata); err != nil {
		return nil, err
	}
	if current.Matches(next.Left, next.Right, next.LeftMetadata, next.RightMetadata) {
		return &etlookup.BulkOutcome{Outcome: etlookup.OutcomeSkipped, Value: current}, nil
	}
	if err := s.checkAndUpdate(ctx, lookup, &next); err != nil {
		return nil, err
	}
	byLeft[next.Left] = &next
	return &etlookup.BulkOutcome{Outcome: etlookup.OutcomeUpdated, Value: &next}, nil
}

// SearchValues 搜索映射
func (s *LookupService) SearchValues(ctx context.Context, name string, q etlookup.SearchQuery) ([]*etlookup.Value, etprimitive.Pagination, error) {
	page := etprimitive.NewPagination(q.Limit, q.Offset)
	q.Limit, q.Offset = page.Limit, page.Offset

	lookup, err := s.lookupModule.MustGetLookup(ctx, name)
	if err != nil {
		return nil, page, err
	}
	values, total, err := s.lookupModule.Search(ctx, lookup, q)
	if err != nil {
		return nil, page, err
	}
	return values, page.WithTotal(total), nil
}

// ListValues 分页查询映射（新写入在前）
func (s *LookupService) ListValues(ctx context.Context, name string, page etprimitive.Pagination) ([]*etlookup.Value, etprimitive.Pagination, error) {
	return s.SearchValues(ctx, name, etlookup.SearchQuery{Limit: page.Limit, Offset: page.Offset})
}

// RemoveValue 按 ID 删除映射
func (s *LookupService) RemoveValue(ctx context.Context, name, valueID string) error {
	lookup, err := s.lookupModule.MustGetLookup(ctx, name)
	if err != nil {
		return err
	}
	return s.lookupModule.RemoveValue(ctx, lookup, valueID)
}

// UpdateValue 修改映射
func (s *LookupService) UpdateValue(ctx context.Context, name, valueID string, item etlookup.BulkItem) (*etlookup.Value, error) {
	lookup, err := s.lookupModule.MustGetLookup(ctx, name)
	if err != nil {
		return nil, err
	}
	v, err := s.lookupModule.MustGetValue(ctx, lookup, valueID)
	if err != nil {
		return nil, err
	}
	if err := v.Update(item.Left, item.Right, item.LeftMetadata, item.RightMetadata); err != nil {
		return nil, err
	}
	if err := s.checkAndUpdate(ctx, lookup, v); err != nil {
		return nil, err
	}
	return v, nil
}

// ClearValues 清空映射表，返回删除条数
func (s *LookupService) ClearValues(ctx context.Context, name string) (int64, error) {
	lookup, err := s.lookupModule.MustGetLookup(ctx, name)
	if err != nil {
		return 0, err
	}
	n, err := s.lookupModule.ClearValues(ctx, lookup)
	if err != nil {
		return 0, err
	}
	s.logger.Infof(ctx, "lookup cleared: name=%s, deleted=%d", lookup.Name, n)
	return n, nil
}

// DeleteValuesList 按 ID 列表删除，返回删除条数
func (s *LookupService) DeleteValuesList(ctx context.Context, name string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, errorx.Validation("ids is required", errorx.ErrorDetail{Path: "ids", Info: "at least one id is required"})
	}
	if err := s.checkBulkSize(len(ids)); err != nil {
		return 0, err
	}
	lookup, err := s.lookupModule.MustGetLookup(ctx, name)
	if err != nil {
		return 0, err
	}
	return s.lookupModule.DeleteValues(ctx, lookup, ids)
}

func (s *LookupService) checkBulkSize(n int) error {
	if s.bulk.MaxItems > 0 && n > s.bulk.MaxItems {
		return errorx.Validation(fmt.Sprintf("too many items: %d (max %d)", n, s.bulk.MaxItems),
			errorx.ErrorDetail{Path: "values", Info: fmt.Sprintf("at most %d items per request", s.bulk.MaxItems)})
	}
	return nil
}
