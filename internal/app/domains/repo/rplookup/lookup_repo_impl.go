package rplookup

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stratools/internal/app/domains/entity/etlookup"
	"stratools/internal/common/entity"
)

// LookupRepositoryImpl 映射表仓储实现（GORM）
type LookupRepositoryImpl struct {
	db *gorm.DB
}

// NewLookupRepository 创建映射表仓储实例
func NewLookupRepository(db *gorm.DB) LookupRepository {
	return &LookupRepositoryImpl{db: db}
}

// Create 创建映射表
func (r *LookupRepositoryImpl) Create(ctx context.Context, lookup *etlookup.Lookup) error {
	err := r.db.WithContext(ctx).Create(toLookupModel(lookup)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateName
	}
	return err
}

// GetByName 根据名称查询
func (r *LookupRepositoryImpl) GetByName(ctx context.Context, name string) (*etlookup.Lookup, error) {
	var po entity.Lookup
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toLookupDomain(&po), nil
}

// List 分页查询映射表
func (r *LookupRepositoryImpl) List(ctx context.Context, limit, offset int) ([]*etlookup.Lookup, int64, error) {
	var total int64
	var pos []entity.Lookup

	query := r.db.WithContext(ctx).Model(&entity.Lookup{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&pos).Error; err != nil {
		return nil, 0, err
	}
	return toLookupDomains(pos), total, nil
}

// ListAll 全量查询映射表
func (r *LookupRepositoryImpl) ListAll(ctx context.Context) ([]*etlookup.Lookup, error) {
	var pos []entity.Lookup
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&pos).Error; err != nil {
		return nil, err
	}
	return toLookupDomains(pos), nil
}

// Update 更新描述和策略
func (r *LookupRepositoryImpl) Update(ctx context.Context, lookup *etlookup.Lookup) error {
	return r.db.WithContext(ctx).
		Model(&entity.Lookup{}).
		Where("id = ?", lookup.ID).
		Updates(map[string]interface{}{
			"description":           lookup.Description,
			"left_system":           lookup.LeftSystem,
			"right_system":          lookup.RightSystem,
			"allow_left_dups":       lookup.AllowLeftDups,
			"allow_right_dups":      lookup.AllowRightDups,
			"allow_left_right_dups": lookup.AllowLeftRightDups,
			"strict_checking":       lookup.StrictChecking,
			"updated_at":            lookup.UpdatedAt,
		}).Error
}

// Delete 先删映射再删映射表
func (r *LookupRepositoryImpl) Delete(ctx context.Context, lookupID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lookup_id = ?", lookupID).Delete(&entity.LookupValue{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", lookupID).Delete(&entity.Lookup{}).Error
	})
}

// WithLookupLock SELECT ... FOR UPDATE 锁住映射表行，同一映射表的严格写入串行执行
func (r *LookupRepositoryImpl) WithLookupLock(ctx context.Context, lookupID string, fn func(ctx context.Context, repo LookupRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var po entity.Lookup
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", lookupID).
			Take(&po).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLookupNotFound
		}
		if err != nil {
			return err
		}
		return fn(ctx, &LookupRepositoryImpl{db: tx})
	})
}

// CountValues 按映射表分组计数
func (r *LookupRepositoryImpl) CountValues(ctx context.Context, lookupIDs ...string) (map[string]int64, error) {
	counts := make(map[string]int64, len(lookupIDs))
	if len(lookupIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		LookupID string
		Count    int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.LookupValue{}).
		Select("lookup_id, COUNT(*) AS count").
		Where("lookup_id IN ?", lookupIDs).
		Group("lookup_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.LookupID] = row.Count
	}
	return counts, nil
}

// CreateValue 写入一条映射
func (r *LookupRepositoryImpl) CreateValue(ctx context.Context, value *etlookup.Value) error {
	return r.db.WithContext(ctx).Create(toValueModel(value)).Error
}

// GetValue 根据 ID 查询映射
func (r *LookupRepositoryImpl) GetValue(ctx context.Context, lookupID, valueID string) (*etlookup.Value, error) {
	var po entity.LookupValue
	err := r.db.WithContext(ctx).Where("lookup_id = ? AND id = ?", lookupID, valueID).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toValueDomain(&po), nil
}

// UpdateValue 更新映射
func (r *LookupRepositoryImpl) UpdateValue(ctx context.Context, value *etlookup.Value) error {
	return r.db.WithContext(ctx).
		Model(&entity.LookupValue{}).
		Where("lookup_id = ? AND id = ?", value.LookupID, value.ID).
		Updates(map[string]interface{}{
			"left_value":     value.Left,
			"right_value":    value.Right,
			"left_metadata":  entity.ToJSON(value.LeftMetadata),
			"right_metadata": entity.ToJSON(value.RightMetadata),
			"updated_at":     value.UpdatedAt,
		}).Error
}

// DeleteValue 按 ID 删除
func (r *LookupRepositoryImpl) DeleteValue(ctx context.Context, lookupID, valueID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("lookup_id = ? AND id = ?", lookupID, valueID).
		Delete(&entity.LookupValue{})
	return result.RowsAffected, result.Error
}

// DeleteValues 按 ID 列表删除
func (r *LookupRepositoryImpl) DeleteValues(ctx context.Context, lookupID string, valueIDs []string) (int64, error) {
	if len(valueIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("lookup_id = ? AND id IN ?", lookupID, valueIDs).
		Delete(&entity.LookupValue{})
	return result.RowsAffected, result.Error
}

// ClearValues 清空映射表
func (r *LookupRepositoryImpl) ClearValues(ctx context.Context, lookupID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("lookup_id = ?", lookupID).Delete(&entity.LookupValue{})
	return result.RowsAffected, result.Error
}

// ListValues 分页查询映射
func (r *LookupRepositoryImpl) ListValues(ctx context.Context, lookupID string, limit, offset int) ([]*etlookup.Value, int64, error) {
	return r.Search(ctx, lookupID, etlookup.SearchQuery{Limit: limit, Offset: offset})
}

// ListAllValues 全量查询某映射表的映射，按写入顺序
func (r *LookupRepositoryImpl) ListAllValues(ctx context.Context, lookupID string) ([]*etlookup.Value, error) {
	var pos []entity.LookupValue
	err := r.db.WithContext(ctx).
		Where("lookup_id = ?", lookupID).
		Order("created_at ASC").Order("id ASC").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}
	return toValueDomains(pos), nil
}

// Search 组合条件搜索
func (r *LookupRepositoryImpl) Search(ctx context.Context, lookupID string, q etlookup.SearchQuery) ([]*etlookup.Value, int64, error) {
	var total int64
	var pos []entity.LookupValue

	query := r.db.WithContext(ctx).Model(&entity.LookupValue{}).Where("lookup_id = ?", lookupID)
	if q.Left != nil {
		query = query.Where("left_value = ?", *q.Left)
	}
	if q.Right != nil {
		query = query.Where("right_value = ?", *q.Right)
	}
	if q.Search != nil && *q.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(*q.Search)) + "%"
		query = query.Where("(LOWER(left_value) LIKE ? ESCAPE '!' OR LOWER(right_value) LIKE ? ESCAPE '!')", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Order("id DESC").Offset(q.Offset).Limit(q.Limit).Find(&pos).Error; err != nil {
		return nil, 0, err
	}
	return toValueDomains(pos), total, nil
}

// FindFirst 按 left/right 条件查询最早写入的一条
func (r *LookupRepositoryImpl) FindFirst(ctx context.Context, lookupID string, left, right *string, excludeID string) (*etlookup.Value, error) {
	query := r.db.WithContext(ctx).Where("lookup_id = ?", lookupID)
	if left != nil {
		query = query.Where("left_value = ?", *left)
	}
	if right != nil {
		query = query.Where("right_value = ?", *right)
	}
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var po entity.LookupValue
	err := query.Order("created_at ASC").Order("id ASC").First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toValueDomain(&po), nil
}

// FindByLefts 批量按 left 查询
func (r *LookupRepositoryImpl) FindByLefts(ctx context.Context, lookupID string, lefts []string) (map[string]*etlookup.Value, error) {
	values, err := r.findByLefts(ctx, lookupID, lefts)
	if err != nil {
		return nil, err
	}
	found := make(map[string]*etlookup.Value, len(values))
	for _, v := range values {
		if _, ok := found[v.Left]; !ok {
			found[v.Left] = v
		}
	}
	return found, nil
}

// FindPairs 批量查询，按 left/right 组合键返回
func (r *LookupRepositoryImpl) FindPairs(ctx context.Context, lookupID string, lefts []string) (map[etlookup.Pair]*etlookup.Value, error) {
	values, err := r.findByLefts(ctx, lookupID, lefts)
	if err != nil {
		return nil, err
	}
	found := make(map[etlookup.Pair]*etlookup.Value, len(values))
	for _, v := range values {
		if _, ok := found[v.Pair()]; !ok {
			found[v.Pair()] = v
		}
	}
	return found, nil
}

func (r *LookupRepositoryImpl) findByLefts(ctx context.Context, lookupID string, lefts []string) ([]*etlookup.Value, error) {
	if len(lefts) == 0 {
		return nil, nil
	}
	var pos []entity.LookupValue
	err := r.db.WithContext(ctx).
		Where("lookup_id = ? AND left_value IN ?", lookupID, lefts).
		Order("created_at ASC").Order("id ASC").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}
	return toValueDomains(pos), nil
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

func toLookupModel(l *etlookup.Lookup) *entity.Lookup {
	return &entity.Lookup{
		ID:                 l.ID,
		Name:               l.Name,
		Description:        l.Description,
		LeftSystem:         l.LeftSystem,
		RightSystem:        l.RightSystem,
		AllowLeftDups:      l.AllowLeftDups,
		AllowRightDups:     l.AllowRightDups,
		AllowLeftRightDups: l.AllowLeftRightDups,
		StrictChecking:     l.StrictChecking,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

func toLookupDomain(po *entity.Lookup) *etlookup.Lookup {
	return &etlookup.Lookup{
		ID:                 po.ID,
		Name:               po.Name,
		Description:        po.Description,
		LeftSystem:         po.LeftSystem,
		RightSystem:        po.RightSystem,
		AllowLeftDups:      po.AllowLeftDups,
		AllowRightDups:     po.AllowRightDups,
		AllowLeftRightDups: po.AllowLeftRightDups,
		StrictChecking:     po.StrictChecking,
		CreatedAt:          po.CreatedAt,
		UpdatedAt:          po.UpdatedAt,
	}
}

func toLookupDomains(pos []entity.Lookup) []*etlookup.Lookup {
	out := make([]*etlookup.Lookup, 0, len(pos))
	for i := range pos {
		out = append(out, toLookupDomain(&pos[i]))
	}
	return out
}

func toValueModel(v *etlookup.Value) *entity.LookupValue {
	return &entity.LookupValue{
		ID:            v.ID,
		LookupID:      v.LookupID,
		Left:          v.Left,
		Right:         v.Right,
		LeftMetadata:  entity.ToJSON(v.LeftMetadata),
		RightMetadata: entity.ToJSON(v.RightMetadata),
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

func toValueDomain(po *entity.LookupValue) *etlookup.Value {
	return &etlookup.Value{
		ID:            po.ID,
		LookupID:      po.LookupID,
		Left:          po.Left,
		Right:         po.Right,
		LeftMetadata:  entity.FromJSON(po.LeftMetadata),
		RightMetadata: entity.FromJSON(po.RightMetadata),
		CreatedAt:     po.CreatedAt,
		UpdatedAt:     po.UpdatedAt,
	}
}

func toValueDomains(pos []entity.LookupValue) []*etlookup.Value {
	out := make([]*etlookup.Value, 0, len(pos))
	for i := range pos {
		out = append(out, toValueDomain(&pos[i]))
	}
	return out
}
