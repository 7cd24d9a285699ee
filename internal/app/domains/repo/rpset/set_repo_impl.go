package rpset

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stratools/internal/app/domains/entity/etset"
	"stratools/internal/common/entity"
)

// SetRepositoryImpl 集合仓储实现（GORM）
type SetRepositoryImpl struct {
	db *gorm.DB
}

// NewSetRepository 创建集合仓储实例
func NewSetRepository(db *gorm.DB) SetRepository {
	return &SetRepositoryImpl{db: db}
}

// Create 创建集合
func (r *SetRepositoryImpl) Create(ctx context.Context, set *etset.Set) error {
	err := r.db.WithContext(ctx).Create(toSetModel(set)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateName
	}
	return err
}

// GetByName 根据名称查询集合
func (r *SetRepositoryImpl) GetByName(ctx context.Context, name string) (*etset.Set, error) {
	var po entity.Set
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toSetDomain(&po), nil
}

// List 分页查询集合
func (r *SetRepositoryImpl) List(ctx context.Context, limit, offset int) ([]*etset.Set, int64, error) {
	var total int64
	var pos []entity.Set

	query := r.db.WithContext(ctx).Model(&entity.Set{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&pos).Error; err != nil {
		return nil, 0, err
	}

	sets := make([]*etset.Set, 0, len(pos))
	for i := range pos {
		sets = append(sets, toSetDomain(&pos[i]))
	}
	return sets, total, nil
}

// Update 更新描述和策略
func (r *SetRepositoryImpl) Update(ctx context.Context, set *etset.Set) error {
	return r.db.WithContext(ctx).
		Model(&entity.Set{}).
		Where("id = ?", set.ID).
		Updates(map[string]interface{}{
			"description":      set.Description,
			"allow_duplicates": set.AllowDuplicates,
			"strict_checking":  set.StrictChecking,
			"updated_at":       set.UpdatedAt,
		}).Error
}

// Delete 先删值再删集合，不依赖数据库级联
func (r *SetRepositoryImpl) Delete(ctx context.Context, setID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("set_id = ?", setID).Delete(&entity.SetValue{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", setID).Delete(&entity.Set{}).Error
	})
}

// WithSetLock SELECT ... FOR UPDATE 锁住集合行，同一集合的严格写入串行执行
func (r *SetRepositoryImpl) WithSetLock(ctx context.Context, setID string, fn func(ctx context.Context, repo SetRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var po entity.Set
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", setID).
			Take(&po).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSetNotFound
		}
		if err != nil {
			return err
		}
		return fn(ctx, &SetRepositoryImpl{db: tx})
	})
}

// CountValues 按集合分组计数
func (r *SetRepositoryImpl) CountValues(ctx context.Context, setIDs ...string) (map[string]int64, error) {
	counts := make(map[string]int64, len(setIDs))
	if len(setIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		SetID string
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.SetValue{}).
		Select("set_id, COUNT(*) AS count").
		Where("set_id IN ?", setIDs).
		Group("set_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.SetID] = row.Count
	}
	return counts, nil
}

// CreateValue 写入一个值
func (r *SetRepositoryImpl) CreateValue(ctx context.Context, value *etset.Value) error {
	return r.db.WithContext(ctx).Create(toValueModel(value)).Error
}

// FindValue 查询第一个匹配的值
func (r *SetRepositoryImpl) FindValue(ctx context.Context, setID, value string) (*etset.Value, error) {
	var po entity.SetValue
	err := r.db.WithContext(ctx).
		Where("set_id = ? AND value = ?", setID, value).
		Order("created_at ASC").Order("id ASC").
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toValueDomain(&po), nil
}

// FindValues 批量查询，重复值只保留最早写入的一条
func (r *SetRepositoryImpl) FindValues(ctx context.Context, setID string, values []string) (map[string]*etset.Value, error) {
	found := make(map[string]*etset.Value, len(values))
	if len(values) == 0 {
		return found, nil
	}

	var pos []entity.SetValue
	err := r.db.WithContext(ctx).
		Where("set_id = ? AND value IN ?", setID, values).
		Order("created_at ASC").Order("id ASC").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}

	for i := range pos {
		if _, ok := found[pos[i].Value]; !ok {
			found[pos[i].Value] = toValueDomain(&pos[i])
		}
	}
	return found, nil
}

// GetValue 根据 ID 查询值
func (r *SetRepositoryImpl) GetValue(ctx context.Context, setID, valueID string) (*etset.Value, error) {
	var po entity.SetValue
	err := r.db.WithContext(ctx).Where("set_id = ? AND id = ?", setID, valueID).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toValueDomain(&po), nil
}

// UpdateValue 更新值和元数据
func (r *SetRepositoryImpl) UpdateValue(ctx context.Context, value *etset.Value) error {
	return r.db.WithContext(ctx).
		Model(&entity.SetValue{}).
		Where("set_id = ? AND id = ?", value.SetID, value.ID).
		Updates(map[string]interface{}{
			"value":      value.Value,
			"metadata":   entity.ToJSON(value.Metadata),
			"updated_at": value.UpdatedAt,
		}).Error
}

// DeleteValueByKey 按 ID 或字面值删除
func (r *SetRepositoryImpl) DeleteValueByKey(ctx context.Context, setID, key string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("set_id = ? AND (id = ? OR value = ?)", setID, key, key).
		Delete(&entity.SetValue{})
	return result.RowsAffected, result.Error
}

// DeleteValues 按 ID 列表删除
func (r *SetRepositoryImpl) DeleteValues(ctx context.Context, setID string, valueIDs []string) (int64, error) {
	if len(valueIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("set_id = ? AND id IN ?", setID, valueIDs).
		Delete(&entity.SetValue{})
	return result.RowsAffected, result.Error
}

// ClearValues 清空集合
func (r *SetRepositoryImpl) ClearValues(ctx context.Context, setID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("set_id = ?", setID).Delete(&entity.SetValue{})
	return result.RowsAffected, result.Error
}

// ListValues 分页查询值
func (r *SetRepositoryImpl) ListValues(ctx context.Context, setID string, limit, offset int) ([]*etset.Value, int64, error) {
	var total int64
	var pos []entity.SetValue

	query := r.db.WithContext(ctx).Model(&entity.SetValue{}).Where("set_id = ?", setID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&pos).Error; err != nil {
		return nil, 0, err
	}

	values := make([]*etset.Value, 0, len(pos))
	for i := range pos {
		values = append(values, toValueDomain(&pos[i]))
	}
	return values, total, nil
}

// toSetModel 领域对象转换为 GORM 模型
func toSetModel(set *etset.Set) *entity.Set {
	return &entity.Set{
		ID:              set.ID,
		Name:            set.Name,
		Description:     set.Description,
		AllowDuplicates: set.AllowDuplicates,
		StrictChecking:  set.StrictChecking,
		CreatedAt:       set.CreatedAt,
		UpdatedAt:       set.UpdatedAt,
	}
}

// toSetDomain GORM 模型转换为领域对象
func toSetDomain(po *entity.Set) *etset.Set {
	return &etset.Set{
		ID:              po.ID,
		Name:            po.Name,
		Description:     po.Description,
		AllowDuplicates: po.AllowDuplicates,
		StrictChecking:  po.StrictChecking,
		CreatedAt:       po.CreatedAt,
		UpdatedAt:       po.UpdatedAt,
	}
}

func toValueModel(v *etset.Value) *entity.SetValue {
	return &entity.SetValue{
		ID:        v.ID,
		SetID:     v.SetID,
		Value:     v.Value,
		Metadata:  entity.ToJSON(v.Metadata),
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func toValueDomain(po *entity.SetValue) *etset.Value {
	return &etset.Value{
		ID:        po.ID,
		SetID:     po.SetID,
		Value:     po.Value,
		Metadata:  entity.FromJSON(po.Metadata),
		CreatedAt: po.CreatedAt,
		UpdatedAt: po.UpdatedAt,
	}
}
