package rpwarning

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"stratools/internal/app/domains/entity/etwarning"
	"stratools/internal/common/entity"
)

// insertBatchSize 全量替换时的分批写入大小
const insertBatchSize = 100

const severityRankSQL = "CASE severity WHEN 'CRITICAL' THEN 4 WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 ELSE 1 END DESC"

// WarningRepositoryImpl 告警仓储实现（GORM）
type WarningRepositoryImpl struct {
	db *gorm.DB
}

// NewWarningRepository 创建告警仓储实例
func NewWarningRepository(db *gorm.DB) WarningRepository {
	return &WarningRepositoryImpl{db: db}
}

// List 过滤分页查询
func (r *WarningRepositoryImpl) List(ctx context.Context, filter etwarning.Filter) ([]*etwarning.Warning, int64, error) {
	var total int64
	var pos []entity.Warning

	query := r.db.WithContext(ctx).Model(&entity.Warning{})
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Severity != nil {
		query = query.Where("severity = ?", string(*filter.Severity))
	}
	if filter.Resolved != nil {
		query = query.Where("is_resolved = ?", *filter.Resolved)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("is_resolved ASC").
		Order(severityRankSQL).
		Order("created_at DESC").
		Order("id ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&pos).Error
	if err != nil {
		return nil, 0, err
	}

	warnings := make([]*etwarning.Warning, 0, len(pos))
	for i := range pos {
		warnings = append(warnings, toDomainModel(&pos[i]))
	}
	return warnings, total, nil
}

// Get 根据 ID 查询
func (r *WarningRepositoryImpl) Get(ctx context.Context, id string) (*etwarning.Warning, error) {
	var po entity.Warning
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainModel(&po), nil
}

// Stats 总数按处理状态统计，分组只统计未处理
func (r *WarningRepositoryImpl) Stats(ctx context.Context) (*etwarning.Stats, error) {
	stats := &etwarning.Stats{
		BySeverity: make(map[string]int64),
		ByType:     make(map[string]int64),
	}

	var byResolved []struct {
		IsResolved bool
		Count      int64
	}
	err := r.db.WithContext(ctx).Model(&entity.Warning{}).
		Select("is_resolved, COUNT(*) AS count").
		Group("is_resolved").
		Scan(&byResolved).Error
	if err != nil {
		return nil, err
	}
	for _, row := range byResolved {
		if row.IsResolved {
			stats.Resolved += row.Count
		} else {
			stats.Unresolved += row.Count
		}
	}
	stats.Total = stats.Resolved + stats.Unresolved

	var bySeverity []struct {
		Severity string
		Count    int64
	}
	err = r.db.WithContext(ctx).Model(&entity.Warning{}).
		Select("severity, COUNT(*) AS count").
		Where("is_resolved = ?", false).
		Group("severity").
		Scan(&bySeverity).Error
	if err != nil {
		return nil, err
	}
	for _, row := range bySeverity {
		stats.BySeverity[row.Severity] = row.Count
	}

	var byType []struct {
		Type  string
		Count int64
	}
	err = r.db.WithContext(ctx).Model(&entity.Warning{}).
		Select("type, COUNT(*) AS count").
		Where("is_resolved = ?", false).
		Group("type").
		Scan(&byType).Error
	if err != nil {
		return nil, err
	}
	for _, row := range byType {
		stats.ByType[row.Type] = row.Count
	}

	return stats, nil
}

// Resolve 标记单条为已处理
func (r *WarningRepositoryImpl) Resolve(ctx context.Context, id, resolvedBy string, at time.Time) (int64, error) {
	return r.ResolveBulk(ctx, []string{id}, resolvedBy, at)
}

// ResolveBulk 批量标记为已处理
func (r *WarningRepositoryImpl) ResolveBulk(ctx context.Context, ids []string, resolvedBy string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&entity.Warning{}).
		Where("id IN ? AND is_resolved = ?", ids, false).
		Updates(map[string]interface{}{
			"is_resolved": true,
			"resolved_at": at,
			"resolved_by": resolvedBy,
		})
	return result.RowsAffected, result.Error
}

// Delete 删除单条
func (r *WarningRepositoryImpl) Delete(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Warning{})
	return result.RowsAffected, result.Error
}

// ClearResolved 删除全部已处理告警
func (r *WarningRepositoryImpl) ClearResolved(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("is_resolved = ?", true).Delete(&entity.Warning{})
	return result.RowsAffected, result.Error
}

// ReplaceByType 全量替换
func (r *WarningRepositoryImpl) ReplaceByType(ctx context.Context, typ string, warnings []*etwarning.Warning) error {
	pos := make([]*entity.Warning, 0, len(warnings))
	for _, w := range warnings {
		pos = append(pos, toGormModel(w))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("type = ?", typ).Delete(&entity.Warning{}).Error; err != nil {
			return err
		}
		if len(pos) == 0 {
			return nil
		}
		return tx.CreateInBatches(pos, insertBatchSize).Error
	})
}

// toGormModel 领域对象转换为 GORM 模型
func toGormModel(w *etwarning.Warning) *entity.Warning {
	return &entity.Warning{
		ID:                 w.ID,
		Type:               w.Type,
		TypeName:           w.TypeName,
		TypeID:             w.TypeID,
		ItemID:             w.ItemID,
		LeftDuplicate:      w.LeftDuplicate,
		RightDuplicate:     w.RightDuplicate,
		LeftRightDuplicate: w.LeftRightDuplicate,
		Severity:           string(w.Severity),
		Details:            entity.ToJSON(w.Details),
		IsResolved:         w.IsResolved,
		ResolvedAt:         w.ResolvedAt,
		ResolvedBy:         w.ResolvedBy,
		CreatedAt:          w.CreatedAt,
	}
}

// toDomainModel GORM 模型转换为领域对象
func toDomainModel(po *entity.Warning) *etwarning.Warning {
	return &etwarning.Warning{
		ID:                 po.ID,
		Type:               po.Type,
		TypeName:           po.TypeName,
		TypeID:             po.TypeID,
		ItemID:             po.ItemID,
		LeftDuplicate:      po.LeftDuplicate,
		RightDuplicate:     po.RightDuplicate,
		LeftRightDuplicate: po.LeftRightDuplicate,
		Severity:           etwarning.Severity(po.Severity),
		Details:            entity.FromJSON(po.Details),
		IsResolved:         po.IsResolved,
		ResolvedAt:         po.ResolvedAt,
		ResolvedBy:         po.ResolvedBy,
		CreatedAt:          po.CreatedAt,
	}
}
