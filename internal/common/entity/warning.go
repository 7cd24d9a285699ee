package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Warning 检测任务产出的告警实体
type Warning struct {
	ID                 string         `gorm:"column:id;primaryKey;type:varchar(64)"`
	Type               string         `gorm:"column:type;type:varchar(32);not null;index:idx_warning_type_resolved,priority:1"`
	TypeName           string         `gorm:"column:type_name;type:varchar(100);not null"`
	TypeID             string         `gorm:"column:type_id;type:varchar(64);not null;index:idx_warning_type_id"`
	ItemID             string         `gorm:"column:item_id;type:varchar(64);not null"`
	LeftDuplicate      bool           `gorm:"column:left_duplicate;not null"`
	RightDuplicate     bool           `gorm:"column:right_duplicate;not null"`
	LeftRightDuplicate bool           `gorm:"column:left_right_duplicate;not null"`
	Severity           string         `gorm:"column:severity;type:varchar(16);not null;index:idx_warning_severity"`
	Details            datatypes.JSON `gorm:"column:details;type:json;not null"`

	// 处理状态
	IsResolved bool       `gorm:"column:is_resolved;not null;index:idx_warning_type_resolved,priority:2"`
	ResolvedAt *time.Time `gorm:"column:resolved_at"`
	ResolvedBy *string    `gorm:"column:resolved_by;type:varchar(100)"`

	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_warning_created"`
}

// TableName 指定表名
func (Warning) TableName() string {
	return "warnings"
}

// 告警类型常量
const (
	WarningTypeLookup = "lookup"
)

// 告警级别常量
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)
