package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Set 去重集合实体
type Set struct {
	ID              string  `gorm:"column:id;primaryKey;type:varchar(64)"`
	Name            string  `gorm:"column:name;type:varchar(100);uniqueIndex:uk_set_name;not null"`
	Description     *string `gorm:"column:description;type:varchar(500)"`
	AllowDuplicates bool    `gorm:"column:allow_duplicates;not null"`
	StrictChecking  bool    `gorm:"column:strict_checking;not null"`

	// 级联删除，引擎层仍会在同一事务中显式删除子记录
	Values []SetValue `gorm:"foreignKey:SetID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (Set) TableName() string {
	return "sets"
}

// SetValue 集合值实体
type SetValue struct {
	ID       string         `gorm:"column:id;primaryKey;type:varchar(64)"`
	SetID    string         `gorm:"column:set_id;type:varchar(64);not null;index:idx_set_value,priority:1"`
	Value    string         `gorm:"column:value;type:varchar(500);not null;index:idx_set_value,priority:2"`
	Metadata datatypes.JSON `gorm:"column:metadata;type:json;not null"`

	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_set_value_created"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (SetValue) TableName() string {
	return "set_values"
}
