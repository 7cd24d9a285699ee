package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Lookup 双向映射表实体
type Lookup struct {
	ID                 string  `gorm:"column:id;primaryKey;type:varchar(64)"`
	Name               string  `gorm:"column:name;type:varchar(100);uniqueIndex:uk_lookup_name;not null"`
	Description        *string `gorm:"column:description;type:varchar(500)"`
	LeftSystem         *string `gorm:"column:left_system;type:varchar(100)"`
	RightSystem        *string `gorm:"column:right_system;type:varchar(100)"`
	AllowLeftDups      bool    `gorm:"column:allow_left_dups;not null"`
	AllowRightDups     bool    `gorm:"column:allow_right_dups;not null"`
	AllowLeftRightDups bool    `gorm:"column:allow_left_right_dups;not null"`
	StrictChecking     bool    `gorm:"column:strict_checking;not null"`

	Values []LookupValue `gorm:"foreignKey:LookupID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (Lookup) TableName() string {
	return "lookups"
}

// LookupValue 映射值实体，left/right 为 SQL 保留字，列名加 _value 后缀
type LookupValue struct {
	ID            string         `gorm:"column:id;primaryKey;type:varchar(64)"`
	LookupID      string         `gorm:"column:lookup_id;type:varchar(64);not null;index:idx_lookup_left,priority:1;index:idx_lookup_right,priority:1"`
	Left          string         `gorm:"column:left_value;type:varchar(500);not null;index:idx_lookup_left,priority:2"`
	Right         string         `gorm:"column:right_value;type:varchar(500);not null;index:idx_lookup_right,priority:2"`
	LeftMetadata  datatypes.JSON `gorm:"column:left_metadata;type:json;not null"`
	RightMetadata datatypes.JSON `gorm:"column:right_metadata;type:json;not null"`

	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_lookup_value_created"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (LookupValue) TableName() string {
	return "lookup_values"
}
