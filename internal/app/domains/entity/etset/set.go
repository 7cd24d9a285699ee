package etset

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"stratools/internal/app/domains/entity/etprimitive"
)

// Set 去重集合（领域对象）
type Set struct {
	ID              string
	Name            string
	Description     *string
	AllowDuplicates bool
	StrictChecking  bool
	ValueCount      int64 // 仅查询时回填
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Value 集合中的一个值
type Value struct {
	ID        string
	SetID     string
	Value     string
	Metadata  json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Options 创建/更新集合时的可选项
type Options struct {
	Description     *string
	AllowDuplicates bool
	StrictChecking  bool
}

// DefaultOptions allowDuplicates=true, strictChecking=false
func DefaultOptions() Options {
	return Options{AllowDuplicates: true}
}

// NewSet 创建集合（工厂方法）
func NewSet(name string, opts Options) (*Set, error) {
	if err := etprimitive.ValidateName(name); err != nil {
		return nil, err
	}
	if err := etprimitive.ValidateOptional("description", opts.Description, etprimitive.MaxDescriptionLength); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Set{
		ID:              uuid.New().String(),
		Name:            name,
		Description:     opts.Description,
		AllowDuplicates: opts.AllowDuplicates,
		StrictChecking:  opts.StrictChecking,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Apply 更新描述和策略（领域行为）
func (s *Set) Apply(opts Options) error {
	if err := etprimitive.ValidateOptional("description", opts.Description, etprimitive.MaxDescriptionLength); err != nil {
		return err
	}
	s.Description = opts.Description
	s.AllowDuplicates = opts.AllowDuplicates
	s.StrictChecking = opts.StrictChecking
	s.UpdatedAt = time.Now()
	return nil
}

// RejectsDuplicates 严格模式且不允许重复时，写入前必须拒绝已存在的值
func (s *Set) RejectsDuplicates() bool {
	return s.StrictChecking && !s.AllowDuplicates
}

// NewValue 创建集合值（工厂方法）
func NewValue(setID, value string, metadata json.RawMessage) (*Value, error) {
	if err := etprimitive.ValidateValue("value", value); err != nil {
		return nil, err
	}
	meta, err := etprimitive.NormalizeMetadata("metadata", metadata)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Value{
		ID:        uuid.New().String(),
		SetID:     setID,
		Value:     value,
		Metadata:  meta,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update 修改值和元数据（领域行为）
func (v *Value) Update(value string, metadata json.RawMessage) error {
	if err := etprimitive.ValidateValue("value", value); err != nil {
		return err
	}
	meta, err := etprimitive.NormalizeMetadata("metadata", metadata)
	if err != nil {
		return err
	}
	v.Value = value
	v.Metadata = meta
	v.UpdatedAt = time.Now()
	return nil
}
