package etlookup

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/google/uuid"

	"stratools/internal/app/domains/entity/etprimitive"
)

// Lookup 双向映射表（领域对象）
type Lookup struct {
	ID                 string
	Name               string
	Description        *string
	LeftSystem         *string
	RightSystem        *string
	AllowLeftDups      bool
	AllowRightDups     bool
	AllowLeftRightDups bool
	StrictChecking     bool
	ValueCount         int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Value 一条 left <-> right 映射
type Value struct {
	ID            string
	LookupID      string
	Left          string
	Right         string
	LeftMetadata  json.RawMessage
	RightMetadata json.RawMessage
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Options 创建/更新映射表的可选项
type Options struct {
	Description        *string
	LeftSystem         *string
	RightSystem        *string
	AllowLeftDups      bool
	AllowRightDups     bool
	AllowLeftRightDups bool
	StrictChecking     bool
}

// DefaultOptions 三类重复默认都允许，非严格模式
func DefaultOptions() Options {
	return Options{
		AllowLeftDups:      true,
		AllowRightDups:     true,
		AllowLeftRightDups: true,
	}
}

func validateOptions(opts Options) error {
	if err := etprimitive.ValidateOptional("description", opts.Description, etprimitive.MaxDescriptionLength); err != nil {
		return err
	}
	if err := etprimitive.ValidateOptional("leftSystem", opts.LeftSystem, etprimitive.MaxSystemLength); err != nil {
		return err
	}
	return etprimitive.ValidateOptional("rightSystem", opts.RightSystem, etprimitive.MaxSystemLength)
}

// NewLookup 创建映射表（工厂方法）
func NewLookup(name string, opts Options) (*Lookup, error) {
	if err := etprimitive.ValidateName(name); err != nil {
		return nil, err
	}
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	now := time.Now()
	l := &Lookup{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	l.set(opts)
	return l, nil
}

// Apply 更新描述和策略（领域行为）
func (l *Lookup) Apply(opts Options) error {
	if err := validateOptions(opts); err != nil {
		return err
	}
	l.set(opts)
	l.UpdatedAt = time.Now()
	return nil
}

func (l *Lookup) set(opts Options) {
	l.Description = opts.Description
	l.LeftSystem = opts.LeftSystem
	l.RightSystem = opts.RightSystem
	l.AllowLeftDups = opts.AllowLeftDups
	l.AllowRightDups = opts.AllowRightDups
	l.AllowLeftRightDups = opts.AllowLeftRightDups
	l.StrictChecking = opts.StrictChecking
}

// Enforces 严格模式下至少有一类重复被禁止时才需要写前检查
func (l *Lookup) Enforces() bool {
	return l.StrictChecking && (!l.AllowLeftDups || !l.AllowRightDups || !l.AllowLeftRightDups)
}

// NewValue 创建映射值（工厂方法）
func NewValue(lookupID, left, right string, leftMetadata, rightMetadata json.RawMessage) (*Value, error) {
	v := &Value{
		ID:       uuid.New().String(),
		LookupID: lookupID,
	}
	if err := v.assign(left, right, leftMetadata, rightMetadata); err != nil {
		return nil, err
	}
	v.CreatedAt = v.UpdatedAt
	return v, nil
}

// Update 修改映射（领域行为）
func (v *Value) Update(left, right string, leftMetadata, rightMetadata json.RawMessage) error {
	return v.assign(left, right, leftMetadata, rightMetadata)
}

func (v *Value) assign(left, right string, leftMetadata, rightMetadata json.RawMessage) error {
	if err := etprimitive.ValidateValue("left", left); err != nil {
		return err
	}
	if err := etprimitive.ValidateValue("right", right); err != nil {
		return err
	}
	lm, err := etprimitive.NormalizeMetadata("leftMetadata", leftMetadata)
	if err != nil {
		return err
	}
	rm, err := etprimitive.NormalizeMetadata("rightMetadata", rightMetadata)
	if err != nil {
		return err
	}

	v.Left = left
	v.Right = right
	v.LeftMetadata = lm
	v.RightMetadata = rm
	v.UpdatedAt = time.Now()
	return nil
}

// Pair left/right 组合键，可直接作为 map key
// 值中允许出现 "|"，分组不能用拼接后的字符串
type Pair struct {
	Left  string
	Right string
}

// String 展示用的 left|right 形式
func (p Pair) String() string {
	return p.Left + "|" + p.Right
}

// Pair 映射的组合键
func (v *Value) Pair() Pair {
	return Pair{Left: v.Left, Right: v.Right}
}

// Matches 判断映射与给定的 left/right 及元数据是否完全一致，元数据按 JSON 语义比较
func (v *Value) Matches(left, right string, leftMetadata, rightMetadata json.RawMessage) bool {
	return v.Left == left && v.Right == right &&
		jsonEqual(v.LeftMetadata, leftMetadata) && jsonEqual(v.RightMetadata, rightMetadata)
}

func jsonEqual(a, b json.RawMessage) bool {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == len(b)
	}
	var va, vb interface{}
	if err := json.Unmarshal(a, &va); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &vb); err != nil {
		return false
	}
	return reflect.DeepEqual(va, vb)
}
