package etwarning

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Severity 告警级别
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Rank 用于排序，数值越大越严重
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// Valid 校验级别取值
func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// TypeLookup Lookup 重复检测产出的告警类型
const TypeLookup = "lookup"

// Warning 告警（领域对象）
type Warning struct {
	ID                 string
	Type               string
	TypeName           string
	TypeID             string
	ItemID             string
	LeftDuplicate      bool
	RightDuplicate     bool
	LeftRightDuplicate bool
	Severity           Severity
	Details            json.RawMessage
	IsResolved         bool
	ResolvedAt         *time.Time
	ResolvedBy         *string
	CreatedAt          time.Time
}

// New 创建未处理的告警
func New(typ, typeName, typeID, itemID string, severity Severity, details json.RawMessage) *Warning {
	return &Warning{
		ID:        uuid.New().String(),
		Type:      typ,
		TypeName:  typeName,
		TypeID:    typeID,
		ItemID:    itemID,
		Severity:  severity,
		Details:   details,
		CreatedAt: time.Now(),
	}
}

// Filter 列表过滤条件
type Filter struct {
	Type     *string
	Severity *Severity
	Resolved *bool
	Limit    int
	Offset   int
}

// Stats 告警统计，分组计数只统计未处理告警
type Stats struct {
	Total      int64            `json:"total"`
	Unresolved int64            `json:"unresolved"`
	Resolved   int64            `json:"resolved"`
	BySeverity map[string]int64 `json:"bySeverity"`
	ByType     map[string]int64 `json:"byType"`
}
