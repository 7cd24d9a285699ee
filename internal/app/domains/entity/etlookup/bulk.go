package etlookup

import (
	"encoding/json"

	"stratools/internal/app/domains/entity/etprimitive"
)

// BulkMode 批量写入模式
type BulkMode string

const (
	// BulkModeInsert 仅新增
	BulkModeInsert BulkMode = "insert"
	// BulkModeSkip 已存在完全相同的 left/right 时跳过
	BulkModeSkip BulkMode = "skip"
	// BulkModeUpsert 按 left 更新已存在的映射
	BulkModeUpsert BulkMode = "upsert"
)

// Valid 校验模式
func (m BulkMode) Valid() bool {
	switch m {
	case BulkModeInsert, BulkModeSkip, BulkModeUpsert:
		return true
	}
	return false
}

// BulkItem 批量写入的单条输入
type BulkItem struct {
	Left          string
	Right         string
	LeftMetadata  json.RawMessage
	RightMetadata json.RawMessage
}

// Outcome 单条写入的去向
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeSkipped Outcome = "skipped"
)

// BulkOutcome 单条写入结果
type BulkOutcome struct {
	Outcome Outcome `json:"outcome"`
	Value   *Value  `json:"value"`
}

// BulkAddResult 批量写入结果
type BulkAddResult struct {
	Created int
	Updated int
	Skipped int
	Errors  []etprimitive.ItemError
	Values  []*Value
	Results []etprimitive.ItemResult[*BulkOutcome]
}

// NewBulkAddResult 从逐条结果汇总
func NewBulkAddResult(results []etprimitive.ItemResult[*BulkOutcome]) *BulkAddResult {
	out := &BulkAddResult{
		Errors:  etprimitive.Errors(results),
		Values:  make([]*Value, 0, len(results)),
		Results: results,
	}
	for _, r := range results {
		if !r.OK {
			continue
		}
		switch r.Value.Outcome {
		case OutcomeCreated:
			out.Created++
		case OutcomeUpdated:
			out.Updated++
		case OutcomeSkipped:
			out.Skipped++
		}
		out.Values = append(out.Values, r.Value.Value)
	}
	return out
}

// SearchQuery 搜索条件：left/right 精确匹配，search 对两侧做不区分大小写的子串匹配
type SearchQuery struct {
	Left   *string
	Right  *string
	Search *string
	Limit  int
	Offset int
}
