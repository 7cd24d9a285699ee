package etset

import (
	"encoding/json"

	"stratools/internal/app/domains/entity/etprimitive"
)

// BulkItem 批量写入的单条输入
type BulkItem struct {
	Value    string
	Metadata json.RawMessage
}

// BulkAddResult 批量写入结果
type BulkAddResult struct {
	Created int
	Errors  []etprimitive.ItemError
	Values  []*Value
	Results []etprimitive.ItemResult[*Value]
}

// Check 单值检查结果
type Check struct {
	Value    string
	Exists   bool
	SetValue *Value
}

// BulkCheckResult 批量检查结果
type BulkCheckResult struct {
	Found    int
	NotFound int
	Errors   []etprimitive.ItemError
	Checks   []Check
	Results  []etprimitive.ItemResult[*Check]
}

// NewBulkAddResult 从逐条结果汇总
func NewBulkAddResult(results []etprimitive.ItemResult[*Value]) *BulkAddResult {
	out := &BulkAddResult{
		Errors:  etprimitive.Errors(results),
		Values:  make([]*Value, 0, len(results)),
		Results: results,
	}
	for _, r := range results {
		if r.OK {
			out.Created++
			out.Values = append(out.Values, r.Value)
		}
	}
	return out
}

// NewBulkCheckResult 从逐条结果汇总
func NewBulkCheckResult(results []etprimitive.ItemResult[*Check]) *BulkCheckResult {
	out := &BulkCheckResult{
		Errors:  etprimitive.Errors(results),
		Checks:  make([]Check, 0, len(results)),
		Results: results,
	}
	for _, r := range results {
		if !r.OK {
			continue
		}
		out.Checks = append(out.Checks, *r.Value)
		if r.Value.Exists {
			out.Found++
		} else {
			out.NotFound++
		}
	}
	return out
}
