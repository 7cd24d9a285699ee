package etprimitive

import "stratools/internal/app/pkg/errorx"

// ItemError 批量操作中单条失败的原因
type ItemError struct {
	Index   int    `json:"index"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

// ItemResult 批量操作单条结果：Ok(Value) 或 Err(Error)
type ItemResult[T any] struct {
	Index int        `json:"index"`
	OK    bool       `json:"ok"`
	Value T          `json:"value,omitempty"`
	Error *ItemError `json:"error,omitempty"`
}

// Ok 成功结果
func Ok[T any](index int, value T) ItemResult[T] {
	return ItemResult[T]{Index: index, OK: true, Value: value}
}

// Err 失败结果，错误码取自业务错误
func Err[T any](index int, err error) ItemResult[T] {
	be := errorx.From(err)
	return ItemResult[T]{
		Index: index,
		Error: &ItemError{Index: index, Code: be.Code, Message: be.Error()},
	}
}

// Errors 收集所有失败项
func Errors[T any](results []ItemResult[T]) []ItemError {
	errs := make([]ItemError, 0)
	for _, r := range results {
		if !r.OK && r.Error != nil {
			errs = append(errs, *r.Error)
		}
	}
	return errs
}

// Batches 按固定大小切分下标区间 [start, end)
func Batches(total, size int) [][2]int {
	if total <= 0 {
		return nil
	}
	if size <= 0 {
		size = total
	}
	out := make([][2]int, 0, (total+size-1)/size)
	for start := 0; start < total; start += size {
		end := min(start+size, total)
		out = append(out, [2]int{start, end})
	}
	return out
}
