package etprimitive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"unicode/utf8"

	"stratools/internal/app/pkg/errorx"
)

// 长度限制
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
	MaxValueLength       = 500
	MaxSystemLength      = 100
)

// 分页限制
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Pagination 分页参数与结果
type Pagination struct {
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"hasMore"`
}

// NewPagination 规范化分页参数：limit 默认 50，最大 100；offset 不小于 0
func NewPagination(limit, offset int) Pagination {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Pagination{Limit: limit, Offset: offset}
}

// WithTotal 回填总数
func (p Pagination) WithTotal(total int64) Pagination {
	p.Total = total
	p.HasMore = int64(p.Offset+p.Limit) < total
	return p
}

// ValidateName 校验 Set/Lookup 名称
func ValidateName(name string) error {
	if name == "" {
		return errorx.InvalidName(name, "name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return errorx.InvalidName(name, fmt.Sprintf("name must be at most %d characters", MaxNameLength))
	}
	if !namePattern.MatchString(name) {
		return errorx.InvalidName(name, "name may only contain letters, digits, '_' and '-'")
	}
	return nil
}

// ValidateOptional 校验可选文本字段长度
func ValidateOptional(field string, value *string, max int) error {
	if value == nil {
		return nil
	}
	if utf8.RuneCountInString(*value) > max {
		return errorx.Validation(fmt.Sprintf("%s is too long", field),
			errorx.ErrorDetail{Path: field, Info: fmt.Sprintf("%s must be at most %d characters", field, max)})
	}
	return nil
}

// ValidateValue 校验值字段：非空且不超长
func ValidateValue(field, value string) error {
	if value == "" {
		return errorx.Validation(fmt.Sprintf("%s is required", field),
			errorx.ErrorDetail{Path: field, Info: fmt.Sprintf("%s is required", field)})
	}
	if utf8.RuneCountInString(value) > MaxValueLength {
		return errorx.Validation(fmt.Sprintf("%s is too long", field),
			errorx.ErrorDetail{Path: field, Info: fmt.Sprintf("%s must be at most %d characters", field, MaxValueLength)})
	}
	return nil
}

// NormalizeMetadata 校验元数据为合法 JSON；空值和 null 统一为 nil
func NormalizeMetadata(field string, raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if !json.Valid(trimmed) {
		return nil, errorx.Validation(fmt.Sprintf("%s must be valid JSON", field),
			errorx.ErrorDetail{Path: field, Info: "invalid JSON"})
	}
	return json.RawMessage(trimmed), nil
}
