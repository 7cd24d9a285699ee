package response

import (
	"encoding/json"
	"time"

	"stratools/internal/app/domains/entity/etprimitive"
)

// SetResponse 集合响应
type SetResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	AllowDuplicates bool      `json:"allowDuplicates"`
	StrictChecking  bool      `json:"strictChecking"`
	ValueCount      int64     `json:"valueCount"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// SetValueResponse 集合值响应
type SetValueResponse struct {
	ID        string          `json:"id"`
	SetID     string          `json:"setId"`
	Value     string          `json:"value"`
	Metadata  json.RawMessage `json:"metadata" swaggertype:"object"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// SetListResponse 集合分页列表
type SetListResponse struct {
	Sets       []*SetResponse         `json:"sets"`
	Pagination etprimitive.Pagination `json:"pagination"`
}

// SetValueListResponse 集合值分页列表
type SetValueListResponse struct {
	Values     []*SetValueResponse    `json:"values"`
	Pagination etprimitive.Pagination `json:"pagination"`
}

// SetCheckResponse 单值检查结果
type SetCheckResponse struct {
	Value    string            `json:"value"`
	Exists   bool              `json:"exists"`
	SetValue *SetValueResponse `json:"setValue,omitempty"`
}

// SetBulkAddResponse 批量写入结果
type SetBulkAddResponse struct {
	Created int                                         `json:"created"`
	Errors  []etprimitive.ItemError                     `json:"errors"`
	Values  []*SetValueResponse                         `json:"values"`
	Results []etprimitive.ItemResult[*SetValueResponse] `json:"results"`
}

// SetBulkCheckResponse 批量检查结果
type SetBulkCheckResponse struct {
	Found    int                                         `json:"found"`
	NotFound int                                         `json:"notFound"`
	Errors   []etprimitive.ItemError                     `json:"errors"`
	Checks   []*SetCheckResponse                         `json:"checks"`
	Results  []etprimitive.ItemResult[*SetCheckResponse] `json:"results"`
}
