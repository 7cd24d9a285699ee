package response

import (
	"encoding/json"
	"time"

	"stratools/internal/app/domains/entity/etprimitive"
)

// LookupResponse 映射表响应
type LookupResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Description        *string   `json:"description"`
	LeftSystem         *string   `json:"leftSystem"`
	RightSystem        *string   `json:"rightSystem"`
	AllowLeftDups      bool      `json:"allowLeftDups"`
	AllowRightDups     bool      `json:"allowRightDups"`
	AllowLeftRightDups bool      `json:"allowLeftRightDups"`
	StrictChecking     bool      `json:"strictChecking"`
	ValueCount         int64     `json:"valueCount"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// LookupValueResponse 映射响应
type LookupValueResponse struct {
	ID            string          `json:"id"`
	LookupID      string          `json:"lookupId"`
	Left          string          `json:"left"`
	Right         string          `json:"right"`
	LeftMetadata  json.RawMessage `json:"leftMetadata" swaggertype:"object"`
	RightMetadata json.RawMessage `json:"rightMetadata" swaggertype:"object"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// LookupListResponse 映射表分页列表
type LookupListResponse struct {
	Lookups    []*LookupResponse      `json:"lookups"`
	Pagination etprimitive.Pagination `json:"pagination"`
}

// LookupValueListResponse 映射分页列表
type LookupValueListResponse struct {
	Values     []*LookupValueResponse `json:"values"`
	Pagination etprimitive.Pagination `json:"pagination"`
}

// LookupBulkOutcome 单条写入去向
type LookupBulkOutcome struct {
	Outcome string               `json:"outcome"`
	Value   *LookupValueResponse `json:"value"`
}

// LookupBulkAddResponse 批量写入结果
type LookupBulkAddResponse struct {
	Created int                                          `json:"created"`
	Updated int                                          `json:"updated"`
	Skipped int                                          `json:"skipped"`
	Errors  []etprimitive.ItemError                      `json:"errors"`
	Values  []*LookupValueResponse                       `json:"values"`
	Results []etprimitive.ItemResult[*LookupBulkOutcome] `json:"results"`
}
